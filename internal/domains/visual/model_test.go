package visual

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to Status
		allowed  bool
	}{
		{StatusGenerating, StatusPendingQA, true},
		{StatusPendingQA, StatusApproved, true},
		{StatusPendingQA, StatusNeedsRevision, true},

		// QA cannot settle a version still rendering.
		{StatusGenerating, StatusApproved, false},
		{StatusGenerating, StatusNeedsRevision, false},

		// Verdicts are terminal.
		{StatusApproved, StatusPendingQA, false},
		{StatusApproved, StatusNeedsRevision, false},
		{StatusNeedsRevision, StatusApproved, false},
		{StatusNeedsRevision, StatusPendingQA, false},
		{StatusPendingQA, StatusGenerating, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestKindValid(t *testing.T) {
	assert.True(t, KindSingle.Valid())
	assert.True(t, KindCarousel.Valid())
	assert.False(t, Kind("video").Valid())
}
