package ai

import (
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ideaList struct {
	Ideas []string `json:"ideas"`
}

func (s *ideaList) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.Ideas, validation.Required, validation.Length(1, 0)),
	)
}

// Declared maximum is 3; longer lists are trimmed, not rejected.
func (s *ideaList) Trim() {
	if len(s.Ideas) > 3 {
		s.Ideas = s.Ideas[:3]
	}
}

func TestDecodeIntoPlainJSON(t *testing.T) {
	var out ideaList
	err := decodeInto(`{"ideas": ["a", "b"]}`, &out)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, out.Ideas)
}

func TestDecodeIntoStripsCodeFences(t *testing.T) {
	cases := []string{
		"```json\n{\"ideas\": [\"a\"]}\n```",
		"```\n{\"ideas\": [\"a\"]}\n```",
		"  ```json\n{\"ideas\": [\"a\"]}\n```  ",
	}

	for _, raw := range cases {
		var out ideaList
		err := decodeInto(raw, &out)
		require.NoError(t, err, "input %q", raw)
		assert.Equal(t, []string{"a"}, out.Ideas)
	}
}

func TestDecodeIntoTrimsOverlongArrays(t *testing.T) {
	var out ideaList
	err := decodeInto(`{"ideas": ["a", "b", "c", "d", "e"]}`, &out)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, out.Ideas)
}

func TestDecodeIntoRejectsBadInput(t *testing.T) {
	cases := []string{
		"",
		"   ",
		"```json\n```",
		"not json at all",
		`{"ideas": "not-an-array"}`,
		`{"ideas": []}`, // fails validation: empty
	}

	for _, raw := range cases {
		var out ideaList
		err := decodeInto(raw, &out)
		assert.Error(t, err, "input %q", raw)
	}
}

func TestStripCodeFencesLeavesPlainTextAlone(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFences(`{"a":1}`))
	// Inner backticks survive; only the surrounding fence goes.
	assert.Equal(t, `{"a":"`+"`code`"+`"}`, stripCodeFences("```json\n{\"a\":\"`code`\"}\n```"))
}
