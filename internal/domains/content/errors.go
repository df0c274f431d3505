package content

import "errors"

var (
	ErrTopicNotFound    = errors.New("topic not found")
	ErrCampaignNotFound = errors.New("campaign not found")
	ErrPostNotFound     = errors.New("post not found")
	ErrVersionNotFound  = errors.New("post version not found")
	ErrNoCurrentVersion = errors.New("post has no current version")

	// ErrVersionMismatch means the version does not belong to the post it
	// was addressed through.
	ErrVersionMismatch = errors.New("version does not belong to post")

	// ErrStaleStatus means the post's status changed between read and
	// update; the caller should re-read and retry.
	ErrStaleStatus = errors.New("post status changed concurrently")
)
