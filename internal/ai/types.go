// Package ai routes logical generation tasks to concrete AI providers,
// validates their output against per-task schemas and falls back across
// providers on transport failure.
package ai

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"contentpilot-backend/internal/domains/credential"
)

// ErrUnauthorized marks a provider rejecting the supplied API key. The
// router reacts by invalidating the workspace key and falling through to
// the system default.
var ErrUnauthorized = errors.New("provider rejected credentials")

// CompletionRequest is one text-generation call. The same prompt travels
// unchanged across the whole fallback chain.
type CompletionRequest struct {
	Model       string
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float32
	// JSONMode requests schema-constrained generation where the provider
	// supports it. When false the response is treated as free text and
	// parsed after code-fence stripping.
	JSONMode bool
}

type CompletionResponse struct {
	Text      string
	TokensIn  int
	TokensOut int
}

// Provider is one concrete AI vendor client. The API key is passed per
// call because the effective key depends on the calling workspace.
type Provider interface {
	Name() credential.Provider
	Complete(ctx context.Context, apiKey string, req CompletionRequest) (*CompletionResponse, error)
}

// Image is a rendered visual artifact.
type Image struct {
	Bytes       []byte
	ContentType string
}

// ImageProvider renders images. There is a single image vendor, so no
// fallback chain applies.
type ImageProvider interface {
	Name() credential.Provider
	Render(ctx context.Context, apiKey string, prompt string) (*Image, error)
}

// KeySource is the slice of the credential vault the router depends on.
type KeySource interface {
	Keys(ctx context.Context, workspaceID uuid.UUID) (map[credential.Provider]string, error)
	Invalidate(ctx context.Context, workspaceID uuid.UUID, provider credential.Provider) error
	TouchLastUsed(ctx context.Context, workspaceID uuid.UUID, provider credential.Provider)
}

// Meta describes how a successful call was served, for usage bookkeeping
// and for telling callers whether BYOK was in play.
type Meta struct {
	Provider         credential.Provider
	Model            string
	UsedWorkspaceKey bool
	TokensIn         int
	TokensOut        int
}
