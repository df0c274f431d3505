package credential

import (
	"time"

	"github.com/google/uuid"
)

// Provider identifies a supported AI vendor.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGemini    Provider = "gemini"
)

// AllProviders in display order.
var AllProviders = []Provider{ProviderOpenAI, ProviderAnthropic, ProviderGemini}

func (p Provider) Valid() bool {
	switch p {
	case ProviderOpenAI, ProviderAnthropic, ProviderGemini:
		return true
	}
	return false
}

// Credential is one stored provider key for a workspace. At most one row
// exists per (workspace, provider); writes are upserts. The plaintext key
// never appears here - only its ciphertext and a display hint.
type Credential struct {
	ID          uuid.UUID  `json:"id"`
	WorkspaceID uuid.UUID  `json:"workspace_id"`
	Provider    Provider   `json:"provider"`
	Ciphertext  string     `json:"-"`
	KeyHint     string     `json:"key_hint"` // last 4 chars, non-reversible
	IsValid     bool       `json:"is_valid"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Hint derives the display hint from a plaintext key.
func Hint(plaintext string) string {
	if len(plaintext) <= 4 {
		return plaintext
	}
	return plaintext[len(plaintext)-4:]
}
