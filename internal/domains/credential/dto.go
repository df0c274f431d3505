package credential

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// SetKeyRequest sets or replaces one provider key for a workspace.
type SetKeyRequest struct {
	APIKey string `json:"api_key" binding:"required"`
}

func (r SetKeyRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.APIKey,
			validation.Required.Error("api_key is required"),
			validation.Length(8, 512).Error("api_key must be 8-512 characters"),
		),
	)
}

// KeyInfo is the list view of a stored key. Plaintext never leaves the
// service layer.
type KeyInfo struct {
	Provider   Provider `json:"provider"`
	KeyHint    string   `json:"key_hint"`
	IsValid    bool     `json:"is_valid"`
	Configured bool     `json:"configured"`
}
