package credential

import "errors"

var (
	ErrUnknownProvider = errors.New("unknown provider")
	ErrNotFound        = errors.New("credential not found")
	// ErrCorruptCiphertext means decryption failed closed: tag mismatch or
	// malformed layout. Corrupted plaintext is never returned silently.
	ErrCorruptCiphertext = errors.New("corrupt ciphertext")
)
