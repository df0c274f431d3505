package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"contentpilot-backend/internal/domains/credential"
	"contentpilot-backend/internal/shared/apperror"
)

// Vault stores and serves per-workspace provider API keys.
type Vault interface {
	// Keys returns the decrypted, currently-valid keys for a workspace.
	// A row that fails to decrypt is logged and omitted; it never aborts
	// retrieval of the others.
	Keys(ctx context.Context, workspaceID uuid.UUID) (map[credential.Provider]string, error)

	// Set encrypts and upserts one key, then evicts the workspace cache
	// entry before returning.
	Set(ctx context.Context, workspaceID uuid.UUID, provider credential.Provider, plaintext string) (*credential.Credential, error)

	// Delete removes the key. Cache evicted before returning.
	Delete(ctx context.Context, workspaceID uuid.UUID, provider credential.Provider) error

	// Invalidate marks the key unusable without deleting audit history.
	// Called when a provider call fails with an authentication error.
	// Cache evicted before returning.
	Invalidate(ctx context.Context, workspaceID uuid.UUID, provider credential.Provider) error

	// List returns hint-level info for every supported provider.
	List(ctx context.Context, workspaceID uuid.UUID) ([]credential.KeyInfo, error)

	// TouchLastUsed stamps usage bookkeeping. Best-effort.
	TouchLastUsed(ctx context.Context, workspaceID uuid.UUID, provider credential.Provider)
}

type vaultService struct {
	repo   credential.Repository
	cipher *credential.Cipher
	cache  *credential.Cache
}

func NewVaultService(repo credential.Repository, cipher *credential.Cipher, cache *credential.Cache) Vault {
	return &vaultService{
		repo:   repo,
		cipher: cipher,
		cache:  cache,
	}
}

func (s *vaultService) Keys(ctx context.Context, workspaceID uuid.UUID) (map[credential.Provider]string, error) {
	if keys, ok := s.cache.Get(workspaceID); ok {
		return keys, nil
	}

	rows, err := s.repo.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("load credentials: %w", err))
	}

	keys := make(map[credential.Provider]string)
	for _, row := range rows {
		if !row.IsValid {
			continue
		}

		plaintext, err := s.cipher.Decrypt(row.Ciphertext)
		if err != nil {
			// One bad row must not take the rest down. Log and omit.
			log.Error().Err(err).
				Str("workspace_id", workspaceID.String()).
				Str("provider", string(row.Provider)).
				Msg("credential decrypt failed, omitting key")
			continue
		}
		keys[row.Provider] = plaintext
	}

	s.cache.Put(workspaceID, keys)
	return keys, nil
}

func (s *vaultService) Set(ctx context.Context, workspaceID uuid.UUID, provider credential.Provider, plaintext string) (*credential.Credential, error) {
	if !provider.Valid() {
		return nil, apperror.Validation(fmt.Sprintf("unknown provider %q", provider))
	}
	if plaintext == "" {
		return nil, apperror.Validation("api key must not be empty")
	}

	ciphertext, err := s.cipher.Encrypt(plaintext)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("encrypt credential: %w", err))
	}

	cred := &credential.Credential{
		WorkspaceID: workspaceID,
		Provider:    provider,
		Ciphertext:  ciphertext,
		KeyHint:     credential.Hint(plaintext),
	}

	if err := s.repo.Upsert(ctx, cred); err != nil {
		return nil, apperror.Internal(err)
	}

	// Synchronous eviction: a Keys call issued after Set returns must see
	// the new key even inside the TTL.
	s.cache.Evict(workspaceID)
	return cred, nil
}

func (s *vaultService) Delete(ctx context.Context, workspaceID uuid.UUID, provider credential.Provider) error {
	if !provider.Valid() {
		return apperror.Validation(fmt.Sprintf("unknown provider %q", provider))
	}

	if err := s.repo.Delete(ctx, workspaceID, provider); err != nil {
		if err == credential.ErrNotFound {
			return apperror.NotFound("no key stored for this provider")
		}
		return apperror.Internal(err)
	}

	s.cache.Evict(workspaceID)
	return nil
}

func (s *vaultService) Invalidate(ctx context.Context, workspaceID uuid.UUID, provider credential.Provider) error {
	if err := s.repo.Invalidate(ctx, workspaceID, provider); err != nil {
		if err == credential.ErrNotFound {
			return apperror.NotFound("no key stored for this provider")
		}
		return apperror.Internal(err)
	}

	s.cache.Evict(workspaceID)
	return nil
}

func (s *vaultService) List(ctx context.Context, workspaceID uuid.UUID) ([]credential.KeyInfo, error) {
	rows, err := s.repo.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	byProvider := make(map[credential.Provider]credential.Credential, len(rows))
	for _, row := range rows {
		byProvider[row.Provider] = row
	}

	infos := make([]credential.KeyInfo, 0, len(credential.AllProviders))
	for _, p := range credential.AllProviders {
		info := credential.KeyInfo{Provider: p}
		if row, ok := byProvider[p]; ok {
			info.Configured = true
			info.KeyHint = row.KeyHint
			info.IsValid = row.IsValid
		}
		infos = append(infos, info)
	}

	return infos, nil
}

func (s *vaultService) TouchLastUsed(ctx context.Context, workspaceID uuid.UUID, provider credential.Provider) {
	if err := s.repo.TouchLastUsed(ctx, workspaceID, provider); err != nil {
		// Bookkeeping only; never affects the primary result.
		log.Warn().Err(err).Str("provider", string(provider)).Msg("touch last used failed")
	}
}
