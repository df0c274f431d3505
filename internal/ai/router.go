package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"contentpilot-backend/internal/domains/credential"
	"contentpilot-backend/internal/shared/apperror"
)

// Router resolves a provider+model per task, executes the call with the
// workspace's key (or the system default), validates output against the
// task schema and walks the fallback chain on transport failure.
//
// Side effects are limited to the network call and credential bookkeeping;
// persisting results is the caller's job.
type Router struct {
	providers map[credential.Provider]Provider
	image     ImageProvider
	keys      KeySource
	defaults  map[credential.Provider]string
	timeout   time.Duration
}

// Defaults are the system-level provider keys, used when a workspace has
// no valid BYOK entry for the provider.
type Defaults struct {
	OpenAIKey    string
	AnthropicKey string
	GeminiKey    string
}

func NewRouter(keys KeySource, defaults Defaults, timeout time.Duration) *Router {
	openaiClient := NewOpenAIClient()

	return &Router{
		providers: map[credential.Provider]Provider{
			credential.ProviderOpenAI:    openaiClient,
			credential.ProviderAnthropic: NewAnthropicClient(),
			credential.ProviderGemini:    NewGeminiClient(),
		},
		image: openaiClient,
		keys:  keys,
		defaults: map[credential.Provider]string{
			credential.ProviderOpenAI:    defaults.OpenAIKey,
			credential.ProviderAnthropic: defaults.AnthropicKey,
			credential.ProviderGemini:    defaults.GeminiKey,
		},
		timeout: timeout,
	}
}

// GenerateStructured executes task with the given prompts, decoding and
// validating the response into out.
//
// Transport and provider errors advance the fallback chain with the same
// prompt. Validation failures do NOT: retrying identical input against a
// non-deterministic model may or may not help, so they surface immediately
// as MalformedOutput and call sites decide whether to issue a fresh call.
func (r *Router) GenerateStructured(ctx context.Context, task Task, out Schema, systemPrompt, userPrompt string, workspaceID uuid.UUID) (*Meta, error) {
	routes, ok := taskRoutes[task]
	if !ok {
		return nil, apperror.Validation(fmt.Sprintf("unknown task %q", task))
	}

	wsKeys, err := r.keys.Keys(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	var lastErr error
	attempted := false

	for _, rt := range routes {
		provider, ok := r.providers[rt.provider]
		if !ok {
			continue
		}

		req := CompletionRequest{
			Model:       rt.model,
			System:      systemPrompt,
			Prompt:      userPrompt,
			MaxTokens:   4096,
			Temperature: 0.7,
			JSONMode:    rt.jsonMode,
		}

		resp, meta, err := r.attempt(ctx, provider, req, wsKeys[rt.provider], workspaceID)
		if err != nil {
			if errors.Is(err, errNoKey) {
				continue
			}
			attempted = true
			lastErr = err
			log.Warn().Err(err).
				Str("task", string(task)).
				Str("provider", string(rt.provider)).
				Msg("provider call failed, trying next in chain")
			continue
		}
		attempted = true

		if decodeErr := decodeInto(resp.Text, out); decodeErr != nil {
			// Raw payload stays server-side for diagnosis.
			log.Error().Err(decodeErr).
				Str("task", string(task)).
				Str("provider", string(rt.provider)).
				Str("raw_response", resp.Text).
				Msg("AI response failed schema validation")
			return nil, apperror.MalformedOutput(decodeErr)
		}

		if meta.UsedWorkspaceKey {
			r.keys.TouchLastUsed(ctx, workspaceID, rt.provider)
		}
		meta.Model = rt.model
		meta.TokensIn = resp.TokensIn
		meta.TokensOut = resp.TokensOut
		return meta, nil
	}

	if !attempted {
		return nil, apperror.MissingCredential(string(routes[0].provider))
	}
	return nil, apperror.Provider(lastErr)
}

// GenerateImage renders one image. Same credential resolution, no fallback
// chain (single image vendor).
func (r *Router) GenerateImage(ctx context.Context, prompt string, workspaceID uuid.UUID) (*Image, *Meta, error) {
	wsKeys, err := r.keys.Keys(ctx, workspaceID)
	if err != nil {
		return nil, nil, err
	}

	name := r.image.Name()
	apiKey, usedWorkspaceKey := r.resolveKey(wsKeys[name], name)
	if apiKey == "" {
		return nil, nil, apperror.MissingCredential(string(name))
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	img, err := r.image.Render(callCtx, apiKey, prompt)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) && usedWorkspaceKey {
			r.invalidate(ctx, workspaceID, name)
			// Invalid workspace key falls through to the system default.
			if def := r.defaults[name]; def != "" {
				img, err = r.image.Render(callCtx, def, prompt)
				if err == nil {
					return img, &Meta{Provider: name, Model: imageModel}, nil
				}
			}
		}
		return nil, nil, apperror.Provider(err)
	}

	if usedWorkspaceKey {
		r.keys.TouchLastUsed(ctx, workspaceID, name)
	}
	return img, &Meta{Provider: name, Model: imageModel, UsedWorkspaceKey: usedWorkspaceKey}, nil
}

// errNoKey marks a route skipped because neither the workspace nor the
// system has a key for its provider. Distinct from provider errors: a
// skipped route does not count as an attempt.
var errNoKey = errors.New("no key available")

// attempt runs one provider call, preferring the workspace key and falling
// back to the system default when the workspace key is absent or rejected.
func (r *Router) attempt(ctx context.Context, provider Provider, req CompletionRequest, wsKey string, workspaceID uuid.UUID) (*CompletionResponse, *Meta, error) {
	name := provider.Name()
	apiKey, usedWorkspaceKey := r.resolveKey(wsKey, name)
	if apiKey == "" {
		return nil, nil, errNoKey
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	resp, err := provider.Complete(callCtx, apiKey, req)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) && usedWorkspaceKey {
			// The stored key no longer works: flag it (not delete - audit
			// history stays) and retry this provider on the default key.
			r.invalidate(ctx, workspaceID, name)

			if def := r.defaults[name]; def != "" {
				resp, err = provider.Complete(callCtx, def, req)
				if err == nil {
					return resp, &Meta{Provider: name, UsedWorkspaceKey: false}, nil
				}
			}
		}
		return nil, nil, err
	}

	return resp, &Meta{Provider: name, UsedWorkspaceKey: usedWorkspaceKey}, nil
}

func (r *Router) resolveKey(wsKey string, provider credential.Provider) (string, bool) {
	if wsKey != "" {
		return wsKey, true
	}
	return r.defaults[provider], false
}

func (r *Router) invalidate(ctx context.Context, workspaceID uuid.UUID, provider credential.Provider) {
	if err := r.keys.Invalidate(ctx, workspaceID, provider); err != nil {
		log.Warn().Err(err).Str("provider", string(provider)).Msg("credential invalidation failed")
	}
}
