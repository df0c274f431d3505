package ai

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contentpilot-backend/internal/domains/credential"
	"contentpilot-backend/internal/shared/apperror"
)

// scriptedProvider returns canned responses/errors in order and counts
// calls.
type scriptedProvider struct {
	name    credential.Provider
	mu      sync.Mutex
	calls   int
	keys    []string // api keys seen, in call order
	results []scriptedResult
}

type scriptedResult struct {
	text string
	err  error
}

func (p *scriptedProvider) Name() credential.Provider { return p.name }

func (p *scriptedProvider) Complete(_ context.Context, apiKey string, _ CompletionRequest) (*CompletionResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx := p.calls
	p.calls++
	p.keys = append(p.keys, apiKey)

	if idx >= len(p.results) {
		return nil, fmt.Errorf("unexpected call %d", idx)
	}
	r := p.results[idx]
	if r.err != nil {
		return nil, r.err
	}
	return &CompletionResponse{Text: r.text, TokensIn: 100, TokensOut: 50}, nil
}

// fakeKeys is an in-memory KeySource.
type fakeKeys struct {
	mu          sync.Mutex
	keys        map[uuid.UUID]map[credential.Provider]string
	invalidated []credential.Provider
}

func newFakeKeys() *fakeKeys {
	return &fakeKeys{keys: make(map[uuid.UUID]map[credential.Provider]string)}
}

func (f *fakeKeys) Keys(_ context.Context, ws uuid.UUID) (map[credential.Provider]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[credential.Provider]string)
	for p, k := range f.keys[ws] {
		out[p] = k
	}
	return out, nil
}

func (f *fakeKeys) Invalidate(_ context.Context, ws uuid.UUID, p credential.Provider) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, p)
	delete(f.keys[ws], p)
	return nil
}

func (f *fakeKeys) TouchLastUsed(context.Context, uuid.UUID, credential.Provider) {}

func newTestRouter(keys KeySource, defaults Defaults, providers ...*scriptedProvider) *Router {
	pm := make(map[credential.Provider]Provider)
	for _, p := range providers {
		pm[p.name] = p
	}
	return &Router{
		providers: pm,
		keys:      keys,
		defaults: map[credential.Provider]string{
			credential.ProviderOpenAI:    defaults.OpenAIKey,
			credential.ProviderAnthropic: defaults.AnthropicKey,
			credential.ProviderGemini:    defaults.GeminiKey,
		},
		timeout: 5 * time.Second,
	}
}

// TaskPostGeneration routes openai -> anthropic (see tasks.go).

func TestGenerateStructuredSuccessWithDefaultKey(t *testing.T) {
	openaiFake := &scriptedProvider{
		name:    credential.ProviderOpenAI,
		results: []scriptedResult{{text: `{"ideas": ["a"]}`}},
	}
	router := newTestRouter(newFakeKeys(), Defaults{OpenAIKey: "sys-openai"}, openaiFake)

	var out ideaList
	meta, err := router.GenerateStructured(context.Background(), TaskPostGeneration, &out, "sys", "user", uuid.New())
	require.NoError(t, err)

	assert.Equal(t, []string{"a"}, out.Ideas)
	assert.Equal(t, credential.ProviderOpenAI, meta.Provider)
	// Workspace had no key: the system default served the call and the
	// caller can tell.
	assert.False(t, meta.UsedWorkspaceKey)
	assert.Equal(t, []string{"sys-openai"}, openaiFake.keys)
}

func TestGenerateStructuredPrefersWorkspaceKey(t *testing.T) {
	openaiFake := &scriptedProvider{
		name:    credential.ProviderOpenAI,
		results: []scriptedResult{{text: `{"ideas": ["a"]}`}},
	}
	keys := newFakeKeys()
	ws := uuid.New()
	keys.keys[ws] = map[credential.Provider]string{credential.ProviderOpenAI: "ws-openai"}

	router := newTestRouter(keys, Defaults{OpenAIKey: "sys-openai"}, openaiFake)

	var out ideaList
	meta, err := router.GenerateStructured(context.Background(), TaskPostGeneration, &out, "sys", "user", ws)
	require.NoError(t, err)

	assert.True(t, meta.UsedWorkspaceKey)
	assert.Equal(t, []string{"ws-openai"}, openaiFake.keys)
}

func TestTransportErrorFallsBackInChainOrder(t *testing.T) {
	openaiFake := &scriptedProvider{
		name:    credential.ProviderOpenAI,
		results: []scriptedResult{{err: errors.New("connection reset")}},
	}
	anthropicFake := &scriptedProvider{
		name:    credential.ProviderAnthropic,
		results: []scriptedResult{{text: `{"ideas": ["b"]}`}},
	}
	router := newTestRouter(newFakeKeys(), Defaults{OpenAIKey: "sys-o", AnthropicKey: "sys-a"}, openaiFake, anthropicFake)

	var out ideaList
	meta, err := router.GenerateStructured(context.Background(), TaskPostGeneration, &out, "sys", "user", uuid.New())
	require.NoError(t, err)

	assert.Equal(t, credential.ProviderAnthropic, meta.Provider)
	assert.Equal(t, []string{"b"}, out.Ideas)
	assert.Equal(t, 1, openaiFake.calls)
	assert.Equal(t, 1, anthropicFake.calls)
}

func TestMalformedOutputDoesNotRetrySameProvider(t *testing.T) {
	openaiFake := &scriptedProvider{
		name: credential.ProviderOpenAI,
		// Only one result scripted: a second call would error loudly.
		results: []scriptedResult{{text: `not json`}},
	}
	anthropicFake := &scriptedProvider{
		name:    credential.ProviderAnthropic,
		results: []scriptedResult{{text: `{"ideas": ["never used"]}`}},
	}
	router := newTestRouter(newFakeKeys(), Defaults{OpenAIKey: "sys-o", AnthropicKey: "sys-a"}, openaiFake, anthropicFake)

	var out ideaList
	_, err := router.GenerateStructured(context.Background(), TaskPostGeneration, &out, "sys", "user", uuid.New())
	require.Error(t, err)

	// Validation failure is terminal for this call: no same-provider retry,
	// no chain advance.
	assert.Equal(t, apperror.KindMalformedOutput, apperror.KindOf(err))
	assert.Equal(t, 1, openaiFake.calls)
	assert.Equal(t, 0, anthropicFake.calls)
}

func TestEmptyResponseIsMalformedOutput(t *testing.T) {
	openaiFake := &scriptedProvider{
		name:    credential.ProviderOpenAI,
		results: []scriptedResult{{text: ""}},
	}
	router := newTestRouter(newFakeKeys(), Defaults{OpenAIKey: "sys-o"}, openaiFake)

	var out ideaList
	_, err := router.GenerateStructured(context.Background(), TaskPostGeneration, &out, "sys", "user", uuid.New())
	require.Error(t, err)
	assert.Equal(t, apperror.KindMalformedOutput, apperror.KindOf(err))
}

func TestExhaustedChainIsProviderError(t *testing.T) {
	openaiFake := &scriptedProvider{
		name:    credential.ProviderOpenAI,
		results: []scriptedResult{{err: errors.New("timeout")}},
	}
	anthropicFake := &scriptedProvider{
		name:    credential.ProviderAnthropic,
		results: []scriptedResult{{err: errors.New("503")}},
	}
	router := newTestRouter(newFakeKeys(), Defaults{OpenAIKey: "sys-o", AnthropicKey: "sys-a"}, openaiFake, anthropicFake)

	var out ideaList
	_, err := router.GenerateStructured(context.Background(), TaskPostGeneration, &out, "sys", "user", uuid.New())
	require.Error(t, err)
	assert.Equal(t, apperror.KindProvider, apperror.KindOf(err))
}

func TestNoKeyAnywhereIsMissingCredential(t *testing.T) {
	openaiFake := &scriptedProvider{name: credential.ProviderOpenAI}
	anthropicFake := &scriptedProvider{name: credential.ProviderAnthropic}
	router := newTestRouter(newFakeKeys(), Defaults{}, openaiFake, anthropicFake)

	var out ideaList
	_, err := router.GenerateStructured(context.Background(), TaskPostGeneration, &out, "sys", "user", uuid.New())
	require.Error(t, err)

	assert.Equal(t, apperror.KindMissingCredential, apperror.KindOf(err))
	// The message names the provider to configure.
	assert.Contains(t, apperror.UserMessage(err), "openai")
	assert.Equal(t, 0, openaiFake.calls)
}

func TestAuthErrorInvalidatesWorkspaceKeyAndUsesDefault(t *testing.T) {
	openaiFake := &scriptedProvider{
		name: credential.ProviderOpenAI,
		results: []scriptedResult{
			{err: fmt.Errorf("401: %w", ErrUnauthorized)},
			{text: `{"ideas": ["via default"]}`},
		},
	}
	keys := newFakeKeys()
	ws := uuid.New()
	keys.keys[ws] = map[credential.Provider]string{credential.ProviderOpenAI: "ws-stale-key"}

	router := newTestRouter(keys, Defaults{OpenAIKey: "sys-openai"}, openaiFake)

	var out ideaList
	meta, err := router.GenerateStructured(context.Background(), TaskPostGeneration, &out, "sys", "user", ws)
	require.NoError(t, err)

	assert.Equal(t, []string{"via default"}, out.Ideas)
	assert.False(t, meta.UsedWorkspaceKey)
	assert.Equal(t, []string{"ws-stale-key", "sys-openai"}, openaiFake.keys)
	// The stale key was flagged, not deleted by the router.
	assert.Equal(t, []credential.Provider{credential.ProviderOpenAI}, keys.invalidated)
}

func TestUnknownTaskRejectedBeforeAnyCall(t *testing.T) {
	router := newTestRouter(newFakeKeys(), Defaults{OpenAIKey: "k"})

	var out ideaList
	_, err := router.GenerateStructured(context.Background(), Task("nope"), &out, "s", "u", uuid.New())
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}
