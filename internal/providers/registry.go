package providers

import (
	"aibot-backend/internal/models"
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownModel reports a model_id missing from the catalog. Unlike
// vendor failures this is a configuration defect, so it surfaces as an
// error instead of a failed response.
var ErrUnknownModel = errors.New("unknown model")

// Registry maps model IDs to provider implementations. The provider set
// is sealed at construction; the descriptor snapshot can be reloaded
// when the catalog changes.
type Registry struct {
	mu           sync.RWMutex
	descriptors  map[string]models.ModelDescriptor
	providers    map[models.ProviderKind]Provider
	creds        CredentialStore
	mockFallback bool
}

// NewRegistry builds a registry over the given catalog snapshot. When
// mockFallback is true, models whose vendor credential is absent resolve
// to the mock provider instead of failing at call time.
func NewRegistry(creds CredentialStore, descriptors []models.ModelDescriptor, mockFallback bool) *Registry {
	r := &Registry{
		descriptors:  make(map[string]models.ModelDescriptor),
		providers:    make(map[models.ProviderKind]Provider),
		creds:        creds,
		mockFallback: mockFallback,
	}

	r.Register(NewMockProvider())
	r.Register(NewOpenAIProvider(creds))
	r.Register(NewAnthropicProvider(creds))
	r.Register(NewGoogleProvider(creds))
	r.Register(NewDeepSeekProvider(creds))

	r.Reload(descriptors)
	return r
}

// Register binds a provider implementation to its kind.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	r.providers[p.Kind()] = p
	r.mu.Unlock()
}

// Reload replaces the descriptor snapshot.
func (r *Registry) Reload(descriptors []models.ModelDescriptor) {
	snapshot := make(map[string]models.ModelDescriptor, len(descriptors))
	for _, d := range descriptors {
		snapshot[d.ModelID] = d
	}
	r.mu.Lock()
	r.descriptors = snapshot
	r.mu.Unlock()
}

// Descriptor returns the catalog entry for a model ID.
func (r *Registry) Descriptor(modelID string) (models.ModelDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.descriptors[modelID]
	return d, ok
}

// Resolve picks the provider for a model. Routing depends only on the
// descriptor, the use-mock override and current credential presence:
// the override or a missing credential (with fallback enabled) selects
// the mock provider. The only error case is an unknown model ID.
func (r *Registry) Resolve(modelID string, useMock bool) (Provider, *models.ModelDescriptor, error) {
	r.mu.RLock()
	desc, ok := r.descriptors[modelID]
	if !ok {
		r.mu.RUnlock()
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownModel, modelID)
	}

	kind := desc.ProviderKind
	if useMock || kind == models.ProviderMock {
		kind = models.ProviderMock
	} else if r.mockFallback && !r.creds.Has(kind) {
		kind = models.ProviderMock
	}

	p, ok := r.providers[kind]
	r.mu.RUnlock()
	if !ok {
		// Descriptor names a kind nothing is registered for. Same class
		// of defect as an unknown model.
		return nil, nil, fmt.Errorf("%w: %q maps to unregistered provider %q", ErrUnknownModel, modelID, desc.ProviderKind)
	}
	return p, &desc, nil
}
