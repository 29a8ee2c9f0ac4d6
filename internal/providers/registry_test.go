package providers

import (
	"aibot-backend/internal/models"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testDescriptors() []models.ModelDescriptor {
	return []models.ModelDescriptor{
		{ModelID: "gpt-4", ProviderKind: models.ProviderOpenAI, Category: models.CategoryText, TokenCost: 1000, Status: models.DescriptorStatusOpen},
		{ModelID: "claude-sonnet", ProviderKind: models.ProviderAnthropic, Category: models.CategoryText, TokenCost: 800, Status: models.DescriptorStatusOpen},
		{ModelID: "mock-video", ProviderKind: models.ProviderMock, Category: models.CategoryVideoGen, TokenCost: 10000, Status: models.DescriptorStatusOpen},
	}
}

func TestResolve_UnknownModel(t *testing.T) {
	r := NewRegistry(StaticCredentialStore{}, testDescriptors(), true)

	_, _, err := r.Resolve("no-such-model", false)
	assert.ErrorIs(t, err, ErrUnknownModel)
}

func TestResolve_MockFallbackWhenCredentialMissing(t *testing.T) {
	r := NewRegistry(StaticCredentialStore{}, testDescriptors(), true)

	p, desc, err := r.Resolve("gpt-4", false)
	assert.NoError(t, err)
	assert.Equal(t, models.ProviderMock, p.Kind())
	assert.Equal(t, "gpt-4", desc.ModelID)
	assert.Equal(t, int64(1000), desc.TokenCost)
}

func TestResolve_RealProviderWhenCredentialPresent(t *testing.T) {
	creds := StaticCredentialStore{models.ProviderOpenAI: "sk-test"}
	r := NewRegistry(creds, testDescriptors(), true)

	p, _, err := r.Resolve("gpt-4", false)
	assert.NoError(t, err)
	assert.Equal(t, models.ProviderOpenAI, p.Kind())

	// The other vendor still has no key and falls back.
	p, _, err = r.Resolve("claude-sonnet", false)
	assert.NoError(t, err)
	assert.Equal(t, models.ProviderMock, p.Kind())
}

func TestResolve_UseMockOverride(t *testing.T) {
	creds := StaticCredentialStore{models.ProviderOpenAI: "sk-test"}
	r := NewRegistry(creds, testDescriptors(), true)

	p, _, err := r.Resolve("gpt-4", true)
	assert.NoError(t, err)
	assert.Equal(t, models.ProviderMock, p.Kind())
}

func TestResolve_FallbackDisabled(t *testing.T) {
	r := NewRegistry(StaticCredentialStore{}, testDescriptors(), false)

	// Without fallback the real provider is returned even without a key;
	// the credential check happens inside Generate.
	p, _, err := r.Resolve("gpt-4", false)
	assert.NoError(t, err)
	assert.Equal(t, models.ProviderOpenAI, p.Kind())
}

func TestResolve_MockDescriptorAlwaysMock(t *testing.T) {
	creds := StaticCredentialStore{models.ProviderOpenAI: "sk-test"}
	r := NewRegistry(creds, testDescriptors(), false)

	p, _, err := r.Resolve("mock-video", false)
	assert.NoError(t, err)
	assert.Equal(t, models.ProviderMock, p.Kind())
}

func TestReload_SwapsSnapshot(t *testing.T) {
	r := NewRegistry(StaticCredentialStore{}, testDescriptors(), true)

	r.Reload([]models.ModelDescriptor{
		{ModelID: "gemini-flash", ProviderKind: models.ProviderGoogle, Category: models.CategoryText, TokenCost: 150, Status: models.DescriptorStatusOpen},
	})

	_, _, err := r.Resolve("gpt-4", false)
	assert.ErrorIs(t, err, ErrUnknownModel)

	_, ok := r.Descriptor("gemini-flash")
	assert.True(t, ok)
}
