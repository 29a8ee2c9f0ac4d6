package providers

import (
	"aibot-backend/internal/models"
	"os"
)

// CredentialStore answers whether a vendor credential is configured and
// hands the secret to the provider implementation. The registry only
// checks presence; it never inspects the secret itself.
type CredentialStore interface {
	Has(kind models.ProviderKind) bool
	Get(kind models.ProviderKind) string
}

var credentialEnvVars = map[models.ProviderKind]string{
	models.ProviderOpenAI:    "OPENAI_API_KEY",
	models.ProviderAnthropic: "ANTHROPIC_API_KEY",
	models.ProviderGoogle:    "GEMINI_API_KEY",
	models.ProviderDeepSeek:  "DEEPSEEK_API_KEY",
}

// EnvCredentialStore reads vendor keys from the environment on every
// call, so a key exported mid-process takes effect on the next dispatch.
type EnvCredentialStore struct{}

func (EnvCredentialStore) Get(kind models.ProviderKind) string {
	envVar, ok := credentialEnvVars[kind]
	if !ok {
		return ""
	}
	return os.Getenv(envVar)
}

func (s EnvCredentialStore) Has(kind models.ProviderKind) bool {
	return s.Get(kind) != ""
}

// StaticCredentialStore holds fixed secrets. Used by tests and by
// deployments that load keys from a secrets manager at startup.
type StaticCredentialStore map[models.ProviderKind]string

func (s StaticCredentialStore) Get(kind models.ProviderKind) string { return s[kind] }

func (s StaticCredentialStore) Has(kind models.ProviderKind) bool { return s[kind] != "" }
