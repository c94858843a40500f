// Package domain defines the core entities and value objects for baishify.
//
// The domain layer is independent of infrastructure concerns: no I/O, no
// process environment, no terminal. Adapters in internal/infrastructure map
// these types onto the outside world.
package domain

// Provider identifies a supported text-generation backend. The set is closed:
// new providers are added by extending this enum and the tables below, not by
// plugin loading.
type Provider string

const (
	ProviderOpenAI     Provider = "openai"
	ProviderAnthropic  Provider = "anthropic"
	ProviderOpenRouter Provider = "openrouter"
	ProviderVercel     Provider = "vercel"
)

// Providers lists every supported provider in selection-menu order.
func Providers() []Provider {
	return []Provider{ProviderOpenAI, ProviderAnthropic, ProviderOpenRouter, ProviderVercel}
}

// ParseProvider maps user-facing spellings onto a Provider.
func ParseProvider(input string) (Provider, bool) {
	switch normalize(input) {
	case "openai":
		return ProviderOpenAI, true
	case "anthropic":
		return ProviderAnthropic, true
	case "openrouter":
		return ProviderOpenRouter, true
	case "vercel", "vercel-ai-gateway", "gateway":
		return ProviderVercel, true
	default:
		return "", false
	}
}

func normalize(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		if c == ' ' || c == '\t' {
			continue
		}
		out = append(out, c)
	}
	return string(out)
}

func (p Provider) String() string { return string(p) }

// DisplayName is the human-facing provider name used in menus and errors.
func (p Provider) DisplayName() string {
	switch p {
	case ProviderOpenAI:
		return "OpenAI"
	case ProviderAnthropic:
		return "Anthropic"
	case ProviderOpenRouter:
		return "OpenRouter"
	case ProviderVercel:
		return "Vercel AI Gateway"
	default:
		return string(p)
	}
}

// DefaultModel returns the built-in model for the provider.
func (p Provider) DefaultModel() string {
	switch p {
	case ProviderAnthropic:
		return "claude-3-5-haiku-latest"
	case ProviderOpenRouter:
		return "openai/gpt-4o-mini"
	case ProviderVercel:
		return "openai/gpt-4o-mini"
	default:
		return "gpt-4o-mini"
	}
}

// DefaultBaseURL returns the built-in API endpoint root for the provider.
func (p Provider) DefaultBaseURL() string {
	switch p {
	case ProviderAnthropic:
		return "https://api.anthropic.com"
	case ProviderOpenRouter:
		return "https://openrouter.ai/api/v1"
	case ProviderVercel:
		return "https://ai-gateway.vercel.sh/v1"
	default:
		return "https://api.openai.com/v1"
	}
}

// KeyEnvVars lists the environment variables that may hold the provider's API
// key, in precedence order. Vercel recognizes two equivalent spellings.
func (p Provider) KeyEnvVars() []string {
	switch p {
	case ProviderAnthropic:
		return []string{"ANTHROPIC_API_KEY"}
	case ProviderOpenRouter:
		return []string{"OPENROUTER_API_KEY"}
	case ProviderVercel:
		return []string{"VERCEL_AI_GATEWAY_API_KEY", "AI_GATEWAY_API_KEY"}
	default:
		return []string{"OPENAI_API_KEY"}
	}
}

// ModelEnvVars lists provider-scoped model override variables, consulted after
// the global BAISHIFY_MODEL.
func (p Provider) ModelEnvVars() []string {
	switch p {
	case ProviderAnthropic:
		return []string{"ANTHROPIC_MODEL"}
	case ProviderOpenRouter:
		return []string{"OPENROUTER_MODEL"}
	case ProviderVercel:
		return []string{"VERCEL_AI_GATEWAY_MODEL"}
	default:
		return []string{"OPENAI_MODEL"}
	}
}

// BaseURLEnvVars lists provider-scoped base URL override variables, consulted
// after the global BAISHIFY_BASE_URL.
func (p Provider) BaseURLEnvVars() []string {
	switch p {
	case ProviderAnthropic:
		return []string{"ANTHROPIC_BASE_URL"}
	case ProviderOpenRouter:
		return []string{"OPENROUTER_BASE_URL"}
	case ProviderVercel:
		return []string{"VERCEL_AI_GATEWAY_BASE_URL", "AI_GATEWAY_BASE_URL"}
	default:
		return []string{"OPENAI_BASE_URL"}
	}
}

// CredentialAbsent marks a ProviderCredential with no usable key in the
// environment.
const CredentialAbsent = "absent"

// ProviderCredential pairs a provider with the environment variable its key
// was detected in, or CredentialAbsent. Built once during detection and
// read-only afterward.
type ProviderCredential struct {
	Provider Provider
	Source   string
}

// Present reports whether a usable key was detected.
func (c ProviderCredential) Present() bool {
	return c.Source != "" && c.Source != CredentialAbsent
}
