// Package config resolves the effective configuration for one invocation and
// persists the file-backed portion as TOML.
package config

import (
	"os"
	"strings"

	"github.com/danielhostetler/baishify/internal/domain"
)

// Env looks up an environment variable. Injected so resolution stays a pure
// function of its inputs and tests never mutate process state.
type Env func(key string) (string, bool)

// EnvFromOS adapts the process environment.
func EnvFromOS() Env {
	return os.LookupEnv
}

// EnvFromMap adapts a fixed map (test helper, also used by doctor snapshots).
func EnvFromMap(m map[string]string) Env {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

// Flags carries the CLI flag values relevant to resolution. Zero values mean
// the flag was not passed.
type Flags struct {
	Provider   string
	Model      string
	BaseURL    string
	APIKey     string
	Explain    bool
	JSON       bool
	Plain      bool
	NoFun      bool
	OutputFile string
}

// Resolve merges flags, environment and file config into one EffectiveConfig,
// applying precedence flag > env > file > built-in default per setting and
// recording each value's origin. It is a pure function: no I/O, no process
// environment access beyond the injected Env.
//
// Provider selection falls back to credential detection when no explicit
// source names one: if any supported provider has a key in the environment,
// the first such provider (in menu order) is selected with origin "env".
// With no explicit source and no detected credential the resolution fails
// with ConfigError kind NoProviderSelected; a selected provider without any
// resolvable key fails with MissingKey before any provider call is attempted.
func Resolve(flags Flags, env Env, file *domain.FileConfig) (domain.EffectiveConfig, error) {
	provider, provOrigin, err := resolveProvider(flags, env, file)
	if err != nil {
		return domain.EffectiveConfig{}, err
	}

	model, modelOrigin := resolveSetting(
		flags.Model,
		chainLookup(env, append([]string{"BAISHIFY_MODEL"}, provider.ModelEnvVars()...)),
		fileValue(file, func(f *domain.FileConfig) string { return f.Model }),
		provider.DefaultModel(),
	)

	baseURL, baseURLOrigin := resolveSetting(
		flags.BaseURL,
		chainLookup(env, append([]string{"BAISHIFY_BASE_URL"}, provider.BaseURLEnvVars()...)),
		fileValue(file, func(f *domain.FileConfig) string { return f.BaseURL }),
		provider.DefaultBaseURL(),
	)

	apiKey, keyOrigin := resolveSetting(
		flags.APIKey,
		chainLookup(env, provider.KeyEnvVars()),
		fileValue(file, func(f *domain.FileConfig) string { return f.APIKey }),
		"",
	)
	if strings.TrimSpace(apiKey) == "" {
		return domain.EffectiveConfig{}, &domain.ConfigError{
			Kind:     domain.ConfigMissingKey,
			Provider: provider,
			Hint:     "run `b setup` or export " + provider.KeyEnvVars()[0],
		}
	}

	noFun := flags.NoFun
	if !noFun {
		if v, ok := env("B_FUN"); ok && v == "0" {
			noFun = true
		}
	}
	if !noFun && file != nil && file.NoFun != nil {
		noFun = *file.NoFun
	}

	return domain.EffectiveConfig{
		Provider: provider,
		Model:    model,
		BaseURL:  strings.TrimRight(baseURL, "/"),
		APIKey:   apiKey,
		Origins: domain.FieldOrigins{
			Provider: provOrigin,
			Model:    modelOrigin,
			BaseURL:  baseURLOrigin,
			APIKey:   keyOrigin,
		},
		Explain:    flags.Explain,
		JSON:       flags.JSON,
		Plain:      flags.Plain,
		NoFun:      noFun,
		OutputFile: flags.OutputFile,
	}, nil
}

func resolveProvider(flags Flags, env Env, file *domain.FileConfig) (domain.Provider, domain.Origin, error) {
	if flags.Provider != "" {
		p, ok := domain.ParseProvider(flags.Provider)
		if !ok {
			return "", "", &domain.ConfigError{
				Kind: domain.ConfigNoProviderSelected,
				Hint: "unsupported provider `" + flags.Provider + "` (use: openai, anthropic, openrouter, vercel)",
			}
		}
		return p, domain.OriginFlag, nil
	}
	if v, ok := env("BAISHIFY_PROVIDER"); ok {
		if p, ok := domain.ParseProvider(v); ok {
			return p, domain.OriginEnv, nil
		}
	}
	if file != nil && file.Provider != "" {
		if p, ok := domain.ParseProvider(file.Provider); ok {
			return p, domain.OriginFile, nil
		}
	}
	for _, cred := range DetectCredentials(env) {
		if cred.Present() {
			return cred.Provider, domain.OriginEnv, nil
		}
	}
	return "", "", &domain.ConfigError{
		Kind: domain.ConfigNoProviderSelected,
		Hint: "run `b setup` or pass --provider",
	}
}

// resolveSetting applies the flag > env > file > default precedence for one
// setting and reports where the winning value came from.
func resolveSetting(flagVal string, envVal string, fileVal string, def string) (string, domain.Origin) {
	if flagVal != "" {
		return flagVal, domain.OriginFlag
	}
	if envVal != "" {
		return envVal, domain.OriginEnv
	}
	if fileVal != "" {
		return fileVal, domain.OriginFile
	}
	return def, domain.OriginDefault
}

func chainLookup(env Env, keys []string) string {
	for _, key := range keys {
		if v, ok := env(key); ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func fileValue(file *domain.FileConfig, pick func(*domain.FileConfig) string) string {
	if file == nil {
		return ""
	}
	return pick(file)
}

// DetectCredentials scans the environment for each supported provider's key
// variables and reports, per provider, which variable holds a usable key
// (or "absent"). The user never has to retype a key already present.
func DetectCredentials(env Env) []domain.ProviderCredential {
	creds := make([]domain.ProviderCredential, 0, 4)
	for _, p := range domain.Providers() {
		source := domain.CredentialAbsent
		for _, name := range p.KeyEnvVars() {
			if v, ok := env(name); ok && strings.TrimSpace(v) != "" {
				source = name
				break
			}
		}
		creds = append(creds, domain.ProviderCredential{Provider: p, Source: source})
	}
	return creds
}

// DetectedKey returns the key value detected for the provider, if any.
func DetectedKey(env Env, p domain.Provider) (string, bool) {
	for _, name := range p.KeyEnvVars() {
		if v, ok := env(name); ok && strings.TrimSpace(v) != "" {
			return v, true
		}
	}
	return "", false
}
