package domain

import (
	"errors"
	"fmt"
)

// ConfigErrorKind distinguishes configuration failures.
type ConfigErrorKind string

const (
	ConfigNoProviderSelected ConfigErrorKind = "no_provider_selected"
	ConfigMissingKey         ConfigErrorKind = "missing_key"
	ConfigFileUnreadable     ConfigErrorKind = "file_unreadable"
)

// ConfigError is a resolution failure, always surfaced with a remediation
// hint and never silently defaulted.
type ConfigError struct {
	Kind     ConfigErrorKind
	Provider Provider
	Hint     string
	Err      error
}

func (e *ConfigError) Error() string {
	var msg string
	switch e.Kind {
	case ConfigNoProviderSelected:
		msg = "no provider selected"
	case ConfigMissingKey:
		msg = fmt.Sprintf("no API key found for provider %s", e.Provider)
	case ConfigFileUnreadable:
		msg = "config file unreadable"
	default:
		msg = string(e.Kind)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ProviderErrorKind distinguishes gateway failures.
type ProviderErrorKind string

const (
	ProviderErrNetwork         ProviderErrorKind = "network"
	ProviderErrAuth            ProviderErrorKind = "auth"
	ProviderErrRateLimited     ProviderErrorKind = "rate_limited"
	ProviderErrInvalidResponse ProviderErrorKind = "invalid_response"
)

// ProviderError is a failed provider call, tagged with the provider name so
// the category can be surfaced verbatim. The core never retries.
type ProviderError struct {
	Kind     ProviderErrorKind
	Provider Provider
	Err      error
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s: %s error", e.Provider, e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProviderError) Unwrap() error { return e.Err }

// InstallError is an rc file read/write failure, carrying the path and the
// underlying cause. Installation failure is non-fatal to setup as a whole.
type InstallError struct {
	Path string
	Err  error
}

func (e *InstallError) Error() string {
	return fmt.Sprintf("shell integration: %s: %v", e.Path, e.Err)
}

func (e *InstallError) Unwrap() error { return e.Err }

// ErrEmptyPrompt is returned when no prompt could be read from arguments or
// stdin.
var ErrEmptyPrompt = errors.New("missing prompt")

// ExitCodeFor maps an error (or nil) to the process exit code contract.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitOK
	}
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return ExitConfig
	}
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return ExitProvider
	}
	return ExitFailure
}
