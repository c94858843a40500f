package domain

import "strings"

// Origin records which source supplied a resolved setting. Precedence is
// flag > env > file > default; resolution short-circuits at the first present
// source.
type Origin string

const (
	OriginFlag    Origin = "flag"
	OriginEnv     Origin = "env"
	OriginFile    Origin = "file"
	OriginDefault Origin = "default"
)

// FileConfig mirrors ~/.config/baishify/config.toml. Empty strings mean the
// key is absent; NoFun is a pointer so "unset" and "false" stay distinct.
type FileConfig struct {
	Provider string `toml:"provider,omitempty"`
	Model    string `toml:"model,omitempty"`
	BaseURL  string `toml:"base_url,omitempty"`
	APIKey   string `toml:"api_key,omitempty"`
	NoFun    *bool  `toml:"no_fun,omitempty"`
}

// FieldOrigins records the provenance of each resolved setting for
// diagnostics (surfaced by `b doctor`).
type FieldOrigins struct {
	Provider Origin
	Model    Origin
	BaseURL  Origin
	APIKey   Origin
}

// EffectiveConfig is the fully resolved configuration for one invocation.
// It is built once at process entry and never mutated afterward.
type EffectiveConfig struct {
	Provider Provider
	Model    string
	BaseURL  string
	APIKey   string
	Origins  FieldOrigins

	Explain bool
	JSON    bool
	Plain   bool
	NoFun   bool

	// OutputFile, when set, receives the accepted command instead of stdout.
	// The shell wrapper installed by `b init` relies on it.
	OutputFile string
}

// RedactedKey returns the API key safe for display: first and last two
// characters with the middle elided, or "(unset)" when empty.
func (c EffectiveConfig) RedactedKey() string {
	key := strings.TrimSpace(c.APIKey)
	if key == "" {
		return "(unset)"
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "…" + key[len(key)-2:]
}

// ScriptMode reports whether the session must run without an action loop:
// structured or plain output was requested, or either side of the terminal
// is not a TTY.
func (c EffectiveConfig) ScriptMode(stdinTTY, stdoutTTY bool) bool {
	return c.JSON || c.Plain || !stdinTTY || !stdoutTTY
}
