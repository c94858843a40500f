// Package ports defines the interfaces between the application core and the
// infrastructure adapters.
//
// The session engine and the setup flow depend only on these abstractions;
// concrete implementations (HTTP providers, TOML files, terminals, SQLite)
// live in internal/infrastructure. Tests substitute stubs.
package ports

import (
	"context"

	"github.com/danielhostetler/baishify/internal/domain"
)

// Gateway is the provider boundary. Generate must be cancellable through ctx
// and fail with a *domain.ProviderError carrying a distinguishable kind.
type Gateway interface {
	// Generate turns the request's prompt into a candidate command. The
	// returned result carries no safety assessment; classification is the
	// engine's job.
	Generate(ctx context.Context, req domain.GenerationRequest) (domain.GenerationResult, error)

	// Explain produces a short explanation for an already generated command.
	Explain(ctx context.Context, cfg domain.EffectiveConfig, command string) (string, error)

	// ListModels fetches the model identifiers the configured provider
	// currently offers. Used by the setup flow only.
	ListModels(ctx context.Context, cfg domain.EffectiveConfig) ([]string, error)
}

// Classifier assigns a risk assessment to command text. Assess is total and
// deterministic: every input maps to exactly one label, never an error.
type Classifier interface {
	Assess(command string) domain.SafetyAssessment
}

// Clipboard copies text to the system clipboard. Best-effort: failures are
// reported as warnings and never abort a session.
type Clipboard interface {
	Copy(text string) error
	Enabled() bool
}

// ActionSource yields the next user action while the engine is Presenting.
// Implementations own their prompting/parsing; the engine only sees valid
// actions. Returning an error (io.EOF included) cancels the session.
type ActionSource interface {
	Next() (domain.Action, error)
}

// Progress is the phase signal contract: the engine starts it when a provider
// call begins in interactive mode and stops it the moment the call resolves.
// Implementations must leave no orphaned output after Stop returns.
type Progress interface {
	Start(phases []string)
	Stop()
}

// Renderer draws session chrome: the result card, explanations, notices and
// warnings. The accepted command itself bypasses the renderer and goes to the
// engine's output writer so stdout stays scriptable.
type Renderer interface {
	Result(result domain.GenerationResult)
	Explanation(text string)
	Notice(text string)
	Warning(text string)
}

// ConfigStore persists the file-backed configuration. Load returns (nil, nil)
// when no file exists yet.
type ConfigStore interface {
	Load() (*domain.FileConfig, error)
	Save(cfg domain.FileConfig) error
	Path() string
}

// ShellIntegrator installs and inspects the sentinel-delimited wrapper block
// in shell rc files.
type ShellIntegrator interface {
	Install(kind domain.ShellKind, rcPath string) (domain.InstallOutcome, error)
	Status(kind domain.ShellKind, rcPath string) domain.ShellStatus
}

// HistoryRepository records completed generations. Save failures are logged,
// never fatal.
type HistoryRepository interface {
	Save(record domain.HistoryRecord) error
	Recent(limit int) ([]domain.HistoryRecord, error)
	Close() error
}

// Logger is the structured logging abstraction used across layers.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
