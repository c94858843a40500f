package setup

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/danielhostetler/baishify/internal/domain"
	"github.com/danielhostetler/baishify/internal/infrastructure/config"
	"github.com/danielhostetler/baishify/internal/pkg/logger"
)

type stubStore struct {
	saved *domain.FileConfig
	err   error
}

func (s *stubStore) Load() (*domain.FileConfig, error) { return s.saved, nil }
func (s *stubStore) Save(cfg domain.FileConfig) error {
	if s.err != nil {
		return s.err
	}
	s.saved = &cfg
	return nil
}
func (s *stubStore) Path() string { return "/tmp/config.toml" }

type stubGateway struct {
	models      []string
	generateErr error
}

func (s *stubGateway) Generate(_ context.Context, req domain.GenerationRequest) (domain.GenerationResult, error) {
	if s.generateErr != nil {
		return domain.GenerationResult{}, s.generateErr
	}
	return domain.GenerationResult{Command: "date", Request: req}, nil
}
func (s *stubGateway) Explain(context.Context, domain.EffectiveConfig, string) (string, error) {
	return "", nil
}
func (s *stubGateway) ListModels(context.Context, domain.EffectiveConfig) ([]string, error) {
	return s.models, nil
}

type stubIntegrator struct {
	installed bool
	err       error
}

func (s *stubIntegrator) Install(domain.ShellKind, string) (domain.InstallOutcome, error) {
	if s.err != nil {
		return "", s.err
	}
	s.installed = true
	return domain.InstallOutcomeInstalled, nil
}
func (s *stubIntegrator) Status(kind domain.ShellKind, rcPath string) domain.ShellStatus {
	return domain.ShellStatus{Shell: kind, RCPath: rcPath}
}

func newService(input string, store *stubStore, gw *stubGateway, integ *stubIntegrator, env map[string]string) (*Service, *bytes.Buffer) {
	var out bytes.Buffer
	return &Service{
		Store:       store,
		Gateway:     gw,
		Integrator:  integ,
		Logger:      logger.NewStd(false),
		Env:         config.EnvFromMap(env),
		DetectShell: func() (domain.ShellKind, bool) { return domain.ShellZsh, true },
		RCPath:      func(domain.ShellKind) string { return "/home/u/.zshrc" },
		In:          strings.NewReader(input),
		Out:         &out,
	}, &out
}

func TestSetupDefaultsWithDetectedCredential(t *testing.T) {
	store := &stubStore{}
	gw := &stubGateway{models: []string{"gpt-4o-mini", "gpt-4o"}}
	integ := &stubIntegrator{}
	env := map[string]string{"OPENAI_API_KEY": "sk-env"}

	// provider default, use env key, model default, decline shell install.
	svc, _ := newService("\n\n\nn\n", store, gw, integ, env)
	if err := svc.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if store.saved == nil {
		t.Fatal("config was not saved")
	}
	if store.saved.Provider != "openai" {
		t.Errorf("provider = %q, want openai", store.saved.Provider)
	}
	if store.saved.Model != "gpt-4o-mini" {
		t.Errorf("model = %q, want gpt-4o-mini", store.saved.Model)
	}
	// Env-sourced keys must not be copied into the file.
	if store.saved.APIKey != "" {
		t.Errorf("api key persisted = %q, want empty", store.saved.APIKey)
	}
	if integ.installed {
		t.Error("shell integration installed despite decline")
	}
}

func TestSetupPastedKeyIsPersisted(t *testing.T) {
	store := &stubStore{}
	gw := &stubGateway{}
	integ := &stubIntegrator{}

	// pick anthropic by number, paste a key, default model, accept install.
	svc, _ := newService("2\nsk-ant-pasted\n\n\n", store, gw, integ, nil)
	if err := svc.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if store.saved == nil {
		t.Fatal("config was not saved")
	}
	if store.saved.Provider != "anthropic" {
		t.Errorf("provider = %q, want anthropic", store.saved.Provider)
	}
	if store.saved.APIKey != "sk-ant-pasted" {
		t.Errorf("api key = %q, want the pasted key", store.saved.APIKey)
	}
	if !integ.installed {
		t.Error("expected shell integration to be installed")
	}
}

func TestSetupTestGenerationFailureDoesNotAbort(t *testing.T) {
	store := &stubStore{}
	gw := &stubGateway{generateErr: &domain.ProviderError{Kind: domain.ProviderErrAuth, Provider: domain.ProviderOpenAI, Err: errors.New("401")}}
	integ := &stubIntegrator{}
	env := map[string]string{"OPENAI_API_KEY": "sk-bad"}

	svc, out := newService("\n\n\nn\n", store, gw, integ, env)
	if err := svc.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if store.saved == nil {
		t.Fatal("config should be saved even when the test call fails")
	}
	if !strings.Contains(out.String(), "doctor") {
		t.Error("expected the failure hint to mention doctor")
	}
}

func TestSetupShellInstallFailureIsNonFatal(t *testing.T) {
	store := &stubStore{}
	gw := &stubGateway{}
	integ := &stubIntegrator{err: &domain.InstallError{Path: "/home/u/.zshrc", Err: errors.New("permission denied")}}
	env := map[string]string{"OPENAI_API_KEY": "sk-env"}

	svc, out := newService("\n\n\n\n", store, gw, integ, env)
	if err := svc.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if store.saved == nil {
		t.Fatal("config should survive a failed shell install")
	}
	if !strings.Contains(out.String(), "b init") {
		t.Error("expected a retry hint pointing at b init")
	}
}
