package doctor

import (
	"testing"

	"github.com/danielhostetler/baishify/internal/domain"
	"github.com/danielhostetler/baishify/internal/infrastructure/config"
)

type stubStore struct {
	cfg *domain.FileConfig
	err error
}

func (s *stubStore) Load() (*domain.FileConfig, error) { return s.cfg, s.err }
func (s *stubStore) Save(domain.FileConfig) error      { return nil }
func (s *stubStore) Path() string                      { return "/home/u/.config/baishify/config.toml" }

type stubIntegrator struct {
	status domain.ShellStatus
}

func (s *stubIntegrator) Install(domain.ShellKind, string) (domain.InstallOutcome, error) {
	return domain.InstallOutcomeInstalled, nil
}
func (s *stubIntegrator) Status(domain.ShellKind, string) domain.ShellStatus { return s.status }

func findCheck(t *testing.T, report domain.HealthReport, name string) domain.HealthCheck {
	t.Helper()
	for _, c := range report.Checks {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("check %q missing from report: %+v", name, report.Checks)
	return domain.HealthCheck{}
}

func TestDoctorHealthyEnvironment(t *testing.T) {
	svc := &Service{
		Store: &stubStore{cfg: &domain.FileConfig{Provider: "openai", Model: "gpt-4o-mini"}},
		Integrator: &stubIntegrator{status: domain.ShellStatus{
			Shell: domain.ShellZsh, RCPath: "/home/u/.zshrc", RCExists: true, BlockPresent: true, BlockCurrent: true,
		}},
		Env:         config.EnvFromMap(map[string]string{"OPENAI_API_KEY": "sk-test-1234"}),
		DetectShell: func() (domain.ShellKind, bool) { return domain.ShellZsh, true },
		RCPath:      func(domain.ShellKind) string { return "/home/u/.zshrc" },
	}

	report, err := svc.Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !report.Healthy() {
		t.Errorf("expected healthy report, got %+v", report.Checks)
	}

	if c := findCheck(t, report, "Provider"); c.Status != domain.HealthOK {
		t.Errorf("provider check = %+v", c)
	}
	if c := findCheck(t, report, "Shell integration"); c.Status != domain.HealthOK {
		t.Errorf("shell check = %+v", c)
	}
	// The raw key must never appear in the report.
	for _, c := range report.Checks {
		if c.Detail == "sk-test-1234" {
			t.Errorf("raw API key leaked into check %q", c.Name)
		}
	}
}

func TestDoctorMissingEverything(t *testing.T) {
	svc := &Service{
		Store:       &stubStore{},
		Env:         config.EnvFromMap(nil),
		DetectShell: func() (domain.ShellKind, bool) { return "", false },
	}

	report, err := svc.Run()
	if err == nil {
		t.Fatal("expected resolution error with no provider configured")
	}
	if report.Healthy() {
		t.Error("expected unhealthy report")
	}
	if c := findCheck(t, report, "Resolution"); c.Status != domain.HealthFail {
		t.Errorf("resolution check = %+v", c)
	}
	if c := findCheck(t, report, "Config file"); c.Status != domain.HealthWarn {
		t.Errorf("config file check = %+v", c)
	}
}
