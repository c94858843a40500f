// Package doctor runs environment diagnostics for `b doctor`.
package doctor

import (
	"errors"
	"fmt"
	"os"

	"github.com/danielhostetler/baishify/internal/domain"
	"github.com/danielhostetler/baishify/internal/infrastructure/config"
	"github.com/danielhostetler/baishify/internal/ports"
)

// Service gathers checks into a health report. It never mutates anything.
type Service struct {
	Store       ports.ConfigStore
	Integrator  ports.ShellIntegrator
	Env         config.Env
	DetectShell func() (domain.ShellKind, bool)
	RCPath      func(domain.ShellKind) string
	HistoryPath string
}

// Run executes all checks and returns a report. The error mirrors whether
// resolution would fail for a plain `b` invocation.
func (s *Service) Run() (domain.HealthReport, error) {
	var checks []domain.HealthCheck
	var resolveErr error

	fileCfg := s.checkConfigFile(&checks)
	resolveErr = s.checkResolution(&checks, fileCfg)
	s.checkCredentials(&checks)
	s.checkShell(&checks)
	s.checkHistory(&checks)

	return domain.HealthReport{Checks: checks}, resolveErr
}

func (s *Service) checkConfigFile(checks *[]domain.HealthCheck) *domain.FileConfig {
	if s.Store == nil {
		*checks = append(*checks, warn("Config file", "store not initialized"))
		return nil
	}
	path := s.Store.Path()
	fileCfg, err := s.Store.Load()
	switch {
	case err != nil:
		*checks = append(*checks, fail("Config file", fmt.Sprintf("%s: %v", path, err)))
	case fileCfg == nil:
		*checks = append(*checks, warn("Config file", path+" (not created yet; run `b setup`)"))
	default:
		*checks = append(*checks, ok("Config file", path))
	}
	return fileCfg
}

func (s *Service) checkResolution(checks *[]domain.HealthCheck, fileCfg *domain.FileConfig) error {
	cfg, err := config.Resolve(config.Flags{}, s.Env, fileCfg)
	if err != nil {
		var cfgErr *domain.ConfigError
		if errors.As(err, &cfgErr) {
			*checks = append(*checks, fail("Resolution", cfgErr.Error()))
		} else {
			*checks = append(*checks, fail("Resolution", err.Error()))
		}
		return err
	}
	*checks = append(*checks,
		ok("Provider", fmt.Sprintf("%s (%s)", cfg.Provider.DisplayName(), cfg.Origins.Provider)),
		ok("Model", fmt.Sprintf("%s (%s)", cfg.Model, cfg.Origins.Model)),
		ok("Base URL", fmt.Sprintf("%s (%s)", cfg.BaseURL, cfg.Origins.BaseURL)),
		ok("API key", fmt.Sprintf("%s (%s)", cfg.RedactedKey(), cfg.Origins.APIKey)),
	)
	return nil
}

func (s *Service) checkCredentials(checks *[]domain.HealthCheck) {
	for _, cred := range config.DetectCredentials(s.Env) {
		name := "Credential: " + cred.Provider.DisplayName()
		if cred.Present() {
			*checks = append(*checks, ok(name, cred.Source))
		} else {
			*checks = append(*checks, warn(name, "no key in environment"))
		}
	}
}

func (s *Service) checkShell(checks *[]domain.HealthCheck) {
	if s.Integrator == nil || s.DetectShell == nil || s.RCPath == nil {
		return
	}
	kind, found := s.DetectShell()
	if !found {
		*checks = append(*checks, warn("Shell integration", "unsupported shell (bash and zsh only)"))
		return
	}
	status := s.Integrator.Status(kind, s.RCPath(kind))
	switch {
	case !status.RCExists:
		*checks = append(*checks, warn("Shell integration", status.RCPath+" does not exist"))
	case status.BlockPresent && status.BlockCurrent:
		*checks = append(*checks, ok("Shell integration", fmt.Sprintf("%s wrapper installed in %s", kind, status.RCPath)))
	case status.BlockPresent:
		*checks = append(*checks, warn("Shell integration", "wrapper outdated; run `b init` to refresh"))
	default:
		*checks = append(*checks, warn("Shell integration", "not installed; run `b init`"))
	}
}

func (s *Service) checkHistory(checks *[]domain.HealthCheck) {
	if s.HistoryPath == "" {
		return
	}
	if _, err := os.Stat(s.HistoryPath); err != nil {
		*checks = append(*checks, warn("History", s.HistoryPath+" (no generations recorded yet)"))
		return
	}
	*checks = append(*checks, ok("History", s.HistoryPath))
}

func ok(name, detail string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Detail: detail}
}

func warn(name, detail string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Detail: detail}
}

func fail(name, detail string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthFail, Detail: detail}
}
