// Package app wires application services to their infrastructure adapters.
package app

import (
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/danielhostetler/baishify/internal/application/doctor"
	"github.com/danielhostetler/baishify/internal/application/session"
	"github.com/danielhostetler/baishify/internal/application/setup"
	"github.com/danielhostetler/baishify/internal/infrastructure/ai"
	"github.com/danielhostetler/baishify/internal/infrastructure/cache"
	"github.com/danielhostetler/baishify/internal/infrastructure/config"
	"github.com/danielhostetler/baishify/internal/infrastructure/history"
	"github.com/danielhostetler/baishify/internal/infrastructure/safety"
	"github.com/danielhostetler/baishify/internal/infrastructure/shell"
	"github.com/danielhostetler/baishify/internal/pkg/logger"
	"github.com/danielhostetler/baishify/internal/ports"
)

// Container holds the dependency graph. The CLI layer finishes wiring the
// engine with terminal-bound pieces (output writer, renderer, prompter).
type Container struct {
	Engine     *session.Engine
	Setup      *setup.Service
	Doctor     *doctor.Service
	Store      ports.ConfigStore
	Gateway    ports.Gateway
	Classifier ports.Classifier
	Integrator ports.ShellIntegrator
	History    ports.HistoryRepository
	Logger     ports.Logger
	Env        config.Env
}

// UserRulesPath is where users drop additional safety patterns.
func UserRulesPath() string {
	return filepath.Join(xdg.ConfigHome, "baishify", "safety.yaml")
}

// BuildContainer constructs the dependency graph.
func BuildContainer(verbose bool) (*Container, error) {
	log := logger.NewStd(verbose)
	env := config.EnvFromOS()
	store := config.NewFileStore("")

	classifier, err := safety.NewClassifier(UserRulesPath())
	if err != nil {
		// Bad user rules never take the built-in table down with them.
		log.Warn("user safety rules ignored", map[string]interface{}{"error": err.Error()})
		classifier, err = safety.NewClassifier("")
		if err != nil {
			return nil, err
		}
	}

	gateway := ai.NewGateway(cache.NewFileCache(), log)
	integrator := shell.NewInstaller(log)

	var historyRepo ports.HistoryRepository
	historyPath := history.DefaultPath()
	if repo, err := history.NewSQLiteStore(historyPath); err != nil {
		// History is a convenience; a broken database never blocks generation.
		log.Warn("history disabled", map[string]interface{}{"error": err.Error()})
	} else {
		historyRepo = repo
	}

	engine := &session.Engine{
		Gateway:    gateway,
		Classifier: classifier,
		History:    historyRepo,
		Logger:     log,
	}

	setupSvc := &setup.Service{
		Store:       store,
		Gateway:     gateway,
		Integrator:  integrator,
		Logger:      log,
		Env:         env,
		DetectShell: shell.Detect,
		RCPath:      shell.DefaultRCPath,
	}

	doctorSvc := &doctor.Service{
		Store:       store,
		Integrator:  integrator,
		Env:         env,
		DetectShell: shell.Detect,
		RCPath:      shell.DefaultRCPath,
		HistoryPath: historyPath,
	}

	return &Container{
		Engine:     engine,
		Setup:      setupSvc,
		Doctor:     doctorSvc,
		Store:      store,
		Gateway:    gateway,
		Classifier: classifier,
		Integrator: integrator,
		History:    historyRepo,
		Logger:     log,
		Env:        env,
	}, nil
}

// Close releases held resources.
func (c *Container) Close() {
	if c.History != nil {
		_ = c.History.Close()
	}
}
