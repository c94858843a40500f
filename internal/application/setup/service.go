// Package setup implements the interactive onboarding flow behind `b setup`.
package setup

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/danielhostetler/baishify/internal/domain"
	"github.com/danielhostetler/baishify/internal/infrastructure/config"
	"github.com/danielhostetler/baishify/internal/ports"
)

// Service walks the user through provider choice, credentials, model choice,
// a test generation and shell integration. Every step has a sensible default
// so Enter-Enter-Enter yields a working install.
type Service struct {
	Store       ports.ConfigStore
	Gateway     ports.Gateway
	Integrator  ports.ShellIntegrator
	Logger      ports.Logger
	Env         config.Env
	DetectShell func() (domain.ShellKind, bool)
	RCPath      func(domain.ShellKind) string

	In  io.Reader
	Out io.Writer
}

// Run executes the onboarding flow.
func (s *Service) Run(ctx context.Context) error {
	if s.Store == nil || s.Gateway == nil || s.Env == nil || s.In == nil || s.Out == nil {
		return errors.New("setup.Service dependencies not satisfied")
	}
	in := bufio.NewReader(s.In)

	fmt.Fprintln(s.Out, "Let's get b talking to an AI provider.")
	fmt.Fprintln(s.Out)

	creds := config.DetectCredentials(s.Env)
	provider, err := s.chooseProvider(in, creds)
	if err != nil {
		return err
	}

	key, persistKey, err := s.chooseKey(in, provider)
	if err != nil {
		return err
	}

	model, err := s.chooseModel(ctx, in, provider, key)
	if err != nil {
		return err
	}

	s.testGeneration(ctx, provider, model, key)

	fileCfg := domain.FileConfig{Provider: provider.String(), Model: model}
	if persistKey {
		fileCfg.APIKey = key
	}
	if err := s.Store.Save(fileCfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	fmt.Fprintf(s.Out, "\nSaved %s\n", s.Store.Path())

	s.offerShellIntegration(in)

	fmt.Fprintln(s.Out, "\nAll set. Try: b show the 5 largest files here")
	return nil
}

func (s *Service) chooseProvider(in *bufio.Reader, creds []domain.ProviderCredential) (domain.Provider, error) {
	fmt.Fprintln(s.Out, "Which provider?")
	defaultIdx := 0
	for i, cred := range creds {
		marker := " "
		note := ""
		if cred.Present() {
			note = " (key found in " + cred.Source + ")"
			if defaultIdx == 0 {
				defaultIdx = i + 1
				marker = "*"
			}
		}
		fmt.Fprintf(s.Out, " %s %d) %s%s\n", marker, i+1, cred.Provider.DisplayName(), note)
	}
	if defaultIdx == 0 {
		defaultIdx = 1
	}

	for {
		line, err := s.ask(in, fmt.Sprintf("Choice [%d]: ", defaultIdx))
		if err != nil {
			return "", err
		}
		if line == "" {
			return creds[defaultIdx-1].Provider, nil
		}
		if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(creds) {
			return creds[n-1].Provider, nil
		}
		if p, ok := domain.ParseProvider(line); ok {
			return p, nil
		}
		fmt.Fprintf(s.Out, "unrecognized choice %q\n", line)
	}
}

// chooseKey returns the API key to use and whether it should be written to the
// config file. Keys found in the environment stay there.
func (s *Service) chooseKey(in *bufio.Reader, provider domain.Provider) (string, bool, error) {
	if key, ok := config.DetectedKey(s.Env, provider); ok {
		line, err := s.ask(in, "Use the key from the environment? [Y/n]: ")
		if err != nil {
			return "", false, err
		}
		if line == "" || strings.EqualFold(line, "y") || strings.EqualFold(line, "yes") {
			return key, false, nil
		}
	}

	for {
		line, err := s.ask(in, fmt.Sprintf("Paste your %s API key: ", provider.DisplayName()))
		if err != nil {
			return "", false, err
		}
		if line != "" {
			return line, true, nil
		}
		fmt.Fprintln(s.Out, "a key is required; Ctrl-C to abort")
	}
}

func (s *Service) chooseModel(ctx context.Context, in *bufio.Reader, provider domain.Provider, key string) (string, error) {
	cfg := domain.EffectiveConfig{
		Provider: provider,
		BaseURL:  provider.DefaultBaseURL(),
		APIKey:   key,
	}
	models, err := s.Gateway.ListModels(ctx, cfg)
	if err != nil || len(models) == 0 {
		return provider.DefaultModel(), nil
	}

	def := provider.DefaultModel()
	shown := models
	if len(shown) > 10 {
		shown = shown[:10]
	}
	fmt.Fprintln(s.Out, "Which model?")
	for i, m := range shown {
		fmt.Fprintf(s.Out, "  %d) %s\n", i+1, m)
	}
	for {
		line, err := s.ask(in, fmt.Sprintf("Choice or model name [%s]: ", def))
		if err != nil {
			return "", err
		}
		if line == "" {
			return def, nil
		}
		if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(shown) {
			return shown[n-1], nil
		}
		return line, nil
	}
}

// testGeneration makes one real provider call so a bad key surfaces now
// instead of on first use. Failure does not abort setup.
func (s *Service) testGeneration(ctx context.Context, provider domain.Provider, model, key string) {
	fmt.Fprint(s.Out, "Testing the connection... ")
	cfg := domain.EffectiveConfig{
		Provider: provider,
		Model:    model,
		BaseURL:  provider.DefaultBaseURL(),
		APIKey:   key,
	}
	result, err := s.Gateway.Generate(ctx, domain.GenerationRequest{
		SessionID: "setup-test",
		Prompt:    "print the current date",
		Config:    cfg,
		Attempt:   1,
	})
	if err != nil {
		fmt.Fprintf(s.Out, "failed: %v\n", err)
		fmt.Fprintln(s.Out, "Setup will continue; check the key and run `b doctor` afterwards.")
		if s.Logger != nil {
			s.Logger.Warn("setup test generation failed", map[string]interface{}{"error": err.Error()})
		}
		return
	}
	fmt.Fprintf(s.Out, "ok (%s)\n", result.Command)
}

func (s *Service) offerShellIntegration(in *bufio.Reader) {
	if s.Integrator == nil || s.DetectShell == nil || s.RCPath == nil {
		return
	}
	kind, ok := s.DetectShell()
	if !ok {
		return
	}
	rcPath := s.RCPath(kind)
	line, err := s.ask(in, fmt.Sprintf("Install the %s wrapper into %s? [Y/n]: ", kind, rcPath))
	if err != nil {
		return
	}
	if line != "" && !strings.EqualFold(line, "y") && !strings.EqualFold(line, "yes") {
		fmt.Fprintln(s.Out, "Skipped. Run `b init` later to install it.")
		return
	}
	outcome, err := s.Integrator.Install(kind, rcPath)
	if err != nil {
		fmt.Fprintf(s.Out, "Shell integration failed: %v\n", err)
		fmt.Fprintln(s.Out, "Your provider config is saved; run `b init` to retry.")
		return
	}
	fmt.Fprintf(s.Out, "Shell integration %s. Restart your shell or `source %s`.\n", outcome, rcPath)
}

func (s *Service) ask(in *bufio.Reader, prompt string) (string, error) {
	fmt.Fprint(s.Out, prompt)
	line, err := in.ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
