package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/danielhostetler/baishify/internal/app"
	"github.com/danielhostetler/baishify/internal/domain"
	"github.com/danielhostetler/baishify/internal/infrastructure/config"
)

// ErrCancelled marks a session the user walked away from; main maps it to
// the dedicated exit code without printing anything.
var ErrCancelled = errors.New("cancelled")

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
}

// NewRootCmd wires the cobra root command. The returned cleanup releases
// container resources and must run after execution, whether or not the
// command failed.
func NewRootCmd(opts Options) (*cobra.Command, func(), error) {
	container, err := app.BuildContainer(opts.Verbose)
	if err != nil {
		return nil, nil, err
	}

	var flags config.Flags

	root := &cobra.Command{
		Use:   "b [prompt...]",
		Short: "b turns plain English into a shell command",
		Long: "b asks an AI provider for a single shell command matching your prompt,\n" +
			"shows it with a safety label, and prints it only once you accept it.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), container, flags, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.Flags().StringVar(&flags.Provider, "provider", "", "Provider to use (openai|anthropic|openrouter|vercel)")
	root.Flags().StringVarP(&flags.Model, "model", "m", "", "Model identifier (default from config)")
	root.Flags().StringVar(&flags.BaseURL, "base-url", "", "Override the provider API base URL")
	root.Flags().StringVar(&flags.APIKey, "api-key", "", "API key (prefer environment variables)")
	root.Flags().BoolVarP(&flags.Explain, "explain", "e", false, "Include an explanation with the command")
	root.Flags().BoolVar(&flags.JSON, "json", false, "Emit a JSON payload and exit (no action loop)")
	root.Flags().BoolVar(&flags.Plain, "plain", false, "Emit the bare command and exit (no action loop)")
	root.Flags().BoolVar(&flags.NoFun, "no-fun", false, "Static progress messages only")
	root.Flags().StringVar(&flags.OutputFile, "output-file", "", "Write the accepted command to this file instead of stdout")

	root.AddCommand(newSetupCommand(container))
	root.AddCommand(newInitCommand(container))
	root.AddCommand(newDoctorCommand(container))
	root.AddCommand(newHistoryCommand(container))
	return root, container.Close, nil
}

func runGenerate(ctx context.Context, container *app.Container, flags config.Flags, args []string) error {
	stdinTTY := isTerminal(os.Stdin)
	stdoutTTY := isTerminal(os.Stdout)

	cfg, err := resolveOrOnboard(ctx, container, flags, stdinTTY && stdoutTTY && !flags.JSON && !flags.Plain)
	if err != nil {
		return err
	}

	prompt, err := resolvePrompt(args, stdinTTY)
	if err != nil {
		return err
	}

	out, cleanup, err := outputWriter(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	interactive := !cfg.ScriptMode(stdinTTY, stdoutTTY)

	engine := container.Engine
	engine.Output = out
	engine.Interactive = interactive
	engine.Renderer = NewRenderer(os.Stderr, isTerminal(os.Stderr))
	if interactive {
		engine.Progress = NewSpinnerProgress(os.Stderr, cfg.NoFun)
		engine.Actions = NewLinePrompter(os.Stdin, os.Stderr)
		engine.Clipboard = NewClipboard()
	} else {
		engine.Progress = NopProgress{}
	}

	outcome, err := engine.Run(ctx, cfg, prompt)
	if err != nil {
		return err
	}
	if outcome == domain.OutcomeCancelled {
		return ErrCancelled
	}
	return nil
}

// resolveOrOnboard resolves the effective config, walking a first-time user
// through setup when resolution fails and a terminal is available to ask on.
func resolveOrOnboard(ctx context.Context, container *app.Container, flags config.Flags, canOnboard bool) (domain.EffectiveConfig, error) {
	fileCfg, err := container.Store.Load()
	if err != nil {
		return domain.EffectiveConfig{}, err
	}
	cfg, err := config.Resolve(flags, container.Env, fileCfg)
	if err == nil {
		return cfg, nil
	}

	var cfgErr *domain.ConfigError
	if !canOnboard || !errors.As(err, &cfgErr) {
		return domain.EffectiveConfig{}, err
	}
	switch cfgErr.Kind {
	case domain.ConfigNoProviderSelected, domain.ConfigMissingKey:
	default:
		return domain.EffectiveConfig{}, err
	}

	fmt.Fprintln(os.Stderr, "No usable provider configuration found; starting setup.")
	fmt.Fprintln(os.Stderr)
	svc := container.Setup
	svc.In = os.Stdin
	svc.Out = os.Stderr
	if err := svc.Run(ctx); err != nil {
		return domain.EffectiveConfig{}, err
	}

	fileCfg, err = container.Store.Load()
	if err != nil {
		return domain.EffectiveConfig{}, err
	}
	return config.Resolve(flags, container.Env, fileCfg)
}

// resolvePrompt builds the prompt from arguments, piped stdin, or an
// interactive question, in that order.
func resolvePrompt(args []string, stdinTTY bool) (string, error) {
	if len(args) > 0 {
		return strings.TrimSpace(strings.Join(args, " ")), nil
	}
	if !stdinTTY {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read prompt from stdin: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	fmt.Fprint(os.Stderr, "What do you want to do? ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", domain.ErrEmptyPrompt
	}
	return strings.TrimSpace(line), nil
}

func outputWriter(cfg domain.EffectiveConfig) (io.Writer, func(), error) {
	if cfg.OutputFile == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.OpenFile(cfg.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, domain.SecureFilePermissions)
	if err != nil {
		return nil, nil, fmt.Errorf("open output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
