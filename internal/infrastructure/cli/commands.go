package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/danielhostetler/baishify/internal/app"
	"github.com/danielhostetler/baishify/internal/domain"
	"github.com/danielhostetler/baishify/internal/infrastructure/shell"
)

func newSetupCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Configure provider, key and model interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := container.Setup
			svc.In = cmd.InOrStdin()
			svc.Out = cmd.OutOrStdout()
			return svc.Run(cmd.Context())
		},
	}
}

func newInitCommand(container *app.Container) *cobra.Command {
	var shellName string
	var rcFile string
	cmd := &cobra.Command{
		Use:   "init [shell]",
		Short: "Install the shell wrapper into your rc file",
		Long: "init writes an idempotent, marker-delimited function into your shell rc\n" +
			"file so accepted commands land on your prompt and in shell history.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				shellName = args[0]
			}
			kind, ok := shell.Detect()
			if shellName != "" {
				kind, ok = shell.ParseShellKind(shellName)
				if !ok {
					return fmt.Errorf("unsupported shell %q (use bash or zsh)", shellName)
				}
			} else if !ok {
				return fmt.Errorf("could not detect a supported shell from $SHELL; pass --shell")
			}

			rcPath := rcFile
			if rcPath == "" {
				rcPath = shell.DefaultRCPath(kind)
			}

			outcome, err := container.Integrator.Install(kind, rcPath)
			if err != nil {
				return err
			}
			switch outcome {
			case domain.InstallOutcomeAlreadyInstalled:
				fmt.Fprintf(cmd.OutOrStdout(), "Wrapper already up to date in %s\n", rcPath)
			case domain.InstallOutcomeUpdated:
				fmt.Fprintf(cmd.OutOrStdout(), "Wrapper updated in %s; restart your shell or `source %s`\n", rcPath, rcPath)
			default:
				fmt.Fprintf(cmd.OutOrStdout(), "Wrapper installed in %s; restart your shell or `source %s`\n", rcPath, rcPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&shellName, "shell", "", "Shell to install for (bash|zsh, auto-detected by default)")
	cmd.Flags().StringVar(&rcFile, "rc-file", "", "Override the rc file path")
	return cmd
}

func newDoctorCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose configuration and environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := container.Doctor.Run()
			renderHealthReport(cmd.OutOrStdout(), report)
			return err
		},
	}
}

func newHistoryCommand(container *app.Container) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently generated commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.History == nil {
				return fmt.Errorf("history is unavailable (database could not be opened)")
			}
			records, err := container.History.Recent(limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No generations recorded yet.")
				return nil
			}
			for _, rec := range records {
				marker := " "
				if rec.Accepted {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s  [%s/%s]  %-7s  %s\n",
					marker,
					rec.Timestamp.Format("2006-01-02 15:04"),
					rec.Provider, rec.Model,
					rec.Safety,
					rec.Command,
				)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", domain.DefaultHistoryLimit, "Number of records to show")
	return cmd
}

func renderHealthReport(out io.Writer, report domain.HealthReport) {
	for _, check := range report.Checks {
		glyph := "✓"
		switch check.Status {
		case domain.HealthWarn:
			glyph = "!"
		case domain.HealthFail:
			glyph = "✗"
		}
		fmt.Fprintf(out, " %s %-28s %s\n", glyph, check.Name, check.Detail)
	}
	if report.Healthy() {
		fmt.Fprintln(out, "\nEverything looks good.")
	} else {
		fmt.Fprintln(out, "\nSome checks failed; see above.")
	}
}
