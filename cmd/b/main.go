package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/danielhostetler/baishify/internal/domain"
	"github.com/danielhostetler/baishify/internal/infrastructure/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root, cleanup, err := cli.NewRootCmd(cli.Options{Verbose: isVerbose()})
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(domain.ExitFailure)
	}

	err = root.ExecuteContext(ctx)
	cleanup()
	if err != nil {
		if errors.Is(err, cli.ErrCancelled) {
			os.Exit(domain.ExitCancelled)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(domain.ExitCodeFor(err))
	}
}

func isVerbose() bool {
	return strings.EqualFold(os.Getenv("B_DEBUG"), "1") || strings.EqualFold(os.Getenv("B_DEBUG"), "true")
}
