package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/arthur-debert/stgcore/cmd/stgrun/commands"
	"github.com/arthur-debert/stgcore/pkg/style"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := commands.NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		r := style.NewRenderer(style.FormatAuto, os.Stderr)
		fmt.Fprintln(os.Stderr, r.RenderError(err))
		stop()
		os.Exit(1)
	}
}
