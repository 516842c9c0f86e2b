package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/padup/padup/internal/cmd"
	"github.com/padup/padup/internal/exitcode"
	"github.com/padup/padup/internal/ux"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cmd.Execute(ctx)
	switch {
	case err == nil:
		return exitcode.Success
	case ctx.Err() != nil:
		fmt.Fprintln(os.Stderr, "\nInterrupted")
		return exitcode.Interrupted
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", ux.EnhanceError(err))
	return exitcode.For(err)
}
