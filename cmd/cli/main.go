package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/hamed0406/uptimeboard/internal/domain"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "✖", err)
		if errors.Is(err, domain.ErrServiceUnavailable) {
			fmt.Fprintln(os.Stderr, "  the dashboard API could not be reached; try again shortly")
			os.Exit(2)
		}
		os.Exit(1)
	}
}
