package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	if err := run(); err != nil {
		if exitErr, ok := err.(exitError); ok {
			if !exitErr.silent && exitErr.message != "" {
				fmt.Fprintln(os.Stderr, exitErr.message)
			}
			os.Exit(exitErr.code)
		}
		fmt.Fprintf(os.Stderr, "sysfetch: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return newRootCommand().ExecuteContext(ctx)
}

type exitError struct {
	code    int
	message string
	silent  bool
}

func (e exitError) Error() string {
	return e.message
}

func exitSilent(code int) error {
	return exitError{code: code, silent: true}
}
