package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/cipapi-client/internal/cli"
)

func main() {
	// Cancel in-flight requests on shutdown signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		cancel()
	}()

	if err := cli.Execute(ctx); err != nil {
		cancel()
		os.Exit(1)
	}
}
