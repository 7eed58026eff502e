// Package main provides mfulc, a command line tool that reads, writes and
// inspects MIFARE Ultralight and Ultralight C tags on a libnfc or PC/SC reader.
// Finished sessions can optionally be broadcast to WebSocket clients.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := defaultEnvironment()
	if err := newRootCommand(env).ExecuteContext(ctx); err != nil {
		logger := log.New(env.stderr, "", 0)
		logger.Printf("error: %v", err)
		if hint := exitHint(err); hint != "" {
			logger.Print(hint)
		}
		stop()
		os.Exit(1)
	}
}
