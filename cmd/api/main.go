// Package main provides the entry point for the bookstore API server.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/pagebound/bookstore-server/internal/di"
	"github.com/pagebound/bookstore-server/internal/logger"
)

func main() {
	// Create DI container
	injector := di.NewContainer()

	// Bootstrap all services
	if err := di.Bootstrap(injector); err != nil {
		log, logErr := do.Invoke[*logger.Logger](injector)
		_ = injector.Shutdown()
		if logErr != nil {
			fmt.Fprintf(os.Stderr, "Failed to bootstrap server: %v\n", err)
			os.Exit(1)
		}
		log.WithError(err).Fatal("Failed to bootstrap server")
	}

	log := do.MustInvoke[*logger.Logger](injector)

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	// Handles implement do.Shutdownable; the container stops the HTTP
	// server before the queue and the queue before the database.
	if err := injector.Shutdown(); err != nil {
		log.Error("Shutdown error", "error", err)
	}

	log.Info("Server stopped")
}
