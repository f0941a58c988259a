package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AayushRajthala99/phishing-email-detection-system/internal/adapters/storage"
	"github.com/AayushRajthala99/phishing-email-detection-system/internal/core"
	"github.com/AayushRajthala99/phishing-email-detection-system/internal/di"
	"github.com/AayushRajthala99/phishing-email-detection-system/internal/ports"
	"github.com/AayushRajthala99/phishing-email-detection-system/internal/ratelimit"
	"go.uber.org/zap"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	server ports.ApiServer,
	classifier core.Classifier,
	cacheRepo core.CacheRepository,
	limiter *ratelimit.FixedWindow,
	store *storage.MongoStore,
) error {
	defer logger.Sync()

	if ready, err := classifier.Ready(); !ready {
		// Serve anyway so /health can report the load failure; /predict
		// answers 503 until the artifacts are fixed and the process restarted.
		logger.Error("Classification model failed to load", zap.Error(err))
	}

	if err := server.Start(); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
		return err
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	if err := server.Stop(); err != nil {
		logger.Error("Failed to stop server", zap.Error(err))
	}

	limiter.Stop()

	if stopper, ok := cacheRepo.(interface{ Stop() }); ok {
		stopper.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Close(ctx); err != nil {
		logger.Error("Failed to disconnect from document store", zap.Error(err))
	}

	logger.Info("Shutdown complete")
	return nil
}
