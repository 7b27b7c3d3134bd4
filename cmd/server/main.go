package main

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/knowledge-engine/pagefilter/internal/api"
	"github.com/knowledge-engine/pagefilter/internal/config"
	"github.com/knowledge-engine/pagefilter/internal/engine"
	"github.com/knowledge-engine/pagefilter/internal/metrics"
	"github.com/knowledge-engine/pagefilter/internal/review"
)

func main() {
	// Setup Logging
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	entry := logger.WithField("service", "pagefilter-api")

	entry.Info("Starting Page Filter API Service")

	// 1. Config
	cfg := config.Load()
	if path := os.Getenv("PAGEFILTER_CONFIG"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			entry.Fatalf("Failed to load config: %v", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		entry.Fatalf("Invalid config: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	} else {
		entry.Warnf("Unknown log level %q, using info", cfg.Log.Level)
	}
	if cfg.Server.Source == "" {
		entry.Fatal("SERVER_SOURCE is required: nothing to filter")
	}

	// 2. Review storage
	var store review.Store = review.NewMemoryStore()
	if cfg.Review.StorePath != "" {
		fs, err := review.NewFileStore(cfg.Review.StorePath)
		if err != nil {
			entry.Fatalf("Failed to initialize review store: %v", err)
		}
		store = fs
	}

	// 3. Engine
	eng, err := engine.NewEngine(cfg, entry, store)
	if err != nil {
		entry.Fatalf("Failed to initialize engine: %v", err)
	}
	if err := eng.Load(context.Background(), cfg.Server.Source); err != nil {
		entry.Fatalf("Failed to load page: %v", err)
	}

	// 4. Metrics
	metrics.Register()

	// 5. API Server
	server := api.NewServer(eng, entry)

	entry.Infof("Page Filter API ready on %s", cfg.Server.Addr)
	if err := server.Start(cfg.Server.Addr); err != nil {
		entry.Fatal(err)
	}
}
