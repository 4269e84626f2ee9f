package main

import (
	"flag"
	"log"
	"os"

	"IndexPulse/internal/di"
	"IndexPulse/pkg/config"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	// Load config
	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s feed=%s mirror=%s", cfg.Environment, cfg.Feed.Type, cfg.Mirror.Backend)

	// Wire DI: Initialize all dependencies
	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	log.Printf("recorder: dir=%s zone=%s horizons=%v", cfg.Recorder.BaseDir, cfg.Recorder.Timezone, cfg.Recorder.RollingHorizonsSecs)

	// Run application (blocks until signal)
	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
