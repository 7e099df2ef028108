package main

import (
	"flag"
	"os"

	"github.com/mantonx/diskexplorer/internal/config"
	"github.com/mantonx/diskexplorer/internal/logger"
	"github.com/mantonx/diskexplorer/internal/scanner"
	"github.com/mantonx/diskexplorer/internal/server"
)

func main() {
	configPath := flag.String("config", os.Getenv("DISKEXPLORER_CONFIG"), "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load configuration: %v", err)
		os.Exit(1)
	}
	logger.SetLevel(cfg.LogLevel)

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		logger.Error("failed to create data directory %s: %v", cfg.DataDir, err)
		os.Exit(1)
	}

	fs := scanner.New(cfg)
	srv := server.New(cfg, fs)
	router := srv.SetupRouter()

	logger.Info("disk explorer listening on %s (data dir %s)", cfg.Addr(), cfg.DataDir)
	if err := router.Run(cfg.Addr()); err != nil {
		logger.Error("server exited: %v", err)
		os.Exit(1)
	}
}
