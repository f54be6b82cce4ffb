package main

import (
	"context"
	"flag"

	"youcomagents/internal/config"
	"youcomagents/internal/lm"
	"youcomagents/internal/provider"
	"youcomagents/internal/server"
	"youcomagents/pkg/logger"
)

func main() {
	var configPath string
	var initConfig bool
	flag.StringVar(&configPath, "config", "", "Path to config file (default $YOUCOM_AGENTS_CONFIG or ~/.config/youcom-agents/config.yaml)")
	flag.BoolVar(&initConfig, "init", false, "Write a config template to the config path and exit")
	flag.Parse()

	if configPath == "" {
		p, err := config.DefaultPath()
		if err != nil {
			logger.Fatalf("Resolving config path: %v", err)
		}
		configPath = p
	}

	if initConfig {
		if err := config.WriteTemplate(configPath); err != nil {
			logger.Fatalf("Writing config template: %v", err)
		}
		logger.Info("Wrote config template", "path", configPath)
		return
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("Fatal parsing config: %v", err)
	}

	closeLog, err := logger.Configure(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		logger.Fatalf("Configuring logger: %v", err)
	}
	defer closeLog()

	p, err := provider.FromConfig(cfg, config.Environ{})
	if err != nil {
		logger.Fatalf("Registering agents: %v", err)
	}
	for _, info := range p.ProvideChatInformation(context.Background(), lm.PrepareOptions{}) {
		logger.Info("Registered agent", "id", info.ID, "name", info.Name, "version", info.Version)
	}

	srv := server.NewServer(p)
	if err := srv.Start(cfg.Server.Addr()); err != nil {
		logger.Fatalf("Server stopped: %v", err)
	}
}
