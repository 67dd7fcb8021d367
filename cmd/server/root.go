package main

import (
	"threadvote/internal/config"
	"threadvote/internal/utils"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:          "threadvote",
	Short:        "A small discussion board with posts, comments and votes",
	SilenceUsage: true,
}

// setup loads configuration and builds the process logger.
func setup() (config.Config, *zap.Logger, error) {
	cfg := config.Load()
	log, err := utils.NewLogger(cfg.Log)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, log, nil
}
