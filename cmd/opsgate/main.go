package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/opsgate/opsgate/internal/cli"
	"github.com/opsgate/opsgate/internal/config"
)

func main() {
	cfg := config.FromEnv()
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}

	var sink io.Writer = os.Stdout
	if cfg.LogFile != "" {
		file, openErr := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if openErr != nil {
			slog.Error("cannot open log file, logging to stdout", "path", cfg.LogFile, "error", openErr)
		} else {
			defer file.Close()
			sink = file
		}
	}

	logger := slog.New(slog.NewJSONHandler(sink, &slog.HandlerOptions{Level: level}))
	if err := cli.NewRoot(logger).Execute(); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}
