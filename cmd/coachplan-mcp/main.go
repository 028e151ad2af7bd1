// Command coachplan-mcp serves the plan generator as MCP tools over stdio.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/myrjola/coachplan/internal/envstruct"
	"github.com/myrjola/coachplan/internal/errors"
	"github.com/myrjola/coachplan/internal/logging"
	"github.com/myrjola/coachplan/internal/mcpserver"
)

// version is set at build time via -ldflags.
var version = "dev"

type logConfig struct {
	Level  string `env:"COACHPLAN_LOG_LEVEL" envDefault:"info"`
	Format string `env:"COACHPLAN_LOG_FORMAT" envDefault:"json"`
	File   string `env:"COACHPLAN_LOG_FILE" envDefault:""`
}

func main() {
	ctx := context.Background()
	var lc logConfig
	if err := envstruct.Populate(&lc, os.LookupEnv); err != nil {
		slog.Default().LogAttrs(ctx, slog.LevelError, "invalid log config", errors.SlogError(err))
		os.Exit(1)
	}
	// Stdout carries the MCP protocol, so logs go to stderr.
	logger, closer, err := logging.NewLogger(logging.LoggerConfig{
		Level:    lc.Level,
		Format:   lc.Format,
		FilePath: lc.File,
	}, os.Stderr)
	if err != nil {
		slog.Default().LogAttrs(ctx, slog.LevelError, "failure creating logger", errors.SlogError(err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "serving mcp over stdio", slog.String("version", version))
	err = server.ServeStdio(mcpserver.New(version, logger))
	_ = closer.Close()
	if err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "mcp server stopped", errors.SlogError(err))
		os.Exit(1)
	}
}
