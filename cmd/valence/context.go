package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"valence/internal/config"
	"valence/internal/logging"
)

// skipConfigAnnotation marks commands that must run without a loadable
// configuration.
const skipConfigAnnotation = "skipConfigLoad"

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath string
	logLevel   string
}

// commandContext loads the configuration once per process and hands it to
// subcommands.
type commandContext struct {
	flags *globalFlags

	once       sync.Once
	cfg        *config.Config
	configPath string
	configSeen bool
	err        error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.once.Do(c.load)
	return c.cfg, c.err
}

func (c *commandContext) load() {
	cfg, resolved, exists, err := config.Load(strings.TrimSpace(c.flags.configPath))
	if err != nil {
		c.err = err
		return
	}
	if level := strings.TrimSpace(c.flags.logLevel); level != "" {
		cfg.Logging.Level = level
	}
	if err := cfg.EnsureDirectories(); err != nil {
		c.err = err
		return
	}
	c.cfg, c.configPath, c.configSeen = cfg, resolved, exists
}

// newLogger builds the process logger. Console output goes to stderr so
// stdout stays clean for reports. Quiet raises the console level to warn
// while the log file keeps the configured level.
func (c *commandContext) newLogger(stderr io.Writer, quiet bool) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	console := cfg.Logging.Level
	if quiet && logging.ParseLevel(console) < slog.LevelWarn {
		console = "warn"
	}
	logger, err := logging.New(logging.Options{
		Level:     console,
		Format:    cfg.Logging.Format,
		Writer:    stderr,
		FilePath:  logFilePath(cfg),
		FileLevel: cfg.Logging.Level,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return logger, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for ; cmd != nil; cmd = cmd.Parent() {
		if cmd.Annotations[skipConfigAnnotation] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
