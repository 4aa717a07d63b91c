package commands

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/vzt7/unbuild/internal/config"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Build config file, relative to the project root (default: build.config.yaml)"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build BuildCmd `cmd:"" default:"withargs" help:"Build the project (default command)"`
	Init  InitCmd  `cmd:"" help:"Write an example build.config.yaml"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// ConfigPath resolves the config file written by init: an explicit -c path
// relative to root, or the default file name inside root.
func ConfigPath(root, configFile string) string {
	if configFile == "" {
		return filepath.Join(root, config.DefaultConfigFile)
	}
	if filepath.IsAbs(configFile) {
		return configFile
	}
	return filepath.Join(root, configFile)
}
