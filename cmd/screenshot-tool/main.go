package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/1broseidon/screenshot-tool/internal/config"
	"github.com/1broseidon/screenshot-tool/internal/events"
)

const (
	toolName = "screenshot-tool"
	version  = "0.1.0"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) > 0 {
		switch args[0] {
		case "config":
			return runConfig(args[1:])
		case "hooks":
			return runHooks(args[1:])
		case "events":
			return runEvents(args[1:])
		case "outputs":
			return runOutputs(args[1:])
		case "windows":
			return runWindows(args[1:])
		case "mcp":
			return runMCP(args[1:])
		case "help":
			printUsage(os.Stdout, nil)
			return 0
		}
	}

	opts, err := parseFlags(args, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if opts.version {
		fmt.Printf("%s %s\n", toolName, version)
		return 0
	}

	logger := setupLogging(opts.debug)

	res, err := loadConfig(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}
	cfg := res.Config

	events.Configure(toolName, !opts.silent)
	events.Emit(events.ConfigResolved, map[string]any{
		"config_path": configPathOrDefault(opts.configPath),
		"backend":     cfg.Backend,
		"output_dir":  cfg.OutputDir,
	})

	code := runCapture(cfg, opts, logger)
	events.Emit(events.Shutdown, map[string]any{"exit_code": code})
	return code
}

// setupLogging installs the default logger. Interactive terminals get the
// text format; anything else (a hotkey daemon's log, a pipe) gets JSON.
func setupLogging(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if term.IsTerminal(int(os.Stderr.Fd())) {
		handler = slog.NewTextHandler(os.Stderr, handlerOpts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

func configPathOrDefault(path string) string {
	if path != "" {
		return path
	}
	if p, err := config.DefaultConfigPath(); err == nil {
		return p
	}
	return ""
}

func sleepDelay(ms int) {
	if ms > 0 {
		time.Sleep(time.Duration(ms) * time.Millisecond)
	}
}
