package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/1broseidon/screenshot-tool/internal/config"
	"github.com/1broseidon/screenshot-tool/internal/events"
	"github.com/1broseidon/screenshot-tool/internal/hooks"
	"github.com/1broseidon/screenshot-tool/internal/platform"
	"github.com/1broseidon/screenshot-tool/internal/registry"
)

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func printJSON(v any) int {
	if err := writeJSON(os.Stdout, v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  screenshot-tool config defaults")
	fmt.Fprintln(w, "  screenshot-tool config schema")
	fmt.Fprintln(w, "  screenshot-tool config validate [--path PATH]")
	fmt.Fprintln(w, "  screenshot-tool config print [--path PATH] [--sources]")
	fmt.Fprintln(w, "  screenshot-tool config explain [--path PATH] <yaml.path>")
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printConfigUsage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "defaults":
		return printJSON(config.DefaultConfig())

	case "schema":
		return printJSON(config.Schema())

	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/screenshot-tool/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		file := *path
		if file == "" {
			p, err := config.DefaultConfigPath()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			file = p
		}
		if _, err := os.Stat(file); err == nil {
			if err := config.ValidateFile(file); err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
		} else if *path != "" {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		// Settings hub and environment overrides are checked too.
		if _, err := config.LoadFromPath(file); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/screenshot-tool/config.yaml)")
		withSources := fs.Bool("sources", false, "Include the source of every overridden key")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		res, err := loadConfig(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if !*withSources {
			return printJSON(res.Config)
		}
		return printJSON(map[string]any{
			"config":  res.Config,
			"sources": res.Sources,
			"files":   res.Files,
		})

	case "explain":
		fs := flag.NewFlagSet("explain", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/screenshot-tool/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if fs.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "explain requires <yaml.path>")
			return 2
		}
		res, err := loadConfig(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		value, src, err := config.Explain(res, fs.Arg(0))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return printJSON(map[string]any{
			"path":   fs.Arg(0),
			"value":  value,
			"source": src,
		})

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		printConfigUsage(os.Stderr)
		return 2
	}
}

func runHooks(args []string) int {
	if len(args) == 0 || args[0] != "contract" {
		fmt.Fprintln(os.Stderr, "Usage: screenshot-tool hooks contract [--config PATH]")
		return 2
	}
	fs := flag.NewFlagSet("contract", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("config", "", "Config file path")
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}

	hooksDir := config.DefaultConfig().HooksDir
	if res, err := loadConfig(*path); err == nil {
		hooksDir = res.Config.HooksDir
	}
	return printJSON(hooks.Contracts(hooksDir))
}

func runEvents(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: screenshot-tool events <catalog|lifecycle>")
		return 2
	}
	switch args[0] {
	case "catalog":
		return printJSON(events.Catalog())
	case "lifecycle":
		return printJSON(events.Lifecycle())
	default:
		fmt.Fprintf(os.Stderr, "Unknown events subcommand: %s\n", args[0])
		return 2
	}
}

// subcommandSession loads config and opens a backend for listing commands.
func subcommandSession(name string, args []string) (*session, int) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("config", "", "Config file path")
	debug := fs.Bool("debug", false, "Enable debug logging")
	if err := fs.Parse(args); err != nil {
		return nil, 2
	}

	logger := setupLogging(*debug)
	res, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return nil, 1
	}
	events.Configure(toolName, false)

	s, err := newSession(res.Config, &cliOptions{silent: true}, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return nil, 1
	}
	return s, 0
}

func runOutputs(args []string) int {
	s, code := subcommandSession("outputs", args)
	if s == nil {
		return code
	}
	defer s.close()

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.CaptureTimeout())
	defer cancel()
	outputs, err := s.capturer.Outputs(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if outputs == nil {
		outputs = []platform.Output{}
	}
	return printJSON(outputs)
}

func runWindows(args []string) int {
	s, code := subcommandSession("windows", args)
	if s == nil {
		return code
	}
	defer s.close()

	views, err := s.backend.ListViews(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return printJSON(registry.FromViews(views))
}
