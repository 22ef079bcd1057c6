package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/assetfmt/internal/config"
	"github.com/samcharles93/assetfmt/internal/logger"
	"github.com/samcharles93/assetfmt/internal/version"
)

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app carries what the subcommands share once the root Before hook has run.
type app struct {
	stdout io.Writer
	stderr io.Writer
	cfg    config.Config
}

func newApp(stdout, stderr io.Writer) *cli.Command {
	a := &app{stdout: stdout, stderr: stderr}
	return &cli.Command{
		Name:      "assetfmt",
		Usage:     "Inspect, dump and round-trip binary game-asset files",
		Version:   version.String(),
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
				Value: "info",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "pretty, json or text",
				Value: logger.FormatPretty,
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "config file path",
				Value: config.Path(),
			},
		},
		Before: a.setup,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			a.inspectCmd(),
			a.dumpCmd(),
			a.roundtripCmd(),
			a.versionCmd(),
		},
	}
}

// setup loads the config file and installs the run logger. Values from the
// file only apply to flags that were not given explicitly.
func (a *app) setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return ctx, err
	}
	a.cfg = cfg

	levelName := cmd.String("log-level")
	if cfg.LogLevel != "" && !cmd.IsSet("log-level") {
		levelName = cfg.LogLevel
	}
	format := cmd.String("log-format")
	if cfg.LogFormat != "" && !cmd.IsSet("log-format") {
		format = cfg.LogFormat
	}

	level, err := logger.ParseLevel(levelName)
	if err != nil {
		return ctx, err
	}
	log, err := logger.Open(a.stderr, format, level)
	if err != nil {
		return ctx, err
	}
	log = log.With("run", uuid.NewString()[:8])
	return logger.WithContext(ctx, log), nil
}

// files returns the positional arguments, requiring at least one.
func files(cmd *cli.Command) ([]string, error) {
	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		return nil, fmt.Errorf("%s needs at least one file", cmd.Name)
	}
	return paths, nil
}
