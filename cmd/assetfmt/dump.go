package main

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/assetfmt/internal/config"
	"github.com/samcharles93/assetfmt/internal/dump"
	"github.com/samcharles93/assetfmt/internal/filemap"
	"github.com/samcharles93/assetfmt/internal/logger"
)

func (a *app) dumpCmd() *cli.Command {
	var (
		format  string
		outPath string
	)
	return &cli.Command{
		Name:      "dump",
		Usage:     "Decode a file and print its object graph",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "json, yaml or cbor", Value: dump.JSON, Destination: &format},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "write to this path instead of stdout", Destination: &outPath},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return errors.New("dump takes exactly one file")
			}
			if a.cfg.DumpFormat != "" && !cmd.IsSet("format") {
				format = a.cfg.DumpFormat
			}
			if !slices.Contains(config.DumpFormats, format) {
				return fmt.Errorf("--format must be one of %v", config.DumpFormats)
			}
			log := logger.FromContext(ctx)

			in, err := load(cmd.Args().First())
			if err != nil {
				return err
			}
			out, err := dump.Encode(in.doc, format)
			if err != nil {
				return err
			}

			if outPath == "" {
				_, err = a.stdout.Write(out)
				return err
			}
			if err := filemap.WriteFile(outPath, out, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", outPath, err)
			}
			log.Info("dumped", "file", in.path, "format", format, "out", outPath, "bytes", len(out))
			return nil
		},
	}
}
