package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/assetfmt/internal/digest"
	"github.com/samcharles93/assetfmt/internal/filemap"
	"github.com/samcharles93/assetfmt/internal/logger"
	"github.com/samcharles93/assetfmt/pkg/formats"
)

// loaded is a decoded input file. The mapping is released before it is
// returned; decoded documents copy everything they keep.
type loaded struct {
	path   string
	size   int
	mapped bool
	sum    digest.Hash
	doc    formats.Document
}

func load(path string) (*loaded, error) {
	f, err := filemap.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	doc, err := formats.Decode(f.Data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &loaded{
		path:   path,
		size:   len(f.Data),
		mapped: f.Mapped(),
		sum:    digest.Sum(f.Data),
		doc:    doc,
	}, nil
}

func (a *app) inspectCmd() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Detect and decode files, printing a one-line summary of each",
		ArgsUsage: "<files...>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			paths, err := files(cmd)
			if err != nil {
				return err
			}
			log := logger.FromContext(ctx)

			failed := 0
			for _, path := range paths {
				in, err := load(path)
				if err != nil {
					log.Error("decode failed", "file", path, "error", err)
					failed++
					continue
				}
				log.Debug("loaded", "file", path, "bytes", in.size, "mmap", in.mapped)
				_, _ = fmt.Fprintf(a.stdout, "%s\t%s\t%s\t%s\n", path, in.doc.Format(), in.sum.Short(), in.doc.Summary())
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed to decode", failed, len(paths))
			}
			return nil
		},
	}
}
