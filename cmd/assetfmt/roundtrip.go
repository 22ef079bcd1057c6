package main

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"sync"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/assetfmt/internal/digest"
	"github.com/samcharles93/assetfmt/internal/logger"
	"github.com/samcharles93/assetfmt/pkg/formats"
)

// roundtripResult is the outcome of decode, encode, decode for one file.
type roundtripResult struct {
	Path      string
	Format    string
	In        digest.Hash
	Out       digest.Hash
	Identical bool
	Equal     bool
	Err       error
}

func (r roundtripResult) ok() bool { return r.Err == nil && r.Identical && r.Equal }

func roundtripFile(path string) roundtripResult {
	res := roundtripResult{Path: path}
	in, err := load(path)
	if err != nil {
		res.Err = err
		return res
	}
	res.Format = in.doc.Format()
	res.In = in.sum

	out, err := in.doc.Encode()
	if err != nil {
		res.Err = fmt.Errorf("%s: encode: %w", path, err)
		return res
	}
	res.Out = digest.Sum(out)
	res.Identical = res.In == res.Out

	again, err := formats.Decode(out)
	if err != nil {
		res.Err = fmt.Errorf("%s: re-decode: %w", path, err)
		return res
	}
	res.Equal = reflect.DeepEqual(in.doc, again)
	return res
}

// roundtripAll runs roundtripFile over paths with at most workers files in
// flight. Results keep the order of paths.
func roundtripAll(paths []string, workers int) []roundtripResult {
	results := make([]roundtripResult, len(paths))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for range min(workers, len(paths)) {
		wg.Go(func() {
			for i := range jobs {
				results[i] = roundtripFile(paths[i])
			}
		})
	}
	for i := range paths {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return results
}

func (a *app) roundtripCmd() *cli.Command {
	var workers int
	return &cli.Command{
		Name:      "roundtrip",
		Usage:     "Decode, re-encode and decode again, checking the output is unchanged",
		ArgsUsage: "<files...>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "workers", Aliases: []string{"j"}, Usage: "files processed concurrently", Value: runtime.NumCPU(), Destination: &workers},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			paths, err := files(cmd)
			if err != nil {
				return err
			}
			if a.cfg.Workers != nil && !cmd.IsSet("workers") {
				workers = *a.cfg.Workers
			}
			if workers < 1 {
				return errors.New("--workers must be at least 1")
			}
			log := logger.FromContext(ctx)
			log.Debug("roundtrip starting", "files", len(paths), "workers", workers)

			failed := 0
			for _, res := range roundtripAll(paths, workers) {
				if res.Err != nil {
					log.Error("roundtrip failed", "file", res.Path, "error", res.Err)
					failed++
					continue
				}
				status := "ok"
				if !res.ok() {
					status = "MISMATCH"
					failed++
					log.Warn("roundtrip mismatch", "file", res.Path, "in", res.In.String(), "out", res.Out.String(), "identical", res.Identical, "equal", res.Equal)
				}
				_, _ = fmt.Fprintf(a.stdout, "%s\t%s\t%s\t%s\tidentical=%t equal=%t\n",
					status, res.Path, res.Format, res.Out.Short(), res.Identical, res.Equal)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files did not round-trip", failed, len(paths))
			}
			return nil
		},
	}
}
