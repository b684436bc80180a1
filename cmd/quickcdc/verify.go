package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/kalbasit/quickcdc"
	"github.com/kalbasit/quickcdc/internal/fingerprint"
)

// errVerifyFailed is returned when at least one file does not verify.
var errVerifyFailed = errors.New("verification failed")

type verifyResult struct {
	file   string
	chunks int
	size   uint64
	fp     fingerprint.Fingerprint
	err    error
}

func (a *app) verifyCmd() *cli.Command {
	return &cli.Command{
		Name:      "verify",
		Usage:     "Check that the chunks of each file reassemble it and respect the size limits",
		ArgsUsage: "FILE...",
		Flags: append(chunkingFlags(),
			&cli.IntFlag{Name: "workers", Aliases: []string{"j"}, Usage: "Files verified in parallel"},
		),
		Action: a.runVerify,
	}
}

func (a *app) runVerify(c *cli.Context) error {
	files := c.Args().Slice()
	if len(files) == 0 {
		return fmt.Errorf("at least one FILE is required")
	}

	workers := a.cfg.Workers
	if c.IsSet("workers") {
		workers = c.Int("workers")
	}

	if workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", workers)
	}

	opts, cfg, err := chunkerOptions(c, a.cfg.Chunking)
	if err != nil {
		return err
	}

	results := make([]verifyResult, len(files))

	eg, ctx := errgroup.WithContext(c.Context)
	eg.SetLimit(workers)

	for i, name := range files {
		eg.Go(func() error {
			results[i] = verifyFile(ctx, name, cfg, opts)

			return nil
		})
	}

	_ = eg.Wait()

	failed := 0

	for _, res := range results {
		if res.err != nil {
			failed++

			fmt.Fprintf(c.App.Writer, "FAIL %s: %v\n", res.file, res.err)

			continue
		}

		fmt.Fprintf(c.App.Writer, "OK   %s chunks=%d size=%d blake3=%s\n", res.file, res.chunks, res.size, res.fp)
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d files", errVerifyFailed, failed, len(files))
	}

	return nil
}

// verifyFile chunks name, hashes the concatenated chunk data and compares it
// with a second, independent read of the file.
func verifyFile(ctx context.Context, name string, cfg quickcdc.Config, opts []quickcdc.Option) verifyResult {
	res := verifyResult{file: name}

	f, err := os.Open(name)
	if err != nil {
		res.err = fmt.Errorf("error opening file: %w", err)

		return res
	}
	defer f.Close()

	chunker, err := quickcdc.NewChunker(f, opts...)
	if err != nil {
		res.err = err

		return res
	}

	rebuilt := fingerprint.NewWriter()

	// A chunk shorter than MinSize is only allowed as the last one.
	var short *quickcdc.Extent

	for chunk, err := range chunker.All() {
		if err != nil {
			res.err = err

			return res
		}

		if err := ctx.Err(); err != nil {
			res.err = err

			return res
		}

		if short != nil {
			res.err = fmt.Errorf("chunk at offset %d is %d bytes, below the %d byte minimum", short.Offset, short.Length, cfg.MinSize)

			return res
		}

		if chunk.Offset != res.size {
			res.err = fmt.Errorf("chunk at offset %d, expected %d", chunk.Offset, res.size)

			return res
		}

		if chunk.Length == 0 || chunk.Length > cfg.MaxSize {
			res.err = fmt.Errorf("chunk at offset %d is %d bytes, outside 1..%d", chunk.Offset, chunk.Length, cfg.MaxSize)

			return res
		}

		if chunk.Length < cfg.MinSize {
			extent := chunk.Extent()
			short = &extent
		}

		_, _ = rebuilt.Write(chunk.Data)
		res.chunks++
		res.size += uint64(chunk.Length)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		res.err = err

		return res
	}

	want, n, err := fingerprint.SumReader(f)
	if err != nil {
		res.err = err

		return res
	}

	res.fp = rebuilt.Fingerprint()

	if uint64(n) != res.size || want != res.fp { //nolint:gosec // G115
		res.err = fmt.Errorf("reassembled %d bytes with blake3 %s, file has %d bytes with blake3 %s", res.size, res.fp, n, want)

		return res
	}

	logger.WithFields(logrus.Fields{
		"file":   name,
		"chunks": res.chunks,
	}).Debug("file verified")

	return res
}
