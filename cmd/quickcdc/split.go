package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/docker/go-units"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/kalbasit/quickcdc"
	"github.com/kalbasit/quickcdc/internal/fingerprint"
)

// chunkRecord is one line of split output.
type chunkRecord struct {
	File        string                  `json:"file"`
	Offset      uint64                  `json:"offset"`
	Length      uint32                  `json:"length"`
	Digest      uint32                  `json:"digest"`
	Forced      bool                    `json:"forced"`
	Fingerprint fingerprint.Fingerprint `json:"blake3"`
}

type splitSummary struct {
	Files int `json:"files"`
	fingerprint.Stats
	AverageSize float64 `json:"average_size"`
	UniqueRatio float64 `json:"unique_ratio"`
}

func (a *app) splitCmd() *cli.Command {
	return &cli.Command{
		Name:      "split",
		Usage:     "Chunk files and print one line per chunk",
		ArgsUsage: "FILE...",
		Flags: append(chunkingFlags(),
			&cli.IntFlag{Name: "workers", Aliases: []string{"j"}, Usage: "Files chunked in parallel"},
			&cli.StringFlag{Name: "format", Value: "text", Usage: "Output format: text or json"},
			&cli.BoolFlag{Name: "summary", Usage: "Print totals and the unique chunk ratio"},
		),
		Action: a.runSplit,
	}
}

func (a *app) runSplit(c *cli.Context) error {
	files := c.Args().Slice()
	if len(files) == 0 {
		return fmt.Errorf("at least one FILE is required")
	}

	format := c.String("format")
	if format != "text" && format != "json" {
		return fmt.Errorf("invalid format %q (must be text or json)", format)
	}

	workers := a.cfg.Workers
	if c.IsSet("workers") {
		workers = c.Int("workers")
	}

	if workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", workers)
	}

	opts, _, err := chunkerOptions(c, a.cfg.Chunking)
	if err != nil {
		return err
	}

	pool, err := quickcdc.NewChunkerPool(opts...)
	if err != nil {
		return fmt.Errorf("error creating chunker: %w", err)
	}

	tally := fingerprint.NewTally()
	results := make([][]chunkRecord, len(files))

	eg, ctx := errgroup.WithContext(c.Context)
	eg.SetLimit(workers)

	for i, name := range files {
		eg.Go(func() error {
			records, err := splitFile(ctx, pool, tally, name)
			results[i] = records

			return err
		})
	}

	if err := eg.Wait(); err != nil {
		return err
	}

	// Output follows argument order regardless of which worker finished first.
	out := c.App.Writer
	enc := json.NewEncoder(out)

	for _, records := range results {
		for _, rec := range records {
			if format == "json" {
				if err := enc.Encode(rec); err != nil {
					return err
				}

				continue
			}

			fmt.Fprintf(out, "%s %d %d %08x %t %s\n",
				rec.File, rec.Offset, rec.Length, rec.Digest, rec.Forced, rec.Fingerprint)
		}
	}

	if c.Bool("summary") {
		return printSummary(out, format, len(files), tally.Stats())
	}

	return nil
}

func splitFile(ctx context.Context, pool *quickcdc.ChunkerPool, tally *fingerprint.Tally, name string) ([]chunkRecord, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer f.Close()

	chunker, err := pool.Get(f)
	if err != nil {
		return nil, fmt.Errorf("error creating chunker: %w", err)
	}
	defer pool.Put(chunker)

	var (
		records []chunkRecord
		bytes   uint64
	)

	for chunk, err := range chunker.All() {
		if err != nil {
			return nil, fmt.Errorf("error chunking %s: %w", name, err)
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		fp := fingerprint.Sum(chunk.Data)
		tally.Add(fp, chunk.Length)

		records = append(records, chunkRecord{
			File:        name,
			Offset:      chunk.Offset,
			Length:      chunk.Length,
			Digest:      chunk.Digest,
			Forced:      chunk.Forced,
			Fingerprint: fp,
		})
		bytes += uint64(chunk.Length)
	}

	logger.WithFields(logrus.Fields{
		"file":   name,
		"chunks": len(records),
		"bytes":  bytes,
	}).Debug("file chunked")

	return records, nil
}

func printSummary(w io.Writer, format string, files int, stats fingerprint.Stats) error {
	summary := splitSummary{
		Files:       files,
		Stats:       stats,
		AverageSize: stats.AverageSize(),
		UniqueRatio: stats.UniqueRatio(),
	}

	if format == "json" {
		return json.NewEncoder(w).Encode(map[string]splitSummary{"summary": summary})
	}

	_, err := fmt.Fprintf(w, "files: %d, chunks: %d, size: %s, average chunk: %s, unique chunks: %d (%.1f%% of bytes)\n",
		summary.Files,
		stats.Chunks,
		units.BytesSize(float64(stats.Bytes)),
		units.BytesSize(summary.AverageSize),
		stats.UniqueChunks,
		100*summary.UniqueRatio)

	return err
}
