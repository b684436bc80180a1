package main

import (
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/kalbasit/quickcdc"
	"github.com/kalbasit/quickcdc/internal/config"
)

// chunkingFlags are shared by every command. Unset flags fall back to the
// configuration file, then to the defaults.
func chunkingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "min", Usage: "Minimum chunk size, e.g. 16KiB"},
		&cli.StringFlag{Name: "max", Usage: "Maximum chunk size, e.g. 256KiB"},
		&cli.UintFlag{Name: "window", Usage: "Bytes covered by the rolling hash"},
		&cli.StringFlag{Name: "mask", Usage: "Boundary mask, decimal or 0x-prefixed hex"},
		&cli.UintFlag{Name: "mask-bits", Usage: "Boundary mask as a number of low bits"},
		&cli.StringFlag{Name: "placement", Usage: "Window placement: following or preceding"},
		&cli.StringFlag{Name: "hash", Usage: "Rolling hash: polynomial, buzhash or adler32"},
		&cli.Uint64Flag{Name: "seed", Usage: "Seed for the buzhash table"},
	}
}

// chunking applies the command line chunking flags over base.
func chunking(c *cli.Context, base config.Chunking) (config.Chunking, error) {
	ch := base

	if c.IsSet("min") {
		size, err := config.ParseSize(c.String("min"))
		if err != nil {
			return ch, fmt.Errorf("--min: %w", err)
		}

		ch.MinSize = size
	}

	if c.IsSet("max") {
		size, err := config.ParseSize(c.String("max"))
		if err != nil {
			return ch, fmt.Errorf("--max: %w", err)
		}

		ch.MaxSize = size
	}

	if c.IsSet("window") {
		ch.WindowSize = uint32(c.Uint("window")) //nolint:gosec // G115
	}

	if c.IsSet("mask") && c.IsSet("mask-bits") {
		return ch, config.ErrMaskConflict
	}

	if c.IsSet("mask") {
		v, err := strconv.ParseUint(c.String("mask"), 0, 32)
		if err != nil {
			return ch, fmt.Errorf("--mask: %w", err)
		}

		mask := uint32(v)
		ch.Mask, ch.MaskBits = &mask, nil
	}

	if c.IsSet("mask-bits") {
		n := c.Uint("mask-bits")
		if n > 32 {
			return ch, fmt.Errorf("--mask-bits: %w: got %d", quickcdc.ErrInvalidMaskBits, n)
		}

		bits := uint8(n)
		ch.Mask, ch.MaskBits = nil, &bits
	}

	if c.IsSet("placement") {
		ch.Placement = c.String("placement")
	}

	if c.IsSet("hash") {
		ch.Hash = c.String("hash")
	}

	if c.IsSet("seed") {
		ch.Seed = c.Uint64("seed")
	}

	return ch, nil
}

// chunkerOptions resolves the chunking flags into validated library options.
func chunkerOptions(c *cli.Context, base config.Chunking) ([]quickcdc.Option, quickcdc.Config, error) {
	ch, err := chunking(c, base)
	if err != nil {
		return nil, quickcdc.Config{}, err
	}

	opts, err := ch.Options()
	if err != nil {
		return nil, quickcdc.Config{}, err
	}

	opts = append(opts, quickcdc.WithLogger(logger))

	cfg, err := quickcdc.NewConfig(opts...)
	if err != nil {
		return nil, quickcdc.Config{}, err
	}

	logger.WithField("config", fmt.Sprintf("%+v", cfg)).Debug("chunking configuration")

	return opts, cfg, nil
}
