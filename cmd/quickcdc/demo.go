package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/kalbasit/quickcdc"
	"github.com/kalbasit/quickcdc/internal/config"
)

const (
	sampleText = "Lorem ipsum dolor sit amet, consectetur adipiscing elit. Quisque vehicula. " +
		"Lorem ipsum dolor sit amet, consectetur adipiscing elit. Quisque vehicula. " +
		"Lorem ipsum dolor sit amet, consectetur adipiscing elit. Quisque vehicula. " +
		"Lorem ipsum dolor sit amet, consectetur adipiscing elit. Quisque vehicula."

	chunkSeparator = "\n---\n"
)

// demoChunking is sized for a few hundred bytes of text.
func demoChunking() config.Chunking {
	mask := uint32(0xFF)

	return config.Chunking{
		MinSize:    32,
		MaxSize:    90,
		WindowSize: 32,
		Mask:       &mask,
		Placement:  quickcdc.WindowFollowing.String(),
		Hash:       quickcdc.HashPolynomial.String(),
	}
}

func (a *app) demoCmd() *cli.Command {
	return &cli.Command{
		Name:  "demo",
		Usage: "Chunk a sample text and print the chunks separated by ---",
		Flags: append(chunkingFlags(),
			&cli.StringFlag{Name: "text", Value: sampleText, Usage: "Text to chunk"},
		),
		Action: a.runDemo,
	}
}

// runDemo ignores the chunking section of the configuration file; only
// explicit flags change the demo sizes.
func (a *app) runDemo(c *cli.Context) error {
	opts, _, err := chunkerOptions(c, demoChunking())
	if err != nil {
		return err
	}

	chunker, err := quickcdc.NewChunker(strings.NewReader(c.String("text")), opts...)
	if err != nil {
		return err
	}

	for chunk, err := range chunker.All() {
		if err != nil {
			return err
		}

		if _, err := fmt.Fprintf(c.App.Writer, "%s%s", chunk.Data, chunkSeparator); err != nil {
			return err
		}
	}

	return nil
}
