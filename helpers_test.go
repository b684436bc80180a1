package quickcdc_test

import (
	"errors"
	"io"
	"testing"

	"github.com/kalbasit/quickcdc"
)

// pseudoRandomBytes returns n reproducible bytes drawn from splitmix64.
func pseudoRandomBytes(n int, seed uint64) []byte {
	data := make([]byte, n)

	state := seed
	for i := 0; i < n; i += 8 {
		state += 0x9E3779B97F4A7C15
		z := state
		z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
		z = (z ^ (z >> 27)) * 0x94D049BB133111EB
		z ^= z >> 31

		for j := 0; j < 8 && i+j < n; j++ {
			data[i+j] = byte(z >> (8 * j))
		}
	}

	return data
}

// referenceSplit scans data hashing every candidate window from scratch.
func referenceSplit(
	data []byte,
	minSize, maxSize, window int,
	mask uint32,
	placement quickcdc.WindowPlacement,
	digest func([]byte) uint32,
) []quickcdc.Extent {
	var extents []quickcdc.Extent

	for start := 0; start < len(data); {
		limit := min(start+maxSize, len(data))
		cut := limit

		for i := start + minSize; i < limit; i++ {
			ws := i
			if placement == quickcdc.WindowPreceding {
				ws = i - window
			}

			if ws+window > len(data) {
				continue
			}

			if quickcdc.IsBoundary(digest(data[ws:ws+window]), mask) {
				cut = i

				break
			}
		}

		extents = append(extents, quickcdc.Extent{
			Offset: uint64(start),       //nolint:gosec // G115
			Length: uint32(cut - start), //nolint:gosec // G115
		})
		start = cut
	}

	return extents
}

// drain reads every chunk from c, copying the data out of the chunker buffer.
func drain(t testing.TB, c *quickcdc.Chunker) []quickcdc.Chunk {
	t.Helper()

	var chunks []quickcdc.Chunk

	for {
		chunk, err := c.Next()
		if errors.Is(err, io.EOF) {
			return chunks
		}

		if err != nil {
			t.Fatal(err)
		}

		chunk.Data = append([]byte(nil), chunk.Data...)
		chunks = append(chunks, chunk)
	}
}

func extentsOf(chunks []quickcdc.Chunk) []quickcdc.Extent {
	extents := make([]quickcdc.Extent, len(chunks))
	for i, c := range chunks {
		extents[i] = c.Extent()
	}

	return extents
}

// smallOptions gives chunks of a few hundred bytes so tests see many boundaries.
func smallOptions(extra ...quickcdc.Option) []quickcdc.Option {
	return append([]quickcdc.Option{
		quickcdc.WithMinSize(64),
		quickcdc.WithMaxSize(1024),
		quickcdc.WithWindowSize(16),
		quickcdc.WithMaskBits(6),
	}, extra...)
}
