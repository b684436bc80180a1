package quickcdc

import "github.com/chmduquesne/rollinghash"

// ChunkerCore implements content-defined boundary detection over caller-managed
// buffers. It provides a low-level FindBoundary API for code that already holds
// the data in memory or manages its own buffering.
//
// For a convenient streaming API over an io.Reader, use Chunker instead.
type ChunkerCore struct {
	// Hot path fields (frequently accessed together)
	hasher rollinghash.Hash32 // Rolling digest over the current window
	mask   uint32             // Boundary mask
	digest uint32             // Last evaluated digest

	// Config fields (read-only after initialization)
	minSize    int // Minimum chunk size
	maxSize    int // Maximum chunk size
	windowSize int // Bytes covered by each digest
	shift      int // Window start relative to the candidate offset

	// State
	next   int  // Next candidate offset within the chunk
	primed bool // hasher holds the window of candidate next-1
	forced bool // Last boundary was a hard cut
}

// NewChunkerCore creates a new ChunkerCore with the given options.
func NewChunkerCore(opts ...Option) (*ChunkerCore, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	return newChunkerCoreWithConfig(cfg), nil
}

func newChunkerCoreWithConfig(cfg *config) *ChunkerCore {
	shift := 0
	if cfg.Placement == WindowPreceding {
		shift = -int(cfg.WindowSize)
	}

	return &ChunkerCore{
		hasher:     hashConstructor(cfg)(),
		mask:       cfg.Mask,
		minSize:    int(cfg.MinSize),
		maxSize:    int(cfg.MaxSize),
		windowSize: int(cfg.WindowSize),
		shift:      shift,
		next:       int(cfg.MinSize),
	}
}

// Reset resets the chunker state for the next chunk or a new stream.
func (c *ChunkerCore) Reset() {
	c.next = c.minSize
	c.primed = false
	c.digest = 0
}

// FindBoundary looks for the end of the chunk whose bytes start at data[0].
// It returns:
//   - boundary: the length of the chunk (the cut offset within data)
//   - digest: the window digest at the cut, or the last evaluated digest for a hard cut
//   - found: true if the cut is decided, false if more data is needed
//
// atEOF tells the core that data holds every remaining byte of the stream.
// When found is false the core keeps its position and rolling window, and the
// next call must pass the same bytes extended with newly available ones; only
// the new bytes are hashed. After a boundary is found the state is reset for
// the following chunk, which starts at data[boundary].
//
// Candidates are tested from MinSize up to min(MaxSize, stream length) and
// the first one whose digest satisfies the mask wins. A candidate whose window
// would run past the end of the stream is not evaluated. Without an accepted
// candidate the chunk is cut at the limit. With atEOF set and non-empty data a
// boundary is always found.
//
// Example usage:
//
//	core, _ := NewChunkerCore(WithMaskBits(13))
//	for offset := 0; offset < len(data); {
//	    boundary, _, _ := core.FindBoundary(data[offset:], true)
//	    processChunk(data[offset : offset+boundary])
//	    offset += boundary
//	}
func (c *ChunkerCore) FindBoundary(data []byte, atEOF bool) (boundary int, digest uint32, found bool) {
	n := len(data)
	if n == 0 {
		return 0, c.digest, false
	}

	limit := c.maxSize
	if atEOF && n < limit {
		limit = n
	}

	// Capture state into local variables
	h := c.hasher
	mask := c.mask
	w := c.windowSize
	d := c.digest

	for i := c.next; i < limit; i++ {
		start := i + c.shift
		end := start + w

		if end > n || i >= n {
			if atEOF {
				// Windows only move right; no later candidate fits either.
				break
			}

			c.next = i
			c.digest = d

			return 0, d, false
		}

		if c.primed {
			h.Roll(data[end-1])
		} else {
			h.Reset()
			_, _ = h.Write(data[start:end])
			c.primed = true
		}

		d = h.Sum32()
		if d&mask == 0 {
			c.forced = false
			c.Reset()

			return i, d, true
		}
	}

	// Hard cut at the limit, which needs the full limit in hand.
	if !atEOF && n < limit {
		c.next = limit
		c.digest = d

		return 0, d, false
	}

	c.forced = true
	c.Reset()

	return limit, d, true
}

// Forced reports whether the last boundary returned by FindBoundary was a
// hard cut at MaxSize or at the end of the stream rather than a content match.
func (c *ChunkerCore) Forced() bool {
	return c.forced
}

// Position returns the next candidate offset within the chunk being processed.
func (c *ChunkerCore) Position() int {
	return c.next
}

// Digest returns the last evaluated window digest.
func (c *ChunkerCore) Digest() uint32 {
	return c.digest
}

// MinSize returns the minimum chunk size.
func (c *ChunkerCore) MinSize() int {
	return c.minSize
}

// MaxSize returns the maximum chunk size.
func (c *ChunkerCore) MaxSize() int {
	return c.maxSize
}

// WindowSize returns the number of bytes each digest covers.
func (c *ChunkerCore) WindowSize() int {
	return c.windowSize
}

// Mask returns the boundary mask.
func (c *ChunkerCore) Mask() uint32 {
	return c.mask
}

// Lookahead returns how many bytes from the chunk start are enough for
// FindBoundary to decide without atEOF.
func (c *ChunkerCore) Lookahead() int {
	return c.maxSize + c.windowSize
}
