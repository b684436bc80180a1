package quickcdc

import (
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/sirupsen/logrus"
)

// ErrSourceRead is matched by errors.Is for every failure of the byte source.
var ErrSourceRead = errors.New("reading source")

// ReadError reports a failure of the underlying reader. The chunk that was
// open when the read failed is abandoned; no partial chunk is emitted.
type ReadError struct {
	Offset uint64 // Stream offset of the abandoned chunk
	Err    error  // Error returned by the reader
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("%s at offset %d: %v", ErrSourceRead, e.Offset, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrSourceRead) hold for any ReadError.
func (e *ReadError) Is(target error) bool { return target == ErrSourceRead }

// Extent is a half-open byte range [Offset, Offset+Length) of the stream.
type Extent struct {
	Offset uint64 // Absolute offset in the stream
	Length uint32 // Size in bytes
}

// End returns the offset just past the extent.
func (e Extent) End() uint64 {
	return e.Offset + uint64(e.Length)
}

// Chunk represents a content-defined chunk with its metadata.
type Chunk struct {
	Offset uint64 // Absolute offset in the stream
	Length uint32 // Chunk size in bytes
	Digest uint32 // Window digest at the boundary (last evaluated digest for hard cuts)
	Forced bool   // Cut at MaxSize or end of stream rather than on content
	Data   []byte // Chunk data (points into internal buffer)
}

// Extent returns the byte range covered by the chunk.
func (c Chunk) Extent() Extent {
	return Extent{Offset: c.Offset, Length: c.Length}
}

// Chunker provides a streaming API for content-defined chunking.
// It wraps an io.Reader and returns chunks via the Next() method.
//
// Memory use is bounded by the buffer size regardless of the stream length:
// the chunker only needs MaxSize+WindowSize bytes past the start of the open
// chunk to place its cut.
type Chunker struct {
	core   ChunkerCore        // Core chunking algorithm (embedded to avoid pointer allocation)
	reader io.Reader          // Input stream
	log    logrus.FieldLogger // Scan diagnostics

	buf    []byte // Internal buffer
	cursor int    // Start of the open chunk in buf
	end    int    // End of valid data in buf
	offset uint64 // Absolute offset of the open chunk
	eof    bool   // EOF reached
	rerr   error  // Read failure not yet surfaced
	err    error  // Sticky read failure
}

// NewChunker creates a new Chunker that reads from the given io.Reader.
func NewChunker(r io.Reader, opts ...Option) (*Chunker, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	return &Chunker{
		core:   *newChunkerCoreWithConfig(cfg),
		reader: r,
		log:    cfg.logger,
		buf:    make([]byte, cfg.BufferSize),
	}, nil
}

// fillBuffer moves unconsumed data to the front of the buffer and reads more
// from the reader until the buffer is full or the stream ends. A read failure
// keeps the bytes read before it and is reported on the next call, once the
// buffered chunks have been drained.
func (c *Chunker) fillBuffer() error {
	if c.rerr != nil {
		return c.rerr
	}

	n := copy(c.buf, c.buf[c.cursor:c.end])
	c.cursor = 0
	c.end = n

	m, err := io.ReadFull(c.reader, c.buf[n:])
	c.end += m

	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		c.eof = true
	} else if err != nil {
		c.rerr = err
	}

	return nil
}

// Next returns the next chunk from the stream.
// Returns io.EOF when the stream is exhausted.
//
// The returned Chunk.Data slice is valid until the next call to Next().
// If you need to keep the data, copy it to your own buffer.
//
// A failure of the reader is returned as a *ReadError. Chunks that were fully
// determined by bytes read before the failure are still returned first. The
// error is sticky until Reset.
func (c *Chunker) Next() (Chunk, error) {
	if c.err != nil {
		return Chunk{}, c.err
	}

	for {
		available := c.buf[c.cursor:c.end]
		if len(available) == 0 && c.eof {
			return Chunk{}, io.EOF
		}

		boundary, digest, found := c.core.FindBoundary(available, c.eof)
		if found {
			return c.emit(available, boundary, digest), nil
		}

		if err := c.fillBuffer(); err != nil {
			return Chunk{}, c.fail(err)
		}
	}
}

func (c *Chunker) emit(available []byte, boundary int, digest uint32) Chunk {
	chunk := Chunk{
		Offset: c.offset,
		Length: uint32(boundary), //nolint:gosec // G115
		Digest: digest,
		Forced: c.core.Forced(),
		Data:   available[:boundary],
	}

	if chunk.Forced {
		c.log.WithFields(logrus.Fields{
			"offset": chunk.Offset,
			"length": chunk.Length,
		}).Trace("hard cut without content boundary")
	}

	c.cursor += boundary
	c.offset += uint64(boundary) //nolint:gosec // G115

	return chunk
}

func (c *Chunker) fail(err error) error {
	c.log.WithFields(logrus.Fields{
		"offset":   c.offset,
		"buffered": c.end - c.cursor,
	}).WithError(err).Debug("source read failed, abandoning open chunk")

	c.core.Reset()
	c.cursor = c.end
	c.err = &ReadError{Offset: c.offset, Err: err}

	return c.err
}

// All returns an iterator over the remaining chunks. Iteration stops after
// the last chunk or after yielding an error.
//
// As with Next, each Chunk.Data is only valid until the iteration advances.
func (c *Chunker) All() iter.Seq2[Chunk, error] {
	return func(yield func(Chunk, error) bool) {
		for {
			chunk, err := c.Next()
			if errors.Is(err, io.EOF) {
				return
			}

			if !yield(chunk, err) || err != nil {
				return
			}
		}
	}
}

// Reset resets the chunker to start processing a new stream.
// The reader is replaced with the provided one, and all state is cleared.
func (c *Chunker) Reset(r io.Reader) {
	c.reader = r
	c.core.Reset()
	c.cursor = 0
	c.end = 0
	c.offset = 0
	c.eof = false
	c.rerr = nil
	c.err = nil
}

// Offset returns the absolute offset of the next chunk in the stream.
func (c *Chunker) Offset() uint64 {
	return c.offset
}
