// Package fingerprint identifies chunk contents by their BLAKE3 digest.
package fingerprint

import (
	"encoding"
	"encoding/hex"
	"fmt"
	"io"
	"sync"

	"github.com/zeebo/blake3"
)

// Size is the length of a Fingerprint in bytes.
const Size = 32

// Fingerprint is the 256-bit BLAKE3 digest of a chunk.
type Fingerprint [Size]byte

var (
	_ encoding.TextMarshaler   = Fingerprint{}
	_ encoding.TextUnmarshaler = (*Fingerprint)(nil)
)

// Sum returns the fingerprint of data.
func Sum(data []byte) Fingerprint {
	return blake3.Sum256(data)
}

// SumReader hashes r to the end and returns the fingerprint and the byte count.
func SumReader(r io.Reader) (Fingerprint, int64, error) {
	h := blake3.New()

	n, err := io.Copy(h, r)
	if err != nil {
		return Fingerprint{}, n, err
	}

	var fp Fingerprint
	copy(fp[:], h.Sum(nil))

	return fp, n, nil
}

// Writer accumulates a fingerprint over everything written to it.
type Writer struct {
	h *blake3.Hasher
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{h: blake3.New()}
}

func (w *Writer) Write(p []byte) (int, error) {
	return w.h.Write(p)
}

// Fingerprint returns the digest of the bytes written so far.
func (w *Writer) Fingerprint() Fingerprint {
	var fp Fingerprint
	copy(fp[:], w.h.Sum(nil))

	return fp
}

func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// MarshalText encodes the fingerprint as lowercase hex.
func (f Fingerprint) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText decodes a hex fingerprint.
func (f *Fingerprint) UnmarshalText(b []byte) error {
	if hex.DecodedLen(len(b)) != Size {
		return fmt.Errorf("fingerprint must be %d hex characters, got %d", 2*Size, len(b))
	}

	_, err := hex.Decode(f[:], b)

	return err
}

// Stats summarizes a Tally.
type Stats struct {
	Chunks       uint64 `json:"chunks"`
	Bytes        uint64 `json:"bytes"`
	UniqueChunks uint64 `json:"unique_chunks"`
	UniqueBytes  uint64 `json:"unique_bytes"`
}

// UniqueRatio is the share of bytes that belong to the first occurrence of a
// chunk. It is 1 when nothing repeats and 0 for no input.
func (s Stats) UniqueRatio() float64 {
	if s.Bytes == 0 {
		return 0
	}

	return float64(s.UniqueBytes) / float64(s.Bytes)
}

// AverageSize is the mean chunk length.
func (s Stats) AverageSize() float64 {
	if s.Chunks == 0 {
		return 0
	}

	return float64(s.Bytes) / float64(s.Chunks)
}

// Tally counts chunks and how many of them are distinct. It is safe for
// concurrent use.
type Tally struct {
	mu    sync.Mutex
	seen  map[Fingerprint]struct{}
	stats Stats
}

// NewTally returns an empty Tally.
func NewTally() *Tally {
	return &Tally{seen: make(map[Fingerprint]struct{})}
}

// Add records a chunk of the given length and reports whether its
// fingerprint had not been seen before.
func (t *Tally) Add(fp Fingerprint, length uint32) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stats.Chunks++
	t.stats.Bytes += uint64(length)

	if _, ok := t.seen[fp]; ok {
		return false
	}

	t.seen[fp] = struct{}{}
	t.stats.UniqueChunks++
	t.stats.UniqueBytes += uint64(length)

	return true
}

// Stats returns a snapshot of the counters.
func (t *Tally) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.stats
}
