package quickcdc

import (
	"github.com/chmduquesne/rollinghash"
	"github.com/chmduquesne/rollinghash/adler32"
	"github.com/chmduquesne/rollinghash/buzhash32"
)

// PolynomialBase is the multiplier of the polynomial hash.
const PolynomialBase = 31

// PolynomialSum computes h = h*31 + b over data with wrapping uint32
// arithmetic. It rehashes the whole input and serves as the reference for
// the rolling Polynomial.
func PolynomialSum(data []byte) uint32 {
	var h uint32
	for _, b := range data {
		h = h*PolynomialBase + uint32(b)
	}

	return h
}

// Polynomial is a rolling version of PolynomialSum. For a window b0..bn-1 the
// digest is sum(bk * 31^(n-1-k)) mod 2^32; Roll subtracts the outgoing term
// before shifting in the new byte, so the digest always equals PolynomialSum
// of the current window.
type Polynomial struct {
	window []byte // Ring buffer holding the current window
	oldest int    // Index of the oldest byte in window
	pow    uint32 // 31^(len(window)-1), weight of the oldest byte
	sum    uint32
}

var _ rollinghash.Hash32 = (*Polynomial)(nil)

// NewPolynomial returns an empty rolling polynomial hash.
func NewPolynomial() *Polynomial {
	return &Polynomial{window: make([]byte, 0, rollinghash.DefaultWindowCap)}
}

// Write appends data to the rolling window. It never returns an error.
func (p *Polynomial) Write(data []byte) (int, error) {
	if len(data) == 0 {
		return 0, nil
	}

	if p.oldest != 0 {
		w := make([]byte, 0, len(p.window)+len(data))
		w = append(w, p.window[p.oldest:]...)
		w = append(w, p.window[:p.oldest]...)
		p.window = w
		p.oldest = 0
	}

	for _, b := range data {
		if len(p.window) > 0 {
			p.pow *= PolynomialBase
		} else {
			p.pow = 1
		}

		p.sum = p.sum*PolynomialBase + uint32(b)
		p.window = append(p.window, b)
	}

	return len(data), nil
}

// Roll slides the window by one byte. Rolling an empty window behaves like
// writing a single byte.
func (p *Polynomial) Roll(b byte) {
	if len(p.window) == 0 {
		_, _ = p.Write([]byte{b})

		return
	}

	out := p.window[p.oldest]
	p.sum = (p.sum-uint32(out)*p.pow)*PolynomialBase + uint32(b)
	p.window[p.oldest] = b

	p.oldest++
	if p.oldest == len(p.window) {
		p.oldest = 0
	}
}

// Sum32 returns the digest of the current window.
func (p *Polynomial) Sum32() uint32 {
	return p.sum
}

// Sum appends the big-endian digest to b.
func (p *Polynomial) Sum(b []byte) []byte {
	v := p.sum

	return append(b, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// Reset empties the window.
func (p *Polynomial) Reset() {
	p.window = p.window[:0]
	p.oldest = 0
	p.pow = 0
	p.sum = 0
}

// Size returns the digest size in bytes.
func (p *Polynomial) Size() int { return 4 }

// BlockSize returns 1; the hash consumes single bytes.
func (p *Polynomial) BlockSize() int { return 1 }

// hashConstructor returns the engine constructor selected by cfg.
func hashConstructor(cfg *config) func() rollinghash.Hash32 {
	if cfg.newHash != nil {
		return cfg.newHash
	}

	switch cfg.Hash {
	case HashBuzhash:
		if cfg.Seed == 0 {
			return func() rollinghash.Hash32 { return buzhash32.New() }
		}

		table := generateTable(cfg.Seed)

		return func() rollinghash.Hash32 { return buzhash32.NewFromUint32Array(table) }
	case HashAdler32:
		return func() rollinghash.Hash32 { return adler32.New() }
	default:
		return func() rollinghash.Hash32 { return NewPolynomial() }
	}
}

// generateTable derives a buzhash byte table from seed using splitmix64.
func generateTable(seed uint64) [256]uint32 {
	var table [256]uint32

	state := seed
	for i := range table {
		state += 0x9E3779B97F4A7C15
		z := state
		z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
		z = (z ^ (z >> 27)) * 0x94D049BB133111EB
		z ^= z >> 31
		table[i] = uint32(z >> 32) //nolint:gosec // G115
	}

	return table
}
