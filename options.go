package quickcdc

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chmduquesne/rollinghash"
	"github.com/sirupsen/logrus"
)

// ErrInvalidConfig is wrapped by every configuration error.
var ErrInvalidConfig = errors.New("invalid chunking config")

var (
	// ErrInvalidMinSize is returned when minSize is 0.
	ErrInvalidMinSize = fmt.Errorf("%w: minSize must be greater than 0", ErrInvalidConfig)

	// ErrInvalidMaxSize is returned when maxSize is 0.
	ErrInvalidMaxSize = fmt.Errorf("%w: maxSize must be greater than 0", ErrInvalidConfig)

	// ErrMaxSizeTooSmall is returned when maxSize is smaller than minSize.
	ErrMaxSizeTooSmall = fmt.Errorf("%w: maxSize must not be smaller than minSize", ErrInvalidConfig)

	// ErrInvalidWindowSize is returned when windowSize is 0.
	ErrInvalidWindowSize = fmt.Errorf("%w: windowSize must be greater than 0", ErrInvalidConfig)

	// ErrWindowTooLarge is returned when windowSize is larger than minSize.
	ErrWindowTooLarge = fmt.Errorf("%w: windowSize must not be larger than minSize", ErrInvalidConfig)

	// ErrInvalidMaskBits is returned when the mask bit count is above 32.
	ErrInvalidMaskBits = fmt.Errorf("%w: mask bits must be between 0 and 32", ErrInvalidConfig)

	// ErrInvalidPlacement is returned for an unknown window placement.
	ErrInvalidPlacement = fmt.Errorf("%w: unknown window placement", ErrInvalidConfig)

	// ErrInvalidHash is returned for an unknown hash kind.
	ErrInvalidHash = fmt.Errorf("%w: unknown hash", ErrInvalidConfig)

	// ErrInvalidBufferSize is returned when bufferSize is not positive.
	ErrInvalidBufferSize = fmt.Errorf("%w: bufferSize must be greater than 0", ErrInvalidConfig)
)

const (
	// DefaultMinSize is the default minimum chunk size (16 KiB).
	DefaultMinSize = 16 * 1024

	// DefaultMaxSize is the default maximum chunk size (256 KiB).
	DefaultMaxSize = 256 * 1024

	// DefaultWindowSize is the default number of bytes the digest covers.
	DefaultWindowSize = 32

	// DefaultMask is the default boundary mask. With 16 bits set a boundary is
	// expected every 64 KiB past the minimum size.
	DefaultMask = 0xFFFF

	// DefaultBufferSize is the default internal buffer size for the streaming API (512 KiB).
	DefaultBufferSize = 512 * 1024
)

// WindowPlacement selects which bytes the digest of a candidate offset covers.
type WindowPlacement uint8

const (
	// WindowFollowing hashes the bytes [i, i+WindowSize) for candidate i.
	WindowFollowing WindowPlacement = iota

	// WindowPreceding hashes the bytes [i-WindowSize, i) for candidate i.
	WindowPreceding
)

func (p WindowPlacement) String() string {
	switch p {
	case WindowFollowing:
		return "following"
	case WindowPreceding:
		return "preceding"
	default:
		return fmt.Sprintf("WindowPlacement(%d)", uint8(p))
	}
}

// ParseWindowPlacement parses "following" or "preceding".
func ParseWindowPlacement(s string) (WindowPlacement, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "following":
		return WindowFollowing, nil
	case "preceding":
		return WindowPreceding, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidPlacement, s)
	}
}

// HashKind selects the rolling hash engine.
type HashKind uint8

const (
	// HashPolynomial is the rolling form of h = h*31 + b.
	HashPolynomial HashKind = iota

	// HashBuzhash is the cyclic polynomial (buzhash) rolling hash.
	HashBuzhash

	// HashAdler32 is the rolling adler32 checksum.
	HashAdler32
)

func (h HashKind) String() string {
	switch h {
	case HashPolynomial:
		return "polynomial"
	case HashBuzhash:
		return "buzhash"
	case HashAdler32:
		return "adler32"
	default:
		return fmt.Sprintf("HashKind(%d)", uint8(h))
	}
}

// ParseHashKind parses "polynomial", "buzhash" or "adler32".
func ParseHashKind(s string) (HashKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "polynomial":
		return HashPolynomial, nil
	case "buzhash":
		return HashBuzhash, nil
	case "adler32":
		return HashAdler32, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidHash, s)
	}
}

// Config is the immutable configuration of a scan.
type Config struct {
	MinSize    uint32          // No boundary is accepted before this many bytes
	MaxSize    uint32          // Hard cut offset when no boundary is found earlier
	WindowSize uint32          // Bytes covered by each digest
	Mask       uint32          // A candidate is a boundary iff digest&Mask == 0
	Placement  WindowPlacement // Window position relative to the candidate
	Hash       HashKind        // Rolling hash engine
	Seed       uint64          // Buzhash table seed, 0 uses the library table
	BufferSize int             // Streaming buffer size (0 = default), raised to MaxSize+WindowSize if smaller
}

// DefaultConfig returns the configuration used when no options are given.
func DefaultConfig() Config {
	return Config{
		MinSize:    DefaultMinSize,
		MaxSize:    DefaultMaxSize,
		WindowSize: DefaultWindowSize,
		Mask:       DefaultMask,
		Placement:  WindowFollowing,
		Hash:       HashPolynomial,
		BufferSize: DefaultBufferSize,
	}
}

// Validate checks the size invariants: 1 <= WindowSize <= MinSize <= MaxSize.
func (c Config) Validate() error {
	if c.MinSize == 0 {
		return ErrInvalidMinSize
	}

	if c.MaxSize == 0 {
		return ErrInvalidMaxSize
	}

	if c.MaxSize < c.MinSize {
		return fmt.Errorf("%w: maxSize (%d), minSize (%d)", ErrMaxSizeTooSmall, c.MaxSize, c.MinSize)
	}

	if c.WindowSize == 0 {
		return ErrInvalidWindowSize
	}

	if c.WindowSize > c.MinSize {
		return fmt.Errorf("%w: windowSize (%d), minSize (%d)", ErrWindowTooLarge, c.WindowSize, c.MinSize)
	}

	if c.Placement > WindowPreceding {
		return fmt.Errorf("%w: %s", ErrInvalidPlacement, c.Placement)
	}

	if c.Hash > HashAdler32 {
		return fmt.Errorf("%w: %s", ErrInvalidHash, c.Hash)
	}

	if c.BufferSize < 0 {
		return ErrInvalidBufferSize
	}

	return nil
}

// Lookahead is the number of bytes past a chunk start needed to decide its cut.
func (c Config) Lookahead() int {
	return int(c.MaxSize) + int(c.WindowSize)
}

// Option is a function that configures a Chunker or ChunkerCore.
type Option func(*config) error

// config holds the configuration together with non-value settings.
type config struct {
	Config

	newHash func() rollinghash.Hash32
	logger  logrus.FieldLogger
}

func defaultConfig() *config {
	return &config{Config: DefaultConfig()}
}

// newConfig runs the options over the defaults and validates the result.
func newConfig(opts []Option) (*config, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.BufferSize == 0 {
		cfg.BufferSize = DefaultBufferSize
	}

	// Auto-adjust buffer size to hold a full look-ahead
	if cfg.BufferSize < cfg.Lookahead() {
		cfg.BufferSize = cfg.Lookahead()
	}

	if cfg.logger == nil {
		cfg.logger = discardLogger()
	}

	return cfg, nil
}

// NewConfig applies opts to the defaults and returns the validated Config.
func NewConfig(opts ...Option) (Config, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return Config{}, err
	}

	return cfg.Config, nil
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.PanicLevel)

	return l
}

// WithConfig replaces the whole configuration. Later options still apply on top.
func WithConfig(c Config) Option {
	return func(cfg *config) error {
		cfg.Config = c

		return nil
	}
}

// WithMinSize sets the minimum chunk size.
func WithMinSize(size uint32) Option {
	return func(c *config) error {
		if size == 0 {
			return ErrInvalidMinSize
		}

		c.MinSize = size

		return nil
	}
}

// WithMaxSize sets the maximum chunk size.
func WithMaxSize(size uint32) Option {
	return func(c *config) error {
		if size == 0 {
			return ErrInvalidMaxSize
		}

		c.MaxSize = size

		return nil
	}
}

// WithWindowSize sets the number of bytes each digest covers.
func WithWindowSize(size uint32) Option {
	return func(c *config) error {
		if size == 0 {
			return ErrInvalidWindowSize
		}

		c.WindowSize = size

		return nil
	}
}

// WithMask sets the boundary mask. A zero mask accepts every candidate, which
// degenerates to fixed-size chunks of MinSize.
func WithMask(mask uint32) Option {
	return func(c *config) error {
		c.Mask = mask

		return nil
	}
}

// WithMaskBits sets the mask to the low n bits. The expected distance between
// boundaries past MinSize is then about 2^n bytes.
func WithMaskBits(n uint8) Option {
	return func(c *config) error {
		if n > 32 {
			return fmt.Errorf("%w: got %d", ErrInvalidMaskBits, n)
		}

		c.Mask = MaskForBits(n)

		return nil
	}
}

// WithWindowPlacement selects whether the window follows or precedes the candidate.
func WithWindowPlacement(p WindowPlacement) Option {
	return func(c *config) error {
		if p > WindowPreceding {
			return fmt.Errorf("%w: %s", ErrInvalidPlacement, p)
		}

		c.Placement = p

		return nil
	}
}

// WithHash selects one of the built-in rolling hash engines.
func WithHash(h HashKind) Option {
	return func(c *config) error {
		if h > HashAdler32 {
			return fmt.Errorf("%w: %s", ErrInvalidHash, h)
		}

		c.Hash = h
		c.newHash = nil

		return nil
	}
}

// WithRollingHash installs a custom engine. newHash is called once per
// ChunkerCore. The core loads each first window with Reset followed by a
// single Write, then advances it with Roll.
func WithRollingHash(newHash func() rollinghash.Hash32) Option {
	return func(c *config) error {
		if newHash == nil {
			return fmt.Errorf("%w: nil rolling hash constructor", ErrInvalidHash)
		}

		c.newHash = newHash

		return nil
	}
}

// WithSeed sets a custom seed for the buzhash table.
// Using a non-zero seed will allocate a per-instance table (1 KiB).
func WithSeed(seed uint64) Option {
	return func(c *config) error {
		c.Seed = seed

		return nil
	}
}

// WithBufferSize sets the internal buffer size for the streaming API.
// It is raised to MaxSize+WindowSize when smaller.
func WithBufferSize(size int) Option {
	return func(c *config) error {
		if size <= 0 {
			return ErrInvalidBufferSize
		}

		c.BufferSize = size

		return nil
	}
}

// WithLogger sets the logger used for scan diagnostics. Logging is off by default.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *config) error {
		c.logger = l

		return nil
	}
}
