package quickcdc_test

import (
	"bytes"
	"crypto/rand"
	"errors"
	"io"
	"math"
	"sync"
	"testing"
	"testing/iotest"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/kalbasit/quickcdc"
)

// TestChunkerNext tests the Next() API for correctness.
func TestChunkerNext(t *testing.T) {
	t.Parallel()

	data := make([]byte, 1024*1024) // 1 MiB
	if _, err := rand.Read(data); err != nil {
		t.Fatal(err)
	}

	chunker, err := quickcdc.NewChunker(bytes.NewReader(data), quickcdc.WithMaskBits(15))
	if err != nil {
		t.Fatal(err)
	}

	var chunks []quickcdc.Chunk

	totalSize := uint64(0)

	for {
		chunk, err := chunker.Next()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			t.Fatal(err)
		}

		if chunk.Offset != totalSize {
			t.Errorf("Chunk at offset %d, expected %d", chunk.Offset, totalSize)
		}

		if !bytes.Equal(chunk.Data, data[chunk.Offset:chunk.Offset+uint64(chunk.Length)]) {
			t.Errorf("Chunk data mismatch at offset %d", chunk.Offset)
		}

		chunks = append(chunks, chunk)
		totalSize += uint64(chunk.Length)

		// Verify chunk constraints
		if chunk.Length < quickcdc.DefaultMinSize && chunk.Offset+uint64(chunk.Length) != uint64(len(data)) {
			t.Errorf("Chunk too small: %d bytes at offset %d (not final chunk)", chunk.Length, chunk.Offset)
		}

		if chunk.Length > quickcdc.DefaultMaxSize {
			t.Errorf("Chunk too large: %d bytes at offset %d", chunk.Length, chunk.Offset)
		}
	}

	if totalSize != uint64(len(data)) {
		t.Errorf("Total size mismatch: got %d, want %d", totalSize, len(data))
	}

	if len(chunks) == 0 {
		t.Error("No chunks returned")
	}

	t.Logf("Chunked %d bytes into %d chunks", totalSize, len(chunks))
}

// TestChunkerReconstruction verifies that concatenating the chunks gives back the input.
func TestChunkerReconstruction(t *testing.T) {
	t.Parallel()

	inputs := map[string][]byte{
		"empty":       {},
		"one byte":    {0x42},
		"below min":   pseudoRandomBytes(63, 1),
		"exactly min": pseudoRandomBytes(64, 2),
		"below max":   pseudoRandomBytes(1000, 3),
		"exactly max": pseudoRandomBytes(1024, 4),
		"many chunks": pseudoRandomBytes(200*1024, 5),
		"zeros":       make([]byte, 10*1024),
	}

	for name, data := range inputs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			chunker, err := quickcdc.NewChunker(bytes.NewReader(data), smallOptions()...)
			if err != nil {
				t.Fatal(err)
			}

			var rebuilt []byte
			for _, chunk := range drain(t, chunker) {
				rebuilt = append(rebuilt, chunk.Data...)
			}

			if !bytes.Equal(rebuilt, data) {
				t.Fatalf("Reconstruction mismatch: got %d bytes, want %d", len(rebuilt), len(data))
			}
		})
	}
}

// TestChunkerMatchesSplitBytes checks the streaming scan against the in-memory scan
// under readers that hand out data in small pieces.
func TestChunkerMatchesSplitBytes(t *testing.T) {
	t.Parallel()

	data := pseudoRandomBytes(128*1024, 9)

	want, err := quickcdc.SplitBytes(data, smallOptions()...)
	if err != nil {
		t.Fatal(err)
	}

	readers := map[string]func() io.Reader{
		"bytes":    func() io.Reader { return bytes.NewReader(data) },
		"one byte": func() io.Reader { return iotest.OneByteReader(bytes.NewReader(data)) },
		"half":     func() io.Reader { return iotest.HalfReader(bytes.NewReader(data)) },
		"data+eof": func() io.Reader { return iotest.DataErrReader(bytes.NewReader(data)) },
	}

	for name, newReader := range readers {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			// Smallest allowed buffer forces a refill for every chunk.
			chunker, err := quickcdc.NewChunker(newReader(), smallOptions(quickcdc.WithBufferSize(1))...)
			if err != nil {
				t.Fatal(err)
			}

			got := extentsOf(drain(t, chunker))
			if len(got) != len(want) {
				t.Fatalf("Chunk count mismatch: got %d, want %d", len(got), len(want))
			}

			for i := range want {
				if got[i] != want[i] {
					t.Fatalf("Chunk %d mismatch: got %+v, want %+v", i, got[i], want[i])
				}
			}
		})
	}
}

// TestChunkerDeterminism verifies that the same input produces the same chunks.
func TestChunkerDeterminism(t *testing.T) {
	t.Parallel()

	data := make([]byte, 512*1024)
	if _, err := rand.Read(data); err != nil {
		t.Fatal(err)
	}

	getChunks := func() []quickcdc.Chunk {
		chunker, _ := quickcdc.NewChunker(bytes.NewReader(data), quickcdc.WithMaskBits(14))

		return drain(t, chunker)
	}

	chunks1 := getChunks()
	chunks2 := getChunks()

	if len(chunks1) != len(chunks2) {
		t.Fatalf("Chunk count mismatch: %d vs %d", len(chunks1), len(chunks2))
	}

	for i := range chunks1 {
		if chunks1[i].Offset != chunks2[i].Offset {
			t.Errorf("Chunk %d offset mismatch: %d vs %d", i, chunks1[i].Offset, chunks2[i].Offset)
		}

		if chunks1[i].Length != chunks2[i].Length {
			t.Errorf("Chunk %d length mismatch: %d vs %d", i, chunks1[i].Length, chunks2[i].Length)
		}

		if chunks1[i].Digest != chunks2[i].Digest {
			t.Errorf("Chunk %d digest mismatch: %x vs %x", i, chunks1[i].Digest, chunks2[i].Digest)
		}
	}
}

// TestChunkerBoundaries verifies min/max enforcement.
func TestChunkerBoundaries(t *testing.T) {
	t.Parallel()

	const (
		minSize = 8 * 1024
		maxSize = 32 * 1024
	)

	data := make([]byte, 1024*1024)
	if _, err := rand.Read(data); err != nil {
		t.Fatal(err)
	}

	for _, hash := range []quickcdc.HashKind{quickcdc.HashPolynomial, quickcdc.HashBuzhash, quickcdc.HashAdler32} {
		t.Run(hash.String(), func(t *testing.T) {
			t.Parallel()

			chunker, err := quickcdc.NewChunker(
				bytes.NewReader(data),
				quickcdc.WithMinSize(minSize),
				quickcdc.WithMaxSize(maxSize),
				quickcdc.WithMaskBits(14),
				quickcdc.WithHash(hash),
			)
			if err != nil {
				t.Fatal(err)
			}

			for _, chunk := range drain(t, chunker) {
				// Allow smaller chunks only at the very end
				isLastChunk := chunk.Offset+uint64(chunk.Length) == uint64(len(data))
				if chunk.Length < minSize && !isLastChunk {
					t.Errorf("Chunk below minimum: %d bytes at offset %d", chunk.Length, chunk.Offset)
				}

				if chunk.Length > maxSize {
					t.Errorf("Chunk above maximum: %d bytes at offset %d", chunk.Length, chunk.Offset)
				}

				if chunk.Length == 0 {
					t.Errorf("Empty chunk at offset %d", chunk.Offset)
				}

				if !chunk.Forced && !quickcdc.IsBoundary(chunk.Digest, quickcdc.MaskForBits(14)) {
					t.Errorf("Content boundary at offset %d with non-matching digest %x", chunk.Offset, chunk.Digest)
				}
			}
		})
	}
}

// TestChunkerLocality verifies that an insertion only moves boundaries near it.
func TestChunkerLocality(t *testing.T) {
	t.Parallel()

	const (
		window  = 16
		editAt  = 30000
		editLen = 100
	)

	original := pseudoRandomBytes(64*1024, 42)

	edited := make([]byte, 0, len(original)+editLen)
	edited = append(edited, original[:editAt]...)
	edited = append(edited, bytes.Repeat([]byte{'X'}, editLen)...)
	edited = append(edited, original[editAt:]...)

	for _, placement := range []quickcdc.WindowPlacement{quickcdc.WindowFollowing, quickcdc.WindowPreceding} {
		t.Run(placement.String(), func(t *testing.T) {
			t.Parallel()

			opts := smallOptions(quickcdc.WithWindowPlacement(placement))

			before, err := quickcdc.Split(bytes.NewReader(original), opts...)
			if err != nil {
				t.Fatal(err)
			}

			after, err := quickcdc.Split(bytes.NewReader(edited), opts...)
			if err != nil {
				t.Fatal(err)
			}

			// Chunks whose cut decision only saw bytes before the edit are unchanged.
			var prefix int
			for prefix < len(before) && before[prefix].End()+window <= editAt {
				if before[prefix] != after[prefix] {
					t.Fatalf("Chunk %d before the edit changed: %+v vs %+v", prefix, before[prefix], after[prefix])
				}

				prefix++
			}

			if prefix == 0 {
				t.Fatal("No chunk before the edit")
			}

			// Past the first shared boundary after the edit the chunking is identical.
			cuts := make(map[uint64]int, len(before))
			for i, e := range before {
				cuts[e.End()] = i
			}

			for j, e := range after {
				if e.End() <= editAt+editLen {
					continue
				}

				i, ok := cuts[e.End()-editLen]
				if !ok {
					continue
				}

				tailBefore := before[i+1:]
				tailAfter := after[j+1:]

				if len(tailBefore) != len(tailAfter) {
					t.Fatalf("Tail length mismatch: %d vs %d", len(tailBefore), len(tailAfter))
				}

				for k := range tailBefore {
					if tailBefore[k].Length != tailAfter[k].Length || tailBefore[k].Offset+editLen != tailAfter[k].Offset {
						t.Fatalf("Tail chunk %d differs: %+v vs %+v", k, tailBefore[k], tailAfter[k])
					}
				}

				t.Logf("Resynchronized at offset %d, %d chunks unchanged before the edit", e.End(), prefix)

				return
			}

			t.Fatal("Chunking never resynchronized after the edit")
		})
	}
}

// TestChunkerReadError verifies that a source failure is surfaced without a partial chunk.
func TestChunkerReadError(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom")
	data := pseudoRandomBytes(10*1024, 11)

	full, err := quickcdc.SplitBytes(data, smallOptions()...)
	if err != nil {
		t.Fatal(err)
	}

	chunker, err := quickcdc.NewChunker(
		io.MultiReader(bytes.NewReader(data), iotest.ErrReader(errBoom)),
		smallOptions()...,
	)
	if err != nil {
		t.Fatal(err)
	}

	var (
		emitted []quickcdc.Extent
		readErr error
	)

	for {
		chunk, err := chunker.Next()
		if err != nil {
			readErr = err

			break
		}

		emitted = append(emitted, chunk.Extent())
	}

	if !errors.Is(readErr, quickcdc.ErrSourceRead) {
		t.Fatalf("Expected ErrSourceRead, got %v", readErr)
	}

	if !errors.Is(readErr, errBoom) {
		t.Fatalf("Expected the source error to be wrapped, got %v", readErr)
	}

	var re *quickcdc.ReadError
	if !errors.As(readErr, &re) {
		t.Fatalf("Expected *ReadError, got %T", readErr)
	}

	if len(emitted) == 0 || len(emitted) >= len(full) {
		t.Fatalf("Expected some but not all chunks before the failure, got %d of %d", len(emitted), len(full))
	}

	for i, e := range emitted {
		if e != full[i] {
			t.Fatalf("Chunk %d mismatch: got %+v, want %+v", i, e, full[i])
		}
	}

	if re.Offset != emitted[len(emitted)-1].End() {
		t.Errorf("ReadError offset %d, expected %d", re.Offset, emitted[len(emitted)-1].End())
	}

	// The failure is sticky.
	if _, err := chunker.Next(); !errors.Is(err, errBoom) {
		t.Errorf("Expected sticky error, got %v", err)
	}
}

// TestChunkerThreadSafety tests concurrent usage.
func TestChunkerThreadSafety(t *testing.T) {
	t.Parallel()

	data := make([]byte, 256*1024)
	if _, err := rand.Read(data); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup

	const workers = 10

	for i := 0; i < workers; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			// Each goroutine gets its own chunker instance
			chunker, err := quickcdc.NewChunker(bytes.NewReader(data), quickcdc.WithMaskBits(14))
			if err != nil {
				t.Error(err)

				return
			}

			totalSize := uint64(0)

			for chunk, err := range chunker.All() {
				if err != nil {
					t.Error(err)

					return
				}

				totalSize += uint64(chunk.Length)
			}

			if totalSize != uint64(len(data)) {
				t.Errorf("Size mismatch: got %d, want %d", totalSize, len(data))
			}
		}()
	}

	wg.Wait()
}

// TestChunkerDistribution verifies reasonable chunk size distribution.
func TestChunkerDistribution(t *testing.T) {
	t.Parallel()

	data := make([]byte, 4*1024*1024) // 4 MiB
	if _, err := rand.Read(data); err != nil {
		t.Fatal(err)
	}

	chunker, err := quickcdc.NewChunker(
		bytes.NewReader(data),
		quickcdc.WithMinSize(2*1024),
		quickcdc.WithMaxSize(64*1024),
		quickcdc.WithMaskBits(13),
	)
	if err != nil {
		t.Fatal(err)
	}

	var sizes []float64

	for chunk, err := range chunker.All() {
		if err != nil {
			t.Fatal(err)
		}

		sizes = append(sizes, float64(chunk.Length))
	}

	if len(sizes) == 0 {
		t.Fatal("No chunks produced")
	}

	var sum float64
	for _, size := range sizes {
		sum += size
	}

	mean := sum / float64(len(sizes))

	var variance float64

	for _, size := range sizes {
		diff := size - mean
		variance += diff * diff
	}

	variance /= float64(len(sizes))
	stddev := math.Sqrt(variance)

	t.Logf("Chunks: %d, Mean: %.0f bytes, StdDev: %.0f bytes", len(sizes), mean, stddev)

	// Expected mean is about min + 2^13 = 10 KiB.
	if mean < 4*1024 || mean > 24*1024 {
		t.Errorf("Mean chunk size out of range: %.0f bytes", mean)
	}
}

// TestChunkerSeed verifies that different buzhash seeds produce different chunks.
func TestChunkerSeed(t *testing.T) {
	t.Parallel()

	data := make([]byte, 512*1024)
	if _, err := rand.Read(data); err != nil {
		t.Fatal(err)
	}

	getChunks := func(seed uint64) []quickcdc.Chunk {
		chunker, _ := quickcdc.NewChunker(
			bytes.NewReader(data),
			quickcdc.WithMinSize(2*1024),
			quickcdc.WithMaxSize(64*1024),
			quickcdc.WithMaskBits(12),
			quickcdc.WithHash(quickcdc.HashBuzhash),
			quickcdc.WithSeed(seed),
		)

		return drain(t, chunker)
	}

	chunks1 := getChunks(0)
	chunks2 := getChunks(12345)

	// Different seeds should produce different chunking
	same := true
	if len(chunks1) != len(chunks2) {
		same = false
	} else {
		for i := range chunks1 {
			if chunks1[i].Length != chunks2[i].Length {
				same = false

				break
			}
		}
	}

	if same {
		t.Error("Different seeds produced identical chunking")
	}

	t.Logf("Seed 0: %d chunks, Seed 12345: %d chunks", len(chunks1), len(chunks2))
}

// TestChunkerReset verifies that Reset() works correctly.
func TestChunkerReset(t *testing.T) {
	t.Parallel()

	data1 := pseudoRandomBytes(20*1024, 1)
	data2 := pseudoRandomBytes(50*1024, 2)

	// A failed first stream must not leak into the second one.
	chunker, err := quickcdc.NewChunker(
		io.MultiReader(bytes.NewReader(data1), iotest.ErrReader(errors.New("boom"))),
		smallOptions()...,
	)
	if err != nil {
		t.Fatal(err)
	}

	for {
		if _, err := chunker.Next(); err != nil {
			break
		}
	}

	chunker.Reset(bytes.NewReader(data2))

	if chunker.Offset() != 0 {
		t.Errorf("Offset after reset: %d", chunker.Offset())
	}

	got := extentsOf(drain(t, chunker))

	want, err := quickcdc.SplitBytes(data2, smallOptions()...)
	if err != nil {
		t.Fatal(err)
	}

	if len(got) != len(want) {
		t.Fatalf("Chunk count mismatch after reset: %d vs %d", len(got), len(want))
	}

	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Chunk %d mismatch after reset: %+v vs %+v", i, got[i], want[i])
		}
	}
}

// TestChunkerPool tests the pool functionality.
func TestChunkerPool(t *testing.T) {
	t.Parallel()

	pool, err := quickcdc.NewChunkerPool(smallOptions()...)
	if err != nil {
		t.Fatal(err)
	}

	data := pseudoRandomBytes(256*1024, 3)

	// Get chunker from pool
	chunker, err := pool.Get(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}

	chunks := len(drain(t, chunker))

	// Return to pool
	pool.Put(chunker)

	// Get again and verify it works
	chunker, err = pool.Get(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}

	chunks2 := len(drain(t, chunker))

	if chunks != chunks2 {
		t.Errorf("Chunk count mismatch after pool reuse: %d vs %d", chunks, chunks2)
	}

	pool.Put(chunker)

	if _, err := quickcdc.NewChunkerPool(quickcdc.WithMinSize(10), quickcdc.WithWindowSize(20)); err == nil {
		t.Error("Expected invalid options to be rejected by the pool")
	}
}

// TestChunkerCorePool tests the core pool functionality.
func TestChunkerCorePool(t *testing.T) {
	t.Parallel()

	pool, err := quickcdc.NewChunkerCorePool(smallOptions()...)
	if err != nil {
		t.Fatal(err)
	}

	data := pseudoRandomBytes(4096, 4)

	core, err := pool.Get()
	if err != nil {
		t.Fatal(err)
	}

	// Leave the core mid-scan before returning it.
	if _, _, found := core.FindBoundary(data[:100], false); found {
		t.Log("Boundary found in first 100 bytes")
	}

	pool.Put(core)

	core, err = pool.Get()
	if err != nil {
		t.Fatal(err)
	}

	if core.Position() != core.MinSize() {
		t.Errorf("Pooled core not reset: position %d", core.Position())
	}

	pool.Put(core)
}

// TestChunkerSmallData tests chunking of data smaller than minSize.
func TestChunkerSmallData(t *testing.T) {
	t.Parallel()

	data := make([]byte, 1024) // 1 KiB (smaller than default minSize)
	if _, err := rand.Read(data); err != nil {
		t.Fatal(err)
	}

	chunker, err := quickcdc.NewChunker(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}

	chunk, err := chunker.Next()
	if err != nil {
		t.Fatal(err)
	}

	if chunk.Length != uint32(len(data)) { //nolint:gosec // G115
		t.Errorf("Expected single chunk of %d bytes, got %d", len(data), chunk.Length)
	}

	if !chunk.Forced {
		t.Error("Expected the tail chunk to be a hard cut")
	}

	_, err = chunker.Next()
	if !errors.Is(err, io.EOF) {
		t.Error("Expected EOF after single chunk")
	}
}

// TestChunkerEmpty tests that an empty stream yields no chunks.
func TestChunkerEmpty(t *testing.T) {
	t.Parallel()

	chunker, err := quickcdc.NewChunker(bytes.NewReader(nil))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := chunker.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("Expected EOF, got %v", err)
	}

	// EOF is repeatable.
	if _, err := chunker.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("Expected EOF again, got %v", err)
	}

	extents, err := quickcdc.Split(bytes.NewReader(nil))
	if err != nil || len(extents) != 0 {
		t.Errorf("Split of empty input: %v, %v", extents, err)
	}
}

// TestChunkerAllStopsEarly tests that breaking out of the iterator leaves the chunker usable.
func TestChunkerAllStopsEarly(t *testing.T) {
	t.Parallel()

	data := pseudoRandomBytes(32*1024, 6)

	chunker, err := quickcdc.NewChunker(bytes.NewReader(data), smallOptions()...)
	if err != nil {
		t.Fatal(err)
	}

	var first quickcdc.Chunk

	for chunk, err := range chunker.All() {
		if err != nil {
			t.Fatal(err)
		}

		first = chunk

		break
	}

	next, err := chunker.Next()
	if err != nil {
		t.Fatal(err)
	}

	if next.Offset != first.Offset+uint64(first.Length) {
		t.Errorf("Chunk after early stop at %d, expected %d", next.Offset, first.Offset+uint64(first.Length))
	}
}

// TestChunkerLogger tests that hard cuts are traced.
func TestChunkerLogger(t *testing.T) {
	t.Parallel()

	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.TraceLevel)

	chunker, err := quickcdc.NewChunker(
		bytes.NewReader([]byte("abcdefghij")),
		quickcdc.WithMinSize(4),
		quickcdc.WithMaxSize(10),
		quickcdc.WithWindowSize(2),
		quickcdc.WithMask(0x01),
		quickcdc.WithLogger(logger),
	)
	if err != nil {
		t.Fatal(err)
	}

	drain(t, chunker)

	entry := hook.LastEntry()
	if entry == nil {
		t.Fatal("Expected a log entry")
	}

	if entry.Level != logrus.TraceLevel || entry.Data["length"] != uint32(10) {
		t.Errorf("Unexpected entry: %v %v", entry.Level, entry.Data)
	}
}

// TestOptionsValidation tests option validation.
func TestOptionsValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opts    []quickcdc.Option
		wantErr error
	}{
		{
			name:    "valid default",
			opts:    []quickcdc.Option{},
			wantErr: nil,
		},
		{
			name: "valid custom",
			opts: []quickcdc.Option{
				quickcdc.WithMinSize(8 * 1024),
				quickcdc.WithMaxSize(128 * 1024),
				quickcdc.WithWindowSize(64),
				quickcdc.WithMaskBits(13),
			},
			wantErr: nil,
		},
		{
			name:    "min equals max",
			opts:    []quickcdc.Option{quickcdc.WithMinSize(64 * 1024), quickcdc.WithMaxSize(64 * 1024)},
			wantErr: nil,
		},
		{
			name:    "window equals min",
			opts:    []quickcdc.Option{quickcdc.WithMinSize(32), quickcdc.WithWindowSize(32)},
			wantErr: nil,
		},
		{
			name:    "min > max",
			opts:    []quickcdc.Option{quickcdc.WithMinSize(64 * 1024), quickcdc.WithMaxSize(32 * 1024)},
			wantErr: quickcdc.ErrMaxSizeTooSmall,
		},
		{
			name:    "window > min",
			opts:    []quickcdc.Option{quickcdc.WithMinSize(16), quickcdc.WithWindowSize(32)},
			wantErr: quickcdc.ErrWindowTooLarge,
		},
		{
			name:    "zero min",
			opts:    []quickcdc.Option{quickcdc.WithMinSize(0)},
			wantErr: quickcdc.ErrInvalidMinSize,
		},
		{
			name:    "zero max",
			opts:    []quickcdc.Option{quickcdc.WithMaxSize(0)},
			wantErr: quickcdc.ErrInvalidMaxSize,
		},
		{
			name:    "zero window",
			opts:    []quickcdc.Option{quickcdc.WithWindowSize(0)},
			wantErr: quickcdc.ErrInvalidWindowSize,
		},
		{
			name:    "mask bits",
			opts:    []quickcdc.Option{quickcdc.WithMaskBits(33)},
			wantErr: quickcdc.ErrInvalidMaskBits,
		},
		{
			name:    "buffer size",
			opts:    []quickcdc.Option{quickcdc.WithBufferSize(-1)},
			wantErr: quickcdc.ErrInvalidBufferSize,
		},
		{
			name:    "placement",
			opts:    []quickcdc.Option{quickcdc.WithWindowPlacement(7)},
			wantErr: quickcdc.ErrInvalidPlacement,
		},
		{
			name:    "hash",
			opts:    []quickcdc.Option{quickcdc.WithHash(9)},
			wantErr: quickcdc.ErrInvalidHash,
		},
		{
			name:    "nil rolling hash",
			opts:    []quickcdc.Option{quickcdc.WithRollingHash(nil)},
			wantErr: quickcdc.ErrInvalidHash,
		},
		{
			name:    "config literal",
			opts:    []quickcdc.Option{quickcdc.WithConfig(quickcdc.Config{MinSize: 10, MaxSize: 5, WindowSize: 1})},
			wantErr: quickcdc.ErrMaxSizeTooSmall,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := quickcdc.NewChunker(bytes.NewReader(nil), tt.opts...)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("NewChunker() unexpected error = %v", err)
				}

				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewChunker() error = %v, want %v", err, tt.wantErr)
			}

			if !errors.Is(err, quickcdc.ErrInvalidConfig) {
				t.Errorf("NewChunker() error = %v does not wrap ErrInvalidConfig", err)
			}
		})
	}
}

// TestNewConfig tests that options resolve to the expected Config.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg, err := quickcdc.NewConfig()
	if err != nil {
		t.Fatal(err)
	}

	if cfg != quickcdc.DefaultConfig() {
		t.Errorf("NewConfig() = %+v, want defaults %+v", cfg, quickcdc.DefaultConfig())
	}

	cfg, err = quickcdc.NewConfig(
		quickcdc.WithConfig(quickcdc.Config{MinSize: 64, MaxSize: 128, WindowSize: 8, Mask: 0xF}),
		quickcdc.WithBufferSize(16),
	)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.BufferSize != cfg.Lookahead() {
		t.Errorf("BufferSize = %d, want it raised to %d", cfg.BufferSize, cfg.Lookahead())
	}
}
