// Package quickcdc provides streaming content-defined chunking (CDC) driven by a
// rolling window hash and a fixed bit-mask boundary test.
//
// # Overview
//
// Content-defined chunking splits a byte stream into variable-size chunks whose
// boundaries depend on local content instead of fixed offsets. An edit to the
// input only moves the boundaries near the edit; the chunking of the rest of the
// stream is unchanged, which is what deduplicating stores and incremental sync
// tools rely on.
//
// # Quick Start
//
// Streaming API:
//
//	chunker, _ := quickcdc.NewChunker(reader, quickcdc.WithMaskBits(16))
//	for {
//	    chunk, err := chunker.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    // Process chunk.Data
//	}
//
// Or as an iterator:
//
//	for chunk, err := range chunker.All() {
//	    ...
//	}
//
// In-memory buffers can be split without copying:
//
//	extents, _ := quickcdc.SplitBytes(data, quickcdc.WithMinSize(4096))
//
// # Algorithm
//
// For each chunk starting at offset s, candidate cut offsets i are tested in
// increasing order from s+MinSize up to min(s+MaxSize, len). A candidate is
// accepted when the digest of its window satisfies digest&Mask == 0; the first
// accepted candidate wins. If none is accepted the chunk is cut at the limit,
// which bounds every chunk at MaxSize and makes the stream tail the last chunk.
//
// The window is WindowSize bytes either following the candidate ([i, i+w), the
// default) or preceding it ([i-w, i)). A following window that would run past
// the end of the stream is never evaluated.
//
// Digests are maintained incrementally: each engine implements
// rollinghash.Hash32, so moving to the next candidate costs one Roll call
// regardless of the window size. The default engine is a rolling form of the
// polynomial hash h = h*31 + b; buzhash and rolling adler32 are available
// through WithHash.
//
// # Thread Safety
//
// A Chunker or ChunkerCore owns its scan state and rolling hash and must not be
// shared between goroutines. Separate instances are independent, so scanning
// many streams concurrently needs no locking. ChunkerPool recycles instances.
package quickcdc
