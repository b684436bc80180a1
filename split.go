package quickcdc

import "io"

// Split reads r to the end and returns the extents of all chunks in stream
// order. Only MaxSize+WindowSize bytes past the open chunk are buffered at a
// time, so r may be arbitrarily long. On a read failure the extents of the
// chunks completed before it are returned along with the *ReadError.
func Split(r io.Reader, opts ...Option) ([]Extent, error) {
	chunker, err := NewChunker(r, opts...)
	if err != nil {
		return nil, err
	}

	var extents []Extent

	for chunk, err := range chunker.All() {
		if err != nil {
			return extents, err
		}

		extents = append(extents, chunk.Extent())
	}

	return extents, nil
}

// SplitBytes returns the extents of all chunks of data. The data is scanned in
// place and never copied.
func SplitBytes(data []byte, opts ...Option) ([]Extent, error) {
	core, err := NewChunkerCore(opts...)
	if err != nil {
		return nil, err
	}

	var extents []Extent

	for offset := 0; offset < len(data); {
		boundary, _, _ := core.FindBoundary(data[offset:], true)
		extents = append(extents, Extent{
			Offset: uint64(offset),   //nolint:gosec // G115
			Length: uint32(boundary), //nolint:gosec // G115
		})
		offset += boundary
	}

	return extents, nil
}
