package quickcdc

// IsBoundary reports whether digest is an acceptable cut point under mask.
func IsBoundary(digest, mask uint32) bool {
	return digest&mask == 0
}

// MaskForBits returns a mask with the low n bits set. n is clamped to 32.
func MaskForBits(n uint8) uint32 {
	if n >= 32 {
		return ^uint32(0)
	}

	return (uint32(1) << n) - 1
}
