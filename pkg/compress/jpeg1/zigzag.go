package jpeg1

// zigzagToNatural maps zig-zag scan position k to the natural (row-major)
// 8x8 block index (ISO Annex A Figure A.6).
var zigzagToNatural = [64]int{
	0, 1, 8, 16, 9, 2, 3, 10,
	17, 24, 32, 25, 18, 11, 4, 5,
	12, 19, 26, 33, 40, 48, 41, 34,
	27, 20, 13, 6, 7, 14, 21, 28,
	35, 42, 49, 56, 57, 50, 43, 36,
	29, 22, 15, 23, 30, 37, 44, 51,
	58, 59, 52, 45, 38, 31, 39, 46,
	53, 60, 61, 54, 47, 55, 62, 63,
}

// zigzagScan reorders a natural-order 8x8 block into zig-zag order.
func zigzagScan(block *[64]int) [64]int {
	var out [64]int
	for zz, natural := range zigzagToNatural {
		out[zz] = block[natural]
	}
	return out
}

// zigzagUnscan reorders a zig-zag-order 64-vector back to natural order.
func zigzagUnscan(zz *[64]int) [64]int {
	var out [64]int
	for i, natural := range zigzagToNatural {
		out[natural] = zz[i]
	}
	return out
}
