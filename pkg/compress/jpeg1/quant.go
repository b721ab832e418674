package jpeg1

// Standard luminance/chrominance quantization tables (ISO Annex K.1),
// stored in natural (row-major) order.
var stdLuminanceQuantTable = [64]int{
	16, 11, 10, 16, 24, 40, 51, 61,
	12, 12, 14, 19, 26, 58, 60, 55,
	14, 13, 16, 24, 40, 57, 69, 56,
	14, 17, 22, 29, 51, 87, 80, 62,
	18, 22, 37, 56, 68, 109, 103, 77,
	24, 35, 55, 64, 81, 104, 113, 92,
	49, 64, 78, 87, 103, 121, 120, 101,
	72, 92, 95, 98, 112, 100, 103, 99,
}

var stdChrominanceQuantTable = [64]int{
	17, 18, 24, 47, 99, 99, 99, 99,
	18, 21, 26, 66, 99, 99, 99, 99,
	24, 26, 56, 99, 99, 99, 99, 99,
	47, 66, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
}

// ScaledQuantTable scales a base table for a 1..100 quality setting per
// the conventional IJG formula.
func ScaledQuantTable(base [64]int, quality int) [64]int {
	if quality < 1 {
		quality = 1
	}
	if quality > 100 {
		quality = 100
	}
	var scale int
	if quality < 50 {
		scale = 5000 / quality
	} else {
		scale = 200 - quality*2
	}
	var out [64]int
	for i, v := range base {
		q := (v*scale + 50) / 100
		if q < 1 {
			q = 1
		}
		if q > 255 {
			q = 255
		}
		out[i] = q
	}
	return out
}

// LuminanceQuantTable returns the scaled standard luminance table.
func LuminanceQuantTable(quality int) [64]int { return ScaledQuantTable(stdLuminanceQuantTable, quality) }

// ChrominanceQuantTable returns the scaled standard chrominance table.
func ChrominanceQuantTable(quality int) [64]int {
	return ScaledQuantTable(stdChrominanceQuantTable, quality)
}

// QuantizeBlock divides each natural-order coefficient by its table entry,
// rounding to nearest.
func QuantizeBlock(block *[64]int, table *[64]int) [64]int {
	var out [64]int
	for i := range block {
		v := block[i]
		q := table[i]
		if v >= 0 {
			out[i] = (v + q/2) / q
		} else {
			out[i] = -((-v + q/2) / q)
		}
	}
	return out
}

// DequantizeBlock multiplies each coefficient by its table entry.
func DequantizeBlock(block *[64]int, table *[64]int) [64]int {
	var out [64]int
	for i := range block {
		out[i] = block[i] * table[i]
	}
	return out
}
