package jpeg1

import "math"

var dctCosTable [8][8]float64

func init() {
	for x := 0; x < 8; x++ {
		for u := 0; u < 8; u++ {
			dctCosTable[x][u] = math.Cos(float64((2*x+1)*u) * math.Pi / 16)
		}
	}
}

func cu(u int) float64 {
	if u == 0 {
		return 1 / math.Sqrt2
	}
	return 1
}

// ForwardDCT8x8 computes the direct (non-separable-fast) 2D DCT-II of an
// 8x8 block of level-shifted samples, per ISO Annex A.3.3's defining
// equation. Grounded on original_source/src/jpeg1/dct.rs::fdct_8x8, which
// the same direct float-cosine-sum reference implementation — not the
// separable/fast AAN variant — to keep rounding behavior predictable.
func ForwardDCT8x8(block *[64]int) [64]int {
	var out [64]int
	var in [8][8]float64
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			in[y][x] = float64(block[y*8+x])
		}
	}
	for v := 0; v < 8; v++ {
		for u := 0; u < 8; u++ {
			sum := 0.0
			for y := 0; y < 8; y++ {
				for x := 0; x < 8; x++ {
					sum += in[y][x] * dctCosTable[x][u] * dctCosTable[y][v]
				}
			}
			coeff := 0.25 * cu(u) * cu(v) * sum
			out[v*8+u] = int(math.Round(coeff))
		}
	}
	return out
}

// InverseDCT8x8 computes the 2D IDCT of an 8x8 coefficient block back
// into level-shifted sample space.
func InverseDCT8x8(block *[64]int) [64]int {
	var out [64]int
	var in [8][8]float64
	for v := 0; v < 8; v++ {
		for u := 0; u < 8; u++ {
			in[v][u] = float64(block[v*8+u])
		}
	}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			sum := 0.0
			for v := 0; v < 8; v++ {
				for u := 0; u < 8; u++ {
					sum += cu(u) * cu(v) * in[v][u] * dctCosTable[x][u] * dctCosTable[y][v]
				}
			}
			out[y*8+x] = int(math.Round(0.25 * sum))
		}
	}
	return out
}
