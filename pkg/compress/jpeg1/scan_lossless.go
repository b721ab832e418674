package jpeg1

import (
	"github.com/rad-medica/jpegexp-go/pkg/compress/bitio"
	"github.com/rad-medica/jpegexp-go/pkg/compress/frame"
)

// EncodeLosslessScan encodes one component of raw using Process 14
// differential (DPCM) coding with selector psv (ISO Annex H), as one
// uninterrupted scan with no restart intervals.
// Grounded on original_source/src/jpeg1/lossless.rs and the teacher's
// vendored jpegli/decode.go (the only working decoder in the pack, itself
// lossless-only), generalized here to the full 2..16 bit depth range and
// actually paired with a matching encoder.
func EncodeLosslessScan(w *bitio.StuffedWriter, raw *frame.Raw, comp int, dcTable *Table, psv, bitsPerSample int) error {
	width, height := raw.Info.Width, raw.Info.Height
	initVal := 1 << uint(bitsPerSample-1)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			actual := raw.At(x, y, comp)

			var predicted int
			switch {
			case x == 0 && y == 0:
				predicted = initVal
			case y == 0:
				predicted = raw.At(x-1, y, comp)
			case x == 0:
				predicted = raw.At(x, y-1, comp)
			default:
				ra := raw.At(x-1, y, comp)
				rb := raw.At(x, y-1, comp)
				rc := raw.At(x-1, y-1, comp)
				predicted = PredictLossless(psv, ra, rb, rc)
			}

			diff := actual - predicted
			category := magnitudeCategory(diff)
			if err := encodeHuffmanSymbol(w, dcTable, byte(category)); err != nil {
				return err
			}
			if category > 0 {
				if err := w.WriteBits(additionalBits(diff, category), category); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// collectLosslessStats tallies DC difference magnitude categories over the
// same prediction sequence EncodeLosslessScan uses, for BuildOptimalTable.
func collectLosslessStats(raw *frame.Raw, comp, psv, bitsPerSample int) map[byte]int {
	width, height := raw.Info.Width, raw.Info.Height
	initVal := 1 << uint(bitsPerSample-1)
	counts := make(map[byte]int)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			actual := raw.At(x, y, comp)

			var predicted int
			switch {
			case x == 0 && y == 0:
				predicted = initVal
			case y == 0:
				predicted = raw.At(x-1, y, comp)
			case x == 0:
				predicted = raw.At(x, y-1, comp)
			default:
				ra := raw.At(x-1, y, comp)
				rb := raw.At(x, y-1, comp)
				rc := raw.At(x-1, y-1, comp)
				predicted = PredictLossless(psv, ra, rb, rc)
			}
			counts[byte(magnitudeCategory(actual-predicted))]++
		}
	}
	return counts
}

// DecodeLosslessScan is the exact inverse of EncodeLosslessScan.
func DecodeLosslessScan(r *bitio.StuffedReader, raw *frame.Raw, comp int, dcTable *Table, psv, bitsPerSample int) error {
	width, height := raw.Info.Width, raw.Info.Height
	initVal := 1 << uint(bitsPerSample-1)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			category, err := decodeHuffmanSymbol(r, dcTable)
			if err != nil {
				return err
			}
			diff := 0
			if category > 0 {
				bits, err := r.ReadBits(int(category))
				if err != nil {
					return err
				}
				diff = extendReceive(bits, int(category))
			}

			var predicted int
			switch {
			case x == 0 && y == 0:
				predicted = initVal
			case y == 0:
				predicted = raw.At(x-1, y, comp)
			case x == 0:
				predicted = raw.At(x, y-1, comp)
			default:
				ra := raw.At(x-1, y, comp)
				rb := raw.At(x, y-1, comp)
				rc := raw.At(x-1, y-1, comp)
				predicted = PredictLossless(psv, ra, rb, rc)
			}

			raw.Set(x, y, comp, predicted+diff)
		}
	}
	return nil
}
