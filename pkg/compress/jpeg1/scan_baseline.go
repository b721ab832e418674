package jpeg1

import (
	"github.com/rad-medica/jpegexp-go/pkg/compress/bitio"
	"github.com/rad-medica/jpegexp-go/pkg/compress/frame"
)

const blockSize = 8

func blockGrid(dim int) int { return (dim + blockSize - 1) / blockSize }

// extractBlock reads an 8x8, level-shifted (by -2^(P-1)) block from raw at
// block coordinates (bx, by), replicating edge samples past the image
// boundary (ISO Annex A allows any consistent boundary extension).
func extractBlock(raw *frame.Raw, comp, bx, by, bitsPerSample int) [64]int {
	var block [64]int
	width, height := raw.Info.Width, raw.Info.Height
	half := 1 << uint(bitsPerSample-1)
	for j := 0; j < blockSize; j++ {
		y := by*blockSize + j
		if y >= height {
			y = height - 1
		}
		for i := 0; i < blockSize; i++ {
			x := bx*blockSize + i
			if x >= width {
				x = width - 1
			}
			block[j*blockSize+i] = raw.At(x, y, comp) - half
		}
	}
	return block
}

// storeBlock writes a level-shifted 8x8 block back into raw, clamping to
// [0, maxVal] and skipping samples past the image boundary.
func storeBlock(raw *frame.Raw, comp, bx, by, bitsPerSample int, block *[64]int) {
	width, height := raw.Info.Width, raw.Info.Height
	half := 1 << uint(bitsPerSample-1)
	maxVal := (1 << uint(bitsPerSample)) - 1
	for j := 0; j < blockSize; j++ {
		y := by*blockSize + j
		if y >= height {
			continue
		}
		for i := 0; i < blockSize; i++ {
			x := bx*blockSize + i
			if x >= width {
				continue
			}
			v := block[j*blockSize+i] + half
			raw.Set(x, y, comp, clip(v, 0, maxVal))
		}
	}
}

func clip(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// EncodeBaselineScan encodes one component's full block grid with
// baseline sequential DCT coding (ISO F.1/F.2): DC differential Huffman
// coding and AC run/category Huffman coding in zig-zag order.
func EncodeBaselineScan(w *bitio.StuffedWriter, raw *frame.Raw, comp int, dcTable, acTable *Table, quant *[64]int, bitsPerSample int) error {
	bw, bh := blockGrid(raw.Info.Width), blockGrid(raw.Info.Height)
	prevDC := 0

	for by := 0; by < bh; by++ {
		for bx := 0; bx < bw; bx++ {
			block := extractBlock(raw, comp, bx, by, bitsPerSample)
			coeffs := ForwardDCT8x8(&block)
			quantized := QuantizeBlock(&coeffs, quant)
			zz := zigzagScan(&quantized)

			dcDiff := zz[0] - prevDC
			prevDC = zz[0]
			category := magnitudeCategory(dcDiff)
			if err := encodeHuffmanSymbol(w, dcTable, byte(category)); err != nil {
				return err
			}
			if category > 0 {
				if err := w.WriteBits(additionalBits(dcDiff, category), category); err != nil {
					return err
				}
			}

			if err := encodeACBlock(w, acTable, &zz); err != nil {
				return err
			}
		}
	}
	return nil
}

func encodeACBlock(w *bitio.StuffedWriter, acTable *Table, zz *[64]int) error {
	run := 0
	for k := 1; k < 64; k++ {
		v := zz[k]
		if v == 0 {
			run++
			continue
		}
		for run > 15 {
			if err := encodeHuffmanSymbol(w, acTable, 0xF0); err != nil { // ZRL
				return err
			}
			run -= 16
		}
		category := magnitudeCategory(v)
		sym := byte(run<<4 | category)
		if err := encodeHuffmanSymbol(w, acTable, sym); err != nil {
			return err
		}
		if err := w.WriteBits(additionalBits(v, category), category); err != nil {
			return err
		}
		run = 0
	}
	if run > 0 {
		return encodeHuffmanSymbol(w, acTable, 0x00) // EOB
	}
	return nil
}

// DecodeBaselineScan is the exact inverse of EncodeBaselineScan.
func DecodeBaselineScan(r *bitio.StuffedReader, raw *frame.Raw, comp int, dcTable, acTable *Table, quant *[64]int, bitsPerSample int) error {
	bw, bh := blockGrid(raw.Info.Width), blockGrid(raw.Info.Height)
	prevDC := 0

	for by := 0; by < bh; by++ {
		for bx := 0; bx < bw; bx++ {
			category, err := decodeHuffmanSymbol(r, dcTable)
			if err != nil {
				return err
			}
			dcDiff := 0
			if category > 0 {
				bits, err := r.ReadBits(int(category))
				if err != nil {
					return err
				}
				dcDiff = extendReceive(bits, int(category))
			}
			dc := prevDC + dcDiff
			prevDC = dc

			var zz [64]int
			zz[0] = dc
			if err := decodeACBlock(r, acTable, &zz); err != nil {
				return err
			}

			natural := zigzagUnscan(&zz)
			dequant := DequantizeBlock(&natural, quant)
			samples := InverseDCT8x8(&dequant)
			storeBlock(raw, comp, bx, by, bitsPerSample, &samples)
		}
	}
	return nil
}

// collectBaselineStats walks the same block sequence EncodeBaselineScan
// would, tallying DC/AC symbol frequencies instead of emitting bits, so an
// encoder can build a statistics-matched canonical table (BuildOptimalTable)
// instead of relying on the Annex K.3 defaults.
func collectBaselineStats(raw *frame.Raw, comp int, quant *[64]int, bitsPerSample int) (dcCounts, acCounts map[byte]int) {
	bw, bh := blockGrid(raw.Info.Width), blockGrid(raw.Info.Height)
	dcCounts = make(map[byte]int)
	acCounts = make(map[byte]int)
	prevDC := 0

	for by := 0; by < bh; by++ {
		for bx := 0; bx < bw; bx++ {
			block := extractBlock(raw, comp, bx, by, bitsPerSample)
			coeffs := ForwardDCT8x8(&block)
			quantized := QuantizeBlock(&coeffs, quant)
			zz := zigzagScan(&quantized)

			dcDiff := zz[0] - prevDC
			prevDC = zz[0]
			dcCounts[byte(magnitudeCategory(dcDiff))]++

			run := 0
			for k := 1; k < 64; k++ {
				v := zz[k]
				if v == 0 {
					run++
					continue
				}
				for run > 15 {
					acCounts[0xF0]++
					run -= 16
				}
				acCounts[byte(run<<4|magnitudeCategory(v))]++
				run = 0
			}
			if run > 0 {
				acCounts[0x00]++
			}
		}
	}
	return dcCounts, acCounts
}

func decodeACBlock(r *bitio.StuffedReader, acTable *Table, zz *[64]int) error {
	k := 1
	for k < 64 {
		sym, err := decodeHuffmanSymbol(r, acTable)
		if err != nil {
			return err
		}
		if sym == 0x00 { // EOB
			break
		}
		if sym == 0xF0 { // ZRL: 16 zero run
			k += 16
			continue
		}
		run := int(sym >> 4)
		category := int(sym & 0x0F)
		k += run
		if k >= 64 {
			break
		}
		bits, err := r.ReadBits(category)
		if err != nil {
			return err
		}
		zz[k] = extendReceive(bits, category)
		k++
	}
	return nil
}
