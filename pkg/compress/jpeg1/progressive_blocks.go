package jpeg1

import "github.com/rad-medica/jpegexp-go/pkg/compress/frame"

// buildProgressiveBlocks runs the forward DCT and quantization for every
// block of one component, for an encoder that will spread the resulting
// coefficients across several progressive scans.
func buildProgressiveBlocks(raw *frame.Raw, comp int, quant *[64]int, bitsPerSample int) []*ProgressiveBlock {
	bw, bh := blockGrid(raw.Info.Width), blockGrid(raw.Info.Height)
	blocks := make([]*ProgressiveBlock, 0, bw*bh)
	for by := 0; by < bh; by++ {
		for bx := 0; bx < bw; bx++ {
			block := extractBlock(raw, comp, bx, by, bitsPerSample)
			coeffs := ForwardDCT8x8(&block)
			quantized := QuantizeBlock(&coeffs, quant)
			zz := zigzagScan(&quantized)
			blocks = append(blocks, &ProgressiveBlock{Coeffs: zz})
		}
	}
	return blocks
}

// allocProgressiveBlocks allocates the (empty) per-block coefficient state
// a decoder accumulates into across a component's several scans.
func allocProgressiveBlocks(info frame.Info) []*ProgressiveBlock {
	bw := (info.Width + blockSize - 1) / blockSize
	bh := (info.Height + blockSize - 1) / blockSize
	blocks := make([]*ProgressiveBlock, bw*bh)
	for i := range blocks {
		blocks[i] = &ProgressiveBlock{}
	}
	return blocks
}

// reconstructProgressiveComponent dequantizes, inverse-transforms, and
// stores every block of comp once all of its scans have been decoded.
func reconstructProgressiveComponent(raw *frame.Raw, comp int, blocks []*ProgressiveBlock, quant *[64]int, bitsPerSample int) {
	bw := blockGrid(raw.Info.Width)
	for i, b := range blocks {
		bx, by := i%bw, i/bw
		natural := zigzagUnscan(&b.Coeffs)
		dequant := DequantizeBlock(&natural, quant)
		samples := InverseDCT8x8(&dequant)
		storeBlock(raw, comp, bx, by, bitsPerSample, &samples)
	}
}
