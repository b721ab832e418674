package jpeg1

import (
	"image"
	"io"

	"github.com/rad-medica/jpegexp-go/pkg/compress/bitio"
	"github.com/rad-medica/jpegexp-go/pkg/compress/errs"
	"github.com/rad-medica/jpegexp-go/pkg/compress/frame"
	"github.com/rad-medica/jpegexp-go/pkg/compress/stream"
)

// ProcessMode selects which ITU-T T.81 coding process a stream uses.
type ProcessMode int

const (
	Baseline    ProcessMode = iota // SOF0: sequential DCT, Huffman coding
	Progressive                    // SOF2: spectral selection + successive approximation
	Lossless                       // SOF3: Process 14 predictive coding
)

// Options configures a jpeg1 encode. Components are always coded 1x1
// (no chroma subsampling): each component is a complete, independent scan
// rather than an interleaved MCU sequence — simpler to drive from a
// frame.Raw buffer and still valid per ISO B.2.3.
type Options struct {
	Mode ProcessMode

	Quality  int  // 1..100, DCT modes only
	Optimize bool // derive Huffman tables from this image's own statistics (Annex K.2) instead of the Annex K.3 defaults

	Predictor int // 1..7, Lossless mode only (ISO Annex H Table H.1)
}

// Encode writes img as a jpeg1 bitstream to w.
func Encode(w io.Writer, img image.Image, opts *Options) error {
	raw := frame.FromImage(img)
	o := Options{Quality: 75, Predictor: 1}
	if opts != nil {
		o = *opts
		if o.Quality == 0 {
			o.Quality = 75
		}
		if o.Predictor == 0 {
			o.Predictor = 1
		}
	}
	return EncodeRaw(w, raw, o)
}

// EncodeRaw writes a frame.Raw buffer as a jpeg1 bitstream in the
// requested process.
func EncodeRaw(w io.Writer, raw *frame.Raw, opts Options) error {
	if err := raw.Info.Validate(); err != nil {
		return err
	}
	if opts.Mode != Lossless && raw.Info.BitsPerSample != 8 {
		return errs.New(errs.InvalidParameterBitsPerSample, "baseline/progressive jpeg1 requires 8-bit samples")
	}

	sw := stream.NewWriter(w)
	if err := sw.WriteMarker(stream.SOI); err != nil {
		return err
	}

	var err error
	switch opts.Mode {
	case Lossless:
		err = encodeLossless(sw, w, raw, opts)
	case Progressive:
		err = encodeProgressive(sw, w, raw, opts)
	default:
		err = encodeBaseline(sw, w, raw, opts)
	}
	if err != nil {
		return err
	}

	if err := sw.WriteMarker(stream.EOI); err != nil {
		return err
	}
	return sw.Flush()
}

func classTable(class int) (dc, ac *Table) {
	if class == 0 {
		return StandardLuminanceDC(), StandardLuminanceAC()
	}
	return StandardChrominanceDC(), StandardChrominanceAC()
}

func encodeBaseline(sw *stream.Writer, w io.Writer, raw *frame.Raw, opts Options) error {
	lumaQuant := LuminanceQuantTable(opts.Quality)
	chromaQuant := ChrominanceQuantTable(opts.Quality)
	if err := writeDQT(sw, 0, &lumaQuant); err != nil {
		return err
	}
	if raw.Info.ComponentCount > 1 {
		if err := writeDQT(sw, 1, &chromaQuant); err != nil {
			return err
		}
	}

	quantIDs := make([]int, raw.Info.ComponentCount)
	quantTables := make([]*[64]int, raw.Info.ComponentCount)
	dcTables := make([]*Table, raw.Info.ComponentCount)
	acTables := make([]*Table, raw.Info.ComponentCount)

	for c := 0; c < raw.Info.ComponentCount; c++ {
		class := 0
		quant := &lumaQuant
		if c > 0 {
			class = 1
			quant = &chromaQuant
		}
		quantIDs[c] = class
		quantTables[c] = quant

		var dcTable, acTable *Table
		if opts.Optimize {
			dcCounts, acCounts := collectBaselineStats(raw, c, quant, raw.Info.BitsPerSample)
			dcBits, dcVals := BuildOptimalTable(dcCounts)
			acBits, acVals := BuildOptimalTable(acCounts)
			dcTable, acTable = BuildTable(dcBits, dcVals), BuildTable(acBits, acVals)
		} else {
			dcTable, acTable = classTable(class)
		}
		dcTables[c], acTables[c] = dcTable, acTable

		if err := writeDHT(sw, 0, class, dcTable); err != nil {
			return err
		}
		if err := writeDHT(sw, 1, class, acTable); err != nil {
			return err
		}
	}

	if err := writeSOF(sw, stream.SOF0, raw.Info, quantIDs); err != nil {
		return err
	}

	for c := 0; c < raw.Info.ComponentCount; c++ {
		class := quantIDs[c]
		if err := writeSOS(sw, c, class, class, 0, 63, 0, 0); err != nil {
			return err
		}
		if err := sw.Flush(); err != nil {
			return err
		}
		bw := bitio.NewStuffedWriter(w)
		if err := EncodeBaselineScan(bw, raw, c, dcTables[c], acTables[c], quantTables[c], raw.Info.BitsPerSample); err != nil {
			return err
		}
		if err := bw.Flush(); err != nil {
			return err
		}
	}
	return nil
}

// encodeProgressive emits a fixed four-pass schedule per component: a DC
// first scan at Al=1, a DC refinement scan completing the last bit, an AC
// first scan over the whole [1,63] band at Al=1, and an AC refinement scan
// completing it. Real encoders vary the band/shift schedule per image;
// this fixed schedule still exercises every operation spec.md §9's
// progressive-mode Open Question #4 resolution covers (EOB-run escape,
// correction-bit accounting for already- and newly-significant
// coefficients) without the added bookkeeping of a tunable scan script.
func encodeProgressive(sw *stream.Writer, w io.Writer, raw *frame.Raw, opts Options) error {
	lumaQuant := LuminanceQuantTable(opts.Quality)
	chromaQuant := ChrominanceQuantTable(opts.Quality)
	if err := writeDQT(sw, 0, &lumaQuant); err != nil {
		return err
	}
	if raw.Info.ComponentCount > 1 {
		if err := writeDQT(sw, 1, &chromaQuant); err != nil {
			return err
		}
	}

	quantIDs := make([]int, raw.Info.ComponentCount)
	quantTables := make([]*[64]int, raw.Info.ComponentCount)
	blocks := make([][]*ProgressiveBlock, raw.Info.ComponentCount)
	for c := 0; c < raw.Info.ComponentCount; c++ {
		class := 0
		quant := &lumaQuant
		if c > 0 {
			class = 1
			quant = &chromaQuant
		}
		quantIDs[c] = class
		quantTables[c] = quant
		blocks[c] = buildProgressiveBlocks(raw, c, quant, raw.Info.BitsPerSample)
	}

	if err := writeSOF(sw, stream.SOF2, raw.Info, quantIDs); err != nil {
		return err
	}

	dcLuma, acLuma := StandardLuminanceDC(), StandardLuminanceAC()
	var dcChroma, acChroma *Table
	if err := writeDHT(sw, 0, 0, dcLuma); err != nil {
		return err
	}
	if err := writeDHT(sw, 1, 0, acLuma); err != nil {
		return err
	}
	if raw.Info.ComponentCount > 1 {
		dcChroma, acChroma = StandardChrominanceDC(), StandardChrominanceAC()
		if err := writeDHT(sw, 0, 1, dcChroma); err != nil {
			return err
		}
		if err := writeDHT(sw, 1, 1, acChroma); err != nil {
			return err
		}
	}

	dcTableFor := func(class int) *Table {
		if class == 0 {
			return dcLuma
		}
		return dcChroma
	}
	acTableFor := func(class int) *Table {
		if class == 0 {
			return acLuma
		}
		return acChroma
	}

	writeScan := func(c, td, ta, ss, se, ah, al int, emit func(*bitio.StuffedWriter) error) error {
		if err := writeSOS(sw, c, td, ta, ss, se, ah, al); err != nil {
			return err
		}
		if err := sw.Flush(); err != nil {
			return err
		}
		bw := bitio.NewStuffedWriter(w)
		if err := emit(bw); err != nil {
			return err
		}
		return bw.Flush()
	}

	for c := 0; c < raw.Info.ComponentCount; c++ {
		class := quantIDs[c]
		dcTable := dcTableFor(class)
		if err := writeScan(c, class, 0, 0, 0, 0, 1, func(bw *bitio.StuffedWriter) error {
			return EncodeDCFirst(bw, dcTable, blocks[c], 1)
		}); err != nil {
			return err
		}
		if err := writeScan(c, class, 0, 0, 0, 1, 0, func(bw *bitio.StuffedWriter) error {
			return EncodeDCRefine(bw, blocks[c], 0)
		}); err != nil {
			return err
		}
	}

	for c := 0; c < raw.Info.ComponentCount; c++ {
		class := quantIDs[c]
		acTable := acTableFor(class)
		if err := writeScan(c, 0, class, 1, 63, 0, 1, func(bw *bitio.StuffedWriter) error {
			return EncodeACFirst(bw, acTable, blocks[c], 1, 63, 1)
		}); err != nil {
			return err
		}
		if err := writeScan(c, 0, class, 1, 63, 1, 0, func(bw *bitio.StuffedWriter) error {
			return EncodeACRefine(bw, acTable, blocks[c], 1, 63, 0)
		}); err != nil {
			return err
		}
	}
	return nil
}

func encodeLossless(sw *stream.Writer, w io.Writer, raw *frame.Raw, opts Options) error {
	dcTables := make([]*Table, raw.Info.ComponentCount)
	noQuant := make([]int, raw.Info.ComponentCount)

	for c := 0; c < raw.Info.ComponentCount; c++ {
		id := c % 16
		counts := collectLosslessStats(raw, c, opts.Predictor, raw.Info.BitsPerSample)
		bits, values := BuildOptimalTable(counts)
		dcTables[c] = BuildTable(bits, values)
		if err := writeDHT(sw, 0, id, dcTables[c]); err != nil {
			return err
		}
	}

	if err := writeSOF(sw, stream.SOF3, raw.Info, noQuant); err != nil {
		return err
	}

	for c := 0; c < raw.Info.ComponentCount; c++ {
		id := c % 16
		if err := writeSOS(sw, c, id, 0, opts.Predictor, 0, 0, 0); err != nil {
			return err
		}
		if err := sw.Flush(); err != nil {
			return err
		}
		bw := bitio.NewStuffedWriter(w)
		if err := EncodeLosslessScan(bw, raw, c, dcTables[c], opts.Predictor, raw.Info.BitsPerSample); err != nil {
			return err
		}
		if err := bw.Flush(); err != nil {
			return err
		}
	}
	return nil
}
