package jpeg1

import (
	"image"
	"io"

	"github.com/rad-medica/jpegexp-go/pkg/compress/bitio"
	"github.com/rad-medica/jpegexp-go/pkg/compress/errs"
	"github.com/rad-medica/jpegexp-go/pkg/compress/frame"
	"github.com/rad-medica/jpegexp-go/pkg/compress/stream"
)

// Decode reads a jpeg1 bitstream (baseline, progressive, or lossless) and
// returns it as an image.Image.
func Decode(r io.Reader) (image.Image, error) {
	raw, err := DecodeRaw(r)
	if err != nil {
		return nil, err
	}
	return raw.ToImage(), nil
}

// DecodeRaw reads a jpeg1 bitstream into a frame.Raw buffer.
func DecodeRaw(r io.Reader) (*frame.Raw, error) {
	sr := stream.NewReader(r)

	marker, err := sr.ReadMarker()
	if err != nil {
		return nil, err
	}
	if marker != stream.SOI {
		return nil, errs.New(errs.InvalidData, "missing start of image marker")
	}

	var info frame.Info
	var raw *frame.Raw
	var mode ProcessMode
	var quantIDByComp []int
	sawSOF := false

	quantTables := map[int]*[64]int{}
	dcTables := map[int]*Table{}
	acTables := map[int]*Table{}
	var blocks [][]*ProgressiveBlock

	for {
		marker, err := sr.ReadMarker()
		if err != nil {
			return nil, err
		}

		switch marker {
		case stream.DQT:
			payload, err := sr.ReadSegment()
			if err != nil {
				return nil, err
			}
			if err := parseDQT(payload, quantTables); err != nil {
				return nil, err
			}

		case stream.DHT:
			payload, err := sr.ReadSegment()
			if err != nil {
				return nil, err
			}
			if err := parseDHT(payload, dcTables, acTables); err != nil {
				return nil, err
			}

		case stream.SOF0, stream.SOF2, stream.SOF3:
			payload, err := sr.ReadSegment()
			if err != nil {
				return nil, err
			}
			info, quantIDByComp, err = parseSOF(payload)
			if err != nil {
				return nil, err
			}
			if err := info.Validate(); err != nil {
				return nil, err
			}
			switch marker {
			case stream.SOF0:
				mode = Baseline
			case stream.SOF2:
				mode = Progressive
			case stream.SOF3:
				mode = Lossless
			}
			raw = frame.NewRaw(info)
			sawSOF = true
			if mode == Progressive {
				blocks = make([][]*ProgressiveBlock, info.ComponentCount)
				for c := range blocks {
					blocks[c] = allocProgressiveBlocks(info)
				}
			}

		case stream.SOS:
			if !sawSOF {
				return nil, errs.New(errs.UnexpectedStartOfScan, "scan before frame header")
			}
			payload, err := sr.ReadSegment()
			if err != nil {
				return nil, err
			}
			comps, ss, se, ah, al, err := parseSOS(payload)
			if err != nil {
				return nil, err
			}
			c := comps[0].Index
			br := bitio.NewStuffedReader(sr.R)

			switch mode {
			case Lossless:
				dcTable := dcTables[comps[0].Td]
				predictor := ss
				if err := DecodeLosslessScan(br, raw, c, dcTable, predictor, info.BitsPerSample); err != nil {
					return nil, err
				}
			case Baseline:
				dcTable := dcTables[comps[0].Td]
				acTable := acTables[comps[0].Ta]
				quant := quantTables[quantIDByComp[c]]
				if err := DecodeBaselineScan(br, raw, c, dcTable, acTable, quant, info.BitsPerSample); err != nil {
					return nil, err
				}
			case Progressive:
				switch {
				case ss == 0 && ah == 0:
					if err := DecodeDCFirst(br, dcTables[comps[0].Td], blocks[c], al); err != nil {
						return nil, err
					}
				case ss == 0 && ah > 0:
					if err := DecodeDCRefine(br, blocks[c], al); err != nil {
						return nil, err
					}
				case ss > 0 && ah == 0:
					if err := DecodeACFirst(br, acTables[comps[0].Ta], blocks[c], ss, se, al); err != nil {
						return nil, err
					}
				default:
					if err := DecodeACRefine(br, acTables[comps[0].Ta], blocks[c], ss, se, al); err != nil {
						return nil, err
					}
				}
			}

		case stream.EOI:
			if raw == nil {
				return nil, errs.New(errs.UnexpectedEndOfImage, "end of image before frame header")
			}
			if mode == Progressive {
				for c := 0; c < info.ComponentCount; c++ {
					quant := quantTables[quantIDByComp[c]]
					reconstructProgressiveComponent(raw, c, blocks[c], quant, info.BitsPerSample)
				}
			}
			return raw, nil

		default:
			if stream.IsApp(marker) || marker == stream.COM {
				if _, err := sr.ReadSegment(); err != nil {
					return nil, err
				}
				continue
			}
			return nil, errs.New(errs.UnknownMarker, "unrecognized marker in jpeg1 stream")
		}
	}
}
