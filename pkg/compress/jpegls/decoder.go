package jpegls

import (
	"encoding/binary"
	"image"
	"io"

	"github.com/rad-medica/jpegexp-go/pkg/compress/bitio"
	"github.com/rad-medica/jpegexp-go/pkg/compress/errs"
	"github.com/rad-medica/jpegexp-go/pkg/compress/frame"
	"github.com/rad-medica/jpegexp-go/pkg/compress/stream"
)

// Decode reads a single-scan JPEG-LS bitstream and returns it as an
// image.Image (*image.Gray for <=8 bit single-component frames,
// *image.Gray16 otherwise, *image.RGBA for multi-component frames).
func Decode(r io.Reader) (image.Image, error) {
	raw, err := DecodeRaw(r)
	if err != nil {
		return nil, err
	}
	return raw.ToImage(), nil
}

// DecodeRaw reads a single-scan JPEG-LS bitstream into a frame.Raw buffer.
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
	var cp CodingParameters
	var preset PresetCodingParameters
	sawSOF := false

	for {
		marker, err := sr.ReadMarker()
		if err != nil {
			return nil, err
		}
		switch marker {
		case stream.SOF55:
			payload, err := sr.ReadSegment()
			if err != nil {
				return nil, err
			}
			info, err = parseSOF55(payload)
			if err != nil {
				return nil, err
			}
			sawSOF = true

		case stream.LSE:
			payload, err := sr.ReadSegment()
			if err != nil {
				return nil, err
			}
			preset, err = parseLSE(payload)
			if err != nil {
				return nil, err
			}

		case stream.SOS:
			if !sawSOF {
				return nil, errs.New(errs.UnexpectedStartOfScan, "scan before frame header")
			}
			payload, err := sr.ReadSegment()
			if err != nil {
				return nil, err
			}
			cp, err = parseSOS(payload)
			if err != nil {
				return nil, err
			}

			raw := frame.NewRaw(info)
			maxVal := info.MaxValue()
			presetResolved := ResolvePreset(preset, maxVal, cp.NearLossless)
			models := make([]*Model, info.ComponentCount)
			for i := range models {
				models[i] = NewModel(maxVal, cp.NearLossless, presetResolved)
			}

			br := bitio.NewStuffedReader(sr.R)
			if err := DecodeScan(br, raw, models, cp, info.BitsPerSample); err != nil {
				return nil, err
			}
			return raw, nil

		case stream.EOI:
			return nil, errs.New(errs.UnexpectedEndOfImage, "end of image before scan data")

		default:
			if stream.IsApp(marker) || marker == stream.COM {
				payload, err := sr.ReadSegment()
				if err != nil {
					return nil, err
				}
				_ = payload
				continue
			}
			return nil, errs.New(errs.UnknownMarker, "unrecognized marker in jpeg-ls stream")
		}
	}
}

func parseSOF55(p []byte) (frame.Info, error) {
	if len(p) < 6 {
		return frame.Info{}, errs.New(errs.InvalidMarkerSegmentSize, "sof55 segment too short")
	}
	info := frame.Info{
		BitsPerSample:  int(p[0]),
		Height:         int(binary.BigEndian.Uint16(p[1:3])),
		Width:          int(binary.BigEndian.Uint16(p[3:5])),
		ComponentCount: int(p[5]),
	}
	if err := info.Validate(); err != nil {
		return frame.Info{}, err
	}
	return info, nil
}

func parseLSE(p []byte) (PresetCodingParameters, error) {
	var preset PresetCodingParameters
	if len(p) < 11 || p[0] != 1 {
		return preset, errs.New(errs.InvalidJpeglsPresetParameters, "unsupported lse segment")
	}
	preset.MaximumSampleValue = int(binary.BigEndian.Uint16(p[1:3]))
	preset.Threshold1 = int(binary.BigEndian.Uint16(p[3:5]))
	preset.Threshold2 = int(binary.BigEndian.Uint16(p[5:7]))
	preset.Threshold3 = int(binary.BigEndian.Uint16(p[7:9]))
	preset.ResetValue = int(binary.BigEndian.Uint16(p[9:11]))
	return preset, nil
}

func parseSOS(p []byte) (CodingParameters, error) {
	if len(p) < 1 {
		return CodingParameters{}, errs.New(errs.InvalidMarkerSegmentSize, "sos segment too short")
	}
	ns := int(p[0])
	tail := 1 + 2*ns
	if len(p) < tail+3 {
		return CodingParameters{}, errs.New(errs.InvalidMarkerSegmentSize, "sos segment too short for component count")
	}
	return CodingParameters{
		NearLossless: int(p[tail]),
		Interleave:   InterleaveMode(p[tail+1]),
	}, nil
}
