// Package codec collects the still-image codecs under pkg/compress behind
// one interface and a pair of registries (by name, by DICOM transfer syntax
// UID), so callers outside pkg/dicos can pick a codec without importing the
// DICOM layer at all.
package codec

import (
	"bytes"
	"image"
	"io"

	"github.com/rad-medica/jpegexp-go/pkg/compress/errs"
	"github.com/rad-medica/jpegexp-go/pkg/compress/jpeg1"
	"github.com/rad-medica/jpegexp-go/pkg/compress/jpeg2k"
	"github.com/rad-medica/jpegexp-go/pkg/compress/jpegls"
	"github.com/rad-medica/jpegexp-go/pkg/compress/rle"
)

// Codec encodes/decodes a single still-image compression format.
type Codec interface {
	// Encode compresses an image to the writer.
	Encode(w io.Writer, img image.Image) error
	// Decode decompresses data to an image. width/height are supplied for
	// codecs that need them up front to size their output (RLE).
	Decode(data []byte, width, height int) (image.Image, error)
	// Name returns the codec identifier (e.g., "jpeg-ls").
	Name() string
	// TransferSyntaxUID returns the DICOM transfer syntax for this codec.
	TransferSyntaxUID() string
}

type jpegLSCodec struct{}

func (c *jpegLSCodec) Encode(w io.Writer, img image.Image) error {
	return jpegls.Encode(w, img, nil)
}

func (c *jpegLSCodec) Decode(data []byte, width, height int) (image.Image, error) {
	return jpegls.Decode(bytes.NewReader(data))
}

func (c *jpegLSCodec) Name() string { return "jpeg-ls" }

func (c *jpegLSCodec) TransferSyntaxUID() string {
	return "1.2.840.10008.1.2.4.80" // JPEG-LS Lossless
}

type jpegLosslessCodec struct{}

func (c *jpegLosslessCodec) Encode(w io.Writer, img image.Image) error {
	return jpeg1.Encode(w, img, &jpeg1.Options{Mode: jpeg1.Lossless, Predictor: 1})
}

func (c *jpegLosslessCodec) Decode(data []byte, width, height int) (image.Image, error) {
	return jpeg1.Decode(bytes.NewReader(data))
}

func (c *jpegLosslessCodec) Name() string { return "jpeg-li" }

func (c *jpegLosslessCodec) TransferSyntaxUID() string {
	return "1.2.840.10008.1.2.4.70" // JPEG Lossless First-Order (Process 14, SV1)
}

type jpegBaselineCodec struct{}

func (c *jpegBaselineCodec) Encode(w io.Writer, img image.Image) error {
	return jpeg1.Encode(w, img, &jpeg1.Options{Mode: jpeg1.Baseline, Quality: 90})
}

func (c *jpegBaselineCodec) Decode(data []byte, width, height int) (image.Image, error) {
	return jpeg1.Decode(bytes.NewReader(data))
}

func (c *jpegBaselineCodec) Name() string { return "jpeg-baseline" }

func (c *jpegBaselineCodec) TransferSyntaxUID() string {
	return "1.2.840.10008.1.2.4.50" // JPEG Baseline (Process 1)
}

type jpegProgressiveCodec struct{}

func (c *jpegProgressiveCodec) Encode(w io.Writer, img image.Image) error {
	return jpeg1.Encode(w, img, &jpeg1.Options{Mode: jpeg1.Progressive, Quality: 90})
}

func (c *jpegProgressiveCodec) Decode(data []byte, width, height int) (image.Image, error) {
	return jpeg1.Decode(bytes.NewReader(data))
}

func (c *jpegProgressiveCodec) Name() string { return "jpeg-progressive" }

func (c *jpegProgressiveCodec) TransferSyntaxUID() string {
	return "1.2.840.10008.1.2.4.55" // JPEG Full Progression (Process 10)
}

type rleCodec struct{}

func (c *rleCodec) Encode(w io.Writer, img image.Image) error {
	return rle.Encode(w, img)
}

func (c *rleCodec) Decode(data []byte, width, height int) (image.Image, error) {
	return rle.Decode(data, width, height)
}

func (c *rleCodec) Name() string { return "rle" }

func (c *rleCodec) TransferSyntaxUID() string {
	return "1.2.840.10008.1.2.5" // RLE Lossless
}

type jpeg2kCodec struct{}

func (c *jpeg2kCodec) Encode(w io.Writer, img image.Image) error {
	return jpeg2k.Encode(w, img, nil)
}

func (c *jpeg2kCodec) Decode(data []byte, width, height int) (image.Image, error) {
	return jpeg2k.Decode(bytes.NewReader(data))
}

func (c *jpeg2kCodec) Name() string { return "jpeg-2000" }

func (c *jpeg2kCodec) TransferSyntaxUID() string {
	return "1.2.840.10008.1.2.4.90" // JPEG 2000 Lossless Only
}

var byName = map[string]Codec{
	"jpeg-ls":          &jpegLSCodec{},
	"jpeg-li":          &jpegLosslessCodec{},
	"jpeg-baseline":    &jpegBaselineCodec{},
	"jpeg-progressive": &jpegProgressiveCodec{},
	"rle":              &rleCodec{},
	"jpeg-2000":        &jpeg2kCodec{},
	"jpeg2000":         &jpeg2kCodec{}, // alias
}

var byTransferSyntax = map[string]Codec{
	"1.2.840.10008.1.2.4.80": &jpegLSCodec{},          // JPEG-LS Lossless
	"1.2.840.10008.1.2.4.81": &jpegLSCodec{},          // JPEG-LS Near-Lossless
	"1.2.840.10008.1.2.4.70": &jpegLosslessCodec{},    // JPEG Lossless First-Order
	"1.2.840.10008.1.2.4.50": &jpegBaselineCodec{},    // JPEG Baseline
	"1.2.840.10008.1.2.4.51": &jpegBaselineCodec{},    // JPEG Extended Sequential
	"1.2.840.10008.1.2.4.55": &jpegProgressiveCodec{}, // JPEG Full Progression
	"1.2.840.10008.1.2.4.57": &jpegProgressiveCodec{}, // JPEG Full Progression, Non-Hierarchical
	"1.2.840.10008.1.2.5":    &rleCodec{},             // RLE Lossless
	"1.2.840.10008.1.2.4.90": &jpeg2kCodec{},          // JPEG 2000 Lossless
}

// Predefined codec instances for convenience.
var (
	JPEGLS          Codec = byName["jpeg-ls"]
	JPEGLossless    Codec = byName["jpeg-li"]
	JPEGBaseline    Codec = byName["jpeg-baseline"]
	JPEGProgressive Codec = byName["jpeg-progressive"]
	RLE             Codec = byName["rle"]
	JPEG2000        Codec = byName["jpeg-2000"]
)

// ByName returns a codec by name, or nil if not found.
func ByName(name string) Codec {
	return byName[name]
}

// ByTransferSyntax returns a codec for a DICOM transfer syntax UID, or nil
// if not found.
func ByTransferSyntax(ts string) Codec {
	return byTransferSyntax[ts]
}

// Detect sniffs the format of a compressed still-image stream from its
// leading bytes and returns the matching codec's name. Within an SOI-led
// stream the first SOF marker decides: SOF55 is "jpeg-ls", SOF3 "jpeg-li",
// SOF2 "jpeg-progressive", and both SOF0 and SOF1 (extended sequential)
// report "jpeg-baseline". A bare codestream (FF 4F) or a JP2 signature box
// is "jpeg-2000"; any other input of at least 64 bytes is reported as "rle".
func Detect(data []byte) (string, error) {
	if len(data) >= 2 && data[0] == 0xFF && data[1] == 0xD8 {
		for i := 0; i < len(data)-1; i++ {
			if data[i] != 0xFF {
				continue
			}
			switch data[i+1] {
			case 0xF7:
				return "jpeg-ls", nil
			case 0xC3:
				return "jpeg-li", nil
			case 0xC2:
				return "jpeg-progressive", nil
			case 0xC0, 0xC1:
				return "jpeg-baseline", nil
			}
		}
	}
	if len(data) >= 2 && data[0] == 0xFF && data[1] == 0x4F {
		return "jpeg-2000", nil
	}
	if bytes.HasPrefix(data, []byte{0x00, 0x00, 0x00, 0x0C, 0x6A, 0x50}) {
		return "jpeg-2000", nil
	}
	if len(data) >= 64 {
		return "rle", nil
	}
	return "", errs.New(errs.UnknownMarker, "codec: unrecognized stream format")
}
