// Package jpegls implements ITU-T T.87 (JPEG-LS): the LOCO-I predictive
// coder with regular-mode context modeling, run-mode, and near-lossless
// coding, layered on the shared pkg/compress/bitio and pkg/compress/stream
// infrastructure.
package jpegls

import (
	"encoding/binary"
	"image"
	"io"

	"github.com/rad-medica/jpegexp-go/pkg/compress/bitio"
	"github.com/rad-medica/jpegexp-go/pkg/compress/frame"
	"github.com/rad-medica/jpegexp-go/pkg/compress/stream"
)

// Options configures a single-scan JPEG-LS encode.
type Options struct {
	Near            int // near-lossless deviation, 0 = lossless
	Interleave      InterleaveMode
	Preset          PresetCodingParameters
	RestartInterval int
}

// Encode writes img as a single-scan JPEG-LS bitstream to w.
func Encode(w io.Writer, img image.Image, opts *Options) error {
	raw := frame.FromImage(img)
	o := Options{}
	if opts != nil {
		o = *opts
	}
	return EncodeRaw(w, raw, o)
}

// EncodeRaw writes a frame.Raw buffer as a single-scan JPEG-LS bitstream.
func EncodeRaw(w io.Writer, raw *frame.Raw, opts Options) error {
	if err := raw.Info.Validate(); err != nil {
		return err
	}
	sw := stream.NewWriter(w)
	if err := sw.WriteMarker(stream.SOI); err != nil {
		return err
	}

	maxVal := raw.Info.MaxValue()
	preset := ResolvePreset(opts.Preset, maxVal, opts.Near)
	if opts.Preset.Threshold1 != 0 || opts.Preset.Threshold2 != 0 || opts.Preset.Threshold3 != 0 {
		if err := writeLSE(sw, preset); err != nil {
			return err
		}
	}

	if err := writeSOF55(sw, raw.Info); err != nil {
		return err
	}

	cp := CodingParameters{
		NearLossless:    opts.Near,
		Interleave:      opts.Interleave,
		RestartInterval: opts.RestartInterval,
	}
	if err := writeSOS(sw, raw.Info.ComponentCount, cp); err != nil {
		return err
	}
	if err := sw.Flush(); err != nil {
		return err
	}

	models := make([]*Model, raw.Info.ComponentCount)
	for i := range models {
		models[i] = NewModel(maxVal, opts.Near, preset)
	}

	bw := bitio.NewStuffedWriter(w)
	if err := EncodeScan(bw, raw, models, cp, raw.Info.BitsPerSample); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}

	if err := sw.WriteMarker(stream.EOI); err != nil {
		return err
	}
	return sw.Flush()
}

func writeLSE(sw *stream.Writer, p PresetCodingParameters) error {
	buf := make([]byte, 1+2*5)
	buf[0] = 1 // ID=1: preset coding parameters
	binary.BigEndian.PutUint16(buf[1:3], uint16(p.MaximumSampleValue))
	binary.BigEndian.PutUint16(buf[3:5], uint16(p.Threshold1))
	binary.BigEndian.PutUint16(buf[5:7], uint16(p.Threshold2))
	binary.BigEndian.PutUint16(buf[7:9], uint16(p.Threshold3))
	binary.BigEndian.PutUint16(buf[9:11], uint16(p.ResetValue))
	return sw.WriteSegment(stream.LSE, buf)
}

func writeSOF55(sw *stream.Writer, info frame.Info) error {
	buf := make([]byte, 1+2+2+1+3*info.ComponentCount)
	buf[0] = byte(info.BitsPerSample)
	binary.BigEndian.PutUint16(buf[1:3], uint16(info.Height))
	binary.BigEndian.PutUint16(buf[3:5], uint16(info.Width))
	buf[5] = byte(info.ComponentCount)
	for i := 0; i < info.ComponentCount; i++ {
		off := 6 + i*3
		buf[off] = byte(i + 1)
		buf[off+1] = 0x11
		buf[off+2] = 0
	}
	return sw.WriteSegment(stream.SOF55, buf)
}

func writeSOS(sw *stream.Writer, ncomp int, cp CodingParameters) error {
	buf := make([]byte, 1+2*ncomp+3)
	buf[0] = byte(ncomp)
	for i := 0; i < ncomp; i++ {
		buf[1+2*i] = byte(i + 1)
		buf[1+2*i+1] = 0
	}
	tail := 1 + 2*ncomp
	buf[tail] = byte(cp.NearLossless)
	buf[tail+1] = byte(cp.Interleave)
	buf[tail+2] = 0 // point transform, unused
	return sw.WriteSegment(stream.SOS, buf)
}
