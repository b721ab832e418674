// Package stream implements the marker-segment reader/writer shared by
// the JPEG (T.81) and JPEG-LS (T.87) codec façades (spec.md §4.5): the
// BeforeSOI -> HeaderSection -> ScanSection -> EndOfImage state machine,
// length-prefixed segment reads, and the symmetric writer. It is
// deliberately format-agnostic — callers (pkg/compress/jpegls,
// pkg/compress/jpeg1) supply which marker codes they recognize and what
// to do with each segment's payload.
package stream

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/rad-medica/jpegexp-go/pkg/compress/errs"
)

// Marker codes (spec.md §6), big-endian 0xFFxx.
const (
	SOI   = 0xFFD8
	EOI   = 0xFFD9
	SOF0  = 0xFFC0 // baseline DCT
	SOF1  = 0xFFC1 // extended sequential DCT
	SOF2  = 0xFFC2 // progressive DCT
	SOF3  = 0xFFC3 // lossless
	SOF55 = 0xFFF7 // JPEG-LS (a.k.a SOF_LS)
	DHT   = 0xFFC4
	DQT   = 0xFFDB
	DRI   = 0xFFDD
	DAC   = 0xFFCC
	LSE   = 0xFFF8
	SOS   = 0xFFDA
	COM   = 0xFFFE
	DNL   = 0xFFDC
)

// RST0 + n (n in [0,7]) gives the n-th restart marker.
const RST0 = 0xFFD0

// APPn returns the marker code for application segment n (0..15).
func APPn(n int) int { return 0xFFE0 + n }

// IsRestart reports whether m is a restart marker FF D0..FF D7.
func IsRestart(m int) bool { return m >= RST0 && m <= RST0+7 }

// IsApp reports whether m is an application segment marker.
func IsApp(m int) bool { return m >= 0xFFE0 && m <= 0xFFEF }

// Reader wraps a *bufio.Reader with marker-segment primitives. State
// progression (BeforeSOI -> HeaderSection -> ScanSection -> EndOfImage) is
// left to the caller's loop; Reader only supplies the mechanics.
type Reader struct {
	R *bufio.Reader
}

// NewReader wraps r.
func NewReader(r io.Reader) *Reader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Reader{R: br}
}

// ReadMarker reads one 0xFFxx marker code, skipping any 0xFF fill bytes
// that precede the non-FF marker byte.
func (r *Reader) ReadMarker() (int, error) {
	b0, err := r.R.ReadByte()
	if err != nil {
		return 0, errs.Wrap(errs.InvalidData, "reading marker", err)
	}
	if b0 != 0xFF {
		return 0, errs.New(errs.InvalidData, "jpeg marker start byte not found")
	}
	var b1 byte
	for {
		b1, err = r.R.ReadByte()
		if err != nil {
			return 0, errs.Wrap(errs.InvalidData, "reading marker", err)
		}
		if b1 != 0xFF {
			break
		}
	}
	return 0xFF00 | int(b1), nil
}

// ReadSegment reads a marker's 2-byte big-endian length (inclusive of the
// length field itself) and returns its payload (length-2 bytes).
func (r *Reader) ReadSegment() ([]byte, error) {
	var lenBuf [2]byte
	if _, err := io.ReadFull(r.R, lenBuf[:]); err != nil {
		return nil, errs.Wrap(errs.InvalidMarkerSegmentSize, "reading segment length", err)
	}
	n := int(binary.BigEndian.Uint16(lenBuf[:]))
	if n < 2 {
		return nil, errs.New(errs.InvalidMarkerSegmentSize, "segment length smaller than length field")
	}
	payload := make([]byte, n-2)
	if _, err := io.ReadFull(r.R, payload); err != nil {
		return nil, errs.Wrap(errs.NeedMoreData, "reading segment payload", err)
	}
	return payload, nil
}

// Skip discards n bytes (used for COM/APPn/unknown segments per spec.md §4.5).
func (r *Reader) Skip(n int) error {
	_, err := io.CopyN(io.Discard, r.R, int64(n))
	if err != nil {
		return errs.Wrap(errs.NeedMoreData, "skipping segment", err)
	}
	return nil
}

// Writer wraps a *bufio.Writer with the symmetric emission primitives.
type Writer struct {
	W *bufio.Writer
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	bw, ok := w.(*bufio.Writer)
	if !ok {
		bw = bufio.NewWriter(w)
	}
	return &Writer{W: bw}
}

// WriteMarker writes a bare 0xFFxx marker code (2 bytes).
func (w *Writer) WriteMarker(marker int) error {
	if err := w.W.WriteByte(0xFF); err != nil {
		return err
	}
	return w.W.WriteByte(byte(marker & 0xFF))
}

// WriteSegment writes marker followed by a 2-byte big-endian length
// (len(payload)+2) and the payload.
func (w *Writer) WriteSegment(marker int, payload []byte) error {
	if err := w.WriteMarker(marker); err != nil {
		return err
	}
	var lenBuf [2]byte
	binary.BigEndian.PutUint16(lenBuf[:], uint16(len(payload)+2))
	if _, err := w.W.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.W.Write(payload)
	return err
}

// Flush flushes the underlying buffered writer.
func (w *Writer) Flush() error { return w.W.Flush() }
