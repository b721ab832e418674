// Package bitio provides the bit-serial primitives shared by the JPEG
// (T.81) and JPEG-LS (T.87) scan coders, plus the JPEG 2000
// mirrored-escape variant (J2KReader/J2KWriter), which pkg/compress/jpeg2k
// does not use; that package has its own bit I/O.
package bitio

import (
	"bufio"
	"io"

	"github.com/rad-medica/jpegexp-go/pkg/compress/errs"
)

// isMarkerByte reports whether b starts a valid JPEG marker when preceded
// by 0xFF, per the ranges in spec.md §4.1: 0xC0..0xFE except the stuffing
// byte 0x00. The pathological "FF 7F" pattern is data, not a marker.
func isMarkerByte(b byte) bool {
	return b >= 0xC0 && b <= 0xFE
}

// StuffedReader reads MSB-first bits from a byte-stuffed JPEG entropy
// segment. Encountering 0xFF followed by a marker byte stops consumption;
// the marker's second byte is reported by AtMarker().
type StuffedReader struct {
	r       *bufio.Reader
	cache   uint64
	nBits   int
	atMark  bool
	markVal byte
}

// NewStuffedReader wraps r (or reuses it if already a *bufio.Reader).
func NewStuffedReader(r io.Reader) *StuffedReader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &StuffedReader{r: br}
}

func (s *StuffedReader) fillByte() error {
	if s.atMark {
		return errs.New(errs.InvalidData, "read past end-of-entropy marker")
	}
	b, err := s.r.ReadByte()
	if err != nil {
		return errs.Wrap(errs.InvalidData, "stuffed bit reader", err)
	}
	if b == 0xFF {
		next, err := s.r.Peek(1)
		if err != nil {
			// 0xFF at true end of stream: treat as a terminal marker.
			s.atMark = true
			s.markVal = 0
			return errs.New(errs.InvalidData, "truncated stream after 0xFF")
		}
		nb := next[0]
		switch {
		case nb == 0x00:
			_, _ = s.r.Discard(1)
			// b stands as data 0xFF.
		case nb == 0x7F:
			// Pathological but explicitly data: keep FF, then read 7F normally.
		case isMarkerByte(nb):
			_, _ = s.r.Discard(1)
			s.atMark = true
			s.markVal = nb
			return errs.New(errs.NeedMoreData, "marker encountered")
		}
	}
	s.cache = (s.cache << 8) | uint64(b)
	s.nBits += 8
	return nil
}

func (s *StuffedReader) fill(n int) error {
	for s.nBits < n {
		if err := s.fillByte(); err != nil {
			return err
		}
	}
	return nil
}

// ReadBits reads n (<=32) bits MSB-first.
func (s *StuffedReader) ReadBits(n int) (uint32, error) {
	if n == 0 {
		return 0, nil
	}
	if err := s.fill(n); err != nil {
		return 0, err
	}
	shift := s.nBits - n
	mask := uint64(1)<<uint(n) - 1
	val := (s.cache >> uint(shift)) & mask
	s.nBits -= n
	return uint32(val), nil
}

// ReadBit reads a single bit.
func (s *StuffedReader) ReadBit() (int, error) {
	v, err := s.ReadBits(1)
	return int(v), err
}

// AtMarker reports whether the reader has stopped at a marker boundary,
// and if so returns the marker's second byte.
func (s *StuffedReader) AtMarker() (byte, bool) {
	return s.markVal, s.atMark
}

// AlignToByte discards any partial bits remaining in the current byte.
func (s *StuffedReader) AlignToByte() {
	s.nBits -= s.nBits % 8
}

// ReadRawByte reads a raw, non-bit-cached byte directly from the
// underlying reader (used once aligned, e.g. to consume a restart marker).
func (s *StuffedReader) ReadRawByte() (byte, error) {
	return s.r.ReadByte()
}

// StuffedWriter writes MSB-first bits, stuffing a 0x00 after every emitted
// 0xFF byte, and padding a final partial byte with 1-bits on Flush.
type StuffedWriter struct {
	w     *bufio.Writer
	cache uint64
	nBits int
}

// NewStuffedWriter wraps w (or reuses it if already a *bufio.Writer).
func NewStuffedWriter(w io.Writer) *StuffedWriter {
	bw, ok := w.(*bufio.Writer)
	if !ok {
		bw = bufio.NewWriter(w)
	}
	return &StuffedWriter{w: bw}
}

func (s *StuffedWriter) emit(b byte) error {
	if err := s.w.WriteByte(b); err != nil {
		return errs.Wrap(errs.DestinationTooSmall, "stuffed bit writer", err)
	}
	if b == 0xFF {
		if err := s.w.WriteByte(0x00); err != nil {
			return errs.Wrap(errs.DestinationTooSmall, "stuffed bit writer stuffing byte", err)
		}
	}
	return nil
}

// WriteBits writes the low n bits of val, MSB-first.
func (s *StuffedWriter) WriteBits(val uint32, n int) error {
	if n == 0 {
		return nil
	}
	mask := uint64(1)<<uint(n) - 1
	s.cache = (s.cache << uint(n)) | (uint64(val) & mask)
	s.nBits += n
	for s.nBits >= 8 {
		shift := s.nBits - 8
		b := byte(s.cache >> uint(shift))
		if err := s.emit(b); err != nil {
			return err
		}
		s.nBits = shift
		if shift > 0 {
			s.cache &= uint64(1)<<uint(shift) - 1
		} else {
			s.cache = 0
		}
	}
	return nil
}

// WriteBit writes a single bit.
func (s *StuffedWriter) WriteBit(bit int) error {
	return s.WriteBits(uint32(bit), 1)
}

// Flush pads any remaining partial byte with 1-bits (per spec.md §4.1 /
// Open Question #2) and flushes the underlying buffered writer.
func (s *StuffedWriter) Flush() error {
	if s.nBits > 0 {
		padBits := 8 - s.nBits
		padVal := uint32(1)<<uint(padBits) - 1
		if err := s.WriteBits(padVal, padBits); err != nil {
			return err
		}
	}
	return s.w.Flush()
}

// WriteRawByte writes a raw byte directly to the underlying writer (used
// once byte-aligned, e.g. to emit a restart marker).
func (s *StuffedWriter) WriteRawByte(b byte) error {
	return s.w.WriteByte(b)
}
