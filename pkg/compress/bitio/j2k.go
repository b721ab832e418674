package bitio

import (
	"bufio"
	"io"

	"github.com/rad-medica/jpegexp-go/pkg/compress/errs"
)

// J2KReader implements the JPEG 2000 bit-stuffing rule (mirror of the T.81
// rule): after an 0xFF byte, the following byte may only carry 7 data bits
// (its MSB is forced to 0 by the encoder, so the reader must not consume
// it as the 8th bit).
type J2KReader struct {
	r      *bufio.Reader
	cache  uint32
	nBits  int
	lastFF bool
}

// NewJ2KReader wraps r.
func NewJ2KReader(r io.Reader) *J2KReader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &J2KReader{r: br}
}

func (j *J2KReader) fillByte() error {
	b, err := j.r.ReadByte()
	if err != nil {
		return errs.Wrap(errs.InvalidData, "j2k bit reader", err)
	}
	bits := 8
	if j.lastFF {
		bits = 7
		b &= 0x7F
	}
	j.cache = (j.cache << uint(bits)) | uint32(b)
	j.nBits += bits
	j.lastFF = (b == 0xFF) && bits == 8
	return nil
}

// ReadBits reads n (<=24) bits MSB-first.
func (j *J2KReader) ReadBits(n int) (uint32, error) {
	for j.nBits < n {
		if err := j.fillByte(); err != nil {
			return 0, err
		}
	}
	shift := j.nBits - n
	mask := uint32(1)<<uint(n) - 1
	val := (j.cache >> uint(shift)) & mask
	j.nBits -= n
	return val, nil
}

// J2KWriter implements the JPEG 2000 bit-stuffing write side.
type J2KWriter struct {
	w      *bufio.Writer
	cache  uint32
	nBits  int
	lastFF bool
}

// NewJ2KWriter wraps w.
func NewJ2KWriter(w io.Writer) *J2KWriter {
	bw, ok := w.(*bufio.Writer)
	if !ok {
		bw = bufio.NewWriter(w)
	}
	return &J2KWriter{w: bw}
}

// WriteBits writes the low n bits of val, MSB-first.
func (j *J2KWriter) WriteBits(val uint32, n int) error {
	mask := uint32(1)<<uint(n) - 1
	j.cache = (j.cache << uint(n)) | (val & mask)
	j.nBits += n

	for {
		avail := 8
		if j.lastFF {
			avail = 7
		}
		if j.nBits < avail {
			break
		}
		shift := j.nBits - avail
		b := byte((j.cache >> uint(shift)) & (uint32(1)<<uint(avail) - 1))
		if err := j.w.WriteByte(b); err != nil {
			return errs.Wrap(errs.DestinationTooSmall, "j2k bit writer", err)
		}
		j.nBits = shift
		if shift > 0 {
			j.cache &= uint32(1)<<uint(shift) - 1
		} else {
			j.cache = 0
		}
		j.lastFF = b == 0xFF
	}
	return nil
}

// Flush pads the final partial byte with zero bits and flushes.
func (j *J2KWriter) Flush() error {
	if j.nBits > 0 {
		avail := 8
		if j.lastFF {
			avail = 7
		}
		pad := avail - j.nBits
		if pad > 0 {
			if err := j.WriteBits(0, pad); err != nil {
				return err
			}
		}
	}
	return j.w.Flush()
}
