package jpegls

import (
	"encoding/binary"

	"github.com/rad-medica/jpegexp-go/pkg/compress/errs"
)

// spiffMagic is the 6-byte "SPIFF\0" tag that opens an APP8 SPIFF header
// segment (spec.md §6); JPEG-LS streams may carry one immediately after
// SOI but it is optional and this package treats its absence as normal.
var spiffMagic = [6]byte{'S', 'P', 'I', 'F', 'F', 0}

// SPIFFHeader is the subset of the SPIFF directory this package round-trips.
type SPIFFHeader struct {
	ComponentCount int
	Height         int
	Width          int
	ColorSpace     byte
	BitsPerSample  byte
	CompressionType byte
	ResolutionUnits byte
	VRes, HRes     uint32
}

// EncodeSPIFF renders h as an APP8 segment payload (without the marker
// length prefix, which the caller's stream.Writer adds).
func EncodeSPIFF(h SPIFFHeader) []byte {
	buf := make([]byte, 6+1+1+4+4+1+1+1+4+4)
	copy(buf[0:6], spiffMagic[:])
	buf[6] = 1 // version high
	buf[7] = 0 // version low
	buf[8] = byte(h.ComponentCount)
	binary.BigEndian.PutUint32(buf[9:13], uint32(h.Height))
	binary.BigEndian.PutUint32(buf[13:17], uint32(h.Width))
	buf[17] = h.ColorSpace
	buf[18] = h.BitsPerSample
	buf[19] = h.CompressionType
	buf[20] = h.ResolutionUnits
	binary.BigEndian.PutUint32(buf[21:25], h.VRes)
	binary.BigEndian.PutUint32(buf[25:29], h.HRes)
	return buf
}

// DecodeSPIFF parses an APP8 SPIFF directory payload.
func DecodeSPIFF(payload []byte) (SPIFFHeader, error) {
	var h SPIFFHeader
	if len(payload) < 29 {
		return h, errs.New(errs.InvalidMarkerSegmentSize, "spiff header too short")
	}
	if string(payload[0:6]) != string(spiffMagic[:]) {
		return h, errs.New(errs.InvalidData, "missing SPIFF magic")
	}
	h.ComponentCount = int(payload[8])
	h.Height = int(binary.BigEndian.Uint32(payload[9:13]))
	h.Width = int(binary.BigEndian.Uint32(payload[13:17]))
	h.ColorSpace = payload[17]
	h.BitsPerSample = payload[18]
	h.CompressionType = payload[19]
	h.ResolutionUnits = payload[20]
	h.VRes = binary.BigEndian.Uint32(payload[21:25])
	h.HRes = binary.BigEndian.Uint32(payload[25:29])
	return h, nil
}
