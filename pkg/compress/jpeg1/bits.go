package jpeg1

import (
	"github.com/rad-medica/jpegexp-go/pkg/compress/bitio"
	"github.com/rad-medica/jpegexp-go/pkg/compress/errs"
)

// encodeHuffmanSymbol writes sym's canonical code from t.
func encodeHuffmanSymbol(w *bitio.StuffedWriter, t *Table, sym byte) error {
	code, size, ok := t.CodeFor(sym)
	if !ok {
		return errs.New(errs.InvalidData, "symbol not present in huffman table")
	}
	return w.WriteBits(uint32(code), size)
}

// decodeHuffmanSymbol reads one canonical code from r using the LUT
// decode procedure of ISO F.2.2.3.
func decodeHuffmanSymbol(r *bitio.StuffedReader, t *Table) (byte, error) {
	minCode, maxCode, valPtr, values := t.DecodeLUT()
	code := 0
	for length := 1; length <= 16; length++ {
		bit, err := r.ReadBit()
		if err != nil {
			return 0, err
		}
		code = (code << 1) | bit
		if maxCode[length] != -1 && code >= minCode[length] && code <= maxCode[length] {
			idx := valPtr[length] + (code - minCode[length])
			if idx < 0 || idx >= len(values) {
				return 0, errs.New(errs.InvalidData, "huffman decode index out of range")
			}
			return values[idx], nil
		}
	}
	return 0, errs.New(errs.InvalidData, "no matching huffman code")
}
