package jpegls

import "github.com/rad-medica/jpegexp-go/pkg/compress/bitio"

// limit is the escape threshold beyond which a mapped error value is coded
// as a fixed-length escape rather than Golomb-Rice coding (spec.md §3
// CodingParameters.limit), grounded on
// original_source/src/coding_parameters.rs::compute_limit_parameter. bits is
// the sample bit depth (quantized_bits_per_sample always equals it in this
// implementation, per encoder.rs/decoder.rs/scan_decoder.rs).
func limit(bits int) int { return 2 * (bits + max(8, bits)) }

// encodeGolomb writes mapped value m with Golomb parameter k, falling back
// to the fixed-length escape when the unary prefix would exceed lim. lim is
// CodingParameters.limit for regular-mode samples, or that limit reduced by
// the run-mode J-table entry for run-interruption samples (spec.md §4.4),
// grounded on
// original_source/src/jpegls/scan_encoder.rs::{encode_mapped_value,encode_run_interruption_error}.
func encodeGolomb(w *bitio.StuffedWriter, m, k, lim, qbpp int) error {
	high := m >> uint(k)
	if high < lim-qbpp-1 {
		if err := writeUnary(w, high); err != nil {
			return err
		}
		if k > 0 {
			return w.WriteBits(uint32(m&((1<<uint(k))-1)), k)
		}
		return nil
	}
	if err := writeUnary(w, lim-qbpp-1); err != nil {
		return err
	}
	return w.WriteBits(uint32(m-1), qbpp)
}

// decodeGolomb reads back a value written by encodeGolomb.
func decodeGolomb(r *bitio.StuffedReader, k, lim, qbpp int) (int, error) {
	high, err := readUnary(r, lim-qbpp-1)
	if err != nil {
		return 0, err
	}
	if high == lim-qbpp-1 {
		v, err := r.ReadBits(qbpp)
		if err != nil {
			return 0, err
		}
		return int(v) + 1, nil
	}
	if k == 0 {
		return high, nil
	}
	low, err := r.ReadBits(k)
	if err != nil {
		return 0, err
	}
	return (high << uint(k)) | int(low), nil
}

func writeUnary(w *bitio.StuffedWriter, n int) error {
	for i := 0; i < n; i++ {
		if err := w.WriteBit(0); err != nil {
			return err
		}
	}
	return w.WriteBit(1)
}

// readUnary reads zero bits up to a cap. Once cap zero bits have been
// consumed it reads the escape prefix's terminating 1 and returns cap —
// the caller interprets that as the escape condition.
func readUnary(r *bitio.StuffedReader, cap int) (int, error) {
	n := 0
	for n < cap {
		b, err := r.ReadBit()
		if err != nil {
			return 0, err
		}
		if b == 1 {
			return n, nil
		}
		n++
	}
	if _, err := r.ReadBit(); err != nil {
		return 0, err
	}
	return cap, nil
}

// mapError folds a signed prediction error into a non-negative code
// (spec.md §4.4 regular-mode mapping): even for e>=0, odd for e<0.
func mapError(errVal int) int {
	if errVal >= 0 {
		return 2 * errVal
	}
	return -2*errVal - 1
}

// unmapError is the inverse of mapError.
func unmapError(m int) int {
	if m%2 == 0 {
		return m / 2
	}
	return -(m + 1) / 2
}
