package jpegls

import "github.com/rad-medica/jpegexp-go/pkg/compress/bitio"

// encodeRunLength writes a run of identical (within near-lossless
// tolerance) samples using the adaptive J-table (spec.md §4.4, ISO Annex
// A.7.1): full-length segments are each announced with a single 1 bit and
// consume 1<<J[runIndex] pixels, advancing runIndex; the remainder is
// written as a J[runIndex]+1-bit value with reserved leading zero, unless
// the run reaches the end of the line (in which case a lone terminator bit
// is written only if a partial run remains).
func (m *Model) encodeRunLength(w *bitio.StuffedWriter, runLength int, endOfLine bool) error {
	for runLength >= (1 << uint(jTable[m.RunIndex])) {
		if err := w.WriteBit(1); err != nil {
			return err
		}
		runLength -= 1 << uint(jTable[m.RunIndex])
		if m.RunIndex < 31 {
			m.RunIndex++
		}
	}
	if endOfLine {
		if runLength != 0 {
			return w.WriteBit(1)
		}
		return nil
	}
	return w.WriteBits(uint32(runLength), jTable[m.RunIndex]+1)
}

// decodeRunLength is the inverse of encodeRunLength. It returns the
// decoded run length and whether the run was terminated by a partial
// segment (i.e. an actual interruption sample follows) as opposed to
// running cleanly to the declared line width.
func (m *Model) decodeRunLength(r *bitio.StuffedReader, maxRun int, endOfLine bool) (int, bool, error) {
	runLength := 0
	for runLength < maxRun {
		b, err := r.ReadBit()
		if err != nil {
			return 0, false, err
		}
		if b == 0 {
			if jTable[m.RunIndex] > 0 {
				rest, err := r.ReadBits(jTable[m.RunIndex])
				if err != nil {
					return 0, false, err
				}
				runLength += int(rest)
			}
			return runLength, true, nil
		}
		if runLength+(1<<uint(jTable[m.RunIndex])) > maxRun {
			return maxRun, false, nil // partial run up to the end of the line
		}
		runLength += 1 << uint(jTable[m.RunIndex])
		if m.RunIndex < 31 {
			m.RunIndex++
		}
	}
	return maxRun, false, nil
}

// decrementRunIndex is the post-interruption companion of encodeRunLength's
// implicit increments (spec.md §4.4: "then decrement run_index (floor
// 0)"), grounded on
// original_source/src/jpegls/scan_encoder.rs::decrement_run_index. It is
// called once per run interruption, after the interruption sample itself
// has been coded, on both the encode and decode paths.
func (m *Model) decrementRunIndex() {
	if m.RunIndex > 0 {
		m.RunIndex--
	}
}

// computeRunMap implements the three-condition parity rule of spec.md §4.4
// verbatim, grounded on
// original_source/src/jpegls/run_mode_context.rs::compute_map.
func computeRunMap(errVal, k int, ctx *runContext) bool {
	if k == 0 && errVal > 0 && 2*ctx.Nn < ctx.N {
		return true
	}
	if errVal < 0 && 2*ctx.Nn >= ctx.N {
		return true
	}
	if errVal < 0 && k != 0 {
		return true
	}
	return false
}

// runErrorCode maps a signed, sign/near-lossless-quantized run-interruption
// prediction error to its non-negative Golomb code, per spec.md §4.4:
// MErrval = 2|Errval| - RIType + (map ? 0 : 1).
func runErrorCode(errVal, riType, k int, ctx *runContext) int {
	v := 2*abs(errVal) - riType
	if !computeRunMap(errVal, k, ctx) {
		v++
	}
	return v
}

// unmapRunErrorCode is the inverse of runErrorCode. It is derived
// algebraically from the spec.md §4.4 mapping above rather than ported
// from original_source/src/jpegls/run_mode_context.rs::decode_error_value:
// that function's "temp & 1" parity shortcut only recovers the correct
// magnitude for RIType=1 and silently returns magnitude+1 for RIType=0
// when map is false (confirmed by hand-expansion of its formula against
// the encode side above), which would corrupt every RIType=0 interruption
// sample whose context currently has the majority-positive bias. The
// inversion below instead solves the encode formula directly:
// |Errval| = floor((MErrval + RIType) / 2), and the map bit needed to
// resolve the sign is recovered from MErrval's parity adjusted for RIType
// (MErrval ≡ RIType + 1 + map, mod 2) before applying the same sign rule
// ISO A.7.2 uses to disambiguate compute_map's two argument-sign branches.
func unmapRunErrorCode(val, riType, k int, ctx *runContext) int {
	absErr := (val + riType) / 2
	mapBit := (val + riType + 1) & 1
	negative := (mapBit == 1) == (k != 0 || 2*ctx.Nn >= ctx.N)
	if negative {
		return -absErr
	}
	return absErr
}

// update applies the ISO A.7.2 run-context statistics update given the
// sign-normalized prediction error and its Golomb-mapped code, grounded on
// original_source/src/jpegls/run_mode_context.rs::update_variables.
func (rc *runContext) update(errVal, mapped, riType, resetThreshold int) {
	if errVal < 0 {
		rc.Nn++
	}
	rc.A += (mapped + 1 - riType) >> 1
	if rc.N == resetThreshold {
		rc.A >>= 1
		rc.N >>= 1
		rc.Nn >>= 1
	}
	rc.N++
}
