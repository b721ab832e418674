package jpegls

import "testing"

// TestRunErrorCodeRoundTrip exercises runErrorCode/unmapRunErrorCode across
// a range of (errVal, riType, k, N, Nn) combinations, confirming the
// three-condition parity rule (spec.md §4.4) inverts correctly -- including
// the RIType=0 cases where the Rust reference's own decode shortcut is
// known to diverge (see unmapRunErrorCode's grounding note).
func TestRunErrorCodeRoundTrip(t *testing.T) {
	for _, riType := range []int{0, 1} {
		for _, k := range []int{0, 1, 2, 3} {
			for n := 1; n <= 8; n++ {
				for nn := 0; nn <= n; nn++ {
					ctx := &runContext{A: 4, N: n, Nn: nn}
					for e := -20; e <= 20; e++ {
						if e == 0 {
							continue
						}
						code := runErrorCode(e, riType, k, ctx)
						if code < 0 {
							t.Fatalf("riType=%d k=%d N=%d Nn=%d e=%d: negative code %d", riType, k, n, nn, e, code)
						}
						got := unmapRunErrorCode(code, riType, k, ctx)
						if got != e {
							t.Errorf("riType=%d k=%d N=%d Nn=%d e=%d: code=%d decoded=%d", riType, k, n, nn, e, code, got)
						}
					}
				}
			}
		}
	}
}

// TestModReduceFold confirms modReduce folds every representable error into
// (-RANGE/2, RANGE/2] for a range of maxVal values (spec.md §4.4), grounded
// on original_source/src/jpegls/scan_encoder.rs::modulo_range.
func TestModReduceFold(t *testing.T) {
	for _, maxVal := range []int{255, 1023, 4095, 65535} {
		rangeVal := maxVal + 1
		lo, hi := -rangeVal/2, rangeVal/2
		for e := -2 * rangeVal; e <= 2*rangeVal; e++ {
			got := modReduce(e, maxVal)
			if got <= lo || got > hi {
				t.Fatalf("maxVal=%d e=%d: modReduce out of range (%d, %d]: got %d", maxVal, e, lo, hi, got)
			}
			if (got-e)%rangeVal != 0 {
				t.Fatalf("maxVal=%d e=%d: modReduce(%d)=%d not congruent mod %d", maxVal, e, e, got, rangeVal)
			}
		}
	}
}
