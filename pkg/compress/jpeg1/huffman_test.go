package jpeg1

import "testing"

func TestBuildTableDecodeRoundTrip(t *testing.T) {
	tbl := StandardLuminanceDC()
	for _, sym := range []byte{0, 1, 5, 11} {
		code, size, ok := tbl.CodeFor(sym)
		if !ok {
			t.Fatalf("symbol %d not in table", sym)
		}
		if size == 0 {
			t.Fatalf("symbol %d has zero-length code", sym)
		}
		_ = code
	}
}

func TestBuildOptimalTableMatchesCounts(t *testing.T) {
	counts := map[byte]int{0: 100, 1: 50, 2: 10, 5: 1}
	bits, values := BuildOptimalTable(counts)
	if len(values) != len(counts) {
		t.Fatalf("got %d symbols, want %d", len(values), len(counts))
	}
	total := 0
	for _, n := range bits {
		total += n
	}
	if total != len(counts) {
		t.Fatalf("bits histogram sums to %d, want %d", total, len(counts))
	}
	tbl := BuildTable(bits, values)
	seen := map[byte]bool{}
	for _, v := range values {
		code, size, ok := tbl.CodeFor(v)
		if !ok || size == 0 {
			t.Fatalf("symbol %d missing a valid code", v)
		}
		_ = code
		seen[v] = true
	}
	for sym := range counts {
		if !seen[sym] {
			t.Fatalf("symbol %d from counts missing in built table", sym)
		}
	}
}

func TestMagnitudeCategoryAndExtend(t *testing.T) {
	for _, v := range []int{0, 1, -1, 2, -2, 255, -255, 1000, -1000} {
		cat := magnitudeCategory(v)
		bits := additionalBits(v, cat)
		got := extendReceive(bits, cat)
		if got != v {
			t.Fatalf("extendReceive(additionalBits(%d, %d)) = %d, want %d", v, cat, got, v)
		}
	}
}

func TestZigzagRoundTrip(t *testing.T) {
	var block [64]int
	for i := range block {
		block[i] = i
	}
	zz := zigzagScan(&block)
	back := zigzagUnscan(&zz)
	if back != block {
		t.Fatalf("zigzag round trip mismatch: got %v want %v", back, block)
	}
}
