package jpegls

import (
	"bytes"
	"testing"

	"github.com/rad-medica/jpegexp-go/pkg/compress/bitio"
)

func TestGolombRoundTrip(t *testing.T) {
	values := []int{0, 1, 2, 3, 7, 15, 31, 100, 255}
	ks := []int{0, 1, 2, 4, 8}
	qbpp := 8
	lim := limit(qbpp)

	for _, k := range ks {
		var buf bytes.Buffer
		w := bitio.NewStuffedWriter(&buf)
		for _, v := range values {
			if err := encodeGolomb(w, v, k, lim, qbpp); err != nil {
				t.Fatalf("k=%d encodeGolomb(%d): %v", k, v, err)
			}
		}
		if err := w.Flush(); err != nil {
			t.Fatalf("flush: %v", err)
		}

		r := bitio.NewStuffedReader(&buf)
		for _, want := range values {
			got, err := decodeGolomb(r, k, lim, qbpp)
			if err != nil {
				t.Fatalf("k=%d decodeGolomb: %v", k, err)
			}
			if got != want {
				t.Errorf("k=%d: got %d want %d", k, got, want)
			}
		}
	}
}

// TestGolombEscapeRoundTrip exercises the fixed-length escape path with
// mapped values beyond any k's practical unary range, confirming the
// qbpp-bit (m-1)/(+1) encode/decode pairing (spec.md §4.4).
func TestGolombEscapeRoundTrip(t *testing.T) {
	qbpp := 8
	lim := limit(qbpp)
	k := 0
	values := []int{lim - qbpp, lim - qbpp + 1, 2 * lim}

	var buf bytes.Buffer
	w := bitio.NewStuffedWriter(&buf)
	for _, v := range values {
		if err := encodeGolomb(w, v, k, lim, qbpp); err != nil {
			t.Fatalf("encodeGolomb(%d): %v", v, err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	r := bitio.NewStuffedReader(&buf)
	for _, want := range values {
		got, err := decodeGolomb(r, k, lim, qbpp)
		if err != nil {
			t.Fatalf("decodeGolomb: %v", err)
		}
		if got != want {
			t.Errorf("got %d want %d", got, want)
		}
	}
}

func TestMapErrorRoundTrip(t *testing.T) {
	for e := -50; e <= 50; e++ {
		m := mapError(e)
		if m < 0 {
			t.Fatalf("mapError(%d) negative: %d", e, m)
		}
		if got := unmapError(m); got != e {
			t.Errorf("unmapError(mapError(%d))=%d", e, got)
		}
	}
}
