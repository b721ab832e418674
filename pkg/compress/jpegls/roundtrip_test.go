package jpegls_test

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	jpegls "github.com/rad-medica/jpegexp-go/pkg/compress/jpegls"
)

// TestRoundTrip16 encodes and decodes a 16-bit grayscale image and verifies
// pixel values match exactly (lossless).
func TestRoundTrip16(t *testing.T) {
	width, height := 64, 48

	original := image.NewGray16(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var val uint16
			switch {
			case x < 20 && y < 20:
				val = 0
			case x > 40 && y < 20:
				val = 65535
			default:
				val = uint16((x + y*width) % 65536)
			}
			original.SetGray16(x, y, color.Gray16{Y: val})
		}
	}

	var buf bytes.Buffer
	if err := jpegls.Encode(&buf, original, nil); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	t.Logf("Encoded %dx%d to %d bytes", width, height, buf.Len())

	decoded, err := jpegls.Decode(&buf)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	bounds := decoded.Bounds()
	if bounds.Dx() != width || bounds.Dy() != height {
		t.Fatalf("dimension mismatch: got %dx%d, want %dx%d", bounds.Dx(), bounds.Dy(), width, height)
	}

	decodedGray, ok := decoded.(*image.Gray16)
	if !ok {
		t.Fatalf("expected *image.Gray16, got %T", decoded)
	}

	mismatches := 0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if original.Gray16At(x, y).Y != decodedGray.Gray16At(x, y).Y {
				mismatches++
			}
		}
	}
	if mismatches > 0 {
		t.Errorf("found %d pixel mismatches out of %d (%.2f%%)",
			mismatches, width*height, float64(mismatches)*100/float64(width*height))
	}
}

// TestRoundTripRowOrder checks that pixel ordering survives the round trip,
// catching row/column transposition bugs.
func TestRoundTripRowOrder(t *testing.T) {
	width, height := 40, 25 // asymmetric to detect transposition

	original := image.NewGray16(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			val := uint16((y*1000 + x) % 65536)
			original.SetGray16(x, y, color.Gray16{Y: val})
		}
	}

	var buf bytes.Buffer
	if err := jpegls.Encode(&buf, original, nil); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	decoded, err := jpegls.Decode(&buf)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	decodedGray, ok := decoded.(*image.Gray16)
	if !ok {
		t.Fatalf("expected *image.Gray16, got %T", decoded)
	}

	testCases := []struct {
		x, y    int
		wantVal uint16
	}{
		{0, 0, 0},
		{39, 0, 39},
		{0, 24, 24000 % 65536},
		{20, 12, (12*1000 + 20) % 65536},
	}
	for _, tc := range testCases {
		got := decodedGray.Gray16At(tc.x, tc.y).Y
		if got != tc.wantVal {
			t.Errorf("at (%d,%d): got %d, want %d", tc.x, tc.y, got, tc.wantVal)
		}
	}
}

// TestRoundTripSampleInterleave exercises the pixel-interleaved MCU path
// (InterleaveSample) with a multi-component image whose channels have
// distinct gradient structure, so that per-component regular/run mode
// decisions diverge and the joint run check actually gets exercised.
func TestRoundTripSampleInterleave(t *testing.T) {
	width, height := 48, 40

	original := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r := uint8(0)
			if x > 10 && x < 30 && y > 10 && y < 30 {
				r = 200
			}
			g := uint8((x * 3) % 256)
			b := uint8(40)
			original.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
		}
	}

	var buf bytes.Buffer
	opts := &jpegls.Options{Interleave: jpegls.InterleaveSample}
	if err := jpegls.Encode(&buf, original, opts); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	decoded, err := jpegls.Decode(&buf)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	decodedRGBA, ok := decoded.(*image.RGBA)
	if !ok {
		t.Fatalf("expected *image.RGBA, got %T", decoded)
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			want := original.RGBAAt(x, y)
			got := decodedRGBA.RGBAAt(x, y)
			if want != got {
				t.Fatalf("at (%d,%d): got %+v, want %+v", x, y, got, want)
			}
		}
	}
}

// TestRoundTripHighGradientBoundary targets the first-row/first-column
// boundary case the modulo-range fold exists for: a sample whose true value
// sits near the opposite end of the range from the virtual-line prediction,
// so the raw prediction error would overflow qbpp bits without folding.
func TestRoundTripHighGradientBoundary(t *testing.T) {
	width, height := 16, 16

	original := image.NewGray16(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var val uint16
			if y == 0 {
				if x%2 == 0 {
					val = 0
				} else {
					val = 65535
				}
			} else {
				val = uint16((x*4099 + y*65) % 65536)
			}
			original.SetGray16(x, y, color.Gray16{Y: val})
		}
	}

	var buf bytes.Buffer
	if err := jpegls.Encode(&buf, original, nil); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	decoded, err := jpegls.Decode(&buf)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	decodedGray, ok := decoded.(*image.Gray16)
	if !ok {
		t.Fatalf("expected *image.Gray16, got %T", decoded)
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			want := original.Gray16At(x, y).Y
			got := decodedGray.Gray16At(x, y).Y
			if want != got {
				t.Fatalf("at (%d,%d): got %d, want %d", x, y, got, want)
			}
		}
	}
}

// TestRoundTripNearLossless checks that near-lossless reconstruction stays
// within the declared NEAR deviation of the source samples.
func TestRoundTripNearLossless(t *testing.T) {
	width, height := 32, 32
	near := 3

	original := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			original.SetGray(x, y, color.Gray{Y: uint8((x*7 + y*13) % 256)})
		}
	}

	var buf bytes.Buffer
	if err := jpegls.Encode(&buf, original, &jpegls.Options{Near: near}); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	decoded, err := jpegls.Decode(&buf)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	decodedGray, ok := decoded.(*image.Gray)
	if !ok {
		t.Fatalf("expected *image.Gray, got %T", decoded)
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			want := int(original.GrayAt(x, y).Y)
			got := int(decodedGray.GrayAt(x, y).Y)
			if diff := got - want; diff < -near || diff > near {
				t.Fatalf("at (%d,%d): got %d, want within %d of %d", x, y, got, near, want)
			}
		}
	}
}
