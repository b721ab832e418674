package jpeg1

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/rad-medica/jpegexp-go/pkg/compress/frame"
)

func grayTestImage(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8((x*7 + y*13) % 256)})
		}
	}
	return img
}

func TestLosslessRoundTrip(t *testing.T) {
	img := grayTestImage(33, 17)
	var buf bytes.Buffer
	if err := Encode(&buf, img, &Options{Mode: Lossless, Predictor: 7}); err != nil {
		t.Fatalf("encode: %v", err)
	}
	raw, err := DecodeRaw(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := frame.FromImage(img)
	for i, v := range want.Samples {
		if raw.Samples[i] != v {
			t.Fatalf("sample %d: got %d want %d", i, raw.Samples[i], v)
		}
	}
}

func TestBaselineRoundTripApproximatesSource(t *testing.T) {
	img := grayTestImage(40, 24)
	var buf bytes.Buffer
	if err := Encode(&buf, img, &Options{Mode: Baseline, Quality: 90}); err != nil {
		t.Fatalf("encode: %v", err)
	}
	raw, err := DecodeRaw(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := frame.FromImage(img)
	if raw.Info.Width != want.Info.Width || raw.Info.Height != want.Info.Height {
		t.Fatalf("geometry mismatch: got %+v want %+v", raw.Info, want.Info)
	}
	var maxDiff int
	for i, v := range want.Samples {
		d := raw.Samples[i] - v
		if d < 0 {
			d = -d
		}
		if d > maxDiff {
			maxDiff = d
		}
	}
	if maxDiff > 40 {
		t.Fatalf("lossy reconstruction too far off: max abs diff %d", maxDiff)
	}
}

func TestBaselineOptimalTables(t *testing.T) {
	img := grayTestImage(24, 24)
	var buf bytes.Buffer
	if err := Encode(&buf, img, &Options{Mode: Baseline, Quality: 80, Optimize: true}); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := DecodeRaw(&buf); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestProgressiveRoundTripApproximatesSource(t *testing.T) {
	img := grayTestImage(32, 16)
	var buf bytes.Buffer
	if err := Encode(&buf, img, &Options{Mode: Progressive, Quality: 85}); err != nil {
		t.Fatalf("encode: %v", err)
	}
	raw, err := DecodeRaw(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := frame.FromImage(img)
	var maxDiff int
	for i, v := range want.Samples {
		d := raw.Samples[i] - v
		if d < 0 {
			d = -d
		}
		if d > maxDiff {
			maxDiff = d
		}
	}
	if maxDiff > 40 {
		t.Fatalf("progressive reconstruction too far off: max abs diff %d", maxDiff)
	}
}

func TestLosslessThreeComponent(t *testing.T) {
	info := frame.Info{Width: 12, Height: 9, BitsPerSample: 12, ComponentCount: 3}
	raw := frame.NewRaw(info)
	for y := 0; y < info.Height; y++ {
		for x := 0; x < info.Width; x++ {
			for c := 0; c < 3; c++ {
				raw.Set(x, y, c, (x*31+y*17+c*101)%4096)
			}
		}
	}
	var buf bytes.Buffer
	if err := EncodeRaw(&buf, raw, Options{Mode: Lossless, Predictor: 4}); err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeRaw(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	for i, v := range raw.Samples {
		if got.Samples[i] != v {
			t.Fatalf("sample %d: got %d want %d", i, got.Samples[i], v)
		}
	}
}
