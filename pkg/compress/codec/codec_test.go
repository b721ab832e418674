package codec

import (
	"bytes"
	"image"
	"image/color"
	"testing"
)

func testImage() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8((x + y) * 4)})
		}
	}
	return img
}

func TestByNameAndByTransferSyntaxAgree(t *testing.T) {
	cases := []struct {
		name string
		ts   string
	}{
		{"jpeg-ls", "1.2.840.10008.1.2.4.80"},
		{"jpeg-li", "1.2.840.10008.1.2.4.70"},
		{"jpeg-baseline", "1.2.840.10008.1.2.4.50"},
		{"jpeg-progressive", "1.2.840.10008.1.2.4.55"},
		{"rle", "1.2.840.10008.1.2.5"},
		{"jpeg-2000", "1.2.840.10008.1.2.4.90"},
	}
	for _, tc := range cases {
		c := ByName(tc.name)
		if c == nil {
			t.Fatalf("ByName(%q) returned nil", tc.name)
		}
		if c.TransferSyntaxUID() != tc.ts {
			t.Fatalf("ByName(%q).TransferSyntaxUID() = %q, want %q", tc.name, c.TransferSyntaxUID(), tc.ts)
		}
		if ByTransferSyntax(tc.ts) == nil {
			t.Fatalf("ByTransferSyntax(%q) returned nil", tc.ts)
		}
	}
}

func TestUnknownNameAndTransferSyntaxReturnNil(t *testing.T) {
	if ByName("does-not-exist") != nil {
		t.Fatal("expected nil for unknown codec name")
	}
	if ByTransferSyntax("9.9.9") != nil {
		t.Fatal("expected nil for unknown transfer syntax")
	}
}

func TestDetectRoundTripsJPEGLS(t *testing.T) {
	var buf bytes.Buffer
	if err := JPEGLS.Encode(&buf, testImage()); err != nil {
		t.Fatalf("encode: %v", err)
	}
	name, err := Detect(buf.Bytes())
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if name != "jpeg-ls" {
		t.Fatalf("Detect() = %q, want jpeg-ls", name)
	}
}

func TestDetectRoundTripsJPEGBaseline(t *testing.T) {
	var buf bytes.Buffer
	if err := JPEGBaseline.Encode(&buf, testImage()); err != nil {
		t.Fatalf("encode: %v", err)
	}
	name, err := Detect(buf.Bytes())
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if name != "jpeg-baseline" {
		t.Fatalf("Detect() = %q, want jpeg-baseline", name)
	}
}

func TestDetectUnrecognizedReturnsError(t *testing.T) {
	if _, err := Detect([]byte{0x00, 0x01}); err == nil {
		t.Fatal("expected error for unrecognized stream")
	}
}
