package dicos

import "github.com/rad-medica/jpegexp-go/pkg/compress/codec"

// Codec defines the interface for DICOS pixel data compression. It is an
// alias of codec.Codec so existing callers that type-assert against
// dicos.Codec keep working after the codec registry moved to
// pkg/compress/codec.
type Codec = codec.Codec

// Predefined codec instances for convenience.
var (
	CodecJPEGLS          = codec.JPEGLS
	CodecJPEGLi          = codec.JPEGLossless
	CodecJPEGBaseline    = codec.JPEGBaseline
	CodecJPEGProgressive = codec.JPEGProgressive
	CodecRLE             = codec.RLE
	CodecJPEG2000        = codec.JPEG2000
)

// CodecByName returns a codec by name, or nil if not found.
func CodecByName(name string) Codec {
	return codec.ByName(name)
}

// CodecByTransferSyntax returns a codec for a transfer syntax, or nil if not found.
func CodecByTransferSyntax(ts string) Codec {
	return codec.ByTransferSyntax(ts)
}
