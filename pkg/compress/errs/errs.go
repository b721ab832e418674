// Package errs defines the closed set of failure kinds shared by the
// JPEG-LS and JPEG (T.81) scan coders and their surrounding stream
// reader/writer.
package errs

import "fmt"

// Kind is a closed enumeration of codec failure kinds, grouped as content,
// capability, parameter, and resource errors.
type Kind int

const (
	// Content errors: malformed or unsupported input.
	InvalidData Kind = iota + 1
	NeedMoreData
	UnknownMarker
	UnexpectedStartOfScan
	UnexpectedEndOfImage
	UnexpectedRestartMarker
	DuplicateStartOfImage
	DuplicateStartOfFrame
	InvalidMarkerSegmentSize
	InvalidJpeglsPresetParameters
	InvalidSpiffHeader

	// Capability errors.
	EncodingNotSupported
	ParameterValueNotSupported
	ColorTransformNotSupported
	JpeglsPresetExtendedParameterTypeNotSupported

	// Parameter errors (bounds violations).
	InvalidParameterWidth
	InvalidParameterHeight
	InvalidParameterBitsPerSample
	InvalidParameterComponentCount
	InvalidParameterInterleaveMode
	InvalidParameterNearLossless
	InvalidParameterCodingParameters
	InvalidParameterColorTransformation
	InvalidParameterMappingTableID
	InvalidParameterSize
	InvalidParameterStride

	// Resource errors.
	DestinationTooSmall
	NotEnoughMemory
	CallbackFailed
)

var names = map[Kind]string{
	InvalidData:                      "invalid data",
	NeedMoreData:                     "need more data",
	UnknownMarker:                    "unknown jpeg marker found",
	UnexpectedStartOfScan:            "unexpected start of scan marker",
	UnexpectedEndOfImage:             "unexpected end of image marker",
	UnexpectedRestartMarker:          "unexpected restart marker",
	DuplicateStartOfImage:            "duplicate start of image marker",
	DuplicateStartOfFrame:            "duplicate start of frame marker",
	InvalidMarkerSegmentSize:         "invalid marker segment size",
	InvalidJpeglsPresetParameters:    "invalid jpeg-ls preset parameters",
	InvalidSpiffHeader:               "invalid spiff header",
	EncodingNotSupported:             "encoding not supported",
	ParameterValueNotSupported:       "parameter value not supported",
	ColorTransformNotSupported:       "color transform not supported",
	JpeglsPresetExtendedParameterTypeNotSupported: "jpeg-ls preset extended parameter type not supported",
	InvalidParameterWidth:            "invalid parameter: width",
	InvalidParameterHeight:           "invalid parameter: height",
	InvalidParameterBitsPerSample:    "invalid parameter: bits per sample",
	InvalidParameterComponentCount:   "invalid parameter: component count",
	InvalidParameterInterleaveMode:   "invalid parameter: interleave mode",
	InvalidParameterNearLossless:     "invalid parameter: near lossless",
	InvalidParameterCodingParameters: "invalid parameter: coding parameters",
	InvalidParameterColorTransformation: "invalid parameter: color transformation",
	InvalidParameterMappingTableID:   "invalid parameter: mapping table id",
	InvalidParameterSize:             "invalid parameter: size",
	InvalidParameterStride:           "invalid parameter: stride",
	DestinationTooSmall:              "destination too small",
	NotEnoughMemory:                  "not enough memory",
	CallbackFailed:                   "callback failed",
}

func (k Kind) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	return fmt.Sprintf("errs.Kind(%d)", int(k))
}

// Error is a codec error carrying a closed Kind plus an optional wrapped
// cause and free-form context.
type Error struct {
	Kind    Kind
	Context string
	Cause   error
}

func (e *Error) Error() string {
	if e.Context != "" {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %s: %v", e.Kind, e.Context, e.Cause)
		}
		return fmt.Sprintf("%s: %s", e.Kind, e.Context)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error with the same Kind, allowing
// errors.Is(err, errs.New(errs.InvalidData, "")) style checks. A bare Kind
// is not an error value and cannot be matched this way; use errors.As to
// inspect the Kind directly.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return other.Kind == e.Kind
}

// New builds an *Error of the given kind with a free-form context string.
func New(kind Kind, context string) *Error {
	return &Error{Kind: kind, Context: context}
}

// Wrap builds an *Error of the given kind wrapping cause.
func Wrap(kind Kind, context string, cause error) *Error {
	return &Error{Kind: kind, Context: context, Cause: cause}
}
