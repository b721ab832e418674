package jpegls

// InterleaveMode selects how a JPEG-LS scan multiplexes components
// (spec.md §4.4).
type InterleaveMode int

const (
	InterleaveNone InterleaveMode = iota
	InterleaveLine
	InterleaveSample
)

// FrameHeader mirrors the SOF55 segment (spec.md §3 FrameInfo).
type FrameHeader struct {
	Precision  int // bits per sample
	Height     int
	Width      int
	Components int
}

// ScanHeader mirrors the SOS segment for a JPEG-LS scan.
type ScanHeader struct {
	Components int
	NearLossless int
	Interleave   InterleaveMode
	Al           int
	Ah           int
}

// PresetCodingParameters is the JPEG-LS LSE type-1 parameter set
// (spec.md §3): any field of zero means "use the ISO C.2.4 default".
type PresetCodingParameters struct {
	MaximumSampleValue int
	Threshold1         int
	Threshold2         int
	Threshold3         int
	ResetValue         int
}

// CodingParameters is the full set of per-scan encoding choices
// (spec.md §3).
type CodingParameters struct {
	NearLossless      int
	RestartInterval   int
	Interleave        InterleaveMode
	ColorTransform    int
	QuantizedBitsPerSample int
	MappingTableID    int
}

// DefaultThresholds derives T1, T2, T3 and the reset value from MAXVAL and
// NEAR per ISO/IEC 14495-1 Annex C.2.4. A PresetCodingParameters with all
// fields zero requests this computation; a field already set wins.
func DefaultThresholds(maxVal, near int) (t1, t2, t3, reset int) {
	const (
		basicT1 = 3
		basicT2 = 7
		basicT3 = 21
		basicReset = 64
	)
	factor := (min(maxVal, 4095) + 128) / 256

	t1 = factor*(basicT1-2) + 2 + 3*near
	t2 = factor*(basicT2-3) + 3 + 5*near
	t3 = factor*(basicT3-4) + 4 + 7*near

	t1 = clip(t1, near+1, maxVal)
	t2 = clip(t2, t1, maxVal)
	t3 = clip(t3, t2, maxVal)

	return t1, t2, t3, basicReset
}

// ResolvePreset fills in zero fields of p with ISO C.2.4 defaults for the
// given maxVal/near, returning the effective thresholds and reset value.
func ResolvePreset(p PresetCodingParameters, maxVal, near int) PresetCodingParameters {
	out := p
	if out.MaximumSampleValue == 0 {
		out.MaximumSampleValue = maxVal
	}
	if out.Threshold1 == 0 && out.Threshold2 == 0 && out.Threshold3 == 0 {
		t1, t2, t3, reset := DefaultThresholds(out.MaximumSampleValue, near)
		out.Threshold1, out.Threshold2, out.Threshold3 = t1, t2, t3
		if out.ResetValue == 0 {
			out.ResetValue = reset
		}
	}
	if out.ResetValue == 0 {
		out.ResetValue = 64
	}
	return out
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func clip(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// jTable is the fixed 32-entry run-mode length table (ISO Table A.3 / spec.md §4.4).
var jTable = [32]int{
	0, 0, 0, 0, 1, 1, 1, 1, 2, 2, 2, 2, 3, 3, 3, 3,
	4, 4, 5, 5, 6, 6, 7, 7, 8, 9, 10, 11, 12, 13, 14, 15,
}
