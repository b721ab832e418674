package jpegls

// regularContext holds the four running statistics (A, B, C, N) LOCO-I
// keeps per regular-mode context index (spec.md §3 Regular-mode context).
type regularContext struct {
	A, B, C, N int
}

func newRegularContext(rangeVal int) regularContext {
	return regularContext{A: initAForRange(rangeVal), B: 0, C: 0, N: 1}
}

// initAForRange is the ISO initialization value for the A accumulator,
// grounded on original_source/src/regular_mode_context.rs::initialization_value_for_a.
func initAForRange(rangeVal int) int {
	v := (rangeVal + 32) / 64
	if v < 2 {
		return 2
	}
	return v
}

// computeK returns the Golomb parameter k: smallest k with (N<<k) >= A.
func (rc *regularContext) computeK() int {
	k := 0
	for (rc.N << uint(k)) < rc.A {
		k++
	}
	return k
}

// update applies the ISO C.3 bias-correction update to this context given
// the raw (unmapped, sign-normalized) prediction error, grounded on
// original_source/src/regular_mode_context.rs::update_variables_and_bias.
func (rc *regularContext) update(errVal, near, resetThreshold int) {
	rc.A += abs(errVal)
	rc.B += errVal * (2*near + 1)

	if rc.N == resetThreshold {
		rc.A >>= 1
		rc.B >>= 1
		rc.N >>= 1
	}
	rc.N++

	const maxC = 127
	const minC = -128

	if rc.B+rc.N <= 0 {
		rc.B += rc.N
		if rc.B <= -rc.N {
			rc.B = -rc.N + 1
		}
		if rc.C > minC {
			rc.C--
		}
	} else if rc.B > 0 {
		rc.B -= rc.N
		if rc.B > 0 {
			rc.B = 0
		}
		if rc.C < maxC {
			rc.C++
		}
	}
}

// bitWiseSign is the ISO BitWiseSign helper: -1, 0, or 1 matching the sign
// of v, grounded on original_source/src/jpegls/traits.rs::bit_wise_sign.
func bitWiseSign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	default:
		return 0
	}
}

// getErrorCorrection returns the bias-correction bit XORed into a
// regular-mode mapped error whenever the Golomb parameter is zero
// (ISO Annex A.6.1), grounded on
// original_source/src/regular_mode_context.rs::get_error_correction. k here
// is the caller's "near_lossless | k" per scan_encoder.rs::encode_regular:
// the correction is suppressed (by the OR) whenever the Golomb parameter is
// nonzero, and is otherwise the sign of the bias accumulator.
func (rc *regularContext) getErrorCorrection(k int) int {
	if k != 0 {
		return 0
	}
	return bitWiseSign(2*rc.B + rc.N - 1)
}

// runContext holds the (A, N, Nn) triple for a run-interruption context
// (spec.md §3 Run-mode context); there are two, selected by whether
// Ra == Rb at the interruption pixel.
type runContext struct {
	A, N, Nn int
}

func newRunContext(rangeVal int) runContext {
	return runContext{A: initAForRange(rangeVal), N: 1, Nn: 0}
}

func (rc *runContext) computeK() int {
	k := 0
	for (rc.N << uint(k)) < rc.A {
		k++
	}
	return k
}

// Model holds all per-scan context state for one component's regular and
// run-mode statistics plus the gradient-quantization thresholds.
type Model struct {
	MaxVal int
	Near   int
	Reset  int
	T1, T2, T3 int

	regular  [365]regularContext
	run      [2]runContext
	RunIndex int
}

// NewModel builds a context model for one component, deriving thresholds
// from preset (ISO C.2.4 defaults for zero fields).
func NewModel(maxVal, near int, preset PresetCodingParameters) *Model {
	resolved := ResolvePreset(preset, maxVal, near)
	m := &Model{
		MaxVal: maxVal,
		Near:   near,
		Reset:  resolved.ResetValue,
		T1:     resolved.Threshold1,
		T2:     resolved.Threshold2,
		T3:     resolved.Threshold3,
	}
	rangeVal := maxVal/max(1, 2*near+1) + 1
	for i := range m.regular {
		m.regular[i] = newRegularContext(rangeVal)
	}
	m.run[0] = newRunContext(rangeVal)
	m.run[1] = newRunContext(rangeVal)
	return m
}

// quantizeGradient maps a local gradient D into one of nine regions
// {-4..4} using the deadzone-aware thresholds of spec.md §4.4.
func (m *Model) quantizeGradient(d int) int {
	switch {
	case d <= -m.T3:
		return -4
	case d <= -m.T2:
		return -3
	case d <= -m.T1:
		return -2
	case d < -m.Near:
		return -1
	case d <= m.Near:
		return 0
	case d < m.T1:
		return 1
	case d < m.T2:
		return 2
	case d < m.T3:
		return 3
	default:
		return 4
	}
}

// ContextIndex computes the (Qs, sign) pair from the three local
// gradients D1, D2, D3 (spec.md §4.4): Qs in [0,364] plus the sign that
// was normalized away, applied to the prediction error and the bias term.
func (m *Model) ContextIndex(d1, d2, d3 int) (q, sign int) {
	q1 := m.quantizeGradient(d1)
	q2 := m.quantizeGradient(d2)
	q3 := m.quantizeGradient(d3)

	sign = 1
	if q1 < 0 || (q1 == 0 && q2 < 0) || (q1 == 0 && q2 == 0 && q3 < 0) {
		q1, q2, q3 = -q1, -q2, -q3
		sign = -1
	}
	return q1*81 + q2*9 + q3, sign
}

func (m *Model) ctx(q int) *regularContext { return &m.regular[q] }
