package jpegls

import (
	"github.com/rad-medica/jpegexp-go/pkg/compress/bitio"
	"github.com/rad-medica/jpegexp-go/pkg/compress/frame"
)

// neighbors returns the four causal samples (Ra=left, Rb=above,
// Rc=above-left, Rd=above-right) for pixel (x, y) of component comp,
// applying the virtual-line boundary rules of spec.md §9 Open Question 1:
// the virtual row above the first line is filled with 1<<(bits-1), not
// the CharLS-workaround constant 173 the teacher's vendored decoder used.
func neighbors(raw *frame.Raw, comp, x, y, bitsPerSample int) (ra, rb, rc, rd int) {
	initVal := 1 << uint(bitsPerSample-1)
	width := raw.Info.Width

	if y == 0 {
		rb, rc, rd = initVal, initVal, initVal
	} else {
		rb = raw.At(x, y-1, comp)
		if x == 0 {
			rc = initVal
		} else {
			rc = raw.At(x-1, y-1, comp)
		}
		if x+1 < width {
			rd = raw.At(x+1, y-1, comp)
		} else {
			rd = rb
		}
	}

	if x == 0 {
		ra = rb
	} else {
		ra = raw.At(x-1, y, comp)
	}
	return ra, rb, rc, rd
}

// reconstruct applies the near-lossless dequantization step shared by
// encode (to know what the decoder will see, for causal neighbors) and
// decode (spec.md §4.4): Px + errVal*(2*NEAR+1). In lossless coding the sum
// is folded with the same modulus as modReduce's forward fold (maxVal+1, a
// power of two) rather than saturated, grounded on
// original_source/src/jpegls/traits.rs::compute_reconstructed_sample
// ("(predicted + error_value) & MAX_VALUE"): saturating instead would
// leave modReduce's fold (below) without the matching decoder-side
// unwrap, corrupting exactly the boundary/high-gradient samples that fold
// was introduced to keep representable. In near-lossless coding the
// quantized error never reaches the fold, and the sum is clamped to
// [0, maxVal].
func reconstruct(predicted, errVal, near, maxVal int) int {
	v := predicted + errVal*(2*near+1)
	if near > 0 {
		return clip(v, 0, maxVal)
	}
	return v & maxVal
}

// quantizeNear folds a sample difference into a representative within
// NEAR of the true value for lossy (near-lossless) coding; near=0 is
// lossless and returns d unchanged.
func quantizeNear(d, near int) int {
	if near == 0 {
		return d
	}
	if d > 0 {
		return (d + near) / (2*near + 1)
	}
	return -((-d + near) / (2*near + 1))
}

// modReduce folds a quantized regular-mode prediction error into the
// representable span (-RANGE/2, RANGE/2], RANGE = maxVal+1, so that its
// Golomb mapping always fits in qbpp bits even when the MED-plus-bias
// prediction sits far from the true sample (spec.md §4.4), grounded on
// original_source/src/jpegls/scan_encoder.rs::modulo_range.
func modReduce(errVal, maxVal int) int {
	rangeVal := maxVal + 1
	low := -(rangeVal / 2) + 1
	folded := ((errVal-low)%rangeVal + rangeVal) % rangeVal
	return folded + low
}

// encodeRegularPixel codes one sample in regular mode: MED prediction with
// the running bias (C), the Annex A.6.1 bias-correction XOR, Golomb-Rice
// mapping, and the context statistics update, returning the reconstructed
// sample for causal reuse by later pixels. The context update and the
// reconstruction both consume the modReduce-folded error, not the raw
// quantized difference: that's the only value the decoder can recover, so
// using anything else here would desync the running statistics the moment
// a fold actually triggers. Shared by every interleave mode (spec.md §4.4),
// grounded on original_source/src/jpegls/scan_encoder.rs::encode_regular.
func encodeRegularPixel(w *bitio.StuffedWriter, model *Model, qidx, sign, predicted, actual, bitsPerSample int) (int, error) {
	near := model.Near
	maxVal := model.MaxVal
	ctx := model.ctx(qidx)
	predicted = clip(predicted+sign*ctx.C, 0, maxVal)

	k := ctx.computeK()
	correction := ctx.getErrorCorrection(near | k)

	errVal := sign * quantizeNear(actual-predicted, near)
	folded := modReduce(errVal, maxVal)
	mapped := mapError(correction ^ folded)
	if err := encodeGolomb(w, mapped, k, limit(bitsPerSample), bitsPerSample); err != nil {
		return 0, err
	}
	ctx.update(folded, near, model.Reset)

	return reconstruct(predicted, sign*folded, near, maxVal), nil
}

// decodeRegularPixel is the exact inverse of encodeRegularPixel.
func decodeRegularPixel(r *bitio.StuffedReader, model *Model, qidx, sign, predicted, bitsPerSample int) (int, error) {
	near := model.Near
	maxVal := model.MaxVal
	ctx := model.ctx(qidx)
	predicted = clip(predicted+sign*ctx.C, 0, maxVal)

	k := ctx.computeK()
	mapped, err := decodeGolomb(r, k, limit(bitsPerSample), bitsPerSample)
	if err != nil {
		return 0, err
	}
	errVal := unmapError(mapped) ^ ctx.getErrorCorrection(near|k)
	ctx.update(errVal, near, model.Reset)

	return reconstruct(predicted, sign*errVal, near, maxVal), nil
}

// runContextFor selects the run-interruption context and prediction for
// the interruption sample at (x, y) of comp, given its left/above
// neighbors Ra/Rb (spec.md §4.4): RIType=1 when Ra and Rb already agree
// within NEAR (predict Ra), RIType=0 otherwise (predict Rb, with sign
// flipped when Rb < Ra so the more probable error sign is the smaller
// code).
func runContextFor(model *Model, ra, rb, near int) (ctx *runContext, riType, predicted, sign int) {
	riType = 0
	if abs(ra-rb) <= near {
		riType = 1
	}
	ctx = &model.run[riType]
	if riType == 1 {
		return ctx, riType, ra, 1
	}
	sign = 1
	if rb < ra {
		sign = -1
	}
	return ctx, riType, rb, sign
}

// encodeRunInterruptionPixel codes the sample that broke a run, then
// decrements the model's shared run index (spec.md §4.4), grounded on
// original_source/src/jpegls/scan_encoder.rs::{encode_run_interruption_pixel,encode_run_interruption_error}.
func encodeRunInterruptionPixel(w *bitio.StuffedWriter, model *Model, ctx *runContext, riType, predicted, sign, actual, bitsPerSample int) (int, error) {
	near := model.Near
	maxVal := model.MaxVal

	errVal := sign * quantizeNear(actual-predicted, near)
	k := ctx.computeK()
	code := runErrorCode(errVal, riType, k, ctx)
	lim := limit(bitsPerSample) - jTable[model.RunIndex] - 1
	if err := encodeGolomb(w, code, k, lim, bitsPerSample); err != nil {
		return 0, err
	}
	ctx.update(errVal, code, riType, model.Reset)
	model.decrementRunIndex()

	return reconstruct(predicted, sign*errVal, near, maxVal), nil
}

// decodeRunInterruptionPixel is the exact inverse of
// encodeRunInterruptionPixel.
func decodeRunInterruptionPixel(r *bitio.StuffedReader, model *Model, ctx *runContext, riType, predicted, sign, bitsPerSample int) (int, error) {
	near := model.Near
	maxVal := model.MaxVal

	k := ctx.computeK()
	lim := limit(bitsPerSample) - jTable[model.RunIndex] - 1
	code, err := decodeGolomb(r, k, lim, bitsPerSample)
	if err != nil {
		return 0, err
	}
	errVal := unmapRunErrorCode(code, riType, k, ctx)
	ctx.update(errVal, code, riType, model.Reset)
	model.decrementRunIndex()

	return reconstruct(predicted, sign*errVal, near, maxVal), nil
}

// encodeLine encodes one scanline of one component, in place advancing
// the component's Model (regular and run-mode statistics, run index).
// This is the InterleaveNone/InterleaveLine path, where run mode only
// ever examines this one component's own Ra/Rb (spec.md §4.4); Sample
// interleave uses encodeSampleLine instead, which checks every component
// jointly.
func encodeLine(w *bitio.StuffedWriter, raw *frame.Raw, comp int, y int, model *Model, bitsPerSample int) error {
	width := raw.Info.Width
	near := model.Near

	x := 0
	for x < width {
		ra, rb, rc, rd := neighbors(raw, comp, x, y, bitsPerSample)
		d1, d2, d3 := rd-rb, rb-rc, rc-ra
		q1, q2, q3 := model.quantizeGradient(d1), model.quantizeGradient(d2), model.quantizeGradient(d3)

		if q1 == 0 && q2 == 0 && q3 == 0 {
			runLen := 0
			for x+runLen < width {
				if abs(raw.At(x+runLen, y, comp)-ra) > near {
					break
				}
				raw.Set(x+runLen, y, comp, ra)
				runLen++
			}
			atEOL := x+runLen >= width
			if err := model.encodeRunLength(w, runLen, atEOL); err != nil {
				return err
			}
			x += runLen
			if atEOL {
				continue
			}

			raI, rbI, _, _ := neighbors(raw, comp, x, y, bitsPerSample)
			ctx, riType, predicted, sign := runContextFor(model, raI, rbI, near)
			actual := raw.At(x, y, comp)
			recon, err := encodeRunInterruptionPixel(w, model, ctx, riType, predicted, sign, actual, bitsPerSample)
			if err != nil {
				return err
			}
			raw.Set(x, y, comp, recon)
			x++
			continue
		}

		qidx, sign := model.ContextIndex(d1, d2, d3)
		predicted := PredictMED(ra, rb, rc)
		actual := raw.At(x, y, comp)
		recon, err := encodeRegularPixel(w, model, qidx, sign, predicted, actual, bitsPerSample)
		if err != nil {
			return err
		}
		raw.Set(x, y, comp, recon)
		x++
	}
	return nil
}

// decodeLine is the exact inverse of encodeLine.
func decodeLine(r *bitio.StuffedReader, raw *frame.Raw, comp int, y int, model *Model, bitsPerSample int) error {
	width := raw.Info.Width
	near := model.Near

	x := 0
	for x < width {
		ra, rb, rc, rd := neighbors(raw, comp, x, y, bitsPerSample)
		d1, d2, d3 := rd-rb, rb-rc, rc-ra
		q1, q2, q3 := model.quantizeGradient(d1), model.quantizeGradient(d2), model.quantizeGradient(d3)

		if q1 == 0 && q2 == 0 && q3 == 0 {
			maxRun := width - x
			runLen, interrupted, err := model.decodeRunLength(r, maxRun, false)
			if err != nil {
				return err
			}
			for i := 0; i < runLen; i++ {
				ra2, _, _, _ := neighbors(raw, comp, x+i, y, bitsPerSample)
				raw.Set(x+i, y, comp, ra2)
			}
			x += runLen
			if !interrupted {
				continue
			}

			raI, rbI, _, _ := neighbors(raw, comp, x, y, bitsPerSample)
			ctx, riType, predicted, sign := runContextFor(model, raI, rbI, near)
			recon, err := decodeRunInterruptionPixel(r, model, ctx, riType, predicted, sign, bitsPerSample)
			if err != nil {
				return err
			}
			raw.Set(x, y, comp, recon)
			x++
			continue
		}

		qidx, sign := model.ContextIndex(d1, d2, d3)
		predicted := PredictMED(ra, rb, rc)
		recon, err := decodeRegularPixel(r, model, qidx, sign, predicted, bitsPerSample)
		if err != nil {
			return err
		}
		raw.Set(x, y, comp, recon)
		x++
	}
	return nil
}

// encodeSampleLine encodes one row of a Sample-interleaved scan: every
// component is examined at each pixel position before a mode decision is
// made, run mode requires every component to be within NEAR of its own Ra
// (spec.md §4.4 "a pixel is in-run only if every component is within NEAR
// of its Ra"), and the run length/index bookkeeping is shared by all
// components through models[0] (only one run announcement is coded per
// interrupted or completed run, not one per component). Grounded on
// original_source/src/jpegls/scan_encoder.rs::{encode_sample_line,encode_run_mode_interleaved}.
func encodeSampleLine(w *bitio.StuffedWriter, raw *frame.Raw, y int, models []*Model, bitsPerSample int) error {
	width := raw.Info.Width
	ncomp := raw.Info.ComponentCount
	near := models[0].Near

	x := 0
	for x < width {
		allZero := true
		qidx := make([]int, ncomp)
		sign := make([]int, ncomp)
		predicted := make([]int, ncomp)
		for c := 0; c < ncomp; c++ {
			ra, rb, rc, rd := neighbors(raw, c, x, y, bitsPerSample)
			d1, d2, d3 := rd-rb, rb-rc, rc-ra
			q1, q2, q3 := models[c].quantizeGradient(d1), models[c].quantizeGradient(d2), models[c].quantizeGradient(d3)
			if q1 != 0 || q2 != 0 || q3 != 0 {
				allZero = false
			}
			qidx[c], sign[c] = models[c].ContextIndex(d1, d2, d3)
			predicted[c] = PredictMED(ra, rb, rc)
		}

		if !allZero {
			for c := 0; c < ncomp; c++ {
				actual := raw.At(x, y, c)
				recon, err := encodeRegularPixel(w, models[c], qidx[c], sign[c], predicted[c], actual, bitsPerSample)
				if err != nil {
					return err
				}
				raw.Set(x, y, c, recon)
			}
			x++
			continue
		}

		runLen := 0
		for x+runLen < width {
			matched := true
			for c := 0; c < ncomp; c++ {
				ra2, rb2, _, _ := neighbors(raw, c, x+runLen, y, bitsPerSample)
				if abs(ra2-rb2) > near {
					matched = false
					break
				}
			}
			if !matched {
				break
			}
			runLen++
		}
		atEOL := x+runLen >= width
		if err := models[0].encodeRunLength(w, runLen, atEOL); err != nil {
			return err
		}
		x += runLen
		if atEOL {
			continue
		}

		interruptionComp := 0
		for c := 0; c < ncomp; c++ {
			ra2, rb2, _, _ := neighbors(raw, c, x, y, bitsPerSample)
			if abs(ra2-rb2) > near {
				interruptionComp = c
				break
			}
		}

		raI, rbI, _, _ := neighbors(raw, interruptionComp, x, y, bitsPerSample)
		ctx, riType, ipredicted, isign := runContextFor(models[interruptionComp], raI, rbI, near)
		actual := raw.At(x, y, interruptionComp)
		recon, err := encodeRunInterruptionPixelShared(w, models, interruptionComp, ctx, riType, ipredicted, isign, actual, bitsPerSample)
		if err != nil {
			return err
		}
		raw.Set(x, y, interruptionComp, recon)

		for c := interruptionComp + 1; c < ncomp; c++ {
			ra, rb, rc, rd := neighbors(raw, c, x, y, bitsPerSample)
			d1, d2, d3 := rd-rb, rb-rc, rc-ra
			qi, si := models[c].ContextIndex(d1, d2, d3)
			pred := PredictMED(ra, rb, rc)
			actualC := raw.At(x, y, c)
			reconC, err := encodeRegularPixel(w, models[c], qi, si, pred, actualC, bitsPerSample)
			if err != nil {
				return err
			}
			raw.Set(x, y, c, reconC)
		}
		x++
	}
	return nil
}

// decodeSampleLine is the exact inverse of encodeSampleLine.
func decodeSampleLine(r *bitio.StuffedReader, raw *frame.Raw, y int, models []*Model, bitsPerSample int) error {
	width := raw.Info.Width
	ncomp := raw.Info.ComponentCount
	near := models[0].Near

	x := 0
	for x < width {
		allZero := true
		qidx := make([]int, ncomp)
		sign := make([]int, ncomp)
		predicted := make([]int, ncomp)
		for c := 0; c < ncomp; c++ {
			ra, rb, rc, rd := neighbors(raw, c, x, y, bitsPerSample)
			d1, d2, d3 := rd-rb, rb-rc, rc-ra
			q1, q2, q3 := models[c].quantizeGradient(d1), models[c].quantizeGradient(d2), models[c].quantizeGradient(d3)
			if q1 != 0 || q2 != 0 || q3 != 0 {
				allZero = false
			}
			qidx[c], sign[c] = models[c].ContextIndex(d1, d2, d3)
			predicted[c] = PredictMED(ra, rb, rc)
		}

		if !allZero {
			for c := 0; c < ncomp; c++ {
				recon, err := decodeRegularPixel(r, models[c], qidx[c], sign[c], predicted[c], bitsPerSample)
				if err != nil {
					return err
				}
				raw.Set(x, y, c, recon)
			}
			x++
			continue
		}

		maxRun := width - x
		runLen, interrupted, err := models[0].decodeRunLength(r, maxRun, false)
		if err != nil {
			return err
		}
		for i := 0; i < runLen; i++ {
			for c := 0; c < ncomp; c++ {
				ra2, _, _, _ := neighbors(raw, c, x+i, y, bitsPerSample)
				raw.Set(x+i, y, c, ra2)
			}
		}
		x += runLen
		if !interrupted {
			continue
		}

		interruptionComp := 0
		for c := 0; c < ncomp; c++ {
			ra2, rb2, _, _ := neighbors(raw, c, x, y, bitsPerSample)
			if abs(ra2-rb2) > near {
				interruptionComp = c
				break
			}
		}

		raI, rbI, _, _ := neighbors(raw, interruptionComp, x, y, bitsPerSample)
		ctx, riType, ipredicted, isign := runContextFor(models[interruptionComp], raI, rbI, near)
		recon, err := decodeRunInterruptionPixelShared(r, models, interruptionComp, ctx, riType, ipredicted, isign, bitsPerSample)
		if err != nil {
			return err
		}
		raw.Set(x, y, interruptionComp, recon)

		for c := interruptionComp + 1; c < ncomp; c++ {
			ra, rb, rc, rd := neighbors(raw, c, x, y, bitsPerSample)
			d1, d2, d3 := rd-rb, rb-rc, rc-ra
			qi, si := models[c].ContextIndex(d1, d2, d3)
			pred := PredictMED(ra, rb, rc)
			reconC, err := decodeRegularPixel(r, models[c], qi, si, pred, bitsPerSample)
			if err != nil {
				return err
			}
			raw.Set(x, y, c, reconC)
		}
		x++
	}
	return nil
}

// encodeRunInterruptionPixelShared is encodeRunInterruptionPixel adapted
// for Sample interleave: the J-table run index that gates the escape limit
// and that gets decremented afterward is the shared models[0] counter
// (component 0 drives the joint run announcement), while the Golomb
// statistics (A, N, Nn) remain the interrupting component's own, per
// original_source/src/jpegls/scan_encoder.rs::encode_run_mode_interleaved
// ("Use Component 0 run index for shared run").
func encodeRunInterruptionPixelShared(w *bitio.StuffedWriter, models []*Model, comp int, ctx *runContext, riType, predicted, sign, actual, bitsPerSample int) (int, error) {
	shared := models[0]
	model := models[comp]
	near := model.Near
	maxVal := model.MaxVal

	errVal := sign * quantizeNear(actual-predicted, near)
	k := ctx.computeK()
	code := runErrorCode(errVal, riType, k, ctx)
	lim := limit(bitsPerSample) - jTable[shared.RunIndex] - 1
	if err := encodeGolomb(w, code, k, lim, bitsPerSample); err != nil {
		return 0, err
	}
	ctx.update(errVal, code, riType, model.Reset)
	shared.decrementRunIndex()

	return reconstruct(predicted, sign*errVal, near, maxVal), nil
}

// decodeRunInterruptionPixelShared is the exact inverse of
// encodeRunInterruptionPixelShared.
func decodeRunInterruptionPixelShared(r *bitio.StuffedReader, models []*Model, comp int, ctx *runContext, riType, predicted, sign, bitsPerSample int) (int, error) {
	shared := models[0]
	model := models[comp]
	near := model.Near
	maxVal := model.MaxVal

	k := ctx.computeK()
	lim := limit(bitsPerSample) - jTable[shared.RunIndex] - 1
	code, err := decodeGolomb(r, k, lim, bitsPerSample)
	if err != nil {
		return 0, err
	}
	errVal := unmapRunErrorCode(code, riType, k, ctx)
	ctx.update(errVal, code, riType, model.Reset)
	shared.decrementRunIndex()

	return reconstruct(predicted, sign*errVal, near, maxVal), nil
}

// EncodeScan encodes all components of raw using interleave according to
// cp.Interleave (spec.md §4.4). models must contain one *Model per
// component, already initialized with the scan's preset parameters.
func EncodeScan(w *bitio.StuffedWriter, raw *frame.Raw, models []*Model, cp CodingParameters, bitsPerSample int) error {
	height := raw.Info.Height
	ncomp := raw.Info.ComponentCount

	switch cp.Interleave {
	case InterleaveNone:
		for c := 0; c < ncomp; c++ {
			for y := 0; y < height; y++ {
				if err := encodeLine(w, raw, c, y, models[c], bitsPerSample); err != nil {
					return err
				}
			}
		}
	case InterleaveSample:
		for y := 0; y < height; y++ {
			if err := encodeSampleLine(w, raw, y, models, bitsPerSample); err != nil {
				return err
			}
		}
	default: // InterleaveLine
		for y := 0; y < height; y++ {
			for c := 0; c < ncomp; c++ {
				if err := encodeLine(w, raw, c, y, models[c], bitsPerSample); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// DecodeScan is the exact inverse of EncodeScan.
func DecodeScan(r *bitio.StuffedReader, raw *frame.Raw, models []*Model, cp CodingParameters, bitsPerSample int) error {
	height := raw.Info.Height
	ncomp := raw.Info.ComponentCount

	switch cp.Interleave {
	case InterleaveNone:
		for c := 0; c < ncomp; c++ {
			for y := 0; y < height; y++ {
				if err := decodeLine(r, raw, c, y, models[c], bitsPerSample); err != nil {
					return err
				}
			}
		}
	case InterleaveSample:
		for y := 0; y < height; y++ {
			if err := decodeSampleLine(r, raw, y, models, bitsPerSample); err != nil {
				return err
			}
		}
	default: // InterleaveLine
		for y := 0; y < height; y++ {
			for c := 0; c < ncomp; c++ {
				if err := decodeLine(r, raw, c, y, models[c], bitsPerSample); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
