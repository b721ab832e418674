package jpeg1

// PredictLossless computes the Process 14 lossless predictor value
// (ISO Annex H.1.2, Table H.1) for prediction selector psv in [0,7] from
// the causal neighbors Ra (left), Rb (above), Rc (above-left). Grounded
// on original_source/src/jpeg1/lossless.rs::LosslessPredictor::predict.
func PredictLossless(psv, ra, rb, rc int) int {
	switch psv {
	case 0:
		return 0 // only valid for differential coding of successive images; unused here
	case 1:
		return ra
	case 2:
		return rb
	case 3:
		return rc
	case 4:
		return ra + rb - rc
	case 5:
		return ra + (rb-rc)/2
	case 6:
		return rb + (ra-rc)/2
	case 7:
		return (ra + rb) / 2
	default:
		return ra
	}
}
