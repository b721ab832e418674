package jpegls

// PredictMED implements the median edge detector predictor (spec.md §4.4).
// Ra: left, Rb: above, Rc: above-left.
func PredictMED(Ra, Rb, Rc int) int {
	if Rc >= max(Ra, Rb) {
		return min(Ra, Rb)
	}
	if Rc <= min(Ra, Rb) {
		return max(Ra, Rb)
	}
	return Ra + Rb - Rc
}
