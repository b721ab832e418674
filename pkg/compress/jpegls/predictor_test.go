package jpegls

import "testing"

func TestPredictMED(t *testing.T) {
	tests := []struct {
		Ra, Rb, Rc int
		Want       int
	}{
		{10, 10, 10, 10},
		{100, 200, 300, 100}, // Rc(300) >= max(100,200)=200 -> min(Ra,Rb)=100
		{200, 100, 50, 200},  // Rc(50) <= min(200,100)=100 -> max(Ra,Rb)=200
		{10, 30, 20, 20},     // else: Ra+Rb-Rc = 10+30-20 = 20
	}

	for _, tt := range tests {
		if got := PredictMED(tt.Ra, tt.Rb, tt.Rc); got != tt.Want {
			t.Errorf("PredictMED(%d, %d, %d) = %d; want %d", tt.Ra, tt.Rb, tt.Rc, got, tt.Want)
		}
	}
}

func TestModel_ContextIndex(t *testing.T) {
	m := NewModel(255, 0, PresetCodingParameters{})

	// Zero gradients land on index 0 (q1=q2=q3=0).
	idx, sign := m.ContextIndex(0, 0, 0)
	wantCenter := 0*81 + 0*9 + 0
	if idx != wantCenter {
		t.Errorf("zero gradients: got %d want %d", idx, wantCenter)
	}
	if sign != 1 {
		t.Errorf("zero gradients sign: got %d want 1", sign)
	}

	idxPos, signPos := m.ContextIndex(m.T1, 0, 0)
	idxNeg, signNeg := m.ContextIndex(-m.T1, 0, 0)
	if idxPos != idxNeg {
		t.Errorf("D1=+-T1 should map to same index: got %d and %d", idxPos, idxNeg)
	}
	if signPos != 1 || signNeg != -1 {
		t.Errorf("sign mismatch: pos=%d neg=%d", signPos, signNeg)
	}
}

func TestQuantizeGradientDeadzone(t *testing.T) {
	m := NewModel(255, 2, PresetCodingParameters{}) // near=2

	if q := m.quantizeGradient(2); q != 0 {
		t.Errorf("d=near(2) should quantize to 0, got %d", q)
	}
	if q := m.quantizeGradient(3); q == 0 {
		t.Errorf("d=near+1(3) should not quantize to 0")
	}
	if q := m.quantizeGradient(-2); q != 0 {
		t.Errorf("d=-near(-2) should quantize to 0, got %d", q)
	}
}
