package engine

import (
	"math"
	"testing"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

type fakeValueGrad struct {
	v, g *tensor.Dense
}

func (f fakeValueGrad) Value() G.Value         { return f.v }
func (f fakeValueGrad) Grad() (G.Value, error) { return f.g, nil }

func singleParam(w, g float64) []G.ValueGrad {
	return []G.ValueGrad{fakeValueGrad{
		v: tensor.New(tensor.WithShape(1), tensor.WithBacking([]float64{w})),
		g: tensor.New(tensor.WithShape(1), tensor.WithBacking([]float64{g})),
	}}
}

func TestRMSPropStep(t *testing.T) {
	s := newRMSProp(0.1, 0)
	model := singleParam(1.0, 1.0)

	if err := s.Step(model); err != nil {
		t.Fatalf("Step: %v", err)
	}

	// cache = 0.9*0 + 0.1*1 = 0.1; w -= 0.1 * 1/(sqrt(0.1)+eps)
	want := 1.0 - 0.1/(math.Sqrt(0.1)+1e-7)
	got := model[0].Value().Data().([]float64)[0]
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("want %v, got %v", want, got)
	}
}

func TestRMSPropDecayShrinksRate(t *testing.T) {
	flat := newRMSProp(0.1, 0)
	decayed := newRMSProp(0.1, 0.5)
	flatModel := singleParam(1.0, 1.0)
	decayedModel := singleParam(1.0, 1.0)

	for step := 0; step < 3; step++ {
		if err := flat.Step(flatModel); err != nil {
			t.Fatalf("flat Step: %v", err)
		}
		if err := decayed.Step(decayedModel); err != nil {
			t.Fatalf("decayed Step: %v", err)
		}
	}

	flatW := flatModel[0].Value().Data().([]float64)[0]
	decayedW := decayedModel[0].Value().Data().([]float64)[0]
	if decayedW <= flatW {
		t.Fatalf("decayed schedule should move less: flat=%v decayed=%v", flatW, decayedW)
	}
}

func TestRMSPropRejectsChangedParamCount(t *testing.T) {
	s := newRMSProp(0.1, 0)
	if err := s.Step(singleParam(1, 1)); err != nil {
		t.Fatalf("Step: %v", err)
	}
	two := append(singleParam(1, 1), singleParam(2, 1)...)
	if err := s.Step(two); err == nil {
		t.Fatal("expected error when parameter count changes")
	}
}
