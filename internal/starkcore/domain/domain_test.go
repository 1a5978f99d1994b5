package domain

import (
	"testing"

	"github.com/vybium/starkcore/internal/starkcore/field"
)

func TestCosetDisjointFromEvaluationDomainTrace(t *testing.T) {
	d, err := NewEvaluationDomain(16, 4)
	if err != nil {
		t.Fatalf("NewEvaluationDomain: %v", err)
	}
	if !d.Disjoint() {
		t.Fatalf("trace domain and evaluation cosets must be pairwise disjoint")
	}
}

func TestEvaluationDomainRejectsNonPowerOfTwo(t *testing.T) {
	if _, err := NewEvaluationDomain(15, 4); err == nil {
		t.Fatalf("expected error for non-power-of-two trace length")
	}
	if _, err := NewEvaluationDomain(16, 3); err == nil {
		t.Fatalf("expected error for non-power-of-two coset count")
	}
}

func TestLDEManagerRoundTripsOnSourceCoset(t *testing.T) {
	c0, err := NewCoset(8, field.One())
	if err != nil {
		t.Fatalf("NewCoset: %v", err)
	}
	values := make([]field.BaseFE, 8)
	for i := range values {
		values[i] = field.BaseFEFromInt64(int64(i * i))
	}

	mgr := NewLDEManager(c0, true)
	col, err := mgr.AddEvaluation(values)
	if err != nil {
		t.Fatalf("AddEvaluation: %v", err)
	}

	evalsOnSource, err := mgr.EvalOnCoset(field.One())
	if err != nil {
		t.Fatalf("EvalOnCoset: %v", err)
	}
	for i := range values {
		if !evalsOnSource[col][i].Equal(values[i]) {
			t.Fatalf("eval_on_coset(source offset) mismatch at %d: got %s want %s", i, evalsOnSource[col][i], values[i])
		}
	}
}

func TestLDEManagerEvalAtPointsMatchesCoefficients(t *testing.T) {
	c0, err := NewCoset(4, field.One())
	if err != nil {
		t.Fatalf("NewCoset: %v", err)
	}
	coeffs := []field.BaseFE{
		field.BaseFEFromInt64(1),
		field.BaseFEFromInt64(2),
		field.BaseFEFromInt64(3),
		field.BaseFEFromInt64(4),
	}
	mgr := NewLDEManager(c0, true)
	col, err := mgr.AddFromCoefficients(coeffs)
	if err != nil {
		t.Fatalf("AddFromCoefficients: %v", err)
	}

	x := field.FromBase(field.BaseFEFromInt64(5))
	got, err := mgr.EvalAtPoints(col, []field.ExtFE{x})
	if err != nil {
		t.Fatalf("EvalAtPoints: %v", err)
	}
	want := field.FromBase(field.BaseFEFromInt64(1 + 2*5 + 3*25 + 4*125))
	if !got[0].Equal(want) {
		t.Fatalf("EvalAtPoints mismatch: got %s want %s", got[0], want)
	}
}

func TestPeriodicColumnCosetMatchesDirectEval(t *testing.T) {
	values := []field.BaseFE{field.BaseFEFromInt64(3), field.BaseFEFromInt64(7)}
	pc, err := NewPeriodicColumn(values, 8)
	if err != nil {
		t.Fatalf("NewPeriodicColumn: %v", err)
	}

	start := field.Generator()
	cosetSize := uint64(8)
	ce, err := pc.GetCoset(start, cosetSize)
	if err != nil {
		t.Fatalf("GetCoset: %v", err)
	}

	gen, err := field.GetSubGroupGenerator(cosetSize)
	if err != nil {
		t.Fatalf("GetSubGroupGenerator: %v", err)
	}
	x := start
	for i := uint64(0); i < cosetSize; i++ {
		want := pc.EvalAtPoint(field.FromBase(x))
		got := field.FromBase(ce.At(i))
		if !got.Equal(want) {
			t.Fatalf("coset value %d mismatch: got %s want %s", i, got, want)
		}
		x = x.Mul(gen)
	}
}

func TestBreakerInverse(t *testing.T) {
	gen, err := field.GetSubGroupGenerator(16)
	if err != nil {
		t.Fatalf("GetSubGroupGenerator: %v", err)
	}
	offset := field.Generator()

	coeffs := make([]field.ExtFE, 16)
	for i := range coeffs {
		coeffs[i] = field.FromBase(field.BaseFEFromInt64(int64(i + 1)))
	}
	evals := extFft(coeffs, gen, offset)

	k := 4
	broken, err := Break(evals, gen, offset, k)
	if err != nil {
		t.Fatalf("Break: %v", err)
	}

	genK := gen.PowUint64(uint64(k))
	offsetK := offset.PowUint64(uint64(k))
	n := 16 / k
	for idx := 0; idx < n; idx++ {
		x := field.FromBase(offset.Mul(gen.PowUint64(uint64(idx))))
		xk := field.FromBase(offsetK.Mul(genK.PowUint64(uint64(idx))))
		_ = xk

		samples := make([]field.ExtFE, k)
		for i := 0; i < k; i++ {
			samples[i] = broken[i][idx]
		}
		got := EvalFromSamples(samples, x)

		want := field.ExtZero()
		for d := len(coeffs) - 1; d >= 0; d-- {
			want = want.Mul(x).Add(coeffs[d])
		}
		if !got.Equal(want) {
			t.Fatalf("breaker inverse mismatch at index %d: got %s want %s", idx, got, want)
		}
	}
}
