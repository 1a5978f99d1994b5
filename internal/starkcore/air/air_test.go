package air

import (
	"testing"

	"github.com/vybium/starkcore/internal/starkcore/field"
)

func TestBoundaryAIRSatisfiedConstraintEvaluatesToZeroTerm(t *testing.T) {
	x := field.FromBase(field.BaseFEFromInt64(5))
	y := field.FromBase(field.BaseFEFromInt64(99))
	cond := BoundaryCondition{Column: 0, X: x, Y: y}
	boundary := NewBoundaryAIR(8, 1, []BoundaryCondition{cond}, false)

	// The trace value equals the asserted Y, so the numerator is 0 and the
	// term vanishes; the point differs from X, so the denominator is nonzero.
	neighbors := []field.ExtFE{y}
	coeffs := []field.ExtFE{field.FromBase(field.BaseFEFromInt64(7))}
	pointPowers := []field.ExtFE{field.FromBase(field.BaseFEFromInt64(123))} // X != cond.X, denom nonzero
	got := boundary.ConstraintsEval(neighbors, nil, nil, coeffs, pointPowers, nil)
	if !got.IsZero() {
		t.Fatalf("expected zero term when trace value matches the asserted y, got %s", got)
	}
}

func TestBoundaryAIRMaskDeduplicatesColumns(t *testing.T) {
	conds := []BoundaryCondition{
		{Column: 2, X: field.ExtZero(), Y: field.ExtZero()},
		{Column: 2, X: field.ExtOne(), Y: field.ExtOne()},
		{Column: 0, X: field.ExtZero(), Y: field.ExtZero()},
	}
	b := NewBoundaryAIR(8, 3, conds, false)
	if len(b.Mask()) != 2 {
		t.Fatalf("expected 2 distinct mask columns, got %d", len(b.Mask()))
	}
}

func TestCompositionPolynomialBuilderRejectsWrongCoefficientCount(t *testing.T) {
	boundary := NewBoundaryAIR(8, 1, []BoundaryCondition{{Column: 0, X: field.ExtZero(), Y: field.ExtZero()}}, false)
	b := NewBuilder(boundary)
	_, err := b.Build(field.Generator(), 8, nil)
	if err == nil {
		t.Fatalf("expected ShapeMismatchError for zero coefficients against NumRandomCoefficients()==1")
	}
}

func TestCompositionPolynomialEvalOnCosetBitReversedMatchesEvalAtPoint(t *testing.T) {
	n := uint64(8)
	gen, err := field.GetSubGroupGenerator(n)
	if err != nil {
		t.Fatalf("GetSubGroupGenerator: %v", err)
	}
	offset := field.Generator()

	x0 := field.FromBase(field.One()) // off the evaluated coset, so x - X never vanishes
	y0 := field.FromBase(field.BaseFEFromInt64(42))
	boundary := NewBoundaryAIR(n, 1, []BoundaryCondition{{Column: 0, X: x0, Y: y0}}, false)
	b := NewBuilder(boundary)
	cp, err := b.Build(gen, n, []field.ExtFE{field.ExtOne()})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	col := []field.BaseFE{
		field.BaseFEFromInt64(1), field.BaseFEFromInt64(2), field.BaseFEFromInt64(3), field.BaseFEFromInt64(4),
		field.BaseFEFromInt64(5), field.BaseFEFromInt64(6), field.BaseFEFromInt64(7), field.BaseFEFromInt64(8),
	}
	if err := domain_bitReverseInPlace(col); err != nil {
		t.Fatalf("bit-reverse fixture: %v", err)
	}
	traceLde := [][]field.BaseFE{col}

	output := make([]field.ExtFE, n)
	if err := cp.EvalOnCosetBitReversed(offset, traceLde, nil, output, 2); err != nil {
		t.Fatalf("EvalOnCosetBitReversed: %v", err)
	}

	bits := 3
	for i := uint64(0); i < n; i++ {
		natIdx := bitReverseSmall(i, bits)
		point := offset.Mul(gen.PowUint64(natIdx))
		neighborRow := bitReverseSmall(natIdx, bits)
		neighbors := []field.ExtFE{field.FromBase(col[neighborRow])}
		want := cp.EvalAtPoint(field.FromBase(point), neighbors, nil)
		if !output[i].Equal(want) {
			t.Fatalf("output[%d] mismatch: got %s want %s", i, output[i], want)
		}
	}
}

func bitReverseSmall(n uint64, bits int) uint64 {
	var r uint64
	for i := 0; i < bits; i++ {
		r <<= 1
		r |= n & 1
		n >>= 1
	}
	return r
}

func domain_bitReverseInPlace(values []field.BaseFE) error {
	// local helper mirroring fft.BitReverseVector, kept test-local to avoid
	// importing the fft package just for a fixture permutation.
	n := len(values)
	bits := 0
	for m := n; m > 1; m >>= 1 {
		bits++
	}
	for i := 0; i < n; i++ {
		j := int(bitReverseSmall(uint64(i), bits))
		if j > i {
			values[i], values[j] = values[j], values[i]
		}
	}
	return nil
}
