package fft

import (
	"testing"

	"github.com/vybium/starkcore/internal/starkcore/field"
)

func coeffs(vals ...int64) []field.BaseFE {
	out := make([]field.BaseFE, len(vals))
	for i, v := range vals {
		out[i] = field.BaseFEFromInt64(v)
	}
	return out
}

func TestBitReverseInvolution(t *testing.T) {
	values := coeffs(0, 1, 2, 3, 4, 5, 6, 7)
	original := append([]field.BaseFE(nil), values...)

	if err := BitReverseVector(values); err != nil {
		t.Fatalf("BitReverseVector: %v", err)
	}
	if err := BitReverseVector(values); err != nil {
		t.Fatalf("BitReverseVector: %v", err)
	}
	for i := range values {
		if !values[i].Equal(original[i]) {
			t.Fatalf("bit-reversal is not an involution at index %d", i)
		}
	}
}

func TestBitReverseRejectsNonPowerOfTwo(t *testing.T) {
	if err := BitReverseVector(make([]field.BaseFE, 3)); err == nil {
		t.Fatalf("expected DomainSizeError")
	}
}

func TestFftEvaluatesPolynomialDirectly(t *testing.T) {
	n := uint64(8)
	gen, err := field.GetSubGroupGenerator(n)
	if err != nil {
		t.Fatalf("GetSubGroupGenerator: %v", err)
	}
	offset := field.Generator()
	p := coeffs(1, 2, 3, 4, 5, 6, 7, 8)

	got, err := Fft(p, gen, offset, true)
	if err != nil {
		t.Fatalf("Fft: %v", err)
	}

	x := offset
	for i := 0; i < int(n); i++ {
		want := evalDirect(p, x)
		if !got[i].Equal(want) {
			t.Fatalf("Fft[%d] = %s, want %s", i, got[i], want)
		}
		x = x.Mul(gen)
	}
}

func TestFftIfftRoundTrip(t *testing.T) {
	n := uint64(16)
	gen, err := field.GetSubGroupGenerator(n)
	if err != nil {
		t.Fatalf("GetSubGroupGenerator: %v", err)
	}
	offset := field.Generator()
	p := coeffs(9, 8, 7, 6, 5, 4, 3, 2, 1, 0, 1, 2, 3, 4, 5, 6)

	evals, err := Fft(p, gen, offset, true)
	if err != nil {
		t.Fatalf("Fft: %v", err)
	}
	back, err := Ifft(evals, gen, offset)
	if err != nil {
		t.Fatalf("Ifft: %v", err)
	}
	for i := range p {
		if !back[i].Equal(p[i]) {
			t.Fatalf("round-trip mismatch at %d: got %s want %s", i, back[i], p[i])
		}
	}
}

func TestIfftReverseToNaturalMatchesBitReversedInput(t *testing.T) {
	n := uint64(8)
	gen, err := field.GetSubGroupGenerator(n)
	if err != nil {
		t.Fatalf("GetSubGroupGenerator: %v", err)
	}
	offset := field.Generator()
	p := coeffs(1, 1, 2, 3, 5, 8, 13, 21)

	evalsBitRev, err := Fft(p, gen, offset, false)
	if err != nil {
		t.Fatalf("Fft: %v", err)
	}
	back, err := IfftReverseToNatural(evalsBitRev, gen, offset)
	if err != nil {
		t.Fatalf("IfftReverseToNatural: %v", err)
	}
	for i := range p {
		if !back[i].Equal(p[i]) {
			t.Fatalf("mismatch at %d: got %s want %s", i, back[i], p[i])
		}
	}
}

func TestFftRejectsNonPowerOfTwo(t *testing.T) {
	if _, err := Fft(coeffs(1, 2, 3), field.One(), field.One(), true); err == nil {
		t.Fatalf("expected DomainSizeError")
	}
}

func evalDirect(p []field.BaseFE, x field.BaseFE) field.BaseFE {
	result := field.Zero()
	power := field.One()
	for _, c := range p {
		result = result.Add(c.Mul(power))
		power = power.Mul(x)
	}
	return result
}
