package field

import (
	"math/big"
	"testing"
)

func TestBaseFEAddSubInverse(t *testing.T) {
	a := BaseFEFromInt64(17)
	b := BaseFEFromInt64(5)

	if !a.Add(b).Sub(b).Equal(a) {
		t.Fatalf("add/sub round-trip failed")
	}

	inv := a.Inverse()
	if !a.Mul(inv).IsOne() {
		t.Fatalf("a * a^-1 != 1")
	}
}

func TestBaseFEPowMatchesRepeatedMul(t *testing.T) {
	a := BaseFEFromInt64(7)
	want := One()
	for i := 0; i < 11; i++ {
		want = want.Mul(a)
	}
	got := a.Pow(big.NewInt(11))
	if !got.Equal(want) {
		t.Fatalf("Pow mismatch: got %s want %s", got, want)
	}
}

func TestGetSubGroupGeneratorOrder(t *testing.T) {
	n := uint64(1024)
	g, err := GetSubGroupGenerator(n)
	if err != nil {
		t.Fatalf("GetSubGroupGenerator: %v", err)
	}
	if !g.PowUint64(n).IsOne() {
		t.Fatalf("generator^n != 1")
	}
	if g.PowUint64(n / 2).IsOne() {
		t.Fatalf("generator has order smaller than n")
	}
}

func TestGetSubGroupGeneratorRejectsNonPowerOfTwo(t *testing.T) {
	if _, err := GetSubGroupGenerator(6); err == nil {
		t.Fatalf("expected error for non-power-of-two order")
	}
}

func TestBaseFEBytesRoundTrip(t *testing.T) {
	a := BaseFEFromUint64(3221225472)
	got := BaseFEFromBytes(a.Bytes())
	if !got.Equal(a) {
		t.Fatalf("bytes round-trip failed: got %s want %s", got, a)
	}
	if len(a.Bytes()) != SizeInBytes() {
		t.Fatalf("unexpected encoding width %d", len(a.Bytes()))
	}
}

func TestExtFEArithmetic(t *testing.T) {
	a := ExtFE{A0: BaseFEFromInt64(3), A1: BaseFEFromInt64(4)}
	b := ExtFE{A0: BaseFEFromInt64(9), A1: BaseFEFromInt64(2)}

	sum := a.Add(b).Sub(b)
	if !sum.Equal(a) {
		t.Fatalf("ext add/sub round-trip failed")
	}

	inv := a.Inverse()
	if !a.Mul(inv).Equal(ExtOne()) {
		t.Fatalf("ext a * a^-1 != 1")
	}
}

func TestExtFEFrobeniusFixesBaseField(t *testing.T) {
	a := FromBase(BaseFEFromInt64(123))
	if !a.Frobenius().Equal(a) {
		t.Fatalf("Frobenius must fix embedded base field elements")
	}

	b := ExtFE{A0: BaseFEFromInt64(1), A1: BaseFEFromInt64(2)}
	if b.Frobenius().Equal(b) {
		t.Fatalf("Frobenius should not fix a genuine extension element")
	}
	// Frobenius is an involution on a degree-2 extension.
	if !b.Frobenius().Frobenius().Equal(b) {
		t.Fatalf("Frobenius twice should be identity")
	}
}

func TestExtFEBytesRoundTrip(t *testing.T) {
	a := ExtFE{A0: BaseFEFromInt64(42), A1: BaseFEFromInt64(99)}
	got := ExtFEFromBytes(a.Bytes())
	if !got.Equal(a) {
		t.Fatalf("ext bytes round-trip failed")
	}
}

func TestPolynomialEvalHorner(t *testing.T) {
	// p(x) = 1 + 2x + 3x^2
	p := NewPolynomial([]ExtFE{
		FromBase(BaseFEFromInt64(1)),
		FromBase(BaseFEFromInt64(2)),
		FromBase(BaseFEFromInt64(3)),
	})
	x := FromBase(BaseFEFromInt64(5))
	want := FromBase(BaseFEFromInt64(1 + 2*5 + 3*25))
	if !p.Eval(x).Equal(want) {
		t.Fatalf("Eval mismatch: got %s want %s", p.Eval(x), want)
	}
	if p.Degree() != 2 {
		t.Fatalf("expected degree 2, got %d", p.Degree())
	}
}

func TestPolynomialTrimsLeadingZeros(t *testing.T) {
	p := NewPolynomial([]ExtFE{FromBase(One()), ExtZero(), ExtZero()})
	if p.Degree() != 0 {
		t.Fatalf("expected trimmed degree 0, got %d", p.Degree())
	}
}
