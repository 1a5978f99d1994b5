package field

import "math/big"

// nonResidue is a fixed quadratic non-residue of F_p, used as the defining
// element of the quadratic extension: ExtFE = F_p[u]/(u^2 - nonResidue).
// 5 is a non-residue for p = 3*2^30+1 (p ≡ 1 mod 4, and the Legendre check
// 5^((p-1)/2) == p-1 holds for this particular prime).
var nonResidue = BaseFEFromInt64(5)

// ExtFE is an element of the quadratic extension F_{p^2}, represented as
// a0 + a1*u with u^2 = nonResidue.
type ExtFE struct {
	A0, A1 BaseFE
}

// FromBase embeds a base field element into the extension.
func FromBase(a BaseFE) ExtFE { return ExtFE{A0: a, A1: Zero()} }

// ExtZero is the additive identity of the extension.
func ExtZero() ExtFE { return ExtFE{A0: Zero(), A1: Zero()} }

// ExtOne is the multiplicative identity of the extension.
func ExtOne() ExtFE { return ExtFE{A0: One(), A1: Zero()} }

// Add returns a+b.
func (a ExtFE) Add(b ExtFE) ExtFE {
	return ExtFE{A0: a.A0.Add(b.A0), A1: a.A1.Add(b.A1)}
}

// Sub returns a-b.
func (a ExtFE) Sub(b ExtFE) ExtFE {
	return ExtFE{A0: a.A0.Sub(b.A0), A1: a.A1.Sub(b.A1)}
}

// Neg returns -a.
func (a ExtFE) Neg() ExtFE { return ExtFE{A0: a.A0.Neg(), A1: a.A1.Neg()} }

// Mul returns a*b using schoolbook complex multiplication with the
// nonResidue reduction u^2 = nonResidue.
func (a ExtFE) Mul(b ExtFE) ExtFE {
	// (a0 + a1 u)(b0 + b1 u) = (a0 b0 + nr*a1 b1) + (a0 b1 + a1 b0) u
	t0 := a.A0.Mul(b.A0)
	t1 := a.A1.Mul(b.A1).Mul(nonResidue)
	t2 := a.A0.Mul(b.A1)
	t3 := a.A1.Mul(b.A0)
	return ExtFE{A0: t0.Add(t1), A1: t2.Add(t3)}
}

// MulBase scales an extension element by a base field scalar.
func (a ExtFE) MulBase(s BaseFE) ExtFE {
	return ExtFE{A0: a.A0.Mul(s), A1: a.A1.Mul(s)}
}

// Square returns a*a.
func (a ExtFE) Square() ExtFE { return a.Mul(a) }

// Frobenius returns the conjugate a0 - a1*u, i.e. a raised to the p-th
// power. In a degree-2 extension this is the unique nontrivial field
// automorphism fixing the base field.
func (a ExtFE) Frobenius() ExtFE { return ExtFE{A0: a.A0, A1: a.A1.Neg()} }

// Norm returns a * Frobenius(a), which always lies in the base field;
// used by Inverse.
func (a ExtFE) Norm() BaseFE {
	return a.A0.Square().Sub(a.A1.Square().Mul(nonResidue))
}

// Inverse returns the multiplicative inverse of a. Panics on zero.
func (a ExtFE) Inverse() ExtFE {
	if a.IsZero() {
		panic("field: inverse of zero extension element")
	}
	normInv := a.Norm().Inverse()
	conj := ExtFE{A0: a.A0, A1: a.A1.Neg()}
	return conj.MulBase(normInv)
}

// Div returns a/b.
func (a ExtFE) Div(b ExtFE) ExtFE { return a.Mul(b.Inverse()) }

// Pow raises a to a non-negative integer power by square-and-multiply.
func (a ExtFE) Pow(e *big.Int) ExtFE {
	if e.Sign() < 0 {
		return a.Inverse().Pow(new(big.Int).Neg(e))
	}
	result := ExtOne()
	base := a
	exp := new(big.Int).Set(e)
	zero := big.NewInt(0)
	for exp.Cmp(zero) > 0 {
		if exp.Bit(0) == 1 {
			result = result.Mul(base)
		}
		base = base.Square()
		exp.Rsh(exp, 1)
	}
	return result
}

// PowUint64 is a convenience wrapper around Pow for small exponents.
func (a ExtFE) PowUint64(e uint64) ExtFE {
	return a.Pow(new(big.Int).SetUint64(e))
}

// Equal reports whether a and b represent the same element.
func (a ExtFE) Equal(b ExtFE) bool { return a.A0.Equal(b.A0) && a.A1.Equal(b.A1) }

// IsZero reports whether a is the additive identity.
func (a ExtFE) IsZero() bool { return a.A0.IsZero() && a.A1.IsZero() }

// IsInBaseField reports whether a's second coordinate vanishes, i.e. a is
// the embedding of a BaseFE.
func (a ExtFE) IsInBaseField() bool { return a.A1.IsZero() }

// ExtSizeInBytes is the width of the canonical serialization of an ExtFE:
// twice the base field's width.
func ExtSizeInBytes() int { return 2 * SizeInBytes() }

// Bytes returns the canonical encoding: A0 followed by A1, each fixed-width
// little-endian.
func (a ExtFE) Bytes() []byte {
	out := make([]byte, 0, ExtSizeInBytes())
	out = append(out, a.A0.Bytes()...)
	out = append(out, a.A1.Bytes()...)
	return out
}

// ExtFEFromBytes decodes the encoding produced by Bytes.
func ExtFEFromBytes(b []byte) ExtFE {
	n := SizeInBytes()
	return ExtFE{A0: BaseFEFromBytes(b[:n]), A1: BaseFEFromBytes(b[n : 2*n])}
}

// RandomExtFEFromBytes builds an extension element from the first
// 2*SizeInBytes() bytes of b (typically drawn from the channel's PRNG):
// each half is read as a big-endian integer and reduced mod p. Taking a
// plain byte slice keeps this package free of the channel's hashing details.
func RandomExtFEFromBytes(b []byte) ExtFE {
	n := SizeInBytes()
	a0 := NewBaseFE(new(big.Int).SetBytes(b[:n]))
	a1 := NewBaseFE(new(big.Int).SetBytes(b[n : 2*n]))
	return ExtFE{A0: a0, A1: a1}
}

// String renders "(a0, a1)", for logs and error messages.
func (a ExtFE) String() string { return "(" + a.A0.String() + ", " + a.A1.String() + ")" }
