// Package field implements the base prime field F_p and its quadratic
// extension F_{p^2} used throughout the STARK core: trace values, Merkle
// table rows, and Fiat-Shamir challenges live in BaseFE; the out-of-domain
// sampling point and everything derived from it live in ExtFE.
package field

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Modulus is the characteristic of the base field. It is a "STARK-friendly"
// prime of the form 3*2^30 + 1: the multiplicative group has a 2-Sylow
// subgroup of order 2^30, large enough to host every evaluation domain and
// FRI layer this package needs.
var Modulus = big.NewInt(3221225473)

// sizeInBytes is the canonical little-endian encoding width of a BaseFE.
const sizeInBytes = 4

// BaseFE is an element of the prime field F_p.
type BaseFE struct {
	v *big.Int
}

func reduce(v *big.Int) *big.Int {
	r := new(big.Int).Mod(v, Modulus)
	return r
}

// NewBaseFE reduces v modulo the field characteristic.
func NewBaseFE(v *big.Int) BaseFE {
	return BaseFE{v: reduce(v)}
}

// BaseFEFromUint64 builds a BaseFE from a uint64, reducing modulo p.
func BaseFEFromUint64(v uint64) BaseFE {
	return NewBaseFE(new(big.Int).SetUint64(v))
}

// BaseFEFromInt64 builds a BaseFE from an int64, reducing modulo p.
func BaseFEFromInt64(v int64) BaseFE {
	return NewBaseFE(big.NewInt(v))
}

// Zero is the additive identity.
func Zero() BaseFE { return BaseFE{v: big.NewInt(0)} }

// One is the multiplicative identity.
func One() BaseFE { return BaseFE{v: big.NewInt(1)} }

// Generator returns a canonical generator of the full multiplicative group
// F_p^*. It was found by trial search against the known factorization of
// p-1 = 3 * 2^30 and is fixed for the life of the field.
func Generator() BaseFE { return BaseFEFromInt64(5) }

// GetSubGroupGenerator returns an element of multiplicative order n. n must
// divide p-1 and be a power of two (the only subgroup orders this system
// ever needs).
func GetSubGroupGenerator(n uint64) (BaseFE, error) {
	if n == 0 || (n&(n-1)) != 0 {
		return BaseFE{}, fmt.Errorf("field: subgroup order %d is not a power of two", n)
	}
	pMinusOne := new(big.Int).Sub(Modulus, big.NewInt(1))
	q := new(big.Int).SetUint64(n)
	exp, rem := new(big.Int).QuoRem(pMinusOne, q, new(big.Int))
	if rem.Sign() != 0 {
		return BaseFE{}, fmt.Errorf("field: subgroup order %d does not divide p-1", n)
	}
	g := Generator()
	return g.Pow(exp), nil
}

// Big returns the canonical representative in [0, p).
func (a BaseFE) Big() *big.Int { return new(big.Int).Set(a.v) }

// Add returns a+b.
func (a BaseFE) Add(b BaseFE) BaseFE { return BaseFE{v: reduce(new(big.Int).Add(a.v, b.v))} }

// Sub returns a-b.
func (a BaseFE) Sub(b BaseFE) BaseFE { return BaseFE{v: reduce(new(big.Int).Sub(a.v, b.v))} }

// Neg returns -a.
func (a BaseFE) Neg() BaseFE { return BaseFE{v: reduce(new(big.Int).Neg(a.v))} }

// Mul returns a*b.
func (a BaseFE) Mul(b BaseFE) BaseFE { return BaseFE{v: reduce(new(big.Int).Mul(a.v, b.v))} }

// Square returns a*a.
func (a BaseFE) Square() BaseFE { return a.Mul(a) }

// Inverse returns the multiplicative inverse of a. Panics on zero, mirroring
// the field contract that callers never invert zero on a hot path.
func (a BaseFE) Inverse() BaseFE {
	if a.IsZero() {
		panic("field: inverse of zero")
	}
	return BaseFE{v: new(big.Int).ModInverse(a.v, Modulus)}
}

// Div returns a/b.
func (a BaseFE) Div(b BaseFE) BaseFE { return a.Mul(b.Inverse()) }

// Pow raises a to a non-negative integer power.
func (a BaseFE) Pow(e *big.Int) BaseFE {
	if e.Sign() < 0 {
		return a.Inverse().Pow(new(big.Int).Neg(e))
	}
	return BaseFE{v: new(big.Int).Exp(a.v, e, Modulus)}
}

// PowUint64 is a convenience wrapper around Pow for small exponents.
func (a BaseFE) PowUint64(e uint64) BaseFE {
	return a.Pow(new(big.Int).SetUint64(e))
}

// Equal reports whether a and b represent the same field element.
func (a BaseFE) Equal(b BaseFE) bool { return a.v.Cmp(b.v) == 0 }

// IsZero reports whether a is the additive identity.
func (a BaseFE) IsZero() bool { return a.v.Sign() == 0 }

// IsOne reports whether a is the multiplicative identity.
func (a BaseFE) IsOne() bool { return a.v.Cmp(big.NewInt(1)) == 0 }

// SizeInBytes is the width of the canonical serialization of a BaseFE.
func SizeInBytes() int { return sizeInBytes }

// Bytes returns the canonical little-endian, fixed-width encoding.
func (a BaseFE) Bytes() []byte {
	out := make([]byte, sizeInBytes)
	b := a.v.Bytes() // big-endian, no leading zeros
	for i := 0; i < len(b) && i < sizeInBytes; i++ {
		out[i] = b[len(b)-1-i]
	}
	return out
}

// BaseFEFromBytes decodes the canonical little-endian encoding produced by
// Bytes.
func BaseFEFromBytes(b []byte) BaseFE {
	be := make([]byte, len(b))
	for i, c := range b {
		be[len(b)-1-i] = c
	}
	return NewBaseFE(new(big.Int).SetBytes(be))
}

// RandomBaseFE draws a uniformly random field element from crypto/rand. Used
// only for blinding columns and test fixtures, never on the Fiat-Shamir hot
// path (the channel's PRNG is used there instead).
func RandomBaseFE() (BaseFE, error) {
	v, err := rand.Int(rand.Reader, Modulus)
	if err != nil {
		return BaseFE{}, fmt.Errorf("field: random element: %w", err)
	}
	return BaseFE{v: v}, nil
}

// String renders the decimal representative, for logs and error messages.
func (a BaseFE) String() string { return a.v.String() }
