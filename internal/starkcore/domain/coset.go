// Package domain implements the evaluation-domain algebra a STARK proof is
// built over: cosets of the trace's multiplicative subgroup, the N-coset
// low-degree-extension domain, the LDE manager that moves columns between
// coefficient and evaluation form, periodic columns, and the polynomial
// breaker used during out-of-domain sampling.
package domain

import (
	"fmt"

	"github.com/vybium/starkcore/internal/starkcore/fft"
	"github.com/vybium/starkcore/internal/starkcore/field"
)

// Coset is {offset * gen^i : i in [0, size)}, gen having multiplicative
// order exactly size.
type Coset struct {
	size   uint64
	gen    field.BaseFE
	offset field.BaseFE
}

// NewCoset builds a coset of the given power-of-two size and offset, deriving
// the canonical generator of that order from field.GetSubGroupGenerator.
func NewCoset(size uint64, offset field.BaseFE) (Coset, error) {
	if size == 0 || (size&(size-1)) != 0 {
		return Coset{}, fmt.Errorf("domain: coset size %d is not a power of two", size)
	}
	gen, err := field.GetSubGroupGenerator(size)
	if err != nil {
		return Coset{}, fmt.Errorf("domain: coset of size %d: %w", size, err)
	}
	return Coset{size: size, gen: gen, offset: offset}, nil
}

// Size returns the coset's cardinality.
func (c Coset) Size() uint64 { return c.size }

// Generator returns the coset's order-|C| generator.
func (c Coset) Generator() field.BaseFE { return c.gen }

// Offset returns the coset's offset.
func (c Coset) Offset() field.BaseFE { return c.offset }

// At returns offset * gen^i.
func (c Coset) At(i uint64) field.BaseFE {
	return c.offset.Mul(c.gen.PowUint64(i))
}

// Elements returns every element of the coset in natural order (index i maps
// to offset*gen^i). Intended for tests and small cosets; production code
// should prefer Fft over materializing the whole coset.
func (c Coset) Elements() []field.BaseFE {
	out := make([]field.BaseFE, c.size)
	x := c.offset
	for i := range out {
		out[i] = x
		x = x.Mul(c.gen)
	}
	return out
}

// Contains reports whether x is an element of the coset, by exhaustive
// membership test against x/offset raised to coset order. Used only by
// EvaluationDomain.Disjoint, never on a hot path.
func (c Coset) Contains(x field.BaseFE) bool {
	y := x.Div(c.offset)
	return y.PowUint64(c.size).IsOne()
}

// FftCoeffsToEvals evaluates a coefficient vector (length == c.Size()) on the
// coset, in the requested order.
func (c Coset) FftCoeffsToEvals(coeffs []field.BaseFE, naturalOutput bool) ([]field.BaseFE, error) {
	return fft.Fft(coeffs, c.gen, c.offset, naturalOutput)
}

// IfftEvalsToCoeffs inverts FftCoeffsToEvals for naturally-ordered evals.
func (c Coset) IfftEvalsToCoeffs(evals []field.BaseFE) ([]field.BaseFE, error) {
	return fft.Ifft(evals, c.gen, c.offset)
}

// IfftBitReversedToCoeffs inverts FftCoeffsToEvals for bit-reversed evals.
func (c Coset) IfftBitReversedToCoeffs(evals []field.BaseFE) ([]field.BaseFE, error) {
	return fft.IfftReverseToNatural(evals, c.gen, c.offset)
}
