package domain

import (
	"fmt"

	"github.com/vybium/starkcore/internal/starkcore/field"
)

// extEvalRec is the ExtFE-coefficient analogue of the base-field coset FFT:
// it evaluates an ExtFE-coefficient polynomial over a BaseFE coset, using
// the same decimation-in-frequency recursion as fft.evalRec. The domain
// stays in BaseFE (coset offsets and generators are always base-field
// elements in this system) while the values being combined are extension
// elements, so every generator/offset scaling goes through ExtFE.MulBase
// instead of ExtFE.Mul.
func extEvalRec(coeffs []field.ExtFE, offset, gen field.BaseFE) []field.ExtFE {
	n := len(coeffs)
	if n == 1 {
		return []field.ExtFE{coeffs[0]}
	}
	half := n / 2
	even := make([]field.ExtFE, half)
	odd := make([]field.ExtFE, half)
	for i := 0; i < half; i++ {
		even[i] = coeffs[2*i]
		odd[i] = coeffs[2*i+1]
	}
	gen2 := gen.Square()
	offset2 := offset.Square()
	evenEval := extEvalRec(even, offset2, gen2)
	oddEval := extEvalRec(odd, offset2, gen2)

	result := make([]field.ExtFE, n)
	x := offset
	for i := 0; i < half; i++ {
		t := oddEval[i].MulBase(x)
		result[i] = evenEval[i].Add(t)
		result[i+half] = evenEval[i].Sub(t)
		x = x.Mul(gen)
	}
	return result
}

func extFft(coeffs []field.ExtFE, gen, offset field.BaseFE) []field.ExtFE {
	return extEvalRec(coeffs, offset, gen)
}

func extIfft(evals []field.ExtFE, gen, offset field.BaseFE) []field.ExtFE {
	n := len(evals)
	genInv := gen.Inverse()
	t := extEvalRec(evals, field.One(), genInv)

	invN := field.BaseFEFromUint64(uint64(n)).Inverse()
	offsetInv := offset.Inverse()
	coeffs := make([]field.ExtFE, n)
	scale := invN
	for j := 0; j < n; j++ {
		coeffs[j] = t[j].MulBase(scale)
		scale = scale.Mul(offsetInv)
	}
	return coeffs
}

// Break decomposes the evaluations (natural order) of a degree-<k*n
// polynomial f over the coset offset*<gen> (gen of order k*n) into k
// evaluation tables, each the evaluations of a degree-<n polynomial h_i on
// the coset offset^k*<gen^k>, such that f(x) = sum_i x^i * h_i(x^k). It does
// so by inverting the full FFT to recover f's coefficients, splitting them
// by residue class mod k, then re-evaluating each class on the smaller
// coset — mathematically the same decomposition the partial-IFFT
// formulation produces, reached by a route that is easier to check by hand.
func Break(evals []field.ExtFE, gen, offset field.BaseFE, k int) ([][]field.ExtFE, error) {
	kn := len(evals)
	if kn == 0 || (kn&(kn-1)) != 0 {
		return nil, fmt.Errorf("domain: breaker: size %d is not a power of two", kn)
	}
	if k <= 0 || (k&(k-1)) != 0 || kn%k != 0 {
		return nil, fmt.Errorf("domain: breaker: k=%d must be a power of two dividing %d", k, kn)
	}
	n := kn / k

	coeffs := extIfft(evals, gen, offset)

	genK := gen.PowUint64(uint64(k))
	offsetK := offset.PowUint64(uint64(k))

	out := make([][]field.ExtFE, k)
	for i := 0; i < k; i++ {
		hCoeffs := make([]field.ExtFE, n)
		for j := 0; j < n; j++ {
			hCoeffs[j] = coeffs[i+j*k]
		}
		out[i] = extFft(hCoeffs, genK, offsetK)
	}
	return out, nil
}

// ExtCoeffs recovers the coefficients (increasing-degree order) of the
// degree-<len(evals) extension-field polynomial whose natural-order
// evaluations over the coset offset*<gen> are evals.
func ExtCoeffs(evals []field.ExtFE, gen, offset field.BaseFE) []field.ExtFE {
	return extIfft(evals, gen, offset)
}

// ExtEval evaluates an extension-field-coefficient polynomial over the coset
// offset*<gen>, in natural order. len(coeffs) must equal gen's order.
func ExtEval(coeffs []field.ExtFE, gen, offset field.BaseFE) []field.ExtFE {
	return extFft(coeffs, gen, offset)
}

// ExtEvalAtPoint evaluates coeffs (increasing-degree order) at an arbitrary
// extension-field point via Horner's method.
func ExtEvalAtPoint(coeffs []field.ExtFE, point field.ExtFE) field.ExtFE {
	result := field.ExtZero()
	for i := len(coeffs) - 1; i >= 0; i-- {
		result = result.Mul(point).Add(coeffs[i])
	}
	return result
}

// EvalFromSamples combines k samples — samples[i] = h_i(point^k), in the
// same order Break returns its sub-polynomials — into f(point), using
// f(x) = sum_i h_i(x^k) * x^i via Horner's method.
func EvalFromSamples(samples []field.ExtFE, point field.ExtFE) field.ExtFE {
	result := field.ExtZero()
	for i := len(samples) - 1; i >= 0; i-- {
		result = result.Mul(point).Add(samples[i])
	}
	return result
}
