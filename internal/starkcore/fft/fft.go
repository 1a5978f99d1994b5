package fft

import "github.com/vybium/starkcore/internal/starkcore/field"

// evalRec evaluates the polynomial with coefficients coeffs (increasing
// degree, natural order) over the coset {offset * gen^i : i = 0..n-1},
// returning the evaluations in natural order. gen must have multiplicative
// order exactly len(coeffs). This is a textbook decimation-in-frequency
// recursion; it trades the cache-friendliness of an in-place iterative
// butterfly network for a structure whose correctness is easy to check by
// induction on n.
func evalRec(coeffs []field.BaseFE, offset, gen field.BaseFE) []field.BaseFE {
	n := len(coeffs)
	if n == 1 {
		return []field.BaseFE{coeffs[0]}
	}

	half := n / 2
	even := make([]field.BaseFE, half)
	odd := make([]field.BaseFE, half)
	for i := 0; i < half; i++ {
		even[i] = coeffs[2*i]
		odd[i] = coeffs[2*i+1]
	}

	gen2 := gen.Square()
	offset2 := offset.Square()
	evenEval := evalRec(even, offset2, gen2)
	oddEval := evalRec(odd, offset2, gen2)

	result := make([]field.BaseFE, n)
	x := offset
	for i := 0; i < half; i++ {
		t := x.Mul(oddEval[i])
		result[i] = evenEval[i].Add(t)
		result[i+half] = evenEval[i].Sub(t)
		x = x.Mul(gen)
	}
	return result
}

// Fft evaluates the polynomial given by coeffs (increasing-degree order)
// over the coset offset*<gen>. len(coeffs) must be a power of two and equal
// to the order of gen. When naturalOutput is false the result is permuted
// into the FFT's native bit-reversed order instead of dst[i] == p(offset *
// gen^i); callers that immediately feed the result to another bit-reversed
// stage (FRI folding, LDE coset commitment) can skip a redundant
// permutation by asking for bit-reversed order directly.
func Fft(coeffs []field.BaseFE, gen, offset field.BaseFE, naturalOutput bool) ([]field.BaseFE, error) {
	n := len(coeffs)
	if !IsPowerOfTwo(n) {
		return nil, &DomainSizeError{Op: "Fft", Size: n}
	}
	out := evalRec(coeffs, offset, gen)
	if !naturalOutput {
		if err := BitReverseVector(out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Ifft recovers the coefficients (increasing-degree order) of the unique
// degree-<n polynomial whose evaluations over offset*<gen> are evals. evals
// is consumed in natural order (evals[i] == p(offset*gen^i)); use
// IfftReverseToNatural for bit-reversed input.
func Ifft(evals []field.BaseFE, gen, offset field.BaseFE) ([]field.BaseFE, error) {
	n := len(evals)
	if !IsPowerOfTwo(n) {
		return nil, &DomainSizeError{Op: "Ifft", Size: n}
	}

	genInv := gen.Inverse()
	// T[j] = sum_i evals[i] * genInv^(i*j) is exactly the n-point transform
	// evalRec computes when fed evals as "coefficients" with no offset and
	// generator genInv.
	t := evalRec(evals, field.One(), genInv)

	invN := field.BaseFEFromUint64(uint64(n)).Inverse()
	offsetInv := offset.Inverse()

	coeffs := make([]field.BaseFE, n)
	scale := invN
	for j := 0; j < n; j++ {
		coeffs[j] = t[j].Mul(scale)
		scale = scale.Mul(offsetInv)
	}
	return coeffs, nil
}

// IfftReverseToNatural is Ifft for callers holding evaluations in
// bit-reversed order (the layout LDE cosets and FRI layers are committed
// in). It un-reverses a copy of evals before inverting, leaving the caller's
// slice untouched.
func IfftReverseToNatural(evalsBitReversed []field.BaseFE, gen, offset field.BaseFE) ([]field.BaseFE, error) {
	n := len(evalsBitReversed)
	if !IsPowerOfTwo(n) {
		return nil, &DomainSizeError{Op: "IfftReverseToNatural", Size: n}
	}
	natural := make([]field.BaseFE, n)
	copy(natural, evalsBitReversed)
	if err := BitReverseVector(natural); err != nil {
		return nil, err
	}
	return Ifft(natural, gen, offset)
}
