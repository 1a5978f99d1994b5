package fri

import (
	"github.com/vybium/starkcore/internal/starkcore/fft"
	"github.com/vybium/starkcore/internal/starkcore/field"
)

// foldLayer combines bit-reversed evaluations `evals` of a polynomial over
// the coset offset*<gen> (gen of order len(evals)) into the bit-reversed
// evaluations of the folded polynomial over the coset offset^step'*<gen^step'>
// (step' = 2^step), by interpolating each contiguous run of step' values
// (which, in bit-reversed storage, is exactly one fiber of x -> x^step') and
// evaluating the interpolant at alpha.
//
// This relies on a fact about bit-reversal: fixing the high bits of a
// bit-reversed index (the block number) and letting the low `step` bits vary
// sweeps exactly the values sharing one coset element raised to the 2^step
// power, and that set occupies a contiguous block in the bit-reversed array.
func foldLayer(evals []field.ExtFE, gen, offset field.BaseFE, step int, alpha field.ExtFE) ([]field.ExtFE, error) {
	miniSize := 1 << step
	numBlocks := len(evals) / miniSize

	next := make([]field.ExtFE, numBlocks)
	for b := 0; b < numBlocks; b++ {
		block := evals[b*miniSize : (b+1)*miniSize]
		miniGen := gen.PowUint64(uint64(numBlocks))
		miniOffset := offset.Mul(gen.PowUint64(uint64(b)))
		coeffs, err := extIfftReverseToNatural(block, miniGen, miniOffset)
		if err != nil {
			return nil, err
		}
		next[b] = evalPolyAt(coeffs, alpha)
	}

	if err := fft.BitReverseVector(next); err != nil {
		return nil, err
	}
	return next, nil
}

// extIfftReverseToNatural is the ExtFE-coefficient analogue of
// fft.IfftReverseToNatural: it un-reverses a copy of evals, then inverts via
// the same decimation recursion foldLayer's extension-field cousin in
// domain.Break uses, specialized to this package so fri has no import-cycle
// dependency on domain.
func extIfftReverseToNatural(evalsBitReversed []field.ExtFE, gen, offset field.BaseFE) ([]field.ExtFE, error) {
	n := len(evalsBitReversed)
	natural := make([]field.ExtFE, n)
	copy(natural, evalsBitReversed)
	if err := fft.BitReverseVector(natural); err != nil {
		return nil, err
	}

	genInv := gen.Inverse()
	t := extEvalRec(natural, field.One(), genInv)

	invN := field.BaseFEFromUint64(uint64(n)).Inverse()
	offsetInv := offset.Inverse()
	coeffs := make([]field.ExtFE, n)
	scale := invN
	for j := 0; j < n; j++ {
		coeffs[j] = t[j].MulBase(scale)
		scale = scale.Mul(offsetInv)
	}
	return coeffs, nil
}

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

// evalPolyAt evaluates coefficients (increasing degree order) at x via
// Horner's method.
func evalPolyAt(coeffs []field.ExtFE, x field.ExtFE) field.ExtFE {
	result := field.ExtZero()
	for i := len(coeffs) - 1; i >= 0; i-- {
		result = result.Mul(x).Add(coeffs[i])
	}
	return result
}

// blockOf returns the mini-coset block index and in-block position a
// bit-reversed-order index falls into for a fold of the given step.
func blockOf(index uint64, step int) (block uint64, pos uint64) {
	miniSize := uint64(1) << step
	return index / miniSize, index % miniSize
}

// SecondLayerQueriesToFirstLayerQueries expands each layer-0 query index
// into the full set of layer-0 indices its first fold's mini-coset reads,
// given the first fold's step size.
func SecondLayerQueriesToFirstLayerQueries(queries []uint64, firstStep int) []uint64 {
	miniSize := uint64(1) << firstStep
	seen := make(map[uint64]struct{})
	var out []uint64
	for _, q := range queries {
		block, _ := blockOf(q, firstStep)
		for p := uint64(0); p < miniSize; p++ {
			idx := block*miniSize + p
			if _, ok := seen[idx]; !ok {
				seen[idx] = struct{}{}
				out = append(out, idx)
			}
		}
	}
	return out
}

// NextLayerDataAndIntegrityQueries splits the row indices a layer's Merkle
// table must answer into the rows the verifier will receive raw values for
// (dataQueries: rows not already implied by a previous layer's fold) and
// the rows it can recompute itself (integrityQueries: rows whose value the
// verifier derives by folding the previous layer, so the prover need not
// resend them).
func NextLayerDataAndIntegrityQueries(queryBlocks, priorFoldBlocks []uint64) (data, integrity []uint64) {
	prior := make(map[uint64]struct{}, len(priorFoldBlocks))
	for _, b := range priorFoldBlocks {
		prior[b] = struct{}{}
	}
	for _, b := range queryBlocks {
		if _, ok := prior[b]; ok {
			integrity = append(integrity, b)
		} else {
			data = append(data, b)
		}
	}
	return data, integrity
}

// ApplyFriLayers folds a caller-supplied mini-coset of evaluations (the
// decommitted data for one query, in bit-reversed order) by alpha once,
// returning the single folded value for that query at this layer.
func ApplyFriLayers(cosetElements []field.ExtFE, alpha field.ExtFE, gen, offset field.BaseFE, step int) (field.ExtFE, error) {
	folded, err := foldLayer(cosetElements, gen, offset, step, alpha)
	if err != nil {
		return field.ExtFE{}, err
	}
	return folded[0], nil
}

// GetTableProverRowCol returns the (row, col) a flat index lands on within a
// Merkle table whose rows hold `rowWidth` consecutive evaluations.
func GetTableProverRowCol(index uint64, rowWidth int) (row, col uint64) {
	w := uint64(rowWidth)
	return index / w, index % w
}
