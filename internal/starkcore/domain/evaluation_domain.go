package domain

import (
	"fmt"

	"github.com/vybium/starkcore/internal/starkcore/fft"
	"github.com/vybium/starkcore/internal/starkcore/field"
)

// EvaluationDomain is a trace domain (the coset of offset 1 and size n that
// the witness itself lives on) plus N = 2^m evaluation cosets of that same
// size inside F_p*, used for the low-degree extension. The evaluation
// cosets' offsets are {h*gamma^i : i in [0,N)}, where h is the field
// generator and gamma has order N*n; this guarantees the trace domain and
// every evaluation coset are pairwise disjoint, since membership in the
// trace subgroup would require h*gamma^i to have order dividing n, but
// gamma's order N*n and h's primitivity rule that out whenever N>1.
type EvaluationDomain struct {
	traceLength uint64
	numCosets   uint64
	traceGen    field.BaseFE
	cosetOffsets []field.BaseFE
}

// NewEvaluationDomain builds the domain for a trace of length n blown up by
// a factor of numCosets (both must be powers of two).
func NewEvaluationDomain(traceLength, numCosets uint64) (*EvaluationDomain, error) {
	if traceLength == 0 || (traceLength&(traceLength-1)) != 0 {
		return nil, fmt.Errorf("domain: trace length %d is not a power of two", traceLength)
	}
	if numCosets == 0 || (numCosets&(numCosets-1)) != 0 {
		return nil, fmt.Errorf("domain: num_cosets %d is not a power of two", numCosets)
	}

	traceGen, err := field.GetSubGroupGenerator(traceLength)
	if err != nil {
		return nil, fmt.Errorf("domain: trace generator: %w", err)
	}

	gamma, err := field.GetSubGroupGenerator(numCosets * traceLength)
	if err != nil {
		return nil, fmt.Errorf("domain: coset-selector generator: %w", err)
	}

	h := field.Generator()
	offsets := make([]field.BaseFE, numCosets)
	x := h
	for i := range offsets {
		offsets[i] = x
		x = x.Mul(gamma)
	}

	return &EvaluationDomain{
		traceLength:  traceLength,
		numCosets:    numCosets,
		traceGen:     traceGen,
		cosetOffsets: offsets,
	}, nil
}

// TraceLength returns n.
func (d *EvaluationDomain) TraceLength() uint64 { return d.traceLength }

// NumCosets returns N.
func (d *EvaluationDomain) NumCosets() uint64 { return d.numCosets }

// TraceGenerator returns the order-n generator shared by the trace domain
// and every evaluation coset.
func (d *EvaluationDomain) TraceGenerator() field.BaseFE { return d.traceGen }

// CosetOffset returns the offset of evaluation coset i.
func (d *EvaluationDomain) CosetOffset(i uint64) field.BaseFE { return d.cosetOffsets[i] }

// Coset returns evaluation coset i as a standalone Coset value.
func (d *EvaluationDomain) Coset(i uint64) Coset {
	return Coset{size: d.traceLength, gen: d.traceGen, offset: d.cosetOffsets[i]}
}

// TraceDomain returns the witness's own domain: the coset of offset 1.
func (d *EvaluationDomain) TraceDomain() Coset {
	return Coset{size: d.traceLength, gen: d.traceGen, offset: field.One()}
}

// ElementByIndex returns cosetOffsets[coset] * traceGen^bitreverse(groupIndex,
// log2(n)). Evaluation-domain data is stored in bit-reversed group-index
// order because that is the order the coset FFT is asked to produce; this
// method undoes that convention to recover "the j-th point of coset i" in
// its natural algebraic sense.
func (d *EvaluationDomain) ElementByIndex(coset, groupIndex uint64) field.BaseFE {
	bits := uint(fft.Log2(int(d.traceLength)))
	reversed := fft.BitReverse(groupIndex, bits)
	return d.cosetOffsets[coset].Mul(d.traceGen.PowUint64(reversed))
}

// Disjoint reports whether the trace domain and every evaluation coset are
// pairwise disjoint from each other, by exhaustive membership test. This is
// a sanity check, not a hot-path operation, and construction does not call
// it: with numCosets a power of two greater than one and gamma of order
// numCosets*traceLength, disjointness always holds by construction; the
// check exists to catch a misconfigured gamma or modulus in tests rather
// than to gate normal operation.
func (d *EvaluationDomain) Disjoint() bool {
	trace := d.TraceDomain()
	for i := uint64(0); i < d.numCosets; i++ {
		c := d.Coset(i)
		if trace.Contains(c.Offset()) {
			return false
		}
	}
	for i := uint64(0); i < d.numCosets; i++ {
		for j := i + 1; j < d.numCosets; j++ {
			if d.Coset(i).Contains(d.Coset(j).Offset()) {
				return false
			}
		}
	}
	return true
}
