package domain

import (
	"fmt"
	"math/big"

	"github.com/vybium/starkcore/internal/starkcore/field"
)

// PeriodicColumn is a column whose values repeat every `period` rows along a
// trace of length traceLength. It is stored as the coefficients of the
// unique degree-<period polynomial q such that the column's value at trace
// row r is q(g^r mod period-subgroup); evaluated as a function of x it is
// q(x^nCopies), nCopies = traceLength/period.
type PeriodicColumn struct {
	period      uint64
	nCopies     uint64
	traceLength uint64
	coeffs      []field.BaseFE
}

// NewPeriodicColumn builds a periodic column from its `period` repeating
// values (period must be a power of two dividing traceLength).
func NewPeriodicColumn(values []field.BaseFE, traceLength uint64) (*PeriodicColumn, error) {
	period := uint64(len(values))
	if period == 0 || (period&(period-1)) != 0 {
		return nil, fmt.Errorf("domain: periodic column size %d is not a power of two", period)
	}
	if traceLength%period != 0 {
		return nil, fmt.Errorf("domain: periodic column size %d does not divide trace length %d", period, traceLength)
	}

	periodCoset, err := NewCoset(period, field.One())
	if err != nil {
		return nil, fmt.Errorf("domain: periodic column: %w", err)
	}
	coeffs, err := periodCoset.IfftEvalsToCoeffs(values)
	if err != nil {
		return nil, fmt.Errorf("domain: periodic column: %w", err)
	}

	return &PeriodicColumn{
		period:      period,
		nCopies:     traceLength / period,
		traceLength: traceLength,
		coeffs:      coeffs,
	}, nil
}

// Period returns the repeat length.
func (p *PeriodicColumn) Period() uint64 { return p.period }

// EvalAtPoint returns the column's value at x, computed as q(x^nCopies).
func (p *PeriodicColumn) EvalAtPoint(x field.ExtFE) field.ExtFE {
	y := x.Pow(big.NewInt(int64(p.nCopies)))
	result := field.ExtZero()
	for i := len(p.coeffs) - 1; i >= 0; i-- {
		result = result.Mul(y).Add(field.FromBase(p.coeffs[i]))
	}
	return result
}

// CosetEvaluation is a read-only, thread-safe, O(1)-per-access view of a
// periodic column's values over a coset of size nCopies*period: it holds
// only the `period` underlying values and indexes with a mask rather than
// materializing every repetition.
type CosetEvaluation struct {
	values []field.BaseFE
	mask   uint64
}

// GetCoset returns the column's evaluations on the coset
// start*<gen-of-order-cosetSize>, where cosetSize must equal
// nCopies*period. The generator of that coset restricted to the period
// subgroup of index nCopies is, by construction of field.GetSubGroupGenerator,
// exactly the canonical order-period generator, so the returned values line
// up with index&(period-1) regardless of which order-cosetSize generator the
// caller conceptually has in mind.
func (p *PeriodicColumn) GetCoset(start field.BaseFE, cosetSize uint64) (*CosetEvaluation, error) {
	if cosetSize != p.nCopies*p.period {
		return nil, fmt.Errorf("domain: periodic column get_coset: size %d, want %d", cosetSize, p.nCopies*p.period)
	}
	subOffset := start.Pow(big.NewInt(int64(p.nCopies)))
	subCoset, err := NewCoset(p.period, subOffset)
	if err != nil {
		return nil, fmt.Errorf("domain: periodic column get_coset: %w", err)
	}
	values, err := subCoset.FftCoeffsToEvals(p.coeffs, true)
	if err != nil {
		return nil, fmt.Errorf("domain: periodic column get_coset: %w", err)
	}
	return &CosetEvaluation{values: values, mask: p.period - 1}, nil
}

// At returns the value at the given index into the full cosetSize-length
// coset, folded down by the period mask.
func (c *CosetEvaluation) At(index uint64) field.BaseFE {
	return c.values[index&c.mask]
}

// Clone returns an independent CosetEvaluation sharing the same read-only
// backing array, safe to hand to a separate parallel-for task.
func (c *CosetEvaluation) Clone() *CosetEvaluation {
	return &CosetEvaluation{values: c.values, mask: c.mask}
}
