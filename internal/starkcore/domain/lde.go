package domain

import (
	"fmt"

	"github.com/vybium/starkcore/internal/starkcore/field"
)

// LDEManager extends evaluations of one or more columns given on a fixed
// source coset to evaluations on arbitrary other cosets sharing the same
// generator, and supports evaluating those columns at arbitrary
// out-of-domain points.
type LDEManager struct {
	source            Coset
	naturallyOrdered  bool
	columnCoeffs      [][]field.BaseFE
}

// NewLDEManager builds a manager rooted at source coset c0. When
// naturallyOrdered is false, EvalOnCoset returns evaluations in bit-reversed
// order, applying one extra bit-reversal pass to the FFT's natural-order
// output; this is the layout the trace LDE uses since every downstream
// consumer (Merkle table commitment, FRI) expects bit-reversed row order.
func NewLDEManager(c0 Coset, naturallyOrdered bool) *LDEManager {
	return &LDEManager{source: c0, naturallyOrdered: naturallyOrdered}
}

// AddEvaluation registers a column given by its evaluations on the source
// coset, recovering its coefficients via IFFT.
func (m *LDEManager) AddEvaluation(values []field.BaseFE) (int, error) {
	if uint64(len(values)) != m.source.Size() {
		return 0, fmt.Errorf("domain: LDE add_evaluation: got %d values, want %d", len(values), m.source.Size())
	}
	coeffs, err := m.source.IfftEvalsToCoeffs(values)
	if err != nil {
		return 0, fmt.Errorf("domain: LDE add_evaluation: %w", err)
	}
	m.columnCoeffs = append(m.columnCoeffs, coeffs)
	return len(m.columnCoeffs) - 1, nil
}

// AddFromCoefficients registers a column directly by its coefficients
// (increasing-degree order), padded or truncated is not performed: the
// caller must supply exactly Size() coefficients.
func (m *LDEManager) AddFromCoefficients(coeffs []field.BaseFE) (int, error) {
	if uint64(len(coeffs)) != m.source.Size() {
		return 0, fmt.Errorf("domain: LDE add_from_coefficients: got %d coefficients, want %d", len(coeffs), m.source.Size())
	}
	cp := make([]field.BaseFE, len(coeffs))
	copy(cp, coeffs)
	m.columnCoeffs = append(m.columnCoeffs, cp)
	return len(m.columnCoeffs) - 1, nil
}

// NumColumns returns how many columns have been registered.
func (m *LDEManager) NumColumns() int { return len(m.columnCoeffs) }

// EvalOnCoset evaluates every registered column on the coset offset*<gen(c0)>,
// returning one evaluation slice per column in registration order.
func (m *LDEManager) EvalOnCoset(offset field.BaseFE) ([][]field.BaseFE, error) {
	target := Coset{size: m.source.Size(), gen: m.source.Generator(), offset: offset}
	out := make([][]field.BaseFE, len(m.columnCoeffs))
	for i, coeffs := range m.columnCoeffs {
		evals, err := target.FftCoeffsToEvals(coeffs, m.naturallyOrdered)
		if err != nil {
			return nil, fmt.Errorf("domain: LDE eval_on_coset column %d: %w", i, err)
		}
		out[i] = evals
	}
	return out, nil
}

// EvalAtPoints evaluates one column at arbitrary extension-field points via
// Horner's method.
func (m *LDEManager) EvalAtPoints(column int, xs []field.ExtFE) ([]field.ExtFE, error) {
	if column < 0 || column >= len(m.columnCoeffs) {
		return nil, fmt.Errorf("domain: LDE eval_at_points: column %d out of range", column)
	}
	coeffs := m.columnCoeffs[column]
	out := make([]field.ExtFE, len(xs))
	for i, x := range xs {
		result := field.ExtZero()
		for j := len(coeffs) - 1; j >= 0; j-- {
			result = result.Mul(x).Add(field.FromBase(coeffs[j]))
		}
		out[i] = result
	}
	return out, nil
}

// GetEvaluationDegree returns the actual polynomial degree of a registered
// column, trimming trailing zero coefficients.
func (m *LDEManager) GetEvaluationDegree(column int) (int, error) {
	if column < 0 || column >= len(m.columnCoeffs) {
		return 0, fmt.Errorf("domain: LDE get_evaluation_degree: column %d out of range", column)
	}
	coeffs := m.columnCoeffs[column]
	deg := len(coeffs) - 1
	for deg >= 0 && coeffs[deg].IsZero() {
		deg--
	}
	return deg, nil
}

// IsEvalNaturallyOrdered reports the construction-time ordering flag.
func (m *LDEManager) IsEvalNaturallyOrdered() bool { return m.naturallyOrdered }
