package air

import "github.com/vybium/starkcore/internal/starkcore/field"

// BoundaryCondition asserts that column() evaluates to Y at the
// out-of-domain or witness point X. The boundary AIR's constraint for this
// condition is (column(x) - Y)/(x - X), a polynomial of degree
// trace_length-2 whenever the assertion holds and column has degree
// trace_length-1.
type BoundaryCondition struct {
	Column int
	X      field.ExtFE
	Y      field.ExtFE
}

// boundarySource picks which of ConstraintsEval's two neighbor slices a
// BoundaryAIR reads its trace values from: the witness trace itself, or (for
// the out-of-domain round built over a composition trace's sub-polynomial
// columns) the composition neighbors.
type boundarySource int

const (
	boundaryOverTrace boundarySource = iota
	boundaryOverComposition
)

// BoundaryAIR is the AIR built during out-of-domain sampling (and usable
// standalone, as in a pure boundary-condition proof): one constraint per
// BoundaryCondition, combined by the caller-supplied random coefficients.
// Its blinding flag is only recorded: it adds no column and does not change
// the constraints or CompositionDegreeBound.
type BoundaryAIR struct {
	traceLength uint64
	nColumns    uint64
	conditions  []BoundaryCondition
	columnIndex map[int]int // Column -> index into Mask()/neighbors
	hasBlinding bool
	source      boundarySource
}

// NewBoundaryAIR builds a boundary AIR over a trace of traceLength rows and
// nColumns columns, asserting every condition in conditions. hasBlinding is
// stored and reported by HasBlindingColumn; no column is reserved for it and
// the composition's degree is unchanged.
func NewBoundaryAIR(traceLength, nColumns uint64, conditions []BoundaryCondition, hasBlinding bool) *BoundaryAIR {
	return newBoundaryAIR(traceLength, nColumns, conditions, hasBlinding, boundaryOverTrace)
}

// NewCompositionBoundaryAIR builds a boundary AIR whose conditions pin the
// values of a composition trace's sub-polynomial columns (as read from
// ConstraintsEval's compositionNeighbors) rather than the witness trace,
// for the second out-of-domain-sampling round run over the broken
// composition polynomial.
func NewCompositionBoundaryAIR(traceLength, nSubColumns uint64, conditions []BoundaryCondition) *BoundaryAIR {
	return newBoundaryAIR(traceLength, nSubColumns, conditions, false, boundaryOverComposition)
}

func newBoundaryAIR(traceLength, nColumns uint64, conditions []BoundaryCondition, hasBlinding bool, source boundarySource) *BoundaryAIR {
	index := make(map[int]int)
	mask := make([]int, 0, len(conditions))
	for _, c := range conditions {
		if _, ok := index[c.Column]; !ok {
			index[c.Column] = len(mask)
			mask = append(mask, c.Column)
		}
	}
	return &BoundaryAIR{
		traceLength: traceLength,
		nColumns:    nColumns,
		conditions:  conditions,
		columnIndex: index,
		hasBlinding: hasBlinding,
		source:      source,
	}
}

// TraceLength implements AIR.
func (b *BoundaryAIR) TraceLength() uint64 { return b.traceLength }

// NumColumns implements AIR.
func (b *BoundaryAIR) NumColumns() uint64 { return b.nColumns }

// Mask returns one (row_offset=0, column) entry per distinct column a
// boundary condition references, in first-seen order; EvalOnCosetBitReversed
// and ConstraintsEval agree on this ordering via columnIndex.
func (b *BoundaryAIR) Mask() []MaskItem {
	out := make([]MaskItem, len(b.columnIndex))
	for col, idx := range b.columnIndex {
		out[idx] = MaskItem{RowOffset: 0, Column: col}
	}
	return out
}

// NumRandomCoefficients returns one coefficient per boundary condition.
func (b *BoundaryAIR) NumRandomCoefficients() uint64 { return uint64(len(b.conditions)) }

// CompositionDegreeBound returns trace_length: every boundary term has
// degree trace_length-2, comfortably under a single multiple of
// trace_length. The blinding flag does not change it.
func (b *BoundaryAIR) CompositionDegreeBound() uint64 { return b.traceLength }

// PointExponents implements AIR: ConstraintsEval needs the evaluation point
// itself, raised to the first power, as pointPowers[0].
func (b *BoundaryAIR) PointExponents() []uint64 { return []uint64{1} }

// Shifts implements AIR: boundary constraints reference no domain shifts.
func (b *BoundaryAIR) Shifts() []field.BaseFE { return nil }

// ConstraintsEval implements AIR. It expects pointPowers[0] == the
// evaluation point itself (pointExponents == []uint64{1} when building the
// composition polynomial for this AIR).
func (b *BoundaryAIR) ConstraintsEval(
	neighbors []field.ExtFE,
	compositionNeighbors []field.ExtFE,
	_ []field.ExtFE,
	randomCoefficients []field.ExtFE,
	pointPowers []field.ExtFE,
	_ []field.BaseFE,
) field.ExtFE {
	src := neighbors
	if b.source == boundaryOverComposition {
		src = compositionNeighbors
	}
	x := pointPowers[0]
	result := field.ExtZero()
	for i, cond := range b.conditions {
		idx := b.columnIndex[cond.Column]
		v := src[idx]
		numerator := v.Sub(cond.Y)
		denom := x.Sub(cond.X)
		term := numerator.Div(denom)
		result = result.Add(randomCoefficients[i].Mul(term))
	}
	return result
}

// HasBlindingColumn reports the hasBlinding flag the AIR was built with; no
// column is reserved for it.
func (b *BoundaryAIR) HasBlindingColumn() bool { return b.hasBlinding }
