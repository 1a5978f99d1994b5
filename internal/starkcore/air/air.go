// Package air defines the abstract Algebraic Intermediate Representation
// interface the composition polynomial evaluates against, and implements
// the composition polynomial builder/evaluator itself. Concrete AIRs for
// specific computations (a Rescue hash chain, a Ziggy signature) are
// external collaborators that satisfy this interface; the one concrete AIR
// in this package is BoundaryAIR, built during out-of-domain sampling.
package air

import (
	"fmt"

	"github.com/vybium/starkcore/internal/starkcore/field"
)

// MaskItem is one (row_offset, column) cell a constraint reads, relative to
// the row currently being evaluated. RowOffset may be negative.
type MaskItem struct {
	RowOffset int
	Column    int
}

// AIR is the contract a concrete computation's constraints must satisfy to
// be provable by the orchestrator. Every method is called many times per
// proof (once per mask cell per evaluation-domain point for the hot path,
// ConstraintsEval), so implementations are expected to hold all derived
// state ready rather than recompute it per call.
type AIR interface {
	// TraceLength returns n, the witness's row count (a power of two).
	TraceLength() uint64
	// NumColumns returns the trace's column count.
	NumColumns() uint64
	// Mask returns the fixed set of cells every constraint may read.
	Mask() []MaskItem
	// NumRandomCoefficients returns how many random linear-combination
	// coefficients ConstraintsEval expects.
	NumRandomCoefficients() uint64
	// CompositionDegreeBound returns D, a multiple of TraceLength(); D /
	// TraceLength() is the constraint degree k.
	CompositionDegreeBound() uint64
	// PointExponents names which powers of the evaluation point
	// ConstraintsEval needs precomputed in pointPowers, in the order it
	// expects them.
	PointExponents() []uint64
	// Shifts returns the domain shifts (e.g. powers of the trace
	// generator) ConstraintsEval's divisors reference.
	Shifts() []field.BaseFE
	// ConstraintsEval evaluates the constraint expression at one point.
	// neighbors holds the trace columns' values at the mask-selected cells,
	// in Mask() order; compositionNeighbors holds the same for an ExtFE
	// composition trace (empty on the first composition round);
	// periodicColumns holds each registered periodic column's value at the
	// current point, in registration order; pointPowers holds the point
	// raised to whatever exponents the AIR's degree-normalization terms
	// need; shifts holds the domain shifts (e.g. powers of the trace
	// generator) the AIR's divisors reference.
	ConstraintsEval(
		neighbors []field.ExtFE,
		compositionNeighbors []field.ExtFE,
		periodicColumns []field.ExtFE,
		randomCoefficients []field.ExtFE,
		pointPowers []field.ExtFE,
		shifts []field.BaseFE,
	) field.ExtFE
}

// ShapeMismatchError reports that a caller-supplied slice had the wrong
// length for the AIR it was paired with.
type ShapeMismatchError struct {
	What string
	Got  int
	Want int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("air: %s: got %d, want %d", e.What, e.Got, e.Want)
}
