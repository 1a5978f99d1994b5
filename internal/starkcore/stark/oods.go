package stark

import (
	"github.com/vybium/starkcore/internal/starkcore/air"
	"github.com/vybium/starkcore/internal/starkcore/domain"
	"github.com/vybium/starkcore/internal/starkcore/field"
)

// shiftedPoint returns z*gen^(rowOffset mod n), the point a mask cell with
// the given row offset reads relative to the row at z.
func shiftedPoint(z field.ExtFE, gen field.BaseFE, rowOffset int, n uint64) field.ExtFE {
	e := int64(rowOffset) % int64(n)
	if e < 0 {
		e += int64(n)
	}
	return z.Mul(field.FromBase(gen.PowUint64(uint64(e))))
}

// sampleMask evaluates every mask cell's column at z, shifted by its row
// offset, directly from the column's interpolated coefficients rather than
// from coset samples.
func sampleMask(mask []air.MaskItem, lde *domain.LDEManager, gen field.BaseFE, n uint64, z field.ExtFE) ([]field.ExtFE, error) {
	out := make([]field.ExtFE, len(mask))
	for i, m := range mask {
		point := shiftedPoint(z, gen, m.RowOffset, n)
		vals, err := lde.EvalAtPoints(m.Column, []field.ExtFE{point})
		if err != nil {
			return nil, err
		}
		out[i] = vals[0]
	}
	return out, nil
}

// boundaryConditionsForMask pins every mask cell to the out-of-domain value
// already sent for it, one boundary condition per cell.
func boundaryConditionsForMask(mask []air.MaskItem, values []field.ExtFE, gen field.BaseFE, n uint64, z field.ExtFE) []air.BoundaryCondition {
	out := make([]air.BoundaryCondition, len(mask))
	for i, m := range mask {
		out[i] = air.BoundaryCondition{
			Column: m.Column,
			X:      shiftedPoint(z, gen, m.RowOffset, n),
			Y:      values[i],
		}
	}
	return out
}

// distinctMaskReps returns, for each distinct column referenced in mask, the
// index of its first-occurring entry, in first-seen order: one
// representative point per column to pin with a Frobenius-conjugate check.
func distinctMaskReps(mask []air.MaskItem) []int {
	seen := make(map[int]bool, len(mask))
	reps := make([]int, 0, len(mask))
	for i, m := range mask {
		if !seen[m.Column] {
			seen[m.Column] = true
			reps = append(reps, i)
		}
	}
	return reps
}

// compositionSubMask names one mask cell per composition-trace column, row
// offset zero: the second composition round reads every sub-polynomial at
// the current point, never a shifted neighbor.
func compositionSubMask(numSubs int) []air.MaskItem {
	out := make([]air.MaskItem, numSubs)
	for i := range out {
		out[i] = air.MaskItem{RowOffset: 0, Column: i}
	}
	return out
}
