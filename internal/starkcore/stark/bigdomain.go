package stark

import (
	"sort"

	"github.com/vybium/starkcore/internal/starkcore/fft"
	"github.com/vybium/starkcore/internal/starkcore/field"
)

// assembleBigNaturalOrder flattens numCosets per-coset bit-reversed
// evaluation arrays (each of size n, the trace length) into one natural-order
// array over the big coset of size numCosets*n. The big coset's generator
// gamma satisfies gamma^numCosets == the trace generator, so the big coset's
// natural index i+numCosets*j lands on the same field element as coset i's
// trace-domain natural index j, which cosetOutputs[i] stores at the
// bit-reversed position fft.BitReverse(j, bitsSmall).
func assembleBigNaturalOrder(cosetOutputs [][]field.ExtFE) []field.ExtFE {
	numCosets := len(cosetOutputs)
	if numCosets == 0 {
		return nil
	}
	n := len(cosetOutputs[0])
	bitsSmall := uint(fft.Log2(n))
	out := make([]field.ExtFE, numCosets*n)
	for j := 0; j < n; j++ {
		pos := fft.BitReverse(uint64(j), bitsSmall)
		for i := 0; i < numCosets; i++ {
			out[i+numCosets*j] = cosetOutputs[i][pos]
		}
	}
	return out
}

// toBitReversed copies and bit-reverses a natural-order array into the
// storage order FRI and the Merkle table commitments expect.
func toBitReversed(natural []field.ExtFE) ([]field.ExtFE, error) {
	out := make([]field.ExtFE, len(natural))
	copy(out, natural)
	if err := fft.BitReverseVector(out); err != nil {
		return nil, err
	}
	return out, nil
}

// queryRowFor inverts assembleBigNaturalOrder's index map for a single FRI
// layer-0 query index q (given in the big coset's bit-reversed storage
// order, the order toBitReversed produces layer0 in): it returns the coset
// and the coset-local bit-reversed row position whose trace and
// composition-trace table entries correspond to that query point.
func queryRowFor(q, numCosets, n uint64) (coset, pos uint64) {
	bigBits := uint(fft.Log2(int(numCosets * n)))
	smallBits := uint(fft.Log2(int(n)))
	m := fft.BitReverse(q, bigBits)
	coset = m % numCosets
	j := m / numCosets
	pos = fft.BitReverse(j, smallBits)
	return coset, pos
}

// queryGlobalRows expands a set of FRI layer-0 query indices into the row
// each one lands on in the trace and composition-trace tables (committed as
// numCosets segments of n rows each, global row = coset*n+pos), plus the
// sorted, deduplicated set of rows to decommit.
func queryGlobalRows(queryIndices []uint64, numCosets, n uint64) (rowOf map[uint64]uint64, rows []uint64) {
	rowOf = make(map[uint64]uint64, len(queryIndices))
	seen := make(map[uint64]struct{})
	for _, q := range queryIndices {
		coset, pos := queryRowFor(q, numCosets, n)
		row := coset*n + pos
		rowOf[q] = row
		seen[row] = struct{}{}
	}
	rows = make([]uint64, 0, len(seen))
	for r := range seen {
		rows = append(rows, r)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i] < rows[j] })
	return rowOf, rows
}
