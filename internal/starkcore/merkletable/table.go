// Package merkletable implements the table commitment scheme: a Merkle tree
// over rows of field elements, with selective per-cell decommitment so the
// verifier only ever receives the cells it cannot reconstruct on its own.
package merkletable

import (
	"fmt"
	"sort"

	"golang.org/x/crypto/blake2s"

	"github.com/vybium/starkcore/internal/starkcore/field"
)

// CellIndex addresses a single (row, column) entry in a committed table.
type CellIndex struct {
	Row, Col uint64
}

// hashLeaf hashes one row's concatenated canonical encoding.
func hashLeaf(row []field.BaseFE) [32]byte {
	buf := make([]byte, 0, len(row)*field.SizeInBytes())
	for _, v := range row {
		buf = append(buf, v.Bytes()...)
	}
	return blake2s.Sum256(buf)
}

// hashNode hashes two child digests together.
func hashNode(left, right [32]byte) [32]byte {
	buf := make([]byte, 0, 64)
	buf = append(buf, left[:]...)
	buf = append(buf, right[:]...)
	return blake2s.Sum256(buf)
}

// AuthPath is the sequence of sibling digests from a leaf up to (but not
// including) the root, in bottom-up order.
type AuthPath [][32]byte

// TableProver streams rows of a fixed width, then commits them as a Merkle
// tree with row concatenation as the leaf preimage.
type TableProver struct {
	nCols  uint64
	rows   [][]field.BaseFE
	levels [][][32]byte // levels[0] = leaves, levels[last] = {root}
}

// NewTableProver starts a table commitment of the given column width.
func NewTableProver(nCols uint64) *TableProver {
	return &TableProver{nCols: nCols}
}

// AddSegment appends rows to the table. Every row must have exactly nCols
// entries; rows may be added across multiple calls (segments) before Commit.
func (p *TableProver) AddSegment(rows [][]field.BaseFE) error {
	for i, row := range rows {
		if uint64(len(row)) != p.nCols {
			return fmt.Errorf("merkletable: segment row %d has %d columns, want %d", i, len(row), p.nCols)
		}
	}
	p.rows = append(p.rows, rows...)
	return nil
}

// NumRows returns how many rows have been added so far.
func (p *TableProver) NumRows() uint64 { return uint64(len(p.rows)) }

// Commit finalizes the Merkle tree over all added rows and returns its root.
// The row count must be a power of two.
func (p *TableProver) Commit() ([32]byte, error) {
	n := len(p.rows)
	if n == 0 || (n&(n-1)) != 0 {
		return [32]byte{}, fmt.Errorf("merkletable: row count %d is not a power of two", n)
	}

	leaves := make([][32]byte, n)
	for i, row := range p.rows {
		leaves[i] = hashLeaf(row)
	}

	levels := [][][32]byte{leaves}
	current := leaves
	for len(current) > 1 {
		next := make([][32]byte, len(current)/2)
		for i := range next {
			next[i] = hashNode(current[2*i], current[2*i+1])
		}
		levels = append(levels, next)
		current = next
	}
	p.levels = levels
	return current[0], nil
}

// queriedRows returns the sorted, deduplicated union of two row-index sets.
func queriedRows(a, b []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(a)+len(b))
	for _, r := range a {
		seen[r] = struct{}{}
	}
	for _, r := range b {
		seen[r] = struct{}{}
	}
	out := make([]uint64, 0, len(seen))
	for r := range seen {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Query returns the cells the verifier needs transmitted explicitly: every
// cell in a row named by dataQueries, except cells whose row is also named by
// integrityQueries: every integrity row is skipped (the verifier reconstructs
// those from prior protocol state and must not be sent them again).
func (p *TableProver) Query(dataQueries, integrityQueries []uint64) (map[CellIndex]field.BaseFE, error) {
	n := uint64(len(p.rows))
	integritySet := make(map[uint64]struct{}, len(integrityQueries))
	for _, r := range integrityQueries {
		integritySet[r] = struct{}{}
	}

	out := make(map[CellIndex]field.BaseFE)
	for _, r := range queriedRows(dataQueries, integrityQueries) {
		if r >= n {
			return nil, fmt.Errorf("merkletable: query row %d out of range [0,%d)", r, n)
		}
		if _, skip := integritySet[r]; skip {
			continue
		}
		for c := uint64(0); c < p.nCols; c++ {
			out[CellIndex{Row: r, Col: c}] = p.rows[r][c]
		}
	}
	return out, nil
}

// Decommit returns one authentication path per row in rows, keyed by row
// index, proving each row's leaf against the committed root.
func (p *TableProver) Decommit(rows []uint64) (map[uint64]AuthPath, error) {
	if p.levels == nil {
		return nil, fmt.Errorf("merkletable: decommit before commit")
	}
	n := uint64(len(p.rows))
	out := make(map[uint64]AuthPath, len(rows))
	for _, r := range rows {
		if r >= n {
			return nil, fmt.Errorf("merkletable: decommit row %d out of range [0,%d)", r, n)
		}
		path := make(AuthPath, 0, len(p.levels)-1)
		idx := r
		for level := 0; level < len(p.levels)-1; level++ {
			sibling := idx ^ 1
			path = append(path, p.levels[level][sibling])
			idx /= 2
		}
		out[r] = path
	}
	return out, nil
}

// TableVerifier checks selective decommitments of a committed table against
// a root read from the transcript.
type TableVerifier struct {
	nCols uint64
	nRows uint64
	root  [32]byte
}

// NewTableVerifier prepares a verifier for a table of the given shape.
func NewTableVerifier(nCols, nRows uint64) *TableVerifier {
	return &TableVerifier{nCols: nCols, nRows: nRows}
}

// ReadCommitment records the root read from the channel.
func (v *TableVerifier) ReadCommitment(root [32]byte) { v.root = root }

// Root returns the recorded commitment root.
func (v *TableVerifier) Root() [32]byte { return v.root }

// VerifyDecommitment checks that, for every row in paths, hashing
// rowValues[row] and walking the authentication path reproduces the
// committed root.
func (v *TableVerifier) VerifyDecommitment(rowValues map[uint64][]field.BaseFE, paths map[uint64]AuthPath) (bool, error) {
	bits := 0
	for n := v.nRows; n > 1; n >>= 1 {
		bits++
	}

	for row, path := range paths {
		values, ok := rowValues[row]
		if !ok {
			return false, fmt.Errorf("merkletable: missing row values for row %d", row)
		}
		if uint64(len(values)) != v.nCols {
			return false, fmt.Errorf("merkletable: row %d has %d values, want %d", row, len(values), v.nCols)
		}
		if len(path) != bits {
			return false, fmt.Errorf("merkletable: row %d authentication path has %d nodes, want %d", row, len(path), bits)
		}

		hash := hashLeaf(values)
		idx := row
		for _, sibling := range path {
			if idx%2 == 0 {
				hash = hashNode(hash, sibling)
			} else {
				hash = hashNode(sibling, hash)
			}
			idx /= 2
		}
		if hash != v.root {
			return false, nil
		}
	}
	return true, nil
}
