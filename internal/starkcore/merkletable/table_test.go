package merkletable

import (
	"testing"

	"github.com/vybium/starkcore/internal/starkcore/field"
)

func rowsOf(n, cols int) [][]field.BaseFE {
	out := make([][]field.BaseFE, n)
	for r := range out {
		row := make([]field.BaseFE, cols)
		for c := range row {
			row[c] = field.BaseFEFromInt64(int64(r*cols + c))
		}
		out[r] = row
	}
	return out
}

func TestCommitAndVerifyDecommitment(t *testing.T) {
	rows := rowsOf(8, 3)

	prover := NewTableProver(3)
	if err := prover.AddSegment(rows[:4]); err != nil {
		t.Fatalf("AddSegment: %v", err)
	}
	if err := prover.AddSegment(rows[4:]); err != nil {
		t.Fatalf("AddSegment: %v", err)
	}
	root, err := prover.Commit()
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	queried := []uint64{1, 5}
	cells, err := prover.Query(queried, nil)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(cells) != len(queried)*3 {
		t.Fatalf("expected %d cells, got %d", len(queried)*3, len(cells))
	}

	paths, err := prover.Decommit(queried)
	if err != nil {
		t.Fatalf("Decommit: %v", err)
	}

	verifier := NewTableVerifier(3, 8)
	verifier.ReadCommitment(root)

	rowValues := map[uint64][]field.BaseFE{
		1: rows[1],
		5: rows[5],
	}
	ok, err := verifier.VerifyDecommitment(rowValues, paths)
	if err != nil {
		t.Fatalf("VerifyDecommitment: %v", err)
	}
	if !ok {
		t.Fatalf("expected decommitment to verify")
	}
}

func TestVerifyDecommitmentRejectsTamperedValue(t *testing.T) {
	rows := rowsOf(4, 2)
	prover := NewTableProver(2)
	if err := prover.AddSegment(rows); err != nil {
		t.Fatalf("AddSegment: %v", err)
	}
	root, err := prover.Commit()
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	paths, err := prover.Decommit([]uint64{2})
	if err != nil {
		t.Fatalf("Decommit: %v", err)
	}

	verifier := NewTableVerifier(2, 4)
	verifier.ReadCommitment(root)

	tampered := map[uint64][]field.BaseFE{2: {field.BaseFEFromInt64(999), field.BaseFEFromInt64(998)}}
	ok, err := verifier.VerifyDecommitment(tampered, paths)
	if err != nil {
		t.Fatalf("VerifyDecommitment: %v", err)
	}
	if ok {
		t.Fatalf("expected tampered row to fail verification")
	}
}

func TestQueryExcludesIntegrityOnlyRows(t *testing.T) {
	rows := rowsOf(4, 2)
	prover := NewTableProver(2)
	if err := prover.AddSegment(rows); err != nil {
		t.Fatalf("AddSegment: %v", err)
	}
	if _, err := prover.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	cells, err := prover.Query([]uint64{0}, []uint64{1})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	for cell := range cells {
		if cell.Row == 1 {
			t.Fatalf("integrity-only row 1 should not be transmitted")
		}
	}
	if len(cells) != 2 {
		t.Fatalf("expected 2 cells from row 0, got %d", len(cells))
	}
}

func TestCommitRejectsNonPowerOfTwoRowCount(t *testing.T) {
	prover := NewTableProver(2)
	if err := prover.AddSegment(rowsOf(3, 2)); err != nil {
		t.Fatalf("AddSegment: %v", err)
	}
	if _, err := prover.Commit(); err == nil {
		t.Fatalf("expected error for non-power-of-two row count")
	}
}
