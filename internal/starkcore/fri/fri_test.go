package fri

import (
	"testing"

	"github.com/vybium/starkcore/internal/starkcore/channel"
	"github.com/vybium/starkcore/internal/starkcore/fft"
	"github.com/vybium/starkcore/internal/starkcore/field"
)

// directEval evaluates polynomial coefficients (increasing degree) at x.
func directEval(coeffs []field.BaseFE, x field.BaseFE) field.BaseFE {
	result := field.Zero()
	for i := len(coeffs) - 1; i >= 0; i-- {
		result = result.Mul(x).Add(coeffs[i])
	}
	return result
}

func evalCoset(coeffs []field.BaseFE, gen, offset field.BaseFE, n int) []field.BaseFE {
	out := make([]field.BaseFE, n)
	x := offset
	for i := 0; i < n; i++ {
		out[i] = directEval(coeffs, x)
		x = x.Mul(gen)
	}
	return out
}

// TestFoldLayerSingleBlockMatchesDirectEval checks the base case where the
// fold step collapses an entire coset to one value: foldLayer's
// interpolate-then-evaluate-at-alpha must then equal evaluating the
// original polynomial directly at alpha, since no nontrivial deinterleaving
// has happened yet.
func TestFoldLayerSingleBlockMatchesDirectEval(t *testing.T) {
	n := uint64(8)
	gen, err := field.GetSubGroupGenerator(n)
	if err != nil {
		t.Fatalf("GetSubGroupGenerator: %v", err)
	}
	offset := field.Generator()

	coeffs := make([]field.BaseFE, n)
	for i := range coeffs {
		coeffs[i] = field.BaseFEFromInt64(int64(2*i + 1))
	}
	evals := evalCoset(coeffs, gen, offset, int(n))
	if err := fft.BitReverseVector(evals); err != nil {
		t.Fatalf("bit-reverse: %v", err)
	}
	extEvals := make([]field.ExtFE, n)
	for i, v := range evals {
		extEvals[i] = field.FromBase(v)
	}

	alpha := field.FromBase(field.BaseFEFromInt64(11))
	step := fft.Log2(int(n))
	folded, err := foldLayer(extEvals, gen, offset, step, alpha)
	if err != nil {
		t.Fatalf("foldLayer: %v", err)
	}
	if len(folded) != 1 {
		t.Fatalf("expected a single folded value, got %d", len(folded))
	}

	want := field.FromBase(directEval(coeffs, field.BaseFEFromInt64(11)))
	if !folded[0].Equal(want) {
		t.Fatalf("folded value = %s, want %s", folded[0], want)
	}
}

func TestFriProveVerifyRoundTrip(t *testing.T) {
	n := uint64(64)
	gen, err := field.GetSubGroupGenerator(n)
	if err != nil {
		t.Fatalf("GetSubGroupGenerator: %v", err)
	}
	offset := field.Generator()

	coeffs := make([]field.BaseFE, 8)
	for i := range coeffs {
		coeffs[i] = field.BaseFEFromInt64(int64(i*i + 1))
	}
	evals := evalCoset(coeffs, gen, offset, int(n))
	if err := fft.BitReverseVector(evals); err != nil {
		t.Fatalf("bit-reverse: %v", err)
	}
	extEvals := make([]field.ExtFE, n)
	for i, v := range evals {
		extEvals[i] = field.FromBase(v)
	}

	params := Params{
		FriStepList:          []int{0, 2, 1},
		LastLayerDegreeBound: 1,
		NumQueries:           4,
		ProofOfWorkBits:      0,
	}
	if err := params.Validate(8); err != nil {
		t.Fatalf("params.Validate: %v", err)
	}

	proverCh := channel.NewProverChannel([]byte("fri-test-seed"))
	prover := NewProver(params, extEvals, gen, offset)
	if _, err := prover.CommitPhase(proverCh); err != nil {
		t.Fatalf("CommitPhase: %v", err)
	}
	if err := prover.QueryPhase(proverCh); err != nil {
		t.Fatalf("QueryPhase: %v", err)
	}

	proof := proverCh.GetProof()
	verifierCh := channel.NewVerifierChannel([]byte("fri-test-seed"), proof)
	verifier := NewVerifier(params, n, gen, offset)
	if err := verifier.CommitPhase(verifierCh); err != nil {
		t.Fatalf("verifier CommitPhase: %v", err)
	}
	ok, err := verifier.QueryPhase(verifierCh)
	if err != nil {
		t.Fatalf("verifier QueryPhase: %v", err)
	}
	if !ok {
		t.Fatalf("expected valid FRI proof to verify")
	}
}

func TestFriVerifyRejectsTamperedLastLayer(t *testing.T) {
	n := uint64(32)
	gen, err := field.GetSubGroupGenerator(n)
	if err != nil {
		t.Fatalf("GetSubGroupGenerator: %v", err)
	}
	offset := field.Generator()

	coeffs := make([]field.BaseFE, 4)
	for i := range coeffs {
		coeffs[i] = field.BaseFEFromInt64(int64(i + 3))
	}
	evals := evalCoset(coeffs, gen, offset, int(n))
	if err := fft.BitReverseVector(evals); err != nil {
		t.Fatalf("bit-reverse: %v", err)
	}
	extEvals := make([]field.ExtFE, n)
	for i, v := range evals {
		extEvals[i] = field.FromBase(v)
	}

	params := Params{
		FriStepList:          []int{0, 1, 1},
		LastLayerDegreeBound: 1,
		NumQueries:           4,
		ProofOfWorkBits:      0,
	}
	if err := params.Validate(4); err != nil {
		t.Fatalf("params.Validate: %v", err)
	}

	proverCh := channel.NewProverChannel([]byte("tamper-seed"))
	prover := NewProver(params, extEvals, gen, offset)
	if _, err := prover.CommitPhase(proverCh); err != nil {
		t.Fatalf("CommitPhase: %v", err)
	}
	if err := prover.QueryPhase(proverCh); err != nil {
		t.Fatalf("QueryPhase: %v", err)
	}

	proof := proverCh.GetProof()
	proof[0] ^= 0xFF // corrupt the first committed root

	verifierCh := channel.NewVerifierChannel([]byte("tamper-seed"), proof)
	verifier := NewVerifier(params, n, gen, offset)
	if err := verifier.CommitPhase(verifierCh); err != nil {
		t.Fatalf("verifier CommitPhase: %v", err)
	}
	ok, err := verifier.QueryPhase(verifierCh)
	if err != nil {
		return // a hard decode failure is an acceptable rejection too
	}
	if ok {
		t.Fatalf("expected tampered proof to fail verification")
	}
}
