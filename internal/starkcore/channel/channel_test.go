package channel

import (
	"testing"

	"github.com/vybium/starkcore/internal/starkcore/field"
)

func TestProverVerifierDrawIdenticalChallenges(t *testing.T) {
	seed := []byte("test-seed")

	prover := NewProverChannel(seed)
	prover.SendFieldElement(field.BaseFEFromInt64(42))
	prover.SendCommitmentHash([32]byte{1, 2, 3})
	c1, err := prover.ReceiveFieldElement()
	if err != nil {
		t.Fatalf("prover ReceiveFieldElement: %v", err)
	}
	n1, err := prover.ReceiveNumber(1000)
	if err != nil {
		t.Fatalf("prover ReceiveNumber: %v", err)
	}
	proof := prover.GetProof()

	verifier := NewVerifierChannel(seed, proof)
	if _, err := verifier.ReceiveFieldElement(); err != nil {
		t.Fatalf("verifier ReceiveFieldElement: %v", err)
	}
	if _, err := verifier.ReceiveCommitmentHash(); err != nil {
		t.Fatalf("verifier ReceiveCommitmentHash: %v", err)
	}
	c2, err := verifier.GetAndSendRandomFieldElement()
	if err != nil {
		t.Fatalf("verifier GetAndSendRandomFieldElement: %v", err)
	}
	n2, err := verifier.GetAndSendRandomNumber(1000)
	if err != nil {
		t.Fatalf("verifier GetAndSendRandomNumber: %v", err)
	}

	if !c1.Equal(c2) {
		t.Fatalf("challenge mismatch: prover drew %s, verifier drew %s", c1, c2)
	}
	if n1 != n2 {
		t.Fatalf("number mismatch: prover drew %d, verifier drew %d", n1, n2)
	}
	if verifier.Remaining() != 0 {
		t.Fatalf("expected proof fully consumed, %d bytes remaining", verifier.Remaining())
	}
}

func TestTwoIdenticalTranscriptsProduceIdenticalProofs(t *testing.T) {
	run := func() []byte {
		c := NewProverChannel([]byte("seed"))
		c.SendFieldElement(field.BaseFEFromInt64(7))
		z, _ := c.ReceiveExtFieldElement()
		c.SendExtFieldElement(z)
		return c.GetProof()
	}
	if string(run()) != string(run()) {
		t.Fatalf("expected byte-identical proofs across runs")
	}
}

func TestReceiveAfterQueryPhaseFails(t *testing.T) {
	c := NewProverChannel([]byte("seed"))
	c.BeginQueryPhase()
	if _, err := c.ReceiveFieldElement(); err == nil {
		t.Fatalf("expected PhaseError after begin_query_phase")
	}
}

func TestReceiveNumberRejectsLargeUpperBound(t *testing.T) {
	c := NewProverChannel([]byte("seed"))
	if _, err := c.ReceiveNumber(1 << 48); err == nil {
		t.Fatalf("expected ConfigError for upper_bound >= 2^48")
	}
}

func TestProofOfWorkDeterministicAndVerifies(t *testing.T) {
	seed := []byte("pow-seed")
	nonce, err := powProve(seed, 8, 10)
	if err != nil {
		t.Fatalf("powProve: %v", err)
	}
	ok, err := powVerify(seed, 8, nonce)
	if err != nil {
		t.Fatalf("powVerify: %v", err)
	}
	if !ok {
		t.Fatalf("expected nonce to verify")
	}

	nonce2, err := powProve(seed, 8, 10)
	if err != nil {
		t.Fatalf("powProve (second run): %v", err)
	}
	if nonce != nonce2 {
		t.Fatalf("proof of work search is not deterministic: %d != %d", nonce, nonce2)
	}
}

func TestProofOfWorkZeroBitsIsNoOp(t *testing.T) {
	ok, err := powVerify([]byte("seed"), 0, 0)
	if err != nil {
		t.Fatalf("powVerify: %v", err)
	}
	if !ok {
		t.Fatalf("work_bits=0 must always verify")
	}
}

func TestAnnotationScopeReleasesOnExit(t *testing.T) {
	var a annotationStack
	release := a.scope("outer")
	inner := a.scope("inner")
	if a.String() != "outer/inner" {
		t.Fatalf("unexpected annotation stack: %q", a.String())
	}
	inner()
	if a.String() != "outer" {
		t.Fatalf("inner scope did not release: %q", a.String())
	}
	release()
	if a.String() != "" {
		t.Fatalf("outer scope did not release: %q", a.String())
	}
}
