package starkcore

import (
	"github.com/vybium/starkcore/internal/starkcore/air"
	"github.com/vybium/starkcore/internal/starkcore/field"
	"github.com/vybium/starkcore/internal/starkcore/fri"
	"github.com/vybium/starkcore/internal/starkcore/stark"
)

// AIR is the contract a computation's constraints must satisfy to be
// provable. See internal/starkcore/air.AIR for the full method contract.
type AIR = air.AIR

// BaseFE is an element of the system's prime field.
type BaseFE = field.BaseFE

// ExtFE is an element of the prime field's quadratic extension, the field
// Fiat-Shamir challenges and out-of-domain samples live in.
type ExtFE = field.ExtFE

// FRIParams configures the FRI low-degree test's folding schedule, last
// layer degree bound, query count, and proof-of-work difficulty.
type FRIParams = fri.Params

// Config bundles every option a proof run needs beyond the AIR itself.
type Config = stark.Config

// Witness is one evaluation slice per trace column, in natural row order.
type Witness = [][]field.BaseFE

// Proof is an opaque, self-contained proof transcript.
type Proof = []byte

// NewProver builds a prover for computation using builder's periodic
// columns, validated against cfg.
func NewProver(cfg Config, computation AIR, builder *air.Builder) (*Prover, error) {
	p, err := stark.NewProver(cfg, computation, builder)
	if err != nil {
		return nil, &ConfigError{Reason: err.Error()}
	}
	return &Prover{inner: p}, nil
}

// Prover wraps the internal orchestrator. Errors from Prove are returned as
// the orchestrator reports them, not mapped onto this package's error types.
type Prover struct {
	inner *stark.Prover
}

// Prove runs the full protocol over witness and returns the proof bytes.
func (p *Prover) Prove(witness Witness) (Proof, error) {
	proof, err := p.inner.Prove(witness)
	if err != nil {
		return nil, err
	}
	return proof, nil
}

// NewVerifier builds a verifier matching the prover's computation, builder,
// and configuration.
func NewVerifier(cfg Config, computation AIR, builder *air.Builder) (*Verifier, error) {
	v, err := stark.NewVerifier(cfg, computation, builder)
	if err != nil {
		return nil, &ConfigError{Reason: err.Error()}
	}
	return &Verifier{inner: v}, nil
}

// Verifier wraps the internal orchestrator behind the package's error
// taxonomy.
type Verifier struct {
	inner *stark.Verifier
}

// Verify reports whether proof is accepted for the verifier's computation
// and configuration.
func (v *Verifier) Verify(proof Proof) (bool, error) {
	ok, err := v.inner.Verify(proof)
	if err != nil {
		return false, &VerificationError{Reason: err.Error()}
	}
	return ok, nil
}
