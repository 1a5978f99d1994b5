// Package starkcore is the public facade over a non-interactive STARK
// prover and verifier: supply a computation as an air.AIR, a witness trace,
// and a Config, and get back a proof or a verification result.
//
// # Quick start
//
//	builder := air.NewBuilder(computation)
//	cfg := starkcore.Config{LogNCosets: 3, FRI: friParams, ConstraintPolynomialTaskSize: 1024}
//
//	prover, err := starkcore.NewProver(cfg, computation, builder)
//	proof, err := prover.Prove(witness)
//
//	verifier, err := starkcore.NewVerifier(cfg, computation, builder)
//	ok, err := verifier.Verify(proof)
//
// # Architecture
//
//   - pkg/starkcore: this package, the stable public surface
//   - internal/starkcore/air: the AIR contract and composition polynomial
//   - internal/starkcore/domain: evaluation domains, LDE, the polynomial breaker
//   - internal/starkcore/merkletable: the table commitment scheme
//   - internal/starkcore/channel: the Fiat-Shamir transcript
//   - internal/starkcore/fri: the FRI low-degree test
//   - internal/starkcore/stark: the prover/verifier orchestrator
//
// Everything under internal/ may change shape without notice; only this
// package and the types it re-exports are a stable surface.
package starkcore
