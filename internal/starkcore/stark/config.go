// Package stark ties the evaluation-domain, composition-polynomial,
// Merkle-table, channel, and FRI packages into the full non-interactive
// STARK prover/verifier protocol.
package stark

import (
	"fmt"

	"github.com/vybium/starkcore/internal/starkcore/fft"
	"github.com/vybium/starkcore/internal/starkcore/fri"
)

// maxLogNCosets bounds the evaluation-domain blowup the orchestrator will
// accept; chosen, like the field's 2-Sylow subgroup, to comfortably exceed
// any blowup a realistic AIR's constraint degree demands.
const maxLogNCosets = 10

// Config bundles every option the orchestrator's prover and verifier read.
// It targets 128-bit soundness as a documented convention: callers choosing
// LogNCosets, FRI.NumQueries and FRI.ProofOfWorkBits should aim for
// LogNCosets + FRI.NumQueries + FRI.ProofOfWorkBits to comfortably exceed
// 128, though Validate does not compute or enforce that bound itself.
type Config struct {
	LogNCosets                   uint64
	FRI                          fri.Params
	ConstraintPolynomialTaskSize int
}

// Validate checks Config against a constraint degree k (composition_degree_bound
// / trace_length) and the composition oracle's actual degree bound, per the
// error taxonomy's ConfigError kind.
func (c Config) Validate(constraintDegree, compositionDegreeBound uint64) error {
	if c.LogNCosets > maxLogNCosets {
		return fmt.Errorf("stark: config: log_n_cosets %d exceeds %d", c.LogNCosets, maxLogNCosets)
	}
	minLog := fft.Log2(int(nextPowerOfTwo(constraintDegree)))
	if minLog < 0 {
		return fmt.Errorf("stark: config: constraint degree %d is not a positive power of two", constraintDegree)
	}
	if int(c.LogNCosets) < minLog {
		return fmt.Errorf("stark: config: log_n_cosets %d is below the constraint degree's minimum %d", c.LogNCosets, minLog)
	}
	if err := c.FRI.Validate(compositionDegreeBound); err != nil {
		return fmt.Errorf("stark: config: %w", err)
	}
	if c.ConstraintPolynomialTaskSize <= 0 {
		return fmt.Errorf("stark: config: constraint_polynomial_task_size must be positive")
	}
	return nil
}

func nextPowerOfTwo(n uint64) uint64 {
	if n == 0 {
		return 1
	}
	p := uint64(1)
	for p < n {
		p <<= 1
	}
	return p
}
