// Package fri implements the FRI (Fast Reed-Solomon Interactive-Oracle-Proof
// of Proximity) low-degree test: the recursive folding commit phase, the
// query phase that ties queries across layers to their Merkle
// decommitments, and the last-layer polynomial check.
package fri

import "fmt"

// Params bundles FRI's four configuration options.
type Params struct {
	// FriStepList holds one entry per layer boundary; FriStepList[0] is
	// conventionally 0 (layer 0 is not itself the output of a fold).
	// Folding from layer i to layer i+1 uses step FriStepList[i+1].
	FriStepList         []int
	LastLayerDegreeBound uint64
	NumQueries           int
	ProofOfWorkBits      uint32
}

// NumLayers returns how many fold steps the commit phase performs.
func (p Params) NumLayers() int { return len(p.FriStepList) - 1 }

// Validate checks the step list shape and the expected-degree-bound
// invariant against a composition oracle's actual degree bound.
func (p Params) Validate(compositionDegreeBound uint64) error {
	if len(p.FriStepList) < 1 {
		return fmt.Errorf("fri: fri_step_list must have at least one entry")
	}
	if p.FriStepList[0] < 0 {
		return fmt.Errorf("fri: fri_step_list[0] must be >= 0")
	}
	expected := p.LastLayerDegreeBound
	for i := 1; i < len(p.FriStepList); i++ {
		if p.FriStepList[i] < 1 {
			return fmt.Errorf("fri: fri_step_list[%d] must be >= 1", i)
		}
		expected <<= uint(p.FriStepList[i])
	}
	if expected != compositionDegreeBound {
		return fmt.Errorf("fri: expected_degree_bound %d != composition degree bound %d", expected, compositionDegreeBound)
	}
	if p.NumQueries <= 0 {
		return fmt.Errorf("fri: n_queries must be positive")
	}
	if p.ProofOfWorkBits > 40 {
		return fmt.Errorf("fri: proof_of_work_bits %d exceeds 40", p.ProofOfWorkBits)
	}
	return nil
}
