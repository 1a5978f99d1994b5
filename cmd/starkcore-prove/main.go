// Command starkcore-prove is a CLI front end for the boundary-condition AIR
// in internal/starkcore/air: it proves a witness read from a
// JSON file against a Config read from another, and verifies proofs the
// same way.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/vybium/starkcore/internal/starkcore/air"
	"github.com/vybium/starkcore/internal/starkcore/field"
	starkcore "github.com/vybium/starkcore/pkg/starkcore"
)

// fileConfig is Config's JSON-on-disk shape: the ambient stack's config
// layer is encoding/json, per this system's documented choice to carry no
// config library the example corpus never reaches for either.
type fileConfig struct {
	LogNCosets                   uint64 `json:"log_n_cosets"`
	FriStepList                  []int  `json:"fri_step_list"`
	LastLayerDegreeBound         uint64 `json:"last_layer_degree_bound"`
	NumQueries                   int    `json:"num_queries"`
	ProofOfWorkBits              uint32 `json:"proof_of_work_bits"`
	ConstraintPolynomialTaskSize int    `json:"constraint_polynomial_task_size"`
}

func (fc fileConfig) toConfig() starkcore.Config {
	return starkcore.Config{
		LogNCosets: fc.LogNCosets,
		FRI: starkcore.FRIParams{
			FriStepList:          fc.FriStepList,
			LastLayerDegreeBound: fc.LastLayerDegreeBound,
			NumQueries:           fc.NumQueries,
			ProofOfWorkBits:      fc.ProofOfWorkBits,
		},
		ConstraintPolynomialTaskSize: fc.ConstraintPolynomialTaskSize,
	}
}

func loadConfig(path string) (starkcore.Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return starkcore.Config{}, err
	}
	var fc fileConfig
	if err := json.Unmarshal(b, &fc); err != nil {
		return starkcore.Config{}, err
	}
	return fc.toConfig(), nil
}

// loadWitness reads a JSON array of columns, each an array of JSON integers
// (int64), into trace-domain BaseFE evaluations.
func loadWitness(path string) ([][]field.BaseFE, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw [][]int64
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, err
	}
	out := make([][]field.BaseFE, len(raw))
	for i, col := range raw {
		out[i] = make([]field.BaseFE, len(col))
		for j, v := range col {
			out[i][j] = field.BaseFEFromInt64(v)
		}
	}
	return out, nil
}

// boundaryComputation builds the demonstration AIR: one pinned cell on
// column 0, row 0, at the value the witness's own first row holds.
func boundaryComputation(witness [][]field.BaseFE) (*air.BoundaryAIR, *air.Builder) {
	n := uint64(len(witness[0]))
	cond := air.BoundaryCondition{
		Column: 0,
		X:      field.FromBase(field.One()),
		Y:      field.FromBase(witness[0][0]),
	}
	computation := air.NewBoundaryAIR(n, uint64(len(witness)), []air.BoundaryCondition{cond}, false)
	return computation, air.NewBuilder(computation)
}

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var configPath, witnessPath, proofPath string

	root := &cobra.Command{
		Use:   "starkcore-prove",
		Short: "Prove and verify boundary-condition claims over the STARK core",
	}

	proveCmd := &cobra.Command{
		Use:   "prove",
		Short: "Generate a proof from a witness file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			witness, err := loadWitness(witnessPath)
			if err != nil {
				return fmt.Errorf("load witness: %w", err)
			}
			computation, builder := boundaryComputation(witness)
			prover, err := starkcore.NewProver(cfg, computation, builder)
			if err != nil {
				return fmt.Errorf("new prover: %w", err)
			}
			proof, err := prover.Prove(witness)
			if err != nil {
				return fmt.Errorf("prove: %w", err)
			}
			if err := os.WriteFile(proofPath, proof, 0o644); err != nil {
				return fmt.Errorf("write proof: %w", err)
			}
			log.Info().Str("proof_path", proofPath).Int("proof_bytes", len(proof)).Msg("proof written")
			return nil
		},
	}
	proveCmd.Flags().StringVar(&configPath, "config", "config.json", "path to a Config JSON file")
	proveCmd.Flags().StringVar(&witnessPath, "witness", "witness.json", "path to a witness JSON file")
	proveCmd.Flags().StringVar(&proofPath, "out", "proof.bin", "path to write the proof to")

	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a proof file against a witness file's shape",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			witness, err := loadWitness(witnessPath)
			if err != nil {
				return fmt.Errorf("load witness: %w", err)
			}
			proof, err := os.ReadFile(proofPath)
			if err != nil {
				return fmt.Errorf("read proof: %w", err)
			}
			computation, builder := boundaryComputation(witness)
			verifier, err := starkcore.NewVerifier(cfg, computation, builder)
			if err != nil {
				return fmt.Errorf("new verifier: %w", err)
			}
			ok, err := verifier.Verify(proof)
			if err != nil {
				return fmt.Errorf("verify: %w", err)
			}
			log.Info().Bool("accepted", ok).Msg("verification complete")
			if !ok {
				os.Exit(1)
			}
			return nil
		},
	}
	verifyCmd.Flags().StringVar(&configPath, "config", "config.json", "path to a Config JSON file")
	verifyCmd.Flags().StringVar(&witnessPath, "witness", "witness.json", "path to the witness JSON file the proof claims")
	verifyCmd.Flags().StringVar(&proofPath, "proof", "proof.bin", "path to the proof file")

	root.AddCommand(proveCmd, verifyCmd)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
