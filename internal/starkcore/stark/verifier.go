package stark

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/vybium/starkcore/internal/starkcore/air"
	"github.com/vybium/starkcore/internal/starkcore/channel"
	"github.com/vybium/starkcore/internal/starkcore/domain"
	"github.com/vybium/starkcore/internal/starkcore/field"
	"github.com/vybium/starkcore/internal/starkcore/fri"
	"github.com/vybium/starkcore/internal/starkcore/merkletable"
)

// Verifier checks a proof produced by Prover.Prove against the same AIR and
// configuration.
type Verifier struct {
	computation air.AIR
	builder     *air.Builder
	cfg         Config
	dom         *domain.EvaluationDomain
}

// NewVerifier mirrors NewProver; the computation and builder must agree
// exactly with the ones the prover used.
func NewVerifier(cfg Config, computation air.AIR, builder *air.Builder) (*Verifier, error) {
	n := computation.TraceLength()
	k := computation.CompositionDegreeBound() / n
	if err := cfg.Validate(k, computation.CompositionDegreeBound()); err != nil {
		return nil, err
	}
	numCosets := uint64(1) << cfg.LogNCosets
	dom, err := domain.NewEvaluationDomain(n, numCosets)
	if err != nil {
		return nil, fmt.Errorf("stark: verifier: %w", err)
	}
	return &Verifier{computation: computation, builder: builder, cfg: cfg, dom: dom}, nil
}

func drawVerifierCoefficients(ch *channel.VerifierChannel, count uint64) ([]field.ExtFE, error) {
	out := make([]field.ExtFE, count)
	for i := range out {
		c, err := ch.GetAndSendRandomExtFieldElement()
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

// receiveRow reads nCols base-field elements followed by a pathLen-node
// authentication path off ch, mirroring the prover's per-query send order.
func receiveRow(ch *channel.VerifierChannel, nCols uint64, pathLen int) ([]field.BaseFE, merkletable.AuthPath, error) {
	row := make([]field.BaseFE, nCols)
	for i := range row {
		v, err := ch.ReceiveFieldElement()
		if err != nil {
			return nil, nil, err
		}
		row[i] = v
	}
	path := make(merkletable.AuthPath, pathLen)
	for i := range path {
		node, err := ch.ReceiveDecommitmentNode()
		if err != nil {
			return nil, nil, err
		}
		path[i] = node
	}
	return row, path, nil
}

// Verify checks proof and returns whether it is accepted. Soundness rests on
// three checks: the out-of-domain sample is internally consistent (the
// composition polynomial evaluated directly from the trace's sampled mask
// equals the value recombined from the broken composition trace's
// sub-polynomials), every sampled mask value's Frobenius conjugate matches
// what the trace's own Frobenius-shifted point produces (pinning the
// committed trace to the base field), and the random linear combination of
// the two OOD-pinning boundary compositions, recomputed at FRI's own query
// points from the trace and composition-trace decommitments, matches the
// layer-0 value FRI's low-degree test already certified.
func (v *Verifier) Verify(proof []byte) (bool, error) {
	n := v.computation.TraceLength()
	numCosets := v.dom.NumCosets()
	traceGen := v.dom.TraceGenerator()
	ch := channel.NewVerifierChannel(nil, proof)

	traceRoot, err := ch.ReceiveCommitmentHash()
	if err != nil {
		return false, err
	}
	coeffs1, err := drawVerifierCoefficients(ch, v.computation.NumRandomCoefficients())
	if err != nil {
		return false, err
	}
	cp1, err := v.builder.Build(traceGen, n, coeffs1)
	if err != nil {
		return false, err
	}

	compRoot, err := ch.ReceiveCommitmentHash()
	if err != nil {
		return false, err
	}

	z, err := ch.GetAndSendRandomExtFieldElement()
	if err != nil {
		return false, err
	}

	traceMask := v.computation.Mask()
	traceMaskVals := make([]field.ExtFE, len(traceMask))
	for i := range traceMaskVals {
		val, err := ch.ReceiveExtFieldElement()
		if err != nil {
			return false, err
		}
		traceMaskVals[i] = val
	}

	// Every distinct masked column must also match its Frobenius-conjugate
	// sample: gen^offset is a base-field element, so an honest base-field
	// column satisfies column(Frobenius(z)*gen^offset) ==
	// Frobenius(column(z*gen^offset)). A column with genuinely ExtFE
	// coefficients would fail this for some offset.
	reps := distinctMaskReps(traceMask)
	for _, repIdx := range reps {
		conjVal, err := ch.ReceiveExtFieldElement()
		if err != nil {
			return false, err
		}
		if !conjVal.Equal(traceMaskVals[repIdx].Frobenius()) {
			return false, nil
		}
	}
	log.Info().Int("distinct_columns", len(reps)).Msg("frobenius conjugate pins checked")

	subsAtZN := make([]field.ExtFE, numCosets)
	for i := range subsAtZN {
		val, err := ch.ReceiveExtFieldElement()
		if err != nil {
			return false, err
		}
		subsAtZN[i] = val
	}

	fromTrace := cp1.EvalAtPoint(z, traceMaskVals, nil)
	fromSubs := domain.EvalFromSamples(subsAtZN, z)
	if !fromTrace.Equal(fromSubs) {
		return false, nil
	}
	log.Info().Msg("out-of-domain sample consistent")

	traceConds := boundaryConditionsForMask(traceMask, traceMaskVals, traceGen, n, z)
	boundaryTrace := air.NewBoundaryAIR(n, v.computation.NumColumns(), traceConds, false)
	builderTrace := air.NewBuilder(boundaryTrace)
	rTrace, err := drawVerifierCoefficients(ch, boundaryTrace.NumRandomCoefficients())
	if err != nil {
		return false, err
	}
	cpTrace, err := builderTrace.Build(traceGen, n, rTrace)
	if err != nil {
		return false, err
	}

	zPowN := z.PowUint64(numCosets)
	compMask := compositionSubMask(int(numCosets))
	compConds := boundaryConditionsForMask(compMask, subsAtZN, traceGen, n, zPowN)
	boundaryComp := air.NewCompositionBoundaryAIR(n, numCosets, compConds)
	builderComp := air.NewBuilder(boundaryComp)
	rComp, err := drawVerifierCoefficients(ch, boundaryComp.NumRandomCoefficients())
	if err != nil {
		return false, err
	}
	cpComp, err := builderComp.Build(traceGen, n, rComp)
	if err != nil {
		return false, err
	}

	combineTrace, err := ch.GetAndSendRandomExtFieldElement()
	if err != nil {
		return false, err
	}
	combineComp, err := ch.GetAndSendRandomExtFieldElement()
	if err != nil {
		return false, err
	}

	gamma, err := field.GetSubGroupGenerator(numCosets * n)
	if err != nil {
		return false, fmt.Errorf("stark: verify: %w", err)
	}
	h := field.Generator()

	friVerifier := fri.NewVerifier(v.cfg.FRI, numCosets*n, gamma, h)
	if err := friVerifier.CommitPhase(ch); err != nil {
		return false, fmt.Errorf("stark: verify: fri commit: %w", err)
	}
	ok, err := friVerifier.QueryPhase(ch)
	if err != nil {
		return false, fmt.Errorf("stark: verify: fri query: %w", err)
	}
	if !ok {
		log.Info().Bool("accepted", false).Msg("fri query phase rejected")
		return false, nil
	}

	// Bind FRI's certified layer-0 oracle to the trace and composition-trace
	// commitments: decommit both tables at FRI's own query rows, then
	// reconstruct the combined round-2 composition independently at each
	// query point and check it against the value FRI already verified is
	// consistent with a low-degree polynomial. Without this, FRI's pass
	// alone would only prove *some* low-degree polynomial was committed as
	// layer 0, not that it was derived from the trace and composition-trace
	// commitments read above.
	queryIndices := friVerifier.QueryIndices()
	layer0Values := friVerifier.Layer0Values()
	rowOf, rows := queryGlobalRows(queryIndices, numCosets, n)

	traceBits := 0
	for s := numCosets * n; s > 1; s >>= 1 {
		traceBits++
	}

	traceVerifier := merkletable.NewTableVerifier(v.computation.NumColumns(), numCosets*n)
	traceVerifier.ReadCommitment(traceRoot)
	compVerifier := merkletable.NewTableVerifier(2*numCosets, numCosets*n)
	compVerifier.ReadCommitment(compRoot)

	traceRows := make(map[uint64][]field.BaseFE, len(rows))
	tracePaths := make(map[uint64]merkletable.AuthPath, len(rows))
	compRows := make(map[uint64][]field.BaseFE, len(rows))
	compPaths := make(map[uint64]merkletable.AuthPath, len(rows))
	for _, r := range rows {
		traceRow, tracePath, err := receiveRow(ch, v.computation.NumColumns(), traceBits)
		if err != nil {
			return false, err
		}
		traceRows[r] = traceRow
		tracePaths[r] = tracePath

		compRow, compPath, err := receiveRow(ch, 2*numCosets, traceBits)
		if err != nil {
			return false, err
		}
		compRows[r] = compRow
		compPaths[r] = compPath
	}

	traceOK, err := traceVerifier.VerifyDecommitment(traceRows, tracePaths)
	if err != nil {
		return false, err
	}
	if !traceOK {
		return false, nil
	}
	compOK, err := compVerifier.VerifyDecommitment(compRows, compPaths)
	if err != nil {
		return false, err
	}
	if !compOK {
		return false, nil
	}

	traceMaskCols := boundaryTrace.Mask()
	compMaskCols := boundaryComp.Mask()
	for _, q := range queryIndices {
		row := rowOf[q]
		coset := row / n
		pos := row % n
		x := field.FromBase(v.dom.ElementByIndex(coset, pos))

		traceRow := traceRows[row]
		neighbors := make([]field.ExtFE, len(traceMaskCols))
		for i, m := range traceMaskCols {
			neighbors[i] = field.FromBase(traceRow[m.Column])
		}

		compRow := compRows[row]
		compNeighbors := make([]field.ExtFE, len(compMaskCols))
		for i, m := range compMaskCols {
			compNeighbors[i] = field.ExtFE{A0: compRow[2*m.Column], A1: compRow[2*m.Column+1]}
		}

		outTrace := cpTrace.EvalAtPoint(x, neighbors, nil)
		outComp := cpComp.EvalAtPoint(x, nil, compNeighbors)
		merged := combineTrace.Mul(outTrace).Add(combineComp.Mul(outComp))

		want, has := layer0Values[q]
		if !has {
			return false, fmt.Errorf("stark: verify: no layer-0 value recorded for query %d", q)
		}
		if !merged.Equal(want) {
			log.Info().Bool("accepted", false).Msg("query-binding check failed")
			return false, nil
		}
	}

	log.Info().Bool("accepted", true).Int("rows", len(rows)).Msg("fri query phase and binding verified")
	return true, nil
}
