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

// Prover runs the full non-interactive protocol for one AIR instance: commit
// the trace, build and commit a first composition round, sample it
// out-of-domain, build a second composition round pinning that sample, run
// FRI on the combined result, and finally decommit the trace and
// composition-trace tables at FRI's own query points so the low-degree test
// binds to what was actually committed, not an unrelated polynomial.
type Prover struct {
	computation air.AIR
	builder     *air.Builder
	cfg         Config
	dom         *domain.EvaluationDomain
}

// NewProver builds a Prover for computation, whose constraints builder has
// already registered every periodic column the AIR needs.
func NewProver(cfg Config, computation air.AIR, builder *air.Builder) (*Prover, error) {
	n := computation.TraceLength()
	k := computation.CompositionDegreeBound() / n
	if err := cfg.Validate(k, computation.CompositionDegreeBound()); err != nil {
		return nil, err
	}
	numCosets := uint64(1) << cfg.LogNCosets
	dom, err := domain.NewEvaluationDomain(n, numCosets)
	if err != nil {
		return nil, fmt.Errorf("stark: prover: %w", err)
	}
	return &Prover{computation: computation, builder: builder, cfg: cfg, dom: dom}, nil
}

func drawCoefficients(ch *channel.ProverChannel, count uint64) ([]field.ExtFE, error) {
	out := make([]field.ExtFE, count)
	for i := range out {
		c, err := ch.ReceiveExtFieldElement()
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

// buildBaseTable commits one Merkle table spanning every evaluation coset,
// row i*n+pos holding coset i's value at bit-reversed position pos across
// every column.
func buildBaseTable(perCosetCols [][][]field.BaseFE) (*merkletable.TableProver, [32]byte, error) {
	numCosets := len(perCosetCols)
	nCols := len(perCosetCols[0])
	n := len(perCosetCols[0][0])
	table := merkletable.NewTableProver(uint64(nCols))
	for i := 0; i < numCosets; i++ {
		rows := make([][]field.BaseFE, n)
		for pos := 0; pos < n; pos++ {
			row := make([]field.BaseFE, nCols)
			for c := 0; c < nCols; c++ {
				row[c] = perCosetCols[i][c][pos]
			}
			rows[pos] = row
		}
		if err := table.AddSegment(rows); err != nil {
			return nil, [32]byte{}, err
		}
	}
	root, err := table.Commit()
	return table, root, err
}

// buildCompositionTable mirrors buildBaseTable for the composition trace:
// compColsBitRev[coset][subColumn] holds that sub-polynomial's bit-reversed
// evaluations on the named coset, each ExtFE encoded as two BaseFE columns.
func buildCompositionTable(compColsBitRev [][][]field.ExtFE, numCosets, n uint64) (*merkletable.TableProver, [32]byte, error) {
	table := merkletable.NewTableProver(2 * numCosets)
	for i := uint64(0); i < numCosets; i++ {
		rows := make([][]field.BaseFE, n)
		for pos := uint64(0); pos < n; pos++ {
			row := make([]field.BaseFE, 0, 2*numCosets)
			for s := uint64(0); s < numCosets; s++ {
				v := compColsBitRev[i][s][pos]
				row = append(row, v.A0, v.A1)
			}
			rows[pos] = row
		}
		if err := table.AddSegment(rows); err != nil {
			return nil, [32]byte{}, err
		}
	}
	root, err := table.Commit()
	return table, root, err
}

// Prove runs the protocol against witness (one evaluation slice per column,
// on the trace domain in natural row order) and returns the proof bytes.
func (p *Prover) Prove(witness [][]field.BaseFE) ([]byte, error) {
	n := p.computation.TraceLength()
	numCosets := p.dom.NumCosets()
	traceGen := p.dom.TraceGenerator()
	ch := channel.NewProverChannel(nil)

	traceLde := domain.NewLDEManager(p.dom.TraceDomain(), false)
	for _, col := range witness {
		if _, err := traceLde.AddEvaluation(col); err != nil {
			return nil, fmt.Errorf("stark: prove: trace column: %w", err)
		}
	}

	perCosetTrace := make([][][]field.BaseFE, numCosets)
	for i := uint64(0); i < numCosets; i++ {
		cols, err := traceLde.EvalOnCoset(p.dom.CosetOffset(i))
		if err != nil {
			return nil, fmt.Errorf("stark: prove: trace LDE coset %d: %w", i, err)
		}
		perCosetTrace[i] = cols
	}

	traceTable, traceRoot, err := buildBaseTable(perCosetTrace)
	if err != nil {
		return nil, fmt.Errorf("stark: prove: commit trace: %w", err)
	}
	ch.SendCommitmentHash(traceRoot)
	log.Info().Uint64("trace_length", n).Uint64("num_cosets", numCosets).Msg("committed trace")

	coeffs1, err := drawCoefficients(ch, p.computation.NumRandomCoefficients())
	if err != nil {
		return nil, err
	}
	cp1, err := p.builder.Build(traceGen, n, coeffs1)
	if err != nil {
		return nil, fmt.Errorf("stark: prove: build composition: %w", err)
	}

	compEvals := make([][]field.ExtFE, numCosets)
	for i := uint64(0); i < numCosets; i++ {
		out := make([]field.ExtFE, n)
		if err := cp1.EvalOnCosetBitReversed(p.dom.CosetOffset(i), perCosetTrace[i], nil, out, p.cfg.ConstraintPolynomialTaskSize); err != nil {
			return nil, fmt.Errorf("stark: prove: evaluate composition coset %d: %w", i, err)
		}
		compEvals[i] = out
	}
	log.Info().Msg("evaluated composition polynomial")

	gamma, err := field.GetSubGroupGenerator(numCosets * n)
	if err != nil {
		return nil, fmt.Errorf("stark: prove: %w", err)
	}
	h := field.Generator()
	naturalBig := assembleBigNaturalOrder(compEvals)
	subsNatural, err := domain.Break(naturalBig, gamma, h, int(numCosets))
	if err != nil {
		return nil, fmt.Errorf("stark: prove: break composition: %w", err)
	}
	hPowN := h.PowUint64(numCosets)

	// subCoeffs recovers each sub-polynomial's coefficients once; compColsBitRev
	// re-evaluates every sub-polynomial on every evaluation coset (not just the
	// canonical one the breaker's own output lives on), so the composition
	// trace can be committed across the full domain FRI will query, exactly as
	// the trace table already is.
	subCoeffs := make([][]field.ExtFE, numCosets)
	for i := uint64(0); i < numCosets; i++ {
		subCoeffs[i] = domain.ExtCoeffs(subsNatural[i], traceGen, hPowN)
	}

	compColsBitRev := make([][][]field.ExtFE, numCosets)
	for i := uint64(0); i < numCosets; i++ {
		cols := make([][]field.ExtFE, numCosets)
		for s := uint64(0); s < numCosets; s++ {
			natEval := domain.ExtEval(subCoeffs[s], traceGen, p.dom.CosetOffset(i))
			br, err := toBitReversed(natEval)
			if err != nil {
				return nil, err
			}
			cols[s] = br
		}
		compColsBitRev[i] = cols
	}

	compTable, compRoot, err := buildCompositionTable(compColsBitRev, numCosets, n)
	if err != nil {
		return nil, fmt.Errorf("stark: prove: commit composition trace: %w", err)
	}
	ch.SendCommitmentHash(compRoot)
	log.Info().Uint64("num_sub_columns", numCosets).Msg("committed composition trace")

	z, err := ch.ReceiveExtFieldElement()
	if err != nil {
		return nil, err
	}

	traceMask := p.computation.Mask()
	traceMaskVals, err := sampleMask(traceMask, traceLde, traceGen, n, z)
	if err != nil {
		return nil, fmt.Errorf("stark: prove: sample trace mask: %w", err)
	}
	for _, v := range traceMaskVals {
		ch.SendExtFieldElement(v)
	}

	// For each distinct masked column, send its evaluation at the
	// Frobenius conjugate of the representative mask point. Since gen^offset
	// is a base-field element, Frobenius(z*gen^offset) == Frobenius(z)*gen^offset,
	// so an honest base-field-coefficient column satisfies
	// column(Frobenius(z)*gen^offset) == Frobenius(column(z*gen^offset));
	// this is what pins the committed trace to F_p rather than a general
	// ExtFE-valued substitute.
	reps := distinctMaskReps(traceMask)
	zBar := z.Frobenius()
	for _, repIdx := range reps {
		m := traceMask[repIdx]
		point := shiftedPoint(zBar, traceGen, m.RowOffset, n)
		vals, err := traceLde.EvalAtPoints(m.Column, []field.ExtFE{point})
		if err != nil {
			return nil, fmt.Errorf("stark: prove: sample frobenius conjugate: %w", err)
		}
		ch.SendExtFieldElement(vals[0])
	}
	log.Info().Int("distinct_columns", len(reps)).Msg("sent frobenius conjugate pins")

	zPowN := z.PowUint64(numCosets)
	subsAtZN := make([]field.ExtFE, numCosets)
	for i := uint64(0); i < numCosets; i++ {
		subsAtZN[i] = domain.ExtEvalAtPoint(subCoeffs[i], zPowN)
		ch.SendExtFieldElement(subsAtZN[i])
	}

	fromTrace := cp1.EvalAtPoint(z, traceMaskVals, nil)
	fromSubs := domain.EvalFromSamples(subsAtZN, z)
	if !fromTrace.Equal(fromSubs) {
		return nil, fmt.Errorf("stark: prove: out-of-domain consistency check failed")
	}
	log.Info().Msg("out-of-domain sample consistent")

	traceConds := boundaryConditionsForMask(traceMask, traceMaskVals, traceGen, n, z)
	boundaryTrace := air.NewBoundaryAIR(n, p.computation.NumColumns(), traceConds, false)
	builderTrace := air.NewBuilder(boundaryTrace)
	rTrace, err := drawCoefficients(ch, boundaryTrace.NumRandomCoefficients())
	if err != nil {
		return nil, err
	}
	cpTrace, err := builderTrace.Build(traceGen, n, rTrace)
	if err != nil {
		return nil, err
	}

	compMask := compositionSubMask(int(numCosets))
	compConds := boundaryConditionsForMask(compMask, subsAtZN, traceGen, n, zPowN)
	boundaryComp := air.NewCompositionBoundaryAIR(n, numCosets, compConds)
	builderComp := air.NewBuilder(boundaryComp)
	rComp, err := drawCoefficients(ch, boundaryComp.NumRandomCoefficients())
	if err != nil {
		return nil, err
	}
	cpComp, err := builderComp.Build(traceGen, n, rComp)
	if err != nil {
		return nil, err
	}

	combineTrace, err := ch.ReceiveExtFieldElement()
	if err != nil {
		return nil, err
	}
	combineComp, err := ch.ReceiveExtFieldElement()
	if err != nil {
		return nil, err
	}

	combined := make([][]field.ExtFE, numCosets)
	for i := uint64(0); i < numCosets; i++ {
		outTrace := make([]field.ExtFE, n)
		if err := cpTrace.EvalOnCosetBitReversed(p.dom.CosetOffset(i), perCosetTrace[i], nil, outTrace, p.cfg.ConstraintPolynomialTaskSize); err != nil {
			return nil, err
		}
		outComp := make([]field.ExtFE, n)
		if err := cpComp.EvalOnCosetBitReversed(p.dom.CosetOffset(i), nil, compColsBitRev[i], outComp, p.cfg.ConstraintPolynomialTaskSize); err != nil {
			return nil, err
		}

		merged := make([]field.ExtFE, n)
		for j := range merged {
			merged[j] = combineTrace.Mul(outTrace[j]).Add(combineComp.Mul(outComp[j]))
		}
		combined[i] = merged
	}

	combinedNatural := assembleBigNaturalOrder(combined)
	layer0, err := toBitReversed(combinedNatural)
	if err != nil {
		return nil, err
	}

	friProver := fri.NewProver(p.cfg.FRI, layer0, gamma, h)
	if _, err := friProver.CommitPhase(ch); err != nil {
		return nil, fmt.Errorf("stark: prove: fri commit: %w", err)
	}
	log.Info().Msg("fri commit phase done")
	if err := friProver.QueryPhase(ch); err != nil {
		return nil, fmt.Errorf("stark: prove: fri query: %w", err)
	}
	log.Info().Msg("fri query phase done")

	// Bind FRI's layer-0 oracle to the trace and composition-trace
	// commitments: decommit both tables at exactly the rows FRI's own
	// queries touched, so the verifier can recompute the combined
	// composition at those points independently and check it against the
	// value FRI already certified as low-degree.
	_, rows := queryGlobalRows(friProver.QueryIndices(), numCosets, n)
	tracePaths, err := traceTable.Decommit(rows)
	if err != nil {
		return nil, fmt.Errorf("stark: prove: decommit trace binding: %w", err)
	}
	compPaths, err := compTable.Decommit(rows)
	if err != nil {
		return nil, fmt.Errorf("stark: prove: decommit composition binding: %w", err)
	}
	for _, r := range rows {
		coset := r / n
		pos := r % n
		for _, col := range perCosetTrace[coset] {
			ch.SendFieldElement(col[pos])
		}
		for _, node := range tracePaths[r] {
			ch.SendDecommitmentNode(node)
		}
		for s := uint64(0); s < numCosets; s++ {
			v := compColsBitRev[coset][s][pos]
			ch.SendFieldElement(v.A0)
			ch.SendFieldElement(v.A1)
		}
		for _, node := range compPaths[r] {
			ch.SendDecommitmentNode(node)
		}
	}
	log.Info().Int("rows", len(rows)).Msg("sent query-binding decommitments")

	return ch.GetProof(), nil
}
