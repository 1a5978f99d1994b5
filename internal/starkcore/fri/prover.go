package fri

import (
	"fmt"
	"sort"

	"github.com/vybium/starkcore/internal/starkcore/channel"
	"github.com/vybium/starkcore/internal/starkcore/fft"
	"github.com/vybium/starkcore/internal/starkcore/field"
	"github.com/vybium/starkcore/internal/starkcore/merkletable"
)

// layer holds one commit-phase round's bit-reversed evaluations together
// with the coset they were sampled over.
type layer struct {
	evals  []field.ExtFE
	gen    field.BaseFE
	offset field.BaseFE
}

// rowFromBlock encodes a contiguous block of extension-field evaluations as
// a Merkle table row: A0 and A1 interleaved per element, so the table
// package never has to know about ExtFE.
func rowFromBlock(block []field.ExtFE) []field.BaseFE {
	row := make([]field.BaseFE, 0, 2*len(block))
	for _, v := range block {
		row = append(row, v.A0, v.A1)
	}
	return row
}

func blockFromRow(row []field.BaseFE) []field.ExtFE {
	block := make([]field.ExtFE, len(row)/2)
	for i := range block {
		block[i] = field.ExtFE{A0: row[2*i], A1: row[2*i+1]}
	}
	return block
}

// Prover runs the FRI commit and query phases against a ProverChannel.
type Prover struct {
	params       Params
	layers       []layer
	queryIndices []uint64
}

// NewProver starts a FRI prover over the layer-0 evaluations (typically the
// composition polynomial's evaluations on the full evaluation domain, in
// bit-reversed order) sampled over the coset offset*<gen>.
func NewProver(params Params, evals0 []field.ExtFE, gen0, offset0 field.BaseFE) *Prover {
	return &Prover{
		params: params,
		layers: []layer{{evals: evals0, gen: gen0, offset: offset0}},
	}
}

// CommitPhase folds layer 0 down through every step in params.FriStepList,
// committing each intermediate layer and sending the final layer's
// coefficients, drawing one folding challenge per layer from ch.
func (p *Prover) CommitPhase(ch *channel.ProverChannel) ([][32]byte, error) {
	var roots [][32]byte
	for i := 0; i < p.params.NumLayers(); i++ {
		step := p.params.FriStepList[i+1]
		cur := p.layers[i]
		miniSize := 1 << step
		if len(cur.evals)%miniSize != 0 {
			return nil, fmt.Errorf("fri: layer %d size %d not divisible by mini-coset size %d", i, len(cur.evals), miniSize)
		}

		prover := merkletable.NewTableProver(uint64(2 * miniSize))
		numBlocks := len(cur.evals) / miniSize
		rows := make([][]field.BaseFE, numBlocks)
		for b := 0; b < numBlocks; b++ {
			rows[b] = rowFromBlock(cur.evals[b*miniSize : (b+1)*miniSize])
		}
		if err := prover.AddSegment(rows); err != nil {
			return nil, err
		}
		root, err := prover.Commit()
		if err != nil {
			return nil, fmt.Errorf("fri: commit layer %d: %w", i, err)
		}
		ch.SendCommitmentHash(root)
		roots = append(roots, root)

		alpha, err := ch.ReceiveExtFieldElement()
		if err != nil {
			return nil, err
		}

		next, err := foldLayer(cur.evals, cur.gen, cur.offset, step, alpha)
		if err != nil {
			return nil, fmt.Errorf("fri: fold layer %d: %w", i, err)
		}
		nextGen := cur.gen.PowUint64(uint64(miniSize))
		nextOffset := cur.offset.PowUint64(uint64(miniSize))
		p.layers = append(p.layers, layer{evals: next, gen: nextGen, offset: nextOffset})
	}

	last := p.layers[len(p.layers)-1]
	coeffs, err := extIfftReverseToNatural(last.evals, last.gen, last.offset)
	if err != nil {
		return nil, fmt.Errorf("fri: last layer interpolation: %w", err)
	}
	for d := p.params.LastLayerDegreeBound; d < uint64(len(coeffs)); d++ {
		if !coeffs[d].IsZero() {
			return nil, fmt.Errorf("fri: last layer degree exceeds bound %d", p.params.LastLayerDegreeBound)
		}
	}
	coeffs = coeffs[:p.params.LastLayerDegreeBound]
	for _, c := range coeffs {
		ch.SendExtFieldElement(c)
	}

	return roots, nil
}

// QueryPhase runs Proof-of-Work, draws params.NumQueries layer-0 query
// indices, and decommits every layer's relevant row for each query.
func (p *Prover) QueryPhase(ch *channel.ProverChannel) error {
	if _, err := ch.ApplyProofOfWork(p.params.ProofOfWorkBits); err != nil {
		return err
	}

	n0 := uint64(len(p.layers[0].evals))
	queries := make([]uint64, p.params.NumQueries)
	for i := range queries {
		q, err := ch.ReceiveNumber(n0)
		if err != nil {
			return err
		}
		queries[i] = q
	}
	p.queryIndices = append([]uint64(nil), queries...)

	ch.BeginQueryPhase()

	for i := 0; i < p.params.NumLayers(); i++ {
		step := p.params.FriStepList[i+1]
		miniSize := uint64(1) << step
		cur := p.layers[i]
		numBlocks := uint64(len(cur.evals)) / miniSize

		blocks := make(map[uint64]struct{})
		for _, q := range queries {
			b, _ := blockOf(q, step)
			blocks[b] = struct{}{}
		}

		prover := merkletable.NewTableProver(uint64(2 * miniSize))
		rows := make([][]field.BaseFE, numBlocks)
		for b := uint64(0); b < numBlocks; b++ {
			rows[b] = rowFromBlock(cur.evals[b*miniSize : (b+1)*miniSize])
		}
		if err := prover.AddSegment(rows); err != nil {
			return err
		}
		if _, err := prover.Commit(); err != nil {
			return err
		}

		sortedBlocks := make([]uint64, 0, len(blocks))
		for b := range blocks {
			sortedBlocks = append(sortedBlocks, b)
		}
		sort.Slice(sortedBlocks, func(x, y int) bool { return sortedBlocks[x] < sortedBlocks[y] })
		paths, err := prover.Decommit(sortedBlocks)
		if err != nil {
			return err
		}
		for _, b := range sortedBlocks {
			for _, v := range rows[b] {
				ch.SendFieldElement(v)
			}
			for _, node := range paths[b] {
				ch.SendDecommitmentNode(node)
			}
		}

		for idx, q := range queries {
			b, _ := blockOf(q, step)
			nextBits := fft.Log2(int(uint64(len(p.layers[i+1].evals))))
			queries[idx] = fft.BitReverse(b, uint(nextBits))
		}
	}

	return nil
}

// QueryIndices returns the layer-0 query indices drawn during QueryPhase, in
// the layer's bit-reversed storage order. Valid only after QueryPhase
// returns. A caller that needs FRI's low-degree test to certify more than
// fold self-consistency — e.g. binding layer 0 to an external commitment —
// decommits matching rows from those same indices over the same channel,
// after QueryPhase.
func (p *Prover) QueryIndices() []uint64 {
	return p.queryIndices
}
