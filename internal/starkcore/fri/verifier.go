package fri

import (
	"fmt"
	"sort"

	"github.com/vybium/starkcore/internal/starkcore/channel"
	"github.com/vybium/starkcore/internal/starkcore/fft"
	"github.com/vybium/starkcore/internal/starkcore/field"
	"github.com/vybium/starkcore/internal/starkcore/merkletable"
)

// layerInfo is the verifier's bookkeeping for one commit-phase layer: its
// coset description, the table shape the prover committed, and the folding
// challenge drawn for it.
type layerInfo struct {
	gen, offset field.BaseFE
	size        uint64 // number of elements at this layer
	step        int    // fold step from this layer to the next (0 for the last layer)
	root        [32]byte
	alpha       field.ExtFE
}

// Verifier checks a FRI proof read from a VerifierChannel.
type Verifier struct {
	params       Params
	layer0Size   uint64
	layers       []layerInfo
	lastCoeffs   []field.ExtFE
	queryIndices []uint64
	layer0Values map[uint64]field.ExtFE
}

// NewVerifier starts a FRI verifier expecting layer 0 to have layer0Size
// elements sampled over the coset offset0*<gen0>.
func NewVerifier(params Params, layer0Size uint64, gen0, offset0 field.BaseFE) *Verifier {
	v := &Verifier{params: params, layer0Size: layer0Size}
	v.layers = append(v.layers, layerInfo{gen: gen0, offset: offset0, size: layer0Size})
	return v
}

// CommitPhase reads every intermediate layer's root and folding challenge,
// plus the last layer's coefficients, validating the last layer's degree.
func (v *Verifier) CommitPhase(ch *channel.VerifierChannel) error {
	for i := 0; i < v.params.NumLayers(); i++ {
		step := v.params.FriStepList[i+1]
		root, err := ch.ReceiveCommitmentHash()
		if err != nil {
			return err
		}
		alpha, err := ch.GetAndSendRandomExtFieldElement()
		if err != nil {
			return err
		}
		v.layers[i].step = step
		v.layers[i].root = root
		v.layers[i].alpha = alpha

		cur := v.layers[i]
		miniSize := uint64(1) << step
		nextSize := cur.size / miniSize
		nextGen := cur.gen.PowUint64(miniSize)
		nextOffset := cur.offset.PowUint64(miniSize)
		v.layers = append(v.layers, layerInfo{gen: nextGen, offset: nextOffset, size: nextSize})
	}

	last := v.layers[len(v.layers)-1]
	coeffs := make([]field.ExtFE, v.params.LastLayerDegreeBound)
	for i := range coeffs {
		c, err := ch.ReceiveExtFieldElement()
		if err != nil {
			return err
		}
		coeffs[i] = c
	}
	if uint64(len(coeffs)) > last.size {
		return fmt.Errorf("fri: last layer degree bound %d exceeds last layer size %d", len(coeffs), last.size)
	}
	v.lastCoeffs = coeffs
	return nil
}

// lastLayerEval evaluates the committed last-layer polynomial at the point x
// of its own coset.
func (v *Verifier) lastLayerEval(x field.ExtFE) field.ExtFE {
	return evalPolyAt(v.lastCoeffs, x)
}

// QueryPhase verifies Proof-of-Work, draws params.NumQueries layer-0 query
// indices, and checks every layer's decommitment folds consistently into
// the next, down to the last layer's committed polynomial.
func (v *Verifier) QueryPhase(ch *channel.VerifierChannel) (bool, error) {
	if err := ch.ApplyProofOfWork(v.params.ProofOfWorkBits); err != nil {
		return false, err
	}

	queries := make([]uint64, v.params.NumQueries)
	for i := range queries {
		q, err := ch.GetAndSendRandomNumber(v.layer0Size)
		if err != nil {
			return false, err
		}
		queries[i] = q
	}
	v.queryIndices = append([]uint64(nil), queries...)

	ch.BeginQueryPhase()

	// expected[q] carries the value the previous layer's fold computed for
	// query index q in the current layer; nil until the first fold.
	expected := make(map[uint64]field.ExtFE)

	for i := 0; i < v.params.NumLayers(); i++ {
		info := v.layers[i]
		step := info.step
		miniSize := uint64(1) << step

		blocks := make(map[uint64]struct{})
		for _, q := range queries {
			b, _ := blockOf(q, step)
			blocks[b] = struct{}{}
		}
		sortedBlocks := make([]uint64, 0, len(blocks))
		for b := range blocks {
			sortedBlocks = append(sortedBlocks, b)
		}
		sort.Slice(sortedBlocks, func(x, y int) bool { return sortedBlocks[x] < sortedBlocks[y] })

		verifier := merkletable.NewTableVerifier(2*miniSize, info.size/miniSize)
		verifier.ReadCommitment(info.root)

		rowValues := make(map[uint64][]field.BaseFE, len(sortedBlocks))
		paths := make(map[uint64]merkletable.AuthPath, len(sortedBlocks))
		blockElems := make(map[uint64][]field.ExtFE, len(sortedBlocks))
		for _, b := range sortedBlocks {
			row := make([]field.BaseFE, 2*miniSize)
			for j := range row {
				val, err := ch.ReceiveFieldElement()
				if err != nil {
					return false, err
				}
				row[j] = val
			}
			path := make(merkletable.AuthPath, 0)
			pathLen := fft.Log2(int(info.size / miniSize))
			for k := 0; k < pathLen; k++ {
				node, err := ch.ReceiveDecommitmentNode()
				if err != nil {
					return false, err
				}
				path = append(path, node)
			}
			rowValues[b] = row
			paths[b] = path
			blockElems[b] = blockFromRow(row)
		}

		ok, err := verifier.VerifyDecommitment(rowValues, paths)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}

		if i == 0 {
			v.layer0Values = make(map[uint64]field.ExtFE, len(queries))
			for _, q := range queries {
				b, pos := blockOf(q, step)
				v.layer0Values[q] = blockElems[b][pos]
			}
		}

		for _, q := range queries {
			b, pos := blockOf(q, step)
			block := blockElems[b]
			if prior, has := expected[q]; has {
				if !block[pos].Equal(prior) {
					return false, nil
				}
			}
			numBlocks := info.size / miniSize
			folded, err := foldBlockAt(block, info.gen, info.offset, b, numBlocks, info.alpha)
			if err != nil {
				return false, err
			}
			nextBits := uint(fft.Log2(int(info.size / miniSize)))
			nextIdx := fft.BitReverse(b, nextBits)
			expected[nextIdx] = folded
		}

		for idx, q := range queries {
			b, _ := blockOf(q, step)
			nextBits := uint(fft.Log2(int(info.size / miniSize)))
			queries[idx] = fft.BitReverse(b, nextBits)
		}
	}

	last := v.layers[len(v.layers)-1]
	lastBits := uint(fft.Log2(int(last.size)))
	for _, q := range queries {
		natIdx := fft.BitReverse(q, lastBits)
		x := field.FromBase(last.offset.Mul(last.gen.PowUint64(natIdx)))
		want := v.lastLayerEval(x)
		got, has := expected[q]
		if !has {
			return false, fmt.Errorf("fri: no folded value reached the last layer for query %d", q)
		}
		if !got.Equal(want) {
			return false, nil
		}
	}

	return true, nil
}

// QueryIndices returns the layer-0 query indices drawn during QueryPhase,
// mirroring Prover.QueryIndices. Valid only after QueryPhase returns.
func (v *Verifier) QueryIndices() []uint64 {
	return v.queryIndices
}

// Layer0Values returns, after QueryPhase, the decommitted layer-0 evaluation
// for each drawn query index. A caller binding FRI's low-degree test to an
// external commitment reconstructs the expected layer-0 value independently
// and checks it against this map.
func (v *Verifier) Layer0Values() map[uint64]field.ExtFE {
	return v.layer0Values
}

// foldBlockAt folds the single mini-coset block at block index b (an
// already-materialized contiguous run of the layer, as decommitted),
// reconstructing the same per-block sub-coset generator and offset
// foldLayer derives from the full layer's coset description.
func foldBlockAt(block []field.ExtFE, gen, offset field.BaseFE, b, numBlocks uint64, alpha field.ExtFE) (field.ExtFE, error) {
	miniGen := gen.PowUint64(numBlocks)
	miniOffset := offset.Mul(gen.PowUint64(b))
	coeffs, err := extIfftReverseToNatural(block, miniGen, miniOffset)
	if err != nil {
		return field.ExtFE{}, err
	}
	return evalPolyAt(coeffs, alpha), nil
}
