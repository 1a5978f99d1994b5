package air

import (
	"golang.org/x/sync/errgroup"

	"github.com/vybium/starkcore/internal/starkcore/domain"
	"github.com/vybium/starkcore/internal/starkcore/fft"
	"github.com/vybium/starkcore/internal/starkcore/field"
)

// Builder accumulates the periodic columns a composition polynomial needs
// before Build freezes the random coefficients and domain parameters it
// will be evaluated against.
type Builder struct {
	air             AIR
	periodicColumns []*domain.PeriodicColumn
}

// NewBuilder starts a composition polynomial builder for the given AIR.
func NewBuilder(a AIR) *Builder {
	return &Builder{air: a}
}

// AddPeriodicColumn registers one periodic column, in the order the AIR's
// ConstraintsEval expects to see them in periodicColumns.
func (b *Builder) AddPeriodicColumn(col *domain.PeriodicColumn) *Builder {
	b.periodicColumns = append(b.periodicColumns, col)
	return b
}

// Build finalizes a CompositionPolynomial. len(randomCoefficients) must
// equal air.NumRandomCoefficients(); pointExponents and shifts are taken
// from the AIR itself.
func (b *Builder) Build(
	traceGenerator field.BaseFE,
	cosetSize uint64,
	randomCoefficients []field.ExtFE,
) (*CompositionPolynomial, error) {
	want := b.air.NumRandomCoefficients()
	if uint64(len(randomCoefficients)) != want {
		return nil, &ShapeMismatchError{What: "random_coefficients", Got: len(randomCoefficients), Want: int(want)}
	}
	return &CompositionPolynomial{
		air:                b.air,
		periodicColumns:    b.periodicColumns,
		traceGenerator:     traceGenerator,
		cosetSize:          cosetSize,
		randomCoefficients: randomCoefficients,
		pointExponents:     b.air.PointExponents(),
		shifts:             b.air.Shifts(),
	}, nil
}

// CompositionPolynomial evaluates Sum_i (c_2i + c_2i+1*x^n_i) * f_i(...) *
// P_i(x)/Q_i(x) at a point or across an entire coset, delegating the actual
// per-constraint algebra to the underlying AIR's ConstraintsEval.
type CompositionPolynomial struct {
	air                AIR
	periodicColumns    []*domain.PeriodicColumn
	traceGenerator     field.BaseFE
	cosetSize          uint64
	randomCoefficients []field.ExtFE
	pointExponents     []uint64
	shifts             []field.BaseFE
}

// DegreeBound returns the AIR's composition degree bound.
func (c *CompositionPolynomial) DegreeBound() uint64 { return c.air.CompositionDegreeBound() }

func (c *CompositionPolynomial) pointPowers(point field.ExtFE) []field.ExtFE {
	out := make([]field.ExtFE, len(c.pointExponents))
	for i, e := range c.pointExponents {
		out[i] = point.PowUint64(e)
	}
	return out
}

func (c *CompositionPolynomial) periodicValues(point field.ExtFE) []field.ExtFE {
	out := make([]field.ExtFE, len(c.periodicColumns))
	for i, pc := range c.periodicColumns {
		out[i] = pc.EvalAtPoint(point)
	}
	return out
}

// EvalAtPoint evaluates the composition polynomial at a single point, given
// the trace's (and, on the second round, the composition trace's) values at
// the AIR's mask-selected neighboring cells.
func (c *CompositionPolynomial) EvalAtPoint(point field.ExtFE, neighbors, compositionNeighbors []field.ExtFE) field.ExtFE {
	return c.air.ConstraintsEval(
		neighbors,
		compositionNeighbors,
		c.periodicValues(point),
		c.randomCoefficients,
		c.pointPowers(point),
		c.shifts,
	)
}

// EvalOnCosetBitReversed evaluates the composition polynomial at every point
// of the coset cosetOffset*<traceGenerator>, writing output[i] for the point
// cosetOffset*traceGenerator^bitreverse(i). traceLde and compositionTraceLde
// (nil on the first round) are the per-column LDE evaluations on that same
// coset, already stored in bit-reversed order. Work is split into
// independent chunks of taskSize consecutive output indices.
func (c *CompositionPolynomial) EvalOnCosetBitReversed(
	cosetOffset field.BaseFE,
	traceLde [][]field.BaseFE,
	compositionTraceLde [][]field.ExtFE,
	output []field.ExtFE,
	taskSize int,
) error {
	n := len(output)
	if n == 0 || (n&(n-1)) != 0 {
		return &ShapeMismatchError{What: "eval_on_coset_bit_reversed output length", Got: n, Want: -1}
	}
	bits := uint(fft.Log2(n))
	mask := c.air.Mask()

	if taskSize <= 0 {
		taskSize = n
	}

	var g errgroup.Group
	for start := 0; start < n; start += taskSize {
		start := start
		end := start + taskSize
		if end > n {
			end = n
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				natIdx := fft.BitReverse(uint64(i), bits)
				point := cosetOffset.Mul(c.traceGenerator.PowUint64(natIdx))
				extPoint := field.FromBase(point)

				var neighbors []field.ExtFE
				if traceLde != nil {
					neighbors = make([]field.ExtFE, len(mask))
					for j, m := range mask {
						neighborNat := wrapIndex(int64(natIdx)+int64(m.RowOffset), n)
						row := fft.BitReverse(neighborNat, bits)
						neighbors[j] = field.FromBase(traceLde[m.Column][row])
					}
				}

				var compNeighbors []field.ExtFE
				if compositionTraceLde != nil {
					compNeighbors = make([]field.ExtFE, len(mask))
					for j, m := range mask {
						neighborNat := wrapIndex(int64(natIdx)+int64(m.RowOffset), n)
						row := fft.BitReverse(neighborNat, bits)
						compNeighbors[j] = compositionTraceLde[m.Column][row]
					}
				}

				output[i] = c.EvalAtPoint(extPoint, neighbors, compNeighbors)
			}
			return nil
		})
	}
	return g.Wait()
}

func wrapIndex(i int64, n int) uint64 {
	m := int64(n)
	r := i % m
	if r < 0 {
		r += m
	}
	return uint64(r)
}
