// Package wavelet implements the fixed three level 2D Haar (db1)
// decomposition and the nested recomposition used as a classification
// fingerprint.
//
// A single split maps every 2x2 block [[a b] [c d]] of the input to one
// coefficient in each quadrant sub-band:
//
//	A = (a + b + c + d) / 2   approximation
//	H = (a + b - c - d) / 2   horizontal detail
//	V = (a - b + c - d) / 2   vertical detail
//	D = (a - b - c + d) / 2   diagonal detail
//
// The split is repeated on A. The composite is assembled deepest level first:
//
//	[[A3 H3] [V3 D3]] -> [[.. H2] [V2 D2]] -> [[.. H1] [V1 D1]]
package wavelet

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Levels is the fixed decomposition depth.
const Levels = 3

var ErrDecomposition = errors.New("wavelet decomposition failed")

// SubBands holds the four quadrants of one decomposition level.
type SubBands struct {
	A, H, V, D *mat.Dense
}

// Split performs one 2D Haar analysis step. Both dimensions of m must be even.
func Split(m mat.Matrix) (SubBands, error) {
	if m == nil {
		return SubBands{}, fmt.Errorf("%w: nil matrix", ErrDecomposition)
	}
	rows, cols := m.Dims()
	if rows == 0 || cols == 0 {
		return SubBands{}, fmt.Errorf("%w: empty matrix", ErrDecomposition)
	}
	if rows%2 != 0 || cols%2 != 0 {
		return SubBands{}, fmt.Errorf("%w: %dx%d is not evenly divisible by 2", ErrDecomposition, rows, cols)
	}

	hr, hc := rows/2, cols/2
	sb := SubBands{
		A: mat.NewDense(hr, hc, nil),
		H: mat.NewDense(hr, hc, nil),
		V: mat.NewDense(hr, hc, nil),
		D: mat.NewDense(hr, hc, nil),
	}
	for i := 0; i < hr; i++ {
		for j := 0; j < hc; j++ {
			a := m.At(2*i, 2*j)
			b := m.At(2*i, 2*j+1)
			c := m.At(2*i+1, 2*j)
			d := m.At(2*i+1, 2*j+1)
			sb.A.Set(i, j, (a+b+c+d)/2)
			sb.H.Set(i, j, (a+b-c-d)/2)
			sb.V.Set(i, j, (a-b+c-d)/2)
			sb.D.Set(i, j, (a-b-c+d)/2)
		}
	}
	return sb, nil
}

// Tile places four equally sized quadrants as [[tl tr] [bl br]].
func Tile(tl, tr, bl, br mat.Matrix) *mat.Dense {
	r, c := tl.Dims()
	out := mat.NewDense(2*r, 2*c, nil)
	out.Slice(0, r, 0, c).(*mat.Dense).Copy(tl)
	out.Slice(0, r, c, 2*c).(*mat.Dense).Copy(tr)
	out.Slice(r, 2*r, 0, c).(*mat.Dense).Copy(bl)
	out.Slice(r, 2*r, c, 2*c).(*mat.Dense).Copy(br)
	return out
}

// Decomposition keeps every intermediate sub-band so that visualisers do not
// have to recompute them.
type Decomposition struct {
	levels    [Levels]SubBands
	composite *mat.Dense
}

// Decompose runs the three level analysis on img and builds the composite.
// img must be non-empty with both sides divisible by 2^Levels.
func Decompose(img mat.Matrix) (*Decomposition, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrDecomposition)
	}
	if d, ok := img.(*mat.Dense); ok && (d == nil || d.IsEmpty()) {
		return nil, fmt.Errorf("%w: empty image", ErrDecomposition)
	}
	rows, cols := img.Dims()
	const block = 1 << Levels
	if rows == 0 || cols == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrDecomposition)
	}
	if rows%block != 0 || cols%block != 0 {
		return nil, fmt.Errorf("%w: %dx%d image cannot be halved %d times", ErrDecomposition, rows, cols, Levels)
	}

	dec := &Decomposition{}
	current := img
	for lvl := 0; lvl < Levels; lvl++ {
		sb, err := Split(current)
		if err != nil {
			return nil, fmt.Errorf("level %d: %w", lvl+1, err)
		}
		dec.levels[lvl] = sb
		current = sb.A
	}

	deepest := dec.levels[Levels-1]
	composite := Tile(deepest.A, deepest.H, deepest.V, deepest.D)
	for lvl := Levels - 2; lvl >= 0; lvl-- {
		sb := dec.levels[lvl]
		composite = Tile(composite, sb.H, sb.V, sb.D)
	}
	dec.composite = composite
	return dec, nil
}

// Composite is a shortcut for Decompose(img).Composite().
func Composite(img mat.Matrix) (*mat.Dense, error) {
	dec, err := Decompose(img)
	if err != nil {
		return nil, err
	}
	return dec.Composite(), nil
}

// Level returns the sub-bands of level n, 1 being the finest.
func (d *Decomposition) Level(n int) SubBands {
	if n < 1 || n > Levels {
		panic(fmt.Sprintf("wavelet: level %d out of range [1,%d]", n, Levels))
	}
	return d.levels[n-1]
}

func (d *Decomposition) A(n int) *mat.Dense { return d.Level(n).A }
func (d *Decomposition) H(n int) *mat.Dense { return d.Level(n).H }
func (d *Decomposition) V(n int) *mat.Dense { return d.Level(n).V }
func (d *Decomposition) D(n int) *mat.Dense { return d.Level(n).D }

// Composite returns the recomposed coefficient matrix. It has the same
// dimensions as the decomposed image.
func (d *Decomposition) Composite() *mat.Dense { return d.composite }

// Named returns the intermediates keyed A1..D3 for display.
func (d *Decomposition) Named() map[string]*mat.Dense {
	out := make(map[string]*mat.Dense, 4*Levels)
	for n := 1; n <= Levels; n++ {
		sb := d.Level(n)
		out[fmt.Sprintf("A%d", n)] = sb.A
		out[fmt.Sprintf("H%d", n)] = sb.H
		out[fmt.Sprintf("V%d", n)] = sb.V
		out[fmt.Sprintf("D%d", n)] = sb.D
	}
	return out
}
