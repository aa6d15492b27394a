// Package visual renders wavelet decompositions for inspection. It only
// reads the sub-bands a Decomposition already holds.
package visual

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"golang.org/x/image/draw"
	"gonum.org/v1/gonum/mat"

	"github.com/vanikaushik1712/brain-mapping-eeg-classification/pkg/brainmap/wavelet"
)

type DecompositionVisualizer interface {
	Visualize(source mat.Matrix, d *wavelet.Decomposition) (image.Image, error)
}

// PanelOrder lists the tiles row by row, four per row.
var PanelOrder = []string{"source", "A1", "H1", "V1", "D1", "A2", "A3", "composite"}

const panelColumns = 4

// PanelVisualizer lays the source image, first level sub-bands, deeper
// approximations and the composite out in a 2x4 grid. Each tile is contrast
// stretched on its own so small detail coefficients stay visible.
type PanelVisualizer struct {
	TileSize int
	Gap      int
}

func NewPanelVisualizer() *PanelVisualizer {
	return &PanelVisualizer{TileSize: 128, Gap: 4}
}

func (p *PanelVisualizer) Visualize(source mat.Matrix, d *wavelet.Decomposition) (image.Image, error) {
	if source == nil || d == nil {
		return nil, errors.New("source and decomposition are required")
	}
	if p.TileSize <= 0 || p.Gap < 0 {
		return nil, fmt.Errorf("invalid panel geometry: tile %d gap %d", p.TileSize, p.Gap)
	}

	tiles := map[string]mat.Matrix{
		"source":    source,
		"A1":        d.A(1),
		"H1":        d.H(1),
		"V1":        d.V(1),
		"D1":        d.D(1),
		"A2":        d.A(2),
		"A3":        d.A(3),
		"composite": d.Composite(),
	}

	rows := (len(PanelOrder) + panelColumns - 1) / panelColumns
	step := p.TileSize + p.Gap
	panel := image.NewGray(image.Rect(0, 0, panelColumns*step+p.Gap, rows*step+p.Gap))
	draw.Draw(panel, panel.Bounds(), image.NewUniform(color.Gray{Y: 255}), image.Point{}, draw.Src)

	for i, name := range PanelOrder {
		x := p.Gap + (i%panelColumns)*step
		y := p.Gap + (i/panelColumns)*step
		dst := image.Rect(x, y, x+p.TileSize, y+p.TileSize)

		tile := Normalize(tiles[name])
		draw.NearestNeighbor.Scale(panel, dst, tile, tile.Bounds(), draw.Src, nil)
	}
	return panel, nil
}

// Normalize min-max stretches m onto 0..255. A constant matrix maps to 0.
func Normalize(m mat.Matrix) *image.Gray {
	r, c := m.Dims()
	lo, hi := mat.Min(m), mat.Max(m)
	span := hi - lo

	g := image.NewGray(image.Rect(0, 0, c, r))
	for y := 0; y < r; y++ {
		for x := 0; x < c; x++ {
			v := 0.0
			if span > 0 {
				v = (m.At(y, x) - lo) / span * 255
			}
			g.Pix[y*g.Stride+x] = uint8(math.Round(v))
		}
	}
	return g
}

func SavePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}
