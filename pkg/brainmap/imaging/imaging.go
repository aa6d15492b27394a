// Package imaging converts between image files and the grayscale pixel
// matrices consumed by the wavelet and classification stages.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"gonum.org/v1/gonum/mat"
)

// Size is the side length every pixel matrix is normalised to.
const Size = 256

var imageExtensions = map[string]bool{
	".png":  true,
	".bmp":  true,
	".jpg":  true,
	".jpeg": true,
}

// IsImageFile reports whether name has a supported image extension.
func IsImageFile(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// IsReferenceFile reports whether name may hold a reference pattern. Only
// lossless formats qualify.
func IsReferenceFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".bmp":
		return true
	}
	return false
}

// LoadError reports an image that could not be read or decoded.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load image %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Load reads an image file and returns its Size x Size grayscale matrix.
func Load(path string) (*mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Source: path, Err: err}
	}
	defer f.Close()

	m, err := Decode(f)
	if err != nil {
		return nil, &LoadError{Source: path, Err: err}
	}
	return m, nil
}

// DecodeBytes is Load for in-memory uploads; name is only used in errors.
func DecodeBytes(name string, data []byte) (*mat.Dense, error) {
	if len(data) == 0 {
		return nil, &LoadError{Source: name, Err: fmt.Errorf("empty image data")}
	}
	m, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &LoadError{Source: name, Err: err}
	}
	return m, nil
}

// Decode converts any registered image format to grayscale and resizes it
// to Size x Size.
func Decode(r io.Reader) (*mat.Dense, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	gray := ToGray(src)
	if b := gray.Bounds(); b.Dx() != Size || b.Dy() != Size {
		gray = Resize(gray, Size, Size)
	}
	return GrayToMatrix(gray), nil
}

// ToGray converts img to 8-bit luma using the ITU-R 601 weights.
func ToGray(img image.Image) *image.Gray {
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)
	return gray
}

// Resize scales src bilinearly. The result only depends on the input pixels.
func Resize(src *image.Gray, width, height int) *image.Gray {
	dst := image.NewGray(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// GrayToMatrix copies pixel intensities into a rows x cols matrix.
func GrayToMatrix(g *image.Gray) *mat.Dense {
	b := g.Bounds()
	m := mat.NewDense(b.Dy(), b.Dx(), nil)
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			m.Set(y, x, float64(g.GrayAt(b.Min.X+x, b.Min.Y+y).Y))
		}
	}
	return m
}

// MatrixToGray rounds and clamps matrix values into an 8-bit image.
func MatrixToGray(m mat.Matrix) *image.Gray {
	r, c := m.Dims()
	g := image.NewGray(image.Rect(0, 0, c, r))
	for y := 0; y < r; y++ {
		for x := 0; x < c; x++ {
			v := math.Round(m.At(y, x))
			g.Pix[y*g.Stride+x] = uint8(math.Max(0, math.Min(255, v)))
		}
	}
	return g
}

// EncodePNG writes m as an 8-bit grayscale PNG.
func EncodePNG(w io.Writer, m mat.Matrix) error {
	return png.Encode(w, MatrixToGray(m))
}

func SavePNG(path string, m mat.Matrix) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := EncodePNG(f, m); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}

// Dimensions reads only the header of an image file.
func Dimensions(path string) (width, height int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, &LoadError{Source: path, Err: err}
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, &LoadError{Source: path, Err: err}
	}
	return cfg.Width, cfg.Height, nil
}
