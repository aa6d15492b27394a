// Package classifier labels a wavelet composite as Normal or Abnormal by its
// nearest reference under mean squared error.
package classifier

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/vanikaushik1712/brain-mapping-eeg-classification/pkg/brainmap/reference"
	"github.com/vanikaushik1712/brain-mapping-eeg-classification/pkg/brainmap/wavelet"
)

// DefaultThreshold is calibrated for the synthetic 256 Hz, 10 s dataset
// rendered at 256x256. It does not transfer to other geometries.
const DefaultThreshold = 600.0

const (
	LabelNormal   = "Normal"
	LabelAbnormal = "Abnormal"
)

var (
	ErrEmptyReferenceSet = errors.New("no reference patterns loaded")
	ErrInvalidThreshold  = errors.New("threshold must be positive")
)

// MSE is the mean squared error over the common top-left rectangle of a
// and b. Matrices of different shape are cropped, never resampled. It
// returns NaN when the overlap is empty.
func MSE(a, b mat.Matrix) float64 {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	rows, cols := min(ar, br), min(ac, bc)
	if rows == 0 || cols == 0 {
		return math.NaN()
	}

	sum := 0.0
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			d := a.At(i, j) - b.At(i, j)
			sum += d * d
		}
	}
	return sum / float64(rows*cols)
}

// Classify decomposes img and classifies its composite.
func Classify(testID string, img mat.Matrix, refs []reference.Entry, threshold float64) (*Result, error) {
	if len(refs) == 0 {
		return nil, ErrEmptyReferenceSet
	}
	composite, err := wavelet.Composite(img)
	if err != nil {
		return nil, err
	}
	return ClassifyComposite(testID, composite, refs, threshold)
}

// ClassifyComposite compares composite against every reference. Ties on the
// minimum go to the lowest index.
func ClassifyComposite(testID string, composite mat.Matrix, refs []reference.Entry, threshold float64) (*Result, error) {
	if len(refs) == 0 {
		return nil, ErrEmptyReferenceSet
	}
	if threshold <= 0 || math.IsNaN(threshold) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidThreshold, threshold)
	}

	values := make([]float64, len(refs))
	for i, ref := range refs {
		values[i] = MSE(composite, ref.Composite)
	}
	best := floats.MinIdx(values)
	minMSE := values[best]

	rows, cols := composite.Dims()
	res := &Result{
		TestID:         testID,
		MinMSE:         minMSE,
		MSEValues:      values,
		Threshold:      threshold,
		Shape:          [2]int{rows, cols},
		ReferenceCount: len(refs),
	}

	if minMSE < threshold {
		frame := best + 1
		res.Label = LabelNormal
		res.MatchedFrame = &frame
		res.Confidence = (threshold - minMSE) / threshold * 100
	} else {
		res.Label = LabelAbnormal
		res.Confidence = math.Min(minMSE/threshold*100, 100)
	}
	return res, nil
}
