// Package spectrogram renders EEG time series as 0-50 Hz power spectrogram
// images with the same geometry as the reference patterns.
package spectrogram

import (
	"errors"
	"fmt"
	"image"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
	"gonum.org/v1/gonum/mat"

	"github.com/vanikaushik1712/brain-mapping-eeg-classification/pkg/brainmap/imaging"
	"github.com/vanikaushik1712/brain-mapping-eeg-classification/pkg/brainmap/signal"
)

// Tunables. The classification threshold is calibrated against these.
const (
	WindowSize   = 128
	Overlap      = 64
	MaxFrequency = 50.0
	PowerFloor   = 1e-10
)

// Spectrogram is a dB-scaled power spectral density, frequency-major:
// Power.At(f, t) is bin Frequencies[f] in segment Times[t].
type Spectrogram struct {
	Frequencies []float64
	Times       []float64
	Power       *mat.Dense
}

// PeriodicHann returns the DFT-even Hann window used for spectral analysis.
func PeriodicHann(n int) []float64 {
	return window.Hann(n + 1)[:n]
}

// PowerSpectrum returns the one-sided power density of a real frame's
// spectrum, Nyquist bin included. scale is 1/(fs*sum(w^2)).
func PowerSpectrum(spectrum []complex128, scale float64) []float64 {
	n := len(spectrum)
	bins := n/2 + 1
	psd := make([]float64, bins)
	for k := 0; k < bins; k++ {
		mag := cmplx.Abs(spectrum[k])
		psd[k] = mag * mag * scale
		if k > 0 && !(n%2 == 0 && k == n/2) {
			psd[k] *= 2
		}
	}
	return psd
}

// STFT returns time-major one-sided power densities, spectrogram[frame][bin].
// Each segment has its mean removed before windowing.
func STFT(samples []float64, sampleRate, windowSize, hopSize int, win []float64) ([][]float64, error) {
	if len(win) != windowSize {
		return nil, errors.New("window length must equal windowSize")
	}
	if len(samples) < windowSize {
		return nil, errors.New("input shorter than window size")
	}
	if hopSize <= 0 {
		return nil, errors.New("hop size must be positive")
	}

	sumSq := 0.0
	for _, w := range win {
		sumSq += w * w
	}
	scale := 1 / (float64(sampleRate) * sumSq)

	frames := make([][]float64, 0, (len(samples)-windowSize)/hopSize+1)
	frame := make([]float64, windowSize)
	for start := 0; start+windowSize <= len(samples); start += hopSize {
		seg := samples[start : start+windowSize]
		mean := 0.0
		for _, v := range seg {
			mean += v
		}
		mean /= float64(windowSize)

		for i, v := range seg {
			frame[i] = (v - mean) * win[i]
		}
		frames = append(frames, PowerSpectrum(fft.FFTReal(frame), scale))
	}
	return frames, nil
}

// Compute builds the 0-50 Hz dB spectrogram of ts.
func Compute(ts signal.TimeSeries) (*Spectrogram, error) {
	if len(ts.Samples) == 0 {
		return nil, errors.New("samples cannot be empty")
	}
	if ts.SampleRate <= 0 {
		return nil, errors.New("sample rate must be positive")
	}

	hop := WindowSize - Overlap
	frames, err := STFT(ts.Samples, ts.SampleRate, WindowSize, hop, PeriodicHann(WindowSize))
	if err != nil {
		return nil, fmt.Errorf("stft: %w", err)
	}

	binHz := float64(ts.SampleRate) / float64(WindowSize)
	var freqs []float64
	for k := 0; k <= WindowSize/2; k++ {
		f := float64(k) * binHz
		if f > MaxFrequency {
			break
		}
		freqs = append(freqs, f)
	}

	times := make([]float64, len(frames))
	for i := range frames {
		times[i] = float64(i*hop+WindowSize/2) / float64(ts.SampleRate)
	}

	power := mat.NewDense(len(freqs), len(frames), nil)
	for t, frame := range frames {
		for f := range freqs {
			power.Set(f, t, 10*math.Log10(frame[f]+PowerFloor))
		}
	}

	return &Spectrogram{Frequencies: freqs, Times: times, Power: power}, nil
}

// Gray quantises the dB matrix to 8 bits over its own min..max range, with
// the lowest frequency on the bottom row and time running left to right.
func (s *Spectrogram) Gray() *image.Gray {
	rows, cols := s.Power.Dims()
	lo, hi := mat.Min(s.Power), mat.Max(s.Power)
	span := hi - lo

	g := image.NewGray(image.Rect(0, 0, cols, rows))
	for f := 0; f < rows; f++ {
		y := rows - 1 - f
		for t := 0; t < cols; t++ {
			v := 0.0
			if span > 0 {
				v = (s.Power.At(f, t) - lo) / span * 255
			}
			g.Pix[y*g.Stride+t] = uint8(math.Round(v))
		}
	}
	return g
}

// Image renders the spectrogram as a size x size grayscale pixel matrix.
func (s *Spectrogram) Image(size int) *mat.Dense {
	return imaging.GrayToMatrix(imaging.Resize(s.Gray(), size, size))
}

// Render is the full signal-to-image path used for both references and
// test samples.
func Render(ts signal.TimeSeries) (*mat.Dense, error) {
	spec, err := Compute(ts)
	if err != nil {
		return nil, err
	}
	return spec.Image(imaging.Size), nil
}
