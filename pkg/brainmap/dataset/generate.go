// Package dataset writes, checks and scores the synthetic EEG spectrogram
// dataset.
//
// Layout under the dataset root:
//
//	reference_signals/eeg{1..5}n.png
//	test_samples/test_normal_{1..3}.png
//	test_samples/test_abnormal_{high_delta,missing_alpha,high_beta}.png
//	signals/<name>.wav               (optional)
package dataset

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/vanikaushik1712/brain-mapping-eeg-classification/pkg/brainmap/imaging"
	"github.com/vanikaushik1712/brain-mapping-eeg-classification/pkg/brainmap/signal"
	"github.com/vanikaushik1712/brain-mapping-eeg-classification/pkg/brainmap/spectrogram"
	"github.com/vanikaushik1712/brain-mapping-eeg-classification/pkg/logger"
	"github.com/vanikaushik1712/brain-mapping-eeg-classification/pkg/utils"
)

const (
	ReferenceDirName = "reference_signals"
	TestDirName      = "test_samples"
	SignalDirName    = "signals"

	ReferenceCount  = 5
	NormalTestCount = 3
)

type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}

type Options struct {
	// Generator supplies the randomness; signal.Default() when nil.
	Generator *signal.Generator
	// ExportSignals also writes every time series as WAV under signals/.
	ExportSignals bool
	Logger        Logger
}

// Sample is one generated file. Kind is "normal" or an abnormality name.
type Sample struct {
	Name       string `json:"name"`
	Path       string `json:"path"`
	Kind       string `json:"kind"`
	SignalPath string `json:"signal_path,omitempty"`
}

type Manifest struct {
	Root       string   `json:"root"`
	References []Sample `json:"references"`
	Tests      []Sample `json:"tests"`
}

const kindNormal = "normal"

// Generate renders the reference and test sets into outputDir. Signals are
// drawn in a fixed order: references, normal tests, then one test per
// abnormality.
func Generate(ctx context.Context, outputDir string, opts Options) (*Manifest, error) {
	gen := opts.Generator
	if gen == nil {
		gen = signal.Default()
	}
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}

	refDir := filepath.Join(outputDir, ReferenceDirName)
	testDir := filepath.Join(outputDir, TestDirName)
	dirs := []string{refDir, testDir}
	if opts.ExportSignals {
		dirs = append(dirs, filepath.Join(outputDir, SignalDirName))
	}
	for _, dir := range dirs {
		if err := utils.MakeDir(dir); err != nil {
			return nil, fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	w := &writer{root: outputDir, exportSignals: opts.ExportSignals}
	manifest := &Manifest{Root: outputDir}

	log.Infof("Generating %d reference patterns...", ReferenceCount)
	for i := 1; i <= ReferenceCount; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s, err := w.write(refDir, fmt.Sprintf("eeg%dn.png", i), kindNormal, gen.GenerateNormal())
		if err != nil {
			return nil, err
		}
		manifest.References = append(manifest.References, s)
	}

	log.Infof("Generating test samples...")
	for i := 1; i <= NormalTestCount; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s, err := w.write(testDir, fmt.Sprintf("test_normal_%d.png", i), kindNormal, gen.GenerateNormal())
		if err != nil {
			return nil, err
		}
		manifest.Tests = append(manifest.Tests, s)
	}

	for _, kind := range signal.Abnormalities() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ts, err := gen.GenerateAbnormal(kind)
		if err != nil {
			return nil, err
		}
		s, err := w.write(testDir, fmt.Sprintf("test_abnormal_%s.png", kind), string(kind), ts)
		if err != nil {
			return nil, err
		}
		manifest.Tests = append(manifest.Tests, s)
	}

	log.Infof("Dataset generated in %s: %d references, %d test samples",
		outputDir, len(manifest.References), len(manifest.Tests))
	return manifest, nil
}

type writer struct {
	root          string
	exportSignals bool
}

func (w *writer) write(dir, name, kind string, ts signal.TimeSeries) (Sample, error) {
	img, err := spectrogram.Render(ts)
	if err != nil {
		return Sample{}, fmt.Errorf("rendering %s: %w", name, err)
	}

	s := Sample{Name: name, Path: filepath.Join(dir, name), Kind: kind}
	if err := imaging.SavePNG(s.Path, img); err != nil {
		return Sample{}, err
	}

	if w.exportSignals {
		s.SignalPath = filepath.Join(w.root, SignalDirName, utils.TrimExt(name)+".wav")
		if err := signal.WriteWAV(s.SignalPath, ts); err != nil {
			return Sample{}, fmt.Errorf("exporting signal %s: %w", name, err)
		}
	}
	return s, nil
}
