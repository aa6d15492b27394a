// Package brainmap is the entry point for EEG spectrogram classification:
// dataset generation, reference management, classification and history.
package brainmap

import (
	"context"
	"fmt"
	"path/filepath"

	"gonum.org/v1/gonum/mat"

	"github.com/vanikaushik1712/brain-mapping-eeg-classification/pkg/brainmap/classifier"
	"github.com/vanikaushik1712/brain-mapping-eeg-classification/pkg/brainmap/dataset"
	"github.com/vanikaushik1712/brain-mapping-eeg-classification/pkg/brainmap/imaging"
	"github.com/vanikaushik1712/brain-mapping-eeg-classification/pkg/brainmap/reference"
	"github.com/vanikaushik1712/brain-mapping-eeg-classification/pkg/brainmap/signal"
	"github.com/vanikaushik1712/brain-mapping-eeg-classification/pkg/brainmap/spectrogram"
	"github.com/vanikaushik1712/brain-mapping-eeg-classification/pkg/brainmap/visual"
	"github.com/vanikaushik1712/brain-mapping-eeg-classification/pkg/brainmap/wavelet"
	"github.com/vanikaushik1712/brain-mapping-eeg-classification/pkg/logger"
)

// KindNormal selects a normal recording in Synthesize.
const KindNormal = "normal"

// brainService is the default implementation of the Service interface.
type brainService struct {
	storage Storage // nil when storage is disabled
	log     Logger
	config  *Config
	refs    *reference.Store
	gen     *signal.Generator
	vis     visual.DecompositionVisualizer
}

func NewService(opts ...Option) (Service, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger()
	}
	if cfg.ReferenceDir == "" {
		cfg.ReferenceDir = filepath.Join(cfg.DataDir, dataset.ReferenceDirName)
	}
	if cfg.Threshold <= 0 {
		return nil, fmt.Errorf("%w: %v", classifier.ErrInvalidThreshold, cfg.Threshold)
	}

	var stor Storage
	switch {
	case cfg.DisableStorage:
	case cfg.Storage != nil:
		stor = cfg.Storage
	default:
		var err error
		stor, err = NewSQLiteStorage(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage: %w", err)
		}
	}

	gen := signal.Default()
	if cfg.Seeded {
		gen = signal.NewGenerator(signal.WithSeed(cfg.Seed))
	}

	return &brainService{
		storage: stor,
		log:     cfg.Logger,
		config:  cfg,
		refs:    reference.NewStore(cfg.Logger),
		gen:     gen,
		vis:     visual.NewPanelVisualizer(),
	}, nil
}

// GenerateDataset writes a fresh dataset. When it lands where the service
// reads references from, the reference set is reloaded.
func (s *brainService) GenerateDataset(ctx context.Context, dir string) (*dataset.Manifest, error) {
	if dir == "" {
		dir = s.config.DataDir
	}

	manifest, err := dataset.Generate(ctx, dir, dataset.Options{
		Generator:     s.gen,
		ExportSignals: s.config.ExportSignals,
		Logger:        s.log,
	})
	if err != nil {
		return nil, fmt.Errorf("dataset generation failed: %w", err)
	}

	generated := filepath.Clean(filepath.Join(dir, dataset.ReferenceDirName))
	if generated == filepath.Clean(s.config.ReferenceDir) {
		if _, err := s.ReloadReferences(); err != nil {
			return manifest, fmt.Errorf("reloading references: %w", err)
		}
	}
	return manifest, nil
}

func (s *brainService) LoadReferences() (int, error) {
	return s.refs.EnsureLoaded(s.config.ReferenceDir)
}

// ReloadReferences rebuilds the reference set and, with storage enabled,
// persists it as the current snapshot.
func (s *brainService) ReloadReferences() (int, error) {
	n, err := s.refs.Reload(s.config.ReferenceDir)
	if err != nil {
		return 0, err
	}
	if s.storage != nil {
		if err := s.storage.SaveReferences(s.refs.Entries()); err != nil {
			s.log.Warnf("Failed to persist reference snapshot: %v", err)
		}
	}
	return n, nil
}

// RestoreReferences publishes the last persisted snapshot without touching
// the reference directory.
func (s *brainService) RestoreReferences() (int, error) {
	if s.storage == nil {
		return 0, ErrStorageDisabled
	}
	entries, err := s.storage.LoadReferences()
	if err != nil {
		return 0, fmt.Errorf("failed to load reference snapshot: %w", err)
	}
	if len(entries) == 0 {
		s.log.Warnf("Stored reference snapshot is empty")
	}
	n := s.refs.Replace(entries)
	s.log.Infof("Restored %d reference patterns from storage", n)
	return n, nil
}

func (s *brainService) ClassifyFile(ctx context.Context, path string) (*classifier.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := imaging.Load(path)
	if err != nil {
		return nil, err
	}
	return s.classify(ctx, filepath.Base(path), img)
}

func (s *brainService) ClassifyBytes(ctx context.Context, name string, data []byte) (*classifier.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := imaging.DecodeBytes(name, data)
	if err != nil {
		return nil, err
	}
	return s.classify(ctx, name, img)
}

// ClassifySignal renders ts the same way references are rendered and
// classifies the result.
func (s *brainService) ClassifySignal(ctx context.Context, name string, ts signal.TimeSeries) (*classifier.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := spectrogram.Render(ts)
	if err != nil {
		return nil, fmt.Errorf("rendering %s: %w", name, err)
	}
	return s.classify(ctx, name, img)
}

func (s *brainService) classify(ctx context.Context, id string, img mat.Matrix) (*classifier.Result, error) {
	if _, err := s.refs.EnsureLoaded(s.config.ReferenceDir); err != nil {
		return nil, fmt.Errorf("loading references: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := classifier.Classify(id, img, s.refs.Entries(), s.config.Threshold)
	if err != nil {
		return nil, err
	}
	s.log.Infof("%s: %s (min MSE %.2f, confidence %s)", id, res.Label, res.MinMSE, res.ConfidenceString())

	if s.storage != nil {
		if _, err := s.storage.RecordClassification(res); err != nil {
			s.log.Warnf("Failed to record classification of %s: %v", id, err)
		}
	}
	return res, nil
}

// Synthesize draws one signal; kind is "normal" or an abnormality name.
func (s *brainService) Synthesize(kind string) (signal.TimeSeries, error) {
	if kind == KindNormal {
		return s.gen.GenerateNormal(), nil
	}
	abn, err := signal.ParseAbnormality(kind)
	if err != nil {
		return signal.TimeSeries{}, err
	}
	return s.gen.GenerateAbnormal(abn)
}

// Visualize writes the decomposition panel of an image file to outPath.
func (s *brainService) Visualize(imagePath, outPath string) error {
	img, err := imaging.Load(imagePath)
	if err != nil {
		return err
	}
	dec, err := wavelet.Decompose(img)
	if err != nil {
		return err
	}
	panel, err := s.vis.Visualize(img, dec)
	if err != nil {
		return fmt.Errorf("rendering panel: %w", err)
	}
	return visual.SavePNG(outPath, panel)
}

func (s *brainService) Info() Info {
	return Info{
		ReferenceCount: s.refs.Len(),
		ReferenceDir:   s.config.ReferenceDir,
		Wavelet:        "db1",
		Levels:         wavelet.Levels,
		Threshold:      s.config.Threshold,
		Storage:        s.storage != nil,
	}
}

// History returns stored classifications, newest first.
func (s *brainService) History(limit int) ([]HistoryEntry, error) {
	if s.storage == nil {
		return nil, ErrStorageDisabled
	}
	return s.storage.ListClassifications(limit)
}

func (s *brainService) Validate() []string {
	return dataset.Validate(s.config.DataDir)
}

func (s *brainService) Evaluate(ctx context.Context) (*dataset.Evaluation, error) {
	return dataset.Evaluate(ctx, s.config.DataDir, s.ClassifyFile, s.log)
}

// Close releases all resources held by the service.
func (s *brainService) Close() error {
	if s.storage == nil {
		return nil
	}
	return s.storage.Close()
}
