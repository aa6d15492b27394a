package brainmap

import (
	"context"

	"github.com/vanikaushik1712/brain-mapping-eeg-classification/pkg/brainmap/classifier"
	"github.com/vanikaushik1712/brain-mapping-eeg-classification/pkg/brainmap/dataset"
	"github.com/vanikaushik1712/brain-mapping-eeg-classification/pkg/brainmap/reference"
	"github.com/vanikaushik1712/brain-mapping-eeg-classification/pkg/brainmap/signal"
)

type Service interface {
	GenerateDataset(ctx context.Context, dir string) (*dataset.Manifest, error)
	LoadReferences() (int, error)
	ReloadReferences() (int, error)
	RestoreReferences() (int, error)
	ClassifyFile(ctx context.Context, path string) (*classifier.Result, error)
	ClassifyBytes(ctx context.Context, name string, data []byte) (*classifier.Result, error)
	ClassifySignal(ctx context.Context, name string, ts signal.TimeSeries) (*classifier.Result, error)
	Synthesize(kind string) (signal.TimeSeries, error)
	Visualize(imagePath, outPath string) error
	Info() Info
	History(limit int) ([]HistoryEntry, error)
	Validate() []string
	Evaluate(ctx context.Context) (*dataset.Evaluation, error)
	Close() error
}

type Storage interface {
	SaveReferences(entries []reference.Entry) error
	LoadReferences() ([]reference.Entry, error)
	RecordClassification(res *classifier.Result) (string, error)
	ListClassifications(limit int) ([]HistoryEntry, error)
	Close() error
}

type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}
