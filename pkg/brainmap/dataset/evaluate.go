package dataset

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/vanikaushik1712/brain-mapping-eeg-classification/pkg/brainmap/classifier"
	"github.com/vanikaushik1712/brain-mapping-eeg-classification/pkg/brainmap/imaging"
	"github.com/vanikaushik1712/brain-mapping-eeg-classification/pkg/logger"
	"github.com/vanikaushik1712/brain-mapping-eeg-classification/pkg/utils"
)

// ClassifyFunc classifies one image file.
type ClassifyFunc func(ctx context.Context, path string) (*classifier.Result, error)

// Row is the outcome for one test sample. Expected is empty when the file
// name does not encode a label.
type Row struct {
	File       string  `json:"file"`
	Expected   string  `json:"expected,omitempty"`
	Label      string  `json:"classification,omitempty"`
	MinMSE     float64 `json:"min_mse"`
	Confidence float64 `json:"confidence"`
	Correct    bool    `json:"correct"`
	Err        string  `json:"error,omitempty"`
}

type Summary struct {
	Total      int     `json:"total"`
	Classified int     `json:"classified"`
	Labelled   int     `json:"labelled"`
	Correct    int     `json:"correct"`
	Accuracy   float64 `json:"accuracy"`
	Normal     int     `json:"normal"`
	Abnormal   int     `json:"abnormal"`
	MeanMSE    float64 `json:"mean_mse"`
	StdDevMSE  float64 `json:"stddev_mse"`
	MinMSE     float64 `json:"min_mse"`
	MaxMSE     float64 `json:"max_mse"`
}

type Evaluation struct {
	Rows    []Row   `json:"rows"`
	Summary Summary `json:"summary"`
}

// ExpectedLabel derives the ground truth from a test file name.
func ExpectedLabel(name string) string {
	switch {
	case strings.HasPrefix(name, "test_normal"):
		return classifier.LabelNormal
	case strings.HasPrefix(name, "test_abnormal"):
		return classifier.LabelAbnormal
	default:
		return ""
	}
}

// Evaluate classifies every image in the test directory of dataDir. A sample
// that fails is logged and reported in its row; it does not stop the run.
func Evaluate(ctx context.Context, dataDir string, classify ClassifyFunc, log Logger) (*Evaluation, error) {
	if log == nil {
		log = logger.Discard()
	}

	testDir := filepath.Join(dataDir, TestDirName)
	names, err := utils.ListFiles(testDir, imaging.IsImageFile)
	if err != nil {
		return nil, fmt.Errorf("reading test samples: %w", err)
	}

	eval := &Evaluation{Rows: make([]Row, 0, len(names))}
	var mses []float64
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row := Row{File: name, Expected: ExpectedLabel(name)}
		res, err := classify(ctx, filepath.Join(testDir, name))
		if err != nil {
			log.Warnf("evaluating %s: %v", name, err)
			row.Err = err.Error()
			eval.Rows = append(eval.Rows, row)
			continue
		}

		row.Label = res.Label
		row.MinMSE = res.MinMSE
		row.Confidence = res.Confidence
		row.Correct = row.Expected != "" && row.Expected == res.Label
		eval.Rows = append(eval.Rows, row)
		mses = append(mses, res.MinMSE)
	}

	eval.Summary = summarize(eval.Rows, mses)
	log.Infof("Evaluated %d samples: %d/%d correct", eval.Summary.Total, eval.Summary.Correct, eval.Summary.Labelled)
	return eval, nil
}

func summarize(rows []Row, mses []float64) Summary {
	s := Summary{Total: len(rows), Classified: len(mses)}
	for _, r := range rows {
		if r.Err != "" {
			continue
		}
		switch r.Label {
		case classifier.LabelNormal:
			s.Normal++
		case classifier.LabelAbnormal:
			s.Abnormal++
		}
		if r.Expected != "" {
			s.Labelled++
			if r.Correct {
				s.Correct++
			}
		}
	}
	if s.Labelled > 0 {
		s.Accuracy = float64(s.Correct) / float64(s.Labelled) * 100
	}

	if len(mses) > 0 {
		s.MeanMSE = stat.Mean(mses, nil)
		s.MinMSE = floats.Min(mses)
		s.MaxMSE = floats.Max(mses)
	}
	// sample standard deviation is undefined for one value
	if len(mses) > 1 {
		_, s.StdDevMSE = stat.MeanStdDev(mses, nil)
	}
	return s
}
