package brainmap

import (
	"fmt"

	"github.com/vanikaushik1712/brain-mapping-eeg-classification/pkg/brainmap/classifier"
	"github.com/vanikaushik1712/brain-mapping-eeg-classification/pkg/brainmap/reference"
	"github.com/vanikaushik1712/brain-mapping-eeg-classification/pkg/brainmap/storage"
)

// storageAdapter adapts the storage.DBClient to implement the Storage interface.
type storageAdapter struct {
	db *storage.DBClient
}

// NewSQLiteStorage creates a new SQLite storage backend.
func NewSQLiteStorage(dbPath string) (Storage, error) {
	db, err := storage.NewDBClientWithPath(dbPath)
	if err != nil {
		return nil, err
	}
	return &storageAdapter{db: db}, nil
}

func (s *storageAdapter) SaveReferences(entries []reference.Entry) error {
	records := make([]storage.ReferenceRecord, 0, len(entries))
	for _, e := range entries {
		rec, err := storage.NewReferenceRecord(e.Index, e.Name, e.Composite)
		if err != nil {
			return err
		}
		records = append(records, rec)
	}
	return s.db.ReplaceReferences(records)
}

func (s *storageAdapter) LoadReferences() ([]reference.Entry, error) {
	rows, err := s.db.ListReferences()
	if err != nil {
		return nil, err
	}

	entries := make([]reference.Entry, 0, len(rows))
	for _, row := range rows {
		m, err := row.Matrix()
		if err != nil {
			return nil, fmt.Errorf("restoring snapshot: %w", err)
		}
		entries = append(entries, reference.Entry{
			Index:     row.Position,
			Name:      row.Name,
			Composite: m,
		})
	}
	return entries, nil
}

func (s *storageAdapter) RecordClassification(res *classifier.Result) (string, error) {
	return s.db.RecordClassification(&storage.ClassificationRecord{
		TestID:         res.TestID,
		Label:          res.Label,
		MinMSE:         res.MinMSE,
		MatchedFrame:   res.MatchedFrame,
		Confidence:     res.Confidence,
		Threshold:      res.Threshold,
		ReferenceCount: res.ReferenceCount,
		MSEValues:      res.MSEValues,
	})
}

func (s *storageAdapter) ListClassifications(limit int) ([]HistoryEntry, error) {
	rows, err := s.db.ListClassifications(limit)
	if err != nil {
		return nil, err
	}

	history := make([]HistoryEntry, len(rows))
	for i, row := range rows {
		history[i] = HistoryEntry{
			ID:             row.ID,
			TestID:         row.TestID,
			Label:          row.Label,
			Confidence:     row.Confidence,
			MinMSE:         row.MinMSE,
			MatchedFrame:   row.MatchedFrame,
			ReferenceCount: row.ReferenceCount,
			CreatedAt:      row.CreatedAt,
		}
	}
	return history, nil
}

func (s *storageAdapter) Close() error {
	return s.db.Close()
}
