// Package storage persists reference snapshots and classification history in
// SQLite.
package storage

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
	"gonum.org/v1/gonum/mat"
)

var (
	encoder, _ = zstd.NewWriter(nil)
	decoder, _ = zstd.NewReader(nil)
)

// EncodeMatrix serialises m with gonum's binary format and compresses it.
func EncodeMatrix(m *mat.Dense) ([]byte, error) {
	raw, err := m.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("marshalling matrix: %w", err)
	}
	return encoder.EncodeAll(raw, make([]byte, 0, len(raw)/2)), nil
}

func DecodeMatrix(data []byte) (*mat.Dense, error) {
	raw, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("decompressing matrix: %w", err)
	}
	var m mat.Dense
	if err := m.UnmarshalBinary(raw); err != nil {
		return nil, fmt.Errorf("unmarshalling matrix: %w", err)
	}
	return &m, nil
}

// NewReferenceRecord encodes one reference composite at position.
func NewReferenceRecord(position int, name string, m *mat.Dense) (ReferenceRecord, error) {
	blob, err := EncodeMatrix(m)
	if err != nil {
		return ReferenceRecord{}, fmt.Errorf("encoding reference %s: %w", name, err)
	}
	r, c := m.Dims()
	return ReferenceRecord{
		Position:     position,
		Name:         name,
		Rows:         r,
		Cols:         c,
		Coefficients: blob,
	}, nil
}

// Matrix decodes the stored composite and checks it against Rows and Cols.
func (r ReferenceRecord) Matrix() (*mat.Dense, error) {
	m, err := DecodeMatrix(r.Coefficients)
	if err != nil {
		return nil, fmt.Errorf("decoding reference %s: %w", r.Name, err)
	}
	if rows, cols := m.Dims(); rows != r.Rows || cols != r.Cols {
		return nil, fmt.Errorf("reference %s: stored %dx%d, decoded %dx%d", r.Name, r.Rows, r.Cols, rows, cols)
	}
	return m, nil
}
