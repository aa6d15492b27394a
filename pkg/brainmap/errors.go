package brainmap

import (
	"errors"
	"net/http"

	"github.com/vanikaushik1712/brain-mapping-eeg-classification/pkg/brainmap/classifier"
	"github.com/vanikaushik1712/brain-mapping-eeg-classification/pkg/brainmap/imaging"
	"github.com/vanikaushik1712/brain-mapping-eeg-classification/pkg/brainmap/signal"
	"github.com/vanikaushik1712/brain-mapping-eeg-classification/pkg/brainmap/wavelet"
)

var ErrStorageDisabled = errors.New("storage is disabled")

// ErrorResponse is the structured failure handed to a request boundary.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// NewErrorResponse maps err to a stable error kind and status code.
func NewErrorResponse(err error) *ErrorResponse {
	if err == nil {
		return nil
	}

	var loadErr *imaging.LoadError
	resp := &ErrorResponse{Message: err.Error()}
	switch {
	case errors.As(err, &loadErr):
		resp.Error, resp.Code = "load_error", http.StatusBadRequest
	case errors.Is(err, wavelet.ErrDecomposition):
		resp.Error, resp.Code = "decomposition_error", http.StatusBadRequest
	case errors.Is(err, signal.ErrUnknownAbnormality):
		resp.Error, resp.Code = "invalid_argument", http.StatusBadRequest
	case errors.Is(err, classifier.ErrEmptyReferenceSet):
		resp.Error, resp.Code = "empty_reference_set", http.StatusConflict
	case errors.Is(err, ErrStorageDisabled):
		resp.Error, resp.Code = "storage_disabled", http.StatusNotImplemented
	default:
		resp.Error, resp.Code = "internal_error", http.StatusInternalServerError
	}
	return resp
}
