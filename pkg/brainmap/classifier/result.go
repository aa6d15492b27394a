package classifier

import (
	"encoding/json"
	"fmt"
)

// Result is the outcome of one classification. MatchedFrame is set only for
// Normal results.
type Result struct {
	TestID         string
	MinMSE         float64
	MatchedFrame   *int
	MSEValues      []float64
	Label          string
	Confidence     float64
	Threshold      float64
	Shape          [2]int
	ReferenceCount int
}

func (r *Result) IsNormal() bool {
	return r.Label == LabelNormal
}

// ConfidenceString formats the confidence as a two decimal percentage.
func (r *Result) ConfidenceString() string {
	return fmt.Sprintf("%.2f%%", r.Confidence)
}

type coefficientInfo struct {
	Shape          [2]int `json:"shape"`
	ReferenceCount int    `json:"reference_count"`
}

type payload struct {
	Classification      string          `json:"classification"`
	Confidence          string          `json:"confidence"`
	MinMSE              float64         `json:"min_mse"`
	MatchedFrame        *int            `json:"matched_frame"`
	AllMSEValues        []float64       `json:"all_mse_values"`
	Threshold           float64         `json:"threshold"`
	WaveletCoefficients coefficientInfo `json:"wavelet_coefficients"`
	TestImage           string          `json:"test_image,omitempty"`
}

func (r *Result) MarshalJSON() ([]byte, error) {
	values := r.MSEValues
	if values == nil {
		values = []float64{}
	}
	return json.Marshal(payload{
		Classification: r.Label,
		Confidence:     r.ConfidenceString(),
		MinMSE:         r.MinMSE,
		MatchedFrame:   r.MatchedFrame,
		AllMSEValues:   values,
		Threshold:      r.Threshold,
		WaveletCoefficients: coefficientInfo{
			Shape:          r.Shape,
			ReferenceCount: r.ReferenceCount,
		},
		TestImage: r.TestID,
	})
}
