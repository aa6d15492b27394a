package brainmap

import "time"

// HistoryEntry is one stored classification.
type HistoryEntry struct {
	ID             string    `json:"id"`              // Record UUID
	TestID         string    `json:"test_image"`      // File name or caller supplied identifier
	Label          string    `json:"classification"`  // Normal or Abnormal
	Confidence     float64   `json:"confidence"`      // Percentage (0-100)
	MinMSE         float64   `json:"min_mse"`         // Distance to the nearest reference
	MatchedFrame   *int      `json:"matched_frame"`   // 1-based reference index, nil when Abnormal
	ReferenceCount int       `json:"reference_count"` // Size of the reference set used
	CreatedAt      time.Time `json:"created_at"`
}

// Info describes the running configuration.
type Info struct {
	ReferenceCount int     `json:"reference_frames_loaded"`
	ReferenceDir   string  `json:"reference_dir"`
	Wavelet        string  `json:"wavelet"`
	Levels         int     `json:"levels"`
	Threshold      float64 `json:"threshold"`
	Storage        bool    `json:"storage_enabled"`
}
