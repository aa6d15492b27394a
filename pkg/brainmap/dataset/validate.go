package dataset

import (
	"fmt"
	"path/filepath"

	"github.com/vanikaushik1712/brain-mapping-eeg-classification/pkg/brainmap/imaging"
	"github.com/vanikaushik1712/brain-mapping-eeg-classification/pkg/utils"
)

// Validate checks the dataset layout under dataDir and returns every problem
// found. An empty result means the dataset is usable.
func Validate(dataDir string) []string {
	var issues []string

	refDir := filepath.Join(dataDir, ReferenceDirName)
	if utils.DirExists(refDir) {
		refs, err := utils.ListFiles(refDir, imaging.IsReferenceFile)
		if err != nil {
			issues = append(issues, err.Error())
		}
		if len(refs) < ReferenceCount {
			issues = append(issues, fmt.Sprintf("Only %d reference patterns found, expected %d", len(refs), ReferenceCount))
		}
		for _, name := range refs {
			w, h, err := imaging.Dimensions(filepath.Join(refDir, name))
			if err != nil {
				issues = append(issues, fmt.Sprintf("%s: Cannot open image - %v", name, err))
				continue
			}
			if w != imaging.Size || h != imaging.Size {
				issues = append(issues, fmt.Sprintf("%s: Invalid size %dx%d, expected %dx%d", name, w, h, imaging.Size, imaging.Size))
			}
		}
	} else {
		issues = append(issues, "Reference signals directory not found")
	}

	testDir := filepath.Join(dataDir, TestDirName)
	if utils.DirExists(testDir) {
		tests, err := utils.ListFiles(testDir, imaging.IsImageFile)
		if err != nil {
			issues = append(issues, err.Error())
		}
		if len(tests) == 0 {
			issues = append(issues, "No test samples found")
		}
	} else {
		issues = append(issues, "Test samples directory not found")
	}

	return issues
}
