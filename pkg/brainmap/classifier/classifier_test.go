package classifier

import (
	"encoding/json"
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/vanikaushik1712/brain-mapping-eeg-classification/pkg/brainmap/reference"
	"github.com/vanikaushik1712/brain-mapping-eeg-classification/pkg/brainmap/wavelet"
)

func filled(r, c int, v float64) *mat.Dense {
	m := mat.NewDense(r, c, nil)
	m.Apply(func(_, _ int, _ float64) float64 { return v }, m)
	return m
}

func random(r, c int, seed uint64) *mat.Dense {
	rng := rand.New(rand.NewPCG(seed, 0))
	m := mat.NewDense(r, c, nil)
	m.Apply(func(_, _ int, _ float64) float64 { return rng.Float64() * 255 }, m)
	return m
}

func refsOf(ms ...*mat.Dense) []reference.Entry {
	out := make([]reference.Entry, len(ms))
	for i, m := range ms {
		out[i] = reference.Entry{Index: i + 1, Name: "ref", Composite: m}
	}
	return out
}

func TestMSEOnesVsZeros(t *testing.T) {
	if got := MSE(filled(100, 100, 1), filled(100, 100, 0)); got != 1.0 {
		t.Errorf("Expected MSE 1.0, got %v", got)
	}
}

func TestMSEIdentityAndSymmetry(t *testing.T) {
	a := random(32, 32, 1)
	b := random(32, 32, 2)

	if got := MSE(a, a); got != 0 {
		t.Errorf("MSE(X,X) should be 0, got %v", got)
	}
	if ab, ba := MSE(a, b), MSE(b, a); ab != ba {
		t.Errorf("MSE is not symmetric: %v vs %v", ab, ba)
	}
}

func TestMSECropsToCommonShape(t *testing.T) {
	a := filled(4, 6, 2)
	b := filled(5, 3, 0)
	// only the 4x3 overlap counts
	b.Set(4, 0, 1000)

	if got := MSE(a, b); got != 4 {
		t.Errorf("Expected cropped MSE 4, got %v", got)
	}
	if got := MSE(a, mat.NewDense(1, 1, []float64{2})); got != 0 {
		t.Errorf("Expected 0 for matching 1x1 overlap, got %v", got)
	}
}

func TestClassifyCompositeExample(t *testing.T) {
	refs := refsOf(filled(4, 4, 0), filled(4, 4, 1))

	res, err := ClassifyComposite("sample.png", filled(4, 4, 0), refs, DefaultThreshold)
	if err != nil {
		t.Fatalf("ClassifyComposite failed: %v", err)
	}

	if res.MinMSE != 0 {
		t.Errorf("Expected min MSE 0, got %v", res.MinMSE)
	}
	if res.Label != LabelNormal || !res.IsNormal() {
		t.Errorf("Expected Normal, got %s", res.Label)
	}
	if got := res.ConfidenceString(); got != "100.00%" {
		t.Errorf("Expected confidence 100.00%%, got %s", got)
	}
	if res.MatchedFrame == nil || *res.MatchedFrame != 1 {
		t.Errorf("Expected matched frame 1, got %v", res.MatchedFrame)
	}
	if len(res.MSEValues) != 2 || res.MSEValues[1] != 1 {
		t.Errorf("Expected MSE values [0 1], got %v", res.MSEValues)
	}
}

func TestClassifyCompositeTieGoesToFirst(t *testing.T) {
	refs := refsOf(filled(4, 4, 5), filled(4, 4, 1), filled(4, 4, 1))

	res, err := ClassifyComposite("tie", filled(4, 4, 0), refs, DefaultThreshold)
	if err != nil {
		t.Fatalf("ClassifyComposite failed: %v", err)
	}
	if res.MatchedFrame == nil || *res.MatchedFrame != 2 {
		t.Errorf("Expected first minimum at frame 2, got %v", res.MatchedFrame)
	}
}

func TestClassifyCompositeThresholdRule(t *testing.T) {
	tests := []struct {
		name      string
		value     float64 // test composite filled with value, single zero reference
		threshold float64
		label     string
		conf      float64
	}{
		{"well below", 10, 600, LabelNormal, (600 - 100) / 600.0 * 100},
		{"just below", 24, 600, LabelNormal, (600 - 576) / 600.0 * 100},
		{"equal is abnormal", 10, 100, LabelAbnormal, 100},
		{"far above capped", 100, 600, LabelAbnormal, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ClassifyComposite(tt.name, filled(8, 8, tt.value), refsOf(filled(8, 8, 0)), tt.threshold)
			if err != nil {
				t.Fatalf("ClassifyComposite failed: %v", err)
			}
			if res.Label != tt.label {
				t.Errorf("Expected %s, got %s (min %v)", tt.label, res.Label, res.MinMSE)
			}
			if math.Abs(res.Confidence-tt.conf) > 1e-9 {
				t.Errorf("Expected confidence %v, got %v", tt.conf, res.Confidence)
			}
			if tt.label == LabelAbnormal && res.MatchedFrame != nil {
				t.Errorf("Abnormal result should not have a matched frame, got %d", *res.MatchedFrame)
			}
		})
	}
}

func TestClassifyInvariants(t *testing.T) {
	refs := refsOf(random(64, 64, 10), random(64, 64, 11), random(64, 64, 12))

	for seed := uint64(0); seed < 20; seed++ {
		test := random(64, 64, 100+seed)
		// shrink toward the first reference so both labels occur
		if seed%2 == 0 {
			test.Scale(0.05, test)
			test.Add(test, refs[0].Composite)
		}
		res, err := ClassifyComposite("sample", test, refs, DefaultThreshold)
		if err != nil {
			t.Fatalf("ClassifyComposite failed: %v", err)
		}

		if res.MinMSE < res.Threshold {
			if res.Label != LabelNormal {
				t.Errorf("seed %d: min %v below threshold but label %s", seed, res.MinMSE, res.Label)
			}
			if res.MatchedFrame == nil || *res.MatchedFrame < 1 || *res.MatchedFrame > len(refs) {
				t.Errorf("seed %d: matched frame %v out of range", seed, res.MatchedFrame)
			}
			if res.Confidence <= 0 || res.Confidence > 100 {
				t.Errorf("seed %d: Normal confidence %v outside (0,100]", seed, res.Confidence)
			}
		} else {
			if res.Label != LabelAbnormal || res.MatchedFrame != nil {
				t.Errorf("seed %d: expected Abnormal with no frame, got %s %v", seed, res.Label, res.MatchedFrame)
			}
			if res.Confidence < 0 || res.Confidence > 100 {
				t.Errorf("seed %d: Abnormal confidence %v outside [0,100]", seed, res.Confidence)
			}
		}
	}
}

func TestClassifyErrors(t *testing.T) {
	if _, err := ClassifyComposite("x", filled(4, 4, 0), nil, DefaultThreshold); !errors.Is(err, ErrEmptyReferenceSet) {
		t.Errorf("Expected ErrEmptyReferenceSet, got %v", err)
	}
	if _, err := Classify("x", filled(256, 256, 0), []reference.Entry{}, DefaultThreshold); !errors.Is(err, ErrEmptyReferenceSet) {
		t.Errorf("Expected ErrEmptyReferenceSet, got %v", err)
	}
	if _, err := ClassifyComposite("x", filled(4, 4, 0), refsOf(filled(4, 4, 0)), 0); !errors.Is(err, ErrInvalidThreshold) {
		t.Errorf("Expected ErrInvalidThreshold, got %v", err)
	}
	if _, err := Classify("x", filled(100, 100, 0), refsOf(filled(4, 4, 0)), DefaultThreshold); !errors.Is(err, wavelet.ErrDecomposition) {
		t.Errorf("Expected ErrDecomposition for 100x100 image, got %v", err)
	}
}

func TestClassifyDecomposesImage(t *testing.T) {
	img := random(256, 256, 42)
	composite, err := wavelet.Composite(img)
	if err != nil {
		t.Fatalf("Composite failed: %v", err)
	}

	res, err := Classify("self.png", img, refsOf(filled(256, 256, 0), composite), DefaultThreshold)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if res.MinMSE != 0 || res.MatchedFrame == nil || *res.MatchedFrame != 2 {
		t.Errorf("Expected exact match on frame 2, got min %v frame %v", res.MinMSE, res.MatchedFrame)
	}
	if res.Shape != [2]int{256, 256} {
		t.Errorf("Expected shape [256 256], got %v", res.Shape)
	}
}

func TestResultJSON(t *testing.T) {
	refs := refsOf(filled(4, 4, 0), filled(4, 4, 1))

	normal, err := ClassifyComposite("test_normal_1.png", filled(4, 4, 0), refs, DefaultThreshold)
	if err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(normal)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if got["classification"] != "Normal" || got["confidence"] != "100.00%" {
		t.Errorf("Unexpected label fields: %s", data)
	}
	if got["matched_frame"] != float64(1) || got["threshold"] != float64(600) {
		t.Errorf("Unexpected frame/threshold: %s", data)
	}
	coeffs, ok := got["wavelet_coefficients"].(map[string]any)
	if !ok || coeffs["reference_count"] != float64(2) {
		t.Errorf("Unexpected wavelet_coefficients: %s", data)
	}
	if got["test_image"] != "test_normal_1.png" {
		t.Errorf("Expected test_image field, got %v", got["test_image"])
	}

	abnormal, err := ClassifyComposite("", filled(4, 4, 100), refs, DefaultThreshold)
	if err != nil {
		t.Fatal(err)
	}
	data, err = json.Marshal(abnormal)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	got = nil
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if v, ok := got["matched_frame"]; !ok || v != nil {
		t.Errorf("Expected matched_frame null, got %s", data)
	}
	if _, ok := got["test_image"]; ok {
		t.Errorf("test_image should be omitted when unknown: %s", data)
	}
}

func BenchmarkClassify(b *testing.B) {
	refs := make([]reference.Entry, 5)
	for i := range refs {
		c, err := wavelet.Composite(random(256, 256, uint64(i)))
		if err != nil {
			b.Fatal(err)
		}
		refs[i] = reference.Entry{Index: i + 1, Composite: c}
	}
	img := random(256, 256, 99)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Classify("bench", img, refs, DefaultThreshold); err != nil {
			b.Fatal(err)
		}
	}
}
