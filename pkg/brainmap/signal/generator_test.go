package signal

import (
	"errors"
	"math"
	"math/rand/v2"
	"path/filepath"
	"testing"
)

func TestNewGeneratorDefaults(t *testing.T) {
	g := NewGenerator(WithSeed(1))

	if g.SampleRate() != 256 {
		t.Errorf("Expected sample rate 256, got %d", g.SampleRate())
	}
	if g.Duration() != 10 {
		t.Errorf("Expected duration 10, got %d", g.Duration())
	}
	if len(g.t) != 256*10 {
		t.Fatalf("Expected %d time points, got %d", 256*10, len(g.t))
	}
	if g.t[0] != 0 || math.Abs(g.t[len(g.t)-1]-10) > 1e-12 {
		t.Errorf("Time axis should span [0, 10], got [%f, %f]", g.t[0], g.t[len(g.t)-1])
	}
}

func TestCustomSampleRateAndDuration(t *testing.T) {
	g := NewGenerator(WithSeed(1), WithSampleRate(128), WithDuration(4))

	ts := g.GenerateNormal()
	if ts.SampleRate != 128 || ts.Duration != 4 {
		t.Errorf("Expected 128 Hz for 4 s, got %d Hz for %v s", ts.SampleRate, ts.Duration)
	}
	if ts.Len() != 128*4 {
		t.Errorf("Expected %d samples, got %d", 128*4, ts.Len())
	}

	fallback := NewGenerator(WithSeed(1), WithSampleRate(0), WithDuration(-3))
	if fallback.SampleRate() != DefaultSampleRate || fallback.Duration() != DefaultDuration {
		t.Errorf("Expected defaults for invalid options, got %d Hz / %d s", fallback.SampleRate(), fallback.Duration())
	}
}

func TestWithRandSharesSource(t *testing.T) {
	a := NewGenerator(WithRand(rand.New(rand.NewPCG(7, 8)))).GenerateBand(Theta, 1, 0.5)
	b := NewGenerator(WithRand(rand.New(rand.NewPCG(7, 8)))).GenerateBand(Theta, 1, 0.5)

	for i := range a.Samples {
		if a.Samples[i] != b.Samples[i] {
			t.Fatalf("Injected sources with the same state diverged at sample %d", i)
		}
	}
}

func TestGenerateBandLength(t *testing.T) {
	g := NewGenerator(WithSeed(2))
	ts := g.GenerateBand(Alpha, 1.0, 0.1)

	if ts.Len() != ts.SampleRate*int(ts.Duration) {
		t.Errorf("Length %d does not match rate*duration %d", ts.Len(), ts.SampleRate*int(ts.Duration))
	}
}

func TestGenerateBandAmplitudeBound(t *testing.T) {
	g := NewGenerator(WithSeed(3))
	ts := g.GenerateBand(Beta, 2.0, 0)

	// amplitude * (1 + modulation depth)
	limit := 2.0 * 1.3
	for i, v := range ts.Samples {
		if math.Abs(v) > limit+1e-9 {
			t.Fatalf("Sample %d = %f exceeds noiseless bound %f", i, v, limit)
		}
	}
}

func TestSeededGeneratorsAreReproducible(t *testing.T) {
	a := NewGenerator(WithSeed(42)).GenerateNormal()
	b := NewGenerator(WithSeed(42)).GenerateNormal()
	c := NewGenerator(WithSeed(43)).GenerateNormal()

	for i := range a.Samples {
		if a.Samples[i] != b.Samples[i] {
			t.Fatalf("Same seed diverged at sample %d", i)
		}
	}

	same := true
	for i := range a.Samples {
		if a.Samples[i] != c.Samples[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("Different seeds produced identical signals")
	}
}

func TestGenerateAbnormal(t *testing.T) {
	g := NewGenerator(WithSeed(7))

	for _, kind := range Abnormalities() {
		t.Run(string(kind), func(t *testing.T) {
			ts, err := g.GenerateAbnormal(kind)
			if err != nil {
				t.Fatalf("GenerateAbnormal(%s) failed: %v", kind, err)
			}
			if ts.Len() != 2560 {
				t.Errorf("Expected 2560 samples, got %d", ts.Len())
			}
		})
	}

	if _, err := g.GenerateAbnormal("low_gamma"); !errors.Is(err, ErrUnknownAbnormality) {
		t.Errorf("Expected ErrUnknownAbnormality, got %v", err)
	}
}

func TestRecipesUseFourDistinctBands(t *testing.T) {
	recipes := map[string][]component{"normal": normalRecipe}
	for k, r := range abnormalRecipes {
		recipes[string(k)] = r
	}

	for name, r := range recipes {
		if len(r) != 4 {
			t.Errorf("%s: expected 4 components, got %d", name, len(r))
		}
		seen := map[string]bool{}
		for _, c := range r {
			seen[c.band.Name] = true
		}
		for _, b := range []Band{Delta, Theta, Alpha, Beta} {
			if !seen[b.Name] {
				t.Errorf("%s: missing band %s", name, b.Name)
			}
		}
	}
}

func TestParseAbnormality(t *testing.T) {
	if kind, err := ParseAbnormality("missing_alpha"); err != nil || kind != MissingAlpha {
		t.Errorf("ParseAbnormality(missing_alpha) = %q, %v", kind, err)
	}
	if _, err := ParseAbnormality("nope"); err == nil {
		t.Error("Expected error for unknown abnormality")
	}
}

func TestBandByName(t *testing.T) {
	b, err := BandByName("gamma")
	if err != nil {
		t.Fatalf("BandByName failed: %v", err)
	}
	if b.Low != 30 || b.High != 50 {
		t.Errorf("Unexpected gamma range %v-%v", b.Low, b.High)
	}
	if _, err := BandByName("mu"); err == nil {
		t.Error("Expected error for unknown band")
	}
}

func TestWAVRoundTrip(t *testing.T) {
	g := NewGenerator(WithSeed(11))
	ts := g.GenerateNormal()

	path := filepath.Join(t.TempDir(), "normal.wav")
	if err := WriteWAV(path, ts); err != nil {
		t.Fatalf("WriteWAV failed: %v", err)
	}

	got, err := ReadWAV(path)
	if err != nil {
		t.Fatalf("ReadWAV failed: %v", err)
	}
	if got.SampleRate != ts.SampleRate {
		t.Errorf("Expected rate %d, got %d", ts.SampleRate, got.SampleRate)
	}
	if got.Len() != ts.Len() {
		t.Fatalf("Expected %d samples, got %d", ts.Len(), got.Len())
	}

	peak := 0.0
	for _, v := range ts.Samples {
		peak = math.Max(peak, math.Abs(v))
	}
	// 16-bit quantisation of a peak-normalised signal
	for i := range ts.Samples {
		if diff := math.Abs(got.Samples[i] - ts.Samples[i]/peak); diff > 1e-3 {
			t.Fatalf("Sample %d differs by %f", i, diff)
		}
	}
}

func TestWriteWAVRejectsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.wav")
	if err := WriteWAV(path, TimeSeries{SampleRate: 256}); err == nil {
		t.Error("Expected error for empty series")
	}
}
