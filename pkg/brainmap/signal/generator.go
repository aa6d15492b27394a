package signal

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"
)

const (
	DefaultSampleRate = 256
	DefaultDuration   = 10

	modulationDepth = 0.3
	modulationMinHz = 0.1
	modulationMaxHz = 0.5
)

var ErrUnknownAbnormality = errors.New("unknown abnormality type")

// TimeSeries is a uniformly sampled signal.
type TimeSeries struct {
	Samples    []float64
	SampleRate int
	Duration   float64
}

func (ts TimeSeries) Len() int { return len(ts.Samples) }

// Generator synthesises EEG-like signals. It is safe for concurrent use; all
// draws go through one random source so a fixed seed reproduces a whole run.
type Generator struct {
	mu         sync.Mutex
	rng        *rand.Rand
	sampleRate int
	duration   int
	t          []float64
}

type Option func(*Generator)

// WithSeed makes the generator deterministic.
func WithSeed(seed uint64) Option {
	return func(g *Generator) {
		g.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

func WithRand(r *rand.Rand) Option {
	return func(g *Generator) {
		g.rng = r
	}
}

func WithSampleRate(rate int) Option {
	return func(g *Generator) {
		g.sampleRate = rate
	}
}

func WithDuration(seconds int) Option {
	return func(g *Generator) {
		g.duration = seconds
	}
}

func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		sampleRate: DefaultSampleRate,
		duration:   DefaultDuration,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		now := uint64(time.Now().UnixNano())
		g.rng = rand.New(rand.NewPCG(now, now>>17))
	}
	if g.sampleRate <= 0 {
		g.sampleRate = DefaultSampleRate
	}
	if g.duration <= 0 {
		g.duration = DefaultDuration
	}

	// linspace(0, duration, n): endpoint included.
	n := g.sampleRate * g.duration
	g.t = make([]float64, n)
	if n > 1 {
		step := float64(g.duration) / float64(n-1)
		for i := range g.t {
			g.t[i] = float64(i) * step
		}
	}
	return g
}

var (
	defaultGen  *Generator
	defaultOnce sync.Once
)

// Default returns the process-wide generator, seeded from the clock.
func Default() *Generator {
	defaultOnce.Do(func() {
		defaultGen = NewGenerator()
	})
	return defaultGen
}

func (g *Generator) SampleRate() int { return g.sampleRate }

func (g *Generator) Duration() int { return g.duration }

func (g *Generator) newSeries() TimeSeries {
	return TimeSeries{
		Samples:    make([]float64, len(g.t)),
		SampleRate: g.sampleRate,
		Duration:   float64(g.duration),
	}
}

func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*g.rng.Float64()
}

// addBand accumulates one band component into dst. Caller holds g.mu.
func (g *Generator) addBand(dst []float64, band Band, amplitude, noiseLevel float64) {
	freq := g.uniform(band.Low, band.High)
	phase := g.uniform(0, 2*math.Pi)
	modFreq := g.uniform(modulationMinHz, modulationMaxHz)

	for i, t := range g.t {
		wave := amplitude * math.Sin(2*math.Pi*freq*t+phase)
		wave *= 1 + modulationDepth*math.Sin(2*math.Pi*modFreq*t)
		dst[i] += wave
	}
	for i := range dst {
		dst[i] += noiseLevel * g.rng.NormFloat64()
	}
}

// GenerateBand returns a single amplitude-modulated band component with noise.
func (g *Generator) GenerateBand(band Band, amplitude, noiseLevel float64) TimeSeries {
	g.mu.Lock()
	defer g.mu.Unlock()

	ts := g.newSeries()
	g.addBand(ts.Samples, band, amplitude, noiseLevel)
	return ts
}

func (g *Generator) generate(recipe []component) TimeSeries {
	g.mu.Lock()
	defer g.mu.Unlock()

	ts := g.newSeries()
	for _, c := range recipe {
		g.addBand(ts.Samples, c.band, c.amplitude, c.noise)
	}
	return ts
}

// GenerateNormal returns an alpha-dominant resting EEG.
func (g *Generator) GenerateNormal() TimeSeries {
	return g.generate(normalRecipe)
}

func (g *Generator) GenerateAbnormal(kind Abnormality) (TimeSeries, error) {
	recipe, ok := abnormalRecipes[kind]
	if !ok {
		return TimeSeries{}, fmt.Errorf("%w: %q", ErrUnknownAbnormality, kind)
	}
	return g.generate(recipe), nil
}

// ParseAbnormality validates a user supplied abnormality name.
func ParseAbnormality(name string) (Abnormality, error) {
	kind := Abnormality(name)
	if _, ok := abnormalRecipes[kind]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownAbnormality, name)
	}
	return kind, nil
}
