package signal

import "fmt"

// Band is a named EEG frequency range in Hz.
type Band struct {
	Name string
	Low  float64
	High float64
}

var (
	Delta = Band{Name: "delta", Low: 0.5, High: 4}
	Theta = Band{Name: "theta", Low: 4, High: 8}
	Alpha = Band{Name: "alpha", Low: 8, High: 12}
	Beta  = Band{Name: "beta", Low: 12, High: 30}
	Gamma = Band{Name: "gamma", Low: 30, High: 50}
)

// Bands returns the fixed band set ordered by frequency.
func Bands() []Band {
	return []Band{Delta, Theta, Alpha, Beta, Gamma}
}

func BandByName(name string) (Band, error) {
	for _, b := range Bands() {
		if b.Name == name {
			return b, nil
		}
	}
	return Band{}, fmt.Errorf("unknown frequency band %q", name)
}

// Abnormality names one of the synthetic pathological patterns.
type Abnormality string

const (
	HighDelta    Abnormality = "high_delta"
	MissingAlpha Abnormality = "missing_alpha"
	HighBeta     Abnormality = "high_beta"
)

// Abnormalities lists every supported pattern in dataset order.
func Abnormalities() []Abnormality {
	return []Abnormality{HighDelta, MissingAlpha, HighBeta}
}

// component is one band contribution of a recipe. Draw order matters: every
// component consumes entropy from the generator in sequence.
type component struct {
	band      Band
	amplitude float64
	noise     float64
}

// Amplitude and noise constants below are what the 600 MSE threshold was
// calibrated against.
var normalRecipe = []component{
	{Alpha, 2.0, 0.2},
	{Beta, 1.5, 0.15},
	{Theta, 1.0, 0.1},
	{Delta, 0.5, 0.05},
}

var abnormalRecipes = map[Abnormality][]component{
	HighDelta: {
		{Delta, 4.0, 0.3},
		{Theta, 2.0, 0.2},
		{Alpha, 0.5, 0.1},
		{Beta, 0.8, 0.1},
	},
	MissingAlpha: {
		{Beta, 2.5, 0.2},
		{Theta, 1.8, 0.15},
		{Delta, 1.0, 0.1},
		{Alpha, 0.2, 0.05},
	},
	HighBeta: {
		{Beta, 4.0, 0.3},
		{Alpha, 1.0, 0.1},
		{Theta, 0.8, 0.1},
		{Delta, 0.3, 0.05},
	},
}
