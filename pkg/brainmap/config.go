package brainmap

import (
	"github.com/vanikaushik1712/brain-mapping-eeg-classification/pkg/brainmap/classifier"
)

type Config struct {
	DBPath  string
	DataDir string
	// ReferenceDir defaults to <DataDir>/reference_signals.
	ReferenceDir   string
	Threshold      float64
	Seed           uint64
	Seeded         bool
	ExportSignals  bool
	DisableStorage bool
	Logger         Logger
	Storage        Storage
}

type Option func(*Config)

func WithDBPath(path string) Option {
	return func(c *Config) {
		c.DBPath = path
	}
}

func WithDataDir(dir string) Option {
	return func(c *Config) {
		c.DataDir = dir
	}
}

func WithReferenceDir(dir string) Option {
	return func(c *Config) {
		c.ReferenceDir = dir
	}
}

// WithThreshold overrides the MSE decision threshold. It only makes sense
// for a dataset rendered with different parameters.
func WithThreshold(threshold float64) Option {
	return func(c *Config) {
		c.Threshold = threshold
	}
}

// WithSeed makes dataset generation and signal synthesis reproducible.
func WithSeed(seed uint64) Option {
	return func(c *Config) {
		c.Seed = seed
		c.Seeded = true
	}
}

func WithSignalExport(enabled bool) Option {
	return func(c *Config) {
		c.ExportSignals = enabled
	}
}

func WithLogger(log Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

func WithStorage(storage Storage) Option {
	return func(c *Config) {
		c.Storage = storage
	}
}

// WithoutStorage runs the service purely in memory: no history and no
// reference snapshots.
func WithoutStorage() Option {
	return func(c *Config) {
		c.DisableStorage = true
	}
}

func defaultConfig() *Config {
	return &Config{
		DBPath:    "brainmap.sqlite3",
		DataDir:   "data",
		Threshold: classifier.DefaultThreshold,
		Logger:    nil,
	}
}
