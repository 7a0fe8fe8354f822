package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds every parameter of a training run. The zero-flag run uses
// Default().
type Config struct {
	Data       DataConfig       `yaml:"data"`
	Output     OutputConfig     `yaml:"output"`
	Split      SplitConfig      `yaml:"split"`
	Search     SearchConfig     `yaml:"search"`
	Evaluation EvaluationConfig `yaml:"evaluation"`
	Model      ModelConfig      `yaml:"model"`
	Preprocess string           `yaml:"preprocess"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type DataConfig struct {
	Input     string `yaml:"input"`
	Delimiter string `yaml:"delimiter"`
}

type OutputConfig struct {
	Weights string `yaml:"weights"`
	Summary string `yaml:"summary"`
}

type SplitConfig struct {
	TestSize float64 `yaml:"test_size"`
	Seed     uint64  `yaml:"seed"`
}

type SearchConfig struct {
	Iterations int     `yaml:"iterations"`
	Folds      int     `yaml:"folds"`
	Scale      float64 `yaml:"scale"`
	Seed       uint64  `yaml:"seed"`
}

type EvaluationConfig struct {
	Folds   int    `yaml:"folds"`
	Scoring string `yaml:"scoring"`
	// PrecisionFit selects the split the precision/recall classifier is
	// fitted on: "eval" fits and predicts on the evaluation split, "train"
	// fits on the train split and predicts the evaluation split.
	PrecisionFit string `yaml:"precision_fit"`
}

type ModelConfig struct {
	Algorithm        string  `yaml:"algorithm"`
	Penalty          string  `yaml:"penalty"`
	Dual             bool    `yaml:"dual"`
	ClassWeight      string  `yaml:"class_weight"`
	Tol              float64 `yaml:"tol"`
	MaxIter          int     `yaml:"max_iter"`
	FitIntercept     bool    `yaml:"fit_intercept"`
	InterceptScaling float64 `yaml:"intercept_scaling"`
	Seed             uint64  `yaml:"seed"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

func Default() *Config {
	return &Config{
		Data: DataConfig{
			Input:     "resultat.csv",
			Delimiter: ",",
		},
		Output: OutputConfig{
			Weights: "weights.txt",
			Summary: "output.txt",
		},
		Split: SplitConfig{
			TestSize: 0.5,
			Seed:     0,
		},
		Search: SearchConfig{
			Iterations: 20,
			Folds:      3,
			Scale:      1,
			Seed:       0,
		},
		Evaluation: EvaluationConfig{
			Folds:        6,
			Scoring:      "accuracy",
			PrecisionFit: "eval",
		},
		Model: ModelConfig{
			Algorithm:        "linearsvc",
			Penalty:          "l2",
			Dual:             false,
			ClassWeight:      "balanced",
			Tol:              1e-4,
			MaxIter:          1000,
			FitIntercept:     true,
			InterceptScaling: 1,
			Seed:             0,
		},
		Preprocess: "raw",
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML file on top of Default(). A missing file is not an
// error: the defaults are returned as is.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Data.Input == "" {
		return fmt.Errorf("data.input must be set")
	}
	if len([]rune(c.Data.Delimiter)) != 1 {
		return fmt.Errorf("data.delimiter must be a single character, got %q", c.Data.Delimiter)
	}
	if c.Output.Weights == "" || c.Output.Summary == "" {
		return fmt.Errorf("output.weights and output.summary must be set")
	}
	if c.Split.TestSize <= 0 || c.Split.TestSize >= 1 {
		return fmt.Errorf("split.test_size must be between 0 and 1, got %v", c.Split.TestSize)
	}
	if c.Search.Iterations < 1 {
		return fmt.Errorf("search.iterations must be positive, got %d", c.Search.Iterations)
	}
	if c.Search.Folds < 2 {
		return fmt.Errorf("search.folds must be at least 2, got %d", c.Search.Folds)
	}
	if c.Search.Scale <= 0 {
		return fmt.Errorf("search.scale must be positive, got %v", c.Search.Scale)
	}
	if c.Evaluation.Folds < 2 {
		return fmt.Errorf("evaluation.folds must be at least 2, got %d", c.Evaluation.Folds)
	}
	switch c.Evaluation.PrecisionFit {
	case "eval", "train":
	default:
		return fmt.Errorf("evaluation.precision_fit must be eval or train, got %q", c.Evaluation.PrecisionFit)
	}
	switch c.Preprocess {
	case "raw", "normalized", "standardized":
	default:
		return fmt.Errorf("unknown preprocessing method: %s", c.Preprocess)
	}
	return nil
}
