package application

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-arena/internal/domain"
)

// Config is the complete run configuration: alignment strictness,
// orchestration limits, rating parameters, and the partial-run policy.
// It is loaded from a YAML file or assembled from CLI flags.
type Config struct {
	// Strict makes a scenario covered by fewer than two generators a
	// fatal error instead of a logged skip.
	Strict bool `yaml:"strict"`

	// Orchestrator configures judge concurrency and fault tolerance.
	Orchestrator OrchestratorConfig `yaml:"orchestrator"`

	// KFactor bounds how far one outcome can move a rating. Zero uses
	// the default of 32.
	KFactor float64 `yaml:"k_factor" validate:"min=0"`

	// BaseRating is every generator's starting rating. Zero uses the
	// default of 1000.
	BaseRating float64 `yaml:"base_rating" validate:"min=0"`

	// FinalizePartial controls what happens when the failure-rate abort
	// trips: true rates the verdicts collected so far, false discards
	// the run.
	FinalizePartial bool `yaml:"finalize_partial"`

	// PositionSwap judges each comparison twice with responses swapped
	// and only declares a winner when both rounds agree.
	PositionSwap bool `yaml:"position_swap"`
}

// DefaultConfig returns the configuration used when no file or flags are
// supplied.
func DefaultConfig() Config {
	return Config{
		Orchestrator:    DefaultOrchestratorConfig(),
		KFactor:         domain.DefaultKFactor,
		BaseRating:      domain.DefaultBaseRating,
		FinalizePartial: true,
	}
}

// LoadConfig reads and validates a YAML configuration file. Fields absent
// from the file keep their defaults.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// Validate checks the configuration's structural constraints.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}
