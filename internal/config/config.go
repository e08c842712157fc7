package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
	"go.uber.org/multierr"

	"statforest/internal/models"
	"statforest/internal/store"
)

// Config drives the trainer and the analyzer.
type Config struct {
	Data    DataConfig    `yaml:"data"`
	Split   SplitConfig   `yaml:"split"`
	Grid    models.Grid   `yaml:"grid"`
	Workers WorkersConfig `yaml:"workers"`
	Store   store.Options `yaml:"store"`
	Model   ModelConfig   `yaml:"model"`
	Report  ReportConfig  `yaml:"report"`
}

type DataConfig struct {
	Path       string `yaml:"path" validate:"required"`
	Regenerate bool   `yaml:"regenerate"`
	Rows       int    `yaml:"rows" validate:"required_if=Regenerate true,min=0"`
	Seed       int64  `yaml:"seed"`
}

type SplitConfig struct {
	TestFraction float64 `yaml:"test_fraction" validate:"gt=0,lt=1"`
	Seed         int64   `yaml:"seed"`
}

// WorkersConfig bounds parallelism; zero picks the package defaults.
type WorkersConfig struct {
	Trees int `yaml:"trees" validate:"min=0"`
	Grid  int `yaml:"grid" validate:"min=0"`
}

type ModelConfig struct {
	Name string `yaml:"name" validate:"required,excludesall=/\\"`
}

type ReportConfig struct {
	Dir         string `yaml:"dir" validate:"required"`
	CurvePoints int    `yaml:"curve_points" validate:"min=2"`
	CurveMin    int    `yaml:"curve_min" validate:"min=1"`
}

func Default() Config {
	return Config{
		Data:  DataConfig{Path: "data/game_logs.csv", Regenerate: true, Rows: 20000, Seed: 7},
		Split: SplitConfig{TestFraction: 0.2, Seed: 42},
		Grid: models.Grid{
			NEstimators:     []int{50, 100},
			MaxDepth:        []int{6, 10},
			MinSamplesSplit: []int{2},
			MinSamplesLeaf:  []int{1, 5},
			MaxFeatures:     []models.MaxFeatures{models.MaxFeaturesSqrt},
			RandomSeed:      []int64{42},
		},
		Store:  store.Options{Kind: "file", Dir: "models"},
		Model:  ModelConfig{Name: "assists"},
		Report: ReportConfig{Dir: "reports", CurvePoints: 8, CurveMin: 200},
	}
}

// Load reads a YAML file over Default. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.UnmarshalWithOptions(b, &cfg, yaml.DisallowUnknownField()); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate runs the struct tags and then the grid's own value checks.
func (c Config) Validate() error {
	if err := structErrors(validate.Struct(c)); err != nil {
		return err
	}
	return c.Grid.Validate()
}

func structErrors(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	var errs error
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		if fe.Param() != "" {
			errs = multierr.Append(errs, fmt.Errorf("%s: failed %s=%s", field, fe.Tag(), fe.Param()))
			continue
		}
		errs = multierr.Append(errs, fmt.Errorf("%s: failed %s", field, fe.Tag()))
	}
	return errs
}
