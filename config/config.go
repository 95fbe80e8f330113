// Package config loads fitrank settings from FITRANK_* environment variables.
package config

import (
	"fmt"

	"github.com/YuminosukeSato/fitrank/pkg/errors"
	"github.com/YuminosukeSato/fitrank/solver"
	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

// EnvPrefix is prepended to every variable name.
const EnvPrefix = "FITRANK_"

// validate is the shared validator instance used by Config.Validate.
var validate *validator.Validate

func init() {
	validate = validator.New()

	if err := validate.RegisterValidation("solvermethod", validateSolverMethod); err != nil {
		panic(fmt.Sprintf("failed to register solver method validator: %v", err))
	}
}

func validateSolverMethod(fl validator.FieldLevel) bool {
	_, err := solver.ParseMethod(fl.Field().String())
	return err == nil
}

// Config holds the settings of a fitting tool and its surroundings.
type Config struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"warn" validate:"oneof=debug info warn warning error"`

	// Workers is the number of forms fitted concurrently; 0 means one per CPU.
	Workers          int  `env:"WORKERS" envDefault:"1" validate:"gte=0"`
	SkipFailures     bool `env:"SKIP_FAILURES" envDefault:"false"`
	ExtendedForms    bool `env:"EXTENDED_FORMS" envDefault:"false"`
	ExtendedCriteria bool `env:"EXTENDED_CRITERIA" envDefault:"false"`

	SolverMethod   string  `env:"SOLVER_METHOD" envDefault:"lm" validate:"solvermethod"`
	MaxIterations  int     `env:"MAX_ITERATIONS" envDefault:"1000" validate:"gte=1"`
	FTol           float64 `env:"FTOL" envDefault:"1.49012e-8" validate:"gt=0"`
	XTol           float64 `env:"XTOL" envDefault:"1.49012e-8" validate:"gt=0"`
	GTol           float64 `env:"GTOL" envDefault:"0" validate:"gte=0"`
	InitialDamping float64 `env:"INITIAL_DAMPING" envDefault:"0.001" validate:"gt=0"`

	// OutputDir is where plots are written.
	OutputDir string `env:"OUTPUT_DIR" envDefault:"." validate:"required"`
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	return load(env.Options{Prefix: EnvPrefix})
}

// LoadFrom reads the configuration from environ instead of the process
// environment. Keys include the FITRANK_ prefix.
func LoadFrom(environ map[string]string) (*Config, error) {
	if environ == nil {
		environ = map[string]string{}
	}
	return load(env.Options{Prefix: EnvPrefix, Environment: environ})
}

func load(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, errors.Wrap(err, "config: parse environment")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration with every variable unset.
func Default() *Config {
	cfg, err := LoadFrom(nil)
	if err != nil {
		panic(fmt.Sprintf("config: invalid defaults: %v", err))
	}
	return cfg
}

// Validate checks field constraints and reports the first violation as a
// ValidationError.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return errors.NewValidationError(fe.Field(), "failed "+fe.Tag()+" constraint", fe.Value())
	}
	return errors.Wrap(err, "config: validate")
}

// SolverOptions converts the solver settings into solver.Options.
func (c *Config) SolverOptions() solver.Options {
	method, err := solver.ParseMethod(c.SolverMethod)
	if err != nil {
		method = solver.MethodLevenbergMarquardt
	}
	return solver.Options{
		Method:         method,
		MaxIterations:  c.MaxIterations,
		FTol:           c.FTol,
		XTol:           c.XTol,
		GTol:           c.GTol,
		InitialDamping: c.InitialDamping,
	}
}
