package levelgen

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/voidshard/levelgen/internal/placement"
	"github.com/voidshard/levelgen/internal/shape"
)

var (
	// ErrConfiguration is matched (errors.Is) by every ConfigurationError
	ErrConfiguration = errors.New("level configuration error")

	// ErrPlacementExhausted implies one object ran out of attempts & was skipped.
	// These are warnings (see Level.Warnings), never returned by New.
	ErrPlacementExhausted = placement.ErrExhausted

	// ErrMissingPrototype implies a job with no shape to place
	ErrMissingPrototype = placement.ErrMissingPrototype

	// ErrUnsupportedShape implies a shape kind we cannot collide
	ErrUnsupportedShape = shape.ErrUnsupportedKind

	// ErrUnknownJob implies a Spawn for a job name that isn't configured
	ErrUnknownJob = errors.New("unknown job")
)

// ConfigurationError aborts level generation. No partial level is ever
// returned alongside one.
type ConfigurationError struct {
	Step string // which part of generation failed
	Err  error
}

// Error implements error
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error in %s: %v", e.Step, e.Err)
}

// Unwrap returns the underlying error
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Is allows errors.Is(err, ErrConfiguration)
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// IsConfigurationError returns if err is (or wraps) a ConfigurationError
func IsConfigurationError(err error) bool {
	var cerr *ConfigurationError
	return errors.As(err, &cerr)
}

// configError wraps err as a ConfigurationError for the given step
func configError(step string, err error) error {
	if err == nil {
		return nil
	}
	if IsConfigurationError(err) {
		return err
	}
	return &ConfigurationError{Step: step, Err: err}
}
