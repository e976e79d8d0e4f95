// Package validation provides a fluent validator for configuration
// structs. It collects every violation rather than stopping at the
// first, so a bad config file reports all of its problems at once.
package validation

import (
	"errors"
	"fmt"
)

// ConfigValidator accumulates validation errors for one config struct.
type ConfigValidator struct {
	name   string
	errors []error
}

// NewConfigValidator creates a validator named after the config struct
// being checked; the name prefixes every error message.
func NewConfigValidator(configName string) *ConfigValidator {
	return &ConfigValidator{name: configName}
}

func (cv *ConfigValidator) addf(format string, args ...any) {
	cv.errors = append(cv.errors, fmt.Errorf(cv.name+"."+format, args...))
}

// Positive requires value > 0.
func (cv *ConfigValidator) Positive(field string, value float64) *ConfigValidator {
	if value <= 0 {
		cv.addf("%s: value %g must be positive", field, value)
	}
	return cv
}

// NonNegative requires value >= 0.
func (cv *ConfigValidator) NonNegative(field string, value float64) *ConfigValidator {
	if value < 0 {
		cv.addf("%s: value %g must be non-negative", field, value)
	}
	return cv
}

// PositiveInt requires value > 0.
func (cv *ConfigValidator) PositiveInt(field string, value int) *ConfigValidator {
	if value <= 0 {
		cv.addf("%s: value %d must be positive", field, value)
	}
	return cv
}

// Range requires lo <= value <= hi.
func (cv *ConfigValidator) Range(field string, value, lo, hi float64) *ConfigValidator {
	if value < lo || value > hi {
		cv.addf("%s: value %g is outside range [%g, %g]", field, value, lo, hi)
	}
	return cv
}

// UnitInterval requires 0 <= value <= 1.
func (cv *ConfigValidator) UnitInterval(field string, value float64) *ConfigValidator {
	return cv.Range(field, value, 0, 1)
}

// Ordered requires lo < hi, for band-style [min, max] settings.
func (cv *ConfigValidator) Ordered(field string, lo, hi float64) *ConfigValidator {
	if lo >= hi {
		cv.addf("%s: min %g must be below max %g", field, lo, hi)
	}
	return cv
}

// OneOf requires value to be one of the allowed strings.
func (cv *ConfigValidator) OneOf(field, value string, allowed ...string) *ConfigValidator {
	for _, a := range allowed {
		if value == a {
			return cv
		}
	}
	cv.addf("%s: %q is not one of %v", field, value, allowed)
	return cv
}

// NotEmpty requires a non-empty string.
func (cv *ConfigValidator) NotEmpty(field, value string) *ConfigValidator {
	if value == "" {
		cv.addf("%s: required field is empty", field)
	}
	return cv
}

// Check records a violation when cond is false.
func (cv *ConfigValidator) Check(cond bool, field, msg string) *ConfigValidator {
	if !cond {
		cv.addf("%s: %s", field, msg)
	}
	return cv
}

// Result returns all accumulated violations joined into one error, or
// nil when the config is valid.
func (cv *ConfigValidator) Result() error {
	if len(cv.errors) == 0 {
		return nil
	}
	return errors.Join(cv.errors...)
}
