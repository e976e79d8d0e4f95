// Package optional models the "null propagates" numeric rule used by
// every scoring step in the engine: a value computed from a missing
// input is itself missing, and aggregations are taken over the
// present values only.
package optional

import (
	"bytes"
	"encoding/json"

	"golang.org/x/exp/constraints"
)

// Float is a float64 that may be absent. The zero value is absent.
type Float struct {
	Value float64
	Valid bool
}

// Some returns a present Float.
func Some(v float64) Float {
	return Float{Value: v, Valid: true}
}

// None returns an absent Float.
func None() Float {
	return Float{}
}

// FromPtr converts a *float64 into a Float.
func FromPtr(p *float64) Float {
	if p == nil {
		return None()
	}
	return Some(*p)
}

// Or returns the value when present, otherwise the fallback.
func (f Float) Or(fallback float64) float64 {
	if f.Valid {
		return f.Value
	}
	return fallback
}

// Map applies fn to a present value; an absent input stays absent.
func (f Float) Map(fn func(float64) float64) Float {
	if !f.Valid {
		return f
	}
	return Some(fn(f.Value))
}

// Mean averages the present inputs. Absent when none are present.
func Mean(values ...Float) Float {
	sum := 0.0
	n := 0
	for _, v := range values {
		if v.Valid {
			sum += v.Value
			n++
		}
	}
	if n == 0 {
		return None()
	}
	return Some(sum / float64(n))
}

// WeightedMean averages present values by their weights, renormalizing
// over the present weights. Absent when no weighted value is present
// or the present weight sums to zero.
func WeightedMean(values []Float, weights []float64) Float {
	num := 0.0
	den := 0.0
	for i, v := range values {
		if i >= len(weights) || !v.Valid {
			continue
		}
		num += weights[i] * v.Value
		den += weights[i]
	}
	if den <= 0 {
		return None()
	}
	return Some(num / den)
}

// MarshalJSON encodes an absent Float as null.
func (f Float) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// UnmarshalJSON decodes null as absent.
func (f *Float) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*f = None()
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Some(v)
	return nil
}

// Clamp constrains v to [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 constrains a present value to [0, 1]; absent stays absent.
func (f Float) Clamp01() Float {
	if !f.Valid {
		return f
	}
	return Some(Clamp(f.Value, 0.0, 1.0))
}
