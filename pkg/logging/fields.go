package logging

import "time"

// Generic field constructors.

func String(key, value string) Field      { return Field{Key: key, Value: value} }
func Int(key string, value int) Field     { return Field{Key: key, Value: value} }
func Float64(key string, v float64) Field { return Field{Key: key, Value: v} }
func Bool(key string, value bool) Field   { return Field{Key: key, Value: value} }

func Duration(key string, d time.Duration) Field {
	return Field{Key: key, Value: d.String()}
}

func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Domain field helpers shared across the analysis components.

func Component(name string) Field { return String("component", name) }
func Operation(op string) Field   { return String("operation", op) }
func RunID(id string) Field       { return String("run_id", id) }
func NodeCount(n int) Field       { return Int("node_count", n) }
func FeatureCount(n int) Field    { return Int("feature_count", n) }
func CandidateRank(r int) Field   { return Int("candidate_rank", r) }
func Spacing(m float64) Field     { return Float64("spacing_m", m) }
