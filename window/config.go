package window

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	tcx "github.com/lucasjlepore/tcx-intervals"
)

const (
	// DefaultLength is the window length used when nothing else is configured: 600 s.
	DefaultLength = 600.0
	// DefaultQDHBucket is the QDH sub-window distance in meters.
	DefaultQDHBucket = 50.0
	// DefaultEpsilon is the fraction of a window a trailing partial window must exceed to be emitted.
	DefaultEpsilon = 1e-6
)

// Metric selects the quantity that closes windows.
type Metric int

const (
	Duration Metric = iota
	Distance
)

func (m Metric) String() string {
	switch m {
	case Duration:
		return "duration"
	case Distance:
		return "distance"
	}
	return fmt.Sprintf("Metric(%d)", int(m))
}

// ParseMetric accepts "duration" (or "time") and "distance".
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "duration", "time":
		return Duration, nil
	case "distance":
		return Distance, nil
	}
	return 0, fmt.Errorf("%w: unknown grouping metric %q (expected duration|distance)", tcx.ErrInvalidConfiguration, s)
}

// Sizing selects how the window size is derived from Config.Value.
type Sizing int

const (
	// Length uses Value as the window size in the metric's unit (s or m).
	Length Sizing = iota
	// Count divides the activity's total span into Value equal windows.
	Count
)

func (s Sizing) String() string {
	switch s {
	case Length:
		return "length"
	case Count:
		return "count"
	}
	return fmt.Sprintf("Sizing(%d)", int(s))
}

// ParseSizing accepts "length" and "count".
func ParseSizing(s string) (Sizing, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "length", "len":
		return Length, nil
	case "count", "number":
		return Count, nil
	}
	return 0, fmt.Errorf("%w: unknown sizing %q (expected length|count)", tcx.ErrInvalidConfiguration, s)
}

// Config fixes how an activity is cut into windows for one run.
type Config struct {
	Metric Metric
	Sizing Sizing
	Value  float64

	// QDHBucket is the distance in meters after which a QDH sub-window closes.
	QDHBucket float64
	// Epsilon is relative to the window size.
	Epsilon float64
}

// DefaultConfig returns 600 s duration windows with a 50 m QDH bucket.
func DefaultConfig() Config {
	return Config{
		Metric:    Duration,
		Sizing:    Length,
		Value:     DefaultLength,
		QDHBucket: DefaultQDHBucket,
		Epsilon:   DefaultEpsilon,
	}
}

// ParseGrouping parses "metric,sizing,value", e.g. "distance,length,1000" or
// "duration,count,4", on top of the defaults.
func ParseGrouping(s string) (Config, error) {
	cfg := DefaultConfig()
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return cfg, fmt.Errorf("%w: grouping %q must be metric,sizing,value", tcx.ErrInvalidConfiguration, s)
	}
	var err error
	if cfg.Metric, err = ParseMetric(parts[0]); err != nil {
		return cfg, err
	}
	if cfg.Sizing, err = ParseSizing(parts[1]); err != nil {
		return cfg, err
	}
	cfg.Value, err = strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	if err != nil {
		return cfg, fmt.Errorf("%w: grouping value %q: %v", tcx.ErrInvalidConfiguration, parts[2], err)
	}
	return cfg, cfg.Validate()
}

// Validate checks the settings that do not depend on the activity.
func (c Config) Validate() error {
	if c.Metric != Duration && c.Metric != Distance {
		return fmt.Errorf("%w: unknown grouping metric %v", tcx.ErrInvalidConfiguration, c.Metric)
	}
	if !isFinite(c.Value) || c.Value <= 0 {
		return fmt.Errorf("%w: %s must be positive, got %v", tcx.ErrInvalidConfiguration, c.Sizing, c.Value)
	}
	switch c.Sizing {
	case Length:
	case Count:
		if c.Value != math.Trunc(c.Value) {
			return fmt.Errorf("%w: window count must be a whole number, got %v", tcx.ErrInvalidConfiguration, c.Value)
		}
	default:
		return fmt.Errorf("%w: unknown sizing %v", tcx.ErrInvalidConfiguration, c.Sizing)
	}
	if !isFinite(c.QDHBucket) || c.QDHBucket < 0 {
		return fmt.Errorf("%w: qdh bucket must be a finite non-negative distance, got %v", tcx.ErrInvalidConfiguration, c.QDHBucket)
	}
	if !isFinite(c.Epsilon) || c.Epsilon < 0 {
		return fmt.Errorf("%w: epsilon must be finite and non-negative, got %v", tcx.ErrInvalidConfiguration, c.Epsilon)
	}
	return nil
}

// WindowSize resolves the fixed window size for points. Count sizing divides
// the metric span between the first and last sample once, up front, and may
// not ask for more windows than there are samples.
func (c Config) WindowSize(points []tcx.Trackpoint) (float64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	if c.Sizing == Length {
		return c.Value, nil
	}
	if len(points) == 0 {
		return 0, tcx.ErrEmptyInput
	}
	span, err := c.Metric.delta(points[0], points[len(points)-1], 0, len(points)-1)
	if err != nil {
		return 0, err
	}
	if c.Value > float64(len(points)) {
		return 0, fmt.Errorf("%w: %v windows requested for %d samples", tcx.ErrInvalidConfiguration, c.Value, len(points))
	}
	if !(span > 0) {
		return 0, fmt.Errorf("%w: %s span is %v, cannot split into %v windows", tcx.ErrInvalidConfiguration, c.Metric, span, c.Value)
	}
	return span / c.Value, nil
}

// delta is the grouping-metric increment from sample ia to sample ib.
func (m Metric) delta(a, b tcx.Trackpoint, ia, ib int) (float64, error) {
	switch m {
	case Duration:
		return b.Time.Sub(a.Time).Seconds(), nil
	case Distance:
		return fieldDelta(a, b, tcx.Distance, ia, ib)
	}
	return 0, fmt.Errorf("%w: unknown grouping metric %v", tcx.ErrInvalidConfiguration, m)
}

func fieldDelta(a, b tcx.Trackpoint, f tcx.Field, ia, ib int) (float64, error) {
	if !a.Has(f) {
		return 0, &tcx.FieldError{Kind: tcx.ErrMissingRequiredField, Field: f.String(), Sample: ia}
	}
	if !b.Has(f) {
		return 0, &tcx.FieldError{Kind: tcx.ErrMissingRequiredField, Field: f.String(), Sample: ib}
	}
	return *b.Value(f) - *a.Value(f), nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
