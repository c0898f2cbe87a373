// Package window folds a trackpoint sequence into fixed-size interval summaries.
//
// Windows are sized by elapsed time or cumulative distance. Every sample pair
// contributes one increment; an increment that crosses a window boundary is
// split proportionally between the closing window and the next one, so sums
// over all windows equal the activity totals. QDH sub-windows are split the
// same way at their own distance threshold and are always flushed when the
// outer window closes.
package window

import (
	"fmt"

	tcx "github.com/lucasjlepore/tcx-intervals"
)

// Engine is the left-to-right fold. The zero value is not usable; use NewEngine.
type Engine struct {
	cfg  Config
	size float64

	acc   Accumulator
	qdh   QDH
	start float64
	pairs int
	out   []Summary
}

// NewEngine returns an engine that closes a window every size units of cfg.Metric.
func NewEngine(cfg Config, size float64) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !isFinite(size) || size <= 0 {
		return nil, fmt.Errorf("%w: window size must be positive, got %v", tcx.ErrInvalidConfiguration, size)
	}
	return &Engine{
		cfg:  cfg,
		size: size,
		qdh:  NewQDH(cfg.QDHBucket),
	}, nil
}

// NewEngineFor sizes the windows for points and returns an engine ready to fold them.
func NewEngineFor(points []tcx.Trackpoint, cfg Config) (*Engine, error) {
	if len(points) == 0 {
		return nil, tcx.ErrEmptyInput
	}
	size, err := cfg.WindowSize(points)
	if err != nil {
		return nil, err
	}
	return NewEngine(cfg, size)
}

// Aggregate sizes the windows for points and folds every consecutive pair.
func Aggregate(points []tcx.Trackpoint, cfg Config) ([]Summary, error) {
	e, err := NewEngineFor(points, cfg)
	if err != nil {
		return nil, err
	}
	return e.Fold(points)
}

// Size returns the window size in units of the grouping metric.
func (e *Engine) Size() float64 {
	return e.size
}

// Fold steps through every consecutive pair of points and closes the engine.
func (e *Engine) Fold(points []tcx.Trackpoint) ([]Summary, error) {
	for i := 1; i < len(points); i++ {
		if err := e.Step(points[i-1], points[i]); err != nil {
			return nil, err
		}
	}
	return e.Close(), nil
}

// Step folds the increment from m to n, where n directly follows m.
func (e *Engine) Step(m, n tcx.Trackpoint) error {
	inc, err := e.increment(m, n)
	if err != nil {
		return err
	}
	e.pairs++

	rest := 1.0
	for inc.group > 0 && e.acc.Group+inc.group*rest >= e.size {
		f := (e.size - e.acc.Group) / inc.group
		e.apply(inc.scale(f))
		e.acc.Group = e.size
		e.closeWindow()
		rest -= f
	}
	if rest > 0 {
		e.apply(inc.scale(rest))
	}
	return nil
}

// Close emits the open window if it holds more than Epsilon of a window and
// returns every summary emitted so far.
func (e *Engine) Close() []Summary {
	if e.acc.Group > e.cfg.Epsilon*e.size {
		e.closeWindow()
	}
	e.acc.Reset()
	return e.out
}

func (e *Engine) increment(m, n tcx.Trackpoint) (increment, error) {
	im, in := e.pairs, e.pairs+1
	group, err := e.cfg.Metric.delta(m, n, im, in)
	if err != nil {
		return increment{}, err
	}
	distance, err := fieldDelta(m, n, tcx.Distance, im, in)
	if err != nil {
		return increment{}, err
	}
	// Without altitude on both samples the pair climbs nothing.
	var climb float64
	if m.Has(tcx.Altitude) && n.Has(tcx.Altitude) {
		climb = *n.Altitude - *m.Altitude
	}
	dt := n.Time.Sub(m.Time).Seconds()
	return increment{
		group:     group,
		duration:  dt,
		distance:  distance,
		elevation: max(climb, 0),
		work:      trapezoid(m.ValueOr(tcx.Power, 0), n.ValueOr(tcx.Power, 0), dt),
		beats:     trapezoid(m.ValueOr(tcx.HeartRate, 0), n.ValueOr(tcx.HeartRate, 0), dt),
	}, nil
}

func (e *Engine) apply(i increment) {
	e.acc.add(i)
	e.qdh.Add(i.distance, i.elevation)
}

func (e *Engine) closeWindow() {
	e.qdh.Flush()
	e.out = append(e.out, Summary{
		Index:      len(e.out),
		Start:      e.start,
		Metric:     e.acc.Group,
		Duration:   e.acc.Duration,
		Distance:   e.acc.Distance,
		Elevation:  e.acc.Elevation,
		Work:       e.acc.Work,
		HeartBeats: e.acc.Beats,
		QDH:        e.qdh.Score,
	})
	e.start += e.acc.Duration
	e.acc.Reset()
	e.qdh = NewQDH(e.cfg.QDHBucket)
}

func trapezoid(a, b, dt float64) float64 {
	return (a + b) / 2 * dt
}
