package pipeline

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gonum.org/v1/gonum/floats"

	tcx "github.com/lucasjlepore/tcx-intervals"
	"github.com/lucasjlepore/tcx-intervals/window"
)

// Run loads the activity, folds it into windows and renders one record per
// window to opts.Out.
func Run(opts Options) (*Result, error) {
	if strings.TrimSpace(opts.InputPath) == "" {
		return nil, fmt.Errorf("input path is required")
	}
	format, err := checkRun(opts.Format, opts.Grouping)
	if err != nil {
		return nil, err
	}
	log := loggerOrDiscard(opts.Logger)

	points, source, err := LoadFile(opts.InputPath, filterFor(opts.Require))
	if err != nil {
		return nil, err
	}
	return aggregate(opts.InputPath, source, points, opts.Grouping, format, opts.Out, log)
}

// RunBytes is Run for an activity already held in memory.
func RunBytes(opts BytesOptions) (*Result, error) {
	if len(opts.Data) == 0 {
		return nil, fmt.Errorf("activity data is required")
	}
	format, err := checkRun(opts.Format, opts.Grouping)
	if err != nil {
		return nil, err
	}
	log := loggerOrDiscard(opts.Logger)

	name := opts.SourceFileName
	if name == "" {
		name = "input"
	}
	points, source, err := LoadBytes(name, opts.Data, filterFor(opts.Require))
	if err != nil {
		return nil, err
	}
	return aggregate(name, source, points, opts.Grouping, format, opts.Out, log)
}

func checkRun(format string, grouping window.Config) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatPretty
	}
	switch format {
	case FormatPretty, FormatCSV, FormatTable, FormatJSON:
	default:
		return "", fmt.Errorf("unsupported format %q (expected pretty|csv|table|json)", format)
	}
	if err := grouping.Validate(); err != nil {
		return "", err
	}
	return format, nil
}

func aggregate(name, source string, points []tcx.Trackpoint, grouping window.Config, format string, out io.Writer, log *slog.Logger) (*Result, error) {
	log.Debug("trackpoints extracted", "input", name, "source", source, "samples", len(points))
	if len(points) == 0 {
		return nil, fmt.Errorf("%s: %w", name, tcx.ErrEmptyInput)
	}
	if out == nil {
		out = os.Stdout
	}

	engine, err := window.NewEngineFor(points, grouping)
	if err != nil {
		return nil, fmt.Errorf("size windows: %w", err)
	}
	size := engine.Size()
	log.Debug("window size resolved",
		"metric", grouping.Metric.String(),
		"sizing", grouping.Sizing.String(),
		"value", grouping.Value,
		"size", size,
	)

	windows, err := engine.Fold(points)
	if err != nil {
		return nil, fmt.Errorf("aggregate windows: %w", err)
	}
	totals := Totals(windows)

	if err := Render(out, format, windows, totals); err != nil {
		return nil, fmt.Errorf("render %s output: %w", format, err)
	}

	log.Info("windows complete",
		"windows", len(windows),
		"samples", len(points),
		"duration_s", totals.Duration,
		"distance_km", totals.DistanceKm(),
		"qdh", totals.QDH,
	)

	return &Result{
		InputPath:   name,
		Source:      source,
		SampleCount: len(points),
		WindowSize:  size,
		Windows:     windows,
		Totals:      totals,
	}, nil
}

// Totals sums every window into one summary spanning the whole activity.
func Totals(windows []window.Summary) window.Summary {
	column := func(get func(window.Summary) float64) []float64 {
		out := make([]float64, len(windows))
		for i, w := range windows {
			out[i] = get(w)
		}
		return out
	}
	total := window.Summary{
		Index:      -1,
		Metric:     floats.Sum(column(func(w window.Summary) float64 { return w.Metric })),
		Duration:   floats.Sum(column(func(w window.Summary) float64 { return w.Duration })),
		Distance:   floats.Sum(column(func(w window.Summary) float64 { return w.Distance })),
		Elevation:  floats.Sum(column(func(w window.Summary) float64 { return w.Elevation })),
		Work:       floats.Sum(column(func(w window.Summary) float64 { return w.Work })),
		HeartBeats: floats.Sum(column(func(w window.Summary) float64 { return w.HeartBeats })),
		QDH:        floats.Sum(column(func(w window.Summary) float64 { return w.QDH })),
	}
	if len(windows) > 0 {
		total.Start = windows[0].Start
	}
	return total
}

func loggerOrDiscard(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
