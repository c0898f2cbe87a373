package pipeline

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tcx "github.com/lucasjlepore/tcx-intervals"
)

// Dump writes every extracted trackpoint, after filtering and dedup, for
// inspection. Parquet output to a stream is built in memory first.
func Dump(opts DumpOptions) (*DumpResult, error) {
	if strings.TrimSpace(opts.InputPath) == "" {
		return nil, fmt.Errorf("input path is required")
	}
	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = DumpCSV
	}
	if format != DumpCSV && format != DumpJSON && format != DumpParquet {
		return nil, fmt.Errorf("unsupported dump format %q (expected csv|json|parquet)", format)
	}
	log := loggerOrDiscard(opts.Logger)

	points, source, err := LoadFile(opts.InputPath, filterFor(opts.Require))
	if err != nil {
		return nil, err
	}
	log.Debug("trackpoints extracted", "path", opts.InputPath, "source", source, "samples", len(points))

	toStream := opts.OutPath == "" || opts.OutPath == "-"
	if format == DumpParquet && !toStream {
		if err := writeTrackpointParquet(opts.OutPath, points); err != nil {
			return nil, fmt.Errorf("write trackpoint parquet: %w", err)
		}
	} else {
		out := opts.Out
		if out == nil {
			out = os.Stdout
		}
		var f *os.File
		if !toStream {
			f, err = os.Create(opts.OutPath)
			if err != nil {
				return nil, err
			}
			defer f.Close()
			out = f
		}
		if err := writeTrackpoints(out, format, points); err != nil {
			return nil, fmt.Errorf("write trackpoint %s: %w", format, err)
		}
		if f != nil {
			if err := f.Close(); err != nil {
				return nil, err
			}
		}
	}

	res := &DumpResult{Source: source, SampleCount: len(points)}
	if !toStream {
		res.OutputPath = opts.OutPath
	}
	log.Info("dump complete", "format", format, "samples", len(points), "output", res.OutputPath)
	return res, nil
}

func writeTrackpoints(w io.Writer, format string, points []tcx.Trackpoint) error {
	switch format {
	case DumpCSV:
		return writeTrackpointCSV(w, points)
	case DumpJSON:
		if points == nil {
			points = []tcx.Trackpoint{}
		}
		return writeJSON(w, points)
	case DumpParquet:
		data, err := marshalTrackpointParquet(points)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}
	return fmt.Errorf("unsupported dump format %q", format)
}

func writeTrackpointCSV(w io.Writer, points []tcx.Trackpoint) error {
	cw := csv.NewWriter(w)
	header := []string{"time"}
	for _, f := range tcx.Fields {
		header = append(header, f.String())
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, p := range points {
		row := []string{p.Time.UTC().Format(time.RFC3339Nano)}
		for _, f := range tcx.Fields {
			row = append(row, formatFloatPtr(p.Value(f)))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
