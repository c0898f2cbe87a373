package pipeline

import (
	"io"
	"log/slog"

	tcx "github.com/lucasjlepore/tcx-intervals"
	"github.com/lucasjlepore/tcx-intervals/window"
)

// Output formats for window summaries.
const (
	FormatPretty = "pretty"
	FormatCSV    = "csv"
	FormatTable  = "table"
	FormatJSON   = "json"
)

// Dump formats for raw trackpoints.
const (
	DumpCSV     = "csv"
	DumpJSON    = "json"
	DumpParquet = "parquet"
)

// Input sources.
const (
	SourceTCX = "tcx"
	SourceFIT = "fit"
)

// Options configures the windows pipeline.
type Options struct {
	InputPath string
	Grouping  window.Config
	Require   []tcx.Field
	Format    string // pretty|csv|table|json
	Out       io.Writer
	Logger    *slog.Logger
}

// BytesOptions configures RunBytes for an activity held in memory.
type BytesOptions struct {
	// SourceFileName picks the reader by extension; empty sniffs the data.
	SourceFileName string
	Data           []byte
	Grouping       window.Config
	Require        []tcx.Field
	Format         string
	Out            io.Writer
	Logger         *slog.Logger
}

// Result describes one windows run.
type Result struct {
	InputPath   string           `json:"input_path"`
	Source      string           `json:"source"`
	SampleCount int              `json:"sample_count"`
	WindowSize  float64          `json:"window_size"`
	Windows     []window.Summary `json:"windows"`
	// Totals sums every window; Index is -1.
	Totals window.Summary `json:"totals"`
}

// DumpOptions configures the raw trackpoint dump.
type DumpOptions struct {
	InputPath string
	// OutPath is the destination file; empty or "-" writes to Out.
	OutPath string
	Format  string // csv|json|parquet
	Require []tcx.Field
	Out     io.Writer
	Logger  *slog.Logger
}

// DumpResult describes one dump run.
type DumpResult struct {
	OutputPath  string `json:"output_path,omitempty"`
	Source      string `json:"source"`
	SampleCount int    `json:"sample_count"`
}
