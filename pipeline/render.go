package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/lucasjlepore/tcx-intervals/window"
)

var csvHeader = []string{
	"avg_power_w", "avg_hr_bpm", "duration_s", "distance_km", "speed_kmh", "elevation_m", "gain_m_per_km", "qdh",
}

// Render writes windows in the given format. totals is only used by the table footer.
func Render(w io.Writer, format string, windows []window.Summary, totals window.Summary) error {
	switch format {
	case FormatPretty:
		return writePretty(w, windows)
	case FormatCSV:
		return writeSummaryCSV(w, windows)
	case FormatTable:
		_, err := io.WriteString(w, renderTable(windows, totals)+"\n")
		return err
	case FormatJSON:
		return writeJSON(w, windows)
	}
	return fmt.Errorf("unsupported format %q", format)
}

// PrettyLine formats one window in the human-readable fixed-width form.
func PrettyLine(s window.Summary) string {
	return fmt.Sprintf(
		"%6.2fW / %6.2fbpm for %4.0fs (%5.3fkm, %5.2fkm/h, %3.0fm, %5.1fm/km, QDH %6.1f)",
		s.AvgPower(),
		s.AvgHeartRate(),
		s.Duration,
		s.DistanceKm(),
		s.AvgSpeedKmh(),
		s.Elevation,
		s.GainPerKm(),
		s.QDH,
	)
}

func writePretty(w io.Writer, windows []window.Summary) error {
	for _, s := range windows {
		if _, err := fmt.Fprintln(w, PrettyLine(s)); err != nil {
			return err
		}
	}
	return nil
}

func summaryRow(s window.Summary) []string {
	return []string{
		formatFixed(s.AvgPower(), 2),
		formatFixed(s.AvgHeartRate(), 2),
		formatFixed(s.Duration, 0),
		formatFixed(s.DistanceKm(), 3),
		formatFixed(s.AvgSpeedKmh(), 2),
		formatFixed(s.Elevation, 1),
		formatFixed(s.GainPerKm(), 1),
		formatFixed(s.QDH, 1),
	}
}

func writeSummaryCSV(w io.Writer, windows []window.Summary) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, s := range windows {
		if err := cw.Write(summaryRow(s)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func renderTable(windows []window.Summary, totals window.Summary) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "Power W", "HR bpm", "Time s", "Dist km", "Speed km/h", "Gain m", "m/km", "QDH"})
	for _, s := range windows {
		row := table.Row{s.Index + 1}
		for _, v := range summaryRow(s) {
			row = append(row, v)
		}
		tw.AppendRow(row)
	}
	footer := table.Row{"total"}
	for _, v := range summaryRow(totals) {
		footer = append(footer, v)
	}
	tw.AppendFooter(footer)

	configs := make([]table.ColumnConfig, 0, len(csvHeader)+1)
	for i := 0; i <= len(csvHeader); i++ {
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       text.AlignRight,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func formatFixed(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}
