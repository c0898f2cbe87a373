package pipeline

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tcx "github.com/lucasjlepore/tcx-intervals"
)

// LoadFile reads trackpoints from a .tcx or .fit file.
func LoadFile(path string, filter tcx.Filter) ([]tcx.Trackpoint, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read activity file: %w", err)
	}
	return LoadBytes(filepath.Base(path), data, filter)
}

// LoadBytes reads trackpoints from an in-memory activity. The source type is
// taken from the name's extension, falling back to the FIT header signature.
func LoadBytes(name string, data []byte, filter tcx.Filter) ([]tcx.Trackpoint, string, error) {
	source := detectSource(name, data)
	switch source {
	case SourceFIT:
		points, err := tcx.DecodeFIT(bytes.NewReader(data), filter)
		if err != nil {
			return nil, source, fmt.Errorf("extract trackpoints: %w", err)
		}
		return points, source, nil
	default:
		root, err := tcx.ParseDocument(bytes.NewReader(data))
		if err != nil {
			return nil, source, err
		}
		points, err := tcx.Extract(root, filter)
		if err != nil {
			return nil, source, fmt.Errorf("extract trackpoints: %w", err)
		}
		return points, source, nil
	}
}

func detectSource(name string, data []byte) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".fit":
		return SourceFIT
	case ".tcx", ".xml":
		return SourceTCX
	}
	// FIT headers carry ".FIT" at offset 8.
	if len(data) >= 12 && string(data[8:12]) == ".FIT" {
		return SourceFIT
	}
	return SourceTCX
}

func filterFor(fields []tcx.Field) tcx.Filter {
	if len(fields) == 0 {
		return nil
	}
	return tcx.Require(fields...)
}
