//go:build js && wasm

package main

import (
	"bytes"
	"encoding/json"
	"syscall/js"

	"github.com/lucasjlepore/tcx-intervals/pipeline"
	"github.com/lucasjlepore/tcx-intervals/window"
)

func main() {
	js.Global().Set("tcxIntervals", js.FuncOf(tcxIntervals))
	select {}
}

// tcxIntervals(fileBytes Uint8Array, options object) returns
// {ok, output, windows, totals} or {ok: false, error}.
func tcxIntervals(_ js.Value, args []js.Value) any {
	if len(args) < 2 {
		return failure("expected arguments: fileBytes(Uint8Array), options(object)")
	}
	fileArg := args[0]
	optsArg := args[1]
	if fileArg.IsUndefined() || fileArg.IsNull() || fileArg.Get("length").Int() == 0 {
		return failure("activity file bytes are required")
	}

	fileBytes := make([]byte, fileArg.Get("length").Int())
	if n := js.CopyBytesToGo(fileBytes, fileArg); n == 0 {
		return failure("failed to read activity bytes from JS input")
	}

	grouping := window.DefaultConfig()
	if g := getString(optsArg, "group", ""); g != "" {
		parsed, err := window.ParseGrouping(g)
		if err != nil {
			return failure(err.Error())
		}
		grouping = parsed
	}
	if v, ok := getFloat(optsArg, "qdh_m"); ok {
		grouping.QDHBucket = v
	}

	var out bytes.Buffer
	result, err := pipeline.RunBytes(pipeline.BytesOptions{
		SourceFileName: getString(optsArg, "source_file_name", ""),
		Data:           fileBytes,
		Grouping:       grouping,
		Format:         getString(optsArg, "format", pipeline.FormatPretty),
		Out:            &out,
	})
	if err != nil {
		return failure(err.Error())
	}

	windows, err := json.Marshal(result.Windows)
	if err != nil {
		return failure(err.Error())
	}
	totals, err := json.Marshal(result.Totals)
	if err != nil {
		return failure(err.Error())
	}
	return map[string]any{
		"ok":      true,
		"output":  out.String(),
		"windows": string(windows),
		"totals":  string(totals),
		"samples": result.SampleCount,
	}
}

func failure(msg string) map[string]any {
	return map[string]any{
		"ok":    false,
		"error": msg,
	}
}

func getString(v js.Value, key, fallback string) string {
	if v.IsUndefined() || v.IsNull() {
		return fallback
	}
	out := v.Get(key)
	if out.IsUndefined() || out.IsNull() {
		return fallback
	}
	s := out.String()
	if s == "" || s == "undefined" || s == "null" {
		return fallback
	}
	return s
}

func getFloat(v js.Value, key string) (float64, bool) {
	if v.IsUndefined() || v.IsNull() {
		return 0, false
	}
	out := v.Get(key)
	if out.IsUndefined() || out.IsNull() || out.Type() != js.TypeNumber {
		return 0, false
	}
	return out.Float(), true
}
