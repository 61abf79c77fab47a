//go:build js && wasm

package main

import (
	"archive/zip"
	"bytes"
	"fmt"
	"sort"
	"syscall/js"
	"time"

	"github.com/lucasjlepore/igc-route/pipeline"
)

func main() {
	js.Global().Set("analyzeIGC", js.FuncOf(analyzeIGC))
	select {}
}

// analyzeIGC(text string, options object) returns the flight summary and
// waypoints as JSON strings, the QR payload and a zip of every artifact.
func analyzeIGC(_ js.Value, args []js.Value) any {
	if len(args) < 1 {
		return map[string]any{
			"ok":    false,
			"error": "expected arguments: text(string), options(object)",
		}
	}
	textArg := args[0]
	optsArg := js.Undefined()
	if len(args) > 1 {
		optsArg = args[1]
	}
	if textArg.Type() != js.TypeString || textArg.String() == "" {
		return map[string]any{
			"ok":    false,
			"error": "igc text is required",
		}
	}

	opts := pipeline.BytesOptions{
		SourceFileName: getString(optsArg, "source_file_name", "input.igc"),
		IGCData:        []byte(textArg.String()),
		Level:          getString(optsArg, "level", "medium"),
		Format:         "csv",
		ExportFormat:   getString(optsArg, "export_format", "gpx"),
		CopySource:     getBool(optsArg, "copy_source"),
	}
	result, err := pipeline.RunBytes(opts)
	if err != nil {
		return map[string]any{
			"ok":    false,
			"error": err.Error(),
		}
	}

	zipBytes, err := zipArtifacts(result.Files)
	if err != nil {
		return map[string]any{
			"ok":    false,
			"error": fmt.Sprintf("create zip: %v", err),
		}
	}
	archive := js.Global().Get("Uint8Array").New(len(zipBytes))
	js.CopyBytesToJS(archive, zipBytes)

	fileNames := make([]string, 0, len(result.Files))
	for name := range result.Files {
		fileNames = append(fileNames, name)
	}
	sort.Strings(fileNames)

	out := map[string]any{
		"ok":        true,
		"zip":       archive,
		"summary":   string(result.Files[pipeline.FlightSummaryFileName]),
		"waypoints": string(result.Files[pipeline.WaypointsFileName]),
		"notes":     result.Analysis.Notes,
		"warnings":  stringsToAny(result.Warnings),
		"files":     stringsToAny(fileNames),
	}
	if result.Payload != nil {
		out["qr_payload"] = result.Payload.Text
		out["qr_format"] = string(result.Payload.Format)
	} else if result.Export.Error != "" {
		out["qr_error"] = result.Export.Error
	}
	return out
}

func zipArtifacts(files map[string][]byte) ([]byte, error) {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	fixedTime := time.Unix(0, 0).UTC()

	for _, name := range names {
		h := &zip.FileHeader{
			Name:   name,
			Method: zip.Deflate,
		}
		h.SetModTime(fixedTime)
		w, err := zw.CreateHeader(h)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(files[name]); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
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

func getBool(v js.Value, key string) bool {
	if v.IsUndefined() || v.IsNull() {
		return false
	}
	out := v.Get(key)
	return out.Type() == js.TypeBoolean && out.Bool()
}

func stringsToAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
