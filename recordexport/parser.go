package recordexport

import (
	"bytes"

	"github.com/lucasjlepore/igc-route/igc"
)

const (
	warnMalformedFix    = "malformed B record"
	warnNoFixes         = "log contains no position fixes"
	warnMissingDate     = "header has no flight date (HFDTE)"
	warnTaskDeclaration = "task declaration present but not interpreted"
)

type parseOutput struct {
	Header         igc.FlightHeader
	Records        []RecordEnvelope
	KindCounts     map[string]int
	FixCount       int
	MalformedCount int
}

// parseLines walks the raw log line by line, keeping byte offsets exact.
func parseLines(data []byte) *parseOutput {
	out := &parseOutput{
		Header:     igc.NewFlightHeader(),
		KindCounts: make(map[string]int),
	}

	var offset int64
	for lineNo := 1; len(data) > 0; lineNo++ {
		raw := data
		consumed := len(data)
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			raw = data[:i]
			consumed = i + 1
		}
		crlf := bytes.HasSuffix(raw, []byte("\r"))
		line := string(bytes.TrimSuffix(raw, []byte("\r")))

		out.Records = append(out.Records, buildEnvelope(out, lineNo, offset, line, crlf))
		offset += int64(consumed)
		data = data[consumed:]
	}
	return out
}

func buildEnvelope(out *parseOutput, lineNo int, offset int64, line string, crlf bool) RecordEnvelope {
	kind := igc.Classify(line)
	env := RecordEnvelope{
		FormatVersion: ExportFormatVersion,
		LineNumber:    lineNo,
		ByteOffset:    offset,
		RecordKind:    kind,
		Raw:           line,
		CRLF:          crlf,
	}
	if kind != igc.KindBlank {
		env.RecordType = line[:1]
	}
	out.KindCounts[string(kind)]++

	switch kind {
	case igc.KindFix:
		fix, ok := igc.DecodeFix(line)
		if !ok {
			env.Malformed = true
			env.Warnings = append(env.Warnings, warnMalformedFix)
			out.MalformedCount++
			break
		}
		env.Fix = &fix
		out.FixCount++
	case igc.KindHeader, igc.KindLogger:
		if f, ok := igc.DecodeHeaderLine(line); ok {
			env.HeaderField = &f
			out.Header.Apply(f)
		}
	case igc.KindTask:
		env.Warnings = append(env.Warnings, warnTaskDeclaration)
	}
	return env
}
