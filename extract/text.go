package extract

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"
)

// extractCSV renders rows tab-joined, one per line. Input that the CSV reader
// rejects is returned as decoded text.
func extractCSV(data []byte) string {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	var b strings.Builder
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return decodeUTF8(data)
		}
		record = trimTrailingEmpty(record)
		if len(record) == 0 {
			continue
		}
		b.WriteString(strings.Join(record, "\t"))
		b.WriteByte('\n')
	}
	return b.String()
}

// extractJSON pretty prints valid JSON and keeps anything else verbatim.
func extractJSON(data []byte) string {
	var out bytes.Buffer
	if err := json.Indent(&out, bytes.TrimSpace(data), "", "  "); err != nil {
		return decodeUTF8(data)
	}
	return out.String()
}

const minSalvageRun = 4

// salvageText keeps runs of printable characters from legacy binary office
// formats. NUL bytes are removed first so UTF-16LE text survives as runs.
func salvageText(data []byte) string {
	data = bytes.ReplaceAll(data, []byte{0}, nil)
	var out, run strings.Builder
	runLen := 0
	flush := func() {
		if runLen >= minSalvageRun {
			if out.Len() > 0 {
				out.WriteByte(' ')
			}
			out.WriteString(strings.TrimSpace(run.String()))
		}
		run.Reset()
		runLen = 0
	}
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		data = data[size:]
		if r == utf8.RuneError || !(unicode.IsPrint(r) || r == '\t') {
			flush()
			continue
		}
		run.WriteRune(r)
		runLen++
	}
	flush()
	return out.String()
}
