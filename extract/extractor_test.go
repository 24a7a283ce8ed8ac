package extract

import (
	"archive/zip"
	"bytes"
	"math/rand"
	"strings"
	"testing"

	"github.com/viant/projectlens/schema"
	"github.com/xuri/excelize/v2"
)

func TestDetectFormat(t *testing.T) {
	cases := []struct {
		mime string
		name string
		want schema.SourceFormat
	}{
		{mime: "application/pdf", name: "x.bin", want: schema.FormatPDF},
		{mime: "", name: "REPORT.PDF", want: schema.FormatPDF},
		{mime: "text/csv; charset=utf-8", name: "a.txt", want: schema.FormatCSV},
		{mime: "text/x-python", name: "main.py", want: schema.FormatText},
		{mime: "application/octet-stream", name: "deck.pptx", want: schema.FormatPresentation},
		{mime: "", name: "notes.md", want: schema.FormatMarkdown},
		{mime: "", name: "budget.xls", want: schema.FormatSpreadsheet},
		{mime: "", name: "letter.docx", want: schema.FormatWord},
		{mime: "", name: "blob", want: schema.FormatOther},
		{mime: "application/vnd.oasis.opendocument.spreadsheet", name: "plan.ods", want: schema.FormatOther},
	}
	for _, c := range cases {
		if got := DetectFormat(c.mime, c.name); got != c.want {
			t.Fatalf("DetectFormat(%q,%q) = %s, want %s", c.mime, c.name, got, c.want)
		}
	}
}

func TestExtract_DeclaredAsMIMEOrName(t *testing.T) {
	data := []byte(`{"a":1}`)
	if got := Extract(data, "application/json"); got != "{\n  \"a\": 1\n}" {
		t.Fatalf("unexpected json by mime: %q", got)
	}
	if got := Extract(data, "payload.JSON"); got != "{\n  \"a\": 1\n}" {
		t.Fatalf("unexpected json by name: %q", got)
	}
}

func TestExtract_InvalidJSONKeepsRaw(t *testing.T) {
	if got := Extract([]byte(`{"a":`), "data.json"); got != `{"a":` {
		t.Fatalf("expected raw text, got %q", got)
	}
}

func TestExtract_CSV(t *testing.T) {
	got := Extract([]byte("name,score\nann,3\nbob,\"4\"\n"), "text/csv")
	want := "name\tscore\nann\t3\nbob\t4"
	if got != want {
		t.Fatalf("csv mismatch: got %q want %q", got, want)
	}
}

func TestExtract_TextFamily(t *testing.T) {
	for _, name := range []string{"a.txt", "a.md", "a.xml", "a.yaml"} {
		if got := Extract([]byte("  hello world \n"), name); got != "hello world" {
			t.Fatalf("%s: got %q", name, got)
		}
	}
	if got := Extract([]byte("fn main() {}"), "text/x-rust"); got != "fn main() {}" {
		t.Fatalf("text/* mime: got %q", got)
	}
}

func TestExtract_UnknownType(t *testing.T) {
	e := New(WithMaxUnknownSize(32))
	if got := e.Extract([]byte("plain words in a file"), "", "notes.unknown"); got != "plain words in a file" {
		t.Fatalf("expected text decode, got %q", got)
	}
	binary := []byte{0x00, 0x01, 0x02, 0x03, 0x04, 'a', 'b', 0x05, 0x06, 0x07}
	if got := e.Extract(binary, "", "image.bin"); got != "" {
		t.Fatalf("expected binary to be skipped, got %q", got)
	}
	large := bytes.Repeat([]byte("a"), 33)
	if got := e.Extract(large, "", "big.unknown"); got != "" {
		t.Fatalf("expected oversize unknown to be skipped, got %q", got)
	}
}

func TestExtract_NeverPanics(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	declared := []string{"application/pdf", "report.pdf", "a.xlsx", "a.xls", "a.pptx", "a.ppt", "a.docx", "a.doc", "a.csv", "a.json", "a.bin", ""}
	inputs := [][]byte{
		nil,
		[]byte("%PDF-1.4\ncorrupt\n%%EOF"),
		[]byte("PK\x03\x04not-really-a-zip"),
	}
	for i := 0; i < 8; i++ {
		buf := make([]byte, 64+rnd.Intn(512))
		rnd.Read(buf)
		inputs = append(inputs, buf)
	}
	for _, d := range declared {
		for _, in := range inputs {
			_ = Extract(in, d)
		}
	}
}

func TestExtract_Spreadsheet(t *testing.T) {
	f := excelize.NewFile()
	first := f.GetSheetName(0)
	if err := f.SetSheetRow(first, "A1", &[]interface{}{"quarter", "revenue"}); err != nil {
		t.Fatalf("set row: %v", err)
	}
	if err := f.SetSheetRow(first, "A2", &[]interface{}{"Q4", 120}); err != nil {
		t.Fatalf("set row: %v", err)
	}
	if _, err := f.NewSheet("People"); err != nil {
		t.Fatalf("new sheet: %v", err)
	}
	if err := f.SetSheetRow("People", "A1", &[]interface{}{"Jane", "VP"}); err != nil {
		t.Fatalf("set row: %v", err)
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write xlsx: %v", err)
	}
	got := Extract(buf.Bytes(), "budget.xlsx")
	want := "Sheet: " + first + "\nquarter\trevenue\nQ4\t120\n\nSheet: People\nJane\tVP"
	if got != want {
		t.Fatalf("spreadsheet mismatch:\n got %q\nwant %q", got, want)
	}
}

func TestExtract_DOCX(t *testing.T) {
	data := buildZip(t, map[string]string{
		"word/document.xml": `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
			`<w:p><w:r><w:t>Project status</w:t></w:r></w:p>` +
			`<w:p><w:r><w:t>On</w:t></w:r><w:r><w:t xml:space="preserve"> track</w:t></w:r></w:p>` +
			`</w:body></w:document>`,
	})
	if got := Extract(data, "status.docx"); got != "Project status\nOn track" {
		t.Fatalf("docx mismatch: %q", got)
	}
}

func TestExtract_DOCXTable(t *testing.T) {
	cell := func(text string) string { return `<w:tc><w:p><w:r><w:t>` + text + `</w:t></w:r></w:p></w:tc>` }
	data := buildZip(t, map[string]string{
		"word/document.xml": `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:tbl>` +
			`<w:tr>` + cell("quarter") + cell("revenue") + `</w:tr>` +
			`<w:tr>` + cell("Q4") + cell("120") + `</w:tr>` +
			`</w:tbl><w:p><w:r><w:t>Total</w:t><w:tab/><w:t>120</w:t><w:br/><w:t>done</w:t></w:r></w:p></w:body></w:document>`,
	})
	got := Extract(data, "table.docx")
	for _, want := range []string{"quarter", "revenue", "Q4", "120", "Total\t120\ndone"} {
		if !strings.Contains(got, want) {
			t.Fatalf("docx table: missing %q in %q", want, got)
		}
	}
	if strings.Contains(got, "\n\n\n") {
		t.Fatalf("docx table: repeated blank lines in %q", got)
	}
}

func TestExtract_ODSTakesUnknownPath(t *testing.T) {
	data := buildZip(t, map[string]string{"content.xml": "<office:document-content/>"})
	if got := Extract(data, "application/vnd.oasis.opendocument.spreadsheet"); got != "" {
		t.Fatalf("expected no text for zipped ods, got %q", got)
	}
}

func TestExtract_PPTXSlideOrder(t *testing.T) {
	slide := func(text string) string {
		return `<p:sld xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"><p:cSld><p:spTree><p:sp><p:txBody><a:p><a:r><a:t>` +
			text + `</a:t></a:r></a:p></p:txBody></p:sp></p:spTree></p:cSld></p:sld>`
	}
	data := buildZip(t, map[string]string{
		"ppt/slides/slide10.xml": slide("ten"),
		"ppt/slides/slide2.xml":  slide("two"),
		"ppt/slides/slide1.xml":  slide("one"),
	})
	if got := Extract(data, mimePPTX); got != "one\ntwo\nten" {
		t.Fatalf("pptx mismatch: %q", got)
	}
}

func TestExtract_LegacyWordSalvage(t *testing.T) {
	data := append([]byte{0xD0, 0xCF, 0x11, 0xE0, 0x01}, []byte("H\x00e\x00l\x00l\x00o\x00 \x00t\x00e\x00a\x00m\x00")...)
	got := Extract(data, "minutes.doc")
	if !strings.Contains(got, "Hello team") {
		t.Fatalf("expected salvaged text, got %q", got)
	}
}

func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create zip entry: %v", err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}
