package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"sort"
	"strconv"
	"strings"
)

// extractDOCX concatenates the body text of a WordprocessingML package,
// one paragraph per line.
func extractDOCX(data []byte) (string, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("docx: open: %w", err)
	}
	var parts []*zip.File
	for _, f := range r.File {
		name := strings.ToLower(f.Name)
		switch {
		case name == "word/document.xml":
			parts = append([]*zip.File{f}, parts...)
		case strings.HasPrefix(name, "word/footnotes") && strings.HasSuffix(name, ".xml"):
			parts = append(parts, f)
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("docx: word/document.xml not found")
	}
	var sections []string
	for _, part := range parts {
		text, err := readOOXMLText(part)
		if err != nil {
			return "", fmt.Errorf("docx: %s: %w", part.Name, err)
		}
		if text = strings.TrimSpace(text); text != "" {
			sections = append(sections, text)
		}
	}
	return strings.Join(sections, "\n\n"), nil
}

// extractPPTX concatenates slide text in slide order, one slide per block.
func extractPPTX(data []byte) (string, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("pptx: open: %w", err)
	}
	type slide struct {
		index int
		file  *zip.File
	}
	var slides []slide
	for _, f := range r.File {
		dir, base := path.Split(f.Name)
		if !strings.EqualFold(dir, "ppt/slides/") {
			continue
		}
		base = strings.ToLower(base)
		if !strings.HasPrefix(base, "slide") || !strings.HasSuffix(base, ".xml") {
			continue
		}
		idx, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(base, "slide"), ".xml"))
		if err != nil {
			continue
		}
		slides = append(slides, slide{index: idx, file: f})
	}
	if len(slides) == 0 {
		return "", fmt.Errorf("pptx: no slides found")
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].index < slides[j].index })
	var out []string
	for _, s := range slides {
		text, err := readOOXMLText(s.file)
		if err != nil {
			return "", fmt.Errorf("pptx: slide %d: %w", s.index, err)
		}
		if text = strings.TrimSpace(text); text != "" {
			out = append(out, text)
		}
	}
	return strings.Join(out, "\n"), nil
}

func readOOXMLText(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	return ooxmlText(rc), nil
}

// ooxmlText walks WordprocessingML or DrawingML markup collecting <t> runs.
// Paragraphs and table rows end a line; table cells are tab separated.
func ooxmlText(r io.Reader) string {
	dec := xml.NewDecoder(r)
	w := &lineWriter{atLineStart: true}
	for {
		tok, err := dec.Token()
		if err != nil {
			return w.String()
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch name := t.Name.Local; {
			case name == "t" || name == "instrText":
				var text string
				if dec.DecodeElement(&text, &t) == nil {
					w.write(text)
				}
			case name == "tab":
				w.write("\t")
			case name == "br" || name == "cr":
				w.breakLine()
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p", "tr":
				w.endLine()
			case "tc":
				if !w.atLineStart {
					w.write("\t")
				}
			}
		}
	}
}

type lineWriter struct {
	strings.Builder
	atLineStart bool
}

func (w *lineWriter) write(text string) {
	if text == "" {
		return
	}
	w.WriteString(text)
	w.atLineStart = false
}

func (w *lineWriter) breakLine() {
	w.WriteByte('\n')
	w.atLineStart = true
}

// endLine breaks the line unless it is already empty.
func (w *lineWriter) endLine() {
	if !w.atLineStart {
		w.breakLine()
	}
}
