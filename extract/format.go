package extract

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/viant/projectlens/schema"
)

const (
	mimePDF      = "application/pdf"
	mimeXLSX     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeXLSM     = "application/vnd.ms-excel.sheet.macroenabled.12"
	mimeXLS      = "application/vnd.ms-excel"
	mimePPTX     = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	mimePPT      = "application/vnd.ms-powerpoint"
	mimeDOCX     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeDOC      = "application/msword"
	mimeCSV      = "text/csv"
	mimeJSON     = "application/json"
	mimeXML      = "application/xml"
	mimeTextXML  = "text/xml"
	mimeMarkdown = "text/markdown"
)

// rule maps declared MIME types and file extensions to a source format.
// Rules are evaluated in order; MIME matches win over extension matches.
type rule struct {
	format schema.SourceFormat
	mimes  []string
	exts   []string
}

var rules = []rule{
	{format: schema.FormatPDF, mimes: []string{mimePDF}, exts: []string{".pdf"}},
	{format: schema.FormatSpreadsheet, mimes: []string{mimeXLSX, mimeXLSM, mimeXLS}, exts: []string{".xlsx", ".xlsm", ".xltx", ".xltm", ".xls"}},
	{format: schema.FormatPresentation, mimes: []string{mimePPTX, mimePPT}, exts: []string{".pptx", ".ppt"}},
	{format: schema.FormatWord, mimes: []string{mimeDOCX, mimeDOC}, exts: []string{".docx", ".doc"}},
	{format: schema.FormatCSV, mimes: []string{mimeCSV, "application/csv"}, exts: []string{".csv"}},
	{format: schema.FormatJSON, mimes: []string{mimeJSON}, exts: []string{".json"}},
	{format: schema.FormatXML, mimes: []string{mimeXML, mimeTextXML}, exts: []string{".xml"}},
	{format: schema.FormatMarkdown, mimes: []string{mimeMarkdown, "text/x-markdown"}, exts: []string{".md", ".markdown"}},
	{format: schema.FormatText, mimes: []string{"text/plain"}, exts: []string{".txt", ".text", ".log", ".yaml", ".yml", ".html", ".htm", ".ini", ".toml"}},
}

// DetectFormat resolves the source format from a declared MIME type first and
// the file extension second. Any other text/* MIME type resolves to text.
func DetectFormat(mimeType, name string) schema.SourceFormat {
	mt := normalizeMIME(mimeType)
	if mt != "" {
		for _, r := range rules {
			for _, candidate := range r.mimes {
				if mt == candidate {
					return r.format
				}
			}
		}
		if strings.HasPrefix(mt, "text/") {
			return schema.FormatText
		}
	}
	ext := strings.ToLower(filepath.Ext(name))
	if ext != "" {
		for _, r := range rules {
			for _, candidate := range r.exts {
				if ext == candidate {
					return r.format
				}
			}
		}
	}
	return schema.FormatOther
}

// normalizeMIME lowercases the media type and drops parameters.
func normalizeMIME(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if mt, _, err := mime.ParseMediaType(value); err == nil {
		return strings.ToLower(mt)
	}
	if idx := strings.IndexByte(value, ';'); idx != -1 {
		value = value[:idx]
	}
	return strings.ToLower(strings.TrimSpace(value))
}

// isDeclaredMIME reports whether the declared value looks like a MIME type
// rather than a file name.
func isDeclaredMIME(value string) bool {
	mt := normalizeMIME(value)
	slash := strings.IndexByte(mt, '/')
	if slash <= 0 || strings.Count(mt, "/") != 1 {
		return false
	}
	switch mt[:slash] {
	case "application", "text", "image", "audio", "video", "font", "model", "multipart", "message":
		return true
	}
	return false
}
