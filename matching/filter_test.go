package matching

import (
	"strings"
	"testing"
)

func TestFilter_DefaultExclusions(t *testing.T) {
	f := New()
	cases := map[string]bool{
		"/work/reports/q4.pdf":              true,
		"/work/.git/config":                 false,
		"/work/site/node_modules/x/read.md": false,
		"/work/reports/~$q4.docx":           false,
		"/work/reports/.DS_Store":           false,
		"file:///work/notes/minutes.docx":   true,
		"/work/.git":                        false,
	}
	for location, want := range cases {
		if got := f.Allowed(location, -1); got != want {
			t.Fatalf("Allowed(%q) = %v, want %v", location, got, want)
		}
	}
}

func TestFilter_SizeAndIgnoreFile(t *testing.T) {
	f := New(WithMaxFileSize(10), WithIgnoreFile(strings.NewReader("# drafts\n\ndrafts/\n*.bak\n")))
	if f.Allowed("/a/big.pdf", 11) {
		t.Fatalf("expected oversize file to be excluded")
	}
	if !f.Allowed("/a/small.pdf", 10) {
		t.Fatalf("expected file at the limit to be allowed")
	}
	if f.Allowed("/a/drafts/plan.docx", 1) || f.Allowed("/a/plan.bak", 1) || f.Allowed("/a/plan.BAK", 1) {
		t.Fatalf("ignore file patterns not applied")
	}
}

func TestFilter_Inclusions(t *testing.T) {
	f := New(WithInclusions("*.pdf", "*.xlsx"))
	if !f.Included("/a/Budget.XLSX") || !f.Included("/a/report.pdf") {
		t.Fatalf("expected case insensitive inclusion")
	}
	if f.Included("/a/notes.txt") {
		t.Fatalf("expected notes.txt to be excluded")
	}
	if !New().Included("/a/anything") {
		t.Fatalf("no inclusions must include everything")
	}
}
