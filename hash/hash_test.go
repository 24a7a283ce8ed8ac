package hash

import "testing"

func TestSum64(t *testing.T) {
	a, err := Sum64([]byte("revenue grew 12%"))
	if err != nil {
		t.Fatalf("Sum64: %v", err)
	}
	b, _ := Sum64([]byte("revenue grew 12%"))
	if a != b {
		t.Fatalf("hash is not deterministic")
	}
	c, _ := Sum64([]byte("revenue grew 13%"))
	if a == c {
		t.Fatalf("expected distinct hashes")
	}
}

func TestString(t *testing.T) {
	if String("model", "text") != String("model", "text") {
		t.Fatalf("hash is not deterministic")
	}
	if String("a", "bc") == String("ab", "c") {
		t.Fatalf("separator must distinguish parts")
	}
}
