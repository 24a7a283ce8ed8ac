package sqliteutil

import "testing"

func TestEnsurePragmas(t *testing.T) {
	got := EnsurePragmas("file:/tmp/lens.db", true, 5000)
	want := "file:/tmp/lens.db?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	if got != want {
		t.Fatalf("got %s", got)
	}
	if again := EnsurePragmas(got, true, 5000); again != got {
		t.Fatalf("pragmas appended twice: %s", again)
	}
	mem := EnsurePragmas("file::memory:?cache=shared", true, 0)
	if mem != "file::memory:?cache=shared&_pragma=foreign_keys(1)" {
		t.Fatalf("unexpected memory dsn: %s", mem)
	}
	if EnsurePragmas("", true, 10) != "" {
		t.Fatalf("empty dsn must stay empty")
	}
}
