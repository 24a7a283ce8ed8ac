package sqlstore

import (
	"strings"
	"testing"
)

func TestDialect_Bind(t *testing.T) {
	q := "SELECT id FROM lens_chat WHERE id = ? AND user_id IN " + in(3)
	if got := dialectSQLite.bind(q); got != q {
		t.Fatalf("sqlite must keep ?: %s", got)
	}
	want := "SELECT id FROM lens_chat WHERE id = $1 AND user_id IN ($2,$3,$4)"
	if got := dialectPostgres.bind(q); got != want {
		t.Fatalf("got %s", got)
	}
}

func TestResolveDialect(t *testing.T) {
	cases := map[string]dialect{"": dialectSQLite, "sqlite": dialectSQLite, "Postgres": dialectPostgres, "mariadb": dialectMySQL}
	for in, want := range cases {
		if got := resolveDialect(in); got != want {
			t.Fatalf("%q: got %s want %s", in, got, want)
		}
	}
}

func TestDialect_Schema(t *testing.T) {
	for _, stmt := range dialectMySQL.schema() {
		if strings.Contains(stmt, "IF NOT EXISTS idx") {
			t.Fatalf("mysql does not support CREATE INDEX IF NOT EXISTS: %s", stmt)
		}
	}
	pg := strings.Join(dialectPostgres.schema(), "\n")
	if !strings.Contains(pg, "BYTEA") {
		t.Fatalf("postgres schema must use BYTEA")
	}
}
