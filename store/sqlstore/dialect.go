package sqlstore

import (
	"strconv"
	"strings"
)

type dialect string

const (
	dialectSQLite   dialect = "sqlite"
	dialectPostgres dialect = "postgres"
	dialectMySQL    dialect = "mysql"
)

func resolveDialect(driver string) dialect {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "postgres", "postgresql", "pgx":
		return dialectPostgres
	case "mysql", "mariadb":
		return dialectMySQL
	default:
		return dialectSQLite
	}
}

// driverName maps a dialect to the registered database/sql driver.
func (d dialect) driverName() string {
	switch d {
	case dialectPostgres:
		return "postgres"
	case dialectMySQL:
		return "mysql"
	default:
		return "sqlite"
	}
}

// bind rewrites ? placeholders to $n for postgres.
func (d dialect) bind(query string) string {
	if d != dialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// in returns "(?,?,...)" with n placeholders.
func in(n int) string {
	if n <= 0 {
		return "(NULL)"
	}
	return "(" + strings.TrimSuffix(strings.Repeat("?,", n), ",") + ")"
}

func (d dialect) keyType() string {
	if d == dialectMySQL {
		return "VARCHAR(64)"
	}
	return "TEXT"
}

func (d dialect) blobType() string {
	switch d {
	case dialectPostgres:
		return "BYTEA"
	case dialectMySQL:
		return "LONGBLOB"
	default:
		return "BLOB"
	}
}

func (d dialect) textType() string {
	if d == dialectMySQL {
		return "LONGTEXT"
	}
	return "TEXT"
}

func (d dialect) schema() []string {
	key, text, blob := d.keyType(), d.textType(), d.blobType()
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS lens_chat (
			id ` + key + ` PRIMARY KEY,
			name ` + text + ` NOT NULL,
			user_id ` + key + ` NOT NULL,
			created_at BIGINT NOT NULL,
			updated_at BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS lens_message (
			id ` + key + ` PRIMARY KEY,
			chat_id ` + key + ` NOT NULL,
			seq INTEGER NOT NULL,
			role VARCHAR(16) NOT NULL,
			text ` + text + ` NOT NULL,
			created_at BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS lens_chat_file (
			chat_id ` + key + ` NOT NULL,
			document_id ` + key + ` NOT NULL,
			seq INTEGER NOT NULL,
			PRIMARY KEY (chat_id, document_id)
		)`,
		`CREATE TABLE IF NOT EXISTS lens_document (
			id ` + key + ` PRIMARY KEY,
			name ` + text + ` NOT NULL,
			path ` + text + ` NOT NULL,
			mime_type VARCHAR(255) NOT NULL,
			format VARCHAR(32) NOT NULL,
			uploaded_by ` + key + ` NOT NULL,
			extracted_text ` + text + ` NOT NULL,
			embedding ` + blob + `,
			content_hash VARCHAR(16) NOT NULL,
			created_at BIGINT NOT NULL,
			updated_at BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS lens_message_embedding (
			id ` + key + ` PRIMARY KEY,
			message_id ` + key + ` NOT NULL,
			user_id ` + key + ` NOT NULL,
			chat_id ` + key + ` NOT NULL,
			text ` + text + ` NOT NULL,
			embedding ` + blob + ` NOT NULL,
			created_at BIGINT NOT NULL
		)`,
	}
	indexes := []string{
		`CREATE INDEX idx_lens_chat_user ON lens_chat(user_id)`,
		`CREATE INDEX idx_lens_message_chat ON lens_message(chat_id, seq)`,
		`CREATE INDEX idx_lens_msg_emb_user ON lens_message_embedding(user_id)`,
		`CREATE INDEX idx_lens_msg_emb_message ON lens_message_embedding(message_id)`,
	}
	if d != dialectMySQL {
		for i, stmt := range indexes {
			indexes[i] = strings.Replace(stmt, "CREATE INDEX", "CREATE INDEX IF NOT EXISTS", 1)
		}
	}
	return append(stmts, indexes...)
}
