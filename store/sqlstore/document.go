package sqlstore

import (
	"context"
	"fmt"

	"github.com/viant/projectlens/schema"
	"github.com/viant/projectlens/store"
)

const documentColumns = `id, name, path, mime_type, format, uploaded_by, extracted_text, embedding, content_hash, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (*schema.Document, error) {
	doc := &schema.Document{}
	var format, hash string
	var blob []byte
	var created, updated int64
	if err := row.Scan(&doc.ID, &doc.Name, &doc.Path, &doc.MimeType, &format, &doc.UploadedBy,
		&doc.ExtractedText, &blob, &hash, &created, &updated); err != nil {
		return nil, err
	}
	doc.Format = schema.SourceFormat(format)
	doc.Embedding = decodeVector(blob)
	doc.ContentHash = parseHash(hash)
	doc.CreatedAt, doc.UpdatedAt = fromMillis(created), fromMillis(updated)
	return doc, nil
}

func (s *Store) CreateDocument(ctx context.Context, doc *schema.Document) error {
	doc.ID = newID(doc.ID)
	if !doc.HasText() {
		doc.Embedding = nil
	}
	blob, err := encodeVector(doc.Embedding)
	if err != nil {
		return fmt.Errorf("sqlstore: encode embedding: %w", err)
	}
	now := s.stamp()
	doc.CreatedAt, doc.UpdatedAt = now, now
	_, err = s.exec(ctx, s.db, `INSERT INTO lens_document(`+documentColumns+`) VALUES(?,?,?,?,?,?,?,?,?,?,?)`,
		doc.ID, doc.Name, doc.Path, doc.MimeType, string(doc.Format), doc.UploadedBy,
		doc.ExtractedText, blob, formatHash(doc.ContentHash), millis(now), millis(now))
	if err != nil {
		return fmt.Errorf("sqlstore: create document: %w", err)
	}
	return nil
}

func (s *Store) GetDocument(ctx context.Context, id string) (*schema.Document, error) {
	doc, err := scanDocument(s.queryRow(ctx, s.db, `SELECT `+documentColumns+` FROM lens_document WHERE id = ?`, id))
	if isNoRows(err) {
		return nil, notFound("document", id)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlstore: get document: %w", err)
	}
	return doc, nil
}

func (s *Store) GetDocumentsByIDs(ctx context.Context, ids []string) ([]*schema.Document, error) {
	byID := map[string]*schema.Document{}
	for _, batch := range store.Batches(ids, store.MaxBatch) {
		docs, err := s.listDocuments(ctx, `SELECT `+documentColumns+` FROM lens_document WHERE id IN `+in(len(batch)), anyArgs(batch)...)
		if err != nil {
			return nil, err
		}
		for _, doc := range docs {
			byID[doc.ID] = doc
		}
	}
	return store.Ordered(ids, byID), nil
}

func (s *Store) ListDocuments(ctx context.Context) ([]*schema.Document, error) {
	return s.listDocuments(ctx, `SELECT `+documentColumns+` FROM lens_document ORDER BY created_at, id`)
}

func (s *Store) ListEmbeddedDocuments(ctx context.Context) ([]*schema.Document, error) {
	return s.listDocuments(ctx, `SELECT `+documentColumns+` FROM lens_document WHERE embedding IS NOT NULL ORDER BY created_at, id`)
}

func (s *Store) listDocuments(ctx context.Context, query string, args ...any) ([]*schema.Document, error) {
	rows, err := s.query(ctx, s.db, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: list documents: %w", err)
	}
	defer rows.Close()
	var out []*schema.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

func (s *Store) UpdateDocumentName(ctx context.Context, id, name string) error {
	res, err := s.exec(ctx, s.db, `UPDATE lens_document SET name = ?, updated_at = ? WHERE id = ?`, name, millis(s.stamp()), id)
	if err != nil {
		return fmt.Errorf("sqlstore: rename document: %w", err)
	}
	return s.affected(ctx, s.db, res, "lens_document", "document", id)
}

// DeleteDocument removes the document only; chats keep stale ids.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	res, err := s.exec(ctx, s.db, `DELETE FROM lens_document WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlstore: delete document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound("document", id)
	}
	return nil
}

func (s *Store) CreateMessageEmbedding(ctx context.Context, rec *schema.MessageEmbedding) error {
	rec.ID = newID(rec.ID)
	blob, err := encodeVector(rec.Embedding)
	if err != nil {
		return fmt.Errorf("sqlstore: encode embedding: %w", err)
	}
	if blob == nil {
		return fmt.Errorf("sqlstore: message %s: empty embedding", rec.MessageID)
	}
	now := s.stamp()
	rec.CreatedAt = now
	_, err = s.exec(ctx, s.db, `INSERT INTO lens_message_embedding(id, message_id, user_id, chat_id, text, embedding, created_at) VALUES(?,?,?,?,?,?,?)`,
		rec.ID, rec.MessageID, rec.UserID, rec.ChatID, rec.Text, blob, millis(now))
	if err != nil {
		return fmt.Errorf("sqlstore: create message embedding: %w", err)
	}
	return nil
}

func (s *Store) ListMessageEmbeddings(ctx context.Context, userID string) ([]*schema.MessageEmbedding, error) {
	rows, err := s.query(ctx, s.db, `SELECT id, message_id, user_id, chat_id, text, embedding, created_at
FROM lens_message_embedding WHERE user_id = ? ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: list message embeddings: %w", err)
	}
	defer rows.Close()
	var out []*schema.MessageEmbedding
	for rows.Next() {
		rec := &schema.MessageEmbedding{}
		var blob []byte
		var created int64
		if err := rows.Scan(&rec.ID, &rec.MessageID, &rec.UserID, &rec.ChatID, &rec.Text, &blob, &created); err != nil {
			return nil, err
		}
		rec.Embedding = decodeVector(blob)
		rec.CreatedAt = fromMillis(created)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) DeleteMessageEmbeddings(ctx context.Context, messageID string) error {
	_, err := s.exec(ctx, s.db, `DELETE FROM lens_message_embedding WHERE message_id = ?`, messageID)
	if err != nil {
		return fmt.Errorf("sqlstore: delete message embeddings: %w", err)
	}
	return nil
}

var _ store.Store = (*Store)(nil)
