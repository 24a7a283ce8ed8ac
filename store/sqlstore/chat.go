package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/viant/projectlens/schema"
	"github.com/viant/projectlens/store"
)

func (s *Store) CreateChat(ctx context.Context, chat *schema.Chat) error {
	chat.ID = newID(chat.ID)
	if chat.Name == "" {
		chat.Name = schema.DefaultChatName
	}
	now := s.stamp()
	chat.CreatedAt, chat.UpdatedAt = now, now
	_, err := s.exec(ctx, s.db, `INSERT INTO lens_chat(id, name, user_id, created_at, updated_at) VALUES(?,?,?,?,?)`,
		chat.ID, chat.Name, chat.UserID, millis(now), millis(now))
	if err != nil {
		return fmt.Errorf("sqlstore: create chat: %w", err)
	}
	return nil
}

func (s *Store) GetChat(ctx context.Context, id string) (*schema.Chat, error) {
	chat := &schema.Chat{}
	var created, updated int64
	err := s.queryRow(ctx, s.db, `SELECT id, name, user_id, created_at, updated_at FROM lens_chat WHERE id = ?`, id).
		Scan(&chat.ID, &chat.Name, &chat.UserID, &created, &updated)
	if isNoRows(err) {
		return nil, notFound("chat", id)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlstore: get chat: %w", err)
	}
	chat.CreatedAt, chat.UpdatedAt = fromMillis(created), fromMillis(updated)
	if chat.MessageIDs, err = s.column(ctx, `SELECT id FROM lens_message WHERE chat_id = ? ORDER BY seq`, id); err != nil {
		return nil, err
	}
	if chat.FileIDs, err = s.column(ctx, `SELECT document_id FROM lens_chat_file WHERE chat_id = ? ORDER BY seq`, id); err != nil {
		return nil, err
	}
	return chat, nil
}

func (s *Store) column(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.query(ctx, s.db, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: query: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Store) ListChats(ctx context.Context, userID string) ([]*schema.Chat, error) {
	ids, err := s.column(ctx, `SELECT id FROM lens_chat WHERE user_id = ? ORDER BY updated_at DESC, id`, userID)
	if err != nil {
		return nil, err
	}
	out := make([]*schema.Chat, 0, len(ids))
	for _, id := range ids {
		chat, err := s.GetChat(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, chat)
	}
	return out, nil
}

func (s *Store) UpdateChatName(ctx context.Context, id, name string) error {
	res, err := s.exec(ctx, s.db, `UPDATE lens_chat SET name = ?, updated_at = ? WHERE id = ?`, name, millis(s.stamp()), id)
	if err != nil {
		return fmt.Errorf("sqlstore: rename chat: %w", err)
	}
	return s.affected(ctx, s.db, res, "lens_chat", "chat", id)
}

func (s *Store) RenameChatIfDefault(ctx context.Context, id, name string) (bool, error) {
	res, err := s.exec(ctx, s.db, `UPDATE lens_chat SET name = ?, updated_at = ? WHERE id = ? AND (name = ? OR name = '')`,
		name, millis(s.stamp()), id, schema.DefaultChatName)
	if err != nil {
		return false, fmt.Errorf("sqlstore: rename chat: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n > 0 {
		return true, nil
	}
	ok, err := s.exists(ctx, s.db, "lens_chat", id)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, notFound("chat", id)
	}
	return false, nil
}

func (s *Store) DeleteChat(ctx context.Context, id string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := s.exec(ctx, tx, `DELETE FROM lens_chat WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("sqlstore: delete chat: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return notFound("chat", id)
		}
		if _, err := s.exec(ctx, tx, `DELETE FROM lens_chat_file WHERE chat_id = ?`, id); err != nil {
			return err
		}
		_, err = s.exec(ctx, tx, `DELETE FROM lens_message WHERE chat_id = ?`, id)
		return err
	})
}

func (s *Store) touchChat(ctx context.Context, q queryer, id string) error {
	res, err := s.exec(ctx, q, `UPDATE lens_chat SET updated_at = ? WHERE id = ?`, millis(s.stamp()), id)
	if err != nil {
		return err
	}
	return s.affected(ctx, q, res, "lens_chat", "chat", id)
}

func (s *Store) AttachFile(ctx context.Context, chatID, documentID string) error {
	if _, err := s.GetDocument(ctx, documentID); err != nil {
		return err
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := s.touchChat(ctx, tx, chatID); err != nil {
			return err
		}
		var count int
		if err := s.queryRow(ctx, tx, `SELECT COUNT(*) FROM lens_chat_file WHERE chat_id = ? AND document_id = ?`, chatID, documentID).Scan(&count); err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		var seq int
		if err := s.queryRow(ctx, tx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM lens_chat_file WHERE chat_id = ?`, chatID).Scan(&seq); err != nil {
			return err
		}
		_, err := s.exec(ctx, tx, `INSERT INTO lens_chat_file(chat_id, document_id, seq) VALUES(?,?,?)`, chatID, documentID, seq)
		return err
	})
}

func (s *Store) DetachFile(ctx context.Context, chatID, documentID string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := s.touchChat(ctx, tx, chatID); err != nil {
			return err
		}
		_, err := s.exec(ctx, tx, `DELETE FROM lens_chat_file WHERE chat_id = ? AND document_id = ?`, chatID, documentID)
		return err
	})
}

func (s *Store) AppendMessage(ctx context.Context, msg *schema.Message) error {
	msg.ID = newID(msg.ID)
	now := s.stamp()
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := s.touchChat(ctx, tx, msg.ChatID); err != nil {
			return err
		}
		var seq int
		if err := s.queryRow(ctx, tx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM lens_message WHERE chat_id = ?`, msg.ChatID).Scan(&seq); err != nil {
			return err
		}
		_, err := s.exec(ctx, tx, `INSERT INTO lens_message(id, chat_id, seq, role, text, created_at) VALUES(?,?,?,?,?,?)`,
			msg.ID, msg.ChatID, seq, string(msg.Role), msg.Text, millis(now))
		return err
	})
	if err != nil {
		return fmt.Errorf("sqlstore: append message: %w", err)
	}
	msg.CreatedAt = now
	return nil
}

func (s *Store) GetMessagesByIDs(ctx context.Context, ids []string) ([]*schema.Message, error) {
	byID := map[string]*schema.Message{}
	for _, batch := range store.Batches(ids, store.MaxBatch) {
		rows, err := s.query(ctx, s.db, `SELECT id, chat_id, role, text, created_at FROM lens_message WHERE id IN `+in(len(batch)), anyArgs(batch)...)
		if err != nil {
			return nil, fmt.Errorf("sqlstore: get messages: %w", err)
		}
		for rows.Next() {
			msg := &schema.Message{}
			var role string
			var created int64
			if err := rows.Scan(&msg.ID, &msg.ChatID, &role, &msg.Text, &created); err != nil {
				rows.Close()
				return nil, err
			}
			msg.Role, msg.CreatedAt = schema.Role(role), fromMillis(created)
			byID[msg.ID] = msg
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, err
		}
	}
	return store.Ordered(ids, byID), nil
}
