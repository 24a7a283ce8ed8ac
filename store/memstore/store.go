// Package memstore is an in-memory store.Store used for tests and local runs.
package memstore

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/viant/projectlens/schema"
	"github.com/viant/projectlens/store"
)

// Store keeps records in maps guarded by a single mutex. Records are copied on
// the way in and out.
type Store struct {
	mu         sync.RWMutex
	chats      map[string]*schema.Chat
	messages   map[string]*schema.Message
	documents  map[string]*schema.Document
	embeddings map[string]*schema.MessageEmbedding
	now        func() time.Time
}

// New creates an empty store.
func New() *Store {
	return &Store{
		chats:      map[string]*schema.Chat{},
		messages:   map[string]*schema.Message{},
		documents:  map[string]*schema.Document{},
		embeddings: map[string]*schema.MessageEmbedding{},
		now:        time.Now,
	}
}

func (s *Store) Close() error { return nil }

func notFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, store.ErrNotFound)
}

func (s *Store) CreateChat(_ context.Context, chat *schema.Chat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if chat.ID == "" {
		chat.ID = uuid.NewString()
	}
	if chat.Name == "" {
		chat.Name = schema.DefaultChatName
	}
	now := s.now()
	chat.CreatedAt, chat.UpdatedAt = now, now
	s.chats[chat.ID] = cloneChat(chat)
	return nil
}

func (s *Store) GetChat(_ context.Context, id string) (*schema.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chat, ok := s.chats[id]
	if !ok {
		return nil, notFound("chat", id)
	}
	return cloneChat(chat), nil
}

func (s *Store) ListChats(_ context.Context, userID string) ([]*schema.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*schema.Chat
	for _, chat := range s.chats {
		if chat.UserID == userID {
			out = append(out, cloneChat(chat))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (s *Store) UpdateChatName(_ context.Context, id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	chat, ok := s.chats[id]
	if !ok {
		return notFound("chat", id)
	}
	chat.Name = name
	chat.UpdatedAt = s.now()
	return nil
}

func (s *Store) RenameChatIfDefault(_ context.Context, id, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chat, ok := s.chats[id]
	if !ok {
		return false, notFound("chat", id)
	}
	if !chat.HasDefaultName() {
		return false, nil
	}
	chat.Name = name
	chat.UpdatedAt = s.now()
	return true, nil
}

func (s *Store) DeleteChat(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.chats[id]; !ok {
		return notFound("chat", id)
	}
	delete(s.chats, id)
	return nil
}

func (s *Store) AttachFile(_ context.Context, chatID, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	chat, ok := s.chats[chatID]
	if !ok {
		return notFound("chat", chatID)
	}
	if _, ok := s.documents[documentID]; !ok {
		return notFound("document", documentID)
	}
	if !slices.Contains(chat.FileIDs, documentID) {
		chat.FileIDs = append(chat.FileIDs, documentID)
		chat.UpdatedAt = s.now()
	}
	return nil
}

func (s *Store) DetachFile(_ context.Context, chatID, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	chat, ok := s.chats[chatID]
	if !ok {
		return notFound("chat", chatID)
	}
	chat.FileIDs = slices.DeleteFunc(chat.FileIDs, func(id string) bool { return id == documentID })
	chat.UpdatedAt = s.now()
	return nil
}

func (s *Store) AppendMessage(_ context.Context, msg *schema.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	chat, ok := s.chats[msg.ChatID]
	if !ok {
		return notFound("chat", msg.ChatID)
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	msg.CreatedAt = s.now()
	copied := *msg
	s.messages[msg.ID] = &copied
	chat.MessageIDs = append(chat.MessageIDs, msg.ID)
	chat.UpdatedAt = msg.CreatedAt
	return nil
}

func (s *Store) GetMessagesByIDs(_ context.Context, ids []string) ([]*schema.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byID := make(map[string]*schema.Message, len(ids))
	for _, id := range ids {
		if msg, ok := s.messages[id]; ok {
			copied := *msg
			byID[id] = &copied
		}
	}
	return store.Ordered(ids, byID), nil
}

func (s *Store) CreateDocument(_ context.Context, doc *schema.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if !doc.HasText() {
		doc.Embedding = nil
	}
	now := s.now()
	doc.CreatedAt, doc.UpdatedAt = now, now
	s.documents[doc.ID] = cloneDocument(doc)
	return nil
}

func (s *Store) GetDocument(_ context.Context, id string) (*schema.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, notFound("document", id)
	}
	return cloneDocument(doc), nil
}

func (s *Store) GetDocumentsByIDs(_ context.Context, ids []string) ([]*schema.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byID := make(map[string]*schema.Document, len(ids))
	for _, id := range ids {
		if doc, ok := s.documents[id]; ok {
			byID[id] = cloneDocument(doc)
		}
	}
	return store.Ordered(ids, byID), nil
}

func (s *Store) ListDocuments(_ context.Context) ([]*schema.Document, error) {
	return s.listDocuments(nil), nil
}

func (s *Store) ListEmbeddedDocuments(_ context.Context) ([]*schema.Document, error) {
	return s.listDocuments(func(d *schema.Document) bool { return d.HasEmbedding() }), nil
}

func (s *Store) listDocuments(keep func(*schema.Document) bool) []*schema.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*schema.Document
	for _, doc := range s.documents {
		if keep == nil || keep(doc) {
			out = append(out, cloneDocument(doc))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (s *Store) UpdateDocumentName(_ context.Context, id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.documents[id]
	if !ok {
		return notFound("document", id)
	}
	doc.Name = name
	doc.UpdatedAt = s.now()
	return nil
}

func (s *Store) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[id]; !ok {
		return notFound("document", id)
	}
	delete(s.documents, id)
	return nil
}

func (s *Store) CreateMessageEmbedding(_ context.Context, rec *schema.MessageEmbedding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.CreatedAt = s.now()
	copied := *rec
	copied.Embedding = slices.Clone(rec.Embedding)
	s.embeddings[rec.ID] = &copied
	return nil
}

func (s *Store) ListMessageEmbeddings(_ context.Context, userID string) ([]*schema.MessageEmbedding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*schema.MessageEmbedding
	for _, rec := range s.embeddings {
		if rec.UserID != userID {
			continue
		}
		copied := *rec
		copied.Embedding = slices.Clone(rec.Embedding)
		out = append(out, &copied)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) DeleteMessageEmbeddings(_ context.Context, messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, rec := range s.embeddings {
		if rec.MessageID == messageID {
			delete(s.embeddings, id)
		}
	}
	return nil
}

func cloneChat(chat *schema.Chat) *schema.Chat {
	copied := *chat
	copied.MessageIDs = slices.Clone(chat.MessageIDs)
	copied.FileIDs = slices.Clone(chat.FileIDs)
	return &copied
}

func cloneDocument(doc *schema.Document) *schema.Document {
	copied := *doc
	copied.Embedding = slices.Clone(doc.Embedding)
	return &copied
}
