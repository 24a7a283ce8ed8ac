// Package conversation drives a single chat turn: it stores the user
// message, assembles context, generates and stores the reply, then runs the
// best-effort embedding, memory and auto-naming steps.
package conversation

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/viant/projectlens/assembler"
	"github.com/viant/projectlens/auth"
	"github.com/viant/projectlens/generation"
	"github.com/viant/projectlens/memory"
	"github.com/viant/projectlens/schema"
	"github.com/viant/projectlens/store"
)

// DefaultGenerationTimeout bounds the reply and title generation calls.
const DefaultGenerationTimeout = 60 * time.Second

// ContextBuilder assembles the prompt for a turn.
type ContextBuilder interface {
	Build(ctx context.Context, req *assembler.Request) *assembler.Context
}

// Embedder embeds message text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Memory records completed turns.
type Memory interface {
	Add(ctx context.Context, turns []memory.Turn, userID string) error
}

// Config holds controller settings.
type Config struct {
	GenerationTimeout time.Duration
	SystemPrompt      string
	DisableAutoName   bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithConfig sets controller settings.
func WithConfig(config Config) Option {
	return func(c *Controller) { c.config = config }
}

// WithEmbedder enables message embeddings.
func WithEmbedder(e Embedder) Option {
	return func(c *Controller) { c.embedder = e }
}

// WithMemory enables memory updates.
func WithMemory(m Memory) Option {
	return func(c *Controller) { c.memory = m }
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Controller runs chat turns. It holds only process lifetime collaborators
// and is safe for concurrent use.
type Controller struct {
	store     store.Store
	session   auth.Session
	builder   ContextBuilder
	generator generation.Generator
	embedder  Embedder
	memory    Memory
	config    Config
	logger    *log.Logger
	metrics   *metrics
}

// New creates a Controller.
func New(st store.Store, session auth.Session, builder ContextBuilder, generator generation.Generator, opts ...Option) *Controller {
	c := &Controller{
		store:     st,
		session:   session,
		builder:   builder,
		generator: generator,
		logger:    log.New(log.Writer(), "[CONVERSATION] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.config.GenerationTimeout == 0 {
		c.config.GenerationTimeout = DefaultGenerationTimeout
	}
	if c.config.SystemPrompt == "" {
		c.config.SystemPrompt = assembler.SystemPrompt
	}
	c.metrics = newMetrics(c.logger)
	return c
}

// SendRequest is a user message for a chat.
type SendRequest struct {
	ChatID string `json:"chatId"`
	Text   string `json:"text"`
}

// Result is the outcome of Send.
type Result struct {
	Success       bool               `json:"success"`
	UserMessageID string             `json:"userMessageId,omitempty"`
	AIMessageID   string             `json:"aiMessageId,omitempty"`
	Reply         string             `json:"reply,omitempty"`
	ChatName      string             `json:"chatName,omitempty"`
	Renamed       bool               `json:"renamed,omitempty"`
	Context       *assembler.Context `json:"-"`
	Error         *Failure           `json:"error,omitempty"`
	Tasks         []TaskResult       `json:"-"`
	States        []State            `json:"-"`
}

type turn struct {
	chatID string
	userID string
	result *Result
	logger *log.Logger
}

func (t *turn) enter(state State) {
	t.result.States = append(t.result.States, state)
	t.logger.Printf("chat=%s user=%s state=%s", t.chatID, t.userID, state)
}

// Send runs one chat turn. Fatal problems are reported in Result.Error and
// never returned as a panic; best-effort problems only appear in Tasks.
func (c *Controller) Send(ctx context.Context, req *SendRequest) *Result {
	t := &turn{chatID: req.ChatID, result: &Result{}, logger: c.logger}
	c.metrics.turn(ctx)
	t.enter(AwaitingInput)
	if strings.TrimSpace(req.Text) == "" {
		return c.fail(ctx, t, newFailure(KindInvalidInput, "send", "message text is empty", nil))
	}
	chat, failure := c.authorizedChat(ctx, "send", req.ChatID)
	if failure != nil {
		return c.fail(ctx, t, failure)
	}
	t.userID = chat.UserID
	firstTurn := chat.IsEmpty()
	history := c.history(ctx, chat)

	t.enter(PersistingUserMsg)
	userMsg := &schema.Message{ChatID: chat.ID, Role: schema.RoleUser, Text: req.Text}
	if err := c.store.AppendMessage(ctx, userMsg); err != nil {
		return c.fail(ctx, t, persistenceFailure("send", "failed to save user message", err))
	}
	t.result.UserMessageID = userMsg.ID

	t.enter(BuildingContext)
	assembled := c.builder.Build(ctx, &assembler.Request{
		UserID:          chat.UserID,
		ChatID:          chat.ID,
		Message:         *userMsg,
		History:         history,
		AttachedFileIDs: chat.FileIDs,
	})
	t.result.Context = assembled

	t.enter(Generating)
	reply, err := c.generate(ctx, assembled.Prompt)
	if err != nil {
		return c.fail(ctx, t, newFailure(KindGeneration, "send", "failed to generate a reply", err))
	}

	t.enter(PersistingAIMsg)
	aiMsg := &schema.Message{ChatID: chat.ID, Role: schema.RoleAssistant, Text: reply}
	if err := c.store.AppendMessage(ctx, aiMsg); err != nil {
		return c.fail(ctx, t, persistenceFailure("send", "failed to save assistant message", err))
	}
	t.result.AIMessageID = aiMsg.ID
	t.result.Reply = reply

	t.enter(EmbeddingBoth)
	t.enter(UpdatingMemory)
	t.result.Tasks = c.finalize(ctx, chat, userMsg, aiMsg)

	t.enter(MaybeAutoNaming)
	t.result.ChatName = chat.Name
	if firstTurn && chat.HasDefaultName() && !c.config.DisableAutoName {
		task := c.autoName(ctx, chat, userMsg.Text, t.result)
		t.result.Tasks = append(t.result.Tasks, task)
	}
	c.metrics.tasks(ctx, t.result.Tasks)
	for _, task := range t.result.Tasks {
		if task.Err != nil {
			c.logger.Printf("best-effort task failed: chat=%s task=%s err=%v", chat.ID, task.Name, task.Err)
		}
	}

	t.enter(Done)
	t.result.Success = true
	return t.result
}

func (c *Controller) fail(ctx context.Context, t *turn, failure *Failure) *Result {
	c.logger.Printf("turn failed: chat=%s kind=%s err=%v", t.chatID, failure.Kind, failure)
	c.metrics.failure(ctx, failure.Kind)
	t.result.Success = false
	t.result.Error = failure
	return t.result
}

func persistenceFailure(op, message string, err error) *Failure {
	if errors.Is(err, store.ErrNotFound) {
		return newFailure(KindNotFound, op, message, err)
	}
	return newFailure(KindPersistence, op, message, err)
}

// authorizedChat loads the chat and checks it belongs to the session user.
func (c *Controller) authorizedChat(ctx context.Context, op, chatID string) (*schema.Chat, *Failure) {
	userID, ok := c.session.CurrentUserID(ctx)
	if !ok {
		return nil, newFailure(KindAuthorization, op, "user not authenticated", nil)
	}
	if chatID == "" {
		return nil, newFailure(KindInvalidInput, op, "chat id is empty", nil)
	}
	chat, err := c.store.GetChat(ctx, chatID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, newFailure(KindNotFound, op, "chat "+chatID+" not found", err)
		}
		return nil, newFailure(KindPersistence, op, "failed to load chat", err)
	}
	if chat.UserID != userID {
		return nil, newFailure(KindAuthorization, op, "chat belongs to another user", nil)
	}
	return chat, nil
}

func (c *Controller) history(ctx context.Context, chat *schema.Chat) []schema.Message {
	if len(chat.MessageIDs) == 0 {
		return nil
	}
	msgs, err := c.store.GetMessagesByIDs(ctx, chat.MessageIDs)
	if err != nil {
		c.logger.Printf("history unavailable: chat=%s err=%v", chat.ID, err)
		return nil
	}
	history := make([]schema.Message, 0, len(msgs))
	for _, msg := range msgs {
		history = append(history, *msg)
	}
	return history
}

func (c *Controller) generate(ctx context.Context, prompt string) (string, error) {
	if c.generator == nil {
		return "", errors.New("no generator configured")
	}
	if c.config.GenerationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.GenerationTimeout)
		defer cancel()
	}
	started := time.Now()
	reply, err := c.generator.Complete(ctx, c.config.SystemPrompt, prompt)
	c.metrics.generation(ctx, "reply", time.Since(started), err)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(reply) == "" {
		return "", generation.ErrEmptyResponse
	}
	return reply, nil
}

// finalize embeds both messages and updates memory concurrently. Disabled
// steps are not reported.
func (c *Controller) finalize(ctx context.Context, chat *schema.Chat, userMsg, aiMsg *schema.Message) []TaskResult {
	type task struct {
		name string
		run  func() error
	}
	var tasks []task
	if c.embedder != nil {
		tasks = append(tasks,
			task{name: TaskEmbedUserMessage, run: func() error { return c.embedMessage(ctx, chat, userMsg) }},
			task{name: TaskEmbedAIMessage, run: func() error { return c.embedMessage(ctx, chat, aiMsg) }},
		)
	}
	if c.memory != nil {
		tasks = append(tasks, task{name: TaskUpdateMemory, run: func() error { return c.updateMemory(ctx, chat.UserID, userMsg, aiMsg) }})
	}
	results := make([]TaskResult, len(tasks))
	var wg sync.WaitGroup
	for i, t := range tasks {
		wg.Add(1)
		go func(i int, t task) {
			defer wg.Done()
			results[i] = TaskResult{Name: t.name, Err: t.run()}
		}(i, t)
	}
	wg.Wait()
	return results
}

func (c *Controller) embedMessage(ctx context.Context, chat *schema.Chat, msg *schema.Message) error {
	vec, err := c.embedder.Embed(ctx, msg.Text)
	if err != nil {
		return err
	}
	return c.store.CreateMessageEmbedding(ctx, &schema.MessageEmbedding{
		MessageID: msg.ID,
		UserID:    chat.UserID,
		ChatID:    chat.ID,
		Text:      msg.Text,
		Embedding: vec,
	})
}

func (c *Controller) updateMemory(ctx context.Context, userID string, userMsg, aiMsg *schema.Message) error {
	return c.memory.Add(ctx, []memory.Turn{
		{Role: string(schema.RoleUser), Content: userMsg.Text},
		{Role: string(schema.RoleAssistant), Content: aiMsg.Text},
	}, userID)
}

func (c *Controller) autoName(ctx context.Context, chat *schema.Chat, firstMessage string, result *Result) TaskResult {
	task := TaskResult{Name: TaskAutoName}
	title, fallback := c.title(ctx, firstMessage, c.fileNames(ctx, chat))
	if fallback {
		c.metrics.nameFallback(ctx)
	}
	if title == "" {
		task.Err = errors.New("empty title")
		return task
	}
	renamed, err := c.store.RenameChatIfDefault(ctx, chat.ID, title)
	if err != nil {
		task.Err = err
		return task
	}
	if renamed {
		result.ChatName = title
		result.Renamed = true
		c.logger.Printf("chat named: chat=%s name=%q fallback=%v", chat.ID, title, fallback)
	} else if latest, err := c.store.GetChat(ctx, chat.ID); err == nil {
		result.ChatName = latest.Name
	}
	return task
}

func (c *Controller) fileNames(ctx context.Context, chat *schema.Chat) []string {
	if len(chat.FileIDs) == 0 {
		return nil
	}
	docs, err := c.store.GetDocumentsByIDs(ctx, chat.FileIDs)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(docs))
	for _, doc := range docs {
		names = append(names, doc.Name)
	}
	return names
}
