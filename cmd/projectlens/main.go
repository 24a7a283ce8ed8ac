package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/gops/agent"
	"github.com/viant/afs"
	_ "github.com/viant/afsc/gs"
	_ "github.com/viant/afsc/s3"

	"github.com/viant/projectlens/auth"
	"github.com/viant/projectlens/conversation"
	"github.com/viant/projectlens/ingest"
	"github.com/viant/projectlens/matching"
	"github.com/viant/projectlens/service"
)

func main() {
	startGops()
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "serve":
		serveCmd(os.Args[2:])
	case "ingest":
		ingestCmd(os.Args[2:])
	case "ask":
		askCmd(os.Args[2:])
	case "chats":
		chatsCmd(os.Args[2:])
	case "search":
		searchCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: projectlens <command> [options]")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  serve   Run the MCP server (streamable HTTP)")
	fmt.Fprintln(os.Stderr, "  ingest  Upload, extract and embed a file")
	fmt.Fprintln(os.Stderr, "  ask     Send a message to a chat and print the reply")
	fmt.Fprintln(os.Stderr, "  chats   List chats of a user")
	fmt.Fprintln(os.Stderr, "  search  Rank documents or past messages against a query")
}

func ingestCmd(args []string) {
	flags := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath := flags.String("config", "", "config yaml (optional, defaults to ~/.projectlens/config.yaml if present)")
	user := flags.String("user", "", "user id (required)")
	source := flags.String("file", "", "file path or URL to ingest")
	dir := flags.String("dir", "", "folder path or URL to ingest recursively")
	include := flags.String("include", "", "comma-separated base name globs for -dir, e.g. *.pdf,*.docx")
	exclude := flags.String("exclude", "", "comma-separated extra exclusion patterns for -dir")
	maxSize := flags.Int64("max-size", 0, "max file size in bytes for -dir")
	name := flags.String("name", "", "document name (defaults to the file base name)")
	mimeType := flags.String("mime", "", "declared mime type (optional)")
	chatID := flags.String("chat", "", "chat id to attach the document to (optional)")
	flags.Parse(args)
	if *user == "" || (*source == "") == (*dir == "") {
		flags.Usage()
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	svc := openService(ctx, *configPath, *user)
	defer func() { _ = svc.Close() }()

	if *dir != "" {
		filter := matching.New(
			matching.WithInclusions(parseCSV(*include)...),
			matching.WithExclusions(parseCSV(*exclude)...),
			matching.WithMaxFileSize(*maxSize),
		)
		res, err := svc.Ingest().IngestFolder(ctx, &ingest.FolderRequest{URL: *dir, UserID: *user, ChatID: *chatID, Filter: filter})
		if err != nil {
			log.Fatalf("ingest: %v", err)
		}
		for _, doc := range res.Documents {
			fmt.Printf("id=%s name=%s format=%s chars=%d embedded=%t\n", doc.ID, doc.Name, doc.Format, len(doc.ExtractedText), doc.HasEmbedding())
		}
		for location, err := range res.Failed {
			log.Printf("ingest: %s: %v", location, err)
		}
		fmt.Printf("documents=%d skipped=%d duplicates=%d failed=%d\n", len(res.Documents), len(res.Skipped), len(res.Duplicates), len(res.Failed))
		return
	}

	data, err := afs.New().DownloadWithURL(ctx, *source)
	if err != nil {
		log.Fatalf("ingest: read %s: %v", *source, err)
	}
	docName := *name
	if docName == "" {
		docName = filepath.Base(*source)
	}
	doc, err := svc.Ingest().Ingest(ctx, &ingest.Request{
		Data:     data,
		Name:     docName,
		MimeType: *mimeType,
		UserID:   *user,
		ChatID:   *chatID,
	})
	if err != nil {
		if doc == nil {
			log.Fatalf("ingest: %v", err)
		}
		log.Printf("ingest: %v", err)
	}
	fmt.Printf("id=%s name=%s format=%s chars=%d embedded=%t path=%s\n",
		doc.ID, doc.Name, doc.Format, len(doc.ExtractedText), doc.HasEmbedding(), doc.Path)
}

func askCmd(args []string) {
	flags := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath := flags.String("config", "", "config yaml (optional)")
	user := flags.String("user", "", "user id (required)")
	chatID := flags.String("chat", "", "chat id (a new chat is created when empty)")
	message := flags.String("message", "", "message text (required)")
	showPrompt := flags.Bool("show-prompt", false, "print the assembled prompt")
	flags.Parse(args)
	if *user == "" || strings.TrimSpace(*message) == "" {
		flags.Usage()
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	svc := openService(ctx, *configPath, *user)
	defer func() { _ = svc.Close() }()

	ctrl := svc.Conversation()
	id := *chatID
	if id == "" {
		chat, err := ctrl.CreateChat(ctx)
		if err != nil {
			log.Fatalf("ask: create chat: %v", err)
		}
		id = chat.ID
	}
	res := ctrl.Send(ctx, &conversation.SendRequest{ChatID: id, Text: *message})
	if !res.Success {
		log.Fatalf("ask: %v", res.Error)
	}
	for _, task := range res.Tasks {
		if !task.OK() {
			log.Printf("ask: task %s: %v", task.Name, task.Err)
		}
	}
	if *showPrompt && res.Context != nil {
		fmt.Printf("%s\n\n", res.Context.Prompt)
	}
	fmt.Printf("chat=%s name=%q\n%s\n", id, res.ChatName, res.Reply)
}

func chatsCmd(args []string) {
	flags := flag.NewFlagSet("chats", flag.ExitOnError)
	configPath := flags.String("config", "", "config yaml (optional)")
	user := flags.String("user", "", "user id (required)")
	flags.Parse(args)
	if *user == "" {
		flags.Usage()
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	svc := openService(ctx, *configPath, *user)
	defer func() { _ = svc.Close() }()

	chats, err := svc.Conversation().ListChats(ctx)
	if err != nil {
		log.Fatalf("chats: %v", err)
	}
	for _, chat := range chats {
		fmt.Printf("id=%s name=%q messages=%d files=%d updated=%s\n",
			chat.ID, chat.Name, len(chat.MessageIDs), len(chat.FileIDs), chat.UpdatedAt.Format(time.RFC3339))
	}
}

func searchCmd(args []string) {
	flags := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := flags.String("config", "", "config yaml (optional)")
	user := flags.String("user", "", "user id (required)")
	query := flags.String("query", "", "query text (required)")
	messages := flags.Bool("messages", false, "search past messages instead of documents")
	limit := flags.Int("limit", 0, "max results (defaults to the configured limit)")
	flags.Parse(args)
	if *user == "" || *query == "" {
		flags.Usage()
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	svc := openService(ctx, *configPath, *user)
	defer func() { _ = svc.Close() }()

	if *messages {
		hits, err := svc.SearchMessages(ctx, *query, *limit)
		if err != nil {
			log.Fatalf("search: %v", err)
		}
		for _, hit := range hits {
			fmt.Printf("message=%s chat=%s score=%.4f\n%s\n\n", hit.MessageID, hit.ChatID, hit.Score, clip(hit.Text, 200))
		}
		return
	}
	hits, err := svc.SearchDocuments(ctx, *query, *limit)
	if err != nil {
		log.Fatalf("search: %v", err)
	}
	for _, hit := range hits {
		fmt.Printf("id=%s score=%.4f type=%s name=%s path=%s\n", hit.ID, hit.Score, hit.Type, hit.Name, hit.Path)
	}
}

func openService(ctx context.Context, configPath, user string) *service.Service {
	cfg := &service.Config{}
	if path := resolveConfigPath(configPath); path != "" {
		var err error
		if cfg, err = service.LoadConfig(path); err != nil {
			log.Fatalf("load config: %v", err)
		}
	}
	var opts []service.Option
	if user != "" {
		opts = append(opts, service.WithSession(auth.Static(user)))
	}
	svc, err := service.New(ctx, cfg, opts...)
	if err != nil {
		log.Fatalf("service init: %v", err)
	}
	return svc
}

func resolveConfigPath(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	if env := os.Getenv("PROJECTLENS_CONFIG"); env != "" {
		return env
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	candidate := filepath.Join(home, ".projectlens", "config.yaml")
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return ""
}

func parseCSV(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func clip(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}

func maybeDebugSleep(cmd string, seconds int) {
	if seconds <= 0 {
		seconds = debugSleepFromEnv()
	}
	if seconds <= 0 {
		return
	}
	log.Printf("debug: cmd=%s pid=%d sleep=%ds", cmd, os.Getpid(), seconds)
	time.Sleep(time.Duration(seconds) * time.Second)
}

func startGops() {
	if err := agent.Listen(agent.Options{ShutdownCleanup: true}); err != nil {
		log.Printf("gops: %v", err)
	}
}

func debugSleepFromEnv() int {
	v, err := strconv.Atoi(os.Getenv("PROJECTLENS_DEBUG_SLEEP"))
	if err != nil {
		return 0
	}
	return v
}
