package assembler

import (
	"fmt"
	"math"
	"strings"

	"github.com/viant/projectlens/schema"
)

// SystemPrompt is the analyst instruction sent alongside every assembled
// prompt.
const SystemPrompt = `You are ProjectLens AI, an assistant that analyzes project documents for tracking and reporting.

Key instructions:
- Automatically analyze every document provided in the context and its extracted text
- Base your insights on all available document content
- Cross-reference information across documents when relevant
- Identify patterns, trends and correlations across files
- Never ask the user which files to analyze; analyze all of them by default

When documents are provided, always:
- Reference the specific document when citing a detail
- Highlight correlations or discrepancies between documents
- Treat similar past messages and memories as background only`

const (
	searchHeader   = "RELEVANT DOCUMENTS - AUTOMATIC COMPREHENSIVE ANALYSIS:"
	fallbackHeader = "ALL ATTACHED FILES - AUTOMATIC COMPREHENSIVE ANALYSIS:"
	analysisRules  = `ANALYSIS INSTRUCTIONS:
- Automatically analyze ALL the document content below
- Provide comprehensive insights based on ALL listed documents
- Cross-reference information across all documents
- Identify patterns, trends, and correlations
- Reference specific documents when citing information
- Do NOT ask which files to analyze - analyze ALL automatically`
	messagesHeader = "SIMILAR PAST MESSAGES:"
	messagesRules  = "The following messages from earlier conversations may be related. Use them only as soft context; the current message and documents take precedence."
	memoriesHeader = "RELEVANT MEMORIES:"
	memoriesRules  = "Facts remembered about this user. Use them only as soft context to personalize the answer."
	truncatedMark  = "\n[content truncated]"
)

func (a *Assembler) render(req *Request, res *lookup) *Context {
	ret := &Context{}
	var b strings.Builder

	history := historyLines(req)
	if len(history) > 0 {
		b.WriteString("Previous conversation:\n")
		b.WriteString(strings.Join(history, "\n"))
		b.WriteString("\n\n")
	}
	b.WriteString("Current user message: ")
	b.WriteString(req.Message.Text)

	a.renderDocuments(&b, ret, res)
	renderMessages(&b, ret, res)
	renderMemories(&b, ret, res)

	ret.Prompt = b.String()
	return ret
}

func historyLines(req *Request) []string {
	lines := make([]string, 0, len(req.History))
	for _, msg := range req.History {
		if req.Message.ID != "" && msg.ID == req.Message.ID {
			continue
		}
		lines = append(lines, msg.Role.Label()+": "+msg.Text)
	}
	return lines
}

type renderedDocument struct {
	doc   *schema.Document
	score float64
}

func (a *Assembler) renderDocuments(b *strings.Builder, ret *Context, res *lookup) {
	var selected []renderedDocument
	scored := false
	for _, hit := range res.docs {
		selected = append(selected, renderedDocument{doc: hit.Payload, score: hit.Score})
		scored = true
	}
	var withoutText []*schema.Document
	for _, doc := range res.attached {
		if !doc.HasText() {
			withoutText = append(withoutText, doc)
		}
	}
	if len(selected) == 0 {
		for _, doc := range res.attached {
			if doc.HasText() {
				selected = append(selected, renderedDocument{doc: doc})
			}
		}
		ret.DocumentsFromFallback = len(selected) > 0
	}
	if len(selected) == 0 && len(withoutText) == 0 {
		ret.Omitted = append(ret.Omitted, SectionDocuments)
		return
	}

	b.WriteString("\n\n")
	if scored {
		b.WriteString(searchHeader)
	} else {
		b.WriteString(fallbackHeader)
	}
	b.WriteString("\n")
	b.WriteString(analysisRules)
	b.WriteString("\n")

	if len(selected) > 0 {
		fmt.Fprintf(b, "\nDOCUMENTS WITH EXTRACTED CONTENT (%d files):\n", len(selected))
		for i, item := range selected {
			n := i + 1
			fmt.Fprintf(b, "\n==== DOCUMENT %d: %s ====\n", n, item.doc.Name)
			fmt.Fprintf(b, "File Type: %s\n", item.doc.TypeLabel())
			if scored {
				fmt.Fprintf(b, "Similarity: %d%%\n", percent(item.score))
			}
			b.WriteString("Content:\n")
			b.WriteString(a.clip(item.doc.ExtractedText))
			fmt.Fprintf(b, "\n==== END OF DOCUMENT %d ====\n", n)
			ret.Documents = append(ret.Documents, DocumentRef{ID: item.doc.ID, Name: item.doc.Name, Type: item.doc.TypeLabel(), Score: item.score})
		}
	}
	if len(withoutText) > 0 {
		fmt.Fprintf(b, "\nFILES WITHOUT TEXT CONTENT (%d files):\n", len(withoutText))
		for i, doc := range withoutText {
			fmt.Fprintf(b, "%d. %s (%s) - No extractable text\n", i+1, doc.Name, doc.TypeLabel())
			ret.FilesWithoutText = append(ret.FilesWithoutText, DocumentRef{ID: doc.ID, Name: doc.Name, Type: doc.TypeLabel()})
		}
	}
}

func renderMessages(b *strings.Builder, ret *Context, res *lookup) {
	if len(res.messages) == 0 {
		ret.Omitted = append(ret.Omitted, SectionMessages)
		return
	}
	b.WriteString("\n\n")
	b.WriteString(messagesHeader)
	b.WriteString("\n")
	b.WriteString(messagesRules)
	b.WriteString("\n")
	for i, hit := range res.messages {
		fmt.Fprintf(b, "%d. %q (%d%% similar)\n", i+1, hit.Payload.Text, percent(hit.Score))
		ret.SimilarMessages = append(ret.SimilarMessages, SimilarMessage{
			MessageID: hit.Payload.MessageID,
			ChatID:    hit.Payload.ChatID,
			Text:      hit.Payload.Text,
			Score:     hit.Score,
		})
	}
}

func renderMemories(b *strings.Builder, ret *Context, res *lookup) {
	for _, fact := range res.memories {
		if strings.TrimSpace(fact.Memory) != "" {
			ret.Memories = append(ret.Memories, fact)
		}
	}
	if len(ret.Memories) == 0 {
		ret.Omitted = append(ret.Omitted, SectionMemories)
		return
	}
	b.WriteString("\n\n")
	b.WriteString(memoriesHeader)
	b.WriteString("\n")
	b.WriteString(memoriesRules)
	b.WriteString("\n")
	for _, fact := range ret.Memories {
		b.WriteString("- ")
		b.WriteString(fact.Memory)
		b.WriteString("\n")
	}
}

func (a *Assembler) clip(text string) string {
	limit := a.config.MaxDocumentChars
	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + truncatedMark
}

func percent(score float64) int {
	return int(math.Round(score * 100))
}
