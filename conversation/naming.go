package conversation

import (
	"context"
	"strings"
	"time"
)

const (
	// MaxTitleLength caps generated chat titles.
	MaxTitleLength = 50
	fallbackLength = 40
)

// TitleSystemPrompt is the instruction used when titling a new chat.
const TitleSystemPrompt = "You are a helpful assistant that generates concise, descriptive titles for chat conversations. Return only the title without any additional text or formatting."

func titlePrompt(firstMessage string, fileNames []string) string {
	var b strings.Builder
	b.WriteString("Generate a concise, descriptive title (max 50 characters) for a chat conversation that starts with this message: \"")
	b.WriteString(firstMessage)
	b.WriteString("\"")
	if len(fileNames) > 0 {
		b.WriteString("\nFiles attached: ")
		b.WriteString(strings.Join(fileNames, ", "))
	}
	b.WriteString(`

Rules:
- Keep it under 50 characters
- Make it descriptive but concise
- Don't use quotes around the title
- Focus on the main topic or intent
- If files are attached, consider them in the title

Examples:
- "How to deploy React app" -> "React App Deployment"
- "Analyze this sales data CSV" -> "Sales Data Analysis"
- "Debug Python authentication" -> "Python Auth Debugging"

Return only the title, nothing else.`)
	return b.String()
}

var quoteStripper = strings.NewReplacer(`"`, "", `'`, "")

// CleanTitle strips quotes and caps text at MaxTitleLength runes.
func CleanTitle(text string) string {
	title := quoteStripper.Replace(strings.TrimSpace(text))
	if runes := []rune(title); len(runes) > MaxTitleLength {
		title = string(runes[:MaxTitleLength])
	}
	return strings.TrimSpace(title)
}

// FallbackTitle truncates the first message to 40 runes plus an ellipsis.
func FallbackTitle(firstMessage string) string {
	text := strings.TrimSpace(firstMessage)
	runes := []rune(text)
	if len(runes) <= fallbackLength {
		return text
	}
	return string(runes[:fallbackLength]) + "..."
}

// title asks the generator for a chat title and reports whether the fallback
// was used.
func (c *Controller) title(ctx context.Context, firstMessage string, fileNames []string) (string, bool) {
	if c.generator == nil {
		return FallbackTitle(firstMessage), true
	}
	if c.config.GenerationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.GenerationTimeout)
		defer cancel()
	}
	started := time.Now()
	text, err := c.generator.Complete(ctx, TitleSystemPrompt, titlePrompt(firstMessage, fileNames))
	c.metrics.generation(ctx, "title", time.Since(started), err)
	if err != nil {
		c.logger.Printf("title generation failed: err=%v", err)
		return FallbackTitle(firstMessage), true
	}
	title := CleanTitle(text)
	if title == "" {
		return FallbackTitle(firstMessage), true
	}
	return title, false
}
