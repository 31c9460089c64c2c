// Package chat implements prompt composition and the chat orchestrator.
package chat

import (
	"strings"
	"unicode/utf8"

	"github.com/botify-ai/botify-backend/pkg/models"
)

// systemTemplate is the fixed role/instruction block every prompt starts with.
const systemTemplate = `You are a helpful AI shopping assistant. Help users with:
1. Finding products
2. Comparing prices and features
3. Making recommendations
4. Answering product questions
Always be concise and helpful.`

const (
	// maxFieldLen bounds each caller-context field so a hostile page title
	// can't blow up the prompt.
	maxFieldLen = 256
	// maxSnippetLen bounds a single retrieved snippet.
	maxSnippetLen = 512
	// maxContextLen bounds the whole Relevant Context block.
	maxContextLen = 4000
)

// Composer builds the bounded system message from the fixed template, the
// recognized caller-context fields, and the retrieved snippets, in that
// order. Absent blocks are omitted entirely.
type Composer struct{}

// NewComposer creates a prompt composer.
func NewComposer() *Composer { return &Composer{} }

// Compose merges retrieved and caller-supplied context into a prompt.
// Unrecognized caller-context fields are ignored, not errors.
func (c *Composer) Compose(retrieved models.RetrievedContext, callerCtx map[string]any) models.ComposedPrompt {
	blocks := []string{systemTemplate}

	if page := pageBlock(callerCtx); page != "" {
		blocks = append(blocks, page)
	}
	if rel := relevantBlock(retrieved); rel != "" {
		blocks = append(blocks, rel)
	}

	return models.ComposedPrompt{System: strings.Join(blocks, "\n\n")}
}

// pageBlock formats the recognized page/product fields in fixed order.
func pageBlock(callerCtx map[string]any) string {
	if len(callerCtx) == 0 {
		return ""
	}

	var lines []string
	if title := stringField(callerCtx, "title"); title != "" {
		lines = append(lines, "Page Title: "+title)
	}
	if desc := stringField(callerCtx, "description"); desc != "" {
		lines = append(lines, "Description: "+desc)
	}
	if url := stringField(callerCtx, "url"); url != "" {
		lines = append(lines, "Current URL: "+url)
	}
	if hasCartItems(callerCtx) {
		lines = append(lines, "Shopping Cart: Items detected")
	}

	return strings.Join(lines, "\n")
}

// relevantBlock joins snippets under a Relevant Context header, bounded in
// both per-snippet and total size.
func relevantBlock(retrieved models.RetrievedContext) string {
	if len(retrieved) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Relevant Context:")
	total := 0
	for _, s := range retrieved {
		text := truncate(s.Text, maxSnippetLen)
		if total+len(text) > maxContextLen {
			break
		}
		sb.WriteString("\n")
		sb.WriteString(text)
		total += len(text)
	}
	return sb.String()
}

func stringField(m map[string]any, key string) string {
	v, ok := m[key].(string)
	if !ok {
		return ""
	}
	return truncate(strings.TrimSpace(v), maxFieldLen)
}

// hasCartItems recognizes the extension's cart indicator in either form:
// a plain boolean, or a list of cart cookie entries.
func hasCartItems(m map[string]any) bool {
	switch v := m["cart"].(type) {
	case bool:
		return v
	case []any:
		return len(v) > 0
	case string:
		return v != "" && v != "false" && v != "0"
	case float64:
		return v > 0
	default:
		return false
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
