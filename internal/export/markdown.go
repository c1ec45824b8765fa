package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Vishruth-S/Project-Beaver/internal"
)

// MarkdownExporter exports sessions in Markdown format
type MarkdownExporter struct{}

// Export exports a session to Markdown format
func (e *MarkdownExporter) Export(session *internal.ChatSession, w io.Writer) error {
	// Header
	_, _ = fmt.Fprintf(w, "# %s\n\n", session.Name)
	_, _ = fmt.Fprintf(w, "**Session:** %s  \n", session.SessionID)
	_, _ = fmt.Fprintf(w, "**Collection:** %s  \n", session.CollectionID)
	_, _ = fmt.Fprintf(w, "**Documents:** %d  \n", session.DocumentCount)
	_, _ = fmt.Fprintf(w, "**Messages:** %d\n\n", len(session.Messages))

	if len(session.URLs) > 0 {
		_, _ = fmt.Fprintf(w, "**Documentation URLs:**\n\n")
		for _, url := range session.URLs {
			_, _ = fmt.Fprintf(w, "- %s\n", url)
		}
		_, _ = fmt.Fprintf(w, "\n")
	}

	_, _ = fmt.Fprintf(w, "---\n\n")
	_, _ = fmt.Fprintf(w, "## Messages\n\n")

	// Messages
	for i, msg := range session.Messages {
		timestamp := ""
		if !msg.Timestamp.IsZero() {
			timestamp = fmt.Sprintf(" (%s)", msg.Timestamp.Format(time.RFC3339))
		}

		content := escapeMarkdown(msg.Text)

		_, _ = fmt.Fprintf(w, "**%s:**%s\n\n%s\n\n", msg.Role, timestamp, content)

		if msg.Confidence != nil {
			_, _ = fmt.Fprintf(w, "*Confidence: %.2f*\n\n", *msg.Confidence)
		}
		if len(msg.Sources) > 0 {
			_, _ = fmt.Fprintf(w, "*Sources:*\n\n")
			for _, src := range msg.Sources {
				if src.Section != "" {
					_, _ = fmt.Fprintf(w, "- %s (%s)\n", src.Source, src.Section)
				} else {
					_, _ = fmt.Fprintf(w, "- %s\n", src.Source)
				}
			}
			_, _ = fmt.Fprintf(w, "\n")
		}

		// Add horizontal rule after each message (except the last one)
		if i < len(session.Messages)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}

	return nil
}

// escapeMarkdown escapes markdown special characters
func escapeMarkdown(text string) string {
	// Basic escaping - preserve code blocks
	lines := strings.Split(text, "\n")
	var result []string
	inCodeBlock := false

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			inCodeBlock = !inCodeBlock
			result = append(result, line)
		} else if inCodeBlock {
			result = append(result, line)
		} else {
			// Escape markdown syntax outside code blocks
			line = strings.ReplaceAll(line, "**", "\\*\\*")
			line = strings.ReplaceAll(line, "__", "\\_\\_")
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
