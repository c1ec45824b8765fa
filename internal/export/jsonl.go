package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/Vishruth-S/Project-Beaver/internal"
)

// JSONLExporter exports sessions in JSONL format (one message per line)
type JSONLExporter struct{}

// Export exports a session to JSONL format
func (e *JSONLExporter) Export(session *internal.ChatSession, w io.Writer) error {
	enc := json.NewEncoder(w)

	for _, msg := range session.Messages {
		obj := map[string]interface{}{
			"role": msg.Role,
			"text": msg.Text,
		}

		if !msg.Timestamp.IsZero() {
			obj["timestamp"] = msg.Timestamp.Format(time.RFC3339)
		}
		if msg.Confidence != nil {
			obj["confidence"] = *msg.Confidence
		}
		if len(msg.Sources) > 0 {
			obj["sources"] = msg.Sources
		}

		if err := enc.Encode(obj); err != nil {
			return fmt.Errorf("failed to encode message: %w", err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
