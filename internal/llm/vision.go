package llm

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/keremvatan/go-mobile-signup-agent/internal/driver"
	"github.com/keremvatan/go-mobile-signup-agent/internal/workflow"
)

const visionPrompt = `
You read screenshots of a mobile signup flow. Describe what screen is
shown and any visible prompts, buttons or error messages.

RESPONSE FORMAT:
Respond with a SINGLE JSON object:
{
  "text": "what the screen shows",
  "confidence": 0.0
}
`

// ScreenReader implements workflow.Assessor by sending a screenshot to
// a vision-capable model.
type ScreenReader struct {
	session driver.Session
	client  *Client
}

func NewScreenReader(session driver.Session, client *Client) *ScreenReader {
	return &ScreenReader{session: session, client: client}
}

// CaptureAndRead screenshots the session and asks the model what it sees.
func (r *ScreenReader) CaptureAndRead(ctx context.Context) (workflow.Reading, error) {
	png, err := r.session.Screenshot(ctx)
	if err != nil {
		return workflow.Reading{}, fmt.Errorf("capture screen: %w", err)
	}

	parts := []openai.ChatMessagePart{
		{Type: openai.ChatMessagePartTypeText, Text: "Describe this screen."},
		{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL: "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
			},
		},
	}

	content, err := r.client.completeJSON(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: visionPrompt},
		{Role: openai.ChatMessageRoleUser, MultiContent: parts},
	})
	if err != nil {
		return workflow.Reading{}, err
	}

	var parsed struct {
		Text       string  `json:"text"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return workflow.Reading{}, fmt.Errorf("parse reading: %w", err)
	}
	return workflow.Reading{Text: parsed.Text, Confidence: parsed.Confidence}, nil
}
