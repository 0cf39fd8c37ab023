package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/keremvatan/go-mobile-signup-agent/internal/workflow"
)

const advisorPrompt = `
You assist a mobile UI automation flow that is stuck on one screen.
You receive the current step, the pending checkpoint, and the last few
action outcomes. Decide how the flow should proceed.

RESPONSE FORMAT:
Respond with a SINGLE JSON object:
{
  "action": "retry" | "skip" | "abort",
  "rationale": "one short sentence"
}

GUIDELINES:
1. "retry" when the failures look transient (slow screen, animation).
2. "skip" when the screen is optional and the flow can move on.
3. "abort" only when the outcomes show the app is in an unusable state.
`

// Advisor implements workflow.Advisor on top of the OpenAI client.
type Advisor struct {
	client *Client
}

func NewAdvisor(client *Client) *Advisor {
	return &Advisor{client: client}
}

// SuggestAction asks for one override decision for a stuck step.
func (a *Advisor) SuggestAction(ctx context.Context, ac workflow.AdvisorContext) (workflow.Advice, error) {
	userMessage := fmt.Sprintf(`
CURRENT STEP: %s
PENDING CHECKPOINT: %s
CONSECUTIVE FAILURES: %d
TOTAL ACTIONS: %d
PROGRESS: %d%%

RECENT OUTCOMES:
%s
`, ac.Step, ac.PendingGate, ac.ConsecutiveErrors, ac.TotalActions, ac.Progress,
		strings.Join(ac.RecentOutcomes, "\n"))

	content, err := a.client.completeJSON(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: advisorPrompt},
		{Role: openai.ChatMessageRoleUser, Content: userMessage},
	})
	if err != nil {
		return workflow.Advice{}, err
	}

	var parsed struct {
		Action    string `json:"action"`
		Rationale string `json:"rationale"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return workflow.Advice{}, fmt.Errorf("parse advice: %w", err)
	}
	return workflow.Advice{
		Action:    normalizeAction(parsed.Action),
		Rationale: parsed.Rationale,
	}, nil
}

// normalizeAction maps loose model phrasing onto the three decisions.
func normalizeAction(action string) string {
	a := strings.ToLower(strings.TrimSpace(action))
	switch {
	case strings.Contains(a, "abort"), strings.Contains(a, "stop"):
		return workflow.AdviceAbort
	case strings.Contains(a, "skip"):
		return workflow.AdviceSkip
	case strings.Contains(a, "try_alternative"), strings.Contains(a, "alternative"):
		return workflow.AdviceRetry
	default:
		return workflow.AdviceRetry
	}
}
