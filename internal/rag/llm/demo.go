package llm

import (
	"context"
	"fmt"
)

const DemoSourceMarker = "(Source: Demo Data)"

// Demo is the network-free provider used when nothing else is configured.
// Output depends only on the request.
type Demo struct{}

func (Demo) Name() string     { return "demo" }
func (Demo) Configured() bool { return true }

func (Demo) Complete(_ context.Context, req Request) (Completion, error) {
	question := ""
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == RoleUser {
			question = req.Messages[i].Content
			break
		}
	}
	text := fmt.Sprintf(
		"[Demo mode] No language model is configured, so this is a placeholder reflection on %q: "+
			"approach the question with patience and an open heart, and return to it in stillness. %s",
		truncate(question, 120), DemoSourceMarker)

	c := NewCompletion("demo", text)
	c.Demo = true
	return c, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
