package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aurix-ai/aurix/internal/models"
)

// requestOptions are the generation parameters sent with each attempt; the
// retry loop degrades them between attempts.
type requestOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
	NumCtx      int     `json:"num_ctx"`
}

// codec pairs a request builder with a response parser for one backend wire
// format. The style is selected by configuration, not by subtyping.
type codec struct {
	path  string
	build func(model, systemPrompt string, window []models.Message, opts requestOptions) ([]byte, error)
	parse func(body []byte) (string, error)
}

// codecFor returns the codec for a configured payload style
func codecFor(style string) (codec, error) {
	switch style {
	case "", "chat":
		return chatCodec, nil
	case "completion":
		return completionCodec, nil
	default:
		return codec{}, fmt.Errorf("unsupported payload style: %s", style)
	}
}

// chatCodec speaks the /api/chat message-list format
var chatCodec = codec{
	path: "/api/chat",
	build: func(model, systemPrompt string, window []models.Message, opts requestOptions) ([]byte, error) {
		messages := make([]models.Message, 0, len(window)+1)
		messages = append(messages, models.Message{Role: "system", Content: systemPrompt})
		messages = append(messages, window...)

		return json.Marshal(map[string]interface{}{
			"model":    model,
			"messages": messages,
			"stream":   false,
			"options":  opts,
		})
	},
	parse: func(body []byte) (string, error) {
		var result struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		}
		if err := json.Unmarshal(body, &result); err != nil {
			return "", fmt.Errorf("failed to parse chat response: %w", err)
		}
		return result.Message.Content, nil
	},
}

// completionCodec speaks the /api/generate single-prompt format. The prompt
// concatenates the system prompt, role-prefixed history lines and a trailing
// assistant cue.
var completionCodec = codec{
	path: "/api/generate",
	build: func(model, systemPrompt string, window []models.Message, opts requestOptions) ([]byte, error) {
		var prompt strings.Builder
		prompt.WriteString(systemPrompt)
		prompt.WriteString("\n\n")
		for _, msg := range window {
			prompt.WriteString(capitalize(msg.Role))
			prompt.WriteString(": ")
			prompt.WriteString(msg.Content)
			prompt.WriteString("\n")
		}
		prompt.WriteString("Assistant: ")

		return json.Marshal(map[string]interface{}{
			"model":   model,
			"prompt":  prompt.String(),
			"stream":  false,
			"options": opts,
		})
	},
	parse: func(body []byte) (string, error) {
		var result struct {
			Response string `json:"response"`
		}
		if err := json.Unmarshal(body, &result); err != nil {
			return "", fmt.Errorf("failed to parse completion response: %w", err)
		}
		return strings.TrimSpace(result.Response), nil
	},
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
