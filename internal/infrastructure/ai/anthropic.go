package ai

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/danielhostetler/baishify/internal/domain"
)

const anthropicVersion = "2023-06-01"

// anthropicAdapter speaks the Anthropic messages API. The system prompt rides
// in a top-level field rather than a message.
func anthropicAdapter() adapter {
	return adapter{
		path: "/v1/messages",
		setHeaders: func(req *http.Request, cfg domain.EffectiveConfig) {
			req.Header.Set("x-api-key", cfg.APIKey)
			req.Header.Set("anthropic-version", anthropicVersion)
		},
		buildBody: buildAnthropicBody,
		parseText: parseAnthropicText,
	}
}

type anthropicRequest struct {
	Model       string        `json:"model"`
	System      string        `json:"system"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

func buildAnthropicBody(cfg domain.EffectiveConfig, system, user string) ([]byte, error) {
	return json.Marshal(anthropicRequest{
		Model:       cfg.Model,
		System:      system,
		Messages:    []chatMessage{{Role: "user", Content: user}},
		MaxTokens:   300,
		Temperature: 0,
	})
}

func parseAnthropicText(body []byte) (string, error) {
	var parsed struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("response contained no text blocks")
	}
	return sb.String(), nil
}
