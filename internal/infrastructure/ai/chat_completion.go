package ai

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/danielhostetler/baishify/internal/domain"
)

// chatCompletionAdapter covers the OpenAI-compatible chat-completions shape
// used by OpenAI, OpenRouter and the Vercel AI Gateway.
func chatCompletionAdapter(setHeaders func(*http.Request, domain.EffectiveConfig)) adapter {
	return adapter{
		path:       "/chat/completions",
		setHeaders: setHeaders,
		buildBody:  buildChatCompletionBody,
		parseText:  parseChatCompletionText,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

func buildChatCompletionBody(cfg domain.EffectiveConfig, system, user string) ([]byte, error) {
	return json.Marshal(chatCompletionRequest{
		Model: cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0,
		MaxTokens:   300,
	})
}

func parseChatCompletionText(body []byte) (string, error) {
	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("response contained no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

func setOpenAIHeaders(req *http.Request, cfg domain.EffectiveConfig) {
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
}

func setOpenRouterHeaders(req *http.Request, cfg domain.EffectiveConfig) {
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	// OpenRouter attributes traffic by these headers.
	req.Header.Set("HTTP-Referer", "https://github.com/danielhostetler/baishify")
	req.Header.Set("X-Title", "baishify")
}

func setVercelHeaders(req *http.Request, cfg domain.EffectiveConfig) {
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
}
