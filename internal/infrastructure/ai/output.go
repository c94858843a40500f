package ai

import (
	"encoding/json"
	"errors"
	"strings"
)

// modelOutput is the structured contract the system prompt asks the model to
// return. Safety is accepted but discarded upstream: the deterministic
// classifier is the sole authority on the label shown to the user.
type modelOutput struct {
	Command     string `json:"command"`
	Explanation string `json:"explanation"`
	Safety      string `json:"safety"`
}

// parseModelOutput extracts the command payload from raw model text. Models
// occasionally wrap JSON in code fences or prepend prose; strip those before
// falling back to treating the first non-empty line as the command itself.
func parseModelOutput(content string) (modelOutput, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return modelOutput{}, errors.New("empty model response")
	}

	candidate := stripCodeFence(trimmed)
	if start := strings.Index(candidate, "{"); start >= 0 {
		if end := strings.LastIndex(candidate, "}"); end > start {
			var out modelOutput
			if err := json.Unmarshal([]byte(candidate[start:end+1]), &out); err == nil {
				out.Command = strings.TrimSpace(out.Command)
				if out.Command == "" {
					return modelOutput{}, errors.New("model returned empty command")
				}
				return out, nil
			}
		}
	}

	// Fallback: first non-empty line, shorn of shell-prompt decoration.
	for _, line := range strings.Split(candidate, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "$ ")
		line = strings.Trim(line, "`")
		if line != "" {
			return modelOutput{Command: line}, nil
		}
	}
	return modelOutput{}, errors.New("no command in model response")
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	body := s
	if idx := strings.Index(body, "\n"); idx >= 0 {
		body = body[idx+1:]
	}
	if idx := strings.LastIndex(body, "```"); idx >= 0 {
		body = body[:idx]
	}
	return strings.TrimSpace(body)
}
