// Package ai implements the provider gateway over the HTTP APIs of the four
// supported providers.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/danielhostetler/baishify/internal/domain"
	"github.com/danielhostetler/baishify/internal/infrastructure/cache"
	"github.com/danielhostetler/baishify/internal/ports"
)

// adapter captures how one provider family shapes requests and responses.
// OpenAI, OpenRouter and Vercel share the chat-completions wire shape and
// differ only in headers; Anthropic uses its messages API.
type adapter struct {
	buildBody  func(cfg domain.EffectiveConfig, system, user string) ([]byte, error)
	setHeaders func(req *http.Request, cfg domain.EffectiveConfig)
	parseText  func(body []byte) (string, error)
	path       string
}

// Gateway dispatches generation calls to the configured provider. The HTTP
// client timeout bounds a single call; finer-grained cancellation flows
// through the request context.
type Gateway struct {
	httpClient *http.Client
	modelCache *cache.FileCache
	logger     ports.Logger
}

// NewGateway builds a gateway with the default client timeout.
func NewGateway(modelCache *cache.FileCache, logger ports.Logger) *Gateway {
	return &Gateway{
		httpClient: &http.Client{Timeout: domain.DefaultHTTPClientTimeout},
		modelCache: modelCache,
		logger:     logger,
	}
}

// Generate implements ports.Gateway.
func (g *Gateway) Generate(ctx context.Context, req domain.GenerationRequest) (domain.GenerationResult, error) {
	cfg := req.Config
	content, err := g.chat(ctx, cfg, commandSystemPrompt, "User request: "+req.Prompt)
	if err != nil {
		return domain.GenerationResult{}, err
	}

	output, err := parseModelOutput(content)
	if err != nil {
		return domain.GenerationResult{}, &domain.ProviderError{
			Kind:     domain.ProviderErrInvalidResponse,
			Provider: cfg.Provider,
			Err:      err,
		}
	}

	result := domain.GenerationResult{
		Command: output.Command,
		Request: req,
	}
	if req.WantExplanation {
		result.Explanation = output.Explanation
	}
	return result, nil
}

// Explain implements ports.Gateway.
func (g *Gateway) Explain(ctx context.Context, cfg domain.EffectiveConfig, command string) (string, error) {
	text, err := g.chat(ctx, cfg, explainSystemPrompt, "Command: "+command)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", &domain.ProviderError{
			Kind:     domain.ProviderErrInvalidResponse,
			Provider: cfg.Provider,
			Err:      errors.New("empty explanation"),
		}
	}
	return text, nil
}

// chat posts one conversation turn and returns the assistant text.
func (g *Gateway) chat(ctx context.Context, cfg domain.EffectiveConfig, system, user string) (string, error) {
	a := adapterFor(cfg.Provider)

	body, err := a.buildBody(cfg, system, user)
	if err != nil {
		return "", &domain.ProviderError{Kind: domain.ProviderErrInvalidResponse, Provider: cfg.Provider, Err: err}
	}

	url := cfg.BaseURL + a.path
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", &domain.ProviderError{Kind: domain.ProviderErrNetwork, Provider: cfg.Provider, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	a.setHeaders(httpReq, cfg)

	if g.logger != nil {
		g.logger.Debug("calling provider", map[string]interface{}{
			"provider": cfg.Provider.String(),
			"model":    cfg.Model,
			"url":      url,
		})
	}

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		// Context cancellation is the caller's signal, not a provider fault.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", &domain.ProviderError{Kind: domain.ProviderErrNetwork, Provider: cfg.Provider, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", statusError(cfg.Provider, resp.StatusCode, resp.Status)
	}

	var raw bytes.Buffer
	if _, err := raw.ReadFrom(resp.Body); err != nil {
		return "", &domain.ProviderError{Kind: domain.ProviderErrNetwork, Provider: cfg.Provider, Err: err}
	}

	text, err := a.parseText(raw.Bytes())
	if err != nil {
		return "", &domain.ProviderError{Kind: domain.ProviderErrInvalidResponse, Provider: cfg.Provider, Err: err}
	}
	return text, nil
}

func adapterFor(p domain.Provider) adapter {
	switch p {
	case domain.ProviderAnthropic:
		return anthropicAdapter()
	case domain.ProviderOpenRouter:
		return chatCompletionAdapter(setOpenRouterHeaders)
	case domain.ProviderVercel:
		return chatCompletionAdapter(setVercelHeaders)
	default:
		return chatCompletionAdapter(setOpenAIHeaders)
	}
}

func statusError(p domain.Provider, code int, status string) error {
	kind := domain.ProviderErrNetwork
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		kind = domain.ProviderErrAuth
	case code == http.StatusTooManyRequests:
		kind = domain.ProviderErrRateLimited
	case code >= 400 && code < 500:
		kind = domain.ProviderErrInvalidResponse
	}
	return &domain.ProviderError{Kind: kind, Provider: p, Err: fmt.Errorf("%s", status)}
}

const commandSystemPrompt = "You convert natural language intent into exactly one bash command. " +
	"Return JSON only with keys: command, explanation, safety. safety must be one of safe|caution|risky. " +
	"command must be plain bash (no backticks, no markdown, no leading $). " +
	"Keep commands concise and practical for macOS/Linux."

const explainSystemPrompt = "You explain a single bash command in two or three plain sentences: " +
	"what it does, the key flags, and anything surprising. No markdown, no preamble."

// modelsResponse is shared by every provider's model listing endpoint: a
// "data" array of objects with an "id".
type modelsResponse struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

func decodeModelIDs(body []byte) ([]string, error) {
	var parsed modelsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(parsed.Data))
	for _, item := range parsed.Data {
		if item.ID != "" {
			out = append(out, item.ID)
		}
	}
	return out, nil
}

var _ ports.Gateway = (*Gateway)(nil)
