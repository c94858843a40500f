package ai

import (
	"bytes"
	"context"
	"net/http"
	"strings"

	"github.com/danielhostetler/baishify/internal/domain"
)

// ListModels implements ports.Gateway. Results are cached per provider so the
// setup flow stays snappy on repeat runs; on any failure the curated built-in
// list is returned instead of an error, since model selection is advisory.
func (g *Gateway) ListModels(ctx context.Context, cfg domain.EffectiveConfig) ([]string, error) {
	key := "models-" + cfg.Provider.String()
	if g.modelCache != nil {
		var cached []string
		if g.modelCache.Get(key, &cached) && len(cached) > 0 {
			return cached, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, domain.ModelListTimeout)
	defer cancel()

	models, err := g.fetchModels(ctx, cfg)
	if err != nil || len(models) == 0 {
		if g.logger != nil && err != nil {
			g.logger.Debug("model listing failed, using built-ins", map[string]interface{}{
				"provider": cfg.Provider.String(),
				"error":    err.Error(),
			})
		}
		return builtinModels(cfg.Provider), nil
	}

	if g.modelCache != nil {
		if err := g.modelCache.Put(key, models); err != nil && g.logger != nil {
			g.logger.Debug("model cache write failed", map[string]interface{}{"error": err.Error()})
		}
	}
	return models, nil
}

func (g *Gateway) fetchModels(ctx context.Context, cfg domain.EffectiveConfig) ([]string, error) {
	// Anthropic's base URL carries no version segment; every endpoint is
	// versioned individually.
	path := "/models"
	if cfg.Provider == domain.ProviderAnthropic {
		path = "/v1/models"
	}
	url := cfg.BaseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if cfg.Provider == domain.ProviderAnthropic {
		req.Header.Set("x-api-key", cfg.APIKey)
		req.Header.Set("anthropic-version", anthropicVersion)
	} else {
		req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, statusError(cfg.Provider, resp.StatusCode, resp.Status)
	}

	var raw bytes.Buffer
	if _, err := raw.ReadFrom(resp.Body); err != nil {
		return nil, err
	}
	ids, err := decodeModelIDs(raw.Bytes())
	if err != nil {
		return nil, err
	}
	if cfg.Provider == domain.ProviderOpenAI {
		ids = filterChatModels(ids)
	}
	return ids, nil
}

// filterChatModels drops embedding, audio and image models from OpenAI's flat
// listing so the picker only shows things that can follow instructions.
func filterChatModels(ids []string) []string {
	out := ids[:0]
	for _, id := range ids {
		switch {
		case strings.Contains(id, "embedding"),
			strings.Contains(id, "whisper"),
			strings.Contains(id, "tts"),
			strings.Contains(id, "dall-e"),
			strings.Contains(id, "audio"),
			strings.Contains(id, "image"),
			strings.Contains(id, "moderation"):
			continue
		}
		out = append(out, id)
	}
	return out
}

func builtinModels(p domain.Provider) []string {
	switch p {
	case domain.ProviderAnthropic:
		return []string{
			"claude-3-5-haiku-latest",
			"claude-sonnet-4-20250514",
			"claude-3-5-sonnet-latest",
		}
	case domain.ProviderOpenRouter:
		return []string{
			"openai/gpt-4o-mini",
			"anthropic/claude-3.5-haiku",
			"meta-llama/llama-3.1-70b-instruct",
		}
	case domain.ProviderVercel:
		return []string{
			"openai/gpt-4o-mini",
			"anthropic/claude-3-5-haiku",
			"xai/grok-3-mini",
		}
	default:
		return []string{
			"gpt-4o-mini",
			"gpt-4o",
			"gpt-4.1-mini",
		}
	}
}
