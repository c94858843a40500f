// Package session drives a prompt through generation to an accepted command.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/danielhostetler/baishify/internal/domain"
	"github.com/danielhostetler/baishify/internal/ports"
)

// generationPhases feed the progress indicator while a provider call is in
// flight. The indicator downgrades them to a single static message when fun
// is disabled.
var generationPhases = []string{
	"reading your mind",
	"drafting a one-liner",
	"double-checking the flags",
}

// Engine runs the intake → generating → presenting loop for one session.
// Output receives only the accepted command (or the script-mode payload);
// all chrome goes through Renderer.
type Engine struct {
	Gateway    ports.Gateway
	Classifier ports.Classifier
	Clipboard  ports.Clipboard
	Actions    ports.ActionSource
	Progress   ports.Progress
	Renderer   ports.Renderer
	History    ports.HistoryRepository
	Logger     ports.Logger

	Output      io.Writer
	Interactive bool
}

// scriptPayload is the JSON contract for --json output.
type scriptPayload struct {
	Provider    string `json:"provider"`
	Model       string `json:"model"`
	Command     string `json:"command"`
	Explanation string `json:"explanation,omitempty"`
	Safety      string `json:"safety"`
}

// Run processes one prompt to a terminal outcome. A context cancellation at
// any point yields OutcomeCancelled with nothing written to Output.
func (e *Engine) Run(ctx context.Context, cfg domain.EffectiveConfig, prompt string) (domain.Outcome, error) {
	if e.Gateway == nil || e.Classifier == nil || e.Output == nil || e.Logger == nil {
		return domain.OutcomeFailed, errors.New("session.Engine dependencies not satisfied")
	}
	if e.Interactive && (e.Actions == nil || e.Renderer == nil || e.Progress == nil) {
		return domain.OutcomeFailed, errors.New("session.Engine interactive dependencies not satisfied")
	}
	if prompt == "" {
		return domain.OutcomeFailed, domain.ErrEmptyPrompt
	}

	state := domain.SessionState{ID: uuid.NewString(), Phase: domain.PhaseIntake}
	e.Logger.Debug("session started", map[string]interface{}{
		"session":  state.ID,
		"provider": cfg.Provider.String(),
		"model":    cfg.Model,
	})

	state.Phase = domain.PhaseGenerating
	attempt := 1
	for {
		result, err := e.generate(ctx, cfg, prompt, state.ID, attempt)
		if err != nil {
			if cancelled(ctx, err) {
				state.Phase = domain.PhaseCancelled
				return domain.OutcomeCancelled, nil
			}
			state.Phase = domain.PhaseFailed
			return domain.OutcomeFailed, err
		}
		result.Safety = e.Classifier.Assess(result.Command)
		state.Result = &result
		state.Phase = domain.PhasePresenting

		if !e.Interactive {
			e.record(result, true)
			if err := e.emitScript(cfg, result); err != nil {
				state.Phase = domain.PhaseFailed
				return domain.OutcomeFailed, err
			}
			state.Phase = domain.PhaseDone
			return domain.OutcomeDone, nil
		}

		outcome, regenerate, err := e.present(ctx, cfg, &state)
		if err != nil {
			state.Phase = domain.PhaseFailed
			return domain.OutcomeFailed, err
		}
		if regenerate {
			state.Regenerations++
			state.Phase = domain.PhaseGenerating
			attempt++
			continue
		}
		return outcome, nil
	}
}

func (e *Engine) generate(ctx context.Context, cfg domain.EffectiveConfig, prompt, sessionID string, attempt int) (domain.GenerationResult, error) {
	if e.Interactive {
		e.Progress.Start(generationPhases)
		defer e.Progress.Stop()
	}
	return e.Gateway.Generate(ctx, domain.GenerationRequest{
		SessionID:       sessionID,
		Prompt:          prompt,
		WantExplanation: cfg.Explain,
		Config:          cfg,
		Attempt:         attempt,
	})
}

// present shows the current result and handles user actions until the session
// either ends or asks for regeneration.
func (e *Engine) present(ctx context.Context, cfg domain.EffectiveConfig, state *domain.SessionState) (domain.Outcome, bool, error) {
	result := state.Result
	e.Renderer.Result(*result)

	for {
		if ctx.Err() != nil {
			e.record(*result, false)
			state.Phase = domain.PhaseCancelled
			return domain.OutcomeCancelled, false, nil
		}

		action, err := e.Actions.Next()
		if err != nil {
			// Closed input ends the session the same way an explicit quit does.
			e.record(*result, false)
			state.Phase = domain.PhaseCancelled
			return domain.OutcomeCancelled, false, nil
		}

		switch action {
		case domain.ActionAccept:
			e.record(*result, true)
			if _, err := fmt.Fprintln(e.Output, result.Command); err != nil {
				return domain.OutcomeFailed, false, fmt.Errorf("write command: %w", err)
			}
			state.Phase = domain.PhaseDone
			return domain.OutcomeDone, false, nil

		case domain.ActionRegenerate:
			e.record(*result, false)
			return domain.OutcomeDone, true, nil // outcome ignored when regenerating

		case domain.ActionQuit:
			e.record(*result, false)
			state.Phase = domain.PhaseCancelled
			return domain.OutcomeCancelled, false, nil

		case domain.ActionExplain:
			e.explain(ctx, cfg, result)

		case domain.ActionCopy:
			e.copy(result.Command)
		}
	}
}

// explain fetches the explanation on first request and replays the cached
// text afterwards. Failure is a warning, never the end of the session.
func (e *Engine) explain(ctx context.Context, cfg domain.EffectiveConfig, result *domain.GenerationResult) {
	if result.Explanation == "" {
		e.Progress.Start([]string{"asking for an explanation"})
		text, err := e.Gateway.Explain(ctx, cfg, result.Command)
		e.Progress.Stop()
		if err != nil {
			e.Logger.Warn("explain failed", map[string]interface{}{"error": err.Error()})
			e.Renderer.Warning("could not fetch an explanation: " + err.Error())
			return
		}
		result.Explanation = text
	}
	e.Renderer.Explanation(result.Explanation)
}

func (e *Engine) copy(command string) {
	if e.Clipboard == nil || !e.Clipboard.Enabled() {
		e.Renderer.Warning("clipboard not available on this system")
		return
	}
	if err := e.Clipboard.Copy(command); err != nil {
		e.Logger.Warn("clipboard copy failed", map[string]interface{}{"error": err.Error()})
		e.Renderer.Warning("copy failed: " + err.Error())
		return
	}
	e.Renderer.Notice("copied to clipboard")
}

// emitScript writes the one-shot payload for non-interactive runs.
func (e *Engine) emitScript(cfg domain.EffectiveConfig, result domain.GenerationResult) error {
	if cfg.JSON {
		payload := scriptPayload{
			Provider:    cfg.Provider.String(),
			Model:       cfg.Model,
			Command:     result.Command,
			Explanation: result.Explanation,
			Safety:      string(result.Safety.Label),
		}
		enc := json.NewEncoder(e.Output)
		return enc.Encode(payload)
	}
	if _, err := fmt.Fprintln(e.Output, result.Command); err != nil {
		return err
	}
	if result.Explanation != "" && e.Renderer != nil {
		e.Renderer.Explanation(result.Explanation)
	}
	return nil
}

// record persists a generation outcome, best-effort.
func (e *Engine) record(result domain.GenerationResult, accepted bool) {
	if e.History == nil {
		return
	}
	rec := domain.HistoryRecord{
		SessionID: result.Request.SessionID,
		Provider:  result.Request.Config.Provider.String(),
		Model:     result.Request.Config.Model,
		Prompt:    result.Request.Prompt,
		Command:   result.Command,
		Safety:    result.Safety.Label,
		Accepted:  accepted,
		Attempt:   result.Request.Attempt,
	}
	if err := e.History.Save(rec); err != nil {
		e.Logger.Debug("history save failed", map[string]interface{}{"error": err.Error()})
	}
}

func cancelled(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
