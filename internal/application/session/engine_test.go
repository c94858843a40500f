package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/danielhostetler/baishify/internal/domain"
	"github.com/danielhostetler/baishify/internal/pkg/logger"
	"github.com/danielhostetler/baishify/internal/ports"
)

func testConfig() domain.EffectiveConfig {
	return domain.EffectiveConfig{
		Provider: domain.ProviderOpenAI,
		Model:    "gpt-4o-mini",
		BaseURL:  "https://api.openai.com/v1",
		APIKey:   "sk-test",
	}
}

func newEngine(gw *stubGateway, actions ports.ActionSource, out io.Writer, interactive bool) *Engine {
	return &Engine{
		Gateway:     gw,
		Classifier:  stubClassifier{},
		Clipboard:   &stubClipboard{enabled: true},
		Actions:     actions,
		Progress:    nopProgress{},
		Renderer:    &recordingRenderer{},
		Logger:      logger.NewStd(false),
		Output:      out,
		Interactive: interactive,
	}
}

func TestRunScriptModeEmitsJSON(t *testing.T) {
	gw := &stubGateway{commands: []string{"ls -la"}}
	var out bytes.Buffer
	eng := newEngine(gw, nil, &out, false)

	cfg := testConfig()
	cfg.JSON = true

	outcome, err := eng.Run(context.Background(), cfg, "list files")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if outcome != domain.OutcomeDone {
		t.Fatalf("outcome = %v, want OutcomeDone", outcome)
	}
	if gw.generateCalls != 1 {
		t.Errorf("generate calls = %d, want 1", gw.generateCalls)
	}

	var payload struct {
		Provider string `json:"provider"`
		Model    string `json:"model"`
		Command  string `json:"command"`
		Safety   string `json:"safety"`
	}
	if err := json.Unmarshal(out.Bytes(), &payload); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	if payload.Command != "ls -la" {
		t.Errorf("command = %q, want %q", payload.Command, "ls -la")
	}
	if payload.Provider != "openai" || payload.Model != "gpt-4o-mini" {
		t.Errorf("provider/model = %q/%q", payload.Provider, payload.Model)
	}
	if payload.Safety != "safe" {
		t.Errorf("safety = %q, want safe", payload.Safety)
	}
}

func TestRunScriptModePlainEmitsCommandOnly(t *testing.T) {
	gw := &stubGateway{commands: []string{"df -h"}}
	var out bytes.Buffer
	eng := newEngine(gw, nil, &out, false)

	if _, err := eng.Run(context.Background(), testConfig(), "disk usage"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := out.String(); got != "df -h\n" {
		t.Errorf("output = %q, want %q", got, "df -h\n")
	}
}

func TestRunInteractiveRegenerateThenAccept(t *testing.T) {
	gw := &stubGateway{commands: []string{"ls", "ls -l", "ls -la"}}
	actions := &scriptedActions{actions: []domain.Action{
		domain.ActionRegenerate,
		domain.ActionRegenerate,
		domain.ActionAccept,
	}}
	var out bytes.Buffer
	eng := newEngine(gw, actions, &out, true)

	outcome, err := eng.Run(context.Background(), testConfig(), "list files")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if outcome != domain.OutcomeDone {
		t.Fatalf("outcome = %v, want OutcomeDone", outcome)
	}
	if gw.generateCalls != 3 {
		t.Errorf("generate calls = %d, want 3", gw.generateCalls)
	}
	// Only the accepted (third) command reaches stdout.
	if got := out.String(); got != "ls -la\n" {
		t.Errorf("output = %q, want %q", got, "ls -la\n")
	}
}

func TestRunInteractiveQuit(t *testing.T) {
	gw := &stubGateway{commands: []string{"rm -rf /tmp/x"}}
	actions := &scriptedActions{actions: []domain.Action{domain.ActionQuit}}
	var out bytes.Buffer
	eng := newEngine(gw, actions, &out, true)

	outcome, err := eng.Run(context.Background(), testConfig(), "clean up")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if outcome != domain.OutcomeCancelled {
		t.Fatalf("outcome = %v, want OutcomeCancelled", outcome)
	}
	if out.Len() != 0 {
		t.Errorf("expected empty output on quit, got %q", out.String())
	}
}

func TestRunClosedInputCancels(t *testing.T) {
	gw := &stubGateway{commands: []string{"ls"}}
	actions := &scriptedActions{} // exhausted source returns io.EOF
	var out bytes.Buffer
	eng := newEngine(gw, actions, &out, true)

	outcome, err := eng.Run(context.Background(), testConfig(), "list files")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if outcome != domain.OutcomeCancelled {
		t.Fatalf("outcome = %v, want OutcomeCancelled", outcome)
	}
	if out.Len() != 0 {
		t.Errorf("expected empty output, got %q", out.String())
	}
}

func TestRunContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gw := &stubGateway{commands: []string{"ls"}, generateErr: context.Canceled}
	var out bytes.Buffer
	eng := newEngine(gw, nil, &out, false)

	outcome, err := eng.Run(ctx, testConfig(), "list files")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if outcome != domain.OutcomeCancelled {
		t.Fatalf("outcome = %v, want OutcomeCancelled", outcome)
	}
	if out.Len() != 0 {
		t.Errorf("expected no output on cancellation, got %q", out.String())
	}
}

func TestRunInterruptAtActionPromptCancels(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gw := &stubGateway{commands: []string{"ls"}}
	var out bytes.Buffer
	eng := newEngine(gw, &cancellingActions{cancel: cancel}, &out, true)

	outcome, err := eng.Run(ctx, testConfig(), "list files")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if outcome != domain.OutcomeCancelled {
		t.Fatalf("outcome = %v, want OutcomeCancelled", outcome)
	}
	if out.Len() != 0 {
		t.Errorf("expected no output on cancellation, got %q", out.String())
	}
}

func TestRunProviderFailure(t *testing.T) {
	provErr := &domain.ProviderError{Kind: domain.ProviderErrAuth, Provider: domain.ProviderOpenAI, Err: errors.New("401")}
	gw := &stubGateway{generateErr: provErr}
	var out bytes.Buffer
	eng := newEngine(gw, nil, &out, false)

	outcome, err := eng.Run(context.Background(), testConfig(), "list files")
	if outcome != domain.OutcomeFailed {
		t.Fatalf("outcome = %v, want OutcomeFailed", outcome)
	}
	var pe *domain.ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("error = %v, want *domain.ProviderError", err)
	}
	if domain.ExitCodeFor(err) != domain.ExitProvider {
		t.Errorf("exit code = %d, want %d", domain.ExitCodeFor(err), domain.ExitProvider)
	}
}

func TestRunEmptyPrompt(t *testing.T) {
	var out bytes.Buffer
	eng := newEngine(&stubGateway{}, nil, &out, false)

	outcome, err := eng.Run(context.Background(), testConfig(), "")
	if outcome != domain.OutcomeFailed {
		t.Fatalf("outcome = %v, want OutcomeFailed", outcome)
	}
	if !errors.Is(err, domain.ErrEmptyPrompt) {
		t.Errorf("error = %v, want ErrEmptyPrompt", err)
	}
}

func TestRunExplainFetchedOnceAndCached(t *testing.T) {
	gw := &stubGateway{commands: []string{"tar -czf out.tgz ."}, explanation: "archives the directory"}
	actions := &scriptedActions{actions: []domain.Action{
		domain.ActionExplain,
		domain.ActionExplain,
		domain.ActionAccept,
	}}
	var out bytes.Buffer
	eng := newEngine(gw, actions, &out, true)
	renderer := eng.Renderer.(*recordingRenderer)

	if _, err := eng.Run(context.Background(), testConfig(), "archive this dir"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if gw.explainCalls != 1 {
		t.Errorf("explain calls = %d, want 1 (second request replays cached text)", gw.explainCalls)
	}
	if len(renderer.explanations) != 2 {
		t.Errorf("explanations rendered = %d, want 2", len(renderer.explanations))
	}
}

func TestRunExplainFailureIsNonFatal(t *testing.T) {
	gw := &stubGateway{
		commands:   []string{"ls"},
		explainErr: &domain.ProviderError{Kind: domain.ProviderErrNetwork, Provider: domain.ProviderOpenAI},
	}
	actions := &scriptedActions{actions: []domain.Action{domain.ActionExplain, domain.ActionAccept}}
	var out bytes.Buffer
	eng := newEngine(gw, actions, &out, true)
	renderer := eng.Renderer.(*recordingRenderer)

	outcome, err := eng.Run(context.Background(), testConfig(), "list files")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if outcome != domain.OutcomeDone {
		t.Fatalf("outcome = %v, want OutcomeDone", outcome)
	}
	if len(renderer.warnings) == 0 {
		t.Error("expected a warning for the failed explanation")
	}
	if got := out.String(); got != "ls\n" {
		t.Errorf("output = %q, want %q", got, "ls\n")
	}
}

func TestRunCopyFailureIsNonFatal(t *testing.T) {
	gw := &stubGateway{commands: []string{"ls"}}
	actions := &scriptedActions{actions: []domain.Action{domain.ActionCopy, domain.ActionAccept}}
	var out bytes.Buffer
	eng := newEngine(gw, actions, &out, true)
	eng.Clipboard = &stubClipboard{enabled: true, err: errors.New("no display")}
	renderer := eng.Renderer.(*recordingRenderer)

	outcome, err := eng.Run(context.Background(), testConfig(), "list files")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if outcome != domain.OutcomeDone {
		t.Fatalf("outcome = %v, want OutcomeDone", outcome)
	}
	if len(renderer.warnings) == 0 {
		t.Error("expected a warning for the failed copy")
	}
}

func TestRunRecordsHistory(t *testing.T) {
	gw := &stubGateway{commands: []string{"ls", "ls -l"}}
	actions := &scriptedActions{actions: []domain.Action{domain.ActionRegenerate, domain.ActionAccept}}
	history := &stubHistory{}
	var out bytes.Buffer
	eng := newEngine(gw, actions, &out, true)
	eng.History = history

	if _, err := eng.Run(context.Background(), testConfig(), "list files"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(history.saved) != 2 {
		t.Fatalf("saved %d records, want 2", len(history.saved))
	}
	if history.saved[0].Accepted {
		t.Error("first (regenerated) record should not be accepted")
	}
	if !history.saved[1].Accepted {
		t.Error("second (accepted) record should be accepted")
	}
	if history.saved[1].Attempt != 2 {
		t.Errorf("accepted attempt = %d, want 2", history.saved[1].Attempt)
	}
}

func TestRunHistoryFailureIsNonFatal(t *testing.T) {
	gw := &stubGateway{commands: []string{"ls"}}
	var out bytes.Buffer
	eng := newEngine(gw, nil, &out, false)
	eng.History = &stubHistory{err: errors.New("disk full")}

	outcome, err := eng.Run(context.Background(), testConfig(), "list files")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if outcome != domain.OutcomeDone {
		t.Fatalf("outcome = %v, want OutcomeDone", outcome)
	}
}

// --- stubs ---

type stubGateway struct {
	commands    []string
	explanation string
	generateErr error
	explainErr  error

	generateCalls int
	explainCalls  int
}

func (s *stubGateway) Generate(_ context.Context, req domain.GenerationRequest) (domain.GenerationResult, error) {
	s.generateCalls++
	if s.generateErr != nil {
		return domain.GenerationResult{}, s.generateErr
	}
	idx := s.generateCalls - 1
	if idx >= len(s.commands) {
		idx = len(s.commands) - 1
	}
	return domain.GenerationResult{Command: s.commands[idx], Request: req}, nil
}

func (s *stubGateway) Explain(context.Context, domain.EffectiveConfig, string) (string, error) {
	s.explainCalls++
	if s.explainErr != nil {
		return "", s.explainErr
	}
	return s.explanation, nil
}

func (s *stubGateway) ListModels(context.Context, domain.EffectiveConfig) ([]string, error) {
	return nil, nil
}

type stubClassifier struct{}

func (stubClassifier) Assess(command string) domain.SafetyAssessment {
	if strings.Contains(command, "rm -rf") {
		return domain.SafetyAssessment{Label: domain.SafetyRisky, Reasons: []string{"recursive forced removal"}}
	}
	return domain.SafetyAssessment{Label: domain.SafetySafe}
}

type stubClipboard struct {
	enabled bool
	err     error
	copied  []string
}

func (s *stubClipboard) Enabled() bool { return s.enabled }
func (s *stubClipboard) Copy(text string) error {
	if s.err != nil {
		return s.err
	}
	s.copied = append(s.copied, text)
	return nil
}

// scriptedActions replays a fixed action sequence, then io.EOF.
type scriptedActions struct {
	actions []domain.Action
	next    int
}

func (s *scriptedActions) Next() (domain.Action, error) {
	if s.next >= len(s.actions) {
		return "", io.EOF
	}
	a := s.actions[s.next]
	s.next++
	return a, nil
}

// cancellingActions simulates an interrupt arriving while the prompt waits:
// the first action cancels the context, so the loop must end the session
// before asking again.
type cancellingActions struct {
	cancel context.CancelFunc
}

func (c *cancellingActions) Next() (domain.Action, error) {
	c.cancel()
	return domain.ActionCopy, nil
}

type nopProgress struct{}

func (nopProgress) Start([]string) {}
func (nopProgress) Stop()          {}

type recordingRenderer struct {
	results      []domain.GenerationResult
	explanations []string
	notices      []string
	warnings     []string
}

func (r *recordingRenderer) Result(result domain.GenerationResult) { r.results = append(r.results, result) }
func (r *recordingRenderer) Explanation(text string)               { r.explanations = append(r.explanations, text) }
func (r *recordingRenderer) Notice(text string)                    { r.notices = append(r.notices, text) }
func (r *recordingRenderer) Warning(text string)                   { r.warnings = append(r.warnings, text) }

type stubHistory struct {
	saved []domain.HistoryRecord
	err   error
}

func (s *stubHistory) Save(rec domain.HistoryRecord) error {
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, rec)
	return nil
}
func (s *stubHistory) Recent(int) ([]domain.HistoryRecord, error) { return s.saved, nil }
func (s *stubHistory) Close() error                               { return nil }
