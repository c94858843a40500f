package domain

// GenerationRequest is one attempt to turn a prompt into a command. A fresh
// request is created per attempt (initial or regenerate) and never mutated.
type GenerationRequest struct {
	SessionID       string
	Prompt          string
	WantExplanation bool
	Config          EffectiveConfig

	// Attempt is 1 for the initial generation and counts up per regenerate.
	Attempt int
}

// GenerationResult is the outcome of one completed provider call. Regenerate
// supersedes the result with a new value; it is never mutated in place, with
// the single exception of caching a lazily fetched explanation.
type GenerationResult struct {
	Command     string
	Explanation string
	Safety      SafetyAssessment
	Request     GenerationRequest
}
