package domain

// Phase enumerates the session state machine. Transitions:
//
//	Intake → Generating → Presenting → {Done, Cancelled, Failed}
//
// with Presenting → Generating on the regenerate action.
type Phase string

const (
	PhaseIntake     Phase = "intake"
	PhaseGenerating Phase = "generating"
	PhasePresenting Phase = "presenting"
	PhaseDone       Phase = "done"
	PhaseCancelled  Phase = "cancelled"
	PhaseFailed     Phase = "failed"
)

// Terminal reports whether the phase ends the session.
func (p Phase) Terminal() bool {
	switch p {
	case PhaseDone, PhaseCancelled, PhaseFailed:
		return true
	default:
		return false
	}
}

// Action is a user decision taken while Presenting.
type Action string

const (
	ActionAccept     Action = "accept"
	ActionRegenerate Action = "regenerate"
	ActionExplain    Action = "explain"
	ActionCopy       Action = "copy"
	ActionQuit       Action = "quit"
)

// SessionState is the live state of one CLI run, owned exclusively by the
// session engine and destroyed at process exit.
type SessionState struct {
	ID            string
	Phase         Phase
	Result        *GenerationResult
	Regenerations int
	PendingAction Action
}

// Outcome is the terminal disposition of a session.
type Outcome int

const (
	OutcomeDone Outcome = iota
	OutcomeCancelled
	OutcomeFailed
)

// Process exit codes. Scripts can branch on these without parsing output.
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitCancelled = 2
	ExitProvider  = 3
	ExitConfig    = 4
)
