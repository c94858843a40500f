package domain

// ShellKind enumerates supported shells.
type ShellKind string

const (
	ShellBash ShellKind = "bash"
	ShellZsh  ShellKind = "zsh"
)

// InstallOutcome describes what the shell integration installer did.
type InstallOutcome string

const (
	// InstallOutcomeInstalled means the block was appended for the first time.
	InstallOutcomeInstalled InstallOutcome = "installed"
	// InstallOutcomeUpdated means a stale block was replaced in place.
	InstallOutcomeUpdated InstallOutcome = "updated"
	// InstallOutcomeAlreadyInstalled means the file already carried the
	// canonical block byte-for-byte; nothing was written.
	InstallOutcomeAlreadyInstalled InstallOutcome = "already-installed"
)

// ShellStatus captures the current integration state of an rc file.
type ShellStatus struct {
	Shell        ShellKind
	RCPath       string
	RCExists     bool
	BlockPresent bool
	BlockCurrent bool
}
