// Package shell manages the sentinel-delimited integration block in the
// user's shell rc file.
package shell

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/danielhostetler/baishify/internal/domain"
	"github.com/danielhostetler/baishify/internal/pkg/filesystem"
	"github.com/danielhostetler/baishify/internal/ports"
)

const (
	beginMarker = "# >>> baishify integration >>>"
	endMarker   = "# <<< baishify integration <<<"
)

// Installer upserts the wrapper block. It buffers the full new file content
// in memory and writes it with a temp-file-and-rename so the rc file is never
// left half-written, even against concurrent external edits.
type Installer struct {
	logger ports.Logger
}

// NewInstaller builds an installer.
func NewInstaller(logger ports.Logger) *Installer {
	return &Installer{logger: logger}
}

// ParseShellKind maps a user-supplied shell name.
func ParseShellKind(input string) (domain.ShellKind, bool) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "bash":
		return domain.ShellBash, true
	case "zsh":
		return domain.ShellZsh, true
	default:
		return "", false
	}
}

// Detect inspects $SHELL.
func Detect() (domain.ShellKind, bool) {
	return ParseShellKind(filepath.Base(os.Getenv("SHELL")))
}

// DefaultRCPath returns the conventional rc file for the shell.
func DefaultRCPath(kind domain.ShellKind) string {
	home := filesystem.UserHomeDir()
	switch kind {
	case domain.ShellZsh:
		return filepath.Join(home, ".zshrc")
	default:
		return filepath.Join(home, ".bashrc")
	}
}

// Install upserts the canonical wrapper block into rcPath. Idempotent:
// repeated runs converge to the same file content, the block is never
// duplicated, and content outside the markers is preserved byte-for-byte.
func (i *Installer) Install(kind domain.ShellKind, rcPath string) (domain.InstallOutcome, error) {
	block := WrapperBlock(kind)

	existing, err := os.ReadFile(rcPath)
	if err != nil && !os.IsNotExist(err) {
		return "", &domain.InstallError{Path: rcPath, Err: err}
	}

	newContent, outcome := upsertBlock(string(existing), block)
	if outcome == domain.InstallOutcomeAlreadyInstalled {
		return outcome, nil
	}

	if err := writeAtomic(rcPath, []byte(newContent)); err != nil {
		return "", &domain.InstallError{Path: rcPath, Err: err}
	}
	if i.logger != nil {
		i.logger.Info("shell integration written", map[string]interface{}{
			"shell":   string(kind),
			"rc":      rcPath,
			"outcome": string(outcome),
		})
	}
	return outcome, nil
}

// Status reports whether the rc file carries the block and whether it is
// current.
func (i *Installer) Status(kind domain.ShellKind, rcPath string) domain.ShellStatus {
	status := domain.ShellStatus{Shell: kind, RCPath: rcPath}
	data, err := os.ReadFile(rcPath)
	if err != nil {
		return status
	}
	status.RCExists = true
	content := string(data)
	start := strings.Index(content, beginMarker)
	if start < 0 {
		return status
	}
	status.BlockPresent = true
	status.BlockCurrent = strings.Contains(content, WrapperBlock(kind))
	return status
}

// upsertBlock computes the new file content immutably. Outcomes:
// existing canonical block → AlreadyInstalled, stale block → Updated,
// no block → Installed (appended, separated by a blank line when the file
// is non-empty).
func upsertBlock(existing, block string) (string, domain.InstallOutcome) {
	start := strings.Index(existing, beginMarker)
	if start >= 0 {
		endRel := strings.Index(existing[start:], endMarker)
		if endRel >= 0 {
			end := start + endRel + len(endMarker)
			// Consume one trailing newline so replacement does not grow the file.
			if end < len(existing) && existing[end] == '\n' {
				end++
			}
			current := existing[start:end]
			if current == block {
				return existing, domain.InstallOutcomeAlreadyInstalled
			}
			return existing[:start] + block + existing[end:], domain.InstallOutcomeUpdated
		}
		// Orphaned begin marker without end: treat everything from the marker
		// on as the stale block rather than stacking a second one.
		return existing[:start] + block, domain.InstallOutcomeUpdated
	}

	out := existing
	if out != "" && !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	if out != "" {
		out += "\n"
	}
	return out + block, domain.InstallOutcomeInstalled
}

// writeAtomic writes content to a temp file in the target directory and
// renames it over the destination, preserving an existing file's mode.
func writeAtomic(path string, content []byte) error {
	mode := os.FileMode(domain.RCFilePermissions)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".baishify-rc-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

var _ ports.ShellIntegrator = (*Installer)(nil)
