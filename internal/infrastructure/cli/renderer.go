package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/danielhostetler/baishify/internal/domain"
	"github.com/danielhostetler/baishify/internal/ports"
)

// Renderer draws interactive chrome on stderr so stdout stays reserved for
// the accepted command.
type Renderer struct {
	out   io.Writer
	color bool

	commandStyle lipgloss.Style
	labelStyle   lipgloss.Style
	safeStyle    lipgloss.Style
	cautionStyle lipgloss.Style
	riskyStyle   lipgloss.Style
	dimStyle     lipgloss.Style
	warnStyle    lipgloss.Style
}

// NewRenderer builds a renderer for w. Color is dropped when color is false
// (non-TTY output or NO_COLOR set).
func NewRenderer(w io.Writer, color bool) *Renderer {
	if _, noColor := os.LookupEnv("NO_COLOR"); noColor {
		color = false
	}
	r := &Renderer{out: w, color: color}
	if color {
		r.commandStyle = lipgloss.NewStyle().Bold(true)
		r.labelStyle = lipgloss.NewStyle().Faint(true)
		r.safeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
		r.cautionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
		r.riskyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
		r.dimStyle = lipgloss.NewStyle().Faint(true)
		r.warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	}
	return r
}

// Result implements ports.Renderer.
func (r *Renderer) Result(result domain.GenerationResult) {
	fmt.Fprintln(r.out)
	fmt.Fprintf(r.out, "  %s\n", r.commandStyle.Render(result.Command))
	fmt.Fprintf(r.out, "  %s %s\n", r.labelStyle.Render("safety:"), r.safetyBadge(result.Safety.Label))
	if result.Safety.Label != domain.SafetySafe {
		for _, reason := range result.Safety.Reasons {
			fmt.Fprintf(r.out, "  %s\n", r.dimStyle.Render("- "+reason))
		}
	}
	if result.Explanation != "" {
		fmt.Fprintln(r.out)
		r.Explanation(result.Explanation)
	}
	fmt.Fprintln(r.out)
}

// Explanation implements ports.Renderer.
func (r *Renderer) Explanation(text string) {
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		fmt.Fprintf(r.out, "  %s\n", r.dimStyle.Render(line))
	}
}

// Notice implements ports.Renderer.
func (r *Renderer) Notice(text string) {
	fmt.Fprintf(r.out, "%s\n", r.dimStyle.Render(text))
}

// Warning implements ports.Renderer.
func (r *Renderer) Warning(text string) {
	fmt.Fprintf(r.out, "%s\n", r.warnStyle.Render("warning: "+text))
}

func (r *Renderer) safetyBadge(label domain.SafetyLabel) string {
	switch label {
	case domain.SafetyRisky:
		return r.riskyStyle.Render("risky")
	case domain.SafetyCaution:
		return r.cautionStyle.Render("caution")
	default:
		return r.safeStyle.Render("safe")
	}
}

var _ ports.Renderer = (*Renderer)(nil)
