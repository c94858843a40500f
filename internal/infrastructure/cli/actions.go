package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/danielhostetler/baishify/internal/domain"
	"github.com/danielhostetler/baishify/internal/ports"
)

const actionMenu = "[enter] use  [r] regenerate  [e] explain  [c] copy  [q] quit"

// LinePrompter implements ports.ActionSource over line-oriented terminal
// input. One line is one action; unknown input reprints the menu and asks
// again, so the engine only ever sees valid actions.
type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLinePrompter constructs a prompter reading from in (normally stdin) and
// prompting on out (normally stderr).
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(in), out: out}
}

// Next implements ports.ActionSource. io.EOF means the user closed input and
// the session should be cancelled.
func (p *LinePrompter) Next() (domain.Action, error) {
	for {
		fmt.Fprintf(p.out, "%s\n> ", actionMenu)
		line, err := p.in.ReadString('\n')
		if err != nil {
			if err == io.EOF && strings.TrimSpace(line) == "" {
				return "", io.EOF
			}
			if err != io.EOF {
				return "", err
			}
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "", "y", "yes", "use":
			return domain.ActionAccept, nil
		case "r", "regen", "regenerate":
			return domain.ActionRegenerate, nil
		case "e", "explain", "why":
			return domain.ActionExplain, nil
		case "c", "copy":
			return domain.ActionCopy, nil
		case "q", "quit", "n", "no":
			return domain.ActionQuit, nil
		default:
			fmt.Fprintf(p.out, "unrecognized choice %q\n", strings.TrimSpace(line))
		}
	}
}

var _ ports.ActionSource = (*LinePrompter)(nil)
