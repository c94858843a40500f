package cli

import (
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"github.com/danielhostetler/baishify/internal/ports"
)

// phaseRotation is how long each phase message stays up before the next one
// cycles in.
const phaseRotation = 850 * time.Millisecond

// SpinnerProgress animates provider calls on stderr, rotating through the
// phase messages the engine hands it. With fun disabled the playful copy is
// replaced by a single static message.
type SpinnerProgress struct {
	writer io.Writer
	noFun  bool

	mu       sync.Mutex
	spin     *spinner.Spinner
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewSpinnerProgress builds a progress indicator writing to w (normally
// stderr).
func NewSpinnerProgress(w io.Writer, noFun bool) *SpinnerProgress {
	return &SpinnerProgress{writer: w, noFun: noFun}
}

// Start implements ports.Progress.
func (p *SpinnerProgress) Start(phases []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.spin != nil {
		return
	}

	if p.noFun || len(phases) == 0 {
		phases = []string{"working"}
	}

	s := spinner.New(spinner.CharSets[14], 80*time.Millisecond, spinner.WithWriter(p.writer))
	s.Suffix = " " + phases[0] + "…"
	s.Start()
	p.spin = s

	if len(phases) > 1 {
		p.stopChan = make(chan struct{})
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			ticker := time.NewTicker(phaseRotation)
			defer ticker.Stop()
			idx := 0
			for {
				select {
				case <-p.stopChan:
					return
				case <-ticker.C:
					idx = (idx + 1) % len(phases)
					s.Suffix = " " + phases[idx] + "…"
				}
			}
		}()
	}
}

// Stop implements ports.Progress, clearing the spinner line.
func (p *SpinnerProgress) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.spin == nil {
		return
	}
	if p.stopChan != nil {
		close(p.stopChan)
		p.wg.Wait()
		p.stopChan = nil
	}
	p.spin.Stop()
	p.spin = nil
}

// NopProgress is used in script mode, where no terminal chrome is allowed.
type NopProgress struct{}

func (NopProgress) Start([]string) {}
func (NopProgress) Stop()          {}

var _ ports.Progress = (*SpinnerProgress)(nil)
var _ ports.Progress = NopProgress{}
