package root

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"

	"github.com/mule-tools/mmc-deploy/common/printer"
	teaspinner "github.com/mule-tools/mmc-deploy/tea/component/spinner"
)

// stepReporter shows deployment progress. On a terminal the running step sits
// next to a spinner, anywhere else each step is printed as its own line.
type stepReporter struct {
	interactive bool
	output      io.Writer
	cancel      func()

	program *tea.Program
	exited  atomic.Bool
	wg      sync.WaitGroup
}

func newStepReporter(output io.Writer, cancel func()) *stepReporter {
	return &stepReporter{
		interactive: isTerminal(output),
		output:      output,
		cancel:      cancel,
	}
}

// Step is a deploy.ProgressFunc.
func (r *stepReporter) Step(op string, step, total int) {
	if !r.interactive {
		printer.Stepf(step, total, "%s", capitalize(op))
		return
	}

	text := fmt.Sprintf("[%d/%d] %s", step, total, capitalize(op))
	switch {
	case r.program == nil:
		r.start(text)
	case r.exited.Load():
		printer.Stepf(step, total, "%s", capitalize(op))
	default:
		r.program.Send(teaspinner.LogMsg(text))
	}
}

// Done stops the spinner, if one was started, and waits for it to exit.
func (r *stepReporter) Done() {
	if r.program == nil {
		return
	}
	if !r.exited.Load() {
		r.program.Send(teaspinner.StopMsg{})
	}
	r.wg.Wait()
}

func (r *stepReporter) start(text string) {
	r.program = tea.NewProgram(teaspinner.New(text, r.cancel), tea.WithOutput(r.output))

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if _, err := r.program.Run(); err != nil {
			log.Debug().Err(err).Msg("failed to run spinner")
			// If spinner doesn't start, fallback to simple print.
			printer.Infoln(text)
		}
		r.exited.Store(true)
	}()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
