package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/cardimposer/pkg/pipeline"
)

// Progress bar styles
var (
	barFilledStyle = lipgloss.NewStyle().Foreground(colorCyan)
	barEmptyStyle  = lipgloss.NewStyle().Foreground(colorDim)
	stageStyle     = lipgloss.NewStyle().Foreground(colorWhite).Bold(true)
)

const (
	defaultBarWidth = 40
	minBarWidth     = 10
)

// =============================================================================
// ProgressModel - Interactive run progress
// =============================================================================

// progressMsg carries one pipeline event into the model.
type progressMsg pipeline.Event

// doneMsg ends the run.
type doneMsg struct {
	result *pipeline.Result
	err    error
}

// ProgressModel is the bubbletea model that follows a pipeline run.
type ProgressModel struct {
	Title    string
	Event    pipeline.Event
	Width    int
	Result   *pipeline.Result
	Err      error
	Done     bool
	Canceled bool

	msgs <-chan tea.Msg
}

// NewProgressModel creates a model reading events and the final result from msgs.
func NewProgressModel(title string, msgs <-chan tea.Msg) ProgressModel {
	return ProgressModel{Title: title, Width: defaultBarWidth, msgs: msgs}
}

// waitFor returns a command that delivers the next message from ch, or nil
// once ch is closed.
func waitFor(ch <-chan tea.Msg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

func (m ProgressModel) Init() tea.Cmd {
	return waitFor(m.msgs)
}

func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		m.Event = pipeline.Event(msg)
		return m, waitFor(m.msgs)
	case doneMsg:
		m.Result, m.Err, m.Done = msg.result, msg.err, true
		return m, tea.Quit
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Canceled = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Width = max(minBarWidth, min(defaultBarWidth, msg.Width-20))
	}
	return m, nil
}

func (m ProgressModel) View() string {
	if m.Done || m.Canceled {
		return ""
	}
	var b strings.Builder
	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n\n")
	b.WriteString(progressBar(m.Event.Percent, m.Width))
	b.WriteString(fmt.Sprintf(" %3.0f%%\n", m.Event.Percent))

	stage := string(m.Event.Stage)
	if stage == "" {
		stage = string(pipeline.StageInitializing)
	}
	b.WriteString(stageStyle.Render(stage))
	if m.Event.Message != "" {
		b.WriteString(" " + StyleDim.Render(m.Event.Message))
	}
	b.WriteString("\n\n")
	b.WriteString(StyleDim.Render("q cancel"))
	return b.String()
}

// progressBar renders pct (0-100) as a bar of the given width.
func progressBar(pct float64, width int) string {
	filled := int(pct / 100 * float64(width))
	filled = max(0, min(width, filled))
	return barFilledStyle.Render(strings.Repeat("█", filled)) +
		barEmptyStyle.Render(strings.Repeat("░", width-filled))
}

// runWithProgressView executes the pipeline while a full-screen progress
// view follows its events. Quitting the view cancels the run.
func runWithProgressView(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options) (*pipeline.Result, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	msgs := make(chan tea.Msg, 16)
	send := func(msg tea.Msg) {
		select {
		case msgs <- msg:
		case <-runCtx.Done():
		}
	}

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		opts.Progress = func(e pipeline.Event) { send(progressMsg(e)) }
		res, err := runner.Execute(runCtx, opts)
		send(doneMsg{result: res, err: err})
	}()

	title := "Imposing " + opts.Name
	p := tea.NewProgram(NewProgressModel(title, msgs), tea.WithContext(ctx), tea.WithOutput(os.Stderr))
	final, err := p.Run()
	cancel()
	<-finished
	close(msgs)

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, fmt.Errorf("progress view: %w", err)
	}
	m := final.(ProgressModel)
	if !m.Done {
		return nil, context.Canceled
	}
	return m.Result, m.Err
}
