// Package tui provides a Bubble Tea terminal user interface for
// kk-downloader.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/kksliderdl/kk-downloader/internal/config"
	"github.com/kksliderdl/kk-downloader/internal/download"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#8EC07C")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#83A598"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#B8BB26"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FB4934"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FABD2F"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#83A598")).
			Padding(1, 2)
)

// State represents the current UI state.
type State int

const (
	StateMenu State = iota
	StateRunning
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   download.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state    State
	spinner  spinner.Model
	progress progress.Model
	settings *config.Settings
	logs     []LogEntry
	result   *download.RunResult
	err      error

	ctx    context.Context
	cancel context.CancelFunc

	manager *download.Manager
	events  chan download.ProgressEvent

	totalFiles      int32
	downloadedFiles int32
	receivedBytes   int64

	// Options toggled on the menu screen
	playlist bool
	dryRun   bool
	verbose  bool

	width  int
	height int
}

// NewModel creates a new TUI model.
func NewModel(settings *config.Settings) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#8EC07C"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:    StateMenu,
		spinner:  sp,
		progress: prog,
		settings: settings,
		logs:     make([]LogEntry, 0),
		ctx:      ctx,
		cancel:   cancel,
		events:   make(chan download.ProgressEvent, 64),
		playlist: settings.CreatePlaylist,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Message types
type (
	// ProgressMsg carries one pipeline progress event.
	ProgressMsg struct {
		Event download.ProgressEvent
	}

	// RunDoneMsg is sent when the pipeline finishes.
	RunDoneMsg struct {
		Result *download.RunResult
		Err    error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 20
		if m.progress.Width > 80 {
			m.progress.Width = 80
		}
		if m.progress.Width < 20 {
			m.progress.Width = 20
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateMenu {
				return m, tea.Quit
			}
			if m.state == StateRunning {
				m.cancel()
				m.state = StateError
				m.err = fmt.Errorf("cancelled by user")
			}

		case "enter":
			if m.state == StateMenu {
				m.state = StateRunning
				return m, tea.Batch(m.startRun(), m.listenForEvents(), m.tickProgress(), m.spinner.Tick)
			}

		case "p":
			if m.state == StateMenu {
				m.playlist = !m.playlist
			}

		case "n":
			if m.state == StateMenu {
				m.dryRun = !m.dryRun
			}

		case "v":
			if m.state == StateMenu {
				m.verbose = !m.verbose
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				// Reset for a fresh run
				m.state = StateMenu
				m.logs = nil
				m.result = nil
				m.err = nil
				m.manager = nil
				m.downloadedFiles = 0
				m.totalFiles = 0
				m.receivedBytes = 0
				m.events = make(chan download.ProgressEvent, 64)
				m.ctx, m.cancel = context.WithCancel(context.Background())
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		if msg.Event.Level == download.LevelVerbose && !m.verbose {
			return m, m.listenForEvents()
		}
		m.logs = append(m.logs, LogEntry{
			Message: msg.Event.Message,
			Level:   msg.Event.Level,
		})
		// Keep only the last 10 logs
		if len(m.logs) > 10 {
			m.logs = m.logs[len(m.logs)-10:]
		}
		cmds = append(cmds, m.listenForEvents())

	case RunDoneMsg:
		m.result = msg.Result
		if msg.Err != nil && m.ctx.Err() == nil {
			m.state = StateError
			m.err = msg.Err
		} else if m.ctx.Err() != nil {
			m.state = StateError
			m.err = fmt.Errorf("cancelled by user")
		} else {
			m.state = StateComplete
		}

	case TickMsg:
		if m.manager != nil && m.state == StateRunning {
			done, total, bytes := m.manager.Progress()
			m.downloadedFiles = done
			m.totalFiles = total
			m.receivedBytes = bytes

			var percent float64
			if total > 0 {
				percent = float64(done) / float64(total)
			}
			cmds = append(cmds, m.progress.SetPercent(percent), m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// startRun builds the manager and executes the pipeline in the
// background.
func (m *Model) startRun() tea.Cmd {
	settings := *m.settings
	settings.CreatePlaylist = m.playlist

	events := m.events
	manager, err := download.NewManager(&settings, func(event download.ProgressEvent) {
		select {
		case events <- event:
		default:
		}
	})
	if err != nil {
		close(events)
		return func() tea.Msg { return RunDoneMsg{Err: err} }
	}
	manager.DryRun = m.dryRun
	m.manager = manager

	ctx := m.ctx
	return func() tea.Msg {
		result, err := manager.Run(ctx)
		// No events are emitted once Run has returned; closing here
		// releases the pending listenForEvents command.
		close(events)
		return RunDoneMsg{Result: result, Err: err}
	}
}

// listenForEvents waits for the next progress event from the pipeline.
func (m Model) listenForEvents() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return nil
		}
		return ProgressMsg{Event: event}
	}
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("K.K. Slider Downloader"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Mirror the K.K. Slider discography from Nookipedia"))
	b.WriteString("\n\n")

	switch m.state {
	case StateMenu:
		b.WriteString(m.viewMenu())
	case StateRunning:
		b.WriteString(m.viewRunning())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewMenu() string {
	var b strings.Builder

	playlistCheck := "[ ]"
	if m.playlist {
		playlistCheck = "[x]"
	}
	dryRunCheck := "[ ]"
	if m.dryRun {
		dryRunCheck = "[x]"
	}
	verboseCheck := "[ ]"
	if m.verbose {
		verboseCheck = "[x]"
	}

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s Create playlist (p)\n", playlistCheck))
	b.WriteString(fmt.Sprintf("  %s Dry run, metadata only (n)\n", dryRunCheck))
	b.WriteString(fmt.Sprintf("  %s Verbose output (v)\n", verboseCheck))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Source: %s%s", m.settings.BaseURL, m.settings.SonglistPath)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Output: %s", m.settings.OutputDir)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewRunning() string {
	var b strings.Builder

	stage := "working"
	if m.manager != nil {
		stage = m.manager.Stage().String()
	}
	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render(stage))
	b.WriteString("\n\n")

	if m.totalFiles > 0 {
		b.WriteString(m.progress.View())
		b.WriteString("\n")
		b.WriteString(infoStyle.Render(fmt.Sprintf(
			"Files: %d/%d | Downloaded: %s",
			m.downloadedFiles,
			m.totalFiles,
			humanize.Bytes(uint64(m.receivedBytes)),
		)))
		b.WriteString("\n\n")
	}

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	discovered, extracted, failed := 0, 0, 0
	if m.result != nil {
		discovered = m.result.Discovered
		extracted = m.result.Extracted
		failed = len(m.result.FailureReports) + len(m.result.ExtractionFailures)
	}

	box := boxStyle.Render(fmt.Sprintf(
		"Run complete\n\n"+
			"Songs found: %d\n"+
			"Metadata extracted: %d\n"+
			"Files: %d/%d (%s)\n"+
			"Songs with failures: %d",
		discovered,
		extracted,
		m.downloadedFiles,
		m.totalFiles,
		humanize.Bytes(uint64(m.receivedBytes)),
		failed,
	))
	b.WriteString(box)

	if m.result != nil && m.result.HasDownloadFailures() {
		b.WriteString("\n\n")
		for _, rep := range m.result.FailureReports {
			b.WriteString(warningStyle.Render(fmt.Sprintf("  %s: %d asset(s) failed", rep.Song.Title, len(rep.Failures))))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("Error:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, entry := range m.logs {
		var style lipgloss.Style
		prefix := "-"
		switch entry.Level {
		case download.LevelError:
			style = errorStyle
			prefix = "x"
		case download.LevelWarning:
			style = warningStyle
			prefix = "!"
		case download.LevelSuccess:
			style = successStyle
			prefix = "+"
		case download.LevelInfo:
			style = infoStyle
			prefix = ">"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + entry.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateMenu:
		return "enter: start | p: playlist | n: dry run | v: verbose | esc: quit"
	case StateRunning:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: run again | q: quit"
	}
	return ""
}

// Run starts the TUI application.
func Run(settings *config.Settings) error {
	p := tea.NewProgram(NewModel(settings), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
