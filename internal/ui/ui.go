package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/antigravlabs/stashd/internal/models"
	"github.com/antigravlabs/stashd/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	InputView ViewState = iota
	RecognizeView
	ResultView
)

// Pipeline is the recognition entry point the TUI drives.
type Pipeline interface {
	Recognize(ctx context.Context, url string, progress chan<- tasks.ProgressUpdate) (*models.Recognition, error)
}

// keyMap defines the key bindings for the TUI.
type keyMap struct {
	enter   key.Binding
	restart key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "recognize"),
		),
		restart: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "another"),
		),
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.enter, k.restart, k.quit},
	}
}

type progressUpdateMsg tasks.ProgressUpdate

type recognitionCompleteMsg struct {
	result *models.Recognition
	err    error
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	pipeline     Pipeline
	width        int
	height       int
	urlInput     textinput.Model
	spinner      spinner.Model
	progressChan chan tasks.ProgressUpdate
	done         chan recognitionCompleteMsg
	progress     tasks.ProgressUpdate
	result       *models.Recognition
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model with the provided pipeline.
func NewModel(ctx context.Context, pipeline Pipeline) *Model {
	input := textinput.New()
	input.Placeholder = "https://www.instagram.com/reel/..."
	input.Focus()
	input.CharLimit = 512
	input.Width = 60

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = NewStyle("#7D56F4")

	return &Model{
		ctx:      ctx,
		view:     InputView,
		pipeline: pipeline,
		urlInput: input,
		spinner:  spin,
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Init starts the cursor blink in the URL input.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case InputView:
			return m.handleInputKeys(msg)
		case RecognizeView:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			return m, nil
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case recognitionCompleteMsg:
		m.result = msg.result
		m.err = msg.err
		m.view = ResultView
		m.progressChan = nil
		m.done = nil
		return m, nil
	}

	var cmd tea.Cmd
	m.urlInput, cmd = m.urlInput.Update(msg)
	return m, cmd
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case InputView:
		return m.renderInput()
	case RecognizeView:
		return m.renderRecognize()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "enter":
		url := m.urlInput.Value()
		if url == "" {
			return m, nil
		}
		m.view = RecognizeView
		m.progress = tasks.ProgressUpdate{}
		return m, tea.Batch(m.spinner.Tick, m.startRecognition(url))
	}

	var cmd tea.Cmd
	m.urlInput, cmd = m.urlInput.Update(msg)
	return m, cmd
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.view = InputView
		m.result = nil
		m.err = nil
		m.urlInput.SetValue("")
		m.urlInput.Focus()
		return m, textinput.Blink
	}
	return m, nil
}

func (m *Model) startRecognition(url string) tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	progress := m.progressChan
	done := make(chan recognitionCompleteMsg, 1)

	go func() {
		result, err := m.pipeline.Recognize(m.ctx, url, progress)
		done <- recognitionCompleteMsg{result: result, err: err}
		close(progress)
	}()

	m.done = done
	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress := m.progressChan
	done := m.done
	return func() tea.Msg {
		if progress == nil {
			return nil
		}

		update, ok := <-progress
		if !ok {
			return <-done
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderInput() string {
	title := styles.title.Render("Stash a Song")
	prompt := "Paste a reel, short, or video link:"
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.quit})

	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s", title, prompt, m.urlInput.View(), helpView)
}

func (m *Model) renderRecognize() string {
	title := styles.title.Render("Identifying...")

	var phase string
	switch m.progress.Phase {
	case tasks.AcquireClip:
		phase = "Downloading audio clip..."
	case tasks.IdentifyAudio:
		phase = fmt.Sprintf("Fingerprinting (attempt %d/%d)...", m.progress.Step, m.progress.Total)
	case tasks.SearchCatalog:
		phase = "Searching Spotify..."
	default:
		phase = "Starting..."
	}

	return fmt.Sprintf("%s\n%s %s\n%s", title, m.spinner.View(), phase, styles.help.Render(m.progress.Message))
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.restart, m.keys.quit})

	if m.err != nil {
		body := styles.err.Render(fmt.Sprintf("Recognition failed: %v", m.err))
		return fmt.Sprintf("%s\n\n%s", body, helpView)
	}

	if m.result == nil || !m.result.Success {
		message := "No result available"
		if m.result != nil {
			message = m.result.Error
		}
		body := styles.warn.Render(message)
		return fmt.Sprintf("%s\n\n%s", body, helpView)
	}

	title := styles.ok.Render("✓ Match Found!")
	info := fmt.Sprintf("\nTrack: %s\nArtist: %s\nConfidence: %.2f", m.result.Track, m.result.Artist, m.result.Confidence)
	if m.result.SpotifyURL != "" {
		info += fmt.Sprintf("\n\n%s", styles.help.Render(m.result.SpotifyURL))
	}

	return fmt.Sprintf("%s%s\n\n%s", title, info, helpView)
}
