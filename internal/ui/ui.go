package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/meloday/internal/curate"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PeriodListView ViewState = iota
	ConfirmView
	CurateView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx            context.Context
	view           ViewState
	engine         *curate.Engine
	persist        bool
	width          int
	height         int
	periodList     list.Model
	selectedPeriod string
	trackList      list.Model
	progressChan   chan curate.ProgressUpdate
	progress       curate.ProgressUpdate
	result         *curate.RunResult
	err            error
	help           help.Model
	keys           keyMap
}

type progressUpdateMsg curate.ProgressUpdate

type curationCompleteMsg struct {
	result *curate.RunResult
	err    error
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, engine *curate.Engine, persist bool) *Model {
	schedule := engine.Schedule()
	names := schedule.Periods()
	items := make([]list.Item, len(names))
	for i, name := range names {
		items[i] = periodItem{
			name:   name,
			phrase: schedule.Phrase(name),
			hours:  schedule.HoursFor(name),
		}
	}

	periodList := list.New(items, list.NewDefaultDelegate(), 0, 0)
	periodList.Title = "Listening Periods"

	return &Model{
		ctx:        ctx,
		view:       PeriodListView,
		engine:     engine,
		persist:    persist,
		periodList: periodList,
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.periodList.SetSize(msg.Width-4, msg.Height-8)
		if m.trackList.Width() == 0 {
			m.trackList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PeriodListView:
			return m.handlePeriodListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case progressUpdateMsg:
		m.progress = curate.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case curationCompleteMsg:
		m.result = msg.result
		m.err = msg.err
		m.view = ResultView
		m.progressChan = nil
		if m.result != nil && m.result.Playlist != nil {
			items := make([]list.Item, len(m.result.Playlist.Tracks))
			for i, track := range m.result.Playlist.Tracks {
				items[i] = trackItem{track: track}
			}
			m.trackList = list.New(items, list.NewDefaultDelegate(), 0, 0)
			m.trackList.Title = m.result.Playlist.Title
			m.trackList.SetSize(m.width-4, m.height-12)
		}
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case PeriodListView:
		return m.renderPeriodList()
	case ConfirmView:
		return m.renderConfirm()
	case CurateView:
		return m.renderCurate()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handlePeriodListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		selected := m.periodList.SelectedItem()
		if selected != nil {
			if p, ok := selected.(periodItem); ok {
				m.selectedPeriod = p.name
				m.view = ConfirmView
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.periodList, cmd = m.periodList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "n", "esc":
		m.view = PeriodListView
		return m, nil
	case "y":
		m.view = CurateView
		return m, m.startCuration()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.view = PeriodListView
		m.selectedPeriod = ""
		m.result = nil
		m.err = nil
		m.progress = curate.ProgressUpdate{}
		return m, nil
	}

	var cmd tea.Cmd
	m.trackList, cmd = m.trackList.Update(msg)
	return m, cmd
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PeriodListView:
		m.periodList, cmd = m.periodList.Update(msg)
	case ResultView:
		m.trackList, cmd = m.trackList.Update(msg)
	}
	return m, cmd
}

func (m *Model) startCuration() tea.Cmd {
	m.progressChan = make(chan curate.ProgressUpdate, 50)
	progress := m.progressChan

	go func() {
		result, err := m.engine.Run(m.ctx, progress, m.selectedPeriod, m.persist)
		m.result = result
		m.err = err
		close(progress)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return curationCompleteMsg{result: m.result, err: m.err}
		}

		update, ok := <-m.progressChan
		if !ok {
			return curationCompleteMsg{result: m.result, err: m.err}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderPeriodList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.periodList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Curate a playlist for %s?", m.selectedPeriod))

	phrase := m.engine.Schedule().Phrase(m.selectedPeriod)
	info := fmt.Sprintf("\nPeriod: %s\nMood: %s\n", m.selectedPeriod, phrase)
	if m.persist {
		info += "Run will be recorded in history.\n"
	}

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderCurate() string {
	title := styles.title.Render(fmt.Sprintf("Curating %s", m.selectedPeriod))

	var phase string
	switch m.progress.Phase {
	case curate.PhaseFetchCandidates:
		phase = "Fetching candidates..."
	case curate.PhaseFilterExclusions:
		phase = "Filtering exclusions..."
	case curate.PhaseResolveDuplicates:
		phase = "Resolving duplicate copies..."
	case curate.PhaseExpandPool:
		phase = "Expanding a sparse pool with similar tracks..."
	case curate.PhaseEnforceDiversity:
		phase = "Enforcing diversity caps..."
	case curate.PhaseBuildSimilarity:
		phase = fmt.Sprintf("Building similarity cache (%d/%d)", m.progress.Step, m.progress.Total)
	case curate.PhaseSequenceTracks:
		phase = "Sequencing tracks..."
	case curate.PhaseDescribePlaylist:
		phase = "Writing title and description..."
	case curate.PhasePersistRun:
		phase = "Recording run..."
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Curation failed: %v\n\nPress r to retry, q to quit", m.err))
	}

	if m.result == nil || m.result.Playlist == nil {
		return styles.err.Render("No result available\n\nPress r to retry, q to quit")
	}

	title := styles.ok.Render("✓ Curation Complete!")
	info := fmt.Sprintf(
		"\nCandidates: %d\nAfter dedup: %d\nSequenced: %d\nElapsed: %s\n",
		m.result.Candidates,
		m.result.Resolved,
		m.result.Sequenced,
		m.result.ElapsedTime.Round(time.Millisecond),
	)

	var recorded string
	if m.result.Run != nil {
		recorded = styles.warn.Render(fmt.Sprintf("Recorded as run #%d", m.result.Run.Sequence()))
	}

	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s%s\n%s\n%s\n\n%s", title, info, recorded, m.trackList.View(), helpView)
}
