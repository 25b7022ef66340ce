// Package picker implements the interactive title chooser: a Bubble Tea
// list with type-to-filter, and a line-oriented fallback for
// non-interactive input.
package picker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/runger/cinematch/internal/sanitize"
)

// debounceInterval is the delay after the last keystroke before triggering a fetch.
const debounceInterval = 100 * time.Millisecond

// pickerState represents the current state of the picker's state machine.
type pickerState int

const (
	stateIdle      pickerState = iota // Initial state before first fetch
	stateLoading                      // Fetch in progress
	stateLoaded                       // Items loaded successfully (len > 0)
	stateEmpty                        // Fetch succeeded but returned 0 items
	stateError                        // Fetch failed
	stateCancelled                    // User cancelled (Esc / Ctrl+C)
)

// fetchDoneMsg is sent when an async Provider.Fetch completes.
type fetchDoneMsg struct {
	requestID uint64
	items     []Item
	err       error
}

// debounceMsg fires after the debounce timer expires.
type debounceMsg struct {
	id uint64 // Must match current debounceID to be accepted
}

// initMsg is sent by Init() so the first fetch runs through Update.
type initMsg struct{}

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Choose   key.Binding
	Cancel   key.Binding
	Erase    key.Binding
}

var defaultKeys = keyMap{
	Up:       key.NewBinding(key.WithKeys("up", "ctrl+p")),
	Down:     key.NewBinding(key.WithKeys("down", "ctrl+n")),
	PageUp:   key.NewBinding(key.WithKeys("pgup")),
	PageDown: key.NewBinding(key.WithKeys("pgdown")),
	Choose:   key.NewBinding(key.WithKeys("enter")),
	Cancel:   key.NewBinding(key.WithKeys("esc", "ctrl+c")),
	Erase:    key.NewBinding(key.WithKeys("backspace")),
}

// Model is the Bubble Tea model for the title picker.
type Model struct {
	state     pickerState
	header    string
	items     []Item
	selection int    // Index into items; -1 when empty
	top       int    // First visible row
	query     string // Current filter
	err       error
	keys      keyMap

	requestID uint64 // Monotonic counter for stale detection
	provider  Provider

	width  int // Terminal width
	height int // Terminal height

	// result is the chosen item's Index, or -1.
	result int

	// cancelFetch cancels the in-flight Provider.Fetch context.
	cancelFetch context.CancelFunc

	// debounceID tracks the latest debounce timer; only a matching
	// debounceMsg will trigger a fetch.
	debounceID uint64

	// pending holds navigation and choose keys pressed before the list
	// loaded. They are replayed once items arrive.
	pending []tea.KeyMsg
}

// NewModel creates a picker showing header above the items from provider.
func NewModel(header string, provider Provider) Model {
	return Model{
		state:     stateIdle,
		header:    header,
		selection: -1,
		result:    -1,
		keys:      defaultKeys,
		provider:  provider,
	}
}

// Result returns the Index of the chosen item and whether one was chosen.
func (m Model) Result() (int, bool) {
	return m.result, m.result >= 0
}

// IsCancelled reports whether the user dismissed the picker.
func (m Model) IsCancelled() bool {
	return m.state == stateCancelled
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return func() tea.Msg { return initMsg{} }
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.scrollToSelection()
		return m, nil

	case fetchDoneMsg:
		return m.handleFetchDone(msg)

	case debounceMsg:
		if msg.id != m.debounceID {
			return m, nil // Stale debounce timer; ignore.
		}
		return m, m.startFetch()

	case initMsg:
		return m, m.startFetch()
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.state = stateCancelled
		m.cancelInflight()
		return m, tea.Quit

	case m.loading() && m.isListKey(msg):
		m.pending = append(m.pending, msg)
		return m, nil

	case key.Matches(msg, m.keys.Choose):
		if m.state != stateLoaded || m.selection < 0 || m.selection >= len(m.items) {
			return m, nil
		}
		m.result = m.items[m.selection].Index
		m.cancelInflight()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		m.move(-1)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.move(1)
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.move(-m.listHeight())
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.move(m.listHeight())
		return m, nil

	case key.Matches(msg, m.keys.Erase):
		if len(m.query) > 0 {
			r := []rune(m.query)
			m.query = string(r[:len(r)-1])
			return m, m.startDebounce()
		}
		return m, nil
	}

	if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
		m.query += string(msg.Runes)
		return m, m.startDebounce()
	}
	return m, nil
}

func (m Model) loading() bool {
	return m.state == stateIdle || m.state == stateLoading
}

// isListKey reports whether msg acts on the loaded list.
func (m Model) isListKey(msg tea.KeyMsg) bool {
	return key.Matches(msg, m.keys.Choose, m.keys.Up, m.keys.Down, m.keys.PageUp, m.keys.PageDown)
}

// replayPending applies keys queued while loading.
func (m Model) replayPending() (tea.Model, tea.Cmd) {
	pending := m.pending
	m.pending = nil

	var cmds []tea.Cmd
	var next tea.Model = m
	for _, k := range pending {
		var cmd tea.Cmd
		next, cmd = next.(Model).handleKey(k)
		cmds = append(cmds, cmd)
	}
	return next, tea.Batch(cmds...)
}

// move shifts the selection by delta rows, clamped to the list.
func (m *Model) move(delta int) {
	if m.state != stateLoaded {
		return
	}
	m.selection += delta
	m.clampSelection()
	m.scrollToSelection()
}

// handleFetchDone processes the result of an async fetch.
func (m Model) handleFetchDone(msg fetchDoneMsg) (tea.Model, tea.Cmd) {
	// Discard stale responses.
	if msg.requestID != m.requestID {
		return m, nil
	}
	m.cancelFetch = nil

	if msg.err != nil {
		m.state = stateError
		m.err = msg.err
		m.items = nil
		m.selection = -1
		m.pending = nil
		return m, nil
	}

	m.items = msg.items
	m.top = 0
	if len(m.items) == 0 {
		m.state = stateEmpty
		m.selection = -1
		m.pending = nil
		return m, nil
	}
	m.state = stateLoaded
	m.selection = 0
	return m.replayPending()
}

// startDebounce increments the debounce counter and returns a tea.Tick
// command that fires after debounceInterval.
func (m *Model) startDebounce() tea.Cmd {
	m.debounceID++
	id := m.debounceID
	return tea.Tick(debounceInterval, func(time.Time) tea.Msg {
		return debounceMsg{id: id}
	})
}

// startFetch cancels any in-flight fetch, increments requestID, and
// returns a tea.Cmd that calls the provider.
func (m *Model) startFetch() tea.Cmd {
	m.cancelInflight()
	m.requestID++
	m.state = stateLoading

	reqID := m.requestID
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelFetch = cancel

	req := Request{RequestID: reqID, Query: m.query}
	p := m.provider
	return func() tea.Msg {
		resp, err := p.Fetch(ctx, req)
		if err != nil {
			return fetchDoneMsg{requestID: reqID, err: err}
		}
		return fetchDoneMsg{requestID: reqID, items: resp.Items}
	}
}

// cancelInflight cancels any in-progress fetch context.
func (m *Model) cancelInflight() {
	if m.cancelFetch != nil {
		m.cancelFetch()
		m.cancelFetch = nil
	}
}

// clampSelection ensures the selection index is within bounds.
func (m *Model) clampSelection() {
	if len(m.items) == 0 {
		m.selection = -1
		return
	}
	if m.selection < 0 {
		m.selection = 0
	}
	if m.selection >= len(m.items) {
		m.selection = len(m.items) - 1
	}
}

// scrollToSelection keeps the selected row inside the visible window.
func (m *Model) scrollToSelection() {
	h := m.listHeight()
	if m.selection < m.top {
		m.top = m.selection
	}
	if m.selection >= m.top+h {
		m.top = m.selection - h + 1
	}
	if m.top < 0 {
		m.top = 0
	}
}

// listHeight returns the number of visible list rows.
func (m Model) listHeight() int {
	// header, status line, query line
	const chrome = 3
	h := m.height - chrome
	if h < 1 {
		h = 10 // Sensible default before first WindowSizeMsg
	}
	return h
}

// --- View rendering ---

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	normalStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	queryStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(" " + m.header + " "))
	b.WriteRune('\n')

	b.WriteString(m.viewContent())
	b.WriteRune('\n')

	b.WriteString(m.viewStatus())
	b.WriteRune('\n')

	b.WriteString(queryStyle.Render("> ") + m.query)

	return b.String()
}

// viewContent renders the item list or a status message.
func (m Model) viewContent() string {
	switch m.state {
	case stateIdle, stateLoading:
		return dimStyle.Render("Loading...")

	case stateEmpty:
		return dimStyle.Render("No matches")

	case stateError:
		msg := "Error"
		if m.err != nil {
			msg = fmt.Sprintf("Error: %s", m.err)
		}
		return errorStyle.Render(msg)

	case stateCancelled:
		return dimStyle.Render("Cancelled")

	case stateLoaded:
		return m.viewList()

	default:
		return ""
	}
}

// viewList renders the visible window of items with a selection marker.
func (m Model) viewList() string {
	end := m.top + m.listHeight()
	if end > len(m.items) {
		end = len(m.items)
	}

	rows := make([]string, 0, end-m.top)
	for i := m.top; i < end; i++ {
		display := sanitize.Title(m.items[i].Label)
		if m.width > 4 {
			display = sanitize.MiddleTruncate(display, m.width-4)
		}
		if i == m.selection {
			rows = append(rows, selectedStyle.Render("> "+display))
		} else {
			rows = append(rows, normalStyle.Render("  "+display))
		}
	}
	return strings.Join(rows, "\n")
}

// viewStatus renders the position indicator and key hints.
func (m Model) viewStatus() string {
	if m.state != stateLoaded {
		return dimStyle.Render("esc cancel")
	}
	return dimStyle.Render(fmt.Sprintf("%d/%d  enter select, esc cancel", m.selection+1, len(m.items)))
}
