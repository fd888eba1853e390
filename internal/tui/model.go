package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mcdonaldj/zip2hash/internal/extract"
	"github.com/mcdonaldj/zip2hash/internal/legacy"
	"github.com/mcdonaldj/zip2hash/internal/ports"
)

// View represents the current view state
type View int

const (
	EntriesView View = iota
	DetailView
)

// Model is the main TUI model
type Model struct {
	archive  *extract.Archive
	clip     ports.Clipboard
	view     View
	width    int
	height   int
	quitting bool

	// Entries view; rows indexes archive.Results.
	rows     []int
	cursor   int
	hashOnly bool

	// Status message
	statusMsg string
	statusErr bool
}

// Key bindings
type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Enter  key.Binding
	Back   key.Binding
	Copy   key.Binding
	Filter key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "details"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc", "backspace"),
		key.WithHelp("esc", "back"),
	),
	Copy: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy hash"),
	),
	Filter: key.NewBinding(
		key.WithKeys("h"),
		key.WithHelp("h", "hashes only"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// NewModel creates a browser over the processed archive a. clip may be nil,
// in which case copying reports an error.
func NewModel(a *extract.Archive, clip ports.Clipboard) *Model {
	m := &Model{
		archive: a,
		clip:    clip,
		view:    EntriesView,
	}
	m.buildRows()
	return m
}

func (m *Model) buildRows() {
	m.rows = m.rows[:0]
	for i, r := range m.archive.Results {
		if m.hashOnly && r.Status() != extract.StatusHash {
			continue
		}
		m.rows = append(m.rows, i)
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// selected returns the result under the cursor, or nil when the list is empty.
func (m *Model) selected() *extract.EntryResult {
	if len(m.rows) == 0 {
		return nil
	}
	return &m.archive.Results[m.rows[m.cursor]]
}

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case statusMsg:
		m.statusMsg = msg.msg
		m.statusErr = msg.err
		return m, nil

	case tea.KeyMsg:
		// Clear status on any key
		m.statusMsg = ""
		m.statusErr = false

		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, keys.Up):
			m.moveCursor(-1)

		case key.Matches(msg, keys.Down):
			m.moveCursor(1)

		case key.Matches(msg, keys.Enter):
			if m.view == EntriesView && m.selected() != nil {
				m.view = DetailView
			}

		case key.Matches(msg, keys.Back):
			if m.view == DetailView {
				m.view = EntriesView
			}

		case key.Matches(msg, keys.Filter):
			if m.view == EntriesView {
				m.hashOnly = !m.hashOnly
				m.buildRows()
			}

		case key.Matches(msg, keys.Copy):
			return m, m.copyLine()
		}
	}

	return m, nil
}

func (m *Model) moveCursor(delta int) {
	if m.view != EntriesView {
		return
	}
	m.cursor += delta
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) copyLine() tea.Cmd {
	r := m.selected()
	clip := m.clip
	return func() tea.Msg {
		if r == nil {
			return statusMsg{err: true, msg: "No entry selected"}
		}
		if r.Status() != extract.StatusHash {
			return statusMsg{err: true, msg: fmt.Sprintf("%s has no hash line", r.Entry.Name)}
		}
		if clip == nil {
			return statusMsg{err: true, msg: "Clipboard unavailable"}
		}
		if err := clip.WriteAll(r.Line); err != nil {
			return statusMsg{err: true, msg: fmt.Sprintf("Copy failed: %v", err)}
		}
		return statusMsg{msg: fmt.Sprintf("✓ Copied hash for %s", r.Entry.Name)}
	}
}

type statusMsg struct {
	msg string
	err bool
}

// View renders the UI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.view {
	case EntriesView:
		content = m.renderEntriesView()
	case DetailView:
		content = m.renderDetailView()
	}

	return frameStyle.Render(content)
}

func (m *Model) renderEntriesView() string {
	var b strings.Builder

	title := headerStyle.Render(fmt.Sprintf(" 🔐 %s ", filepath.Base(m.archive.Name)))
	b.WriteString(title)
	b.WriteString("  ")
	b.WriteString(labelStyle.Render(fmt.Sprintf("%d entries, %d hashes, %d skipped, %d errors",
		len(m.archive.Results),
		m.archive.Count(extract.StatusHash),
		m.archive.Count(extract.StatusSkipped),
		m.archive.Count(extract.StatusFailed))))
	b.WriteString("\n\n")

	visibleHeight := m.height - 10
	if visibleHeight < 5 {
		visibleHeight = 5
	}

	if len(m.rows) == 0 {
		b.WriteString(labelStyle.Render("  No entries"))
		b.WriteString("\n")
	} else {
		header := fmt.Sprintf("  %-36s %10s %6s %s", "ENTRY", "SIZE", "CHECK", "STATUS")
		b.WriteString(labelStyle.Render(header))
		b.WriteString("\n")
		b.WriteString(labelStyle.Render(strings.Repeat("─", 70)))
		b.WriteString("\n")

		start := 0
		if m.cursor >= visibleHeight {
			start = m.cursor - visibleHeight + 1
		}

		for i := start; i < len(m.rows) && i < start+visibleHeight; i++ {
			r := m.archive.Results[m.rows[i]]
			cursor := "  "
			style := rowStyle
			if i == m.cursor {
				cursor = "▸ "
				style = cursorStyle
			}

			check := "-"
			if r.Candidate != nil {
				check = r.Candidate.CheckString()
			}

			line := fmt.Sprintf("%s%-36s %10d %6s ",
				cursor, truncate(r.Entry.Name, 36), r.Entry.CompressedSize, check)
			b.WriteString(style.Render(line))
			b.WriteString(statusBadge(r))
			b.WriteString("\n")
		}
	}

	for i := len(m.rows); i < visibleHeight; i++ {
		b.WriteString("\n")
	}

	m.writeStatus(&b)

	help := "[↑/↓] navigate  [enter] details  [y] copy hash  [h] hashes only  [q] quit"
	b.WriteString(keysStyle.Render(help))

	return b.String()
}

func (m *Model) renderDetailView() string {
	var b strings.Builder
	r := m.selected()

	title := headerStyle.Render(fmt.Sprintf(" 🔐 %s ", r.Entry.Name))
	b.WriteString(title)
	b.WriteString("\n\n")

	e := r.Entry
	field := func(label, value string) {
		b.WriteString(labelStyle.Render(fmt.Sprintf("  %-14s", label)))
		b.WriteString(rowStyle.Render(value))
		b.WriteString("\n")
	}
	field("Status", statusBadge(*r))
	field("Version", legacy.Version(e.VersionNeeded))
	field("Flags", fmt.Sprintf("%#04x", e.Flags))
	field("Method", fmt.Sprintf("%d", e.Method))
	field("CRC-32", fmt.Sprintf("%08x", e.CRC32))
	field("Compressed", fmt.Sprintf("%d bytes", e.CompressedSize))
	field("Uncompressed", fmt.Sprintf("%d bytes", e.UncompressedSize))
	field("Local header", fmt.Sprintf("%#x", e.LocalHeaderOffset))

	if r.Candidate != nil {
		check := "crc"
		if r.Candidate.TimeCheck {
			check = "mod time"
		}
		field("Check bytes", fmt.Sprintf("%s (%s)", r.Candidate.CheckString(), check))
		b.WriteString("\n")
		b.WriteString(labelStyle.Render(wrap(r.Candidate.Trace(m.archive.Name), m.lineWidth())))
		b.WriteString("\n\n")
		b.WriteString(lineStyle.Render(wrap(truncate(r.Line, 512), m.lineWidth())))
		b.WriteString("\n")
	}

	m.writeStatus(&b)

	help := "[y] copy hash  [esc] back  [q] quit"
	b.WriteString(keysStyle.Render(help))

	return b.String()
}

func (m *Model) writeStatus(b *strings.Builder) {
	b.WriteString("\n")
	if m.statusMsg != "" {
		if m.statusErr {
			b.WriteString(failBadge.Render(m.statusMsg))
		} else {
			b.WriteString(hashBadge.Render(m.statusMsg))
		}
	}
	b.WriteString("\n")
}

func (m *Model) lineWidth() int {
	if m.width > 8 {
		return m.width - 6
	}
	return 74
}

func statusBadge(r extract.EntryResult) string {
	switch r.Status() {
	case extract.StatusHash:
		return hashBadge.Render("hash")
	case extract.StatusSkipped:
		return skipBadge.Render("skipped: " + r.Reason)
	default:
		return failBadge.Render(fmt.Sprintf("error: %v", r.Err))
	}
}

// Run starts the TUI for one processed archive.
func Run(a *extract.Archive, clip ports.Clipboard) error {
	p := tea.NewProgram(NewModel(a, clip), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// truncate shortens s to max runes, ending in an ellipsis when cut.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

// wrap breaks s into lines of at most width runes.
func wrap(s string, width int) string {
	r := []rune(s)
	if width <= 0 || len(r) <= width {
		return s
	}
	var b strings.Builder
	for len(r) > width {
		b.WriteString(string(r[:width]))
		b.WriteString("\n")
		r = r[width:]
	}
	b.WriteString(string(r))
	return b.String()
}
