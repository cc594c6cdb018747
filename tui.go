package main

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	defaultWindowHeight = 24
	defaultWindowWidth  = 80
	reservedUILines     = 6 // title(1) + blank(1) + blank(1) + status(1) + input(1) + help(1)
	minVisibleHeight    = 3
	maxInputWidth       = 70
	minInputWidth       = 30
	cursorCharacter     = ">"
)

type tuiMode int

const (
	modeList tuiMode = iota
	modeAdd
	modeInsert
	modeConfirmDelete
	modeSearch
	modePick
	modeConfirmClear
)

// model is the BubbleTea model
type model struct {
	store  *Store
	tasks  []string
	cursor int
	mode   tuiMode

	input     textinput.Model
	insertPos int

	query       string
	matches     []Match
	matchCursor int

	status        string
	statusIsError bool

	keys keyMap
	help help.Model

	watcher   *Watcher
	debouncer *Debouncer

	windowHeight int
	windowWidth  int
	quitting     bool
}

func newModel(store *Store, watcher *Watcher, debouncer *Debouncer) model {
	return model{
		store:        store,
		tasks:        store.Tasks(),
		keys:         newKeyMap(),
		help:         help.New(),
		watcher:      watcher,
		debouncer:    debouncer,
		windowHeight: defaultWindowHeight,
		windowWidth:  defaultWindowWidth,
	}
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.WindowSize()}
	if m.watcher != nil {
		cmds = append(cmds, m.watcher.WatchCmd())
	}
	return tea.Batch(cmds...)
}

func (m *model) setStatus(msg string, isError bool) {
	m.status = msg
	m.statusIsError = isError
}

func (m *model) clampCursor() {
	m.cursor = max(0, min(m.cursor, len(m.tasks)-1))
}

func (m *model) inputWidth() int {
	return max(minInputWidth, min(maxInputWidth, m.windowWidth-10))
}

func (m *model) startInput(mode tuiMode, placeholder string) tea.Cmd {
	m.mode = mode
	m.input = textinput.New()
	m.input.Placeholder = placeholder
	m.input.CharLimit = 0 // unlimited, like the menu prompts
	m.input.Width = m.inputWidth()
	m.status = ""
	return m.input.Focus()
}

func (m *model) cancel() {
	m.mode = modeList
	m.matches = nil
	m.query = ""
	m.setStatus("Operation cancelled.", false)
}

// reload re-reads the backing file into the list
func (m *model) reload() error {
	if _, err := m.store.Load(); err != nil {
		log.Printf("reload %s: %v", m.store.Path(), err)
		m.setStatus(fmt.Sprintf("Error loading tasks: %v", err), true)
		return err
	}

	m.tasks = m.store.Tasks()
	m.clampCursor()

	// Positions may have shifted under a pending selection
	if m.mode == modePick || m.mode == modeConfirmDelete {
		m.mode = modeList
		m.matches = nil
	}

	return nil
}

// afterMutation refreshes the view of the list and reports the outcome of a store call
func (m *model) afterMutation(success string, err error) {
	m.mode = modeList
	m.matches = nil
	m.query = ""
	m.tasks = m.store.Tasks()
	m.clampCursor()

	if msg, ok := rejectionMessage(err); ok {
		m.setStatus(msg, true)
		return
	}

	var persistErr *PersistError

	switch {
	case errors.As(err, &persistErr):
		log.Printf("save %s: %v", persistErr.Path, persistErr.Err)
		m.setStatus(fmt.Sprintf("%s Error saving tasks: %v", success, persistErr.Err), true)
	case err != nil:
		m.setStatus(fmt.Sprintf("An unexpected error occurred: %v", err), true)
	default:
		m.setStatus(success, false)
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.windowHeight = msg.Height
		m.windowWidth = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case FileChangeMsg:
		// Our own saves update the stamp, so only foreign writes show as changes
		if m.store.Changed() {
			if m.debouncer != nil {
				m.debouncer.Trigger()
			} else {
				m.reload()
			}
		}
		if m.watcher != nil {
			return m, m.watcher.WatchCmd()
		}
		return m, nil

	case DebouncedReloadMsg:
		if m.store.Changed() {
			if err := m.reload(); err == nil {
				m.setStatus("Reloaded after external change.", false)
			}
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}

		switch m.mode {
		case modeAdd, modeInsert, modeSearch, modeConfirmClear:
			return m.updateInput(msg)
		case modeConfirmDelete:
			return m.updateConfirmDelete(msg)
		case modePick:
			return m.updatePick(msg)
		}

		return m.updateList(msg)
	}

	return m, nil
}

func (m model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.tasks)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Top):
		m.cursor = 0

	case key.Matches(msg, m.keys.Bottom):
		if len(m.tasks) > 0 {
			m.cursor = len(m.tasks) - 1
		}

	case key.Matches(msg, m.keys.Add):
		return m, m.startInput(modeAdd, "New task...")

	case key.Matches(msg, m.keys.Insert):
		m.insertPos = m.cursor + 1
		return m, m.startInput(modeInsert, "Task to insert...")

	case key.Matches(msg, m.keys.Delete):
		if len(m.tasks) == 0 {
			m.setStatus("No tasks to remove!", true)
			return m, nil
		}
		m.mode = modeConfirmDelete
		m.status = ""

	case key.Matches(msg, m.keys.Search):
		if len(m.tasks) == 0 {
			m.setStatus("No tasks to remove!", true)
			return m, nil
		}
		return m, m.startInput(modeSearch, "Task name or part of it...")

	case key.Matches(msg, m.keys.Clear):
		if len(m.tasks) == 0 {
			m.setStatus("No tasks to clear!", true)
			return m, nil
		}
		return m, m.startInput(modeConfirmClear, "yes")

	case key.Matches(msg, m.keys.Reload):
		if err := m.reload(); err == nil {
			m.setStatus(fmt.Sprintf("Loaded %d tasks.", len(m.tasks)), false)
		}

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}

	return m, nil
}

func (m model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+[":
		m.cancel()
		return m, nil

	case "enter":
		m.submit(m.input.Value())
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *model) submit(value string) {
	switch m.mode {
	case modeAdd:
		task, err := m.store.Add(value)
		if err == nil || !isRejection(err) {
			m.cursor = m.store.Len() - 1
		}
		m.afterMutation(fmt.Sprintf("Task '%s' added successfully!", task), err)

	case modeInsert:
		pos := m.insertPos
		if m.store.Len() == 0 {
			pos = 1
		}
		task, err := m.store.InsertAt(pos, value)
		if err == nil || !isRejection(err) {
			m.cursor = pos - 1
		}
		m.afterMutation(fmt.Sprintf("Task '%s' inserted at position %d!", task, pos), err)

	case modeSearch:
		m.query = value
		if matches := m.store.Matches(value); len(matches) > 1 {
			m.matches = matches
			m.matchCursor = 0
			m.mode = modePick
			m.setStatus(fmt.Sprintf("Multiple matching tasks found: %d", len(matches)), false)
			return
		}
		removed, err := m.store.RemoveByName(value, nil)
		m.afterMutation(fmt.Sprintf("Task '%s' removed successfully!", removed), err)

	case modeConfirmClear:
		_, err := m.store.ClearAll(value)
		m.afterMutation("All tasks cleared!", err)
	}
}

func (m model) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		removed, err := m.store.RemoveAt(m.cursor + 1)
		m.afterMutation(fmt.Sprintf("Task '%s' removed successfully!", removed), err)

	case "n", "N", "q", "esc", "ctrl+[", "enter":
		m.cancel()
	}

	return m, nil
}

func (m model) updatePick(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "esc" || msg.String() == "ctrl+[" || msg.String() == "q":
		m.cancel()

	case key.Matches(msg, m.keys.Up):
		if m.matchCursor > 0 {
			m.matchCursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.matchCursor < len(m.matches)-1 {
			m.matchCursor++
		}

	case msg.String() == "enter":
		choice := m.matchCursor + 1
		removed, err := m.store.RemoveByName(m.query, func([]string) (int, error) {
			return choice, nil
		})
		m.afterMutation(fmt.Sprintf("Task '%s' removed successfully!", removed), err)
	}

	return m, nil
}

func isRejection(err error) bool {
	_, ok := rejectionMessage(err)
	return ok
}

// visibleRange returns the window of list rows to draw, keeping cursor roughly centered
func visibleRange(cursor, total, height int) (start, end int) {
	if height < minVisibleHeight {
		height = minVisibleHeight
	}
	if total <= height {
		return 0, total
	}
	start = max(0, min(cursor-height/2, total-height))
	return start, start + height
}

func (m model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}

	var b strings.Builder

	title := titleBarStyle.Render(fmt.Sprintf("td - %s", m.store.Path()))
	b.WriteString(title + countStyle.Render(fmt.Sprintf(" (%d)", len(m.tasks))) + "\n\n")

	b.WriteString(m.renderRows())

	b.WriteString("\n")
	if m.status != "" {
		if m.statusIsError {
			b.WriteString(dangerStyle.Render(m.status))
		} else {
			b.WriteString(successStyle.Render(m.status))
		}
	}
	b.WriteString("\n")

	b.WriteString(m.renderPrompt() + "\n")
	b.WriteString(m.help.View(m.keys))

	return b.String()
}

func (m model) renderRows() string {
	rows := m.tasks
	cursor := m.cursor
	if m.mode == modePick {
		rows = matchTexts(m.matches)
		cursor = m.matchCursor
	}

	if len(rows) == 0 {
		return emptyStyle.Render("No tasks found!") + "\n"
	}

	var b strings.Builder
	start, end := visibleRange(cursor, len(rows), m.windowHeight-reservedUILines)

	for i := start; i < end; i++ {
		prefix := "  "
		line := fmt.Sprintf("%s %s", numberStyle.Render(fmt.Sprintf("%d.", i+1)), rows[i])
		if i == cursor {
			prefix = cursorStyle.Render(cursorCharacter + " ")
			line = selectedStyle.Render(fmt.Sprintf("%d. %s", i+1, rows[i]))
		}
		b.WriteString(prefix + line + "\n")
	}

	if end-start < len(rows) {
		b.WriteString(countStyle.Render(fmt.Sprintf("[%d-%d of %d]", start+1, end, len(rows))) + "\n")
	}

	return b.String()
}

func (m model) renderPrompt() string {
	switch m.mode {
	case modeAdd:
		return promptStyle.Render("Add: ") + inputStyle.Render(m.input.View())
	case modeInsert:
		pos := m.insertPos
		if len(m.tasks) == 0 {
			pos = 1
		}
		return promptStyle.Render(fmt.Sprintf("Insert at %d: ", pos)) + inputStyle.Render(m.input.View())
	case modeSearch:
		return promptStyle.Render("Remove by name: ") + inputStyle.Render(m.input.View())
	case modeConfirmClear:
		label := fmt.Sprintf("Delete all %d tasks? Type y or yes to confirm: ", len(m.tasks))
		return dangerStyle.Render(label) + inputStyle.Render(m.input.View())
	case modeConfirmDelete:
		if m.cursor < len(m.tasks) {
			return confirmBarStyle.Render(fmt.Sprintf("Delete '%s'? (y/N)", m.tasks[m.cursor]))
		}
	case modePick:
		return matchStyle.Render("Pick the task to remove • enter confirm • esc cancel")
	}
	return ""
}
