package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type noteKind int

const (
	noteInfo noteKind = iota
	noteSuccess
	noteError
)

type notification struct {
	id   int
	text string
	kind noteKind
}

type dismissNoteMsg struct{ id int }

// notify shows text in the banner and schedules its dismissal. A newer
// notification outlives the timers of older ones.
func (m *Model) notify(text string, kind noteKind) tea.Cmd {
	if text == "" {
		return nil
	}
	m.noteSeq++
	id := m.noteSeq
	m.note = &notification{id: id, text: text, kind: kind}
	if m.opts.NotificationTTL <= 0 {
		return nil
	}
	return tea.Tick(m.opts.NotificationTTL, func(time.Time) tea.Msg {
		return dismissNoteMsg{id: id}
	})
}
