package tui

import (
	"time"

	"github.com/charmbracelet/bubbletea"
)

// Toasts are the only user-visible failure surface besides inline field
// errors: transient, self-expiring status lines.

const toastTTL = 2500 * time.Millisecond

type toastKind int

const (
	toastSuccess toastKind = iota
	toastError
)

type toast struct {
	id   int
	kind toastKind
	text string
}

type toastExpiredMsg struct{ id int }

func (m *Model) pushToast(kind toastKind, text string) tea.Cmd {
	m.toastSeq++
	id := m.toastSeq
	m.toasts = append(m.toasts, toast{id: id, kind: kind, text: text})
	return tea.Tick(toastTTL, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}

func (m *Model) expireToast(id int) {
	out := m.toasts[:0]
	for _, t := range m.toasts {
		if t.id != id {
			out = append(out, t)
		}
	}
	m.toasts = out
}

func (m *Model) renderToasts() string {
	if len(m.toasts) == 0 {
		return ""
	}
	var line string
	for i, t := range m.toasts {
		if i > 0 {
			line += "  "
		}
		switch t.kind {
		case toastError:
			line += m.theme.ToastError.Render("✗ " + t.text)
		default:
			line += m.theme.ToastSuccess.Render("✓ " + t.text)
		}
	}
	return line
}
