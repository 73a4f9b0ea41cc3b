package tui

import (
	"strings"

	"cli-chat/internal/app"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbletea"
)

// dashView lists rooms most-recently-created first and owns the delete
// confirmation. The "are you sure" interaction lives here, not in the store.
type dashView struct {
	cursor        int
	confirmDelete string // roomID awaiting confirmation, empty when none
}

func newDashView() dashView {
	return dashView{}
}

func (m *Model) updateDashboard(msg tea.Msg) (tea.Model, tea.Cmd) {
	v := &m.dash
	rooms := m.state.Chat.Rooms
	if v.cursor >= len(rooms) {
		v.cursor = len(rooms) - 1
	}
	if v.cursor < 0 {
		v.cursor = 0
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if v.confirmDelete != "" {
		switch keyMsg.String() {
		case "y":
			id := v.confirmDelete
			v.confirmDelete = ""
			m.app.Replies.CancelRoom(id)
			m.app.Store.DeleteRoom(id)
			return m, m.pushToast(toastSuccess, "Chat deleted")
		default:
			v.confirmDelete = ""
			return m, nil
		}
	}

	switch {
	case key.Matches(keyMsg, m.keys.Up):
		if v.cursor > 0 {
			v.cursor--
		}
	case key.Matches(keyMsg, m.keys.Down):
		if v.cursor < len(rooms)-1 {
			v.cursor++
		}
	case key.Matches(keyMsg, m.keys.Enter):
		if len(rooms) > 0 {
			return m.openRoom(rooms[v.cursor].ID)
		}
	case key.Matches(keyMsg, m.keys.New):
		room := app.NewChatroom("New chat")
		m.app.Store.CreateRoom(room)
		v.cursor = 0
		return m.openRoom(room.ID)
	case key.Matches(keyMsg, m.keys.Del):
		if len(rooms) > 0 {
			v.confirmDelete = rooms[v.cursor].ID
		}
	case key.Matches(keyMsg, m.keys.Theme):
		m.toggleTheme()
	case key.Matches(keyMsg, m.keys.Out):
		m.auth.flow.Cancel()
		m.app.Replies.CancelAll()
		m.app.Store.Logout()
		return m, m.pushToast(toastSuccess, "Logged out")
	}
	return m, nil
}

// openRoom navigates to the chat view, seeding an empty room with the
// assistant's welcome message.
func (m *Model) openRoom(id string) (tea.Model, tea.Cmd) {
	if _, ok := m.app.Store.Room(id); !ok {
		m.view = viewDashboard
		return m, nil
	}
	if len(m.app.Store.RoomMessages(id)) == 0 {
		m.app.Store.AddMessage(id, app.NewMessage(id, app.SenderAssistant, "Hello! Ask me anything.", ""))
	}
	m.chat.open(id)
	m.view = viewChat
	return m, m.chat.spin.Tick
}

func (m *Model) viewDashboard() string {
	v := &m.dash
	t := m.theme
	rooms := m.state.Chat.Rooms
	var b strings.Builder

	b.WriteString(t.TopBarTitle.Render("Your chats"))
	b.WriteString("\n\n")

	if len(rooms) == 0 {
		b.WriteString(t.Muted.Render("No chats yet. Press n to start one."))
		b.WriteString("\n")
		return b.String()
	}

	for i, r := range rooms {
		line := r.Title + t.Muted.Render("  "+r.CreatedAt.Local().Format("Jan 2 15:04"))
		if i == v.cursor {
			line = t.Selected.Render("> ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if v.confirmDelete != "" {
		b.WriteString("\n")
		b.WriteString(t.FieldError.Render("Delete this chat? y/n"))
		b.WriteString("\n")
	}
	return b.String()
}
