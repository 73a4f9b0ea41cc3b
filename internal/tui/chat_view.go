package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbletea"

	"cli-chat/internal/app"
)

// chatView renders one room's thread. Navigating away does not cancel a
// pending reply; only room deletion and logout do.
type chatView struct {
	roomID string

	input     textarea.Model
	img       textinput.Model
	attaching bool
	imageURL  string

	spin  spinner.Model
	width int
}

func newChatView() chatView {
	ta := textarea.New()
	ta.Placeholder = "Type your message..."
	ta.CharLimit = 8000
	ta.SetWidth(76)
	ta.SetHeight(3)
	ta.Prompt = "▍ "

	img := textinput.New()
	img.Placeholder = "https://example.com/image.png"
	img.Prompt = ""

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return chatView{input: ta, img: img, spin: sp, width: 80}
}

func (v *chatView) setWidth(w int) {
	v.width = w
	v.input.SetWidth(w - 4)
}

func (v *chatView) open(roomID string) {
	v.roomID = roomID
	v.attaching = false
	v.imageURL = ""
	v.img.SetValue("")
	v.input.Reset()
	v.input.Focus()
}

func (m *Model) updateChat(msg tea.Msg) (tea.Model, tea.Cmd) {
	v := &m.chat

	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.app.Replies.Pending(v.roomID) {
			return m, nil
		}
		var cmd tea.Cmd
		v.spin, cmd = v.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Back):
			if v.attaching {
				v.attaching = false
				v.img.SetValue("")
				v.input.Focus()
				return m, nil
			}
			m.view = viewDashboard
			return m, nil

		case key.Matches(msg, m.keys.Image):
			v.attaching = true
			v.input.Blur()
			v.img.Focus()
			return m, nil

		case key.Matches(msg, m.keys.Enter):
			if v.attaching {
				v.imageURL = strings.TrimSpace(v.img.Value())
				v.attaching = false
				v.img.SetValue("")
				v.input.Focus()
				if v.imageURL != "" {
					return m, m.pushToast(toastSuccess, "Image attached")
				}
				return m, nil
			}
			return m.sendMessage()
		}
	}

	var cmd tea.Cmd
	if v.attaching {
		v.img, cmd = v.img.Update(msg)
	} else {
		v.input, cmd = v.input.Update(msg)
	}
	return m, cmd
}

func (m *Model) sendMessage() (tea.Model, tea.Cmd) {
	v := &m.chat
	text := strings.TrimSpace(v.input.Value())
	imageURL := v.imageURL
	if text == "" && imageURL == "" {
		return m, nil
	}
	v.input.Reset()
	v.imageURL = ""

	m.app.Replies.Send(v.roomID, text, imageURL)
	cmds := []tea.Cmd{m.pushToast(toastSuccess, "Message sent")}
	if m.app.Replies.Pending(v.roomID) {
		cmds = append(cmds, v.spin.Tick)
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) viewChat() string {
	v := &m.chat
	t := m.theme
	var b strings.Builder

	title := "Chatroom"
	if room, ok := m.app.Store.Room(v.roomID); ok {
		title = room.Title
	}
	b.WriteString(t.Muted.Render(title))
	b.WriteString("\n\n")

	msgs := m.state.Chat.ByRoomID[v.roomID]
	start := 0
	if max := m.chatHistoryLines(); len(msgs) > max {
		start = len(msgs) - max
	}
	for _, msg := range msgs[start:] {
		var who string
		switch msg.Sender {
		case app.SenderUser:
			who = t.RoleYou.Render("You")
		default:
			who = t.RoleAI.Render("Assistant")
		}
		b.WriteString(who + t.Muted.Render(" • "+msg.CreatedAt.Local().Format("15:04:05")))
		b.WriteString("\n")
		if msg.Text != "" {
			b.WriteString(msg.Text)
			b.WriteString("\n")
		}
		if msg.ImageURL != "" {
			b.WriteString(t.Muted.Render("[image] " + msg.ImageURL))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if m.app.Replies.Pending(v.roomID) {
		b.WriteString(v.spin.View() + t.Typing.Render("Assistant is typing..."))
		b.WriteString("\n")
	}

	if v.attaching {
		b.WriteString(t.FieldLabel.Render("Image URL"))
		b.WriteString("\n")
		b.WriteString(t.InputBox.Render(v.img.View()))
		b.WriteString("\n")
		return b.String()
	}

	if v.imageURL != "" {
		b.WriteString(t.Muted.Render("attached: " + v.imageURL))
		b.WriteString("\n")
	}
	b.WriteString(t.InputBox.Render(v.input.View()))
	return b.String()
}

// chatHistoryLines caps how many messages are rendered so the thread fits a
// small terminal without a scrollback widget.
func (m *Model) chatHistoryLines() int {
	n := (m.height - 10) / 3
	if n < 4 {
		n = 4
	}
	return n
}
