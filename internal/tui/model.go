package tui

import (
	"context"
	"time"

	"cli-chat/internal/app"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

type view int

const (
	viewAuth view = iota
	viewDashboard
	viewChat
)

// Messages bridged from app-side callbacks and commands into the UI loop.
type (
	stateChangedMsg struct{ state app.RootState }
	countriesMsg    struct{ list []app.CountryDialCode }
	otpSentMsg      struct{ countryCode, phone string }
	otpCountdownMsg struct{ left int }
	otpAutofillMsg  struct{ code string }
	otpVerifiedMsg  struct{ user app.AuthUser }
	replyTickMsg    struct{}
)

type keyMap struct {
	Quit  key.Binding
	Back  key.Binding
	Enter key.Binding
	Tab   key.Binding
	Up    key.Binding
	Down  key.Binding
	New   key.Binding
	Del   key.Binding
	Theme key.Binding
	Out   key.Binding
	Image key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Quit:  key.NewBinding(key.WithKeys("ctrl+c")),
		Back:  key.NewBinding(key.WithKeys("esc")),
		Enter: key.NewBinding(key.WithKeys("enter")),
		Tab:   key.NewBinding(key.WithKeys("tab")),
		Up:    key.NewBinding(key.WithKeys("up")),
		Down:  key.NewBinding(key.WithKeys("down")),
		New:   key.NewBinding(key.WithKeys("n")),
		Del:   key.NewBinding(key.WithKeys("d")),
		Theme: key.NewBinding(key.WithKeys("t")),
		Out:   key.NewBinding(key.WithKeys("l")),
		Image: key.NewBinding(key.WithKeys("ctrl+i")),
	}
}

// Model is the root TUI model. It routes between the auth, dashboard and
// chat views with an auth guard: signed-out users always land on the auth
// view, and an unknown or deleted room falls back to the dashboard.
type Model struct {
	app   *app.Application
	theme Theme
	keys  keyMap

	// events carries app-side callback results (store subscription, OTP
	// flow timers) into the bubbletea loop.
	events chan tea.Msg

	view   view
	width  int
	height int
	state  app.RootState

	auth authView
	dash dashView
	chat chatView

	toasts   []toast
	toastSeq int
}

func New(application *app.Application) *Model {
	m := &Model{
		app:    application,
		theme:  NewTheme(ResolveThemeMode(application)),
		keys:   newKeyMap(),
		events: make(chan tea.Msg, 64),
		width:  80,
		height: 24,
		state:  application.Store.Snapshot(),
	}
	m.auth = newAuthView(m)
	m.dash = newDashView()
	m.chat = newChatView()

	application.Store.Subscribe(func(st app.RootState) {
		m.events <- stateChangedMsg{state: st}
	})

	if m.state.Auth.Authenticated() {
		m.view = viewDashboard
	} else {
		m.view = viewAuth
	}
	return m
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.listenEvents(), m.fetchCountries())
}

// listenEvents re-arms the bridge: one event per command, delivered as an
// ordinary tea.Msg.
func (m *Model) listenEvents() tea.Cmd {
	return func() tea.Msg {
		return <-m.events
	}
}

func (m *Model) fetchCountries() tea.Cmd {
	url := m.app.Config.CountriesURL
	log := m.app.Logger
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		list, err := app.FetchCountryDialCodes(ctx, nil, url)
		if err != nil {
			// Failure mode is an empty selector, nothing louder.
			log.Warn("country lookup failed", zap.Error(err))
			return countriesMsg{}
		}
		return countriesMsg{list: list}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.auth.setWidth(msg.Width)
		m.chat.setWidth(msg.Width)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.auth.flow.Cancel()
			m.app.Replies.CancelAll()
			return m, tea.Quit
		}

	case stateChangedMsg:
		m.state = msg.state
		cmd := m.guardRoute()
		return m, tea.Batch(m.listenEvents(), cmd)

	case countriesMsg:
		m.auth.countries = msg.list
		return m, nil

	case otpSentMsg, otpCountdownMsg, otpAutofillMsg, otpVerifiedMsg:
		model, cmd := m.updateAuth(msg)
		return model, tea.Batch(m.listenEvents(), cmd)

	case toastExpiredMsg:
		m.expireToast(msg.id)
		return m, nil
	}

	switch m.view {
	case viewAuth:
		return m.updateAuth(msg)
	case viewDashboard:
		return m.updateDashboard(msg)
	default:
		return m.updateChat(msg)
	}
}

// guardRoute enforces the routing contract after a state change: signed-out
// users go to the auth view, and a chat view on a deleted room falls back to
// the dashboard.
func (m *Model) guardRoute() tea.Cmd {
	if !m.state.Auth.Authenticated() {
		if m.view != viewAuth {
			m.auth = newAuthView(m)
			m.view = viewAuth
			return m.fetchCountries()
		}
		return nil
	}
	if m.view == viewChat {
		if _, ok := m.app.Store.Room(m.chat.roomID); !ok {
			m.view = viewDashboard
		}
	}
	return nil
}

func (m *Model) View() string {
	var body string
	switch m.view {
	case viewAuth:
		body = m.viewAuth()
	case viewDashboard:
		body = m.viewDashboard()
	default:
		body = m.viewChat()
	}

	out := m.renderHeader() + "\n" + body
	if t := m.renderToasts(); t != "" {
		out += "\n" + t
	}
	return out + "\n" + m.renderFooter()
}

func (m *Model) renderHeader() string {
	title := m.theme.TopBarTitle.Render("gchat")
	meta := ""
	if u := m.state.Auth.User; u != nil {
		meta = m.theme.TopBar.Render("  " + u.CountryCode + " " + u.Phone)
	}
	return title + meta
}

func (m *Model) renderFooter() string {
	var hints string
	switch m.view {
	case viewAuth:
		hints = "tab switch field • enter submit • esc back • ctrl+c quit"
	case viewDashboard:
		hints = "↑/↓ select • enter open • n new • d delete • t theme • l logout • ctrl+c quit"
	default:
		hints = "enter send • ctrl+i attach image • esc rooms • ctrl+c quit"
	}
	return m.theme.Footer.Render(hints)
}

// toggleTheme flips and persists the preference.
func (m *Model) toggleTheme() {
	mode := m.theme.Mode.Toggle()
	m.app.SaveThemePreference(string(mode))
	m.theme = NewTheme(mode)
}
