package tui

import (
	"fmt"
	"strings"

	"cli-chat/internal/app"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbletea"
)

type authStep int

const (
	stepPhone authStep = iota
	stepOTP
)

type authField int

const (
	fieldCountry authField = iota
	fieldPhone
)

// authView is the phone → OTP sign-in screen. Its OTP flow owns every
// timer; Back and teardown cancel them so nothing outlives the screen.
type authView struct {
	step  authStep
	field authField

	countries []app.CountryDialCode
	cursor    int

	phone textinput.Model
	otp   textinput.Model

	errors    map[string]string
	sending   bool
	verifying bool
	countdown int // seconds until autofill; -1 when inactive

	flow  *app.OTPFlow
	width int
}

func newAuthView(m *Model) authView {
	phone := textinput.New()
	phone.Placeholder = "1234567890"
	phone.CharLimit = 15
	phone.Prompt = ""

	otp := textinput.New()
	otp.Placeholder = "••••••"
	otp.CharLimit = 6
	otp.Prompt = ""

	av := authView{
		phone:     phone,
		otp:       otp,
		errors:    map[string]string{},
		countdown: -1,
		width:     80,
	}
	av.flow = app.NewOTPFlow(m.app.Config.OTPConfig(), app.OTPCallbacks{
		Sent:      func(cc, p string) { m.events <- otpSentMsg{countryCode: cc, phone: p} },
		Countdown: func(left int) { m.events <- otpCountdownMsg{left: left} },
		Autofill:  func(code string) { m.events <- otpAutofillMsg{code: code} },
		Verified:  func(u app.AuthUser) { m.events <- otpVerifiedMsg{user: u} },
	})
	return av
}

func (v *authView) setWidth(w int) { v.width = w }

func (v *authView) selectedCountry() (app.CountryDialCode, bool) {
	if len(v.countries) == 0 || v.cursor < 0 || v.cursor >= len(v.countries) {
		return app.CountryDialCode{}, false
	}
	return v.countries[v.cursor], true
}

func (m *Model) updateAuth(msg tea.Msg) (tea.Model, tea.Cmd) {
	v := &m.auth

	switch msg := msg.(type) {
	case otpSentMsg:
		v.sending = false
		v.step = stepOTP
		v.countdown = m.app.Config.OTPCountdownSec
		v.otp.Focus()
		return m, m.pushToast(toastSuccess, fmt.Sprintf("OTP sent to %s %s", msg.countryCode, msg.phone))

	case otpCountdownMsg:
		v.countdown = msg.left
		return m, nil

	case otpAutofillMsg:
		v.otp.SetValue(msg.code)
		v.countdown = 0
		return m, nil

	case otpVerifiedMsg:
		v.verifying = false
		v.flow.Cancel()
		m.app.Store.LoginSucceeded(msg.user)
		m.view = viewDashboard
		return m, m.pushToast(toastSuccess, "Logged in successfully")

	case tea.KeyMsg:
		if v.step == stepPhone {
			return m.updateAuthPhone(msg)
		}
		return m.updateAuthOTP(msg)
	}
	return m, nil
}

func (m *Model) updateAuthPhone(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v := &m.auth
	switch {
	case key.Matches(msg, m.keys.Tab):
		if v.field == fieldCountry {
			v.field = fieldPhone
			v.phone.Focus()
		} else {
			v.field = fieldCountry
			v.phone.Blur()
		}
		return m, nil

	case key.Matches(msg, m.keys.Up) && v.field == fieldCountry:
		if v.cursor > 0 {
			v.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down) && v.field == fieldCountry:
		if v.cursor < len(v.countries)-1 {
			v.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Enter):
		cc := ""
		if c, ok := v.selectedCountry(); ok {
			cc = c.CallingCode
		}
		v.errors = map[string]string{}
		if errs := v.flow.SendCode(cc, v.phone.Value()); len(errs) > 0 {
			for _, e := range errs {
				v.errors[e.Field] = e.Message
			}
			return m, nil
		}
		v.sending = true
		return m, nil
	}

	if v.field == fieldPhone {
		var cmd tea.Cmd
		v.phone, cmd = v.phone.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) updateAuthOTP(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v := &m.auth
	switch {
	case key.Matches(msg, m.keys.Back):
		v.flow.Cancel()
		v.countdown = -1
		v.verifying = false
		v.otp.SetValue("")
		v.step = stepPhone
		return m, nil

	case key.Matches(msg, m.keys.Enter):
		v.errors = map[string]string{}
		if errs := v.flow.Verify(v.otp.Value()); len(errs) > 0 {
			for _, e := range errs {
				v.errors[e.Field] = e.Message
			}
			return m, nil
		}
		v.verifying = true
		return m, nil
	}

	var cmd tea.Cmd
	v.otp, cmd = v.otp.Update(msg)
	return m, cmd
}

const countryWindow = 7

func (m *Model) viewAuth() string {
	v := &m.auth
	t := m.theme
	var b strings.Builder

	b.WriteString(t.TopBarTitle.Render("Sign in"))
	b.WriteString("\n")
	b.WriteString(t.Muted.Render("OTP-based login with country code."))
	b.WriteString("\n\n")

	if v.step == stepPhone {
		b.WriteString(t.FieldLabel.Render("Country code"))
		b.WriteString("\n")
		if len(v.countries) == 0 {
			b.WriteString(t.Muted.Render("  (no countries available)"))
			b.WriteString("\n")
		} else {
			start := v.cursor - countryWindow/2
			if start < 0 {
				start = 0
			}
			end := start + countryWindow
			if end > len(v.countries) {
				end = len(v.countries)
				if start = end - countryWindow; start < 0 {
					start = 0
				}
			}
			for i := start; i < end; i++ {
				c := v.countries[i]
				line := fmt.Sprintf("%s (%s)", c.Name, c.CallingCode)
				if i == v.cursor {
					line = t.Selected.Render("> " + line)
				} else {
					line = "  " + line
				}
				b.WriteString(line)
				b.WriteString("\n")
			}
		}
		if msg, ok := v.errors["countryCode"]; ok {
			b.WriteString(t.FieldError.Render(msg))
			b.WriteString("\n")
		}

		b.WriteString("\n")
		b.WriteString(t.FieldLabel.Render("Phone number"))
		b.WriteString("\n")
		b.WriteString(t.InputBox.Render(v.phone.View()))
		b.WriteString("\n")
		if msg, ok := v.errors["phone"]; ok {
			b.WriteString(t.FieldError.Render(msg))
			b.WriteString("\n")
		}
		if v.sending {
			b.WriteString(t.Muted.Render("Sending OTP..."))
			b.WriteString("\n")
		}
		return b.String()
	}

	b.WriteString(t.FieldLabel.Render("Enter OTP"))
	b.WriteString("\n")
	b.WriteString(t.InputBox.Render(v.otp.View()))
	b.WriteString("\n")
	if msg, ok := v.errors["otp"]; ok {
		b.WriteString(t.FieldError.Render(msg))
		b.WriteString("\n")
	}
	switch {
	case v.verifying:
		b.WriteString(t.Muted.Render("Verifying..."))
		b.WriteString("\n")
	case v.countdown > 0:
		b.WriteString(t.Muted.Render(fmt.Sprintf("Auto-fill in %ds", v.countdown)))
		b.WriteString("\n")
	case v.countdown == 0:
		b.WriteString(t.Muted.Render("Code auto-filled."))
		b.WriteString("\n")
	}
	return b.String()
}
