package app

import (
	"regexp"
	"strings"
	"sync"
	"time"
)

// FieldError is a field-level validation message, surfaced inline next to
// the offending input. Validation failures cause no state transition.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string { return e.Field + ": " + e.Message }

var (
	digitsOnly = regexp.MustCompile(`^\d+$`)
	otpFormat  = regexp.MustCompile(`^\d{6}$`)
)

func ValidatePhone(countryCode, phone string) []FieldError {
	var errs []FieldError
	if strings.TrimSpace(countryCode) == "" {
		errs = append(errs, FieldError{Field: "countryCode", Message: "Required"})
	}
	switch {
	case len(phone) < 7:
		errs = append(errs, FieldError{Field: "phone", Message: "Too short"})
	case len(phone) > 15:
		errs = append(errs, FieldError{Field: "phone", Message: "Too long"})
	case !digitsOnly.MatchString(phone):
		errs = append(errs, FieldError{Field: "phone", Message: "Digits only"})
	}
	return errs
}

// ValidateOTP checks the 6-digit format only. There is no server-issued code
// to compare against; any well-formed code verifies.
func ValidateOTP(code string) []FieldError {
	if !otpFormat.MatchString(code) {
		return []FieldError{{Field: "otp", Message: "Enter 6 digits"}}
	}
	return nil
}

// AutofillCode is the fixed demo code prefilled after the countdown. It is
// never auto-submitted.
const AutofillCode = "123321"

type OTPConfig struct {
	SendDelay     time.Duration // simulated code delivery
	VerifyDelay   time.Duration // simulated verification round-trip
	AutofillAfter time.Duration // countdown until the demo code is prefilled
}

func DefaultOTPConfig() OTPConfig {
	return OTPConfig{
		SendDelay:     time.Second,
		VerifyDelay:   time.Second,
		AutofillAfter: 5 * time.Second,
	}
}

// OTPCallbacks deliver flow progress to the UI. Nil callbacks are skipped.
// Callbacks run on timer goroutines; bridge them to the UI loop yourself.
type OTPCallbacks struct {
	Sent      func(countryCode, phone string)
	Countdown func(secondsLeft int)
	Autofill  func(code string)
	Verified  func(user AuthUser)
}

// OTPFlow owns the simulated sign-in timers: send delay, autofill countdown
// and verification delay. Every timer is cancelable; Cancel is called on
// back-navigation, logout and view teardown so nothing outlives its screen.
type OTPFlow struct {
	cfg OTPConfig
	cb  OTPCallbacks

	mu     sync.Mutex
	timers []*time.Timer
	cc     string
	phone  string
}

func NewOTPFlow(cfg OTPConfig, cb OTPCallbacks) *OTPFlow {
	def := DefaultOTPConfig()
	if cfg.SendDelay <= 0 {
		cfg.SendDelay = def.SendDelay
	}
	if cfg.VerifyDelay <= 0 {
		cfg.VerifyDelay = def.VerifyDelay
	}
	if cfg.AutofillAfter <= 0 {
		cfg.AutofillAfter = def.AutofillAfter
	}
	return &OTPFlow{cfg: cfg, cb: cb}
}

// SendCode validates the form and, when valid, simulates sending a code:
// after SendDelay the Sent callback fires and the autofill countdown starts.
func (f *OTPFlow) SendCode(countryCode, phone string) []FieldError {
	if errs := ValidatePhone(countryCode, phone); len(errs) > 0 {
		return errs
	}
	f.mu.Lock()
	f.cc, f.phone = countryCode, phone
	f.mu.Unlock()

	f.after(f.cfg.SendDelay, func() {
		if f.cb.Sent != nil {
			f.cb.Sent(countryCode, phone)
		}
		f.startCountdown()
	})
	return nil
}

func (f *OTPFlow) startCountdown() {
	total := int(f.cfg.AutofillAfter / time.Second)
	if total < 1 {
		total = 1
	}
	tick := f.cfg.AutofillAfter / time.Duration(total)
	for i := 1; i <= total; i++ {
		left := total - i
		f.after(time.Duration(i)*tick, func() {
			if f.cb.Countdown != nil {
				f.cb.Countdown(left)
			}
			if left == 0 && f.cb.Autofill != nil {
				f.cb.Autofill(AutofillCode)
			}
		})
	}
}

// Verify validates the code format and, when valid, simulates verification:
// after VerifyDelay the Verified callback fires with the identity captured
// by the last SendCode.
func (f *OTPFlow) Verify(code string) []FieldError {
	if errs := ValidateOTP(code); len(errs) > 0 {
		return errs
	}
	f.mu.Lock()
	user := AuthUser{CountryCode: f.cc, Phone: f.phone}
	f.mu.Unlock()

	f.after(f.cfg.VerifyDelay, func() {
		if f.cb.Verified != nil {
			f.cb.Verified(user)
		}
	})
	return nil
}

// Cancel stops every pending timer. Safe to call repeatedly.
func (f *OTPFlow) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.timers {
		t.Stop()
	}
	f.timers = nil
}

func (f *OTPFlow) after(d time.Duration, fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.timers = append(f.timers, time.AfterFunc(d, fn))
}
