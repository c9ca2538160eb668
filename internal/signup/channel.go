package signup

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"marketplace/internal/client"
	"marketplace/internal/notify"
	"marketplace/internal/pkg/phone"
	"marketplace/internal/pkg/validator"
)

const CodeLength = 6

type State int

const (
	Idle State = iota
	CodeRequested
	CodeSent
	Verifying
	Verified
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case CodeRequested:
		return "code_requested"
	case CodeSent:
		return "code_sent"
	case Verifying:
		return "verifying"
	case Verified:
		return "verified"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrNotReady is returned when an action is not allowed in the current
// state, e.g. Verify before a code was sent.
var ErrNotReady = errors.New("action not available right now")

// ErrStale means the contact value was edited while a request was in
// flight; its result was dropped.
var ErrStale = errors.New("contact changed during the request")

type VerificationAPI interface {
	SendCode(ctx context.Context, ch client.Channel, target string) (*client.SendCodeResult, error)
	VerifyCode(ctx context.Context, ch client.Channel, target, code string) error
}

// Channel verifies one contact value (an email or a phone number). It is
// safe for concurrent use; no lock is held during a request.
type Channel struct {
	kind   client.Channel
	api    VerificationAPI
	notify notify.Notifier

	mu    sync.Mutex
	value string
	code  string
	state State
	// gen changes on every contact edit so in-flight results can be
	// recognized as stale.
	gen uint64
}

func newChannel(kind client.Channel, api VerificationAPI, n notify.Notifier) *Channel {
	return &Channel{kind: kind, api: api, notify: n}
}

func (c *Channel) Kind() client.Channel { return c.kind }

func (c *Channel) Value() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// SetValue edits the contact. Any real change resets the channel to Idle,
// dropping the code and the verified flag.
func (c *Channel) SetValue(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v == c.value {
		return
	}
	c.value = v
	c.code = ""
	c.state = Idle
	c.gen++
}

func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Channel) Verified() bool { return c.State() == Verified }

func (c *Channel) Code() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.code
}

// SetCode keeps digits only, truncated to six. The input is enabled only
// once a code was sent.
func (c *Channel) SetCode(in string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != CodeSent {
		return
	}
	c.code = digits(in, CodeLength)
}

func (c *Channel) CanRequest() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return (c.state == Idle || c.state == CodeSent) && c.validate(c.value) == nil
}

func (c *Channel) CanVerify() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == CodeSent && len(c.code) == CodeLength
}

// RequestCode sends (or resends) a code. When the server could not deliver
// it, the returned code is shown through an info notification and
// prefilled.
func (c *Channel) RequestCode(ctx context.Context) error {
	c.mu.Lock()
	if c.state != Idle && c.state != CodeSent {
		c.mu.Unlock()
		return ErrNotReady
	}
	if err := c.validate(c.value); err != nil {
		c.mu.Unlock()
		notify.Error(c.notify, err.Error())
		return err
	}
	target, gen := strings.TrimSpace(c.value), c.gen
	c.state = CodeRequested
	c.mu.Unlock()

	res, err := c.api.SendCode(ctx, c.kind, target)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return ErrStale
	}
	if err != nil {
		c.state = Idle
		notify.Error(c.notify, client.Message(err))
		return fmt.Errorf("send %s code: %w", c.kind, err)
	}

	c.state = CodeSent
	c.code = ""
	if res.IsFallback() {
		c.code = digits(res.Code, CodeLength)
		notify.Info(c.notify, fmt.Sprintf("We could not deliver the message. Your verification code is %s", res.Code))
	} else {
		notify.Success(c.notify, fmt.Sprintf("Verification code sent to your %s", c.label()))
	}
	return nil
}

// Verify submits the entered code. Failure returns to CodeSent so the user
// can retry or resend.
func (c *Channel) Verify(ctx context.Context) error {
	c.mu.Lock()
	if c.state != CodeSent || len(c.code) != CodeLength {
		c.mu.Unlock()
		return ErrNotReady
	}
	target, code, gen := strings.TrimSpace(c.value), c.code, c.gen
	c.state = Verifying
	c.mu.Unlock()

	err := c.api.VerifyCode(ctx, c.kind, target, code)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return ErrStale
	}
	if err != nil {
		c.state = CodeSent
		notify.Error(c.notify, client.Message(err))
		return fmt.Errorf("verify %s code: %w", c.kind, err)
	}

	c.state = Verified
	notify.Success(c.notify, fmt.Sprintf("%s verified", capitalize(c.label())))
	return nil
}

func (c *Channel) validate(v string) error {
	v = strings.TrimSpace(v)
	switch c.kind {
	case client.ChannelPhone:
		if !phone.IsValid(v) {
			return &ValidationError{Field: "phone", Message: "Enter a valid Moroccan mobile number (06/07...)"}
		}
	default:
		if !validator.Var(v, "required,email") {
			return &ValidationError{Field: "email", Message: "Enter a valid email address"}
		}
	}
	return nil
}

func (c *Channel) label() string {
	if c.kind == client.ChannelPhone {
		return "WhatsApp number"
	}
	return "email"
}

func digits(s string, max int) string {
	var b strings.Builder
	for _, r := range s {
		if b.Len() == max {
			break
		}
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
