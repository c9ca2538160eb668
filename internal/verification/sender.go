package verification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"marketplace/internal/logger"
)

// Sender delivers a message to an address (email or E.164 phone number).
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// ConsoleSender writes messages to the log instead of delivering them.
// It is the development default for both channels.
type ConsoleSender struct {
	channel string
}

func NewConsoleSender(channel string) *ConsoleSender {
	return &ConsoleSender{channel: channel}
}

func (s *ConsoleSender) Send(_ context.Context, to, subject, body string) error {
	logger.Info().
		Str("channel", s.channel).
		Str("to", to).
		Str("subject", subject).
		Str("body", body).
		Msg("[DEV-DELIVERY] message not sent")
	return nil
}

// WhatsAppSender posts text messages to a WhatsApp Business style HTTP
// gateway.
type WhatsAppSender struct {
	url    string
	token  string
	client *http.Client
}

func NewWhatsAppSender(url, token string) *WhatsAppSender {
	return &WhatsAppSender{
		url:    url,
		token:  token,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type whatsAppMessage struct {
	MessagingProduct string `json:"messaging_product"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Text             struct {
		Body string `json:"body"`
	} `json:"text"`
}

func (s *WhatsAppSender) Send(ctx context.Context, to, _ string, body string) error {
	msg := whatsAppMessage{MessagingProduct: "whatsapp", To: to, Type: "text"}
	msg.Text.Body = body
	return postJSON(ctx, s.client, s.url, s.token, msg)
}

// WebhookMailer hands emails to an HTTP mail relay.
type WebhookMailer struct {
	url    string
	from   string
	client *http.Client
}

func NewWebhookMailer(url, from string) *WebhookMailer {
	return &WebhookMailer{
		url:    url,
		from:   from,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (m *WebhookMailer) Send(ctx context.Context, to, subject, body string) error {
	return postJSON(ctx, m.client, m.url, "", map[string]string{
		"from":    m.from,
		"to":      to,
		"subject": subject,
		"text":    body,
	})
}

func postJSON(ctx context.Context, client *http.Client, url, token string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}
	return nil
}
