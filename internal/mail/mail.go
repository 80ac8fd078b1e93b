// Package mail composes transactional emails and hands them to a delivery provider.
package mail

import (
	"context"
	"errors"
	"html"
	netmail "net/mail"
	"strings"
)

var (
	ErrNoRecipient = errors.New("mail: recipient is required")
	ErrNoSubject   = errors.New("mail: subject is required")
	ErrNoContent   = errors.New("mail: text or html body is required")
)

// Sender delivers one message. Implementations return *models.DeliveryError on provider failure.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Message is a single outbound email. FromName/From come from configuration, never from the caller.
type Message struct {
	FromName string
	From     string
	To       string
	Subject  string
	Text     string
	HTML     string
}

func (m Message) Validate() error {
	switch {
	case strings.TrimSpace(m.To) == "":
		return ErrNoRecipient
	case strings.TrimSpace(m.Subject) == "":
		return ErrNoSubject
	case m.Text == "" && m.HTML == "":
		return ErrNoContent
	}
	return nil
}

// FromHeader renders the sender as `"Name" <address>`.
func (m Message) FromHeader() string {
	return (&netmail.Address{Name: m.FromName, Address: m.From}).String()
}

// Sender identity fixed at startup.
type Identity struct {
	Name    string
	Address string
}

// NewMessage builds a message from the configured sender identity.
func (id Identity) NewMessage(to, subject, text, htmlBody string) Message {
	return Message{
		FromName: id.Name,
		From:     id.Address,
		To:       to,
		Subject:  subject,
		Text:     text,
		HTML:     htmlBody,
	}
}

// NewTextMessage builds a message from plain text, deriving the HTML part with TextToHTML.
func (id Identity) NewTextMessage(to, subject, text string) Message {
	return id.NewMessage(to, subject, text, TextToHTML(text))
}

var lineBreaks = strings.NewReplacer("\r\n", "<br/>", "\r", "<br/>", "\n", "<br/>")

// TextToHTML escapes s and turns line breaks into <br/>. No other markup is added.
func TextToHTML(s string) string {
	return lineBreaks.Replace(html.EscapeString(s))
}
