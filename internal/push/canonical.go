// Package push turns a canonical push request into the platform-specific payload blocks
// understood by the push gateway.
package push

import (
	"strings"

	"notification-dispatch/internal/models"
)

// ClickActionKey is the reserved data key the client app reads to route a tap.
const ClickActionKey = "click_action"

// Notification is the visible part of a push. An empty ImageURL means "no image".
type Notification struct {
	Title    string
	Body     string
	ImageURL string
}

// CanonicalMessage is the channel-neutral form of a NotificationRequest.
// Every Data value is a string.
type CanonicalMessage struct {
	Token        string
	Notification Notification
	Data         map[string]string
}

// BuildCanonical merges title, body, image, click target and custom data into one message.
// It never fails: custom data is coerced with Stringify, and ClickAction overrides any
// click_action already present in Data.
func BuildCanonical(req models.NotificationRequest) CanonicalMessage {
	msg := CanonicalMessage{
		Token: req.Token,
		Notification: Notification{
			Title: req.Title,
			Body:  req.Body,
		},
		Data: StringifyData(req.Data),
	}

	if image := strings.TrimSpace(req.ImageURL); image != "" {
		msg.Notification.ImageURL = image
	}
	if click := strings.TrimSpace(req.ClickAction); click != "" {
		msg.Data[ClickActionKey] = click
	}
	return msg
}
