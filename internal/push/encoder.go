package push

import (
	"encoding/json"
	"maps"
)

// Fixed platform settings.
const (
	AndroidPriorityHigh   = "high"
	AndroidDefaultChannel = "default"
	DefaultSound          = "default"
)

// AndroidBlock holds the Android-specific notification settings.
type AndroidBlock struct {
	Priority  string
	ChannelID string
	Sound     string
	ImageURL  string // Android needs its own image reference; empty when absent
}

// IOSBlock holds the APNs payload settings. ImageURL goes to the platform options, not the alert,
// and MutableContent lets the notification-service extension fetch it.
type IOSBlock struct {
	Sound          string
	MutableContent bool
	ImageURL       string
}

// PlatformPayload is built once per request and consumed once by a gateway adapter.
type PlatformPayload struct {
	Token        string
	Notification Notification
	Data         map[string]string
	Android      AndroidBlock
	IOS          IOSBlock
}

// HasImage reports whether an image is attached.
func (p PlatformPayload) HasImage() bool {
	return p.Notification.ImageURL != ""
}

// Encode projects msg into a PlatformPayload. msg is not modified.
func Encode(msg CanonicalMessage) PlatformPayload {
	return PlatformPayload{
		Token:        msg.Token,
		Notification: msg.Notification,
		Data:         EncodeData(msg),
		Android:      EncodeAndroid(msg),
		IOS:          EncodeIOS(msg),
	}
}

// EncodeData returns a copy of the common data block.
func EncodeData(msg CanonicalMessage) map[string]string {
	data := make(map[string]string, len(msg.Data))
	maps.Copy(data, msg.Data)
	return data
}

func EncodeAndroid(msg CanonicalMessage) AndroidBlock {
	return AndroidBlock{
		Priority:  AndroidPriorityHigh,
		ChannelID: AndroidDefaultChannel,
		Sound:     DefaultSound,
		ImageURL:  msg.Notification.ImageURL,
	}
}

func EncodeIOS(msg CanonicalMessage) IOSBlock {
	return IOSBlock{
		Sound:          DefaultSound,
		MutableContent: true,
		ImageURL:       msg.Notification.ImageURL,
	}
}

// Wire-shaped view used by MarshalJSON. Optional fields are omitted, never null.
type (
	wireNotification struct {
		Title string `json:"title"`
		Body  string `json:"body"`
		Image string `json:"image,omitempty"`
	}
	wireAndroidNotification struct {
		ChannelID string `json:"channel_id"`
		Sound     string `json:"sound"`
		Image     string `json:"image,omitempty"`
	}
	wireAndroid struct {
		Priority     string                  `json:"priority"`
		Notification wireAndroidNotification `json:"notification"`
	}
	wireAps struct {
		Sound          string `json:"sound"`
		MutableContent int    `json:"mutable-content,omitempty"`
	}
	wireAPNSPayload struct {
		Aps wireAps `json:"aps"`
	}
	wireFCMOptions struct {
		Image string `json:"image,omitempty"`
	}
	wireAPNS struct {
		Payload    wireAPNSPayload `json:"payload"`
		FCMOptions *wireFCMOptions `json:"fcm_options,omitempty"`
	}
	wirePayload struct {
		Notification wireNotification  `json:"notification"`
		Data         map[string]string `json:"data"`
		Android      wireAndroid       `json:"android"`
		APNS         wireAPNS          `json:"apns"`
	}
)

// MarshalJSON renders the gateway wire shape without the target token, so payloads can be logged.
func (p PlatformPayload) MarshalJSON() ([]byte, error) {
	w := wirePayload{
		Notification: wireNotification{
			Title: p.Notification.Title,
			Body:  p.Notification.Body,
			Image: p.Notification.ImageURL,
		},
		Data: p.Data,
		Android: wireAndroid{
			Priority: p.Android.Priority,
			Notification: wireAndroidNotification{
				ChannelID: p.Android.ChannelID,
				Sound:     p.Android.Sound,
				Image:     p.Android.ImageURL,
			},
		},
		APNS: wireAPNS{
			Payload: wireAPNSPayload{Aps: wireAps{Sound: p.IOS.Sound}},
		},
	}
	if w.Data == nil {
		w.Data = map[string]string{}
	}
	if p.IOS.MutableContent {
		w.APNS.Payload.Aps.MutableContent = 1
	}
	if p.IOS.ImageURL != "" {
		w.APNS.FCMOptions = &wireFCMOptions{Image: p.IOS.ImageURL}
	}
	return json.Marshal(w)
}
