package models

// NotificationRequest is the canonical "send this push" request.
// Data values may be of any JSON type; they are coerced to strings before encoding.
type NotificationRequest struct {
	Token       string         `json:"token" validate:"required"`
	Title       string         `json:"title" validate:"required"`
	Body        string         `json:"body" validate:"required"`
	ImageURL    string         `json:"imageUrl,omitempty"`
	ClickAction string         `json:"clickAction,omitempty"`
	Data        map[string]any `json:"data,omitempty"`
}
