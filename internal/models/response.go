package models

// ErrorResponse is the uniform failure envelope.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// PushResponse is returned by the push dispatch endpoint.
type PushResponse struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId"`
}

// EmailResponse is returned by both email endpoints. Email is only set for the lookup variant.
type EmailResponse struct {
	Success bool   `json:"success"`
	UID     string `json:"uid"`
	Email   string `json:"email,omitempty"`
	Message string `json:"message"`
}

const EmailSentMessage = "Email sent successfully"
