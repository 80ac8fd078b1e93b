package models

// CredentialEmailRequest is the body of the bearer-authenticated email endpoint.
type CredentialEmailRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject" validate:"required"`
	Text    string `json:"text" validate:"required_without=HTML"`
	HTML    string `json:"html" validate:"required_without=Text"`
}

// LookupEmailRequest is the query of the uid-lookup email endpoint.
type LookupEmailRequest struct {
	UID     string `form:"uid" validate:"required"`
	Title   string `form:"title" validate:"required"`
	Content string `form:"content" validate:"required"`
}

// ResolvedIdentity is produced per request by the identity resolver and never cached.
type ResolvedIdentity struct {
	UID   string
	Email string
}
