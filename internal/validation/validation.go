// Package validation checks channel-specific mandatory fields before any external call.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"notification-dispatch/internal/models"

	"github.com/go-playground/validator/v10"
)

// validate is safe for concurrent use; it caches struct metadata.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their wire names (json body or query key).
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, key := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})
	return v
}

// Push validates a push request: token, title and body must be non-blank.
func Push(req models.NotificationRequest) error {
	req.Token = strings.TrimSpace(req.Token)
	req.Title = strings.TrimSpace(req.Title)
	req.Body = strings.TrimSpace(req.Body)
	return check(req)
}

// CredentialEmail validates the bearer-authenticated email body: subject and at least one of text/html.
// The recipient is checked later, because it may come from the verified credential.
func CredentialEmail(req models.CredentialEmailRequest) error {
	req.Subject = strings.TrimSpace(req.Subject)
	req.Text = strings.TrimSpace(req.Text)
	req.HTML = strings.TrimSpace(req.HTML)
	return check(req)
}

// LookupEmail validates the uid-lookup email query.
func LookupEmail(req models.LookupEmailRequest) error {
	req.UID = strings.TrimSpace(req.UID)
	req.Title = strings.TrimSpace(req.Title)
	req.Content = strings.TrimSpace(req.Content)
	return check(req)
}

func check(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &models.ValidationError{Err: err}
	}

	fields := make([]string, 0, len(fieldErrs))
	seen := make(map[string]struct{}, len(fieldErrs))
	for _, fe := range fieldErrs {
		name := fe.Field()
		key := name
		if fe.Tag() == "required_without" {
			other := strings.ToLower(fe.Param())
			name = name + " or " + other
			key = pairKey(fe.Field(), other)
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		fields = append(fields, name)
	}
	return models.NewMissingFieldsError(fields...)
}

func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}
