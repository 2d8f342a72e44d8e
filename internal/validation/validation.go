// Package validation holds the format rules for user-supplied credentials and
// post content. Rules accumulate their messages instead of short-circuiting,
// so a caller gets everything that is wrong with the input in one pass.
package validation

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is shared and safe for concurrent use; only Var checks are used.
var validate = validator.New()

const (
	UsernameMinLen = 3
	UsernameMaxLen = 30
	PasswordMinLen = 12
	PasswordMaxLen = 30
)

// UniquenessProbes are the existence lookups the registration rules consult.
// A probe runs only when its field already passed every format rule, so
// garbage input never costs a store round trip.
type UniquenessProbes struct {
	UsernameTaken func(ctx context.Context, username string) (bool, error)
	EmailTaken    func(ctx context.Context, email string) (bool, error)
}

// Registration checks a normalized (trimmed, lowercased) username/email and a
// raw password. It returns the accumulated list of messages; an empty list
// means the input is valid. A non-nil error means a uniqueness probe hit the
// store and failed, which is a store problem, not a validation result.
func Registration(ctx context.Context, username, email, password string, probes UniquenessProbes) ([]string, error) {
	var msgs []string

	usernameFormatOK := true
	if username == "" {
		msgs = append(msgs, "You must provide a username.")
		usernameFormatOK = false
	} else if !isAlphanumeric(username) {
		msgs = append(msgs, "Username can only contain letters and numbers.")
		usernameFormatOK = false
	}
	if username != "" && len(username) < UsernameMinLen {
		msgs = append(msgs, fmt.Sprintf("Username must be at least %d characters.", UsernameMinLen))
		usernameFormatOK = false
	}
	if len(username) > UsernameMaxLen {
		msgs = append(msgs, fmt.Sprintf("Username cannot exceed %d characters.", UsernameMaxLen))
		usernameFormatOK = false
	}

	emailFormatOK := isEmail(email)
	if !emailFormatOK {
		msgs = append(msgs, "You must provide a valid email address.")
	}

	if password == "" {
		msgs = append(msgs, "You must provide a password.")
	}
	if password != "" && len(password) < PasswordMinLen {
		msgs = append(msgs, fmt.Sprintf("Password must be at least %d characters.", PasswordMinLen))
	}
	if len(password) > PasswordMaxLen {
		msgs = append(msgs, fmt.Sprintf("Password cannot exceed %d characters.", PasswordMaxLen))
	}

	if usernameFormatOK && probes.UsernameTaken != nil {
		taken, err := probes.UsernameTaken(ctx, username)
		if err != nil {
			return nil, fmt.Errorf("check username taken: %w", err)
		}
		if taken {
			msgs = append(msgs, "That username is already taken.")
		}
	}

	if emailFormatOK && probes.EmailTaken != nil {
		taken, err := probes.EmailTaken(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("check email taken: %w", err)
		}
		if taken {
			msgs = append(msgs, "That email is already being used.")
		}
	}

	return msgs, nil
}

// PostContent checks a sanitized title and body. Both must be non-empty after
// markup stripping and trimming.
func PostContent(title, body string) []string {
	var msgs []string
	if title == "" {
		msgs = append(msgs, "You must provide a title.")
	}
	if body == "" {
		msgs = append(msgs, "You must provide post content.")
	}
	return msgs
}

func isAlphanumeric(s string) bool {
	return validate.Var(s, "alphanum") == nil
}

func isEmail(s string) bool {
	return validate.Var(s, "required,email") == nil
}
