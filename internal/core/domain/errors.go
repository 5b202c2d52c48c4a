package domain

import (
	"errors"
	"strings"
)

var ErrInvalidCredentials = errors.New("incorrect email or password")
var ErrUserExists = errors.New("username is already taken")
var ErrUserNotFound = errors.New("user not found")
var ErrTooManyAttempts = errors.New("too many login attempts")
var ErrInvalidToken = errors.New("invalid token")

// RuleViolation identifies a single registration rule a request failed.
type RuleViolation struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// PasswordPolicyError enumerates every password rule the candidate
// password violated, so the caller can report them all at once.
type PasswordPolicyError struct {
	Violations []RuleViolation
}

func (e *PasswordPolicyError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Description)
	}
	return "password policy: " + strings.Join(msgs, "; ")
}
