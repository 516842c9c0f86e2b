package flow

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/padup/padup/internal/api"
	"github.com/padup/padup/internal/errors"
)

// SpecialCharacters are the symbols that satisfy the special-character rule.
const SpecialCharacters = "@#$%^&*"

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// PasswordCheck is the result of each password policy rule.
type PasswordCheck struct {
	Length  bool
	Upper   bool
	Lower   bool
	Digit   bool
	Special bool
}

// CheckPassword evaluates the sign-up password policy.
func CheckPassword(pw string) PasswordCheck {
	c := PasswordCheck{Length: utf8.RuneCountInString(pw) >= MinPasswordLength}
	for _, r := range pw {
		switch {
		case r >= 'A' && r <= 'Z':
			c.Upper = true
		case r >= 'a' && r <= 'z':
			c.Lower = true
		case r >= '0' && r <= '9':
			c.Digit = true
		case strings.ContainsRune(SpecialCharacters, r):
			c.Special = true
		}
	}
	return c
}

// OK reports whether every rule holds.
func (c PasswordCheck) OK() bool {
	return c.Length && c.Upper && c.Lower && c.Digit && c.Special
}

// Missing describes the rules that do not hold.
func (c PasswordCheck) Missing() []string {
	var out []string
	if !c.Length {
		out = append(out, "at least 8 characters")
	}
	if !c.Upper {
		out = append(out, "an uppercase letter")
	}
	if !c.Lower {
		out = append(out, "a lowercase letter")
	}
	if !c.Digit {
		out = append(out, "a number")
	}
	if !c.Special {
		out = append(out, "one of "+SpecialCharacters)
	}
	return out
}

// Signup creates an account.
type Signup struct {
	api AuthAPI
	env Env
	sub Submitter
}

func NewSignup(a AuthAPI, env Env) *Signup {
	return &Signup{api: a, env: env}
}

// State returns the submission state.
func (s *Signup) State() State {
	return s.sub.State()
}

// Submit checks the password policy and confirmation, then creates the
// account. It returns the server's confirmation message.
func (s *Signup) Submit(ctx context.Context, req api.SignupRequest) (string, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" {
		return "", invalid(errors.ErrCodeValidationRequired, "Name and email are required", "account")
	}
	if check := CheckPassword(req.Password); !check.OK() {
		return "", invalid(errors.ErrCodeValidationPassword, "Password does not meet requirements", "password", check.Missing()...)
	}
	if req.Password != req.ConfirmPassword {
		return "", invalid(errors.ErrCodeValidationMismatch, "Passwords do not match", "confirmPassword")
	}

	var msg string
	err := s.env.run(ctx, &s.sub, "signup", func(ctx context.Context) error {
		var err error
		msg, err = s.api.Signup(ctx, req)
		if err != nil {
			return failure(err, "Signup failed")
		}
		return nil
	})
	return msg, err
}
