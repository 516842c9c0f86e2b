package api

import (
	"context"
	"encoding/json"

	"github.com/padup/padup/internal/errors"
	"github.com/padup/padup/internal/session"
)

// Login exchanges email and password for a session.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.Post(ctx, "/auth/login", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GoogleLogin exchanges a Google ID token for a session.
func (c *Client) GoogleLogin(ctx context.Context, credential string) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.Post(ctx, "/auth/google", map[string]string{"token": credential}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Signup creates an account and returns the server's message.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (string, error) {
	var out messageResponse
	if err := c.Post(ctx, "/auth/signup", req, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// Me returns the signed-in user.
func (c *Client) Me(ctx context.Context) (*session.User, error) {
	var raw json.RawMessage
	if err := c.Get(ctx, "/auth/me", &raw); err != nil {
		return nil, err
	}

	// Some deployments wrap the profile in {"user": ...}.
	var wrapped struct {
		User *session.User `json:"user"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.User != nil {
		return wrapped.User, nil
	}
	var u session.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, errors.Wrap(errors.ErrCodeAPIDecode, "failed to decode profile", err)
	}
	return &u, nil
}

// ChangePassword changes the signed-in user's password.
func (c *Client) ChangePassword(ctx context.Context, current, next string) (string, error) {
	var out messageResponse
	body := map[string]string{"currentPassword": current, "newPassword": next}
	if err := c.Post(ctx, "/auth/change-password", body, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// RequestOTP asks the server to email a one-time reset code.
func (c *Client) RequestOTP(ctx context.Context, email string) (string, error) {
	var out messageResponse
	if err := c.Post(ctx, "/auth/password/request-otp", map[string]string{"email": email}, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// VerifyOTP exchanges a reset code for a reset token.
func (c *Client) VerifyOTP(ctx context.Context, email, otp string) (*VerifyOTPResponse, error) {
	var out VerifyOTPResponse
	if err := c.Post(ctx, "/auth/password/verify-otp", map[string]string{"email": email, "otp": otp}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResetPassword sets a new password using a reset token.
func (c *Client) ResetPassword(ctx context.Context, email, resetToken, newPassword string) (string, error) {
	var out messageResponse
	body := map[string]string{"email": email, "resetToken": resetToken, "newPassword": newPassword}
	if err := c.Post(ctx, "/auth/password/reset-password", body, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}
