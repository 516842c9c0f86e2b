package flow

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/padup/padup/internal/api"
	"github.com/padup/padup/internal/errors"
	"github.com/padup/padup/internal/router"
	"github.com/padup/padup/internal/session"
)

// Login signs in with email and password.
type Login struct {
	api AuthAPI
	env Env
	sub Submitter
}

func NewLogin(a AuthAPI, env Env) *Login {
	return &Login{api: a, env: env}
}

// State returns the submission state.
func (l *Login) State() State {
	return l.sub.State()
}

// Submit sends the credentials. On success the session is stored and the
// navigator moves to the home page for the user's role.
func (l *Login) Submit(ctx context.Context, email, password string) (*session.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, invalid(errors.ErrCodeValidationRequired, "Email and password are required", "credentials")
	}

	var sess *session.Session
	err := l.env.run(ctx, &l.sub, "login", func(ctx context.Context) error {
		resp, err := l.api.Login(ctx, email, password)
		if err != nil {
			return failure(err, "Login failed")
		}
		sess, err = establish(ctx, l.env, resp)
		return err
	})
	return sess, err
}

// establish stores the session from a sign-in response and navigates home.
func establish(ctx context.Context, env Env, resp *api.AuthResponse) (*session.Session, error) {
	if resp == nil || resp.Token == "" {
		return nil, errors.New(errors.ErrCodeAPIDecode, "sign-in response did not include a token")
	}
	sess := resp.Session()
	if err := env.Sessions.Set(ctx, sess); err != nil {
		return nil, err
	}
	home := router.HomeFor(sess.User.Role)
	env.Navigator.Navigate(home, router.NavigateOptions{Reason: "signed in"})
	env.logger().InfoContext(ctx, "signed in", "role", sess.User.Role, "home", home)
	return sess, nil
}

// Google signs in with an ID token issued by Google.
type Google struct {
	api AuthAPI
	env Env
	sub Submitter
}

func NewGoogle(a AuthAPI, env Env) *Google {
	return &Google{api: a, env: env}
}

// State returns the submission state.
func (g *Google) State() State {
	return g.sub.State()
}

// Submit forwards the credential to the server, which verifies it. The
// success path matches Login.
func (g *Google) Submit(ctx context.Context, credential string) (*session.Session, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return nil, invalid(errors.ErrCodeValidationRequired, "Google credential is required", "credential")
	}

	var sess *session.Session
	err := g.env.run(ctx, &g.sub, "google", func(ctx context.Context) error {
		resp, err := g.api.GoogleLogin(ctx, credential)
		if err != nil {
			return failure(err, "Google login failed")
		}
		sess, err = establish(ctx, g.env, resp)
		return err
	})
	return sess, err
}

// Identity is what a token says about its holder. It is read without
// verifying the signature and is only fit for display.
type Identity struct {
	Subject   string    `json:"sub,omitempty" yaml:"sub,omitempty"`
	Name      string    `json:"name,omitempty" yaml:"name,omitempty"`
	Email     string    `json:"email,omitempty" yaml:"email,omitempty"`
	Picture   string    `json:"picture,omitempty" yaml:"picture,omitempty"`
	Issuer    string    `json:"iss,omitempty" yaml:"iss,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty" yaml:"exp,omitempty"`
}

// Expired reports whether the token carried an expiry that has passed.
func (id *Identity) Expired(now time.Time) bool {
	return !id.ExpiresAt.IsZero() && now.After(id.ExpiresAt)
}

// DecodeIdentity reads the claims of a JWT without verifying it. The server
// remains the authority on who the holder is.
func DecodeIdentity(token string) (*Identity, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, errors.Wrap(errors.ErrCodeValidationInvalid, "credential is not a JWT", err)
	}

	id := &Identity{
		Name:    stringClaim(claims, "name"),
		Email:   stringClaim(claims, "email"),
		Picture: stringClaim(claims, "picture"),
	}
	id.Subject, _ = claims.GetSubject()
	id.Issuer, _ = claims.GetIssuer()
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		id.ExpiresAt = exp.Time
	}
	return id, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	s, _ := claims[key].(string)
	return s
}
