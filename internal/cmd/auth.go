package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/padup/padup/internal/api"
	"github.com/padup/padup/internal/errors"
	"github.com/padup/padup/internal/flow"
	"github.com/padup/padup/internal/router"
	"github.com/padup/padup/internal/session"
	"github.com/padup/padup/internal/tui"
)

func newLoginCmd(rt *runtime) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		Long: `Sign in with email and password. The session is stored in the padup home
directory and used by every later command until you log out or the API
rejects it.

Missing values are prompted for in an interactive terminal.`,
		Annotations: route(router.PathLogin),
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, a := rt.out, rt.app

			addr, err := p.input(email, "email", tui.Prompt{Message: "Email", Required: true})
			if err != nil {
				return err
			}
			pw, err := p.secret(password, "password", "Password")
			if err != nil {
				return err
			}

			var sess *session.Session
			err = p.spin("Signing in", func() error {
				sess, err = flow.NewLogin(a.Client, a.Env).Submit(cmd.Context(), addr, pw)
				return err
			})
			if err != nil {
				return err
			}
			return p.success(signedIn(sess))
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")
	return cmd
}

func newGoogleCmd(rt *runtime) *cobra.Command {
	var credential, file string

	cmd := &cobra.Command{
		Use:   "google",
		Short: "Sign in with a Google ID token",
		Long: `Sign in with the ID token issued by Google Sign-In. Pass the token with
--credential or put it in a file and pass --credential-file.`,
		Annotations: route(router.PathLogin),
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, a := rt.out, rt.app

			token := credential
			if token == "" && file != "" {
				data, err := os.ReadFile(file)
				if err != nil {
					return errors.Wrap(errors.ErrCodeValidationInvalid, "failed to read credential file", err)
				}
				token = strings.TrimSpace(string(data))
			}
			token, err := p.secret(token, "credential", "Google ID token")
			if err != nil {
				return err
			}

			if id, err := flow.DecodeIdentity(token); err == nil {
				if id.Expired(time.Now()) {
					p.warn("the Google credential has expired; the server will likely reject it")
				}
				a.Logger.Debug("google credential", "email", id.Email, "issuer", id.Issuer)
			}

			var sess *session.Session
			err = p.spin("Signing in with Google", func() error {
				sess, err = flow.NewGoogle(a.Client, a.Env).Submit(cmd.Context(), token)
				return err
			})
			if err != nil {
				return err
			}
			return p.success(signedIn(sess))
		},
	}
	cmd.Flags().StringVar(&credential, "credential", "", "Google ID token")
	cmd.Flags().StringVar(&file, "credential-file", "", "file containing the Google ID token")
	return cmd
}

func newSignupCmd(rt *runtime) *cobra.Command {
	var req api.SignupRequest

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Long: `Create an account. The password needs at least 8 characters with an
uppercase letter, a lowercase letter, a number and one of ` + flow.SpecialCharacters + `.`,
		Annotations: route(router.PathSignup),
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, a := rt.out, rt.app

			var err error
			if req.Name, err = p.input(req.Name, "name", tui.Prompt{Message: "Full name", Required: true}); err != nil {
				return err
			}
			if req.Email, err = p.input(req.Email, "email", tui.Prompt{Message: "Email", Required: true}); err != nil {
				return err
			}
			if req.Password, err = p.secret(req.Password, "password", "Password"); err != nil {
				return err
			}
			if req.ConfirmPassword, err = p.secret(req.ConfirmPassword, "confirm-password", "Confirm password"); err != nil {
				return err
			}

			var msg string
			err = p.spin("Creating account", func() error {
				msg, err = flow.NewSignup(a.Client, a.Env).Submit(cmd.Context(), req)
				return err
			})
			if err != nil {
				return err
			}
			if msg == "" {
				msg = "Account created"
			}
			if err := p.success(msg); err != nil {
				return err
			}
			p.notice("Log in with 'padup login --email " + strings.TrimSpace(req.Email) + "'")
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "full name")
	cmd.Flags().StringVar(&req.Email, "email", "", "account email")
	cmd.Flags().StringVar(&req.Password, "password", "", "password (prompted when omitted)")
	cmd.Flags().StringVar(&req.ConfirmPassword, "confirm-password", "", "password again")
	return cmd
}

func newLogoutCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, a := rt.out, rt.app
			if _, ok := a.Sessions.Get(cmd.Context()); !ok {
				return p.success("Not signed in")
			}
			err := flow.Logout(cmd.Context(), a.Env, func() {
				p.notice("Logging out...")
			})
			if err != nil {
				return err
			}
			return p.success("Signed out")
		},
	}
}

func newWhoAmICmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:         "whoami",
		Short:       "Show the signed-in account",
		Annotations: route(router.PathAccount),
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, a := rt.out, rt.app

			var profile *flow.Profile
			err := p.spin("Loading profile", func() error {
				var err error
				profile, err = flow.WhoAmI(cmd.Context(), a.Client, a.Env)
				return err
			})
			if err != nil {
				return err
			}
			return p.show(profile, profileView(profile))
		},
	}
}

func signedIn(sess *session.Session) string {
	name := sess.User.Name
	if name == "" {
		name = sess.User.Email
	}
	return fmt.Sprintf("Signed in as %s (%s)", name, sess.User.Role)
}

func profileView(p *flow.Profile) kv {
	out := kv{
		{"Name", p.User.Name},
		{"Email", p.User.Email},
		{"Role", string(p.User.Role)},
		{"Home", router.HomeFor(p.User.Role)},
	}
	if p.User.ID != "" {
		out = append(kv{{"ID", p.User.ID}}, out...)
	}
	if p.Token != nil && !p.Token.ExpiresAt.IsZero() {
		expiry := p.Token.ExpiresAt.Local().Format(time.RFC1123)
		if p.Token.Expired(time.Now()) {
			expiry += " (expired)"
		}
		out = append(out, [2]string{"Token expires", expiry})
	}
	if p.Refreshed {
		out = append(out, [2]string{"Note", "cached profile updated from the server"})
	}
	return out
}
