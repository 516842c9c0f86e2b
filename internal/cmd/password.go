package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/padup/padup/internal/flow"
	"github.com/padup/padup/internal/router"
	"github.com/padup/padup/internal/tui"
	"github.com/padup/padup/internal/ux"
)

func newPasswordCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Reset or change your password",
		Long: `Reset a forgotten password in three steps or change the password of the
signed-in account.

A reset sends a six-character code to your email (forgot), exchanges the code
for a reset session (verify) and sets the new password (reset). In an
interactive terminal 'forgot' walks through all three steps.

Examples:
  padup password forgot --email ada@example.com
  padup password verify --email ada@example.com --otp 123456
  padup password reset --password 'N3w@secret' --confirm-password 'N3w@secret'
  padup password change`,
	}
	cmd.AddCommand(
		newPasswordForgotCmd(rt),
		newPasswordVerifyCmd(rt),
		newPasswordResetCmd(rt),
		newPasswordChangeCmd(rt),
	)
	return cmd
}

func newPasswordForgotCmd(rt *runtime) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:         "forgot",
		Short:       "Email a password reset code",
		Annotations: route(router.PathForgotPassword),
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, a := rt.out, rt.app
			ctx := cmd.Context()

			addr, err := p.input(email, "email", tui.Prompt{Message: "Email", Required: true})
			if err != nil {
				return err
			}

			reset := flow.NewPasswordReset(a.Client, a.Env)
			var msg string
			err = p.spin("Sending code", func() error {
				msg, err = reset.RequestOTP(ctx, addr)
				return err
			})
			if err != nil {
				return err
			}
			if msg == "" {
				msg = "OTP sent to your email"
			}
			if err := p.success(msg); err != nil {
				return err
			}

			if !p.interactive() {
				p.notice("Next: padup password verify --email " + reset.Email() + " --otp <code>")
				return nil
			}
			state, err := verifyCode(ctx, rt, reset, "")
			if err != nil {
				return err
			}
			return setNewPassword(ctx, rt, reset, state, "", "")
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	return cmd
}

func newPasswordVerifyCmd(rt *runtime) *cobra.Command {
	var email, otp string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify the emailed reset code",
		Long: `Exchange the emailed code for a reset session. Codes longer than six
characters are cut to six. The reset session is kept in the padup home
directory until the password is reset.`,
		Annotations: route(router.PathForgotPassword),
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, a := rt.out, rt.app
			ctx := cmd.Context()

			addr, err := p.input(email, "email", tui.Prompt{Message: "Email the code was sent to", Required: true})
			if err != nil {
				return err
			}
			reset := flow.NewPasswordReset(a.Client, a.Env)
			reset.Resume(addr)

			state, err := verifyCode(ctx, rt, reset, otp)
			if err != nil {
				return err
			}
			if !p.interactive() {
				p.notice("Next: padup password reset --password <new> --confirm-password <new>")
				return nil
			}
			return setNewPassword(ctx, rt, reset, state, "", "")
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&otp, "otp", "", "code from the email")
	return cmd
}

func newPasswordResetCmd(rt *runtime) *cobra.Command {
	var password, confirm string

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Set a new password after verifying the code",
		Long: `Set a new password using the reset session created by 'padup password
verify'. Without a reset session you are sent back to request a new code.`,
		Annotations: route(router.PathResetPassword),
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reset := flow.NewPasswordReset(rt.app.Client, rt.app.Env)
			return setNewPassword(cmd.Context(), rt, reset, nil, password, confirm)
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "new password (prompted when omitted)")
	cmd.Flags().StringVar(&confirm, "confirm-password", "", "new password again")
	return cmd
}

func newPasswordChangeCmd(rt *runtime) *cobra.Command {
	var current, next, confirm string

	cmd := &cobra.Command{
		Use:         "change",
		Short:       "Change the password of the signed-in account",
		Annotations: route(router.PathAccount),
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, a := rt.out, rt.app

			cur, err := p.secret(current, "current-password", "Current password")
			if err != nil {
				return err
			}
			pw, err := p.secret(next, "new-password", "New password")
			if err != nil {
				return err
			}
			again, err := p.secret(confirm, "confirm-password", "Confirm new password")
			if err != nil {
				return err
			}

			var msg string
			err = p.spin("Changing password", func() error {
				msg, err = flow.NewChangePassword(a.Client, a.Env).Submit(cmd.Context(), cur, pw, again)
				return err
			})
			if err != nil {
				return err
			}
			if msg == "" {
				msg = "Password changed successfully"
			}
			return p.success(msg)
		},
	}
	cmd.Flags().StringVar(&current, "current-password", "", "current password")
	cmd.Flags().StringVar(&next, "new-password", "", "new password")
	cmd.Flags().StringVar(&confirm, "confirm-password", "", "new password again")
	return cmd
}

func verifyCode(ctx context.Context, rt *runtime, reset *flow.PasswordReset, otp string) (*flow.ResetContext, error) {
	p := rt.out
	code, err := p.input(otp, "otp", tui.Prompt{Message: "Code from the email", Required: true})
	if err != nil {
		return nil, err
	}

	var state *flow.ResetContext
	err = p.spin("Verifying code", func() error {
		state, err = reset.VerifyOTP(ctx, code)
		return err
	})
	if err != nil {
		return nil, err
	}
	return state, p.success("Code verified")
}

func setNewPassword(ctx context.Context, rt *runtime, reset *flow.PasswordReset, state *flow.ResetContext, password, confirm string) error {
	p := rt.out
	state, err := reset.Pending(state)
	if err != nil {
		p.warn(ux.UserMessage(err))
		if serr := reset.StartOver(ctx); serr != nil {
			return serr
		}
		return err
	}

	pw, err := p.secret(password, "password", "New password")
	if err != nil {
		return err
	}
	again, err := p.secret(confirm, "confirm-password", "Confirm new password")
	if err != nil {
		return err
	}

	var msg string
	err = p.spin("Resetting password", func() error {
		msg, err = reset.Reset(ctx, state, pw, again)
		return err
	})
	if err != nil {
		return err
	}
	if msg == "" {
		msg = "Password reset successful"
	}
	if err := p.success(msg); err != nil {
		return err
	}
	p.notice("Log in with 'padup login'")
	return nil
}
