package cmd

import (
	"github.com/spf13/cobra"

	"github.com/padup/padup/internal/api"
	"github.com/padup/padup/internal/errors"
	"github.com/padup/padup/internal/router"
	"github.com/padup/padup/internal/session"
	"github.com/padup/padup/internal/tui"
	"github.com/padup/padup/internal/ux"
)

func newAdminCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "admins",
		Aliases:     []string{"admin"},
		Short:       "Manage admin accounts (super admin)",
		Annotations: route(router.PathSuperAdminUsers),
	}
	cmd.AddCommand(
		newAdminListCmd(rt),
		newAdminCreateCmd(rt),
		newAdminUpdateCmd(rt),
		newAdminDeleteCmd(rt),
	)
	return cmd
}

func newAdminListCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List admin accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, a := rt.out, rt.app

			var admins []api.Admin
			err := p.spin("Loading admins", func() error {
				var err error
				admins, err = a.Client.ListAdmins(cmd.Context())
				return err
			})
			if err != nil {
				return err
			}
			return p.show(admins, adminTable(admins))
		},
	}
}

func newAdminCreateCmd(rt *runtime) *cobra.Command {
	var na api.NewAdmin

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an admin account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, a := rt.out, rt.app

			var err error
			if na.Name, err = p.input(na.Name, "name", tui.Prompt{Message: "Name", Required: true}); err != nil {
				return err
			}
			if na.Email, err = p.input(na.Email, "email", tui.Prompt{Message: "Email", Required: true}); err != nil {
				return err
			}
			if na.Password, err = p.secret(na.Password, "password", "Password"); err != nil {
				return err
			}

			var msg string
			err = p.spin("Creating admin", func() error {
				msg, err = a.Client.CreateAdmin(cmd.Context(), na)
				return err
			})
			if err != nil {
				return err
			}
			if msg == "" {
				msg = "Admin created"
			}
			return p.success(msg)
		},
	}
	cmd.Flags().StringVar(&na.Name, "name", "", "admin name")
	cmd.Flags().StringVar(&na.Email, "email", "", "admin email")
	cmd.Flags().StringVar(&na.Password, "password", "", "initial password")
	return cmd
}

func newAdminUpdateCmd(rt *runtime) *cobra.Command {
	var u api.AdminUpdate
	var role string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change an admin account",
		Long: `Change the name, email or role of an admin account. Omitted fields are
left unchanged.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, a := rt.out, rt.app

			if role != "" {
				r, err := session.ParseRole(role)
				if err != nil {
					return err
				}
				u.Role = r
			}
			if u == (api.AdminUpdate{}) {
				return errors.New(errors.ErrCodeValidationRequired, "nothing to update").
					WithSuggestion("Pass at least one of --name, --email or --role")
			}

			var msg string
			err := p.spin("Updating admin", func() error {
				var err error
				msg, err = a.Client.UpdateAdmin(cmd.Context(), args[0], u)
				return err
			})
			if err != nil {
				return err
			}
			if msg == "" {
				msg = "Admin updated"
			}
			return p.success(msg)
		},
	}
	cmd.Flags().StringVar(&u.Name, "name", "", "new name")
	cmd.Flags().StringVar(&u.Email, "email", "", "new email")
	cmd.Flags().StringVar(&role, "role", "", "new role: user, admin or superadmin")
	return cmd
}

func newAdminDeleteCmd(rt *runtime) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an admin account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, a := rt.out, rt.app

			ok, err := p.confirm("Delete admin "+args[0]+"?", yes)
			if err != nil || !ok {
				return err
			}
			var msg string
			err = p.spin("Deleting admin", func() error {
				msg, err = a.Client.DeleteAdmin(cmd.Context(), args[0])
				return err
			})
			if err != nil {
				return err
			}
			if msg == "" {
				msg = "Admin deleted"
			}
			return p.success(msg)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

type adminTable []api.Admin

func (t adminTable) Table() ux.Table {
	table := ux.Table{Headers: []string{"ID", "NAME", "EMAIL", "ROLE"}, Empty: "No admins yet"}
	for _, ad := range t {
		table.Rows = append(table.Rows, []string{ad.ID.String(), ad.Name, ad.Email, ad.Role.String()})
	}
	return table
}
