// Package cmd is the padup command tree.
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/padup/padup/internal/exitcode"
)

// Execute runs padup with os.Args under ctx.
func Execute(ctx context.Context) error {
	root, rt := newRootCmd()
	err := root.ExecuteContext(ctx)
	rt.finish(err)
	return err
}

func newRootCmd(opts ...option) (*cobra.Command, *runtime) {
	rt := &runtime{settings: settings{getenv: os.Getenv}}
	for _, o := range opts {
		o(&rt.settings)
	}

	root := &cobra.Command{
		Use:   "padup",
		Short: "Shortlet marketplace client",
		Long: `padup is the command-line client of the shortlet marketplace.

Guests browse and book shortlets, property owners manage listings and submit
verification documents, and super admins review submissions and manage admin
accounts. The session is kept in ~/.padup (or $PADUP_HOME) and every request
carries its bearer token. When the API rejects the token the session is
cleared and you are sent back to the login page.

Examples:
  padup login --email ada@example.com
  padup shortlets list
  padup book lekki-loft --check-in 2026-12-01 --check-out 2026-12-04 --guests 2
  padup kyc review

` + exitStatusHelp(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return rt.prepare(cmd)
		},
	}

	g, flags := &rt.flags, root.PersistentFlags()
	flags.StringVar(&g.Home, "home", "", "padup state directory (default $PADUP_HOME or ~/.padup)")
	flags.StringVar(&g.Mode, "mode", "", "API mode: development, staging or production")
	flags.StringVar(&g.APIURL, "api-url", "", "API base URL, e.g. https://example.com/api")
	flags.StringVarP(&g.Format, "format", "f", "", "output format: text, json or yaml")
	flags.BoolVar(&g.NoColor, "no-color", false, "disable colored output")
	flags.BoolVarP(&g.Verbose, "verbose", "v", false, "log at debug level")
	flags.BoolVarP(&g.Quiet, "quiet", "q", false, "suppress notices on stderr")
	flags.StringVar(&g.LogLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.StringVar(&g.LogFormat, "log-format", "", "log format: text or json")
	flags.StringVar(&g.MetricsFile, "metrics-file", "", "write Prometheus metrics to this textfile after the command")
	flags.BoolVar(&g.CheckContract, "check-contract", false, "validate requests against the bundled API description")

	root.AddCommand(
		newLoginCmd(rt),
		newGoogleCmd(rt),
		newSignupCmd(rt),
		newLogoutCmd(rt),
		newWhoAmICmd(rt),
		newPasswordCmd(rt),
		newShortletsCmd(rt),
		newPropertiesCmd(rt),
		newBookCmd(rt),
		newPayCmd(rt),
		newKYCCmd(rt),
		newCommunityCmd(rt),
		newAdminCmd(rt),
		newRoutesCmd(rt),
		newConfigCmd(rt),
		newDoctorCmd(rt),
		newVersionCmd(rt),
	)
	return root, rt
}

func exitStatusHelp() string {
	var b strings.Builder
	b.WriteString("Exit status:\n")
	for _, s := range []int{
		exitcode.Success, exitcode.GeneralError, exitcode.UsageError, exitcode.Forbidden,
		exitcode.ServerError, exitcode.AuthError, exitcode.NetworkError, exitcode.Interrupted,
	} {
		fmt.Fprintf(&b, "  %-4d %s\n", s, exitcode.Describe(s))
	}
	return strings.TrimSuffix(b.String(), "\n")
}
