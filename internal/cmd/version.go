package cmd

import (
	"github.com/spf13/cobra"

	"github.com/padup/padup/internal/version"
)

func newVersionCmd(rt *runtime) *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Print the version, git commit, build date, Go version and platform.
Use --format json for machine-readable output.`,
		Annotations: bare(),
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.GetInfo()
			if short {
				return rt.out.show(map[string]string{"version": info.Short()}, info.Short())
			}
			return rt.out.show(info, info.String())
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "print only the version number")
	return cmd
}
