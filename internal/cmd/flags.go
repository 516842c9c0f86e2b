package cmd

import "github.com/spf13/cobra"

// globalFlags are the persistent flags of the root command. Every tree binds
// a fresh set, so tests can run padup repeatedly in one process. prepare
// fills the output fields left unset from the config file.
type globalFlags struct {
	Home          string
	Mode          string
	APIURL        string
	Format        string
	NoColor       bool
	Verbose       bool
	Quiet         bool
	LogLevel      string
	LogFormat     string
	MetricsFile   string
	CheckContract bool
}

// changed reports whether the flag name was set on the command line.
func changed(cmd *cobra.Command, name string) bool {
	f := cmd.Flags().Lookup(name)
	return f != nil && f.Changed
}
