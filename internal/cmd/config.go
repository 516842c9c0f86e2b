package cmd

import (
	stderrors "errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/padup/padup/internal/config"
	"github.com/padup/padup/internal/errors"
)

func newConfigCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View or edit padup configuration",
		Long: `Manage padup configuration stored at ~/.padup/config.yaml (or
$PADUP_HOME/config.yaml).

Keys:
  mode                    production or development
  api.base_url            API base URL; empty picks the one for the mode
  api.timeout             request timeout, e.g. 30s
  defaults.format         text, json or yaml
  defaults.no_color       true or false
  logging.level           debug, info, warn or error
  logging.format          text or json
  telemetry.enabled       export traces over OTLP
  telemetry.endpoint      OTLP collector host:port
  telemetry.sample_rate   0 to 1
  metrics.textfile        write Prometheus metrics here after each command

Examples:
  padup config view
  padup config get mode
  padup config set api.base_url http://localhost:5000/api
  padup config edit
  padup config path`,
		Annotations: bare(),
	}
	cmd.AddCommand(
		newConfigViewCmd(rt),
		newConfigGetCmd(rt),
		newConfigSetCmd(rt),
		newConfigEditCmd(rt),
		newConfigPathCmd(rt),
	)
	return cmd
}

func newConfigViewCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Show the effective configuration",
		Long: `Show the configuration after environment variables and flags are
applied.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.configError(); err != nil {
				return err
			}
			p := rt.out
			if p.format != "text" {
				return p.render(rt.cfg)
			}

			data, err := yaml.Marshal(rt.cfg)
			if err != nil {
				return errors.Wrap(errors.ErrCodeConfigInvalid, "failed to marshal config", err)
			}
			_, err = fmt.Fprintf(p.out, "# %s\n%s", config.Path(rt.home), data)
			return err
		},
	}
}

func newConfigGetCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print one configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.configError(); err != nil {
				return err
			}
			value, err := rt.cfg.Get(args[0])
			if err != nil {
				return err
			}
			return rt.out.show(map[string]string{args[0]: value}, value)
		},
	}
}

func newConfigSetCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one value in the config file",
		Long: `Change one value in the config file. Environment variables and flags
are not written back.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Path(rt.home)
			cfg, err := config.Load(path)
			if err != nil {
				return withEditHint(err)
			}
			if err := cfg.Set(args[0], args[1]); err != nil {
				return err
			}
			if err := config.Save(cfg, path); err != nil {
				return err
			}
			return rt.out.success(fmt.Sprintf("Set %s = %s", args[0], args[1]))
		},
	}
}

func newConfigEditCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Open the config file in $EDITOR",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Path(rt.home)
			if _, err := os.Stat(path); os.IsNotExist(err) {
				if err := config.Save(config.Default(), path); err != nil {
					return err
				}
			}

			editor := rt.settings.getenv("EDITOR")
			if editor == "" {
				editor = "vi"
			}
			ed := exec.CommandContext(cmd.Context(), editor, path)
			ed.Stdin = os.Stdin
			ed.Stdout = cmd.OutOrStdout()
			ed.Stderr = cmd.ErrOrStderr()
			if err := ed.Run(); err != nil {
				return errors.Wrap(errors.ErrCodeConfigInvalid, "failed to run editor "+editor, err).
					WithSuggestion("Set $EDITOR to your editor of choice")
			}

			if _, err := config.Load(path); err != nil {
				rt.out.warn("the configuration has errors and will not load until they are fixed")
				return err
			}
			return rt.out.success("Configuration updated")
		},
	}
}

func newConfigPathCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Path(rt.home)
			return rt.out.show(map[string]string{"path": path}, path)
		},
	}
}

// configError returns the error that stopped the config from loading.
func (rt *runtime) configError() error {
	if rt.cfgErr == nil {
		return nil
	}
	return withEditHint(rt.cfgErr)
}

func withEditHint(err error) error {
	var pe *errors.PadupError
	if stderrors.As(err, &pe) {
		return pe.WithSuggestion("Fix the file with 'padup config edit'")
	}
	return err
}
