package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/padup/padup/internal/api"
	"github.com/padup/padup/internal/config"
	"github.com/padup/padup/internal/errors"
	"github.com/padup/padup/internal/flow"
	"github.com/padup/padup/internal/health"
	"github.com/padup/padup/internal/log"
	"github.com/padup/padup/internal/session"
	"github.com/padup/padup/internal/storage"
	"github.com/padup/padup/internal/version"
)

func newDoctorCmd(rt *runtime) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the configuration, local state and API",
		Long: `Run diagnostics and report what stands between you and a working padup:

  config    the config file parses and validates
  storage   the padup home directory is writable
  api       the API base URL answers
  contract  the embedded API description loads
  session   whether you are signed in and the token has not expired

Exits non-zero when any check fails.

Examples:
  padup doctor
  padup doctor --format json`,
		Annotations: bare(),
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report := health.Run(cmd.Context(), version.GetInfo().Version, timeout, rt.doctorChecks(timeout)...)
			if err := rt.out.show(report, report.String()); err != nil {
				return err
			}
			if report.Status == health.StatusUnhealthy {
				return errors.New(errors.ErrCodeConfigInvalid, "one or more checks failed").
					WithSuggestion("Fix the checks marked ✗ and run 'padup doctor' again")
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", health.DefaultTimeout, "time allowed for each check")
	return cmd
}

func (rt *runtime) doctorChecks(timeout time.Duration) []health.Checker {
	cfg, home := rt.cfg, rt.home
	logger := log.DefaultLogger()
	kv := storage.NewFileStore(config.StoragePath(home), logger)

	checks := []health.Checker{
		health.Func("config", func(context.Context) (string, error) {
			if rt.cfgErr != nil {
				return "", rt.cfgErr
			}
			path := config.Path(home)
			if _, err := os.Stat(path); os.IsNotExist(err) {
				return "no config file, using defaults", nil
			}
			return "loaded " + path, nil
		}),
		health.NewDirChecker("storage", home),
		health.Func("contract", func(context.Context) (string, error) {
			c, err := api.LoadContract()
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%d operations", len(c.Operations())), nil
		}),
		&sessionChecker{sessions: session.NewStore(kv), now: time.Now},
	}

	if rt.cfgErr == nil {
		if cfg.Mode != config.ModeDevelopment && strings.TrimSpace(cfg.API.BaseURL) == "" {
			checks = append(checks, health.Func("api", func(context.Context) (string, error) {
				return "", errors.NewBaseURLMissingError(string(cfg.Mode))
			}))
		} else {
			baseURL := config.ResolveBaseURL(cfg.Mode, cfg.API.BaseURL, logger)
			client := &http.Client{Transport: rt.settings.transport, Timeout: timeout}
			checks = append(checks, health.NewHTTPChecker("api", baseURL, client))
		}
	}
	return checks
}

// sessionChecker reports the stored session. Being signed out is healthy;
// a token past its expiry is degraded since the next request will be
// rejected.
type sessionChecker struct {
	sessions session.Store
	now      func() time.Time
}

func (c *sessionChecker) Name() string {
	return "session"
}

func (c *sessionChecker) Check(ctx context.Context) health.Result {
	sess, ok := c.sessions.Get(ctx)
	if !ok {
		return health.Pass("not signed in")
	}

	res := health.Pass(fmt.Sprintf("signed in as %s", sess.User.Name)).
		With("email", sess.User.Email).
		With("role", sess.User.Role.String())

	id, err := flow.DecodeIdentity(sess.Token)
	if err != nil || id.ExpiresAt.IsZero() {
		return res
	}
	res = res.With("expires", id.ExpiresAt.UTC().Format(time.RFC3339))
	if id.Expired(c.now()) {
		res.Status = health.StatusDegraded
		res.Message = "session token expired"
		res = res.With("suggestion", "Log in again with 'padup login'")
	}
	return res
}
