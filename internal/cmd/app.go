package cmd

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"

	"github.com/padup/padup/internal/api"
	"github.com/padup/padup/internal/config"
	"github.com/padup/padup/internal/flow"
	"github.com/padup/padup/internal/log"
	"github.com/padup/padup/internal/marketplace"
	"github.com/padup/padup/internal/metrics"
	"github.com/padup/padup/internal/router"
	"github.com/padup/padup/internal/session"
	"github.com/padup/padup/internal/storage"
	"github.com/padup/padup/internal/telemetry"
	"github.com/padup/padup/internal/tui"
	"github.com/padup/padup/internal/ux"
	"github.com/padup/padup/internal/version"
)

// Command annotations read by the root pre-run hook.
const (
	// annotationRoute names the page a command acts on. The route guard
	// checks it before the command runs.
	annotationRoute = "padup/route"

	// annotationBare marks commands that run without a client, so that a
	// broken config file can still be inspected and fixed.
	annotationBare = "padup/bare"
)

// settings are the process-level dependencies tests replace.
type settings struct {
	getenv      func(string) string
	clock       flow.Clock
	interactive func() bool
	transport   http.RoundTripper
}

type option func(*settings)

// App is the wired client for one invocation.
type App struct {
	Config   *config.Config
	Home     string
	BaseURL  string
	Logger   *log.Logger
	Storage  storage.Store
	Sessions session.Store
	History  *router.History
	Guard    *router.Guard
	Client   *api.Client
	Metrics  *metrics.Metrics
	Env      flow.Env

	Catalog *marketplace.Catalog
	Booker  *marketplace.Booker
	KYC     *marketplace.KYC
	Feed    *marketplace.Feed
	Prompt  *marketplace.AuthPrompt

	shutdown func(context.Context) error
}

// runtime is the state of one invocation of the command tree.
type runtime struct {
	settings settings

	flags  globalFlags
	cfg    *config.Config
	cfgErr error
	home   string
	out    *printer
	app    *App

	command string
	start   time.Time
	span    trace.Span
}

// loadConfig resolves home and merges the config file, the environment and
// the flags, in increasing order of precedence.
func (rt *runtime) loadConfig() (*config.Config, string, error) {
	home := rt.flags.Home
	if home == "" {
		h, err := config.Home()
		if err != nil {
			return nil, "", err
		}
		home = h
	}

	cfg, err := config.Load(config.Path(home))
	if err != nil {
		return nil, home, err
	}
	if err := cfg.ApplyEnv(rt.settings.getenv); err != nil {
		return nil, home, err
	}
	if rt.flags.Mode != "" {
		m, err := config.ParseMode(rt.flags.Mode)
		if err != nil {
			return nil, home, err
		}
		cfg.Mode = m
	}
	if rt.flags.APIURL != "" {
		cfg.API.BaseURL = rt.flags.APIURL
	}
	return cfg, home, nil
}

// prepare runs before every command.
func (rt *runtime) prepare(cmd *cobra.Command) error {
	g := &rt.flags
	rt.command = cmd.CommandPath()
	rt.start = time.Now()

	bare := annotation(cmd, annotationBare) != ""
	cfg, home, err := rt.loadConfig()
	if err != nil {
		if !bare || home == "" {
			return err
		}
		rt.cfgErr = err
		cfg = config.Default()
	}
	rt.cfg, rt.home = cfg, home

	if !changed(cmd, "format") && cfg.Defaults.Format != "" {
		g.Format = cfg.Defaults.Format
	}
	if g.Format == "" {
		g.Format = ux.FormatText
	}
	if err := ux.ValidFormat(g.Format); err != nil {
		return err
	}
	g.NoColor = g.NoColor || cfg.Defaults.NoColor
	if g.MetricsFile == "" {
		g.MetricsFile = cfg.Metrics.Textfile
	}

	logger := rt.newLogger(cmd.ErrOrStderr())
	log.SetDefaultLogger(logger)
	rt.out = newPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), g, rt.settings.interactive)

	if bare {
		return nil
	}

	app, err := rt.newApp(cmd.Context(), logger)
	if err != nil {
		return err
	}
	rt.app = app

	ctx, span := telemetry.StartCommandSpan(cmd.Context(), rt.command)
	rt.span = span
	cmd.SetContext(ctx)

	if route := annotation(cmd, annotationRoute); route != "" {
		if _, err := app.Guard.Enter(ctx, route); err != nil {
			return err
		}
	}
	return nil
}

func (rt *runtime) newLogger(w io.Writer) *log.Logger {
	level := rt.cfg.Logging.Level
	if rt.flags.LogLevel != "" {
		level = rt.flags.LogLevel
	}
	if rt.flags.Verbose {
		level = "debug"
	}
	format := rt.cfg.Logging.Format
	if rt.flags.LogFormat != "" {
		format = rt.flags.LogFormat
	}

	return log.New(log.Config{
		Level:   log.ParseLevel(level),
		Format:  log.ParseFormat(format),
		Output:  w,
		Service: "padup",
		Version: version.GetInfo().Version,
	})
}

func (rt *runtime) newApp(ctx context.Context, logger *log.Logger) (*App, error) {
	cfg := rt.cfg
	m := metrics.New()

	shutdown, err := telemetry.InitProvider(ctx, telemetry.Config{
		Service:     "padup",
		Version:     version.GetInfo().Version,
		Environment: string(cfg.Mode),
		Enabled:     cfg.Telemetry.Enabled,
		Endpoint:    cfg.Telemetry.Endpoint,
		SampleRate:  cfg.Telemetry.SampleRate,
	})
	if err != nil {
		logger.Warn("tracing disabled", "error", err)
		shutdown = nil
	}

	kv := storage.NewFileStore(config.StoragePath(rt.home), logger)
	sessions := session.NewStore(kv)

	history := router.NewHistory(router.PathHome)
	history.OnNavigate(rt.out.navigation)

	guard := router.NewGuard(router.DefaultTable(), sessions, history,
		router.WithGuardMetrics(m), router.WithGuardLogger(logger))

	var contract *api.Contract
	if rt.flags.CheckContract {
		if contract, err = api.LoadContract(); err != nil {
			return nil, err
		}
	}

	baseURL := config.ResolveBaseURL(cfg.Mode, cfg.API.BaseURL, logger)
	client, err := api.New(api.Config{
		BaseURL:   baseURL,
		Sessions:  sessions,
		Navigator: history,
		Transport: rt.settings.transport,
		Timeout:   cfg.API.Timeout,
		UserAgent: version.GetInfo().UserAgent(),
		Metrics:   m,
		Logger:    logger,
		Contract:  contract,
	})
	if err != nil {
		return nil, err
	}

	env := flow.Env{
		Sessions:  sessions,
		Storage:   kv,
		Navigator: history,
		Clock:     rt.settings.clock,
		Metrics:   m,
		Logger:    logger,
	}

	return &App{
		Config:   cfg,
		Home:     rt.home,
		BaseURL:  baseURL,
		Logger:   logger,
		Storage:  kv,
		Sessions: sessions,
		History:  history,
		Guard:    guard,
		Client:   client,
		Metrics:  m,
		Env:      env,
		Catalog:  marketplace.NewCatalog(client, marketplace.NewCache(kv, m, logger), logger),
		Booker:   marketplace.NewBooker(client),
		KYC:      marketplace.NewKYC(client, logger),
		Feed:     marketplace.NewFeed(client, m, logger),
		Prompt:   marketplace.NewAuthPrompt(kv, sessions),
		shutdown: shutdown,
	}, nil
}

// finish records the command outcome and flushes telemetry. It runs after
// the command whether or not it failed.
func (rt *runtime) finish(err error) {
	if rt.span != nil {
		if err != nil {
			telemetry.RecordError(rt.span, err)
		} else {
			telemetry.RecordSuccess(rt.span)
		}
		rt.span.End()
	}
	if rt.app == nil {
		return
	}

	rt.app.Metrics.ObserveCommand(rt.command, err, time.Since(rt.start))

	if path := rt.flags.MetricsFile; path != "" {
		if werr := rt.app.Metrics.WriteTextfile(path); werr != nil {
			rt.app.Logger.Warn("failed to write metrics textfile", "path", path, "error", werr)
		}
	}

	if rt.app.shutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if serr := rt.app.shutdown(ctx); serr != nil {
			rt.app.Logger.Warn("failed to flush traces", "error", serr)
		}
	}
}

// annotation returns the value of key on cmd or its nearest ancestor.
func annotation(cmd *cobra.Command, key string) string {
	for c := cmd; c != nil; c = c.Parent() {
		if v, ok := c.Annotations[key]; ok {
			return v
		}
	}
	return ""
}

func route(path string) map[string]string {
	return map[string]string{annotationRoute: path}
}

func bare() map[string]string {
	return map[string]string{annotationBare: "true"}
}

// styles picks the palette for the printer's color setting.
func styles(noColor bool) tui.Styles {
	if noColor {
		return tui.PlainStyles()
	}
	return tui.DefaultStyles()
}
