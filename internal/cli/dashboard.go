package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/SmitUplenchwar2687/Vantage/internal/api"
	"github.com/SmitUplenchwar2687/Vantage/internal/config"
	"github.com/SmitUplenchwar2687/Vantage/internal/dashboard"
	"github.com/SmitUplenchwar2687/Vantage/internal/logging"
	"github.com/SmitUplenchwar2687/Vantage/internal/storage"
	"github.com/SmitUplenchwar2687/Vantage/internal/view"
)

var errNoBusiness = errors.New("no business could be loaded")

// dashboardOptions are the flags shared by every command that opens a
// dashboard session.
type dashboardOptions struct {
	configPath string
	baseURL    string
	timeout    time.Duration
	locale     string
	sessionID  string
	logLevel   string
	logFormat  string
	storage    storageOptions
}

func defaultDashboardOptions() dashboardOptions {
	d := config.Default()
	return dashboardOptions{
		baseURL:   d.API.BaseURL,
		locale:    d.Locale,
		logLevel:  d.Log.Level,
		logFormat: d.Log.Format,
		storage:   defaultStorageOptions(),
	}
}

func (o *dashboardOptions) addFlags(cmd *cobra.Command) {
	d := config.Default()
	cmd.Flags().StringVar(&o.configPath, "config", "", "config file (.json, .yaml or .toml)")
	cmd.Flags().StringVar(&o.baseURL, "api-url", d.API.BaseURL, "analytics backend base URL")
	cmd.Flags().DurationVar(&o.timeout, "api-timeout", 0, "per-request backend timeout (0 = none)")
	cmd.Flags().StringVar(&o.locale, "locale", d.Locale, "locale for number formatting (BCP 47)")
	cmd.Flags().StringVar(&o.sessionID, "session-id", "", "fixed session id (default: random)")
	cmd.Flags().StringVar(&o.logLevel, "log-level", d.Log.Level, "log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&o.logFormat, "log-format", d.Log.Format, "log format (console, json)")
	o.storage.addFlags(cmd)
}

func (o *dashboardOptions) applyConfigIfUnset(cmd *cobra.Command, cfg *config.Config) {
	if !cmd.Flags().Changed("api-url") {
		o.baseURL = cfg.API.BaseURL
	}
	if !cmd.Flags().Changed("api-timeout") {
		o.timeout = cfg.API.Timeout
	}
	if !cmd.Flags().Changed("locale") {
		o.locale = cfg.Locale
	}
	if !cmd.Flags().Changed("session-id") {
		o.sessionID = cfg.Dashboard.SessionID
	}
	if !cmd.Flags().Changed("log-level") {
		o.logLevel = cfg.Log.Level
	}
	if !cmd.Flags().Changed("log-format") {
		o.logFormat = cfg.Log.Format
	}
	o.storage.applyConfigIfUnset(cmd, &cfg.Storage)
}

// resolve merges the config file (if any) with explicitly set flags.
func (o *dashboardOptions) resolve(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		loaded, err := config.LoadFile(o.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	o.applyConfigIfUnset(cmd, &cfg)
	if err := o.storage.normalize(); err != nil {
		return cfg, err
	}

	cfg.API.BaseURL = o.baseURL
	cfg.API.Timeout = o.timeout
	cfg.Locale = o.locale
	cfg.Dashboard.SessionID = o.sessionID
	cfg.Log.Level = o.logLevel
	cfg.Log.Format = o.logFormat
	cfg.Storage = o.storage.toConfig()

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// dashboardEnv is everything a command needs to drive one session.
type dashboardEnv struct {
	cfg     config.Config
	log     *zap.Logger
	store   storage.Storage
	client  *api.Client
	session *dashboard.Session
}

func (o *dashboardOptions) open(cmd *cobra.Command, extra ...dashboard.SessionOption) (*dashboardEnv, error) {
	cfg, err := o.resolve(cmd)
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	return newDashboardEnv(cfg, log, extra...)
}

func newDashboardEnv(cfg config.Config, log *zap.Logger, extra ...dashboard.SessionOption) (*dashboardEnv, error) {
	f, err := view.NewFormatter(cfg.Locale)
	if err != nil {
		return nil, err
	}
	store, err := openStorage(cfg.Storage)
	if err != nil {
		return nil, err
	}

	client := api.New(cfg.API.BaseURL, api.WithTimeout(cfg.API.Timeout), api.WithLogger(log))
	opts := []dashboard.SessionOption{
		dashboard.WithSessionID(cfg.Dashboard.SessionID),
		dashboard.WithLogger(log),
		dashboard.WithFormatter(f),
		dashboard.WithMapConfig(mapConfig(cfg.Map)),
	}
	opts = append(opts, extra...)

	return &dashboardEnv{
		cfg:     cfg,
		log:     log,
		store:   store,
		client:  client,
		session: dashboard.NewSession(client, store, opts...),
	}, nil
}

// start initializes the session and, when business is set, switches to it.
func (e *dashboardEnv) start(ctx context.Context, business string) error {
	err := e.session.Init(ctx)
	if business != "" && api.ID(business) != e.session.Snapshot().BusinessID {
		err = errors.Join(err, e.session.Select(ctx, api.ID(business)))
	}
	if e.session.Snapshot().BusinessID == "" {
		err = errors.Join(err, errNoBusiness)
	}
	return err
}

func (e *dashboardEnv) Close() error {
	errs := []error{
		e.session.Close(context.Background()),
		e.store.Close(),
	}
	_ = e.log.Sync()
	return errors.Join(errs...)
}

func mapConfig(m config.MapConfig) dashboard.MapConfig {
	mc := dashboard.DefaultMapConfig()
	mc.Center = view.LatLng{Lat: m.CenterLat, Lng: m.CenterLng}
	mc.Zoom = m.Zoom
	mc.Tiles = dashboard.TileLayer{
		URL:         m.TileURL,
		Attribution: m.Attribution,
		Subdomains:  m.Subdomains,
		MaxZoom:     m.MaxZoom,
	}
	return mc
}
