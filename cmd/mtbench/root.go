package main

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"mtbench/internal/backend/remote"
	"mtbench/internal/catalog"
	"mtbench/internal/config"
	"mtbench/internal/translator"
)

// app carries the merged configuration and the shared dependencies built from it.
type app struct {
	cfg     config.Config
	cfgPath string
	log     zerolog.Logger
	catalog *catalog.Catalog
}

// newBackend builds the model backend; swapped out in tests.
var newBackend = func(a *app) translator.Backend {
	if a.cfg.BackendURL == "" {
		return nil
	}
	return remote.New(remote.Options{
		BaseURL:        a.cfg.BackendURL,
		APIKey:         a.cfg.BackendAPIKey,
		RequestTimeout: time.Duration(a.cfg.BackendTimeout) * time.Second,
		Logger:         &a.log,
	})
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "mtbench",
		Short:         "Machine translation benchmarking over MBART, MBART50 and M2M100",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgPath, "config", "", "Path to config file (.yaml/.yml/.json/.toml)")
	pf.String("catalog", "", "Path to a catalog file replacing the built-in model/task tables")
	pf.String("backend-url", os.Getenv("MTBENCH_BACKEND_URL"), "Base URL of the model backend sidecar")
	pf.String("backend-api-key", "", "Bearer token sent to the model backend")
	pf.Int("backend-timeout-sec", 0, "Per-request timeout for backend calls (0 = none)")
	pf.String("log-level", "info", "Log level: debug, info, warn, error")

	root.AddCommand(newServeCmd(a), newTranslateCmd(a), newResolveCmd(a), newTasksCmd(a), newModelsCmd(a))
	return root
}

// init loads the config file, lets explicitly set flags override it, then
// builds the logger and the catalog.
func (a *app) init(cmd *cobra.Command) error {
	if a.cfgPath != "" {
		cfg, err := config.Load(a.cfgPath)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}
	fs := cmd.Flags()
	if fs.Changed("catalog") || a.cfg.CatalogPath == "" {
		a.cfg.CatalogPath, _ = fs.GetString("catalog")
	}
	if fs.Changed("backend-url") || a.cfg.BackendURL == "" {
		a.cfg.BackendURL, _ = fs.GetString("backend-url")
	}
	if fs.Changed("backend-api-key") || a.cfg.BackendAPIKey == "" {
		a.cfg.BackendAPIKey, _ = fs.GetString("backend-api-key")
	}
	if fs.Changed("backend-timeout-sec") || a.cfg.BackendTimeout == 0 {
		a.cfg.BackendTimeout, _ = fs.GetInt("backend-timeout-sec")
	}
	if fs.Changed("log-level") || a.cfg.LogLevel == "" {
		a.cfg.LogLevel, _ = fs.GetString("log-level")
	}

	a.log = newLogger(cmd.ErrOrStderr(), a.cfg.LogLevel)
	cat, err := catalog.Load(a.cfg.CatalogPath)
	if err != nil {
		return err
	}
	a.catalog = cat
	return nil
}

func newLogger(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
		Level(lvl).With().Timestamp().Logger()
}

// splitCSV splits a comma-separated list, trimming blanks and dropping empty items.
func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
