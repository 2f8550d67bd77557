/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Seednode/satyasatyam/game"
)

const (
	storeMemory   = "memory"
	storeFile     = "file"
	storePostgres = "postgres"
)

type Config struct {
	baseURL        string
	bind           string
	databaseURL    string
	dataDir        string
	pointsPool     int
	pollInterval   time.Duration
	port           int
	prefix         string
	profile        bool
	rateBurst      int
	rateLimit      float64
	saveRetries    int
	sessionTimeout time.Duration
	store          string
	tlsCert        string
	tlsKey         string
	verbose        bool
	version        bool
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	switch c.store {
	case storeMemory, storeFile:
	case storePostgres:
		if c.databaseURL == "" {
			return errors.New("--database-url is required when --store=postgres")
		}
	default:
		return fmt.Errorf("invalid store (must be one of memory, file, postgres): %q", c.store)
	}
	if c.store == storeFile && c.dataDir == "" {
		return errors.New("--data-dir is required when --store=file")
	}
	if c.pointsPool < 1 {
		return fmt.Errorf("invalid points pool (must be positive): %d", c.pointsPool)
	}
	if c.saveRetries < 0 {
		return fmt.Errorf("invalid save retries (must not be negative): %d", c.saveRetries)
	}
	if c.pollInterval <= 0 {
		return fmt.Errorf("invalid poll interval (must be positive): %s", c.pollInterval)
	}
	if c.rateLimit < 0 || c.rateBurst < 0 {
		return errors.New("rate limit and burst must not be negative")
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("SATYASATYAM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "satyasatyam",
		Short:         "A game of truth and untruth for four players, with viewers welcome.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVar(&cfg.baseURL, "base-url", "", "external URL used in share links, derived from each request if unset (env: SATYASATYAM_BASE_URL)")
	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: SATYASATYAM_BIND)")
	fs.StringVar(&cfg.databaseURL, "database-url", "", "postgres connection string, for --store=postgres (env: SATYASATYAM_DATABASE_URL)")
	fs.StringVar(&cfg.dataDir, "data-dir", "gamerooms", "directory holding room documents, for --store=file (env: SATYASATYAM_DATA_DIR)")
	fs.IntVar(&cfg.pointsPool, "points-pool", game.DefaultPointsPool, "points shared by everyone who guesses a round correctly (env: SATYASATYAM_POINTS_POOL)")
	fs.DurationVar(&cfg.pollInterval, "poll-interval", 2*time.Second, "how often websocket watchers check their room for changes (env: SATYASATYAM_POLL_INTERVAL)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: SATYASATYAM_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: SATYASATYAM_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: SATYASATYAM_PROFILE)")
	fs.IntVar(&cfg.rateBurst, "rate-burst", 10, "actions a single player may burst before being limited (env: SATYASATYAM_RATE_BURST)")
	fs.Float64Var(&cfg.rateLimit, "rate-limit", 5, "sustained actions per second allowed per player, 0 to disable (env: SATYASATYAM_RATE_LIMIT)")
	fs.IntVar(&cfg.saveRetries, "save-retries", game.DefaultSaveRetries, "times an action is retried after a concurrent update (env: SATYASATYAM_SAVE_RETRIES)")
	fs.DurationVar(&cfg.sessionTimeout, "session-timeout", 60*time.Minute, "time before idle rooms are deleted, 0 to keep forever (env: SATYASATYAM_SESSION_TIMEOUT)")
	fs.StringVar(&cfg.store, "store", storeMemory, "room store to use: memory, file or postgres (env: SATYASATYAM_STORE)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: SATYASATYAM_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: SATYASATYAM_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: SATYASATYAM_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: SATYASATYAM_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("satyasatyam v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
