package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	imap "github.com/BrianLeishman/imapsock"
	"github.com/BrianLeishman/imapsock/internal/config"
	"github.com/BrianLeishman/imapsock/internal/credential"
	"github.com/BrianLeishman/imapsock/internal/metrics"
)

// globalOptions holds the persistent flags shared by every subcommand.
type globalOptions struct {
	flags   config.Flags
	ssl     bool
	oauth   bool
	debug   bool
	noStore bool
}

func (o *globalOptions) register(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringVar(&o.flags.ConfigPath, "config", "./imapctl.toml", "Path to configuration file")
	pf.StringVar(&o.flags.EnvPath, "env", ".env", "Path to a .env file with IMAP_* variables")
	pf.StringVar(&o.flags.Host, "host", "", "IMAP server host")
	pf.IntVar(&o.flags.Port, "port", 0, "IMAP server port")
	pf.BoolVar(&o.ssl, "ssl", true, "Use implicit TLS")
	pf.BoolVar(&o.oauth, "oauth", false, "Authenticate with XOAUTH2 instead of LOGIN")
	pf.StringVar(&o.flags.Username, "user", "", "IMAP username")
	pf.StringVar(&o.flags.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.BoolVar(&o.debug, "debug", false, "Print the protocol transcript to stderr")
	pf.BoolVar(&o.noStore, "no-keyring", false, "Do not read the secret from the OS keyring")
}

// load resolves the effective configuration and makes sure a secret is set.
func (o *globalOptions) load(cmd *cobra.Command) (config.Config, error) {
	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return cfg, err
	}
	if cfg.Secret() == "" {
		secret, err := o.resolveSecret(cfg)
		if err != nil {
			return cfg, err
		}
		cfg.SetSecret(secret)
	}
	return cfg, nil
}

// loadConfig merges the file, then .env and IMAP_* variables, then flags
// that were set explicitly.
func (o *globalOptions) loadConfig(cmd *cobra.Command) (config.Config, error) {
	f := o.flags
	if cmd.Flags().Changed("ssl") {
		f.SSL = &o.ssl
	}
	if cmd.Flags().Changed("oauth") {
		f.OAuth = &o.oauth
	}
	if cmd.Flags().Changed("debug") {
		f.Debug = &o.debug
	}

	cfg, err := config.LoadWithFlags(&f)
	if err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// resolveSecret looks the secret up in the keyring and falls back to an
// interactive prompt.
func (o *globalOptions) resolveSecret(cfg config.Config) (string, error) {
	if !o.noStore {
		secret, err := credential.Get(credential.Key(cfg.Username, cfg.Host))
		if err == nil {
			return secret, nil
		}
		if !errors.Is(err, credential.ErrNotFound) {
			slog.Warn("keyring unavailable", "error", err)
		}
	}
	return promptSecret(cfg)
}

func promptSecret(cfg config.Config) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("no password or access token configured")
	}
	what := "Password"
	if cfg.OAuth {
		what = "Access token"
	}
	fmt.Fprintf(os.Stderr, "%s for %s@%s: ", what, cfg.Username, cfg.Host)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read secret: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

// withClient loads the configuration, logs in, runs fn and logs out.
func (o *globalOptions) withClient(cmd *cobra.Command, fn func(c *imap.Client) error) error {
	cfg, err := o.load(cmd)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	imap.SetSlogLogger(logger)
	imap.Verbose = cfg.SlogLevel() == slog.LevelDebug

	var collector metrics.Collector = &metrics.NoopCollector{}
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		collector = metrics.NewPrometheusCollector(reg)
		srv := metrics.NewPrometheusServer(cfg.Metrics.Address, cfg.Metrics.Path, reg)
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		go func() {
			if err := srv.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("metrics server error", "error", err)
			}
		}()
	}

	clientCfg := cfg.ClientConfig()
	clientCfg.DebugOutput = io.Discard
	c := imap.New(clientCfg, imap.WithMetrics(collector))
	if cfg.Debug {
		defer func() { _ = c.PrintDebug(os.Stderr) }()
	}

	if err := c.Login(); err != nil {
		if c.Connected() {
			_ = c.Disconnect()
		}
		return err
	}

	runErr := fn(c)
	if err := c.Logout(); err != nil && runErr == nil {
		return err
	}
	return runErr
}
