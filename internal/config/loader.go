package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Flags holds command-line flag values. Nil pointers and empty strings mean
// the flag was not given.
type Flags struct {
	ConfigPath string
	EnvPath    string
	Host       string
	Port       int
	SSL        *bool
	OAuth      *bool
	Username   string
	LogLevel   string
	Debug      *bool
}

// Load parses a TOML configuration file and returns the Config.
// If the file does not exist, returns the default configuration.
// Keys missing from the file keep their default values.
func Load(path string) (Config, error) {
	fileConfig := FileConfig{IMAP: Default()}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fileConfig.IMAP, nil
		}
		return fileConfig.IMAP, fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, &fileConfig); err != nil {
		return Default(), fmt.Errorf("parsing config file: %w", err)
	}

	return fileConfig.IMAP, nil
}

// LoadEnv loads a .env file into the process environment, without
// overriding variables that are already set, and then applies the IMAP_*
// variables to cfg. A missing .env file is not an error.
func LoadEnv(cfg Config, path string) (Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
			return cfg, fmt.Errorf("loading %s: %w", path, err)
		}
	}
	return ApplyEnv(cfg, os.LookupEnv)
}

// ApplyEnv merges IMAP_* variables found through lookup into cfg.
func ApplyEnv(cfg Config, lookup func(string) (string, bool)) (Config, error) {
	if v, ok := lookup("IMAP_HOST"); ok && v != "" {
		cfg.Host = v
	}

	if v, ok := lookup("IMAP_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid IMAP_PORT %q: %w", v, err)
		}
		cfg.Port = port
	}

	for _, b := range []struct {
		key  string
		dest *bool
	}{
		{"IMAP_SSL", &cfg.SSL},
		{"IMAP_OAUTH", &cfg.OAuth},
		{"IMAP_DEBUG", &cfg.Debug},
	} {
		v, ok := lookup(b.key)
		if !ok || v == "" {
			continue
		}
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid %s %q: %w", b.key, v, err)
		}
		*b.dest = parsed
	}

	if v, ok := lookup("IMAP_USERNAME"); ok && v != "" {
		cfg.Username = v
	}

	if v, ok := lookup("IMAP_PASSWORD"); ok && v != "" {
		cfg.Password = v
	}

	if v, ok := lookup("IMAP_ACCESS_TOKEN"); ok && v != "" {
		cfg.AccessToken = v
	}

	return cfg, nil
}

// ApplyFlags merges command-line flag values into the config.
// Non-zero/non-nil flag values override config file and environment values.
func ApplyFlags(cfg Config, f *Flags) Config {
	if f.Host != "" {
		cfg.Host = f.Host
	}

	if f.Port > 0 {
		cfg.Port = f.Port
	}

	if f.SSL != nil {
		cfg.SSL = *f.SSL
	}

	if f.OAuth != nil {
		cfg.OAuth = *f.OAuth
	}

	if f.Username != "" {
		cfg.Username = f.Username
	}

	if f.LogLevel != "" {
		cfg.LogLevel = f.LogLevel
	}

	if f.Debug != nil {
		cfg.Debug = *f.Debug
	}

	return cfg
}

// LoadWithFlags loads the file named in flags, applies the environment and
// then the flag overrides.
func LoadWithFlags(f *Flags) (Config, error) {
	cfg, err := Load(f.ConfigPath)
	if err != nil {
		return cfg, err
	}
	cfg, err = LoadEnv(cfg, f.EnvPath)
	if err != nil {
		return cfg, err
	}
	return ApplyFlags(cfg, f), nil
}
