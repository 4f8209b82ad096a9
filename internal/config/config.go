package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// Config is the root configuration for daylog, stored in
// ~/.daylog/config.yaml and overridable with DAYLOG_* environment variables.
type Config struct {
	// DataDir is the root of the local data directory. Empty = ~/.daylog.
	DataDir  string         `koanf:"data_dir"`
	Storage  StorageConfig  `koanf:"storage"`
	Identity IdentityConfig `koanf:"identity"`
	Share    ShareConfig    `koanf:"share"`
	Log      LogConfig      `koanf:"log"`
	Projects ProjectsConfig `koanf:"projects"`
}

// StorageConfig selects the document store backend.
type StorageConfig struct {
	// Driver is "file" (one JSON file per document) or "sqlite".
	Driver string `koanf:"driver"`
	// SQLitePath is the database file. Empty = <data_dir>/daylog.db.
	SQLitePath string `koanf:"sqlite_path"`
}

// IdentityConfig holds the identity provider settings for the OAuth2 device
// code flow.
type IdentityConfig struct {
	// TenantID is the Azure AD tenant. Use "common" for personal/multi-tenant accounts.
	TenantID string `koanf:"tenant_id"`
	// ClientID is the public client ID used for the device code flow.
	ClientID string `koanf:"client_id"`
	// DeviceAuthURL and TokenURL override the Microsoft endpoints derived
	// from TenantID, for any other OAuth2 provider.
	DeviceAuthURL string `koanf:"device_auth_url"`
	TokenURL      string `koanf:"token_url"`
	// UserInfoURL is the profile endpoint. Empty = Microsoft Graph /me.
	UserInfoURL string   `koanf:"userinfo_url"`
	Scopes      []string `koanf:"scopes"`
}

// ShareConfig controls share snapshots and the HTTP surface serving them.
type ShareConfig struct {
	TTL     time.Duration `koanf:"ttl"`
	Listen  string        `koanf:"listen"`
	BaseURL string        `koanf:"base_url"`
}

// LogConfig controls the diagnostic logger.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// ProjectsConfig holds the project list committed when none exist yet.
type ProjectsConfig struct {
	Seed []string `koanf:"seed"`
}

const (
	// DriverFile stores documents as JSON files under the data directory.
	DriverFile = "file"
	// DriverSQLite stores documents in a single SQLite database.
	DriverSQLite = "sqlite"

	// DefaultTenantID is the Microsoft "common" tenant (supports personal and
	// multi-tenant organisational accounts without additional registration).
	DefaultTenantID = "common"
	// DefaultClientID is the well-known public Azure CLI app ID. It supports
	// device code flow without a client secret.
	DefaultClientID = "04b07795-8542-4c4a-95af-30b2c573d5ab"
	// DefaultShareTTL is how long a share link stays valid.
	DefaultShareTTL = 30 * 24 * time.Hour
	// DefaultListen is the address `daylog share serve` binds to.
	DefaultListen = "127.0.0.1:8080"

	envPrefix = "DAYLOG_"
)

// DefaultScopes are requested when none are configured.
var DefaultScopes = []string{"User.Read", "offline_access"}

// Default returns a Config pre-filled with the built-in defaults.
func Default() Config {
	cfg := Config{}
	applyDefaults(&cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.DataDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.DataDir = filepath.Join(home, ".daylog")
		}
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = DriverFile
	}
	if cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = filepath.Join(cfg.DataDir, "daylog.db")
	}
	if cfg.Identity.TenantID == "" {
		cfg.Identity.TenantID = DefaultTenantID
	}
	if cfg.Identity.ClientID == "" {
		cfg.Identity.ClientID = DefaultClientID
	}
	if len(cfg.Identity.Scopes) == 0 {
		cfg.Identity.Scopes = append([]string(nil), DefaultScopes...)
	}
	if cfg.Share.TTL <= 0 {
		cfg.Share.TTL = DefaultShareTTL
	}
	if cfg.Share.Listen == "" {
		cfg.Share.Listen = DefaultListen
	}
	if cfg.Share.BaseURL == "" {
		cfg.Share.BaseURL = "http://" + cfg.Share.Listen
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
}

// Validate rejects settings no component can work with.
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case DriverFile, DriverSQLite:
	default:
		return fmt.Errorf("storage.driver must be %q or %q, got %q", DriverFile, DriverSQLite, c.Storage.Driver)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be \"console\" or \"json\", got %q", c.Log.Format)
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is empty and the home directory is unknown")
	}
	return nil
}

// configTemplate is the annotated config written on first run.
const configTemplate = `# daylog configuration - ~/.daylog/config.yaml
#
# All settings are optional; the built-in defaults work out of the box.
# Every key can be overridden with an environment variable, e.g.
#   DAYLOG_SHARE_TTL=48h  ->  share.ttl
#   DAYLOG_DATA_DIR=/tmp  ->  data_dir

# Root of the local data directory.
# data_dir: ~/.daylog

storage:
  # "file"   - one JSON file per day under data_dir (default)
  # "sqlite" - a single SQLite database
  driver: file
  # sqlite_path: ~/.daylog/daylog.db

identity:
  # Azure AD tenant ID. "common" works for personal Microsoft accounts and
  # any organisation.
  tenant_id: common
  # Application (client) ID for the OAuth2 device code flow. The built-in
  # value is the public Azure CLI app; no app registration needed.
  client_id: 04b07795-8542-4c4a-95af-30b2c573d5ab
  # Other OAuth2 providers: set the endpoints explicitly.
  # device_auth_url: https://example.com/oauth/device
  # token_url: https://example.com/oauth/token
  # userinfo_url: https://example.com/userinfo
  scopes:
    - User.Read
    - offline_access

share:
  # How long a share link stays valid.
  ttl: 720h
  # Address used by: daylog share serve
  listen: 127.0.0.1:8080
  # Public URL prefix printed for new share links.
  # base_url: https://daylog.example.com

log:
  # debug, info, warn, error
  level: info
  # console or json
  format: console

# Committed in one batch when the project list is empty.
# projects:
#   seed: [Internal, Support]
`

// FilePath returns the path to ~/.daylog/config.yaml.
func FilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".daylog", "config.yaml"), nil
}

// Load reads the config file at path (FilePath when empty), creating it with
// annotated defaults on first run, then applies DAYLOG_* overrides.
func Load(path string) (Config, error) {
	if path == "" {
		p, err := FilePath()
		if err != nil {
			return Default(), err
		}
		path = p
	}

	k := koanf.New(".")

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		if writeErr := writeDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
		}
	case err != nil:
		return Default(), fmt.Errorf("reading config file %s: %w", path, err)
	default:
		if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
			return Default(), fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return Default(), fmt.Errorf("loading environment overrides: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Default(), fmt.Errorf("decoding config: %w", err)
	}
	cfg.DataDir = expandHome(cfg.DataDir)
	cfg.Storage.SQLitePath = expandHome(cfg.Storage.SQLitePath)
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return Default(), fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// envKey maps DAYLOG_SECTION_FIELD_NAME to section.field_name. Top-level keys
// without a section (DAYLOG_DATA_DIR) map to themselves.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	if key == "data_dir" {
		return key
	}
	parts := strings.SplitN(key, "_", 2)
	if len(parts) == 1 {
		return key
	}
	return parts[0] + "." + parts[1]
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
