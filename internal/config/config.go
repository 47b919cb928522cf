// Package config provides the Config struct and loader for dqwatch.yaml
// configuration files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ymajdalawi/dqwatch/internal/validation"
	"gopkg.in/yaml.v3"
)

// ConfigFileName is the file the loader looks for when no explicit path is
// given.
const ConfigFileName = "dqwatch.yaml"

// Default values for configuration. New() references them and no other code
// should duplicate them.
const (
	DefaultDBHost = "localhost"
	DefaultDBPort = 3306

	DefaultMaxListItems = 10
	DefaultMaxTableRows = 10
)

// Environment variables that override file values. Secrets normally arrive
// this way so they stay out of the config file.
const (
	EnvPrimaryPassword   = "DQWATCH_PRIMARY_DB_PASSWORD"
	EnvSecondaryPassword = "DQWATCH_SECONDARY_DB_PASSWORD"
	EnvEmailClientSecret = "DQWATCH_EMAIL_CLIENT_SECRET"
)

// DatabaseConfig holds connection parameters for one database target.
type DatabaseConfig struct {
	Host     string `yaml:"host,omitempty"`
	Port     int    `yaml:"port,omitempty"`
	User     string `yaml:"user,omitempty"`
	Password string `yaml:"password,omitempty"`
	Name     string `yaml:"name,omitempty"`
}

// DatabasesConfig holds the two database targets the checks query.
type DatabasesConfig struct {
	Primary   DatabaseConfig `yaml:"primary,omitempty"`
	Secondary DatabaseConfig `yaml:"secondary,omitempty"`
}

// EmailConfig holds the Microsoft Graph delivery settings.
type EmailConfig struct {
	TenantID     string   `yaml:"tenant_id,omitempty"`
	ClientID     string   `yaml:"client_id,omitempty"`
	ClientSecret string   `yaml:"client_secret,omitempty"`
	Sender       string   `yaml:"sender,omitempty"`
	Recipients   []string `yaml:"recipients,omitempty"`
}

// Configured reports whether any email delivery settings are present.
func (e EmailConfig) Configured() bool {
	return e.TenantID != "" || e.ClientID != "" || e.Sender != "" || len(e.Recipients) > 0
}

// ReportConfig holds rendering limits for the emailed report.
type ReportConfig struct {
	MaxListItems int `yaml:"max_list_items,omitempty"`
	MaxTableRows int `yaml:"max_table_rows,omitempty"`
}

// ChecksConfig holds per-check settings. Settings captures every key except
// "disabled" as a free-form map; each check decodes its own block.
type ChecksConfig struct {
	Disabled []string                  `yaml:"disabled,omitempty"`
	Settings map[string]map[string]any `yaml:",inline"`
}

// SettingsFor returns the settings block for the named check, or nil.
func (c ChecksConfig) SettingsFor(name string) map[string]any {
	return c.Settings[name]
}

// IsDisabled reports whether the named check is listed as disabled.
func (c ChecksConfig) IsDisabled(name string) bool {
	for _, d := range c.Disabled {
		if strings.EqualFold(d, name) {
			return true
		}
	}
	return false
}

// Config is the top-level configuration loaded from dqwatch.yaml.
type Config struct {
	Databases DatabasesConfig `yaml:"databases,omitempty"`
	Email     EmailConfig     `yaml:"email,omitempty"`
	Report    ReportConfig    `yaml:"report,omitempty"`
	Checks    ChecksConfig    `yaml:"checks,omitempty"`
}

// New returns a Config with all hard-coded defaults populated.
func New() *Config {
	return &Config{
		Databases: DatabasesConfig{
			Primary:   DatabaseConfig{Host: DefaultDBHost, Port: DefaultDBPort},
			Secondary: DatabaseConfig{Host: DefaultDBHost, Port: DefaultDBPort},
		},
		Report: ReportConfig{
			MaxListItems: DefaultMaxListItems,
			MaxTableRows: DefaultMaxTableRows,
		},
	}
}

// Load reads the config file at path (or finds dqwatch.yaml by walking up
// from the working directory when path is empty), validates it against the
// embedded schema, overlays it onto defaults and applies environment
// overrides. A missing file yields defaults with a nil error; a file that
// fails schema validation is an error.
func Load(path string) (*Config, error) {
	cfg := New()

	source := ConfigFileName
	var data []byte
	var err error
	if path != "" {
		source = path
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
	} else {
		data, err = findConfigFile(".")
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				applyEnv(cfg)
				return cfg, nil
			}
			return nil, fmt.Errorf("loading %s: %w", ConfigFileName, err)
		}
	}

	if errs := validation.ValidateConfigBytes(data); len(errs) > 0 {
		return nil, fmt.Errorf("invalid config %s: %s", source, strings.Join(errs, "; "))
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", source, err)
	}

	mergeConfig(cfg, &fileCfg)
	applyEnv(cfg)
	return cfg, nil
}

// findConfigFile walks up from dir looking for dqwatch.yaml (max 10 levels).
// Returns os.ErrNotExist if no config file is found; real I/O errors
// propagate.
func findConfigFile(dir string) ([]byte, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < 10; i++ {
		p := filepath.Join(dir, ConfigFileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}
	return nil, os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *Config) {
	mergeDatabase(&dst.Databases.Primary, src.Databases.Primary)
	mergeDatabase(&dst.Databases.Secondary, src.Databases.Secondary)

	if src.Email.TenantID != "" {
		dst.Email.TenantID = src.Email.TenantID
	}
	if src.Email.ClientID != "" {
		dst.Email.ClientID = src.Email.ClientID
	}
	if src.Email.ClientSecret != "" {
		dst.Email.ClientSecret = src.Email.ClientSecret
	}
	if src.Email.Sender != "" {
		dst.Email.Sender = src.Email.Sender
	}
	if len(src.Email.Recipients) > 0 {
		dst.Email.Recipients = src.Email.Recipients
	}

	if src.Report.MaxListItems > 0 {
		dst.Report.MaxListItems = src.Report.MaxListItems
	}
	if src.Report.MaxTableRows > 0 {
		dst.Report.MaxTableRows = src.Report.MaxTableRows
	}

	dst.Checks = src.Checks
}

func mergeDatabase(dst *DatabaseConfig, src DatabaseConfig) {
	if src.Host != "" {
		dst.Host = src.Host
	}
	if src.Port > 0 {
		dst.Port = src.Port
	}
	if src.User != "" {
		dst.User = src.User
	}
	if src.Password != "" {
		dst.Password = src.Password
	}
	if src.Name != "" {
		dst.Name = src.Name
	}
}

// applyEnv overrides secrets from the environment.
func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvPrimaryPassword); v != "" {
		cfg.Databases.Primary.Password = v
	}
	if v := os.Getenv(EnvSecondaryPassword); v != "" {
		cfg.Databases.Secondary.Password = v
	}
	if v := os.Getenv(EnvEmailClientSecret); v != "" {
		cfg.Email.ClientSecret = v
	}
}
