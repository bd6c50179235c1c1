// Package config loads and validates application configuration.
// Values are layered with koanf: built-in defaults, then an optional YAML
// file named by CONFIG_FILE, then environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration values for the API server.
// Each koanf key is the lowercase form of its environment variable.
type Config struct {
	// Port is the TCP port the HTTP server listens on.
	Port string `koanf:"port" validate:"required,numeric"`

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string `koanf:"database_url" validate:"required"`

	LogLevel  string `koanf:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string `koanf:"log_format" validate:"oneof=json text pretty"`
	LogFile   string `koanf:"log_file"`

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string `koanf:"cors_origins" validate:"dive,url"`

	// AdminUser and one of AdminPassword / AdminPasswordHash make up the
	// single admin account.
	AdminUser         string `koanf:"admin_user" validate:"required"`
	AdminPassword     string `koanf:"admin_password"`
	AdminPasswordHash string `koanf:"admin_password_hash" validate:"required_without=AdminPassword"`

	// SessionSecret signs session tokens. At least 32 characters.
	SessionSecret string        `koanf:"session_secret" validate:"required,min=32"`
	SessionTTL    time.Duration `koanf:"session_ttl" validate:"min=1m"`
	SecureCookies bool          `koanf:"secure_cookies"`

	// UploadBucket is a gocloud.dev blob URL (file:// or mem://).
	UploadBucket   string `koanf:"upload_bucket" validate:"required"`
	MaxUploadBytes int64  `koanf:"max_upload_bytes" validate:"min=1"`
	MaxBodyBytes   int64  `koanf:"max_body_bytes" validate:"min=1"`

	TagCategories []string `koanf:"tag_categories" validate:"min=1,dive,required"`

	// SMTP settings. With SMTPHost empty, order notifications are logged
	// instead of mailed.
	SMTPHost       string `koanf:"smtp_host"`
	SMTPPort       int    `koanf:"smtp_port" validate:"min=1,max=65535"`
	SMTPUsername   string `koanf:"smtp_username"`
	SMTPPassword   string `koanf:"smtp_password"`
	MailFrom       string `koanf:"mail_from" validate:"required_with=SMTPHost,omitempty,email"`
	OrderRecipient string `koanf:"order_recipient" validate:"required_with=SMTPHost,omitempty,email"`

	// LoginRate is the sustained login attempts per second per client IP.
	LoginRate  float64 `koanf:"login_rate" validate:"gt=0"`
	LoginBurst int     `koanf:"login_burst" validate:"min=1"`
}

// SMTPEnabled reports whether order notifications go out by mail.
func (c Config) SMTPEnabled() bool {
	return c.SMTPHost != ""
}

func defaults() map[string]any {
	return map[string]any{
		"port":             "8080",
		"log_level":        "info",
		"log_format":       "json",
		"cors_origins":     "http://localhost:5173",
		"admin_user":       "admin",
		"session_ttl":      "12h",
		"upload_bucket":    "file://./uploads",
		"max_upload_bytes": 8 << 20,
		"max_body_bytes":   1 << 20,
		"tag_categories":   "type,theme,color",
		"smtp_port":        587,
		"login_rate":       0.2,
		"login_burst":      5,
	}
}

// Load reads configuration and returns a validated Config.
// Returns an error naming every environment variable that is missing or invalid.
func Load() (Config, error) {
	k, err := load(defaults())
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config.Load: %w", err)
	}
	cfg.CORSOrigins = splitCSV(cfg.CORSOrigins)
	cfg.TagCategories = splitCSV(cfg.TagCategories)

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ClientConfig configures the terminal client.
type ClientConfig struct {
	APIURL    string        `koanf:"shop_api_url" validate:"required,url"`
	StateDir  string        `koanf:"shop_state_dir" validate:"required"`
	LogLevel  string        `koanf:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string        `koanf:"log_format" validate:"oneof=json text pretty"`
	Timeout   time.Duration `koanf:"shop_timeout" validate:"min=1s"`
}

// LoadClient reads the terminal client's configuration.
func LoadClient() (ClientConfig, error) {
	stateDir := ".boutique"
	if dir, err := os.UserConfigDir(); err == nil {
		stateDir = filepath.Join(dir, "boutique")
	}
	k, err := load(map[string]any{
		"shop_api_url":   "http://localhost:8080",
		"shop_state_dir": stateDir,
		"log_level":      "warn",
		"log_format":     "pretty",
		"shop_timeout":   "15s",
	})
	if err != nil {
		return ClientConfig{}, err
	}

	var cfg ClientConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return ClientConfig{}, fmt.Errorf("config.LoadClient: %w", err)
	}
	if err := validate(cfg); err != nil {
		return ClientConfig{}, err
	}
	return cfg, nil
}

// load layers defaults, the optional CONFIG_FILE and the environment.
// Only environment variables naming a key in defaults or in the YAML file are
// read, and empty ones are ignored so they fall back to the default.
func load(defs map[string]any) (*koanf.Koanf, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defs, "."), nil); err != nil {
		return nil, fmt.Errorf("config: loading defaults: %w", err)
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: loading %s: %w", path, err)
		}
	}

	err := k.Load(env.ProviderWithValue("", ".", func(key, value string) (string, any) {
		if value == "" {
			return "", nil
		}
		name := strings.ToLower(key)
		if !knownKeys[name] {
			return "", nil
		}
		return name, value
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("config: loading env vars: %w", err)
	}
	return k, nil
}

// knownKeys lists every koanf key that may be set from the environment.
var knownKeys = func() map[string]bool {
	keys := make(map[string]bool)
	for _, t := range []reflect.Type{reflect.TypeOf(Config{}), reflect.TypeOf(ClientConfig{})} {
		for i := range t.NumField() {
			if name := t.Field(i).Tag.Get("koanf"); name != "" {
				keys[name] = true
			}
		}
	}
	return keys
}()

var validate = func() func(any) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return strings.ToUpper(fld.Tag.Get("koanf"))
	})

	return func(cfg any) error {
		err := v.Struct(cfg)
		if err == nil {
			return nil
		}
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("config: %w", err)
		}
		problems := make([]string, 0, len(verrs))
		for _, e := range verrs {
			problems = append(problems, describe(e))
		}
		sort.Strings(problems)
		return fmt.Errorf("config: %s", strings.Join(problems, "; "))
	}
}()

func describe(e validator.FieldError) string {
	name := e.Field()
	switch e.Tag() {
	case "required":
		return name + " is required"
	case "required_without":
		return name + " is required when ADMIN_PASSWORD is not set"
	case "required_with":
		return name + " is required when SMTP_HOST is set"
	case "min":
		return fmt.Sprintf("%s must be at least %s", name, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", name, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", name, e.Param())
	default:
		return fmt.Sprintf("%s is invalid (%s)", name, e.Tag())
	}
}

// splitCSV splits comma-separated entries into a trimmed slice, ignoring
// empty ones. Environment values arrive as one entry, YAML lists as many.
func splitCSV(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if t := strings.TrimSpace(part); t != "" {
				out = append(out, t)
			}
		}
	}
	return out
}
