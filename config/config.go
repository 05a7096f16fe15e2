// Package config loads inqwheel settings from a YAML file, INQWHEEL_*
// environment variables and bound command-line flags, in viper's usual order
// of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	AppName        = "inqwheel"
	ConfigFileName = ".inqwheel"
	EnvPrefix      = "INQWHEEL"
)

type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	Codec    CodecConfig    `mapstructure:"codec"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ServerConfig struct {
	Addr           string        `mapstructure:"addr"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	RateLimit      int           `mapstructure:"rate_limit"`
	RateWindow     time.Duration `mapstructure:"rate_window"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	Production     bool          `mapstructure:"production"`
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
	// SealSecret, when set, seals stored keys with AES-GCM.
	SealSecret string `mapstructure:"seal_secret"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type SMTPConfig struct {
	Addr      string `mapstructure:"addr"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	From      string `mapstructure:"from"`
	TLSServer string `mapstructure:"tls_server"`
}

type CodecConfig struct {
	Strict bool `mapstructure:"strict"`
	// SigningSecret enables check tags on encoded messages when set.
	SigningSecret string `mapstructure:"signing_secret"`
}

// Defaults lists every key with its default value. Registering every key
// also lets Unmarshal see values that only come from the environment.
func Defaults() map[string]any {
	return map[string]any{
		"log.level":              "info",
		"log.format":             "text",
		"server.addr":            ":8080",
		"server.allowed_origins": []string{"http://localhost:3000"},
		"server.rate_limit":      60,
		"server.rate_window":     time.Minute,
		"server.read_timeout":    10 * time.Second,
		"server.production":      false,
		"database.dsn":           "",
		"database.seal_secret":   "",
		"auth.jwt_secret":        "",
		"auth.token_ttl":         time.Hour,
		"smtp.addr":              "",
		"smtp.username":          "",
		"smtp.password":          "",
		"smtp.from":              "",
		"smtp.tls_server":        "",
		"codec.strict":           false,
		"codec.signing_secret":   "",
	}
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()
	for key, value := range Defaults() {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configuration into v. An explicit path must exist; without one
// ~/.inqwheel.yaml and ./.inqwheel.yaml are tried and a missing file is fine.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(ConfigFileName)
		v.SetConfigType("yaml")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that viper cannot type-check.
func (c *Config) Validate() error {
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("server.rate_limit must not be negative")
	}
	if c.Server.RateLimit > 0 && c.Server.RateWindow <= 0 {
		return fmt.Errorf("server.rate_window must be positive when server.rate_limit is set")
	}
	if c.Auth.JWTSecret != "" && len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters long")
	}
	return nil
}
