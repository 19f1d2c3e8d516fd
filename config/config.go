package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. NIENTE_DATABASE_URL.
const EnvPrefix = "NIENTE"

type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Auth     AuthConfig
	Log      LogConfig
	API      APIConfig
}

type DatabaseConfig struct {
	Driver          string // postgres or sqlite
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	LogLevel        string
}

type ServerConfig struct {
	Port           int
	AllowedOrigins []string
	TrustedProxies []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
}

type AuthConfig struct {
	Secret   string
	Issuer   string
	Audience string
	TokenTTL time.Duration
	// IssueTokenFor makes the server print a token for this subject and exit.
	IssueTokenFor string
}

type LogConfig struct {
	Level  string
	Format string
	File   string
}

type APIConfig struct {
	WelcomeMessage      string
	DefaultPreviewLimit int
}

// LoadConfig reads config.yaml from the given directories ("." and "./config"
// when none are given). A missing file is not an error: defaults and
// environment variables still apply.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{".", "./config"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.url", "niente.db")
	v.SetDefault("database.maxopenconns", 10)
	v.SetDefault("database.maxidleconns", 5)
	v.SetDefault("database.connmaxlifetime", "30m")
	v.SetDefault("database.loglevel", "silent")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowedorigins", []string{"*"})
	v.SetDefault("server.trustedproxies", []string{})
	v.SetDefault("server.readtimeout", "15s")
	v.SetDefault("server.writetimeout", "15s")
	v.SetDefault("server.idletimeout", "60s")

	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.issuer", "niente")
	v.SetDefault("auth.audience", "niente-api")
	v.SetDefault("auth.tokenttl", "12h")
	v.SetDefault("auth.issuetokenfor", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "")

	v.SetDefault("api.welcomemessage", "Welcome to neu API")
	v.SetDefault("api.defaultpreviewlimit", 5)
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.URL == "" {
		return errors.New("database url is required")
	}
	if len(c.Server.AllowedOrigins) == 0 {
		return errors.New("at least one allowed origin is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("unsupported log format %q", c.Log.Format)
	}
	return nil
}
