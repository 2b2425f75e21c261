package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load,
// e.g. AGORA_SERVER_PORT or AGORA_AUTH_JWT_SECRET.
const EnvPrefix = "AGORA"

// Load reads configuration from environment variables and optionally a config file.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only applies to keys viper already knows about, so every key
	// without a default has to be bound explicitly.
	for _, key := range []string{"database.url", "auth.jwt_secret", "cors.allowed_origins"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	if cfg.Store.Driver == "postgres" && cfg.Database.URL == "" {
		return nil, fmt.Errorf("config validation failed: database.url is required for the postgres driver")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.auto_migrate", false)
	v.SetDefault("database.breaker_failures", 5)
	v.SetDefault("database.breaker_timeout_s", 30)
	v.SetDefault("auth.token_lifetime_minutes", 24*60)
	v.SetDefault("auth.allow_passwordless_login", false)
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("cache.max_age_seconds", 300)
	v.SetDefault("compression.level", 6)
	v.SetDefault("compression.min_bytes", 0)
}
