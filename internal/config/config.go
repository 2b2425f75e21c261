package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"      validate:"required"`
	Store       StoreConfig       `mapstructure:"store"       validate:"required"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Auth        AuthConfig        `mapstructure:"auth"        validate:"required"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Compression CompressionConfig `mapstructure:"compression"`
	CORS        CORSConfig        `mapstructure:"cors"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// StoreConfig selects the persistence engine.
type StoreConfig struct {
	// Driver is either "postgres" or "memory". The memory driver keeps all
	// records in process and is intended for local development.
	Driver string `mapstructure:"driver" validate:"required,oneof=postgres memory"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL             string `mapstructure:"url"                validate:"omitempty,url"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"     validate:"gte=1"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"     validate:"gte=0"`
	AutoMigrate     bool   `mapstructure:"auto_migrate"`
	BreakerFailures uint32 `mapstructure:"breaker_failures"   validate:"gte=1"`
	BreakerTimeoutS int    `mapstructure:"breaker_timeout_s"  validate:"gte=1"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret              string `mapstructure:"jwt_secret"               validate:"required,min=32"`
	TokenLifetimeMinutes   int    `mapstructure:"token_lifetime_minutes"   validate:"required,gt=0"`
	AllowPasswordlessLogin bool   `mapstructure:"allow_passwordless_login"`
	BcryptCost             int    `mapstructure:"bcrypt_cost"              validate:"gte=4,lte=31"`
}

// CacheConfig controls the directives attached to successful query responses.
type CacheConfig struct {
	MaxAgeSeconds int `mapstructure:"max_age_seconds" validate:"gte=0"`
}

// CompressionConfig controls response payload compression.
type CompressionConfig struct {
	Level    int `mapstructure:"level"     validate:"gte=1,lte=9"`
	MinBytes int `mapstructure:"min_bytes" validate:"gte=0"`
}

// CORSConfig lists the origins allowed to call the API from a browser.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}
