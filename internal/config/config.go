package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Chat      ChatConfig
	AMQP      AMQPConfig
	Telemetry TelemetryConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Debug        bool          `mapstructure:"debug"`
}

type DatabaseConfig struct {
	// Driver is either "postgres" or "sqlite".
	Driver       string `mapstructure:"driver"`
	DSN          string `mapstructure:"dsn"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	Seed         bool   `mapstructure:"seed"`
}

type AuthConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	TokenTTL       time.Duration `mapstructure:"token_ttl"`
	Issuer         string        `mapstructure:"issuer"`
	LoginPerMinute int           `mapstructure:"login_per_minute"`
}

type ChatConfig struct {
	DefaultRoomID   string        `mapstructure:"default_room_id"`
	DefaultRoomName string        `mapstructure:"default_room_name"`
	PollInterval    time.Duration `mapstructure:"poll_interval"`
}

type AMQPConfig struct {
	URL        string `mapstructure:"url"`
	Exchange   string `mapstructure:"exchange"`
	RoutingKey string `mapstructure:"routing_key"`
}

type TelemetryConfig struct {
	ServiceName  string `mapstructure:"service_name"`
	Environment  string `mapstructure:"environment"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// Load reads config.yaml (if present) from configPath, "." or "./config",
// then overlays environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8083)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.debug", false)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./data/chat.db")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.seed", true)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.issuer", "portfolio-chat")
	v.SetDefault("auth.login_per_minute", 10)

	v.SetDefault("chat.default_room_id", "")
	v.SetDefault("chat.default_room_name", "General")
	v.SetDefault("chat.poll_interval", 2*time.Second)

	v.SetDefault("amqp.url", "")
	v.SetDefault("amqp.exchange", "audit")
	v.SetDefault("amqp.routing_key", "audit.chat")

	v.SetDefault("telemetry.service_name", "portfolio-chat")
	v.SetDefault("telemetry.environment", "local")
	v.SetDefault("telemetry.otlp_endpoint", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
}

func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("server.port", "PORT")
	_ = v.BindEnv("server.debug", "DEBUG")
	_ = v.BindEnv("database.driver", "DB_DRIVER")
	_ = v.BindEnv("database.dsn", "DB_DSN")
	_ = v.BindEnv("database.seed", "DB_SEED")
	_ = v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	_ = v.BindEnv("auth.token_ttl", "JWT_TTL")
	_ = v.BindEnv("chat.default_room_id", "DEFAULT_ROOM_ID")
	_ = v.BindEnv("chat.default_room_name", "DEFAULT_ROOM_NAME")
	_ = v.BindEnv("amqp.url", "AMQP_URL")
	_ = v.BindEnv("amqp.exchange", "AMQP_EXCHANGE")
	_ = v.BindEnv("telemetry.environment", "APP_ENV")
	_ = v.BindEnv("telemetry.otlp_endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT")
	_ = v.BindEnv("log.level", "LOG_LEVEL")
	_ = v.BindEnv("log.pretty", "LOG_PRETTY")
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("auth.token_ttl must be positive")
	}
	if c.Chat.PollInterval <= 0 {
		return errors.New("chat.poll_interval must be positive")
	}
	return nil
}
