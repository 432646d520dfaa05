// Package config loads the process configuration: defaults, optional
// config.yaml, environment overrides, with a .env bootstrap for local runs.
// Configuration selects collaborators and endpoints; it never changes
// delivery semantics.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Feed     FeedConfig     `mapstructure:"feed"`
	Snapshot SnapshotConfig `mapstructure:"snapshot"`
	Login    LoginConfig    `mapstructure:"login"`
}

type AppConfig struct {
	Name     string `mapstructure:"name"`
	LogLevel string `mapstructure:"log_level"`
}

type HTTPConfig struct {
	Port string `mapstructure:"port"`
}

// PostgresConfig points at the dispatch database. Disabled runs use the
// seeded fixture manifest instead.
type PostgresConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// RedisConfig points at the list the dispatch system pushes notifications
// onto.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	Key      string `mapstructure:"key"`
}

type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type FeedConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

type SnapshotConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoginConfig is the fixture account for seeded local runs. Ignored when
// postgres is enabled.
type LoginConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// Load reads configuration. A missing config file is fine; env vars with the
// SWIFTTRACK_ prefix override everything.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("SWIFTTRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "swifttrack-driver")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("http.port", "8080")

	v.SetDefault("postgres.enabled", false)
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "swifttrack")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.database", "dispatch")
	v.SetDefault("postgres.sslmode", "disable")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.key", "swifttrack:notifications")

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "delivery_events")

	v.SetDefault("feed.poll_interval", 30*time.Second)

	v.SetDefault("snapshot.enabled", false)
	v.SetDefault("snapshot.path", "swifttrack-session.json")

	v.SetDefault("login.username", "driver")
	v.SetDefault("login.password", "driver")
}
