package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"

	"github.com/the1323/cs166-project-the033-hbai013/pkg/messaging/redis"
	"github.com/the1323/cs166-project-the033-hbai013/pkg/worker"
)

// EnvPrefix prefixes every environment override, e.g. CLINICDB_DB_HOST.
const EnvPrefix = "clinicdb"

type Config struct {
	Database DatabaseConfig `mapstructure:"database" envconfig:"db"`
	Log      LogConfig      `mapstructure:"log" envconfig:"log"`
	Redis    RedisConfig    `mapstructure:"redis" envconfig:"redis"`
	Outbox   OutboxConfig   `mapstructure:"outbox" envconfig:"outbox"`
	SMTP     SMTPConfig     `mapstructure:"smtp" envconfig:"smtp"`
	Notify   NotifyConfig   `mapstructure:"notify" envconfig:"notify"`
	Ops      OpsConfig      `mapstructure:"ops" envconfig:"ops"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host" envconfig:"host"`
	Port            int           `mapstructure:"port" envconfig:"port"`
	User            string        `mapstructure:"user" envconfig:"user"`
	Password        string        `mapstructure:"password" envconfig:"password"`
	Name            string        `mapstructure:"name" envconfig:"name"`
	SSLMode         string        `mapstructure:"sslmode" envconfig:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" envconfig:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" envconfig:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" envconfig:"conn_max_lifetime"`
}

// DSN renders a postgres:// URL for lib/pq. Every part is escaped, so
// passwords and database names may hold spaces or quotes.
func (c DatabaseConfig) DSN() string {
	u := c.target()
	switch {
	case c.Password != "":
		u.User = url.UserPassword(c.User, c.Password)
	case c.User != "":
		u.User = url.User(c.User)
	}
	if c.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {c.SSLMode}}.Encode()
	}
	return u.String()
}

// Redacted is the connection target without credentials, for logs.
func (c DatabaseConfig) Redacted() string {
	return c.target().String()
}

func (c DatabaseConfig) target() *url.URL {
	return &url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/" + c.Name,
	}
}

type LogConfig struct {
	Level string `mapstructure:"level" envconfig:"level"`
	JSON  bool   `mapstructure:"json" envconfig:"json"`
}

type RedisConfig struct {
	URL          string        `mapstructure:"url" envconfig:"url"`
	MaxRetries   int           `mapstructure:"max_retries" envconfig:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff" envconfig:"retry_backoff"`
	PoolSize     int           `mapstructure:"pool_size" envconfig:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns" envconfig:"min_idle_conns"`
}

type OutboxConfig struct {
	BatchSize     int           `mapstructure:"batch_size" envconfig:"batch_size"`
	PollInterval  time.Duration `mapstructure:"poll_interval" envconfig:"poll_interval"`
	RetryAttempts int           `mapstructure:"retry_attempts" envconfig:"retry_attempts"`
	RetryDelay    time.Duration `mapstructure:"retry_delay" envconfig:"retry_delay"`
	PublishRate   float64       `mapstructure:"publish_rate" envconfig:"publish_rate"`
	PublishBurst  int           `mapstructure:"publish_burst" envconfig:"publish_burst"`
	Retention     time.Duration `mapstructure:"retention" envconfig:"retention"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host" envconfig:"host"`
	Port     int    `mapstructure:"port" envconfig:"port"`
	Username string `mapstructure:"username" envconfig:"username"`
	Password string `mapstructure:"password" envconfig:"password"`
	From     string `mapstructure:"from" envconfig:"from"`
}

type NotifyConfig struct {
	FrontDeskEmail string        `mapstructure:"front_desk_email" envconfig:"front_desk_email"`
	CacheTTL       time.Duration `mapstructure:"cache_ttl" envconfig:"cache_ttl"`
}

type OpsConfig struct {
	Addr string `mapstructure:"addr" envconfig:"addr"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "clinic")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 4)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", "30m")

	v.SetDefault("log.level", "info")

	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.retry_backoff", "100ms")
	v.SetDefault("redis.pool_size", 10)

	v.SetDefault("outbox.batch_size", 50)
	v.SetDefault("outbox.poll_interval", "5s")
	v.SetDefault("outbox.retry_attempts", 3)
	v.SetDefault("outbox.retry_delay", "1s")
	v.SetDefault("outbox.publish_rate", 50)
	v.SetDefault("outbox.publish_burst", 10)
	v.SetDefault("outbox.retention", "168h")

	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.from", "clinic@localhost")

	v.SetDefault("notify.cache_ttl", "10m")

	v.SetDefault("ops.addr", ":8081")
}

// LoadConfig reads config.yaml (from path, or from . and ./config when path
// is empty), then applies CLINICDB_* environment overrides. A missing
// default config file is not an error.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := envconfig.Process(EnvPrefix, &config); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	return &config, nil
}

func (c *OutboxConfig) ToWorkerConfig() worker.OutboxProcessorConfig {
	return worker.OutboxProcessorConfig{
		BatchSize:     c.BatchSize,
		PollInterval:  c.PollInterval,
		RetryAttempts: c.RetryAttempts,
		RetryDelay:    c.RetryDelay,
		PublishRate:   c.PublishRate,
		PublishBurst:  c.PublishBurst,
		Retention:     c.Retention,
	}
}

func (c *RedisConfig) ToBrokerConfig() redis.Config {
	return redis.Config{
		URL:          c.URL,
		MaxRetries:   c.MaxRetries,
		RetryBackoff: c.RetryBackoff,
		PoolSize:     c.PoolSize,
		MinIdleConns: c.MinIdleConns,
	}
}
