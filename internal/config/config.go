package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/m04kA/SMC-BarberScheduling/internal/integrations/catalog"
	"github.com/m04kA/SMC-BarberScheduling/pkg/types"
)

// EnvConfigPath переменная окружения, переопределяющая путь к конфигу
const EnvConfigPath = "CONFIG_PATH"

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"

	CatalogSourceHTTP   = "http"
	CatalogSourceStatic = "static"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Server     ServerConfig     `toml:"server"`
	Database   DatabaseConfig   `toml:"database"`
	Logs       LogsConfig       `toml:"logs"`
	Metrics    MetricsConfig    `toml:"metrics"`
	Catalog    CatalogConfig    `toml:"catalog"`
	Scheduling SchedulingConfig `toml:"scheduling"`
	Storage    StorageConfig    `toml:"storage"`
	Redis      RedisConfig      `toml:"redis"`
	RateLimit  RateLimitConfig  `toml:"rate_limit"`
}

// ServerConfig таймауты в секундах
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
}

// DSN строка подключения для lib/pq
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type LogsConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"` // пусто - только stdout
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// CatalogConfig справочник мастеров и услуг
// source = "http" ходит во внешний сервис, "static" берёт списки из конфига
type CatalogConfig struct {
	Source   string            `toml:"source"`
	BaseURL  string            `toml:"base_url"`
	Timeout  int               `toml:"timeout"` // секунды
	Barbers  []catalog.Barber  `toml:"barbers"`
	Services []catalog.Service `toml:"services"`
}

type SchedulingConfig struct {
	Timezone           string `toml:"timezone"`
	ArbitrationTimeout int    `toml:"arbitration_timeout_ms"`
	TxMaxRetries       int    `toml:"tx_max_retries"`
}

// Location часовой пояс барбершопа
func (c SchedulingConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: scheduling.timezone %q: %v", ErrInvalidConfig, c.Timezone, err)
	}
	return loc, nil
}

func (c SchedulingConfig) ArbitrationTimeoutDuration() time.Duration {
	return time.Duration(c.ArbitrationTimeout) * time.Millisecond
}

type StorageConfig struct {
	Driver string `toml:"driver"`
}

// RedisConfig распределённая блокировка мастера между инстансами
type RedisConfig struct {
	Enabled       bool   `toml:"enabled"`
	Addr          string `toml:"addr"`
	Password      string `toml:"password"`
	DB            int    `toml:"db"`
	KeyPrefix     string `toml:"key_prefix"`
	LockTTL       int    `toml:"lock_ttl_ms"`
	RetryInterval int    `toml:"retry_interval_ms"`
}

type RateLimitConfig struct {
	Enabled bool    `toml:"enabled"`
	RPS     float64 `toml:"rps"`
	Burst   int     `toml:"burst"`
}

// validateEntries проверяет мастеров и услуги, заданные в конфиге
// Кривые рабочие часы отклоняются при старте, а не ошибкой на каждый запрос доступности
func (c CatalogConfig) validateEntries() []string {
	var problems []string

	for _, b := range c.Barbers {
		if b.ID <= 0 {
			problems = append(problems, fmt.Sprintf("catalog.barbers: id %d must be positive", b.ID))
		}
		// Оба поля пустые - у мастера не настроены часы, это допустимо
		if b.WorkStart == "" && b.WorkEnd == "" {
			continue
		}
		start, err := types.NewTimeStringFromString(b.WorkStart)
		if err != nil {
			problems = append(problems, fmt.Sprintf("catalog.barbers[id=%d].work_start: %v", b.ID, err))
			continue
		}
		end, err := types.NewTimeStringFromString(b.WorkEnd)
		if err != nil {
			problems = append(problems, fmt.Sprintf("catalog.barbers[id=%d].work_end: %v", b.ID, err))
			continue
		}
		startMinutes, _ := start.Minutes()
		endMinutes, _ := end.Minutes()
		if endMinutes <= startMinutes {
			problems = append(problems, fmt.Sprintf("catalog.barbers[id=%d]: work_end %s must be after work_start %s", b.ID, end, start))
		}
	}

	for _, s := range c.Services {
		if s.ID <= 0 {
			problems = append(problems, fmt.Sprintf("catalog.services: id %d must be positive", s.ID))
		}
		if s.DurationMinutes <= 0 {
			problems = append(problems, fmt.Sprintf("catalog.services[id=%d].duration_minutes must be positive", s.ID))
		}
	}

	return problems
}

// Load читает конфиг из path (или из CONFIG_PATH), заполняет значения по умолчанию и валидирует
func Load(path string) (*Config, error) {
	if env := os.Getenv(EnvConfigPath); env != "" {
		path = env
	}

	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: decode %q: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default значения, которые остаются, если в файле секция или ключ не указаны
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     10,
			WriteTimeout:    10,
			IdleTimeout:     60,
			ShutdownTimeout: 15,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Logs: LogsConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Enabled:     true,
			Path:        "/metrics",
			ServiceName: "barber-scheduling",
		},
		Catalog: CatalogConfig{
			Source:  CatalogSourceHTTP,
			Timeout: 5,
		},
		Scheduling: SchedulingConfig{
			Timezone:           "UTC",
			ArbitrationTimeout: 3000,
			TxMaxRetries:       3,
		},
		Storage: StorageConfig{
			Driver: StorageDriverPostgres,
		},
		Redis: RedisConfig{
			Addr:          "localhost:6379",
			KeyPrefix:     "barber-lock",
			LockTTL:       10000,
			RetryInterval: 25,
		},
		RateLimit: RateLimitConfig{
			Enabled: true,
			RPS:     5,
			Burst:   10,
		},
	}
}

// Validate проверяет согласованность конфига
func (c *Config) Validate() error {
	var problems []string

	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		problems = append(problems, fmt.Sprintf("server.http_port %d out of range", c.Server.HTTPPort))
	}

	switch c.Storage.Driver {
	case StorageDriverPostgres:
		if c.Database.Host == "" || c.Database.DBName == "" {
			problems = append(problems, "database.host and database.dbname are required for postgres storage")
		}
	case StorageDriverMemory:
	default:
		problems = append(problems, fmt.Sprintf("storage.driver %q is not one of postgres, memory", c.Storage.Driver))
	}

	switch c.Catalog.Source {
	case CatalogSourceHTTP:
		if c.Catalog.BaseURL == "" {
			problems = append(problems, "catalog.base_url is required for http catalog")
		}
	case CatalogSourceStatic:
		if len(c.Catalog.Barbers) == 0 || len(c.Catalog.Services) == 0 {
			problems = append(problems, "static catalog needs at least one barber and one service")
		}
	default:
		problems = append(problems, fmt.Sprintf("catalog.source %q is not one of http, static", c.Catalog.Source))
	}
	problems = append(problems, c.Catalog.validateEntries()...)

	if _, err := c.Scheduling.Location(); err != nil {
		problems = append(problems, err.Error())
	}
	if c.Scheduling.ArbitrationTimeout <= 0 {
		problems = append(problems, "scheduling.arbitration_timeout_ms must be positive")
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		problems = append(problems, "redis.addr is required when redis is enabled")
	}

	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0) {
		problems = append(problems, "rate_limit.rps and rate_limit.burst must be positive")
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		problems = append(problems, fmt.Sprintf("metrics.path %q must start with /", c.Metrics.Path))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}
