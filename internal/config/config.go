// Package config загружает конфигурацию сервиса из TOML файла.
// Секреты переопределяются переменными окружения (в том числе из .env).
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	// DefaultPath путь к конфигурации, если CONFIG_PATH не задан
	DefaultPath = "config.toml"

	defaultTimezone = "America/Sao_Paulo"
)

var (
	// ErrLoadConfig возвращается, когда конфигурацию не удалось прочитать
	ErrLoadConfig = errors.New("config: failed to load configuration")

	// ErrInvalidConfig возвращается, когда конфигурация не прошла проверку
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

type Config struct {
	Server       ServerConfig       `toml:"server"`
	Database     DatabaseConfig     `toml:"database"`
	Logs         LogsConfig         `toml:"logs"`
	Metrics      MetricsConfig      `toml:"metrics"`
	Auth         AuthConfig         `toml:"auth"`
	Redis        RedisConfig        `toml:"redis"`
	AMQP         AMQPConfig         `toml:"amqp"`
	Storage      StorageConfig      `toml:"storage"`
	Reservations ReservationsConfig `toml:"reservations"`
}

// ServerConfig таймауты в секундах
type ServerConfig struct {
	HTTPPort        int `toml:"http_port" validate:"required,min=1,max=65535"`
	ReadTimeout     int `toml:"read_timeout" validate:"min=0"`
	WriteTimeout    int `toml:"write_timeout" validate:"min=0"`
	IdleTimeout     int `toml:"idle_timeout" validate:"min=0"`
	ShutdownTimeout int `toml:"shutdown_timeout" validate:"min=0"`
}

type DatabaseConfig struct {
	Host            string `toml:"host" validate:"required"`
	Port            int    `toml:"port" validate:"required,min=1,max=65535"`
	User            string `toml:"user" validate:"required"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname" validate:"required"`
	SSLMode         string `toml:"sslmode" validate:"omitempty,oneof=disable allow prefer require verify-ca verify-full"`
	MaxOpenConns    int    `toml:"max_open_conns" validate:"min=0"`
	MaxIdleConns    int    `toml:"max_idle_conns" validate:"min=0"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime" validate:"min=0"` // секунды
}

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, sslMode)
}

type LogsConfig struct {
	Level string `toml:"level" validate:"omitempty,oneof=debug info warn error"`
	File  string `toml:"file"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path" validate:"required_if=Enabled true"`
	ServiceName string `toml:"service_name" validate:"required_if=Enabled true"`
}

type AuthConfig struct {
	JWTSecret string `toml:"jwt_secret" validate:"required,min=16"`
}

type RedisConfig struct {
	Enabled  bool   `toml:"enabled"`
	Addr     string `toml:"addr" validate:"required_if=Enabled true"`
	Password string `toml:"password"`
	DB       int    `toml:"db" validate:"min=0"`
	Prefix   string `toml:"prefix"`
	TTL      int    `toml:"ttl" validate:"min=0"` // секунды
}

type AMQPConfig struct {
	Enabled  bool   `toml:"enabled"`
	URL      string `toml:"url" validate:"required_if=Enabled true"`
	Exchange string `toml:"exchange" validate:"required_if=Enabled true"`
}

// StorageConfig хранилище документов заявок (Storage API совместимый сервис)
type StorageConfig struct {
	URL        string `toml:"url" validate:"omitempty,url"`
	Bucket     string `toml:"bucket" validate:"required_with=URL"`
	ServiceKey string `toml:"service_key"`
	Timeout    int    `toml:"timeout" validate:"min=0"` // секунды
}

type ReservationsConfig struct {
	Timezone       string `toml:"timezone"`
	MaxOccurrences int    `toml:"max_occurrences" validate:"min=0,max=366"`
}

// Location часовой пояс, в котором вводятся и отображаются даты агенды
func (r ReservationsConfig) Location() (*time.Location, error) {
	tz := r.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	return time.LoadLocation(tz)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load читает конфигурацию из path (или CONFIG_PATH), применяет переменные
// окружения и проверяет результат
func Load(path string) (*Config, error) {
	// .env не обязателен
	_ = godotenv.Load()

	if env := os.Getenv("CONFIG_PATH"); env != "" {
		path = env
	}
	if path == "" {
		path = DefaultPath
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrLoadConfig, path, err)
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if _, err := cfg.Reservations.Location(); err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %v", ErrInvalidConfig, cfg.Reservations.Timezone, err)
	}

	return &cfg, nil
}

func applyEnv(cfg *Config) {
	overrides := map[string]*string{
		"DB_PASSWORD":         &cfg.Database.Password,
		"JWT_SECRET":          &cfg.Auth.JWTSecret,
		"STORAGE_SERVICE_KEY": &cfg.Storage.ServiceKey,
		"AMQP_URL":            &cfg.AMQP.URL,
		"REDIS_PASSWORD":      &cfg.Redis.Password,
	}

	for key, dst := range overrides {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			*dst = v
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Logs.Level == "" {
		cfg.Logs.Level = "info"
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10
	}
	if cfg.Redis.Prefix == "" {
		cfg.Redis.Prefix = "idjuv"
	}
	if cfg.Redis.TTL == 0 {
		cfg.Redis.TTL = 60
	}
	if cfg.Storage.Timeout == 0 {
		cfg.Storage.Timeout = 10
	}
	if cfg.Reservations.Timezone == "" {
		cfg.Reservations.Timezone = defaultTimezone
	}
}
