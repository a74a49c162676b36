package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

var (
	// ErrReadConfig возвращается, если не удалось прочитать файл конфигурации
	ErrReadConfig = errors.New("config: failed to read config file")

	// ErrInvalidConfig возвращается, если конфигурация не прошла валидацию
	ErrInvalidConfig = errors.New("config: invalid config")
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config конфигурация сервиса
type Config struct {
	Server        ServerConfig        `toml:"server"`
	Database      DatabaseConfig      `toml:"database"`
	Logs          LogsConfig          `toml:"logs"`
	Metrics       MetricsConfig       `toml:"metrics"`
	Identity      IdentityConfig      `toml:"identity"`
	Notifications NotificationsConfig `toml:"notifications"`
	Payments      PaymentsConfig      `toml:"payments"`
	Meetings      MeetingsConfig      `toml:"meetings"`
	Booking       BookingConfig       `toml:"booking"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver          string `toml:"driver"`
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
	// TxTimeoutMs верхняя граница транзакции резервирования/перехода
	TxTimeoutMs int `toml:"tx_timeout_ms"`
	// SeedFile политики адвокатов для driver = "memory"
	SeedFile string `toml:"seed_file"`
}

// DSN строка подключения для lib/pq
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

func (c DatabaseConfig) TxTimeout() time.Duration {
	return time.Duration(c.TxTimeoutMs) * time.Millisecond
}

type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// IdentityConfig источник {userId, role} для вызывающего
// mode = "jwt" (локальная проверка токена) или "remote" (внешний identity-сервис)
type IdentityConfig struct {
	Mode      string `toml:"mode"`
	JWTSecret string `toml:"jwt_secret"`
	URL       string `toml:"url"`
	Timeout   int    `toml:"timeout"`
}

type NotificationsConfig struct {
	Enabled   bool     `toml:"enabled"`
	Brokers   []string `toml:"brokers"`
	Topic     string   `toml:"topic"`
	TimeoutMs int      `toml:"timeout_ms"`
}

type PaymentsConfig struct {
	Currency            string `toml:"currency"`
	StripeWebhookSecret string `toml:"stripe_webhook_secret"`
}

type MeetingsConfig struct {
	BaseURL string `toml:"base_url"`
}

type BookingConfig struct {
	AcceptanceRequiredTypes []string `toml:"acceptance_required_types"`
	IdempotencyWindow       string   `toml:"idempotency_window"`
	NoShowGrace             string   `toml:"no_show_grace"`
	SweepInterval           string   `toml:"sweep_interval"`
	ReserveTimeoutMs        int      `toml:"reserve_timeout_ms"`
	MaxHorizonDays          int      `toml:"max_horizon_days"`
}

// Durations разобранные значения длительностей из секции [booking]
type Durations struct {
	IdempotencyWindow time.Duration
	NoShowGrace       time.Duration
	SweepInterval     time.Duration
	ReserveTimeout    time.Duration
}

func (c BookingConfig) Durations() (Durations, error) {
	window, err := time.ParseDuration(c.IdempotencyWindow)
	if err != nil {
		return Durations{}, fmt.Errorf("%w: booking.idempotency_window: %v", ErrInvalidConfig, err)
	}
	grace, err := time.ParseDuration(c.NoShowGrace)
	if err != nil {
		return Durations{}, fmt.Errorf("%w: booking.no_show_grace: %v", ErrInvalidConfig, err)
	}
	sweep, err := time.ParseDuration(c.SweepInterval)
	if err != nil {
		return Durations{}, fmt.Errorf("%w: booking.sweep_interval: %v", ErrInvalidConfig, err)
	}
	return Durations{
		IdempotencyWindow: window,
		NoShowGrace:       grace,
		SweepInterval:     sweep,
		ReserveTimeout:    time.Duration(c.ReserveTimeoutMs) * time.Millisecond,
	}, nil
}

// Load читает конфигурацию из TOML файла, применяет значения по умолчанию,
// переменные окружения и валидирует результат
func Load(path string) (*Config, error) {
	if env := os.Getenv("CONFIG_PATH"); env != "" {
		path = env
	}

	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrReadConfig, path, err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse разбирает конфигурацию из строки (используется в тестах)
func Parse(data string) (*Config, error) {
	cfg := Default()
	if _, err := toml.Decode(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadConfig, err)
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default конфигурация по умолчанию
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     15,
			WriteTimeout:    15,
			IdleTimeout:     60,
			ShutdownTimeout: 10,
		},
		Database: DatabaseConfig{
			Driver:          DriverPostgres,
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
			TxTimeoutMs:     3000,
		},
		Logs: LogsConfig{Level: "info"},
		Metrics: MetricsConfig{
			Path:        "/metrics",
			ServiceName: "consultation-service",
		},
		Identity: IdentityConfig{Mode: "jwt", Timeout: 5},
		Notifications: NotificationsConfig{
			Topic:     "booking-events",
			TimeoutMs: 2000,
		},
		Payments: PaymentsConfig{Currency: "usd"},
		Meetings: MeetingsConfig{BaseURL: "https://meet.example.com"},
		Booking: BookingConfig{
			AcceptanceRequiredTypes: []string{"consultation"},
			IdempotencyWindow:       "24h",
			NoShowGrace:             "30m",
			SweepInterval:           "1m",
			ReserveTimeoutMs:        2000,
			MaxHorizonDays:          31,
		},
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Identity.JWTSecret = v
	}
	if v := os.Getenv("STRIPE_WEBHOOK_SECRET"); v != "" {
		c.Payments.StripeWebhookSecret = v
	}
}

// Validate проверяет согласованность конфигурации
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("%w: server.http_port=%d", ErrInvalidConfig, c.Server.HTTPPort)
	}

	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.DBName == "" {
			return fmt.Errorf("%w: database.dbname is required for postgres", ErrInvalidConfig)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("%w: unknown database.driver %q", ErrInvalidConfig, c.Database.Driver)
	}

	switch c.Identity.Mode {
	case "jwt":
		if c.Identity.JWTSecret == "" {
			return fmt.Errorf("%w: identity.jwt_secret (or JWT_SECRET) is required in jwt mode", ErrInvalidConfig)
		}
	case "remote":
		if c.Identity.URL == "" {
			return fmt.Errorf("%w: identity.url is required in remote mode", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown identity.mode %q", ErrInvalidConfig, c.Identity.Mode)
	}

	if c.Notifications.Enabled && len(c.Notifications.Brokers) == 0 {
		return fmt.Errorf("%w: notifications.brokers is required when notifications are enabled", ErrInvalidConfig)
	}

	if c.Booking.MaxHorizonDays <= 0 {
		return fmt.Errorf("%w: booking.max_horizon_days must be positive", ErrInvalidConfig)
	}

	if _, err := c.Booking.Durations(); err != nil {
		return err
	}
	return nil
}
