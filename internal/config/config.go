package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

var (
	ErrReadConfig    = errors.New("config: failed to read config file")
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Server         ServerConfig         `toml:"server"`
	Database       DatabaseConfig       `toml:"database"`
	Logs           LogsConfig           `toml:"logs"`
	Metrics        MetricsConfig        `toml:"metrics"`
	UserService    UserServiceConfig    `toml:"user_service"`
	GoogleCalendar GoogleCalendarConfig `toml:"google_calendar"`
	Booking        BookingConfig        `toml:"booking"`
	Jobs           JobsConfig           `toml:"jobs"`
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
	ReserveRetries  int    `toml:"reserve_retries"`
}

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
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

type UserServiceConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"`
}

type GoogleCalendarConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	AuthURL      string `toml:"auth_url"`
	TokenURL     string `toml:"token_url"`
	BaseURL      string `toml:"base_url"`
	CalendarID   string `toml:"calendar_id"`
	// Timeout таймаут одного запроса к провайдеру, секунды
	Timeout           int     `toml:"timeout"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
	// BreakerFailures число подряд идущих ошибок, после которого размыкается circuit breaker
	BreakerFailures      uint32 `toml:"breaker_failures"`
	BreakerOpenTimeout   int    `toml:"breaker_open_timeout"`
	EmailReminderMinutes int    `toml:"email_reminder_minutes"`
	PopupReminderMinutes int    `toml:"popup_reminder_minutes"`
}

type BookingConfig struct {
	TimeZone                 string `toml:"time_zone"`
	WindowStartHour          int    `toml:"window_start_hour"`
	WindowEndHour            int    `toml:"window_end_hour"`
	SlotMinutes              int    `toml:"slot_minutes"`
	MaxRules                 int    `toml:"max_rules"`
	MaxAppointmentMinutes    int    `toml:"max_appointment_minutes"`
	MinNoticeMinutes         int    `toml:"min_notice_minutes"`
	RequireConnectedCalendar bool   `toml:"require_connected_calendar"`
}

// Location часовой пояс расписания
func (b BookingConfig) Location() (*time.Location, error) {
	return time.LoadLocation(b.TimeZone)
}

type JobsConfig struct {
	CompletionEnabled bool   `toml:"completion_enabled"`
	CompletionSpec    string `toml:"completion_spec"`
}

// Load читает конфигурацию из TOML-файла
// Секреты могут быть переопределены переменными окружения (в том числе из .env)
func Load(path string) (*Config, error) {
	// .env необязателен
	_ = godotenv.Load()

	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrReadConfig, path, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("GOOGLE_CLIENT_ID"); v != "" {
		c.GoogleCalendar.ClientID = v
	}
	if v := os.Getenv("GOOGLE_CLIENT_SECRET"); v != "" {
		c.GoogleCalendar.ClientSecret = v
	}
}

func (c *Config) applyDefaults() {
	setInt(&c.Server.HTTPPort, 8080)
	setInt(&c.Server.ReadTimeout, 10)
	setInt(&c.Server.WriteTimeout, 10)
	setInt(&c.Server.IdleTimeout, 60)
	setInt(&c.Server.ShutdownTimeout, 10)

	setString(&c.Database.Driver, DriverPostgres)
	setString(&c.Database.SSLMode, "disable")
	setInt(&c.Database.MaxOpenConns, 25)
	setInt(&c.Database.MaxIdleConns, 5)
	setInt(&c.Database.ConnMaxLifetime, 300)
	setInt(&c.Database.ReserveRetries, 3)

	setString(&c.Logs.Level, "info")

	setString(&c.Metrics.Path, "/metrics")
	setString(&c.Metrics.ServiceName, "meeting-service")

	setInt(&c.UserService.Timeout, 5)

	setString(&c.GoogleCalendar.AuthURL, "https://accounts.google.com/o/oauth2/auth")
	setString(&c.GoogleCalendar.TokenURL, "https://oauth2.googleapis.com/token")
	setString(&c.GoogleCalendar.BaseURL, "https://www.googleapis.com/calendar/v3")
	setString(&c.GoogleCalendar.CalendarID, "primary")
	setInt(&c.GoogleCalendar.Timeout, 10)
	if c.GoogleCalendar.RequestsPerSecond == 0 {
		c.GoogleCalendar.RequestsPerSecond = 10
	}
	setInt(&c.GoogleCalendar.Burst, 5)
	if c.GoogleCalendar.BreakerFailures == 0 {
		c.GoogleCalendar.BreakerFailures = 5
	}
	setInt(&c.GoogleCalendar.BreakerOpenTimeout, 30)
	setInt(&c.GoogleCalendar.EmailReminderMinutes, 24*60)
	setInt(&c.GoogleCalendar.PopupReminderMinutes, 10)

	setString(&c.Booking.TimeZone, "UTC")
	setInt(&c.Booking.WindowStartHour, 9)
	setInt(&c.Booking.WindowEndHour, 17)
	setInt(&c.Booking.SlotMinutes, 30)
	setInt(&c.Booking.MaxRules, 100)
	setInt(&c.Booking.MaxAppointmentMinutes, 8*60)

	setString(&c.Jobs.CompletionSpec, "@every 5m")
}

// Validate проверяет согласованность настроек
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("%w: unknown database driver %q", ErrInvalidConfig, c.Database.Driver)
	}

	b := c.Booking
	if _, err := b.Location(); err != nil {
		return fmt.Errorf("%w: time_zone %q: %v", ErrInvalidConfig, b.TimeZone, err)
	}
	if b.WindowStartHour < 0 || b.WindowEndHour > 24 || b.WindowStartHour >= b.WindowEndHour {
		return fmt.Errorf("%w: booking window %d-%d", ErrInvalidConfig, b.WindowStartHour, b.WindowEndHour)
	}
	if b.SlotMinutes <= 0 || ((b.WindowEndHour-b.WindowStartHour)*60)%b.SlotMinutes != 0 {
		return fmt.Errorf("%w: slot_minutes %d does not divide the booking window", ErrInvalidConfig, b.SlotMinutes)
	}
	if b.MaxRules <= 0 {
		return fmt.Errorf("%w: max_rules must be positive", ErrInvalidConfig)
	}
	if b.MaxAppointmentMinutes < b.SlotMinutes {
		return fmt.Errorf("%w: max_appointment_minutes is less than slot_minutes", ErrInvalidConfig)
	}
	if b.MinNoticeMinutes < 0 {
		return fmt.Errorf("%w: min_notice_minutes must not be negative", ErrInvalidConfig)
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("%w: metrics path must start with /", ErrInvalidConfig)
	}
	return nil
}

func setInt(v *int, def int) {
	if *v == 0 {
		*v = def
	}
}

func setString(v *string, def string) {
	if *v == "" {
		*v = def
	}
}
