package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the whole application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Auth      AuthConfig      `yaml:"auth"`
	Zoom      ZoomConfig      `yaml:"zoom"`
	Mail      MailConfig      `yaml:"mail"`
	Reminders RemindersConfig `yaml:"reminders"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig holds the HTTP API and gRPC health listener settings.
type ServerConfig struct {
	ListenAddr      string        `yaml:"listen_addr"`
	GRPCListenAddr  string        `yaml:"grpc_listen_addr"`
	ReadTimeout     time.Duration `yaml:"-"`
	WriteTimeout    time.Duration `yaml:"-"`
	ShutdownTimeout time.Duration `yaml:"-"`
	ReadTimeoutRaw  string        `yaml:"read_timeout"`
	WriteTimeoutRaw string        `yaml:"write_timeout"`
	ShutdownRaw     string        `yaml:"shutdown_timeout"`
}

// DatabaseConfig holds the PostgreSQL connection settings.
type DatabaseConfig struct {
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port"`
	User               string        `yaml:"user"`
	Password           string        `yaml:"password"`
	Name               string        `yaml:"name"`
	SSLMode            string        `yaml:"ssl_mode"`
	MaxOpenConns       int           `yaml:"max_open_conns"`
	MaxIdleConns       int           `yaml:"max_idle_conns"`
	ConnMaxLifetime    time.Duration `yaml:"-"`
	ConnMaxIdleTime    time.Duration `yaml:"-"`
	ConnMaxLifetimeRaw string        `yaml:"conn_max_lifetime"`
	ConnMaxIdleTimeRaw string        `yaml:"conn_max_idle_time"`

	ApplicationName     string        `yaml:"application_name"`
	StatementTimeout    time.Duration `yaml:"-"`
	StatementTimeoutRaw string        `yaml:"statement_timeout"`
	SlowQuery           time.Duration `yaml:"-"`
	SlowQueryRaw        string        `yaml:"slow_query_threshold"`
}

// RedisConfig configures the realtime event publisher. An empty URL disables it.
type RedisConfig struct {
	URL           string `yaml:"url"`
	ChannelPrefix string `yaml:"channel_prefix"`
}

// AuthConfig configures bearer token verification.
type AuthConfig struct {
	FirebaseProjectID string `yaml:"firebase_project_id"`
	CredentialsFile   string `yaml:"credentials_file"`
}

// ZoomConfig configures the server-to-server OAuth app used to create meetings.
type ZoomConfig struct {
	AccountID    string `yaml:"account_id"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	BaseURL      string `yaml:"base_url"`
	TokenURL     string `yaml:"token_url"`
	UserID       string `yaml:"user_id"`
}

// MailConfig selects and configures the outbound mail transport.
type MailConfig struct {
	Driver string          `yaml:"driver"`
	From   string          `yaml:"from"`
	SMTP   SMTPConfig      `yaml:"smtp"`
	Gmail  GmailMailConfig `yaml:"gmail"`
}

// SMTPConfig is used when mail.driver is "smtp".
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	TLS      bool   `yaml:"tls"`
}

// GmailMailConfig is used when mail.driver is "gmail".
type GmailMailConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	Subject         string `yaml:"subject"`
}

// RemindersConfig drives the meeting reminder job.
type RemindersConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Schedule    string        `yaml:"schedule"`
	LeadTime    time.Duration `yaml:"-"`
	LeadTimeRaw string        `yaml:"lead_time"`
	BatchSize   int           `yaml:"batch_size"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

const (
	MailDriverSMTP  = "smtp"
	MailDriverGmail = "gmail"
	MailDriverLog   = "log"
)

// Load reads the YAML file at path, applies environment overrides and
// validates the result. A .env file in the working directory is loaded first
// when present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	cfg.applyEnv(os.Getenv)

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	override := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	override(&c.Database.Password, "DATABASE_PASSWORD")
	override(&c.Redis.URL, "REDIS_URL")
	override(&c.Auth.CredentialsFile, "FIREBASE_CREDENTIALS_FILE")
	override(&c.Zoom.ClientSecret, "ZOOM_CLIENT_SECRET")
	override(&c.Mail.SMTP.Password, "SMTP_PASSWORD")
}

func (c *Config) validateAndNormalize() error {
	if err := c.Server.validateAndNormalize(); err != nil {
		return err
	}
	if err := c.Database.validateAndNormalize(); err != nil {
		return err
	}
	if c.Redis.ChannelPrefix == "" {
		c.Redis.ChannelPrefix = "portal"
	}
	if c.Auth.FirebaseProjectID == "" {
		return fmt.Errorf("config: auth.firebase_project_id must be set")
	}
	if err := c.Zoom.validateAndNormalize(); err != nil {
		return err
	}
	if err := c.Mail.validateAndNormalize(); err != nil {
		return err
	}
	if err := c.Reminders.validateAndNormalize(); err != nil {
		return err
	}
	c.Log.normalize()
	return nil
}

func (s *ServerConfig) validateAndNormalize() error {
	if s.ListenAddr == "" {
		return fmt.Errorf("config: server.listen_addr must be set")
	}

	var err error
	if s.ReadTimeout, err = parseDurationDefault(s.ReadTimeoutRaw, 10*time.Second); err != nil {
		return fmt.Errorf("config: server.read_timeout: %w", err)
	}
	if s.WriteTimeout, err = parseDurationDefault(s.WriteTimeoutRaw, 30*time.Second); err != nil {
		return fmt.Errorf("config: server.write_timeout: %w", err)
	}
	if s.ShutdownTimeout, err = parseDurationDefault(s.ShutdownRaw, 10*time.Second); err != nil {
		return fmt.Errorf("config: server.shutdown_timeout: %w", err)
	}
	return nil
}

func (d *DatabaseConfig) validateAndNormalize() error {
	if d.Host == "" {
		return fmt.Errorf("config: database.host must be set")
	}
	if d.Port == 0 {
		return fmt.Errorf("config: database.port must be set")
	}
	if d.User == "" {
		return fmt.Errorf("config: database.user must be set")
	}
	if d.Password == "" {
		return fmt.Errorf("config: database.password must be set")
	}
	if d.Name == "" {
		return fmt.Errorf("config: database.name must be set")
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}

	lifetime, err := parseDurationDefault(d.ConnMaxLifetimeRaw, 0)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_lifetime: %w", err)
	}
	d.ConnMaxLifetime = lifetime

	idleTime, err := parseDurationDefault(d.ConnMaxIdleTimeRaw, 0)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_idle_time: %w", err)
	}
	d.ConnMaxIdleTime = idleTime

	if d.ApplicationName == "" {
		d.ApplicationName = "portal-api"
	}
	if d.StatementTimeout, err = parseDurationDefault(d.StatementTimeoutRaw, 0); err != nil {
		return fmt.Errorf("config: database.statement_timeout: %w", err)
	}
	if d.SlowQuery, err = parseDurationDefault(d.SlowQueryRaw, 0); err != nil {
		return fmt.Errorf("config: database.slow_query_threshold: %w", err)
	}

	return nil
}

func (z *ZoomConfig) validateAndNormalize() error {
	if z.BaseURL == "" {
		z.BaseURL = "https://api.zoom.us/v2"
	}
	if z.TokenURL == "" {
		z.TokenURL = "https://zoom.us/oauth/token"
	}
	if z.UserID == "" {
		z.UserID = "me"
	}
	if z.AccountID == "" || z.ClientID == "" || z.ClientSecret == "" {
		return fmt.Errorf("config: zoom.account_id, zoom.client_id and zoom.client_secret must be set")
	}
	return nil
}

func (m *MailConfig) validateAndNormalize() error {
	if m.Driver == "" {
		m.Driver = MailDriverLog
	}
	switch m.Driver {
	case MailDriverSMTP:
		if m.SMTP.Host == "" {
			return fmt.Errorf("config: mail.smtp.host must be set")
		}
		if m.SMTP.Port == 0 {
			m.SMTP.Port = 587
		}
	case MailDriverGmail:
		if m.Gmail.CredentialsFile == "" {
			return fmt.Errorf("config: mail.gmail.credentials_file must be set")
		}
		if m.Gmail.Subject == "" {
			return fmt.Errorf("config: mail.gmail.subject must be set")
		}
	case MailDriverLog:
	default:
		return fmt.Errorf("config: unsupported mail.driver %q", m.Driver)
	}
	if m.Driver != MailDriverLog && m.From == "" {
		return fmt.Errorf("config: mail.from must be set")
	}
	return nil
}

func (r *RemindersConfig) validateAndNormalize() error {
	if r.Schedule == "" {
		r.Schedule = "@every 5m"
	}
	lead, err := parseDurationDefault(r.LeadTimeRaw, time.Hour)
	if err != nil {
		return fmt.Errorf("config: reminders.lead_time: %w", err)
	}
	if lead <= 0 {
		return fmt.Errorf("config: reminders.lead_time must be positive")
	}
	r.LeadTime = lead
	if r.BatchSize <= 0 {
		r.BatchSize = 50
	}
	return nil
}

func (l *LogConfig) normalize() {
	l.Level = strings.ToLower(strings.TrimSpace(l.Level))
	if l.Level == "" {
		l.Level = "info"
	}
	l.Format = strings.ToLower(strings.TrimSpace(l.Format))
	if l.Format == "" {
		l.Format = "text"
	}
}

func parseDurationDefault(raw string, def time.Duration) (time.Duration, error) {
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	return d, nil
}

// DSN returns the pgx connection string with credentials escaped.
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}
