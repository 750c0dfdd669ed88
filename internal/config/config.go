// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type AppConfig struct {
	Locale string `yaml:"locale"` // prompt catalog: ja | en
}

type HTTPConfig struct {
	Port         int           `yaml:"port"`
	AdminAPIKey  string        `yaml:"admin_api_key"`
	JWTSecret    string        `yaml:"jwt_secret"`
	TokenTTL     time.Duration `yaml:"token_ttl"`
	SecureCookie bool          `yaml:"secure_cookie"`
}

type LineConfig struct {
	ChannelSecret string        `yaml:"channel_secret"`
	AccessToken   string        `yaml:"access_token"`
	APIBase       string        `yaml:"api_base"`
	WebhookPath   string        `yaml:"webhook_path"`
	Timeout       time.Duration `yaml:"timeout"`
}

type TelegramConfig struct {
	Token    string  `yaml:"token"`
	AdminIDs []int64 `yaml:"admin_ids"` // staff chats notified of new reservations
	Polling  bool    `yaml:"polling"`   // also take reservations over Telegram
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type ConversationConfig struct {
	TTL           time.Duration `yaml:"ttl"`            // idle conversations are dropped after this
	SweepInterval time.Duration `yaml:"sweep_interval"` // in-memory store only
	Workers       int           `yaml:"workers"`
	QueueSize     int           `yaml:"queue_size"`
	LockTimeout   time.Duration `yaml:"lock_timeout"`
	RateLimit     int           `yaml:"rate_limit"` // messages per user per minute, redis only
}

type Config struct {
	App          AppConfig          `yaml:"app"`
	HTTP         HTTPConfig         `yaml:"http"`
	Line         LineConfig         `yaml:"line"`
	Telegram     TelegramConfig     `yaml:"telegram"`
	Log          LogConfig          `yaml:"log"`
	Database     DatabaseConfig     `yaml:"database"`
	Redis        RedisConfig        `yaml:"redis"`
	Conversation ConversationConfig `yaml:"conversation"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the YAML file at path (a missing file is fine), then lets
// variables from the environment or a .env file override secrets.
func LoadConfig(path string, dev bool) (*Config, error) {
	_ = godotenv.Load() // .env is optional

	var cfg Config
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// env-only deployment
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	cfg.Runtime.Dev = dev

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Line.ChannelSecret, "LINE_CHANNEL_SECRET")
	setString(&c.Line.AccessToken, "LINE_ACCESS_TOKEN")
	setString(&c.Telegram.Token, "TELEGRAM_TOKEN")
	setString(&c.Database.URL, "DATABASE_URL")
	setString(&c.Redis.URL, "REDIS_URL")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setString(&c.HTTP.AdminAPIKey, "ADMIN_API_KEY")
	setString(&c.HTTP.JWTSecret, "JWT_SECRET")
	setString(&c.App.Locale, "BOT_LOCALE")
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.HTTP.Port = p
		}
	}
}

func setString(dst *string, env string) {
	if v := strings.TrimSpace(os.Getenv(env)); v != "" {
		*dst = v
	}
}

func (c *Config) applyDefaults() {
	if c.App.Locale == "" {
		c.App.Locale = "ja"
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.TokenTTL <= 0 {
		c.HTTP.TokenTTL = 30 * time.Minute
	}
	if c.Line.APIBase == "" {
		c.Line.APIBase = "https://api.line.me"
	}
	if c.Line.WebhookPath == "" {
		c.Line.WebhookPath = "/webhook/line"
	}
	if c.Line.Timeout <= 0 {
		c.Line.Timeout = 10 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Database.MaxConns <= 0 {
		c.Database.MaxConns = 10
	}
	c.Conversation.TTL = normalizeTTL(c.Conversation.TTL)
	if c.Conversation.SweepInterval <= 0 {
		c.Conversation.SweepInterval = time.Minute
	}
	if c.Conversation.Workers <= 0 {
		c.Conversation.Workers = 8
	}
	if c.Conversation.QueueSize <= 0 {
		c.Conversation.QueueSize = 64
	}
	if c.Conversation.LockTimeout <= 0 {
		c.Conversation.LockTimeout = 5 * time.Second
	}
	if c.Conversation.RateLimit <= 0 {
		c.Conversation.RateLimit = 30
	}
}

// Validate enforces the minimum needed to serve at least one channel.
func (c *Config) Validate() error {
	lineOn := c.Line.ChannelSecret != "" || c.Line.AccessToken != ""
	if lineOn && (c.Line.ChannelSecret == "" || c.Line.AccessToken == "") {
		return errors.New("line.channel_secret and line.access_token must be set together")
	}
	if !lineOn && !c.Runtime.Dev && !(c.Telegram.Polling && c.Telegram.Token != "") {
		return errors.New("line credentials are required (or enable telegram.polling, or run with -dev)")
	}
	if c.Telegram.Polling && c.Telegram.Token == "" {
		return errors.New("telegram.polling requires telegram.token")
	}
	if c.HTTP.AdminAPIKey != "" && len(c.HTTP.JWTSecret) < 16 {
		return errors.New("http.jwt_secret must be at least 16 bytes when the admin api is enabled")
	}
	return nil
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return 30 * time.Minute
	}
	return d
}
