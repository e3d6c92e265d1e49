package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const envPrefix = "WIV"

type Config struct {
	Port               string        `mapstructure:"port"`
	LogLevel           string        `mapstructure:"log_level"`
	JWTSecret          string        `mapstructure:"jwt_secret"`
	SessionTTL         time.Duration `mapstructure:"session_ttl"`
	SecureCookies      bool          `mapstructure:"secure_cookies"`
	AdminEmail         string        `mapstructure:"admin_email"`
	OtpTTL             time.Duration `mapstructure:"otp_ttl"`
	OtpPurgeInterval   time.Duration `mapstructure:"otp_purge_interval"`
	MaxUploadMB        int64         `mapstructure:"max_upload_mb"`
	CORSOrigins        []string      `mapstructure:"cors_origins"`
	RateLimitPerMinute int           `mapstructure:"rate_limit_per_minute"`
	RegisterPerMinute  int           `mapstructure:"register_per_minute"`
	LoginPerMinute     int           `mapstructure:"login_per_minute"`

	Database DatabaseConfig `mapstructure:"database"`
	Mail     MailConfig     `mapstructure:"mail"`
	S3       S3Config       `mapstructure:"s3"`
	OAuth    OAuthConfig    `mapstructure:"oauth"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // sqlite or mysql
	DSN    string `mapstructure:"dsn"`
	Debug  bool   `mapstructure:"debug"`
}

// MailConfig is the SMTP relay used for OTP delivery. An empty Host switches
// the server to a mailer that only logs.
type MailConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type S3Config struct {
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	PublicBaseURL   string `mapstructure:"public_base_url"`
}

type OAuthConfig struct {
	Google GoogleOAuthConfig `mapstructure:"google"`
}

type GoogleOAuthConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURL  string `mapstructure:"redirect_url"`
}

func (c GoogleOAuthConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("session_ttl", 7*24*time.Hour)
	v.SetDefault("secure_cookies", false)
	v.SetDefault("admin_email", "")
	v.SetDefault("otp_ttl", 15*time.Minute)
	v.SetDefault("otp_purge_interval", time.Hour)
	v.SetDefault("max_upload_mb", 5)
	v.SetDefault("cors_origins", []string{"*"})
	v.SetDefault("rate_limit_per_minute", 100)
	v.SetDefault("register_per_minute", 5)
	v.SetDefault("login_per_minute", 10)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "file:walkintovoid.db?_busy_timeout=5000&_foreign_keys=on")
	v.SetDefault("database.debug", false)

	v.SetDefault("mail.host", "")
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.username", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("mail.from", "WalkIntoVoid@noobx.in")

	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")
	v.SetDefault("s3.public_base_url", "")

	v.SetDefault("oauth.google.client_id", "")
	v.SetDefault("oauth.google.client_secret", "")
	v.SetDefault("oauth.google.redirect_url", "http://localhost:8080/auth/oauth/google/callback")
}

// Load reads .env (if present), then an optional config file, then WIV_*
// environment variables. Later sources win.
func Load(configFile string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "could not read config file %s", configFile)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "could not decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("jwt_secret must be set (WIV_JWT_SECRET)")
	}
	switch c.Database.Driver {
	case "sqlite", "mysql":
	default:
		return errors.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.OtpTTL <= 0 {
		return errors.New("otp_ttl must be positive")
	}
	return nil
}

func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB * 1024 * 1024
}
