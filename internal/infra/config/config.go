package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	App          AppSettings          `mapstructure:"app"`
	Postgres     PostgresSettings     `mapstructure:"postgres"`
	Redis        RedisSettings        `mapstructure:"redis"`
	Kafka        KafkaSettings        `mapstructure:"kafka"`
	JWT          JWTSettings          `mapstructure:"jwt"`
	SMTP         SMTPSettings         `mapstructure:"smtp"`
	SMS          SMSSettings          `mapstructure:"sms"`
	Verification VerificationSettings `mapstructure:"verification"`
	RateLimit    RateLimitSettings    `mapstructure:"rate_limit"`
	Telemetry    TelemetrySettings    `mapstructure:"telemetry"`
}

type AppSettings struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type PostgresSettings struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	User              string        `mapstructure:"user"`
	Password          string        `mapstructure:"password"`
	Database          string        `mapstructure:"database"`
	SSLMode           string        `mapstructure:"ssl_mode"`
	MaxConns          int32         `mapstructure:"max_conns"`
	MinConns          int32         `mapstructure:"min_conns"`
	MaxConnLifetime   time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   time.Duration `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
}

// RedisSettings configures Redis connection, TLS, and key namespaces.
type RedisSettings struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	DB             int           `mapstructure:"db"`
	Password       string        `mapstructure:"password"`
	TLSEnabled     bool          `mapstructure:"tls_enabled"`
	SessionPrefix  string        `mapstructure:"session_prefix"`
	SessionTTL     time.Duration `mapstructure:"session_ttl"`
	DenylistPrefix string        `mapstructure:"denylist_prefix"`
}

// KafkaSettings configures the Kafka producer.
type KafkaSettings struct {
	Enabled     bool     `mapstructure:"enabled"`
	Brokers     []string `mapstructure:"brokers"`
	TopicPrefix string   `mapstructure:"topic_prefix"`
}

type JWTSettings struct {
	Secret         string        `mapstructure:"secret"`
	Issuer         string        `mapstructure:"issuer"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
}

// SMTPSettings configures outbound verification-code email.
type SMTPSettings struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// SMSSettings configures the outbound SMS gateway.
type SMSSettings struct {
	APIURL string `mapstructure:"api_url"`
	APIKey string `mapstructure:"api_key"`
	Sender string `mapstructure:"sender"`
	DryRun bool   `mapstructure:"dry_run"`
}

// VerificationSettings configures code shape, attempt caps, and the
// purpose-specific validity windows.
type VerificationSettings struct {
	CodeLength         int           `mapstructure:"code_length"`
	MaxAttempts        int           `mapstructure:"max_attempts"`
	RegistrationTTL    time.Duration `mapstructure:"registration_ttl"`
	PasswordResetTTL   time.Duration `mapstructure:"password_reset_ttl"`
	EmailVerifyTTL     time.Duration `mapstructure:"email_verify_ttl"`
	ChangeContactTTL   time.Duration `mapstructure:"change_contact_ttl"`
	CleanupBeforeIssue bool          `mapstructure:"cleanup_before_issue"`
}

// RateLimitSettings configures rate limiting windows and max attempts per endpoint.
type RateLimitSettings struct {
	WindowDuration           time.Duration `mapstructure:"window_duration"`
	LoginMaxAttempts         int           `mapstructure:"login_max_attempts"`
	PasswordResetMaxAttempts int           `mapstructure:"password_reset_max_attempts"`
}

type TelemetrySettings struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	ServiceName  string  `mapstructure:"service_name"`
	SamplingRate float64 `mapstructure:"sampling_rate"`
	Enabled      bool    `mapstructure:"enabled"`
}

func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("SOCIAL")

	setDefaults(v)

	// Every defaulted key gets an env binding, so SOCIAL_REDIS_HOST and
	// plain REDIS_HOST both override redis.host without a literal list
	// to keep in sync.
	if err := bindEnvs(v, v.AllKeys()); err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "social-app-backend")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8080)

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "social")
	v.SetDefault("postgres.password", "social_password")
	v.SetDefault("postgres.database", "social")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 2)
	v.SetDefault("postgres.max_conn_lifetime", "60m")
	v.SetDefault("postgres.max_conn_idle_time", "15m")
	v.SetDefault("postgres.health_check_period", "30s")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.tls_enabled", false)
	v.SetDefault("redis.session_prefix", "reg_session")
	v.SetDefault("redis.session_ttl", "30m")
	v.SetDefault("redis.denylist_prefix", "revoked")

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic_prefix", "social")

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "social-app-backend")
	v.SetDefault("jwt.access_token_ttl", "24h")

	v.SetDefault("smtp.host", "localhost")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "no-reply@example.com")

	v.SetDefault("sms.api_url", "")
	v.SetDefault("sms.api_key", "")
	v.SetDefault("sms.sender", "")
	v.SetDefault("sms.dry_run", true)

	v.SetDefault("verification.code_length", 6)
	v.SetDefault("verification.max_attempts", 5)
	v.SetDefault("verification.registration_ttl", "30m")
	v.SetDefault("verification.password_reset_ttl", "5m")
	v.SetDefault("verification.email_verify_ttl", "30m")
	v.SetDefault("verification.change_contact_ttl", "30m")
	v.SetDefault("verification.cleanup_before_issue", true)

	v.SetDefault("rate_limit.window_duration", "1h")
	v.SetDefault("rate_limit.login_max_attempts", 10)
	v.SetDefault("rate_limit.password_reset_max_attempts", 3)

	v.SetDefault("telemetry.otlp_endpoint", "http://localhost:4318")
	v.SetDefault("telemetry.service_name", "social-app-backend")
	v.SetDefault("telemetry.sampling_rate", 1.0)
	v.SetDefault("telemetry.enabled", false)
}

func bindEnvs(v *viper.Viper, keys []string) error {
	for _, key := range keys {
		envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, "SOCIAL_"+envKey, envKey); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	return nil
}

// Window returns the validity window configured for the purpose.
func (s VerificationSettings) Window(purpose string) time.Duration {
	switch purpose {
	case "password_reset":
		return durationOr(s.PasswordResetTTL, 5*time.Minute)
	case "email_verification":
		return durationOr(s.EmailVerifyTTL, 30*time.Minute)
	case "change_email", "change_phone":
		return durationOr(s.ChangeContactTTL, 30*time.Minute)
	default:
		return durationOr(s.RegistrationTTL, 30*time.Minute)
	}
}

func durationOr(d, fallback time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return fallback
}
