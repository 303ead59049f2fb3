package logger

import (
	"context"
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	lg   *zap.Logger
	once sync.Once
)

// New builds the process-wide logger once; subsequent calls return the
// same instance. Production env gets JSON output, everything else the
// colored development encoder.
func New(env string) (*zap.Logger, error) {
	var err error
	once.Do(func() {
		cfg := zap.NewProductionConfig()
		if env != "production" {
			cfg = zap.NewDevelopmentConfig()
			cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		lg, err = cfg.Build()
	})
	return lg, err
}

// RequestIDKey stores the request identifier on a context.Context.
type RequestIDKey struct{}

// WithContext returns the singleton logger annotated with the request id
// carried by ctx, when present.
func WithContext(ctx context.Context) *zap.Logger {
	if lg == nil {
		fallback, _ := zap.NewDevelopment()
		return fallback
	}
	if ctx == nil {
		return lg
	}

	if id, ok := ctx.Value(RequestIDKey{}).(string); ok && id != "" {
		return lg.With(zap.String("request_id", id))
	}
	return lg
}

// Contact values are user PII; everything below exists so they never
// reach log output unmasked.

var (
	emailPattern = regexp.MustCompile(`^([^@]{1,3})[^@]*(@.+)$`)
	phonePattern = regexp.MustCompile(`^(\+?\d{1,3})(\d{4,})(\d{4})$`)
)

// MaskEmail keeps up to the first three characters and the domain:
// john.doe@example.com becomes joh***@example.com.
func MaskEmail(email string) string {
	if email == "" {
		return ""
	}

	if m := emailPattern.FindStringSubmatch(email); len(m) == 3 {
		return m[1] + "***" + m[2]
	}
	if at := strings.Index(email, "@"); at >= 0 {
		return "***" + email[at:]
	}
	return "***"
}

// MaskPhone keeps the country-code prefix and last four digits. Strings
// that do not look like a phone number keep only a tail of four.
func MaskPhone(phone string) string {
	if phone == "" {
		return ""
	}

	if m := phonePattern.FindStringSubmatch(phone); len(m) == 4 {
		return m[1] + "***" + m[3]
	}
	if len(phone) > 4 {
		return "***" + phone[len(phone)-4:]
	}
	return "***"
}

// MaskContact picks the email or phone strategy from the value's shape.
func MaskContact(value string) string {
	if strings.Contains(value, "@") {
		return MaskEmail(value)
	}
	return MaskPhone(value)
}

// MaskIP keeps the first two IPv4 octets or the first four IPv6 groups.
func MaskIP(ip string) string {
	if ip == "" {
		return ""
	}

	if strings.Contains(ip, ".") {
		if parts := strings.Split(ip, "."); len(parts) == 4 {
			return parts[0] + "." + parts[1] + ".*.*"
		}
	}
	if strings.Contains(ip, ":") {
		if parts := strings.Split(ip, ":"); len(parts) >= 4 {
			return strings.Join(parts[:4], ":") + ":*:*:*:*"
		}
	}
	return "***"
}
