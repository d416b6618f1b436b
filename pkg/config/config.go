package config

import (
	"os"
	"strconv"
	"time"
)

// DBConfig PostgreSQL settings
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
	// SlowQueryMs logs queries slower than this; 0 uses the tracer default
	SlowQueryMs int `yaml:"slow_query_ms"`
}

// MQConfig RabbitMQ settings
type MQConfig struct {
	URL string `yaml:"url"`
}

// RedisConfig Redis settings
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// JWTConfig admin session token settings
type JWTConfig struct {
	Secret   string `yaml:"secret"`
	TTLHours int    `yaml:"ttl_hours"`
}

// TTL returns the configured token lifetime, 24h by default.
func (c JWTConfig) TTL() time.Duration {
	if c.TTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.TTLHours) * time.Hour
}

// ServerConfig HTTP listener settings
type ServerConfig struct {
	Port string `yaml:"port"`
}

// OtelConfig tracing exporter settings
type OtelConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint"`
	ServiceName string  `yaml:"service_name"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

// OverrideDBFromEnv applies DB_* variables.
func OverrideDBFromEnv(cfg *DBConfig) {
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Port = p
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.User = user
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		cfg.Password = password
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.Name = name
	}
	if mode := os.Getenv("DB_SSLMODE"); mode != "" {
		cfg.SSLMode = mode
	}
}

// OverrideMQFromEnv applies MQ_URL.
func OverrideMQFromEnv(cfg *MQConfig) {
	if url := os.Getenv("MQ_URL"); url != "" {
		cfg.URL = url
	}
}

// OverrideRedisFromEnv applies REDIS_* variables.
func OverrideRedisFromEnv(cfg *RedisConfig) {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.Password = password
	}
	if db := os.Getenv("REDIS_DB"); db != "" {
		if n, err := strconv.Atoi(db); err == nil {
			cfg.DB = n
		}
	}
}

// OverrideJWTFromEnv applies JWT_SECRET.
func OverrideJWTFromEnv(cfg *JWTConfig) {
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.Secret = secret
	}
}

// OverrideServerFromEnv applies SERVER_PORT.
func OverrideServerFromEnv(cfg *ServerConfig) {
	if port := os.Getenv("SERVER_PORT"); port != "" {
		cfg.Port = port
	}
}

// OverrideOtelFromEnv applies OTEL_* variables.
func OverrideOtelFromEnv(cfg *OtelConfig) {
	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); endpoint != "" {
		cfg.Endpoint = endpoint
	}
	if ratio := os.Getenv("OTEL_TRACES_SAMPLER_ARG"); ratio != "" {
		if r, err := strconv.ParseFloat(ratio, 64); err == nil {
			cfg.SampleRatio = r
		}
	}
	if enabled := os.Getenv("OTEL_ENABLED"); enabled != "" {
		if b, err := strconv.ParseBool(enabled); err == nil {
			cfg.Enabled = b
		}
	}
}

// NotificationConfig WhatsApp delivery settings
type NotificationConfig struct {
	// log / whatsapp-business / twilio / fonnte / generic
	Provider string `yaml:"provider"`
	// direct / queue
	Mode           string `yaml:"mode"`
	BusinessNumber string `yaml:"business_number"`
	SenderNumber   string `yaml:"sender_number"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`

	WhatsAppBusiness WhatsAppBusinessConfig `yaml:"whatsapp_business"`
	Twilio           TwilioConfig           `yaml:"twilio"`
	Fonnte           FonnteConfig           `yaml:"fonnte"`
	Generic          GenericProviderConfig  `yaml:"generic"`
}

type WhatsAppBusinessConfig struct {
	AccessToken   string `yaml:"access_token"`
	PhoneNumberID string `yaml:"phone_number_id"`
	BaseURL       string `yaml:"base_url"`
}

type TwilioConfig struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	FromNumber string `yaml:"from_number"`
	BaseURL    string `yaml:"base_url"`
}

type FonnteConfig struct {
	URL     string `yaml:"url"`
	APIKey1 string `yaml:"api_key_1"`
	APIKey2 string `yaml:"api_key_2"`
}

type GenericProviderConfig struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
}

// Timeout returns the per-call provider timeout, 5s by default.
func (c NotificationConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// OverrideNotificationFromEnv applies WHATSAPP_* and provider credential
// variables.
func OverrideNotificationFromEnv(cfg *NotificationConfig) {
	setFromEnv(&cfg.Provider, "WHATSAPP_PROVIDER")
	setFromEnv(&cfg.Mode, "NOTIFICATION_MODE")
	setFromEnv(&cfg.BusinessNumber, "WHATSAPP_BUSINESS_NUMBER")
	setFromEnv(&cfg.SenderNumber, "WHATSAPP_SENDER_NUMBER")
	setFromEnv(&cfg.WhatsAppBusiness.AccessToken, "WHATSAPP_BUSINESS_ACCESS_TOKEN")
	setFromEnv(&cfg.WhatsAppBusiness.PhoneNumberID, "WHATSAPP_BUSINESS_PHONE_NUMBER_ID")
	setFromEnv(&cfg.Twilio.AccountSID, "TWILIO_ACCOUNT_SID")
	setFromEnv(&cfg.Twilio.AuthToken, "TWILIO_AUTH_TOKEN")
	setFromEnv(&cfg.Twilio.FromNumber, "TWILIO_WHATSAPP_NUMBER")
	setFromEnv(&cfg.Fonnte.URL, "FONNTE_API_URL")
	setFromEnv(&cfg.Fonnte.APIKey1, "FONNTE_API_KEY_1")
	setFromEnv(&cfg.Fonnte.APIKey2, "FONNTE_API_KEY_2")
	setFromEnv(&cfg.Generic.URL, "WHATSAPP_API_URL")
	setFromEnv(&cfg.Generic.APIKey, "WHATSAPP_API_KEY")
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// AdminConfig back-office login. PasswordHash is a bcrypt hash.
type AdminConfig struct {
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password_hash"`
}

// OverrideAdminFromEnv applies ADMIN_USERNAME and ADMIN_PASSWORD_HASH.
func OverrideAdminFromEnv(cfg *AdminConfig) {
	setFromEnv(&cfg.Username, "ADMIN_USERNAME")
	setFromEnv(&cfg.PasswordHash, "ADMIN_PASSWORD_HASH")
}
