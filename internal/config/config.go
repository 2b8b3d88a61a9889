package config

import (
	"os"
	"strconv"
	"strings"
)

// PayFastConfig holds the gateway credentials and mode. It is injected into
// the signer/validator so tests can swap identities without process-wide state.
type PayFastConfig struct {
	Mode        string // "sandbox" or "live"
	MerchantID  string
	MerchantKey string
	Passphrase  string
	ItemName    string
}

// IsLive reports whether the live gateway endpoints should be used.
func (p PayFastConfig) IsLive() bool {
	return strings.ToLower(p.Mode) == "live"
}

// IsConfigured reports whether the merchant credentials are present.
func (p PayFastConfig) IsConfigured() bool {
	return p.MerchantID != "" && p.MerchantKey != ""
}

// SMTPConfig holds receipt mail delivery settings. An empty Host disables
// real delivery and selects the log-only sender.
type SMTPConfig struct {
	Host string
	Port string
	User string
	Pass string
	From string
}

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort        string
	MySQLDSN          string
	RedisAddr         string
	RedisDB           int
	RedisPass         string
	JWTSecret         string
	SwaggerHost       string
	FrontendURL       string
	BackendURL        string
	AdminEmail        string
	AdminPasswordHash string
	PayFast           PayFastConfig
	SMTP              SMTPConfig
}

// Load builds Config from environment with sensible defaults.
func Load() *Config {
	return &Config{
		ServerPort:        getEnv("SERVER_PORT", "5000"),
		MySQLDSN:          getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/churpay?charset=utf8mb4&parseTime=True&loc=Local"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:           getEnvInt("REDIS_DB", 0),
		RedisPass:         os.Getenv("REDIS_PASSWORD"),
		JWTSecret:         getEnv("JWT_SECRET", "change-me"),
		SwaggerHost:       os.Getenv("SWAGGER_HOST"),
		FrontendURL:       getEnv("FRONTEND_URL", "http://localhost:5173"),
		BackendURL:        getEnv("BACKEND_URL", "http://localhost:5000"),
		AdminEmail:        os.Getenv("ADMIN_EMAIL"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		PayFast: PayFastConfig{
			Mode:        getEnv("PAYFAST_MODE", "sandbox"),
			MerchantID:  os.Getenv("PAYFAST_MERCHANT_ID"),
			MerchantKey: os.Getenv("PAYFAST_MERCHANT_KEY"),
			Passphrase:  os.Getenv("PAYFAST_PASSPHRASE"),
			ItemName:    getEnv("PAYFAST_ITEM_NAME", "Churpay Top Up"),
		},
		SMTP: SMTPConfig{
			Host: os.Getenv("SMTP_HOST"),
			Port: getEnv("SMTP_PORT", "587"),
			User: os.Getenv("SMTP_USER"),
			Pass: os.Getenv("SMTP_PASSWORD"),
			From: getEnv("SMTP_FROM", "receipts@churpay.com"),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}
