package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	OAuth      OAuthConfig
	Paystack   PaystackConfig
	Cloudinary CloudinaryConfig
	Savings    SavingsConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
}

// PaystackConfig holds the webhook signing secret and the API base URL
// used for transaction verification.
type PaystackConfig struct {
	SecretKey string
	BaseURL   string
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
}

// SavingsConfig carries product-level tunables: transfer bounds, agent
// commission, subscription plan price, referral bonuses. All amounts are
// kobo (1 NGN = 100 kobo).
type SavingsConfig struct {
	MinTransferKobo    int64
	MaxTransferKobo    int64
	AgentCommissionPct float64
	PlanPriceKobo      int64
	DailySaveKobo      int64
	ReferrerBonusKobo  int64
	ReferredBonusKobo  int64
	ReconcileCronSpec  string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8088"),
			Env:          getEnv("APP_ENV", "development"),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:             getEnv("DB_DSN", "ajopay:ajopay@tcp(localhost:3306)/ajopay?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
		},
		JWT: JWTConfig{
			AccessSecret:  getEnv("JWT_ACCESS_SECRET", "change-me-in-production"),
			RefreshSecret: getEnv("JWT_REFRESH_SECRET", "change-me-refresh"),
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: 168 * time.Hour,
			Issuer:        "ajopay",
		},
		OAuth: OAuthConfig{
			GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),
		},
		Paystack: PaystackConfig{
			SecretKey: getEnv("PAYSTACK_SECRET_KEY", ""),
			BaseURL:   getEnv("PAYSTACK_BASE_URL", "https://api.paystack.co"),
		},
		Cloudinary: CloudinaryConfig{
			CloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:    getEnv("CLOUDINARY_API_KEY", ""),
			APISecret: getEnv("CLOUDINARY_API_SECRET", ""),
		},
		Savings: SavingsConfig{
			MinTransferKobo:    100,         // NGN 1
			MaxTransferKobo:    100_000_000, // NGN 1,000,000
			AgentCommissionPct: getEnvFloat("AGENT_COMMISSION_PERCENT", 2.5),
			PlanPriceKobo:      getEnvInt64("PLAN_PRICE_KOBO", 50000), // NGN 500/month
			DailySaveKobo:      getEnvInt64("DAILY_SAVE_KOBO", 5000), // NGN 50/day
			ReferrerBonusKobo:  getEnvInt64("REFERRER_BONUS_KOBO", 10000),
			ReferredBonusKobo:  getEnvInt64("REFERRED_BONUS_KOBO", 5000),
			ReconcileCronSpec:  getEnv("RECONCILE_CRON", "0 2 * * *"),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
