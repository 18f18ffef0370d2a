package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the API server and
// supporting services.
type Config struct {
	ListenAddr string

	MySQLDSN string

	JWTSecret string
	TokenTTL  time.Duration

	FreeGenerationLimit int

	HFAPIKey       string
	HFBaseURL      string
	HFModel        string
	RequestTimeout time.Duration

	GeminiAPIKey  string
	GeminiBaseURL string
	GeminiModel   string

	RazorpayKeyID     string
	RazorpayKeySecret string
	RazorpayBaseURL   string
	PremiumPriceMinor int
	PaymentCurrency   string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPass     string
	SMTPFrom     string
	DashboardURL string

	S3Endpoint      string
	S3Region        string
	S3AccessKey     string
	S3SecretKey     string
	S3Bucket        string
	S3PublicBaseURL string
	S3UsePathStyle  bool
	S3Prefix        string
}

// Load reads configuration from environment variables, applying sane defaults.
// Only the store DSN and the token signing secret are hard requirements; the
// external providers (Gemini, Hugging Face, Razorpay, SMTP, S3) may be left
// unconfigured and the corresponding features degrade as documented.
func Load() (Config, error) {
	if err := loadEnvFile(); err != nil {
		return Config{}, err
	}

	cfg := Config{
		ListenAddr:          getEnv("LISTEN_ADDR", ":8080"),
		TokenTTL:            time.Hour * time.Duration(getInt("TOKEN_TTL_HOURS", 24*7)),
		FreeGenerationLimit: getInt("FREE_GENERATION_LIMIT", 2),
		HFBaseURL:           getEnv("HF_BASE_URL", "https://router.huggingface.co/hf-inference/models"),
		HFModel:             getEnv("HF_MODEL", "black-forest-labs/FLUX.1-schnell"),
		RequestTimeout:      time.Second * time.Duration(getInt("HTTP_TIMEOUT_SECONDS", 120)),
		GeminiBaseURL:       getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		GeminiModel:         getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		RazorpayBaseURL:     getEnv("RAZORPAY_BASE_URL", "https://api.razorpay.com"),
		PremiumPriceMinor:   getInt("PREMIUM_PRICE_MINOR_UNITS", 99*100),
		PaymentCurrency:     getEnv("PAYMENT_CURRENCY", "INR"),
		SMTPPort:            getInt("SMTP_PORT", 587),
		DashboardURL:        getEnv("DASHBOARD_URL", ""),
		S3Endpoint:          getEnv("S3_ENDPOINT", ""),
		S3Region:            os.Getenv("S3_REGION"),
		S3AccessKey:         os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:         os.Getenv("S3_SECRET_KEY"),
		S3Bucket:            os.Getenv("S3_BUCKET"),
		S3PublicBaseURL:     os.Getenv("S3_PUBLIC_BASE_URL"),
		S3UsePathStyle:      getBool("S3_USE_PATH_STYLE", false),
		S3Prefix:            getEnv("S3_PREFIX", "thumbnails"),
	}

	cfg.MySQLDSN = os.Getenv("MYSQL_DSN")
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	cfg.HFAPIKey = os.Getenv("HF_API_KEY")
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.RazorpayKeyID = os.Getenv("RAZORPAY_KEY_ID")
	cfg.RazorpayKeySecret = os.Getenv("RAZORPAY_KEY_SECRET")
	cfg.SMTPHost = os.Getenv("SMTP_HOST")
	cfg.SMTPUser = os.Getenv("SMTP_USER")
	cfg.SMTPPass = os.Getenv("SMTP_PASS")
	cfg.SMTPFrom = getEnv("SMTP_FROM", cfg.SMTPUser)

	var missing []string
	if cfg.MySQLDSN == "" {
		missing = append(missing, "MYSQL_DSN")
	}
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %v", missing)
	}

	if cfg.FreeGenerationLimit < 0 {
		return Config{}, errors.New("FREE_GENERATION_LIMIT must not be negative")
	}

	return cfg, nil
}

// S3Configured reports whether uploads to object storage are enabled.
func (c Config) S3Configured() bool {
	return c.S3Bucket != "" && c.S3Region != "" && c.S3AccessKey != "" && c.S3SecretKey != "" && c.S3PublicBaseURL != ""
}

func (c Config) RazorpayConfigured() bool {
	return c.RazorpayKeyID != "" && c.RazorpayKeySecret != ""
}

func loadEnvFile() error {
	candidates := []string{".env", filepath.Join("..", ".env")}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			if err := godotenv.Load(candidate); err != nil {
				return fmt.Errorf("load %s: %w", candidate, err)
			}
			return nil
		}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func getBool(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return value
}
