package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Default fallback prices per gram (INR), used when no live price row
// exists. Overridable via GOLD_PRICE_FALLBACK / SILVER_PRICE_FALLBACK.
const (
	DefaultGoldPricePerGram   = 5500.0
	DefaultSilverPricePerGram = 70.0
)

// Config holds all configuration for the application
type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	JWTSecret  string
	Port       string
	Env        string

	CashfreeBaseURL       string
	CashfreeClientID      string
	CashfreeClientSecret  string
	CashfreeWebhookSecret string

	GoldPriceFallback   float64
	SilverPriceFallback float64

	AdminAPIKeyHash string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		return nil, fmt.Errorf("error loading .env file: %v", err)
	}

	config := &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		JWTSecret:  os.Getenv("JWT_SECRET"),
		Port:       os.Getenv("PORT"),
		Env:        os.Getenv("ENV"),

		CashfreeBaseURL:       os.Getenv("CASHFREE_BASE_URL"),
		CashfreeClientID:      os.Getenv("CASHFREE_CLIENT_ID"),
		CashfreeClientSecret:  os.Getenv("CASHFREE_CLIENT_SECRET"),
		CashfreeWebhookSecret: os.Getenv("CASHFREE_WEBHOOK_SECRET"),

		GoldPriceFallback:   envFloat("GOLD_PRICE_FALLBACK", DefaultGoldPricePerGram),
		SilverPriceFallback: envFloat("SILVER_PRICE_FALLBACK", DefaultSilverPricePerGram),

		AdminAPIKeyHash: os.Getenv("ADMIN_API_KEY_HASH"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     os.Getenv("SMTP_PORT"),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     os.Getenv("SMTP_FROM"),
	}

	if config.CashfreeBaseURL == "" {
		config.CashfreeBaseURL = "https://sandbox.cashfree.com"
	}

	return config, nil
}

// PriceFallbacks returns the configured fallback prices keyed by metal type
func (c *Config) PriceFallbacks() map[string]float64 {
	return map[string]float64{
		"gold":   c.GoldPriceFallback,
		"silver": c.SilverPriceFallback,
	}
}

func envFloat(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
