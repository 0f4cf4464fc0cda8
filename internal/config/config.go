package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	AppPort    string
	AppEnv     string

	// CrossPay processor credentials. All of these come from the
	// environment; nothing here may be hard-coded.
	MerchantID    string
	APIKey        string
	SigningSecret string
	BaseURL       string
	ReturnURL     string
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:        os.Getenv("DB_HOST"),
		DBUser:        os.Getenv("DB_USER"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBName:        os.Getenv("DB_NAME"),
		DBPort:        os.Getenv("DB_PORT"),
		AppPort:       os.Getenv("APP_PORT"),
		AppEnv:        os.Getenv("APP_ENV"),
		MerchantID:    os.Getenv("CROSSPAY_MERCHANT_ID"),
		APIKey:        os.Getenv("CROSSPAY_API_KEY"),
		SigningSecret: os.Getenv("CROSSPAY_SECRET"),
		BaseURL:       os.Getenv("CROSSPAY_BASE_URL"),
		ReturnURL:     os.Getenv("PAYMENT_RETURN_URL"),
	}

	if cfg.DBHost == "" {
		log.Fatal("Environment variables not loaded properly")
	}
	if cfg.APIKey == "" || cfg.SigningSecret == "" {
		log.Fatal("CrossPay credentials not configured")
	}

	return cfg
}
