package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DB       DBConfig
	Telegram TelegramConfig
	Cafe     CafeConfig
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

type TelegramConfig struct {
	Token string
}

type CafeConfig struct {
	Name      string
	Phone     string
	Instagram string // business account for forwarded orders
	OrderFile string // single-slot store for the last placed order
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))

	return &Config{
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     port,
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "cafe"),
		},
		Telegram: TelegramConfig{
			Token: getEnv("TOKEN", ""),
		},
		Cafe: CafeConfig{
			Name:      getEnv("CAFE_NAME", "Amor Café"),
			Phone:     getEnv("CAFE_PHONE", "(555) 123-4567"),
			Instagram: getEnv("CAFE_INSTAGRAM", ""),
			OrderFile: getEnv("ORDER_FILE", "last_order.json"),
		},
	}, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
