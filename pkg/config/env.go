// Env loader
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var defaultAllowedOrigins = []string{
	"http://localhost:3000",
	"https://taqdeer.vercel.app",
	"https://taqdeer-app.vercel.app",
	"https://taqdeer.app",
	"https://www.taqdeer.app",
}

type Config struct {
	AppEnv  string
	Port    string
	LogMode string

	OpenAIKey        string
	OpenAIModel      string
	OpenAIBaseURL    string
	OpenAITimeout    time.Duration
	OpenAIMaxRetries int

	DatabaseURL string

	SmtpHost     string
	SmtpPort     string
	SmtpUser     string
	SmtpPassword string
	SmtpFrom     string
	ContactInbox string

	AllowedOrigins  []string
	RulingCacheSize int
}

// LoadConfig loads environment variables from the .env file
func LoadConfig() *Config {
	switch GetAppEnv() {
	case "production":
		if err := godotenv.Load(".env.production"); err == nil {
			fmt.Println("Loaded .env.production")
		}
	default:
		if err := godotenv.Load(".env.development"); err == nil {
			fmt.Println("Loaded .env.development")
		}
	}

	smtpUser := getEnv("SMTP_USER", "")

	return &Config{
		AppEnv:  getEnv("APP_ENV", "development"),
		Port:    getEnv("PORT", "8080"),
		LogMode: getEnv("LOG_MODE", getEnv("APP_ENV", "development")),

		OpenAIKey:        strings.TrimSpace(getEnv("OPENAI_API_KEY", "")),
		OpenAIModel:      getEnv("OPENAI_MODEL", "gpt-4o"),
		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", ""),
		OpenAITimeout:    time.Duration(getEnvInt("OPENAI_TIMEOUT_SECONDS", 30)) * time.Second,
		OpenAIMaxRetries: getEnvInt("OPENAI_MAX_RETRIES", 2),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		SmtpHost:     getEnv("SMTP_HOST", "smtp.gmail.com"),
		SmtpPort:     getEnv("SMTP_PORT", "587"),
		SmtpUser:     smtpUser,
		SmtpPassword: getEnv("SMTP_PASSWORD", ""),
		SmtpFrom:     getEnv("SMTP_FROM", smtpUser),
		ContactInbox: getEnv("CONTACT_INBOX", smtpUser),

		AllowedOrigins:  getEnvList("CORS_ALLOWED_ORIGINS", defaultAllowedOrigins),
		RulingCacheSize: getEnvInt("RULING_CACHE_SIZE", 256),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt falls back to defaultValue on unparsable or negative values.
func getEnvInt(key string, defaultValue int) int {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return defaultValue
	}
	return n
}

func getEnvList(key string, defaultValue []string) []string {
	raw, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(raw) == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func GetAppEnv() string {
	if value, exists := os.LookupEnv("APP_ENV"); exists {
		return value
	}
	return "development"
}
