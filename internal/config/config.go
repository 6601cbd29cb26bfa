package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Telegram
	BotToken        string
	OwnerTelegramID int64
	QuestionChannel string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Application
	AppEnv   string
	LogLevel string

	// Quiz
	DefaultTimerSeconds    int
	CorrectAnswerPoints    int64
	HintCostCoins          int64
	GroupInviteRewardCoins int64

	// Rate Limiting
	RateLimitPerUser       int
	RateLimitWindowSeconds int
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		BotToken:        getEnv("BOT_TOKEN", ""),
		QuestionChannel: getEnv("QUESTION_CHANNEL", ""),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "quizbot"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "quizbot_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DefaultTimerSeconds:    getEnvInt("DEFAULT_TIMER_SECONDS", 30),
		CorrectAnswerPoints:    getEnvInt64("CORRECT_ANSWER_POINTS", 10),
		HintCostCoins:          getEnvInt64("HINT_COST_COINS", 1),
		GroupInviteRewardCoins: getEnvInt64("GROUP_INVITE_REWARD_COINS", 1),

		RateLimitPerUser:       getEnvInt("RATE_LIMIT_PER_USER", 20),
		RateLimitWindowSeconds: getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
	}

	// Parse owner telegram ID
	ownerStr := getEnv("OWNER_TELEGRAM_ID", "")
	if ownerStr != "" {
		id, err := strconv.ParseInt(ownerStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid OWNER_TELEGRAM_ID: %w", err)
		}
		cfg.OwnerTelegramID = id
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}
	if c.DBPassword == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.DefaultTimerSeconds <= 0 {
		return fmt.Errorf("DEFAULT_TIMER_SECONDS must be positive")
	}
	return nil
}

func (c *Config) ValidateProductionSecurity() error {
	if c.AppEnv != "production" {
		return nil
	}

	if c.DBSSLMode != "require" {
		return fmt.Errorf("DB_SSLMODE must be 'require' in production")
	}
	if c.OwnerTelegramID == 0 {
		return fmt.Errorf("OWNER_TELEGRAM_ID must be set in production")
	}

	return nil
}

func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

func (c *Config) GetRateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowSeconds) * time.Second
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}
