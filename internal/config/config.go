package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	HTTPAddr    string
	DataDir     string
	DBPath      string

	KnowledgePath    string
	ConversationsDir string
	RetentionDays    int

	LLMBaseURL     string
	LLMAPIKey      string
	LLMModel       string
	LLMTemperature float64
	LLMMaxTokens   int
	LLMTimeoutSec  int

	TelegramToken string
	TelegramAPI   string
	TelegramPoll  int
}

// FromEnv builds the runtime configuration from CHATBOT_* environment
// variables. A .env file in the working directory is loaded first when
// present, so local setups mirror production env wiring.
func FromEnv() Config {
	_ = godotenv.Load()

	dataDir := stringOrDefault("CHATBOT_DATA_DIR", "data")

	return Config{
		Environment: stringOrDefault("CHATBOT_ENV", "development"),
		HTTPAddr:    stringOrDefault("CHATBOT_HTTP_ADDR", ":3000"),
		DataDir:     dataDir,
		DBPath:      stringOrDefault("CHATBOT_DB_PATH", dataDir+"/chatbot.sqlite"),

		KnowledgePath:    stringOrDefault("CHATBOT_KNOWLEDGE_PATH", "companyData.json"),
		ConversationsDir: stringOrDefault("CHATBOT_CONVERSATIONS_DIR", dataDir+"/conversations"),
		RetentionDays:    intOrDefault("CHATBOT_MAX_CONVERSATION_AGE_DAYS", 60),

		LLMBaseURL:     strings.TrimSpace(os.Getenv("CHATBOT_LLM_BASE_URL")),
		LLMAPIKey:      strings.TrimSpace(os.Getenv("CHATBOT_LLM_API_KEY")),
		LLMModel:       stringOrDefault("CHATBOT_LLM_MODEL", "default-model"),
		LLMTemperature: floatOrDefault("CHATBOT_LLM_TEMPERATURE", 0.7),
		LLMMaxTokens:   intOrDefault("CHATBOT_LLM_MAX_TOKENS", 500),
		LLMTimeoutSec:  intOrDefault("CHATBOT_LLM_TIMEOUT_SECONDS", 60),

		TelegramToken: strings.TrimSpace(os.Getenv("CHATBOT_TELEGRAM_TOKEN")),
		TelegramAPI:   stringOrDefault("CHATBOT_TELEGRAM_API_BASE", "https://api.telegram.org"),
		TelegramPoll:  intOrDefault("CHATBOT_TELEGRAM_POLL_SECONDS", 25),
	}
}

func stringOrDefault(name, fallback string) string {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	return value
}

func intOrDefault(name string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 1 {
		return fallback
	}
	return parsed
}

func floatOrDefault(name string, fallback float64) float64 {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
