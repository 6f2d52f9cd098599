package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port string
	Env  string

	// Business profile
	BusinessFile    string
	BusinessAPIURL  string
	TradersFile     string
	RefreshSchedule string

	// LLM
	LLMProvider    string
	LLMModel       string
	LLMTemperature float32
	LLMMaxTokens   int
	LLMTimeout     time.Duration
	OpenAIKey      string
	GroqKey        string
	DeepSeekKey    string
	LLMBaseURL     string

	// Response cache
	CacheBackend  string
	CacheTTL      time.Duration
	CacheCapacity int
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Conversation state + persistence
	HistoryLimit   int
	SessionTTL     time.Duration
	DatabaseURL    string
	ConversationDB string

	// Avatar
	HeyGenAPIKey  string
	HeyGenBaseURL string

	// Meeting invitations
	EmailProvider string
	ResendAPIKey  string
	BrevoAPIKey   string
	EmailFrom     string
	EmailFromName string

	// Widget
	PublicURL string
	LogLevel  string
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ .env file not found, using system environment variables")
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		Port:            v.GetString("PORT"),
		Env:             v.GetString("ENV"),
		BusinessFile:    v.GetString("BUSINESS_FILE"),
		BusinessAPIURL:  v.GetString("BUSINESS_API_URL"),
		TradersFile:     v.GetString("TRADERS_FILE"),
		RefreshSchedule: v.GetString("REFRESH_SCHEDULE"),
		LLMProvider:     v.GetString("LLM_PROVIDER"),
		LLMModel:        v.GetString("LLM_MODEL"),
		LLMTemperature:  float32(v.GetFloat64("LLM_TEMPERATURE")),
		LLMMaxTokens:    v.GetInt("LLM_MAX_TOKENS"),
		LLMTimeout:      v.GetDuration("LLM_TIMEOUT"),
		OpenAIKey:       v.GetString("OPENAI_API_KEY"),
		GroqKey:         v.GetString("GROQ_API_KEY"),
		DeepSeekKey:     v.GetString("DEEPSEEK_API_KEY"),
		LLMBaseURL:      v.GetString("LLM_BASE_URL"),
		CacheBackend:    v.GetString("CACHE_BACKEND"),
		CacheTTL:        v.GetDuration("CACHE_TTL"),
		CacheCapacity:   v.GetInt("CACHE_CAPACITY"),
		RedisAddr:       v.GetString("REDIS_ADDR"),
		RedisPassword:   v.GetString("REDIS_PASSWORD"),
		RedisDB:         v.GetInt("REDIS_DB"),
		HistoryLimit:    v.GetInt("HISTORY_LIMIT"),
		SessionTTL:      v.GetDuration("SESSION_TTL"),
		DatabaseURL:     v.GetString("DATABASE_URL"),
		ConversationDB:  v.GetString("CONVERSATION_DB"),
		HeyGenAPIKey:    v.GetString("HEYGEN_API_KEY"),
		HeyGenBaseURL:   v.GetString("HEYGEN_BASE_URL"),
		EmailProvider:   v.GetString("EMAIL_PROVIDER"),
		ResendAPIKey:    v.GetString("RESEND_API_KEY"),
		BrevoAPIKey:     v.GetString("BREVO_API_KEY"),
		EmailFrom:       v.GetString("EMAIL_FROM"),
		EmailFromName:   v.GetString("EMAIL_FROM_NAME"),
		PublicURL:       v.GetString("PUBLIC_URL"),
		LogLevel:        v.GetString("LOG_LEVEL"),
	}

	if cfg.PublicURL == "" {
		cfg.PublicURL = "http://localhost:" + cfg.Port
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("BUSINESS_FILE", "data/business.json")
	v.SetDefault("TRADERS_FILE", "data/traders.json")
	v.SetDefault("LLM_PROVIDER", "openai")
	v.SetDefault("LLM_MODEL", "gpt-4o-mini")
	v.SetDefault("LLM_TEMPERATURE", 0.7)
	v.SetDefault("LLM_MAX_TOKENS", 1000)
	v.SetDefault("LLM_TIMEOUT", 30*time.Second)
	v.SetDefault("CACHE_BACKEND", "memory")
	v.SetDefault("CACHE_TTL", 10*time.Minute)
	v.SetDefault("CACHE_CAPACITY", 100)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("HISTORY_LIMIT", 100)
	v.SetDefault("SESSION_TTL", 30*time.Minute)
	v.SetDefault("CONVERSATION_DB", "widget.db")
	v.SetDefault("HEYGEN_BASE_URL", "https://api.heygen.com")
	v.SetDefault("EMAIL_PROVIDER", "resend")
	v.SetDefault("LOG_LEVEL", "info")
}

// AIEnabled reports whether the configured provider has an API key.
func (c *Config) AIEnabled() bool {
	switch c.LLMProvider {
	case "groq":
		return c.GroqKey != ""
	case "deepseek":
		return c.DeepSeekKey != ""
	default:
		return c.OpenAIKey != ""
	}
}
