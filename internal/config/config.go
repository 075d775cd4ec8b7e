package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Keys     APIKeys
	Ai       AIConfig
	Pipeline PipelineConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host          string
	Port          int
	Email         string
	Password      string
	SenderName    string
	OperatorEmail string
}

type APIKeys struct {
	GoogleGemini string
}

type AIConfig struct {
	EmbeddingProvider string // "gemini" or "ollama"
	OllamaBaseURL     string
	OllamaModel       string
	LLMProvider       string // "ollama" or "gemini"
	LLMModel          string // e.g. "llama3", "gemini-1.5-flash"
}

// PipelineConfig carries the triage pipeline tunables. The defaults are the
// values the pipeline test suites assume.
type PipelineConfig struct {
	SimilarityThreshold float64 // cosine similarity; candidates >= threshold may join a cluster
	MaxCandidates       int     // similarity search bound
	ScoreHighBar        float64 // scores above this are "strategically exceptional"
	PillarViabilityBar  float64 // scores below this force the Uncategorized fallback
	MaxAttempts         int     // retry ceiling for one job
	SoftTimeoutSeconds  int     // stop launching new attempts past this budget
	HardTimeoutSeconds  int     // the whole job is cancelled past this budget
	PillarCacheSeconds  int     // tenant pillar-set cache TTL
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:          getEnv("SMTP_HOST", ""),
			Port:          getEnvAsInt("SMTP_PORT", 587),
			Email:         getEnv("SMTP_EMAIL", ""),
			Password:      getEnv("SMTP_PASSWORD", ""),
			SenderName:    getEnv("SMTP_SENDER_NAME", "Sigment"),
			OperatorEmail: getEnv("OPERATOR_ALERT_EMAIL", ""),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "gemini"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "gemini"),
			LLMModel:          getEnv("LLM_MODEL", "gemini-1.5-flash"),
		},
		Pipeline: PipelineConfig{
			SimilarityThreshold: getEnvAsFloat("SIMILARITY_THRESHOLD", 0.75),
			MaxCandidates:       getEnvAsInt("SIMILARITY_MAX_CANDIDATES", 10),
			ScoreHighBar:        getEnvAsFloat("SCORE_HIGH_BAR", 8.5),
			PillarViabilityBar:  getEnvAsFloat("PILLAR_VIABILITY_BAR", 5.0),
			MaxAttempts:         getEnvAsInt("PIPELINE_MAX_ATTEMPTS", 5),
			SoftTimeoutSeconds:  getEnvAsInt("PIPELINE_SOFT_TIMEOUT_SECONDS", 240),
			HardTimeoutSeconds:  getEnvAsInt("PIPELINE_HARD_TIMEOUT_SECONDS", 300),
			PillarCacheSeconds:  getEnvAsInt("PILLAR_CACHE_SECONDS", 300),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}
