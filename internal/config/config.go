package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig      `toml:"app"`
	Limits   LimitsConfig   `toml:"limits"`
	Ai       AIConfig       `toml:"ai"`
	Keys     APIKeys        `toml:"keys"`
	Rag      RAGConfig      `toml:"rag"`
	Session  SessionConfig  `toml:"session"`
	Database DatabaseConfig `toml:"database"`
	Events   EventsConfig   `toml:"events"`
}

type AppConfig struct {
	Name               string        `toml:"name" validate:"required"`
	Version            string        `toml:"version" validate:"required"`
	Port               string        `toml:"port" validate:"required"`
	Environment        string        `toml:"environment"`
	Debug              bool          `toml:"debug"`
	LogFilePath        string        `toml:"log_file_path"`
	AuditLogPath       string        `toml:"audit_log_path"`
	CorsAllowedOrigins string        `toml:"cors_allowed_origins"`
	PromptDir          string        `toml:"prompt_dir"`
	OtelEnabled        bool          `toml:"otel_enabled"`
	OtelEndpoint       string        `toml:"otel_endpoint"`
	ShutdownTimeout    time.Duration `toml:"shutdown_timeout"`
}

type LimitsConfig struct {
	MaxFileSizeMB int           `toml:"max_file_size_mb" validate:"gt=0"`
	PDFTimeout    time.Duration `toml:"pdf_timeout" validate:"gt=0"`
	DOCXTimeout   time.Duration `toml:"docx_timeout" validate:"gt=0"`
}

type AIConfig struct {
	LLMProvider       string        `toml:"llm_provider" validate:"oneof=gemini ollama openai"`
	LLMModel          string        `toml:"llm_model" validate:"required"`
	LLMBaseURL        string        `toml:"llm_base_url"`
	Temperature       float64       `toml:"temperature" validate:"gte=0,lte=2"`
	ChatTemperature   float64       `toml:"chat_temperature" validate:"gte=0,lte=2"`
	ValidateTimeout   time.Duration `toml:"validate_timeout" validate:"gt=0"`
	AnalyzeTimeout    time.Duration `toml:"analyze_timeout" validate:"gt=0"`
	RejectTimeout     time.Duration `toml:"reject_timeout" validate:"gt=0"`
	AnswerTimeout     time.Duration `toml:"answer_timeout" validate:"gt=0"`
	EmbeddingProvider string        `toml:"embedding_provider" validate:"oneof=openai gemini ollama jina"`
	EmbeddingModel    string        `toml:"embedding_model"`
	EmbeddingBaseURL  string        `toml:"embedding_base_url"`
}

type APIKeys struct {
	GoogleGemini string `toml:"google_gemini"`
	OpenAI       string `toml:"openai"`
	Jina         string `toml:"jina"`
}

type RAGConfig struct {
	ChunkSize    int           `toml:"chunk_size" validate:"gt=0"`
	ChunkOverlap int           `toml:"chunk_overlap" validate:"gte=0,ltfield=ChunkSize"`
	TopK         int           `toml:"top_k" validate:"gt=0"`
	IndexBackend string        `toml:"index_backend" validate:"oneof=memory pgvector"`
	EmbedWorkers int           `toml:"embed_workers" validate:"gt=0"`
	EmbedTimeout time.Duration `toml:"embed_timeout"`
}

type SessionConfig struct {
	Store string        `toml:"store" validate:"oneof=memory redis"`
	TTL   time.Duration `toml:"ttl"`
}

type DatabaseConfig struct {
	Connection  string `toml:"connection"`
	AutoMigrate bool   `toml:"auto_migrate"`
}

type EventsConfig struct {
	AnalysisTopic string `toml:"analysis_topic" validate:"required"`
	NatsURL       string `toml:"nats_url"`
	RedisURL      string `toml:"redis_url"`
}

func defaults() *Config {
	return &Config{
		App: AppConfig{
			Name:               "Legal Document Analyzer",
			Version:            "1.0.0",
			Port:               "8000",
			Environment:        "development",
			LogFilePath:        "logs/app.log",
			AuditLogPath:       "logs/analysis.log",
			CorsAllowedOrigins: "http://localhost:3000,http://localhost:5173",
			OtelEndpoint:       "localhost:4318",
			ShutdownTimeout:    10 * time.Second,
		},
		Limits: LimitsConfig{
			MaxFileSizeMB: 10,
			PDFTimeout:    30 * time.Second,
			DOCXTimeout:   20 * time.Second,
		},
		Ai: AIConfig{
			LLMProvider:       "gemini",
			LLMModel:          "gemini-2.5-flash",
			Temperature:       0.1,
			ChatTemperature:   0.7,
			ValidateTimeout:   45 * time.Second,
			AnalyzeTimeout:    90 * time.Second,
			RejectTimeout:     30 * time.Second,
			AnswerTimeout:     60 * time.Second,
			EmbeddingProvider: "openai",
			EmbeddingModel:    "text-embedding-3-small",
		},
		Rag: RAGConfig{
			ChunkSize:    1000,
			ChunkOverlap: 200,
			TopK:         3,
			IndexBackend: "memory",
			EmbedWorkers: 4,
			EmbedTimeout: 60 * time.Second,
		},
		Session: SessionConfig{
			Store: "memory",
		},
		Events: EventsConfig{
			AnalysisTopic: "DOCUMENT_ANALYZED",
			NatsURL:       "",
			RedisURL:      "redis://localhost:6379",
		},
	}
}

// Load builds the configuration from defaults, the optional TOML file named
// by APP_CONFIG_FILE, then the environment (.env included). Later sources win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	cfg := defaults()
	if path := getEnv("APP_CONFIG_FILE", ""); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}
	applyEnv(cfg)

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func applyEnv(c *Config) {
	c.App.Name = getEnv("APP_NAME", c.App.Name)
	c.App.Version = getEnv("APP_VERSION", c.App.Version)
	c.App.Port = getEnv("APP_PORT", c.App.Port)
	c.App.Environment = getEnv("GO_ENV", c.App.Environment)
	c.App.Debug = getEnvAsBool("DEBUG", c.App.Debug)
	c.App.LogFilePath = getEnv("LOG_FILE_PATH", c.App.LogFilePath)
	c.App.AuditLogPath = getEnv("AUDIT_LOG_PATH", c.App.AuditLogPath)
	c.App.CorsAllowedOrigins = getEnv("CORS_ALLOWED_ORIGINS", c.App.CorsAllowedOrigins)
	c.App.PromptDir = getEnv("PROMPT_DIR", c.App.PromptDir)
	c.App.OtelEnabled = getEnvAsBool("OTEL_ENABLED", c.App.OtelEnabled)
	c.App.OtelEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", c.App.OtelEndpoint)
	c.App.ShutdownTimeout = getEnvAsDuration("SHUTDOWN_TIMEOUT", c.App.ShutdownTimeout)

	c.Limits.MaxFileSizeMB = getEnvAsInt("MAX_FILE_SIZE_MB", c.Limits.MaxFileSizeMB)
	c.Limits.PDFTimeout = getEnvAsDuration("PDF_TIMEOUT", c.Limits.PDFTimeout)
	c.Limits.DOCXTimeout = getEnvAsDuration("DOCX_TIMEOUT", c.Limits.DOCXTimeout)

	c.Ai.LLMProvider = getEnv("LLM_PROVIDER", c.Ai.LLMProvider)
	c.Ai.LLMModel = getEnv("MODEL_NAME", c.Ai.LLMModel)
	c.Ai.LLMBaseURL = getEnv("LLM_BASE_URL", c.Ai.LLMBaseURL)
	c.Ai.Temperature = getEnvAsFloat("TEMPERATURE", c.Ai.Temperature)
	c.Ai.ChatTemperature = getEnvAsFloat("CHAT_TEMPERATURE", c.Ai.ChatTemperature)
	c.Ai.ValidateTimeout = getEnvAsDuration("VALIDATE_TIMEOUT", c.Ai.ValidateTimeout)
	c.Ai.AnalyzeTimeout = getEnvAsDuration("ANALYZE_TIMEOUT", c.Ai.AnalyzeTimeout)
	c.Ai.RejectTimeout = getEnvAsDuration("REJECT_TIMEOUT", c.Ai.RejectTimeout)
	c.Ai.AnswerTimeout = getEnvAsDuration("ANSWER_TIMEOUT", c.Ai.AnswerTimeout)
	c.Ai.EmbeddingProvider = getEnv("EMBEDDING_PROVIDER", c.Ai.EmbeddingProvider)
	c.Ai.EmbeddingModel = getEnv("EMBEDDINGS_MODEL", c.Ai.EmbeddingModel)
	c.Ai.EmbeddingBaseURL = getEnv("EMBEDDING_BASE_URL", c.Ai.EmbeddingBaseURL)

	c.Keys.GoogleGemini = getEnv("GOOGLE_API_KEY", c.Keys.GoogleGemini)
	c.Keys.OpenAI = getEnv("OPENAI_API_KEY", c.Keys.OpenAI)
	c.Keys.Jina = getEnv("JINA_API_KEY", c.Keys.Jina)

	c.Rag.ChunkSize = getEnvAsInt("CHUNK_SIZE", c.Rag.ChunkSize)
	c.Rag.ChunkOverlap = getEnvAsInt("CHUNK_OVERLAP", c.Rag.ChunkOverlap)
	c.Rag.TopK = getEnvAsInt("RETRIEVAL_TOP_K", c.Rag.TopK)
	c.Rag.IndexBackend = getEnv("INDEX_BACKEND", c.Rag.IndexBackend)
	c.Rag.EmbedWorkers = getEnvAsInt("EMBED_WORKERS", c.Rag.EmbedWorkers)
	c.Rag.EmbedTimeout = getEnvAsDuration("EMBED_TIMEOUT", c.Rag.EmbedTimeout)

	c.Session.Store = getEnv("SESSION_STORE", c.Session.Store)
	c.Session.TTL = getEnvAsDuration("SESSION_TTL", c.Session.TTL)

	c.Database.Connection = getEnv("DB_CONNECTION_STRING", c.Database.Connection)
	c.Database.AutoMigrate = getEnvAsBool("DB_AUTO_MIGRATE", c.Database.AutoMigrate)

	c.Events.AnalysisTopic = getEnv("ANALYSIS_TOPIC_NAME", c.Events.AnalysisTopic)
	c.Events.NatsURL = getEnv("NATS_URL", c.Events.NatsURL)
	c.Events.RedisURL = getEnv("REDIS_URL", c.Events.RedisURL)
}

// IsProduction reports whether logs should be JSON only.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// CorsOrigins returns "*" in debug mode, otherwise the configured list.
func (c *Config) CorsOrigins() string {
	if c.App.Debug {
		return "*"
	}
	parts := strings.Split(c.App.CorsAllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return strings.Join(origins, ",")
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

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go durations ("45s") or plain seconds ("45").
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	if d, err := time.ParseDuration(strValue); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
