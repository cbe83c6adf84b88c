package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Qdrant     QdrantConfig
	Gemini     GeminiConfig
	Storage    StorageConfig
	Worker     WorkerConfig
	Extraction ExtractionConfig
	Matching   MatchingConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type RedisConfig struct {
	URL string
}

type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
}

type GeminiConfig struct {
	APIKey     string
	Model      string
	EmbedModel string
}

type StorageConfig struct {
	UploadPath  string
	MaxFileSize int64
}

type WorkerConfig struct {
	Concurrency  int
	TaskBudget   time.Duration
	PollInterval time.Duration
}

type ExtractionConfig struct {
	AdapterTimeout time.Duration
	// Quality completeness weights. Must sum to 100; see QualityWeights.
	QualityWeights QualityWeights
}

// QualityWeights distributes the 0-100 quality score across completeness
// dimensions. Stage bonuses/penalties are applied on top and the total is
// clamped back into [0,100].
type QualityWeights struct {
	Identity    int
	Experience  int
	Education   int
	Skills      int
	Projects    int
	Personality int
}

func (w QualityWeights) Total() int {
	return w.Identity + w.Experience + w.Education + w.Skills + w.Projects + w.Personality
}

type MatchingConfig struct {
	QualityGateThreshold int
	EmbeddingTTL         time.Duration
	ExplanationTTL       time.Duration
	// SkillSynonyms maps alias -> canonical, lowercased.
	SkillSynonyms map[string]string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "resume_engine"),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},
		Qdrant: QdrantConfig{
			URL:        getEnv("QDRANT_URL", "http://localhost:6333"),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("QDRANT_COLLECTION", "candidate_profiles"),
		},
		Gemini: GeminiConfig{
			APIKey:     getEnv("GEMINI_API_KEY", ""),
			Model:      getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			EmbedModel: getEnv("GEMINI_EMBED_MODEL", "text-embedding-004"),
		},
		Storage: StorageConfig{
			UploadPath:  getEnv("UPLOAD_PATH", "./uploads"),
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 10485760),
		},
		Worker: WorkerConfig{
			Concurrency:  getEnvAsInt("WORKER_CONCURRENCY", 3),
			TaskBudget:   getEnvAsDuration("TASK_BUDGET", "4m"),
			PollInterval: getEnvAsDuration("TASK_POLL_INTERVAL", "10s"),
		},
		Extraction: ExtractionConfig{
			AdapterTimeout: getEnvAsDuration("ADAPTER_TIMEOUT", "45s"),
			QualityWeights: QualityWeights{
				Identity:    getEnvAsInt("QUALITY_WEIGHT_IDENTITY", 15),
				Experience:  getEnvAsInt("QUALITY_WEIGHT_EXPERIENCE", 25),
				Education:   getEnvAsInt("QUALITY_WEIGHT_EDUCATION", 15),
				Skills:      getEnvAsInt("QUALITY_WEIGHT_SKILLS", 20),
				Projects:    getEnvAsInt("QUALITY_WEIGHT_PROJECTS", 15),
				Personality: getEnvAsInt("QUALITY_WEIGHT_PERSONALITY", 10),
			},
		},
		Matching: MatchingConfig{
			QualityGateThreshold: getEnvAsInt("QUALITY_GATE_THRESHOLD", 80),
			EmbeddingTTL:         getEnvAsDuration("EMBEDDING_CACHE_TTL", "24h"),
			ExplanationTTL:       getEnvAsDuration("EXPLANATION_CACHE_TTL", "24h"),
			SkillSynonyms:        loadSkillSynonyms(),
		},
	}
}

// defaultSkillSynonyms covers the aliases that show up constantly in résumés.
// SKILL_SYNONYMS extends or overrides it with "alias=canonical" pairs.
var defaultSkillSynonyms = map[string]string{
	"golang":     "go",
	"js":         "javascript",
	"ts":         "typescript",
	"node":       "node.js",
	"nodejs":     "node.js",
	"postgres":   "postgresql",
	"k8s":        "kubernetes",
	"gcp":        "google cloud",
	"ml":         "machine learning",
	"tf":         "terraform",
	"react.js":   "react",
	"reactjs":    "react",
	"vue.js":     "vue",
	"vuejs":      "vue",
	"c sharp":    "c#",
	"dotnet":     ".net",
	"elastic":    "elasticsearch",
	"mongo":      "mongodb",
}

func loadSkillSynonyms() map[string]string {
	out := make(map[string]string, len(defaultSkillSynonyms))
	for alias, canonical := range defaultSkillSynonyms {
		out[alias] = canonical
	}
	for _, pair := range strings.Split(getEnv("SKILL_SYNONYMS", ""), ",") {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			continue
		}
		alias := strings.ToLower(strings.TrimSpace(parts[0]))
		canonical := strings.ToLower(strings.TrimSpace(parts[1]))
		if alias != "" && canonical != "" {
			out[alias] = canonical
		}
	}
	return out
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
