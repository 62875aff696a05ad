package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Note store backends selectable with NOTE_STORE.
const (
	NoteStorePostgres = "postgres"
	NoteStoreMongo    = "mongo"
	NoteStoreMemory   = "memory"
)

type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	Mongo        MongoConfig
	Auth         AuthConfig
	Ai           AIConfig
	Notification NotificationConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	NoteStore          string
	EmotionTopic       string
}

type DatabaseConfig struct {
	Connection string
}

type MongoConfig struct {
	URI      string
	Database string
}

type AuthConfig struct {
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
}

type AIConfig struct {
	EmotionProvider string // "huggingface" or "none"
	HuggingFaceKey  string
	HuggingFaceURL  string
	EmotionModel    string
	EmotionTopK     int
}

type NotificationConfig struct {
	LogFilePath string
	DedupeTTL   time.Duration
	ProfileTTL  time.Duration
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			NoteStore:          getEnv("NOTE_STORE", NoteStorePostgres),
			EmotionTopic:       getEnv("EMOTION_TOPIC_NAME", "note.emotion.analyze"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Mongo: MongoConfig{
			URI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGO_DATABASE", "vibenotes"),
		},
		Auth: AuthConfig{
			JWTSecret:  getEnv("JWT_SECRET", ""),
			TokenTTL:   getEnvAsDuration("JWT_TTL", 24*time.Hour),
			BcryptCost: getEnvAsInt("BCRYPT_COST", 0),
		},
		Ai: AIConfig{
			EmotionProvider: getEnv("EMOTION_PROVIDER", "none"),
			HuggingFaceKey:  getEnv("HUGGINGFACE_API_KEY", ""),
			HuggingFaceURL:  getEnv("HUGGINGFACE_BASE_URL", ""),
			EmotionModel:    getEnv("EMOTION_MODEL", ""),
			EmotionTopK:     getEnvAsInt("EMOTION_TOP_K", 3),
		},
		Notification: NotificationConfig{
			LogFilePath: getEnv("NOTIFICATION_LOG_FILE_PATH", "logs/notification.log"),
			DedupeTTL:   getEnvAsDuration("NOTIFICATION_DEDUPE_TTL", 10*time.Minute),
			ProfileTTL:  getEnvAsDuration("PROFILE_CACHE_TTL", 5*time.Minute),
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

// getEnvAsDuration accepts Go duration strings such as "15m" or "24h".
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
