package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config 运行时配置，统一从环境变量加载
type Config struct {
	// HTTP
	ServerPort string
	GinMode    string

	// PostgreSQL
	DatabaseDSN string

	// Redis (可选，留空则不启用指标缓存)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Kafka (可选，留空则不发事件)
	KafkaBrokers string
	KafkaTopic   string

	// JWT
	JWTSecret      string
	JWTExpireHours int

	// ML 默认开发者应用 (也可走 applications 表多应用)
	MeliClientID     string
	MeliClientSecret string
	MeliRedirectURI  string

	// AWS S3 (商品图片上传)
	S3Bucket string
	S3Region string

	// Gemini (AI 回复建议)
	GeminiAPIKey string
}

// Load 加载配置。.env 不存在时静默跳过，直接读环境变量
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[Config] 未找到 .env 文件，使用环境变量")
	}

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		GinMode:    getEnv("GIN_MODE", "debug"),

		DatabaseDSN: getEnv("DATABASE_DSN",
			"host=localhost user=postgres password=postgres dbname=meli_hub port=5432 sslmode=disable TimeZone=America/Sao_Paulo"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		KafkaBrokers: getEnv("KAFKA_BROKERS", ""),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "meli.order.events"),

		JWTSecret:      getEnv("JWT_SECRET", "dev-secret-change-me"),
		JWTExpireHours: getEnvInt("JWT_EXPIRE_HOURS", 72),

		MeliClientID:     getEnv("MELI_CLIENT_ID", ""),
		MeliClientSecret: getEnv("MELI_CLIENT_SECRET", ""),
		MeliRedirectURI:  getEnv("MELI_REDIRECT_URI", ""),

		S3Bucket: getEnv("S3_BUCKET", ""),
		S3Region: getEnv("S3_REGION", "sa-east-1"),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
