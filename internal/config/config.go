package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	ServerPort string

	JWTSecret string

	// TokenMaxAge is the token lifetime in seconds. Default 108000 (30 h).
	TokenMaxAge int

	RedisURL string

	FeedWorkerCount int
	FeedBatchSize   int64
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading it, relying on environment variables")
	}

	tokenMaxAge, err := strconv.Atoi(os.Getenv("TOKEN_MAX_AGE"))
	if err != nil || tokenMaxAge <= 0 {
		tokenMaxAge = 108000
	}

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080"
	}

	sslMode := os.Getenv("DB_SSLMODE")
	if sslMode == "" {
		sslMode = "disable"
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	workerCount, err := strconv.Atoi(os.Getenv("FEED_WORKER_COUNT"))
	if err != nil || workerCount <= 0 {
		workerCount = 2
	}

	batchSize, err := strconv.ParseInt(os.Getenv("FEED_BATCH_SIZE"), 10, 64)
	if err != nil || batchSize <= 0 {
		batchSize = 10
	}

	return &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBSSLMode:  sslMode,

		ServerPort: serverPort,

		JWTSecret:   os.Getenv("JWT_SECRET"),
		TokenMaxAge: tokenMaxAge,

		RedisURL: redisURL,

		FeedWorkerCount: workerCount,
		FeedBatchSize:   batchSize,
	}, nil
}
