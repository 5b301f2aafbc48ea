package config

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port               int
	DataPath           string
	DBPath             string
	RecordingsPath     string
	JWTSecret          string
	AdminUsername      string
	AdminPassword      string
	CORSOrigins        []string
	OpenAIKey          string
	OpenAIBaseURL      string
	ServiceAccountFile string
	DriveRootFolder    string
}

func Load() *Config {
	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	port, _ := strconv.Atoi(getEnv("PORT", "8080"))
	dataPath := getEnv("DATA_PATH", "/data")

	// JWT secret: require explicit setting or generate random
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			log.Fatalf("Failed to generate random JWT secret: %v", err)
		}
		jwtSecret = hex.EncodeToString(b)
		log.Println("WARNING: JWT_SECRET not set, using random secret. Sessions will not survive restarts. Set JWT_SECRET env var for persistent sessions.")
	}

	// CORS origins: comma-separated list or "*" (default)
	corsOrigins := []string{"*"}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		corsOrigins = make([]string, 0, len(origins))
		for _, o := range origins {
			o = strings.TrimSpace(o)
			if o != "" {
				corsOrigins = append(corsOrigins, o)
			}
		}
	}

	return &Config{
		Port:               port,
		DataPath:           dataPath,
		DBPath:             getEnv("DB_PATH", dataPath+"/podcaststudio.db"),
		RecordingsPath:     getEnv("RECORDINGS_PATH", dataPath+"/recordings"),
		JWTSecret:          jwtSecret,
		AdminUsername:      getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:      getEnv("ADMIN_PASSWORD", "admin"),
		CORSOrigins:        corsOrigins,
		OpenAIKey:          getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:      getEnv("OPENAI_BASE_URL", "https://api.openai.com"),
		ServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
		DriveRootFolder:    getEnv("DRIVE_ROOT_FOLDER", "Podcast Studio"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
