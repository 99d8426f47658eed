package config

import (
	"os"
	"strings"
)

type Config struct {
	PostgresURI    string
	RedisURI       string
	MongoURI       string
	Port           string
	Environment    string // ENV: production, development, etc.
	FrontendURL    string
	AllowedOrigins []string // CORS: from ALLOWED_ORIGINS or FRONTEND_URL

	// Chat model API (OpenAI-compatible chat completions endpoint)
	ChatAPIKey     string
	ChatAPIBaseURL string
	ChatModel      string

	// Kakao OAuth (identity bridge)
	KakaoClientID     string
	KakaoClientSecret string
	KakaoRedirectURI  string
	KakaoTokenURL     string
	KakaoProfileURL   string

	// Credential backend: "postgres" (default) or "static"
	CredentialsBackend string
	AdminUsername      string
	AdminPassword      string

	// Cloudinary (avatar uploads)
	CloudinaryName      string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
}

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))

	allowedOrigins := parseOrigins(getEnv("ALLOWED_ORIGINS", ""))
	frontendURL := getEnv("FRONTEND_URL", "http://localhost:3000")
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{frontendURL}
	}

	return &Config{
		PostgresURI:    getEnv("POSTGRES_URI", "postgres://localhost:5432/heartview?sslmode=disable"),
		RedisURI:       getEnv("REDIS_URI", "redis://localhost:6379/0"),
		MongoURI:       getEnv("MONGODB_URI", getEnv("MONGO_URI", "mongodb://localhost:27017/heartview")),
		Port:           getEnv("PORT", "8080"),
		Environment:    env,
		FrontendURL:    frontendURL,
		AllowedOrigins: allowedOrigins,

		ChatAPIKey:     getEnv("CHAT_API_KEY", ""),
		ChatAPIBaseURL: getEnv("CHAT_API_BASE_URL", "https://api.openai.com/v1"),
		ChatModel:      getEnv("CHAT_MODEL", "gpt-4o-mini"),

		KakaoClientID:     getEnv("KAKAO_CLIENT_ID", ""),
		KakaoClientSecret: getEnv("KAKAO_CLIENT_SECRET", ""),
		KakaoRedirectURI:  getEnv("KAKAO_REDIRECT_URI", frontendURL+"/oauth/kakao"),
		KakaoTokenURL:     getEnv("KAKAO_TOKEN_URL", "https://kauth.kakao.com/oauth/token"),
		KakaoProfileURL:   getEnv("KAKAO_PROFILE_URL", "https://kapi.kakao.com/v2/user/me"),

		CredentialsBackend: strings.ToLower(getEnv("CREDENTIALS_BACKEND", "postgres")),
		AdminUsername:      getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:      getEnv("ADMIN_PASSWORD", ""),

		CloudinaryName:      getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),
	}
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
