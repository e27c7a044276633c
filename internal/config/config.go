package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultCORSOrigins 对应线上站点与本地前端开发地址。
var DefaultCORSOrigins = []string{
	"http://localhost",
	"http://localhost:4200",
	"http://localhost:80",
	"https://be.sunflowerskg.com",
	"https://sunflowerskg.com",
}

const defaultMaxUploadBytes int64 = 5 * 1024 * 1024

// devJWTSecret 仅在非 release 模式下、未配置 JWT_SECRET 时使用。
const devJWTSecret = "sunflowers-dev-secret"

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr     string
	Port           string
	GinMode        string
	DatabaseDriver string
	DatabasePath   string
	DatabaseURL    string
	JWTSecret      string
	TokenTTL       time.Duration
	UploadDir      string
	UploadURLPath  string
	MaxUploadBytes int64
	CORSOrigins    []string
	AdminUsername  string
	AdminPassword  string
	AdminEmail     string
	LogLevel       string
	LogFormat      string

	// InsecureJWTSecret 表示正在使用内置的开发密钥
	InsecureJWTSecret bool
}

// LoadDotEnv 读取工作目录下的 .env 文件（如果存在），已设置的环境变量不会被覆盖。
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	existing := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
func Load() (AppConfig, error) {
	port := envOr("PORT", "3000")

	cfg := AppConfig{
		Port:           port,
		ListenAddr:     envOr("LISTEN_ADDR", fmt.Sprintf(":%s", port)),
		GinMode:        envOr("GIN_MODE", "release"),
		DatabaseDriver: strings.ToLower(envOr("DATABASE_DRIVER", "sqlite")),
		DatabasePath:   envOr("DATABASE_PATH", "sunflowers.db"),
		DatabaseURL:    envOr("DATABASE_URL", ""),
		JWTSecret:      envOr("JWT_SECRET", ""),
		UploadDir:      envOr("UPLOAD_DIR", "uploads/gallery"),
		UploadURLPath:  "/" + strings.Trim(envOr("UPLOAD_URL_PATH", "/uploads/gallery"), "/"),
		AdminUsername:  envOr("ADMIN_USERNAME", ""),
		AdminPassword:  envOr("ADMIN_PASSWORD", ""),
		AdminEmail:     envOr("ADMIN_EMAIL", ""),
		LogLevel:       strings.ToLower(envOr("LOG_LEVEL", "info")),
		LogFormat:      strings.ToLower(envOr("LOG_FORMAT", "text")),
		CORSOrigins:    splitList(envOr("CORS_ORIGINS", "")),
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = append([]string(nil), DefaultCORSOrigins...)
	}

	ttl, err := time.ParseDuration(envOr("TOKEN_TTL", "24h"))
	if err != nil || ttl <= 0 {
		return cfg, fmt.Errorf("invalid TOKEN_TTL %q", os.Getenv("TOKEN_TTL"))
	}
	cfg.TokenTTL = ttl

	cfg.MaxUploadBytes = defaultMaxUploadBytes
	if raw := envOr("MAX_UPLOAD_BYTES", ""); raw != "" {
		size, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || size <= 0 {
			return cfg, fmt.Errorf("invalid MAX_UPLOAD_BYTES %q", raw)
		}
		cfg.MaxUploadBytes = size
	}

	if cfg.JWTSecret == "" {
		if cfg.GinMode == "release" {
			return cfg, fmt.Errorf("JWT_SECRET is required when GIN_MODE=release")
		}
		cfg.JWTSecret = devJWTSecret
		cfg.InsecureJWTSecret = true
	}

	if cfg.DatabaseDriver == "postgres" && cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("DATABASE_URL is required when DATABASE_DRIVER=postgres")
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
