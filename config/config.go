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

const (
	StorageLocal = "local"
	StorageMinio = "minio"

	PredictorSubprocess = "subprocess"
	PredictorHTTP       = "http"
)

// Config dibangun sekali di main lalu diteruskan ke service dan controller.
type Config struct {
	AppEnv string
	Port   string

	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	JWTSecret string
	JWTTTL    time.Duration

	AdminUsername     string
	AdminPasswordHash string

	StorageDriver  string
	UploadDir      string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	MinioPublicURL string
	MaxAudioBytes  int64

	PredictorDriver      string
	PredictorURL         string
	PythonPath           string
	PythonFallback       string
	PredictScript        string
	PredictTimeout       time.Duration
	PredictMaxConcurrent int64
	TempDir              string

	PublicDir   string
	CORSOrigins []string

	LogLevel  string
	LogFormat string
}

// LoadConfig membaca .env (jika ada) lalu environment proses.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Relying on environment variables.")
	}
	return FromEnv()
}

// FromEnv membangun Config hanya dari environment proses.
func FromEnv() *Config {
	return &Config{
		AppEnv: getEnv("APP_ENV", "development"),
		Port:   getEnv("PORT", "8080"),

		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBName:     getEnv("DB_NAME", "skrining_tb"),

		JWTSecret: os.Getenv("JWT_SECRET"),
		JWTTTL:    getEnvDuration("JWT_TTL", 24*time.Hour),

		AdminUsername:     getEnv("ADMIN_USERNAME", "admin_satu"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),

		StorageDriver:  strings.ToLower(getEnv("STORAGE_DRIVER", StorageLocal)),
		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY_ID"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_ACCESS_KEY"),
		MinioBucket:    getEnv("MINIO_BUCKET_NAME", "tb-care"),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL", false),
		MinioPublicURL: os.Getenv("MINIO_PUBLIC_URL"),
		MaxAudioBytes:  getEnvInt64("MAX_AUDIO_BYTES", 10<<20),

		PredictorDriver:      strings.ToLower(getEnv("PREDICTOR_DRIVER", PredictorSubprocess)),
		PredictorURL:         os.Getenv("PREDICTOR_URL"),
		PythonPath:           getEnv("PYTHON_PATH", "python3"),
		PythonFallback:       getEnv("PYTHON_FALLBACK", "python"),
		PredictScript:        getEnv("PREDICT_SCRIPT", "predict_cough.py"),
		PredictTimeout:       getEnvDuration("PREDICT_TIMEOUT", 45*time.Second),
		PredictMaxConcurrent: getEnvInt64("PREDICT_MAX_CONCURRENT", 2),
		TempDir:              getEnv("TEMP_DIR", os.TempDir()),

		PublicDir:   getEnv("PUBLIC_DIR", "public"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}
}

// Validate memeriksa nilai yang wajib ada sebelum server dijalankan.
func (c *Config) Validate() error {
	var missing []string
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.DBUser == "" {
		missing = append(missing, "DB_USER")
	}
	if c.AdminPasswordHash == "" {
		missing = append(missing, "ADMIN_PASSWORD_HASH")
	}
	switch c.StorageDriver {
	case StorageLocal:
	case StorageMinio:
		if c.MinioEndpoint == "" || c.MinioAccessKey == "" || c.MinioSecretKey == "" {
			missing = append(missing, "MINIO_ENDPOINT/MINIO_ACCESS_KEY_ID/MINIO_SECRET_ACCESS_KEY")
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER tidak dikenal: %q", c.StorageDriver)
	}
	switch c.PredictorDriver {
	case PredictorSubprocess:
	case PredictorHTTP:
		if c.PredictorURL == "" {
			missing = append(missing, "PREDICTOR_URL")
		}
	default:
		return fmt.Errorf("PREDICTOR_DRIVER tidak dikenal: %q", c.PredictorDriver)
	}
	if c.PredictTimeout <= 0 {
		return fmt.Errorf("PREDICT_TIMEOUT harus lebih dari 0")
	}
	if len(missing) > 0 {
		return fmt.Errorf("konfigurasi belum lengkap: %s", strings.Join(missing, ", "))
	}
	return nil
}

// DSN format: username:password@tcp(host:port)/dbname?parseTime=true&loc=Asia%2FJakarta
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&loc=Asia%%2FJakarta",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvInt64(key string, def int64) int64 {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
		log.Printf("Warning: %s=%q bukan angka, memakai default %d", key, v, def)
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Printf("Warning: %s=%q bukan boolean, memakai default %t", key, v, def)
	}
	return def
}

// Menerima format durasi Go ("45s") maupun angka detik ("45").
func getEnvDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	log.Printf("Warning: %s=%q bukan durasi, memakai default %s", key, v, def)
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
