package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("PREDICT_TIMEOUT", "")
	t.Setenv("MAX_AUDIO_BYTES", "")
	t.Setenv("STORAGE_DRIVER", "")

	cfg := FromEnv()

	assert.Equal(t, 45*time.Second, cfg.PredictTimeout)
	assert.Equal(t, int64(10<<20), cfg.MaxAudioBytes)
	assert.Equal(t, StorageLocal, cfg.StorageDriver)
	assert.Equal(t, "python3", cfg.PythonPath)
	assert.Equal(t, "python", cfg.PythonFallback)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("PREDICT_TIMEOUT", "20")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test ,")

	cfg := FromEnv()

	assert.Equal(t, 20*time.Second, cfg.PredictTimeout)
	assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
	assert.True(t, cfg.MinioUseSSL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		JWTSecret:         "s",
		DBUser:            "u",
		AdminPasswordHash: "$2a$10$x",
		StorageDriver:     StorageLocal,
		PredictorDriver:   PredictorSubprocess,
		PredictTimeout:    time.Second,
	}
	require.NoError(t, cfg.Validate())

	cfg.StorageDriver = StorageMinio
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MINIO_ENDPOINT")

	cfg.StorageDriver = "ftp"
	assert.Error(t, cfg.Validate())
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBUser: "u", DBPassword: "p", DBHost: "h", DBPort: "3306", DBName: "db"}
	assert.Equal(t, "u:p@tcp(h:3306)/db?parseTime=true&loc=Asia%2FJakarta", cfg.DSN())
}
