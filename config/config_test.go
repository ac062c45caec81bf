package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORAGE_DRIVER", "memory")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.StorageDriver)
	assert.Equal(t, "local", cfg.DocumentStore)
	assert.Equal(t, time.Hour, cfg.JWTTTL)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow())
}

func TestLoadConfigRejectsIncompleteSetups(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{"JWT_SECRET": "", "STORAGE_DRIVER": "memory"}},
		{"postgres without url", map[string]string{"JWT_SECRET": "s", "STORAGE_DRIVER": "postgres", "DATABASE_URL": ""}},
		{"unknown driver", map[string]string{"JWT_SECRET": "s", "STORAGE_DRIVER": "mongo"}},
		{"s3 without bucket", map[string]string{"JWT_SECRET": "s", "STORAGE_DRIVER": "memory", "DOCUMENT_STORE": "s3", "S3_BUCKET": ""}},
		{"zero window", map[string]string{"JWT_SECRET": "s", "STORAGE_DRIVER": "memory", "RATE_LIMIT_WINDOW_SECONDS": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
