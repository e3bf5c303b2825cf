package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExpiry(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"7d", 7 * 24 * time.Hour},
		{"1d", 24 * time.Hour},
		{"168h", 168 * time.Hour},
		{"90m", 90 * time.Minute},
		{"3600", time.Hour},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseExpiry(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "xd", "-1", "0", "abc", "-5m"} {
		t.Run("invalid "+bad, func(t *testing.T) {
			_, err := ParseExpiry(bad)
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "test-secret")
		t.Setenv("STORE_DRIVER", "memory")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 7*24*time.Hour, cfg.JWT.TTL)
		assert.Equal(t, "8080", cfg.HTTP.Port)
		assert.Equal(t, "/api", cfg.HTTP.BasePath)
		assert.Equal(t, []string{"http://localhost:3000"}, cfg.HTTP.AllowedOrigins)
		assert.Equal(t, DriverMemory, cfg.Store.Driver)
		assert.False(t, cfg.IsProduction())
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "test-secret")
		t.Setenv("STORE_DRIVER", "sqlite")

		_, err := Load()
		assert.ErrorContains(t, err, "STORE_DRIVER")
	})

	t.Run("bad expiry", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "test-secret")
		t.Setenv("STORE_DRIVER", "memory")
		t.Setenv("JWT_EXPIRES_IN", "soon")

		_, err := Load()
		assert.ErrorContains(t, err, "JWT_EXPIRES_IN")
	})
}
