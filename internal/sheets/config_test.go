package sheets

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigAuth(t *testing.T) {
	tests := []struct {
		wantErr error
		name    string
		config  Config
		want    AuthMethod
	}{
		{
			name:   "oauth triple",
			config: Config{ClientID: "id", ClientSecret: "secret", RefreshToken: "token"},
			want:   AuthOAuth,
		},
		{
			name:   "service account",
			config: Config{ServiceAccountPath: "/keys/basket.json"},
			want:   AuthServiceAccount,
		},
		{
			name:    "oauth without secret",
			config:  Config{ClientID: "id", RefreshToken: "token"},
			wantErr: ErrNoAuth,
		},
		{
			name: "both methods",
			config: Config{
				ClientID:           "id",
				ClientSecret:       "secret",
				RefreshToken:       "token",
				ServiceAccountPath: "/keys/basket.json",
			},
			wantErr: ErrAmbiguousAuth,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.config.Auth()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, AuthNone, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	valid := func() Config {
		cfg := DefaultConfig()
		cfg.ServiceAccountPath = "/keys/basket.json"
		return cfg
	}

	t.Run("defaults with credentials", func(t *testing.T) {
		cfg := valid()
		assert.NoError(t, cfg.Validate())
		assert.Equal(t, "Basket Analysis", cfg.SpreadsheetName)
		assert.True(t, cfg.EnableFormatting)
	})

	t.Run("missing credentials", func(t *testing.T) {
		cfg := DefaultConfig()
		assert.ErrorIs(t, cfg.Validate(), ErrNoAuth)
	})

	t.Run("zero batch size", func(t *testing.T) {
		cfg := valid()
		cfg.BatchSize = 0
		assert.ErrorContains(t, cfg.Validate(), "batch size must be positive")
	})

	t.Run("zero retry delay is allowed", func(t *testing.T) {
		cfg := valid()
		cfg.RetryDelay = 0
		assert.NoError(t, cfg.Validate())
	})

	t.Run("negative retry delay", func(t *testing.T) {
		cfg := valid()
		cfg.RetryDelay = -time.Second
		assert.ErrorContains(t, cfg.Validate(), "retry delay cannot be negative")
	})

	t.Run("negative retry attempts", func(t *testing.T) {
		cfg := valid()
		cfg.RetryAttempts = -1
		assert.ErrorContains(t, cfg.Validate(), "retry attempts cannot be negative")
	})
}
