package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Veraticus/market-basket/internal/apriori"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("BASKET_TEST_DIR", "/data/logs")

	tests := []struct {
		input string
		want  string
	}{
		{input: "", want: ""},
		{input: "~", want: home},
		{input: "~/baskets.db", want: filepath.Join(home, "baskets.db")},
		{input: "$BASKET_TEST_DIR/retail.csv", want: "/data/logs/retail.csv"},
		{input: "/abs/path.db", want: "/abs/path.db"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.input))
		})
	}
}

func TestLoadMining_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	m, err := LoadMining(v)
	require.NoError(t, err)
	assert.Equal(t, Mining{MinSupport: DefaultMinSupport, MinConfidence: DefaultMinConfidence}, m)
	assert.Equal(t, DefaultDatabasePath(), DatabasePath(v))
}

func TestLoadMining_Invalid(t *testing.T) {
	tests := []struct {
		key   string
		value any
	}{
		{key: "mining.min_support", value: 0.0},
		{key: "mining.min_support", value: 1.5},
		{key: "mining.min_confidence", value: -0.2},
		{key: "mining.max_length", value: -1},
		{key: "mining.workers", value: -4},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			v := viper.New()
			SetDefaults(v)
			v.Set(tt.key, tt.value)

			_, err := LoadMining(v)
			assert.ErrorIs(t, err, apriori.ErrInvalidParameter)
		})
	}
}

func TestLoadSheetsConfig(t *testing.T) {
	for _, key := range []string{
		"GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH",
		"GOOGLE_SHEETS_CLIENT_ID",
		"GOOGLE_SHEETS_CLIENT_SECRET",
		"GOOGLE_SHEETS_REFRESH_TOKEN",
		"GOOGLE_SHEETS_SPREADSHEET_ID",
		"GOOGLE_SHEETS_SPREADSHEET_NAME",
	} {
		t.Setenv(key, "")
	}

	t.Run("missing credentials", func(t *testing.T) {
		_, err := LoadSheetsConfig(viper.New())
		assert.Error(t, err)
	})

	t.Run("viper takes precedence over environment", func(t *testing.T) {
		t.Setenv("GOOGLE_SHEETS_SPREADSHEET_ID", "from-env")
		v := viper.New()
		v.Set("sheets.service_account_path", "/keys/sa.json")
		v.Set("sheets.spreadsheet_id", "from-config")

		cfg, err := LoadSheetsConfig(v)
		require.NoError(t, err)
		assert.Equal(t, "/keys/sa.json", cfg.ServiceAccountPath)
		assert.Equal(t, "from-config", cfg.SpreadsheetID)
		assert.Equal(t, "Basket Analysis", cfg.SpreadsheetName)
	})

	t.Run("environment fills gaps", func(t *testing.T) {
		t.Setenv("GOOGLE_SHEETS_CLIENT_ID", "id")
		t.Setenv("GOOGLE_SHEETS_CLIENT_SECRET", "secret")
		t.Setenv("GOOGLE_SHEETS_REFRESH_TOKEN", "refresh")

		cfg, err := LoadSheetsConfig(viper.New())
		require.NoError(t, err)
		assert.Equal(t, "id", cfg.ClientID)
		assert.Empty(t, cfg.ServiceAccountPath)
	})
}
