package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folioscan/internal/config"
)

func TestOCRConfig_PrimaryConfig_LegacyFallback(t *testing.T) {
	cfg := config.OCRConfig{
		Provider:     "gemini",
		APIKey:       "gk-legacy",
		DefaultModel: "gemini-2.0-flash",
		TimeoutSecs:  30,
	}

	primary := cfg.PrimaryConfig()

	assert.Equal(t, "gemini", primary.Provider)
	assert.Equal(t, "gk-legacy", primary.APIKey)
	assert.Equal(t, "gemini-2.0-flash", primary.DefaultModel)
	assert.Equal(t, 30, primary.TimeoutSecs)
}

func TestOCRConfig_PrimaryConfig_ExplicitPrimary(t *testing.T) {
	cfg := config.OCRConfig{
		Provider: "legacy-should-be-ignored",
		Primary: config.OCRProviderConfig{
			Provider: "openai",
			APIKey:   "sk-primary",
		},
	}

	primary := cfg.PrimaryConfig()

	assert.Equal(t, "openai", primary.Provider)
	assert.Equal(t, "sk-primary", primary.APIKey)
}

func TestOCRConfig_SecondaryAndTertiary(t *testing.T) {
	cfg := config.OCRConfig{Provider: "gemini"}
	assert.Nil(t, cfg.SecondaryConfig())
	assert.Nil(t, cfg.TertiaryConfig())
	assert.Len(t, cfg.Chain(), 1)

	cfg.Secondary = config.OCRProviderConfig{Provider: "claude"}
	cfg.Tertiary = config.OCRProviderConfig{Provider: "tesseract"}

	chain := cfg.Chain()
	require.Len(t, chain, 3)
	assert.Equal(t, "gemini", chain[0].Provider)
	assert.Equal(t, "claude", chain[1].Provider)
	assert.Equal(t, "tesseract", chain[2].Provider)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Batch.Size)
	assert.Equal(t, 500*time.Millisecond, cfg.Batch.Delay)
	assert.Equal(t, 10, cfg.Batch.MaxImages)
	assert.Equal(t, int64(10*1024*1024), cfg.Batch.MaxImageBytes())
	assert.False(t, cfg.DB.Enabled)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, "kor+eng", cfg.OCR.PrimaryConfig().Languages)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("FOLIOSCAN_BATCH_SIZE", "4")
	t.Setenv("FOLIOSCAN_BATCH_DELAY", "1s")
	t.Setenv("FOLIOSCAN_OCR_SECONDARY_PROVIDER", "openai")
	t.Setenv("FOLIOSCAN_OCR_SECONDARY_API_KEY", "sk-test")
	t.Setenv("FOLIOSCAN_CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Batch.Size)
	assert.Equal(t, time.Second, cfg.Batch.Delay)
	require.NotNil(t, cfg.OCR.SecondaryConfig())
	assert.Equal(t, "sk-test", cfg.OCR.SecondaryConfig().APIKey)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_RejectsInvalidBatchSize(t *testing.T) {
	t.Setenv("FOLIOSCAN_BATCH_SIZE", "0")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_PortFallback(t *testing.T) {
	t.Setenv("PORT", "9090")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Port)
}

func TestDBConfig_DSN(t *testing.T) {
	db := config.DBConfig{User: "u", Password: "p", Host: "h", Port: 5432, Name: "n", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:5432/n?sslmode=disable", db.DSN())
}
