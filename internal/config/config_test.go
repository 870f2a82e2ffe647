package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("API_KEYS", "")
	t.Setenv("GHL_BASE_URL", "")
	t.Setenv("AMQP_EXCHANGE", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, "https://services.leadconnectorhq.com", cfg.GHLBaseURL)
	require.Equal(t, "crm.notifications", cfg.AMQPExchange)
	// Dev fallback key exists so the service runs out-of-the-box.
	require.Equal(t, "dev", cfg.APIKeys["dev-key-123"])
}

func TestLoadParsesAPIKeys(t *testing.T) {
	t.Setenv("API_KEYS", "web:key-a, ai-agent:key-b")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "web", cfg.APIKeys["key-a"])
	require.Equal(t, "ai-agent", cfg.APIKeys["key-b"])
}

func TestLoadRejectsMalformedAPIKeys(t *testing.T) {
	t.Setenv("API_KEYS", "justakey")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsInvalidBaseURL(t *testing.T) {
	t.Setenv("GHL_BASE_URL", "not a url")

	_, err := Load()
	require.Error(t, err)
}
