package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresFingerprintSecret(t *testing.T) {
	t.Setenv("FINGERPRINT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "FINGERPRINT_SECRET")
}

func TestLoadReactionSecretFallsBackToViewSecret(t *testing.T) {
	t.Setenv("FINGERPRINT_SECRET", "view-key")
	t.Setenv("REACTION_FINGERPRINT_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "view-key", cfg.ViewSecret)
	assert.Equal(t, "view-key", cfg.ReactionSecret)
}

func TestLoadDistinctReactionSecret(t *testing.T) {
	t.Setenv("FINGERPRINT_SECRET", "view-key")
	t.Setenv("REACTION_FINGERPRINT_SECRET", "reaction-key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "reaction-key", cfg.ReactionSecret)
}

func TestLoadRetentionDays(t *testing.T) {
	t.Setenv("FINGERPRINT_SECRET", "view-key")

	t.Setenv("RETENTION_DAYS", "90")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 90, cfg.RetentionDays)

	t.Setenv("RETENTION_DAYS", "-1")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("RETENTION_DAYS", "soon")
	_, err = Load()
	assert.Error(t, err)
}
