package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "MentorLens API", cfg.AppName)
	require.Equal(t, ":8080", cfg.HTTPAddress())
	require.Equal(t, 0.8, cfg.BadgeThreshold)
	require.Equal(t, 300, cfg.PointsScalar)
	require.Equal(t, "10m0s", cfg.ProcessingTimeout.String())
	require.Equal(t, "1m0s", cfg.PointsCacheTTL.String())
	require.Equal(t, 30, cfg.UploadRatePerMinute)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MENTORLENS_APP_PORT", ":9090")
	t.Setenv("MENTORLENS_POINTS_SCALAR", "100")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTPAddress())
	require.Equal(t, 100, cfg.PointsScalar)
}

func TestLoadRejectsBadThreshold(t *testing.T) {
	t.Setenv("MENTORLENS_BADGE_THRESHOLD", "1.5")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsBadScalar(t *testing.T) {
	t.Setenv("MENTORLENS_POINTS_SCALAR", "-10")

	_, err := Load()
	require.Error(t, err)
}
