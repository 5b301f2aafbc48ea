package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DATA_PATH", "DB_PATH", "RECORDINGS_PATH", "CORS_ORIGINS", "DRIVE_ROOT_FOLDER", "JWT_SECRET"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, "/data", cfg.DataPath)
	require.Equal(t, "/data/podcaststudio.db", cfg.DBPath)
	require.Equal(t, "/data/recordings", cfg.RecordingsPath)
	require.Equal(t, []string{"*"}, cfg.CORSOrigins)
	require.Equal(t, "Podcast Studio", cfg.DriveRootFolder)
	require.NotEmpty(t, cfg.JWTSecret, "a random secret is generated when unset")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("DATA_PATH", "/srv/podcasts")
	t.Setenv("DB_PATH", "/srv/podcasts/custom.db")
	t.Setenv("JWT_SECRET", "fixed-secret")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg := Load()
	require.Equal(t, 9999, cfg.Port)
	require.Equal(t, "/srv/podcasts", cfg.DataPath)
	require.Equal(t, "/srv/podcasts/custom.db", cfg.DBPath)
	require.Equal(t, "fixed-secret", cfg.JWTSecret)
	require.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
}
