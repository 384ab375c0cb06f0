package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SESSION_SECRET", "test-secret")
	t.Setenv("NODE_ENV", "")
	t.Setenv("HTTPS", "")
	t.Setenv("PORT", "")
	t.Setenv("SESSION_NAME", "")
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ModeDevelopment, cfg.Mode)
	assert.False(t, cfg.Production())
	assert.Equal(t, "3000", cfg.AppPort)
	assert.False(t, cfg.TLS)
	assert.Equal(t, "session", cfg.CookieName)
}

func TestLoadProductionMode(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("NODE_ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Production())
}

func TestLoadRejectsUnknownMode(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("NODE_ENV", "staging")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRequiresSessionSecret(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("SESSION_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_SECRET")
}

func TestLoadTLSWithoutMaterialIsFatal(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("HTTPS", "true")
	t.Setenv("TLS_CERT_FILE", filepath.Join(t.TempDir(), "missing-cert.pem"))
	t.Setenv("TLS_KEY_FILE", filepath.Join(t.TempDir(), "missing-key.pem"))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TLS requested")
}

func TestLoadTLSWithMaterial(t *testing.T) {
	setBaseEnv(t)

	dir := t.TempDir()
	cert := filepath.Join(dir, "cert.pem")
	key := filepath.Join(dir, "key.pem")
	require.NoError(t, os.WriteFile(cert, []byte("cert"), 0o600))
	require.NoError(t, os.WriteFile(key, []byte("key"), 0o600))

	t.Setenv("HTTPS", "1")
	t.Setenv("TLS_CERT_FILE", cert)
	t.Setenv("TLS_KEY_FILE", key)

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.TLS)
	assert.Equal(t, cert, cfg.CertFile)
}
