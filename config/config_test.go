package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("WIV_JWT_SECRET", "s3cret")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 15*time.Minute, cfg.OtpTTL)
	assert.Equal(t, 5, cfg.RegisterPerMinute)
	assert.Equal(t, 10, cfg.LoginPerMinute)
	assert.Equal(t, int64(5*1024*1024), cfg.MaxUploadBytes())
	assert.False(t, cfg.OAuth.Google.Enabled())
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("WIV_JWT_SECRET", "")

	_, err := Load("")
	assert.ErrorContains(t, err, "jwt_secret")
}

func TestLoadFileThenEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "walkintovoid.yaml")
	yaml := `
jwt_secret: from-file
port: "9000"
database:
  driver: mysql
  dsn: user:pass@tcp(localhost:3306)/blog?parseTime=true
oauth:
  google:
    client_id: id
    client_secret: secret
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("WIV_PORT", "9100")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.True(t, cfg.OAuth.Google.Enabled())
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	cfg := &Config{JWTSecret: "x", OtpTTL: time.Minute, Database: DatabaseConfig{Driver: "postgres"}}
	assert.Error(t, cfg.Validate())
}
