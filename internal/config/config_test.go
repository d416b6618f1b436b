package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseYAML = `
db:
  host: localhost
  port: 5432
  name: agency
redis:
  addr: localhost:6379
jwt:
  secret: ${JWT_SECRET_VALUE}
admin:
  username: admin
  password_hash: bcrypt-hash
notification:
  business_number: "6283117927964"
`

func writeConfig(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestLoadFrom_DefaultsAndOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET_VALUE", "s3cret")
	t.Setenv("WHATSAPP_PROVIDER", "fonnte")
	dir := writeConfig(t, map[string]string{
		"base.yaml":  baseYAML,
		"local.yaml": "projects:\n  forward_only: false\n",
	})

	cfg, err := LoadFrom("local", dir)
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "s3cret", cfg.JWT.Secret)
	assert.Equal(t, "fonnte", cfg.Notification.Provider)
	assert.Equal(t, "direct", cfg.Notification.Mode)
	assert.False(t, cfg.Projects.ForwardOnly)
	assert.Equal(t, 10, cfg.ShortID.MaxAttempts)
	assert.Equal(t, "30s", cfg.ConvertLockTTL().String())
	assert.Equal(t, ":8080", cfg.Server.Port)
}

func TestValidate_ReportsEverything(t *testing.T) {
	cfg := defaults()
	cfg.Notification.Mode = "queue"

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"db.host", "redis.addr", "jwt.secret", "admin.username", "business_number", "mq.url"} {
		assert.Contains(t, err.Error(), want)
	}

	cfg.Notification.Mode = "carrier-pigeon"
	assert.Contains(t, cfg.Validate().Error(), "notification.mode")
}
