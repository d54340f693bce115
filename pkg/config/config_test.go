package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZentaChain/messageu-client/pkg/storage"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "me.info", cfg.Credentials)
	assert.Equal(t, 10*time.Second, cfg.DialTimeout)
	assert.Zero(t, cfg.ReadTimeout)
	assert.Equal(t, 2, cfg.DialRetries)
	assert.Equal(t, "127.0.0.1:8088", cfg.API.Listen)
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messageu.yaml")
	content := `
data_dir: /var/lib/messageu
server: /ip4/10.1.2.3/tcp/1357
history_db: ""
read_timeout: 30s
dial_retries: 0
api:
  listen: 0.0.0.0:9000
  cors: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/messageu", cfg.DataDir)
	assert.Equal(t, 30*time.Second, cfg.ReadTimeout)
	assert.Zero(t, cfg.DialRetries)
	assert.Equal(t, 10*time.Second, cfg.DialTimeout, "unset keys keep defaults")
	assert.Empty(t, cfg.HistoryDB)
	assert.Equal(t, "0.0.0.0:9000", cfg.API.Listen)
	assert.True(t, cfg.API.EnableCORS)

	assert.Equal(t, "/var/lib/messageu/me.info", cfg.Path(cfg.Credentials))
	assert.Equal(t, "/abs/me.info", cfg.Path("/abs/me.info"))

	addr, err := cfg.ServerAddress()
	require.NoError(t, err)
	assert.Equal(t, "10.1.2.3:1357", addr)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "bad yaml", content: "api: [unterminated"},
		{name: "negative timeout", content: "dial_timeout: -1s"},
		{name: "negative retries", content: "dial_retries: -1"},
		{name: "empty credentials", content: "credentials: \"\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "messageu.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0600))

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestServerAddressFromServerInfo(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.DataDir = dir

	addr, err := cfg.ServerAddress()
	require.NoError(t, err)
	assert.Equal(t, storage.DefaultServerAddress, addr)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "server.info"), []byte("192.168.0.7:1234\n"), 0644))
	addr, err = cfg.ServerAddress()
	require.NoError(t, err)
	assert.Equal(t, "192.168.0.7:1234", addr)
}
