package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
server:
  address: ":9090"
  cors:
    allowedOrigins: ["https://fame.example.com"]
remote:
  profilesURL: "https://functions.example.com/profiles"
  uploadURL: "https://functions.example.com/upload"
  complaintURL: "https://functions.example.com/complaint"
  timeout: 5s
admin:
  password: "secret"
dedup:
  flushInterval: 30s
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))
	return dir
}

func TestLoadConfig_File(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, []string{"https://fame.example.com"}, cfg.Server.Cors.AllowedOrigins)
	assert.Equal(t, "https://functions.example.com/profiles", cfg.Remote.ProfilesURL)
	assert.Equal(t, 5*time.Second, cfg.Remote.Timeout)
	assert.Equal(t, 30*time.Second, cfg.Dedup.FlushInterval)
	assert.Equal(t, "secret", cfg.Admin.Password)
	// 默认值
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, UploadBackendRemote, cfg.Upload.Backend)
	assert.Equal(t, "famelist.db", cfg.Database.Sqlite.Path)
	assert.Equal(t, time.Duration(0), cfg.Listing.RefreshInterval)
	assert.Same(t, Cfg, cfg)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("ADMIN_PASSWORD", "from-env")
	t.Setenv("REMOTE_PROFILESURL", "https://env.example.com/profiles")

	cfg, err := LoadConfig(writeConfig(t, sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Admin.Password)
	assert.Equal(t, "https://env.example.com/profiles", cfg.Remote.ProfilesURL)
}

func TestLoadConfig_MissingRequired(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "server:\n  address: \":8080\"\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{
		Remote: RemoteConfig{ProfilesURL: "p", UploadURL: "u"},
		Upload: UploadConfig{Backend: UploadBackendRemote},
		Dedup:  DedupConfig{FlushInterval: time.Minute},
	}
	require.NoError(t, valid.Validate())

	minio := valid
	minio.Upload.Backend = UploadBackendMinio
	assert.Error(t, minio.Validate())
	minio.Upload.Minio = MinioConfig{Endpoint: "localhost:9000", Bucket: "photos"}
	assert.NoError(t, minio.Validate())

	unknown := valid
	unknown.Upload.Backend = "ftp"
	assert.Error(t, unknown.Validate())

	negative := valid
	negative.Remote.Timeout = -time.Second
	assert.Error(t, negative.Validate())

	noFlush := valid
	noFlush.Dedup.FlushInterval = 0
	assert.Error(t, noFlush.Validate())
}
