package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMustLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Chdir(t.TempDir())

	cfg, err := MustLoad()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Addr)
	assert.Equal(t, "commissions", cfg.Minio.Bucket)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "sessionID", cfg.Session.CookieName)
	assert.Equal(t, 3, cfg.Retry.Attempts)
}

func TestMustLoad_Env(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("DB_HOST", "db")
	t.Setenv("RETRY_DELAY", "2s")
	t.Chdir(t.TempDir())

	cfg, err := MustLoad()
	require.NoError(t, err)

	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Contains(t, cfg.DBDSN(), "host=db")
	assert.Equal(t, 2*time.Second, cfg.DefaultRetryStrategy().Delay)
}

func TestMustLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "server:\n  addr: \"9090\"\nminio:\n  bucket: art\nworker:\n  concurrency: 2\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("CONFIG_PATH", path)
	t.Chdir(dir)

	cfg, err := MustLoad()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Addr)
	assert.Equal(t, "art", cfg.Minio.Bucket)
	assert.Equal(t, 2, cfg.Worker.Concurrency)
}

func TestMustLoad_InvalidConcurrency(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("WORKER_CONCURRENCY", "0")
	t.Chdir(t.TempDir())

	_, err := MustLoad()
	assert.Error(t, err)
}

func TestMustLoad_SingleConnectionPool(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("DB_MAX_OPEN_CONNS", "1")
	t.Chdir(t.TempDir())

	_, err := MustLoad()
	assert.ErrorContains(t, err, "max open conns")
}
