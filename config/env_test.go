package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs Load once and restores the value map afterwards.
func isolate(t *testing.T) {
	t.Helper()
	_ = Load()
	mu.RLock()
	saved := make(map[string]string, len(values))
	for k, v := range values {
		saved[k] = v
	}
	mu.RUnlock()
	t.Cleanup(func() {
		mu.Lock()
		values = saved
		mu.Unlock()
	})
}

func write(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadFromFiles_Precedence(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	jsonPath := write(t, dir, "app.json", `{"mongo_database":"from-json","app_port":9000,"poll_interval":"2s"}`)
	envPath := write(t, dir, ".env", "MONGO_DATABASE=from-dotenv\nQUEUE_DRIVER=AMQP\n")
	t.Setenv("APP_PORT", "7070")

	require.NoError(t, loadFromFiles(jsonPath, envPath))

	assert.Equal(t, "from-dotenv", MongoDatabase())
	assert.Equal(t, "7070", AppPort())
	assert.Equal(t, 2*time.Second, PollInterval())
	assert.Equal(t, "amqp", QueueDriver())
	assert.Equal(t, defaultRedisAddr, RedisAddr())
}

func TestLoadFromFiles_MissingFilesKeepDefaults(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	require.NoError(t, loadFromFiles(filepath.Join(dir, "nope.json"), filepath.Join(dir, ".env")))
	assert.Equal(t, defaultMongoURI, MongoURI())
	assert.Equal(t, "memory", QueueDriver())
}

func TestLoadFromFiles_BadJSON(t *testing.T) {
	isolate(t)
	p := write(t, t.TempDir(), "app.json", `{not json`)

	err := loadFromFiles(p, filepath.Join(t.TempDir(), ".env"))
	assert.ErrorContains(t, err, "decode")
}

func TestDurationFallbacks(t *testing.T) {
	isolate(t)

	Set("POLL_INTERVAL", "soon")
	assert.Equal(t, time.Second, PollInterval())

	Set("POLL_INTERVAL", "-1s")
	assert.Equal(t, time.Second, PollInterval())

	Set("PRICING_CACHE_TTL", "30s")
	assert.Equal(t, 30*time.Second, PricingCacheTTL())
}

func TestAPIBaseURLTrimsSlash(t *testing.T) {
	isolate(t)
	Set("API_BASE_URL", "http://shop.test/api/")
	assert.Equal(t, "http://shop.test/api", APIBaseURL())
}

func TestQueueDriverUnknownFallsBack(t *testing.T) {
	isolate(t)
	Set("QUEUE_DRIVER", "kafka")
	assert.Equal(t, "memory", QueueDriver())
}
