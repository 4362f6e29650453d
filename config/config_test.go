package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadDefaults 测试缺少配置文件时使用默认值
func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 8000, cfg.Server.Port)

	assert.Equal(t, "llama3.1", cfg.Ollama.Model)
	assert.Equal(t, "http://localhost:11434", cfg.Ollama.BaseURL)
	assert.Equal(t, float32(0.7), cfg.Ollama.Temperature)
	assert.Equal(t, 60*time.Second, cfg.Ollama.Timeout)
	assert.Equal(t, 1, cfg.Ollama.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, cfg.Ollama.RetryDelay)
	assert.Equal(t, 0, cfg.Ollama.MaxTokens)

	assert.Equal(t, 12000, cfg.Document.MaxChars)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "", cfg.Log.File)
	assert.Equal(t, 100, cfg.Log.MaxSizeMB)
	assert.Equal(t, 3, cfg.Log.MaxBackups)
	assert.Equal(t, 28, cfg.Log.MaxAgeDays)
}

// TestLoadFromFile 测试从YAML文件加载配置
func TestLoadFromFile(t *testing.T) {
	content := `server:
  host: 0.0.0.0
  port: 9090
ollama:
  model: qwen2.5
  temperature: 0.3
  timeout: 30s
document:
  max_chars: 5000
log:
  level: debug
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "qwen2.5", cfg.Ollama.Model)
	assert.Equal(t, float32(0.3), cfg.Ollama.Temperature)
	assert.Equal(t, 30*time.Second, cfg.Ollama.Timeout)
	assert.Equal(t, 5000, cfg.Document.MaxChars)
	assert.Equal(t, "debug", cfg.Log.Level)

	// 文件中没有的键保持默认值
	assert.Equal(t, "http://localhost:11434", cfg.Ollama.BaseURL)
	assert.Equal(t, 1, cfg.Ollama.MaxRetries)
}

// TestLoadEnvOverrides 测试环境变量覆盖配置
func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("OLLAMA_MODEL", "mistral")
	t.Setenv("OLLAMA_BASE_URL", "http://ollama.internal:11434")
	t.Setenv("API_HOST", "0.0.0.0")
	t.Setenv("API_PORT", "9000")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "mistral", cfg.Ollama.Model)
	assert.Equal(t, "http://ollama.internal:11434", cfg.Ollama.BaseURL)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 9000, cfg.Server.Port)
}

// TestLoadInvalidPortEnv 测试非法的端口环境变量被忽略
func TestLoadInvalidPortEnv(t *testing.T) {
	t.Setenv("API_PORT", "not-a-number")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8000, cfg.Server.Port)
}

// TestLoadInvalidTemperature 测试超出范围的采样温度
func TestLoadInvalidTemperature(t *testing.T) {
	content := "ollama:\n  temperature: 1.5\n"
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

// TestLoadMalformedFile 测试无法解析的配置文件
func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}
