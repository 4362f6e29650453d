package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newOllamaTestClient 创建一个指向测试服务器的Ollama客户端
func newOllamaTestClient(t *testing.T, serverURL string, opts ...Option) Client {
	t.Helper()

	base := []Option{
		WithBaseURL(serverURL),
		WithModel("test-model"),
		WithMaxRetries(1),
		WithRetryDelay(10 * time.Millisecond),
	}
	client, err := NewOllamaClient(append(base, opts...)...)
	require.NoError(t, err)
	return client
}

// TestOllamaGenerate 测试文本生成的正常流程
func TestOllamaGenerate(t *testing.T) {
	var mu sync.Mutex
	var captured map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		mu.Lock()
		captured = body
		mu.Unlock()

		fmt.Fprintln(w, `{"model":"test-model","response":"你好，世界","done":true,"prompt_eval_count":12,"eval_count":34}`)
	}))
	defer server.Close()

	client := newOllamaTestClient(t, server.URL)

	resp, err := client.Generate(context.Background(), "介绍一下这个项目",
		WithGenerateTemperature(0.25),
		WithGenerateMaxTokens(64))
	require.NoError(t, err)
	assert.Equal(t, "你好，世界", resp.Text)
	assert.Equal(t, 46, resp.TokenCount)
	assert.Equal(t, "test-model", resp.ModelName)

	// 验证发出的请求参数
	mu.Lock()
	defer mu.Unlock()
	require.NotNil(t, captured)
	assert.Equal(t, "test-model", captured["model"])
	assert.Equal(t, "介绍一下这个项目", captured["prompt"])
	assert.Equal(t, false, captured["stream"])

	options, ok := captured["options"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 0.25, options["temperature"])
	assert.Equal(t, float64(64), options["num_predict"])
}

// TestOllamaChat 测试多轮对话的正常流程
func TestOllamaChat(t *testing.T) {
	var mu sync.Mutex
	var captured map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		mu.Lock()
		captured = body
		mu.Unlock()

		fmt.Fprintln(w, `{"model":"test-model","message":{"role":"assistant","content":"第一章介绍了项目背景"},"done":true,"prompt_eval_count":5,"eval_count":7}`)
	}))
	defer server.Close()

	client := newOllamaTestClient(t, server.URL)

	messages := []Message{
		{Role: RoleSystem, Content: "你是一个文档分析助手"},
		{Role: RoleUser, Content: "第一章讲了什么？"},
	}
	resp, err := client.Chat(context.Background(), messages)
	require.NoError(t, err)
	assert.Equal(t, "第一章介绍了项目背景", resp.Text)
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, RoleAssistant, resp.Messages[0].Role)
	assert.Equal(t, "第一章介绍了项目背景", resp.Messages[0].Content)
	assert.Equal(t, 12, resp.TokenCount)

	mu.Lock()
	defer mu.Unlock()
	require.NotNil(t, captured)
	sent, ok := captured["messages"].([]any)
	require.True(t, ok)
	require.Len(t, sent, 2)
	first, ok := sent[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "system", first["role"])
}

// TestOllamaEmptyPrompt 测试空输入直接报错且不发起请求
func TestOllamaEmptyPrompt(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	client := newOllamaTestClient(t, server.URL)

	_, err := client.Generate(context.Background(), "")
	var llmErr LLMError
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, ErrCodeEmptyPrompt, llmErr.Code)

	_, err = client.Chat(context.Background(), nil)
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, ErrCodeInvalidRequest, llmErr.Code)

	assert.Equal(t, int32(0), hits.Load())
}

// TestOllamaServerErrorRetries 测试服务端错误触发一次重试
func TestOllamaServerErrorRetries(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintln(w, `{}`)
	}))
	defer server.Close()

	client := newOllamaTestClient(t, server.URL)

	_, err := client.Generate(context.Background(), "hello")
	require.Error(t, err)

	var llmErr LLMError
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, ErrCodeServerError, llmErr.Code)
	assert.True(t, IsUnavailable(err))

	// maxRetries为1意味着总共发起两次尝试
	assert.Equal(t, int32(2), hits.Load())
}

// TestOllamaRetryRecovers 测试首次失败后重试成功
func TestOllamaRetryRecovers(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprintln(w, `{}`)
			return
		}
		fmt.Fprintln(w, `{"model":"test-model","response":"重试后的回答","done":true,"prompt_eval_count":3,"eval_count":4}`)
	}))
	defer server.Close()

	client := newOllamaTestClient(t, server.URL)

	resp, err := client.Generate(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "重试后的回答", resp.Text)
	assert.Equal(t, int32(2), hits.Load())
}

// TestOllamaModelNotFound 测试模型未拉取时的错误归类
func TestOllamaModelNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintln(w, `{}`)
	}))
	defer server.Close()

	client := newOllamaTestClient(t, server.URL)

	_, err := client.Generate(context.Background(), "hello")
	var llmErr LLMError
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, ErrCodeModelNotFound, llmErr.Code)
	assert.Contains(t, llmErr.Message, "test-model")
}

// TestOllamaTimeout 测试单次请求超时的归类与重试
func TestOllamaTimeout(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		select {
		case <-r.Context().Done():
		case <-time.After(500 * time.Millisecond):
		}
	}))
	defer server.Close()

	client := newOllamaTestClient(t, server.URL, WithTimeout(50*time.Millisecond))

	start := time.Now()
	_, err := client.Generate(context.Background(), "hello")
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.True(t, IsTimeout(err))

	var llmErr LLMError
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, ErrCodeTimeout, llmErr.Code)

	// 每次尝试带独立超时，总耗时不会被慢服务拖住
	assert.Equal(t, int32(2), hits.Load())
	assert.Less(t, elapsed, 2*time.Second)
}

// TestOllamaInvalidTemperature 测试非法采样温度
func TestOllamaInvalidTemperature(t *testing.T) {
	_, err := NewOllamaClient(WithTemperature(1.5))
	require.Error(t, err)

	var llmErr LLMError
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, ErrCodeInvalidRequest, llmErr.Code)
	assert.Equal(t, ErrMsgInvalidTemperature, llmErr.Message)
}

// TestOllamaClientInfo 测试客户端的基础信息
func TestOllamaClientInfo(t *testing.T) {
	client, err := NewOllamaClient(
		WithBaseURL("http://example.com:11434"),
		WithModel("qwen2.5"),
	)
	require.NoError(t, err)
	assert.Equal(t, "qwen2.5", client.Name())

	ollama, ok := client.(*OllamaClient)
	require.True(t, ok)
	assert.Equal(t, "http://example.com:11434", ollama.BaseURL())

	_, err = NewOllamaClient(WithBaseURL("http://[::1"))
	require.Error(t, err)
}
