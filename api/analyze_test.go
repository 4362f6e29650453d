package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyerfyer/doc-agent/internal/llm"
)

// TestAnalyzeEndpoint 测试文档分析API的摘要模式
func TestAnalyzeEndpoint(t *testing.T) {
	env := setupDocumentTestEnv(t)
	env.LLMClient.generateResp.Text = "文档介绍了项目的分层结构"

	content := []byte("项目分为解析层和服务层。")
	req := newUploadRequest(t, "/api/doc-agent/analyze", "arch.txt", content,
		map[string]string{"mode": "summary"})

	w, resp := doRequest(t, env.Router, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, resp.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "summary", data["mode"])
	assert.Equal(t, "文档介绍了项目的分层结构", data["answer"])
	assert.Equal(t, "arch.txt", data["file_name"])
	assert.Equal(t, "success", data["processing_status"])
}

// TestAnalyzeQuestionEndpoint 测试文档分析API的问答模式
func TestAnalyzeQuestionEndpoint(t *testing.T) {
	env := setupDocumentTestEnv(t)
	env.LLMClient.chatResp.Text = "第二章描述了系统架构"

	content := []byte("第一章介绍了项目背景。第二章描述了系统架构。")
	req := newUploadRequest(t, "/api/doc-agent/analyze", "doc.txt", content,
		map[string]string{"mode": "question", "question": "第二章讲了什么？"})

	w, resp := doRequest(t, env.Router, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, resp.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "question", data["mode"])
	assert.Equal(t, "第二章描述了系统架构", data["answer"])
}

// TestAnalyzeUnknownMode 测试不支持的分析模式
func TestAnalyzeUnknownMode(t *testing.T) {
	env := setupDocumentTestEnv(t)

	req := newUploadRequest(t, "/api/doc-agent/analyze", "doc.txt", []byte("内容"),
		map[string]string{"mode": "translate"})

	w, resp := doRequest(t, env.Router, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, resp.Message, "unknown analysis mode")
	assert.Contains(t, resp.Message, "summary")
	assert.Contains(t, resp.Message, "question")
}

// TestAnalyzeQuestionRequired 测试问答模式缺少问题参数
func TestAnalyzeQuestionRequired(t *testing.T) {
	env := setupDocumentTestEnv(t)

	req := newUploadRequest(t, "/api/doc-agent/analyze", "doc.txt", []byte("内容"),
		map[string]string{"mode": "question"})

	w, resp := doRequest(t, env.Router, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, resp.Message, "question is required")
}

// TestAnalyzeMissingMode 测试缺少模式参数的请求
func TestAnalyzeMissingMode(t *testing.T) {
	env := setupDocumentTestEnv(t)

	req := newUploadRequest(t, "/api/doc-agent/analyze", "doc.txt", []byte("内容"), nil)

	w, resp := doRequest(t, env.Router, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, resp.Message, "file and mode are required")
}

// TestAnalyzeUnsupportedFile 测试不支持的文件格式
func TestAnalyzeUnsupportedFile(t *testing.T) {
	env := setupDocumentTestEnv(t)

	req := newUploadRequest(t, "/api/doc-agent/analyze", "data.csv", []byte("a,b,c"),
		map[string]string{"mode": "summary"})

	w, resp := doRequest(t, env.Router, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, resp.Message, "unsupported_format")
}

// TestAnalyzeModelUnavailable 测试模型服务不可用的状态码映射
func TestAnalyzeModelUnavailable(t *testing.T) {
	env := setupDocumentTestEnv(t)
	env.LLMClient.generateErr = llm.NewLLMError(llm.ErrCodeServerError, llm.ErrMsgServerError)

	req := newUploadRequest(t, "/api/doc-agent/analyze", "doc.txt", []byte("内容"),
		map[string]string{"mode": "summary"})

	w, resp := doRequest(t, env.Router, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, resp.Message, "model_unavailable")
}
