package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyerfyer/doc-agent/api/handler"
	"github.com/fyerfyer/doc-agent/api/model"
	"github.com/fyerfyer/doc-agent/internal/document"
	"github.com/fyerfyer/doc-agent/internal/llm"
	"github.com/fyerfyer/doc-agent/internal/services"
)

// stubLLMClient 模拟的大模型客户端
// 返回预设的响应或错误
type stubLLMClient struct {
	generateResp *llm.Response
	generateErr  error
	chatResp     *llm.Response
	chatErr      error
}

// newStubLLMClient 创建返回固定文本的模拟客户端
func newStubLLMClient(text string) *stubLLMClient {
	return &stubLLMClient{
		generateResp: &llm.Response{
			Text:       text,
			TokenCount: 10,
			ModelName:  "mock-model",
			FinishTime: time.Now(),
		},
		chatResp: &llm.Response{
			Text:       text,
			Messages:   []llm.Message{{Role: llm.RoleAssistant, Content: text}},
			TokenCount: 10,
			ModelName:  "mock-model",
			FinishTime: time.Now(),
		},
	}
}

func (s *stubLLMClient) Generate(ctx context.Context, prompt string, options ...llm.GenerateOption) (*llm.Response, error) {
	if s.generateErr != nil {
		return nil, s.generateErr
	}
	return s.generateResp, nil
}

func (s *stubLLMClient) Chat(ctx context.Context, messages []llm.Message, options ...llm.ChatOption) (*llm.Response, error) {
	if s.chatErr != nil {
		return nil, s.chatErr
	}
	return s.chatResp, nil
}

func (s *stubLLMClient) Name() string {
	return "mock-model"
}

// 测试环境配置
type documentTestEnv struct {
	Router    *gin.Engine
	LLMClient *stubLLMClient
}

// 创建测试环境
func setupDocumentTestEnv(t *testing.T) *documentTestEnv {
	t.Helper()

	// 设置测试模式
	gin.SetMode(gin.TestMode)

	// 静默测试期间的服务日志
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	// 创建Mock LLM客户端，默认返回单章节的解析结果
	mockLLM := newStubLLMClient(`[{"index": 1, "title": "# 第一章 概述", "content": "这是第一章的内容。"}]`)

	// 创建章节提取服务
	extractService := services.NewExtractService(mockLLM,
		services.WithSplitter(document.NewTextSplitter(document.DefaultSplitterConfig())),
		services.WithExtractLogger(logger),
	)

	// 创建文档分析服务
	analyzeService := services.NewAnalyzeService(llm.NewAnalyzer(mockLLM),
		services.WithAnalyzeLogger(logger),
	)

	// 创建API处理器
	docHandler := handler.NewDocumentHandler(extractService)
	analyzeHandler := handler.NewAnalyzeHandler(analyzeService)
	healthHandler := handler.NewHealthHandler("llama3.1", "http://localhost:11434")

	// 设置路由
	router := SetupRouter(docHandler, analyzeHandler, healthHandler)

	return &documentTestEnv{
		Router:    router,
		LLMClient: mockLLM,
	}
}

// newUploadRequest 构造带文件和表单字段的multipart请求
func newUploadRequest(t *testing.T, url string, filename string, content []byte, fields map[string]string) *http.Request {
	t.Helper()

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)

	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, url, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

// doRequest 执行请求并解析通用响应结构
func doRequest(t *testing.T, router *gin.Engine, req *http.Request) (*httptest.ResponseRecorder, *model.Response) {
	t.Helper()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp model.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	return w, &resp
}

// TestExtractSectionsEndpoint 测试章节提取API
func TestExtractSectionsEndpoint(t *testing.T) {
	env := setupDocumentTestEnv(t)
	env.LLMClient.generateResp.Text = `[{"index": 1, "title": "# 第一章 概述", "content": "这是第一章的内容。"}, {"index": 2, "title": "第二章 设计", "content": "这是第二章的内容。"}]`

	content := []byte("# 第一章 概述\n\n这是第一章的内容。\n\n# 第二章 设计\n\n这是第二章的内容。\n")
	req := newUploadRequest(t, "/api/doc-agent/extract-sections", "sample.md", content, nil)

	w, resp := doRequest(t, env.Router, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, resp.Code)
	assert.Equal(t, "success", resp.Message)
	assert.NotEmpty(t, w.Header().Get("X-Trace-ID"))

	// 检查响应中的章节列表
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "sample.md", data["file_name"])
	assert.Equal(t, "success", data["processing_status"])

	sections, ok := data["sections"].([]interface{})
	require.True(t, ok)
	require.Len(t, sections, 2)

	first, ok := sections[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(1), first["index"])
	assert.Equal(t, "第一章 概述", first["title"])
	assert.Equal(t, "这是第一章的内容。", first["content"])
}

// TestExtractSectionsMissingFile 测试缺少文件参数的请求
func TestExtractSectionsMissingFile(t *testing.T) {
	env := setupDocumentTestEnv(t)

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/doc-agent/extract-sections", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	w, resp := doRequest(t, env.Router, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Message, "file is required")
}

// TestExtractSectionsUnsupportedFile 测试不支持的文件格式
func TestExtractSectionsUnsupportedFile(t *testing.T) {
	env := setupDocumentTestEnv(t)

	req := newUploadRequest(t, "/api/doc-agent/extract-sections", "sheet.xlsx", []byte("a,b,c"), nil)

	w, resp := doRequest(t, env.Router, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Message, "unsupported_format")
	assert.Contains(t, resp.Message, ".xlsx")
	assert.Contains(t, resp.Message, ".docx")
	assert.NotEmpty(t, resp.TraceID)
}

// TestExtractSectionsCorruptUpload 测试损坏文件的提取失败
func TestExtractSectionsCorruptUpload(t *testing.T) {
	env := setupDocumentTestEnv(t)

	req := newUploadRequest(t, "/api/doc-agent/extract-sections", "broken.pdf", []byte("not a real pdf"), nil)

	w, resp := doRequest(t, env.Router, req)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, resp.Message, "extraction_failure")
}

// TestExtractSectionsModelTimeout 测试模型超时的状态码映射
func TestExtractSectionsModelTimeout(t *testing.T) {
	env := setupDocumentTestEnv(t)
	env.LLMClient.generateErr = llm.NewLLMError(llm.ErrCodeTimeout, llm.ErrMsgTimeout)

	req := newUploadRequest(t, "/api/doc-agent/extract-sections", "doc.txt", []byte("hello"), nil)

	w, resp := doRequest(t, env.Router, req)
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.Contains(t, resp.Message, "model_timeout")
}

// TestExtractSectionsModelUnavailable 测试模型服务不可用的状态码映射
func TestExtractSectionsModelUnavailable(t *testing.T) {
	env := setupDocumentTestEnv(t)
	env.LLMClient.generateErr = llm.NewLLMError(llm.ErrCodeNetworkError, llm.ErrMsgNetworkError)

	req := newUploadRequest(t, "/api/doc-agent/extract-sections", "doc.txt", []byte("hello"), nil)

	w, resp := doRequest(t, env.Router, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, resp.Message, "model_unavailable")
}

// TestExtractSectionsMalformedOutput 测试模型输出无法解析的状态码映射
func TestExtractSectionsMalformedOutput(t *testing.T) {
	env := setupDocumentTestEnv(t)
	env.LLMClient.generateResp.Text = "抱歉，我无法处理这份文档。"

	req := newUploadRequest(t, "/api/doc-agent/extract-sections", "doc.txt", []byte("hello"), nil)

	w, resp := doRequest(t, env.Router, req)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, resp.Message, "malformed_model_output")
	assert.NotEmpty(t, resp.TraceID)
}

// TestExtractSectionsEmptyResult 测试无章节结构的文档返回空列表
func TestExtractSectionsEmptyResult(t *testing.T) {
	env := setupDocumentTestEnv(t)
	env.LLMClient.generateResp.Text = "[]"

	req := newUploadRequest(t, "/api/doc-agent/extract-sections", "note.txt", []byte("一段没有标题的文字"), nil)

	w, resp := doRequest(t, env.Router, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, resp.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	sections, ok := data["sections"].([]interface{})
	require.True(t, ok)
	assert.Empty(t, sections)
}
