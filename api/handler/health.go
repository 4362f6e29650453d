package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fyerfyer/doc-agent/api/model"
	"github.com/fyerfyer/doc-agent/internal/document"
)

// ServiceVersion 服务版本号
const ServiceVersion = "1.0.0"

// HealthHandler 处理健康检查和服务信息相关的API请求
type HealthHandler struct {
	modelName string // 配置的模型名称
	baseURL   string // 模型服务地址
}

// NewHealthHandler 创建新的健康检查处理器
func NewHealthHandler(modelName string, baseURL string) *HealthHandler {
	return &HealthHandler{
		modelName: modelName,
		baseURL:   baseURL,
	}
}

// Health 健康检查
// GET /api/doc-agent/health
func (h *HealthHandler) Health(c *gin.Context) {
	resp := model.HealthResponse{
		Status:  "healthy",
		AIModel: h.modelName,
		BaseURL: h.baseURL,
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(resp))
}

// SupportedFormats 返回支持的文件格式列表
// GET /api/doc-agent/supported-formats
func (h *HealthHandler) SupportedFormats(c *gin.Context) {
	resp := model.SupportedFormatsResponse{
		SupportedFormats: document.SupportedExtensions(),
		Description:      "支持的文件扩展名列表",
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(resp))
}

// ServiceInfo 返回服务基本信息
// GET /
func (h *HealthHandler) ServiceInfo(c *gin.Context) {
	resp := model.ServiceInfoResponse{
		Message:     "文档一级标题提取助理 API",
		Version:     ServiceVersion,
		Description: "使用AI分析文档，提取一级标题结构的API服务",
		Endpoints: map[string]string{
			"extract_sections":  "/api/doc-agent/extract-sections",
			"analyze":           "/api/doc-agent/analyze",
			"health":            "/api/doc-agent/health",
			"supported_formats": "/api/doc-agent/supported-formats",
		},
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(resp))
}
