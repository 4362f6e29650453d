package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/doc-agent/api/middleware"
	"github.com/fyerfyer/doc-agent/api/model"
	"github.com/fyerfyer/doc-agent/internal/document"
	"github.com/fyerfyer/doc-agent/internal/services"
)

// AnalyzeHandler 处理文档分析相关的API请求
type AnalyzeHandler struct {
	analyzeService *services.AnalyzeService // 文档分析服务
	logger         *logrus.Logger           // 日志记录器
}

// NewAnalyzeHandler 创建新的文档分析处理器
func NewAnalyzeHandler(analyzeService *services.AnalyzeService) *AnalyzeHandler {
	return &AnalyzeHandler{
		analyzeService: analyzeService,
		logger:         middleware.GetLogger(),
	}
}

// Analyze 处理文档分析请求
// POST /api/doc-agent/analyze
func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	// 绑定请求参数
	var req model.AnalyzeRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Warn("Invalid analyze request")

		middleware.HandleError(c, middleware.NewValidationError("file and mode are required"))
		return
	}

	// 校验分析模式
	if !services.IsValidAnalysisMode(req.Mode) {
		middleware.HandleError(c, middleware.NewValidationError(
			fmt.Sprintf("unknown analysis mode: %s, valid modes: %s",
				req.Mode, strings.Join(services.ValidAnalysisModes(), ", "))))
		return
	}

	// question模式必须提供问题
	if req.Mode == services.AnalysisModeQuestion && strings.TrimSpace(req.Question) == "" {
		middleware.HandleError(c, middleware.NewValidationError("question is required for question mode"))
		return
	}

	filename := req.File.Filename

	// 不支持的格式不进入分析流程
	if !document.IsSupported(filename) {
		middleware.HandleError(c, document.UnsupportedFormatError(filename))
		return
	}

	// 读取上传的文件内容
	data, err := readUploadedFile(req.File)
	if err != nil {
		h.logger.WithFields(logrus.Fields{
			"error":     err.Error(),
			"file_name": filename,
		}).Error("Failed to read uploaded file")

		middleware.HandleError(c, middleware.NewInternalError("failed to read uploaded file"))
		return
	}

	// 运行分析流程
	result, err := h.analyzeService.Analyze(c.Request.Context(), data, filename, req.Mode, req.Question)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(result))
}
