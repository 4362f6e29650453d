package handler

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/doc-agent/api/middleware"
	"github.com/fyerfyer/doc-agent/api/model"
	"github.com/fyerfyer/doc-agent/internal/document"
	"github.com/fyerfyer/doc-agent/internal/services"
)

// DocumentHandler 处理文档章节提取相关的API请求
type DocumentHandler struct {
	extractService *services.ExtractService // 章节提取服务
	logger         *logrus.Logger           // 日志记录器
}

// NewDocumentHandler 创建新的文档处理器
func NewDocumentHandler(extractService *services.ExtractService) *DocumentHandler {
	return &DocumentHandler{
		extractService: extractService,
		logger:         middleware.GetLogger(),
	}
}

// ExtractSections 处理章节提取请求
// POST /api/doc-agent/extract-sections
func (h *DocumentHandler) ExtractSections(c *gin.Context) {
	// 绑定请求参数
	var req model.ExtractSectionsRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Warn("Invalid extract-sections request")

		middleware.HandleError(c, middleware.NewValidationError("file is required"))
		return
	}

	filename := req.File.Filename

	// 在读取文件内容之前先检查扩展名，不支持的格式不进入流水线
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

	// 运行提取流水线
	result, err := h.extractService.ExtractSections(c.Request.Context(), data, filename)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(result))
}

// readUploadedFile 读取multipart文件的全部内容
func readUploadedFile(fileHeader *multipart.FileHeader) ([]byte, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return io.ReadAll(file)
}
