package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/doc-agent/internal/document"
	"github.com/fyerfyer/doc-agent/internal/llm"
	"github.com/fyerfyer/doc-agent/internal/models"
	"github.com/fyerfyer/doc-agent/internal/sections"
)

// ExtractService 章节提取服务
// 按固定顺序驱动整条流水线：
// Received → Extracted → Prompted → Completed → Parsed → Done
// 任何一步失败都进入Failed状态，错误携带固定的类别
// 整条流水线不做重试，只有模型调用在客户端内部重试一次
type ExtractService struct {
	llm      llm.Client             // 大模型客户端
	splitter *document.TextSplitter // 超长文本截断器
	logger   *logrus.Logger         // 日志记录器
}

// ExtractOption 提取服务配置选项
type ExtractOption func(*ExtractService)

// NewExtractService 创建章节提取服务实例
func NewExtractService(llmClient llm.Client, opts ...ExtractOption) *ExtractService {
	service := &ExtractService{
		llm:      llmClient,
		splitter: document.NewTextSplitter(document.DefaultSplitterConfig()),
		logger:   logrus.New(),
	}

	// 应用配置选项
	for _, opt := range opts {
		opt(service)
	}

	return service
}

// WithSplitter 设置文本截断器
func WithSplitter(splitter *document.TextSplitter) ExtractOption {
	return func(s *ExtractService) {
		if splitter != nil {
			s.splitter = splitter
		}
	}
}

// WithExtractLogger 设置日志记录器
func WithExtractLogger(logger *logrus.Logger) ExtractOption {
	return func(s *ExtractService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// ExtractSections 执行一次完整的章节提取
// 输入文件字节和文件名，输出章节列表和文件元信息
func (s *ExtractService) ExtractSections(ctx context.Context, data []byte, filename string) (*models.ExtractionResult, error) {
	log := s.requestLogger(ctx, filename, len(data))

	state := models.StateReceived
	log.WithField("state", state).Info("Pipeline run started")

	// 1. 按扩展名提取文本
	text, err := document.Extract(data, filename)
	if err != nil {
		return nil, s.fail(log, state, err)
	}
	state = models.StateExtracted
	log.WithFields(logrus.Fields{
		"state":       state,
		"text_length": len(text),
	}).Debug("Text extracted")

	// 2. 截断超长文本并构建提示词
	text, truncated := s.splitter.Truncate(text)
	prompt := sections.BuildSectionPrompt(text)
	state = models.StatePrompted
	log.WithFields(logrus.Fields{
		"state":     state,
		"truncated": truncated,
	}).Debug("Prompt built")

	// 3. 调用大模型
	response, err := s.llm.Generate(ctx, prompt)
	if err != nil {
		return nil, s.fail(log, state, mapModelError(err))
	}
	state = models.StateCompleted
	log.WithFields(logrus.Fields{
		"state":       state,
		"token_count": response.TokenCount,
	}).Debug("Model call completed")

	// 4. 解析并校验模型输出
	parsed, err := sections.ParseSections(response.Text)
	if err != nil {
		return nil, s.fail(log, state, err)
	}
	state = models.StateParsed
	log.WithFields(logrus.Fields{
		"state":    state,
		"sections": len(parsed),
	}).Debug("Model output parsed")

	// 5. 组装提取结果
	status := models.StatusSuccess
	if truncated {
		status = models.StatusPartial
	}
	result := &models.ExtractionResult{
		Sections:         parsed,
		FileName:         filename,
		FileSize:         document.FormatFileSize(int64(len(data))),
		ProcessingStatus: status,
	}

	state = models.StateDone
	log.WithFields(logrus.Fields{
		"state":  state,
		"status": status,
	}).Info("Pipeline run finished")

	return result, nil
}

// requestLogger 构建带请求上下文字段的日志记录器
func (s *ExtractService) requestLogger(ctx context.Context, filename string, size int) *logrus.Entry {
	log := s.logger.WithFields(logrus.Fields{
		"file_name": filename,
		"file_size": size,
	})
	if traceID := models.TraceIDFromContext(ctx); traceID != "" {
		log = log.WithField("trace_id", traceID)
	}
	return log
}

// fail 记录失败转移并返回归类后的错误
func (s *ExtractService) fail(log *logrus.Entry, from models.PipelineState, err error) error {
	wrapped := models.WrapPipelineError(models.KindInternalError, err)
	log.WithFields(logrus.Fields{
		"state":      models.StateFailed,
		"from_state": from,
		"error_kind": wrapped.Kind,
	}).WithError(err).Error("Pipeline run failed")
	return wrapped
}

// mapModelError 将模型客户端错误映射为固定的流水线类别
func mapModelError(err error) *models.PipelineError {
	switch {
	case llm.IsTimeout(err):
		return models.WrapPipelineError(models.KindModelTimeout, err)
	case llm.IsUnavailable(err):
		return models.WrapPipelineError(models.KindModelUnavailable, err)
	default:
		return models.WrapPipelineError(models.KindInternalError, err)
	}
}
