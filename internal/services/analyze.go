package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/doc-agent/internal/document"
	"github.com/fyerfyer/doc-agent/internal/llm"
	"github.com/fyerfyer/doc-agent/internal/models"
)

// AnalysisModeQuestion 自由问答模式
// 其余模式见llm.AnalysisType
const AnalysisModeQuestion = "question"

// analyzeMaxChars 分析路径的文本预算
// 分析只需要抓住文档大意，截断比章节提取更激进
const analyzeMaxChars = 3000

// AnalyzeService 文档分析服务
// 复用提取流水线的前半段，把文本交给分析器而不是章节解析器
type AnalyzeService struct {
	analyzer *llm.Analyzer          // 文档分析器
	splitter *document.TextSplitter // 超长文本截断器
	logger   *logrus.Logger         // 日志记录器
}

// AnalyzeOption 分析服务配置选项
type AnalyzeOption func(*AnalyzeService)

// NewAnalyzeService 创建文档分析服务实例
func NewAnalyzeService(analyzer *llm.Analyzer, opts ...AnalyzeOption) *AnalyzeService {
	service := &AnalyzeService{
		analyzer: analyzer,
		splitter: document.NewTextSplitter(document.SplitterConfig{MaxChars: analyzeMaxChars}),
		logger:   logrus.New(),
	}

	// 应用配置选项
	for _, opt := range opts {
		opt(service)
	}

	return service
}

// WithAnalyzeSplitter 设置文本截断器
func WithAnalyzeSplitter(splitter *document.TextSplitter) AnalyzeOption {
	return func(s *AnalyzeService) {
		if splitter != nil {
			s.splitter = splitter
		}
	}
}

// WithAnalyzeLogger 设置日志记录器
func WithAnalyzeLogger(logger *logrus.Logger) AnalyzeOption {
	return func(s *AnalyzeService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// ValidAnalysisModes 返回受支持的分析模式列表
func ValidAnalysisModes() []string {
	return []string{
		string(llm.AnalysisSummary),
		string(llm.AnalysisKeyPoints),
		string(llm.AnalysisStructure),
		AnalysisModeQuestion,
	}
}

// IsValidAnalysisMode 判断分析模式是否受支持
func IsValidAnalysisMode(mode string) bool {
	return mode == AnalysisModeQuestion || llm.IsValidAnalysisType(llm.AnalysisType(mode))
}

// Analyze 对上传的文档执行指定模式的分析
// mode为question时必须提供question参数
func (s *AnalyzeService) Analyze(ctx context.Context, data []byte, filename string, mode string, question string) (*models.AnalysisResult, error) {
	log := s.logger.WithFields(logrus.Fields{
		"file_name": filename,
		"file_size": len(data),
		"mode":      mode,
	})
	if traceID := models.TraceIDFromContext(ctx); traceID != "" {
		log = log.WithField("trace_id", traceID)
	}

	log.Info("Document analysis started")

	// 1. 按扩展名提取文本
	text, err := document.Extract(data, filename)
	if err != nil {
		wrapped := models.WrapPipelineError(models.KindInternalError, err)
		log.WithField("error_kind", wrapped.Kind).WithError(err).Error("Document analysis failed")
		return nil, wrapped
	}

	// 2. 截断超长文本
	text, truncated := s.splitter.Truncate(text)

	// 3. 调用分析器
	var analysis *llm.AnalysisResult
	if mode == AnalysisModeQuestion {
		analysis, err = s.analyzer.AnswerQuestion(ctx, question, text)
	} else {
		analysis, err = s.analyzer.Analyze(ctx, llm.AnalysisType(mode), text)
	}
	if err != nil {
		wrapped := mapModelError(err)
		log.WithField("error_kind", wrapped.Kind).WithError(err).Error("Document analysis failed")
		return nil, wrapped
	}

	// 4. 组装分析结果
	status := models.StatusSuccess
	if truncated {
		status = models.StatusPartial
	}
	result := &models.AnalysisResult{
		Mode:             mode,
		Answer:           analysis.Answer,
		FileName:         filename,
		FileSize:         document.FormatFileSize(int64(len(data))),
		ProcessingStatus: status,
	}

	log.WithFields(logrus.Fields{
		"status":       status,
		"answer_chars": len(analysis.Answer),
	}).Info("Document analysis finished")

	return result, nil
}
