package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// AnalysisType 文档分析类型
type AnalysisType string

const (
	// AnalysisSummary 生成文档摘要
	AnalysisSummary AnalysisType = "summary"
	// AnalysisKeyPoints 提取文档要点
	AnalysisKeyPoints AnalysisType = "keypoints"
	// AnalysisStructure 梳理文档结构
	AnalysisStructure AnalysisType = "structure"
)

// SummaryTemplate 摘要分析提示词模板
// 包含变量：
// {{.Document}} - 文档内容
const SummaryTemplate = `请你作为一个文档分析助手，为下面提供的文档内容生成一段简明的摘要。
摘要应覆盖文档的核心内容，长度控制在300字以内，不要添加文档中没有的信息。

文档内容:
{{.Document}}

请直接输出摘要，不要重复文档内容，不要说"这篇文档"之类的开场白。`

// KeyPointsTemplate 要点提取提示词模板
const KeyPointsTemplate = `请你作为一个文档分析助手，从下面提供的文档内容中提取关键要点。
每个要点单独一行，以"- "开头，按在文档中出现的顺序排列，最多列出10条。
只提取文档中实际存在的内容，不要猜测或编造信息。

文档内容:
{{.Document}}

请直接输出要点列表，不要添加其他说明。`

// StructureTemplate 结构梳理提示词模板
const StructureTemplate = `请你作为一个文档分析助手，梳理下面提供的文档内容的组织结构。
按层级列出文档的章节脉络，每个条目一行，使用缩进表示层级关系。
只根据文档中实际存在的内容梳理，不要猜测或编造信息。

文档内容:
{{.Document}}

请直接输出结构大纲，不要添加其他说明。`

// questionSystemPrompt 问答模式的系统提示词
const questionSystemPrompt = `你是一个文档分析助手，基于下面提供的文档内容回答用户问题。
如果文档中没有足够信息回答问题，请直接说"抱歉，文档中没有找到相关信息"，不要猜测或编造信息。

文档内容:
{{.Document}}`

// analysisTemplates 分析类型到提示词模板的映射
var analysisTemplates = map[AnalysisType]string{
	AnalysisSummary:   SummaryTemplate,
	AnalysisKeyPoints: KeyPointsTemplate,
	AnalysisStructure: StructureTemplate,
}

// AnalyzeConfig 文档分析配置
type AnalyzeConfig struct {
	// 最大Token数
	MaxTokens int
	// 温度参数
	Temperature float32
	// 超时时间
	Timeout time.Duration
}

// DefaultAnalyzeConfig 默认分析配置
func DefaultAnalyzeConfig() *AnalyzeConfig {
	return &AnalyzeConfig{
		MaxTokens:   2048,
		Temperature: 0.7,
		Timeout:     60 * time.Second,
	}
}

// AnalysisResult 文档分析结果
type AnalysisResult struct {
	// 分析类型
	Type AnalysisType
	// 分析结果文本
	Answer string
	// 消耗的Token数
	TokenCount int
	// 使用的模型名称
	ModelName string
}

// Analyzer 文档分析服务
// 将文档内容套入对应模板后调用大模型
type Analyzer struct {
	Client Client         // 大模型客户端
	config *AnalyzeConfig // 配置
	mu     sync.RWMutex   // 配置互斥锁
}

// NewAnalyzer 创建新的文档分析服务
func NewAnalyzer(client Client, opts ...AnalyzeOption) *Analyzer {
	cfg := DefaultAnalyzeConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return &Analyzer{
		Client: client,
		config: cfg,
	}
}

// AnalyzeOption 分析配置选项函数类型
type AnalyzeOption func(*AnalyzeConfig)

// WithAnalyzeMaxTokens 设置最大Token数
func WithAnalyzeMaxTokens(tokens int) AnalyzeOption {
	return func(c *AnalyzeConfig) {
		c.MaxTokens = tokens
	}
}

// WithAnalyzeTemperature 设置温度参数
func WithAnalyzeTemperature(temp float32) AnalyzeOption {
	return func(c *AnalyzeConfig) {
		c.Temperature = temp
	}
}

// WithAnalyzeTimeout 设置请求超时时间
func WithAnalyzeTimeout(timeout time.Duration) AnalyzeOption {
	return func(c *AnalyzeConfig) {
		c.Timeout = timeout
	}
}

// IsValidAnalysisType 判断分析类型是否受支持
func IsValidAnalysisType(analysisType AnalysisType) bool {
	_, ok := analysisTemplates[analysisType]
	return ok
}

// Analyze 对文档内容执行指定类型的分析
func (a *Analyzer) Analyze(ctx context.Context, analysisType AnalysisType, document string) (*AnalysisResult, error) {
	if document == "" {
		return nil, NewLLMError(ErrCodeEmptyPrompt, "document content cannot be empty")
	}

	template, ok := analysisTemplates[analysisType]
	if !ok {
		return nil, NewLLMError(ErrCodeInvalidRequest,
			fmt.Sprintf("unknown analysis type: %s", analysisType))
	}

	a.mu.RLock()
	cfg := a.config
	a.mu.RUnlock()

	// 创建带超时的上下文
	ctxWithTimeout, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	// 构建提示词
	prompt := strings.ReplaceAll(template, "{{.Document}}", document)

	// 调用大模型生成分析结果
	response, err := a.Client.Generate(
		ctxWithTimeout,
		prompt,
		WithGenerateMaxTokens(cfg.MaxTokens),
		WithGenerateTemperature(cfg.Temperature),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze document: %w", err)
	}

	return &AnalysisResult{
		Type:       analysisType,
		Answer:     response.Text,
		TokenCount: response.TokenCount,
		ModelName:  response.ModelName,
	}, nil
}

// AnswerQuestion 基于文档内容回答用户问题
func (a *Analyzer) AnswerQuestion(ctx context.Context, question string, document string) (*AnalysisResult, error) {
	if question == "" {
		return nil, NewLLMError(ErrCodeEmptyPrompt, "question cannot be empty")
	}
	if document == "" {
		return nil, NewLLMError(ErrCodeEmptyPrompt, "document content cannot be empty")
	}

	a.mu.RLock()
	cfg := a.config
	a.mu.RUnlock()

	// 创建带超时的上下文
	ctxWithTimeout, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	// 文档内容放进系统消息，问题作为用户消息
	messages := []Message{
		{
			Role:    RoleSystem,
			Content: strings.ReplaceAll(questionSystemPrompt, "{{.Document}}", document),
		},
		{
			Role:    RoleUser,
			Content: question,
		},
	}

	response, err := a.Client.Chat(
		ctxWithTimeout,
		messages,
		WithChatMaxTokens(cfg.MaxTokens),
		WithChatTemperature(cfg.Temperature),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to answer question: %w", err)
	}

	return &AnalysisResult{
		Answer:     response.Text,
		TokenCount: response.TokenCount,
		ModelName:  response.ModelName,
	}, nil
}

// SetConfig 更新分析配置
func (a *Analyzer) SetConfig(opts ...AnalyzeOption) *Analyzer {
	a.mu.Lock()
	for _, opt := range opts {
		opt(a.config)
	}
	a.mu.Unlock()
	return a
}
