package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/ollama/ollama/api"
)

const (
	// 本地Ollama服务的默认端点
	defaultOllamaBaseURL = "http://localhost:11434"

	// 模型在显存中的保活时间
	ollamaKeepAlive = 5 * time.Minute
)

// OllamaClient Ollama模型服务客户端实现
// 基于官方Go客户端，失败的调用最多重试一次，重试前等待固定的短延迟
type OllamaClient struct {
	client      *api.Client   // 官方API客户端
	baseURL     string        // 服务端点
	model       string        // 模型名称
	timeout     time.Duration // 单次请求超时
	maxRetries  int           // 最大重试次数
	retryDelay  time.Duration // 重试前的固定延迟
	maxTokens   int           // 最大生成Token数
	temperature float32       // 温度参数
	topP        float32       // topP参数
}

// NewOllamaClient 创建新的Ollama客户端
func NewOllamaClient(opts ...Option) (Client, error) {
	// 创建配置
	cfg := NewConfig(opts...)

	// 校验采样温度范围
	if cfg.Temperature < 0 || cfg.Temperature > 1 {
		return nil, NewLLMError(ErrCodeInvalidRequest, ErrMsgInvalidTemperature)
	}

	// 确定API端点
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, NewLLMError(ErrCodeInvalidRequest,
			fmt.Sprintf("invalid base url %q: %v", baseURL, err))
	}

	client := &OllamaClient{
		client:      api.NewClient(parsed, &http.Client{}),
		baseURL:     baseURL,
		model:       cfg.Model,
		timeout:     cfg.Timeout,
		maxRetries:  cfg.MaxRetries,
		retryDelay:  cfg.RetryDelay,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		topP:        cfg.TopP,
	}

	return client, nil
}

// Name 返回模型名称
func (c *OllamaClient) Name() string {
	return c.model
}

// BaseURL 返回服务端点
func (c *OllamaClient) BaseURL() string {
	return c.baseURL
}

// Generate 根据提示词生成回答
func (c *OllamaClient) Generate(ctx context.Context, prompt string, options ...GenerateOption) (*Response, error) {
	if prompt == "" {
		return nil, NewLLMError(ErrCodeEmptyPrompt, ErrMsgEmptyPrompt)
	}

	// 应用选项
	opts := &GenerateOptions{}
	for _, opt := range options {
		opt(opts)
	}

	stream := false
	req := &api.GenerateRequest{
		Model:     c.model,
		Prompt:    prompt,
		Stream:    &stream,
		KeepAlive: &api.Duration{Duration: ollamaKeepAlive},
		Options:   c.requestOptions(opts.MaxTokens, opts.Temperature, opts.TopP, opts.TopK),
	}

	var text strings.Builder
	var tokenCount int
	err := c.callWithRetry(ctx, func(callCtx context.Context) error {
		text.Reset()
		return c.client.Generate(callCtx, req, func(resp api.GenerateResponse) error {
			text.WriteString(resp.Response)
			if resp.Done {
				tokenCount = resp.PromptEvalCount + resp.EvalCount
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return &Response{
		Text:       text.String(),
		TokenCount: tokenCount,
		ModelName:  c.model,
		FinishTime: time.Now(),
	}, nil
}

// Chat 进行多轮对话
func (c *OllamaClient) Chat(ctx context.Context, messages []Message, options ...ChatOption) (*Response, error) {
	if len(messages) == 0 {
		return nil, NewLLMError(ErrCodeInvalidRequest, "messages cannot be empty")
	}

	// 应用选项
	opts := &ChatOptions{}
	for _, opt := range options {
		opt(opts)
	}

	apiMessages := make([]api.Message, len(messages))
	for i, m := range messages {
		apiMessages[i] = api.Message{
			Role:    string(m.Role),
			Content: m.Content,
		}
	}

	stream := false
	req := &api.ChatRequest{
		Model:     c.model,
		Messages:  apiMessages,
		Stream:    &stream,
		KeepAlive: &api.Duration{Duration: ollamaKeepAlive},
		Options:   c.requestOptions(opts.MaxTokens, opts.Temperature, opts.TopP, opts.TopK),
	}

	var text strings.Builder
	var tokenCount int
	err := c.callWithRetry(ctx, func(callCtx context.Context) error {
		text.Reset()
		return c.client.Chat(callCtx, req, func(resp api.ChatResponse) error {
			text.WriteString(resp.Message.Content)
			if resp.Done {
				tokenCount = resp.PromptEvalCount + resp.EvalCount
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	answer := text.String()
	return &Response{
		Text: answer,
		Messages: []Message{
			{Role: RoleAssistant, Content: answer},
		},
		TokenCount: tokenCount,
		ModelName:  c.model,
		FinishTime: time.Now(),
	}, nil
}

// requestOptions 组装请求的模型参数
func (c *OllamaClient) requestOptions(maxTokens *int, temperature *float32, topP *float32, topK *int) map[string]any {
	options := map[string]any{
		"temperature": c.temperature,
	}
	if temperature != nil {
		options["temperature"] = *temperature
	}

	if c.topP > 0 {
		options["top_p"] = c.topP
	}
	if topP != nil {
		options["top_p"] = *topP
	}

	if c.maxTokens > 0 {
		options["num_predict"] = c.maxTokens
	}
	if maxTokens != nil {
		options["num_predict"] = *maxTokens
	}

	if topK != nil {
		options["top_k"] = *topK
	}

	return options
}

// callWithRetry 执行一次模型调用
// 每次尝试带独立的超时，失败后最多重试maxRetries次，重试间隔固定
func (c *OllamaClient) callWithRetry(ctx context.Context, call func(context.Context) error) error {
	attempts := uint(c.maxRetries) + 1

	return retry.Do(
		func() error {
			callCtx := ctx
			if c.timeout > 0 {
				var cancel context.CancelFunc
				callCtx, cancel = context.WithTimeout(ctx, c.timeout)
				defer cancel()
			}
			if err := call(callCtx); err != nil {
				return c.classifyError(err)
			}
			return nil
		},
		retry.Attempts(attempts),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
		retry.RetryIf(func(err error) bool {
			return IsTimeout(err) || IsUnavailable(err)
		}),
	)
}

// classifyError 将底层调用错误归类为LLM错误
func (c *OllamaClient) classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return NewLLMError(ErrCodeTimeout, ErrMsgTimeout)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewLLMError(ErrCodeTimeout, ErrMsgTimeout)
	}

	var statusErr api.StatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusNotFound:
			return NewLLMError(ErrCodeModelNotFound,
				fmt.Sprintf("model %q not found on the server, pull it first", c.model))
		case statusErr.StatusCode >= 500:
			return WrapError(err, ErrCodeServerError)
		default:
			return WrapError(err, ErrCodeInvalidRequest)
		}
	}

	// 连接被拒绝等网络层错误
	return WrapError(err, ErrCodeNetworkError)
}

// 在包初始化时注册Ollama客户端
func init() {
	RegisterClient("ollama", NewOllamaClient)
}
