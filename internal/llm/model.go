package llm

import "time"

// MessageRole 消息角色类型
type MessageRole string

const (
	// RoleSystem 系统角色
	RoleSystem MessageRole = "system"
	// RoleUser 用户角色
	RoleUser MessageRole = "user"
	// RoleAssistant 助手角色
	RoleAssistant MessageRole = "assistant"
)

// Message 对话消息结构
type Message struct {
	Role    MessageRole `json:"role"`    // 角色
	Content string      `json:"content"` // 内容
}

// Response 统一的响应结构
type Response struct {
	Text       string    // 生成的文本
	Messages   []Message // 消息列表（如果是对话）
	TokenCount int       // 使用的token数
	ModelName  string    // 使用的模型名称
	FinishTime time.Time // 完成时间
}

// 常用模型名称
const (
	// ModelLlama31 Llama 3.1模型（默认）
	ModelLlama31 = "llama3.1"
	// ModelLlama32 Llama 3.2模型（更小更快）
	ModelLlama32 = "llama3.2"
	// ModelQwen25 通义千问2.5开源模型（中文能力较强）
	ModelQwen25 = "qwen2.5"
	// ModelDeepSeekR1 DeepSeek-R1推理模型
	ModelDeepSeekR1 = "deepseek-r1"
)
