package model

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`               // 响应状态码，0表示成功
	Message string      `json:"message"`            // 响应消息
	Data    interface{} `json:"data,omitempty"`     // 响应数据，可能为空
	TraceID string      `json:"trace_id,omitempty"` // 调用链追踪ID
}

// NewSuccessResponse 创建成功响应
func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Code:    0,
		Message: "success",
		Data:    data,
	}
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(code int, message string) *Response {
	return &Response{
		Code:    code,
		Message: message,
	}
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status  string `json:"status"`   // 服务状态
	AIModel string `json:"ai_model"` // 使用的模型名称
	BaseURL string `json:"base_url"` // 模型服务地址
}

// SupportedFormatsResponse 支持格式查询响应
type SupportedFormatsResponse struct {
	SupportedFormats []string `json:"supported_formats"` // 支持的文件扩展名列表
	Description      string   `json:"description"`       // 说明
}

// ServiceInfoResponse 服务信息响应
type ServiceInfoResponse struct {
	Message     string            `json:"message"`     // 服务名称
	Version     string            `json:"version"`     // 版本号
	Description string            `json:"description"` // 服务描述
	Endpoints   map[string]string `json:"endpoints"`   // 主要端点
}
