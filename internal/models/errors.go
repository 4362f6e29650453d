package models

import (
	"errors"
	"fmt"
)

// ErrorKind 流水线错误类别
// 类别集合是固定的，调用方可以依赖它做分支处理
type ErrorKind string

const (
	// KindUnsupportedFormat 文件扩展名不在支持集合内
	KindUnsupportedFormat ErrorKind = "unsupported_format"
	// KindExtractionFailure 支持的格式但文本提取失败
	KindExtractionFailure ErrorKind = "extraction_failure"
	// KindModelUnavailable 无法连接模型服务或服务端错误
	KindModelUnavailable ErrorKind = "model_unavailable"
	// KindModelTimeout 模型调用超时
	KindModelTimeout ErrorKind = "model_timeout"
	// KindMalformedModelOutput 模型输出无法解析为章节列表
	KindMalformedModelOutput ErrorKind = "malformed_model_output"
	// KindInternalError 未分类的内部错误
	KindInternalError ErrorKind = "internal_error"
)

// PipelineError 流水线错误
// Raw仅在malformed_model_output时携带模型的原始输出
type PipelineError struct {
	Kind    ErrorKind // 错误类别
	Message string    // 错误消息
	Raw     string    // 模型原始输出（仅解析失败时）
	Err     error     // 底层错误（可选）
}

// Error 实现error接口
func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap 返回底层错误
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// NewPipelineError 创建流水线错误
func NewPipelineError(kind ErrorKind, message string) *PipelineError {
	return &PipelineError{Kind: kind, Message: message}
}

// WrapPipelineError 将底层错误包装为流水线错误
func WrapPipelineError(kind ErrorKind, err error) *PipelineError {
	if err == nil {
		return &PipelineError{Kind: kind, Message: "unknown error"}
	}

	// 已经是流水线错误则保持类别不变
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe
	}

	return &PipelineError{Kind: kind, Message: err.Error(), Err: err}
}

// NewMalformedOutputError 创建模型输出解析错误，保留原始输出
func NewMalformedOutputError(message string, raw string) *PipelineError {
	return &PipelineError{
		Kind:    KindMalformedModelOutput,
		Message: message,
		Raw:     raw,
	}
}

// KindOf 返回错误的流水线类别，未分类的错误归为internal_error
func KindOf(err error) ErrorKind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindInternalError
}
