package models

// ProcessingStatus 文档处理状态类型
type ProcessingStatus string

const (
	// StatusSuccess 提取完整成功
	StatusSuccess ProcessingStatus = "success"
	// StatusPartial 提取成功但文本被截断
	StatusPartial ProcessingStatus = "partial"
	// StatusFailed 提取失败
	StatusFailed ProcessingStatus = "failed"
)

// PipelineState 流水线运行状态
// 状态只能按顺序前进，任意状态都可以转移到失败态
type PipelineState string

const (
	// StateReceived 已接收文件
	StateReceived PipelineState = "received"
	// StateExtracted 文本提取完成
	StateExtracted PipelineState = "extracted"
	// StatePrompted 提示词构造完成
	StatePrompted PipelineState = "prompted"
	// StateCompleted 模型调用完成
	StateCompleted PipelineState = "completed"
	// StateParsed 模型输出解析完成
	StateParsed PipelineState = "parsed"
	// StateDone 流水线结束
	StateDone PipelineState = "done"
	// StateFailed 流水线失败
	StateFailed PipelineState = "failed"
)

// Section 文档章节
// index为章节在结果列表中的位置（从1开始），由解析器重新计算
type Section struct {
	Index   int    `json:"index"`   // 章节序号
	Title   string `json:"title"`   // 章节标题，不含markdown标记
	Content string `json:"content"` // 章节内容，可能为空字符串
}

// ExtractionResult 章节提取结果
type ExtractionResult struct {
	Sections         []Section        `json:"sections"`          // 章节列表
	FileName         string           `json:"file_name"`         // 原始文件名
	FileSize         string           `json:"file_size"`         // 人类可读的文件大小，如"12.34 KB"
	ProcessingStatus ProcessingStatus `json:"processing_status"` // 处理状态
}

// AnalysisResult 文档分析结果
type AnalysisResult struct {
	Mode             string           `json:"mode"`              // 分析模式
	Answer           string           `json:"answer"`            // 分析结果文本
	FileName         string           `json:"file_name"`         // 原始文件名
	FileSize         string           `json:"file_size"`         // 人类可读的文件大小
	ProcessingStatus ProcessingStatus `json:"processing_status"` // 处理状态
}
