package document

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fyerfyer/doc-agent/internal/models"
)

// Parser 文档解析器接口
// 负责将某一种格式的文档字节解析为纯文本
type Parser interface {
	// Parse 解析文档字节，返回文本内容
	// filename用于日志和错误消息，分发已经在工厂完成
	Parse(data []byte, filename string) (string, error)
}

// ContentType 表示文档的内容类型
type ContentType string

const (
	// PlainText 纯文本类型
	PlainText ContentType = "plaintext"
	// Markdown 文档类型
	Markdown ContentType = "markdown"
	// PDF 文档类型
	PDF ContentType = "pdf"
	// Word 现代Word文档类型(.docx)
	Word ContentType = "word"
	// LegacyWord 旧版Word文档类型(.doc)
	LegacyWord ContentType = "legacyword"
	// Unknown 未知类型
	Unknown ContentType = "unknown"
)

// supportedExtensions 支持的文件扩展名到内容类型的映射
// 扩展名集合只在这里定义一次，提取分发和API层的早期拒绝都引用它
var supportedExtensions = map[string]ContentType{
	".txt":  PlainText,
	".md":   Markdown,
	".pdf":  PDF,
	".docx": Word,
	".doc":  LegacyWord,
}

// extensionOrder 扩展名的展示顺序，用于错误消息和supported-formats接口
var extensionOrder = []string{".txt", ".md", ".pdf", ".docx", ".doc"}

// SupportedExtensions 返回支持的扩展名列表
func SupportedExtensions() []string {
	exts := make([]string, len(extensionOrder))
	copy(exts, extensionOrder)
	return exts
}

// IsSupported 判断文件名的扩展名是否在支持集合内
func IsSupported(filename string) bool {
	return detectContentType(filename) != Unknown
}

// detectContentType 根据文件扩展名检测内容类型
func detectContentType(filename string) ContentType {
	ext := strings.ToLower(filepath.Ext(filename))
	if contentType, ok := supportedExtensions[ext]; ok {
		return contentType
	}
	return Unknown
}

// UnsupportedFormatError 构造扩展名不受支持的错误
// 错误消息中列出完整的支持集合
func UnsupportedFormatError(filename string) *models.PipelineError {
	return models.NewPipelineError(
		models.KindUnsupportedFormat,
		fmt.Sprintf("unsupported file format: %s, supported formats: %s",
			strings.ToLower(filepath.Ext(filename)),
			strings.Join(SupportedExtensions(), ", ")),
	)
}

// ParserFactory 解析器工厂函数，根据文件类型创建对应的解析器
func ParserFactory(filename string) (Parser, error) {
	contentType := detectContentType(filename)

	switch contentType {
	case PlainText:
		return NewPlainTextParser(), nil
	case Markdown:
		return NewMarkdownParser(), nil
	case PDF:
		return NewPDFParser(), nil
	case Word:
		return NewWordParser(), nil
	case LegacyWord:
		return NewLegacyWordParser(), nil
	default:
		return nil, UnsupportedFormatError(filename)
	}
}

// Extract 提取文档的纯文本内容
// 扩展名不在支持集合内返回unsupported_format，解析失败返回extraction_failure
// 非空文件提取出零文本不算错误，空字符串继续向下游流动
func Extract(data []byte, filename string) (string, error) {
	parser, err := ParserFactory(filename)
	if err != nil {
		return "", err
	}

	text, err := parser.Parse(data, filename)
	if err != nil {
		return "", models.WrapPipelineError(models.KindExtractionFailure, err)
	}

	return text, nil
}

// normalizeWhitespace 规范化文本中的空白符
// 保留段落边界（空行），压缩行内连续空白，最多保留一个空行
func normalizeWhitespace(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	text = strings.Join(lines, "\n")

	// 连续多个空行压缩为一个
	for strings.Contains(text, "\n\n\n") {
		text = strings.ReplaceAll(text, "\n\n\n", "\n\n")
	}

	return strings.TrimSpace(text)
}
