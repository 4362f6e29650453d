package document

import (
	"strings"
	"unicode/utf8"
)

// sentenceDelimiters 句子结束符，截断回退时使用
var sentenceDelimiters = []rune{'.', '!', '?', '；', '。', '！', '？'}

// SplitterConfig 分段器配置
type SplitterConfig struct {
	MaxChars int // 文本预算（按rune计），0表示不限制
}

// DefaultSplitterConfig 返回默认分段器配置
func DefaultSplitterConfig() SplitterConfig {
	return SplitterConfig{
		MaxChars: 12000,
	}
}

// TextSplitter 文本分段器
// 负责把超出预算的文档文本在自然边界处截断
type TextSplitter struct {
	config SplitterConfig
}

// NewTextSplitter 创建新的文本分段器
func NewTextSplitter(config SplitterConfig) *TextSplitter {
	return &TextSplitter{
		config: config,
	}
}

// Truncate 将超出预算的文本截断到预算内
// 优先在段落边界截断，单个超长段落退化为句子边界，最后按rune硬截断
// 返回截断后的文本和是否发生了截断
func (s *TextSplitter) Truncate(text string) (string, bool) {
	if s.config.MaxChars <= 0 || utf8.RuneCountInString(text) <= s.config.MaxChars {
		return text, false
	}

	paragraphs := s.splitByParagraph(text)

	var sb strings.Builder
	total := 0
	for _, p := range paragraphs {
		pLen := utf8.RuneCountInString(p)
		sep := 0
		if sb.Len() > 0 {
			sep = 2
		}
		if total+sep+pLen > s.config.MaxChars {
			break
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(p)
		total += sep + pLen
	}

	// 第一个段落就超出预算时退化为句内截断
	if sb.Len() == 0 && len(paragraphs) > 0 {
		return s.truncateAtSentence(paragraphs[0]), true
	}

	return sb.String(), true
}

// splitByParagraph 按段落分割文本
func (s *TextSplitter) splitByParagraph(text string) []string {
	// 规范化段落分隔符
	text = strings.ReplaceAll(text, "\r\n", "\n")

	// 按空行分段
	paragraphs := strings.Split(text, "\n\n")

	// 过滤空段落
	var result []string
	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}

	return result
}

// truncateAtSentence 在预算内最后一个句子结束符处截断，找不到则按rune硬截断
func (s *TextSplitter) truncateAtSentence(text string) string {
	runes := []rune(text)
	if len(runes) <= s.config.MaxChars {
		return text
	}
	window := runes[:s.config.MaxChars]

	for i := len(window) - 1; i >= s.config.MaxChars/2; i-- {
		for _, d := range sentenceDelimiters {
			if window[i] == d {
				return strings.TrimSpace(string(window[:i+1]))
			}
		}
	}

	return strings.TrimSpace(string(window))
}
