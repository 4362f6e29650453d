package document

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/fumiama/go-docx"
)

// WordParser 现代Word文档(.docx)解析器
// 按文档顺序走正文条目：标题样式的段落输出为#前缀行，表格条目跳过，
// 只读取文本run，图片等绘图元素不会出现在结果里
type WordParser struct{}

// NewWordParser 创建一个新的Word文档解析器
func NewWordParser() Parser {
	return &WordParser{}
}

// Parse 解析docx文件并提取文本内容
func (p *WordParser) Parse(data []byte, filename string) (string, error) {
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx file: %v", err)
	}

	var sb strings.Builder
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			// 表格等非段落条目不进入正文
			continue
		}

		text := paragraphText(para)
		if text == "" {
			continue
		}

		if level := headingLevel(para); level > 0 {
			sb.WriteString(strings.Repeat("#", level))
			sb.WriteString(" ")
		}
		sb.WriteString(text)
		sb.WriteString("\n\n")
	}

	return normalizeWhitespace(sb.String()), nil
}

// headingLevel 根据段落样式判断标题级别，非标题返回0
// 兼容"Heading1"和"heading 1"两种样式命名
func headingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}

	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	if !strings.HasPrefix(style, "heading") {
		return 0
	}

	level, err := strconv.Atoi(strings.TrimPrefix(style, "heading"))
	if err != nil || level < 1 || level > 6 {
		return 0
	}
	return level
}

// paragraphText 拼接段落中所有文本run的内容
func paragraphText(para *docx.Paragraph) string {
	var sb strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				sb.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(sb.String())
}
