package sections

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/fyerfyer/doc-agent/internal/models"
)

var (
	// codeBlockRe 匹配包裹整个回复的Markdown代码块
	codeBlockRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

	// imageRe 匹配Markdown图片语法
	imageRe = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)

	// trailingCommaRe 匹配]或}前的尾随逗号
	trailingCommaRe = regexp.MustCompile(`,\s*([\]}])`)
)

// ParseSections 将模型的原始输出解析为章节列表
// 模型可能在JSON外包裹说明文字或代码块标记，解析流程：
// 1. 去掉代码块标记
// 2. 定位最外层平衡的JSON数组
// 3. 严格解析并校验形状
// 4. 解析失败时做一次修复再重试
// 5. 逐元素清洗字段，序号按数组位置重新计算
// 解析失败返回携带原始输出的错误，绝不悄悄返回空列表
func ParseSections(raw string) ([]models.Section, error) {
	candidate := stripCodeBlock(raw)

	candidate, found := extractJSONArray(candidate)
	if !found {
		return nil, models.NewMalformedOutputError("no json array found in model output", raw)
	}

	decoded, err := decodeSectionArray(candidate)
	if err != nil {
		// 只做一次修复尝试
		repaired := normalizeJSON(candidate)
		decoded, err = decodeSectionArray(repaired)
		if err != nil {
			return nil, models.NewMalformedOutputError(
				fmt.Sprintf("model output is not a valid json array: %v", err), raw)
		}
	}

	sections := make([]models.Section, 0, len(decoded))
	for i, element := range decoded {
		object, ok := element.(map[string]any)
		if !ok {
			return nil, models.NewMalformedOutputError(
				fmt.Sprintf("array element %d is not an object", i), raw)
		}

		title, ok := coerceString(object["title"])
		if !ok {
			return nil, models.NewMalformedOutputError(
				fmt.Sprintf("title of element %d is not a scalar value", i), raw)
		}
		content, ok := coerceString(object["content"])
		if !ok {
			return nil, models.NewMalformedOutputError(
				fmt.Sprintf("content of element %d is not a scalar value", i), raw)
		}

		sections = append(sections, models.Section{
			Index:   i + 1,
			Title:   cleanTitle(title),
			Content: cleanContent(content),
		})
	}

	return sections, nil
}

// stripCodeBlock 去掉包裹整个回复的代码块标记
func stripCodeBlock(text string) string {
	trimmed := strings.TrimSpace(text)
	if m := codeBlockRe.FindStringSubmatch(trimmed); len(m) > 1 {
		return m[1]
	}
	return trimmed
}

// extractJSONArray 从文本中定位最外层平衡的JSON数组
// 从第一个[开始跟踪括号深度，忽略字符串内部的括号并处理\"转义
// 数组未闭合时返回从起点到结尾的片段，交给修复流程补全
func extractJSONArray(text string) (string, bool) {
	start := strings.IndexByte(text, '[')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}

	return text[start:], true
}

// decodeSectionArray 严格解析候选串并校验形状
func decodeSectionArray(candidate string) ([]any, error) {
	var decoded any
	if err := json.Unmarshal([]byte(candidate), &decoded); err != nil {
		return nil, err
	}

	if err := sectionListSchema.Validate(decoded); err != nil {
		return nil, err
	}

	// 形状校验通过后顶层一定是数组
	return decoded.([]any), nil
}

// normalizeJSON 对解析失败的候选串做一次轻量修复
// 移除]和}前的尾随逗号，并补全未闭合的数组
func normalizeJSON(candidate string) string {
	repaired := trailingCommaRe.ReplaceAllString(strings.TrimSpace(candidate), "$1")
	repaired = strings.TrimSuffix(strings.TrimSpace(repaired), ",")
	if !strings.HasSuffix(repaired, "]") {
		repaired += "]"
	}
	return repaired
}

// coerceString 将模型给出的字段值统一为字符串
// 数字和布尔值按字面量转换，null和缺失字段视为空串
func coerceString(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", true
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		return "", false
	}
}

// cleanTitle 去除标题中残留的Markdown标题标记
func cleanTitle(title string) string {
	trimmed := strings.TrimSpace(title)
	trimmed = strings.TrimLeft(trimmed, "#")
	return strings.TrimSpace(trimmed)
}

// cleanContent 清除内容中残留的表格行和图片语法
func cleanContent(content string) string {
	content = imageRe.ReplaceAllString(content, "")

	lines := strings.Split(content, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "|") {
			continue
		}
		kept = append(kept, line)
	}

	result := strings.Join(kept, "\n")
	for strings.Contains(result, "\n\n\n") {
		result = strings.ReplaceAll(result, "\n\n\n", "\n\n")
	}
	return strings.TrimSpace(result)
}
