package document

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFParser PDF文档解析器
type PDFParser struct{}

// NewPDFParser 创建一个新的PDF解析器
func NewPDFParser() Parser {
	return &PDFParser{}
}

// Parse 解析PDF文件并提取其文本内容
// 按页码顺序遍历内容流，解析文本算子拼出纯文本
func (p *PDFParser) Parse(data []byte, filename string) (string, error) {
	conf := model.NewDefaultConfiguration()

	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return "", fmt.Errorf("failed to read pdf file: %v", err)
	}

	var allText strings.Builder
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
		if err != nil || r == nil {
			continue
		}

		stream, err := io.ReadAll(r)
		if err != nil || len(stream) == 0 {
			continue
		}

		pageText := textFromContentStream(stream)
		if pageText == "" {
			continue
		}

		if allText.Len() > 0 {
			allText.WriteString("\n\n")
		}
		allText.WriteString(pageText)
	}

	// 非空文件提取不到文本不算错误
	return normalizeWhitespace(allText.String()), nil
}

// pdfStringRe 匹配括号包裹的PDF字符串字面量
var pdfStringRe = regexp.MustCompile(`\(([^)]*)\)`)

// textFromContentStream 解析PDF内容流中的文本算子
func textFromContentStream(data []byte) string {
	var sb strings.Builder

	lines := bytes.Split(data, []byte{'\n'})
	for _, line := range lines {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		switch {
		// Tj/TJ算子：(text) Tj 或 [(text) -100 (more)] TJ
		// 写入器可能把整个文本对象放在一行里(BT ... Td (text) Tj ET)，所以不能只看行尾
		case bytes.Contains(line, []byte(" Tj")), bytes.Contains(line, []byte(" TJ")):
			for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
				sb.WriteString(decodePDFString(m[1]))
			}
			sb.WriteString("\n")

		// '算子：换行并显示文本
		case bytes.HasSuffix(line, []byte("'")) && bytes.Contains(line, []byte("(")):
			for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
				sb.WriteString("\n")
				sb.WriteString(decodePDFString(m[1]))
			}

		// Td/TD算子：文本定位，补一个空格
		case bytes.HasSuffix(line, []byte("Td")), bytes.HasSuffix(line, []byte("TD")):
			if sb.Len() > 0 {
				sb.WriteString(" ")
			}

		// T*算子：移动到下一行
		case bytes.Equal(line, []byte("T*")):
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// decodePDFString 处理PDF字符串中的转义序列
func decodePDFString(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			sb.WriteByte(raw[i])
			continue
		}

		i++
		switch raw[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '\\', '(', ')':
			sb.WriteByte(raw[i])
		default:
			// 八进制转义，如\040表示空格
			if raw[i] >= '0' && raw[i] <= '7' {
				val := int(raw[i] - '0')
				for j := 0; j < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; j++ {
					i++
					val = val*8 + int(raw[i]-'0')
				}
				sb.WriteByte(byte(val))
			} else {
				sb.WriteByte(raw[i])
			}
		}
	}
	return sb.String()
}
