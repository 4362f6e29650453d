package document

import (
	"strings"

	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/parser"
)

// MarkdownParser Markdown文档解析器
// 按文档顺序线性化AST：标题重新输出为#前缀行，表格和图片节点被丢弃
type MarkdownParser struct{}

// NewMarkdownParser 创建新的Markdown解析器
func NewMarkdownParser() Parser {
	return &MarkdownParser{}
}

// Parse 解析Markdown内容并提取文本
func (p *MarkdownParser) Parse(data []byte, filename string) (string, error) {
	text, err := decodeText(data)
	if err != nil {
		return "", err
	}

	// 创建Markdown解析器，CommonExtensions已包含表格扩展
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs
	mdParser := parser.NewWithExtensions(extensions)

	doc := mdParser.Parse([]byte(text))

	var sb strings.Builder
	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		switch n := node.(type) {
		case *ast.Table:
			// 表格不进入提取文本
			return ast.SkipChildren
		case *ast.Image:
			// 图片连同替代文本一起丢弃
			return ast.SkipChildren
		case *ast.HTMLBlock, *ast.HTMLSpan:
			// 原始HTML可能携带表格或图片，整体丢弃
			return ast.SkipChildren
		case *ast.Heading:
			if entering {
				sb.WriteString("\n\n")
				sb.WriteString(strings.Repeat("#", n.Level))
				sb.WriteString(" ")
			} else {
				sb.WriteString("\n\n")
			}
		case *ast.Paragraph:
			if !entering {
				sb.WriteString("\n\n")
			}
		case *ast.ListItem:
			if entering {
				sb.WriteString("- ")
			}
		case *ast.CodeBlock:
			if entering {
				sb.Write(n.Literal)
				sb.WriteString("\n\n")
			}
		case *ast.Code:
			if entering {
				sb.Write(n.Literal)
			}
		case *ast.Text:
			if entering {
				sb.Write(n.Literal)
			}
		case *ast.Softbreak, *ast.Hardbreak:
			if entering {
				sb.WriteString("\n")
			}
		case *ast.HorizontalRule:
			if entering {
				sb.WriteString("\n\n")
			}
		}
		return ast.GoToNext
	})

	return normalizeWhitespace(sb.String()), nil
}
