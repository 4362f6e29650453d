package document

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/richardlehane/mscfb"
	"golang.org/x/text/encoding/charmap"
	textunicode "golang.org/x/text/encoding/unicode"
)

// 短于该长度（按rune计）的文本run视为噪声丢弃
const minTextRunLen = 4

// LegacyWordParser 旧版Word文档(.doc)解析器
// .doc是OLE复合文件，正文藏在WordDocument流里，
// 这里不解析piece table，只尽力搜刮可打印文本
type LegacyWordParser struct{}

// NewLegacyWordParser 创建一个新的旧版Word文档解析器
func NewLegacyWordParser() Parser {
	return &LegacyWordParser{}
}

// Parse 解析doc文件并尽力提取文本内容
func (p *LegacyWordParser) Parse(data []byte, filename string) (string, error) {
	reader, err := mscfb.New(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to open doc container: %v", err)
	}

	var stream []byte
	for entry, err := reader.Next(); err == nil; entry, err = reader.Next() {
		if entry.Name != "WordDocument" {
			continue
		}
		stream, err = io.ReadAll(entry)
		if err != nil {
			return "", fmt.Errorf("failed to read WordDocument stream: %v", err)
		}
		break
	}

	if stream == nil {
		return "", fmt.Errorf("WordDocument stream not found in %s", filename)
	}

	return normalizeWhitespace(scavengeText(stream)), nil
}

// scavengeText 从WordDocument流中搜刮文本
// 正文可能按UTF-16LE或单字节(cp1252)存储，两种都试，取文字产出更高的一种
// 单字节解码的产出天然是UTF-16的两倍，所以不能比原始rune数，只比文字质量得分
func scavengeText(stream []byte) string {
	var utf16Text string
	utf16Decoder := textunicode.UTF16(textunicode.LittleEndian, textunicode.IgnoreBOM).NewDecoder()
	if decoded, err := utf16Decoder.Bytes(stream); err == nil {
		utf16Text = printableRuns(string(decoded))
	}

	var byteText string
	if decoded, err := charmap.Windows1252.NewDecoder().Bytes(stream); err == nil {
		byteText = printableRuns(string(decoded))
	}

	if textScore(utf16Text) >= textScore(byteText) {
		return utf16Text
	}
	return byteText
}

// textScore 统计文本中字母、数字和空白的数量，符号杂讯不计分
func textScore(text string) int {
	score := 0
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '\n' {
			score++
		}
	}
	return score
}

// printableRuns 以不可打印字符为边界切分文本run，保留足够长的run
// Word用回车作段落分隔，0x07是表格单元格结束符
func printableRuns(text string) string {
	var runs []string
	var cur strings.Builder

	flush := func() {
		run := strings.TrimSpace(cur.String())
		cur.Reset()
		if utf8.RuneCountInString(run) >= minTextRunLen {
			runs = append(runs, run)
		}
	}

	for _, r := range text {
		switch {
		case r == '\r' || r == '\n' || r == 0x0B || r == 0x07:
			flush()
		case r == '\t' || r == ' ':
			cur.WriteRune(' ')
		case unicode.IsPrint(r) && r != unicode.ReplacementChar:
			cur.WriteRune(r)
		default:
			flush()
		}
	}
	flush()

	return strings.Join(runs, "\n")
}
