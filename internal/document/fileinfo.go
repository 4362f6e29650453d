package document

import (
	"fmt"
	"path/filepath"
	"strings"
)

// 文件大小单位
const (
	sizeKB = 1 << 10
	sizeMB = 1 << 20
	sizeGB = 1 << 30
)

// FileInfo 上传文件的元数据
type FileInfo struct {
	Name      string `json:"name"`       // 文件名
	Size      string `json:"size"`       // 人类可读的文件大小
	SizeBytes int64  `json:"size_bytes"` // 文件大小（字节）
	Extension string `json:"extension"`  // 文件扩展名
	Supported bool   `json:"supported"`  // 是否为支持的格式
}

// GetFileInfo 构造文件元数据
func GetFileInfo(filename string, sizeBytes int64) FileInfo {
	return FileInfo{
		Name:      filename,
		Size:      FormatFileSize(sizeBytes),
		SizeBytes: sizeBytes,
		Extension: strings.ToLower(filepath.Ext(filename)),
		Supported: IsSupported(filename),
	}
}

// FormatFileSize 将字节数格式化为人类可读的大小字符串
// 纯函数，只用于展示
func FormatFileSize(size int64) string {
	switch {
	case size >= sizeGB:
		return fmt.Sprintf("%.2f GB", float64(size)/float64(sizeGB))
	case size >= sizeMB:
		return fmt.Sprintf("%.2f MB", float64(size)/float64(sizeMB))
	default:
		return fmt.Sprintf("%.2f KB", float64(size)/float64(sizeKB))
	}
}
