package model

import "mime/multipart"

// ExtractSectionsRequest 章节提取请求
type ExtractSectionsRequest struct {
	File *multipart.FileHeader `form:"file" binding:"required"` // 要分析的文档文件
}

// AnalyzeRequest 文档分析请求
// Mode为question时必须提供Question
type AnalyzeRequest struct {
	File     *multipart.FileHeader `form:"file" binding:"required"`      // 要分析的文档文件
	Mode     string                `form:"mode" binding:"required"`      // 分析模式：summary、keypoints、structure、question
	Question string                `form:"question" binding:"omitempty"` // question模式下的问题内容
}
