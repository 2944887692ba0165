package parser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MultiFormatExtractor 按文件扩展名分发到对应提取器
// 支持 .pdf / .docx / .txt
type MultiFormatExtractor struct {
	pdf  *PDFTextExtractor
	docx *DocxTextExtractor
}

// NewMultiFormatExtractor 创建多格式文本提取器
func NewMultiFormatExtractor(ctx context.Context, pdfOptions ...PDFOption) (*MultiFormatExtractor, error) {
	pdfExtractor, err := NewPDFTextExtractor(ctx, pdfOptions...)
	if err != nil {
		return nil, err
	}
	return &MultiFormatExtractor{
		pdf:  pdfExtractor,
		docx: NewDocxTextExtractor(),
	}, nil
}

// SupportedExt 判断扩展名是否受支持
func SupportedExt(filePath string) bool {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".pdf", ".docx", ".txt":
		return true
	}
	return false
}

// ExtractFromFile 提取文件全文文本和元数据
// 不支持的扩展名或底层提取失败都作为提取错误返回
func (e *MultiFormatExtractor) ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".pdf":
		return e.pdf.ExtractFromFile(ctx, filePath)
	case ".docx":
		return e.docx.ExtractFromFile(ctx, filePath)
	case ".txt":
		data, err := os.ReadFile(filePath)
		if err != nil {
			return "", nil, fmt.Errorf("读取文本文件 %s 失败: %w", filePath, err)
		}
		metadata := map[string]interface{}{
			"source_file_path": filePath,
			"text_length":      len(data),
		}
		return string(data), metadata, nil
	default:
		return "", nil, fmt.Errorf("不支持的文件类型: %s", filepath.Ext(filePath))
	}
}
