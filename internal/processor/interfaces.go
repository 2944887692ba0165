package processor

import (
	"context"
)

// TextExtractor 文本提取器接口
// PDF/DOCX/TXT提取器都实现这个接口，测试中用桩实现替换
type TextExtractor interface {
	// ExtractFromFile 从文件提取全文文本和元数据
	ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error)
}
