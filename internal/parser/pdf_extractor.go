package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einoParser "github.com/cloudwego/eino/components/document/parser"
)

// PDFTextExtractor 基于Eino PDF Parser的文本提取器
// 默认不按页分割，整份PDF作为连续文本返回
type PDFTextExtractor struct {
	parser  *pdf.PDFParser
	logger  *log.Logger
	timeout time.Duration
}

// PDFOption PDF提取器配置选项
type PDFOption func(*PDFTextExtractor)

// WithPDFLogger 使用自定义日志记录器
func WithPDFLogger(logger *log.Logger) PDFOption {
	return func(e *PDFTextExtractor) {
		e.logger = logger
	}
}

// WithPDFTimeout 设置单次提取的超时时间
func WithPDFTimeout(timeout time.Duration) PDFOption {
	return func(e *PDFTextExtractor) {
		e.timeout = timeout
	}
}

// NewPDFTextExtractor 初始化PDF文本提取器
func NewPDFTextExtractor(ctx context.Context, options ...PDFOption) (*PDFTextExtractor, error) {
	p, err := pdf.NewPDFParser(ctx, &pdf.Config{
		// 按整份文档提取，后续的正则匹配需要连续文本
		ToPages: false,
	})
	if err != nil {
		return nil, fmt.Errorf("创建Eino PDF解析器失败: %w", err)
	}

	extractor := &PDFTextExtractor{
		parser:  p,
		logger:  log.New(os.Stderr, "[PDF提取器] ", log.LstdFlags),
		timeout: 30 * time.Second,
	}

	for _, option := range options {
		option(extractor)
	}

	return extractor, nil
}

// ExtractFromFile 从PDF文件提取全文文本和元数据
func (e *PDFTextExtractor) ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error) {
	startTime := time.Now()

	file, err := os.Open(filePath)
	if err != nil {
		return "", nil, fmt.Errorf("打开PDF文件 %s 失败: %w", filePath, err)
	}
	defer file.Close()

	if fileInfo, err := file.Stat(); err == nil {
		e.logger.Printf("开始处理PDF文件: %s (%.2f MB)", filePath, float64(fileInfo.Size())/1024/1024)
	}

	extraMeta := map[string]interface{}{
		"source_file_path": filePath,
		"extraction_time":  time.Now().Format(time.RFC3339),
	}

	text, metadata, err := e.ExtractFromReader(ctx, file, filePath, extraMeta)
	duration := time.Since(startTime)
	if err != nil {
		e.logger.Printf("PDF处理失败: %s (用时 %.2f秒)", err, duration.Seconds())
		return "", nil, err
	}

	e.logger.Printf("PDF处理完成: 提取了 %d 个字符 (用时 %.2f秒)", len(text), duration.Seconds())
	return text, metadata, nil
}

// ExtractFromReader 从io.Reader提取文本
// uri仅用于日志和元数据标识
func (e *PDFTextExtractor) ExtractFromReader(ctx context.Context, reader io.Reader, uri string, extraMeta map[string]interface{}) (string, map[string]interface{}, error) {
	if extraMeta == nil {
		extraMeta = make(map[string]interface{})
	}

	startTime := time.Now()

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	docs, err := e.parser.Parse(ctx, reader,
		einoParser.WithURI(uri),
		einoParser.WithExtraMeta(extraMeta),
	)

	duration := time.Since(startTime)
	if err != nil {
		return "", extraMeta, fmt.Errorf("eino PDF parser failed for URI %s: %w", uri, err)
	}

	if len(docs) == 0 {
		return "", extraMeta, fmt.Errorf("eino PDF parser returned no documents for URI %s", uri)
	}

	// 合并所有返回文档的内容（ToPages=false时通常只有一个）
	var content bytes.Buffer
	for i, doc := range docs {
		content.WriteString(doc.Content)
		if i < len(docs)-1 {
			content.WriteString("\n\n")
		}
	}

	finalMetadata := make(map[string]interface{})
	if docs[0].MetaData != nil {
		for k, v := range docs[0].MetaData {
			finalMetadata[k] = v
		}
	}
	for k, v := range extraMeta {
		finalMetadata[k] = v
	}
	finalMetadata["processing_duration_ms"] = duration.Milliseconds()
	finalMetadata["document_count"] = len(docs)
	finalMetadata["text_length"] = content.Len()

	return content.String(), finalMetadata, nil
}

// ExtractFromBytes 从字节数组提取文本
func (e *PDFTextExtractor) ExtractFromBytes(ctx context.Context, data []byte, uri string) (string, map[string]interface{}, error) {
	return e.ExtractFromReader(ctx, bytes.NewReader(data), uri, nil)
}
