package parser

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// DocxTextExtractor 从DOCX文档提取纯文本
// DOCX本质是zip包，正文位于word/document.xml，逐段拼接w:t节点文本即可
// 语料中没有可用的DOCX解析库，这里直接读zip+XML
type DocxTextExtractor struct{}

// NewDocxTextExtractor 创建DOCX文本提取器
func NewDocxTextExtractor() *DocxTextExtractor {
	return &DocxTextExtractor{}
}

// ExtractFromFile 从DOCX文件提取全文文本和元数据
func (e *DocxTextExtractor) ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error) {
	reader, err := zip.OpenReader(filePath)
	if err != nil {
		return "", nil, fmt.Errorf("打开DOCX文件 %s 失败: %w", filePath, err)
	}
	defer reader.Close()

	var docFile *zip.File
	for _, f := range reader.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", nil, fmt.Errorf("DOCX文件 %s 中缺少word/document.xml", filePath)
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", nil, fmt.Errorf("读取DOCX正文失败: %w", err)
	}
	defer rc.Close()

	text, err := extractDocxText(rc)
	if err != nil {
		return "", nil, fmt.Errorf("解析DOCX正文XML失败: %w", err)
	}

	metadata := map[string]interface{}{
		"source_file_path": filePath,
		"text_length":      len(text),
	}
	return text, metadata, nil
}

// extractDocxText 流式遍历document.xml，收集w:t文本，w:p结束处换行
func extractDocxText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var builder strings.Builder
	var inText bool

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				builder.WriteString("\n")
			case "tab":
				builder.WriteString("\t")
			case "br":
				builder.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				builder.Write(t)
			}
		}
	}

	return strings.TrimSpace(builder.String()), nil
}
