package processor

import (
	"errors"
	"fmt"
)

// 基础错误类型
var (
	// ErrExtractFailed 文件不可读或不是有效文档，该文件的处理到此为止
	ErrExtractFailed = errors.New("提取简历文本失败")
	// ErrUnsupportedFormat 扩展名不在支持范围内
	ErrUnsupportedFormat = errors.New("不支持的简历文件格式")
	// ErrStoreFailed 上传解析结果失败
	ErrStoreFailed = errors.New("存储解析结果失败")
	// ErrPublishFailed 发布解析任务消息失败
	ErrPublishFailed = errors.New("发布解析任务消息失败")
	// ErrDatabaseFailed 数据库操作失败
	ErrDatabaseFailed = errors.New("数据库操作失败")
)

// ParseError 包含文件和操作上下文的解析错误
type ParseError struct {
	FilePath string
	Op       string
	BaseErr  error
	Detail   string
}

func (e *ParseError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (操作:%s, 文件:%s): %s", e.BaseErr, e.Op, e.FilePath, e.Detail)
	}
	return fmt.Sprintf("%s (操作:%s, 文件:%s)", e.BaseErr, e.Op, e.FilePath)
}

func (e *ParseError) Unwrap() error {
	return e.BaseErr
}

// Is 支持errors.Is按基础错误类型比较
func (e *ParseError) Is(target error) bool {
	return errors.Is(e.BaseErr, target)
}

// NewExtractError 构造提取失败错误
func NewExtractError(filePath, detail string) error {
	return &ParseError{
		FilePath: filePath,
		Op:       "extract",
		BaseErr:  ErrExtractFailed,
		Detail:   detail,
	}
}

// NewUnsupportedFormatError 构造格式不支持错误
func NewUnsupportedFormatError(filePath, detail string) error {
	return &ParseError{
		FilePath: filePath,
		Op:       "extract",
		BaseErr:  ErrUnsupportedFormat,
		Detail:   detail,
	}
}

// NewStoreError 构造存储失败错误
func NewStoreError(filePath, detail string) error {
	return &ParseError{
		FilePath: filePath,
		Op:       "store",
		BaseErr:  ErrStoreFailed,
		Detail:   detail,
	}
}

// NewPublishError 构造消息发布失败错误
func NewPublishError(filePath, detail string) error {
	return &ParseError{
		FilePath: filePath,
		Op:       "publish",
		BaseErr:  ErrPublishFailed,
		Detail:   detail,
	}
}

// NewDatabaseError 构造数据库操作失败错误
func NewDatabaseError(filePath, detail string) error {
	return &ParseError{
		FilePath: filePath,
		Op:       "database",
		BaseErr:  ErrDatabaseFailed,
		Detail:   detail,
	}
}
