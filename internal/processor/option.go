package processor

import (
	"github.com/rs/zerolog"

	"resume-parser-go/internal/parser"
)

// Option 解析流水线的组件配置选项
type Option func(*ResumeParser)

// WithTextExtractor 注入自定义文本提取器（测试时注入桩实现）
func WithTextExtractor(extractor TextExtractor) Option {
	return func(p *ResumeParser) {
		p.extractor = extractor
	}
}

// WithFieldMatcher 注入自定义字段匹配器
func WithFieldMatcher(matcher *parser.FieldMatcher) Option {
	return func(p *ResumeParser) {
		p.matcher = matcher
	}
}

// WithSectionChunker 注入自定义章节分块器
func WithSectionChunker(chunker *parser.SectionChunker) Option {
	return func(p *ResumeParser) {
		p.chunker = chunker
	}
}

// WithSkillScanner 注入自定义技能扫描器
func WithSkillScanner(scanner *parser.SkillScanner) Option {
	return func(p *ResumeParser) {
		p.skillScanner = scanner
	}
}

// WithLogger 注入自定义日志记录器
func WithLogger(logger zerolog.Logger) Option {
	return func(p *ResumeParser) {
		p.logger = logger
	}
}
