package processor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/parser"
	"resume-parser-go/internal/types"
)

var parseTracer = otel.Tracer("resume-parser-go/processor")

// ResumeParser 简历解析流水线
// 提取文本 → 章节分块 → 字段匹配 → 日期归一化 → 组装ParsedResume
type ResumeParser struct {
	extractor    TextExtractor
	matcher      *parser.FieldMatcher
	chunker      *parser.SectionChunker
	entryScanner *parser.EntryScanner
	skillScanner *parser.SkillScanner
	logger       zerolog.Logger
}

// NewResumeParser 按配置组装解析流水线
func NewResumeParser(ctx context.Context, cfg *config.ParserConfig, options ...Option) (*ResumeParser, error) {
	if cfg == nil {
		cfg = &config.DefaultConfig().Parser
	}

	chunker, err := parser.NewSectionChunker(parser.ChunkerConfig{
		CustomSectionRegexMap: cfg.CustomSectionRegexMap,
		PreserveFormat:        cfg.PreserveFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("创建章节分块器失败: %w", err)
	}

	normalizer := parser.NewDateNormalizer()

	p := &ResumeParser{
		matcher:      parser.NewFieldMatcher(cfg.PhoneRegion),
		chunker:      chunker,
		entryScanner: parser.NewEntryScanner(normalizer),
		skillScanner: parser.NewSkillScanner(cfg.ExtraSkills),
		logger:       logger.Logger.With().Str("component", "resume_parser").Logger(),
	}

	for _, option := range options {
		option(p)
	}

	// 未注入提取器时使用默认的多格式提取器
	if p.extractor == nil {
		timeout, err := time.ParseDuration(cfg.ExtractionTimeout)
		if err != nil || timeout <= 0 {
			timeout = 30 * time.Second
		}
		extractor, err := parser.NewMultiFormatExtractor(ctx, parser.WithPDFTimeout(timeout))
		if err != nil {
			return nil, fmt.Errorf("创建文本提取器失败: %w", err)
		}
		p.extractor = extractor
	}

	return p, nil
}

// ParseFile 解析单个简历文件
// 提取失败返回ErrExtractFailed类错误；字段匹配不到只会留空，不产生错误
func (p *ResumeParser) ParseFile(ctx context.Context, filePath string) (*types.ParsedResume, error) {
	ctx, span := parseTracer.Start(ctx, "ResumeParser.ParseFile")
	span.SetAttributes(attribute.String("resume.file", filePath))
	defer span.End()

	if !parser.SupportedExt(filePath) {
		err := NewUnsupportedFormatError(filePath, "仅支持 .pdf/.docx/.txt")
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	startTime := time.Now()
	text, _, err := p.extractor.ExtractFromFile(ctx, filePath)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, NewExtractError(filePath, err.Error())
	}
	if strings.TrimSpace(text) == "" {
		err := NewExtractError(filePath, "提取结果为空文本")
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	resume := p.ParseText(text)

	p.logger.Debug().
		Str("file", filePath).
		Int("text_length", len(text)).
		Int("education_entries", len(resume.Education)).
		Int("experience_entries", len(resume.Experience)).
		Int("skills", len(resume.Skills)).
		Dur("elapsed", time.Since(startTime)).
		Msg("简历解析完成")

	return resume, nil
}

// ParseText 对已提取的原始文本执行匹配与归一化
func (p *ResumeParser) ParseText(text string) *types.ParsedResume {
	sections := p.chunker.Chunk(text)

	// 联系方式优先从基本信息章节找，找不到时退回全文
	contactText := p.chunker.SectionContent(sections, parser.SectionBasicInfo)
	contact := p.matcher.MatchContact(contactText)
	if contact.Email == "" && contact.Phone == "" && contact.Name == "" {
		contact = p.matcher.MatchContact(text)
	}

	education := p.entryScanner.ScanEducation(p.sectionOrFullText(sections, parser.SectionEducation, text))
	experience := p.entryScanner.ScanExperience(p.sectionOrFullText(sections, parser.SectionExperience, text))

	return &types.ParsedResume{
		Name:       contact.Name,
		Email:      contact.Email,
		Phone:      contact.Phone,
		LinkedIn:   contact.LinkedIn,
		Location:   contact.Location,
		Education:  education,
		Experience: experience,
		// 技能词全篇扫描，技能章节之外的命中同样有效
		Skills: p.skillScanner.Scan(text),
	}
}

// sectionOrFullText 有对应章节时只扫章节内容，否则退回全文逐行扫描
func (p *ResumeParser) sectionOrFullText(sections []*parser.Section, sectionType parser.SectionType, fullText string) string {
	if content := p.chunker.SectionContent(sections, sectionType); strings.TrimSpace(content) != "" {
		return content
	}
	return fullText
}
