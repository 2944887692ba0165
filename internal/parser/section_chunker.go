package parser

import (
	"fmt"
	"regexp"
	"strings"
)

// SectionType 简历章节类型
type SectionType string

const (
	// 基本信息章节
	SectionBasicInfo SectionType = "BASIC_INFO"
	// 教育经历章节
	SectionEducation SectionType = "EDUCATION"
	// 工作经历章节
	SectionExperience SectionType = "EXPERIENCE"
	// 技能章节
	SectionSkills SectionType = "SKILLS"
	// 项目经历章节
	SectionProjects SectionType = "PROJECTS"
	// 未分类内容
	SectionUnknown SectionType = "UNKNOWN"
)

// Section 一个识别出的简历章节
type Section struct {
	Type    SectionType
	Title   string // 命中的章节标题行
	Content string
}

// ChunkerConfig 章节分块器配置
type ChunkerConfig struct {
	// 自定义章节标题正则，键为章节类型名，覆盖内置规则
	CustomSectionRegexMap map[string]string

	// 是否保留空行和原始格式
	PreserveFormat bool
}

// SectionChunker 按章节标题行把简历文本切分成块
// 中英文简历的标题写法都要覆盖
type SectionChunker struct {
	config          ChunkerConfig
	sectionRegexMap map[SectionType]*regexp.Regexp
}

// NewSectionChunker 创建章节分块器
func NewSectionChunker(config ChunkerConfig) (*SectionChunker, error) {
	chunker := &SectionChunker{
		config:          config,
		sectionRegexMap: make(map[SectionType]*regexp.Regexp),
	}

	defaultSectionRegexMap := map[SectionType]string{
		SectionEducation:  `(?i)^\s*(education|academic background|教育经历|教育背景|学历|学历背景)\s*[:：]?\s*$`,
		SectionExperience: `(?i)^\s*((?:work|professional)\s+experience|experience|employment(?:\s+history)?|工作经历|工作经验|实习经历|工作履历)\s*[:：]?\s*$`,
		SectionSkills:     `(?i)^\s*((?:technical\s+)?skills|核心能力|专业技能|技能|技术栈)\s*[:：]?\s*$`,
		SectionProjects:   `(?i)^\s*(projects?|项目经历|项目经验)\s*[:：]?\s*$`,
	}

	if config.CustomSectionRegexMap != nil {
		for section, pattern := range config.CustomSectionRegexMap {
			defaultSectionRegexMap[SectionType(section)] = pattern
		}
	}

	for sectionType, pattern := range defaultSectionRegexMap {
		regex, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("编译章节正则表达式错误 %s: %w", sectionType, err)
		}
		chunker.sectionRegexMap[sectionType] = regex
	}

	return chunker, nil
}

// Chunk 将简历文本切分为章节序列
// 标题行之前的内容归入基本信息章节
func (c *SectionChunker) Chunk(resumeText string) []*Section {
	text := resumeText
	if !c.config.PreserveFormat {
		text = strings.ReplaceAll(text, "\r\n", "\n")
		text = strings.ReplaceAll(text, "\r", "\n")
		for strings.Contains(text, "\n\n\n") {
			text = strings.ReplaceAll(text, "\n\n\n", "\n\n")
		}
	}

	lines := strings.Split(text, "\n")

	var sections []*Section
	currentSection := &Section{
		Type:  SectionBasicInfo,
		Title: string(SectionBasicInfo),
	}
	var currentContent strings.Builder

	for _, line := range lines {
		lineType := c.classifyLine(line)

		if lineType != SectionUnknown && lineType != currentSection.Type {
			// 新章节标题行，先收尾当前章节
			if currentContent.Len() > 0 {
				currentSection.Content = currentContent.String()
				sections = append(sections, currentSection)
				currentSection = &Section{Type: lineType, Title: strings.TrimSpace(line)}
				currentContent.Reset()
			} else {
				currentSection.Type = lineType
				currentSection.Title = strings.TrimSpace(line)
			}
			continue
		}

		currentContent.WriteString(line)
		currentContent.WriteString("\n")
	}

	if currentContent.Len() > 0 {
		currentSection.Content = currentContent.String()
		sections = append(sections, currentSection)
	}

	return sections
}

// SectionContent 返回指定类型章节的内容，不存在时返回空串
func (c *SectionChunker) SectionContent(sections []*Section, sectionType SectionType) string {
	var builder strings.Builder
	for _, section := range sections {
		if section.Type == sectionType {
			builder.WriteString(section.Content)
			builder.WriteString("\n")
		}
	}
	return builder.String()
}

// classifyLine 判断一行是否为章节标题
func (c *SectionChunker) classifyLine(line string) SectionType {
	line = strings.TrimSpace(line)
	if line == "" || len(line) > 64 {
		return SectionUnknown
	}

	for sectionType, regex := range c.sectionRegexMap {
		if regex.MatchString(line) {
			return sectionType
		}
	}
	return SectionUnknown
}
