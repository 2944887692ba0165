package parser

import (
	"strings"

	"resume-parser-go/internal/types"
)

// 教育/经历行的关键词，中英文简历都要覆盖
var (
	educationKeywords = []string{
		"university", "college", "institute", "school",
		"bachelor", "master", "phd", "mba",
		"大学", "学院", "本科", "硕士", "博士", "研究生",
	}

	degreeKeywords = []string{
		"bachelor", "master", "phd", "mba",
		"b.sc", "m.sc", "b.tech", "m.tech",
		"本科", "硕士", "博士",
	}

	experienceKeywords = []string{
		"intern", "engineer", "developer", "manager",
		"consultant", "analyst", "lead", "architect",
		"工程师", "实习", "开发", "经理", "架构师", "负责人",
	}
)

// EntryScanner 从文本行中识别教育经历和工作经历条目
// 关键词命中即收录，属于有损的启发式匹配
type EntryScanner struct {
	normalizer *DateNormalizer
}

// NewEntryScanner 创建条目扫描器
func NewEntryScanner(normalizer *DateNormalizer) *EntryScanner {
	if normalizer == nil {
		normalizer = NewDateNormalizer()
	}
	return &EntryScanner{normalizer: normalizer}
}

// ScanEducation 扫描教育经历条目
func (s *EntryScanner) ScanEducation(text string) []types.Education {
	var entries []types.Education
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || !containsAnyKeyword(trimmed, educationKeywords) {
			continue
		}

		entry := types.Education{Institution: trimmed}
		for _, keyword := range degreeKeywords {
			if strings.Contains(strings.ToLower(trimmed), keyword) {
				entry.Degree = strings.ToUpper(keyword)
				break
			}
		}
		if years := s.normalizer.ExtractRawYears(trimmed); years != "" {
			entry.Years = years
			entry.Range = s.normalizer.NormalizeRange(years)
		}
		entries = append(entries, entry)
	}
	return entries
}

// ScanExperience 扫描工作/实习经历条目
func (s *EntryScanner) ScanExperience(text string) []types.Experience {
	var entries []types.Experience
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || !containsAnyKeyword(trimmed, experienceKeywords) {
			continue
		}

		entry := types.Experience{Title: trimmed}
		if years := s.normalizer.ExtractRawYears(trimmed); years != "" {
			entry.Years = years
			entry.Range = s.normalizer.NormalizeRange(years)
		}
		entries = append(entries, entry)
	}
	return entries
}

func containsAnyKeyword(line string, keywords []string) bool {
	lower := strings.ToLower(line)
	for _, keyword := range keywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
