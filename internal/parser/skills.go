package parser

import (
	"regexp"
	"sort"
	"strings"
)

// defaultSkills 内置技能词典
// 命中判断用词边界匹配，避免 "java" 误命中 "javascript"
var defaultSkills = []string{
	"python", "java", "c++", "c#", "go", "javascript", "typescript",
	"react", "angular", "vue", "node",
	"sql", "mysql", "postgresql", "mongodb", "redis",
	"aws", "azure", "gcp", "docker", "kubernetes", "linux", "git",
	"django", "flask", "spring", "fastapi", "gin",
	"pandas", "numpy", "matplotlib", "seaborn",
	"tensorflow", "pytorch", "nlp", "machine learning", "deep learning",
	"html", "css", "kafka", "rabbitmq", "grpc",
}

// SkillScanner 按词典扫描简历文本中出现的技能词
type SkillScanner struct {
	patterns map[string]*regexp.Regexp
}

// NewSkillScanner 创建技能扫描器，extraSkills追加到内置词典
func NewSkillScanner(extraSkills []string) *SkillScanner {
	scanner := &SkillScanner{
		patterns: make(map[string]*regexp.Regexp, len(defaultSkills)+len(extraSkills)),
	}

	for _, skill := range defaultSkills {
		scanner.addSkill(skill)
	}
	for _, skill := range extraSkills {
		scanner.addSkill(strings.ToLower(strings.TrimSpace(skill)))
	}
	return scanner
}

func (s *SkillScanner) addSkill(skill string) {
	if skill == "" {
		return
	}
	// "c++"、"c#" 以非单词字符结尾，\b在结尾处不成立，改用后视断言不可用，直接放宽右边界
	pattern := `(?i)\b` + regexp.QuoteMeta(skill)
	if lastRune := skill[len(skill)-1]; (lastRune >= 'a' && lastRune <= 'z') || (lastRune >= '0' && lastRune <= '9') {
		pattern += `\b`
	}
	s.patterns[skill] = regexp.MustCompile(pattern)
}

// Scan 返回文本中命中的技能词，去重后按字典序排列
func (s *SkillScanner) Scan(text string) []string {
	var found []string
	for skill, pattern := range s.patterns {
		if pattern.MatchString(text) {
			found = append(found, skill)
		}
	}
	sort.Strings(found)
	return found
}
