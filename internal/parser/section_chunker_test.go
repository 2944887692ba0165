package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleEnglishResume = `Jane Doe
Email: jane.doe@example.com

Education
Example University, Bachelor of Science, 2014-2018

Experience
Software Engineer, Example Corp, Jan 2019 - Present
Built data pipelines in Go.

Skills
Go, Python, Docker
`

func TestChunkEnglishResume(t *testing.T) {
	chunker, err := NewSectionChunker(ChunkerConfig{})
	require.NoError(t, err, "创建章节分块器不应返回错误")

	sections := chunker.Chunk(sampleEnglishResume)
	require.NotEmpty(t, sections)

	// 标题行之前的内容归入基本信息章节
	assert.Equal(t, SectionBasicInfo, sections[0].Type)
	assert.Contains(t, sections[0].Content, "jane.doe@example.com")

	typeSet := make(map[SectionType]bool)
	for _, section := range sections {
		typeSet[section.Type] = true
	}
	assert.True(t, typeSet[SectionEducation], "应识别出教育章节")
	assert.True(t, typeSet[SectionExperience], "应识别出经历章节")
	assert.True(t, typeSet[SectionSkills], "应识别出技能章节")

	education := chunker.SectionContent(sections, SectionEducation)
	assert.Contains(t, education, "Example University")
	experience := chunker.SectionContent(sections, SectionExperience)
	assert.Contains(t, experience, "Software Engineer")
}

func TestChunkChineseResume(t *testing.T) {
	chunker, err := NewSectionChunker(ChunkerConfig{})
	require.NoError(t, err)

	text := "张三\n13812345678\n\n教育经历\n清华大学 计算机科学 2018-2022\n\n工作经历\n后端工程师 某某科技 2022至今\n"
	sections := chunker.Chunk(text)

	education := chunker.SectionContent(sections, SectionEducation)
	assert.Contains(t, education, "清华大学")
	experience := chunker.SectionContent(sections, SectionExperience)
	assert.Contains(t, experience, "后端工程师")
}

func TestChunkCustomSectionRegex(t *testing.T) {
	chunker, err := NewSectionChunker(ChunkerConfig{
		CustomSectionRegexMap: map[string]string{
			string(SectionSkills): `(?i)^\s*toolbox\s*$`,
		},
	})
	require.NoError(t, err)

	sections := chunker.Chunk("Jane Doe\n\nToolbox\nGo, Kubernetes\n")
	skills := chunker.SectionContent(sections, SectionSkills)
	assert.Contains(t, skills, "Kubernetes", "自定义章节正则应生效")
}

func TestChunkInvalidCustomRegex(t *testing.T) {
	_, err := NewSectionChunker(ChunkerConfig{
		CustomSectionRegexMap: map[string]string{"SKILLS": "(不闭合"},
	})
	assert.Error(t, err, "非法正则应在创建时报错")
}
