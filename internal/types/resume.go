package types

import (
	"encoding/json"
	"fmt"
)

// DateRange 归一化后的起止时间，格式统一为 "YYYY-MM"
// End为空表示至今
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end,omitempty"`
}

// String 将归一化区间渲染为可再次解析的文本形式
func (r DateRange) String() string {
	if r.End == "" {
		return r.Start
	}
	return fmt.Sprintf("%s - %s", r.Start, r.End)
}

// Education 一条教育经历
type Education struct {
	// 学位关键字，例如 "BACHELOR"、"硕士"，未识别时为空
	Degree string `json:"degree,omitempty"`
	// 原始行文本，包含学校名
	Institution string `json:"institution"`
	// 原始年份文本，例如 "2018 - 2022"，无法解析时保留原文
	Years string `json:"years,omitempty"`
	// 归一化后的起止时间，解析失败时为nil
	Range *DateRange `json:"range,omitempty"`
}

// Experience 一条工作/实习经历
type Experience struct {
	// 职位行原始文本
	Title string `json:"title"`
	// 原始年份文本
	Years string `json:"years,omitempty"`
	// 归一化后的起止时间，解析失败时为nil
	Range *DateRange `json:"range,omitempty"`
}

// ParsedResume 单份简历的解析结果，生成后不再修改
type ParsedResume struct {
	Name       string       `json:"name,omitempty"`
	Email      string       `json:"email,omitempty"`
	Phone      string       `json:"phone,omitempty"`
	LinkedIn   string       `json:"linkedin,omitempty"`
	Location   string       `json:"location,omitempty"`
	Education  []Education  `json:"education"`
	Experience []Experience `json:"experience"`
	// 命中的技能词，去重后按字典序排列
	Skills []string `json:"skills"`
}

// MarshalIndentJSON 将解析结果序列化为缩进JSON
// 对相同的ParsedResume输出字节级一致；nil切片在副本上补成空切片，不改动接收者
func (r *ParsedResume) MarshalIndentJSON() ([]byte, error) {
	out := *r
	if out.Education == nil {
		out.Education = []Education{}
	}
	if out.Experience == nil {
		out.Experience = []Experience{}
	}
	if out.Skills == nil {
		out.Skills = []string{}
	}
	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("序列化简历结果失败: %w", err)
	}
	return data, nil
}
