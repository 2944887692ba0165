package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/araddon/dateparse"

	"resume-parser-go/internal/types"
)

// 年份与日期区间的文本形态
var (
	yearPattern = regexp.MustCompile(`(19|20)\d{2}`)

	// 单个日期token：2018 / 2018.06 / 2018-06 / 2018年6月 / Jan 2018 / March 2018
	dateTokenPattern = `(?:19|20)\d{2}(?:\s*年\s*\d{1,2}\s*月?|[./-]\d{1,2})?|[A-Za-z]{3,9}\.?\s+(?:19|20)\d{2}`

	// 表示"至今"的写法
	presentPattern = `(?:present|now|current|today|至今|今)`

	// 完整区间，例如 "Jan 2020 - Mar 2022"、"2018-2022"、"2020.06 ~ 至今"
	dateRangePattern = regexp.MustCompile(
		`(?i)(` + dateTokenPattern + `)\s*(?:[-–—~〜～]|to|until|至)\s*(` + dateTokenPattern + `|` + presentPattern + `)`)

	presentOnlyPattern = regexp.MustCompile(`(?i)^` + presentPattern + `$`)

	monthYearPattern = regexp.MustCompile(`(?i)^([A-Za-z]{3,9})\.?\s+((?:19|20)\d{2})$`)
	cnDatePattern    = regexp.MustCompile(`^((?:19|20)\d{2})\s*年(?:\s*(\d{1,2})\s*月?)?$`)
)

// DateNormalizer 把自由文本的日期区间归一化为 "YYYY-MM" 起止对
// 解析委托给dateparse，自身只做区间切分和形态预处理
type DateNormalizer struct{}

// NewDateNormalizer 创建日期归一化器
func NewDateNormalizer() *DateNormalizer {
	return &DateNormalizer{}
}

// ExtractRawYears 从一行文本中提取原始年份描述
// 优先完整区间，退化为所有裸年份用 " - " 连接（与单年份行为保持一致）
func (n *DateNormalizer) ExtractRawYears(line string) string {
	if match := dateRangePattern.FindString(line); match != "" {
		return strings.TrimSpace(match)
	}
	years := yearPattern.FindAllString(line, -1)
	if len(years) == 0 {
		return ""
	}
	return strings.Join(years, " - ")
}

// NormalizeRange 尝试把自由文本归一化为起止对
// 无法解析时返回nil，原始文本由调用方自行保留
func (n *DateNormalizer) NormalizeRange(text string) *types.DateRange {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	if matches := dateRangePattern.FindStringSubmatch(text); len(matches) > 2 {
		start, err := n.normalizeToken(matches[1])
		if err != nil {
			return nil
		}
		if presentOnlyPattern.MatchString(strings.TrimSpace(matches[2])) {
			return &types.DateRange{Start: start}
		}
		end, err := n.normalizeToken(matches[2])
		if err != nil {
			return nil
		}
		return &types.DateRange{Start: start, End: end}
	}

	// 单个日期也接受，视为只有起点
	if start, err := n.normalizeToken(text); err == nil {
		return &types.DateRange{Start: start}
	}
	return nil
}

// normalizeToken 把单个日期token归一化为 "YYYY-MM"
func (n *DateNormalizer) normalizeToken(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", fmt.Errorf("空的日期token")
	}

	// dateparse不认识 "Jan 2018" 这种缺日形态，补一个1号
	if matches := monthYearPattern.FindStringSubmatch(token); len(matches) > 2 {
		token = fmt.Sprintf("%s 1, %s", matches[1], matches[2])
	}

	// 中文年月改写成数字形态
	if matches := cnDatePattern.FindStringSubmatch(token); len(matches) > 1 {
		if matches[2] != "" {
			token = fmt.Sprintf("%s-%s", matches[1], matches[2])
		} else {
			token = matches[1]
		}
	}

	// "2018.06" 按点分隔会被当成别的格式，统一成连字符
	token = strings.ReplaceAll(token, ".", "-")

	t, err := dateparse.ParseAny(token)
	if err != nil {
		return "", fmt.Errorf("解析日期 %q 失败: %w", token, err)
	}
	return t.Format("2006-01"), nil
}
