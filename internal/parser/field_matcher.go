package parser

import (
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// 联系方式识别正则
// 统一采用首个匹配生效的策略，匹配不到时字段留空，不视为错误
var (
	emailPattern    = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phonePattern    = regexp.MustCompile(`\+?\d[\d\s().-]{7,}\d`)
	linkedinPattern = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?linkedin\.com/in/[A-Za-z0-9\-_%]+`)

	// 带标签的字段行，例如 "Name: Jane Doe" / "姓名：张三"
	nameLabelPattern     = regexp.MustCompile(`(?im)^\s*(?:name|姓名)\s*[:：]\s*(\S[^\n]*)`)
	locationLabelPattern = regexp.MustCompile(`(?im)^\s*(?:location|city|address|地点|城市|地址)\s*[:：]\s*(\S[^\n]*)`)

	// 无标签时首行姓名的合理形态：2-4个汉字，或2-4个英文单词
	plainNamePattern = regexp.MustCompile(`^(?:[\p{Han}·]{2,6}|[A-Z][A-Za-z'.-]*(?:\s[A-Za-z][A-Za-z'.-]*){1,3})$`)
)

// ContactInfo 从全文匹配出的联系方式字段
type ContactInfo struct {
	Name     string
	Email    string
	Phone    string
	LinkedIn string
	Location string
}

// FieldMatcher 基于固定正则集合的字段匹配器
type FieldMatcher struct {
	// 电话号码解析的默认地区码，如 "CN"、"US"
	phoneRegion string
}

// NewFieldMatcher 创建字段匹配器
func NewFieldMatcher(phoneRegion string) *FieldMatcher {
	if phoneRegion == "" {
		phoneRegion = "CN"
	}
	return &FieldMatcher{phoneRegion: phoneRegion}
}

// MatchContact 对原始文本做尽力而为的字段匹配
func (m *FieldMatcher) MatchContact(text string) ContactInfo {
	info := ContactInfo{
		Email:    emailPattern.FindString(text),
		LinkedIn: linkedinPattern.FindString(text),
	}

	if raw := phonePattern.FindString(text); raw != "" {
		info.Phone = m.normalizePhone(raw)
	}

	if matches := locationLabelPattern.FindStringSubmatch(text); len(matches) > 1 {
		info.Location = strings.TrimSpace(matches[1])
	}

	info.Name = m.matchName(text)
	return info
}

// normalizePhone 尝试用phonenumbers归一化为E.164格式
// 解析失败时保留压缩空白后的原始匹配
func (m *FieldMatcher) normalizePhone(raw string) string {
	num, err := phonenumbers.Parse(raw, m.phoneRegion)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return strings.Join(strings.Fields(raw), " ")
	}
	return phonenumbers.Format(num, phonenumbers.E164)
}

// matchName 姓名启发式：优先带标签的行，其次取第一个形态合理的非空行
func (m *FieldMatcher) matchName(text string) string {
	if matches := nameLabelPattern.FindStringSubmatch(text); len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}

	// 只在文档开头几行内猜测，越往后越不可能是姓名
	lines := strings.Split(text, "\n")
	checked := 0
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		checked++
		if checked > 5 {
			break
		}
		// 含联系方式的行不是姓名行
		if emailPattern.MatchString(line) || phonePattern.MatchString(line) {
			continue
		}
		if plainNamePattern.MatchString(line) {
			return line
		}
	}
	return ""
}
