package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchContactEmail(t *testing.T) {
	m := NewFieldMatcher("US")

	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "带标签的邮箱行",
			text: "Jane Doe\nEmail: jane.doe@example.com\nPhone: 555-1234",
			want: "jane.doe@example.com",
		},
		{
			name: "正文中的裸邮箱",
			text: "联系方式 zhang.san@example.cn 欢迎来信",
			want: "zhang.san@example.cn",
		},
		{
			name: "多个邮箱取第一个",
			text: "first@example.com\nsecond@example.com",
			want: "first@example.com",
		},
		{
			name: "没有邮箱时留空",
			text: "这份简历没有联系方式",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := m.MatchContact(tt.text)
			assert.Equal(t, tt.want, info.Email, "邮箱匹配结果不符合预期")
		})
	}
}

func TestMatchContactPhone(t *testing.T) {
	m := NewFieldMatcher("CN")

	info := m.MatchContact("张三\n电话 138 1234 5678\nzhangsan@example.com")
	assert.Equal(t, "+8613812345678", info.Phone, "合法手机号应归一化为E.164格式")

	// 无法按地区解析的号码保留压缩空白后的原文
	info = m.MatchContact("电话: 0000 111 222 333")
	assert.Equal(t, "0000 111 222 333", info.Phone)

	info = m.MatchContact("没有电话")
	assert.Empty(t, info.Phone)
}

func TestMatchContactName(t *testing.T) {
	m := NewFieldMatcher("US")

	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "带标签的姓名行优先",
			text: "简历\nName: Jane Doe\njane@example.com",
			want: "Jane Doe",
		},
		{
			name: "中文标签",
			text: "姓名：张三\n电话：13812345678",
			want: "张三",
		},
		{
			name: "首个形态合理的非空行",
			text: "\nJohn Smith\nSoftware Engineer at Example Corp\njohn@example.com",
			want: "John Smith",
		},
		{
			name: "含邮箱的行不会被当成姓名",
			text: "jane@example.com\nJane Doe",
			want: "Jane Doe",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := m.MatchContact(tt.text)
			assert.Equal(t, tt.want, info.Name)
		})
	}
}

func TestMatchContactLinkedInAndLocation(t *testing.T) {
	m := NewFieldMatcher("US")

	text := "Jane Doe\nlinkedin.com/in/jane-doe\nLocation: San Francisco, CA\n"
	info := m.MatchContact(text)

	assert.Equal(t, "linkedin.com/in/jane-doe", info.LinkedIn)
	assert.Equal(t, "San Francisco, CA", info.Location)
}
