package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateRangeString(t *testing.T) {
	assert.Equal(t, "2020-01 - 2022-03", DateRange{Start: "2020-01", End: "2022-03"}.String())
	assert.Equal(t, "2020-06", DateRange{Start: "2020-06"}.String(), "End为空时只渲染起点")
}

func TestMarshalIndentJSONEmptySlices(t *testing.T) {
	resume := &ParsedResume{Name: "张三"}

	data, err := resume.MarshalIndentJSON()
	require.NoError(t, err)

	// nil切片序列化成[]而不是null
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, []interface{}{}, decoded["education"])
	assert.Equal(t, []interface{}{}, decoded["experience"])
	assert.Equal(t, []interface{}{}, decoded["skills"])
}

func TestMarshalIndentJSONDoesNotMutateReceiver(t *testing.T) {
	resume := &ParsedResume{Name: "张三"}

	_, err := resume.MarshalIndentJSON()
	require.NoError(t, err)

	// 序列化在副本上补空切片，原值保持不变
	assert.Nil(t, resume.Education)
	assert.Nil(t, resume.Experience)
	assert.Nil(t, resume.Skills)
}

func TestMarshalIndentJSONOmitsEmptyContact(t *testing.T) {
	resume := &ParsedResume{Email: "jane.doe@example.com"}

	data, err := resume.MarshalIndentJSON()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "jane.doe@example.com", decoded["email"])
	_, hasPhone := decoded["phone"]
	assert.False(t, hasPhone, "空字段不应出现在输出里")
}
