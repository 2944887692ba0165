package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"resume-parser-go/internal/storage/models"
	"resume-parser-go/internal/types"
)

// newTestDatabase 基于内存SQLite搭建提交记录存储
// 表结构用原生DDL建，避开MySQL专属的默认值表达式
func newTestDatabase(t *testing.T) *MySQL {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err, "打开内存数据库不应失败")

	require.NoError(t, db.Exec(`CREATE TABLE resume_submissions (
		submission_uuid char(36) PRIMARY KEY,
		original_filename varchar(512),
		file_md5 char(32),
		original_object_key varchar(1024),
		parsed_object_key varchar(1024),
		status varchar(50) DEFAULT 'UPLOADED',
		error_detail text,
		parsed_result_json json,
		source_channel varchar(100),
		created_at datetime,
		updated_at datetime
	)`).Error)
	require.NoError(t, db.Exec(`CREATE TABLE candidates (
		candidate_id char(36) PRIMARY KEY,
		primary_name varchar(255),
		primary_email varchar(255) UNIQUE,
		primary_phone varchar(50),
		linked_in_url varchar(512),
		location varchar(255),
		created_at datetime,
		updated_at datetime
	)`).Error)

	return &MySQL{db: db}
}

func seedSubmission(t *testing.T, m *MySQL, submissionUUID, status string) {
	t.Helper()
	require.NoError(t, m.CreateSubmission(context.Background(), &models.ResumeSubmission{
		SubmissionUUID:   submissionUUID,
		OriginalFilename: "jane.pdf",
		FileMD5:          "d41d8cd98f00b204e9800998ecf8427e",
		Status:           status,
	}))
}

func TestUpdateSubmissionStatus(t *testing.T) {
	m := newTestDatabase(t)
	ctx := context.Background()
	seedSubmission(t, m, "uuid-1", models.StatusUploaded)

	require.NoError(t, m.UpdateSubmissionStatus(ctx, "uuid-1", models.StatusProcessing, ""))

	submission, err := m.GetSubmission(ctx, "uuid-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusProcessing, submission.Status)
}

// 消息重复投递会对同一状态再次发起相同的更新，不能报错
func TestUpdateSubmissionStatusRepeatedSameValue(t *testing.T) {
	m := newTestDatabase(t)
	ctx := context.Background()
	seedSubmission(t, m, "uuid-1", models.StatusUploaded)

	require.NoError(t, m.UpdateSubmissionStatus(ctx, "uuid-1", models.StatusProcessing, ""))
	err := m.UpdateSubmissionStatus(ctx, "uuid-1", models.StatusProcessing, "")
	require.NoError(t, err, "状态值未变化的重复更新必须按成功处理")
	assert.False(t, errors.Is(err, ErrSubmissionNotFound))
}

func TestUpdateSubmissionStatusNotFound(t *testing.T) {
	m := newTestDatabase(t)

	err := m.UpdateSubmissionStatus(context.Background(), "不存在的uuid", models.StatusProcessing, "")
	assert.True(t, errors.Is(err, ErrSubmissionNotFound), "记录确实不存在才报not-found")
}

// 0行更新的归类依赖存在性确认
func TestConfirmSubmissionExists(t *testing.T) {
	m := newTestDatabase(t)
	seedSubmission(t, m, "uuid-1", models.StatusProcessing)

	assert.NoError(t, confirmSubmissionExists(m.db, "uuid-1"))
	assert.True(t, errors.Is(confirmSubmissionExists(m.db, "uuid-2"), ErrSubmissionNotFound))
}

func TestSaveParseResult(t *testing.T) {
	m := newTestDatabase(t)
	ctx := context.Background()
	seedSubmission(t, m, "uuid-1", models.StatusProcessing)

	resume := &types.ParsedResume{
		Name:  "Jane Doe",
		Email: "jane.doe@example.com",
		Phone: "+16502530000",
	}
	require.NoError(t, m.SaveParseResult(ctx, "uuid-1", "uuid-1/parsed.json", resume))

	submission, err := m.GetSubmission(ctx, "uuid-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, submission.Status)
	assert.Equal(t, "uuid-1/parsed.json", submission.ParsedObjectKey)
	assert.NotEmpty(t, submission.ParsedResultJSON)

	var candidate models.Candidate
	require.NoError(t, m.db.Where("primary_email = ?", resume.Email).First(&candidate).Error)
	assert.Equal(t, "Jane Doe", candidate.PrimaryName)
}

// 同一结果重复保存属于消息重复投递的正常路径
func TestSaveParseResultRedelivered(t *testing.T) {
	m := newTestDatabase(t)
	ctx := context.Background()
	seedSubmission(t, m, "uuid-1", models.StatusProcessing)

	resume := &types.ParsedResume{Name: "Jane Doe", Email: "jane.doe@example.com"}
	require.NoError(t, m.SaveParseResult(ctx, "uuid-1", "uuid-1/parsed.json", resume))
	require.NoError(t, m.SaveParseResult(ctx, "uuid-1", "uuid-1/parsed.json", resume))

	// 候选人按邮箱去重，不产生第二条记录
	var count int64
	require.NoError(t, m.db.Model(&models.Candidate{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSaveParseResultNotFound(t *testing.T) {
	m := newTestDatabase(t)

	err := m.SaveParseResult(context.Background(), "不存在的uuid", "key", &types.ParsedResume{})
	assert.True(t, errors.Is(err, ErrSubmissionNotFound))
}

func TestGetSubmissionNotFound(t *testing.T) {
	m := newTestDatabase(t)

	_, err := m.GetSubmission(context.Background(), "不存在的uuid")
	assert.True(t, errors.Is(err, ErrSubmissionNotFound))
}
