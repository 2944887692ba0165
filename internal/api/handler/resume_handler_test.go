package handler

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/processor"
	"resume-parser-go/internal/storage"
	"resume-parser-go/internal/storage/models"
	"resume-parser-go/internal/types"
)

// fakeObjectStorage 内存对象存储，可注入下载/上传错误
type fakeObjectStorage struct {
	objects         map[string][]byte
	downloadErr     error
	uploadParsedErr error
}

func newFakeObjectStorage() *fakeObjectStorage {
	return &fakeObjectStorage{objects: map[string][]byte{}}
}

func (f *fakeObjectStorage) UploadOriginal(ctx context.Context, submissionUUID, fileExt string, reader io.Reader, fileSize int64) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	key := submissionUUID + "/original" + fileExt
	f.objects[key] = data
	return key, nil
}

func (f *fakeObjectStorage) DownloadOriginal(ctx context.Context, objectKey string) ([]byte, error) {
	if f.downloadErr != nil {
		return nil, f.downloadErr
	}
	data, ok := f.objects[objectKey]
	if !ok {
		return nil, fmt.Errorf("对象不存在: %s", objectKey)
	}
	return data, nil
}

func (f *fakeObjectStorage) UploadParsedJSON(ctx context.Context, submissionUUID string, data []byte) (string, error) {
	if f.uploadParsedErr != nil {
		return "", f.uploadParsedErr
	}
	key := submissionUUID + "/parsed.json"
	f.objects[key] = data
	return key, nil
}

func (f *fakeObjectStorage) GetParsedJSON(ctx context.Context, objectKey string) ([]byte, error) {
	return f.objects[objectKey], nil
}

// fakeQueue 只记录发布的消息
type fakeQueue struct {
	published [][]byte
}

func (f *fakeQueue) PublishJSON(ctx context.Context, exchangeName, routingKey string, data interface{}, persistent bool) error {
	body, err := json.Marshal(data)
	if err != nil {
		return err
	}
	f.published = append(f.published, body)
	return nil
}

func (f *fakeQueue) Consume(ctx context.Context, queueName string, workers int, handler func(ctx context.Context, body []byte) error) error {
	return nil
}

func (f *fakeQueue) Close() error { return nil }

// fakeDatabase 内存提交记录存储，遵守Database接口的幂等更新约定
type fakeDatabase struct {
	submissions map[string]*models.ResumeSubmission
}

func newFakeDatabase() *fakeDatabase {
	return &fakeDatabase{submissions: map[string]*models.ResumeSubmission{}}
}

func (f *fakeDatabase) CreateSubmission(ctx context.Context, submission *models.ResumeSubmission) error {
	copied := *submission
	f.submissions[submission.SubmissionUUID] = &copied
	return nil
}

func (f *fakeDatabase) UpdateSubmissionStatus(ctx context.Context, submissionUUID, status, errorDetail string) error {
	submission, ok := f.submissions[submissionUUID]
	if !ok {
		return storage.ErrSubmissionNotFound
	}
	// 状态值未变化的重复更新同样按成功处理
	submission.Status = status
	if errorDetail != "" {
		submission.ErrorDetail = errorDetail
	}
	return nil
}

func (f *fakeDatabase) SaveParseResult(ctx context.Context, submissionUUID, parsedObjectKey string, resume *types.ParsedResume) error {
	submission, ok := f.submissions[submissionUUID]
	if !ok {
		return storage.ErrSubmissionNotFound
	}
	resultJSON, err := json.Marshal(resume)
	if err != nil {
		return err
	}
	submission.Status = models.StatusCompleted
	submission.ParsedObjectKey = parsedObjectKey
	submission.ParsedResultJSON = resultJSON
	return nil
}

func (f *fakeDatabase) GetSubmission(ctx context.Context, submissionUUID string) (*models.ResumeSubmission, error) {
	submission, ok := f.submissions[submissionUUID]
	if !ok {
		return nil, storage.ErrSubmissionNotFound
	}
	return submission, nil
}

func (f *fakeDatabase) Close() error { return nil }

// fakeCache 内存版MD5记录与解析结果缓存
type fakeCache struct {
	md5ToUUID map[string]string
	parsed    map[string]*types.ParsedResume
}

func newFakeCache() *fakeCache {
	return &fakeCache{md5ToUUID: map[string]string{}, parsed: map[string]*types.ParsedResume{}}
}

func (f *fakeCache) GetParsedResume(ctx context.Context, fileMD5 string) (*types.ParsedResume, error) {
	return f.parsed[fileMD5], nil
}

func (f *fakeCache) SetParsedResume(ctx context.Context, fileMD5 string, resume *types.ParsedResume) error {
	f.parsed[fileMD5] = resume
	return nil
}

func (f *fakeCache) GetSubmissionByMD5(ctx context.Context, fileMD5 string) (string, error) {
	uuid, ok := f.md5ToUUID[fileMD5]
	if !ok {
		return "", storage.ErrCacheMiss
	}
	return uuid, nil
}

func (f *fakeCache) SetMD5Record(ctx context.Context, fileMD5, submissionUUID string) error {
	f.md5ToUUID[fileMD5] = submissionUUID
	return nil
}

func (f *fakeCache) Close() error { return nil }

// fileExtractor 直接读回临时文件内容作为提取文本，可注入提取错误
type fileExtractor struct {
	err error
}

func (e *fileExtractor) ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error) {
	if e.err != nil {
		return "", nil, e.err
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", nil, err
	}
	return string(data), nil, nil
}

const handlerResumeText = `Jane Doe
Email: jane.doe@example.com

Education
Example University, Bachelor of Science, 2014-2018

Experience
Software Engineer, Example Corp, Jan 2019 - Mar 2021

Skills
Go, Docker
`

type handlerFixture struct {
	handler   *ResumeHandler
	objects   *fakeObjectStorage
	queue     *fakeQueue
	db        *fakeDatabase
	cache     *fakeCache
	extractor *fileExtractor
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()

	cfg := config.DefaultConfig()
	extractor := &fileExtractor{}
	parser, err := processor.NewResumeParser(context.Background(), &cfg.Parser,
		processor.WithTextExtractor(extractor))
	require.NoError(t, err)

	fx := &handlerFixture{
		objects:   newFakeObjectStorage(),
		queue:     &fakeQueue{},
		db:        newFakeDatabase(),
		cache:     newFakeCache(),
		extractor: extractor,
	}
	fx.handler = NewResumeHandler(cfg, &storage.Storage{
		MinIO:    fx.objects,
		RabbitMQ: fx.queue,
		MySQL:    fx.db,
		Redis:    fx.cache,
	}, parser)
	return fx
}

// upload 走一遍上传流程并返回响应
func (fx *handlerFixture) upload(t *testing.T, filename string, data []byte) *UploadResponse {
	t.Helper()
	resp, err := fx.handler.HandleResumeUpload(context.Background(),
		bytes.NewReader(data), int64(len(data)), filename, "web_upload")
	require.NoError(t, err)
	return resp
}

func TestHandleResumeUpload(t *testing.T) {
	fx := newHandlerFixture(t)
	data := []byte(handlerResumeText)

	resp := fx.upload(t, "jane.txt", data)
	assert.False(t, resp.Duplicate)
	require.NotEmpty(t, resp.SubmissionUUID)

	// 提交记录入库，状态为已上传
	submission, err := fx.db.GetSubmission(context.Background(), resp.SubmissionUUID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusUploaded, submission.Status)
	assert.Equal(t, "jane.txt", submission.OriginalFilename)

	// 解析任务进队列
	require.Len(t, fx.queue.published, 1)
	var message storage.ResumeUploadedMessage
	require.NoError(t, json.Unmarshal(fx.queue.published[0], &message))
	assert.Equal(t, resp.SubmissionUUID, message.SubmissionUUID)

	// MD5记录写入缓存
	sum := md5.Sum(data)
	cachedUUID, err := fx.cache.GetSubmissionByMD5(context.Background(), hex.EncodeToString(sum[:]))
	require.NoError(t, err)
	assert.Equal(t, resp.SubmissionUUID, cachedUUID)
}

func TestHandleResumeUploadDuplicate(t *testing.T) {
	fx := newHandlerFixture(t)
	data := []byte(handlerResumeText)

	first := fx.upload(t, "jane.txt", data)
	second := fx.upload(t, "改名的同一份文件.txt", data)

	assert.True(t, second.Duplicate, "相同内容的文件应复用历史提交")
	assert.Equal(t, first.SubmissionUUID, second.SubmissionUUID)
	assert.Len(t, fx.queue.published, 1, "重复上传不应再次入队")
	assert.Len(t, fx.db.submissions, 1)
}

func TestHandleResumeUploadUnsupportedExt(t *testing.T) {
	fx := newHandlerFixture(t)

	_, err := fx.handler.HandleResumeUpload(context.Background(),
		bytes.NewReader([]byte("x")), 1, "resume.xlsx", "web_upload")
	assert.True(t, errors.Is(err, processor.ErrUnsupportedFormat))
}

func TestHandleParseMessage(t *testing.T) {
	fx := newHandlerFixture(t)
	resp := fx.upload(t, "jane.txt", []byte(handlerResumeText))

	err := fx.handler.handleParseMessage(context.Background(), fx.queue.published[0])
	require.NoError(t, err)

	submission, err := fx.db.GetSubmission(context.Background(), resp.SubmissionUUID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, submission.Status)

	var resume types.ParsedResume
	require.NoError(t, json.Unmarshal(submission.ParsedResultJSON, &resume))
	assert.Equal(t, "jane.doe@example.com", resume.Email)

	// 解析结果JSON同步落对象存储
	assert.NotEmpty(t, fx.objects.objects[resp.SubmissionUUID+"/parsed.json"])
}

// 瞬时故障后消息重新投递：第二次处理从PROCESSING状态继续并成功完结
func TestHandleParseMessageRedelivered(t *testing.T) {
	fx := newHandlerFixture(t)
	resp := fx.upload(t, "jane.txt", []byte(handlerResumeText))
	body := fx.queue.published[0]

	// 第一次处理在上传解析结果时失败，消息会重新入队
	fx.objects.uploadParsedErr = fmt.Errorf("对象存储暂时不可用")
	err := fx.handler.handleParseMessage(context.Background(), body)
	require.Error(t, err)
	assert.False(t, errors.Is(err, storage.ErrSubmissionNotFound))

	submission, getErr := fx.db.GetSubmission(context.Background(), resp.SubmissionUUID)
	require.NoError(t, getErr)
	assert.Equal(t, models.StatusProcessing, submission.Status)

	// 故障恢复后重新投递同一条消息，重复的PROCESSING更新不得报错
	fx.objects.uploadParsedErr = nil
	require.NoError(t, fx.handler.handleParseMessage(context.Background(), body))

	submission, getErr = fx.db.GetSubmission(context.Background(), resp.SubmissionUUID)
	require.NoError(t, getErr)
	assert.Equal(t, models.StatusCompleted, submission.Status)
}

// 提取失败是该文件的终态：落库FAILED后按成功ack，不再重试
func TestHandleParseMessageExtractFailedTerminal(t *testing.T) {
	fx := newHandlerFixture(t)
	resp := fx.upload(t, "jane.txt", []byte(handlerResumeText))
	fx.extractor.err = fmt.Errorf("文件损坏")

	err := fx.handler.handleParseMessage(context.Background(), fx.queue.published[0])
	require.NoError(t, err, "业务性失败不应让消息重新入队")

	submission, getErr := fx.db.GetSubmission(context.Background(), resp.SubmissionUUID)
	require.NoError(t, getErr)
	assert.Equal(t, models.StatusFailed, submission.Status)
	assert.NotEmpty(t, submission.ErrorDetail)
}

func TestHandleParseMessageBadJSON(t *testing.T) {
	fx := newHandlerFixture(t)

	// 无法解析的消息体直接丢弃，不报错也不触发重试
	require.NoError(t, fx.handler.handleParseMessage(context.Background(), []byte("不是JSON")))
	assert.Empty(t, fx.db.submissions)
}

func TestGetSubmissionResult(t *testing.T) {
	fx := newHandlerFixture(t)
	resp := fx.upload(t, "jane.txt", []byte(handlerResumeText))
	require.NoError(t, fx.handler.handleParseMessage(context.Background(), fx.queue.published[0]))

	result, err := fx.handler.GetSubmissionResult(context.Background(), resp.SubmissionUUID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, result.Status)
	require.NotNil(t, result.Resume)
	assert.Equal(t, "jane.doe@example.com", result.Resume.Email)
}

func TestGetSubmissionResultNotFound(t *testing.T) {
	fx := newHandlerFixture(t)

	_, err := fx.handler.GetSubmissionResult(context.Background(), "不存在的uuid")
	assert.True(t, errors.Is(err, storage.ErrSubmissionNotFound))
}
