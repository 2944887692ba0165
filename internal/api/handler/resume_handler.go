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
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/processor"
	"resume-parser-go/internal/storage"
	"resume-parser-go/internal/storage/models"
	"resume-parser-go/internal/types"
)

// UploadResponse 简历上传接口的响应
type UploadResponse struct {
	SubmissionUUID string `json:"submission_uuid"`
	// 相同内容的文件此前已提交过时为true，复用历史提交
	Duplicate bool   `json:"duplicate"`
	Message   string `json:"message"`
}

// ResultResponse 解析结果查询接口的响应
type ResultResponse struct {
	SubmissionUUID string              `json:"submission_uuid"`
	Status         string              `json:"status"`
	ErrorDetail    string              `json:"error_detail,omitempty"`
	Resume         *types.ParsedResume `json:"resume,omitempty"`
}

// ResumeHandler 简历上传与解析的业务处理器
type ResumeHandler struct {
	cfg     *config.Config
	storage *storage.Storage
	parser  *processor.ResumeParser
	logger  zerolog.Logger
}

// NewResumeHandler 创建简历处理器
func NewResumeHandler(cfg *config.Config, st *storage.Storage, parser *processor.ResumeParser) *ResumeHandler {
	return &ResumeHandler{
		cfg:     cfg,
		storage: st,
		parser:  parser,
		logger:  logger.Logger.With().Str("component", "resume_handler").Logger(),
	}
}

// HandleResumeUpload 处理简历上传
// 文件落对象存储，提交记录入库，解析任务进队列；相同MD5的文件直接复用历史提交
func (h *ResumeHandler) HandleResumeUpload(ctx context.Context, file io.Reader, fileSize int64, filename, sourceChannel string) (*UploadResponse, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf", ".docx", ".txt":
	default:
		return nil, processor.NewUnsupportedFormatError(filename, "仅支持 .pdf/.docx/.txt")
	}

	data, err := io.ReadAll(io.LimitReader(file, fileSize))
	if err != nil {
		return nil, fmt.Errorf("读取上传文件失败: %w", err)
	}

	sum := md5.Sum(data)
	fileMD5 := hex.EncodeToString(sum[:])

	// MD5去重：相同内容的文件不重复解析
	if h.storage.Redis != nil {
		if existingUUID, err := h.storage.Redis.GetSubmissionByMD5(ctx, fileMD5); err == nil {
			h.logger.Info().
				Str("file_md5", fileMD5).
				Str("submission_uuid", existingUUID).
				Msg("检测到重复上传，复用历史提交")
			return &UploadResponse{
				SubmissionUUID: existingUUID,
				Duplicate:      true,
				Message:        "相同内容的简历已提交过",
			}, nil
		}
	}

	submissionUUID, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("生成提交UUID失败: %w", err)
	}
	uuidStr := submissionUUID.String()

	objectKey, err := h.storage.MinIO.UploadOriginal(ctx, uuidStr, ext, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, processor.NewStoreError(filename, err.Error())
	}

	submission := &models.ResumeSubmission{
		SubmissionUUID:    uuidStr,
		OriginalFilename:  filename,
		FileMD5:           fileMD5,
		OriginalObjectKey: objectKey,
		Status:            models.StatusUploaded,
		SourceChannel:     sourceChannel,
	}
	if err := h.storage.MySQL.CreateSubmission(ctx, submission); err != nil {
		return nil, processor.NewDatabaseError(filename, err.Error())
	}

	message := storage.ResumeUploadedMessage{
		SubmissionUUID:   uuidStr,
		OriginalFilename: filename,
		ObjectKey:        objectKey,
		FileMD5:          fileMD5,
		SourceChannel:    sourceChannel,
		UploadedAt:       time.Now(),
	}
	if err := h.storage.RabbitMQ.PublishJSON(ctx,
		h.cfg.RabbitMQ.ResumeEventsExchange,
		h.cfg.RabbitMQ.UploadedRoutingKey,
		message, true); err != nil {
		return nil, processor.NewPublishError(filename, err.Error())
	}

	if h.storage.Redis != nil {
		if err := h.storage.Redis.SetMD5Record(ctx, fileMD5, uuidStr); err != nil {
			h.logger.Warn().Err(err).Msg("写入MD5记录失败")
		}
	}

	h.logger.Info().
		Str("submission_uuid", uuidStr).
		Str("filename", filename).
		Int("size", len(data)).
		Msg("简历上传完成，解析任务已入队")

	return &UploadResponse{
		SubmissionUUID: uuidStr,
		Message:        "上传成功，解析进行中",
	}, nil
}

// StartParseConsumer 启动解析消费者，阻塞直到上下文取消
func (h *ResumeHandler) StartParseConsumer(ctx context.Context) error {
	workers := h.cfg.RabbitMQ.ConsumerWorkers
	if workers < 1 {
		workers = 1
	}
	return h.storage.RabbitMQ.Consume(ctx, h.cfg.RabbitMQ.RawResumeQueue, workers, h.handleParseMessage)
}

// handleParseMessage 消费一条上传事件：取回文件、解析、落库
// 返回错误会让消息重新入队，业务性失败（提取失败）落库后按成功ack
func (h *ResumeHandler) handleParseMessage(ctx context.Context, body []byte) error {
	var message storage.ResumeUploadedMessage
	if err := json.Unmarshal(body, &message); err != nil {
		h.logger.Error().Err(err).Msg("解析上传事件消息失败，丢弃")
		return nil
	}

	if err := h.storage.MySQL.UpdateSubmissionStatus(ctx, message.SubmissionUUID, models.StatusProcessing, ""); err != nil {
		return err
	}

	resume, err := h.parseSubmission(ctx, &message)
	if err != nil {
		// 提取失败属于该文件的终态，记录后不再重试
		if errors.Is(err, processor.ErrExtractFailed) || errors.Is(err, processor.ErrUnsupportedFormat) {
			h.logger.Warn().Err(err).
				Str("submission_uuid", message.SubmissionUUID).
				Msg("简历解析失败")
			return h.storage.MySQL.UpdateSubmissionStatus(ctx, message.SubmissionUUID, models.StatusFailed, err.Error())
		}
		return err
	}

	resultJSON, err := resume.MarshalIndentJSON()
	if err != nil {
		return err
	}

	parsedKey, err := h.storage.MinIO.UploadParsedJSON(ctx, message.SubmissionUUID, resultJSON)
	if err != nil {
		return err
	}

	if err := h.storage.MySQL.SaveParseResult(ctx, message.SubmissionUUID, parsedKey, resume); err != nil {
		return err
	}

	if h.storage.Redis != nil {
		if err := h.storage.Redis.SetParsedResume(ctx, message.FileMD5, resume); err != nil {
			h.logger.Warn().Err(err).Msg("写入解析结果缓存失败")
		}
	}

	h.logger.Info().
		Str("submission_uuid", message.SubmissionUUID).
		Str("parsed_object_key", parsedKey).
		Msg("简历解析入库完成")
	return nil
}

// parseSubmission 取回文件并执行解析，命中缓存时直接返回
func (h *ResumeHandler) parseSubmission(ctx context.Context, message *storage.ResumeUploadedMessage) (*types.ParsedResume, error) {
	if h.storage.Redis != nil && message.FileMD5 != "" {
		if cached, err := h.storage.Redis.GetParsedResume(ctx, message.FileMD5); err == nil && cached != nil {
			h.logger.Debug().
				Str("file_md5", message.FileMD5).
				Msg("解析结果缓存命中")
			return cached, nil
		}
	}

	data, err := h.storage.MinIO.DownloadOriginal(ctx, message.ObjectKey)
	if err != nil {
		return nil, err
	}

	// 提取器按文件路径工作，先落临时文件并保留扩展名
	ext := filepath.Ext(message.OriginalFilename)
	tmpFile, err := os.CreateTemp("", "resume-*"+ext)
	if err != nil {
		return nil, fmt.Errorf("创建临时文件失败: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return nil, fmt.Errorf("写入临时文件失败: %w", err)
	}
	tmpFile.Close()

	return h.parser.ParseFile(ctx, tmpPath)
}

// GetSubmissionResult 查询提交的处理状态和解析结果
func (h *ResumeHandler) GetSubmissionResult(ctx context.Context, submissionUUID string) (*ResultResponse, error) {
	submission, err := h.storage.MySQL.GetSubmission(ctx, submissionUUID)
	if err != nil {
		return nil, err
	}

	response := &ResultResponse{
		SubmissionUUID: submission.SubmissionUUID,
		Status:         submission.Status,
		ErrorDetail:    submission.ErrorDetail,
	}

	if submission.Status == models.StatusCompleted && len(submission.ParsedResultJSON) > 0 {
		var resume types.ParsedResume
		if err := json.Unmarshal(submission.ParsedResultJSON, &resume); err != nil {
			return nil, fmt.Errorf("反序列化解析结果失败: %w", err)
		}
		response.Resume = &resume
	}

	return response, nil
}
