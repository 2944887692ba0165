package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/lifecycle"

	"resume-parser-go/internal/config"
)

// ObjectStorage 对象存储接口
type ObjectStorage interface {
	// UploadOriginal 上传原始简历文件，返回对象键
	UploadOriginal(ctx context.Context, submissionUUID, fileExt string, reader io.Reader, fileSize int64) (string, error)

	// DownloadOriginal 下载原始简历文件
	DownloadOriginal(ctx context.Context, objectKey string) ([]byte, error)

	// UploadParsedJSON 上传解析结果JSON，返回对象键
	UploadParsedJSON(ctx context.Context, submissionUUID string, data []byte) (string, error)

	// GetParsedJSON 下载解析结果JSON
	GetParsedJSON(ctx context.Context, objectKey string) ([]byte, error)
}

// 确保MinIO实现了ObjectStorage接口
var _ ObjectStorage = (*MinIO)(nil)

// MinIO 对象存储，原始简历和解析结果分桶存放
type MinIO struct {
	client         *minio.Client
	cfg            *config.MinIOConfig
	originalBucket string
	parsedBucket   string
	logger         *log.Logger
}

// NewMinIO 创建MinIO客户端并确保存储桶就绪
func NewMinIO(cfg *config.MinIOConfig, logger *log.Logger) (*MinIO, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MinIO配置不能为空")
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("创建MinIO客户端失败: %w", err)
	}

	originalBucket := cfg.OriginalsBucket
	if originalBucket == "" {
		originalBucket = "resume-originals"
	}
	parsedBucket := cfg.ParsedBucket
	if parsedBucket == "" {
		parsedBucket = "resume-parsed"
	}

	m := &MinIO{
		client:         client,
		cfg:            cfg,
		originalBucket: originalBucket,
		parsedBucket:   parsedBucket,
		logger:         logger,
	}

	for _, bucket := range []string{originalBucket, parsedBucket} {
		if err := m.ensureBucketExists(bucket, cfg.Location); err != nil {
			return nil, fmt.Errorf("确保存储桶 %s 存在失败: %w", bucket, err)
		}
	}

	if cfg.OriginalFileExpireDays > 0 || cfg.ParsedFileExpireDays > 0 {
		if err := m.setupLifecycleRules(context.Background()); err != nil {
			logger.Printf("[MinIO] 设置生命周期规则失败: %v", err)
		}
	}

	logger.Printf("[MinIO] 客户端初始化完成, endpoint=%s", cfg.Endpoint)
	return m, nil
}

func (m *MinIO) ensureBucketExists(bucket, location string) error {
	exists, err := m.client.BucketExists(context.Background(), bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return m.client.MakeBucket(context.Background(), bucket, minio.MakeBucketOptions{Region: location})
}

// setupLifecycleRules 给两个存储桶配置对象过期规则
func (m *MinIO) setupLifecycleRules(ctx context.Context) error {
	type bucketRule struct {
		bucket string
		days   int
	}
	rules := []bucketRule{
		{m.originalBucket, m.cfg.OriginalFileExpireDays},
		{m.parsedBucket, m.cfg.ParsedFileExpireDays},
	}

	for _, r := range rules {
		if r.days <= 0 {
			continue
		}
		lc := lifecycle.NewConfiguration()
		lc.Rules = []lifecycle.Rule{
			{
				ID:     "expire-" + r.bucket,
				Status: "Enabled",
				Expiration: lifecycle.Expiration{
					Days: lifecycle.ExpirationDays(r.days),
				},
			},
		}
		if err := m.client.SetBucketLifecycle(ctx, r.bucket, lc); err != nil {
			return fmt.Errorf("设置存储桶 %s 生命周期失败: %w", r.bucket, err)
		}
	}
	return nil
}

// UploadOriginal 上传原始简历文件
func (m *MinIO) UploadOriginal(ctx context.Context, submissionUUID, fileExt string, reader io.Reader, fileSize int64) (string, error) {
	fileExt = strings.TrimPrefix(fileExt, ".")
	objectKey := fmt.Sprintf("%s/original.%s", submissionUUID, fileExt)

	contentType := "application/octet-stream"
	switch strings.ToLower(fileExt) {
	case "pdf":
		contentType = "application/pdf"
	case "docx":
		contentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case "txt":
		contentType = "text/plain"
	}

	startTime := time.Now()
	_, err := m.client.PutObject(ctx, m.originalBucket, objectKey, reader, fileSize,
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("上传原始简历失败: %w", err)
	}

	m.logger.Printf("[MinIO] 上传原始简历 %s (%d bytes, 用时 %v)", objectKey, fileSize, time.Since(startTime))
	return objectKey, nil
}

// DownloadOriginal 下载原始简历文件
func (m *MinIO) DownloadOriginal(ctx context.Context, objectKey string) ([]byte, error) {
	object, err := m.client.GetObject(ctx, m.originalBucket, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("获取原始简历对象失败: %w", err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		return nil, fmt.Errorf("读取原始简历对象失败: %w", err)
	}
	return data, nil
}

// UploadParsedJSON 上传解析结果JSON
func (m *MinIO) UploadParsedJSON(ctx context.Context, submissionUUID string, data []byte) (string, error) {
	objectKey := fmt.Sprintf("%s/parsed.json", submissionUUID)

	_, err := m.client.PutObject(ctx, m.parsedBucket, objectKey,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return "", fmt.Errorf("上传解析结果失败: %w", err)
	}
	return objectKey, nil
}

// GetParsedJSON 下载解析结果JSON
func (m *MinIO) GetParsedJSON(ctx context.Context, objectKey string) ([]byte, error) {
	object, err := m.client.GetObject(ctx, m.parsedBucket, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("获取解析结果对象失败: %w", err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		return nil, fmt.Errorf("读取解析结果对象失败: %w", err)
	}
	return data, nil
}

// GetPresignedURL 生成限时下载链接
func (m *MinIO) GetPresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	u, err := m.client.PresignedGetObject(ctx, m.originalBucket, objectKey, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("生成预签名URL失败: %w", err)
	}
	return u.String(), nil
}
