package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/storage/models"
	"resume-parser-go/internal/types"
)

var mysqlTracer = otel.Tracer("resume-parser-go/storage/mysql")

// ErrSubmissionNotFound 查询的提交记录不存在
var ErrSubmissionNotFound = errors.New("简历提交记录不存在")

// Database 提交记录与候选人的持久化接口
type Database interface {
	// CreateSubmission 新建一条提交记录
	CreateSubmission(ctx context.Context, submission *models.ResumeSubmission) error

	// UpdateSubmissionStatus 更新提交记录状态
	// 记录不存在返回ErrSubmissionNotFound；状态值未变化的重复更新不报错，
	// 消息重复投递依赖这一点
	UpdateSubmissionStatus(ctx context.Context, submissionUUID, status, errorDetail string) error

	// SaveParseResult 保存解析结果并沉淀候选人记录，重复保存相同结果不报错
	SaveParseResult(ctx context.Context, submissionUUID, parsedObjectKey string, resume *types.ParsedResume) error

	// GetSubmission 查询提交记录，不存在返回ErrSubmissionNotFound
	GetSubmission(ctx context.Context, submissionUUID string) (*models.ResumeSubmission, error)

	// Close 关闭连接
	Close() error
}

// 确保MySQL实现了Database接口
var _ Database = (*MySQL)(nil)

// MySQL 关系型存储，保存提交记录与候选人信息
type MySQL struct {
	db *gorm.DB
}

// NewMySQL 创建MySQL客户端并迁移表结构
func NewMySQL(cfg *config.MySQLConfig) (*MySQL, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MySQL配置不能为空")
	}

	timeout := cfg.ConnectTimeoutSeconds
	if timeout <= 0 {
		timeout = 10
	}
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local&timeout=%ds",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database, timeout)

	logLevel := gormlogger.LogLevel(cfg.LogLevel)
	if cfg.LogLevel < 1 || cfg.LogLevel > 4 {
		logLevel = gormlogger.Warn
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("连接MySQL失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层数据库连接失败: %w", err)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetimeMinutes > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)
	}

	if err := db.AutoMigrate(&models.ResumeSubmission{}, &models.Candidate{}); err != nil {
		return nil, fmt.Errorf("迁移表结构失败: %w", err)
	}

	return &MySQL{db: db}, nil
}

// CreateSubmission 新建一条提交记录
func (m *MySQL) CreateSubmission(ctx context.Context, submission *models.ResumeSubmission) error {
	ctx, span := mysqlTracer.Start(ctx, "MySQL.CreateSubmission", trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(attribute.String("submission.uuid", submission.SubmissionUUID))
	defer span.End()

	if err := m.db.WithContext(ctx).Create(submission).Error; err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("创建提交记录失败: %w", err)
	}
	return nil
}

// UpdateSubmissionStatus 更新提交记录状态，失败时附带错误详情
func (m *MySQL) UpdateSubmissionStatus(ctx context.Context, submissionUUID, status, errorDetail string) error {
	ctx, span := mysqlTracer.Start(ctx, "MySQL.UpdateSubmissionStatus", trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(
		attribute.String("submission.uuid", submissionUUID),
		attribute.String("submission.status", status),
	)
	defer span.End()

	updates := map[string]interface{}{"status": status}
	if errorDetail != "" {
		updates["error_detail"] = errorDetail
	}

	result := m.db.WithContext(ctx).
		Model(&models.ResumeSubmission{}).
		Where("submission_uuid = ?", submissionUUID).
		Updates(updates)
	if result.Error != nil {
		span.SetStatus(codes.Error, result.Error.Error())
		return fmt.Errorf("更新提交状态失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		// MySQL对值未变化的更新同样报0行，消息重复投递时会走到这里
		// 必须确认记录确实不存在才能报not-found，否则重复投递永远失败
		if err := confirmSubmissionExists(m.db.WithContext(ctx), submissionUUID); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return err
		}
	}
	return nil
}

// confirmSubmissionExists 按UUID确认提交记录存在，不存在返回ErrSubmissionNotFound
func confirmSubmissionExists(db *gorm.DB, submissionUUID string) error {
	var count int64
	if err := db.Model(&models.ResumeSubmission{}).
		Where("submission_uuid = ?", submissionUUID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("确认提交记录失败: %w", err)
	}
	if count == 0 {
		return ErrSubmissionNotFound
	}
	return nil
}

// SaveParseResult 保存解析结果并沉淀候选人记录
// 同一事务内更新提交记录并按邮箱upsert候选人
func (m *MySQL) SaveParseResult(ctx context.Context, submissionUUID, parsedObjectKey string, resume *types.ParsedResume) error {
	ctx, span := mysqlTracer.Start(ctx, "MySQL.SaveParseResult", trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(attribute.String("submission.uuid", submissionUUID))
	defer span.End()

	resultJSON, err := json.Marshal(resume)
	if err != nil {
		return fmt.Errorf("序列化解析结果失败: %w", err)
	}

	err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.ResumeSubmission{}).
			Where("submission_uuid = ?", submissionUUID).
			Updates(map[string]interface{}{
				"status":             models.StatusCompleted,
				"parsed_object_key":  parsedObjectKey,
				"parsed_result_json": resultJSON,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// 重复投递时更新前后值相同也报0行，不能直接当not-found
			if err := confirmSubmissionExists(tx, submissionUUID); err != nil {
				return err
			}
		}

		// 没有邮箱就无法去重，跳过候选人沉淀
		if resume.Email == "" {
			return nil
		}

		candidateID, err := uuid.NewV4()
		if err != nil {
			return err
		}
		candidate := models.Candidate{
			CandidateID:  candidateID.String(),
			PrimaryName:  resume.Name,
			PrimaryEmail: resume.Email,
			PrimaryPhone: resume.Phone,
			LinkedInURL:  resume.LinkedIn,
			Location:     resume.Location,
		}
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "primary_email"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"primary_name", "primary_phone", "linked_in_url", "location",
			}),
		}).Create(&candidate).Error
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("保存解析结果失败: %w", err)
	}
	return nil
}

// GetSubmission 查询提交记录
func (m *MySQL) GetSubmission(ctx context.Context, submissionUUID string) (*models.ResumeSubmission, error) {
	ctx, span := mysqlTracer.Start(ctx, "MySQL.GetSubmission", trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(attribute.String("submission.uuid", submissionUUID))
	defer span.End()

	var submission models.ResumeSubmission
	err := m.db.WithContext(ctx).
		Where("submission_uuid = ?", submissionUUID).
		First(&submission).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSubmissionNotFound
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("查询提交记录失败: %w", err)
	}
	return &submission, nil
}

// Close 关闭数据库连接
func (m *MySQL) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
