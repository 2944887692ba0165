package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/types"
)

// 缓存键前缀
const (
	parseResultKeyPrefix = "parse_result:" // parse_result:<file_md5> → ParsedResume JSON
	md5SubmissionPrefix  = "resume_md5:"   // resume_md5:<file_md5> → submission UUID，用于重复上传去重
)

// ErrCacheMiss 缓存未命中
var ErrCacheMiss = errors.New("缓存未命中")

// Cache 解析结果缓存与MD5去重记录的接口
type Cache interface {
	// GetParsedResume 按文件MD5读取缓存的解析结果，未命中返回nil
	GetParsedResume(ctx context.Context, fileMD5 string) (*types.ParsedResume, error)

	// SetParsedResume 写入解析结果缓存
	SetParsedResume(ctx context.Context, fileMD5 string, resume *types.ParsedResume) error

	// GetSubmissionByMD5 查询相同内容文件的历史提交UUID，未命中返回ErrCacheMiss
	GetSubmissionByMD5(ctx context.Context, fileMD5 string) (string, error)

	// SetMD5Record 记录文件MD5到提交UUID的映射
	SetMD5Record(ctx context.Context, fileMD5, submissionUUID string) error

	// Close 关闭连接
	Close() error
}

// 确保Redis实现了Cache接口
var _ Cache = (*Redis)(nil)

// Redis 解析结果缓存与MD5去重记录
type Redis struct {
	client      *redis.Client
	cacheExpiry time.Duration
}

// NewRedis 创建Redis客户端并挂载otel追踪钩子
func NewRedis(cfg *config.RedisConfig) (*Redis, error) {
	if cfg == nil {
		return nil, fmt.Errorf("Redis配置不能为空")
	}

	options := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.PoolSize > 0 {
		options.PoolSize = cfg.PoolSize
	}
	if cfg.MinIdleConns > 0 {
		options.MinIdleConns = cfg.MinIdleConns
	}
	if cfg.DialTimeoutSeconds > 0 {
		options.DialTimeout = time.Duration(cfg.DialTimeoutSeconds) * time.Second
	}
	if cfg.ReadTimeoutSeconds > 0 {
		options.ReadTimeout = time.Duration(cfg.ReadTimeoutSeconds) * time.Second
	}
	if cfg.WriteTimeoutSeconds > 0 {
		options.WriteTimeout = time.Duration(cfg.WriteTimeoutSeconds) * time.Second
	}

	client := redis.NewClient(options)
	if err := redisotel.InstrumentTracing(client); err != nil {
		return nil, fmt.Errorf("挂载Redis追踪钩子失败: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("连接Redis失败 (%s): %w", cfg.Address, err)
	}

	expireDays := cfg.ParseCacheExpireDays
	if expireDays <= 0 {
		expireDays = 7
	}

	return &Redis{
		client:      client,
		cacheExpiry: time.Duration(expireDays) * 24 * time.Hour,
	}, nil
}

// GetParsedResume 按文件MD5读取缓存的解析结果，未命中返回nil
func (r *Redis) GetParsedResume(ctx context.Context, fileMD5 string) (*types.ParsedResume, error) {
	data, err := r.client.Get(ctx, parseResultKeyPrefix+fileMD5).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("读取解析结果缓存失败: %w", err)
	}

	var resume types.ParsedResume
	if err := json.Unmarshal(data, &resume); err != nil {
		return nil, fmt.Errorf("反序列化缓存的解析结果失败: %w", err)
	}
	return &resume, nil
}

// SetParsedResume 写入解析结果缓存
func (r *Redis) SetParsedResume(ctx context.Context, fileMD5 string, resume *types.ParsedResume) error {
	data, err := json.Marshal(resume)
	if err != nil {
		return fmt.Errorf("序列化解析结果失败: %w", err)
	}
	if err := r.client.Set(ctx, parseResultKeyPrefix+fileMD5, data, r.cacheExpiry).Err(); err != nil {
		return fmt.Errorf("写入解析结果缓存失败: %w", err)
	}
	return nil
}

// GetSubmissionByMD5 查询相同内容文件的历史提交UUID
func (r *Redis) GetSubmissionByMD5(ctx context.Context, fileMD5 string) (string, error) {
	uuid, err := r.client.Get(ctx, md5SubmissionPrefix+fileMD5).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	if err != nil {
		return "", fmt.Errorf("查询MD5记录失败: %w", err)
	}
	return uuid, nil
}

// SetMD5Record 记录文件MD5到提交UUID的映射
func (r *Redis) SetMD5Record(ctx context.Context, fileMD5, submissionUUID string) error {
	if err := r.client.Set(ctx, md5SubmissionPrefix+fileMD5, submissionUUID, r.cacheExpiry).Err(); err != nil {
		return fmt.Errorf("写入MD5记录失败: %w", err)
	}
	return nil
}

// Close 关闭Redis连接
func (r *Redis) Close() error {
	return r.client.Close()
}
