package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	hertzzerolog "github.com/hertz-contrib/logger/zerolog"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"

	"resume-parser-go/internal/api/handler"
	"resume-parser-go/internal/api/router"
	"resume-parser-go/internal/config"
	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/processor"
	"resume-parser-go/internal/storage"
	"resume-parser-go/internal/tracing"
)

func main() {
	// 1. 加载配置
	cfg, err := config.LoadConfig("")
	if err != nil {
		logger.Fatal().Err(err).Msg("加载配置文件失败")
	}

	// 2. 初始化日志系统
	logger.Init(logger.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.ReportCaller,
	})
	logger.Logger = logger.Logger.With().
		Str("app", "resume-parser-go").
		Logger()
	hlog.SetLogger(hertzzerolog.New())

	ctx := context.Background()

	// 3. 初始化链路追踪
	shutdownTracing, err := tracing.Init(ctx, &cfg.Tracing)
	if err != nil {
		logger.Warn().Err(err).Msg("初始化链路追踪失败，继续以无追踪模式运行")
		shutdownTracing = func(context.Context) error { return nil }
	}

	// 4. 初始化存储管理器
	storageManager, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("初始化存储管理器失败")
	}
	defer storageManager.Close()

	if storageManager.MinIO == nil || storageManager.MySQL == nil || storageManager.RabbitMQ == nil {
		logger.Fatal().Msg("服务模式需要MinIO、MySQL和RabbitMQ均可用")
	}

	// 5. 组装解析流水线
	resumeParser, err := processor.NewResumeParser(ctx, &cfg.Parser)
	if err != nil {
		logger.Fatal().Err(err).Msg("初始化简历解析器失败")
	}

	resumeHandler := handler.NewResumeHandler(cfg, storageManager, resumeParser)
	logger.Info().Msg("简历处理器初始化完成")

	// 6. 启动解析消费者
	consumerCtx, cancelConsumer := context.WithCancel(ctx)
	defer cancelConsumer()
	go func() {
		if err := resumeHandler.StartParseConsumer(consumerCtx); err != nil {
			logger.Error().Err(err).Msg("解析消费者退出")
		}
	}()

	// 7. 启动HTTP服务器，挂载请求级追踪中间件
	tracer, tracerCfg := hertztracing.NewServerTracer()
	h := server.Default(server.WithHostPorts(cfg.Server.Address), tracer)
	h.Use(hertztracing.ServerMiddleware(tracerCfg))
	router.RegisterRoutes(h, resumeHandler, cfg.Server.APIKey)

	go func() {
		if err := h.Run(); err != nil {
			logger.Fatal().Err(err).Msg("启动HTTP服务器失败")
		}
	}()
	logger.Info().Str("address", cfg.Server.Address).Msg("HTTP服务器已启动")

	// 8. 等待终止信号后优雅退出
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("接收到终止信号，正在优雅退出...")

	cancelConsumer()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP服务器关闭失败")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("链路追踪关闭失败")
	}

	logger.Info().Msg("优雅退出完成")
}
