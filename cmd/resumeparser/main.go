package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/processor"
)

// 命令行参数
var (
	files       = pflag.StringArrayP("file", "f", nil, "简历文件路径，可重复指定 (.pdf/.docx/.txt)")
	outDir      = pflag.StringP("out", "o", "", "输出目录，每份简历写入 <目录>/<文件名>.json；为空时输出到stdout")
	concurrency = pflag.IntP("concurrency", "c", 1, "并行解析的文件数")
	configPath  = pflag.String("config", "", "配置文件路径，为空时在默认位置查找")
	logLevel    = pflag.String("log-level", "warn", "日志级别: debug, info, warn, error")
)

// errorEntry 失败文件在输出中的错误条目
type errorEntry struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

func main() {
	pflag.Parse()

	// 位置参数也作为输入文件
	inputFiles := append(*files, pflag.Args()...)
	if len(inputFiles) == 0 {
		fmt.Fprintln(os.Stderr, "错误: 至少需要一个简历文件。使用 --file 参数或位置参数指定。")
		pflag.Usage()
		os.Exit(2)
	}

	logger.Init(logger.Config{Level: *logLevel, Format: "pretty"})

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		// CLI模式下配置文件可选，加载失败回退到默认配置
		logger.Warn().Err(err).Msg("加载配置失败，使用默认配置")
		cfg = config.DefaultConfig()
	}

	ctx := context.Background()
	resumeParser, err := processor.NewResumeParser(ctx, &cfg.Parser)
	if err != nil {
		logger.Fatal().Err(err).Msg("初始化简历解析器失败")
	}

	results := resumeParser.ParseBatch(ctx, inputFiles, *concurrency)

	succeeded := 0
	for _, result := range results {
		if result.Err != nil {
			// 失败文件输出错误条目，继续处理其余文件
			emitJSON(errorEntry{File: result.FilePath, Error: result.Err.Error()})
			continue
		}

		data, err := result.Resume.MarshalIndentJSON()
		if err != nil {
			logger.Error().Err(err).Str("file", result.FilePath).Msg("序列化解析结果失败")
			emitJSON(errorEntry{File: result.FilePath, Error: err.Error()})
			continue
		}

		if *outDir != "" {
			if err := writeResult(*outDir, result.FilePath, data); err != nil {
				logger.Error().Err(err).Str("file", result.FilePath).Msg("写入结果文件失败")
				continue
			}
		} else {
			fmt.Println(string(data))
		}
		succeeded++
	}

	logger.Info().
		Int("total", len(results)).
		Int("succeeded", succeeded).
		Msg("批量解析完成")

	if succeeded == 0 {
		os.Exit(1)
	}
}

// emitJSON 把错误条目作为单行JSON写到stdout
func emitJSON(entry errorEntry) {
	data, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "序列化错误条目失败: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

// writeResult 把解析结果写入 <outDir>/<输入文件名>.json
func writeResult(outDir, inputPath string, data []byte) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	base := filepath.Base(inputPath)
	name := strings.TrimSuffix(base, filepath.Ext(base)) + ".json"
	outPath := filepath.Join(outDir, name)
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("写入 %s 失败: %w", outPath, err)
	}
	return nil
}
