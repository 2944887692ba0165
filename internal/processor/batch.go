package processor

import (
	"context"
	"sync"

	"resume-parser-go/internal/types"
)

// FileResult 批量解析中单个文件的结果
// Err非nil时Resume为nil，该文件被跳过但不影响其余文件
type FileResult struct {
	FilePath string
	Resume   *types.ParsedResume
	Err      error
}

// ParseBatch 批量解析多个简历文件
// 文件之间相互独立，按concurrency个工作协程并行，结果顺序与输入一致
func (p *ResumeParser) ParseBatch(ctx context.Context, filePaths []string, concurrency int) []FileResult {
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > len(filePaths) {
		concurrency = len(filePaths)
	}

	results := make([]FileResult, len(filePaths))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				filePath := filePaths[i]
				resume, err := p.ParseFile(ctx, filePath)
				if err != nil {
					p.logger.Warn().Err(err).Str("file", filePath).Msg("解析失败，跳过该文件")
				}
				results[i] = FileResult{FilePath: filePath, Resume: resume, Err: err}
			}
		}()
	}

	for i := range filePaths {
		select {
		case jobs <- i:
		case <-ctx.Done():
			// 剩余文件标记为取消
			for j := i; j < len(filePaths); j++ {
				results[j] = FileResult{FilePath: filePaths[j], Err: ctx.Err()}
			}
			close(jobs)
			wg.Wait()
			return results
		}
	}
	close(jobs)
	wg.Wait()

	return results
}
