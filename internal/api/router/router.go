package router

import (
	"context"
	"errors"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hertz-contrib/keyauth"

	"resume-parser-go/internal/api/handler"
	"resume-parser-go/internal/storage"
)

// RegisterRoutes 注册API路由
// apiKey非空时对业务接口启用X-API-Key鉴权
func RegisterRoutes(h *server.Hertz, resumeHandler *handler.ResumeHandler, apiKey string) {
	api := h.Group("/api/v1")

	if apiKey != "" {
		api.Use(keyauth.New(
			keyauth.WithKeyLookUp("header:X-API-Key", ""),
			keyauth.WithValidator(func(ctx context.Context, c *app.RequestContext, key string) (bool, error) {
				return key == apiKey, nil
			}),
		))
	}

	api.POST("/resume/upload", func(c context.Context, ctx *app.RequestContext) {
		fileHeader, err := ctx.FormFile("file")
		if err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "文件未找到"})
			return
		}

		sourceChannel := ctx.PostForm("source_channel")
		if sourceChannel == "" {
			sourceChannel = "web_upload"
		}

		file, err := fileHeader.Open()
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": "打开文件失败"})
			return
		}
		defer file.Close()

		resp, err := resumeHandler.HandleResumeUpload(c, file, fileHeader.Size, fileHeader.Filename, sourceChannel)
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, resp)
	})

	api.GET("/resume/:uuid", func(c context.Context, ctx *app.RequestContext) {
		submissionUUID := ctx.Param("uuid")
		if submissionUUID == "" {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "缺少提交UUID"})
			return
		}

		resp, err := resumeHandler.GetSubmissionResult(c, submissionUUID)
		if err != nil {
			if errors.Is(err, storage.ErrSubmissionNotFound) {
				ctx.JSON(consts.StatusNotFound, utils.H{"error": "提交记录不存在"})
				return
			}
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, resp)
	})

	// 健康检查不做鉴权
	h.GET("/api/v1/health", func(c context.Context, ctx *app.RequestContext) {
		ctx.JSON(consts.StatusOK, utils.H{"status": "ok"})
	})
}
