package controller

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"line_price_portal/internal/apperr"
	"line_price_portal/internal/middleware"
	"line_price_portal/internal/service"
)

// ==================== 统一响应 ====================

func respondOK(ctx *gin.Context, message string, data interface{}) {
	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": message,
		"data":    data,
	})
}

// respondError 按错误类别映射状态码，存储错误只返回通用信息
func respondError(ctx *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("request_id", ctx.GetString(middleware.RequestIDKey)).
			Str("path", ctx.FullPath()).
			Msg("request failed")
	}
	ctx.JSON(status, gin.H{
		"code":    status,
		"message": apperr.PublicMessage(err),
		"data":    nil,
	})
}

func respondBindError(ctx *gin.Context, err error) {
	ctx.JSON(http.StatusBadRequest, gin.H{
		"code":    400,
		"message": "invalid parameters: " + err.Error(),
		"data":    nil,
	})
}

// parseID 读取路径参数中的正整数 ID
func parseID(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondError(ctx, apperr.Validationf("invalid %s", name))
		return 0, false
	}
	return id, true
}

func currentActor(ctx *gin.Context) service.Actor {
	return service.Actor{ID: middleware.GetUserID(ctx), Role: middleware.GetUserRole(ctx)}
}

// ==================== 上传 ====================

var errNoFile = apperr.Validation("no file uploaded")

// readUpload 读取上传文件，超过大小限制直接拒绝
func readUpload(fh *multipart.FileHeader) (service.UploadFile, error) {
	if fh == nil {
		return service.UploadFile{}, errNoFile
	}
	if fh.Size > service.MaxUploadSize {
		return service.UploadFile{}, service.ErrFileTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return service.UploadFile{}, apperr.Validationf("cannot open %s", fh.Filename)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, service.MaxUploadSize+1))
	if err != nil {
		return service.UploadFile{}, apperr.Store(fmt.Errorf("read upload: %w", err))
	}
	if int64(len(data)) > service.MaxUploadSize {
		return service.UploadFile{}, service.ErrFileTooLarge
	}

	return service.UploadFile{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// readUploads 读取表单中 field 字段的全部文件
func readUploads(ctx *gin.Context, field string) ([]service.UploadFile, error) {
	form, err := ctx.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, apperr.Validation("invalid multipart form")
	}
	var files []service.UploadFile
	for _, fh := range form.File[field] {
		f, err := readUpload(fh)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}
