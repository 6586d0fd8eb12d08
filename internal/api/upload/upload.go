package upload

import (
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"socialmarket-backend/internal/errors"
	"socialmarket-backend/internal/middleware"
	"socialmarket-backend/internal/storage"
	"socialmarket-backend/internal/util"
)

// 批量上传一次最多的文件数
const maxBatchFiles = 10

// UploadHandler 处理图片上传请求
type UploadHandler struct {
	uploader    storage.Uploader
	maxSizeByte int64
}

// NewUploadHandler 创建一个新的 UploadHandler 实例
func NewUploadHandler(uploader storage.Uploader, maxSizeMB int64) *UploadHandler {
	return &UploadHandler{
		uploader:    uploader,
		maxSizeByte: maxSizeMB << 20,
	}
}

// UploadImage 单文件上传，表单字段名 image
func (h *UploadHandler) UploadImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrValidation, "No image file provided"))
		return
	}

	url, err := h.saveOne(c, file)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// UploadImages 多文件上传，表单字段名 images
func (h *UploadHandler) UploadImages(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrValidation, "Invalid multipart form"))
		return
	}
	files := form.File["images"]
	if len(files) == 0 {
		errors.HandleError(c, errors.New(errors.ErrValidation, "No image files provided"))
		return
	}
	if len(files) > maxBatchFiles {
		errors.HandleError(c, errors.New(errors.ErrValidation,
			fmt.Sprintf("Too many files, limit is %d", maxBatchFiles)))
		return
	}

	// 先整体校验再逐个落盘，避免半成功的批次
	for _, file := range files {
		if err := h.validate(file); err != nil {
			errors.HandleError(c, err)
			return
		}
	}

	urls := make([]string, 0, len(files))
	for _, file := range files {
		url, err := h.saveOne(c, file)
		if err != nil {
			errors.HandleError(c, err)
			return
		}
		urls = append(urls, url)
	}
	c.JSON(http.StatusOK, gin.H{"urls": urls})
}

func (h *UploadHandler) saveOne(c *gin.Context, file *multipart.FileHeader) (string, error) {
	if err := h.validate(file); err != nil {
		return "", err
	}

	key := util.GenerateObjectKey(middleware.CallerID(c), file.Filename)
	url, err := h.uploader.UploadFile(file, key)
	if err != nil {
		util.Logger.Error("文件上传失败",
			zap.String("filename", file.Filename),
			zap.Error(err))
		return "", errors.Wrap(errors.ErrInternal, "Failed to upload file", err)
	}
	return url, nil
}

func (h *UploadHandler) validate(file *multipart.FileHeader) error {
	if file.Size > h.maxSizeByte {
		return errors.New(errors.ErrUploadRejected,
			fmt.Sprintf("File too large, limit is %dMB", h.maxSizeByte>>20))
	}
	if !util.IsImageContentType(file.Header.Get("Content-Type")) {
		return errors.New(errors.ErrUploadRejected, "Only image files are allowed")
	}
	return nil
}
