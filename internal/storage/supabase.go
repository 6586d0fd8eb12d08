package storage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"go.uber.org/zap"

	sb "socialmarket-backend/internal/supabase"
	"socialmarket-backend/internal/util"
)

// SupabaseStorage 把文件写入托管端的存储桶，返回公开访问URL
type SupabaseStorage struct {
	client *sb.Client
	bucket string
}

func NewSupabaseStorage(client *sb.Client, bucket string) *SupabaseStorage {
	return &SupabaseStorage{client: client, bucket: bucket}
}

func (s *SupabaseStorage) UploadFile(file *multipart.FileHeader, path string) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return "", fmt.Errorf("读取上传文件失败: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	contentType := file.Header.Get("Content-Type")
	if err := s.client.UploadObject(ctx, s.bucket, path, data, contentType); err != nil {
		return "", fmt.Errorf("上传到存储桶失败: %w", err)
	}

	url := s.client.PublicURL(s.bucket, path)
	util.Logger.Info("文件上传成功",
		zap.String("bucket", s.bucket),
		zap.String("path", path))
	return url, nil
}
