package util

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateObjectKey 生成对象存储键：<用户ID>/<时间戳>-<随机串><扩展名>
func GenerateObjectKey(userID, originalFilename string) string {
	ext := strings.ToLower(filepath.Ext(originalFilename))
	random := uuid.NewString()[:8]
	return fmt.Sprintf("%s/%d-%s%s", userID, time.Now().UnixNano(), random, ext)
}

// IsImageContentType 判断 MIME 类型是否为图片
func IsImageContentType(contentType string) bool {
	return strings.HasPrefix(contentType, "image/")
}
