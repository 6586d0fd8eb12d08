// Package storage 抽象图片对象的落盘位置：Supabase 存储桶、S3 或本地磁盘
package storage

import "mime/multipart"

// Uploader 保存上传的文件并返回可访问的URL或相对路径
type Uploader interface {
	UploadFile(file *multipart.FileHeader, path string) (string, error)
}
