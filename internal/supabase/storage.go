package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// UploadObject 上传对象到指定存储桶
func (c *Client) UploadObject(ctx context.Context, bucket, path string, data []byte, contentType string) error {
	reqURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, bucket, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("构造请求失败: %w", err)
	}

	c.setHeaders(req)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	return resp.Err()
}

// DeleteObjects 从存储桶删除对象
func (c *Client) DeleteObjects(ctx context.Context, bucket string, paths []string) error {
	reqURL := fmt.Sprintf("%s/storage/v1/object/%s", c.baseURL, bucket)

	body := fmt.Appendf(nil, `{"prefixes":%s}`, mustJSON(paths))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, reqURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("构造请求失败: %w", err)
	}

	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	return resp.Err()
}

// PublicURL 返回对象的公开访问地址
func (c *Client) PublicURL(bucket, path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.baseURL, bucket, path)
}

func mustJSON(v any) []byte {
	b, _ := json.Marshal(v)
	return b
}

