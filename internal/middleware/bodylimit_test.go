package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// TestBodyLimitRejectsDeclaredOversize 声明的 Content-Length 超限直接返回 413
func TestBodyLimitRejectsDeclaredOversize(t *testing.T) {
	router := gin.New()
	router.Use(BodyLimitMiddleware(16))
	router.POST("/echo", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req, _ := http.NewRequest("POST", "/echo", strings.NewReader(strings.Repeat("x", 100)))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "Request body too large")
}

// TestBodyLimitCapsStreamedBody 未声明长度的请求体在读取阶段被截断报错
func TestBodyLimitCapsStreamedBody(t *testing.T) {
	router := gin.New()
	router.Use(BodyLimitMiddleware(16))
	router.POST("/echo", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		c.Status(http.StatusOK)
	})

	req, _ := http.NewRequest("POST", "/echo", strings.NewReader(strings.Repeat("x", 100)))
	req.ContentLength = -1 // 模拟 chunked 传输
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestBodyLimitPassesSmallBody 正常大小的请求体不受影响
func TestBodyLimitPassesSmallBody(t *testing.T) {
	router := gin.New()
	router.Use(BodyLimitMiddleware(16))
	router.POST("/echo", func(c *gin.Context) {
		data, err := io.ReadAll(c.Request.Body)
		assert.NoError(t, err)
		c.String(http.StatusOK, string(data))
	})

	req, _ := http.NewRequest("POST", "/echo", strings.NewReader("hello"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello", w.Body.String())
}
