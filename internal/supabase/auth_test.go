package supabase

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

// TestVerifyTokenLocal 配置了密钥时本地校验，不访问网络
func TestVerifyTokenLocal(t *testing.T) {
	client, err := New(Config{
		URL:        "http://127.0.0.1:1", // 不可达，确保没有远程调用
		ServiceKey: "key",
		JWTSecret:  "super-secret",
	})
	require.NoError(t, err)

	token := signToken(t, "super-secret", jwt.MapClaims{
		"sub":   "user-1",
		"email": "a@b.c",
		"role":  "authenticated",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	user, err := client.VerifyToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, "a@b.c", user.Email)
	assert.Equal(t, "authenticated", user.Role)
}

// TestVerifyTokenLocalRejects 错误签名和过期令牌都被拒绝
func TestVerifyTokenLocalRejects(t *testing.T) {
	client, err := New(Config{
		URL:        "http://127.0.0.1:1",
		ServiceKey: "key",
		JWTSecret:  "super-secret",
	})
	require.NoError(t, err)

	// 错误密钥签名
	bad := signToken(t, "wrong-secret", jwt.MapClaims{"sub": "user-1"})
	_, err = client.VerifyToken(context.Background(), bad)
	assert.Error(t, err)

	// 过期令牌
	expired := signToken(t, "super-secret", jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	_, err = client.VerifyToken(context.Background(), expired)
	assert.Error(t, err)

	// 缺少 sub
	noSub := signToken(t, "super-secret", jwt.MapClaims{
		"email": "a@b.c",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	_, err = client.VerifyToken(context.Background(), noSub)
	assert.Error(t, err)
}

// TestVerifyTokenRemote 未配置密钥时走认证端点
func TestVerifyTokenRemote(t *testing.T) {
	client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/user", r.URL.Path)
		assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
		w.Write([]byte(`{"id":"user-9","email":"x@y.z","role":"authenticated"}`))
	})
	_ = srv

	user, err := client.VerifyToken(context.Background(), "user-token")
	require.NoError(t, err)
	assert.Equal(t, "user-9", user.ID)
}
