package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

// Config 结构体用于存储应用程序的配置信息
type Config struct {
	Port               string
	SupabaseURL        string
	SupabaseServiceKey string
	SupabaseJWTSecret  string
	SupabaseBucket     string
	StorageDriver      string // supabase | s3 | local
	S3Region           string
	S3Bucket           string
	LocalStoragePath   string
	CORSOrigins        []string
	LogLevel           string
	RateLimitRPS       int
	RateLimitBurst     int
	MaxUploadSizeMB    int64
	MaxBodySizeMB      int64 // 请求体总大小上限，需容纳批量上传
	Debug              bool  // 是否开启调试模式
}

// AppConfig 是全局配置变量
var AppConfig Config

// Init 函数用于初始化配置
func Init() {
	// 加载 .env 文件
	err := godotenv.Load()
	if err != nil {
		log.Printf("警告：无法加载 .env 文件: %v", err)
	}

	// 从环境变量中读取配置
	AppConfig = Config{
		Port:               getEnv("PORT", "8080"),
		SupabaseURL:        getEnv("SUPABASE_URL", ""),
		SupabaseServiceKey: getEnv("SUPABASE_SERVICE_KEY", ""),
		SupabaseJWTSecret:  getEnv("SUPABASE_JWT_SECRET", ""),
		SupabaseBucket:     getEnv("SUPABASE_BUCKET", "images"),
		StorageDriver:      getEnv("STORAGE_DRIVER", "supabase"),
		S3Region:           getEnv("S3_REGION", "us-west-2"),
		S3Bucket:           getEnv("S3_BUCKET", ""),
		LocalStoragePath:   getEnv("LOCAL_STORAGE_PATH", "./uploads"),
		CORSOrigins:        splitAndTrim(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		RateLimitRPS:       getEnvAsInt("RATE_LIMIT_RPS", 20),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 40),
		MaxUploadSizeMB:    int64(getEnvAsInt("MAX_UPLOAD_SIZE_MB", 5)),
		MaxBodySizeMB:      int64(getEnvAsInt("MAX_BODY_SIZE_MB", 64)),
		Debug:              getEnvAsBool("DEBUG", false),
	}

	validateConfig()

	if AppConfig.Debug {
		gin.SetMode(gin.DebugMode)
		log.Println("应用程序运行在调试模式")
	} else {
		gin.SetMode(gin.ReleaseMode)
		log.Println("应用程序运行在生产模式")
	}

	log.Printf("配置加载完成。后端：%s，存储驱动：%s", AppConfig.SupabaseURL, AppConfig.StorageDriver)
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultVal int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	valStr := getEnv(key, "")
	if val, err := strconv.ParseBool(valStr); err == nil {
		return val
	}
	return defaultVal
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func validateConfig() {
	if AppConfig.SupabaseURL == "" || AppConfig.SupabaseServiceKey == "" {
		log.Fatal("错误：Supabase 配置不完整")
	}
	if AppConfig.StorageDriver == "s3" && AppConfig.S3Bucket == "" {
		log.Fatal("错误：S3 存储桶未设置")
	}
}
