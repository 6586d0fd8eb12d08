package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"socialmarket-backend/config"
	"socialmarket-backend/internal/api/community"
	"socialmarket-backend/internal/api/marketplace"
	"socialmarket-backend/internal/api/message"
	"socialmarket-backend/internal/api/post"
	"socialmarket-backend/internal/api/profile"
	"socialmarket-backend/internal/api/upload"
	"socialmarket-backend/internal/cache"
	"socialmarket-backend/internal/middleware"
	"socialmarket-backend/internal/repository/supabase"
	"socialmarket-backend/internal/service"
	"socialmarket-backend/internal/storage"
	sb "socialmarket-backend/internal/supabase"
	"socialmarket-backend/internal/util"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			util.Logger.Error("程序发生严重错误", zap.Any("error", r))
		}
	}()

	// 初始化配置
	config.Init()

	// 初始化日志
	util.InitLogger(config.AppConfig.LogLevel)
	defer util.Logger.Sync()

	util.Logger.Info("应用程序启动")

	// 托管后端客户端
	client, err := sb.New(sb.Config{
		URL:        config.AppConfig.SupabaseURL,
		ServiceKey: config.AppConfig.SupabaseServiceKey,
		JWTSecret:  config.AppConfig.SupabaseJWTSecret,
	})
	if err != nil {
		util.Logger.Fatal("初始化后端客户端失败", zap.Error(err))
	}
	util.Logger.Info("后端客户端初始化完成", zap.String("base_url", config.AppConfig.SupabaseURL))

	// 进程内缓存
	appCache := cache.New(time.Minute)
	defer appCache.Stop()

	// 注册自定义验证器
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("username_format", util.ValidateUsernameFormat)
	}

	// 文件存储驱动
	uploader := newUploader(client)

	// 初始化存储库、服务和处理器
	postRepo := supabase.NewPostRepository(client)
	postService := service.NewPostService(postRepo, appCache)
	postHandler := post.NewPostHandler(postService)

	profileRepo := supabase.NewProfileRepository(client)
	profileService := service.NewProfileService(profileRepo, appCache)
	profileHandler := profile.NewProfileHandler(profileService)

	communityRepo := supabase.NewCommunityRepository(client)
	communityService := service.NewCommunityService(communityRepo, appCache)
	communityHandler := community.NewCommunityHandler(communityService)

	itemRepo := supabase.NewMarketplaceRepository(client)
	itemService := service.NewMarketplaceService(itemRepo, appCache)
	marketplaceHandler := marketplace.NewMarketplaceHandler(itemService)

	messageRepo := supabase.NewMessageRepository(client)
	messageService := service.NewMessageService(messageRepo, appCache)
	messageHandler := message.NewMessageHandler(messageService)

	uploadHandler := upload.NewUploadHandler(uploader, config.AppConfig.MaxUploadSizeMB)

	// 初始化错误监控和限流
	errorMonitor := middleware.NewErrorMonitor()
	rateLimiter := middleware.NewRateLimiter(config.AppConfig.RateLimitRPS, config.AppConfig.RateLimitBurst)
	rateLimiter.StartCleanup(10 * time.Minute)
	metrics := middleware.NewMetrics("socialmarket")

	// 设置 Gin 路由
	r := gin.New()

	r.Use(middleware.RecoveryMiddleware())
	r.Use(middleware.ErrorMonitorMiddleware(errorMonitor))
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.BodyLimitMiddleware(config.AppConfig.MaxBodySizeMB << 20))
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(metrics.Handler())

	// 配置 CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = config.AppConfig.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	r.Use(rateLimiter.Handler())

	// 健康检查与指标
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "OK",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 本地存储时暴露静态文件
	if config.AppConfig.StorageDriver == "local" {
		r.Static("/uploads", config.AppConfig.LocalStoragePath)
	}

	requireAuth := middleware.AuthMiddleware(client)
	optionalAuth := middleware.OptionalAuthMiddleware(client)

	// 定义 API 路由
	api := r.Group("/api")
	{
		// 帖子相关路由
		api.GET("/posts", optionalAuth, postHandler.ListPosts)
		api.POST("/posts", requireAuth, postHandler.CreatePost)
		api.GET("/posts/:id", optionalAuth, postHandler.GetPost)
		api.PUT("/posts/:id", requireAuth, postHandler.UpdatePost)
		api.DELETE("/posts/:id", requireAuth, postHandler.DeletePost)
		api.POST("/posts/:id/like", requireAuth, postHandler.ToggleLike)
		api.GET("/posts/:id/comments", optionalAuth, postHandler.ListComments)
		api.POST("/posts/:id/comments", requireAuth, postHandler.AddComment)
		api.DELETE("/comments/:id", requireAuth, postHandler.DeleteComment)

		// 商品相关路由
		api.GET("/marketplace", optionalAuth, marketplaceHandler.ListItems)
		api.POST("/marketplace", requireAuth, marketplaceHandler.CreateItem)
		api.GET("/marketplace/my", requireAuth, marketplaceHandler.MyItems)
		api.GET("/marketplace/:id", optionalAuth, marketplaceHandler.GetItem)
		api.PUT("/marketplace/:id", requireAuth, marketplaceHandler.UpdateItem)
		api.PATCH("/marketplace/:id/sold", requireAuth, marketplaceHandler.SetSold)
		api.DELETE("/marketplace/:id", requireAuth, marketplaceHandler.DeleteItem)

		// 资料相关路由
		api.GET("/profiles/me", requireAuth, profileHandler.GetMe)
		api.PUT("/profiles/me", requireAuth, profileHandler.UpdateMe)
		api.GET("/profiles/username/:username", profileHandler.GetProfileByUsername)
		api.GET("/profiles/:id", profileHandler.GetProfile)

		// 社区相关路由
		api.GET("/communities", communityHandler.ListCommunities)
		api.POST("/communities", requireAuth, communityHandler.CreateCommunity)
		api.GET("/communities/:id", communityHandler.GetCommunity)
		api.POST("/communities/:id/join", requireAuth, communityHandler.Join)
		api.POST("/communities/:id/leave", requireAuth, communityHandler.Leave)
		api.GET("/communities/:id/members", communityHandler.ListMembers)

		// 私信相关路由
		api.POST("/messages", requireAuth, messageHandler.SendMessage)
		api.GET("/messages/conversations", requireAuth, messageHandler.ListConversations)
		api.GET("/messages/:userId", requireAuth, messageHandler.GetThread)
		api.PATCH("/messages/:id/read", requireAuth, messageHandler.MarkRead)

		// 上传相关路由
		api.POST("/upload", requireAuth, uploadHandler.UploadImage)
		api.POST("/upload/multiple", requireAuth, uploadHandler.UploadImages)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
	})

	srv := &http.Server{
		Addr:    ":" + config.AppConfig.Port,
		Handler: r,
	}

	// 在一个新的 goroutine 中启动服务器
	go func() {
		util.Logger.Info("服务器正在启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			util.Logger.Fatal("启动服务器失败", zap.Error(err))
		}
	}()

	// 等待中断信号以优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	util.Logger.Info("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		util.Logger.Fatal("服务器强制关闭", zap.Error(err))
	}

	util.Logger.Info("服务器已优雅关闭")
}

// newUploader 按配置选择文件存储驱动
func newUploader(client *sb.Client) storage.Uploader {
	switch config.AppConfig.StorageDriver {
	case "s3":
		s3Client, err := storage.NewS3Client(config.AppConfig.S3Region, config.AppConfig.S3Bucket)
		if err != nil {
			util.Logger.Fatal("初始化S3客户端失败", zap.Error(err))
		}
		return s3Client
	case "local":
		localStorage, err := storage.NewLocalStorage(config.AppConfig.LocalStoragePath)
		if err != nil {
			util.Logger.Fatal("初始化本地存储失败", zap.Error(err))
		}
		return localStorage
	default:
		return storage.NewSupabaseStorage(client, config.AppConfig.SupabaseBucket)
	}
}
