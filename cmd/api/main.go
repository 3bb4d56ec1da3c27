package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"admin-go/internal/api/handler"
	"admin-go/internal/api/middleware"
	"admin-go/internal/api/router"
	"admin-go/internal/cache"
	"admin-go/internal/config"
	"admin-go/internal/events"
	"admin-go/internal/infra/database"
	infraMinio "admin-go/internal/infra/minio"
	infraRedis "admin-go/internal/infra/redis"
	"admin-go/internal/model"
	"admin-go/internal/repository"
	"admin-go/internal/service"
	"admin-go/internal/upstream"
	"admin-go/pkg/logger"

	_ "admin-go/api/openapi"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title Admin-Go API
// @version 1.0
// @description 管理后台聚合 API 服务
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@admin-go.dev

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host 127.0.0.1:8000
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description 输入格式: Bearer {token}

func main() {
	// 加载配置文件
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 初始化日志系统
	if err := logger.Init(
		cfg.Log.Level,
		cfg.Log.Format,
		cfg.Log.Output,
		cfg.Log.FilePath,
	); err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer logger.Sync()

	// 初始化数据库（后台账号）
	if err := database.Init(&cfg.Database); err != nil {
		logger.Fatal("Failed to init database", zap.Error(err))
	}
	defer database.Close()

	if err := database.AutoMigrate(&model.Account{}); err != nil {
		logger.Fatal("Failed to auto migrate", zap.Error(err))
	}

	// 初始化Redis（列表页缓存）
	if err := infraRedis.Init(&cfg.Redis); err != nil {
		logger.Fatal("Failed to init redis", zap.Error(err))
	}
	defer infraRedis.Close()

	// 初始化MinIO（头像存储）
	if err := infraMinio.Init(&cfg.MinIO); err != nil {
		logger.Fatal("Failed to init minio", zap.Error(err))
	}

	// 初始化Kafka生产者（实体变更事件）
	if err := events.InitProducer(&cfg.Kafka); err != nil {
		logger.Fatal("Failed to init kafka producer", zap.Error(err))
	}
	defer events.CloseProducer()

	// 设置Gin模式
	gin.SetMode(cfg.App.Mode)

	r := gin.New()

	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 初始化依赖（Repository / Client -> Service -> Handler）
	client := upstream.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.TimeoutDuration())
	pages := cache.NewPageCache(infraRedis.Get(), cfg.Upstream.CacheTTLDuration())

	entityTopic := cfg.Kafka.Topics["entity_changed"]
	publish := newEventPublisher(entityTopic)

	accountRepo := repository.NewAccountRepository(database.Get())

	metricsService := service.NewMetricsService(client.FetchPostsForUser, client.FetchCommentCountForPost)
	authService := service.NewAuthService(accountRepo)
	userService := service.NewUserService(client, metricsService, pages, publish)
	adminService := service.NewAdminService(client, pages, publish)
	postService := service.NewPostService(client, pages, publish)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	adminHandler := handler.NewAdminHandler(adminService)
	postHandler := handler.NewPostHandler(postService)

	// 注册基础路由
	r.GET("/healthz", healthCheckHandler)

	// Swagger 文档路由
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 注册业务路由
	router.Setup(r, authHandler, userHandler, adminHandler, postHandler)

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	logger.Info("Starting application",
		zap.String("name", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("mode", cfg.App.Mode),
		zap.String("addr", addr),
	)
	logger.Info("Configuration loaded",
		zap.String("upstream", cfg.Upstream.BaseURL),
		zap.String("database", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)),
		zap.String("redis", cfg.Redis.Addr()),
		zap.String("minio", cfg.MinIO.Endpoint),
	)

	if err := r.Run(addr); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}

// newEventPublisher 返回绑定到指定 topic 的事件发布函数
func newEventPublisher(topic string) service.EventPublisher {
	return func(ctx context.Context, event *events.EntityEvent) error {
		return events.Publish(ctx, topic, event)
	}
}

// healthCheckHandler 健康检查接口
func healthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"message":   "Service is healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
