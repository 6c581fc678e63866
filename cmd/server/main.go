package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/amjey/staff-tracker/config"
	"github.com/amjey/staff-tracker/internal/api/handler"
	"github.com/amjey/staff-tracker/internal/api/middleware"
	"github.com/amjey/staff-tracker/internal/api/router"
	"github.com/amjey/staff-tracker/internal/app"
	"github.com/amjey/staff-tracker/internal/service"
	"github.com/amjey/staff-tracker/pkg/jwt"
	applogger "github.com/amjey/staff-tracker/pkg/logger"
	"github.com/amjey/staff-tracker/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（默认查找 ./config/config.yaml）")
	flag.Parse()

	// 0. 本地开发时从 .env 注入环境变量，文件不存在时忽略
	_ = godotenv.Load()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 连接 Redis（可选：连接失败时降级为进程内缓存、吊销名单与限流）
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，降级为进程内实现", zap.Error(err))
		rdb = nil
	}

	var (
		revoked service.RevocationStore = service.NewMemoryRevocationStore()
		limiter middleware.Limiter      = middleware.NewMemoryLimiter()
	)
	if rdb != nil {
		revoked, limiter = rdb, rdb
	}

	// 4. 表格后端
	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	backend, err := app.OpenBackend(startCtx, cfg, rdb, logger)
	if err != nil {
		cancelStart()
		logger.Fatal("初始化表格后端失败", zap.Error(err))
	}

	// 5. 依赖注入: Gateway → Service → Handler
	jwtMgr := jwt.NewManager(&cfg.Auth)
	svc := service.NewService(cfg, backend.Gateway, jwtMgr, revoked, logger)
	if err := svc.Bootstrap(startCtx); err != nil {
		// 表头写入失败不阻止启动，读取侧会以告警形式暴露问题
		logger.Warn("初始化工作表表头失败", zap.Error(err))
	}
	cancelStart()

	h := handler.NewHandler(svc)

	// 6. 初始化路由
	engine := router.Setup(cfg, h, svc.Auth, limiter, logger)

	// 7. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 8. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	backend.Close()
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
