package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"admin-go/internal/config"
	"admin-go/internal/events"
	"admin-go/internal/realtime"
	"admin-go/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.FilePath); err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 监听系统信号，优雅退出
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("Received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	hub := realtime.NewHub()
	go hub.Run(ctx)

	// 消费实体变更事件并广播给在线客户端
	entityTopic := cfg.Kafka.Topics["entity_changed"]
	go events.StartConsumer(ctx, cfg.Kafka.Brokers, entityTopic, "admin-go-notifier", func(event *events.EntityEvent) error {
		return hub.Broadcast(event)
	})

	upgrader := realtime.NewUpgrader(cfg.Realtime.Origin)
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		realtime.ServeWS(hub, upgrader, w, r)
	})

	addr := fmt.Sprintf(":%d", cfg.Realtime.Port)
	srv := &http.Server{Addr: addr, Handler: mux}

	logger.Info("Notifier started",
		zap.String("addr", addr),
		zap.String("topic", entityTopic),
		zap.Strings("brokers", cfg.Kafka.Brokers),
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start notifier server", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Notifier shutdown failed", zap.Error(err))
	}
	logger.Info("Notifier stopped")
}
