package service

import (
	"context"

	"admin-go/internal/events"
	"admin-go/pkg/logger"

	"go.uber.org/zap"
)

// 缓存与事件使用的资源名
const (
	ResourceUsers  = "users"
	ResourceAdmins = "admins"
	ResourcePosts  = "posts"
)

// PageStore 列表页缓存抽象，由 cache.PageCache 实现
type PageStore interface {
	Get(ctx context.Context, key string, out any) (bool, error)
	Set(ctx context.Context, key string, val any) error
	Invalidate(ctx context.Context, resource string) error
}

// EventPublisher 实体变更事件发布函数，由 main 绑定具体 topic
type EventPublisher func(ctx context.Context, event *events.EntityEvent) error

// notify 发布变更事件；通知只是尽力而为，失败不影响写操作结果
func notify(ctx context.Context, publish EventPublisher, resource, action, message string) {
	if publish == nil {
		return
	}
	if err := publish(ctx, events.NewEntityEvent(resource, action, message)); err != nil {
		logger.Warn("Failed to publish entity event",
			zap.String("resource", resource),
			zap.String("action", action),
			zap.Error(err),
		)
	}
}

// invalidate 写操作后清理相关资源的缓存页
func invalidate(ctx context.Context, store PageStore, resources ...string) {
	if store == nil {
		return
	}
	for _, res := range resources {
		if err := store.Invalidate(ctx, res); err != nil {
			logger.Warn("Failed to invalidate page cache",
				zap.String("resource", res),
				zap.Error(err),
			)
		}
	}
}
