package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"admin-go/internal/config"
	"admin-go/pkg/logger"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// 实体变更动作
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// EntityEvent 实体变更事件，API 在写操作成功后发布，
// 通知服务消费后广播给在线的仪表盘客户端
type EntityEvent struct {
	ID       string `json:"id"`
	Resource string `json:"resource"` // users / admins / posts
	Action   string `json:"action"`
	Message  string `json:"message"`
	At       string `json:"at"` // RFC3339
}

// NewEntityEvent 构造带事件 ID 与时间戳的变更事件
func NewEntityEvent(resource, action, message string) *EntityEvent {
	return &EntityEvent{
		ID:       uuid.NewString(),
		Resource: resource,
		Action:   action,
		Message:  message,
		At:       time.Now().UTC().Format(time.RFC3339),
	}
}

var producer *kafka.Writer

// InitProducer 初始化 Kafka 生产者
func InitProducer(cfg *config.KafkaConfig) error {
	producer = &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	logger.Info("Kafka producer initialized",
		zap.Strings("brokers", cfg.Brokers),
	)

	return nil
}

// Publish 发布实体变更事件到指定 topic
func Publish(ctx context.Context, topic string, event *EntityEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal entity event: %w", err)
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(event.Resource),
		Value: payload,
	}

	if err := producer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish entity event: %w", err)
	}

	logger.Info("Entity event published",
		zap.String("resource", event.Resource),
		zap.String("action", event.Action),
		zap.String("topic", topic),
	)

	return nil
}

// CloseProducer 关闭生产者
func CloseProducer() error {
	if producer == nil {
		return nil
	}
	logger.Info("Kafka producer closed")
	return producer.Close()
}

// EventHandler 处理实体变更事件的回调函数
type EventHandler func(event *EntityEvent) error

// StartConsumer 启动实体变更事件消费者（阻塞，需在 goroutine 中运行）
// ctx 取消后会自动停止
func StartConsumer(ctx context.Context, brokers []string, topic, groupID string, handler EventHandler) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
		StartOffset:    kafka.LastOffset,
	})

	defer func() {
		if err := reader.Close(); err != nil {
			logger.Error("Failed to close kafka consumer", zap.Error(err))
		}
		logger.Info("Entity event consumer stopped")
	}()

	logger.Info("Entity event consumer started",
		zap.String("topic", topic),
		zap.String("group", groupID),
	)

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("Failed to read kafka message", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		var event EntityEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.Error("Failed to unmarshal entity event",
				zap.Error(err),
				zap.ByteString("value", msg.Value),
			)
			continue
		}

		// 兼容缺失时间戳的事件
		if event.At == "" {
			event.At = time.Now().UTC().Format(time.RFC3339)
		}

		if err := handler(&event); err != nil {
			logger.Error("Failed to handle entity event",
				zap.String("resource", event.Resource),
				zap.Error(err),
			)
		}
	}
}
