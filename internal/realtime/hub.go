package realtime

import (
	"context"
	"encoding/json"

	"admin-go/internal/events"
	"admin-go/pkg/logger"

	"go.uber.org/zap"
)

// Hub 管理所有在线的仪表盘 WebSocket 连接并向其广播实体变更事件
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
	}
}

// Run 主循环（阻塞，需在 goroutine 中运行），ctx 取消后关闭所有连接
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			logger.Info("Realtime hub stopped")
			return

		case client := <-h.register:
			h.clients[client] = true
			logger.Info("Dashboard client connected",
				zap.String("remote", client.conn.RemoteAddr().String()),
				zap.Int("online", len(h.clients)),
			)

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				logger.Info("Dashboard client disconnected",
					zap.Int("online", len(h.clients)),
				)
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// 发送缓冲已满的慢客户端直接断开
					delete(h.clients, client)
					close(client.send)
				}
			}
		}
	}
}

// Broadcast 将实体变更事件广播给所有在线客户端
func (h *Hub) Broadcast(event *events.EntityEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	select {
	case h.broadcast <- payload:
	default:
		logger.Warn("Broadcast queue full, event dropped",
			zap.String("resource", event.Resource),
		)
	}
	return nil
}
