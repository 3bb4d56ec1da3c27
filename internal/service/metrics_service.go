package service

import (
	"context"

	"admin-go/internal/api/dto"
	"admin-go/internal/upstream"
	"admin-go/pkg/fanout"
	"admin-go/pkg/logger"

	"go.uber.org/zap"
)

const (
	// userFanoutLimit 外层扇出上限：同时为多少个用户拉取帖子
	userFanoutLimit = 6
	// postFanoutLimit 内层扇出上限：每个用户同时查多少帖子的评论数
	postFanoutLimit = 8
)

// PostsByUserFunc 拉取某用户的帖子投影，返回帖子与上游报告的总数
type PostsByUserFunc func(ctx context.Context, userID int64) ([]upstream.PostSummary, int, error)

// CommentCountFunc 获取某帖子的评论总数
type CommentCountFunc func(ctx context.Context, postID int64) (int, error)

// MetricsService 为一页用户聚合参与度指标（帖子数 / 点赞数 / 评论数）。
// 两层扇出各自独立限流，最坏并发为 userFanoutLimit × postFanoutLimit。
type MetricsService struct {
	postsByUser  PostsByUserFunc
	commentCount CommentCountFunc
}

func NewMetricsService(postsByUser PostsByUserFunc, commentCount CommentCountFunc) *MetricsService {
	return &MetricsService{
		postsByUser:  postsByUser,
		commentCount: commentCount,
	}
}

// WithMetrics 为每个用户附加指标，输出顺序与输入一一对应。
//
// 可用性优先于精确性：某用户的帖子拉取失败时该用户按全零计，
// 单个帖子的评论数拉取失败按 0 计，整页永不因增强步骤失败。
// postCount 采用上游报告的 total 而非返回数组长度，即使帖子列表
// 被截断也保持正确。
func (s *MetricsService) WithMetrics(ctx context.Context, users []upstream.User) ([]dto.UserWithMetrics, error) {
	return fanout.MapLimit(ctx, users, userFanoutLimit, func(ctx context.Context, u upstream.User) (dto.UserWithMetrics, error) {
		item := dto.UserWithMetrics{User: u}

		posts, total, err := s.postsByUser(ctx, u.ID)
		if err != nil {
			logger.Warn("Posts fetch failed, zeroing metrics for user",
				zap.Int64("user_id", u.ID),
				zap.Error(err),
			)
			return item, nil
		}

		item.PostCount = total
		for _, p := range posts {
			item.LikeCount += int(p.Reactions.Likes)
		}

		counts, err := fanout.MapLimit(ctx, posts, postFanoutLimit, func(ctx context.Context, p upstream.PostSummary) (int, error) {
			n, err := s.commentCount(ctx, p.ID)
			if err != nil {
				// 单帖评论数失败按 0 计，聚合结果可能轻微低估
				logger.Debug("Comment count fetch failed",
					zap.Int64("post_id", p.ID),
					zap.Error(err),
				)
				return 0, nil
			}
			return n, nil
		})
		if err != nil {
			return item, nil
		}

		for _, n := range counts {
			item.CommentCount += n
		}
		return item, nil
	})
}
