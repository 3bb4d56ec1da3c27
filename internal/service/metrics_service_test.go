package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"admin-go/internal/upstream"

	"github.com/stretchr/testify/require"
)

func twoUsers() []upstream.User {
	return []upstream.User{
		{ID: 1, FirstName: "Alice"},
		{ID: 2, FirstName: "Bob"},
	}
}

func TestWithMetricsAggregation(t *testing.T) {
	postsByUser := func(_ context.Context, userID int64) ([]upstream.PostSummary, int, error) {
		if userID == 1 {
			return []upstream.PostSummary{
				{ID: 10, Reactions: upstream.Reactions{Likes: 3}},
				{ID: 11, Reactions: upstream.Reactions{Likes: 5}},
			}, 2, nil
		}
		return nil, 0, nil
	}
	commentCount := func(_ context.Context, postID int64) (int, error) {
		switch postID {
		case 10:
			return 1, nil
		case 11:
			return 2, nil
		}
		return 0, nil
	}

	svc := NewMetricsService(postsByUser, commentCount)
	out, err := svc.WithMetrics(context.Background(), twoUsers())
	require.NoError(t, err)
	require.Len(t, out, 2)

	require.Equal(t, int64(1), out[0].ID)
	require.Equal(t, 2, out[0].PostCount)
	require.Equal(t, 8, out[0].LikeCount)
	require.Equal(t, 3, out[0].CommentCount)

	require.Equal(t, int64(2), out[1].ID)
	require.Equal(t, 0, out[1].PostCount)
	require.Equal(t, 0, out[1].LikeCount)
	require.Equal(t, 0, out[1].CommentCount)
}

func TestWithMetricsDegradedCommentFetch(t *testing.T) {
	postsByUser := func(_ context.Context, _ int64) ([]upstream.PostSummary, int, error) {
		return []upstream.PostSummary{
			{ID: 10, Reactions: upstream.Reactions{Likes: 3}},
			{ID: 11, Reactions: upstream.Reactions{Likes: 5}},
		}, 2, nil
	}
	commentCount := func(_ context.Context, postID int64) (int, error) {
		if postID == 11 {
			return 0, errors.New("comments endpoint down")
		}
		return 1, nil
	}

	svc := NewMetricsService(postsByUser, commentCount)
	out, err := svc.WithMetrics(context.Background(), []upstream.User{{ID: 1}})

	// 单帖评论数失败不拒绝整页，只少算那一帖
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, 2, out[0].PostCount)
	require.Equal(t, 8, out[0].LikeCount)
	require.Equal(t, 1, out[0].CommentCount)
}

func TestWithMetricsPostsFetchFailureZeroesUser(t *testing.T) {
	postsByUser := func(_ context.Context, userID int64) ([]upstream.PostSummary, int, error) {
		if userID == 1 {
			return nil, 0, errors.New("posts endpoint down")
		}
		return []upstream.PostSummary{{ID: 20, Reactions: upstream.Reactions{Likes: 7}}}, 1, nil
	}
	commentCount := func(_ context.Context, _ int64) (int, error) {
		return 4, nil
	}

	svc := NewMetricsService(postsByUser, commentCount)
	out, err := svc.WithMetrics(context.Background(), twoUsers())

	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, 0, out[0].PostCount)
	require.Equal(t, 0, out[0].LikeCount)
	require.Equal(t, 0, out[0].CommentCount)
	require.Equal(t, 1, out[1].PostCount)
	require.Equal(t, 7, out[1].LikeCount)
	require.Equal(t, 4, out[1].CommentCount)
}

func TestWithMetricsPreservesUserOrder(t *testing.T) {
	users := make([]upstream.User, 30)
	for i := range users {
		users[i] = upstream.User{ID: int64(i + 1), FirstName: fmt.Sprintf("u%d", i+1)}
	}

	postsByUser := func(_ context.Context, userID int64) ([]upstream.PostSummary, int, error) {
		return nil, int(userID), nil
	}
	commentCount := func(_ context.Context, _ int64) (int, error) {
		return 0, nil
	}

	svc := NewMetricsService(postsByUser, commentCount)
	out, err := svc.WithMetrics(context.Background(), users)
	require.NoError(t, err)
	require.Len(t, out, len(users))
	for i, u := range out {
		require.Equal(t, int64(i+1), u.ID)
		require.Equal(t, i+1, u.PostCount)
	}
}

func TestWithMetricsOuterConcurrencyBound(t *testing.T) {
	var inflight, peak atomic.Int64

	postsByUser := func(_ context.Context, _ int64) ([]upstream.PostSummary, int, error) {
		cur := inflight.Add(1)
		for {
			p := peak.Load()
			if cur <= p || peak.CompareAndSwap(p, cur) {
				break
			}
		}
		defer inflight.Add(-1)
		return nil, 0, nil
	}
	commentCount := func(_ context.Context, _ int64) (int, error) {
		return 0, nil
	}

	users := make([]upstream.User, 40)
	svc := NewMetricsService(postsByUser, commentCount)
	_, err := svc.WithMetrics(context.Background(), users)
	require.NoError(t, err)
	require.LessOrEqual(t, peak.Load(), int64(userFanoutLimit))
}

func TestWithMetricsEmptyInput(t *testing.T) {
	called := false
	svc := NewMetricsService(
		func(_ context.Context, _ int64) ([]upstream.PostSummary, int, error) {
			called = true
			return nil, 0, nil
		},
		func(_ context.Context, _ int64) (int, error) {
			called = true
			return 0, nil
		},
	)

	out, err := svc.WithMetrics(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, out)
	require.False(t, called)
}
