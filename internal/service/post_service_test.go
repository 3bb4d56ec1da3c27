package service

import (
	"context"
	"errors"
	"testing"

	"admin-go/internal/api/dto"
	"admin-go/internal/query"
	"admin-go/internal/upstream"

	"github.com/stretchr/testify/require"
)

type fakePostGateway struct {
	page       *upstream.PostsPage
	comments   map[int64]int
	commentErr map[int64]error
	lastSortBy string
	lastOrder  string
	lastLimit  int
	searched   string
	countCalls int
}

func (f *fakePostGateway) FetchPosts(_ context.Context, limit, _ int, sortBy, order string) (*upstream.PostsPage, error) {
	f.lastLimit, f.lastSortBy, f.lastOrder = limit, sortBy, order
	return f.page, nil
}

func (f *fakePostGateway) SearchPosts(_ context.Context, query string, limit, _ int, sortBy, order string) (*upstream.PostsPage, error) {
	f.searched = query
	f.lastLimit, f.lastSortBy, f.lastOrder = limit, sortBy, order
	return f.page, nil
}

func (f *fakePostGateway) FetchPostComments(_ context.Context, postID int64, limit, skip int) (*upstream.CommentsPage, error) {
	return &upstream.CommentsPage{Total: f.comments[postID], Limit: limit, Skip: skip}, nil
}

func (f *fakePostGateway) FetchCommentCountForPost(_ context.Context, postID int64) (int, error) {
	f.countCalls++
	if err := f.commentErr[postID]; err != nil {
		return 0, err
	}
	return f.comments[postID], nil
}

func (f *fakePostGateway) CreatePost(_ context.Context, input *upstream.PostInput) (*upstream.Post, error) {
	return &upstream.Post{ID: 251, Title: input.Title}, nil
}

func (f *fakePostGateway) UpdatePost(_ context.Context, id int64, _ *upstream.PostInput) (*upstream.Post, error) {
	return &upstream.Post{ID: id}, nil
}

func (f *fakePostGateway) DeletePost(_ context.Context, _ int64) error {
	return nil
}

func postsPage() *upstream.PostsPage {
	return &upstream.PostsPage{
		Posts: []upstream.Post{
			{ID: 1, Title: "a", Reactions: upstream.Reactions{Likes: 5}, Views: 100},
			{ID: 2, Title: "b", Reactions: upstream.Reactions{Likes: 9}, Views: 50},
			{ID: 3, Title: "c", Reactions: upstream.Reactions{Likes: 5}, Views: 75},
		},
		Total: 251,
	}
}

func TestListPostsServerSortById(t *testing.T) {
	gw := &fakePostGateway{page: postsPage()}
	svc := NewPostService(gw, nil, nil)

	data, err := svc.ListPosts(context.Background(), dto.ListQuery{Limit: 3, Sort: "id:asc"})
	require.NoError(t, err)
	require.Equal(t, "id", gw.lastSortBy)
	require.Equal(t, 3, gw.lastLimit)
	require.Equal(t, 251, data.Total)
	require.Zero(t, gw.countCalls, "非评论排序不应触发评论数扇出")
	require.Nil(t, data.Posts[0].CommentCount)
}

func TestListPostsClientSortByLikes(t *testing.T) {
	gw := &fakePostGateway{page: postsPage()}
	svc := NewPostService(gw, nil, nil)

	data, err := svc.ListPosts(context.Background(), dto.ListQuery{Limit: 10, Sort: "likes:desc"})
	require.NoError(t, err)

	// likes 是嵌套字段，不能下发上游
	require.Empty(t, gw.lastSortBy)
	require.Equal(t, query.WideFetchLimit, gw.lastLimit)

	require.Len(t, data.Posts, 3)
	require.Equal(t, int64(2), data.Posts[0].ID)
	// 平局（likes=5）保持原始相对顺序
	require.Equal(t, int64(1), data.Posts[1].ID)
	require.Equal(t, int64(3), data.Posts[2].ID)
}

func TestListPostsSortByCommentsFetchesCounts(t *testing.T) {
	gw := &fakePostGateway{
		page:       postsPage(),
		comments:   map[int64]int{1: 2, 2: 7, 3: 4},
		commentErr: map[int64]error{},
	}
	svc := NewPostService(gw, nil, nil)

	data, err := svc.ListPosts(context.Background(), dto.ListQuery{Limit: 10, Sort: "comments:desc"})
	require.NoError(t, err)
	require.Equal(t, 3, gw.countCalls)

	require.Equal(t, int64(2), data.Posts[0].ID)
	require.Equal(t, int64(3), data.Posts[1].ID)
	require.Equal(t, int64(1), data.Posts[2].ID)
	require.NotNil(t, data.Posts[0].CommentCount)
	require.Equal(t, 7, *data.Posts[0].CommentCount)
}

func TestListPostsCommentCountDegradesToZero(t *testing.T) {
	gw := &fakePostGateway{
		page:       postsPage(),
		comments:   map[int64]int{1: 2, 3: 4},
		commentErr: map[int64]error{2: errors.New("upstream 502")},
	}
	svc := NewPostService(gw, nil, nil)

	data, err := svc.ListPosts(context.Background(), dto.ListQuery{Limit: 10, Sort: "comments:asc"})
	require.NoError(t, err)

	// 失败的那一帖按 0 计，排到最前
	require.Equal(t, int64(2), data.Posts[0].ID)
	require.Equal(t, 0, *data.Posts[0].CommentCount)
}

func TestListPostsSearchRoutedUpstream(t *testing.T) {
	gw := &fakePostGateway{page: postsPage()}
	svc := NewPostService(gw, nil, nil)

	_, err := svc.ListPosts(context.Background(), dto.ListQuery{Limit: 10, Search: "love"})
	require.NoError(t, err)
	require.Equal(t, "love", gw.searched)
}

func TestListPostComments(t *testing.T) {
	gw := &fakePostGateway{comments: map[int64]int{7: 12}}
	svc := NewPostService(gw, nil, nil)

	data, err := svc.ListPostComments(context.Background(), 7, dto.ListQuery{Limit: 10})
	require.NoError(t, err)
	require.Equal(t, 12, data.Total)
}
