package service

import (
	"context"
	"fmt"
	"strings"

	"admin-go/internal/api/dto"
	"admin-go/internal/cache"
	"admin-go/internal/events"
	"admin-go/internal/query"
	"admin-go/internal/upstream"
	"admin-go/pkg/fanout"
)

// PostGateway 帖子服务依赖的上游能力
type PostGateway interface {
	FetchPosts(ctx context.Context, limit, skip int, sortBy, order string) (*upstream.PostsPage, error)
	SearchPosts(ctx context.Context, query string, limit, skip int, sortBy, order string) (*upstream.PostsPage, error)
	FetchPostComments(ctx context.Context, postID int64, limit, skip int) (*upstream.CommentsPage, error)
	FetchCommentCountForPost(ctx context.Context, postID int64) (int, error)
	CreatePost(ctx context.Context, input *upstream.PostInput) (*upstream.Post, error)
	UpdatePost(ctx context.Context, id int64, input *upstream.PostInput) (*upstream.Post, error)
	DeletePost(ctx context.Context, id int64) error
}

// postCapabilities 上游帖子端点只会按平铺字段排序；
// 嵌套的 reactions.likes 与本地聚合的评论数都走本地排序
func postCapabilities() query.Capabilities {
	return query.Capabilities{
		SortFields: map[string]string{
			"id":    "id",
			"title": "title",
			"views": "views",
		},
		ServerSearch: true,
	}
}

type PostService struct {
	gateway PostGateway
	pages   PageStore
	publish EventPublisher
}

func NewPostService(gateway PostGateway, pages PageStore, publish EventPublisher) *PostService {
	return &PostService{
		gateway: gateway,
		pages:   pages,
		publish: publish,
	}
}

// ListPosts 获取一页帖子。按评论数排序时先对整页做限流扇出拉取各帖
// 评论总数（单帖失败按 0 计），再本地稳定排序
func (s *PostService) ListPosts(ctx context.Context, q dto.ListQuery) (*dto.PostListData, error) {
	req := query.PageRequest{Limit: q.Limit, Skip: q.Skip, Search: q.Search, Sort: q.Sort}.Normalize()
	plan := query.Compose(req, postCapabilities())

	cacheKey := cache.Key(ResourcePosts, req.Limit, req.Skip, req.Search, req.Sort)
	if s.pages != nil {
		var cached dto.PostListData
		if hit, err := s.pages.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	var (
		page *upstream.PostsPage
		err  error
	)
	if plan.SearchQuery != "" {
		page, err = s.gateway.SearchPosts(ctx, plan.SearchQuery, plan.UpstreamLimit, plan.UpstreamSkip, plan.SortBy, plan.Order)
	} else {
		page, err = s.gateway.FetchPosts(ctx, plan.UpstreamLimit, plan.UpstreamSkip, plan.SortBy, plan.Order)
	}
	if err != nil {
		return nil, err
	}

	items := make([]dto.PostItem, 0, len(page.Posts))
	for _, p := range page.Posts {
		items = append(items, dto.PostItem{Post: p})
	}

	if plan.ClientSortField == "comments" {
		if err := s.attachCommentCounts(ctx, items); err != nil {
			return nil, err
		}
	}

	res := query.Finalize(plan, items, page.Total, postSortKey, postMatch)

	data := &dto.PostListData{
		Posts: res.Items,
		Total: res.Total,
		Skip:  res.Skip,
		Limit: res.Limit,
	}

	if s.pages != nil {
		_ = s.pages.Set(ctx, cacheKey, data)
	}
	return data, nil
}

// attachCommentCounts 为每个帖子补上评论总数，限流同指标聚合的内层扇出
func (s *PostService) attachCommentCounts(ctx context.Context, items []dto.PostItem) error {
	counts, err := fanout.MapLimit(ctx, items, postFanoutLimit, func(ctx context.Context, it dto.PostItem) (int, error) {
		n, err := s.gateway.FetchCommentCountForPost(ctx, it.ID)
		if err != nil {
			return 0, nil
		}
		return n, nil
	})
	if err != nil {
		return err
	}
	for i := range items {
		c := counts[i]
		items[i].CommentCount = &c
	}
	return nil
}

// ListPostComments 获取某帖子的一页评论
func (s *PostService) ListPostComments(ctx context.Context, postID int64, q dto.ListQuery) (*dto.CommentListData, error) {
	req := query.PageRequest{Limit: q.Limit, Skip: q.Skip}.Normalize()

	page, err := s.gateway.FetchPostComments(ctx, postID, req.Limit, req.Skip)
	if err != nil {
		return nil, err
	}

	return &dto.CommentListData{
		Comments: page.Comments,
		Total:    page.Total,
		Skip:     page.Skip,
		Limit:    page.Limit,
	}, nil
}

// CreatePost 透传帖子创建请求
func (s *PostService) CreatePost(ctx context.Context, req *dto.PostCreateRequest) (*upstream.Post, error) {
	post, err := s.gateway.CreatePost(ctx, &upstream.PostInput{
		Title:  req.Title,
		Body:   req.Body,
		UserID: req.UserID,
		Tags:   req.Tags,
	})
	if err != nil {
		return nil, err
	}

	invalidate(ctx, s.pages, ResourcePosts)
	notify(ctx, s.publish, ResourcePosts, events.ActionCreate, fmt.Sprintf("Post %q created", req.Title))
	return post, nil
}

// UpdatePost 透传帖子更新请求
func (s *PostService) UpdatePost(ctx context.Context, id int64, req *dto.PostUpdateRequest) (*upstream.Post, error) {
	input := &upstream.PostInput{Tags: req.Tags}
	if req.Title != nil {
		input.Title = *req.Title
	}
	if req.Body != nil {
		input.Body = *req.Body
	}
	if req.UserID != nil {
		input.UserID = *req.UserID
	}

	post, err := s.gateway.UpdatePost(ctx, id, input)
	if err != nil {
		return nil, err
	}

	invalidate(ctx, s.pages, ResourcePosts)
	notify(ctx, s.publish, ResourcePosts, events.ActionUpdate, fmt.Sprintf("Post %d updated", id))
	return post, nil
}

// DeletePost 透传帖子删除请求
func (s *PostService) DeletePost(ctx context.Context, id int64) error {
	if err := s.gateway.DeletePost(ctx, id); err != nil {
		return err
	}

	invalidate(ctx, s.pages, ResourcePosts)
	notify(ctx, s.publish, ResourcePosts, events.ActionDelete, fmt.Sprintf("Post %d deleted", id))
	return nil
}

// postSortKey 按逻辑字段给出帖子条目的排序键
func postSortKey(p dto.PostItem, field string) query.SortKey {
	switch field {
	case "likes":
		return query.NumberKey(float64(p.Reactions.Likes))
	case "comments":
		if p.CommentCount == nil {
			return query.NumberKey(0)
		}
		return query.NumberKey(float64(*p.CommentCount))
	case "views":
		return query.NumberKey(float64(p.Views))
	case "title":
		return query.StringKey(p.Title)
	}
	return query.SortKey{}
}

// postMatch 本地搜索：标题或正文的子串匹配
func postMatch(p dto.PostItem, q string) bool {
	return strings.Contains(strings.ToLower(p.Title), q) ||
		strings.Contains(strings.ToLower(p.Body), q)
}
