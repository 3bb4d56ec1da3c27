package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"admin-go/internal/api/dto"
	"admin-go/internal/cache"
	"admin-go/internal/config"
	"admin-go/internal/events"
	infraMinio "admin-go/internal/infra/minio"
	"admin-go/internal/query"
	"admin-go/internal/upstream"

	"github.com/google/uuid"
)

// UserGateway 用户列表服务依赖的上游能力
type UserGateway interface {
	FetchUsersPage(ctx context.Context, limit, skip int, sortBy, order string) (*upstream.UsersPage, error)
	SearchUsers(ctx context.Context, query string, limit, skip int, sortBy, order string) (*upstream.UsersPage, error)
	CreateUser(ctx context.Context, input *upstream.UserInput) (*upstream.User, error)
	UpdateUser(ctx context.Context, id int64, input *upstream.UserInput) (*upstream.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// userCapabilities 上游用户端点的排序/搜索能力。
// 指标字段（postCount 等）是本地聚合出来的，只能本地排序。
func userCapabilities() query.Capabilities {
	return query.Capabilities{
		SortFields: map[string]string{
			"name":      "firstName",
			"email":     "email",
			"birthDate": "birthDate",
			"role":      "role",
			"firstName": "firstName",
			"lastName":  "lastName",
		},
		ServerSearch: true,
	}
}

type UserService struct {
	gateway UserGateway
	metrics *MetricsService
	pages   PageStore
	publish EventPublisher
}

func NewUserService(gateway UserGateway, metrics *MetricsService, pages PageStore, publish EventPublisher) *UserService {
	return &UserService{
		gateway: gateway,
		metrics: metrics,
		pages:   pages,
		publish: publish,
	}
}

// ListUsers 获取一页带参与度指标的用户。
// 流程：查询计划 → 缓存 → 上游拉取 → 指标聚合 → 本地过滤/排序/切片。
func (s *UserService) ListUsers(ctx context.Context, q dto.ListQuery) (*dto.UserListData, error) {
	req := query.PageRequest{Limit: q.Limit, Skip: q.Skip, Search: q.Search, Sort: q.Sort}.Normalize()
	plan := query.Compose(req, userCapabilities())

	cacheKey := cache.Key(ResourceUsers, req.Limit, req.Skip, req.Search, req.Sort)
	if s.pages != nil {
		var cached dto.UserListData
		if hit, err := s.pages.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	var (
		page *upstream.UsersPage
		err  error
	)
	if plan.SearchQuery != "" {
		page, err = s.gateway.SearchUsers(ctx, plan.SearchQuery, plan.UpstreamLimit, plan.UpstreamSkip, plan.SortBy, plan.Order)
	} else {
		page, err = s.gateway.FetchUsersPage(ctx, plan.UpstreamLimit, plan.UpstreamSkip, plan.SortBy, plan.Order)
	}
	if err != nil {
		return nil, err
	}

	enriched, err := s.metrics.WithMetrics(ctx, page.Users)
	if err != nil {
		return nil, err
	}

	res := query.Finalize(plan, enriched, page.Total, userSortKey, userMatch)

	data := &dto.UserListData{
		Users: res.Items,
		Total: res.Total,
		Skip:  res.Skip,
		Limit: res.Limit,
	}

	if s.pages != nil {
		_ = s.pages.Set(ctx, cacheKey, data)
	}
	return data, nil
}

// CreateUser 透传创建请求到上游并发布变更事件
func (s *UserService) CreateUser(ctx context.Context, req *dto.UserCreateRequest) (*upstream.User, error) {
	first, last := splitName(req.Name)
	role := req.Role
	if role == "" {
		role = "user"
	}

	user, err := s.gateway.CreateUser(ctx, &upstream.UserInput{
		FirstName: first,
		LastName:  last,
		Email:     req.Email,
		BirthDate: req.BirthDate,
		Role:      role,
	})
	if err != nil {
		return nil, err
	}

	invalidate(ctx, s.pages, ResourceUsers, ResourceAdmins)
	notify(ctx, s.publish, ResourceUsers, events.ActionCreate, fmt.Sprintf("User %s created", req.Name))
	return user, nil
}

// UpdateUser 透传更新请求到上游并发布变更事件
func (s *UserService) UpdateUser(ctx context.Context, id int64, req *dto.UserUpdateRequest) (*upstream.User, error) {
	input := &upstream.UserInput{}
	if req.Name != nil {
		input.FirstName, input.LastName = splitName(*req.Name)
	}
	if req.Email != nil {
		input.Email = *req.Email
	}
	if req.BirthDate != nil {
		input.BirthDate = *req.BirthDate
	}
	if req.Role != nil {
		input.Role = *req.Role
	}

	user, err := s.gateway.UpdateUser(ctx, id, input)
	if err != nil {
		return nil, err
	}

	invalidate(ctx, s.pages, ResourceUsers, ResourceAdmins)
	notify(ctx, s.publish, ResourceUsers, events.ActionUpdate, fmt.Sprintf("User %d updated", id))
	return user, nil
}

// DeleteUser 透传删除请求到上游并发布变更事件
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	if err := s.gateway.DeleteUser(ctx, id); err != nil {
		return err
	}

	invalidate(ctx, s.pages, ResourceUsers, ResourceAdmins)
	notify(ctx, s.publish, ResourceUsers, events.ActionDelete, fmt.Sprintf("User %d deleted", id))
	return nil
}

// UploadAvatar 上传用户头像到对象存储，返回公开访问 URL
func (s *UserService) UploadAvatar(ctx context.Context, userID int64, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	ext := path.Ext(filename)
	objectName := fmt.Sprintf("user-%d-%s%s", userID, uuid.NewString(), ext)

	if _, err := infraMinio.UploadFile(ctx, "avatars", objectName, reader, size, contentType); err != nil {
		return "", err
	}

	cfg := config.Get().MinIO
	return infraMinio.GetPublicURL(cfg.Endpoint, cfg.UseSSL, "avatars", objectName), nil
}

// userSortKey 按逻辑字段给出用户条目的排序键
func userSortKey(u dto.UserWithMetrics, field string) query.SortKey {
	switch field {
	case "name":
		return query.StringKey(strings.TrimSpace(u.FirstName + " " + u.LastName))
	case "firstName":
		return query.StringKey(u.FirstName)
	case "lastName":
		return query.StringKey(u.LastName)
	case "email":
		return query.StringKey(u.Email)
	case "birthDate":
		return query.StringKey(u.BirthDate)
	case "role":
		return query.StringKey(u.Role)
	case "postCount":
		return query.NumberKey(float64(u.PostCount))
	case "likeCount":
		return query.NumberKey(float64(u.LikeCount))
	case "commentCount":
		return query.NumberKey(float64(u.CommentCount))
	}
	return query.SortKey{}
}

// userMatch 本地搜索：显示名或邮箱的子串匹配
func userMatch(u dto.UserWithMetrics, q string) bool {
	return query.MatchesDisplayName(u.FirstName, u.LastName, u.Email, q)
}

// splitName 将显示名拆为 firstName/lastName
func splitName(name string) (first, last string) {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "", ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}
