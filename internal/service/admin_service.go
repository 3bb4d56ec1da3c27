package service

import (
	"context"
	"fmt"

	"admin-go/internal/api/dto"
	"admin-go/internal/cache"
	"admin-go/internal/events"
	"admin-go/internal/query"
	"admin-go/internal/upstream"
)

// adminCapabilities 管理员列表能力：上游不能按角色筛选，
// 因此始终拉宽页并在本地过滤/分页，搜索也只能本地做
func adminCapabilities() query.Capabilities {
	return query.Capabilities{
		SortFields: map[string]string{
			"name":      "firstName",
			"email":     "email",
			"birthDate": "birthDate",
			"firstName": "firstName",
			"lastName":  "lastName",
		},
		ServerSearch: false,
		LocalFilter:  true,
	}
}

// AdminService 管理员列表与 CRUD。管理员是上游用户中 role==admin 的
// 子集，所有写操作复用用户端点并强制 role 为 admin。
type AdminService struct {
	gateway UserGateway
	pages   PageStore
	publish EventPublisher
}

func NewAdminService(gateway UserGateway, pages PageStore, publish EventPublisher) *AdminService {
	return &AdminService{
		gateway: gateway,
		pages:   pages,
		publish: publish,
	}
}

// ListAdmins 获取一页管理员：宽页拉取 → 角色过滤 → 本地搜索/切片，
// total 为过滤后的数量
func (s *AdminService) ListAdmins(ctx context.Context, q dto.ListQuery) (*dto.UserListData, error) {
	req := query.PageRequest{Limit: q.Limit, Skip: q.Skip, Search: q.Search, Sort: q.Sort}.Normalize()
	plan := query.Compose(req, adminCapabilities())

	cacheKey := cache.Key(ResourceAdmins, req.Limit, req.Skip, req.Search, req.Sort)
	if s.pages != nil {
		var cached dto.UserListData
		if hit, err := s.pages.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	page, err := s.gateway.FetchUsersPage(ctx, plan.UpstreamLimit, plan.UpstreamSkip, plan.SortBy, plan.Order)
	if err != nil {
		return nil, err
	}

	admins := make([]dto.UserWithMetrics, 0, len(page.Users))
	for _, u := range page.Users {
		if u.Role == "admin" {
			admins = append(admins, dto.UserWithMetrics{User: u})
		}
	}

	res := query.Finalize(plan, admins, page.Total, userSortKey, userMatch)

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

// CreateAdmin 创建管理员（强制 role=admin）
func (s *AdminService) CreateAdmin(ctx context.Context, req *dto.UserCreateRequest) (*upstream.User, error) {
	first, last := splitName(req.Name)

	admin, err := s.gateway.CreateUser(ctx, &upstream.UserInput{
		FirstName: first,
		LastName:  last,
		Email:     req.Email,
		BirthDate: req.BirthDate,
		Role:      "admin",
	})
	if err != nil {
		return nil, err
	}

	invalidate(ctx, s.pages, ResourceAdmins, ResourceUsers)
	notify(ctx, s.publish, ResourceAdmins, events.ActionCreate, fmt.Sprintf("Admin %s created", req.Name))
	return admin, nil
}

// UpdateAdmin 更新管理员，强制保持 admin 角色
func (s *AdminService) UpdateAdmin(ctx context.Context, id int64, req *dto.UserUpdateRequest) (*upstream.User, error) {
	input := &upstream.UserInput{Role: "admin"}
	if req.Name != nil {
		input.FirstName, input.LastName = splitName(*req.Name)
	}
	if req.Email != nil {
		input.Email = *req.Email
	}
	if req.BirthDate != nil {
		input.BirthDate = *req.BirthDate
	}

	admin, err := s.gateway.UpdateUser(ctx, id, input)
	if err != nil {
		return nil, err
	}

	invalidate(ctx, s.pages, ResourceAdmins, ResourceUsers)
	notify(ctx, s.publish, ResourceAdmins, events.ActionUpdate, fmt.Sprintf("Admin %d updated", id))
	return admin, nil
}

// DeleteAdmin 删除管理员
func (s *AdminService) DeleteAdmin(ctx context.Context, id int64) error {
	if err := s.gateway.DeleteUser(ctx, id); err != nil {
		return err
	}

	invalidate(ctx, s.pages, ResourceAdmins, ResourceUsers)
	notify(ctx, s.publish, ResourceAdmins, events.ActionDelete, fmt.Sprintf("Admin %d deleted", id))
	return nil
}
