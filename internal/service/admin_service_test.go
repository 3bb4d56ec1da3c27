package service

import (
	"context"
	"fmt"
	"math"
	"testing"

	"admin-go/internal/api/dto"
	"admin-go/internal/events"
	"admin-go/internal/query"
	"admin-go/internal/upstream"

	"github.com/stretchr/testify/require"
)

// mixedRolesPage 50 个用户，其中下标为 7 的倍数的 8 个是管理员
func mixedRolesPage() *upstream.UsersPage {
	users := make([]upstream.User, 0, 50)
	for i := 0; i < 50; i++ {
		role := "user"
		first := fmt.Sprintf("John%02d", i)
		if i%7 == 0 {
			role = "admin"
			first = fmt.Sprintf("Admin%02d", i)
		}
		users = append(users, upstream.User{
			ID:        int64(i + 1),
			FirstName: first,
			LastName:  "Smith",
			Email:     fmt.Sprintf("u%02d@example.com", i),
			Role:      role,
		})
	}
	return &upstream.UsersPage{Users: users, Total: 500, Skip: 0, Limit: 50}
}

func TestListAdminsFiltersAndPaginatesLocally(t *testing.T) {
	gw := &fakeUserGateway{page: mixedRolesPage()}
	svc := NewAdminService(gw, nil, nil)

	data, err := svc.ListAdmins(context.Background(), dto.ListQuery{Limit: 5, Skip: 0})
	require.NoError(t, err)

	// 角色过滤在本地，分页必须拉宽页
	require.Equal(t, query.WideFetchLimit, gw.lastLimit)
	require.Equal(t, 0, gw.lastSkip)

	// total 是过滤后的数量，而非上游的 500
	require.Equal(t, 8, data.Total)
	require.Len(t, data.Users, 5)
	for _, u := range data.Users {
		require.Equal(t, "admin", u.Role)
	}

	// 页数口径与可见列表一致
	pages := int(math.Ceil(float64(data.Total) / float64(data.Limit)))
	require.Equal(t, 2, pages)

	second, err := svc.ListAdmins(context.Background(), dto.ListQuery{Limit: 5, Skip: 5})
	require.NoError(t, err)
	require.Len(t, second.Users, 3)
}

func TestListAdminsClientSearch(t *testing.T) {
	gw := &fakeUserGateway{page: mixedRolesPage()}
	svc := NewAdminService(gw, nil, nil)

	data, err := svc.ListAdmins(context.Background(), dto.ListQuery{Limit: 10, Search: "admin07"})
	require.NoError(t, err)

	// 上游不支持管理员搜索，必须本地过滤
	require.Empty(t, gw.searched)
	require.Equal(t, 1, data.Total)
	require.Len(t, data.Users, 1)
	require.Equal(t, "Admin07", data.Users[0].FirstName)
}

func TestListAdminsSortForwardedFilterLocal(t *testing.T) {
	gw := &fakeUserGateway{page: mixedRolesPage()}
	svc := NewAdminService(gw, nil, nil)

	data, err := svc.ListAdmins(context.Background(), dto.ListQuery{Limit: 10, Sort: "name:asc"})
	require.NoError(t, err)

	// 排序可下发上游，但分页仍在本地（角色过滤）
	require.Equal(t, "firstName", gw.lastSortBy)
	require.Equal(t, "asc", gw.lastOrder)
	require.Equal(t, query.WideFetchLimit, gw.lastLimit)
	require.Equal(t, 8, data.Total)
}

func TestCreateAdminForcesRole(t *testing.T) {
	gw := &fakeUserGateway{}
	var published []*events.EntityEvent
	svc := NewAdminService(gw, nil, collectEvents(&published))

	_, err := svc.CreateAdmin(context.Background(), &dto.UserCreateRequest{
		Name:  "Grace Hopper",
		Email: "grace@example.com",
		Role:  "user", // 请求里的角色被忽略
	})
	require.NoError(t, err)
	require.Equal(t, "admin", gw.created.Role)
	require.Len(t, published, 1)
	require.Equal(t, ResourceAdmins, published[0].Resource)
}

func TestUpdateAdminKeepsRole(t *testing.T) {
	gw := &fakeUserGateway{}
	svc := NewAdminService(gw, nil, nil)

	name := "New Name"
	_, err := svc.UpdateAdmin(context.Background(), 7, &dto.UserUpdateRequest{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "admin", gw.updated.Role)
	require.Equal(t, "New", gw.updated.FirstName)
}
