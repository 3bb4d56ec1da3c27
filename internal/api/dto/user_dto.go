package dto

import "admin-go/internal/upstream"

// UserWithMetrics 用户记录加参与度指标，按次聚合生成的临时视图
type UserWithMetrics struct {
	upstream.User
	PostCount    int `json:"postCount"`
	LikeCount    int `json:"likeCount"`
	CommentCount int `json:"commentCount"`
}

// UserListData 用户列表响应数据
type UserListData struct {
	Users []UserWithMetrics `json:"users"`
	Total int               `json:"total"`
	Skip  int               `json:"skip"`
	Limit int               `json:"limit"`
}

// UserCreateRequest 用户创建请求（name 会拆分为 firstName/lastName 透传上游）
type UserCreateRequest struct {
	Name      string `json:"name" binding:"required,min=1,max=255"`
	Email     string `json:"email" binding:"required,email"`
	BirthDate string `json:"birthDate" binding:"omitempty"`
	Role      string `json:"role" binding:"omitempty,oneof=admin moderator user"`
}

// UserUpdateRequest 用户更新请求，所有字段可选
type UserUpdateRequest struct {
	Name      *string `json:"name" binding:"omitempty,min=1,max=255"`
	Email     *string `json:"email" binding:"omitempty,email"`
	BirthDate *string `json:"birthDate" binding:"omitempty"`
	Role      *string `json:"role" binding:"omitempty,oneof=admin moderator user"`
}

// AvatarData 头像上传结果
type AvatarData struct {
	URL string `json:"url"`
}
