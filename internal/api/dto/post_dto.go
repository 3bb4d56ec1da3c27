package dto

import "admin-go/internal/upstream"

// PostItem 帖子条目；按评论数排序时才会附带 commentCount
type PostItem struct {
	upstream.Post
	CommentCount *int `json:"commentCount,omitempty"`
}

// PostListData 帖子列表响应数据
type PostListData struct {
	Posts []PostItem `json:"posts"`
	Total int        `json:"total"`
	Skip  int        `json:"skip"`
	Limit int        `json:"limit"`
}

// PostCreateRequest 帖子创建请求
type PostCreateRequest struct {
	Title  string   `json:"title" binding:"required,min=1,max=500"`
	Body   string   `json:"body" binding:"required"`
	UserID int64    `json:"userId" binding:"required"`
	Tags   []string `json:"tags" binding:"omitempty"`
}

// PostUpdateRequest 帖子更新请求，所有字段可选
type PostUpdateRequest struct {
	Title  *string  `json:"title" binding:"omitempty,min=1,max=500"`
	Body   *string  `json:"body" binding:"omitempty"`
	UserID *int64   `json:"userId" binding:"omitempty"`
	Tags   []string `json:"tags" binding:"omitempty"`
}

// CommentListData 评论列表响应数据
type CommentListData struct {
	Comments []upstream.Comment `json:"comments"`
	Total    int                `json:"total"`
	Skip     int                `json:"skip"`
	Limit    int                `json:"limit"`
}
