package upstream

import (
	"bytes"
	"math"
	"strconv"
)

// Count 宽松计数值：上游字段缺失、null 或非数值时一律按 0 处理。
// 求和口径统一为 0，"未知"与"计算为 0"的区分由展示层负责。
type Count int

// UnmarshalJSON 在系统边界完成数值强制转换
func (c *Count) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*c = 0
		return nil
	}
	// 兼容带引号的数字
	if b[0] == '"' && len(b) >= 2 {
		b = b[1 : len(b)-1]
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		*c = 0
		return nil
	}
	*c = Count(f)
	return nil
}

// User 上游用户记录，原样快照，聚合层只复制不修改
type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	BirthDate string `json:"birthDate,omitempty"`
	Image     string `json:"image,omitempty"`
	Gender    string `json:"gender,omitempty"`
	Role      string `json:"role"`
}

// Reactions 帖子互动数据
type Reactions struct {
	Likes    Count `json:"likes"`
	Dislikes Count `json:"dislikes"`
}

// PostSummary 帖子最小投影（id + reactions），仅用于指标计算
type PostSummary struct {
	ID        int64     `json:"id"`
	Reactions Reactions `json:"reactions"`
}

// Post 帖子完整记录（帖子列表页使用）
type Post struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Tags      []string  `json:"tags"`
	Reactions Reactions `json:"reactions"`
	Views     Count     `json:"views"`
	UserID    int64     `json:"userId"`
}

// CommentUser 评论作者
type CommentUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
}

// Comment 评论记录
type Comment struct {
	ID     int64       `json:"id"`
	Body   string      `json:"body"`
	PostID int64       `json:"postId"`
	Likes  Count       `json:"likes"`
	User   CommentUser `json:"user"`
}

// UsersPage 用户列表响应
type UsersPage struct {
	Users []User `json:"users"`
	Total int    `json:"total"`
	Skip  int    `json:"skip"`
	Limit int    `json:"limit"`
}

// PostsPage 帖子列表响应
type PostsPage struct {
	Posts []Post `json:"posts"`
	Total int    `json:"total"`
	Skip  int    `json:"skip"`
	Limit int    `json:"limit"`
}

type postSummariesPage struct {
	Posts []PostSummary `json:"posts"`
	Total Count         `json:"total"`
}

// CommentsPage 评论列表响应
type CommentsPage struct {
	Comments []Comment `json:"comments"`
	Total    int       `json:"total"`
	Skip     int       `json:"skip"`
	Limit    int       `json:"limit"`
}

type commentCountPage struct {
	Total Count `json:"total"`
}

// UserInput 透传给上游的用户创建/更新载荷
type UserInput struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email,omitempty"`
	BirthDate string `json:"birthDate,omitempty"`
	Image     string `json:"image,omitempty"`
	Role      string `json:"role,omitempty"`
}

// PostInput 透传给上游的帖子创建/更新载荷
type PostInput struct {
	Title  string   `json:"title,omitempty"`
	Body   string   `json:"body,omitempty"`
	UserID int64    `json:"userId,omitempty"`
	Tags   []string `json:"tags,omitempty"`
}
