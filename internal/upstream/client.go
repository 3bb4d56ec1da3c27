package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrUpstream 上游请求失败（网络错误或非 2xx 状态码）
var ErrUpstream = errors.New("upstream request failed")

// Client 上游演示 API 客户端。所有接口均为幂等的 GET/透传调用，
// 不在此层做重试，超时由注入的 http.Client 统一控制。
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient 创建上游客户端
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchUsersPage 拉取一页用户，sortBy/order 为空时不下发排序
func (c *Client) FetchUsersPage(ctx context.Context, limit, skip int, sortBy, order string) (*UsersPage, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("skip", strconv.Itoa(skip))
	if sortBy != "" {
		q.Set("sortBy", sortBy)
		q.Set("order", order)
	}

	var page UsersPage
	if err := c.getJSON(ctx, "/users?"+q.Encode(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// SearchUsers 通过上游搜索端点检索用户
func (c *Client) SearchUsers(ctx context.Context, query string, limit, skip int, sortBy, order string) (*UsersPage, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("limit", strconv.Itoa(limit))
	q.Set("skip", strconv.Itoa(skip))
	if sortBy != "" {
		q.Set("sortBy", sortBy)
		q.Set("order", order)
	}

	var page UsersPage
	if err := c.getJSON(ctx, "/users/search?"+q.Encode(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// FetchPostsForUser 拉取某用户的全部帖子，只取 id 与 reactions 两个字段
// （limit=0 表示上游返回全部）。返回帖子投影与上游报告的总数。
func (c *Client) FetchPostsForUser(ctx context.Context, userID int64) ([]PostSummary, int, error) {
	path := fmt.Sprintf("/posts/user/%d?limit=0&select=id,reactions", userID)

	var page postSummariesPage
	if err := c.getJSON(ctx, path, &page); err != nil {
		return nil, 0, err
	}
	return page.Posts, int(page.Total), nil
}

// FetchCommentCountForPost 获取某帖子的评论总数，只回传 total，
// limit=1 将响应体压到最小
func (c *Client) FetchCommentCountForPost(ctx context.Context, postID int64) (int, error) {
	path := fmt.Sprintf("/posts/%d/comments?limit=1&skip=0", postID)

	var page commentCountPage
	if err := c.getJSON(ctx, path, &page); err != nil {
		return 0, err
	}
	return int(page.Total), nil
}

// FetchPosts 拉取一页帖子
func (c *Client) FetchPosts(ctx context.Context, limit, skip int, sortBy, order string) (*PostsPage, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("skip", strconv.Itoa(skip))
	if sortBy != "" {
		q.Set("sortBy", sortBy)
		q.Set("order", order)
	}

	var page PostsPage
	if err := c.getJSON(ctx, "/posts?"+q.Encode(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// SearchPosts 通过上游搜索端点检索帖子
func (c *Client) SearchPosts(ctx context.Context, query string, limit, skip int, sortBy, order string) (*PostsPage, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("limit", strconv.Itoa(limit))
	q.Set("skip", strconv.Itoa(skip))
	if sortBy != "" {
		q.Set("sortBy", sortBy)
		q.Set("order", order)
	}

	var page PostsPage
	if err := c.getJSON(ctx, "/posts/search?"+q.Encode(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// FetchPostComments 拉取某帖子的一页评论
func (c *Client) FetchPostComments(ctx context.Context, postID int64, limit, skip int) (*CommentsPage, error) {
	path := fmt.Sprintf("/posts/%d/comments?limit=%d&skip=%d", postID, limit, skip)

	var page CommentsPage
	if err := c.getJSON(ctx, path, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// CreateUser 透传用户创建请求
func (c *Client) CreateUser(ctx context.Context, input *UserInput) (*User, error) {
	var user User
	if err := c.sendJSON(ctx, http.MethodPost, "/users/add", input, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser 透传用户更新请求
func (c *Client) UpdateUser(ctx context.Context, id int64, input *UserInput) (*User, error) {
	var user User
	path := fmt.Sprintf("/users/%d", id)
	if err := c.sendJSON(ctx, http.MethodPatch, path, input, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser 透传用户删除请求
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/users/%d", id)
	return c.sendJSON(ctx, http.MethodDelete, path, nil, nil)
}

// CreatePost 透传帖子创建请求
func (c *Client) CreatePost(ctx context.Context, input *PostInput) (*Post, error) {
	var post Post
	if err := c.sendJSON(ctx, http.MethodPost, "/posts/add", input, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// UpdatePost 透传帖子更新请求
func (c *Client) UpdatePost(ctx context.Context, id int64, input *PostInput) (*Post, error) {
	var post Post
	path := fmt.Sprintf("/posts/%d", id)
	if err := c.sendJSON(ctx, http.MethodPatch, path, input, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// DeletePost 透传帖子删除请求
func (c *Client) DeletePost(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/posts/%d", id)
	return c.sendJSON(ctx, http.MethodDelete, path, nil, nil)
}

// getJSON 执行 GET 请求并解码 JSON 响应
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.sendJSON(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrUpstream, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s %s: status %d", ErrUpstream, method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode upstream response: %w", err)
	}
	return nil
}
