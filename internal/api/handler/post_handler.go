package handler

import (
	"errors"

	"admin-go/internal/api/dto"
	"admin-go/internal/api/response"
	"admin-go/internal/service"
	"admin-go/internal/upstream"
	"admin-go/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PostHandler struct {
	postService *service.PostService
}

func NewPostHandler(postService *service.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// ListPosts 帖子列表
// @Summary 帖子列表
// @Description 分页获取帖子列表，按评论数排序时附带每帖评论总数
// @Tags 帖子
// @Produce json
// @Security BearerAuth
// @Param limit query int false "每页条数" default(10)
// @Param skip query int false "偏移量" default(0)
// @Param search query string false "搜索关键字"
// @Param sort query string false "排序，如 title:asc、likes:desc、comments:desc"
// @Success 200 {object} response.Response{data=dto.PostListData} "获取成功"
// @Failure 502 {object} response.ErrorResponse "上游数据源不可用"
// @Router /posts [get]
func (h *PostHandler) ListPosts(c *gin.Context) {
	var q dto.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	data, err := h.postService.ListPosts(c.Request.Context(), q)
	if err != nil {
		if errors.Is(err, upstream.ErrUpstream) {
			response.BadGateway(c, "上游数据源不可用")
			return
		}
		logger.Error("List posts failed", zap.Error(err))
		response.InternalError(c, "获取帖子列表失败")
		return
	}

	response.OK(c, "获取成功", data)
}

// ListPostComments 帖子评论列表
// @Summary 帖子评论列表
// @Description 分页获取指定帖子的评论
// @Tags 帖子
// @Produce json
// @Security BearerAuth
// @Param id path int true "帖子 ID"
// @Param limit query int false "每页条数" default(10)
// @Param skip query int false "偏移量" default(0)
// @Success 200 {object} response.Response{data=dto.CommentListData} "获取成功"
// @Failure 502 {object} response.ErrorResponse "上游数据源不可用"
// @Router /posts/{id}/comments [get]
func (h *PostHandler) ListPostComments(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的帖子 ID")
		return
	}

	var q dto.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	data, err := h.postService.ListPostComments(c.Request.Context(), id, q)
	if err != nil {
		if errors.Is(err, upstream.ErrUpstream) {
			response.BadGateway(c, "上游数据源不可用")
			return
		}
		logger.Error("List post comments failed", zap.Int64("post_id", id), zap.Error(err))
		response.InternalError(c, "获取评论列表失败")
		return
	}

	response.OK(c, "获取成功", data)
}

// CreatePost 创建帖子
// @Summary 创建帖子
// @Description 创建一个新帖子并透传给上游
// @Tags 帖子
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.PostCreateRequest true "帖子信息"
// @Success 201 {object} response.Response{data=upstream.Post} "创建成功"
// @Failure 400 {object} response.ErrorResponse "请求参数无效"
// @Failure 502 {object} response.ErrorResponse "上游数据源不可用"
// @Router /posts [post]
func (h *PostHandler) CreatePost(c *gin.Context) {
	var req dto.PostCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	post, err := h.postService.CreatePost(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, upstream.ErrUpstream) {
			response.BadGateway(c, "上游数据源不可用")
			return
		}
		logger.Error("Create post failed", zap.Error(err))
		response.InternalError(c, "创建帖子失败")
		return
	}

	response.Created(c, "创建成功", post)
}

// UpdatePost 更新帖子
// @Summary 更新帖子
// @Description 更新帖子信息并透传给上游
// @Tags 帖子
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "帖子 ID"
// @Param request body dto.PostUpdateRequest true "帖子信息"
// @Success 200 {object} response.Response{data=upstream.Post} "更新成功"
// @Failure 400 {object} response.ErrorResponse "请求参数无效"
// @Failure 502 {object} response.ErrorResponse "上游数据源不可用"
// @Router /posts/{id} [patch]
func (h *PostHandler) UpdatePost(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的帖子 ID")
		return
	}

	var req dto.PostUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	post, err := h.postService.UpdatePost(c.Request.Context(), id, &req)
	if err != nil {
		if errors.Is(err, upstream.ErrUpstream) {
			response.BadGateway(c, "上游数据源不可用")
			return
		}
		logger.Error("Update post failed", zap.Int64("post_id", id), zap.Error(err))
		response.InternalError(c, "更新帖子失败")
		return
	}

	response.OK(c, "更新成功", post)
}

// DeletePost 删除帖子
// @Summary 删除帖子
// @Description 删除帖子并透传给上游
// @Tags 帖子
// @Produce json
// @Security BearerAuth
// @Param id path int true "帖子 ID"
// @Success 200 {object} response.Response "删除成功"
// @Failure 502 {object} response.ErrorResponse "上游数据源不可用"
// @Router /posts/{id} [delete]
func (h *PostHandler) DeletePost(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的帖子 ID")
		return
	}

	if err := h.postService.DeletePost(c.Request.Context(), id); err != nil {
		if errors.Is(err, upstream.ErrUpstream) {
			response.BadGateway(c, "上游数据源不可用")
			return
		}
		logger.Error("Delete post failed", zap.Int64("post_id", id), zap.Error(err))
		response.InternalError(c, "删除帖子失败")
		return
	}

	response.OK(c, "删除成功", nil)
}
