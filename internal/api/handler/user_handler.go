package handler

import (
	"errors"
	"path/filepath"
	"strconv"

	"admin-go/internal/api/dto"
	"admin-go/internal/api/response"
	"admin-go/internal/service"
	"admin-go/internal/upstream"
	"admin-go/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 头像文件大小上限 5MB
const maxAvatarSize = 5 << 20

var allowedAvatarExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// ListUsers 用户列表
// @Summary 用户列表
// @Description 分页获取用户列表，每个用户附带发帖数、获赞数与评论数
// @Tags 用户
// @Produce json
// @Security BearerAuth
// @Param limit query int false "每页条数" default(10)
// @Param skip query int false "偏移量" default(0)
// @Param search query string false "搜索关键字"
// @Param sort query string false "排序，如 name:asc、postCount:desc"
// @Success 200 {object} response.Response{data=dto.UserListData} "获取成功"
// @Failure 502 {object} response.ErrorResponse "上游数据源不可用"
// @Router /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	var q dto.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	data, err := h.userService.ListUsers(c.Request.Context(), q)
	if err != nil {
		if errors.Is(err, upstream.ErrUpstream) {
			response.BadGateway(c, "上游数据源不可用")
			return
		}
		logger.Error("List users failed", zap.Error(err))
		response.InternalError(c, "获取用户列表失败")
		return
	}

	response.OK(c, "获取成功", data)
}

// CreateUser 创建用户
// @Summary 创建用户
// @Description 创建一个新用户并透传给上游
// @Tags 用户
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UserCreateRequest true "用户信息"
// @Success 201 {object} response.Response{data=upstream.User} "创建成功"
// @Failure 400 {object} response.ErrorResponse "请求参数无效"
// @Failure 502 {object} response.ErrorResponse "上游数据源不可用"
// @Router /users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req dto.UserCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	user, err := h.userService.CreateUser(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, upstream.ErrUpstream) {
			response.BadGateway(c, "上游数据源不可用")
			return
		}
		logger.Error("Create user failed", zap.Error(err))
		response.InternalError(c, "创建用户失败")
		return
	}

	response.Created(c, "创建成功", user)
}

// UpdateUser 更新用户
// @Summary 更新用户
// @Description 更新用户信息并透传给上游
// @Tags 用户
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户 ID"
// @Param request body dto.UserUpdateRequest true "用户信息"
// @Success 200 {object} response.Response{data=upstream.User} "更新成功"
// @Failure 400 {object} response.ErrorResponse "请求参数无效"
// @Failure 502 {object} response.ErrorResponse "上游数据源不可用"
// @Router /users/{id} [patch]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的用户 ID")
		return
	}

	var req dto.UserUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	user, err := h.userService.UpdateUser(c.Request.Context(), id, &req)
	if err != nil {
		if errors.Is(err, upstream.ErrUpstream) {
			response.BadGateway(c, "上游数据源不可用")
			return
		}
		logger.Error("Update user failed", zap.Int64("user_id", id), zap.Error(err))
		response.InternalError(c, "更新用户失败")
		return
	}

	response.OK(c, "更新成功", user)
}

// DeleteUser 删除用户
// @Summary 删除用户
// @Description 删除用户并透传给上游
// @Tags 用户
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户 ID"
// @Success 200 {object} response.Response "删除成功"
// @Failure 502 {object} response.ErrorResponse "上游数据源不可用"
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的用户 ID")
		return
	}

	if err := h.userService.DeleteUser(c.Request.Context(), id); err != nil {
		if errors.Is(err, upstream.ErrUpstream) {
			response.BadGateway(c, "上游数据源不可用")
			return
		}
		logger.Error("Delete user failed", zap.Int64("user_id", id), zap.Error(err))
		response.InternalError(c, "删除用户失败")
		return
	}

	response.OK(c, "删除成功", nil)
}

// UploadAvatar 上传用户头像
// @Summary 上传用户头像
// @Description 上传头像文件到对象存储并返回公开访问地址
// @Tags 用户
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户 ID"
// @Param avatar formData file true "头像文件（jpg/png/webp，最大 5MB）"
// @Success 200 {object} response.Response{data=dto.AvatarData} "上传成功"
// @Failure 400 {object} response.ErrorResponse "文件无效"
// @Router /users/{id}/avatar [post]
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的用户 ID")
		return
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		response.BadRequest(c, "缺少头像文件")
		return
	}
	if fileHeader.Size > maxAvatarSize {
		response.BadRequest(c, "头像文件超过 5MB 限制")
		return
	}
	ext := filepath.Ext(fileHeader.Filename)
	if !allowedAvatarExt[ext] {
		response.BadRequest(c, "不支持的图片格式")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, "无法读取头像文件")
		return
	}
	defer file.Close()

	url, err := h.userService.UploadAvatar(
		c.Request.Context(), id, fileHeader.Filename, file,
		fileHeader.Size, fileHeader.Header.Get("Content-Type"),
	)
	if err != nil {
		logger.Error("Upload avatar failed", zap.Int64("user_id", id), zap.Error(err))
		response.InternalError(c, "头像上传失败")
		return
	}

	response.OK(c, "上传成功", dto.AvatarData{URL: url})
}

// parseIDParam 解析路径中的 :id 参数
func parseIDParam(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
