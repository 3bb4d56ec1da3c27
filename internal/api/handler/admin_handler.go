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

type AdminHandler struct {
	adminService *service.AdminService
}

func NewAdminHandler(adminService *service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// ListAdmins 管理员列表
// @Summary 管理员列表
// @Description 分页获取管理员列表，角色过滤与搜索在本地完成
// @Tags 管理员
// @Produce json
// @Security BearerAuth
// @Param limit query int false "每页条数" default(10)
// @Param skip query int false "偏移量" default(0)
// @Param search query string false "搜索关键字"
// @Param sort query string false "排序，如 name:asc"
// @Success 200 {object} response.Response{data=dto.UserListData} "获取成功"
// @Failure 502 {object} response.ErrorResponse "上游数据源不可用"
// @Router /admins [get]
func (h *AdminHandler) ListAdmins(c *gin.Context) {
	var q dto.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	data, err := h.adminService.ListAdmins(c.Request.Context(), q)
	if err != nil {
		if errors.Is(err, upstream.ErrUpstream) {
			response.BadGateway(c, "上游数据源不可用")
			return
		}
		logger.Error("List admins failed", zap.Error(err))
		response.InternalError(c, "获取管理员列表失败")
		return
	}

	response.OK(c, "获取成功", data)
}

// CreateAdmin 创建管理员
// @Summary 创建管理员
// @Description 创建一个管理员账号，角色固定为 admin
// @Tags 管理员
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UserCreateRequest true "管理员信息"
// @Success 201 {object} response.Response{data=upstream.User} "创建成功"
// @Failure 400 {object} response.ErrorResponse "请求参数无效"
// @Failure 502 {object} response.ErrorResponse "上游数据源不可用"
// @Router /admins [post]
func (h *AdminHandler) CreateAdmin(c *gin.Context) {
	var req dto.UserCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	admin, err := h.adminService.CreateAdmin(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, upstream.ErrUpstream) {
			response.BadGateway(c, "上游数据源不可用")
			return
		}
		logger.Error("Create admin failed", zap.Error(err))
		response.InternalError(c, "创建管理员失败")
		return
	}

	response.Created(c, "创建成功", admin)
}

// UpdateAdmin 更新管理员
// @Summary 更新管理员
// @Description 更新管理员信息，角色保持 admin
// @Tags 管理员
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户 ID"
// @Param request body dto.UserUpdateRequest true "管理员信息"
// @Success 200 {object} response.Response{data=upstream.User} "更新成功"
// @Failure 400 {object} response.ErrorResponse "请求参数无效"
// @Failure 502 {object} response.ErrorResponse "上游数据源不可用"
// @Router /admins/{id} [patch]
func (h *AdminHandler) UpdateAdmin(c *gin.Context) {
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

	admin, err := h.adminService.UpdateAdmin(c.Request.Context(), id, &req)
	if err != nil {
		if errors.Is(err, upstream.ErrUpstream) {
			response.BadGateway(c, "上游数据源不可用")
			return
		}
		logger.Error("Update admin failed", zap.Int64("user_id", id), zap.Error(err))
		response.InternalError(c, "更新管理员失败")
		return
	}

	response.OK(c, "更新成功", admin)
}

// DeleteAdmin 删除管理员
// @Summary 删除管理员
// @Description 删除一个管理员账号
// @Tags 管理员
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户 ID"
// @Success 200 {object} response.Response "删除成功"
// @Failure 502 {object} response.ErrorResponse "上游数据源不可用"
// @Router /admins/{id} [delete]
func (h *AdminHandler) DeleteAdmin(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的用户 ID")
		return
	}

	if err := h.adminService.DeleteAdmin(c.Request.Context(), id); err != nil {
		if errors.Is(err, upstream.ErrUpstream) {
			response.BadGateway(c, "上游数据源不可用")
			return
		}
		logger.Error("Delete admin failed", zap.Int64("user_id", id), zap.Error(err))
		response.InternalError(c, "删除管理员失败")
		return
	}

	response.OK(c, "删除成功", nil)
}
