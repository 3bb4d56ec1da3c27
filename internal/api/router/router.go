package router

import (
	"admin-go/internal/api/handler"
	"admin-go/internal/api/middleware"

	"github.com/gin-gonic/gin"
)

// Setup 注册所有业务路由
func Setup(
	r *gin.Engine,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	adminHandler *handler.AdminHandler,
	postHandler *handler.PostHandler,
) {
	v1 := r.Group("/api/v1")

	// --- 认证模块 ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)

		authRequired := auth.Group("", middleware.AuthRequired())
		{
			authRequired.GET("/me", authHandler.Me)
		}
	}

	// --- 用户模块 ---
	users := v1.Group("/users", middleware.AuthRequired())
	{
		users.GET("", userHandler.ListUsers)

		// 变更接口需要管理员权限
		adminOnly := users.Group("", middleware.AdminRequired())
		{
			adminOnly.POST("", userHandler.CreateUser)
			adminOnly.PATCH("/:id", userHandler.UpdateUser)
			adminOnly.DELETE("/:id", userHandler.DeleteUser)
			adminOnly.POST("/:id/avatar", userHandler.UploadAvatar)
		}
	}

	// --- 管理员模块 ---
	admins := v1.Group("/admins", middleware.AuthRequired())
	{
		admins.GET("", adminHandler.ListAdmins)

		adminOnly := admins.Group("", middleware.AdminRequired())
		{
			adminOnly.POST("", adminHandler.CreateAdmin)
			adminOnly.PATCH("/:id", adminHandler.UpdateAdmin)
			adminOnly.DELETE("/:id", adminHandler.DeleteAdmin)
		}
	}

	// --- 帖子模块 ---
	posts := v1.Group("/posts", middleware.AuthRequired())
	{
		posts.GET("", postHandler.ListPosts)
		posts.GET("/:id/comments", postHandler.ListPostComments)

		adminOnly := posts.Group("", middleware.AdminRequired())
		{
			adminOnly.POST("", postHandler.CreatePost)
			adminOnly.PATCH("/:id", postHandler.UpdatePost)
			adminOnly.DELETE("/:id", postHandler.DeletePost)
		}
	}
}
