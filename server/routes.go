package server

import (
	"github.com/gin-gonic/gin"
)

// AddBlogRoutes registers every blog endpoint. Routes are public at the http
// level, each workflow enforces its own role or ownership rule.
func AddBlogRoutes(router gin.IRouter, h *Handler) {
	router.GET("/ping", h.Ping)

	router.GET("/", h.ListPosts)
	router.GET("/post/:title", h.ShowPost)
	router.POST("/post/:title/comments", h.CreateComment)
	router.POST("/post/:title/comments/:comment_id/replies", h.CreateReply)

	router.POST("/register", h.Register)
	router.POST("/login", h.Login)
	router.POST("/logout", h.Logout)
	router.POST("/contact", h.Contact)

	posts := router.Group("/posts")
	posts.POST("", h.CreatePost)
	posts.GET("/:id/edit", h.EditPostForm)
	posts.PUT("/:id", h.EditPost)
	posts.DELETE("/:id", h.DeletePost)

	discussion := router.Group("/discussion")
	discussion.GET("/:kind/:id", h.DiscussionForm)
	discussion.PUT("/:kind/:id", h.EditDiscussion)
	discussion.DELETE("/:kind/:id", h.DeleteDiscussion)

	admin := router.Group("/admin")
	admin.GET("/users", h.ListUsers)
	admin.POST("/users/:id/role/:role", h.ChangeRole)

	router.GET("/profile", h.Profile)
	router.POST("/profile", h.UpdateProfile)
}
