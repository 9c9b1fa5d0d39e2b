package server

import (
	"net/http"

	"github.com/Luismorlan/blogmux/blog"
	"github.com/Luismorlan/blogmux/server/middlewares"
	"github.com/gin-gonic/gin"
)

func (h *Handler) ListPosts(c *gin.Context) {
	posts, err := h.svc.ListPosts(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

func (h *Handler) ShowPost(c *gin.Context) {
	post, err := h.svc.GetPost(c.Request.Context(), c.Param("title"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *Handler) CreatePost(c *gin.Context) {
	var form blog.PostForm
	if err := c.ShouldBind(&form); err != nil {
		abortWithBadForm(c, err)
		return
	}
	post, err := h.svc.CreatePost(c.Request.Context(), middlewares.CurrentActor(c), form)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (h *Handler) EditPostForm(c *gin.Context) {
	form, err := h.svc.PostForm(c.Request.Context(), middlewares.CurrentActor(c), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, form)
}

func (h *Handler) EditPost(c *gin.Context) {
	var form blog.PostForm
	if err := c.ShouldBind(&form); err != nil {
		abortWithBadForm(c, err)
		return
	}
	post, err := h.svc.EditPost(c.Request.Context(), middlewares.CurrentActor(c), c.Param("id"), form)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *Handler) DeletePost(c *gin.Context) {
	if err := h.svc.DeletePost(c.Request.Context(), middlewares.CurrentActor(c), c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "Post deleted"})
}
