package server

import (
	"net/http"

	"github.com/Luismorlan/blogmux/blog"
	"github.com/Luismorlan/blogmux/server/middlewares"
	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateComment(c *gin.Context) {
	var form blog.CommentForm
	if err := c.ShouldBind(&form); err != nil {
		abortWithBadForm(c, err)
		return
	}
	comment, err := h.svc.CreateComment(c.Request.Context(), middlewares.CurrentActor(c), c.Param("title"), form.Text)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (h *Handler) CreateReply(c *gin.Context) {
	var form blog.CommentForm
	if err := c.ShouldBind(&form); err != nil {
		abortWithBadForm(c, err)
		return
	}
	reply, err := h.svc.CreateReply(c.Request.Context(), middlewares.CurrentActor(c),
		c.Param("title"), c.Param("comment_id"), form.Text)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, reply)
}

func (h *Handler) DiscussionForm(c *gin.Context) {
	view, err := h.svc.DiscussionForm(c.Request.Context(), middlewares.CurrentActor(c), c.Param("kind"), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) EditDiscussion(c *gin.Context) {
	var form blog.CommentForm
	if err := c.ShouldBind(&form); err != nil {
		abortWithBadForm(c, err)
		return
	}
	view, err := h.svc.EditDiscussion(c.Request.Context(), middlewares.CurrentActor(c),
		c.Param("kind"), c.Param("id"), form.Text)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) DeleteDiscussion(c *gin.Context) {
	err := h.svc.DeleteDiscussion(c.Request.Context(), middlewares.CurrentActor(c), c.Param("kind"), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "Deleted"})
}
