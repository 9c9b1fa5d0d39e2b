package server

import (
	"net/http"

	"github.com/Luismorlan/blogmux/blog"
	"github.com/Luismorlan/blogmux/model"
	"github.com/Luismorlan/blogmux/server/middlewares"
	"github.com/gin-gonic/gin"
)

const (
	// multipart field of the profile image
	profileImageField   = "file"
	submitInfoField     = "submit_info"
	submitPasswordField = "submit_password"
)

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.svc.ListUsers(c.Request.Context(), middlewares.CurrentActor(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *Handler) ChangeRole(c *gin.Context) {
	res, err := h.svc.ChangeRole(c.Request.Context(), middlewares.CurrentActor(c), c.Param("id"), c.Param("role"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Profile(c *gin.Context) {
	profile, err := h.svc.Profile(c.Request.Context(), middlewares.CurrentActor(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateProfile serves both profile forms, the submit control that was sent
// decides which one is processed.
func (h *Handler) UpdateProfile(c *gin.Context) {
	switch {
	case c.PostForm(submitInfoField) != "":
		h.updateProfileInfo(c)
	case c.PostForm(submitPasswordField) != "":
		h.changePassword(c)
	default:
		abortWithError(c, model.NewValidationError("submit", "Choose the info or the password form"))
	}
}

func (h *Handler) updateProfileInfo(c *gin.Context) {
	var form blog.ProfileInfoForm
	if err := c.ShouldBind(&form); err != nil {
		abortWithBadForm(c, err)
		return
	}

	fileHeader, err := c.FormFile(profileImageField)
	if err != nil && err != http.ErrMissingFile {
		abortWithBadForm(c, err)
		return
	}
	if fileHeader != nil && fileHeader.Filename != "" {
		file, err := fileHeader.Open()
		if err != nil {
			abortWithBadForm(c, err)
			return
		}
		defer file.Close()
		form.Image = &blog.Upload{FileName: fileHeader.Filename, Content: file}
	}

	report, err := h.svc.UpdateProfileInfo(c.Request.Context(), middlewares.CurrentActor(c), form)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) changePassword(c *gin.Context) {
	var form blog.PasswordForm
	if err := c.ShouldBind(&form); err != nil {
		abortWithBadForm(c, err)
		return
	}
	report, err := h.svc.ChangePassword(c.Request.Context(), middlewares.CurrentActor(c), form)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
