package server

import (
	"errors"
	"net/http"

	"github.com/Luismorlan/blogmux/model"
	"github.com/Luismorlan/blogmux/utils"
	Logger "github.com/Luismorlan/blogmux/utils/log"
	"github.com/gin-gonic/gin"
)

type errorKind struct {
	name   string
	status int
	code   int
}

var (
	kindValidation    = errorKind{"validation", http.StatusBadRequest, utils.ErrorValidation}
	kindConflict      = errorKind{"conflict", http.StatusConflict, utils.ErrorConflict}
	kindLoginRequired = errorKind{"login_required", http.StatusUnauthorized, utils.ErrorLoginRequired}
	kindCredentials   = errorKind{"credentials", http.StatusUnauthorized, utils.ErrorTokenAuthFail}
	kindPermission    = errorKind{"permission", http.StatusForbidden, utils.ErrorPermission}
	kindNotFound      = errorKind{"not_found", http.StatusNotFound, utils.ErrorNotFound}
	kindInternal      = errorKind{"internal", http.StatusInternalServerError, utils.ErrorInternal}
)

func classify(err error) errorKind {
	switch {
	case model.IsValidation(err):
		return kindValidation
	case model.IsConflict(err):
		return kindConflict
	case errors.Is(err, model.ErrLoginRequired):
		return kindLoginRequired
	case model.IsAuthentication(err):
		return kindCredentials
	case model.IsAuthorization(err):
		return kindPermission
	case model.IsNotFound(err):
		return kindNotFound
	}
	return kindInternal
}

// abortWithError writes the error body {"code", "msg"} for err and stops the
// handler chain. Validation errors also carry the per field messages.
// Internal errors are logged and their message is not exposed.
func abortWithError(c *gin.Context, err error) {
	kind := classify(err)
	utils.CountError(kind.name)

	body := gin.H{"code": kind.code, "msg": err.Error()}
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		body["fields"] = verr.Fields
	}
	if kind == kindInternal {
		Logger.Log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		body["msg"] = "internal error"
	}
	c.AbortWithStatusJSON(kind.status, body)
}

// abortWithBadForm reports a body that could not be decoded at all.
func abortWithBadForm(c *gin.Context, err error) {
	utils.CountError("bad_form")
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"code": utils.ErrorBadRequestForm,
		"msg":  err.Error(),
	})
}
