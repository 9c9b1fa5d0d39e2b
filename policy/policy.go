// Package policy decides whether an actor may run a workflow. Every gated
// workflow calls one of the Require functions before touching the store, so a
// rejected request never has a partial effect.
package policy

import (
	"github.com/Luismorlan/blogmux/model"
)

var (
	// AdminOnly guards post authoring, role changes and user management.
	AdminOnly = []model.Role{model.RoleAdmin}
	// Moderators may edit or delete any comment or reply.
	Moderators = []model.Role{model.RoleAdmin, model.RoleModerator}
)

// Can returns true iff role is exactly one of required.
func Can(role model.Role, required ...model.Role) bool {
	for _, r := range required {
		if role == r {
			return true
		}
	}
	return false
}

// RequireLogin rejects anonymous actors.
func RequireLogin(actor *model.User) error {
	if actor == nil {
		return model.ErrLoginRequired
	}
	return nil
}

// Require rejects anonymous actors with AuthenticationError and actors whose
// role is not in required with AuthorizationError.
func Require(actor *model.User, required ...model.Role) error {
	if err := RequireLogin(actor); err != nil {
		return err
	}
	if !Can(actor.Role, required...) {
		return model.ErrPermissionDenied
	}
	return nil
}

// CanModerate reports whether actor may change content written by authorID:
// the content author always can, otherwise admins and moderators.
func CanModerate(actor *model.User, authorID string) bool {
	if actor == nil {
		return false
	}
	return actor.Id == authorID || Can(actor.Role, Moderators...)
}

func RequireModerate(actor *model.User, authorID string) error {
	if err := RequireLogin(actor); err != nil {
		return err
	}
	if !CanModerate(actor, authorID) {
		return model.ErrPermissionDenied
	}
	return nil
}
