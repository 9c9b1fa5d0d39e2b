package blog

import (
	"context"
	"fmt"
	"strings"

	"github.com/Luismorlan/blogmux/model"
	"github.com/Luismorlan/blogmux/policy"
	"github.com/Luismorlan/blogmux/store"
	"github.com/Luismorlan/blogmux/utils"
	Logger "github.com/Luismorlan/blogmux/utils/log"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
)

// Register creates a new account. The very first account becomes admin,
// every later one a reader. An existing email is reported before an
// existing username and neither creates a record.
func (s *Service) Register(ctx context.Context, form RegisterForm) (*model.User, error) {
	form.Username = strings.TrimSpace(form.Username)
	form.Email = normalizeEmail(form.Email)
	if err := s.validateForm(&form); err != nil {
		return nil, err
	}
	if err := s.checkPasswordStrength("password", form.Password); err != nil {
		return nil, err
	}
	hash, err := s.hashPassword(form.Password)
	if err != nil {
		return nil, err
	}

	var user *model.User
	err = s.store.Transaction(ctx, func(tx store.Store) error {
		if _, err := tx.GetUserByEmail(ctx, form.Email); err == nil {
			return model.ErrEmailTaken
		} else if !model.IsNotFound(err) {
			return err
		}
		if _, err := tx.GetUserByUsername(ctx, form.Username); err == nil {
			return model.ErrUsernameTaken
		} else if !model.IsNotFound(err) {
			return err
		}

		count, err := tx.CountUsers(ctx)
		if err != nil {
			return err
		}
		role := model.RoleReader
		if count == 0 {
			role = model.RoleAdmin
		}

		user = &model.User{
			Id:           uuid.New().String(),
			Username:     form.Username,
			Email:        form.Email,
			PasswordHash: hash,
			JoinedOn:     datatypes.Date(s.now()),
			ProfileImage: s.setting.DEFAULT_PROFILE_IMAGE,
			Role:         role,
		}
		return tx.CreateUser(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	Logger.Log.WithField("user_id", user.Id).WithField("role", user.Role).Info("registered new user")
	utils.CountEvent("user.registered")
	return user, nil
}

// Login checks the credentials and returns the matching user. Unknown email
// and wrong password are distinct AuthenticationErrors.
func (s *Service) Login(ctx context.Context, form LoginForm) (*model.User, error) {
	form.Email = normalizeEmail(form.Email)
	if err := s.validateForm(&form); err != nil {
		return nil, err
	}
	user, err := s.store.GetUserByEmail(ctx, form.Email)
	if model.IsNotFound(err) {
		return nil, model.ErrUnknownEmail
	}
	if err != nil {
		return nil, err
	}
	if !passwordMatches(user.PasswordHash, form.Password) {
		return nil, model.ErrWrongPassword
	}
	return user, nil
}

// ListUsers is the admin user listing.
func (s *Service) ListUsers(ctx context.Context, actor *model.User) ([]*model.User, error) {
	if err := policy.Require(actor, policy.AdminOnly...); err != nil {
		return nil, err
	}
	return s.store.ListUsers(ctx)
}

// ChangeRole sets the role of the target user. Admins can't be demoted,
// including the acting admin, and asking for the current role changes
// nothing.
func (s *Service) ChangeRole(ctx context.Context, actor *model.User, userID string, newRole string) (*RoleChange, error) {
	if err := policy.Require(actor, policy.AdminOnly...); err != nil {
		return nil, err
	}
	role, err := model.ParseRole(newRole)
	if err != nil {
		return nil, err
	}

	var res *RoleChange
	err = s.store.Transaction(ctx, func(tx store.Store) error {
		target, err := tx.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		if target.Role == model.RoleAdmin {
			return &model.AuthorizationError{Msg: fmt.Sprintf("%s is Admin, can't change role", target.Username)}
		}
		if target.Role == role {
			res = &RoleChange{Changed: false, Message: fmt.Sprintf("%s is already %s", target.Username, target.Role)}
			return nil
		}
		target.Role = role
		if err := tx.UpdateUser(ctx, target, "Role"); err != nil {
			return errors.Wrap(err, "fail to update role")
		}
		res = &RoleChange{Changed: true, Message: fmt.Sprintf("Role for %s successfully changed to %s", target.Username, role)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
