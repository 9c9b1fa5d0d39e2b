package blog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Luismorlan/blogmux/file_store"
	"github.com/Luismorlan/blogmux/model"
	"github.com/Luismorlan/blogmux/policy"
	"github.com/Luismorlan/blogmux/store"
	Logger "github.com/Luismorlan/blogmux/utils/log"
	"github.com/kennygrant/sanitize"
	"github.com/pkg/errors"
)

const (
	noticeUsernameTaken   = "Username Taken"
	noticeUsernameChanged = "Username changed successfully!"
	noticeEmailTaken      = "Email Taken"
	noticeEmailChanged    = "Email changed successfully!"
	noticeImageChanged    = "Profile image changed successfully"
	noticePasswordChanged = "Password changed successfully!"
)

func (s *Service) profileView(u *model.User) *ProfileView {
	return &ProfileView{
		Id:              u.Id,
		Username:        u.Username,
		Email:           u.Email,
		Role:            u.Role.String(),
		ProfileImageUrl: s.images.UrlFor(u.ProfileImage),
		JoinedOn:        time.Time(u.JoinedOn),
	}
}

// Profile returns the current values shown on the profile forms.
func (s *Service) Profile(ctx context.Context, actor *model.User) (*ProfileView, error) {
	if err := policy.RequireLogin(actor); err != nil {
		return nil, err
	}
	user, err := s.store.GetUser(ctx, actor.Id)
	if err != nil {
		return nil, err
	}
	return s.profileView(user), nil
}

// profileImageName is "<username>_<user id>_<file name>", each part made safe
// for use as a file name. The username part never contains "_", so the id
// right after it keeps names of different users apart.
func profileImageName(username, userID, fileName string) string {
	return strings.ReplaceAll(sanitize.BaseName(username), "_", "-") + "_" + userID + "_" + sanitize.Name(fileName)
}

// UpdateProfileInfo applies the info form. Username and email are applied
// one by one, a value owned by another user is skipped with a notice while
// the rest of the form still applies. A rejected image extension rejects the
// whole form.
//
// A new image is saved before the user row is committed and the old image is
// deleted only after the commit. If the commit fails the new image is removed
// again.
func (s *Service) UpdateProfileInfo(ctx context.Context, actor *model.User, form ProfileInfoForm) (*ProfileReport, error) {
	if err := policy.RequireLogin(actor); err != nil {
		return nil, err
	}
	form.Username = strings.TrimSpace(form.Username)
	form.Email = normalizeEmail(form.Email)
	if err := s.validateForm(&form); err != nil {
		return nil, err
	}
	if form.Image != nil && !file_store.AllowedImage(sanitize.Name(form.Image.FileName), s.setting.ALLOWED_IMAGE_EXTENSIONS) {
		return nil, model.NewValidationError("image",
			fmt.Sprintf("File not allowed. Allowed formats - %s", strings.Join(s.setting.ALLOWED_IMAGE_EXTENSIONS, ", ")))
	}

	report := &ProfileReport{Notices: []string{}}
	var savedImage, oldImage string
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		user, err := tx.GetUser(ctx, actor.Id)
		if err != nil {
			return err
		}
		fields := []string{}

		if form.Username != user.Username {
			_, err := tx.GetUserByUsername(ctx, form.Username)
			switch {
			case err == nil:
				report.Notices = append(report.Notices, noticeUsernameTaken)
			case model.IsNotFound(err):
				user.Username = form.Username
				fields = append(fields, "Username")
				report.Notices = append(report.Notices, noticeUsernameChanged)
			default:
				return err
			}
		}

		if form.Email != user.Email {
			_, err := tx.GetUserByEmail(ctx, form.Email)
			switch {
			case err == nil:
				report.Notices = append(report.Notices, noticeEmailTaken)
			case model.IsNotFound(err):
				user.Email = form.Email
				fields = append(fields, "Email")
				report.Notices = append(report.Notices, noticeEmailChanged)
			default:
				return err
			}
		}

		if form.Image != nil {
			name := profileImageName(user.Username, user.Id, form.Image.FileName)
			if err := s.images.Save(ctx, name, form.Image.Content); err != nil {
				return errors.Wrap(err, "fail to save profile image")
			}
			savedImage, oldImage = name, user.ProfileImage
			user.ProfileImage = name
			fields = append(fields, "ProfileImage")
			report.Notices = append(report.Notices, noticeImageChanged)
		}

		if len(fields) == 0 {
			return nil
		}
		return tx.UpdateUser(ctx, user, fields...)
	})

	if err != nil {
		// the same name overwrote the current image, nothing to undo
		if savedImage != "" && savedImage != oldImage {
			if delErr := s.images.Delete(ctx, savedImage); delErr != nil {
				Logger.Log.WithError(delErr).Error("fail to remove uploaded image ", savedImage)
			}
		}
		return nil, err
	}

	if savedImage != "" && oldImage != savedImage && oldImage != s.setting.DEFAULT_PROFILE_IMAGE && oldImage != "" {
		s.removeImage(ctx, oldImage)
	}
	return report, nil
}

// removeImage deletes a replaced profile image if it is still stored. Failures
// are logged, the profile change is already committed.
func (s *Service) removeImage(ctx context.Context, name string) {
	exists, err := s.images.Exists(ctx, name)
	if err != nil {
		Logger.Log.WithError(err).Error("fail to check previous profile image ", name)
		return
	}
	if !exists {
		Logger.Log.Warn("previous profile image already gone: ", name)
		return
	}
	if err := s.images.Delete(ctx, name); err != nil {
		Logger.Log.WithError(err).Error("fail to remove previous profile image ", name)
	}
}

// ChangePassword replaces the password after verifying the current one. On
// a wrong current password the stored hash is left untouched.
func (s *Service) ChangePassword(ctx context.Context, actor *model.User, form PasswordForm) (*ProfileReport, error) {
	if err := policy.RequireLogin(actor); err != nil {
		return nil, err
	}
	if err := s.validateForm(&form); err != nil {
		return nil, err
	}
	if err := s.checkPasswordStrength("newPassword", form.New); err != nil {
		return nil, err
	}

	err := s.store.Transaction(ctx, func(tx store.Store) error {
		user, err := tx.GetUser(ctx, actor.Id)
		if err != nil {
			return err
		}
		if !passwordMatches(user.PasswordHash, form.Current) {
			return model.ErrWrongPassword
		}
		hash, err := s.hashPassword(form.New)
		if err != nil {
			return err
		}
		user.PasswordHash = hash
		return tx.UpdateUser(ctx, user, "PasswordHash")
	})
	if err != nil {
		return nil, err
	}
	return &ProfileReport{Notices: []string{noticePasswordChanged}}, nil
}
