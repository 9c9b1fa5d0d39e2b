// Package blog implements every user facing workflow of the blog. Each
// method receives the resolved actor (nil for anonymous visitors), runs its
// policy guard before touching the store and wraps multi step writes in one
// store transaction.
package blog

import (
	"context"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/Luismorlan/blogmux/app_setting"
	"github.com/Luismorlan/blogmux/file_store"
	"github.com/Luismorlan/blogmux/mail"
	"github.com/Luismorlan/blogmux/model"
	"github.com/Luismorlan/blogmux/store"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// bcrypt refuses longer passwords.
const maxPasswordBytes = 72

type Service struct {
	store    store.Store
	images   file_store.ImageStore
	mailer   mail.Mailer
	setting  app_setting.BlogAppSetting
	validate *validator.Validate
	now      func() time.Time
}

func NewService(s store.Store, images file_store.ImageStore, mailer mail.Mailer, setting app_setting.BlogAppSetting) *Service {
	return &Service{
		store:    s,
		images:   images,
		mailer:   mailer,
		setting:  setting,
		validate: newValidator(),
		now:      time.Now,
	}
}

func newValidator() *validator.Validate {
	v := validator.New()
	// report fields under their json name, which is also the form field name
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Invalid email address."
	case "url":
		return "Invalid URL."
	case "eqfield":
		return "Passwords must match"
	case "max":
		return "Field must be at most " + fe.Param() + " characters long."
	}
	return "Invalid value."
}

// validateForm runs the struct tags of form and converts failures into a
// ValidationError keyed by form field.
func (s *Service) validateForm(form interface{}) error {
	err := s.validate.Struct(form)
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return errors.Wrap(err, "fail to validate form")
	}
	res := &model.ValidationError{}
	for _, fe := range fieldErrors {
		if _, ok := res.Fields[fe.Field()]; !ok {
			res.Add(fe.Field(), fieldMessage(fe))
		}
	}
	return res
}

func (s *Service) checkPasswordStrength(field, password string) error {
	if len([]rune(password)) < s.setting.MIN_PASSWORD_LENGTH {
		return model.NewValidationError(field, "Password must be at least "+strconv.Itoa(s.setting.MIN_PASSWORD_LENGTH)+" characters long")
	}
	if len(password) > maxPasswordBytes {
		return model.NewValidationError(field, "Password is too long")
	}
	return nil
}

func (s *Service) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.setting.BCRYPT_COST)
	if err != nil {
		return "", errors.Wrap(err, "fail to hash password")
	}
	return string(hash), nil
}

func passwordMatches(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) author(users map[string]*model.User, id string) Author {
	u, ok := users[id]
	if !ok {
		return Author{Id: id}
	}
	return Author{Id: u.Id, Username: u.Username, ProfileImageUrl: s.images.UrlFor(u.ProfileImage)}
}

// loadAuthors fetches every user referenced by ids in one query.
func (s *Service) loadAuthors(ctx context.Context, ids []string) (map[string]*model.User, error) {
	seen := map[string]bool{}
	unique := []string{}
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	users, err := s.store.GetUsersByIds(ctx, unique)
	if err != nil {
		return nil, errors.Wrap(err, "fail to load authors")
	}
	return users, nil
}
