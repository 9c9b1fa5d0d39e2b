package blog

import (
	"io"
)

// Forms are decoded by the http layer from json or multipart bodies, the
// form tags name the multipart fields.

type RegisterForm struct {
	Username string `json:"username" form:"username" validate:"required,max=64"`
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
	Confirm  string `json:"confirm" form:"confirm" validate:"required,eqfield=Password"`
}

type LoginForm struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

// PostForm is both the create and the edit form of a post. Field names match
// model.Post so the form can be copied from and onto a post.
type PostForm struct {
	Title    string `json:"title" form:"title" validate:"required,max=250"`
	Subtitle string `json:"subtitle" form:"subtitle" validate:"required,max=250"`
	ImageUrl string `json:"imageUrl" form:"imageUrl" validate:"required,url"`
	Body     string `json:"body" form:"body" validate:"required"`
}

type CommentForm struct {
	Text string `json:"comment" form:"comment" validate:"required"`
}

// Upload is a file sent along a multipart form.
type Upload struct {
	FileName string
	Content  io.Reader
}

type ProfileInfoForm struct {
	Username string `json:"username" form:"username" validate:"required,max=64"`
	Email    string `json:"email" form:"email" validate:"required,email"`
	// Image is nil when no new profile image was uploaded.
	Image *Upload `json:"-" form:"-" validate:"-"`
}

type PasswordForm struct {
	Current string `json:"currentPassword" form:"current_password"`
	New     string `json:"newPassword" form:"new_password" validate:"required"`
	Confirm string `json:"confirm" form:"confirm" validate:"eqfield=New"`
}

type ContactForm struct {
	Name    string `json:"name" form:"name" validate:"required"`
	Email   string `json:"email" form:"email" validate:"required,email"`
	Phone   string `json:"phone" form:"pnumber"`
	Message string `json:"message" form:"message" validate:"required"`
}
