package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	DefaultProfileImage = "default-avatar.jpg"
)

/*
User is a registered account of the blog

Id: primary key, uuid generated on registration
CreatedAt: time when entity is created
UpdatedAt: time when entity is last updated

Username: public display name, unique across users
Email: login identity, unique across users, always stored lower case
PasswordHash: bcrypt hash of the password, never serialized
JoinedOn: date the account was registered
ProfileImage: file name of the avatar inside the image store
Role: one of admin, moderator, reader

Posts: posts authored by the user, "has-many" relation
Comments: comments written by the user, "has-many" relation
Replies: replies written by the user, "has-many" relation

Users can't be deleted while they still own content, the foreign keys are
RESTRICT on purpose so no content is orphaned.
*/
type User struct {
	Id           string         `json:"id" gorm:"primaryKey"`
	CreatedAt    time.Time      `json:"-"`
	UpdatedAt    time.Time      `json:"-"`
	Username     string         `json:"username" gorm:"uniqueIndex;not null"`
	Email        string         `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string         `json:"-" gorm:"not null"`
	JoinedOn     datatypes.Date `json:"joinedOn"`
	ProfileImage string         `json:"profileImage" gorm:"default:default-avatar.jpg"`
	Role         Role           `json:"role" gorm:"type:varchar(16);default:reader;not null"`
	Posts        []*Post        `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	Comments     []*Comment     `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	Replies      []*Reply       `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
