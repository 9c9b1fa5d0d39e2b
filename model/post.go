package model

import (
	"time"
)

/*
Post is a blog article written by an admin

Id: primary key, uuid
CreatedAt: time when entity is created
UpdatedAt: time when entity is last updated

Title: article title, unique, also used as the public lookup key
Subtitle: one line summary shown under the title
ImageUrl: header image, an absolute url
Body: article content in sanitized rich text (html)
PostedOn: time the article was published
UserID: author of the post

Comments: all comments left on this post, "has-many" relation. Deleting the
post cascades to its comments (and from there to their replies).
*/
type Post struct {
	Id        string     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time  `json:"-"`
	UpdatedAt time.Time  `json:"-"`
	Title     string     `json:"title" gorm:"uniqueIndex;not null"`
	Subtitle  string     `json:"subtitle"`
	ImageUrl  string     `json:"imageUrl"`
	Body      string     `json:"body" gorm:"type:text"`
	PostedOn  time.Time  `json:"postedOn" gorm:"index"`
	UserID    string     `json:"userId" gorm:"index;not null"`
	Comments  []*Comment `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
