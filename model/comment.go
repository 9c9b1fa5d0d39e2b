package model

import (
	"time"
)

/*
Comment is a top level reaction on a post

Id: primary key, uuid
Text: sanitized rich text
PostedOn: time the comment was written
UserID: commenter
PostID: post the comment belongs to

Replies: threaded answers to this comment, "has-many" relation, deleted
together with the comment.
*/
type Comment struct {
	Id        string    `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
	Text      string    `json:"text" gorm:"type:text"`
	PostedOn  time.Time `json:"postedOn"`
	UserID    string    `json:"userId" gorm:"index;not null"`
	PostID    string    `json:"postId" gorm:"index;not null"`
	Replies   []*Reply  `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

/*
Reply is an answer to a comment, replies are not nested any further

Id: primary key, uuid
Text: sanitized rich text
PostedOn: time the reply was written
UserID: author of the reply
CommentID: comment being replied to
*/
type Reply struct {
	Id        string    `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
	Text      string    `json:"text" gorm:"type:text"`
	PostedOn  time.Time `json:"postedOn"`
	UserID    string    `json:"userId" gorm:"index;not null"`
	CommentID string    `json:"commentId" gorm:"index;not null"`
}
