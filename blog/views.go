package blog

import (
	"time"
)

type Author struct {
	Id              string `json:"id"`
	Username        string `json:"username"`
	ProfileImageUrl string `json:"profileImageUrl"`
}

// PostSummary is one entry of the index page.
type PostSummary struct {
	Id       string    `json:"id"`
	Title    string    `json:"title"`
	Subtitle string    `json:"subtitle"`
	ImageUrl string    `json:"imageUrl"`
	Excerpt  string    `json:"excerpt"`
	PostedOn time.Time `json:"postedOn"`
	Author   Author    `json:"author"`
}

// PostView is a post with its whole discussion, comments oldest first, each
// with its replies oldest first.
type PostView struct {
	Id       string        `json:"id"`
	Title    string        `json:"title"`
	Subtitle string        `json:"subtitle"`
	ImageUrl string        `json:"imageUrl"`
	Body     string        `json:"body"`
	PostedOn time.Time     `json:"postedOn"`
	Author   Author        `json:"author"`
	Comments []CommentView `json:"comments"`
}

type CommentView struct {
	Id       string      `json:"id"`
	Text     string      `json:"text"`
	PostedOn time.Time   `json:"postedOn"`
	Author   Author      `json:"author"`
	Replies  []ReplyView `json:"replies"`
}

type ReplyView struct {
	Id       string    `json:"id"`
	Text     string    `json:"text"`
	PostedOn time.Time `json:"postedOn"`
	Author   Author    `json:"author"`
}

// DiscussionView pre-fills the shared comment/reply edit form.
type DiscussionView struct {
	Kind     string `json:"kind"`
	Id       string `json:"id"`
	Text     string `json:"comment"`
	AuthorId string `json:"authorId"`
}

type ProfileView struct {
	Id              string    `json:"id"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	Role            string    `json:"role"`
	ProfileImageUrl string    `json:"profileImageUrl"`
	JoinedOn        time.Time `json:"joinedOn"`
}

// ProfileReport lists what a profile submission changed or refused, one
// notice per field, in the order the fields were processed.
type ProfileReport struct {
	Notices []string `json:"notices"`
}

type RoleChange struct {
	Changed bool   `json:"changed"`
	Message string `json:"msg"`
}
