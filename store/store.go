// Package store persists users, posts, comments and replies. Workflows only
// see the Store interface, postgres (GormStore) backs production and
// MemoryStore backs tests and local runs.
package store

import (
	"context"

	"github.com/Luismorlan/blogmux/model"
	"github.com/google/uuid"
)

// Store is the entity store. Lookups that miss return *model.NotFoundError,
// writes that collide on a unique field return *model.ConflictError and writes
// that reference a missing row return *model.NotFoundError for that row.
//
// Update methods take the struct field names to write, e.g. "Username". With
// no field names every mutable field is written.
type Store interface {
	// Transaction runs fn against a store bound to one transaction. Any error
	// returned by fn rolls back every write made through tx.
	Transaction(ctx context.Context, fn func(tx Store) error) error

	CountUsers(ctx context.Context) (int64, error)
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUsersByIds(ctx context.Context, ids []string) (map[string]*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
	UpdateUser(ctx context.Context, user *model.User, fields ...string) error

	CreatePost(ctx context.Context, post *model.Post) error
	GetPost(ctx context.Context, id string) (*model.Post, error)
	GetPostByTitle(ctx context.Context, title string) (*model.Post, error)
	// ListPosts returns every post, newest first.
	ListPosts(ctx context.Context) ([]*model.Post, error)
	UpdatePost(ctx context.Context, post *model.Post, fields ...string) error
	// DeletePost removes the post together with its comments and their replies.
	DeletePost(ctx context.Context, id string) error

	CreateComment(ctx context.Context, comment *model.Comment) error
	GetComment(ctx context.Context, id string) (*model.Comment, error)
	// ListCommentsForPost returns the comments of a post, oldest first.
	ListCommentsForPost(ctx context.Context, postID string) ([]*model.Comment, error)
	UpdateComment(ctx context.Context, comment *model.Comment, fields ...string) error
	// DeleteComment removes the comment together with its replies.
	DeleteComment(ctx context.Context, id string) error

	CreateReply(ctx context.Context, reply *model.Reply) error
	GetReply(ctx context.Context, id string) (*model.Reply, error)
	// ListRepliesForComments returns the replies of all given comments, oldest
	// first.
	ListRepliesForComments(ctx context.Context, commentIDs []string) ([]*model.Reply, error)
	UpdateReply(ctx context.Context, reply *model.Reply, fields ...string) error
	DeleteReply(ctx context.Context, id string) error
}

const (
	EntityUser    = "user"
	EntityPost    = "post"
	EntityComment = "comment"
	EntityReply   = "reply"
)

func ensureId(id *string) {
	if *id == "" {
		*id = uuid.New().String()
	}
}

func notFound(entity, key string) error {
	return &model.NotFoundError{Entity: entity, Key: key}
}

func usernameConflict() error {
	return model.ErrUsernameTaken
}

func emailConflict() error {
	return model.ErrEmailTaken
}

func titleConflict() error {
	return model.ErrTitleTaken
}
