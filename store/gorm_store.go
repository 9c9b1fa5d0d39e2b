package store

import (
	"context"
	"strings"

	"github.com/Luismorlan/blogmux/model"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// GormStore is the postgres backed Store. Schema is created by
// utils.DatabaseSetupAndMigration, cascades on post and comment deletion are
// enforced by the foreign keys.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

// refs maps a referenced entity to the id the written row points at, used
// to report which parent was missing on a foreign key violation.
type refs map[string]string

// translate converts driver errors into the model error taxonomy.
func translate(err error, entity, key string, parents refs) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(entity, key)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			switch {
			case strings.Contains(pgErr.ConstraintName, "username"):
				return usernameConflict()
			case strings.Contains(pgErr.ConstraintName, "email"):
				return emailConflict()
			case strings.Contains(pgErr.ConstraintName, "title"):
				return titleConflict()
			}
			return &model.ConflictError{Field: pgErr.ConstraintName}
		case pgForeignKeyViolation:
			parent := parentFromConstraint(pgErr.ConstraintName)
			return notFound(parent, parents[parent])
		}
	}
	return errors.Wrapf(err, "%s %s", entity, key)
}

// gorm names has-many constraints fk_<owner table>_<field>.
func parentFromConstraint(name string) string {
	switch {
	case strings.HasPrefix(name, "fk_users_"):
		return EntityUser
	case strings.HasPrefix(name, "fk_posts_"):
		return EntityPost
	case strings.HasPrefix(name, "fk_comments_"):
		return EntityComment
	}
	return name
}

func (s *GormStore) create(ctx context.Context, value interface{}, entity, key string, parents refs) error {
	err := s.db.WithContext(ctx).Omit(clause.Associations).Create(value).Error
	return translate(err, entity, key, parents)
}

func (s *GormStore) first(ctx context.Context, dest interface{}, entity, key, query string, args ...interface{}) error {
	err := s.db.WithContext(ctx).Where(query, args...).First(dest).Error
	return translate(err, entity, key, nil)
}

// update writes the given fields of value, all mutable fields when none are
// named. Updating a missing row is a NotFoundError.
func (s *GormStore) update(ctx context.Context, value interface{}, entity, key string, fields []string) error {
	tx := s.db.WithContext(ctx).Model(value)
	if len(fields) == 0 {
		tx = tx.Select("*").Omit("Id", "CreatedAt", clause.Associations)
	} else {
		tx = tx.Select(fields).Omit(clause.Associations)
	}
	res := tx.Updates(value)
	if res.Error != nil {
		return translate(res.Error, entity, key, nil)
	}
	if res.RowsAffected == 0 {
		return notFound(entity, key)
	}
	return nil
}

func (s *GormStore) delete(ctx context.Context, value interface{}, entity, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(value)
	if res.Error != nil {
		return translate(res.Error, entity, id, nil)
	}
	if res.RowsAffected == 0 {
		return notFound(entity, id)
	}
	return nil
}

func (s *GormStore) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "count users")
	}
	return count, nil
}

func (s *GormStore) CreateUser(ctx context.Context, user *model.User) error {
	ensureId(&user.Id)
	return s.create(ctx, user, EntityUser, user.Id, nil)
}

func (s *GormStore) GetUser(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := s.first(ctx, &user, EntityUser, id, "id = ?", id); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *GormStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := s.first(ctx, &user, EntityUser, username, "username = ?", username); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *GormStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := s.first(ctx, &user, EntityUser, email, "email = ?", email); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *GormStore) GetUsersByIds(ctx context.Context, ids []string) (map[string]*model.User, error) {
	res := map[string]*model.User{}
	if len(ids) == 0 {
		return res, nil
	}
	var users []*model.User
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, errors.Wrap(err, "get users by ids")
	}
	for _, u := range users {
		res[u.Id] = u
	}
	return res, nil
}

func (s *GormStore) ListUsers(ctx context.Context) ([]*model.User, error) {
	var users []*model.User
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, errors.Wrap(err, "list users")
	}
	return users, nil
}

func (s *GormStore) UpdateUser(ctx context.Context, user *model.User, fields ...string) error {
	return s.update(ctx, user, EntityUser, user.Id, fields)
}

func (s *GormStore) CreatePost(ctx context.Context, post *model.Post) error {
	ensureId(&post.Id)
	return s.create(ctx, post, EntityPost, post.Id, refs{EntityUser: post.UserID})
}

func (s *GormStore) GetPost(ctx context.Context, id string) (*model.Post, error) {
	var post model.Post
	if err := s.first(ctx, &post, EntityPost, id, "id = ?", id); err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *GormStore) GetPostByTitle(ctx context.Context, title string) (*model.Post, error) {
	var post model.Post
	if err := s.first(ctx, &post, EntityPost, title, "title = ?", title); err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *GormStore) ListPosts(ctx context.Context) ([]*model.Post, error) {
	var posts []*model.Post
	if err := s.db.WithContext(ctx).Order("posted_on DESC").Order("created_at DESC").Find(&posts).Error; err != nil {
		return nil, errors.Wrap(err, "list posts")
	}
	return posts, nil
}

func (s *GormStore) UpdatePost(ctx context.Context, post *model.Post, fields ...string) error {
	return s.update(ctx, post, EntityPost, post.Id, fields)
}

func (s *GormStore) DeletePost(ctx context.Context, id string) error {
	return s.delete(ctx, &model.Post{}, EntityPost, id)
}

func (s *GormStore) CreateComment(ctx context.Context, comment *model.Comment) error {
	ensureId(&comment.Id)
	return s.create(ctx, comment, EntityComment, comment.Id,
		refs{EntityUser: comment.UserID, EntityPost: comment.PostID})
}

func (s *GormStore) GetComment(ctx context.Context, id string) (*model.Comment, error) {
	var comment model.Comment
	if err := s.first(ctx, &comment, EntityComment, id, "id = ?", id); err != nil {
		return nil, err
	}
	return &comment, nil
}

func (s *GormStore) ListCommentsForPost(ctx context.Context, postID string) ([]*model.Comment, error) {
	var comments []*model.Comment
	err := s.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("posted_on ASC").Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, errors.Wrap(err, "list comments")
	}
	return comments, nil
}

func (s *GormStore) UpdateComment(ctx context.Context, comment *model.Comment, fields ...string) error {
	return s.update(ctx, comment, EntityComment, comment.Id, fields)
}

func (s *GormStore) DeleteComment(ctx context.Context, id string) error {
	return s.delete(ctx, &model.Comment{}, EntityComment, id)
}

func (s *GormStore) CreateReply(ctx context.Context, reply *model.Reply) error {
	ensureId(&reply.Id)
	return s.create(ctx, reply, EntityReply, reply.Id,
		refs{EntityUser: reply.UserID, EntityComment: reply.CommentID})
}

func (s *GormStore) GetReply(ctx context.Context, id string) (*model.Reply, error) {
	var reply model.Reply
	if err := s.first(ctx, &reply, EntityReply, id, "id = ?", id); err != nil {
		return nil, err
	}
	return &reply, nil
}

func (s *GormStore) ListRepliesForComments(ctx context.Context, commentIDs []string) ([]*model.Reply, error) {
	replies := []*model.Reply{}
	if len(commentIDs) == 0 {
		return replies, nil
	}
	err := s.db.WithContext(ctx).
		Where("comment_id IN ?", commentIDs).
		Order("posted_on ASC").Order("created_at ASC").
		Find(&replies).Error
	if err != nil {
		return nil, errors.Wrap(err, "list replies")
	}
	return replies, nil
}

func (s *GormStore) UpdateReply(ctx context.Context, reply *model.Reply, fields ...string) error {
	return s.update(ctx, reply, EntityReply, reply.Id, fields)
}

func (s *GormStore) DeleteReply(ctx context.Context, id string) error {
	return s.delete(ctx, &model.Reply{}, EntityReply, id)
}
