package blog

import (
	"context"
	"strings"

	"github.com/Luismorlan/blogmux/model"
	"github.com/Luismorlan/blogmux/policy"
	"github.com/Luismorlan/blogmux/store"
	"github.com/Luismorlan/blogmux/utils"
	Logger "github.com/Luismorlan/blogmux/utils/log"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
)

// ListPosts returns every post for the index page, newest first.
func (s *Service) ListPosts(ctx context.Context) ([]PostSummary, error) {
	posts, err := s.store.ListPosts(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.UserID)
	}
	authors, err := s.loadAuthors(ctx, ids)
	if err != nil {
		return nil, err
	}

	res := make([]PostSummary, 0, len(posts))
	for _, p := range posts {
		excerpt, err := utils.HtmlExcerpt(p.Body, s.setting.EXCERPT_LENGTH)
		if err != nil {
			return nil, errors.Wrapf(err, "fail to build excerpt of post %s", p.Id)
		}
		res = append(res, PostSummary{
			Id:       p.Id,
			Title:    p.Title,
			Subtitle: p.Subtitle,
			ImageUrl: p.ImageUrl,
			Excerpt:  excerpt,
			PostedOn: p.PostedOn,
			Author:   s.author(authors, p.UserID),
		})
	}
	return res, nil
}

// GetPost loads a post by title together with its discussion.
func (s *Service) GetPost(ctx context.Context, title string) (*PostView, error) {
	post, err := s.store.GetPostByTitle(ctx, title)
	if err != nil {
		return nil, err
	}
	comments, err := s.store.ListCommentsForPost(ctx, post.Id)
	if err != nil {
		return nil, err
	}
	commentIds := make([]string, 0, len(comments))
	userIds := []string{post.UserID}
	for _, c := range comments {
		commentIds = append(commentIds, c.Id)
		userIds = append(userIds, c.UserID)
	}
	replies, err := s.store.ListRepliesForComments(ctx, commentIds)
	if err != nil {
		return nil, err
	}
	repliesByComment := map[string][]*model.Reply{}
	for _, r := range replies {
		repliesByComment[r.CommentID] = append(repliesByComment[r.CommentID], r)
		userIds = append(userIds, r.UserID)
	}
	authors, err := s.loadAuthors(ctx, userIds)
	if err != nil {
		return nil, err
	}

	view := &PostView{
		Id:       post.Id,
		Title:    post.Title,
		Subtitle: post.Subtitle,
		ImageUrl: post.ImageUrl,
		Body:     post.Body,
		PostedOn: post.PostedOn,
		Author:   s.author(authors, post.UserID),
		Comments: make([]CommentView, 0, len(comments)),
	}
	for _, c := range comments {
		cv := CommentView{
			Id:       c.Id,
			Text:     c.Text,
			PostedOn: c.PostedOn,
			Author:   s.author(authors, c.UserID),
			Replies:  []ReplyView{},
		}
		for _, r := range repliesByComment[c.Id] {
			cv.Replies = append(cv.Replies, ReplyView{
				Id:       r.Id,
				Text:     r.Text,
				PostedOn: r.PostedOn,
				Author:   s.author(authors, r.UserID),
			})
		}
		view.Comments = append(view.Comments, cv)
	}
	return view, nil
}

// cleanPostForm validates form and sanitizes its rich text body in place.
func (s *Service) cleanPostForm(form *PostForm) error {
	form.Title = strings.TrimSpace(form.Title)
	form.Subtitle = strings.TrimSpace(form.Subtitle)
	form.ImageUrl = strings.TrimSpace(form.ImageUrl)
	if err := s.validateForm(form); err != nil {
		return err
	}
	form.Body = utils.SanitizeRichText(form.Body)
	if strings.TrimSpace(form.Body) == "" {
		return model.NewValidationError("body", "This field is required.")
	}
	return nil
}

func (s *Service) CreatePost(ctx context.Context, actor *model.User, form PostForm) (*model.Post, error) {
	if err := policy.Require(actor, policy.AdminOnly...); err != nil {
		return nil, err
	}
	if err := s.cleanPostForm(&form); err != nil {
		return nil, err
	}
	post := &model.Post{
		Id:       uuid.New().String(),
		PostedOn: s.now(),
		UserID:   actor.Id,
	}
	if err := copier.Copy(post, &form); err != nil {
		return nil, errors.Wrap(err, "fail to copy post form")
	}
	if err := s.store.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	Logger.Log.WithField("post_id", post.Id).Info("post created by ", actor.Username)
	return post, nil
}

// PostForm returns the edit form of a post filled with its current values.
func (s *Service) PostForm(ctx context.Context, actor *model.User, postID string) (*PostForm, error) {
	if err := policy.Require(actor, policy.AdminOnly...); err != nil {
		return nil, err
	}
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	form := &PostForm{}
	if err := copier.Copy(form, post); err != nil {
		return nil, errors.Wrap(err, "fail to copy post")
	}
	return form, nil
}

// EditPost overwrites every mutable field of the post with the form. Author
// and publication time are kept.
func (s *Service) EditPost(ctx context.Context, actor *model.User, postID string, form PostForm) (*model.Post, error) {
	if err := policy.Require(actor, policy.AdminOnly...); err != nil {
		return nil, err
	}
	if err := s.cleanPostForm(&form); err != nil {
		return nil, err
	}
	var post *model.Post
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		var err error
		post, err = tx.GetPost(ctx, postID)
		if err != nil {
			return err
		}
		if err := copier.Copy(post, &form); err != nil {
			return errors.Wrap(err, "fail to copy post form")
		}
		return tx.UpdatePost(ctx, post, "Title", "Subtitle", "ImageUrl", "Body")
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost removes any post, whoever wrote it, along with its discussion.
func (s *Service) DeletePost(ctx context.Context, actor *model.User, postID string) error {
	if err := policy.Require(actor, policy.AdminOnly...); err != nil {
		return err
	}
	if err := s.store.DeletePost(ctx, postID); err != nil {
		return err
	}
	Logger.Log.WithField("post_id", postID).Info("post deleted by ", actor.Username)
	return nil
}
