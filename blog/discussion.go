package blog

import (
	"context"

	"github.com/Luismorlan/blogmux/model"
	"github.com/Luismorlan/blogmux/policy"
	"github.com/Luismorlan/blogmux/store"
	"github.com/Luismorlan/blogmux/utils"
	"github.com/google/uuid"
)

// cleanCommentText validates and sanitizes the text of a comment or reply.
func (s *Service) cleanCommentText(text string) (string, error) {
	form := CommentForm{Text: text}
	if err := s.validateForm(&form); err != nil {
		return "", err
	}
	clean := utils.SanitizeRichText(form.Text)
	if clean == "" {
		return "", model.NewValidationError("comment", "This field is required.")
	}
	return clean, nil
}

// CreateComment adds a comment by actor to the post with the given title.
func (s *Service) CreateComment(ctx context.Context, actor *model.User, postTitle string, text string) (*model.Comment, error) {
	if err := policy.RequireLogin(actor); err != nil {
		return nil, err
	}
	clean, err := s.cleanCommentText(text)
	if err != nil {
		return nil, err
	}
	post, err := s.store.GetPostByTitle(ctx, postTitle)
	if err != nil {
		return nil, err
	}
	comment := &model.Comment{
		Id:       uuid.New().String(),
		Text:     clean,
		PostedOn: s.now(),
		UserID:   actor.Id,
		PostID:   post.Id,
	}
	if err := s.store.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateReply answers a comment of the post with the given title. A comment
// that belongs to another post is reported as missing.
func (s *Service) CreateReply(ctx context.Context, actor *model.User, postTitle string, commentID string, text string) (*model.Reply, error) {
	if err := policy.RequireLogin(actor); err != nil {
		return nil, err
	}
	clean, err := s.cleanCommentText(text)
	if err != nil {
		return nil, err
	}
	post, err := s.store.GetPostByTitle(ctx, postTitle)
	if err != nil {
		return nil, err
	}
	comment, err := s.store.GetComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.PostID != post.Id {
		return nil, &model.NotFoundError{Entity: store.EntityComment, Key: commentID}
	}
	reply := &model.Reply{
		Id:        uuid.New().String(),
		Text:      clean,
		PostedOn:  s.now(),
		UserID:    actor.Id,
		CommentID: comment.Id,
	}
	if err := s.store.CreateReply(ctx, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

// discussionEntry is a comment or a reply behind the shared edit form.
type discussionEntry struct {
	kind    model.ContentKind
	comment *model.Comment
	reply   *model.Reply
}

func (e *discussionEntry) authorID() string {
	if e.kind == model.ContentComment {
		return e.comment.UserID
	}
	return e.reply.UserID
}

func (e *discussionEntry) view() *DiscussionView {
	v := &DiscussionView{Kind: string(e.kind), AuthorId: e.authorID()}
	if e.kind == model.ContentComment {
		v.Id, v.Text = e.comment.Id, e.comment.Text
	} else {
		v.Id, v.Text = e.reply.Id, e.reply.Text
	}
	return v
}

func (e *discussionEntry) setText(ctx context.Context, tx store.Store, text string) error {
	if e.kind == model.ContentComment {
		e.comment.Text = text
		return tx.UpdateComment(ctx, e.comment, "Text")
	}
	e.reply.Text = text
	return tx.UpdateReply(ctx, e.reply, "Text")
}

func (e *discussionEntry) delete(ctx context.Context, tx store.Store) error {
	if e.kind == model.ContentComment {
		return tx.DeleteComment(ctx, e.comment.Id)
	}
	return tx.DeleteReply(ctx, e.reply.Id)
}

// loadModeratable resolves kind and id to an entry actor may change. Unknown
// kinds and missing entries are NotFoundErrors, checked before ownership.
func loadModeratable(ctx context.Context, tx store.Store, actor *model.User, kind string, id string) (*discussionEntry, error) {
	contentKind, err := model.ParseContentKind(kind)
	if err != nil {
		return nil, err
	}
	entry := &discussionEntry{kind: contentKind}
	switch contentKind {
	case model.ContentComment:
		entry.comment, err = tx.GetComment(ctx, id)
	case model.ContentReply:
		entry.reply, err = tx.GetReply(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	if err := policy.RequireModerate(actor, entry.authorID()); err != nil {
		return nil, err
	}
	return entry, nil
}

// DiscussionForm returns the current text of a comment or reply for editing.
func (s *Service) DiscussionForm(ctx context.Context, actor *model.User, kind string, id string) (*DiscussionView, error) {
	if err := policy.RequireLogin(actor); err != nil {
		return nil, err
	}
	entry, err := loadModeratable(ctx, s.store, actor, kind, id)
	if err != nil {
		return nil, err
	}
	return entry.view(), nil
}

// EditDiscussion replaces the text of a comment or reply. Only its author,
// moderators and admins may do so.
func (s *Service) EditDiscussion(ctx context.Context, actor *model.User, kind string, id string, text string) (*DiscussionView, error) {
	if err := policy.RequireLogin(actor); err != nil {
		return nil, err
	}
	var entry *discussionEntry
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		var err error
		entry, err = loadModeratable(ctx, tx, actor, kind, id)
		if err != nil {
			return err
		}
		clean, err := s.cleanCommentText(text)
		if err != nil {
			return err
		}
		return entry.setText(ctx, tx, clean)
	})
	if err != nil {
		return nil, err
	}
	return entry.view(), nil
}

// DeleteDiscussion removes a comment (with its replies) or a reply, same
// permission rule as EditDiscussion.
func (s *Service) DeleteDiscussion(ctx context.Context, actor *model.User, kind string, id string) error {
	if err := policy.RequireLogin(actor); err != nil {
		return err
	}
	return s.store.Transaction(ctx, func(tx store.Store) error {
		entry, err := loadModeratable(ctx, tx, actor, kind, id)
		if err != nil {
			return err
		}
		return entry.delete(ctx, tx)
	})
}
