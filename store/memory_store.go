package store

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/Luismorlan/blogmux/model"
)

// MemoryStore keeps every entity in process memory. It mirrors GormStore:
// same uniqueness rules, same parent checks, same cascades, same ordering.
//
// Transactions run one at a time. Writes outside a transaction wait for the
// running one, so a rollback only ever discards the transaction's own writes.
// Reads never wait and may see writes of a transaction still in flight.
type MemoryStore struct {
	*memoryState
	// inTx marks the store handed to a transaction callback, which already
	// holds txMu.
	inTx bool
}

type memoryState struct {
	mu   sync.Mutex
	txMu sync.Mutex
	data memoryData
	seq  int64
	now  func() time.Time
}

type memoryData struct {
	users    map[string]model.User
	posts    map[string]model.Post
	comments map[string]model.Comment
	replies  map[string]model.Reply
	// insertion order, breaks ordering ties the way created_at does in sql
	order map[string]int64
}

func newMemoryData() memoryData {
	return memoryData{
		users:    map[string]model.User{},
		posts:    map[string]model.Post{},
		comments: map[string]model.Comment{},
		replies:  map[string]model.Reply{},
		order:    map[string]int64{},
	}
}

func (d memoryData) clone() memoryData {
	c := newMemoryData()
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.posts {
		c.posts[k] = v
	}
	for k, v := range d.comments {
		c.comments[k] = v
	}
	for k, v := range d.replies {
		c.replies[k] = v
	}
	for k, v := range d.order {
		c.order[k] = v
	}
	return c
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{memoryState: &memoryState{data: newMemoryData(), now: time.Now}}
}

// Transaction restores a snapshot of all data when fn fails. Nested
// transactions join the outer one.
func (s *MemoryStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	if err := fn(&MemoryStore{memoryState: s.memoryState, inTx: true}); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// lockWrite takes the locks a write needs and returns the matching unlock.
func (s *MemoryStore) lockWrite() func() {
	if !s.inTx {
		s.txMu.Lock()
	}
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		if !s.inTx {
			s.txMu.Unlock()
		}
	}
}

func (s *MemoryStore) track(id string) {
	s.seq++
	s.data.order[id] = s.seq
}

// assignFields copies the named fields from src into dst, both pointers to
// the same struct type. No names copies every field except Id and CreatedAt.
func assignFields(dst, src interface{}, fields []string) error {
	d := reflect.ValueOf(dst).Elem()
	v := reflect.ValueOf(src).Elem()
	if len(fields) == 0 {
		for i := 0; i < d.NumField(); i++ {
			name := d.Type().Field(i).Name
			if name == "Id" || name == "CreatedAt" || d.Field(i).Kind() == reflect.Slice {
				continue
			}
			d.Field(i).Set(v.Field(i))
		}
		return nil
	}
	for _, name := range fields {
		f := d.FieldByName(name)
		if !f.IsValid() || name == "Id" {
			return fmt.Errorf("cannot update field %q of %s", name, d.Type().Name())
		}
		f.Set(v.FieldByName(name))
	}
	return nil
}

func (s *MemoryStore) CountUsers(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.data.users)), nil
}

func (s *MemoryStore) userConflict(user *model.User) error {
	for _, u := range s.data.users {
		if u.Id == user.Id {
			continue
		}
		if u.Username == user.Username {
			return usernameConflict()
		}
		if u.Email == user.Email {
			return emailConflict()
		}
	}
	return nil
}

func (s *MemoryStore) CreateUser(ctx context.Context, user *model.User) error {
	defer s.lockWrite()()
	ensureId(&user.Id)
	if _, ok := s.data.users[user.Id]; ok {
		return &model.ConflictError{Field: "id"}
	}
	if err := s.userConflict(user); err != nil {
		return err
	}
	now := s.now()
	user.CreatedAt, user.UpdatedAt = now, now
	if user.Role == "" {
		user.Role = model.RoleReader
	}
	if user.ProfileImage == "" {
		user.ProfileImage = model.DefaultProfileImage
	}
	s.data.users[user.Id] = *user
	s.track(user.Id)
	return nil
}

func (s *MemoryStore) GetUser(ctx context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.data.users[id]
	if !ok {
		return nil, notFound(EntityUser, id)
	}
	return &u, nil
}

func (s *MemoryStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.data.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, notFound(EntityUser, username)
}

func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.data.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, notFound(EntityUser, email)
}

func (s *MemoryStore) GetUsersByIds(ctx context.Context, ids []string) (map[string]*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := map[string]*model.User{}
	for _, id := range ids {
		if u, ok := s.data.users[id]; ok {
			res[id] = &u
		}
	}
	return res, nil
}

func (s *MemoryStore) ListUsers(ctx context.Context) ([]*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]*model.User, 0, len(s.data.users))
	for _, u := range s.data.users {
		u := u
		users = append(users, &u)
	}
	sort.Slice(users, func(i, j int) bool {
		return s.data.order[users[i].Id] < s.data.order[users[j].Id]
	})
	return users, nil
}

func (s *MemoryStore) UpdateUser(ctx context.Context, user *model.User, fields ...string) error {
	defer s.lockWrite()()
	current, ok := s.data.users[user.Id]
	if !ok {
		return notFound(EntityUser, user.Id)
	}
	if err := assignFields(&current, user, fields); err != nil {
		return err
	}
	if err := s.userConflict(&current); err != nil {
		return err
	}
	current.UpdatedAt = s.now()
	s.data.users[user.Id] = current
	return nil
}

func (s *MemoryStore) titleTaken(post *model.Post) bool {
	for _, p := range s.data.posts {
		if p.Id != post.Id && p.Title == post.Title {
			return true
		}
	}
	return false
}

func (s *MemoryStore) CreatePost(ctx context.Context, post *model.Post) error {
	defer s.lockWrite()()
	ensureId(&post.Id)
	if _, ok := s.data.posts[post.Id]; ok {
		return &model.ConflictError{Field: "id"}
	}
	if s.titleTaken(post) {
		return titleConflict()
	}
	if _, ok := s.data.users[post.UserID]; !ok {
		return notFound(EntityUser, post.UserID)
	}
	now := s.now()
	post.CreatedAt, post.UpdatedAt = now, now
	s.data.posts[post.Id] = *post
	s.track(post.Id)
	return nil
}

func (s *MemoryStore) GetPost(ctx context.Context, id string) (*model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.data.posts[id]
	if !ok {
		return nil, notFound(EntityPost, id)
	}
	return &p, nil
}

func (s *MemoryStore) GetPostByTitle(ctx context.Context, title string) (*model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.data.posts {
		if p.Title == title {
			return &p, nil
		}
	}
	return nil, notFound(EntityPost, title)
}

func (s *MemoryStore) ListPosts(ctx context.Context) ([]*model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	posts := make([]*model.Post, 0, len(s.data.posts))
	for _, p := range s.data.posts {
		p := p
		posts = append(posts, &p)
	}
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].PostedOn.Equal(posts[j].PostedOn) {
			return posts[i].PostedOn.After(posts[j].PostedOn)
		}
		return s.data.order[posts[i].Id] > s.data.order[posts[j].Id]
	})
	return posts, nil
}

func (s *MemoryStore) UpdatePost(ctx context.Context, post *model.Post, fields ...string) error {
	defer s.lockWrite()()
	current, ok := s.data.posts[post.Id]
	if !ok {
		return notFound(EntityPost, post.Id)
	}
	if err := assignFields(&current, post, fields); err != nil {
		return err
	}
	if s.titleTaken(&current) {
		return titleConflict()
	}
	current.UpdatedAt = s.now()
	s.data.posts[post.Id] = current
	return nil
}

func (s *MemoryStore) DeletePost(ctx context.Context, id string) error {
	defer s.lockWrite()()
	if _, ok := s.data.posts[id]; !ok {
		return notFound(EntityPost, id)
	}
	for cid, c := range s.data.comments {
		if c.PostID == id {
			s.deleteCommentLocked(cid)
		}
	}
	delete(s.data.posts, id)
	delete(s.data.order, id)
	return nil
}

func (s *MemoryStore) CreateComment(ctx context.Context, comment *model.Comment) error {
	defer s.lockWrite()()
	ensureId(&comment.Id)
	if _, ok := s.data.comments[comment.Id]; ok {
		return &model.ConflictError{Field: "id"}
	}
	if _, ok := s.data.users[comment.UserID]; !ok {
		return notFound(EntityUser, comment.UserID)
	}
	if _, ok := s.data.posts[comment.PostID]; !ok {
		return notFound(EntityPost, comment.PostID)
	}
	now := s.now()
	comment.CreatedAt, comment.UpdatedAt = now, now
	s.data.comments[comment.Id] = *comment
	s.track(comment.Id)
	return nil
}

func (s *MemoryStore) GetComment(ctx context.Context, id string) (*model.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.data.comments[id]
	if !ok {
		return nil, notFound(EntityComment, id)
	}
	return &c, nil
}

func (s *MemoryStore) ListCommentsForPost(ctx context.Context, postID string) ([]*model.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	comments := []*model.Comment{}
	for _, c := range s.data.comments {
		if c.PostID == postID {
			c := c
			comments = append(comments, &c)
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		if !comments[i].PostedOn.Equal(comments[j].PostedOn) {
			return comments[i].PostedOn.Before(comments[j].PostedOn)
		}
		return s.data.order[comments[i].Id] < s.data.order[comments[j].Id]
	})
	return comments, nil
}

func (s *MemoryStore) UpdateComment(ctx context.Context, comment *model.Comment, fields ...string) error {
	defer s.lockWrite()()
	current, ok := s.data.comments[comment.Id]
	if !ok {
		return notFound(EntityComment, comment.Id)
	}
	if err := assignFields(&current, comment, fields); err != nil {
		return err
	}
	current.UpdatedAt = s.now()
	s.data.comments[comment.Id] = current
	return nil
}

func (s *MemoryStore) deleteCommentLocked(id string) {
	for rid, r := range s.data.replies {
		if r.CommentID == id {
			delete(s.data.replies, rid)
			delete(s.data.order, rid)
		}
	}
	delete(s.data.comments, id)
	delete(s.data.order, id)
}

func (s *MemoryStore) DeleteComment(ctx context.Context, id string) error {
	defer s.lockWrite()()
	if _, ok := s.data.comments[id]; !ok {
		return notFound(EntityComment, id)
	}
	s.deleteCommentLocked(id)
	return nil
}

func (s *MemoryStore) CreateReply(ctx context.Context, reply *model.Reply) error {
	defer s.lockWrite()()
	ensureId(&reply.Id)
	if _, ok := s.data.replies[reply.Id]; ok {
		return &model.ConflictError{Field: "id"}
	}
	if _, ok := s.data.users[reply.UserID]; !ok {
		return notFound(EntityUser, reply.UserID)
	}
	if _, ok := s.data.comments[reply.CommentID]; !ok {
		return notFound(EntityComment, reply.CommentID)
	}
	now := s.now()
	reply.CreatedAt, reply.UpdatedAt = now, now
	s.data.replies[reply.Id] = *reply
	s.track(reply.Id)
	return nil
}

func (s *MemoryStore) GetReply(ctx context.Context, id string) (*model.Reply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.data.replies[id]
	if !ok {
		return nil, notFound(EntityReply, id)
	}
	return &r, nil
}

func (s *MemoryStore) ListRepliesForComments(ctx context.Context, commentIDs []string) ([]*model.Reply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wanted := map[string]bool{}
	for _, id := range commentIDs {
		wanted[id] = true
	}
	replies := []*model.Reply{}
	for _, r := range s.data.replies {
		if wanted[r.CommentID] {
			r := r
			replies = append(replies, &r)
		}
	}
	sort.Slice(replies, func(i, j int) bool {
		if !replies[i].PostedOn.Equal(replies[j].PostedOn) {
			return replies[i].PostedOn.Before(replies[j].PostedOn)
		}
		return s.data.order[replies[i].Id] < s.data.order[replies[j].Id]
	})
	return replies, nil
}

func (s *MemoryStore) UpdateReply(ctx context.Context, reply *model.Reply, fields ...string) error {
	defer s.lockWrite()()
	current, ok := s.data.replies[reply.Id]
	if !ok {
		return notFound(EntityReply, reply.Id)
	}
	if err := assignFields(&current, reply, fields); err != nil {
		return err
	}
	current.UpdatedAt = s.now()
	s.data.replies[reply.Id] = current
	return nil
}

func (s *MemoryStore) DeleteReply(ctx context.Context, id string) error {
	defer s.lockWrite()()
	if _, ok := s.data.replies[id]; !ok {
		return notFound(EntityReply, id)
	}
	delete(s.data.replies, id)
	delete(s.data.order, id)
	return nil
}
