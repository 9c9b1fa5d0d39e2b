package blog

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Luismorlan/blogmux/app_setting"
	"github.com/Luismorlan/blogmux/file_store"
	"github.com/Luismorlan/blogmux/mail"
	"github.com/Luismorlan/blogmux/model"
	"github.com/Luismorlan/blogmux/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []*mail.Message
	err  error
}

func (m *recordingMailer) Send(ctx context.Context, msg *mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return m.err
}

// tickingClock advances one minute on every reading so creation order is
// also time order.
type tickingClock struct {
	t time.Time
}

func (c *tickingClock) now() time.Time {
	c.t = c.t.Add(time.Minute)
	return c.t
}

type testEnv struct {
	svc    *Service
	store  *store.MemoryStore
	images *file_store.FakeImageStore
	mailer *recordingMailer
}

func testSetting() app_setting.BlogAppSetting {
	setting := app_setting.DefaultBlogAppSetting()
	setting.BCRYPT_COST = bcrypt.MinCost
	return setting
}

func newTestEnv(t *testing.T) *testEnv {
	env := &testEnv{
		store:  store.NewMemoryStore(),
		images: file_store.NewFakeImageStore(),
		mailer: &recordingMailer{},
	}
	env.svc = NewService(env.store, env.images, env.mailer, testSetting())
	clock := &tickingClock{t: time.Date(2021, 9, 1, 8, 0, 0, 0, time.UTC)}
	env.svc.now = clock.now
	return env
}

func (env *testEnv) register(t *testing.T, username string) *model.User {
	u, err := env.svc.Register(context.Background(), RegisterForm{
		Username: username,
		Email:    username + "@example.com",
		Password: "password-" + username,
		Confirm:  "password-" + username,
	})
	require.NoError(t, err)
	return u
}

// registerAs registers a user and sets its role directly in the store.
func (env *testEnv) registerAs(t *testing.T, username string, role model.Role) *model.User {
	u := env.register(t, username)
	if u.Role != role {
		u.Role = role
		require.NoError(t, env.store.UpdateUser(context.Background(), u, "Role"))
	}
	return u
}

func (env *testEnv) createPost(t *testing.T, admin *model.User, title string) *model.Post {
	p, err := env.svc.CreatePost(context.Background(), admin, PostForm{
		Title:    title,
		Subtitle: "subtitle of " + title,
		ImageUrl: "https://example.com/" + title + ".png",
		Body:     "<p>Body of <b>" + title + "</b></p>",
	})
	require.NoError(t, err)
	return p
}

func TestFirstUserIsAdmin(t *testing.T) {
	env := newTestEnv(t)
	a := env.register(t, "alice")
	b := env.register(t, "bob")
	c := env.register(t, "carol")

	assert.Equal(t, model.RoleAdmin, a.Role)
	assert.Equal(t, model.RoleReader, b.Role)
	assert.Equal(t, model.RoleReader, c.Role)
	assert.Equal(t, model.DefaultProfileImage, a.ProfileImage)
	assert.NotEqual(t, "password-alice", a.PasswordHash)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "alice")

	_, err := env.svc.Register(ctx, RegisterForm{Username: "other", Email: " ALICE@example.com", Password: "12345678", Confirm: "12345678"})
	assert.True(t, errors.Is(err, model.ErrEmailTaken))

	_, err = env.svc.Register(ctx, RegisterForm{Username: "alice", Email: "new@example.com", Password: "12345678", Confirm: "12345678"})
	assert.True(t, errors.Is(err, model.ErrUsernameTaken))

	// email is reported first when both collide
	_, err = env.svc.Register(ctx, RegisterForm{Username: "alice", Email: "alice@example.com", Password: "12345678", Confirm: "12345678"})
	assert.True(t, errors.Is(err, model.ErrEmailTaken))

	count, err := env.store.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		form  RegisterForm
		field string
	}{
		{"missing username", RegisterForm{Email: "a@example.com", Password: "12345678", Confirm: "12345678"}, "username"},
		{"bad email", RegisterForm{Username: "a", Email: "not-an-email", Password: "12345678", Confirm: "12345678"}, "email"},
		{"short password", RegisterForm{Username: "a", Email: "a@example.com", Password: "1234567", Confirm: "1234567"}, "password"},
		{"mismatch", RegisterForm{Username: "a", Email: "a@example.com", Password: "12345678", Confirm: "12345679"}, "confirm"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.svc.Register(ctx, tc.form)
			var verr *model.ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Contains(t, verr.Fields, tc.field)
		})
	}

	count, err := env.store.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")

	_, err := env.svc.Login(ctx, LoginForm{Email: "nobody@example.com", Password: "whatever"})
	assert.True(t, errors.Is(err, model.ErrUnknownEmail))

	_, err = env.svc.Login(ctx, LoginForm{Email: "alice@example.com", Password: "wrong-password"})
	assert.True(t, errors.Is(err, model.ErrWrongPassword))
	assert.NotEqual(t, model.ErrUnknownEmail.Error(), model.ErrWrongPassword.Error())

	u, err := env.svc.Login(ctx, LoginForm{Email: "Alice@Example.com", Password: "password-alice"})
	require.NoError(t, err)
	assert.Equal(t, alice.Id, u.Id)
}

func TestPostAuthoringIsAdminOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.register(t, "admin")
	moderator := env.registerAs(t, "mod", model.RoleModerator)
	reader := env.register(t, "reader")
	form := PostForm{Title: "t", Subtitle: "s", ImageUrl: "https://example.com/x.png", Body: "<p>b</p>"}

	_, err := env.svc.CreatePost(ctx, nil, form)
	assert.True(t, model.IsAuthentication(err))
	_, err = env.svc.CreatePost(ctx, reader, form)
	assert.True(t, model.IsAuthorization(err))
	_, err = env.svc.CreatePost(ctx, moderator, form)
	assert.True(t, model.IsAuthorization(err))

	post := env.createPost(t, admin, "hello")
	_, err = env.svc.EditPost(ctx, reader, post.Id, form)
	assert.True(t, model.IsAuthorization(err))
	_, err = env.svc.PostForm(ctx, moderator, post.Id)
	assert.True(t, model.IsAuthorization(err))
	assert.True(t, model.IsAuthorization(env.svc.DeletePost(ctx, reader, post.Id)))

	posts, err := env.store.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "hello", posts[0].Title)
}

func TestCreatePostSanitizesAndValidates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.register(t, "admin")

	post, err := env.svc.CreatePost(ctx, admin, PostForm{
		Title:    "xss",
		Subtitle: "s",
		ImageUrl: "https://example.com/x.png",
		Body:     `<p onclick="steal()">Hello</p><script>alert(1)</script>`,
	})
	require.NoError(t, err)
	assert.Equal(t, "<p>Hello</p>", post.Body)
	assert.Equal(t, admin.Id, post.UserID)

	_, err = env.svc.CreatePost(ctx, admin, PostForm{Title: "bad", Subtitle: "s", ImageUrl: "not a url", Body: "<p>b</p>"})
	assert.True(t, model.IsValidation(err))

	_, err = env.svc.CreatePost(ctx, admin, PostForm{Title: "empty", Subtitle: "s", ImageUrl: "https://example.com/x.png", Body: "<script>x</script>"})
	assert.True(t, model.IsValidation(err))

	_, err = env.svc.CreatePost(ctx, admin, PostForm{Title: "xss", Subtitle: "s", ImageUrl: "https://example.com/x.png", Body: "<p>b</p>"})
	assert.True(t, errors.Is(err, model.ErrTitleTaken))
}

func TestEditPost(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.register(t, "admin")
	other := env.registerAs(t, "other-admin", model.RoleAdmin)
	post := env.createPost(t, admin, "first")
	env.createPost(t, admin, "second")

	form, err := env.svc.PostForm(ctx, other, post.Id)
	require.NoError(t, err)
	assert.Equal(t, PostForm{Title: post.Title, Subtitle: post.Subtitle, ImageUrl: post.ImageUrl, Body: post.Body}, *form)

	form.Title = "first, revised"
	form.Body = "<p>new body</p>"
	edited, err := env.svc.EditPost(ctx, other, post.Id, *form)
	require.NoError(t, err)
	assert.Equal(t, admin.Id, edited.UserID)

	stored, err := env.store.GetPost(ctx, post.Id)
	require.NoError(t, err)
	assert.Equal(t, "first, revised", stored.Title)
	assert.Equal(t, "<p>new body</p>", stored.Body)
	assert.Equal(t, post.PostedOn, stored.PostedOn)

	form.Title = "second"
	_, err = env.svc.EditPost(ctx, admin, post.Id, *form)
	assert.True(t, model.IsConflict(err))

	_, err = env.svc.EditPost(ctx, admin, "missing", *form)
	assert.True(t, model.IsNotFound(err))
	_, err = env.svc.PostForm(ctx, admin, "missing")
	assert.True(t, model.IsNotFound(err))
}

func TestDeletePostByAnyAdminCascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := env.register(t, "author")
	otherAdmin := env.registerAs(t, "other-admin", model.RoleAdmin)
	reader := env.register(t, "reader")
	post := env.createPost(t, author, "doomed")
	c, err := env.svc.CreateComment(ctx, reader, "doomed", "<p>nice</p>")
	require.NoError(t, err)
	r, err := env.svc.CreateReply(ctx, author, "doomed", c.Id, "thanks")
	require.NoError(t, err)

	require.NoError(t, env.svc.DeletePost(ctx, otherAdmin, post.Id))

	_, err = env.svc.GetPost(ctx, "doomed")
	assert.True(t, model.IsNotFound(err))
	_, err = env.store.GetComment(ctx, c.Id)
	assert.True(t, model.IsNotFound(err))
	_, err = env.store.GetReply(ctx, r.Id)
	assert.True(t, model.IsNotFound(err))

	assert.True(t, model.IsNotFound(env.svc.DeletePost(ctx, otherAdmin, post.Id)))
}

func TestListAndShowPosts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.register(t, "admin")
	reader := env.register(t, "reader")
	env.createPost(t, admin, "older")
	env.createPost(t, admin, "newer")

	summaries, err := env.svc.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "newer", summaries[0].Title)
	assert.Equal(t, "older", summaries[1].Title)
	assert.Equal(t, "Body of older", summaries[1].Excerpt)
	assert.Equal(t, "admin", summaries[0].Author.Username)

	first, err := env.svc.CreateComment(ctx, reader, "older", "first")
	require.NoError(t, err)
	second, err := env.svc.CreateComment(ctx, admin, "older", "second")
	require.NoError(t, err)
	_, err = env.svc.CreateReply(ctx, admin, "older", first.Id, "reply one")
	require.NoError(t, err)
	_, err = env.svc.CreateReply(ctx, reader, "older", first.Id, "reply two")
	require.NoError(t, err)

	view, err := env.svc.GetPost(ctx, "older")
	require.NoError(t, err)
	require.Len(t, view.Comments, 2)
	assert.Equal(t, first.Id, view.Comments[0].Id)
	assert.Equal(t, "reader", view.Comments[0].Author.Username)
	assert.Equal(t, second.Id, view.Comments[1].Id)
	require.Len(t, view.Comments[0].Replies, 2)
	assert.Equal(t, "reply one", view.Comments[0].Replies[0].Text)
	assert.Equal(t, "reply two", view.Comments[0].Replies[1].Text)
	assert.Empty(t, view.Comments[1].Replies)
	assert.Equal(t, "/static/images/"+model.DefaultProfileImage, view.Author.ProfileImageUrl)

	_, err = env.svc.GetPost(ctx, "absent")
	assert.True(t, model.IsNotFound(err))
}

func TestCommentAndReplyCreation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.register(t, "admin")
	reader := env.register(t, "reader")
	env.createPost(t, admin, "one")
	env.createPost(t, admin, "two")

	_, err := env.svc.CreateComment(ctx, nil, "one", "hi")
	assert.True(t, model.IsAuthentication(err))
	_, err = env.svc.CreateComment(ctx, reader, "one", "   ")
	assert.True(t, model.IsValidation(err))
	_, err = env.svc.CreateComment(ctx, reader, "missing", "hi")
	assert.True(t, model.IsNotFound(err))

	c, err := env.svc.CreateComment(ctx, reader, "one", "hi")
	require.NoError(t, err)
	assert.Equal(t, reader.Id, c.UserID)

	_, err = env.svc.CreateReply(ctx, nil, "one", c.Id, "answer")
	assert.True(t, model.IsAuthentication(err))
	_, err = env.svc.CreateReply(ctx, admin, "two", c.Id, "answer")
	assert.True(t, model.IsNotFound(err))
	_, err = env.svc.CreateReply(ctx, admin, "one", "missing", "answer")
	assert.True(t, model.IsNotFound(err))

	r, err := env.svc.CreateReply(ctx, admin, "one", c.Id, "answer")
	require.NoError(t, err)
	assert.Equal(t, c.Id, r.CommentID)
	assert.Equal(t, admin.Id, r.UserID)
}

func TestEditDiscussionPermissions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.register(t, "admin")
	author := env.register(t, "author")
	stranger := env.register(t, "stranger")
	moderator := env.registerAs(t, "moderator", model.RoleModerator)
	env.createPost(t, admin, "post")

	comment, err := env.svc.CreateComment(ctx, author, "post", "original")
	require.NoError(t, err)
	reply, err := env.svc.CreateReply(ctx, author, "post", comment.Id, "original reply")
	require.NoError(t, err)

	tests := []struct {
		name    string
		actor   *model.User
		allowed bool
	}{
		{"author", author, true},
		{"stranger", stranger, false},
		{"moderator", moderator, true},
		{"admin", admin, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for _, target := range []struct{ kind, id string }{{"comment", comment.Id}, {"reply", reply.Id}} {
				before, err := env.svc.DiscussionForm(ctx, author, target.kind, target.id)
				require.NoError(t, err)

				text := "edited by " + tc.name
				view, err := env.svc.EditDiscussion(ctx, tc.actor, target.kind, target.id, text)
				if !tc.allowed {
					assert.True(t, model.IsAuthorization(err))
					after, err := env.svc.DiscussionForm(ctx, author, target.kind, target.id)
					require.NoError(t, err)
					assert.Equal(t, before.Text, after.Text)
					continue
				}
				require.NoError(t, err)
				assert.Equal(t, text, view.Text)
				assert.Equal(t, author.Id, view.AuthorId)
			}
		})
	}

	_, err = env.svc.EditDiscussion(ctx, nil, "comment", comment.Id, "x")
	assert.True(t, model.IsAuthentication(err))
	_, err = env.svc.EditDiscussion(ctx, admin, "post", comment.Id, "x")
	assert.True(t, model.IsNotFound(err))
	_, err = env.svc.EditDiscussion(ctx, admin, "reply", comment.Id, "x")
	assert.True(t, model.IsNotFound(err))
	_, err = env.svc.DiscussionForm(ctx, stranger, "comment", comment.Id)
	assert.True(t, model.IsAuthorization(err))
	_, err = env.svc.EditDiscussion(ctx, author, "comment", comment.Id, "")
	assert.True(t, model.IsValidation(err))
}

func TestDeleteDiscussion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.register(t, "admin")
	author := env.register(t, "author")
	stranger := env.register(t, "stranger")
	moderator := env.registerAs(t, "moderator", model.RoleModerator)
	env.createPost(t, admin, "post")

	comment, err := env.svc.CreateComment(ctx, author, "post", "c")
	require.NoError(t, err)
	r1, err := env.svc.CreateReply(ctx, stranger, "post", comment.Id, "r1")
	require.NoError(t, err)
	r2, err := env.svc.CreateReply(ctx, author, "post", comment.Id, "r2")
	require.NoError(t, err)

	assert.True(t, model.IsAuthorization(env.svc.DeleteDiscussion(ctx, stranger, "comment", comment.Id)))
	assert.True(t, model.IsAuthorization(env.svc.DeleteDiscussion(ctx, author, "reply", r1.Id)))
	require.NoError(t, env.svc.DeleteDiscussion(ctx, stranger, "reply", r1.Id))
	require.NoError(t, env.svc.DeleteDiscussion(ctx, moderator, "comment", comment.Id))

	_, err = env.store.GetReply(ctx, r2.Id)
	assert.True(t, model.IsNotFound(err))
	view, err := env.svc.GetPost(ctx, "post")
	require.NoError(t, err)
	assert.Empty(t, view.Comments)
}

func TestChangeRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.register(t, "admin")
	otherAdmin := env.registerAs(t, "boss", model.RoleAdmin)
	reader := env.register(t, "reader")

	_, err := env.svc.ChangeRole(ctx, reader, reader.Id, "admin")
	assert.True(t, model.IsAuthorization(err))
	_, err = env.svc.ChangeRole(ctx, nil, reader.Id, "admin")
	assert.True(t, model.IsAuthentication(err))

	_, err = env.svc.ChangeRole(ctx, admin, otherAdmin.Id, "reader")
	require.True(t, model.IsAuthorization(err))
	assert.Equal(t, "boss is Admin, can't change role", err.Error())

	_, err = env.svc.ChangeRole(ctx, admin, admin.Id, "reader")
	assert.True(t, model.IsAuthorization(err))

	res, err := env.svc.ChangeRole(ctx, admin, reader.Id, "reader")
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, "reader is already reader", res.Message)

	res, err = env.svc.ChangeRole(ctx, admin, reader.Id, "moderator")
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, "Role for reader successfully changed to moderator", res.Message)
	stored, err := env.store.GetUser(ctx, reader.Id)
	require.NoError(t, err)
	assert.Equal(t, model.RoleModerator, stored.Role)

	_, err = env.svc.ChangeRole(ctx, admin, reader.Id, "adm")
	assert.True(t, model.IsValidation(err))
	_, err = env.svc.ChangeRole(ctx, admin, "missing", "reader")
	assert.True(t, model.IsNotFound(err))

	users, err := env.svc.ListUsers(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, users, 3)
	_, err = env.svc.ListUsers(ctx, reader)
	assert.True(t, model.IsAuthorization(err))
}

func TestUpdateProfileInfoAppliesFieldsIndividually(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	env.register(t, "bob")

	report, err := env.svc.UpdateProfileInfo(ctx, alice, ProfileInfoForm{Username: "bob", Email: "alice.new@example.com"})
	require.NoError(t, err)
	assert.Equal(t, []string{noticeUsernameTaken, noticeEmailChanged}, report.Notices)

	profile, err := env.svc.Profile(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, "alice.new@example.com", profile.Email)

	report, err = env.svc.UpdateProfileInfo(ctx, alice, ProfileInfoForm{Username: "alicia", Email: "bob@example.com"})
	require.NoError(t, err)
	assert.Equal(t, []string{noticeUsernameChanged, noticeEmailTaken}, report.Notices)

	profile, err = env.svc.Profile(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "alicia", profile.Username)
	assert.Equal(t, "alice.new@example.com", profile.Email)

	report, err = env.svc.UpdateProfileInfo(ctx, alice, ProfileInfoForm{Username: "alicia", Email: "alice.new@example.com"})
	require.NoError(t, err)
	assert.Empty(t, report.Notices)

	_, err = env.svc.UpdateProfileInfo(ctx, nil, ProfileInfoForm{Username: "x", Email: "x@example.com"})
	assert.True(t, model.IsAuthentication(err))
	_, err = env.svc.Profile(ctx, nil)
	assert.True(t, model.IsAuthentication(err))
}

func upload(name string) *Upload {
	return &Upload{FileName: name, Content: strings.NewReader("image bytes of " + name)}
}

func TestUpdateProfileImage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	require.NoError(t, env.images.Save(ctx, model.DefaultProfileImage, strings.NewReader("placeholder")))

	report, err := env.svc.UpdateProfileInfo(ctx, alice, ProfileInfoForm{Username: "alice", Email: "alice@example.com", Image: upload("me.png")})
	require.NoError(t, err)
	assert.Equal(t, []string{noticeImageChanged}, report.Notices)
	// the placeholder is never deleted
	assert.Equal(t, []string{"alice_" + alice.Id + "_me.png", model.DefaultProfileImage}, env.images.Names())

	_, err = env.svc.UpdateProfileInfo(ctx, alice, ProfileInfoForm{Username: "alice", Email: "alice@example.com", Image: upload("holiday.gif")})
	require.NoError(t, err)
	assert.Equal(t, []string{"alice_" + alice.Id + "_holiday.gif", model.DefaultProfileImage}, env.images.Names())

	profile, err := env.svc.Profile(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "/static/images/alice_"+alice.Id+"_holiday.gif", profile.ProfileImageUrl)
}

func TestUpdateProfileImageRejectsExtension(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")

	_, err := env.svc.UpdateProfileInfo(ctx, alice, ProfileInfoForm{Username: "alicia", Email: "alicia@example.com", Image: upload("virus.exe")})
	require.True(t, model.IsValidation(err))

	stored, err := env.store.GetUser(ctx, alice.Id)
	require.NoError(t, err)
	assert.Equal(t, "alice", stored.Username)
	assert.Equal(t, "alice@example.com", stored.Email)
	assert.Equal(t, model.DefaultProfileImage, stored.ProfileImage)
	assert.Empty(t, env.images.Names())
}

func TestProfileImageNamesDontCollide(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bobX := env.register(t, "bob_x")
	bob := env.register(t, "bob")

	_, err := env.svc.UpdateProfileInfo(ctx, bobX, ProfileInfoForm{Username: "bob_x", Email: "bob_x@example.com", Image: upload("y.png")})
	require.NoError(t, err)
	_, err = env.svc.UpdateProfileInfo(ctx, bob, ProfileInfoForm{Username: "bob", Email: "bob@example.com", Image: upload("x_y.png")})
	require.NoError(t, err)

	storedX, err := env.store.GetUser(ctx, bobX.Id)
	require.NoError(t, err)
	stored, err := env.store.GetUser(ctx, bob.Id)
	require.NoError(t, err)
	assert.NotEqual(t, storedX.ProfileImage, stored.ProfileImage)
	assert.Len(t, env.images.Names(), 2)
}

// deleteRecordingImages records every Delete call.
type deleteRecordingImages struct {
	*file_store.FakeImageStore
	deleted []string
}

func (d *deleteRecordingImages) Delete(ctx context.Context, name string) error {
	d.deleted = append(d.deleted, name)
	return d.FakeImageStore.Delete(ctx, name)
}

func TestReplacedImageDeletedOnlyWhenStored(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	alice.ProfileImage = "gone.png"
	require.NoError(t, env.store.UpdateUser(ctx, alice, "ProfileImage"))

	images := &deleteRecordingImages{FakeImageStore: env.images}
	svc := NewService(env.store, images, env.mailer, testSetting())

	_, err := svc.UpdateProfileInfo(ctx, alice, ProfileInfoForm{Username: "alice", Email: "alice@example.com", Image: upload("me.png")})
	require.NoError(t, err)
	assert.Empty(t, images.deleted)

	_, err = svc.UpdateProfileInfo(ctx, alice, ProfileInfoForm{Username: "alice", Email: "alice@example.com", Image: upload("holiday.gif")})
	require.NoError(t, err)
	assert.Equal(t, []string{"alice_" + alice.Id + "_me.png"}, images.deleted)
	assert.Equal(t, []string{"alice_" + alice.Id + "_holiday.gif"}, env.images.Names())
}

// failingUpdateStore fails every user update, inside transactions too.
type failingUpdateStore struct {
	store.Store
}

func (f failingUpdateStore) Transaction(ctx context.Context, fn func(tx store.Store) error) error {
	return f.Store.Transaction(ctx, func(tx store.Store) error {
		return fn(failingUpdateStore{tx})
	})
}

func (f failingUpdateStore) UpdateUser(ctx context.Context, user *model.User, fields ...string) error {
	return errors.New("database is down")
}

func TestUpdateProfileImageCompensatesFailedCommit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")

	svc := NewService(failingUpdateStore{env.store}, env.images, env.mailer, testSetting())
	_, err := svc.UpdateProfileInfo(ctx, alice, ProfileInfoForm{Username: "alice", Email: "alice@example.com", Image: upload("me.png")})
	require.Error(t, err)
	assert.Empty(t, env.images.Names())

	env.images.FailSave = true
	_, err = env.svc.UpdateProfileInfo(ctx, alice, ProfileInfoForm{Username: "alicia", Email: "alice@example.com", Image: upload("me.png")})
	require.Error(t, err)
	stored, err := env.store.GetUser(ctx, alice.Id)
	require.NoError(t, err)
	assert.Equal(t, "alice", stored.Username)
	assert.Equal(t, model.DefaultProfileImage, stored.ProfileImage)
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	before, err := env.store.GetUser(ctx, alice.Id)
	require.NoError(t, err)

	_, err = env.svc.ChangePassword(ctx, alice, PasswordForm{Current: "wrong", New: "new-password", Confirm: "new-password"})
	assert.True(t, errors.Is(err, model.ErrWrongPassword))
	after, err := env.store.GetUser(ctx, alice.Id)
	require.NoError(t, err)
	assert.Equal(t, before.PasswordHash, after.PasswordHash)

	_, err = env.svc.ChangePassword(ctx, alice, PasswordForm{Current: "password-alice", New: "new-password", Confirm: "other-password"})
	assert.True(t, model.IsValidation(err))
	_, err = env.svc.ChangePassword(ctx, alice, PasswordForm{Current: "password-alice", New: "short", Confirm: "short"})
	assert.True(t, model.IsValidation(err))
	_, err = env.svc.ChangePassword(ctx, nil, PasswordForm{Current: "password-alice", New: "new-password", Confirm: "new-password"})
	assert.True(t, model.IsAuthentication(err))

	report, err := env.svc.ChangePassword(ctx, alice, PasswordForm{Current: "password-alice", New: "new-password", Confirm: "new-password"})
	require.NoError(t, err)
	assert.Equal(t, []string{noticePasswordChanged}, report.Notices)

	_, err = env.svc.Login(ctx, LoginForm{Email: "alice@example.com", Password: "password-alice"})
	assert.True(t, errors.Is(err, model.ErrWrongPassword))
	_, err = env.svc.Login(ctx, LoginForm{Email: "alice@example.com", Password: "new-password"})
	assert.NoError(t, err)
}

func TestContact(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	form := ContactForm{Name: "Visitor", Email: "Visitor@Example.com", Phone: "555-0100", Message: "Hello!"}

	require.NoError(t, env.svc.Contact(ctx, form))
	require.Len(t, env.mailer.sent, 1)
	msg := env.mailer.sent[0]
	assert.Equal(t, "New Message", msg.Subject)
	assert.Equal(t, []mail.Field{
		{Name: "Name", Value: "Visitor"},
		{Name: "Email", Value: "visitor@example.com"},
		{Name: "Phone", Value: "555-0100"},
		{Name: "Message", Value: "Hello!"},
	}, msg.Fields)

	env.mailer.err = errors.New("smtp down")
	assert.NoError(t, env.svc.Contact(ctx, form))
	assert.Len(t, env.mailer.sent, 2)

	assert.True(t, model.IsValidation(env.svc.Contact(ctx, ContactForm{Name: "Visitor"})))
	assert.Len(t, env.mailer.sent, 2)
}

func TestEndToEnd(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a := env.register(t, "a")
	require.Equal(t, model.RoleAdmin, a.Role)
	b := env.register(t, "b")
	require.Equal(t, model.RoleReader, b.Role)

	p := env.createPost(t, a, "P")

	c, err := env.svc.CreateComment(ctx, b, "P", "comment by b")
	require.NoError(t, err)
	view, err := env.svc.GetPost(ctx, "P")
	require.NoError(t, err)
	require.Len(t, view.Comments, 1)
	assert.Equal(t, b.Id, view.Comments[0].Author.Id)

	assert.True(t, model.IsAuthorization(env.svc.DeletePost(ctx, b, p.Id)))
	_, err = env.svc.GetPost(ctx, "P")
	require.NoError(t, err)

	require.NoError(t, env.svc.DeletePost(ctx, a, p.Id))
	_, err = env.svc.GetPost(ctx, "P")
	assert.True(t, model.IsNotFound(err))
	comments, err := env.store.ListCommentsForPost(ctx, p.Id)
	require.NoError(t, err)
	assert.Empty(t, comments)
	_, err = env.store.GetComment(ctx, c.Id)
	assert.True(t, model.IsNotFound(err))
}
