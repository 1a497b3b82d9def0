package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yatube/yatube/internal/models"
	"github.com/yatube/yatube/internal/repository"
)

type recordingPublisher struct {
	mu      sync.Mutex
	created []uuid.UUID
	updated []uuid.UUID
	err     error
}

func (p *recordingPublisher) PublishPostCreated(_ context.Context, post *models.Post) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = append(p.created, post.ID)
	return p.err
}

func (p *recordingPublisher) PublishPostUpdated(_ context.Context, post *models.Post) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updated = append(p.updated, post.ID)
	return p.err
}

type fixture struct {
	store  *repository.Store
	events *recordingPublisher
	posts  *PostService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repository.NewMemoryStore().Store()
	events := &recordingPublisher{}
	return &fixture{
		store:  store,
		events: events,
		posts:  NewPostService(store, events, 10),
	}
}

func (f *fixture) user(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, PasswordHash: "hash"}
	require.NoError(t, f.store.Users.Create(context.Background(), user))
	return user
}

func (f *fixture) group(t *testing.T, slug string) *models.Group {
	t.Helper()
	group := &models.Group{Title: "Group " + slug, Slug: slug}
	require.NoError(t, f.store.Groups.Create(context.Background(), group))
	return group
}

func (f *fixture) post(t *testing.T, author *models.User, group *models.Group, text string) *models.Post {
	t.Helper()
	form := PostForm{Text: text}
	if group != nil {
		form.Group = group.ID.String()
	}
	post, err := f.posts.Create(context.Background(), author, form)
	require.NoError(t, err)
	return post
}

func TestIndexPagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.user(t, "leo")
	for i := 0; i < 13; i++ {
		f.post(t, author, nil, fmt.Sprintf("post %d", i))
	}

	first, err := f.posts.Index(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 10, first.Len())
	assert.Equal(t, 2, first.TotalPages)
	assert.True(t, first.HasNext)
	assert.Equal(t, "post 12", first.Items[0].Text, "newest first")

	second, err := f.posts.Index(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, second.Len())
	assert.False(t, second.HasNext)
	assert.Equal(t, "post 0", second.Items[2].Text)

	clamped, err := f.posts.Index(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, clamped.Number)
	assert.Equal(t, 3, clamped.Len())

	low, err := f.posts.Index(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, low.Number)
}

func TestIndexEmpty(t *testing.T) {
	f := newFixture(t)

	page, err := f.posts.Index(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Number)
	assert.Equal(t, 0, page.Len())
	assert.Equal(t, 0, page.TotalPages)
	assert.NotNil(t, page.Items)
}

func TestGroupPostsOnlyContainGroupMembers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.user(t, "leo")
	books := f.group(t, "books")
	films := f.group(t, "films")

	inBooks := f.post(t, author, books, "about a book")
	f.post(t, author, films, "about a film")
	f.post(t, author, nil, "about nothing")

	listing, err := f.posts.GroupPosts(ctx, "films", 1)
	require.NoError(t, err)
	assert.Equal(t, films.ID, listing.Group.ID)
	require.Equal(t, 1, listing.Page.Len())
	for _, post := range listing.Page.Items {
		require.NotNil(t, post.GroupID)
		assert.Equal(t, films.ID, *post.GroupID)
		assert.NotEqual(t, inBooks.ID, post.ID)
	}

	_, err = f.posts.GroupPosts(ctx, "missing", 1)
	assert.ErrorIs(t, err, ErrGroupNotFound)
}

func TestProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	leo := f.user(t, "leo")
	anna := f.user(t, "anna")
	for i := 0; i < 12; i++ {
		f.post(t, leo, nil, fmt.Sprintf("leo %d", i))
	}
	f.post(t, anna, nil, "anna's only post")

	listing, err := f.posts.Profile(ctx, "leo", 2)
	require.NoError(t, err)
	assert.Equal(t, leo.ID, listing.Author.ID)
	assert.EqualValues(t, 12, listing.PostsCount)
	assert.Equal(t, 2, listing.Page.Len())
	for _, post := range listing.Page.Items {
		assert.Equal(t, leo.ID, post.AuthorID)
	}

	_, err = f.posts.Profile(ctx, "nobody", 1)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDetail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	leo := f.user(t, "leo")
	books := f.group(t, "books")
	post := f.post(t, leo, books, "hello")
	f.post(t, leo, nil, "again")

	detail, err := f.posts.Detail(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", detail.Post.Text)
	assert.Equal(t, "leo", detail.Author.Username)
	assert.EqualValues(t, 2, detail.PostCount)
	require.NotNil(t, detail.Post.Group)
	assert.Equal(t, "books", detail.Post.Group.Slug)

	_, err = f.posts.Detail(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	leo := f.user(t, "leo")
	books := f.group(t, "books")

	before, err := f.store.Posts.Count(ctx, repository.PostFilter{})
	require.NoError(t, err)

	post, err := f.posts.Create(ctx, leo, PostForm{Text: "  fresh post  ", Group: books.ID.String()})
	require.NoError(t, err)

	after, err := f.store.Posts.Count(ctx, repository.PostFilter{})
	require.NoError(t, err)
	assert.Equal(t, before+1, after)

	stored, err := f.store.Posts.FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "fresh post", stored.Text)
	assert.Equal(t, leo.ID, stored.AuthorID)
	require.NotNil(t, stored.GroupID)
	assert.Equal(t, books.ID, *stored.GroupID)

	assert.Equal(t, []uuid.UUID{post.ID}, f.events.created)
}

func TestCreateRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	leo := f.user(t, "leo")

	_, err := f.posts.Create(ctx, nil, PostForm{Text: "anonymous"})
	assert.ErrorIs(t, err, ErrAuthenticationRequired)

	testCases := []struct {
		name  string
		form  PostForm
		field string
	}{
		{name: "empty text", form: PostForm{Text: ""}, field: "text"},
		{name: "whitespace text", form: PostForm{Text: "   \n\t"}, field: "text"},
		{name: "malformed group", form: PostForm{Text: "ok", Group: "not-a-uuid"}, field: "group"},
		{name: "unknown group", form: PostForm{Text: "ok", Group: uuid.NewString()}, field: "group"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.posts.Create(ctx, leo, tc.form)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
			assert.Contains(t, verr.Fields, tc.field)
		})
	}

	total, err := f.store.Posts.Count(ctx, repository.PostFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, f.events.created)
}

func TestCreateSurvivesPublishFailure(t *testing.T) {
	f := newFixture(t)
	f.events.err = errors.New("broker down")
	leo := f.user(t, "leo")

	post, err := f.posts.Create(context.Background(), leo, PostForm{Text: "still stored"})
	require.NoError(t, err)

	_, err = f.store.Posts.FindByID(context.Background(), post.ID)
	assert.NoError(t, err)
}

func TestEditByAuthor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	leo := f.user(t, "leo")
	books := f.group(t, "books")
	films := f.group(t, "films")
	post := f.post(t, leo, books, "draft")

	before, err := f.store.Posts.Count(ctx, repository.PostFilter{})
	require.NoError(t, err)

	edited, err := f.posts.Edit(ctx, leo, post.ID, PostForm{Text: "final", Group: films.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, "final", edited.Text)
	assert.Nil(t, edited.Group, "stale group is cleared")

	after, err := f.store.Posts.Count(ctx, repository.PostFilter{})
	require.NoError(t, err)
	assert.Equal(t, before, after)

	stored, err := f.store.Posts.FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "final", stored.Text)
	assert.Equal(t, leo.ID, stored.AuthorID)
	require.NotNil(t, stored.GroupID)
	assert.Equal(t, films.ID, *stored.GroupID)

	_, err = f.posts.Edit(ctx, leo, post.ID, PostForm{Text: "no group"})
	require.NoError(t, err)
	stored, err = f.store.Posts.FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.GroupID)

	assert.Equal(t, []uuid.UUID{post.ID, post.ID}, f.events.updated)
}

func TestEditRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	leo := f.user(t, "leo")
	anna := f.user(t, "anna")
	post := f.post(t, leo, nil, "leo's words")

	_, err := f.posts.Edit(ctx, anna, post.ID, PostForm{Text: "anna was here"})
	assert.ErrorIs(t, err, ErrNotPostAuthor)

	_, err = f.posts.Edit(ctx, nil, post.ID, PostForm{Text: "anonymous"})
	assert.ErrorIs(t, err, ErrAuthenticationRequired)

	_, err = f.posts.Edit(ctx, leo, uuid.New(), PostForm{Text: "ghost"})
	assert.ErrorIs(t, err, ErrPostNotFound)

	_, err = f.posts.Edit(ctx, leo, post.ID, PostForm{Text: " "})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "text")

	stored, err := f.store.Posts.FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "leo's words", stored.Text, "rejected edits leave the post unchanged")
	assert.Empty(t, f.events.updated)
}

func TestEditablePostChecksOwnershipBeforeForm(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	leo := f.user(t, "leo")
	anna := f.user(t, "anna")
	post := f.post(t, leo, nil, "mine")

	_, err := f.posts.EditablePost(ctx, anna, post.ID)
	assert.ErrorIs(t, err, ErrNotPostAuthor)

	editable, err := f.posts.EditablePost(ctx, leo, post.ID)
	require.NoError(t, err)
	assert.Equal(t, PostForm{Text: "mine"}, FormFor(editable))

	_, err = f.posts.ApplyEdit(ctx, anna, editable, PostForm{Text: "hijack"})
	assert.ErrorIs(t, err, ErrNotPostAuthor)
}
