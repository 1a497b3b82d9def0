package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yatube/yatube/internal/models"
)

// MemoryStore is a process-local store with the same semantics as the gorm
// repositories. It backs the service tests and DB_DRIVER=memory runs.
type MemoryStore struct {
	mu     sync.RWMutex
	now    func() time.Time
	seq    int64
	users  map[uuid.UUID]models.User
	groups map[uuid.UUID]models.Group
	posts  map[uuid.UUID]memoryPost
}

type memoryPost struct {
	post models.Post
	seq  int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:    func() time.Time { return time.Now().UTC() },
		users:  map[uuid.UUID]models.User{},
		groups: map[uuid.UUID]models.Group{},
		posts:  map[uuid.UUID]memoryPost{},
	}
}

// Store exposes the memory store through the repository interfaces.
func (m *MemoryStore) Store() *Store {
	return &Store{
		Posts:  memoryPosts{m},
		Groups: memoryGroups{m},
		Users:  memoryUsers{m},
	}
}

func (m *MemoryStore) stamp(base *models.BaseModel) {
	now := m.now()
	if base.ID == uuid.Nil {
		base.ID = uuid.New()
	}
	if base.CreatedAt.IsZero() {
		base.CreatedAt = now
	}
	base.UpdatedAt = now
}

// hydrate attaches Author and Group. Callers hold at least the read lock.
func (m *MemoryStore) hydrate(post models.Post) models.Post {
	post.Author = m.users[post.AuthorID]
	post.Group = nil
	if post.GroupID != nil {
		if group, ok := m.groups[*post.GroupID]; ok {
			post.Group = &group
		}
	}
	return post
}

type memoryPosts struct{ m *MemoryStore }

func (r memoryPosts) matching(filter PostFilter) []memoryPost {
	var matched []memoryPost
	for _, entry := range r.m.posts {
		if filter.AuthorID != nil && entry.post.AuthorID != *filter.AuthorID {
			continue
		}
		if filter.GroupID != nil && (entry.post.GroupID == nil || *entry.post.GroupID != *filter.GroupID) {
			continue
		}
		matched = append(matched, entry)
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.post.CreatedAt.Equal(b.post.CreatedAt) {
			return a.post.CreatedAt.After(b.post.CreatedAt)
		}
		return a.seq > b.seq
	})
	return matched
}

func (r memoryPosts) Count(ctx context.Context, filter PostFilter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	return int64(len(r.matching(filter))), nil
}

func (r memoryPosts) List(ctx context.Context, filter PostFilter, offset, limit int) ([]models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	matched := r.matching(filter)
	start := min(max(offset, 0), len(matched))
	end := len(matched)
	if limit >= 0 {
		end = min(start+limit, len(matched))
	}

	posts := make([]models.Post, 0, end-start)
	for _, entry := range matched[start:end] {
		posts = append(posts, r.m.hydrate(entry.post))
	}
	return posts, nil
}

func (r memoryPosts) FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	entry, ok := r.m.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	post := r.m.hydrate(entry.post)
	return &post, nil
}

func (r memoryPosts) Create(ctx context.Context, post *models.Post) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if _, ok := r.m.users[post.AuthorID]; !ok {
		return ErrNotFound
	}
	if post.GroupID != nil {
		if _, ok := r.m.groups[*post.GroupID]; !ok {
			return ErrNotFound
		}
	}
	if _, exists := r.m.posts[post.ID]; exists && post.ID != uuid.Nil {
		return ErrDuplicate
	}

	r.m.stamp(&post.BaseModel)
	r.m.seq++
	stored := *post
	stored.Author = models.User{}
	stored.Group = nil
	r.m.posts[post.ID] = memoryPost{post: stored, seq: r.m.seq}
	return nil
}

func (r memoryPosts) Update(ctx context.Context, post *models.Post) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	entry, ok := r.m.posts[post.ID]
	if !ok {
		return ErrNotFound
	}
	if post.GroupID != nil {
		if _, ok := r.m.groups[*post.GroupID]; !ok {
			return ErrNotFound
		}
	}

	entry.post.Text = post.Text
	entry.post.GroupID = nil
	if post.GroupID != nil {
		groupID := *post.GroupID
		entry.post.GroupID = &groupID
	}
	entry.post.UpdatedAt = r.m.now()
	r.m.posts[post.ID] = entry

	post.UpdatedAt = entry.post.UpdatedAt
	return nil
}

type memoryGroups struct{ m *MemoryStore }

func (r memoryGroups) FindBySlug(ctx context.Context, slug string) (*models.Group, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	for _, group := range r.m.groups {
		if group.Slug == slug {
			found := group
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (r memoryGroups) FindByID(ctx context.Context, id uuid.UUID) (*models.Group, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	group, ok := r.m.groups[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &group, nil
}

func (r memoryGroups) List(ctx context.Context) ([]models.Group, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	groups := make([]models.Group, 0, len(r.m.groups))
	for _, group := range r.m.groups {
		groups = append(groups, group)
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Title != groups[j].Title {
			return groups[i].Title < groups[j].Title
		}
		return groups[i].Slug < groups[j].Slug
	})
	return groups, nil
}

func (r memoryGroups) Create(ctx context.Context, group *models.Group) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	for _, existing := range r.m.groups {
		if existing.Slug == group.Slug {
			return ErrDuplicate
		}
	}
	r.m.stamp(&group.BaseModel)
	r.m.groups[group.ID] = *group
	return nil
}

type memoryUsers struct{ m *MemoryStore }

func (r memoryUsers) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	for _, user := range r.m.users {
		if user.Username == username {
			found := user
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (r memoryUsers) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	user, ok := r.m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (r memoryUsers) Create(ctx context.Context, user *models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	for _, existing := range r.m.users {
		if existing.Username == user.Username {
			return ErrDuplicate
		}
	}
	r.m.stamp(&user.BaseModel)
	r.m.users[user.ID] = *user
	return nil
}
