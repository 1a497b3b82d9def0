// Package repository holds the storage ports used by the services together
// with a gorm implementation and an in-memory implementation.
package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/yatube/yatube/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// PostFilter narrows a post collection. Nil fields do not filter.
type PostFilter struct {
	AuthorID *uuid.UUID
	GroupID  *uuid.UUID
}

func ByAuthor(id uuid.UUID) PostFilter {
	return PostFilter{AuthorID: &id}
}

func ByGroup(id uuid.UUID) PostFilter {
	return PostFilter{GroupID: &id}
}

// PostRepository lists posts newest first with Author and Group loaded.
type PostRepository interface {
	Count(ctx context.Context, filter PostFilter) (int64, error)
	List(ctx context.Context, filter PostFilter, offset, limit int) ([]models.Post, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	Create(ctx context.Context, post *models.Post) error
	// Update persists Text and GroupID only.
	Update(ctx context.Context, post *models.Post) error
}

type GroupRepository interface {
	FindBySlug(ctx context.Context, slug string) (*models.Group, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Group, error)
	List(ctx context.Context) ([]models.Group, error)
	Create(ctx context.Context, group *models.Group) error
}

type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

// Store bundles the repositories a running application needs.
type Store struct {
	Posts  PostRepository
	Groups GroupRepository
	Users  UserRepository
}
