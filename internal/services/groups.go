package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/yatube/yatube/internal/models"
	"github.com/yatube/yatube/internal/repository"
	"github.com/yatube/yatube/pkg/logger"
)

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

const (
	maxGroupTitle = 200
	maxGroupSlug  = 100
)

type GroupService struct {
	Groups repository.GroupRepository
}

func NewGroupService(groups repository.GroupRepository) *GroupService {
	return &GroupService{Groups: groups}
}

func (s *GroupService) Create(ctx context.Context, title, slug, description string) (*models.Group, error) {
	verr := &ValidationError{}

	title = strings.TrimSpace(title)
	if title == "" {
		verr.add("title", "title is required")
	} else if utf8.RuneCountInString(title) > maxGroupTitle {
		verr.add("title", fmt.Sprintf("title must be at most %d characters", maxGroupTitle))
	}

	slug = strings.TrimSpace(slug)
	if !slugPattern.MatchString(slug) || len(slug) > maxGroupSlug {
		verr.add("slug", "enter a valid slug: letters, digits, underscores or hyphens")
	}

	if err := verr.orNil(); err != nil {
		return nil, err
	}

	if _, err := s.Groups.FindBySlug(ctx, slug); err == nil {
		return nil, ErrSlugTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("checking slug %q: %w", slug, err)
	}

	group := &models.Group{
		Title:       title,
		Slug:        slug,
		Description: strings.TrimSpace(description),
	}
	if err := s.Groups.Create(ctx, group); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrSlugTaken
		}
		return nil, fmt.Errorf("creating group: %w", err)
	}

	logger.Info("group_created", map[string]interface{}{
		"group_id": group.ID.String(),
		"slug":     group.Slug,
	})

	return group, nil
}

func (s *GroupService) List(ctx context.Context) ([]models.Group, error) {
	groups, err := s.Groups.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing groups: %w", err)
	}
	return groups, nil
}
