package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/yatube/yatube/internal/models"
	"github.com/yatube/yatube/internal/repository"
	"github.com/yatube/yatube/pkg/logger"
	"github.com/yatube/yatube/pkg/utils"
)

type PostService struct {
	Store    *repository.Store
	Events   EventPublisher
	PageSize int
}

func NewPostService(store *repository.Store, events EventPublisher, pageSize int) *PostService {
	if events == nil {
		events = NoopPublisher{}
	}
	return &PostService{Store: store, Events: events, PageSize: pageSize}
}

// PostForm is a submitted post. Group holds a group id, or "" for no group.
type PostForm struct {
	Text  string `json:"text" form:"text"`
	Group string `json:"group" form:"group"`
}

// FormFor pre-fills a form from an existing post.
func FormFor(post *models.Post) PostForm {
	form := PostForm{Text: post.Text}
	if post.GroupID != nil {
		form.Group = post.GroupID.String()
	}
	return form
}

type GroupListing struct {
	Group *models.Group
	Page  utils.Page[models.Post]
}

type ProfileListing struct {
	Author     *models.User
	Page       utils.Page[models.Post]
	PostsCount int64
}

type PostDetail struct {
	Post      *models.Post
	Author    *models.User
	PostCount int64
}

func (s *PostService) pageSize() int {
	if s.PageSize < 1 {
		return utils.DefaultPageSize
	}
	return s.PageSize
}

func (s *PostService) listPage(ctx context.Context, filter repository.PostFilter, requested int) (utils.Page[models.Post], error) {
	total, err := s.Store.Posts.Count(ctx, filter)
	if err != nil {
		return utils.Page[models.Post]{}, fmt.Errorf("counting posts: %w", err)
	}

	window := utils.PageWindow(total, s.pageSize(), requested)
	posts, err := s.Store.Posts.List(ctx, filter, window.Offset, window.Limit)
	if err != nil {
		return utils.Page[models.Post]{}, fmt.Errorf("listing posts: %w", err)
	}
	return utils.NewPage(posts, window), nil
}

// Index pages through every post, newest first.
func (s *PostService) Index(ctx context.Context, page int) (utils.Page[models.Post], error) {
	return s.listPage(ctx, repository.PostFilter{}, page)
}

func (s *PostService) GroupPosts(ctx context.Context, slug string, page int) (*GroupListing, error) {
	group, err := s.Store.Groups.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("loading group %q: %w", slug, err)
	}

	posts, err := s.listPage(ctx, repository.ByGroup(group.ID), page)
	if err != nil {
		return nil, err
	}
	return &GroupListing{Group: group, Page: posts}, nil
}

func (s *PostService) Profile(ctx context.Context, username string, page int) (*ProfileListing, error) {
	author, err := s.Store.Users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("loading user %q: %w", username, err)
	}

	posts, err := s.listPage(ctx, repository.ByAuthor(author.ID), page)
	if err != nil {
		return nil, err
	}
	return &ProfileListing{Author: author, Page: posts, PostsCount: posts.TotalItems}, nil
}

func (s *PostService) Detail(ctx context.Context, postID uuid.UUID) (*PostDetail, error) {
	post, err := s.findPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	count, err := s.Store.Posts.Count(ctx, repository.ByAuthor(post.AuthorID))
	if err != nil {
		return nil, fmt.Errorf("counting author posts: %w", err)
	}

	author := post.Author
	return &PostDetail{Post: post, Author: &author, PostCount: count}, nil
}

func (s *PostService) Create(ctx context.Context, actor *models.User, form PostForm) (*models.Post, error) {
	if actor == nil {
		return nil, ErrAuthenticationRequired
	}

	text, groupID, err := s.validate(ctx, form)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Text:     text,
		AuthorID: actor.ID,
		GroupID:  groupID,
	}
	if err := s.Store.Posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("creating post: %w", err)
	}
	post.Author = *actor

	logger.InfoWithUser(actor.ID.String(), "post_created", map[string]interface{}{
		"post_id":  post.ID.String(),
		"group_id": optionalID(post.GroupID),
	})

	if err := s.Events.PublishPostCreated(ctx, post); err != nil {
		logger.Warn("post_event_publish_failed", map[string]interface{}{
			"post_id": post.ID.String(),
			"event":   "created",
			"error":   err.Error(),
		})
	}

	return post, nil
}

// EditablePost loads a post for editing. The ownership check runs before any
// submitted data is looked at.
func (s *PostService) EditablePost(ctx context.Context, actor *models.User, postID uuid.UUID) (*models.Post, error) {
	if actor == nil {
		return nil, ErrAuthenticationRequired
	}

	post, err := s.findPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !post.IsAuthoredBy(actor.ID) {
		return nil, ErrNotPostAuthor
	}
	return post, nil
}

func (s *PostService) Edit(ctx context.Context, actor *models.User, postID uuid.UUID, form PostForm) (*models.Post, error) {
	post, err := s.EditablePost(ctx, actor, postID)
	if err != nil {
		return nil, err
	}
	return s.ApplyEdit(ctx, actor, post, form)
}

// ApplyEdit validates form and stores it on a post obtained from EditablePost.
func (s *PostService) ApplyEdit(ctx context.Context, actor *models.User, post *models.Post, form PostForm) (*models.Post, error) {
	if actor == nil {
		return nil, ErrAuthenticationRequired
	}
	if !post.IsAuthoredBy(actor.ID) {
		return nil, ErrNotPostAuthor
	}

	text, groupID, err := s.validate(ctx, form)
	if err != nil {
		return nil, err
	}

	post.Text = text
	post.GroupID = groupID
	if post.Group != nil && (groupID == nil || post.Group.ID != *groupID) {
		post.Group = nil
	}
	if err := s.Store.Posts.Update(ctx, post); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("updating post: %w", err)
	}

	logger.InfoWithUser(actor.ID.String(), "post_updated", map[string]interface{}{
		"post_id":  post.ID.String(),
		"group_id": optionalID(post.GroupID),
	})

	if err := s.Events.PublishPostUpdated(ctx, post); err != nil {
		logger.Warn("post_event_publish_failed", map[string]interface{}{
			"post_id": post.ID.String(),
			"event":   "updated",
			"error":   err.Error(),
		})
	}

	return post, nil
}

func (s *PostService) findPost(ctx context.Context, postID uuid.UUID) (*models.Post, error) {
	post, err := s.Store.Posts.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("loading post %s: %w", postID, err)
	}
	return post, nil
}

func (s *PostService) validate(ctx context.Context, form PostForm) (string, *uuid.UUID, error) {
	verr := &ValidationError{}

	text := strings.TrimSpace(form.Text)
	if text == "" {
		verr.add("text", "text is required")
	}

	var groupID *uuid.UUID
	if raw := strings.TrimSpace(form.Group); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			verr.add("group", "select a valid group")
		} else if _, err := s.Store.Groups.FindByID(ctx, id); err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				return "", nil, fmt.Errorf("loading group %s: %w", id, err)
			}
			verr.add("group", "select a valid group")
		} else {
			groupID = &id
		}
	}

	if err := verr.orNil(); err != nil {
		return "", nil, err
	}
	return text, groupID, nil
}

func optionalID(id *uuid.UUID) interface{} {
	if id == nil {
		return nil
	}
	return id.String()
}
