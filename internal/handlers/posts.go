package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/yatube/yatube/internal/middleware"
	"github.com/yatube/yatube/internal/models"
	"github.com/yatube/yatube/internal/render"
	"github.com/yatube/yatube/internal/services"
	"github.com/yatube/yatube/pkg/logger"
	"github.com/yatube/yatube/pkg/utils"
)

const (
	templateIndex      = "posts/index"
	templateGroupList  = "posts/group_list"
	templateProfile    = "posts/profile"
	templatePostDetail = "posts/post_detail"
	templatePostForm   = "posts/create_post"
)

type PostsHandler struct {
	Posts  *services.PostService
	Groups *services.GroupService
	Render render.Renderer
}

func NewPostsHandler(posts *services.PostService, groups *services.GroupService, renderer render.Renderer) *PostsHandler {
	return &PostsHandler{Posts: posts, Groups: groups, Render: renderer}
}

// postSubmission tells absent fields apart from empty ones.
type postSubmission struct {
	Text  *string `json:"text" form:"text"`
	Group *string `json:"group" form:"group"`
}

// form is what gets validated: absent fields count as empty.
func (s postSubmission) form() services.PostForm {
	var form services.PostForm
	if s.Text != nil {
		form.Text = *s.Text
	}
	if s.Group != nil {
		form.Group = *s.Group
	}
	return form
}

// display is what a re-rendered form shows: submitted values where present,
// otherwise the values the form started with.
func (s postSubmission) display(initial services.PostForm) services.PostForm {
	form := initial
	if s.Text != nil {
		form.Text = *s.Text
	}
	if s.Group != nil {
		form.Group = *s.Group
	}
	return form
}

func parsePostSubmission(c *fiber.Ctx) (postSubmission, error) {
	var submission postSubmission
	if !hasBody(c) {
		return submission, nil
	}
	if err := c.BodyParser(&submission); err != nil {
		return submission, fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	return submission, nil
}

func (h *PostsHandler) Index(c *fiber.Ctx) error {
	page, err := h.Posts.Index(c.UserContext(), utils.ParsePage(c))
	if err != nil {
		return MapServiceError(err)
	}

	return h.Render.Render(c, fiber.StatusOK, templateIndex, fiber.Map{
		"page_obj": page,
	})
}

func (h *PostsHandler) GroupPosts(c *fiber.Ctx) error {
	listing, err := h.Posts.GroupPosts(c.UserContext(), pathParam(c, "slug"), utils.ParsePage(c))
	if err != nil {
		return MapServiceError(err)
	}

	return h.Render.Render(c, fiber.StatusOK, templateGroupList, fiber.Map{
		"group":    listing.Group,
		"page_obj": listing.Page,
	})
}

func (h *PostsHandler) Profile(c *fiber.Ctx) error {
	listing, err := h.Posts.Profile(c.UserContext(), pathParam(c, "username"), utils.ParsePage(c))
	if err != nil {
		return MapServiceError(err)
	}

	return h.Render.Render(c, fiber.StatusOK, templateProfile, fiber.Map{
		"author":      listing.Author,
		"page_obj":    listing.Page,
		"posts_count": listing.PostsCount,
	})
}

func (h *PostsHandler) Detail(c *fiber.Ctx) error {
	postID, err := postIDParam(c)
	if err != nil {
		return err
	}

	detail, err := h.Posts.Detail(c.UserContext(), postID)
	if err != nil {
		return MapServiceError(err)
	}

	actor := middleware.GetCurrentUser(c)
	return h.Render.Render(c, fiber.StatusOK, templatePostDetail, fiber.Map{
		"post":            detail.Post,
		"post_count":      detail.PostCount,
		"post_author":     detail.Author,
		"requesting_user": actor,
		"can_edit":        actor != nil && detail.Post.IsAuthoredBy(actor.ID),
	})
}

func (h *PostsHandler) CreateForm(c *fiber.Ctx) error {
	return h.renderForm(c, fiber.StatusOK, services.PostForm{}, nil, nil)
}

func (h *PostsHandler) Create(c *fiber.Ctx) error {
	actor := middleware.GetCurrentUser(c)

	submission, err := parsePostSubmission(c)
	if err != nil {
		return err
	}

	_, err = h.Posts.Create(c.UserContext(), actor, submission.form())
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		return h.renderForm(c, fiber.StatusBadRequest, submission.display(services.PostForm{}), verr.Fields, nil)
	}
	if err != nil {
		return MapServiceError(err)
	}

	return c.Redirect(profileURL(actor.Username), fiber.StatusFound)
}

func (h *PostsHandler) EditForm(c *fiber.Ctx) error {
	post, err := h.editablePost(c)
	if err != nil || post == nil {
		return err
	}
	return h.renderForm(c, fiber.StatusOK, services.FormFor(post), nil, post)
}

func (h *PostsHandler) Edit(c *fiber.Ctx) error {
	post, err := h.editablePost(c)
	if err != nil || post == nil {
		return err
	}

	submission, err := parsePostSubmission(c)
	if err != nil {
		return err
	}

	initial := services.FormFor(post)
	_, err = h.Posts.ApplyEdit(c.UserContext(), middleware.GetCurrentUser(c), post, submission.form())
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		return h.renderForm(c, fiber.StatusBadRequest, submission.display(initial), verr.Fields, post)
	}
	if err != nil {
		return MapServiceError(err)
	}

	return c.Redirect(postURL(post.ID), fiber.StatusFound)
}

// editablePost resolves the post being edited. For a non-author it has
// already written the redirect to the detail page and returns a nil post;
// the request body is never read in that case.
func (h *PostsHandler) editablePost(c *fiber.Ctx) (*models.Post, error) {
	postID, err := postIDParam(c)
	if err != nil {
		return nil, err
	}

	actor := middleware.GetCurrentUser(c)
	post, err := h.Posts.EditablePost(c.UserContext(), actor, postID)
	if errors.Is(err, services.ErrNotPostAuthor) {
		logger.WarnWithUser(actor.ID.String(), "post_edit_denied", map[string]interface{}{
			"post_id": postID.String(),
		})
		middleware.MarkDeniedEdit(c)
		return nil, c.Redirect(postURL(postID), fiber.StatusFound)
	}
	if err != nil {
		return nil, MapServiceError(err)
	}
	return post, nil
}

func (h *PostsHandler) renderForm(c *fiber.Ctx, status int, form services.PostForm, fieldErrors map[string]string, post *models.Post) error {
	groups, err := h.Groups.List(c.UserContext())
	if err != nil {
		return MapServiceError(err)
	}

	return h.Render.Render(c, status, templatePostForm, fiber.Map{
		"form":    form,
		"errors":  fieldErrors,
		"groups":  groups,
		"is_edit": post != nil,
		"post":    post,
	})
}
