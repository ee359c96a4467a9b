package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/anonto42/yatube/backend/internal/metrics"
	"github.com/anonto42/yatube/backend/internal/middleware"
	"github.com/anonto42/yatube/backend/internal/models"
	"github.com/anonto42/yatube/backend/internal/repositories"
	"github.com/anonto42/yatube/backend/internal/storage"
	"github.com/anonto42/yatube/backend/validators"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

const postImageDir = "posts"

// PostHandler serves post listings, the post page and the post form.
type PostHandler struct {
	*View
	postRepository    repositories.PostRepository
	groupRepository   repositories.GroupRepository
	commentRepository repositories.CommentRepository
	media             storage.MediaStorage
	metrics           *metrics.Metrics
	perPage           int
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(
	view *View,
	postRepo repositories.PostRepository,
	groupRepo repositories.GroupRepository,
	commentRepo repositories.CommentRepository,
	media storage.MediaStorage,
	m *metrics.Metrics,
	perPage int,
) *PostHandler {
	return &PostHandler{
		View:              view,
		postRepository:    postRepo,
		groupRepository:   groupRepo,
		commentRepository: commentRepo,
		media:             media,
		metrics:           m,
		perPage:           perPage,
	}
}

// RegisterPostRoutes registers post-related routes. indexCache wraps the
// index page only.
func (h *PostHandler) RegisterPostRoutes(g *echo.Group, requireLogin, indexCache echo.MiddlewareFunc) {
	g.GET("/", h.Index, indexCache)
	g.GET("/group/:slug/", h.GroupPosts)
	g.GET("/posts/:post_id/", h.PostDetail)
	g.Match([]string{http.MethodGet, http.MethodPost}, "/create/", h.PostCreate, requireLogin)
	g.Match([]string{http.MethodGet, http.MethodPost}, "/posts/:post_id/edit/", h.PostEdit, requireLogin)
}

// Index lists every post, newest first.
func (h *PostHandler) Index(c echo.Context) error {
	page, err := paginatePosts(c, h.postRepository, h.perPage, repositories.PostFilter{})
	if err != nil {
		return err
	}
	return h.RenderShared(c, http.StatusOK, "index.html", echo.Map{
		"title":    "Latest updates",
		"page_obj": page,
	})
}

// GroupPosts lists the posts of one group.
func (h *PostHandler) GroupPosts(c echo.Context) error {
	group, err := h.groupRepository.GetGroupBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return lookupError(err, "Group")
	}

	page, err := paginatePosts(c, h.postRepository, h.perPage, repositories.PostFilter{GroupID: group.ID})
	if err != nil {
		return err
	}
	return h.Render(c, http.StatusOK, "group_list.html", echo.Map{
		"title":    group.Title,
		"group":    group,
		"page_obj": page,
	})
}

// PostDetail shows a post with its comments and an empty comment form.
func (h *PostHandler) PostDetail(c echo.Context) error {
	ctx := c.Request().Context()
	postID, err := postIDParam(c)
	if err != nil {
		return err
	}

	post, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		return lookupError(err, "Post")
	}
	comments, err := h.commentRepository.GetCommentsByPostID(ctx, post.ID)
	if err != nil {
		return internalError(err)
	}
	authorPosts, err := h.postRepository.CountPosts(ctx, repositories.PostFilter{AuthorID: post.AuthorID})
	if err != nil {
		return internalError(err)
	}

	return h.Render(c, http.StatusOK, "post_detail.html", echo.Map{
		"title":              truncate(post.Text, 30),
		"post":               post,
		"comments":           comments,
		"author_posts_count": authorPosts,
		"form":               newForm(models.CommentForm{}, nil),
	})
}

// PostCreate shows the empty form on GET and publishes on a valid POST.
// The author is always the viewer and the publish date is set server side.
func (h *PostHandler) PostCreate(c echo.Context) error {
	ctx := c.Request().Context()
	claims := middleware.CurrentClaims(c)

	if c.Request().Method == http.MethodGet {
		return h.renderPostForm(c, nil, newForm(models.PostForm{}, nil))
	}

	var req models.PostForm
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	post := &models.Post{AuthorID: claims.UserID}
	if errs := h.applyPostForm(c, &req, post); len(errs) > 0 {
		return h.renderPostForm(c, nil, newForm(req, errs))
	}

	if err := h.postRepository.CreatePost(ctx, post); err != nil {
		return internalError(err)
	}
	h.metrics.PostsCreated.Inc()
	h.logger(c).WithField("post_id", post.ID).Info("Post created")

	h.Flash(c, "Your post has been published.")
	return c.Redirect(http.StatusFound, profileURL(claims.Username))
}

// PostEdit lets the author change text, group and image. Anyone else is sent
// back to the post page and nothing is written.
func (h *PostHandler) PostEdit(c echo.Context) error {
	ctx := c.Request().Context()
	postID, err := postIDParam(c)
	if err != nil {
		return err
	}

	post, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		return lookupError(err, "Post")
	}
	detailURL := "/posts/" + strconv.FormatUint(uint64(post.ID), 10) + "/"
	if middleware.CurrentUserID(c) != post.AuthorID {
		return c.Redirect(http.StatusFound, detailURL)
	}

	if c.Request().Method == http.MethodGet {
		initial := models.PostForm{Text: post.Text}
		if post.GroupID != nil {
			initial.Group = strconv.FormatUint(uint64(*post.GroupID), 10)
		}
		return h.renderPostForm(c, post, newForm(initial, nil))
	}

	var req models.PostForm
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if c.FormValue("image-clear") == "on" {
		post.Image = ""
	}

	if errs := h.applyPostForm(c, &req, post); len(errs) > 0 {
		return h.renderPostForm(c, post, newForm(req, errs))
	}

	if err := h.postRepository.UpdatePost(ctx, post); err != nil {
		return lookupError(err, "Post")
	}
	h.metrics.PostsEdited.Inc()

	h.Flash(c, "Your changes have been saved.")
	return c.Redirect(http.StatusFound, detailURL)
}

// applyPostForm validates req and copies it onto post. The image is only
// stored once every other field is valid, so a rejected form leaves no file.
func (h *PostHandler) applyPostForm(c echo.Context, req *models.PostForm, post *models.Post) map[string]string {
	errs := validators.FieldErrors(c.Validate(req))
	if errs == nil {
		errs = map[string]string{}
	}

	var groupID *uint
	if _, bad := errs["group"]; !bad && req.Group != "" {
		id, err := strconv.ParseUint(req.Group, 10, 64)
		if err == nil {
			_, err = h.groupRepository.GetGroupByID(c.Request().Context(), uint(id))
		}
		switch {
		case err == nil:
			gid := uint(id)
			groupID = &gid
		case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, strconv.ErrRange), errors.Is(err, strconv.ErrSyntax):
			errs["group"] = "Select a valid choice. That choice is not one of the available choices."
		default:
			errs["__all__"] = "Something went wrong, please try again."
			h.logger(c).WithError(err).WithField("group", req.Group).Error("Failed to look up group")
		}
	}
	if len(errs) > 0 {
		return errs
	}

	if fh, err := c.FormFile("image"); err == nil {
		f, err := fh.Open()
		if err != nil {
			errs["image"] = "The submitted file could not be read."
			return errs
		}
		defer f.Close()

		name, err := h.media.SaveImage(postImageDir, fh.Filename, f)
		if err != nil {
			if errors.Is(err, storage.ErrNotImage) {
				errs["image"] = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
			} else {
				errs["image"] = "The image could not be saved."
				h.logger(c).WithError(err).WithField("filename", fh.Filename).Error("Failed to save upload")
			}
			return errs
		}
		post.Image = name
	}

	post.Text = req.Text
	post.GroupID = groupID
	post.Group = nil
	return nil
}

func (h *PostHandler) renderPostForm(c echo.Context, post *models.Post, form *Form) error {
	groups, err := h.groupRepository.GetGroups(c.Request().Context())
	if err != nil {
		return internalError(err)
	}
	data := echo.Map{
		"title":   "New post",
		"form":    form,
		"groups":  groups,
		"is_edit": post != nil,
	}
	if post != nil {
		data["title"] = "Edit post"
		data["post"] = post
	}
	return h.Render(c, http.StatusOK, "create_post.html", data)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
