package handlers

import (
	"net/http"
	"strconv"

	"github.com/anonto42/yatube/backend/internal/metrics"
	"github.com/anonto42/yatube/backend/internal/middleware"
	"github.com/anonto42/yatube/backend/internal/models"
	"github.com/anonto42/yatube/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles comment-related HTTP requests
type CommentHandler struct {
	*View
	commentRepository repositories.CommentRepository
	postRepository    repositories.PostRepository
	metrics           *metrics.Metrics
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(view *View, commentRepo repositories.CommentRepository, postRepo repositories.PostRepository, m *metrics.Metrics) *CommentHandler {
	return &CommentHandler{
		View:              view,
		commentRepository: commentRepo,
		postRepository:    postRepo,
		metrics:           m,
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group, requireLogin echo.MiddlewareFunc) {
	g.POST("/posts/:post_id/comment/", h.AddComment, requireLogin)
}

// AddComment stores a comment by the viewer. An empty comment is dropped.
// Either way the viewer lands back on the post page.
func (h *CommentHandler) AddComment(c echo.Context) error {
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

	var req models.CommentForm
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return c.Redirect(http.StatusFound, detailURL)
	}

	comment := &models.Comment{
		PostID:   post.ID,
		AuthorID: middleware.CurrentUserID(c),
		Text:     req.Text,
	}
	if err := h.commentRepository.CreateComment(ctx, comment); err != nil {
		return internalError(err)
	}
	h.metrics.CommentsCreated.Inc()

	h.Flash(c, "Your comment has been added.")
	return c.Redirect(http.StatusFound, detailURL)
}
