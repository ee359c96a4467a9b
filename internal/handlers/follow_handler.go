package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/yatube/backend/internal/metrics"
	"github.com/anonto42/yatube/backend/internal/middleware"
	"github.com/anonto42/yatube/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles follow/unfollow requests and the follow feed.
type FollowHandler struct {
	*View
	followRepository repositories.FollowRepository
	userRepository   repositories.UserRepository
	postRepository   repositories.PostRepository
	metrics          *metrics.Metrics
	perPage          int
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(
	view *View,
	followRepo repositories.FollowRepository,
	userRepo repositories.UserRepository,
	postRepo repositories.PostRepository,
	m *metrics.Metrics,
	perPage int,
) *FollowHandler {
	return &FollowHandler{
		View:             view,
		followRepository: followRepo,
		userRepository:   userRepo,
		postRepository:   postRepo,
		metrics:          m,
		perPage:          perPage,
	}
}

// RegisterFollowRoutes registers follow-related routes. Every route needs a
// logged-in viewer.
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group, requireLogin echo.MiddlewareFunc) {
	methods := []string{http.MethodGet, http.MethodPost}
	g.GET("/follow/", h.FollowIndex, requireLogin)
	g.Match(methods, "/profile/:username/follow/", h.ProfileFollow, requireLogin)
	g.Match(methods, "/profile/:username/unfollow/", h.ProfileUnfollow, requireLogin)
}

// FollowIndex lists posts by the authors the viewer follows.
func (h *FollowHandler) FollowIndex(c echo.Context) error {
	filter := repositories.PostFilter{FollowerID: middleware.CurrentUserID(c)}
	page, err := paginatePosts(c, h.postRepository, h.perPage, filter)
	if err != nil {
		return err
	}
	return h.Render(c, http.StatusOK, "follow.html", echo.Map{
		"title":    "Subscriptions",
		"page_obj": page,
	})
}

// ProfileFollow subscribes the viewer to the author. Repeating it or
// following yourself changes nothing.
func (h *FollowHandler) ProfileFollow(c echo.Context) error {
	ctx := c.Request().Context()
	author, err := h.userRepository.GetUserByUsername(ctx, c.Param("username"))
	if err != nil {
		return lookupError(err, "User")
	}
	h.metrics.FollowRequests.WithLabelValues("follow").Inc()

	created, err := h.followRepository.Follow(ctx, middleware.CurrentUserID(c), author.ID)
	switch {
	case errors.Is(err, repositories.ErrSelfFollow):
	case err != nil:
		return internalError(err)
	case created:
		h.Flash(c, "You are now following "+author.Username+".")
	}
	return c.Redirect(http.StatusFound, profileURL(author.Username))
}

// ProfileUnfollow removes the subscription if there is one.
func (h *FollowHandler) ProfileUnfollow(c echo.Context) error {
	ctx := c.Request().Context()
	author, err := h.userRepository.GetUserByUsername(ctx, c.Param("username"))
	if err != nil {
		return lookupError(err, "User")
	}
	h.metrics.FollowRequests.WithLabelValues("unfollow").Inc()

	if err := h.followRepository.Unfollow(ctx, middleware.CurrentUserID(c), author.ID); err != nil {
		return internalError(err)
	}
	return c.Redirect(http.StatusFound, profileURL(author.Username))
}

func profileURL(username string) string {
	return "/profile/" + username + "/"
}
