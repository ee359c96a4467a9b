package handlers

import (
	"net/http"

	"github.com/anonto42/yatube/backend/internal/middleware"
	"github.com/anonto42/yatube/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// UserHandler serves author profile pages.
type UserHandler struct {
	*View
	userRepository   repositories.UserRepository
	postRepository   repositories.PostRepository
	followRepository repositories.FollowRepository
	perPage          int
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(
	view *View,
	userRepo repositories.UserRepository,
	postRepo repositories.PostRepository,
	followRepo repositories.FollowRepository,
	perPage int,
) *UserHandler {
	return &UserHandler{
		View:             view,
		userRepository:   userRepo,
		postRepository:   postRepo,
		followRepository: followRepo,
		perPage:          perPage,
	}
}

// RegisterUserRoutes registers user-related routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("/profile/:username/", h.Profile)
}

// Profile lists an author's posts with follow counters. following is only
// true for a logged-in viewer who follows the author.
func (h *UserHandler) Profile(c echo.Context) error {
	ctx := c.Request().Context()
	author, err := h.userRepository.GetUserByUsername(ctx, c.Param("username"))
	if err != nil {
		return lookupError(err, "User")
	}

	filter := repositories.PostFilter{AuthorID: author.ID}
	page, err := paginatePosts(c, h.postRepository, h.perPage, filter)
	if err != nil {
		return err
	}

	following := false
	if viewerID := middleware.CurrentUserID(c); viewerID != 0 && viewerID != author.ID {
		if following, err = h.followRepository.IsFollowing(ctx, viewerID, author.ID); err != nil {
			return internalError(err)
		}
	}
	followers, err := h.followRepository.GetFollowersCount(ctx, author.ID)
	if err != nil {
		return internalError(err)
	}
	follows, err := h.followRepository.GetFollowingCount(ctx, author.ID)
	if err != nil {
		return internalError(err)
	}

	return h.Render(c, http.StatusOK, "profile.html", echo.Map{
		"title":           "Profile of " + author.FullName(),
		"author":          author,
		"page_obj":        page,
		"posts_count":     page.Total(),
		"following":       following,
		"followers_count": followers,
		"following_count": follows,
	})
}
