package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/anonto42/yatube/backend/internal/middleware"
	"github.com/anonto42/yatube/backend/internal/models"
	"github.com/anonto42/yatube/backend/internal/repositories"
	"github.com/anonto42/yatube/backend/validators"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthHandler handles signup, login and logout.
type AuthHandler struct {
	*View
	userRepository repositories.UserRepository
	jwtSecret      string
	secureCookies  bool
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(view *View, userRepo repositories.UserRepository, jwtSecret string, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		View:           view,
		userRepository: userRepo,
		jwtSecret:      jwtSecret,
		secureCookies:  secureCookies,
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	methods := []string{http.MethodGet, http.MethodPost}
	g.Match(methods, "/signup/", h.Signup)
	g.Match(methods, "/login/", h.Login)
	g.Match(methods, "/logout/", h.Logout)
}

// Signup creates an account and logs the new user in.
func (h *AuthHandler) Signup(c echo.Context) error {
	if c.Request().Method == http.MethodGet {
		return h.Render(c, http.StatusOK, "signup.html", echo.Map{
			"title": "Sign up",
			"form":  newForm(models.SignupRequest{}, nil),
		})
	}

	var req models.SignupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	req.Username = strings.TrimSpace(req.Username)

	if errs := validators.FieldErrors(c.Validate(&req)); len(errs) > 0 {
		return h.renderSignup(c, req, errs)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return internalError(err)
	}

	user := &models.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  string(hashedPassword),
	}
	if err := h.userRepository.CreateUser(c.Request().Context(), user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return h.renderSignup(c, req, map[string]string{
				"username": "A user with that username already exists.",
			})
		}
		return internalError(err)
	}
	h.logger(c).WithField("username", user.Username).Info("User signed up")

	if err := h.login(c, user); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) renderSignup(c echo.Context, req models.SignupRequest, errs map[string]string) error {
	req.Password, req.Password2 = "", ""
	return h.Render(c, http.StatusOK, "signup.html", echo.Map{
		"title": "Sign up",
		"form":  newForm(req, errs),
	})
}

// Login checks credentials and redirects to next when it is a local path.
func (h *AuthHandler) Login(c echo.Context) error {
	if c.Request().Method == http.MethodGet {
		return h.Render(c, http.StatusOK, "login.html", echo.Map{
			"title": "Log in",
			"form":  newForm(models.LoginRequest{Next: c.QueryParam("next")}, nil),
		})
	}

	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if req.Next == "" {
		req.Next = c.QueryParam("next")
	}

	errs := validators.FieldErrors(c.Validate(&req))
	if len(errs) == 0 {
		user, err := h.userRepository.GetUserByUsername(c.Request().Context(), req.Username)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
		case err != nil:
			return internalError(err)
		case bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) == nil:
			if err := h.login(c, user); err != nil {
				return err
			}
			return c.Redirect(http.StatusFound, safeNext(req.Next))
		}
		errs = map[string]string{
			"__all__": "Please enter a correct username and password. Note that both fields may be case-sensitive.",
		}
	}

	req.Password = ""
	return h.Render(c, http.StatusOK, "login.html", echo.Map{
		"title": "Log in",
		"form":  newForm(req, errs),
	})
}

// Logout drops the session cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	middleware.ClearTokenCookie(c)
	return c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) login(c echo.Context, user *models.User) error {
	token, err := middleware.GenerateToken(h.jwtSecret, user)
	if err != nil {
		return internalError(err)
	}
	middleware.SetTokenCookie(c, token, h.secureCookies)
	return nil
}

// safeNext only allows same-site absolute paths.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
