package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/anonto42/yatube/backend/internal/middleware"
	"github.com/anonto42/yatube/backend/internal/repositories"
	"github.com/anonto42/yatube/backend/pkg/paginator"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Form is what a template needs to redisplay a submitted form.
type Form struct {
	Data   interface{}
	Errors map[string]string
}

func newForm(data interface{}, errs map[string]string) *Form {
	if errs == nil {
		errs = map[string]string{}
	}
	return &Form{Data: data, Errors: errs}
}

// View renders pages with the data every page shares.
type View struct {
	flashes *FlashStore
	log     *logrus.Logger
}

func NewView(flashes *FlashStore, log *logrus.Logger) *View {
	return &View{flashes: flashes, log: log}
}

// Render adds the viewer, the CSRF token and any pending flash messages to data.
func (v *View) Render(c echo.Context, code int, name string, data echo.Map) error {
	data["viewer"] = middleware.CurrentClaims(c)
	data["csrf"] = csrfToken(c)
	data["flashes"] = v.flashes.Pop(c)
	return c.Render(code, name, data)
}

// RenderShared is for cacheable pages: flashes are left queued because the
// rendered body may be served again to later requests.
func (v *View) RenderShared(c echo.Context, code int, name string, data echo.Map) error {
	data["viewer"] = middleware.CurrentClaims(c)
	return c.Render(code, name, data)
}

// logger returns an entry carrying the request id and viewer.
func (v *View) logger(c echo.Context) *logrus.Entry {
	return v.log.WithFields(logrus.Fields{
		"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
		"user_id":    middleware.CurrentUserID(c),
	})
}

// csrfToken is empty when the CSRF middleware let the request through on
// its Sec-Fetch-Site header alone.
func csrfToken(c echo.Context) string {
	token, _ := c.Get(eMiddleware.DefaultCSRFConfig.ContextKey).(string)
	return token
}

// Flash queues a message for the next rendered page.
func (v *View) Flash(c echo.Context, msg string) {
	v.flashes.Add(c, msg)
}

// lookupError maps a repository error to an HTTP error.
func lookupError(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, what+" not found")
	}
	return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
}

func internalError(err error) error {
	return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
}

// postIDParam parses :post_id. Anything but a positive integer is a 404,
// the same as a route that does not match.
func postIDParam(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("post_id"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}
	return uint(id), nil
}

// paginatePosts loads the page selected by ?page= for filter.
func paginatePosts(c echo.Context, posts repositories.PostRepository, perPage int, filter repositories.PostFilter) (*paginator.Page, error) {
	ctx := c.Request().Context()

	total, err := posts.CountPosts(ctx, filter)
	if err != nil {
		return nil, internalError(err)
	}
	page := paginator.New(total, perPage).Page(c.QueryParam("page"))

	items, err := posts.ListPosts(ctx, filter, page.Offset(), page.Limit())
	if err != nil {
		return nil, internalError(err)
	}
	page.Items = items
	return page, nil
}
