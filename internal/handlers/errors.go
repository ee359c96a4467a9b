package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/yatube/backend/internal/middleware"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// NewErrorHandler renders HTML error pages. Server errors are logged with
// their internal cause; client errors are not.
func NewErrorHandler(log *logrus.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
		}

		if code >= http.StatusInternalServerError {
			entry := log.WithFields(logrus.Fields{
				"method": c.Request().Method,
				"uri":    c.Request().URL.RequestURI(),
			})
			if he != nil && he.Internal != nil {
				entry = entry.WithError(he.Internal)
			} else {
				entry = entry.WithError(err)
			}
			entry.Error("Unhandled error")
		}

		if c.Request().Method == http.MethodHead {
			if err := c.NoContent(code); err != nil {
				log.WithError(err).Warn("Failed to write error response")
			}
			return
		}

		name := "error.html"
		if code == http.StatusNotFound {
			name = "404.html"
		}
		data := map[string]interface{}{
			"viewer":  middleware.CurrentClaims(c),
			"status":  code,
			"message": http.StatusText(code),
			"path":    c.Request().URL.Path,
			"title":   http.StatusText(code),
		}
		if renderErr := c.Render(code, name, data); renderErr != nil {
			log.WithError(renderErr).Error("Failed to render error page")
			if err := c.String(code, http.StatusText(code)); err != nil {
				log.WithError(err).Warn("Failed to write error response")
			}
		}
	}
}
