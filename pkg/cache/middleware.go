package cache

import (
	"bytes"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// PageConfig configures the page cache middleware.
type PageConfig struct {
	Skipper middleware.Skipper

	Store Store
	TTL   time.Duration

	// KeyFunc derives the cache key. Defaults to the request URI.
	KeyFunc func(c echo.Context) string

	// OnHit and OnMiss are optional observers, e.g. metrics counters.
	OnHit  func(c echo.Context)
	OnMiss func(c echo.Context)

	// OnError is called when the store fails; the request is still served.
	OnError func(c echo.Context, err error)
}

const headerCache = "X-Cache"

// PageWithConfig serves successful GET responses from the store until the
// TTL runs out. Writes elsewhere do not invalidate stored pages.
func PageWithConfig(config PageConfig) echo.MiddlewareFunc {
	if config.Store == nil {
		panic("cache: page middleware requires a store")
	}
	if config.Skipper == nil {
		config.Skipper = middleware.DefaultSkipper
	}
	if config.KeyFunc == nil {
		config.KeyFunc = func(c echo.Context) string { return c.Request().URL.RequestURI() }
	}
	if config.OnError == nil {
		config.OnError = func(echo.Context, error) {}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if config.Skipper(c) || c.Request().Method != http.MethodGet {
				return next(c)
			}

			ctx := c.Request().Context()
			key := config.KeyFunc(c)

			entry, ok, err := config.Store.Get(ctx, key)
			if err != nil {
				config.OnError(c, err)
			}
			if ok {
				if config.OnHit != nil {
					config.OnHit(c)
				}
				c.Response().Header().Set(headerCache, "HIT")
				return c.Blob(entry.Status, entry.ContentType, entry.Body)
			}
			if config.OnMiss != nil {
				config.OnMiss(c)
			}

			res := c.Response()
			capture := &bodyCapture{ResponseWriter: res.Writer}
			res.Writer = capture
			res.Header().Set(headerCache, "MISS")
			err = next(c)
			res.Writer = capture.ResponseWriter
			if err != nil {
				return err
			}

			if res.Status == http.StatusOK {
				stored := &Entry{
					Status:      res.Status,
					ContentType: res.Header().Get(echo.HeaderContentType),
					Body:        capture.buf.Bytes(),
				}
				if err := config.Store.Set(ctx, key, stored, config.TTL); err != nil {
					config.OnError(c, err)
				}
			}
			return nil
		}
	}
}

type bodyCapture struct {
	http.ResponseWriter
	buf bytes.Buffer
}

func (w *bodyCapture) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}
