package metrics

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	Registry *prometheus.Registry

	Requests        *prometheus.CounterVec
	PostsCreated    prometheus.Counter
	PostsEdited     prometheus.Counter
	CommentsCreated prometheus.Counter
	FollowRequests  *prometheus.CounterVec
	PageCache       *prometheus.CounterVec
}

// New registers the application counters on a fresh registry so several
// servers (e.g. in tests) can coexist in one process.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yatube_http_requests_total",
				Help: "Total number of HTTP requests by route and status code",
			},
			[]string{"method", "route", "code"},
		),
		PostsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "yatube_posts_created_total",
			Help: "Total number of posts published",
		}),
		PostsEdited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "yatube_posts_edited_total",
			Help: "Total number of successful post edits",
		}),
		CommentsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "yatube_comments_created_total",
			Help: "Total number of comments added",
		}),
		FollowRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yatube_follow_requests_total",
				Help: "Total number of follow and unfollow requests",
			},
			[]string{"action"},
		),
		PageCache: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yatube_page_cache_total",
				Help: "Page cache lookups by result",
			},
			[]string{"result"},
		),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Requests,
		m.PostsCreated,
		m.PostsEdited,
		m.CommentsCreated,
		m.FollowRequests,
		m.PageCache,
	)
	return m
}

// Middleware counts every request by its route pattern, not its raw path.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			} else if err != nil {
				status = 500
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			m.Requests.WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).Inc()
			return err
		}
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
}
