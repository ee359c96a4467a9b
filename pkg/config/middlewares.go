package config

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

const slowRequestThreshold = 2 * time.Second

// RequestLogger writes one structured line per request through logrus.
func RequestLogger(log *logrus.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := log.WithFields(logrus.Fields{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"duration":   v.Latency,
				"remote_ip":  v.RemoteIP,
				"request_id": v.RequestID,
			})
			switch {
			case v.Error != nil:
				entry.WithError(v.Error).Error("Request failed")
			case v.Latency > slowRequestThreshold:
				entry.Warn("Slow request detected")
			default:
				entry.Info("Request completed")
			}
			return nil
		},
	})
}
