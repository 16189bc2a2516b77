package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

const userIDKey = "user_id"

// requireUser reads the user id header into the context. Requests without a valid
// positive id are rejected with 401.
func requireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := c.Request().Header.Get(HeaderUserID)
		if raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing "+HeaderUserID+" header")
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid "+HeaderUserID+" header")
		}
		c.Set(userIDKey, id)
		return next(c)
	}
}

func userID(c echo.Context) int64 {
	id, _ := c.Get(userIDKey).(int64)
	return id
}

// requestLogger logs every request and records request metrics per route.
func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			// let the error handler set the status before it is logged
			c.Error(err)
		}

		route := c.Path()
		status := c.Response().Status
		if s.metrics != nil {
			s.metrics.IncrementRequests(route, fmt.Sprintf("%dxx", status/100))
			s.metrics.RecordRequestDuration(start, route)
		}

		fields := map[string]interface{}{
			"method":     c.Request().Method,
			"uri":        c.Request().RequestURI,
			"status":     status,
			"duration":   time.Since(start).String(),
			"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
		}
		if uid := userID(c); uid != 0 {
			fields["user_id"] = uid
		}
		s.logger.InfoWithContext(c.Request().Context(), "HTTP request", nil, fields)
		return nil
	}
}
