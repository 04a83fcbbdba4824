package handler

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	applog "github.com/maxviazov/fabricare-service/internal/logger"
	"github.com/maxviazov/fabricare-service/internal/model"
	"github.com/maxviazov/fabricare-service/internal/service"
	"github.com/maxviazov/fabricare-service/pkg/response"
)

// HeaderRequestID carries the correlation id in both directions.
const HeaderRequestID = "X-Request-ID"

const (
	ctxRequestID   = "request_id"
	ctxCurrentUser = "current_user"
)

// RequestID reuses an incoming X-Request-ID or generates one, and echoes it back.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(HeaderRequestID))
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Request = c.Request.WithContext(applog.WithRequestID(c.Request.Context(), id))
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// AccessLog writes one structured line per request.
func AccessLog(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		ev := logger.Info()
		switch {
		case status >= 500:
			ev = logger.Error().Err(c.Errors.Last())
		case status >= 400:
			ev = logger.Warn()
		}
		ev.Str("request_id", c.GetString(ctxRequestID)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("query", c.Request.URL.RawQuery).
			Int("status", status).
			Int("size", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("http request")
	}
}

// Authenticate requires a valid bearer token and loads the caller into the context.
func Authenticate(tokens service.TokenService, users service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			response.WriteError(c, service.ErrUnauthorized)
			return
		}
		claims, err := tokens.Verify(strings.TrimSpace(token))
		if err != nil {
			response.WriteError(c, service.ErrUnauthorized)
			return
		}
		// Tokens outlive deletions and role changes; the stored user is authoritative.
		me, err := users.Get(c.Request.Context(), claims.UserID)
		if err != nil {
			response.WriteError(c, service.ErrUnauthorized)
			return
		}
		c.Set(ctxCurrentUser, me)
		c.Next()
	}
}

// RequireRoles lets the request through only if the caller has one of roles.
// It must run after Authenticate.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		me, ok := CurrentUser(c)
		if !ok {
			response.WriteError(c, service.ErrUnauthorized)
			return
		}
		for _, r := range roles {
			if me.Role == r {
				c.Next()
				return
			}
		}
		response.WriteError(c, service.ErrForbidden)
	}
}

// CurrentUser returns the authenticated caller.
func CurrentUser(c *gin.Context) (model.User, bool) {
	v, ok := c.Get(ctxCurrentUser)
	if !ok {
		return model.User{}, false
	}
	u, ok := v.(model.User)
	return u, ok
}

func me(c *gin.Context) model.User {
	u, _ := CurrentUser(c)
	return u
}
