package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/fabricare-service/internal/service"
	"github.com/maxviazov/fabricare-service/pkg/response"
)

// TokenHandler exchanges basic-auth credentials for a bearer token.
type TokenHandler struct {
	users  service.UserService
	tokens service.TokenService
}

func NewTokenHandler(users service.UserService, tokens service.TokenService) *TokenHandler {
	return &TokenHandler{users: users, tokens: tokens}
}

func (h *TokenHandler) Register(r *gin.RouterGroup) {
	r.POST("/tokens", h.issue)
}

func (h *TokenHandler) issue(c *gin.Context) {
	login, password, ok := c.Request.BasicAuth()
	if !ok {
		c.Header("WWW-Authenticate", `Basic realm="api"`)
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorPayload{Error: "unauthorized"})
		return
	}
	u, err := h.users.Authenticate(c.Request.Context(), login, password)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	tok, err := h.tokens.Issue(u)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, tok)
}
