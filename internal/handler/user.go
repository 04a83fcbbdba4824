package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/fabricare-service/internal/model"
	"github.com/maxviazov/fabricare-service/internal/pagination"
	"github.com/maxviazov/fabricare-service/internal/service"
	"github.com/maxviazov/fabricare-service/pkg/response"
)

type UserHandler struct {
	svc service.UserService
}

func NewUserHandler(svc service.UserService) *UserHandler { return &UserHandler{svc: svc} }

// Register mounts the authenticated user routes; POST /users is mounted publicly by the caller.
func (h *UserHandler) Register(authed, admin *gin.RouterGroup) {
	authed.GET("/users", h.list)
	// :id is either a numeric id or a username.
	authed.GET("/users/:id", h.get)
	authed.GET("/me", h.getMe)
	authed.PUT("/me", h.updateMe)
	admin.DELETE("/users/:id", h.delete)
}

func (h *UserHandler) create(c *gin.Context) {
	var req service.RegisterInput
	if err := bindJSON(c, &req); err != nil {
		response.WriteError(c, err)
		return
	}
	u, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, u)
}

func (h *UserHandler) list(c *gin.Context) {
	listed(c, func(lr service.ListRequest) (pagination.Page[model.User], error) {
		return h.svc.List(c.Request.Context(), lr)
	})
}

func (h *UserHandler) get(c *gin.Context) {
	u, err := h.svc.Lookup(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, u)
}

func (h *UserHandler) getMe(c *gin.Context) {
	response.WriteData(c, http.StatusOK, me(c))
}

func (h *UserHandler) updateMe(c *gin.Context) {
	var req service.UpdateUserInput
	if err := bindJSON(c, &req); err != nil {
		response.WriteError(c, err)
		return
	}
	u, err := h.svc.UpdateMe(c.Request.Context(), me(c), req)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, u)
}

func (h *UserHandler) delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.WriteError(c, err)
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		response.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
