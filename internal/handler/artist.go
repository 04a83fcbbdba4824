package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/fabricare-service/internal/model"
	"github.com/maxviazov/fabricare-service/internal/pagination"
	"github.com/maxviazov/fabricare-service/internal/service"
	"github.com/maxviazov/fabricare-service/pkg/response"
)

type ArtistHandler struct {
	svc service.ArtistService
}

func NewArtistHandler(svc service.ArtistService) *ArtistHandler { return &ArtistHandler{svc: svc} }

func (h *ArtistHandler) Register(authed, admin *gin.RouterGroup) {
	authed.GET("/artists", h.list)
	authed.GET("/artist-names", h.names)
	authed.GET("/artists/:name", h.getByName)
	admin.POST("/artists", h.create)
	admin.DELETE("/artists/:id", h.delete)
}

func (h *ArtistHandler) create(c *gin.Context) {
	var req service.ArtistInput
	if err := bindJSON(c, &req); err != nil {
		response.WriteError(c, err)
		return
	}
	a, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, a)
}

func (h *ArtistHandler) list(c *gin.Context) {
	listed(c, func(lr service.ListRequest) (pagination.Page[model.Artist], error) {
		return h.svc.List(c.Request.Context(), lr)
	})
}

func (h *ArtistHandler) names(c *gin.Context) {
	names, err := h.svc.Names(c.Request.Context())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, gin.H{"artists": names})
}

func (h *ArtistHandler) getByName(c *gin.Context) {
	a, err := h.svc.GetByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, a)
}

func (h *ArtistHandler) delete(c *gin.Context) {
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
