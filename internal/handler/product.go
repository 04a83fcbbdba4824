package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/fabricare-service/internal/model"
	"github.com/maxviazov/fabricare-service/internal/pagination"
	"github.com/maxviazov/fabricare-service/internal/service"
	"github.com/maxviazov/fabricare-service/pkg/response"
)

type ProductHandler struct {
	svc service.ProductService
}

func NewProductHandler(svc service.ProductService) *ProductHandler { return &ProductHandler{svc: svc} }

// Register mounts the authenticated product routes; GET /products is public and mounted by the caller.
func (h *ProductHandler) Register(authed, admin *gin.RouterGroup) {
	authed.GET("/sales/:id", h.getSale)
	authed.GET("/artists/:name/products", h.listByArtist)
	admin.POST("/products", h.create)
	admin.PUT("/products/:id", h.update)
	admin.DELETE("/products/:id", h.delete)
}

func (h *ProductHandler) create(c *gin.Context) {
	var req service.ProductInput
	if err := bindJSON(c, &req); err != nil {
		response.WriteError(c, err)
		return
	}
	p, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, p)
}

func (h *ProductHandler) update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.WriteError(c, err)
		return
	}
	var req service.ProductPatch
	if err := bindJSON(c, &req); err != nil {
		response.WriteError(c, err)
		return
	}
	p, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, p)
}

func (h *ProductHandler) delete(c *gin.Context) {
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

func (h *ProductHandler) getSale(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.WriteError(c, err)
		return
	}
	p, err := h.svc.GetSale(c.Request.Context(), me(c), id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, p)
}

func (h *ProductHandler) list(c *gin.Context) {
	listed(c, func(lr service.ListRequest) (pagination.Page[model.Product], error) {
		return h.svc.List(c.Request.Context(), lr)
	})
}

func (h *ProductHandler) listByArtist(c *gin.Context) {
	listed(c, func(lr service.ListRequest) (pagination.Page[model.Product], error) {
		return h.svc.ListByArtist(c.Request.Context(), c.Param("name"), lr)
	})
}
