package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/fabricare-service/internal/model"
	"github.com/maxviazov/fabricare-service/internal/pagination"
	"github.com/maxviazov/fabricare-service/internal/service"
	"github.com/maxviazov/fabricare-service/pkg/response"
)

type CartHandler struct {
	svc service.CartService
}

func NewCartHandler(svc service.CartService) *CartHandler { return &CartHandler{svc: svc} }

func (h *CartHandler) Register(authed, admin *gin.RouterGroup) {
	authed.GET("/me/carts", h.listMine)
	authed.POST("/products/carts/:item_id", h.add)
	authed.DELETE("/me/carts/:id", h.removeMine)
	authed.POST("/create-checkout-session", h.checkout)
	admin.GET("/carts", h.listAll)
	admin.GET("/carts/:name", h.listForUser)
	admin.DELETE("/carts/:id", h.remove)
}

func (h *CartHandler) add(c *gin.Context) {
	productID, err := pathID(c, "item_id")
	if err != nil {
		response.WriteError(c, err)
		return
	}
	var req service.CartInput
	if err := bindJSON(c, &req); err != nil {
		response.WriteError(c, err)
		return
	}
	item, err := h.svc.Add(c.Request.Context(), me(c), productID, req)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, item)
}

func (h *CartHandler) removeMine(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.WriteError(c, err)
		return
	}
	if err := h.svc.RemoveMine(c.Request.Context(), me(c), id); err != nil {
		response.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CartHandler) remove(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.WriteError(c, err)
		return
	}
	if err := h.svc.Remove(c.Request.Context(), id); err != nil {
		response.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CartHandler) listMine(c *gin.Context) {
	listed(c, func(lr service.ListRequest) (pagination.Page[model.CartItem], error) {
		return h.svc.ListMine(c.Request.Context(), me(c), lr)
	})
}

func (h *CartHandler) listAll(c *gin.Context) {
	listed(c, func(lr service.ListRequest) (pagination.Page[model.CartItem], error) {
		return h.svc.ListAll(c.Request.Context(), lr)
	})
}

func (h *CartHandler) listForUser(c *gin.Context) {
	listed(c, func(lr service.ListRequest) (pagination.Page[model.CartItem], error) {
		return h.svc.ListForUser(c.Request.Context(), c.Param("name"), lr)
	})
}

func (h *CartHandler) checkout(c *gin.Context) {
	url, err := h.svc.Checkout(c.Request.Context(), me(c))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, gin.H{"session_url": url})
}
