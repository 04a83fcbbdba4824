package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/fabricare-service/internal/model"
	"github.com/maxviazov/fabricare-service/internal/pagination"
	"github.com/maxviazov/fabricare-service/internal/payment"
	"github.com/maxviazov/fabricare-service/internal/service"
	"github.com/maxviazov/fabricare-service/pkg/response"
)

// maxWebhookBody bounds provider deliveries.
const maxWebhookBody = 64 << 10

type OrderHandler struct {
	svc service.OrderService
}

func NewOrderHandler(svc service.OrderService) *OrderHandler { return &OrderHandler{svc: svc} }

// Register mounts the admin order routes; the webhook is public and mounted by the caller.
func (h *OrderHandler) Register(admin *gin.RouterGroup) {
	admin.GET("/orders", h.list)
	admin.DELETE("/orders/:id", h.delete)
}

func (h *OrderHandler) list(c *gin.Context) {
	listed(c, func(lr service.ListRequest) (pagination.Page[model.Order], error) {
		return h.svc.List(c.Request.Context(), lr)
	})
}

func (h *OrderHandler) delete(c *gin.Context) {
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

// webhook verifies the signature over the raw body, so the body is never re-encoded.
func (h *OrderHandler) webhook(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		response.WriteError(c, payment.ErrInvalidEvent)
		return
	}
	if err := h.svc.HandleWebhook(c.Request.Context(), body, c.GetHeader("Stripe-Signature")); err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, gin.H{"success": true})
}
