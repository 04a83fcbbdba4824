package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/maxviazov/fabricare-service/internal/model"
	"github.com/maxviazov/fabricare-service/internal/service"
)

// Services bundles the use cases exposed over HTTP.
type Services struct {
	Users    service.UserService
	Tokens   service.TokenService
	Artists  service.ArtistService
	Products service.ProductService
	Carts    service.CartService
	Orders   service.OrderService
}

// Register mounts all public routes on the given engine.
func Register(r *gin.Engine, repo Pinger, svc Services, logger zerolog.Logger) {
	log := logger.With().Str("module", "handler").Logger()
	h := NewHealthHandler(repo)

	r.Use(RequestID(), AccessLog(log))

	// Health probes
	r.GET("/live", h.Liveness)
	r.GET("/ready", h.Readiness)

	RegisterDocs(r)

	api := r.Group(APIPrefix)
	{
		api.GET("/health", h.Readiness)
		health := api.Group("/health")
		{
			health.GET("/live", h.Liveness)
			health.GET("/ready", h.Readiness)
		}

		// Public: registration, login, the product catalogue and provider callbacks.
		NewTokenHandler(svc.Users, svc.Tokens).Register(api)
		users := NewUserHandler(svc.Users)
		products := NewProductHandler(svc.Products)
		orders := NewOrderHandler(svc.Orders)
		api.POST("/users", users.create)
		api.GET("/products", products.list)
		api.POST("/webhooks/stripe", orders.webhook)

		authed := api.Group("", Authenticate(svc.Tokens, svc.Users))
		admin := authed.Group("", RequireRoles(model.RoleAdmin))

		users.Register(authed, admin)
		NewArtistHandler(svc.Artists).Register(authed, admin)
		products.Register(authed, admin)
		NewCartHandler(svc.Carts).Register(authed, admin)
		orders.Register(admin)
	}
}
