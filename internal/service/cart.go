package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/maxviazov/fabricare-service/internal/cache"
	applog "github.com/maxviazov/fabricare-service/internal/logger"
	"github.com/maxviazov/fabricare-service/internal/model"
	"github.com/maxviazov/fabricare-service/internal/pagination"
	"github.com/maxviazov/fabricare-service/internal/payment"
	"github.com/maxviazov/fabricare-service/internal/repository"
)

// ErrEmptyCart is returned by Checkout when there is nothing to pay for.
var ErrEmptyCart = fmt.Errorf("your cart is empty: %w", repository.ErrNotFound)

// extraDataKey holds the cart totals next to a customer's cart listing.
const extraDataKey = "extra_data"

type cartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	users    repository.UserRepository
	gateway  payment.Gateway
	list     *pagination.Responder[model.CartItem]
	inval    *cache.Invalidator
	log      zerolog.Logger
}

func NewCartService(
	carts repository.CartRepository,
	products repository.ProductRepository,
	users repository.UserRepository,
	gateway payment.Gateway,
	c cache.Cache,
	lists ListSettings,
	logger zerolog.Logger,
) CartService {
	l := logger.With().Str("module", "service").Str("component", "cart").Logger()
	return &cartService{
		carts:    carts,
		products: products,
		users:    users,
		gateway:  gateway,
		list:     newResponder[model.CartItem](lists, c, l),
		inval:    cache.NewInvalidator(c, l),
		log:      l,
	}
}

// Add puts one unit of the product in the caller's cart; a second add bumps the quantity.
func (s *cartService) Add(ctx context.Context, me model.User, productID int64, in CartInput) (model.CartItem, error) {
	in.Size = strings.TrimSpace(in.Size)
	if err := checkStruct(in); err != nil {
		return model.CartItem{}, err
	}
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return model.CartItem{}, err
	}
	item, err := s.carts.Add(ctx, me.ID, productID, in.Size)
	if err != nil {
		applog.Ctx(ctx, s.log).Error().Err(err).Int64("user_id", me.ID).Int64("product_id", productID).Msg("add to cart failed")
		return model.CartItem{}, err
	}
	s.inval.Invalidate(ctx, "cart item added")
	return item, nil
}

func (s *cartService) RemoveMine(ctx context.Context, me model.User, id int64) error {
	if err := s.carts.DeleteForCustomer(ctx, me.ID, id); err != nil {
		return err
	}
	s.inval.Invalidate(ctx, "cart item removed")
	return nil
}

func (s *cartService) Remove(ctx context.Context, id int64) error {
	if err := s.carts.Delete(ctx, id); err != nil {
		return err
	}
	s.inval.Invalidate(ctx, "cart item removed")
	return nil
}

func (s *cartService) ListAll(ctx context.Context, lr ListRequest) (pagination.Page[model.CartItem], error) {
	return s.respond(ctx, lr, loaderOf(s.carts.List()))
}

// ListMine lists the caller's cart with its pre-tax and taxed totals as extra data.
func (s *cartService) ListMine(ctx context.Context, me model.User, lr ListRequest) (pagination.Page[model.CartItem], error) {
	load := func(ctx context.Context) (pagination.Query[model.CartItem], pagination.Extra, error) {
		total, err := s.carts.Total(ctx, me.ID)
		if err != nil {
			return nil, nil, err
		}
		extra := pagination.Extra{extraDataKey: model.NewCartTotals(total)}
		return s.carts.ListByCustomer(me.ID), extra, nil
	}
	return s.respond(ctx, lr.ForUser(me.ID), load)
}

func (s *cartService) ListForUser(ctx context.Context, username string, lr ListRequest) (pagination.Page[model.CartItem], error) {
	load := func(ctx context.Context) (pagination.Query[model.CartItem], pagination.Extra, error) {
		u, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
		if err != nil {
			return nil, nil, err
		}
		return s.carts.ListByCustomer(u.ID), nil, nil
	}
	return s.respond(ctx, lr, load)
}

func (s *cartService) respond(ctx context.Context, lr ListRequest, load pagination.Loader[model.CartItem]) (pagination.Page[model.CartItem], error) {
	page, err := s.list.Respond(ctx, lr.Key, lr.Page, load)
	if err != nil && !errors.Is(err, pagination.ErrInvalidRequest) && !errors.Is(err, repository.ErrNotFound) {
		applog.Ctx(ctx, s.log).Error().Err(err).Str("key", lr.Key).Msg("list carts failed")
	}
	return page, err
}

func (s *cartService) Checkout(ctx context.Context, me model.User) (string, error) {
	items, err := s.carts.ItemsForCustomer(ctx, me.ID)
	if err != nil {
		return "", err
	}
	if len(items) == 0 {
		return "", ErrEmptyCart
	}

	req := payment.CheckoutRequest{CustomerEmail: me.Email}
	for _, it := range items {
		req.Items = append(req.Items, payment.LineItem{
			Name:       it.Product.Title,
			UnitAmount: int64(it.Product.Price) * 100,
			Quantity:   int64(it.Quantity),
		})
	}
	url, err := s.gateway.CreateCheckoutSession(ctx, req)
	if err != nil {
		applog.Ctx(ctx, s.log).Error().Err(err).Int64("user_id", me.ID).Msg("checkout session failed")
		return "", err
	}
	applog.Ctx(ctx, s.log).Info().Int64("user_id", me.ID).Int("lines", len(items)).Msg("checkout started")
	return url, nil
}
