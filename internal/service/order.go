package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/maxviazov/fabricare-service/internal/cache"
	applog "github.com/maxviazov/fabricare-service/internal/logger"
	"github.com/maxviazov/fabricare-service/internal/model"
	"github.com/maxviazov/fabricare-service/internal/pagination"
	"github.com/maxviazov/fabricare-service/internal/payment"
	"github.com/maxviazov/fabricare-service/internal/repository"
)

// OrderDeps are the collaborators of the order service.
type OrderDeps struct {
	Orders   repository.OrderRepository
	Carts    repository.CartRepository
	Users    repository.UserRepository
	Products repository.ProductRepository
	Tx       repository.TxManager
	Gateway  payment.Gateway
}

type orderService struct {
	OrderDeps
	list  *pagination.Responder[model.Order]
	inval *cache.Invalidator
	log   zerolog.Logger
}

func NewOrderService(deps OrderDeps, c cache.Cache, lists ListSettings, logger zerolog.Logger) OrderService {
	l := logger.With().Str("module", "service").Str("component", "order").Logger()
	return &orderService{
		OrderDeps: deps,
		list:      newResponder[model.Order](lists, c, l),
		inval:     cache.NewInvalidator(c, l),
		log:       l,
	}
}

func (s *orderService) List(ctx context.Context, lr ListRequest) (pagination.Page[model.Order], error) {
	page, err := s.list.Respond(ctx, lr.Key, lr.Page, loaderOf(s.Orders.List()))
	if err != nil && !errors.Is(err, pagination.ErrInvalidRequest) {
		applog.Ctx(ctx, s.log).Error().Err(err).Str("key", lr.Key).Msg("list orders failed")
	}
	return page, err
}

func (s *orderService) Delete(ctx context.Context, id int64) error {
	if err := s.Orders.Delete(ctx, id); err != nil {
		return err
	}
	s.inval.Invalidate(ctx, "order deleted")
	return nil
}

// HandleWebhook verifies a payment provider delivery and reconciles it.
// Deliveries that cannot be matched to a customer or a cart are acknowledged and logged.
func (s *orderService) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	ev, err := s.Gateway.ParseEvent(body, signature)
	if err != nil {
		applog.Ctx(ctx, s.log).Warn().Err(err).Msg("webhook rejected")
		return err
	}
	l := applog.Ctx(ctx, s.log).With().Str("event_id", ev.ID).Str("event_type", ev.Type).Logger()

	switch ev.Type {
	case payment.EventCheckoutCompleted:
		return s.completeCheckout(ctx, ev, l)
	case payment.EventPaymentFailed:
		l.Warn().Str("customer_email", ev.CustomerEmail).Str("payment_intent", ev.ObjectID).Msg("payment failed; cart kept")
		return nil
	default:
		l.Debug().Msg("webhook event ignored")
		return nil
	}
}

func (s *orderService) completeCheckout(ctx context.Context, ev payment.Event, l zerolog.Logger) error {
	sess, err := s.Gateway.GetSession(ctx, ev.ObjectID)
	if err != nil {
		l.Error().Err(err).Str("session_id", ev.ObjectID).Msg("retrieve checkout session failed")
		return err
	}
	email := sess.CustomerEmail
	if email == "" {
		email = ev.CustomerEmail
	}
	user, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			l.Warn().Str("customer_email", email).Msg("checkout completed for unknown customer")
			return nil
		}
		return err
	}

	rec := orderRecord{Status: sess.Status, PaymentID: sess.ID}
	if err := checkStruct(rec); err != nil {
		l.Error().Err(err).Interface("field_errors", FieldErrors(err)).Msg("checkout session not recordable")
		return err
	}

	var created *model.Order
	err = s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		cleared, err := s.Carts.Clear(ctx, user.ID)
		if err != nil {
			return err
		}
		if cleared == 0 {
			return nil
		}
		productIDs, err := s.Products.IDsByTitles(ctx, sess.Descriptions)
		if err != nil {
			return err
		}
		o, err := s.Orders.Create(ctx, model.Order{
			Price:      decimal.New(sess.AmountTotal, -2),
			Status:     rec.Status,
			PaymentID:  rec.PaymentID,
			CustomerID: user.ID,
		}, productIDs)
		if err != nil {
			return err
		}
		created = &o
		return nil
	})
	if err != nil {
		l.Error().Err(err).Int64("user_id", user.ID).Msg("order reconciliation failed")
		return err
	}
	if created == nil {
		l.Info().Int64("user_id", user.ID).Msg("checkout completed with an empty cart; nothing to record")
		return nil
	}
	s.inval.Invalidate(ctx, "order created")
	l.Info().Int64("order_id", created.ID).Int64("user_id", user.ID).Str("price", created.Price.String()).Msg("order created")
	return nil
}
