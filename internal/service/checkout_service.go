package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fjod/go_cart/storefront/internal/apperr"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/events"
	"github.com/fjod/go_cart/storefront/internal/lock"
	"github.com/fjod/go_cart/storefront/internal/payment"
	"github.com/fjod/go_cart/storefront/internal/repository"
	"github.com/fjod/go_cart/storefront/internal/validation"
	"github.com/fjod/go_cart/storefront/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// persistTimeout bounds the writes that follow a captured charge.
const persistTimeout = 10 * time.Second

type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (*lock.Lock, error)
}

type CheckoutService struct {
	users     repository.UserRepository
	products  repository.ProductRepository
	orders    repository.OrderRepository
	charger   payment.Charger
	locker    Locker
	publisher events.Publisher
	lockTTL   time.Duration
	views     viewBuilder
}

// NewCheckoutService wires the orchestrator. lockTTL bounds how long a
// crashed checkout can block the next one for the same user and should
// exceed the payment timeout.
func NewCheckoutService(
	users repository.UserRepository,
	products repository.ProductRepository,
	orders repository.OrderRepository,
	charger payment.Charger,
	locker Locker,
	publisher events.Publisher,
	lockTTL time.Duration,
) *CheckoutService {
	return &CheckoutService{
		users:     users,
		products:  products,
		orders:    orders,
		charger:   charger,
		locker:    locker,
		publisher: publisher,
		lockTTL:   lockTTL,
		views:     viewBuilder{products: products, orders: orders},
	}
}

// CreateOrder charges the user for the snapshot, persists the order and
// moves the user's cart into it. Steps run strictly in that order; a failed
// charge leaves no trace.
func (s *CheckoutService) CreateOrder(ctx context.Context, userID primitive.ObjectID, snapshot domain.CartSnapshot, paymentToken string) (*domain.OrderView, error) {
	log := logger.FromContext(ctx).With(slog.String(logger.UserID, userID.Hex()))

	held, err := s.locker.Acquire(ctx, "checkout:"+userID.Hex(), s.lockTTL)
	if errors.Is(err, lock.ErrLocked) {
		return nil, apperr.Conflict(ErrCheckoutInFlight.Error())
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		if err := held.Release(releaseCtx); err != nil {
			log.Warn("failed to release checkout lock", logger.Err(err))
		}
	}()

	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Forbidden("Forbidden")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}

	lineItems := snapshot.LineItems()
	if len(lineItems) == 0 {
		return nil, apperr.BadRequest(ErrEmptyCart.Error())
	}
	if err := validation.Cart(toCartItems(lineItems)); err != nil {
		return nil, apperr.FromPersistence(err)
	}

	price, err := s.priceOf(ctx, lineItems)
	if err != nil {
		return nil, err
	}

	charge, err := s.charger.Charge(ctx, payment.ChargeRequest{
		Amount:      payment.MinorUnits(price),
		Currency:    domain.Currency,
		Source:      paymentToken,
		Description: "order for " + user.Email,
	})
	if err != nil {
		return nil, s.chargeError(log, err)
	}
	log = log.With(slog.String("charge_id", charge.ID))

	// The charge is captured: the remaining writes must not be abandoned
	// because the client went away or the request timed out.
	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	order := &domain.Order{
		Price:    price,
		Products: lineItems,
		User:     user.ID,
		StripeID: charge.ID,
	}
	if err := validation.Order(order); err != nil {
		log.Error("charge captured but order is invalid", logger.Err(err))
		return nil, apperr.FromPersistence(err)
	}
	if err := s.orders.Create(persistCtx, order); err != nil {
		log.Error("charge captured but order was not persisted", logger.Err(err))
		return nil, apperr.FromPersistence(err)
	}
	log = log.With(slog.String(logger.OrderID, order.ID.Hex()))

	_, recordErr := s.users.RecordOrder(persistCtx, user.ID, order.ID, order.CreatedAt)
	if recordErr != nil {
		log.Error("order persisted but not recorded on user", logger.Err(recordErr))
	}

	// Published even when recording failed: the reconciler repairs the user.
	if err := s.publisher.PublishOrderPlaced(persistCtx, order); err != nil {
		log.Warn("failed to publish order event", logger.Err(err))
	}

	if recordErr != nil {
		return nil, apperr.FromPersistence(recordErr)
	}

	view, err := s.views.Order(persistCtx, order)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	log.Info("order placed", slog.Float64("price", price))
	return view, nil
}

// priceOf re-prices the line items from the current catalog. Prices sent by
// the client are never used.
func (s *CheckoutService) priceOf(ctx context.Context, items []domain.LineItem) (float64, error) {
	products, err := s.products.FindByIDs(ctx, lineItemIDs(items))
	if err != nil {
		return 0, apperr.Internal(err)
	}
	unit := make(map[primitive.ObjectID]float64, len(products))
	for _, p := range products {
		unit[p.ID] = p.Price
	}

	var total float64
	for _, it := range items {
		price, ok := unit[it.Product]
		if !ok {
			return 0, productNotFound(it.Product)
		}
		total += price * float64(it.Quantity)
	}
	return total, nil
}

func (s *CheckoutService) chargeError(log *slog.Logger, err error) error {
	var declined *payment.DeclinedError
	switch {
	case errors.As(err, &declined):
		return apperr.Unprocessable(fmt.Sprintf("Payment failed: %s", declined.Reason))
	case errors.Is(err, payment.ErrOutcomeUnknown):
		log.Error("charge outcome unknown", logger.Err(err))
	default:
		log.Error("charge failed", logger.Err(err))
	}
	return apperr.Internal(err)
}

func toCartItems(items []domain.LineItem) []domain.CartItem {
	out := make([]domain.CartItem, len(items))
	for i, it := range items {
		out[i] = domain.CartItem{Product: it.Product, Quantity: it.Quantity}
	}
	return out
}
