package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "storefront-service/common/errors"
	"storefront-service/common/logger"
	"storefront-service/database"
	"storefront-service/models"
	awspkg "storefront-service/pkg/aws"
)

// CheckoutGuard marks a checkout as in flight for a user.
type CheckoutGuard interface {
	AcquireCheckoutLock(ctx context.Context, userID string, ttl time.Duration) (string, error)
	ReleaseCheckoutLock(ctx context.Context, userID, token string) error
}

// OrderSubmitter creates orders on the application backend.
type OrderSubmitter interface {
	CreateOrder(ctx context.Context, order models.CreateOrderRequest) (string, error)
}

// CheckoutConfig holds the tunables of CheckoutService.
type CheckoutConfig struct {
	LockTTL           time.Duration
	ConfirmationRoute string
	OrderTopicArn     string
}

type CheckoutService struct {
	carts     CartStore
	guard     CheckoutGuard
	orders    OrderSubmitter
	quotes    *QuoteService
	publisher awspkg.SNSPublisher
	metrics   MetricsRecorder
	cfg       CheckoutConfig
}

func NewCheckoutService(
	carts CartStore,
	guard CheckoutGuard,
	orders OrderSubmitter,
	quotes *QuoteService,
	publisher awspkg.SNSPublisher,
	metrics MetricsRecorder,
	cfg CheckoutConfig,
) *CheckoutService {
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 30 * time.Second
	}
	if cfg.ConfirmationRoute == "" {
		cfg.ConfirmationRoute = "/order-confirmation"
	}
	return &CheckoutService{
		carts:     carts,
		guard:     guard,
		orders:    orders,
		quotes:    quotes,
		publisher: publisher,
		metrics:   metrics,
		cfg:       cfg,
	}
}

// checkoutAttempt tracks one pass through the checkout state machine.
type checkoutAttempt struct {
	state models.CheckoutState
	trail []models.CheckoutState
}

var checkoutTransitions = map[models.CheckoutState][]models.CheckoutState{
	models.CheckoutIdle:       {models.CheckoutValidating},
	models.CheckoutValidating: {models.CheckoutSubmitting, models.CheckoutFailed},
	models.CheckoutSubmitting: {models.CheckoutSuccess, models.CheckoutFailed},
	models.CheckoutFailed:     {models.CheckoutIdle},
}

func newCheckoutAttempt() *checkoutAttempt {
	return &checkoutAttempt{
		state: models.CheckoutIdle,
		trail: []models.CheckoutState{models.CheckoutIdle},
	}
}

func (a *checkoutAttempt) to(next models.CheckoutState) {
	for _, allowed := range checkoutTransitions[a.state] {
		if allowed == next {
			a.state = next
			a.trail = append(a.trail, next)
			return
		}
	}
	panic(fmt.Sprintf("checkout: illegal transition %s -> %s", a.state, next))
}

// fail records the failure and returns the attempt to idle.
func (a *checkoutAttempt) fail(message string) *models.CheckoutResult {
	a.to(models.CheckoutFailed)
	a.to(models.CheckoutIdle)
	return &models.CheckoutResult{State: models.CheckoutFailed, Trail: a.trail, Message: message}
}

// Checkout validates the user's cart and submits it as one order. The result
// is always non-nil; on failure the cart is left untouched and the error
// carries the message to show. No idempotency key is sent, so a retry after
// an ambiguous network failure can create a second order.
func (s *CheckoutService) Checkout(ctx context.Context, userID string, req models.CheckoutRequest) (*models.CheckoutResult, error) {
	attempt := newCheckoutAttempt()
	attempt.to(models.CheckoutValidating)

	email := strings.TrimSpace(req.Email)
	addressID := strings.TrimSpace(req.AddressID)
	if email == "" {
		return attempt.fail(ErrEmailRequired.Message), ErrEmailRequired
	}
	if addressID == "" {
		return attempt.fail(ErrAddressRequired.Message), ErrAddressRequired
	}

	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		appErr := apperrors.ErrInternalServer.Wrap(err)
		return attempt.fail(appErr.Message), appErr
	}

	order := models.CreateOrderRequest{Address: addressID, Items: make([]models.OrderItem, 0, len(cart.Items))}
	for _, line := range cart.Items {
		if line.Quantity > 0 {
			order.Items = append(order.Items, models.OrderItem{Product: line.ProductID, Quantity: line.Quantity})
		}
	}
	if len(order.Items) == 0 {
		return attempt.fail(apperrors.ErrEmptyCart.Message), apperrors.ErrEmptyCart
	}

	lockToken, err := s.guard.AcquireCheckoutLock(ctx, userID, s.cfg.LockTTL)
	if err != nil {
		if errors.Is(err, database.ErrCheckoutLocked) {
			return attempt.fail(apperrors.ErrCheckoutInProgress.Message), apperrors.ErrCheckoutInProgress
		}
		appErr := apperrors.ErrInternalServer.Wrap(err)
		return attempt.fail(appErr.Message), appErr
	}
	defer func() {
		// release with a fresh context so a cancelled request still frees the guard
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err := s.guard.ReleaseCheckoutLock(releaseCtx, userID, lockToken); err != nil {
			logger.Warn(ctx, "failed to release checkout lock", zap.String("user_id", userID), zap.Error(err))
		}
	}()

	attempt.to(models.CheckoutSubmitting)
	quote := s.quote(ctx, cart.Items)

	message, err := s.orders.CreateOrder(ctx, order)
	if err != nil {
		mapped := upstreamError(err)
		recordCount(s.metrics, awspkg.MetricOrdersFailed, map[string]string{"Reason": failureReason(err)})
		logger.Warn(ctx, "order submission failed", zap.String("user_id", userID), zap.Error(err))
		return attempt.fail(apperrors.From(mapped).Message), mapped
	}
	attempt.to(models.CheckoutSuccess)

	if err := s.carts.DeleteCart(ctx, userID); err != nil {
		logger.Error(ctx, "order placed but cart was not cleared", err, zap.String("user_id", userID))
	}

	recordCount(s.metrics, awspkg.MetricOrdersCreated, nil)
	recordCount(s.metrics, awspkg.MetricCartCheckouts, nil)
	if quote != nil {
		recordValue(s.metrics, awspkg.MetricOrderValue, quote.Total.InexactFloat64(), nil)
	}
	s.publishOrderPlaced(ctx, userID, email, order, quote)

	logger.Info(ctx, "order placed",
		zap.String("user_id", userID),
		zap.String("address_id", addressID),
		zap.Int("lines", len(order.Items)))

	return &models.CheckoutResult{
		State:    models.CheckoutSuccess,
		Trail:    attempt.trail,
		Message:  message,
		Redirect: s.cfg.ConfirmationRoute,
		Order:    &order,
		Quote:    quote,
	}, nil
}

// quote prices the cart for the order event. Pricing is informational here,
// the backend owns the charged amount.
func (s *CheckoutService) quote(ctx context.Context, lines []models.CartItem) *models.Quote {
	if s.quotes == nil {
		return nil
	}
	q, err := s.quotes.Quote(ctx, lines)
	if err != nil {
		logger.Warn(ctx, "checkout quote unavailable", zap.Error(err))
		return nil
	}
	return &q
}

func (s *CheckoutService) publishOrderPlaced(ctx context.Context, userID, email string, order models.CreateOrderRequest, quote *models.Quote) {
	if s.publisher == nil || s.cfg.OrderTopicArn == "" {
		return
	}

	event := models.OrderPlacedEvent{
		EventID:   uuid.NewString(),
		Event:     models.EventOrderPlaced,
		UserID:    userID,
		Email:     email,
		AddressID: order.Address,
		Items:     order.Items,
		Timestamp: time.Now().UTC(),
	}
	if quote != nil {
		event.Total = quote.Total
	}

	payload, err := json.Marshal(event)
	if err != nil {
		logger.Warn(ctx, "failed to marshal order event", zap.Error(err))
		return
	}
	if err := s.publisher.Publish(ctx, s.cfg.OrderTopicArn, models.EventOrderPlaced, payload); err != nil {
		logger.Warn(ctx, "order event publish failed", zap.String("topic", s.cfg.OrderTopicArn), zap.Error(err))
	}
}

func failureReason(err error) string {
	var appErr *apperrors.Error
	mapped := upstreamError(err)
	if errors.As(mapped, &appErr) && appErr.Code == apperrors.ErrRejected.Code {
		return "rejected"
	}
	return "transport"
}
