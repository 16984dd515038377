package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "storefront-service/common/errors"
	"storefront-service/models"
)

type stubCheckout struct {
	got    models.CheckoutRequest
	userID string
	err    error
}

func (s *stubCheckout) Checkout(ctx context.Context, userID string, req models.CheckoutRequest) (*models.CheckoutResult, error) {
	s.userID = userID
	s.got = req
	if s.err != nil {
		return &models.CheckoutResult{State: models.CheckoutFailed, Message: apperrors.From(s.err).Message}, s.err
	}
	return &models.CheckoutResult{
		State:    models.CheckoutSuccess,
		Message:  "Order Placed",
		Redirect: "/order-confirmation",
	}, nil
}

func newCheckoutRouter(svc CheckoutService, email string) http.Handler {
	r := newTestRouter("u1", email, "")
	r.POST("/checkout", NewCheckoutController(svc).PlaceOrder)
	return r
}

func TestCheckoutController_Success(t *testing.T) {
	svc := &stubCheckout{}
	r := newCheckoutRouter(svc, "session@example.com")

	w := doJSON(r, http.MethodPost, "/checkout", map[string]string{"address_id": "a1", "email": "form@example.com"})
	require.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, "success", body["state"])
	assert.Equal(t, "/order-confirmation", body["redirect"])
	assert.Equal(t, "u1", svc.userID)
	assert.Equal(t, models.CheckoutRequest{Email: "form@example.com", AddressID: "a1"}, svc.got)
}

func TestCheckoutController_EmailFallsBackToSession(t *testing.T) {
	svc := &stubCheckout{}
	r := newCheckoutRouter(svc, "session@example.com")

	w := doJSON(r, http.MethodPost, "/checkout", map[string]string{"address_id": "a1"})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "session@example.com", svc.got.Email)
}

func TestCheckoutController_Failure(t *testing.T) {
	svc := &stubCheckout{err: apperrors.New(http.StatusUnprocessableEntity, "Out of stock", nil)}
	r := newCheckoutRouter(svc, "session@example.com")

	w := doJSON(r, http.MethodPost, "/checkout", map[string]string{"address_id": "a1"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Out of stock", body["error"])
	assert.Equal(t, "failed", body["result"].(map[string]any)["state"])
}

func TestCheckoutController_MalformedBody(t *testing.T) {
	r := newCheckoutRouter(&stubCheckout{}, "")

	w := doJSON(r, http.MethodPost, "/checkout", "not an object")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckoutController_ExplicitEmptyEmailNotReplaced(t *testing.T) {
	svc := &stubCheckout{}
	r := newCheckoutRouter(svc, "session@example.com")

	doJSON(r, http.MethodPost, "/checkout", map[string]string{"address_id": "a1", "email": ""})
	assert.Equal(t, "", svc.got.Email)
	assert.Equal(t, "a1", svc.got.AddressID)
}
