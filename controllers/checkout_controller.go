package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "storefront-service/common/errors"
	"storefront-service/middleware"
	"storefront-service/models"
)

type CheckoutService interface {
	Checkout(ctx context.Context, userID string, req models.CheckoutRequest) (*models.CheckoutResult, error)
}

// placeOrderRequest tells an absent email apart from an empty one.
type placeOrderRequest struct {
	Email     *string `json:"email"`
	AddressID string  `json:"address_id"`
}

type CheckoutController struct {
	checkout CheckoutService
}

func NewCheckoutController(checkout CheckoutService) *CheckoutController {
	return &CheckoutController{checkout: checkout}
}

// PlaceOrder submits the user's cart. When the body has no email field the
// session email is used; an explicit empty email is passed through and rejected.
func (cc *CheckoutController) PlaceOrder(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var body placeOrderRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			apperrors.Respond(c, apperrors.ErrInvalidInput.WithMessage("Invalid checkout request"))
			return
		}
	}
	req := models.CheckoutRequest{AddressID: body.AddressID, Email: middleware.GetEmail(c)}
	if body.Email != nil {
		req.Email = *body.Email
	}

	result, err := cc.checkout.Checkout(c.Request.Context(), userID, req)
	if err != nil {
		appErr := apperrors.From(err)
		_ = c.Error(appErr)
		c.AbortWithStatusJSON(appErr.Code, gin.H{"error": appErr.Message, "result": result})
		return
	}
	c.JSON(http.StatusCreated, result)
}
