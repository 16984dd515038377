package controllers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "storefront-service/common/errors"
	"storefront-service/middleware"
	"storefront-service/models"
)

// CartService is the cart behaviour the controller depends on.
type CartService interface {
	GetCart(ctx context.Context, userID string) (*models.Cart, error)
	Add(ctx context.Context, userID, productID string) (*models.Cart, error)
	SetQuantity(ctx context.Context, userID, productID string, qty int) (*models.Cart, error)
	Remove(ctx context.Context, userID, productID string) (*models.Cart, error)
	BuyNow(ctx context.Context, userID, productID string) (*models.Cart, error)
	Count(ctx context.Context, userID string) (int, error)
	Clear(ctx context.Context, userID string) error
	Quote(ctx context.Context, userID string) (models.Quote, error)
}

type CartController struct {
	carts CartService
}

func NewCartController(carts CartService) *CartController {
	return &CartController{carts: carts}
}

type addItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
}

// maxLineQuantity caps what a client may set a single line to.
const maxLineQuantity = 9999

type setQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required,max=9999"`
}

// GetCart returns the current cart for a user
func (cc *CartController) GetCart(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	cart, err := cc.carts.GetCart(c.Request.Context(), userID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// Count returns the number of units in the cart for the header badge.
func (cc *CartController) Count(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	n, err := cc.carts.Count(c.Request.Context(), userID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

// Quote returns the priced cart: lines, subtotal, shipping, tax and total.
func (cc *CartController) Quote(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	q, err := cc.carts.Quote(c.Request.Context(), userID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

// AddItem adds one unit of a product to the cart
func (cc *CartController) AddItem(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, apperrors.ErrInvalidInput.WithMessage("product_id is required"))
		return
	}
	cart, err := cc.carts.Add(c.Request.Context(), userID, req.ProductID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item added to cart", "cart": cart})
}

// UpdateQuantity sets the quantity of a line; zero removes it.
func (cc *CartController) UpdateQuantity(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req setQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, apperrors.ErrInvalidInput.WithMessage(fmt.Sprintf("quantity must be a whole number up to %d", maxLineQuantity)))
		return
	}
	cart, err := cc.carts.SetQuantity(c.Request.Context(), userID, c.Param("product_id"), *req.Quantity)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": cart})
}

func (cc *CartController) RemoveItem(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	cart, err := cc.carts.Remove(c.Request.Context(), userID, c.Param("product_id"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item removed", "cart": cart})
}

func (cc *CartController) ClearCart(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	if err := cc.carts.Clear(c.Request.Context(), userID); err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}

// BuyNow puts the product in the cart if missing and sends the client to the cart.
func (cc *CartController) BuyNow(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	cart, err := cc.carts.BuyNow(c.Request.Context(), userID, c.Param("product_id"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": cart, "redirect": "/cart"})
}

func requireUser(c *gin.Context) (string, bool) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}
	return userID, true
}
