package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "storefront-service/common/errors"
	"storefront-service/models"
)

type AddressService interface {
	List(ctx context.Context) ([]models.Address, error)
	Add(ctx context.Context, addr models.Address) (string, error)
}

type AddressController struct {
	addresses AddressService
}

func NewAddressController(addresses AddressService) *AddressController {
	return &AddressController{addresses: addresses}
}

func (ac *AddressController) GetAddresses(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
		return
	}
	addrs, err := ac.addresses.List(c.Request.Context())
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"addresses": addrs})
}

// AddAddress saves a new address and points the client back to checkout.
func (ac *AddressController) AddAddress(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
		return
	}
	var addr models.Address
	if err := c.ShouldBindJSON(&addr); err != nil {
		apperrors.Respond(c, apperrors.ErrInvalidInput.WithMessage("Invalid address"))
		return
	}
	msg, err := ac.addresses.Add(c.Request.Context(), addr)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": msg, "redirect": "/checkout"})
}
