package services

import (
	"context"

	"go.uber.org/zap"

	"storefront-service/common/logger"
	"storefront-service/models"
)

// AddressBook reads and creates the signed-in user's addresses on the backend.
type AddressBook interface {
	GetAddresses(ctx context.Context) ([]models.Address, error)
	AddAddress(ctx context.Context, addr models.Address) (string, error)
}

type AddressService struct {
	backend AddressBook
}

func NewAddressService(backend AddressBook) *AddressService {
	return &AddressService{backend: backend}
}

func (s *AddressService) List(ctx context.Context) ([]models.Address, error) {
	addrs, err := s.backend.GetAddresses(ctx)
	if err != nil {
		return nil, upstreamError(err)
	}
	return addrs, nil
}

// Add validates the form locally before sending it; invalid input never
// reaches the backend.
func (s *AddressService) Add(ctx context.Context, addr models.Address) (string, error) {
	addr.ID = ""
	trimAll(&addr.FullName, &addr.PhoneNumber, &addr.Pincode, &addr.Area, &addr.City, &addr.State)
	if err := validate.Struct(addr); err != nil {
		return "", validationError(err)
	}

	msg, err := s.backend.AddAddress(ctx, addr)
	if err != nil {
		return "", upstreamError(err)
	}
	logger.Info(ctx, "address added", zap.String("city", addr.City))
	return msg, nil
}
