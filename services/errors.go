package services

import (
	"context"
	"errors"
	"net/http"

	"storefront-service/clients"
	apperrors "storefront-service/common/errors"
)

var (
	ErrProductNotFound = apperrors.New(http.StatusNotFound, "Product not found", nil)
	ErrInvalidQuantity = apperrors.New(http.StatusBadRequest, "Quantity must be a whole number", nil)
	ErrEmailRequired   = apperrors.New(http.StatusBadRequest, "Email is required", nil)
	ErrAddressRequired = apperrors.New(http.StatusBadRequest, "Please select an address", nil)
)

// upstreamError maps client failures onto HTTP-facing application errors.
// Backend business messages pass through verbatim; transport failures keep
// the raw error text.
func upstreamError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return err
	}

	var backendErr *clients.BackendError
	if errors.As(err, &backendErr) {
		return apperrors.New(apperrors.ErrRejected.Code, backendErr.Message, err)
	}
	if errors.Is(err, clients.ErrNoToken) {
		return apperrors.ErrUnauthorized.Wrap(err)
	}
	if errors.Is(err, clients.ErrNotFound) {
		return apperrors.ErrNotFound.Wrap(err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return apperrors.New(http.StatusGatewayTimeout, err.Error(), err)
	}

	var upErr *clients.UpstreamError
	if errors.As(err, &upErr) {
		return apperrors.New(apperrors.ErrBadGateway.Code, upErr.Error(), err)
	}
	return apperrors.ErrInternalServer.Wrap(err)
}

func isNotFound(err error) bool {
	var appErr *apperrors.Error
	return errors.As(err, &appErr) && appErr.Code == http.StatusNotFound
}
