package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "storefront-service/common/errors"
	"storefront-service/models"
)

type stubAddresses struct {
	list  []models.Address
	added []models.Address
	err   error
}

func (s *stubAddresses) List(ctx context.Context) ([]models.Address, error) {
	return s.list, s.err
}

func (s *stubAddresses) Add(ctx context.Context, addr models.Address) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.added = append(s.added, addr)
	return "Address added successfully", nil
}

func newAddressRouter(svc AddressService) http.Handler {
	r := newTestRouter("u1", "", "")
	ac := NewAddressController(svc)
	r.GET("/addresses", ac.GetAddresses)
	r.POST("/addresses", ac.AddAddress)
	return r
}

func TestAddressController_List(t *testing.T) {
	svc := &stubAddresses{list: []models.Address{{ID: "a1", FullName: "Jane"}}}

	w := doJSON(newAddressRouter(svc), http.MethodGet, "/addresses", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	addrs := decode(t, w)["addresses"].([]any)
	assert.Len(t, addrs, 1)
	assert.Equal(t, "a1", addrs[0].(map[string]any)["_id"])
}

func TestAddressController_Add(t *testing.T) {
	svc := &stubAddresses{}

	w := doJSON(newAddressRouter(svc), http.MethodPost, "/addresses", map[string]string{
		"fullName": "Jane Doe", "phoneNumber": "9876543210", "pincode": "411001",
		"area": "MG Road", "city": "Pune", "state": "MH",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "/checkout", decode(t, w)["redirect"])
	assert.Equal(t, "411001", svc.added[0].Pincode)
}

func TestAddressController_BackendMessage(t *testing.T) {
	svc := &stubAddresses{err: apperrors.New(http.StatusUnprocessableEntity, "Address limit reached", nil)}

	w := doJSON(newAddressRouter(svc), http.MethodPost, "/addresses", map[string]string{"fullName": "Jane"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "Address limit reached", decode(t, w)["error"])
}
