package controllers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-service/services"
)

type stubSeller struct {
	sellerID string
	form     services.ProductForm
	contents []string
}

func (s *stubSeller) AddProduct(ctx context.Context, sellerID string, form services.ProductForm) (string, error) {
	s.sellerID = sellerID
	s.form = form
	for _, img := range form.Images {
		b, _ := io.ReadAll(img.Content)
		s.contents = append(s.contents, string(b))
	}
	return "Upload successful", nil
}

func (s *stubSeller) MaxImages() int { return 2 }

func multipartRequest(t *testing.T, fields map[string]string, files map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for name, content := range files {
		fw, err := mw.CreateFormFile("images", name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/seller/products", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestSellerController_AddProduct(t *testing.T) {
	svc := &stubSeller{}
	r := newTestRouter("seller-1", "", "seller")
	r.POST("/seller/products", NewSellerController(svc, 1<<20).AddProduct)

	req := multipartRequest(t, map[string]string{
		"name": "Lamp", "description": "Desk lamp", "category": "Home", "price": "19.99", "offerPrice": "14.99",
	}, map[string]string{"a.png": "img-bytes"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "seller-1", svc.sellerID)
	assert.Equal(t, "Lamp", svc.form.Name)
	assert.Equal(t, "14.99", svc.form.OfferPrice)
	require.Len(t, svc.form.Images, 1)
	assert.Equal(t, "a.png", svc.form.Images[0].Filename)
	assert.Equal(t, []string{"img-bytes"}, svc.contents)
}

func TestSellerController_TooManyImages(t *testing.T) {
	svc := &stubSeller{}
	r := newTestRouter("seller-1", "", "seller")
	r.POST("/seller/products", NewSellerController(svc, 1<<20).AddProduct)

	req := multipartRequest(t, map[string]string{"name": "Lamp"}, map[string]string{"a.png": "1", "b.png": "2", "c.png": "3"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, svc.sellerID)
}

func TestSellerController_NotMultipart(t *testing.T) {
	r := newTestRouter("seller-1", "", "seller")
	r.POST("/seller/products", NewSellerController(&stubSeller{}, 1<<20).AddProduct)

	w := doJSON(r, http.MethodPost, "/seller/products", map[string]string{"name": "Lamp"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSellerController_UploadTooLarge(t *testing.T) {
	r := newTestRouter("seller-1", "", "seller")
	r.POST("/seller/products", NewSellerController(&stubSeller{}, 64).AddProduct)

	req := multipartRequest(t, map[string]string{"name": "Lamp"}, map[string]string{"a.png": string(make([]byte, 1024))})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
