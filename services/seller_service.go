package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront-service/clients"
	apperrors "storefront-service/common/errors"
	"storefront-service/common/logger"
	awspkg "storefront-service/pkg/aws"
)

// ProductUploader sends new products to the backend.
type ProductUploader interface {
	AddProduct(ctx context.Context, p clients.NewProduct) (string, error)
}

// CatalogInvalidator drops cached catalog listings.
type CatalogInvalidator interface {
	Invalidate(ctx context.Context)
}

// ProductForm is the seller's product upload form.
type ProductForm struct {
	Name        string `validate:"required,max=200"`
	Description string `validate:"required,max=5000"`
	Category    string `validate:"required,max=100"`
	Price       string `validate:"required"`
	OfferPrice  string
	Images      []clients.ImageFile
}

type SellerService struct {
	backend   ProductUploader
	catalog   CatalogInvalidator
	metrics   MetricsRecorder
	maxImages int
}

func NewSellerService(backend ProductUploader, catalog CatalogInvalidator, metrics MetricsRecorder, maxImages int) *SellerService {
	if maxImages <= 0 {
		maxImages = 5
	}
	return &SellerService{backend: backend, catalog: catalog, metrics: metrics, maxImages: maxImages}
}

func (s *SellerService) MaxImages() int { return s.maxImages }

// AddProduct validates the form and uploads it with its images.
func (s *SellerService) AddProduct(ctx context.Context, sellerID string, form ProductForm) (string, error) {
	trimAll(&form.Name, &form.Description, &form.Category, &form.Price, &form.OfferPrice)
	if err := validate.Struct(form); err != nil {
		return "", validationError(err)
	}

	price, err := decimal.NewFromString(form.Price)
	if err != nil || !price.IsPositive() {
		return "", apperrors.ErrValidation.WithMessage("Price must be a positive number")
	}
	if form.OfferPrice != "" {
		offer, err := decimal.NewFromString(form.OfferPrice)
		if err != nil || !offer.IsPositive() {
			return "", apperrors.ErrValidation.WithMessage("Offer price must be a positive number")
		}
		if offer.GreaterThan(price) {
			return "", apperrors.ErrValidation.WithMessage("Offer price cannot exceed price")
		}
		form.OfferPrice = offer.Round(2).StringFixed(2)
	}
	if len(form.Images) == 0 {
		return "", apperrors.ErrValidation.WithMessage("At least one image is required")
	}
	if len(form.Images) > s.maxImages {
		return "", apperrors.ErrValidation.WithMessage(fmt.Sprintf("At most %d images are allowed", s.maxImages))
	}

	msg, err := s.backend.AddProduct(ctx, clients.NewProduct{
		Name:        form.Name,
		Description: form.Description,
		Category:    form.Category,
		Price:       price.Round(2).StringFixed(2),
		OfferPrice:  form.OfferPrice,
		Images:      form.Images,
	})
	if err != nil {
		return "", upstreamError(err)
	}

	if s.catalog != nil {
		s.catalog.Invalidate(ctx)
	}
	recordCount(s.metrics, awspkg.MetricProductsCreated, map[string]string{"Category": form.Category})
	logger.Info(ctx, "product uploaded",
		zap.String("seller_id", sellerID),
		zap.String("category", form.Category),
		zap.Int("images", len(form.Images)))
	return msg, nil
}
