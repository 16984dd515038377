package controllers

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront-service/clients"
	apperrors "storefront-service/common/errors"
	"storefront-service/common/logger"
	"storefront-service/services"
)

type SellerService interface {
	AddProduct(ctx context.Context, sellerID string, form services.ProductForm) (string, error)
	MaxImages() int
}

type SellerController struct {
	sellers        SellerService
	maxUploadBytes int64
}

func NewSellerController(sellers SellerService, maxUploadBytes int64) *SellerController {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 20 << 20
	}
	return &SellerController{sellers: sellers, maxUploadBytes: maxUploadBytes}
}

// AddProduct accepts the multipart product form and forwards it to the backend.
func (sc *SellerController) AddProduct(c *gin.Context) {
	sellerID, ok := requireUser(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, sc.maxUploadBytes)
	mf, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			apperrors.Respond(c, apperrors.New(http.StatusRequestEntityTooLarge, "Upload is too large", err))
			return
		}
		apperrors.Respond(c, apperrors.ErrInvalidInput.WithMessage("Expected a multipart form"))
		return
	}

	headers := mf.File["images"]
	if len(headers) > sc.sellers.MaxImages() {
		apperrors.Respond(c, apperrors.ErrValidation.WithMessage(fmt.Sprintf("At most %d images are allowed", sc.sellers.MaxImages())))
		return
	}

	images := make([]clients.ImageFile, 0, len(headers))
	var opened []multipart.File
	defer func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}()
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			logger.Warn(c, "failed to open uploaded image", zap.String("filename", fh.Filename), zap.Error(err))
			apperrors.Respond(c, apperrors.ErrInvalidInput.WithMessage("Could not read image "+fh.Filename))
			return
		}
		opened = append(opened, f)
		images = append(images, clients.ImageFile{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Content:     f,
		})
	}

	form := services.ProductForm{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		Category:    c.PostForm("category"),
		Price:       c.PostForm("price"),
		OfferPrice:  c.PostForm("offerPrice"),
		Images:      images,
	}

	msg, err := sc.sellers.AddProduct(c.Request.Context(), sellerID, form)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": msg})
}
