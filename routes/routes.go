package routes

import (
	"github.com/gin-gonic/gin"

	"storefront-service/controllers"
	"storefront-service/middleware"
)

// Controllers groups every HTTP handler the service exposes.
type Controllers struct {
	Health   *controllers.HealthController
	Catalog  *controllers.CatalogController
	Cart     *controllers.CartController
	Checkout *controllers.CheckoutController
	Address  *controllers.AddressController
	Seller   *controllers.SellerController
}

const sellerRole = "seller"

func RegisterRoutes(r *gin.Engine, ctrl Controllers, sessions middleware.SessionValidator) {
	r.GET("/health", ctrl.Health.Health)

	// Public catalog browsing
	products := r.Group("/products")
	{
		products.GET("", ctrl.Catalog.ListProducts)
		products.GET("/categories", ctrl.Catalog.Categories)
		products.GET("/:id", ctrl.Catalog.GetProduct)
		products.GET("/:id/related", ctrl.Catalog.Related)
	}

	authed := r.Group("/")
	authed.Use(middleware.AuthMiddleware(sessions))

	cart := authed.Group("/cart")
	{
		cart.GET("", ctrl.Cart.GetCart)
		cart.GET("/count", ctrl.Cart.Count)
		cart.GET("/quote", ctrl.Cart.Quote)
		cart.POST("/add", ctrl.Cart.AddItem)
		cart.PUT("/items/:product_id", ctrl.Cart.UpdateQuantity)
		cart.DELETE("/items/:product_id", ctrl.Cart.RemoveItem)
		cart.DELETE("/clear", ctrl.Cart.ClearCart)
		cart.POST("/buy-now/:product_id", ctrl.Cart.BuyNow)
	}

	authed.POST("/checkout", ctrl.Checkout.PlaceOrder)

	addresses := authed.Group("/addresses")
	{
		addresses.GET("", ctrl.Address.GetAddresses)
		addresses.POST("", ctrl.Address.AddAddress)
	}

	seller := authed.Group("/seller", middleware.RequireRole(sellerRole))
	{
		seller.POST("/products", ctrl.Seller.AddProduct)
	}
}
