package routes

import (
	addressControllers "github.com/devclub-nstru/tryyel-backend/controllers/address"
	cartControllers "github.com/devclub-nstru/tryyel-backend/controllers/cart"
	orderControllers "github.com/devclub-nstru/tryyel-backend/controllers/order"
	paymentControllers "github.com/devclub-nstru/tryyel-backend/controllers/payment"
	reviewController "github.com/devclub-nstru/tryyel-backend/controllers/review"
	userControllers "github.com/devclub-nstru/tryyel-backend/controllers/user"
	wishlistController "github.com/devclub-nstru/tryyel-backend/controllers/wishlist"
	"github.com/devclub-nstru/tryyel-backend/middleware"
	"github.com/gin-gonic/gin"
)

// SetupUserRoutes registers the signed-in shopper's endpoints. Requires a JWT.
func SetupUserRoutes(api *gin.RouterGroup, s *Services) {
	user := api.Group("")
	user.Use(middleware.ValidateToken(s.DB, s.JWTSecret))

	cart := user.Group("/cart")
	{
		cart.GET("", cartControllers.GetCart(s.Cart))
		cart.POST("", cartControllers.AddCartItem(s.Cart))
		cart.PUT("/:itemId", cartControllers.UpdateCartItem(s.Cart))
		cart.DELETE("/:itemId", cartControllers.DeleteCartItem(s.Cart))
		cart.DELETE("", cartControllers.ClearUserCart(s.Cart))
	}

	orders := user.Group("/orders")
	{
		orders.POST("", orderControllers.PlaceOrderHandler(s.Orders))
		orders.GET("", orderControllers.GetUserOrdersHandler(s.Orders))
		orders.GET("/:id", orderControllers.GetOrderByIDHandler(s.Orders))
		orders.POST("/:id/cancel", orderControllers.CancelOrderHandler(s.Orders))
	}

	pay := user.Group("/payment")
	{
		pay.POST("/create-order", paymentControllers.CreatePaymentHandler(s.Payments))
		pay.POST("/verify", paymentControllers.VerifyPaymentHandler(s.Payments))
	}

	address := user.Group("/address")
	{
		address.GET("", addressControllers.GetUserAddresses(s.Addresses))
		address.POST("", addressControllers.CreateAddress(s.Addresses))
		address.GET("/:id", addressControllers.GetAddress(s.Addresses))
		address.PUT("/:id", addressControllers.UpdateAddress(s.Addresses))
		address.PUT("/:id/default", addressControllers.SetDefaultAddress(s.Addresses))
		address.DELETE("/:id", addressControllers.DeleteAddress(s.Addresses))
	}

	reviews := user.Group("/reviews")
	{
		reviews.POST("", reviewController.AddReview(s.Reviews))
		reviews.PUT("/:id", reviewController.UpdateReview(s.Reviews))
		reviews.DELETE("/:id", reviewController.DeleteReview(s.Reviews))
	}

	wishlist := user.Group("/wishlist")
	{
		wishlist.GET("", wishlistController.GetWishlist(s.Wishlist))
		wishlist.POST("", wishlistController.AddToWishlist(s.Wishlist))
		wishlist.GET("/status/:productId", wishlistController.GetWishlistStatus(s.Wishlist))
		wishlist.DELETE("/:productId", wishlistController.RemoveFromWishlist(s.Wishlist))
	}

	profile := user.Group("/user/profile")
	{
		profile.GET("", userControllers.GetUser(s.Users))
		profile.PUT("", userControllers.UpdateUser(s.Users))
		profile.DELETE("", userControllers.DeleteUser(s.Users))
	}
}
