package routes

import (
	bannerController "github.com/devclub-nstru/tryyel-backend/controllers/banner"
	brandController "github.com/devclub-nstru/tryyel-backend/controllers/brand"
	categoryController "github.com/devclub-nstru/tryyel-backend/controllers/category"
	collectionController "github.com/devclub-nstru/tryyel-backend/controllers/collection"
	productcontroller "github.com/devclub-nstru/tryyel-backend/controllers/product"
	reviewController "github.com/devclub-nstru/tryyel-backend/controllers/review"
	"github.com/gin-gonic/gin"
)

// SetupCatalogRoutes registers the public storefront reads.
func SetupCatalogRoutes(api *gin.RouterGroup, s *Services) {
	products := api.Group("/products")
	{
		products.GET("", productcontroller.GetProducts(s.Products))
		products.GET("/trending", productcontroller.GetTrendingProducts(s.Products))
		products.GET("/:id", productcontroller.GetProductByID(s.Products))
	}

	categories := api.Group("/categories")
	{
		categories.GET("", categoryController.GetAllCategories(s.Categories))
		categories.GET("/home", categoryController.GetHomeCategories(s.Categories))
		categories.GET("/:id", categoryController.GetCategoryByID(s.Categories))
	}
	api.GET("/subcategories", categoryController.GetSubCategories(s.Categories))
	api.GET("/brands", brandController.GetBrands(s.Brands))

	collections := api.Group("/collections")
	{
		collections.GET("", collectionController.GetCollections(s.Collections))
		collections.GET("/:id", collectionController.GetCollectionByID(s.Collections))
	}

	api.GET("/banners", bannerController.GetBanners(s.Banners))
	api.GET("/reviews/product/:productId", reviewController.GetProductReviews(s.Reviews))
}
