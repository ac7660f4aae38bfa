package routes

import (
	bannerController "github.com/devclub-nstru/tryyel-backend/controllers/banner"
	brandController "github.com/devclub-nstru/tryyel-backend/controllers/brand"
	categoryController "github.com/devclub-nstru/tryyel-backend/controllers/category"
	collectionController "github.com/devclub-nstru/tryyel-backend/controllers/collection"
	orderControllers "github.com/devclub-nstru/tryyel-backend/controllers/order"
	productcontroller "github.com/devclub-nstru/tryyel-backend/controllers/product"
	"github.com/devclub-nstru/tryyel-backend/middleware"
	"github.com/gin-gonic/gin"
)

// SetupAdminRoutes registers all "/admin/*" endpoints. Requires API-Key middleware.
func SetupAdminRoutes(api *gin.RouterGroup, s *Services) {
	adminGroup := api.Group("/admin")
	adminGroup.Use(middleware.ValidateAPIKey(s.AdminAPIKey))
	{
		// ─────────── Product Management ───────────
		productAdmin := adminGroup.Group("/products")
		{
			productAdmin.GET("", productcontroller.GetProducts(s.Products))
			productAdmin.POST("", productcontroller.CreateProduct(s.Products))
			productAdmin.PUT("/:id", productcontroller.UpdateProduct(s.Products))
			productAdmin.DELETE("/:id", productcontroller.DeleteProduct(s.Products))
			productAdmin.GET("/export", productcontroller.ExportProductsToExcel(s.Products))
			productAdmin.POST("/import", productcontroller.ImportProductsFromExcel(s.Products))
		}

		// ─────────── Category Management ───────────
		categoryAdmin := adminGroup.Group("/categories")
		{
			categoryAdmin.POST("", categoryController.CreateCategory(s.Categories))
			categoryAdmin.PUT("/:id", categoryController.UpdateCategory(s.Categories))
			categoryAdmin.DELETE("/:id", categoryController.DeleteCategory(s.Categories))
			categoryAdmin.POST("/home", categoryController.AddHomeCategory(s.Categories))
			categoryAdmin.DELETE("/home/:categoryId", categoryController.RemoveHomeCategory(s.Categories))
		}
		subAdmin := adminGroup.Group("/subcategories")
		{
			subAdmin.POST("", categoryController.CreateSubCategory(s.Categories))
			subAdmin.PUT("/:id", categoryController.UpdateSubCategory(s.Categories))
			subAdmin.DELETE("/:id", categoryController.DeleteSubCategory(s.Categories))
		}

		brandAdmin := adminGroup.Group("/brands")
		{
			brandAdmin.POST("", brandController.CreateBrand(s.Brands))
			brandAdmin.PUT("/:id", brandController.UpdateBrand(s.Brands))
			brandAdmin.DELETE("/:id", brandController.DeleteBrand(s.Brands))
		}

		collectionAdmin := adminGroup.Group("/collections")
		{
			collectionAdmin.POST("", collectionController.CreateCollection(s.Collections))
			collectionAdmin.PUT("/:id", collectionController.UpdateCollection(s.Collections))
			collectionAdmin.DELETE("/:id", collectionController.DeleteCollection(s.Collections))
		}

		bannerAdmin := adminGroup.Group("/banners")
		{
			bannerAdmin.GET("", bannerController.GetAllBanners(s.Banners))
			bannerAdmin.POST("", bannerController.CreateBanner(s.Banners))
			bannerAdmin.PUT("/:id", bannerController.UpdateBanner(s.Banners))
			bannerAdmin.DELETE("/:id", bannerController.DeleteBanner(s.Banners))
		}

		// ─────────── Orders ───────────
		orderAdmin := adminGroup.Group("/orders")
		{
			orderAdmin.GET("", orderControllers.GetAllOrdersHandler(s.Orders))
			orderAdmin.PUT("/:id/status", orderControllers.UpdateOrderStatusHandler(s.Orders))
			orderAdmin.GET("/ws", s.Hub.Handler)
		}
	}
}
