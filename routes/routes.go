package routes

import (
	"marketplace-service/controllers"
	"marketplace-service/middleware"

	"github.com/gin-gonic/gin"
)

func Register(r *gin.Engine, cart *controllers.CartController, order *controllers.OrderController, product *controllers.ProductController) {
	// Public tracking lookup; no authentication.
	r.GET("/track/:code", order.TrackOrder)

	cartRoutes := r.Group("/cart")
	cartRoutes.Use(middleware.AuthMiddleware())
	cartRoutes.GET("", cart.GetCart)
	cartRoutes.POST("/add", cart.AddItem)
	cartRoutes.PUT("/update-quantity", cart.UpdateQuantity)
	cartRoutes.DELETE("/remove", cart.RemoveItem)
	cartRoutes.DELETE("/clear", cart.ClearCart)
	cartRoutes.POST("/checkout", cart.Checkout)

	orderRoutes := r.Group("/orders")
	orderRoutes.Use(middleware.AuthMiddleware())
	orderRoutes.POST("", order.CreateOrder)
	orderRoutes.GET("/mine", order.GetMyOrders)
	orderRoutes.GET("/:id", order.GetOrderByID)
	orderRoutes.PUT("/:id/cancel", order.CancelOrder)

	adminRoutes := r.Group("/admin/orders")
	adminRoutes.Use(middleware.AuthMiddleware(), middleware.AdminOnly())
	adminRoutes.GET("", order.GetAllOrders)
	adminRoutes.PUT("/:id/status", order.UpdateOrderStatus)

	productRoutes := r.Group("/products")
	productRoutes.Use(middleware.AuthMiddleware())
	productRoutes.GET("", product.ListProducts)

	adminProductRoutes := r.Group("/admin/products")
	adminProductRoutes.Use(middleware.AuthMiddleware(), middleware.AdminOnly())
	adminProductRoutes.POST("", product.CreateProduct)
}
