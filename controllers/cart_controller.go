package controllers

import (
	"net/http"

	"marketplace-service/middleware"
	"marketplace-service/models"
	"marketplace-service/services"

	"github.com/gin-gonic/gin"
)

type CartController struct {
	cartService  *services.CartService
	orderService *services.OrderService
}

func NewCartController(cartService *services.CartService, orderService *services.OrderService) *CartController {
	return &CartController{
		cartService:  cartService,
		orderService: orderService,
	}
}

// GetCart returns the current cart for a user, creating an empty one on
// first view.
func (cc *CartController) GetCart(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthenticated", "message": "Unauthorized"})
		return
	}

	cart, serr := cc.cartService.GetOrCreateCart(c.Request.Context(), actor.UserID.String())
	if serr != nil {
		respondError(c, serr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "cart": cart})
}

// AddItem adds a product to the cart or merges quantities.
func (cc *CartController) AddItem(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthenticated", "message": "Unauthorized"})
		return
	}

	var req models.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidPayload(c, err)
		return
	}

	cart, serr := cc.cartService.AddItem(c.Request.Context(), actor.UserID.String(), req.ProductName, req.Quantity)
	if serr != nil {
		respondError(c, serr)
		return
	}

	respondOK(c, http.StatusOK, "Product added to cart", gin.H{"cart": cart})
}

// UpdateQuantity replaces the quantity of a line item.
func (cc *CartController) UpdateQuantity(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthenticated", "message": "Unauthorized"})
		return
	}

	var req models.UpdateCartQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidPayload(c, err)
		return
	}

	cart, serr := cc.cartService.UpdateQuantity(c.Request.Context(), actor.UserID.String(), req.ProductName, req.Quantity)
	if serr != nil {
		respondError(c, serr)
		return
	}

	respondOK(c, http.StatusOK, "Quantity updated", gin.H{"cart": cart})
}

// RemoveItem removes a line item from the cart.
func (cc *CartController) RemoveItem(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthenticated", "message": "Unauthorized"})
		return
	}

	var req models.RemoveCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidPayload(c, err)
		return
	}

	cart, serr := cc.cartService.RemoveItem(c.Request.Context(), actor.UserID.String(), req.ProductName)
	if serr != nil {
		respondError(c, serr)
		return
	}

	respondOK(c, http.StatusOK, "Product removed from cart", gin.H{"cart": cart})
}

// ClearCart removes all items from the cart.
func (cc *CartController) ClearCart(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthenticated", "message": "Unauthorized"})
		return
	}

	cart, serr := cc.cartService.Clear(c.Request.Context(), actor.UserID.String())
	if serr != nil {
		respondError(c, serr)
		return
	}

	respondOK(c, http.StatusOK, "Cart cleared", gin.H{"cart": cart})
}

// Checkout converts the cart into an order.
func (cc *CartController) Checkout(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthenticated", "message": "Unauthorized"})
		return
	}

	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidPayload(c, err)
		return
	}

	order, serr := cc.orderService.Checkout(c.Request.Context(), actor.UserID, &req)
	if serr != nil {
		respondError(c, serr)
		return
	}

	respondOK(c, http.StatusCreated, "Purchase confirmed", gin.H{
		"order": order,
		"notification": gin.H{
			"recipient": req.NotificationEmail,
			"message":   "A confirmation email has been sent",
		},
	})
}
