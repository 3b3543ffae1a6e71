package controllers

import (
	"net/http"

	"marketplace-service/middleware"
	"marketplace-service/models"
	"marketplace-service/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OrderController struct {
	orderService *services.OrderService
}

func NewOrderController(orderService *services.OrderService) *OrderController {
	return &OrderController{
		orderService: orderService,
	}
}

// CreateOrder creates an order from an explicit line-item list.
func (oc *OrderController) CreateOrder(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthenticated", "message": "Unauthorized"})
		return
	}

	var req models.DirectOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidPayload(c, err)
		return
	}

	order, serr := oc.orderService.CreateDirectOrder(c.Request.Context(), actor.UserID, &req)
	if serr != nil {
		respondError(c, serr)
		return
	}

	respondOK(c, http.StatusCreated, "Order created", gin.H{"order": order})
}

// GetMyOrders returns paginated orders for the authenticated user.
func (oc *OrderController) GetMyOrders(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthenticated", "message": "Unauthorized"})
		return
	}

	page, limit := parsePaginationParams(c)

	result, serr := oc.orderService.GetUserOrders(c.Request.Context(), actor.UserID, page, limit)
	if serr != nil {
		respondError(c, serr)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetOrderByID returns a specific order, readable by its owner or an
// administrator.
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthenticated", "message": "Unauthorized"})
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "validation_error", "message": "Invalid order ID format"})
		return
	}

	order, serr := oc.orderService.GetOrderByID(c.Request.Context(), orderID, actor.UserID, actor.Role)
	if serr != nil {
		respondError(c, serr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}

// CancelOrder cancels an order and restores its stock.
func (oc *OrderController) CancelOrder(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthenticated", "message": "Unauthorized"})
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "validation_error", "message": "Invalid order ID format"})
		return
	}

	order, serr := oc.orderService.Cancel(c.Request.Context(), orderID, actor.UserID, actor.Role)
	if serr != nil {
		respondError(c, serr)
		return
	}

	respondOK(c, http.StatusOK, "Order cancelled", gin.H{"order": order})
}

// GetAllOrders returns orders across all users, optionally filtered by
// status (admin only).
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthenticated", "message": "Unauthorized"})
		return
	}

	status := c.Query("status")
	limit, offset := parseLimitOffset(c)

	result, serr := oc.orderService.GetAllOrders(c.Request.Context(), actor.Role, status, limit, offset)
	if serr != nil {
		respondError(c, serr)
		return
	}

	c.JSON(http.StatusOK, result)
}

// UpdateOrderStatus moves an order through its lifecycle (admin only).
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthenticated", "message": "Unauthorized"})
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "validation_error", "message": "Invalid order ID format"})
		return
	}

	var req models.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidPayload(c, err)
		return
	}

	order, serr := oc.orderService.UpdateStatus(c.Request.Context(), orderID, actor.UserID, actor.Role, &req)
	if serr != nil {
		respondError(c, serr)
		return
	}

	respondOK(c, http.StatusOK, "Order status updated", gin.H{"order": order})
}

// TrackOrder is the public, unauthenticated tracking lookup.
func (oc *OrderController) TrackOrder(c *gin.Context) {
	view, serr := oc.orderService.TrackByCode(c.Request.Context(), c.Param("code"))
	if serr != nil {
		respondError(c, serr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "order": view})
}
