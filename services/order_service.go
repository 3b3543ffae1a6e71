package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"regexp"
	"strings"

	"marketplace-service/models"
	"marketplace-service/notifier"
	repositories "marketplace-service/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	trackingPrefix   = "TRK"
	trackingAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	trackingRandLen  = 7

	trackingCodeAttempts = 3
)

// Conservative pattern carried over from the notification templates the
// marketplace has always used: dot/dash separated segments, 2-3 character
// top-level segment.
var emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

// Notifier is the best-effort notification hook. Implementations must
// never block the caller and never surface failures upward.
type Notifier interface {
	Enqueue(n notifier.Notification)
}

type OrderListResponse struct {
	Orders []models.Order `json:"orders"`
	Meta   MetaData       `json:"meta"`
}

type MetaData struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	TotalOrders int64 `json:"total_orders"`
	TotalPages  int64 `json:"total_pages"`
	HasMore     bool  `json:"has_more"`
}

// OrderService owns order creation from carts or direct line items, the
// authoritative stock decrement/restore logic, and status transitions.
type OrderService struct {
	orders   repositories.OrderRepository
	products repositories.ProductRepository
	carts    repositories.CartRepository
	notify   Notifier
	logger   *zap.Logger
}

func NewOrderService(
	orders repositories.OrderRepository,
	products repositories.ProductRepository,
	carts repositories.CartRepository,
	notify Notifier,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orders:   orders,
		products: products,
		carts:    carts,
		notify:   notify,
		logger:   logger,
	}
}

// Checkout converts the user's cart into an order: re-validates stock for
// every line against current levels, decrements stock per product with a
// conditional update, persists the order with its initial history entry,
// then clears the cart and dispatches a confirmation best-effort. If any
// line is unsatisfiable no order is created and no stock is touched.
func (s *OrderService) Checkout(ctx context.Context, userID uuid.UUID, req *models.CheckoutRequest) (*models.Order, *ServiceError) {
	if strings.TrimSpace(req.DeliveryAddress) == "" || strings.TrimSpace(req.ContactPhone) == "" {
		return nil, validationError("Delivery address and contact phone are required")
	}
	if !emailPattern.MatchString(req.NotificationEmail) {
		return nil, validationError("Please provide a valid notification email")
	}

	cart, err := s.carts.GetCart(ctx, userID.String())
	if err != nil {
		s.logger.Error("Failed to load cart for checkout", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, dependencyError("Failed to load cart")
	}
	if cart == nil || len(cart.Items) == 0 {
		return nil, validationError("Cart is empty")
	}

	// Re-validate every line against current stock; the cart snapshot may
	// be stale.
	var shortfalls []models.StockShortfall
	for _, item := range cart.Items {
		product, perr := s.products.FindByID(ctx, item.ProductID)
		if perr == repositories.ErrNotFound {
			shortfalls = append(shortfalls, models.StockShortfall{
				ProductName: item.ProductName,
				Available:   0,
				Requested:   item.Quantity,
			})
			continue
		}
		if perr != nil {
			return nil, dependencyError("Failed to verify product stock")
		}
		if product.Stock < item.Quantity {
			shortfalls = append(shortfalls, models.StockShortfall{
				ProductName: product.Name,
				Available:   product.Stock,
				Requested:   item.Quantity,
			})
		}
	}
	if len(shortfalls) > 0 {
		return nil, insufficientStockError("Some products do not have sufficient stock").
			withDetail("insufficient_items", shortfalls).
			withDetail("suggestion", "Update the quantities in your cart")
	}

	if serr := s.reserveStock(ctx, cart.Items); serr != nil {
		return nil, serr
	}

	items := make([]models.OrderItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, models.OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    float64(item.Quantity) * item.UnitPrice,
		})
	}

	order := &models.Order{
		UserID:            userID,
		Status:            models.StatusPending,
		Total:             cart.Total,
		DeliveryAddress:   req.DeliveryAddress,
		ContactPhone:      req.ContactPhone,
		NotificationEmail: req.NotificationEmail,
		Notes:             req.Notes,
		Items:             items,
		History: []models.OrderStatusChange{{
			Status:    models.StatusPending,
			Notes:     "Order created from cart",
			ChangedBy: userID,
		}},
	}

	if serr := s.createWithTrackingCode(ctx, order); serr != nil {
		// Stock was already committed; flag loudly rather than guess at
		// compensation while the store is unhealthy.
		s.logger.Error("Order insert failed after stock decrement",
			zap.String("user_id", userID.String()), zap.Error(serr))
		return nil, serr
	}

	s.notify.Enqueue(notifier.Notification{
		Recipient:    req.NotificationEmail,
		TrackingCode: order.TrackingCode,
		Status:       order.Status,
		Total:        order.Total,
		Notes:        order.Notes,
	})

	cart.Items = []models.CartItem{}
	if err := s.carts.SaveCart(ctx, cart); err != nil {
		// The order stands; an unemptied cart is recoverable.
		s.logger.Warn("Failed to clear cart after checkout",
			zap.String("user_id", userID.String()), zap.Error(err))
	}

	s.logger.Info("Order created from cart",
		zap.String("order_id", order.ID.String()),
		zap.String("tracking_code", order.TrackingCode),
		zap.Int("items", len(order.Items)),
		zap.Float64("total", order.Total),
	)
	return order, nil
}

// CreateDirectOrder creates an order from explicit {product name, quantity}
// pairs without touching any cart. Unresolvable names and stock shortfalls
// are reported together, with the in-stock catalog as a hint.
func (s *OrderService) CreateDirectOrder(ctx context.Context, userID uuid.UUID, req *models.DirectOrderRequest) (*models.Order, *ServiceError) {
	if strings.TrimSpace(req.DeliveryAddress) == "" || strings.TrimSpace(req.ContactPhone) == "" {
		return nil, validationError("Delivery address and contact phone are required")
	}
	if len(req.Items) == 0 {
		return nil, validationError("At least one item is required")
	}

	var shortfalls []models.StockShortfall
	resolved := make([]models.CartItem, 0, len(req.Items))
	for _, line := range req.Items {
		product, perr := s.products.FindByName(ctx, line.ProductName)
		if perr == repositories.ErrNotFound {
			shortfalls = append(shortfalls, models.StockShortfall{
				ProductName: line.ProductName,
				Available:   0,
				Requested:   line.Quantity,
			})
			continue
		}
		if perr != nil {
			return nil, dependencyError("Failed to resolve product")
		}
		if product.Stock < line.Quantity {
			shortfalls = append(shortfalls, models.StockShortfall{
				ProductName: product.Name,
				Available:   product.Stock,
				Requested:   line.Quantity,
			})
			continue
		}
		resolved = append(resolved, models.CartItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    line.Quantity,
			UnitPrice:   product.Price,
		})
	}
	if len(shortfalls) > 0 {
		serr := insufficientStockError("Some products could not be fulfilled").
			withDetail("unfulfillable_items", shortfalls)
		if inStock, lerr := s.products.ListInStock(ctx); lerr == nil {
			hints := make([]string, 0, len(inStock))
			for _, p := range inStock {
				hints = append(hints, fmt.Sprintf("%s (stock: %d)", p.Name, p.Stock))
			}
			serr.withDetail("in_stock_products", hints)
		}
		return nil, serr
	}

	if serr := s.reserveStock(ctx, resolved); serr != nil {
		return nil, serr
	}

	items := make([]models.OrderItem, 0, len(resolved))
	total := 0.0
	for _, item := range resolved {
		subtotal := float64(item.Quantity) * item.UnitPrice
		total += subtotal
		items = append(items, models.OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    subtotal,
		})
	}

	order := &models.Order{
		UserID:          userID,
		Status:          models.StatusPending,
		Total:           total,
		DeliveryAddress: req.DeliveryAddress,
		ContactPhone:    req.ContactPhone,
		Notes:           req.Notes,
		Items:           items,
		History: []models.OrderStatusChange{{
			Status:    models.StatusPending,
			Notes:     "Order created directly",
			ChangedBy: userID,
		}},
	}

	if serr := s.createWithTrackingCode(ctx, order); serr != nil {
		return nil, serr
	}

	s.logger.Info("Direct order created",
		zap.String("order_id", order.ID.String()),
		zap.String("tracking_code", order.TrackingCode),
		zap.Int("items", len(order.Items)),
	)
	return order, nil
}

// Cancel moves an order to cancelled and restores stock for every line
// item. Owners may cancel only their own pending orders; administrators
// may cancel any non-terminal order.
func (s *OrderService) Cancel(ctx context.Context, orderID, actorID uuid.UUID, actorRole string) (*models.Order, *ServiceError) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err == repositories.ErrNotFound {
		return nil, notFoundError("Order not found")
	}
	if err != nil {
		return nil, dependencyError("Failed to load order")
	}

	isAdmin := actorRole == models.RoleAdmin
	if !isAdmin && order.UserID != actorID {
		return nil, forbiddenError("You do not have permission for this action")
	}
	if IsTerminalStatus(order.Status) {
		return nil, invalidTransitionError(fmt.Sprintf("Order in status %q can no longer be cancelled", order.Status))
	}
	if !isAdmin && !CanOwnerCancel(order.Status) {
		return nil, invalidTransitionError(fmt.Sprintf("Orders can only be cancelled by their owner while pending; current status is %q", order.Status))
	}

	// Restore stock, the inverse of the checkout decrement. Products
	// deleted since ordering are skipped silently.
	for _, item := range order.Items {
		if ierr := s.products.IncrementStock(ctx, item.ProductID, item.Quantity); ierr != nil {
			if ierr == repositories.ErrNotFound {
				s.logger.Debug("Skipping stock restore for deleted product",
					zap.String("product_id", item.ProductID.String()))
				continue
			}
			s.logger.Error("Failed to restore stock",
				zap.String("product_id", item.ProductID.String()),
				zap.Int("quantity", item.Quantity),
				zap.Error(ierr),
			)
		}
	}

	roleLabel := "owner"
	if isAdmin {
		roleLabel = "administrator"
	}
	change := &models.OrderStatusChange{
		Status:        models.StatusCancelled,
		Notes:         fmt.Sprintf("Cancelled by %s", roleLabel),
		ChangedBy:     actorID,
		ChangedByRole: actorRole,
	}
	if uerr := s.orders.UpdateStatusWithHistory(ctx, order.ID, models.StatusCancelled, change); uerr != nil {
		s.logger.Error("Failed to persist cancellation", zap.String("order_id", order.ID.String()), zap.Error(uerr))
		return nil, dependencyError("Failed to cancel order")
	}
	order.Status = models.StatusCancelled
	order.History = append(order.History, *change)

	if order.NotificationEmail != "" {
		s.notify.Enqueue(notifier.Notification{
			Recipient:    order.NotificationEmail,
			TrackingCode: order.TrackingCode,
			Status:       models.StatusCancelled,
			Total:        order.Total,
		})
	}

	s.logger.Info("Order cancelled",
		zap.String("order_id", order.ID.String()),
		zap.String("actor_role", roleLabel),
	)
	return order, nil
}

// UpdateStatus is administrator-only and carries no stock side effects;
// stock was already committed at creation or cancellation time.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, actorID uuid.UUID, actorRole string, req *models.UpdateOrderStatusRequest) (*models.Order, *ServiceError) {
	if actorRole != models.RoleAdmin {
		return nil, forbiddenError("Administrator access required")
	}
	if !IsValidStatus(req.Status) {
		return nil, validationError(fmt.Sprintf("Unknown status %q", req.Status)).
			withDetail("valid_statuses", ValidOrderStatuses())
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err == repositories.ErrNotFound {
		return nil, notFoundError("Order not found")
	}
	if err != nil {
		return nil, dependencyError("Failed to load order")
	}

	if !CanAdminTransition(order.Status, req.Status) {
		return nil, invalidTransitionError(fmt.Sprintf("Order in terminal status %q cannot change status", order.Status))
	}

	notes := fmt.Sprintf("%s → %s", order.Status, req.Status)
	if req.Notes != "" {
		notes = notes + ": " + req.Notes
	}
	change := &models.OrderStatusChange{
		Status:        req.Status,
		Notes:         notes,
		ChangedBy:     actorID,
		ChangedByRole: actorRole,
	}
	if uerr := s.orders.UpdateStatusWithHistory(ctx, order.ID, req.Status, change); uerr != nil {
		s.logger.Error("Failed to update order status", zap.String("order_id", order.ID.String()), zap.Error(uerr))
		return nil, dependencyError("Failed to update order status")
	}
	order.Status = req.Status
	order.History = append(order.History, *change)

	recipient := req.NotificationEmail
	if recipient == "" {
		recipient = order.NotificationEmail
	}
	if recipient != "" {
		s.notify.Enqueue(notifier.Notification{
			Recipient:    recipient,
			TrackingCode: order.TrackingCode,
			Status:       order.Status,
			Total:        order.Total,
			Notes:        req.Notes,
		})
	}

	s.logger.Info("Order status updated",
		zap.String("order_id", order.ID.String()),
		zap.String("status", order.Status),
	)
	return order, nil
}

// TrackByCode is the unauthenticated lookup by public tracking code. The
// result is redacted: no actor identities, no contact details.
func (s *OrderService) TrackByCode(ctx context.Context, code string) (*models.TrackingView, *ServiceError) {
	normalized := strings.ToUpper(strings.TrimSpace(code))

	order, err := s.orders.FindByTrackingCode(ctx, normalized)
	if err == repositories.ErrNotFound {
		return nil, notFoundError("No order matches this tracking code. Please verify the code and try again")
	}
	if err != nil {
		return nil, dependencyError("Failed to look up tracking code")
	}

	view := &models.TrackingView{
		TrackingCode: order.TrackingCode,
		Status:       order.Status,
		Total:        order.Total,
		CreatedAt:    order.CreatedAt,
	}
	for _, item := range order.Items {
		view.Items = append(view.Items, models.TrackingItem{
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
		})
	}
	// History entries carry only the status and timestamp; internal notes
	// and actor identities stay private.
	for _, entry := range order.History {
		view.History = append(view.History, models.TrackingHistoryEntry{
			Status:    entry.Status,
			ChangedBy: "system",
			CreatedAt: entry.CreatedAt,
		})
	}
	return view, nil
}

// GetOrderByID returns an order readable by its owner or an administrator.
func (s *OrderService) GetOrderByID(ctx context.Context, orderID, actorID uuid.UUID, actorRole string) (*models.Order, *ServiceError) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err == repositories.ErrNotFound {
		return nil, notFoundError("Order not found")
	}
	if err != nil {
		return nil, dependencyError("Failed to load order")
	}
	if order.UserID != actorID && actorRole != models.RoleAdmin {
		return nil, forbiddenError("You do not have permission to view this order")
	}
	return order, nil
}

// GetUserOrders retrieves paginated orders for a specific user.
func (s *OrderService) GetUserOrders(ctx context.Context, userID uuid.UUID, page, limit int) (*OrderListResponse, *ServiceError) {
	orders, total, err := s.orders.FindByUserID(ctx, userID, page, limit)
	if err != nil {
		s.logger.Error("Failed to fetch orders", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, dependencyError("Failed to fetch orders")
	}

	return &OrderListResponse{
		Orders: orders,
		Meta: MetaData{
			Page:        page,
			Limit:       limit,
			TotalOrders: total,
			TotalPages:  calculateTotalPages(total, limit),
			HasMore:     total > int64(page*limit),
		},
	}, nil
}

// GetAllOrders retrieves orders across all users, optionally filtered by
// status (admin only).
func (s *OrderService) GetAllOrders(ctx context.Context, actorRole, status string, limit, offset int) (*OrderListResponse, *ServiceError) {
	if actorRole != models.RoleAdmin {
		return nil, forbiddenError("Administrator access required")
	}
	if status != "" && !IsValidStatus(status) {
		return nil, validationError(fmt.Sprintf("Unknown status filter %q", status)).
			withDetail("valid_statuses", ValidOrderStatuses())
	}

	orders, total, err := s.orders.FindAll(ctx, status, limit, offset)
	if err != nil {
		s.logger.Error("Failed to fetch all orders", zap.Error(err))
		return nil, dependencyError("Failed to fetch orders")
	}

	page := 1
	if limit > 0 {
		page = offset/limit + 1
	}
	return &OrderListResponse{
		Orders: orders,
		Meta: MetaData{
			Page:        page,
			Limit:       limit,
			TotalOrders: total,
			TotalPages:  calculateTotalPages(total, limit),
			HasMore:     total > int64(offset+len(orders)),
		},
	}, nil
}

// reserveStock decrements stock for every line with a conditional update.
// When a decrement loses a race mid-loop, previously applied decrements
// are rolled back before the failure is reported.
func (s *OrderService) reserveStock(ctx context.Context, items []models.CartItem) *ServiceError {
	type applied struct {
		productID uuid.UUID
		quantity  int
	}
	var done []applied

	rollback := func() {
		for _, a := range done {
			if err := s.products.IncrementStock(ctx, a.productID, a.quantity); err != nil {
				s.logger.Error("Failed to roll back stock decrement",
					zap.String("product_id", a.productID.String()),
					zap.Int("quantity", a.quantity),
					zap.Error(err),
				)
			}
		}
	}

	for _, item := range items {
		err := s.products.DecrementStock(ctx, item.ProductID, item.Quantity)
		if err == nil {
			done = append(done, applied{productID: item.ProductID, quantity: item.Quantity})
			continue
		}
		if err == repositories.ErrInsufficientStock || err == repositories.ErrNotFound {
			rollback()
			available := 0
			if p, perr := s.products.FindByID(ctx, item.ProductID); perr == nil {
				available = p.Stock
			}
			return insufficientStockError(fmt.Sprintf("Insufficient stock for %q. Available: %d", item.ProductName, available)).
				withDetail("insufficient_items", []models.StockShortfall{{
					ProductName: item.ProductName,
					Available:   available,
					Requested:   item.Quantity,
				}})
		}
		s.logger.Error("Stock decrement failed",
			zap.String("product_id", item.ProductID.String()), zap.Error(err))
		return dependencyError("Failed to reserve stock")
	}
	return nil
}

// createWithTrackingCode persists the order, regenerating the tracking
// code on a uniqueness collision.
func (s *OrderService) createWithTrackingCode(ctx context.Context, order *models.Order) *ServiceError {
	for attempt := 0; attempt < trackingCodeAttempts; attempt++ {
		code, err := generateTrackingCode()
		if err != nil {
			return dependencyError("Failed to generate tracking code")
		}
		order.TrackingCode = code

		err = s.orders.Create(ctx, order)
		if err == nil {
			return nil
		}
		if strings.Contains(err.Error(), "duplicate") || strings.Contains(err.Error(), "unique") {
			s.logger.Warn("Tracking code collision, regenerating", zap.String("code", code))
			continue
		}
		s.logger.Error("Failed to persist order", zap.Error(err))
		return dependencyError("Failed to create order")
	}
	return conflictError("Could not allocate a unique tracking code")
}

func generateTrackingCode() (string, error) {
	buf := make([]byte, trackingRandLen)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i := range buf {
		buf[i] = trackingAlphabet[int(buf[i])%len(trackingAlphabet)]
	}
	return trackingPrefix + string(buf), nil
}

func calculateTotalPages(total int64, limit int) int64 {
	if limit == 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}
