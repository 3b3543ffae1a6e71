package services

import (
	"context"
	"fmt"

	"marketplace-service/models"
	repositories "marketplace-service/repository"

	"go.uber.org/zap"
)

// CartService manages the single active cart each user holds. Every
// mutating operation re-persists the full cart; totals are recomputed by
// the repository at save time.
type CartService struct {
	carts    repositories.CartRepository
	products repositories.ProductRepository
	logger   *zap.Logger
}

func NewCartService(carts repositories.CartRepository, products repositories.ProductRepository, logger *zap.Logger) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		logger:   logger,
	}
}

// GetOrCreateCart returns the user's cart, lazily creating an empty one.
func (s *CartService) GetOrCreateCart(ctx context.Context, userID string) (*models.Cart, *ServiceError) {
	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to load cart", zap.String("user_id", userID), zap.Error(err))
		return nil, dependencyError("Failed to load cart")
	}

	if cart == nil {
		cart = &models.Cart{
			UserID: userID,
			Items:  []models.CartItem{},
		}
		if err := s.carts.SaveCart(ctx, cart); err != nil {
			s.logger.Error("Failed to create cart", zap.String("user_id", userID), zap.Error(err))
			return nil, dependencyError("Failed to create cart")
		}
	}

	return cart, nil
}

// AddItem appends a line item with a price snapshot taken now, or merges
// quantities when the product is already in the cart. Stock adequacy is
// always checked against the total requested quantity, not the delta.
func (s *CartService) AddItem(ctx context.Context, userID, productName string, quantity int) (*models.Cart, *ServiceError) {
	if quantity < 1 {
		return nil, validationError("Quantity must be at least 1")
	}

	product, serr := s.resolveProduct(ctx, productName)
	if serr != nil {
		return nil, serr
	}

	if product.Stock < quantity {
		return nil, insufficientStockError(fmt.Sprintf("Insufficient stock for %q. Available: %d", product.Name, product.Stock)).
			withDetail("available_stock", product.Stock)
	}

	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to load cart", zap.String("user_id", userID), zap.Error(err))
		return nil, dependencyError("Failed to load cart")
	}
	if cart == nil {
		cart = &models.Cart{UserID: userID, Items: []models.CartItem{}}
	}

	merged := false
	for i := range cart.Items {
		if cart.Items[i].ProductID == product.ID {
			newQuantity := cart.Items[i].Quantity + quantity
			if product.Stock < newQuantity {
				return nil, insufficientStockError(fmt.Sprintf("Insufficient stock for the requested quantity of %q. Available: %d", product.Name, product.Stock)).
					withDetail("available_stock", product.Stock).
					withDetail("requested_quantity", newQuantity)
			}
			cart.Items[i].Quantity = newQuantity
			merged = true
			break
		}
	}
	if !merged {
		cart.Items = append(cart.Items, models.CartItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    quantity,
			UnitPrice:   product.Price,
		})
	}

	if err := s.carts.SaveCart(ctx, cart); err != nil {
		s.logger.Error("Failed to save cart", zap.String("user_id", userID), zap.Error(err))
		return nil, dependencyError("Failed to save cart")
	}

	s.logger.Info("Cart item added",
		zap.String("user_id", userID),
		zap.String("product", product.Name),
		zap.Int("quantity", quantity),
	)
	return cart, nil
}

// UpdateQuantity replaces a line item's quantity, re-validated against
// current stock rather than the snapshot taken at add time.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, productName string, quantity int) (*models.Cart, *ServiceError) {
	if quantity < 1 {
		return nil, validationError("Quantity must be at least 1")
	}

	product, serr := s.resolveProduct(ctx, productName)
	if serr != nil {
		return nil, serr
	}

	if product.Stock < quantity {
		return nil, insufficientStockError(fmt.Sprintf("Insufficient stock for %q. Available: %d", product.Name, product.Stock)).
			withDetail("available_stock", product.Stock)
	}

	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return nil, dependencyError("Failed to load cart")
	}
	if cart == nil {
		return nil, notFoundError("Cart not found")
	}

	for i := range cart.Items {
		if cart.Items[i].ProductID == product.ID {
			cart.Items[i].Quantity = quantity
			if err := s.carts.SaveCart(ctx, cart); err != nil {
				s.logger.Error("Failed to save cart", zap.String("user_id", userID), zap.Error(err))
				return nil, dependencyError("Failed to save cart")
			}
			return cart, nil
		}
	}

	return nil, notFoundError(fmt.Sprintf("Product %q is not in the cart", product.Name)).
		withDetail("cart_products", cartProductNames(cart))
}

// RemoveItem drops a line item from the cart.
func (s *CartService) RemoveItem(ctx context.Context, userID, productName string) (*models.Cart, *ServiceError) {
	product, serr := s.resolveProduct(ctx, productName)
	if serr != nil {
		return nil, serr
	}

	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return nil, dependencyError("Failed to load cart")
	}
	if cart == nil {
		return nil, notFoundError("Cart not found")
	}

	filtered := cart.Items[:0]
	removed := false
	for _, item := range cart.Items {
		if item.ProductID == product.ID {
			removed = true
			continue
		}
		filtered = append(filtered, item)
	}
	if !removed {
		return nil, notFoundError(fmt.Sprintf("Product %q is not in the cart", product.Name)).
			withDetail("cart_products", cartProductNames(cart))
	}
	cart.Items = filtered

	if err := s.carts.SaveCart(ctx, cart); err != nil {
		s.logger.Error("Failed to save cart", zap.String("user_id", userID), zap.Error(err))
		return nil, dependencyError("Failed to save cart")
	}
	return cart, nil
}

// Clear empties the cart unconditionally; a missing cart is replaced by a
// fresh empty one.
func (s *CartService) Clear(ctx context.Context, userID string) (*models.Cart, *ServiceError) {
	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return nil, dependencyError("Failed to load cart")
	}
	if cart == nil {
		cart = &models.Cart{UserID: userID}
	}
	cart.Items = []models.CartItem{}

	if err := s.carts.SaveCart(ctx, cart); err != nil {
		s.logger.Error("Failed to clear cart", zap.String("user_id", userID), zap.Error(err))
		return nil, dependencyError("Failed to clear cart")
	}
	return cart, nil
}

// resolveProduct looks a product up by case-insensitive name. The
// not-found response enumerates all known product names as a hint.
func (s *CartService) resolveProduct(ctx context.Context, name string) (*models.Product, *ServiceError) {
	product, err := s.products.FindByName(ctx, name)
	if err == nil {
		return product, nil
	}
	if err == repositories.ErrNotFound {
		serr := notFoundError(fmt.Sprintf("Product %q not found", name))
		if names, nerr := s.products.ListNames(ctx); nerr == nil {
			serr.withDetail("known_products", names)
		}
		return nil, serr
	}
	s.logger.Error("Failed to resolve product", zap.String("name", name), zap.Error(err))
	return nil, dependencyError("Failed to resolve product")
}

func cartProductNames(cart *models.Cart) []string {
	names := make([]string, 0, len(cart.Items))
	for _, item := range cart.Items {
		names = append(names, item.ProductName)
	}
	return names
}
