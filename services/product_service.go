package services

import (
	"context"
	"fmt"

	"marketplace-service/models"
	repositories "marketplace-service/repository"

	"go.uber.org/zap"
)

// ProductService covers the small catalog surface the order engine feeds
// from. Category and supplier management live elsewhere.
type ProductService struct {
	products repositories.ProductRepository
	logger   *zap.Logger
}

func NewProductService(products repositories.ProductRepository, logger *zap.Logger) *ProductService {
	return &ProductService{products: products, logger: logger}
}

func (s *ProductService) Create(ctx context.Context, req *models.CreateProductRequest) (*models.Product, *ServiceError) {
	// Names are matched case-insensitively everywhere, so uniqueness is
	// checked the same way.
	if existing, err := s.products.FindByName(ctx, req.Name); err == nil && existing != nil {
		return nil, conflictError(fmt.Sprintf("A product named %q already exists", existing.Name))
	} else if err != nil && err != repositories.ErrNotFound {
		return nil, dependencyError("Failed to check product name")
	}

	product := &models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
		SupplierID:  req.SupplierID,
	}
	if err := s.products.Create(ctx, product); err != nil {
		s.logger.Error("Failed to create product", zap.String("name", req.Name), zap.Error(err))
		return nil, dependencyError("Failed to create product")
	}

	s.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("name", product.Name),
		zap.Int("stock", product.Stock),
	)
	return product, nil
}

func (s *ProductService) List(ctx context.Context, page, limit int) ([]models.Product, int64, *ServiceError) {
	products, total, err := s.products.FindAll(ctx, page, limit)
	if err != nil {
		s.logger.Error("Failed to list products", zap.Error(err))
		return nil, 0, dependencyError("Failed to list products")
	}
	return products, total, nil
}
