package controllers

import (
	"net/http"

	"marketplace-service/models"
	"marketplace-service/services"

	"github.com/gin-gonic/gin"
)

type ProductController struct {
	productService *services.ProductService
}

func NewProductController(productService *services.ProductService) *ProductController {
	return &ProductController{productService: productService}
}

// CreateProduct registers a new catalog product (admin only).
func (pc *ProductController) CreateProduct(c *gin.Context) {
	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidPayload(c, err)
		return
	}

	product, serr := pc.productService.Create(c.Request.Context(), &req)
	if serr != nil {
		respondError(c, serr)
		return
	}

	respondOK(c, http.StatusCreated, "Product created", gin.H{"product": product})
}

// ListProducts returns the paginated catalog.
func (pc *ProductController) ListProducts(c *gin.Context) {
	page, limit := parsePaginationParams(c)

	products, total, serr := pc.productService.List(c.Request.Context(), page, limit)
	if serr != nil {
		respondError(c, serr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"products": products,
		"total":    total,
		"page":     page,
		"limit":    limit,
	})
}
