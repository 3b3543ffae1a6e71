package services_test

import (
	"context"
	"sort"
	"strings"
	"testing"

	"marketplace-service/models"
	repositories "marketplace-service/repository"
	"marketplace-service/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// --- Mock Product Repository ---

type mockProductRepo struct {
	products map[uuid.UUID]*models.Product
	// decrementErr, when set, overrides DecrementStock for matching IDs.
	decrementErr map[uuid.UUID]error
}

func newMockProductRepo(products ...*models.Product) *mockProductRepo {
	m := &mockProductRepo{
		products:     make(map[uuid.UUID]*models.Product),
		decrementErr: make(map[uuid.UUID]error),
	}
	for _, p := range products {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		m.products[p.ID] = p
	}
	return m
}

func (m *mockProductRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockProductRepo) FindByName(_ context.Context, name string) (*models.Product, error) {
	for _, p := range m.products {
		if strings.EqualFold(p.Name, name) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *mockProductRepo) FindAll(_ context.Context, _, _ int) ([]models.Product, int64, error) {
	var out []models.Product
	for _, p := range m.products {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (m *mockProductRepo) ListNames(_ context.Context) ([]string, error) {
	var names []string
	for _, p := range m.products {
		names = append(names, p.Name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *mockProductRepo) ListInStock(_ context.Context) ([]models.Product, error) {
	var out []models.Product
	for _, p := range m.products {
		if p.Stock > 0 {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockProductRepo) Create(_ context.Context, product *models.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepo) DecrementStock(_ context.Context, id uuid.UUID, quantity int) error {
	if err, ok := m.decrementErr[id]; ok {
		return err
	}
	p, ok := m.products[id]
	if !ok {
		return repositories.ErrNotFound
	}
	if p.Stock < quantity {
		return repositories.ErrInsufficientStock
	}
	p.Stock -= quantity
	return nil
}

func (m *mockProductRepo) IncrementStock(_ context.Context, id uuid.UUID, quantity int) error {
	p, ok := m.products[id]
	if !ok {
		return repositories.ErrNotFound
	}
	p.Stock += quantity
	return nil
}

// --- Mock Cart Repository ---

type mockCartRepo struct {
	carts map[string]*models.Cart
}

func newMockCartRepo() *mockCartRepo {
	return &mockCartRepo{carts: make(map[string]*models.Cart)}
}

func (m *mockCartRepo) GetCart(_ context.Context, userID string) (*models.Cart, error) {
	c, ok := m.carts[userID]
	if !ok {
		return nil, nil
	}
	cp := *c
	cp.Items = append([]models.CartItem(nil), c.Items...)
	return &cp, nil
}

func (m *mockCartRepo) SaveCart(_ context.Context, cart *models.Cart) error {
	total := 0.0
	for i := range cart.Items {
		cart.Items[i].Subtotal = float64(cart.Items[i].Quantity) * cart.Items[i].UnitPrice
		total += cart.Items[i].Subtotal
	}
	cart.Total = total

	cp := *cart
	cp.Items = append([]models.CartItem(nil), cart.Items...)
	m.carts[cart.UserID] = &cp
	return nil
}

// --- Helpers ---

func newTestCartService(carts repositories.CartRepository, products repositories.ProductRepository) *services.CartService {
	logger, _ := zap.NewDevelopment()
	return services.NewCartService(carts, products, logger)
}

func product(name string, price float64, stock int) *models.Product {
	return &models.Product{ID: uuid.New(), Name: name, Price: price, Stock: stock}
}

// --- Tests ---

func TestCartService_GetOrCreateCart_CreatesEmpty(t *testing.T) {
	carts := newMockCartRepo()
	svc := newTestCartService(carts, newMockProductRepo())

	cart, svcErr := svc.GetOrCreateCart(context.Background(), "user-1")
	require.Nil(t, svcErr)
	assert.Equal(t, "user-1", cart.UserID)
	assert.Empty(t, cart.Items)
	assert.Zero(t, cart.Total)

	// The lazily created cart is persisted.
	stored, err := carts.GetCart(context.Background(), "user-1")
	require.NoError(t, err)
	assert.NotNil(t, stored)
}

func TestCartService_AddItem_SnapshotsPrice(t *testing.T) {
	laptop := product("Laptop", 999.99, 5)
	products := newMockProductRepo(laptop)
	carts := newMockCartRepo()
	svc := newTestCartService(carts, products)

	cart, svcErr := svc.AddItem(context.Background(), "user-1", "laptop", 2)
	require.Nil(t, svcErr)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, laptop.ID, cart.Items[0].ProductID)
	assert.Equal(t, "Laptop", cart.Items[0].ProductName)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, 999.99, cart.Items[0].UnitPrice)

	// Catalog price changes do not affect the snapshot.
	laptop.Price = 1299.99
	stored, err := carts.GetCart(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 999.99, stored.Items[0].UnitPrice)
	assert.Equal(t, 2*999.99, stored.Total)
}

func TestCartService_AddItem_MergesQuantities(t *testing.T) {
	laptop := product("Laptop", 100, 10)
	svc := newTestCartService(newMockCartRepo(), newMockProductRepo(laptop))

	_, svcErr := svc.AddItem(context.Background(), "user-1", "Laptop", 3)
	require.Nil(t, svcErr)

	cart, svcErr := svc.AddItem(context.Background(), "user-1", "Laptop", 4)
	require.Nil(t, svcErr)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 7, cart.Items[0].Quantity)
	assert.Equal(t, 700.0, cart.Total)
}

func TestCartService_AddItem_MergedQuantityExceedsStock(t *testing.T) {
	laptop := product("Laptop", 100, 5)
	svc := newTestCartService(newMockCartRepo(), newMockProductRepo(laptop))

	_, svcErr := svc.AddItem(context.Background(), "user-1", "Laptop", 3)
	require.Nil(t, svcErr)

	// 3 already in cart + 3 more = 6 > 5 in stock.
	_, svcErr = svc.AddItem(context.Background(), "user-1", "Laptop", 3)
	require.NotNil(t, svcErr)
	assert.Equal(t, services.KindInsufficientStock, svcErr.Kind)
	assert.Equal(t, 400, svcErr.StatusCode)
	assert.Equal(t, 5, svcErr.Details["available_stock"])
	assert.Equal(t, 6, svcErr.Details["requested_quantity"])

	// The cart is untouched.
	cart, svcErr := svc.GetOrCreateCart(context.Background(), "user-1")
	require.Nil(t, svcErr)
	assert.Equal(t, 3, cart.Items[0].Quantity)
}

func TestCartService_AddItem_UnknownProductListsCatalog(t *testing.T) {
	products := newMockProductRepo(product("Laptop", 100, 5), product("Mouse", 25, 30))
	svc := newTestCartService(newMockCartRepo(), products)

	_, svcErr := svc.AddItem(context.Background(), "user-1", "Keyboard", 1)
	require.NotNil(t, svcErr)
	assert.Equal(t, services.KindNotFound, svcErr.Kind)
	assert.Equal(t, []string{"Laptop", "Mouse"}, svcErr.Details["known_products"])
}

func TestCartService_AddItem_RejectsNonPositiveQuantity(t *testing.T) {
	svc := newTestCartService(newMockCartRepo(), newMockProductRepo(product("Laptop", 100, 5)))

	_, svcErr := svc.AddItem(context.Background(), "user-1", "Laptop", 0)
	require.NotNil(t, svcErr)
	assert.Equal(t, services.KindValidation, svcErr.Kind)
}

func TestCartService_UpdateQuantity_Replaces(t *testing.T) {
	laptop := product("Laptop", 100, 10)
	svc := newTestCartService(newMockCartRepo(), newMockProductRepo(laptop))

	_, svcErr := svc.AddItem(context.Background(), "user-1", "Laptop", 2)
	require.Nil(t, svcErr)

	cart, svcErr := svc.UpdateQuantity(context.Background(), "user-1", "Laptop", 8)
	require.Nil(t, svcErr)
	assert.Equal(t, 8, cart.Items[0].Quantity)
	assert.Equal(t, 800.0, cart.Total)
}

func TestCartService_UpdateQuantity_NotInCart(t *testing.T) {
	products := newMockProductRepo(product("Laptop", 100, 10), product("Mouse", 25, 30))
	svc := newTestCartService(newMockCartRepo(), products)

	_, svcErr := svc.AddItem(context.Background(), "user-1", "Laptop", 1)
	require.Nil(t, svcErr)

	_, svcErr = svc.UpdateQuantity(context.Background(), "user-1", "Mouse", 2)
	require.NotNil(t, svcErr)
	assert.Equal(t, services.KindNotFound, svcErr.Kind)
	assert.Equal(t, []string{"Laptop"}, svcErr.Details["cart_products"])
}

func TestCartService_RemoveItem(t *testing.T) {
	products := newMockProductRepo(product("Laptop", 100, 10), product("Mouse", 25, 30))
	svc := newTestCartService(newMockCartRepo(), products)

	_, svcErr := svc.AddItem(context.Background(), "user-1", "Laptop", 1)
	require.Nil(t, svcErr)
	_, svcErr = svc.AddItem(context.Background(), "user-1", "Mouse", 2)
	require.Nil(t, svcErr)

	cart, svcErr := svc.RemoveItem(context.Background(), "user-1", "Laptop")
	require.Nil(t, svcErr)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "Mouse", cart.Items[0].ProductName)
	assert.Equal(t, 50.0, cart.Total)
}

func TestCartService_Clear_MissingCartYieldsEmpty(t *testing.T) {
	svc := newTestCartService(newMockCartRepo(), newMockProductRepo())

	cart, svcErr := svc.Clear(context.Background(), "user-1")
	require.Nil(t, svcErr)
	assert.Empty(t, cart.Items)
	assert.Zero(t, cart.Total)
}
