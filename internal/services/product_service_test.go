package services_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"tokodash/internal/models"
	"tokodash/internal/repositories"
	"tokodash/internal/services"
	"tokodash/internal/storage"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetAll() ([]models.Product, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(id string) (*models.Product, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Create(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockPublisher is a mock implementation of services.EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishProductEvent(eventType, productID string, product interface{}) error {
	args := m.Called(eventType, productID, product)
	return args.Error(0)
}

// MockStorage is a mock implementation of storage.Storage
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Put(ctx context.Context, r io.Reader, in storage.PutInput) (storage.PutResult, error) {
	data, _ := io.ReadAll(r)
	args := m.Called(string(data), in)
	return args.Get(0).(storage.PutResult), args.Error(1)
}

func (m *MockStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func (m *MockStorage) KeyFromURL(url string) (string, bool) {
	args := m.Called(url)
	return args.String(0), args.Bool(1)
}

func validInput() models.ProductInput {
	return models.ProductInput{
		Name:        "Laptop",
		Description: "High-performance laptop",
		Price:       decimal.RequireFromString("899.99"),
		Category:    "Electronics",
		Inventory:   models.Inventory{Quantity: 10},
		Status:      models.StatusActive,
	}
}

func TestProductService_GetAllProducts(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil, nil)

	expectedProducts := []models.Product{
		{ID: "1", Name: "Product A", Price: decimal.NewFromInt(10)},
		{ID: "2", Name: "Product B", Price: decimal.NewFromInt(20)},
	}
	mockRepo.On("GetAll").Return(expectedProducts, nil).Once()

	products, err := service.GetAllProducts()
	assert.NoError(t, err)
	assert.Equal(t, expectedProducts, products)

	mockRepo.On("GetAll").Return(nil, nil).Once()
	products, err = service.GetAllProducts()
	assert.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
	mockRepo.AssertExpectations(t)
}

func TestProductService_GetProductByID(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil, nil)

	expectedProduct := &models.Product{ID: "1", Name: "Product A"}
	mockRepo.On("GetByID", "1").Return(expectedProduct, nil).Once()
	product, err := service.GetProductByID("1")
	assert.NoError(t, err)
	assert.Equal(t, expectedProduct, product)

	mockRepo.On("GetByID", "99").Return(nil, fmt.Errorf("product with ID 99: %w", repositories.ErrProductNotFound)).Once()
	product, err = service.GetProductByID("99")
	assert.Nil(t, product)
	assert.True(t, errors.Is(err, repositories.ErrProductNotFound))
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockPub := new(MockPublisher)
	service := services.NewProductService(mockRepo, nil, mockPub)

	mockRepo.On("Create", mock.AnythingOfType("*models.Product")).Run(func(args mock.Arguments) {
		args.Get(0).(*models.Product).ID = "new-id"
	}).Return(nil).Once()
	mockPub.On("PublishProductEvent", services.EventProductCreated, "new-id", mock.Anything).Return(nil).Once()

	product, err := service.CreateProduct(context.Background(), validInput(), nil)
	require.NoError(t, err)
	assert.Equal(t, "new-id", product.ID)
	assert.Equal(t, "Laptop", product.Name)
	assert.True(t, product.Inventory.InStock)
	assert.NotNil(t, product.Tags)
	mockRepo.AssertExpectations(t)
	mockPub.AssertExpectations(t)
}

func TestProductService_CreateProductPublishFailureIsNotFatal(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockPub := new(MockPublisher)
	service := services.NewProductService(mockRepo, nil, mockPub)

	mockRepo.On("Create", mock.AnythingOfType("*models.Product")).Return(nil).Once()
	mockPub.On("PublishProductEvent", services.EventProductCreated, mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

	_, err := service.CreateProduct(context.Background(), validInput(), nil)
	assert.NoError(t, err)
	mockPub.AssertExpectations(t)
}

func TestProductService_CreateProductInvalid(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil, nil)

	input := validInput()
	input.Name = ""
	input.Price = decimal.Zero
	input.Status = "archived"
	input.Inventory.Quantity = -1

	_, err := service.CreateProduct(context.Background(), input, nil)
	var inputErr *services.InputError
	require.True(t, errors.As(err, &inputErr))
	assert.Contains(t, inputErr.Fields, "Name")
	assert.Contains(t, inputErr.Fields, "Price")
	assert.Contains(t, inputErr.Fields, "Status")
	assert.Contains(t, inputErr.Fields, "Quantity")
	mockRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestProductService_CreateProductWithUpload(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockStorage := new(MockStorage)
	service := services.NewProductService(mockRepo, mockStorage, nil)

	mockStorage.On("Put", "png-bytes", mock.MatchedBy(func(in storage.PutInput) bool {
		return in.Filename == "lamp.png"
	})).Return(storage.PutResult{Key: "k.png", URL: "/uploads/k.png"}, nil).Once()
	mockRepo.On("Create", mock.AnythingOfType("*models.Product")).Return(nil).Once()

	product, err := service.CreateProduct(context.Background(), validInput(), &models.Upload{Filename: "lamp.png", Content: []byte("png-bytes")})
	require.NoError(t, err)
	assert.Equal(t, "/uploads/k.png", product.Image)
	mockStorage.AssertExpectations(t)
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateProductUploadsDisabled(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil, nil)

	_, err := service.CreateProduct(context.Background(), validInput(), &models.Upload{Filename: "a.png", Content: []byte("x")})
	assert.True(t, errors.Is(err, services.ErrUploadsDisabled))
	mockRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestProductService_UpdateProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil, nil)

	existing := &models.Product{ID: "1", Name: "Old", Image: "https://cdn.example.com/old.png"}
	mockRepo.On("GetByID", "1").Return(existing, nil).Once()
	mockRepo.On("Update", mock.AnythingOfType("*models.Product")).Return(nil).Once()

	input := validInput()
	input.Name = "Laptop Pro"
	input.Inventory.Quantity = 0
	product, err := service.UpdateProduct(context.Background(), "1", input, nil)
	require.NoError(t, err)
	assert.Equal(t, "1", product.ID)
	assert.Equal(t, "Laptop Pro", product.Name)
	assert.False(t, product.Inventory.InStock)
	// Full replace: an input without an image clears it.
	assert.Empty(t, product.Image)
	mockRepo.AssertExpectations(t)

	mockRepo.On("GetByID", "99").Return(nil, fmt.Errorf("product with ID 99: %w", repositories.ErrProductNotFound)).Once()
	_, err = service.UpdateProduct(context.Background(), "99", validInput(), nil)
	assert.True(t, errors.Is(err, repositories.ErrProductNotFound))
	mockRepo.AssertExpectations(t)
}

func TestProductService_DeleteProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockPub := new(MockPublisher)
	service := services.NewProductService(mockRepo, nil, mockPub)

	mockRepo.On("Delete", "1").Return(nil).Once()
	mockPub.On("PublishProductEvent", services.EventProductDeleted, "1", nil).Return(nil).Once()
	err := service.DeleteProduct(context.Background(), "1")
	assert.NoError(t, err)

	mockRepo.On("Delete", "99").Return(fmt.Errorf("product with ID 99: %w", repositories.ErrProductNotFound)).Once()
	err = service.DeleteProduct(context.Background(), "99")
	assert.True(t, errors.Is(err, repositories.ErrProductNotFound))
	mockRepo.AssertExpectations(t)
	mockPub.AssertExpectations(t)
}

func TestProductService_UpdateProductReplacesStoredImage(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockStorage := new(MockStorage)
	service := services.NewProductService(mockRepo, mockStorage, nil)

	existing := &models.Product{ID: "1", Image: "/uploads/old.png"}
	mockRepo.On("GetByID", "1").Return(existing, nil).Once()
	mockRepo.On("Update", mock.AnythingOfType("*models.Product")).Return(nil).Once()
	mockStorage.On("Put", "new-bytes", mock.Anything).Return(storage.PutResult{Key: "new.png", URL: "/uploads/new.png"}, nil).Once()
	mockStorage.On("KeyFromURL", "/uploads/old.png").Return("old.png", true).Once()
	mockStorage.On("Delete", "old.png").Return(errors.New("disk gone")).Once()

	product, err := service.UpdateProduct(context.Background(), "1", validInput(), &models.Upload{Filename: "new.png", Content: []byte("new-bytes")})
	require.NoError(t, err, "a failed cleanup does not fail the update")
	assert.Equal(t, "/uploads/new.png", product.Image)
	mockRepo.AssertExpectations(t)
	mockStorage.AssertExpectations(t)
}

func TestProductService_DeleteProductRemovesStoredImage(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockStorage := new(MockStorage)
	service := services.NewProductService(mockRepo, mockStorage, nil)

	mockRepo.On("GetByID", "1").Return(&models.Product{ID: "1", Image: "https://cdn.example.com/a.png"}, nil).Once()
	mockRepo.On("Delete", "1").Return(nil).Once()
	mockStorage.On("KeyFromURL", "https://cdn.example.com/a.png").Return("", false).Once()
	require.NoError(t, service.DeleteProduct(context.Background(), "1"))

	mockRepo.On("GetByID", "2").Return(&models.Product{ID: "2", Image: "/uploads/b.png"}, nil).Once()
	mockRepo.On("Delete", "2").Return(nil).Once()
	mockStorage.On("KeyFromURL", "/uploads/b.png").Return("b.png", true).Once()
	mockStorage.On("Delete", "b.png").Return(nil).Once()
	require.NoError(t, service.DeleteProduct(context.Background(), "2"))

	mockRepo.On("GetByID", "99").Return(nil, fmt.Errorf("product with ID 99: %w", repositories.ErrProductNotFound)).Once()
	err := service.DeleteProduct(context.Background(), "99")
	assert.True(t, errors.Is(err, repositories.ErrProductNotFound))

	mockRepo.AssertExpectations(t)
	mockStorage.AssertExpectations(t)
}
