package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"tokodash/internal/models"
	"tokodash/internal/repositories"
	"tokodash/internal/storage"

	"github.com/go-playground/validator/v10"
)

// Product event types.
const (
	EventProductCreated = "product.created"
	EventProductUpdated = "product.updated"
	EventProductDeleted = "product.deleted"
)

// ErrUploadsDisabled is returned when an image file arrives but no storage
// is configured.
var ErrUploadsDisabled = errors.New("image uploads are not enabled")

// EventPublisher announces product changes. *rabbitmq.Client implements it.
type EventPublisher interface {
	PublishProductEvent(eventType, productID string, product interface{}) error
}

// InputError lists the invalid fields of a product input.
type InputError struct {
	Fields map[string]string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid product input: %d field(s)", len(e.Fields))
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo      repositories.ProductRepository
	images    storage.Storage
	publisher EventPublisher
	validate  *validator.Validate
}

// NewProductService creates a new ProductService. images and publisher may be nil.
func NewProductService(repo repositories.ProductRepository, images storage.Storage, publisher EventPublisher) *ProductService {
	return &ProductService{
		repo:      repo,
		images:    images,
		publisher: publisher,
		validate:  validator.New(),
	}
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts() ([]models.Product, error) {
	products, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(id string) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// CreateProduct validates input, stores the optional upload and creates the product.
func (s *ProductService) CreateProduct(ctx context.Context, input models.ProductInput, upload *models.Upload) (*models.Product, error) {
	if err := s.check(input); err != nil {
		return nil, err
	}
	if err := s.attachUpload(ctx, &input, upload); err != nil {
		return nil, err
	}

	product := &models.Product{}
	product.Apply(normalize(input))
	if err := s.repo.Create(product); err != nil {
		return nil, err
	}

	s.publish(EventProductCreated, product.ID, product)
	return product, nil
}

// UpdateProduct replaces every mutable field of product id.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, input models.ProductInput, upload *models.Upload) (*models.Product, error) {
	if err := s.check(input); err != nil {
		return nil, err
	}

	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.attachUpload(ctx, &input, upload); err != nil {
		return nil, err
	}

	previous := product.Image
	product.Apply(normalize(input))
	if err := s.repo.Update(product); err != nil {
		return nil, err
	}
	if previous != product.Image {
		s.discardImage(ctx, previous)
	}

	s.publish(EventProductUpdated, product.ID, product)
	return product, nil
}

// DeleteProduct deletes a product by its ID, along with its stored image.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	var image string
	if s.images != nil {
		product, err := s.repo.GetByID(id)
		if err != nil {
			return err
		}
		image = product.Image
	}

	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.discardImage(ctx, image)
	s.publish(EventProductDeleted, id, nil)
	return nil
}

func (s *ProductService) check(input models.ProductInput) error {
	fields := map[string]string{}
	if err := s.validate.Struct(input); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("failed to validate product: %w", err)
		}
		for _, e := range verrs {
			fields[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
	}
	if !input.Price.IsPositive() {
		fields["Price"] = "Field 'Price' must be greater than 0"
	}
	if len(fields) > 0 {
		return &InputError{Fields: fields}
	}
	return nil
}

func (s *ProductService) attachUpload(ctx context.Context, input *models.ProductInput, upload *models.Upload) error {
	if upload == nil {
		return nil
	}
	if s.images == nil {
		return ErrUploadsDisabled
	}

	res, err := s.images.Put(ctx, bytes.NewReader(upload.Content), storage.PutInput{
		Filename:    upload.Filename,
		ContentType: http.DetectContentType(upload.Content),
	})
	if err != nil {
		return fmt.Errorf("failed to store product image: %w", err)
	}
	input.Image = res.URL
	return nil
}

// discardImage removes an image this service stored earlier. Images hosted
// elsewhere are left alone.
func (s *ProductService) discardImage(ctx context.Context, url string) {
	if s.images == nil || url == "" {
		return
	}
	key, ok := s.images.KeyFromURL(url)
	if !ok {
		return
	}
	if err := s.images.Delete(ctx, key); err != nil {
		log.Printf("Warning: Failed to remove product image %s: %v", key, err)
	}
}

func (s *ProductService) publish(eventType, id string, product *models.Product) {
	if s.publisher == nil {
		return
	}
	var payload interface{}
	if product != nil {
		payload = product
	}
	if err := s.publisher.PublishProductEvent(eventType, id, payload); err != nil {
		log.Printf("Warning: Failed to publish %s event for product %s: %v", eventType, id, err)
	}
}

// normalize fills server-side derived fields.
func normalize(input models.ProductInput) models.ProductInput {
	input.Inventory.InStock = input.Inventory.Quantity > 0
	if input.Tags == nil {
		input.Tags = []string{}
	}
	if input.Variants == nil {
		input.Variants = []models.Variant{}
	}
	return input
}
