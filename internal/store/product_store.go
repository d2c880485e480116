package store

import (
	"fmt"
	"net/url"
	"sync"

	"tokodash/internal/models"
	"tokodash/internal/transport"

	"github.com/gofiber/fiber/v2"
)

const productsEndpoint = "/products"

// Caller performs a single API round trip. *transport.Client implements it.
type Caller interface {
	Call(method, endpoint string, payload transport.Payload) (*transport.Response, error)
}

// ProductStore holds the product list shown by the dashboard. The list is
// only ever replaced wholesale from the server; mutations never edit it
// locally.
type ProductStore struct {
	api      Caller
	mu       sync.RWMutex
	products []models.Product
}

// NewProductStore creates a new ProductStore backed by api.
func NewProductStore(api Caller) *ProductStore {
	return &ProductStore{api: api}
}

// Products returns a copy of the current list.
func (s *ProductStore) Products() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Product, len(s.products))
	copy(out, s.products)
	return out
}

// Find looks up a product in the current list without a round trip.
func (s *ProductStore) Find(id string) (models.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}

// Refresh replaces the local list with the server's list.
func (s *ProductStore) Refresh() ([]models.Product, error) {
	resp, err := s.api.Call(fiber.MethodGet, productsEndpoint, transport.NoPayload())
	if err != nil {
		return nil, err
	}

	var products []models.Product
	if err := resp.Decode(&products); err != nil {
		return nil, fmt.Errorf("failed to read product list: %w", err)
	}
	if products == nil {
		products = []models.Product{}
	}

	s.mu.Lock()
	s.products = products
	s.mu.Unlock()

	return s.Products(), nil
}

// Get fetches a single product. The local list is not touched.
func (s *ProductStore) Get(id string) (*models.Product, error) {
	resp, err := s.api.Call(fiber.MethodGet, productPath(id), transport.NoPayload())
	if err != nil {
		return nil, err
	}

	var product models.Product
	if err := resp.Decode(&product); err != nil {
		return nil, fmt.Errorf("failed to read product %s: %w", id, err)
	}
	return &product, nil
}

// Create posts a new product and refreshes the list on success.
func (s *ProductStore) Create(payload transport.Payload) error {
	if _, err := s.api.Call(fiber.MethodPost, productsEndpoint, payload); err != nil {
		return err
	}
	return s.refreshAfter("create")
}

// Update replaces product id and refreshes the list on success.
func (s *ProductStore) Update(id string, payload transport.Payload) error {
	if _, err := s.api.Call(fiber.MethodPut, productPath(id), payload); err != nil {
		return err
	}
	return s.refreshAfter("update")
}

// Remove deletes product id and refreshes the list on success.
func (s *ProductStore) Remove(id string) error {
	if _, err := s.api.Call(fiber.MethodDelete, productPath(id), transport.NoPayload()); err != nil {
		return err
	}
	return s.refreshAfter("delete")
}

// RefreshError is returned when a mutation went through but the list
// could not be reloaded afterwards.
type RefreshError struct {
	Op  string
	Err error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("product %s succeeded but refresh failed: %v", e.Op, e.Err)
}

func (e *RefreshError) Unwrap() error { return e.Err }

func (s *ProductStore) refreshAfter(op string) error {
	if _, err := s.Refresh(); err != nil {
		return &RefreshError{Op: op, Err: err}
	}
	return nil
}

func productPath(id string) string {
	return productsEndpoint + "/" + url.PathEscape(id)
}
