package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle flag shown on the product card.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Inventory holds the stock quantity and the in-stock flag derived from it.
type Inventory struct {
	Quantity int  `json:"quantity" validate:"gte=0"`
	InStock  bool `json:"inStock"`
}

// Variant is a single product option, e.g. {size, XL}.
type Variant struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Product represents a product record as stored by the catalog service.
type Product struct {
	ID          string          `json:"_id" gorm:"primaryKey;type:varchar(36)"`
	Name        string          `json:"name" gorm:"type:varchar(100);not null"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Category    string          `json:"category" gorm:"type:varchar(100)"`
	Tags        []string        `json:"tags" gorm:"serializer:json"`
	Variants    []Variant       `json:"variants" gorm:"serializer:json"`
	Inventory   Inventory       `json:"inventory" gorm:"embedded;embeddedPrefix:inventory_"`
	Status      Status          `json:"status" gorm:"type:varchar(16)"`
	Image       string          `json:"image,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Apply replaces every mutable field of p with the values from in.
// The ID and timestamps are left alone.
func (p *Product) Apply(in ProductInput) {
	p.Name = in.Name
	p.Description = in.Description
	p.Price = in.Price
	p.Category = in.Category
	p.Tags = in.Tags
	p.Variants = in.Variants
	p.Inventory = in.Inventory
	p.Status = in.Status
	p.Image = in.Image
}

// ProductInput is the body of a create or full update request.
type ProductInput struct {
	Name        string          `json:"name" validate:"required,max=100"`
	Description string          `json:"description" validate:"max=2000"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category" validate:"required,max=100"`
	Tags        []string        `json:"tags"`
	Variants    []Variant       `json:"variants"`
	Inventory   Inventory       `json:"inventory"`
	Status      Status          `json:"status" validate:"required,oneof=active inactive"`
	Image       string          `json:"image,omitempty"`
}
