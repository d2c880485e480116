package models

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// Multipart field names used when a product is sent as a form.
const (
	FieldName              = "name"
	FieldDescription       = "description"
	FieldPrice             = "price"
	FieldCategory          = "category"
	FieldTags              = "tags"
	FieldVariants          = "variants"
	FieldInventoryQuantity = "inventory[quantity]"
	FieldInventoryInStock  = "inventory[inStock]"
	FieldStatus            = "status"
	FieldImage             = "image"
)

// FormField is one key/value pair of a multipart body. Keys may repeat.
type FormField struct {
	Key   string
	Value string
}

// FormFields flattens in into multipart form fields.
func (in ProductInput) FormFields() []FormField {
	fields := []FormField{
		{FieldName, in.Name},
		{FieldDescription, in.Description},
		{FieldPrice, in.Price.String()},
		{FieldCategory, in.Category},
		{FieldInventoryQuantity, strconv.Itoa(in.Inventory.Quantity)},
		{FieldInventoryInStock, strconv.FormatBool(in.Inventory.InStock)},
		{FieldStatus, string(in.Status)},
	}
	for _, tag := range in.Tags {
		fields = append(fields, FormField{FieldTags, tag})
	}
	if len(in.Variants) > 0 {
		// Marshaling a slice of plain string structs cannot fail.
		raw, _ := json.Marshal(in.Variants)
		fields = append(fields, FormField{FieldVariants, string(raw)})
	}
	if in.Image != "" {
		fields = append(fields, FormField{FieldImage, in.Image})
	}
	return fields
}

// ProductInputFromForm rebuilds a ProductInput from multipart values.
func ProductInputFromForm(values map[string][]string) (ProductInput, error) {
	first := func(key string) string {
		if v := values[key]; len(v) > 0 {
			return v[0]
		}
		return ""
	}

	in := ProductInput{
		Name:        first(FieldName),
		Description: first(FieldDescription),
		Category:    first(FieldCategory),
		Status:      Status(first(FieldStatus)),
		Image:       first(FieldImage),
		Tags:        values[FieldTags],
	}

	if raw := first(FieldPrice); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return ProductInput{}, fmt.Errorf("invalid price %q: %w", raw, err)
		}
		in.Price = price
	}
	if raw := first(FieldInventoryQuantity); raw != "" {
		qty, err := strconv.Atoi(raw)
		if err != nil {
			return ProductInput{}, fmt.Errorf("invalid inventory quantity %q: %w", raw, err)
		}
		in.Inventory.Quantity = qty
	}
	if raw := first(FieldInventoryInStock); raw != "" {
		inStock, err := strconv.ParseBool(raw)
		if err != nil {
			return ProductInput{}, fmt.Errorf("invalid inventory inStock %q: %w", raw, err)
		}
		in.Inventory.InStock = inStock
	}
	if raw := first(FieldVariants); raw != "" {
		if err := json.Unmarshal([]byte(raw), &in.Variants); err != nil {
			return ProductInput{}, fmt.Errorf("invalid variants: %w", err)
		}
	}
	return in, nil
}
