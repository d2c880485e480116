package validation

import (
	"errors"
	"net/http"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"tokodash/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Field error messages shown next to the form inputs.
const (
	MsgNameRequired     = "Product name is required"
	MsgDescriptionShort = "Description should be at least 10 characters"
	MsgPriceInvalid     = "Price must be a valid number greater than 0"
	MsgStockInvalid     = "Stock must be a valid number and at least 0"
	MsgCategoryRequired = "Category is required"
	MsgStatusRequired   = "status is required"
	MsgStatusInvalid    = "Status must be active or inactive"
	MsgTagEmpty         = "Tag cannot be empty"
	MsgImageURLInvalid  = "Must be a valid image URL"
	MsgImageFileInvalid = "Image must be a JPEG, PNG, GIF or WebP file"
)

var allowedImageMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// ProductForm is the raw text captured by the product dialog.
type ProductForm struct {
	Name        string           `form:"name" validate:"required"`
	Description string           `form:"description" validate:"min=10"`
	Price       string           `form:"price" validate:"price"`
	Stock       string           `form:"stock" validate:"stock"`
	Category    string           `form:"category" validate:"required"`
	Status      string           `form:"status" validate:"required,oneof=active inactive"`
	Tags        []string         `form:"tags" validate:"dive,required"`
	Variants    []models.Variant `form:"variants" validate:"-"`
	Image       models.Image     `form:"image" validate:"-"`
}

// Submission is a form that passed validation, with every field coerced.
type Submission struct {
	Input  models.ProductInput
	Upload *models.Upload
}

// ValidationError maps form field names to messages. It holds every failing
// field of a single validation run.
type ValidationError map[string]string

func (e ValidationError) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Schema checks and coerces product forms.
type Schema struct {
	validate *validator.Validate
}

// NewSchema creates a Schema with the product rules registered.
func NewSchema() *Schema {
	v := validator.New()
	v.RegisterTagNameFunc(formFieldName)
	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("price", validPrice)
	_ = v.RegisterValidation("stock", validStock)
	return &Schema{validate: v}
}

// Validate checks form and returns the coerced submission, or a
// ValidationError naming every invalid field.
func (s *Schema) Validate(form ProductForm) (*Submission, error) {
	form.Name = strings.TrimSpace(form.Name)
	form.Category = strings.TrimSpace(form.Category)
	form.Price = strings.TrimSpace(form.Price)
	form.Stock = strings.TrimSpace(form.Stock)
	form.Status = strings.TrimSpace(form.Status)

	verr := ValidationError{}
	if err := s.validate.Struct(form); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return nil, err
		}
		for _, fe := range fieldErrs {
			key := fieldKey(fe.Field())
			if _, seen := verr[key]; !seen {
				verr[key] = message(key, fe.Tag())
			}
		}
	}
	if msg := s.checkImage(form.Image); msg != "" {
		verr[models.FieldImage] = msg
	}
	if len(verr) > 0 {
		return nil, verr
	}

	// Both parse cleanly: the custom rules above already accepted them.
	price, _ := decimal.NewFromString(form.Price)
	stock, _ := strconv.Atoi(form.Stock)

	tags := make([]string, len(form.Tags))
	copy(tags, form.Tags)

	sub := &Submission{
		Input: models.ProductInput{
			Name:        form.Name,
			Description: form.Description,
			Price:       price,
			Category:    form.Category,
			Tags:        tags,
			Variants:    form.Variants,
			Inventory:   models.Inventory{Quantity: stock, InStock: stock > 0},
			Status:      models.Status(form.Status),
		},
	}
	switch form.Image.Source {
	case models.ImageURL:
		sub.Input.Image = form.Image.URL
	case models.ImageUpload:
		sub.Upload = form.Image.Upload
	}
	return sub, nil
}

func (s *Schema) checkImage(img models.Image) string {
	switch img.Source {
	case models.ImageURL:
		if err := s.validate.Var(img.URL, "required,url"); err != nil {
			return MsgImageURLInvalid
		}
	case models.ImageUpload:
		if img.Upload == nil || img.Upload.Filename == "" || len(img.Upload.Content) == 0 {
			return MsgImageFileInvalid
		}
		if !allowedImageMIME[http.DetectContentType(img.Upload.Content)] {
			return MsgImageFileInvalid
		}
	}
	return ""
}

func validPrice(fl validator.FieldLevel) bool {
	price, err := decimal.NewFromString(fl.Field().String())
	return err == nil && price.IsPositive()
}

func validStock(fl validator.FieldLevel) bool {
	stock, err := strconv.Atoi(fl.Field().String())
	return err == nil && stock >= 0
}

func formFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
	if name == "" || name == "-" {
		return strings.ToLower(f.Name)
	}
	return name
}

// fieldKey strips the index from dive errors: tags[2] -> tags.
func fieldKey(field string) string {
	if i := strings.IndexByte(field, '['); i >= 0 {
		return field[:i]
	}
	return field
}

func message(field, tag string) string {
	switch field {
	case models.FieldName:
		return MsgNameRequired
	case models.FieldDescription:
		return MsgDescriptionShort
	case models.FieldPrice:
		return MsgPriceInvalid
	case "stock":
		return MsgStockInvalid
	case models.FieldCategory:
		return MsgCategoryRequired
	case models.FieldStatus:
		if tag == "required" {
			return MsgStatusRequired
		}
		return MsgStatusInvalid
	case models.FieldTags:
		return MsgTagEmpty
	default:
		return "Invalid value"
	}
}
