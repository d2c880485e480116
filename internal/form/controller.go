package form

import (
	"encoding/base64"
	"errors"
	"log"
	"net/http"
	"strconv"

	"tokodash/internal/models"
	"tokodash/internal/store"
	"tokodash/internal/transport"
	"tokodash/internal/validation"
)

// Mode is the state of the product dialog.
type Mode int

const (
	ModeClosed Mode = iota
	ModeCreate
	ModeEdit
)

func (m Mode) String() string {
	switch m {
	case ModeCreate:
		return "create"
	case ModeEdit:
		return "edit"
	default:
		return "closed"
	}
}

// Stock labels shown in the edit dialog.
const (
	LabelInStock    = "In Stock"
	LabelOutOfStock = "Out of Stock"
)

// OutcomeKind classifies the result of a submit.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota + 1
	OutcomeInvalid
	OutcomeFailed
)

// Outcome is what the dashboard shows after a submit.
type Outcome struct {
	Kind        OutcomeKind
	Message     string
	FieldErrors validation.ValidationError
}

// OK reports whether the submit went through.
func (o Outcome) OK() bool { return o.Kind == OutcomeSuccess }

// ProductStore is the part of the store the controller writes through.
type ProductStore interface {
	Create(payload transport.Payload) error
	Update(id string, payload transport.Payload) error
}

// Controller binds the product dialog fields to validated submissions.
type Controller struct {
	store   ProductStore
	schema  *validation.Schema
	mode    Mode
	editing *models.Product
	fields  validation.ProductForm
	preview string
}

// NewController creates a new Controller in the closed state.
func NewController(products ProductStore, schema *validation.Schema) *Controller {
	return &Controller{
		store:  products,
		schema: schema,
	}
}

// Mode returns the current dialog state.
func (c *Controller) Mode() Mode { return c.mode }

// Editing returns the record being edited, or nil.
func (c *Controller) Editing() *models.Product { return c.editing }

// Fields exposes the form fields for input binding. The pointer is only
// valid while the dialog is open.
func (c *Controller) Fields() *validation.ProductForm { return &c.fields }

// Preview returns the image shown next to the form: a URL for an existing
// image or a data URL for a freshly picked file.
func (c *Controller) Preview() string { return c.preview }

// StockLabel is the in-stock text derived from the stock field.
func (c *Controller) StockLabel() string {
	qty, err := strconv.Atoi(c.fields.Stock)
	if err != nil || qty <= 0 {
		return LabelOutOfStock
	}
	return LabelInStock
}

// OpenCreate opens an empty dialog.
func (c *Controller) OpenCreate() {
	c.reset()
	c.mode = ModeCreate
}

// OpenEdit opens the dialog pre-filled from p.
func (c *Controller) OpenEdit(p models.Product) {
	c.reset()
	c.mode = ModeEdit
	c.editing = &p
	c.fields = validation.ProductForm{
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.String(),
		Stock:       strconv.Itoa(p.Inventory.Quantity),
		Category:    p.Category,
		Status:      string(p.Status),
		Tags:        append([]string(nil), p.Tags...),
		Variants:    append([]models.Variant(nil), p.Variants...),
	}
	c.preview = p.Image
}

// ChooseImage attaches a new image file and previews it.
func (c *Controller) ChooseImage(filename string, content []byte) {
	c.fields.Image = models.ImageFromUpload(filename, content)
	c.preview = "data:" + http.DetectContentType(content) + ";base64," + base64.StdEncoding.EncodeToString(content)
}

// SetImageURL points the product at an already hosted image.
func (c *Controller) SetImageURL(url string) {
	c.fields.Image = models.ImageFromURL(url)
	c.preview = url
}

// Cancel discards the dialog.
func (c *Controller) Cancel() {
	c.reset()
}

// Submit validates the fields and writes them through the store. On success
// the dialog closes; on any failure it stays open.
func (c *Controller) Submit() Outcome {
	if c.mode == ModeClosed {
		return Outcome{Kind: OutcomeFailed, Message: "No product form is open"}
	}

	sub, err := c.schema.Validate(c.fields)
	if err != nil {
		var verr validation.ValidationError
		if errors.As(err, &verr) {
			return Outcome{Kind: OutcomeInvalid, Message: "Please fix the highlighted fields", FieldErrors: verr}
		}
		log.Printf("Unexpected error validating product form: %v", err)
		return Outcome{Kind: OutcomeFailed, Message: "Something went wrong"}
	}

	editing := c.mode == ModeEdit
	if editing && sub.Upload == nil && sub.Input.Image == "" {
		// Keep the current image when no new one was chosen.
		sub.Input.Image = c.editing.Image
	}
	payload := buildPayload(sub)

	var message string
	if editing {
		err = c.store.Update(c.editing.ID, payload)
		message = "Product updated successfully"
	} else {
		err = c.store.Create(payload)
		message = "Product created successfully"
	}
	var stale *store.RefreshError
	if errors.As(err, &stale) {
		c.reset()
		return Outcome{Kind: OutcomeSuccess, Message: message + ", but the list could not be reloaded"}
	}
	if err != nil {
		return failure(err)
	}

	c.reset()
	return Outcome{Kind: OutcomeSuccess, Message: message}
}

func (c *Controller) reset() {
	c.mode = ModeClosed
	c.editing = nil
	c.fields = validation.ProductForm{Status: string(models.StatusActive)}
	c.preview = ""
}

// buildPayload picks multipart when a file is attached and JSON otherwise.
func buildPayload(sub *validation.Submission) transport.Payload {
	if sub.Upload == nil {
		return transport.JSONPayload(sub.Input)
	}
	return transport.MultipartPayload(transport.MultipartBody{
		Fields: sub.Input.FormFields(),
		Files: []transport.File{{
			Field:    models.FieldImage,
			Filename: sub.Upload.Filename,
			Content:  sub.Upload.Content,
		}},
	})
}

func failure(err error) Outcome {
	var terr *transport.TransportError
	if errors.As(err, &terr) {
		return Outcome{Kind: OutcomeFailed, Message: "Failed to save product: " + terr.Message()}
	}
	log.Printf("Unexpected error saving product: %v", err)
	return Outcome{Kind: OutcomeFailed, Message: "Something went wrong"}
}
