package dashboard

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"tokodash/internal/form"
	"tokodash/internal/models"
	"tokodash/internal/store"
	"tokodash/internal/transport"
	"tokodash/internal/validation"
)

// Level is the severity of a notification.
type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// Notice is the toast shown after an action.
type Notice struct {
	Level   Level
	Message string
}

// ProductsPage is the products screen. It owns the store and the form
// controller; everything it renders is derived from the store.
type ProductsPage struct {
	store  *store.ProductStore
	form   *form.Controller
	notice Notice
}

// NewProductsPage creates a new ProductsPage talking to api.
func NewProductsPage(api store.Caller) *ProductsPage {
	s := store.NewProductStore(api)
	return &ProductsPage{
		store: s,
		form:  form.NewController(s, validation.NewSchema()),
	}
}

// Store returns the page's product store.
func (p *ProductsPage) Store() *store.ProductStore { return p.store }

// Form returns the page's product dialog.
func (p *ProductsPage) Form() *form.Controller { return p.form }

// Notification returns the latest notice.
func (p *ProductsPage) Notification() Notice { return p.notice }

// Load fetches the product list.
func (p *ProductsPage) Load() error {
	if _, err := p.store.Refresh(); err != nil {
		p.notify(LevelError, "Failed to load products: "+errorMessage(err))
		return err
	}
	return nil
}

// Edit opens the dialog for product id, fetching it if it is not in the list.
func (p *ProductsPage) Edit(id string) error {
	product, ok := p.store.Find(id)
	if !ok {
		fetched, err := p.store.Get(id)
		if err != nil {
			p.notify(LevelError, "Failed to load product: "+errorMessage(err))
			return err
		}
		product = *fetched
	}
	p.form.OpenEdit(product)
	return nil
}

// Submit submits the dialog and records the outcome as a notice.
func (p *ProductsPage) Submit() form.Outcome {
	out := p.form.Submit()
	if out.OK() {
		p.notify(LevelInfo, out.Message)
	} else {
		p.notify(LevelError, out.Message)
	}
	return out
}

// Delete removes product id after confirm approves it. A nil confirm
// deletes without asking.
func (p *ProductsPage) Delete(id string, confirm func(models.Product) bool) error {
	if confirm != nil {
		product, ok := p.store.Find(id)
		if !ok {
			product = models.Product{ID: id}
		}
		if !confirm(product) {
			return nil
		}
	}

	err := p.store.Remove(id)
	var stale *store.RefreshError
	switch {
	case err == nil:
		p.notify(LevelInfo, "Product deleted successfully")
	case errors.As(err, &stale):
		p.notify(LevelInfo, "Product deleted successfully, but the list could not be reloaded")
	default:
		p.notify(LevelError, "Failed to delete product: "+errorMessage(err))
		return err
	}
	return nil
}

// RenderGrid writes the product list as a table.
func (p *ProductsPage) RenderGrid(w io.Writer) error {
	products := p.store.Products()
	if len(products) == 0 {
		_, err := fmt.Fprintln(w, "No products found.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tPRICE\tSTOCK\tCATEGORY\tDESCRIPTION")
	for _, product := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			product.ID,
			product.Name,
			product.Status,
			FormatPrice(product),
			product.Inventory.Quantity,
			product.Category,
			truncate(product.Description, 40),
		)
	}
	return tw.Flush()
}

// RenderProduct writes the detail card of a single product, including the
// image preview reference.
func RenderProduct(w io.Writer, product models.Product) error {
	stock := form.LabelOutOfStock
	if product.Inventory.Quantity > 0 {
		stock = form.LabelInStock
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", product.ID)
	fmt.Fprintf(tw, "Name:\t%s\n", product.Name)
	fmt.Fprintf(tw, "Status:\t%s\n", product.Status)
	fmt.Fprintf(tw, "Price:\t%s\n", FormatPrice(product))
	fmt.Fprintf(tw, "Stock:\t%d (%s)\n", product.Inventory.Quantity, stock)
	fmt.Fprintf(tw, "Category:\t%s\n", product.Category)
	if len(product.Tags) > 0 {
		fmt.Fprintf(tw, "Tags:\t%s\n", strings.Join(product.Tags, ", "))
	}
	for _, v := range product.Variants {
		fmt.Fprintf(tw, "Variant:\t%s=%s\n", v.Type, v.Value)
	}
	fmt.Fprintf(tw, "Description:\t%s\n", product.Description)
	if product.Image != "" {
		fmt.Fprintf(tw, "Image:\t%s\n", product.Image)
	}
	return tw.Flush()
}

// RenderFieldErrors lists validation messages one per line.
func RenderFieldErrors(w io.Writer, errs validation.ValidationError) error {
	for _, line := range strings.Split(strings.TrimPrefix(errs.Error(), "validation failed: "), "; ") {
		if _, err := fmt.Fprintln(w, "  "+line); err != nil {
			return err
		}
	}
	return nil
}

// FormatPrice renders a price the way the product cards show it.
func FormatPrice(product models.Product) string {
	return "$" + product.Price.StringFixed(2)
}

func (p *ProductsPage) notify(level Level, message string) {
	p.notice = Notice{Level: level, Message: message}
}

func errorMessage(err error) string {
	var terr *transport.TransportError
	if errors.As(err, &terr) {
		return terr.Message()
	}
	return err.Error()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
