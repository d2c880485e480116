// Command tokodash is the product admin console for the toko catalog API.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"tokodash/internal/config"
	"tokodash/internal/dashboard"
	"tokodash/internal/form"
	"tokodash/internal/models"
	"tokodash/internal/transport"
)

const usage = `Usage: tokodash <command> [flags]

Commands:
  list                 show every product
  show <id>            show a single product
  create               add a product
  update <id>          edit a product; only the given flags change
  delete <id>          delete a product

Run "tokodash <command> --help" for the flags of a command.
`

// errUsage marks a failure already explained to the user.
var errUsage = errors.New("invalid usage")

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if !errors.Is(err, errUsage) {
			log.Printf("tokodash: %v", err)
		}
		os.Exit(1)
	}
}

func run(args []string, in io.Reader, out io.Writer) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprint(out, usage)
		if len(args) == 0 {
			return errUsage
		}
		return nil
	}
	cmd, rest := args[0], args[1:]

	v := config.New()
	fs := pflag.NewFlagSet(cmd, pflag.ContinueOnError)
	fs.SetOutput(out)
	fs.String("base-url", "", "catalog API base URL (env TOKO_API_BASE_URL)")
	fs.Duration("timeout", 0, "request timeout (env TOKO_API_TIMEOUT)")
	_ = v.BindPFlag(config.KeyAPIBaseURL, fs.Lookup("base-url"))
	_ = v.BindPFlag(config.KeyAPITimeout, fs.Lookup("timeout"))

	switch cmd {
	case "create", "update":
		addProductFlags(fs)
	case "delete":
		fs.BoolP("yes", "y", false, "delete without asking")
	case "list", "show":
	default:
		fmt.Fprintf(out, "unknown command %q\n\n%s", cmd, usage)
		return errUsage
	}

	if err := fs.Parse(rest); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return errUsage
	}

	page := newPage(v)
	positional := fs.Args()

	switch cmd {
	case "list":
		return listProducts(page, out)
	case "show":
		id, err := requireID(positional, out)
		if err != nil {
			return err
		}
		return showProduct(page, id, out)
	case "create":
		page.Form().OpenCreate()
		return submitProduct(page, fs, out)
	case "update":
		id, err := requireID(positional, out)
		if err != nil {
			return err
		}
		if err := page.Edit(id); err != nil {
			return reportNotice(page, out, err)
		}
		return submitProduct(page, fs, out)
	default: // delete
		id, err := requireID(positional, out)
		if err != nil {
			return err
		}
		yes, _ := fs.GetBool("yes")
		return deleteProduct(page, id, yes, in, out)
	}
}

func newPage(v *viper.Viper) *dashboard.ProductsPage {
	cfg := config.Load(v)
	return dashboard.NewProductsPage(transport.NewClient(cfg.Transport()))
}

func addProductFlags(fs *pflag.FlagSet) {
	fs.String("name", "", "product name")
	fs.String("description", "", "product description (at least 10 characters)")
	fs.String("price", "", "price, e.g. 19.99")
	fs.String("category", "", "category")
	fs.String("stock", "", "stock quantity")
	fs.String("status", "", "active or inactive")
	fs.StringSlice("tags", nil, "comma separated tags")
	fs.String("image-url", "", "URL of an already hosted image")
	fs.String("image-file", "", "path of an image file to upload")
}

// applyFlags copies the flags the user set into the open form.
func applyFlags(fs *pflag.FlagSet, c *form.Controller) error {
	fields := c.Fields()
	text := map[string]*string{
		"name":        &fields.Name,
		"description": &fields.Description,
		"price":       &fields.Price,
		"category":    &fields.Category,
		"stock":       &fields.Stock,
		"status":      &fields.Status,
	}
	for name, dst := range text {
		if fs.Changed(name) {
			*dst, _ = fs.GetString(name)
		}
	}
	if fs.Changed("tags") {
		fields.Tags, _ = fs.GetStringSlice("tags")
	}
	if fs.Changed("image-url") {
		url, _ := fs.GetString("image-url")
		c.SetImageURL(url)
	}
	if fs.Changed("image-file") {
		path, _ := fs.GetString("image-file")
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read image file: %w", err)
		}
		c.ChooseImage(filepath.Base(path), content)
	}
	return nil
}

func listProducts(page *dashboard.ProductsPage, out io.Writer) error {
	if err := page.Load(); err != nil {
		return reportNotice(page, out, err)
	}
	return page.RenderGrid(out)
}

func showProduct(page *dashboard.ProductsPage, id string, out io.Writer) error {
	product, err := page.Store().Get(id)
	if err != nil {
		var terr *transport.TransportError
		if errors.As(err, &terr) {
			fmt.Fprintln(out, "Failed to load product: "+terr.Message())
		}
		return err
	}
	return dashboard.RenderProduct(out, *product)
}

func submitProduct(page *dashboard.ProductsPage, fs *pflag.FlagSet, out io.Writer) error {
	if err := applyFlags(fs, page.Form()); err != nil {
		page.Form().Cancel()
		return err
	}
	if preview := page.Form().Preview(); preview != "" && !strings.HasPrefix(preview, "data:") {
		fmt.Fprintf(out, "Image: %s\n", preview)
	}

	outcome := page.Submit()
	fmt.Fprintln(out, outcome.Message)
	switch outcome.Kind {
	case form.OutcomeSuccess:
		return page.RenderGrid(out)
	case form.OutcomeInvalid:
		if err := dashboard.RenderFieldErrors(out, outcome.FieldErrors); err != nil {
			return err
		}
		return outcome.FieldErrors
	default:
		return errors.New(outcome.Message)
	}
}

func deleteProduct(page *dashboard.ProductsPage, id string, yes bool, in io.Reader, out io.Writer) error {
	if err := page.Load(); err != nil {
		return reportNotice(page, out, err)
	}

	confirmed := true
	var confirm func(models.Product) bool
	if !yes {
		reader := bufio.NewReader(in)
		confirm = func(p models.Product) bool {
			label := p.ID
			if p.Name != "" {
				label = fmt.Sprintf("%s (%s)", p.Name, p.ID)
			}
			fmt.Fprintf(out, "Are you sure you want to delete %s? [y/N] ", label)
			answer, _ := reader.ReadString('\n')
			answer = strings.ToLower(strings.TrimSpace(answer))
			confirmed = answer == "y" || answer == "yes"
			return confirmed
		}
	}

	if err := page.Delete(id, confirm); err != nil {
		return reportNotice(page, out, err)
	}
	if !confirmed {
		fmt.Fprintln(out, "Cancelled.")
		return nil
	}
	fmt.Fprintln(out, page.Notification().Message)
	return page.RenderGrid(out)
}

func requireID(args []string, out io.Writer) (string, error) {
	if len(args) != 1 || args[0] == "" {
		fmt.Fprintln(out, "exactly one product id is required")
		return "", errUsage
	}
	return args[0], nil
}

func reportNotice(page *dashboard.ProductsPage, out io.Writer, err error) error {
	if n := page.Notification(); n.Level == dashboard.LevelError {
		fmt.Fprintln(out, n.Message)
	}
	return err
}
