package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// DefaultBaseURL is the catalog API the dashboard talks to.
const DefaultBaseURL = "https://ecommerce-api-nine-gilt.vercel.app/api"

// DefaultTimeout bounds a single request round trip.
const DefaultTimeout = 15 * time.Second

// Config holds transport client settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Logger  *log.Logger
}

// Client sends requests to the catalog API.
type Client struct {
	baseURL string
	timeout time.Duration
	logger  *log.Logger
}

// NewClient creates a new Client. Zero values in cfg fall back to the defaults.
func NewClient(cfg Config) *Client {
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: cfg.Timeout,
		logger:  cfg.Logger,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.logger == nil {
		c.logger = log.Default()
	}
	return c
}

// BaseURL returns the address every endpoint is resolved against.
func (c *Client) BaseURL() string { return c.baseURL }

// Response is a successful (2xx) reply.
type Response struct {
	StatusCode int
	Body       []byte
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}
	return nil
}

// Call performs method on endpoint with the given payload. The content type is
// picked from the payload kind. Any failure, network or HTTP status, is
// returned as a *TransportError.
func (c *Client) Call(method, endpoint string, payload Payload) (*Response, error) {
	a := fiber.AcquireAgent()
	req := a.Request()
	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + endpoint)
	if err := a.Parse(); err != nil {
		fiber.ReleaseAgent(a)
		return nil, c.fail(&TransportError{Method: method, Endpoint: endpoint, Err: err})
	}

	a.Timeout(c.timeout)
	a.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)

	switch payload.kind {
	case KindJSON:
		a.JSON(payload.json)
	case KindMultipart:
		args := fiber.AcquireArgs()
		defer fiber.ReleaseArgs(args)
		for _, f := range payload.form.Fields {
			args.Add(f.Key, f.Value)
		}
		// Files must be registered before the form is written.
		for _, f := range payload.form.Files {
			a.FileData(&fiber.FormFile{Fieldname: f.Field, Name: f.Filename, Content: f.Content})
		}
		a.MultipartForm(args)
	}

	// Bytes releases the agent.
	code, body, errs := a.Bytes()
	if len(errs) > 0 {
		return nil, c.fail(&TransportError{Method: method, Endpoint: endpoint, Err: errors.Join(errs...)})
	}
	if code < fiber.StatusOK || code >= fiber.StatusMultipleChoices {
		return nil, c.fail(&TransportError{
			Method:     method,
			Endpoint:   endpoint,
			StatusCode: code,
			Body:       body,
			Err:        fmt.Errorf("unexpected status %d", code),
		})
	}
	return &Response{StatusCode: code, Body: body}, nil
}

func (c *Client) fail(err *TransportError) error {
	if err.HasResponse() {
		c.logger.Printf("API request %s %s failed: %v (response: %s)", err.Method, err.Endpoint, err, err.Body)
	} else {
		c.logger.Printf("API request %s %s failed without response: %v (cause: %#v)", err.Method, err.Endpoint, err, err.Err)
	}
	return err
}
