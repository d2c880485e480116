package transport_test

import (
	"errors"
	"io"
	"log"
	"net"
	"strings"
	"testing"
	"time"

	"tokodash/internal/models"
	"tokodash/internal/transport"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startServer serves app on a loopback port and returns its base URL.
func startServer(t *testing.T, app *fiber.App) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })
	return "http://" + ln.Addr().String()
}

func newClient(baseURL string) *transport.Client {
	return transport.NewClient(transport.Config{
		BaseURL: baseURL,
		Timeout: 5 * time.Second,
		Logger:  log.New(io.Discard, "", 0),
	})
}

func TestClient_CallSendsJSON(t *testing.T) {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Post("/products", func(c *fiber.Ctx) error {
		if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{"message": "json expected"})
		}
		var body map[string]interface{}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"_id": "abc", "name": body["name"]})
	})
	client := newClient(startServer(t, app))

	resp, err := client.Call(fiber.MethodPost, "/products", transport.JSONPayload(map[string]string{"name": "Lamp"}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var got struct {
		ID   string `json:"_id"`
		Name string `json:"name"`
	}
	require.NoError(t, resp.Decode(&got))
	assert.Equal(t, "abc", got.ID)
	assert.Equal(t, "Lamp", got.Name)
}

func TestClient_CallSendsMultipart(t *testing.T) {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Put("/products/:id", func(c *fiber.Ctx) error {
		if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{"message": "multipart expected"})
		}
		form, err := c.MultipartForm()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
		}
		file, err := c.FormFile("image")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
		}
		return c.JSON(fiber.Map{
			"id":       c.Params("id"),
			"name":     form.Value["name"],
			"tags":     form.Value["tags"],
			"filename": file.Filename,
			"size":     file.Size,
		})
	})
	client := newClient(startServer(t, app))

	payload := transport.MultipartPayload(transport.MultipartBody{
		Fields: []models.FormField{{Key: "name", Value: "Lamp"}, {Key: "tags", Value: "home"}, {Key: "tags", Value: "light"}},
		Files:  []transport.File{{Field: "image", Filename: "lamp.png", Content: []byte("0123456789")}},
	})
	resp, err := client.Call(fiber.MethodPut, "/products/p-1", payload)
	require.NoError(t, err)

	var got struct {
		ID       string   `json:"id"`
		Name     []string `json:"name"`
		Tags     []string `json:"tags"`
		Filename string   `json:"filename"`
		Size     int      `json:"size"`
	}
	require.NoError(t, resp.Decode(&got))
	assert.Equal(t, "p-1", got.ID)
	assert.Equal(t, []string{"Lamp"}, got.Name)
	assert.Equal(t, []string{"home", "light"}, got.Tags)
	assert.Equal(t, "lamp.png", got.Filename)
	assert.Equal(t, 10, got.Size)
}

func TestClient_CallWithoutPayload(t *testing.T) {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Delete("/products/:id", func(c *fiber.Ctx) error {
		if len(c.Body()) != 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "unexpected body"})
		}
		return c.JSON(fiber.Map{"message": "deleted " + c.Params("id")})
	})
	client := newClient(startServer(t, app))

	resp, err := client.Call(fiber.MethodDelete, "/products/abc", transport.NoPayload())
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(resp.Body), "deleted abc")
}

func TestClient_CallApplicationError(t *testing.T) {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Get("/products/:id", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Product not found"})
	})
	client := newClient(startServer(t, app))

	resp, err := client.Call(fiber.MethodGet, "/products/missing", transport.NoPayload())
	assert.Nil(t, resp)
	require.Error(t, err)

	var terr *transport.TransportError
	require.True(t, errors.As(err, &terr))
	assert.True(t, terr.HasResponse())
	assert.Equal(t, fiber.StatusNotFound, terr.StatusCode)
	assert.Equal(t, "Product not found", terr.Message())
}

func TestClient_CallNetworkError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	client := newClient("http://" + addr)
	resp, err := client.Call(fiber.MethodGet, "/products", transport.NoPayload())
	assert.Nil(t, resp)
	require.Error(t, err)

	var terr *transport.TransportError
	require.True(t, errors.As(err, &terr))
	assert.False(t, terr.HasResponse())
	assert.Empty(t, terr.Body)
	assert.NotNil(t, terr.Err)
}

func TestNewClient_Defaults(t *testing.T) {
	client := transport.NewClient(transport.Config{})
	assert.Equal(t, transport.DefaultBaseURL, client.BaseURL())

	client = transport.NewClient(transport.Config{BaseURL: "http://localhost:8080/api/"})
	assert.Equal(t, "http://localhost:8080/api", client.BaseURL())
}

func TestPayload_Kinds(t *testing.T) {
	assert.Equal(t, transport.KindNone, transport.NoPayload().Kind())

	p := transport.JSONPayload(map[string]int{"a": 1})
	assert.Equal(t, transport.KindJSON, p.Kind())
	_, ok := p.Multipart()
	assert.False(t, ok)

	p = transport.MultipartPayload(transport.MultipartBody{})
	assert.Equal(t, transport.KindMultipart, p.Kind())
	assert.Equal(t, "multipart", p.Kind().String())
	_, ok = p.JSON()
	assert.False(t, ok)
}
