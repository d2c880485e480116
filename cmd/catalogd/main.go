// Command catalogd serves the product API the admin console talks to.
package main

import (
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"
	"github.com/streadway/amqp"

	"tokodash/internal/config"
	"tokodash/internal/database"
	"tokodash/internal/handlers"
	"tokodash/internal/models"
	"tokodash/internal/repositories"
	"tokodash/internal/services"
	"tokodash/internal/storage"
	"tokodash/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	cfg := config.Load(config.New())

	// --- Database ---
	db, err := database.Open(cfg.DatabaseDSN, cfg.DatabaseDebug)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	productRepo := repositories.NewGORMProductRepository(db)
	seedProducts(productRepo)

	// --- RabbitMQ (optional) ---
	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
		publisher = mqClient

		if err := mqClient.ConsumeProductEvents(logProductEvent); err != nil {
			log.Printf("Failed to start RabbitMQ consumer: %v", err)
		}
	} else {
		log.Println("TOKO_RABBITMQ_URL is not set. Product events are disabled.")
	}

	// --- Services and HTTP app ---
	images := storage.NewLocal(cfg.UploadDir, cfg.UploadURL)
	productService := services.NewProductService(productRepo, images, publisher)
	app := handlers.NewApp(productService, handlers.AppConfig{
		UploadDir:  cfg.UploadDir,
		RequestLog: cfg.RequestLog,
		BodyLimit:  10 << 20,
	})

	log.Printf("Starting catalog server on %s", cfg.AppPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}

func logProductEvent(msg amqp.Delivery) error {
	var event rabbitmq.Event
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		// Malformed events would be redelivered forever; drop them.
		log.Printf("Discarding malformed product event %d: %v", msg.DeliveryTag, err)
		return nil
	}
	log.Printf("Product event %s for %s at %s", event.Type, event.ProductID, event.At)
	return nil
}

// seedProducts fills an empty catalog with the sample products.
func seedProducts(repo repositories.ProductRepository) {
	existing, err := repo.GetAll()
	if err != nil {
		log.Printf("Error checking catalog before seeding: %v", err)
		return
	}
	if len(existing) > 0 {
		return
	}

	products := []models.Product{
		{Name: "Wireless Headphones", Description: "High-quality wireless headphones", Price: decimal.RequireFromString("99.99"), Category: "Electronics", Inventory: models.Inventory{Quantity: 25, InStock: true}, Status: models.StatusActive},
		{Name: "Smartphone Case", Description: "Protective smartphone case", Price: decimal.RequireFromString("29.99"), Category: "Accessories", Inventory: models.Inventory{Quantity: 50, InStock: true}, Status: models.StatusActive},
		{Name: "Laptop", Description: "High-performance laptop", Price: decimal.RequireFromString("899.99"), Category: "Electronics", Inventory: models.Inventory{Quantity: 10, InStock: true}, Status: models.StatusActive},
		{Name: "Watch", Description: "Stylish wristwatch", Price: decimal.RequireFromString("199.99"), Category: "Accessories", Status: models.StatusInactive},
	}

	for i := range products {
		products[i].Tags = []string{}
		products[i].Variants = []models.Variant{}
		if err := repo.Create(&products[i]); err != nil {
			log.Printf("Error seeding product %s: %v", products[i].Name, err)
		} else {
			log.Printf("Seeded product: %s (ID: %s)", products[i].Name, products[i].ID)
		}
	}
}
