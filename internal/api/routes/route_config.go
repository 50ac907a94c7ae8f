package routes

import (
	"FreshMart-Backend/internal/api/handlers"
	"FreshMart-Backend/internal/middleware"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type Config struct {
	App              *fiber.App
	ProductHandler   handlers.ProductHandler
	FreshnessHandler handlers.FreshnessHandler
	Middleware       middleware.Middleware
}

func (c *Config) Setup() {
	c.App.Use(c.Middleware.CORSMiddleware())
	c.Products()
	c.Freshness()
	c.GuestRoute()
}

func (c *Config) Products() {
	products := c.App.Group("/api/v1/products")
	products.Get("/dashboard", c.ProductHandler.GetDashboardStats)

	// Basic CRUD operations
	products.Post("", c.ProductHandler.AddProduct)
	products.Get("", c.ProductHandler.GetProducts)
	products.Get("/:id", c.ProductHandler.GetProductDetail)
	products.Delete("/:id", c.ProductHandler.DeactivateProduct)

	// Special operations
	products.Put("/:id/price", c.ProductHandler.OverridePrice)
	products.Post("/optimize-pricing", c.ProductHandler.OptimizePricing)
}

func (c *Config) Freshness() {
	freshnessGroup := c.App.Group("/api/v1/freshness")
	freshnessGroup.Post("/analyze", c.FreshnessHandler.Analyze)
	freshnessGroup.Get("/history/:productId", c.FreshnessHandler.GetHistory)
	freshnessGroup.Get("/trends", c.FreshnessHandler.GetTrends)

	freshnessGroup.Use("/stream", func(ctx *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(ctx) {
			return ctx.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	freshnessGroup.Get("/stream", c.FreshnessHandler.Stream())
}

func (c *Config) GuestRoute() {
	c.App.Get("/api/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "pong, its works. test"})
	})
}
