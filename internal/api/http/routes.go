package httpapi

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/co2-offset-dashboard/internal/catalog"
	"github.com/i474232898/co2-offset-dashboard/internal/compensation"
	"github.com/i474232898/co2-offset-dashboard/internal/environment"
	"github.com/i474232898/co2-offset-dashboard/internal/offset"
	"github.com/i474232898/co2-offset-dashboard/internal/session"
)

var validate = validator.New()

// Catalog is the read side of the product store.
type Catalog interface {
	List(ctx context.Context, f catalog.Filter) ([]catalog.Product, error)
	Get(ctx context.Context, id int64) (catalog.Product, error)
	Peers(ctx context.Context, category string) ([]catalog.Product, error)
	Categories(ctx context.Context) ([]string, error)
	Stats(ctx context.Context) (catalog.Stats, error)
}

// Environment serves stored environment snapshots.
type Environment interface {
	GetLatest(loc environment.Location) (environment.Snapshot, error)
	GetRange(loc environment.Location, from, to time.Time) ([]environment.Snapshot, error)
}

// Deps groups what the handlers need.
type Deps struct {
	Catalog      Catalog
	Environment  Environment
	Sessions     *session.Registry
	Location     environment.Location
	DefaultTrees int
	Offset       offset.Params
	Pacing       compensation.Pacing
}

type handler struct {
	Deps
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	h := &handler{Deps: deps}
	v1 := app.Group("/api/v1")

	v1.Get("/products", h.listProducts)
	v1.Get("/products/:id", h.getProduct)
	v1.Get("/products/:id/comparison", h.comparison)
	v1.Get("/categories", h.categories)
	v1.Get("/stats", h.stats)

	v1.Get("/environment", h.currentEnvironment)
	v1.Get("/environment/history", h.environmentHistory)
	v1.Get("/offsets", h.offsets)

	v1.Post("/simulations", h.createSimulation)
	v1.Get("/simulations/:id", h.getSimulation)
	v1.Post("/simulations/:id/advance", h.advanceSimulation)
	v1.Delete("/simulations/:id", h.cancelSimulation)
	v1.Get("/simulations/:id/stream", h.streamSimulation)
}
