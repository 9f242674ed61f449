package httpapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/co2-offset-dashboard/internal/catalog"
	"github.com/i474232898/co2-offset-dashboard/internal/common"
)

type productView struct {
	catalog.Product
	WeightKg       float64 `json:"weightKg"`
	PriceText      string  `json:"priceText"`
	EmissionText   string  `json:"emissionText"`
	CompensateText string  `json:"compensationPriceText"`
}

func newProductView(p catalog.Product) productView {
	return productView{
		Product:        p,
		WeightKg:       p.WeightGram / 1000,
		PriceText:      common.FormatCHF(p.Price),
		EmissionText:   common.FormatKg(p.Emission),
		CompensateText: common.FormatCHF(p.CompensationPrice),
	}
}

// GET /products?category=a,b&selected=<emission>-<weight>
func (h *handler) listProducts(c *fiber.Ctx) error {
	sel := catalog.NewSelection(queryList(c, "category"), queryList(c, "selected"))

	products, err := h.Catalog.List(c.UserContext(), catalog.Filter{Categories: sel.Categories})
	if err != nil {
		return toHTTPError(err, "failed to list products")
	}

	return c.JSON(fiber.Map{
		"products": catalog.ApplySelection(products, sel),
	})
}

func (h *handler) getProduct(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	p, err := h.Catalog.Get(c.UserContext(), id)
	if err != nil {
		return toHTTPError(err, "failed to load product")
	}
	return c.JSON(newProductView(p))
}

func (h *handler) comparison(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	ctx := c.UserContext()

	p, err := h.Catalog.Get(ctx, id)
	if err != nil {
		return toHTTPError(err, "failed to load product")
	}
	peers, err := h.Catalog.Peers(ctx, p.Category)
	if err != nil {
		return toHTTPError(err, "failed to load category peers")
	}

	return c.JSON(fiber.Map{
		"category": p.Category,
		"bars":     catalog.Comparison(p, peers),
	})
}

func (h *handler) categories(c *fiber.Ctx) error {
	cats, err := h.Catalog.Categories(c.UserContext())
	if err != nil {
		return toHTTPError(err, "failed to list categories")
	}
	return c.JSON(fiber.Map{
		"categories": cats,
		"legend":     catalog.Legend(cats),
	})
}

func (h *handler) stats(c *fiber.Ctx) error {
	st, err := h.Catalog.Stats(c.UserContext())
	if err != nil {
		return toHTTPError(err, "failed to compute catalog stats")
	}
	return c.JSON(fiber.Map{
		"stats":           st,
		"minEmissionText": common.FormatKg(st.MinEmission),
		"maxEmissionText": common.FormatKg(st.MaxEmission),
	})
}
