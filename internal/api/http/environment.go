package httpapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/co2-offset-dashboard/internal/environment"
	"github.com/i474232898/co2-offset-dashboard/internal/offset"
	"github.com/i474232898/co2-offset-dashboard/internal/store"
)

func (h *handler) currentEnvironment(c *fiber.Ctx) error {
	loc, err := h.parseLocation(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	snapshot, err := h.Environment.GetLatest(loc)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "no environment data for requested location")
		}
		return toHTTPError(err, "failed to fetch environment data")
	}

	return c.JSON(fiber.Map{
		"snapshot": snapshot,
		"theme":    environment.ThemeFor(snapshot.Condition),
	})
}

func (h *handler) environmentHistory(c *fiber.Ctx) error {
	req, err := h.bindHistory(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	snapshots, err := h.Environment.GetRange(req.Location, req.From, req.To)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "no environment history for requested range")
		}
		return toHTTPError(err, "failed to fetch environment history")
	}

	return c.JSON(fiber.Map{
		"location":  req.Location,
		"from":      req.From,
		"to":        req.To,
		"snapshots": snapshots,
	})
}

// readingInput carries caller overrides; nil fields fall back to the latest snapshot.
type readingInput struct {
	Trees     *int
	SunHours  *float64
	WaterFlow *float64
}

// resolveReading builds the offset model input. The stored snapshot is only
// consulted when the caller left sun hours or water flow unset.
func (h *handler) resolveReading(in readingInput) (offset.EnvironmentalReading, error) {
	trees := h.DefaultTrees
	if in.Trees != nil {
		trees = *in.Trees
	}

	if in.SunHours != nil && in.WaterFlow != nil {
		return offset.EnvironmentalReading{
			SunHours:      *in.SunHours,
			NumTrees:      trees,
			WaterFlowRate: *in.WaterFlow,
		}, nil
	}

	snapshot, err := h.Environment.GetLatest(h.Location)
	if err != nil {
		return offset.EnvironmentalReading{}, err
	}
	if in.SunHours != nil {
		snapshot.SunHours = in.SunHours
	}
	if in.WaterFlow != nil {
		snapshot.FlowRateM3S = in.WaterFlow
	}
	return snapshot.Reading(trees)
}

// GET /offsets?trees=&sun_hours=&water_flow=
func (h *handler) offsets(c *fiber.Ctx) error {
	var (
		in  readingInput
		err error
	)
	if in.Trees, err = queryInt(c, "trees"); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if in.SunHours, err = queryFloat(c, "sun_hours"); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if in.WaterFlow, err = queryFloat(c, "water_flow"); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	reading, err := h.resolveReading(in)
	if err != nil {
		return toHTTPError(err, "failed to resolve environmental reading")
	}
	rates, err := h.Offset.ComputeRates(reading)
	if err != nil {
		return toHTTPError(err, "failed to compute offset rates")
	}

	return c.JSON(fiber.Map{
		"reading": reading,
		"rates":   rates,
	})
}
