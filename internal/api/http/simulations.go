package httpapi

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp"

	"github.com/i474232898/co2-offset-dashboard/internal/common"
	"github.com/i474232898/co2-offset-dashboard/internal/compensation"
	"github.com/i474232898/co2-offset-dashboard/internal/offset"
	"github.com/i474232898/co2-offset-dashboard/internal/session"
)

// simulationRequest starts a simulation for a catalog product or a raw emission.
type simulationRequest struct {
	ProductID  int64    `json:"product_id" validate:"gte=0"`
	EmissionKg *float64 `json:"emission_kg"`
	Trees      *int     `json:"trees"`
	SunHours   *float64 `json:"sun_hours"`
	WaterFlow  *float64 `json:"water_flow"`
}

type durationView struct {
	compensation.Duration
	Label     string `json:"label"`
	Formatted string `json:"formatted,omitempty"`
}

type simulationView struct {
	ID             string                `json:"id"`
	ProductID      int64                 `json:"productId,omitempty"`
	EmissionKg     float64               `json:"emissionKg"`
	EmissionText   string                `json:"emissionText"`
	Rates          offset.Rates          `json:"rates,omitempty"`
	Durations      []durationView        `json:"durations"`
	MaxDays        float64               `json:"maxDays"`
	Horizon        string                `json:"horizon"`
	TickIntervalMs int64                 `json:"tickIntervalMs"`
	Progress       compensation.Progress `json:"progress"`
}

func newSimulationView(sess *session.Session, rates offset.Rates) simulationView {
	s := sess.Schedule
	durations := make([]durationView, 0, len(s.Durations))
	for _, d := range s.Durations {
		v := durationView{Duration: d, Label: d.Method.Label()}
		if d.Available {
			v.Formatted = compensation.FormatDays(d.Days)
		}
		durations = append(durations, v)
	}

	return simulationView{
		ID:             sess.ID,
		ProductID:      sess.ProductID,
		EmissionKg:     s.EmissionKg,
		EmissionText:   common.FormatKg(s.EmissionKg),
		Rates:          rates,
		Durations:      durations,
		MaxDays:        s.MaxDays,
		Horizon:        compensation.FormatDays(s.MaxDays),
		TickIntervalMs: s.TickInterval.Milliseconds(),
		Progress:       s.Snapshot(),
	}
}

// POST /simulations
func (h *handler) createSimulation(c *fiber.Ctx) error {
	var req simulationRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if req.ProductID == 0 && req.EmissionKg == nil {
		return fiber.NewError(fiber.StatusBadRequest, "product_id or emission_kg is required")
	}

	emission := 0.0
	if req.EmissionKg != nil {
		emission = *req.EmissionKg
	} else {
		p, err := h.Catalog.Get(c.UserContext(), req.ProductID)
		if err != nil {
			return toHTTPError(err, "failed to load product")
		}
		emission = p.Emission
	}
	if emission == 0 {
		return nothingToCompensate(c)
	}

	reading, err := h.resolveReading(readingInput{Trees: req.Trees, SunHours: req.SunHours, WaterFlow: req.WaterFlow})
	if err != nil {
		return toHTTPError(err, "failed to resolve environmental reading")
	}
	rates, err := h.Offset.ComputeRates(reading)
	if err != nil {
		return toHTTPError(err, "failed to compute offset rates")
	}

	sched, err := compensation.Build(emission, rates, h.Pacing)
	if errors.Is(err, compensation.ErrNothingToCompensate) {
		return nothingToCompensate(c)
	}
	if err != nil {
		return toHTTPError(err, "failed to build compensation schedule")
	}

	sess := h.Sessions.Create(req.ProductID, sched)
	log.Debug().
		Str("session", sess.ID).
		Float64("emission_kg", emission).
		Float64("max_days", sched.MaxDays).
		Dur("tick", sched.TickInterval).
		Msg("simulation created")

	return c.Status(fiber.StatusCreated).JSON(newSimulationView(sess, rates))
}

func nothingToCompensate(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "nothing_to_compensate",
		"message": "This product has no CO2 emission to compensate.",
	})
}

func (h *handler) getSimulation(c *fiber.Ctx) error {
	sess, err := h.Sessions.Get(c.Params("id"))
	if err != nil {
		return toHTTPError(err, "failed to load simulation")
	}
	return c.JSON(newSimulationView(sess, nil))
}

// POST /simulations/:id/advance runs a single tick. It is refused while a
// stream paces the schedule.
func (h *handler) advanceSimulation(c *fiber.Ctx) error {
	sess, err := h.Sessions.Get(c.Params("id"))
	if err != nil {
		return toHTTPError(err, "failed to load simulation")
	}
	p, err := sess.Schedule.Step()
	if err != nil {
		return toHTTPError(err, "failed to advance simulation")
	}
	return c.JSON(p)
}

// DELETE /simulations/:id freezes all sequences at their current progress.
func (h *handler) cancelSimulation(c *fiber.Ctx) error {
	p, err := h.Sessions.Cancel(c.Params("id"))
	if err != nil {
		return toHTTPError(err, "failed to cancel simulation")
	}
	return c.JSON(p)
}

// GET /simulations/:id/stream drives the schedule at its own pace and pushes
// every tick as a server-sent event. A client disconnect cancels the schedule.
func (h *handler) streamSimulation(c *fiber.Ctx) error {
	sess, err := h.Sessions.Get(c.Params("id"))
	if err != nil {
		return toHTTPError(err, "failed to load simulation")
	}
	sched := sess.Schedule
	if err := sched.Claim(); err != nil {
		return toHTTPError(err, "failed to start simulation stream")
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	id := sess.ID
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		if err := writeEvent(w, "progress", sched.Snapshot()); err != nil {
			cancel()
		}
		final := compensation.Run(ctx, sched, func(p compensation.Progress) {
			if err := writeEvent(w, "progress", p); err != nil {
				log.Debug().Err(err).Str("session", id).Msg("stream client gone; cancelling simulation")
				cancel()
			}
		})
		if err := writeEvent(w, "done", final); err != nil {
			log.Debug().Err(err).Str("session", id).Msg("stream client gone before final event")
		}
	}))
	return nil
}

func writeEvent(w *bufio.Writer, event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	return w.Flush()
}
