package httpapi

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/co2-offset-dashboard/internal/environment"
)

// queryList collects repeated and comma-separated values of a query parameter.
func queryList(c *fiber.Ctx, key string) []string {
	var out []string
	for _, raw := range c.Context().QueryArgs().PeekMulti(key) {
		for _, v := range strings.Split(string(raw), ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

// queryFloat returns nil when the parameter is absent.
func queryFloat(c *fiber.Ctx, key string) (*float64, error) {
	s := c.Query(key)
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %q is not a number", key, s)
	}
	return &f, nil
}

// queryInt returns nil when the parameter is absent.
func queryInt(c *fiber.Ctx, key string) (*int, error) {
	s := c.Query(key)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %q is not an integer", key, s)
	}
	return &n, nil
}

func paramID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid product id")
	}
	return id, nil
}

// locationQuery holds query parameters for identifying a location.
// Both empty selects the configured location.
type locationQuery struct {
	City    string `validate:"required_with=Country"`
	Country string `validate:"required_with=City"`
}

func (h *handler) parseLocation(c *fiber.Ctx) (environment.Location, error) {
	q := locationQuery{City: c.Query("city"), Country: c.Query("country")}
	if err := validate.Struct(q); err != nil {
		return environment.Location{}, err
	}
	if q.City == "" {
		return h.Location, nil
	}
	return environment.Location{City: q.City, Country: q.Country}, nil
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	Location environment.Location `validate:"-"`
	From     time.Time            `validate:"required"`
	To       time.Time            `validate:"required,gtefield=From"`
}

func (h *handler) bindHistory(c *fiber.Ctx) (historyQuery, error) {
	var q historyQuery
	loc, err := h.parseLocation(c)
	if err != nil {
		return q, err
	}
	q.Location = loc

	fromStr, toStr := c.Query("from"), c.Query("to")
	if fromStr == "" || toStr == "" {
		return q, errors.New("from and to query parameters are required")
	}
	if q.From, err = parseTime(fromStr); err != nil {
		return q, err
	}
	if q.To, err = parseTime(toStr); err != nil {
		return q, err
	}
	return q, validate.Struct(q)
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
