package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/co2-offset-dashboard/internal/catalog"
	"github.com/i474232898/co2-offset-dashboard/internal/compensation"
	"github.com/i474232898/co2-offset-dashboard/internal/environment"
	"github.com/i474232898/co2-offset-dashboard/internal/offset"
	"github.com/i474232898/co2-offset-dashboard/internal/session"
	"github.com/i474232898/co2-offset-dashboard/internal/store"
)

var bern = environment.Location{City: "Bern", Country: "CH"}

type testEnv struct {
	app      *fiber.App
	store    *store.MemoryStore
	sessions *session.Registry
	ids      map[string]int64
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	cat, err := catalog.Open(ctx, filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { cat.Close() })

	_, err = cat.Import(ctx, []catalog.Product{
		{Name: "Kettle", Category: "Kitchen", Price: 49.9, WeightGram: 1200, Emission: 23.4, CompensationPrice: 0.6},
		{Name: "Toaster", Category: "Kitchen", Price: 39.9, WeightGram: 1800, Emission: 31.2, CompensationPrice: 0.8},
		{Name: "Laptop", Category: "Electronics", Price: 1299, WeightGram: 1600, Emission: 310.5, CompensationPrice: 7.9},
		{Name: "Gift card", Category: "Vouchers", Price: 50, WeightGram: 5, Emission: 0},
	})
	require.NoError(t, err)

	all, err := cat.List(ctx, catalog.Filter{})
	require.NoError(t, err)
	ids := make(map[string]int64)
	for _, p := range all {
		ids[p.Name] = p.ID
	}
	// Zero-emission products are hidden from listings but still addressable.
	giftID, err := cat.Upsert(ctx, catalog.Product{Name: "Gift card", Category: "Vouchers", Price: 50, WeightGram: 5})
	require.NoError(t, err)
	ids["Gift card"] = giftID

	memStore := store.NewMemoryStore(10, 0)
	sessions := session.NewRegistry()

	pacing := compensation.DefaultPacing()
	pacing.ShortInterval = time.Millisecond

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	RegisterRoutes(app, Deps{
		Catalog:      cat,
		Environment:  environment.NewService(memStore, nil),
		Sessions:     sessions,
		Location:     bern,
		DefaultTrees: 10,
		Offset:       offset.DefaultParams(),
		Pacing:       pacing,
	})

	return &testEnv{app: app, store: memStore, sessions: sessions, ids: ids}
}

func (e *testEnv) saveSnapshot(sun, flow float64, cond environment.Condition) {
	e.store.SaveSnapshot(bern, environment.Snapshot{
		Location:    bern,
		Timestamp:   time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		SunHours:    &sun,
		FlowRateM3S: &flow,
		Condition:   cond,
	})
}

func (e *testEnv) do(t *testing.T, method, target, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := e.app.Test(req, 5000)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestListProductsWithSelection(t *testing.T) {
	e := newTestEnv(t)

	resp := e.do(t, http.MethodGet, "/api/v1/products?category=Kitchen&selected=23.4-1200", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Products []catalog.Point `json:"products"`
	}
	decode(t, resp, &body)
	require.Len(t, body.Products, 2)

	for _, p := range body.Products {
		assert.Equal(t, "Kitchen", p.Category)
		assert.Equal(t, p.Name == "Kettle", p.Selected, p.Name)
	}
}

func TestListProductsHidesZeroEmission(t *testing.T) {
	e := newTestEnv(t)

	resp := e.do(t, http.MethodGet, "/api/v1/products", "")
	var body struct {
		Products []catalog.Point `json:"products"`
	}
	decode(t, resp, &body)
	assert.Len(t, body.Products, 3)
	for _, p := range body.Products {
		assert.True(t, p.Selected)
		assert.NotEqual(t, "Gift card", p.Name)
	}
}

func TestGetProduct(t *testing.T) {
	e := newTestEnv(t)

	resp := e.do(t, http.MethodGet, "/api/v1/products/999", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = e.do(t, http.MethodGet, "/api/v1/products/abc", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = e.do(t, http.MethodGet, "/api/v1/products/"+itoa(e.ids["Kettle"]), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	decode(t, resp, &body)
	assert.Equal(t, "Kettle", body["name"])
	assert.InDelta(t, 1.2, body["weightKg"], 1e-9)
	assert.Equal(t, "CHF 49.90", body["priceText"])
}

func TestComparison(t *testing.T) {
	e := newTestEnv(t)

	resp := e.do(t, http.MethodGet, "/api/v1/products/"+itoa(e.ids["Toaster"])+"/comparison", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Category string        `json:"category"`
		Bars     []catalog.Bar `json:"bars"`
	}
	decode(t, resp, &body)
	assert.Equal(t, "Kitchen", body.Category)
	require.Len(t, body.Bars, 2)
	assert.Equal(t, "Kettle", body.Bars[0].Name)
	assert.Equal(t, "Other Product", body.Bars[0].Label)
	assert.Equal(t, "Toaster", body.Bars[1].Name)
	assert.Equal(t, "Your Product", body.Bars[1].Label)
}

func TestCategoriesAndStats(t *testing.T) {
	e := newTestEnv(t)

	resp := e.do(t, http.MethodGet, "/api/v1/categories", "")
	var cats struct {
		Categories []string          `json:"categories"`
		Legend     map[string]string `json:"legend"`
	}
	decode(t, resp, &cats)
	assert.NotEmpty(t, cats.Categories)
	assert.Len(t, cats.Legend, len(cats.Categories))
	for _, c := range cats.Categories {
		assert.True(t, strings.HasPrefix(cats.Legend[c], "rgba("), c)
	}

	resp = e.do(t, http.MethodGet, "/api/v1/stats", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stats struct {
		Stats catalog.Stats `json:"stats"`
	}
	decode(t, resp, &stats)
	assert.Equal(t, 310.5, stats.Stats.MaxEmission)
}

func TestEnvironment(t *testing.T) {
	e := newTestEnv(t)

	resp := e.do(t, http.MethodGet, "/api/v1/environment", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = e.do(t, http.MethodGet, "/api/v1/environment?city=Bern", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	e.saveSnapshot(6, 120, environment.ConditionRain)

	resp = e.do(t, http.MethodGet, "/api/v1/environment?city=Bern&country=CH", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Snapshot environment.Snapshot `json:"snapshot"`
		Theme    environment.Theme    `json:"theme"`
	}
	decode(t, resp, &body)
	assert.Equal(t, "rain", body.Theme.Name)
	require.NotNil(t, body.Snapshot.SunHours)
	assert.Equal(t, 6.0, *body.Snapshot.SunHours)
}

func TestEnvironmentHistory(t *testing.T) {
	e := newTestEnv(t)
	e.saveSnapshot(6, 120, environment.ConditionClear)

	resp := e.do(t, http.MethodGet, "/api/v1/environment/history?from=2024-06-01T00:00:00Z", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = e.do(t, http.MethodGet, "/api/v1/environment/history?from=2024-06-02T00:00:00Z&to=2024-06-01T00:00:00Z", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = e.do(t, http.MethodGet, "/api/v1/environment/history?from=2024-06-01T00:00:00Z&to=2024-06-02T00:00:00Z", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Snapshots []environment.Snapshot `json:"snapshots"`
	}
	decode(t, resp, &body)
	assert.Len(t, body.Snapshots, 1)
}

func TestOffsets(t *testing.T) {
	e := newTestEnv(t)

	// No explicit values and no stored snapshot.
	resp := e.do(t, http.MethodGet, "/api/v1/offsets", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp = e.do(t, http.MethodGet, "/api/v1/offsets?sun_hours=-1&water_flow=10", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = e.do(t, http.MethodGet, "/api/v1/offsets?sun_hours=abc&water_flow=10", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = e.do(t, http.MethodGet, "/api/v1/offsets?trees=10&sun_hours=5&water_flow=100", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Rates offset.Rates `json:"rates"`
	}
	decode(t, resp, &body)
	assert.InDelta(t, 0.27397, body.Rates[offset.MethodTree], 1e-9)
	assert.InDelta(t, 0.04543, body.Rates[offset.MethodSolar], 1e-9)
	assert.Greater(t, body.Rates[offset.MethodHydro], 0.0)
}

func TestOffsetsFallBackToSnapshot(t *testing.T) {
	e := newTestEnv(t)
	e.saveSnapshot(5, 100, environment.ConditionClear)

	resp := e.do(t, http.MethodGet, "/api/v1/offsets", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Reading offset.EnvironmentalReading `json:"reading"`
	}
	decode(t, resp, &body)
	assert.Equal(t, offset.EnvironmentalReading{SunHours: 5, NumTrees: 10, WaterFlowRate: 100}, body.Reading)
}

func TestSimulationLifecycle(t *testing.T) {
	e := newTestEnv(t)

	resp := e.do(t, http.MethodPost, "/api/v1/simulations",
		`{"product_id": `+itoa(e.ids["Kettle"])+`, "trees": 10, "sun_hours": 5, "water_flow": 100}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created simulationView
	decode(t, resp, &created)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, 23.4, created.EmissionKg)
	assert.Equal(t, compensation.StatePending, created.Progress.State)
	require.Len(t, created.Durations, 3)
	for _, d := range created.Durations {
		assert.True(t, d.Available, d.Method)
		assert.NotEmpty(t, d.Formatted)
	}

	resp = e.do(t, http.MethodPost, "/api/v1/simulations/"+created.ID+"/advance", "")
	var p compensation.Progress
	decode(t, resp, &p)
	assert.Equal(t, compensation.StateRunning, p.State)
	assert.Equal(t, 1, p.Tick)
	assert.Equal(t, 1, p.Percent[offset.MethodTree])

	resp = e.do(t, http.MethodDelete, "/api/v1/simulations/"+created.ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cancelled compensation.Progress
	decode(t, resp, &cancelled)
	assert.Equal(t, compensation.StateCancelled, cancelled.State)
	assert.True(t, cancelled.Done)

	// Further ticks keep the frozen values.
	resp = e.do(t, http.MethodPost, "/api/v1/simulations/"+created.ID+"/advance", "")
	var frozen compensation.Progress
	decode(t, resp, &frozen)
	assert.Equal(t, cancelled, frozen)

	resp = e.do(t, http.MethodPost, "/api/v1/simulations/missing/advance", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSimulationNothingToCompensate(t *testing.T) {
	e := newTestEnv(t)

	resp := e.do(t, http.MethodPost, "/api/v1/simulations", `{"product_id": `+itoa(e.ids["Gift card"])+`}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	decode(t, resp, &body)
	assert.Equal(t, "nothing_to_compensate", body["status"])
	assert.Zero(t, e.sessions.Len())
}

func TestSimulationValidation(t *testing.T) {
	e := newTestEnv(t)

	cases := []struct {
		name string
		body string
		want int
	}{
		{"empty body", `{}`, http.StatusBadRequest},
		{"negative product id", `{"product_id": -1}`, http.StatusBadRequest},
		{"negative emission", `{"emission_kg": -5, "sun_hours": 5, "water_flow": 10}`, http.StatusBadRequest},
		{"negative trees", `{"emission_kg": 5, "trees": -1, "sun_hours": 5, "water_flow": 10}`, http.StatusBadRequest},
		{"unknown product", `{"product_id": 999, "sun_hours": 5, "water_flow": 10}`, http.StatusNotFound},
		{"no method available", `{"emission_kg": 5, "trees": 0, "sun_hours": 0, "water_flow": 0}`, http.StatusUnprocessableEntity},
		{"no environment data", `{"emission_kg": 5}`, http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := e.do(t, http.MethodPost, "/api/v1/simulations", tc.body)
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}

func TestSimulationStream(t *testing.T) {
	e := newTestEnv(t)

	resp := e.do(t, http.MethodPost, "/api/v1/simulations",
		`{"emission_kg": 0.1, "trees": 10, "sun_hours": 5, "water_flow": 100}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created simulationView
	decode(t, resp, &created)

	resp = e.do(t, http.MethodGet, "/api/v1/simulations/"+created.ID+"/stream", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := string(raw)
	assert.Contains(t, out, "event: progress")
	assert.Contains(t, out, "event: done")
	assert.Contains(t, out, `"state":"completed"`)

	sess, err := e.sessions.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, compensation.StateCompleted, sess.Schedule.State())
}

func TestSimulationStreamSingleDriver(t *testing.T) {
	e := newTestEnv(t)

	resp := e.do(t, http.MethodPost, "/api/v1/simulations",
		`{"emission_kg": 1, "trees": 10, "sun_hours": 5, "water_flow": 100}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created simulationView
	decode(t, resp, &created)

	sess, err := e.sessions.Get(created.ID)
	require.NoError(t, err)

	type result struct {
		status int
		body   string
		err    error
	}
	first := make(chan result, 1)
	go func() {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/simulations/"+created.ID+"/stream", nil)
		resp, err := e.app.Test(req, 10000)
		if err != nil {
			first <- result{err: err}
			return
		}
		defer resp.Body.Close()
		raw, err := io.ReadAll(resp.Body)
		first <- result{status: resp.StatusCode, body: string(raw), err: err}
	}()

	// The claim outlives the first stream, so later drivers are refused
	// whether or not it has finished.
	require.Eventually(t, sess.Schedule.Claimed, 5*time.Second, time.Millisecond)

	resp = e.do(t, http.MethodGet, "/api/v1/simulations/"+created.ID+"/stream", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = e.do(t, http.MethodPost, "/api/v1/simulations/"+created.ID+"/advance", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	r := <-first
	require.NoError(t, r.err)
	assert.Equal(t, http.StatusOK, r.status)
	assert.Contains(t, r.body, "event: done")

	// Every tick came from the single driver, in order.
	var ticks []int
	for _, line := range strings.Split(r.body, "\n") {
		data, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			continue
		}
		var p compensation.Progress
		require.NoError(t, json.Unmarshal([]byte(data), &p))
		ticks = append(ticks, p.Tick)
	}
	require.NotEmpty(t, ticks)
	for i := 1; i < len(ticks)-1; i++ {
		assert.Equal(t, ticks[i-1]+1, ticks[i], "tick %d", i)
	}
	assert.Equal(t, compensation.StateCompleted, sess.Schedule.State())
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
