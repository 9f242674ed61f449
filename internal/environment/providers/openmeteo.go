package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/co2-offset-dashboard/internal/environment"
)

// OpenMeteoProvider reports daily sunshine duration and the current condition.
// It needs no API key but requires coordinates.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoProvider(client *http.Client) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: "https://api.open-meteo.com/v1/forecast",
		httpCfg: defaultHTTPConfig(client),
		circuit: newBreaker("openmeteo"),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

func (p *OpenMeteoProvider) Fetch(ctx context.Context, loc environment.Location) (environment.ProviderReading, error) {
	if loc.Lat == nil || loc.Lon == nil {
		return environment.ProviderReading{}, fmt.Errorf("openmeteo requires latitude and longitude")
	}

	values := url.Values{}
	values.Set("latitude", fmt.Sprintf("%f", *loc.Lat))
	values.Set("longitude", fmt.Sprintf("%f", *loc.Lon))
	values.Set("current", "cloud_cover,weather_code")
	values.Set("daily", "sunshine_duration")
	values.Set("forecast_days", "1")
	values.Set("timezone", "UTC")

	var payload struct {
		Current struct {
			Time        string  `json:"time"`
			CloudCover  float64 `json:"cloud_cover"`
			WeatherCode int     `json:"weather_code"`
		} `json:"current"`
		Daily struct {
			SunshineDuration []float64 `json:"sunshine_duration"` // seconds
		} `json:"daily"`
	}
	if err := getJSON(ctx, p.httpCfg, p.circuit, p.baseURL+"?"+values.Encode(), &payload); err != nil {
		return environment.ProviderReading{}, err
	}
	if len(payload.Daily.SunshineDuration) == 0 {
		return environment.ProviderReading{}, fmt.Errorf("openmeteo: %w", errNoData)
	}

	ts, err := time.Parse("2006-01-02T15:04", payload.Current.Time)
	if err != nil {
		ts = time.Now()
	}

	sunHours := payload.Daily.SunshineDuration[0] / 3600
	cloud := payload.Current.CloudCover

	return environment.ProviderReading{
		ProviderName: p.name,
		Timestamp:    ts.UTC(),
		SunHours:     &sunHours,
		CloudPct:     &cloud,
		Condition:    mapOpenMeteoCondition(payload.Current.WeatherCode),
	}, nil
}

func mapOpenMeteoCondition(code int) environment.Condition {
	// WMO weather interpretation codes (simplified).
	switch {
	case code == 0:
		return environment.ConditionClear
	case code >= 1 && code <= 3:
		return environment.ConditionCloudy
	case code == 45 || code == 48:
		return environment.ConditionMist
	case (code >= 51 && code <= 67) || (code >= 80 && code <= 82):
		return environment.ConditionRain
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		return environment.ConditionSnow
	case code >= 95:
		return environment.ConditionStorm
	default:
		return environment.ConditionUnknown
	}
}
