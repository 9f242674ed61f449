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

// OpenWeatherProvider reports condition and cloud cover from OpenWeatherMap.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeatherProvider(client *http.Client, apiKey string) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org/data/2.5/weather",
		httpCfg: defaultHTTPConfig(client),
		circuit: newBreaker("openweather"),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

func (p *OpenWeatherProvider) Fetch(ctx context.Context, loc environment.Location) (environment.ProviderReading, error) {
	if p.apiKey == "" {
		return environment.ProviderReading{}, fmt.Errorf("openweather api key is not configured")
	}

	values := url.Values{}
	values.Set("appid", p.apiKey)
	values.Set("units", "metric")
	if loc.Lat != nil && loc.Lon != nil {
		values.Set("lat", fmt.Sprintf("%f", *loc.Lat))
		values.Set("lon", fmt.Sprintf("%f", *loc.Lon))
	} else {
		q := loc.City
		if loc.Country != "" {
			q = fmt.Sprintf("%s,%s", loc.City, loc.Country)
		}
		values.Set("q", q)
	}

	var payload struct {
		Dt     int64 `json:"dt"`
		Clouds struct {
			All float64 `json:"all"`
		} `json:"clouds"`
		Weather []struct {
			Main string `json:"main"`
		} `json:"weather"`
	}
	if err := getJSON(ctx, p.httpCfg, p.circuit, p.baseURL+"?"+values.Encode(), &payload); err != nil {
		return environment.ProviderReading{}, err
	}

	ts := time.Now().UTC()
	if payload.Dt > 0 {
		ts = time.Unix(payload.Dt, 0).UTC()
	}

	cond := environment.ConditionUnknown
	if len(payload.Weather) > 0 {
		cond = mapOpenWeatherCondition(payload.Weather[0].Main)
	}
	cloud := payload.Clouds.All

	return environment.ProviderReading{
		ProviderName: p.name,
		Timestamp:    ts,
		CloudPct:     &cloud,
		Condition:    cond,
	}, nil
}

func mapOpenWeatherCondition(main string) environment.Condition {
	switch main {
	case "Clear":
		return environment.ConditionClear
	case "Clouds":
		return environment.ConditionCloudy
	case "Rain", "Drizzle":
		return environment.ConditionRain
	case "Snow":
		return environment.ConditionSnow
	case "Thunderstorm":
		return environment.ConditionStorm
	case "Mist", "Fog", "Haze":
		return environment.ConditionMist
	default:
		return environment.ConditionUnknown
	}
}
