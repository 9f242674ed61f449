package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/co2-offset-dashboard/internal/common"
	"github.com/i474232898/co2-offset-dashboard/internal/environment"
)

// WeatherAPIProvider reports condition and cloud cover from WeatherAPI.com.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewWeatherAPIProvider(client *http.Client, apiKey string) *WeatherAPIProvider {
	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: "https://api.weatherapi.com/v1/current.json",
		httpCfg: defaultHTTPConfig(client),
		circuit: newBreaker("weatherapi"),
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

func (p *WeatherAPIProvider) Fetch(ctx context.Context, loc environment.Location) (environment.ProviderReading, error) {
	if p.apiKey == "" {
		return environment.ProviderReading{}, fmt.Errorf("weatherapi api key is not configured")
	}

	values := url.Values{}
	values.Set("key", p.apiKey)
	// WeatherAPI accepts "city,country" or "lat,lon" in q.
	if loc.Lat != nil && loc.Lon != nil {
		values.Set("q", fmt.Sprintf("%f,%f", *loc.Lat, *loc.Lon))
	} else {
		q := loc.City
		if loc.Country != "" {
			q = fmt.Sprintf("%s,%s", loc.City, loc.Country)
		}
		values.Set("q", q)
	}

	var payload struct {
		Current struct {
			LastUpdatedEpoch int64   `json:"last_updated_epoch"`
			Cloud            float64 `json:"cloud"`
			Condition        struct {
				Text string `json:"text"`
			} `json:"condition"`
		} `json:"current"`
	}
	if err := getJSON(ctx, p.httpCfg, p.circuit, p.baseURL+"?"+values.Encode(), &payload); err != nil {
		return environment.ProviderReading{}, err
	}

	ts := time.Now().UTC()
	if payload.Current.LastUpdatedEpoch > 0 {
		ts = time.Unix(payload.Current.LastUpdatedEpoch, 0).UTC()
	}
	cloud := payload.Current.Cloud

	return environment.ProviderReading{
		ProviderName: p.name,
		Timestamp:    ts,
		CloudPct:     &cloud,
		Condition:    mapWeatherAPICondition(payload.Current.Condition.Text),
	}, nil
}

func mapWeatherAPICondition(text string) environment.Condition {
	switch {
	case text == "":
		return environment.ConditionUnknown
	case common.HasAny(text, "thunder", "storm"):
		return environment.ConditionStorm
	case common.HasAny(text, "snow", "sleet", "blizzard", "ice pellets"):
		return environment.ConditionSnow
	case common.HasAny(text, "rain", "shower", "drizzle"):
		return environment.ConditionRain
	case common.HasAny(text, "mist", "fog"):
		return environment.ConditionMist
	case common.HasAny(text, "cloud", "overcast"):
		return environment.ConditionCloudy
	case common.HasAny(text, "sunny", "clear"):
		return environment.ConditionClear
	default:
		return environment.ConditionUnknown
	}
}
