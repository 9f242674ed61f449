package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/i474232898/co2-offset-dashboard/internal/compensation"
	"github.com/i474232898/co2-offset-dashboard/internal/environment"
	"github.com/i474232898/co2-offset-dashboard/internal/offset"
)

type AppConfig struct {
	Port     string
	LogLevel string

	// Product catalog.
	DBPath   string
	SeedFile string

	// Outbound provider calls.
	OpenWeatherAPIKey string
	WeatherAPIKey     string
	GeocoderAPIKey    string
	HTTPTimeout       time.Duration

	// FetchInterval controls how often environment readings are refreshed.
	FetchInterval time.Duration

	// Location readings are tracked for, and the hydrology station of its river.
	Location     environment.Location
	HydroStation string

	// In-memory store retention.
	StoreMaxHistory int           // max number of snapshots per location (0 = unlimited)
	StoreMaxAge     time.Duration // max age of snapshots (0 = unlimited)

	// SessionMaxAge bounds how long an abandoned simulation is kept.
	SessionMaxAge time.Duration

	// Offset model and animation tunables.
	DefaultTrees int
	Offset       offset.Params
	Pacing       compensation.Pacing
}

// Load reads configuration from the environment (and an optional .env file) with defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}
	cfg := &AppConfig{}
	var err error

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")
	cfg.DBPath = getenvDefault("DB_PATH", "data/catalog.db")
	cfg.SeedFile = os.Getenv("SEED_FILE")

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.WeatherAPIKey = os.Getenv("WEATHERAPI_API_KEY")
	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")

	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.FetchInterval, err = getenvDuration("FETCH_INTERVAL", "15m"); err != nil {
		return nil, err
	}

	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 96) // roughly 24h at 15-minute intervals
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", "24h"); err != nil {
		return nil, err
	}
	if cfg.SessionMaxAge, err = getenvDuration("SESSION_MAX_AGE", "30m"); err != nil {
		return nil, err
	}

	if cfg.Location, err = loadLocation(); err != nil {
		return nil, err
	}
	// Aare at Bern-Schönau.
	cfg.HydroStation = getenvDefault("HYDRO_STATION", "2135")

	cfg.DefaultTrees = getenvInt("DEFAULT_TREES", 10)
	if cfg.DefaultTrees < 0 {
		return nil, fmt.Errorf("invalid DEFAULT_TREES: %d is negative", cfg.DefaultTrees)
	}

	if cfg.Offset, err = loadOffsetParams(); err != nil {
		return nil, err
	}
	if cfg.Pacing, err = loadPacing(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadLocation() (environment.Location, error) {
	loc := environment.Location{
		City:    getenvDefault("LOCATION_CITY", "Bern"),
		Country: getenvDefault("LOCATION_COUNTRY", "CH"),
	}

	latStr, lonStr := os.Getenv("LOCATION_LAT"), os.Getenv("LOCATION_LON")
	if (latStr == "") != (lonStr == "") {
		return loc, fmt.Errorf("LOCATION_LAT and LOCATION_LON must be set together")
	}
	if latStr == "" {
		if loc.City == "Bern" && loc.Country == "CH" {
			lat, lon := 46.948, 7.4474
			loc.Lat, loc.Lon = &lat, &lon
		}
		return loc, nil
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil || lat < -90 || lat > 90 {
		return loc, fmt.Errorf("invalid LOCATION_LAT %q", latStr)
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil || lon < -180 || lon > 180 {
		return loc, fmt.Errorf("invalid LOCATION_LON %q", lonStr)
	}
	loc.Lat, loc.Lon = &lat, &lon
	return loc, nil
}

func loadOffsetParams() (offset.Params, error) {
	p := offset.DefaultParams()
	var err error
	if p.PerformanceRatio, err = getenvFloat("PERFORMANCE_RATIO", p.PerformanceRatio); err != nil {
		return p, err
	}
	if p.WheelWidthM, err = getenvFloat("WHEEL_WIDTH_M", p.WheelWidthM); err != nil {
		return p, err
	}
	return p, p.Validate()
}

func loadPacing() (compensation.Pacing, error) {
	p := compensation.DefaultPacing()
	var err error
	if p.Exponent, err = getenvFloat("PACING_EXPONENT", p.Exponent); err != nil {
		return p, err
	}
	if p.HorizonDays, err = getenvFloat("PACING_HORIZON_DAYS", p.HorizonDays); err != nil {
		return p, err
	}
	if p.ShortInterval, err = getenvDuration("PACING_SHORT_INTERVAL", p.ShortInterval.String()); err != nil {
		return p, err
	}
	return p, p.Validate()
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
		log.Warn().Str("key", key).Str("value", v).Int("default", def).Msg("ignoring invalid integer")
	}
	return def
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
