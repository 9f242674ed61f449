package providers

import (
	"fmt"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/co2-offset-dashboard/internal/environment"
)

// geocode is swapped in tests.
var geocode = func(addr geocoder.Address) (geocoder.Location, error) {
	return geocoder.Geocoding(addr)
}

// ResolveCoordinates fills missing Lat/Lon from the Google geocoding API.
// Locations that already carry coordinates are returned unchanged.
func ResolveCoordinates(loc environment.Location, apiKey string) (environment.Location, error) {
	if loc.Lat != nil && loc.Lon != nil {
		return loc, nil
	}
	if apiKey == "" {
		return loc, fmt.Errorf("geocoding %s: api key is not configured", loc.Key())
	}

	geocoder.ApiKey = apiKey
	res, err := geocode(geocoder.Address{City: loc.City, Country: loc.Country})
	if err != nil {
		return loc, fmt.Errorf("geocoding %s: %w", loc.Key(), err)
	}

	lat, lon := res.Latitude, res.Longitude
	loc.Lat = &lat
	loc.Lon = &lon
	return loc, nil
}
