// Package geocoding declares the reverse-geocoding collaborator consumed
// by profile flows. The dispatch engine never calls it.
package geocoding

import (
	"context"
)

type Location struct {
	CityName    string `json:"city_name"`
	FullAddress string `json:"full_address"`
}

type Service interface {
	// ReverseLookup resolves coordinates to a named location. A nil
	// Location with nil error means the position could not be resolved.
	ReverseLookup(ctx context.Context, lat, lon float64) (*Location, error)
}

// Noop is the default resolver when no provider is configured.
type Noop struct{}

func (Noop) ReverseLookup(context.Context, float64, float64) (*Location, error) {
	return nil, nil
}
