package config

import (
	"github.com/spf13/viper"
	"googlemaps.github.io/maps"
)

type GeoService struct {
	Client *maps.Client
}

// NewGeoService returns a service with a nil client when no API key is
// configured; callers treat geocoding as optional.
func NewGeoService(viper *viper.Viper) (*GeoService, error) {
	apiKey := viper.GetString("thirdparty.google.api_key")
	if apiKey == "" {
		return &GeoService{}, nil
	}

	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &GeoService{Client: client}, nil
}
