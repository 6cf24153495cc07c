package geocode

import (
	"context"

	"github.com/coolbeans/convictions/pkg/disposition"
)

// GeocodeDispositions sets coordinates on every disposition that has a
// geocodable address and is not yet geocoded. It returns the number of
// dispositions that received coordinates.
func GeocodeDispositions(ctx context.Context, client *Client, dispositions []*disposition.Disposition) (int, error) {
	var (
		pending   []*disposition.Disposition
		addresses []string
	)
	for _, d := range dispositions {
		if d.Geocoded() || !d.HasGeocodableAddress() {
			continue
		}
		query, err := d.GeocoderAddress()
		if err != nil {
			continue
		}
		pending = append(pending, d)
		addresses = append(addresses, query)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	locations, err := client.GeocodeAll(ctx, addresses, 0)
	if err != nil {
		return 0, err
	}

	geocoded := 0
	for i, location := range locations {
		if !location.Found {
			continue
		}
		lat, lon := location.Lat, location.Lon
		pending[i].Lat = &lat
		pending[i].Lon = &lon
		geocoded++
	}
	return geocoded, nil
}
