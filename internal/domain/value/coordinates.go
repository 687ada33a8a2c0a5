package value

import (
	"fmt"

	"imhungri/pkg/errcodes"

	"imhungri/internal/domain"
)

type Coordinates struct {
	Lat float64
	Lng float64
}

func NewCoordinates(lat, lng float64) (Coordinates, error) {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return Coordinates{}, domain.NewError(
			errcodes.InvalidCoordinates,
			fmt.Sprintf("coordinates out of range: %f, %f", lat, lng),
		)
	}

	return Coordinates{Lat: lat, Lng: lng}, nil
}
