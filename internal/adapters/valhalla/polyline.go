package valhalla

import (
	"fmt"
	"math"

	"github.com/samirrijal/utechnav/internal/core/domain"
)

// shapePrecision is Valhalla's default: six decimal digits.
const shapePrecision = 6

// decodeShape decodes an encoded polyline at the given precision.
func decodeShape(encoded string, precision int) ([]domain.Coordinate, error) {
	factor := math.Pow10(precision)
	path := make([]domain.Coordinate, 0, len(encoded)/4)

	var lat, lon int64
	for i := 0; i < len(encoded); {
		dLat, next, err := decodeValue(encoded, i)
		if err != nil {
			return nil, err
		}
		dLon, next, err := decodeValue(encoded, next)
		if err != nil {
			return nil, err
		}
		i = next
		lat += dLat
		lon += dLon
		path = append(path, domain.Coordinate{Lat: float64(lat) / factor, Lon: float64(lon) / factor})
	}
	return path, nil
}

func decodeValue(s string, i int) (int64, int, error) {
	var result int64
	var shift uint
	for {
		if i >= len(s) {
			return 0, i, fmt.Errorf("truncated polyline at offset %d", i)
		}
		b := int64(s[i]) - 63
		i++
		if b < 0 || b > 0x3f {
			return 0, i, fmt.Errorf("invalid polyline byte %q at offset %d", s[i-1], i-1)
		}
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			break
		}
	}
	if result&1 != 0 {
		return ^(result >> 1), i, nil
	}
	return result >> 1, i, nil
}
