package services

import "fmt"

// ValidationError marks a client-correctable problem with a request. The
// message is safe to return verbatim in an API response.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationf(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// ValidateCoordinates checks that a location is on the globe.
func ValidateCoordinates(lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return validationf("Invalid latitude: %g. Must be between -90 and 90", lat)
	}
	if lon < -180 || lon > 180 {
		return validationf("Invalid longitude: %g. Must be between -180 and 180", lon)
	}
	return nil
}
