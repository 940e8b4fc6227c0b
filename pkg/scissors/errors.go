package scissors

import (
	"errors"
	"fmt"

	"livewire/internal/models"
)

var (
	// ErrConfiguration is the root of every configuration failure:
	// errors.Is(err, ErrConfiguration) holds for ErrDimensionsNotSet and
	// *ConfigurationError alike.
	ErrConfiguration = errors.New("scissors: configuration error")

	// ErrDimensionsNotSet is returned by SetData before SetDimensions.
	ErrDimensionsNotSet = fmt.Errorf("%w: dimensions have not been set", ErrConfiguration)

	// ErrNoData is returned by SetPoint before SetData.
	ErrNoData = errors.New("scissors: no image data")

	// ErrNoAnchor is returned by search operations before SetPoint.
	ErrNoAnchor = errors.New("scissors: no anchor point")

	// ErrUnreachable is returned when the search is exhausted without
	// reaching the requested pixel.
	ErrUnreachable = errors.New("scissors: target unreachable")
)

// ConfigurationError reports a pixel buffer or dimension mismatch.
type ConfigurationError struct {
	Field    string
	Expected int
	Actual   int
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("scissors: invalid %s: expected %d, got %d", e.Field, e.Expected, e.Actual)
}

// Unwrap makes errors.Is(err, ErrConfiguration) hold.
func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// OutOfBoundsError reports a point outside the image grid.
type OutOfBoundsError struct {
	Point  models.Point
	Width  int
	Height int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("scissors: point %v outside %dx%d image", e.Point, e.Width, e.Height)
}
