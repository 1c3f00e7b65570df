package universe

import (
	"errors"
	"fmt"
)

var (
	//ErrDimensionMismatch indicates a cell list which does not fit the width*height grid
	ErrDimensionMismatch = errors.New("universe: cell count does not match dimensions")

	//ErrOutOfBounds indicates coordinates outside the grid
	ErrOutOfBounds = errors.New("universe: coordinates out of bounds")

	//ErrInvalidDimension indicates a non-positive width or height
	ErrInvalidDimension = errors.New("universe: dimension must be positive")

	//ErrBadGlyph indicates an unknown character in a text pattern
	ErrBadGlyph = errors.New("universe: unknown pattern glyph")

	//ErrUnknownTemplate indicates a template name which was never added
	ErrUnknownTemplate = errors.New("universe: unknown template")

	//ErrUnknownStrategy indicates an unsupported tick strategy name
	ErrUnknownStrategy = errors.New("universe: unknown tick strategy")
)

//CoordError wraps an error with the offending coordinates
type CoordError struct {
	X, Y    int
	Wrapped error
}

func (e *CoordError) Error() string {
	return fmt.Sprintf("%v: (%d, %d)", e.Wrapped, e.X, e.Y)
}

func (e *CoordError) Unwrap() error {
	return e.Wrapped
}
