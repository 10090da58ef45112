package model

import "fmt"

// GameErrorKind discriminates the three placement failures a check_placement
// pass can produce.
type GameErrorKind int

const (
	ErrShipAlreadyPlaced GameErrorKind = iota
	ErrShipOutOfBounds
	ErrShipOverlaps
)

// GameError is a placement failure carrying enough context to render the
// exact human-readable text the client matches against the wire.
type GameError struct {
	Kind        GameErrorKind
	Class       ClassName
	Coordinates Point
	Orientation Orientation
	Size        uint8
	Other       Ship
}

func newShipAlreadyPlaced(class ClassName) *GameError {
	return &GameError{Kind: ErrShipAlreadyPlaced, Class: class}
}

func newShipOutOfBounds(coordinates Point, orientation Orientation, size uint8) *GameError {
	return &GameError{Kind: ErrShipOutOfBounds, Coordinates: coordinates, Orientation: orientation, Size: size}
}

func newShipOverlaps(other Ship) *GameError {
	return &GameError{Kind: ErrShipOverlaps, Other: other}
}

// Error implements the error interface with the canonical wire text; the
// ShipAlreadyPlaced rendering is load-bearing wire protocol, not cosmetic —
// the reference client parses this exact string as an idempotent success.
func (e *GameError) Error() string {
	switch e.Kind {
	case ErrShipAlreadyPlaced:
		return fmt.Sprintf("%s class ship has already been placed!", e.Class)
	case ErrShipOutOfBounds:
		return fmt.Sprintf(
			"Ship is not placed (entirely) within the map! Coordinates: %s, orientation: %s, size: %d",
			e.Coordinates, e.Orientation, e.Size,
		)
	case ErrShipOverlaps:
		return fmt.Sprintf(
			"This ship overlaps with ship of class %s at %s (orientation: %s)!",
			e.Other.Class, e.Other.Coordinates, e.Other.Orientation,
		)
	default:
		return "unknown placement error"
	}
}
