package model

import "fmt"

// Point identifies a single cell on a board by its zero-based column and row.
type Point struct {
	X uint8 `json:"x"`
	Y uint8 `json:"y"`
}

// NewPoint constructs a Point from raw coordinates.
func NewPoint(x, y uint8) Point {
	return Point{X: x, Y: y}
}

// Transposed swaps the X and Y components.
func (p Point) Transposed() Point {
	return Point{X: p.Y, Y: p.X}
}

// String renders the point the way the reference client prints coordinates.
func (p Point) String() string {
	return fmt.Sprintf("[%d; %d]", p.X, p.Y)
}
