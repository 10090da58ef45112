package model

import "fmt"

// Size describes the playable board dimensions.
type Size struct {
	Width  uint8 `json:"width"`
	Height uint8 `json:"height"`
}

// DefaultSize is the canonical 10x10 battleship grid.
var DefaultSize = Size{Width: 10, Height: 10}

// Transposed swaps width and height.
func (s Size) Transposed() Size {
	return Size{Width: s.Height, Height: s.Width}
}

func (s Size) String() string {
	return fmt.Sprintf("[%d X %d]", s.Width, s.Height)
}
