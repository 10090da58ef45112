package model

// Orientation describes whether a ship lies along a row or a column.
type Orientation string

const (
	Horizontal Orientation = "Horizontal"
	Vertical   Orientation = "Vertical"
)

// Transposed flips the orientation.
func (o Orientation) Transposed() Orientation {
	if o == Horizontal {
		return Vertical
	}
	return Horizontal
}

func (o Orientation) String() string {
	return string(o)
}
