package model

// Impact is the outcome of firing at a ship: either a clean Miss, or a Hit
// carrying the ship's updated (post-mark) state.
type Impact struct {
	Hit  bool
	Ship Ship
}

// Ship is a placed vessel: an anchor coordinate, an orientation along which
// it extends, and the class carrying its per-cell hit state.
type Ship struct {
	Coordinates Point       `json:"coordinates"`
	Orientation Orientation `json:"orientation"`
	Class       Class       `json:"-"`
}

// NewShip constructs a ship of the given class anchored at coordinates.
func NewShip(coordinates Point, orientation Orientation, class Class) Ship {
	return Ship{Coordinates: coordinates, Orientation: orientation, Class: class}
}

// TransposedTo returns the ship re-expressed in the target orientation,
// transposing its anchor coordinate when the orientation actually changes.
func (s Ship) TransposedTo(orientation Orientation) Ship {
	if orientation == s.Orientation {
		return s
	}
	return NewShip(s.Coordinates.Transposed(), s.Orientation.Transposed(), s.Class)
}

// TailEnd is the coordinate of the ship's far end along its orientation axis.
func (s Ship) TailEnd() uint8 {
	origin := s.Coordinates.X
	if s.Orientation == Vertical {
		origin = s.Coordinates.Y
	}
	return origin + s.Class.Size() - 1
}

// Range is the inclusive coordinate interval the ship spans along its axis.
func (s Ship) Range() Range {
	origin := s.Coordinates.X
	if s.Orientation == Vertical {
		origin = s.Coordinates.Y
	}
	return NewRange(origin, origin+s.Class.Size()-1)
}

// Overlap implements the canonical overlap rule: same orientation requires a
// shared perpendicular coordinate and overlapping ranges; perpendicular
// orientations require each ship's anchor to lie within the other's range.
func (s Ship) Overlap(other Ship) bool {
	if s.Coordinates == other.Coordinates {
		return true
	}
	selfH := s.TransposedTo(Horizontal)
	if s.Orientation == other.Orientation {
		otherH := other.TransposedTo(Horizontal)
		return selfH.Coordinates.Y == otherH.Coordinates.Y && selfH.Range().Overlap(otherH.Range())
	}
	otherV := other.TransposedTo(Vertical)
	return selfH.Range().Contains(otherV.Coordinates.X) && otherV.Range().Contains(selfH.Coordinates.Y)
}

// IsHit reports whether coordinates fall on the ship's footprint.
func (s Ship) IsHit(coordinates Point) bool {
	if s.Orientation == Horizontal {
		return s.Range().Contains(coordinates.X) && s.Coordinates.Y == coordinates.Y
	}
	return s.Range().Contains(coordinates.Y) && s.Coordinates.X == coordinates.X
}

// globalToLocal converts a board coordinate on the ship's footprint into the
// ship-local cell index used by the class's hit bit-array.
func (s Ship) globalToLocal(coordinates Point) uint8 {
	if s.Orientation == Horizontal {
		return coordinates.X - s.Coordinates.X
	}
	return coordinates.Y - s.Coordinates.Y
}

// Probe returns the display occupation for coordinates against this ship.
func (s Ship) Probe(coordinates Point) Occupation {
	if !s.IsHit(coordinates) {
		return Occupation{Kind: OccupationEmpty}
	}
	return s.Class.Probe(int(s.globalToLocal(coordinates)))
}

// Shoot fires at coordinates, returning Miss when they fall outside the
// ship's footprint or Hit with the ship's post-shot state otherwise.
func (s Ship) Shoot(coordinates Point) Impact {
	if !s.IsHit(coordinates) {
		return Impact{Hit: false}
	}
	return Impact{
		Hit:  true,
		Ship: NewShip(s.Coordinates, s.Orientation, s.Class.Shoot(s.globalToLocal(coordinates))),
	}
}

// IsSunk delegates to the class's hit bit-array.
func (s Ship) IsSunk() bool {
	return s.Class.IsSunk()
}
