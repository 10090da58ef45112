package model

import (
	"fmt"
	"strings"
)

// FleetSize is the fixed number of ships every player's fleet holds.
const FleetSize = 5

// Fleet is an ordered slot array; a class appears in at most one slot.
type Fleet [FleetSize]*Ship

// Player is one participant's name, advisory secret, fleet and status.
type Player struct {
	Name      string
	Secret    string
	Fleet     Fleet
	Status    Status
	FieldSize Size
}

// NewPlayer constructs a fresh player in the default Requested status with
// an empty fleet, ready to receive placements.
func NewPlayer(name, secret string, fieldSize Size) Player {
	return Player{Name: name, Secret: secret, Status: Requested, FieldSize: fieldSize}
}

// Placed reports whether the fleet already has a ship of the given class.
func (p Player) Placed(class ClassName) bool {
	for _, ship := range p.Fleet {
		if ship != nil && ship.Class.Name == class {
			return true
		}
	}
	return false
}

// insideField reports whether a ship lies entirely within the board.
func (p Player) insideField(ship Ship) bool {
	if ship.Coordinates.X >= p.FieldSize.Width || ship.Coordinates.Y >= p.FieldSize.Height {
		return false
	}
	bound := p.FieldSize.Width
	if ship.Orientation == Vertical {
		bound = p.FieldSize.Height
	}
	return ship.TailEnd() <= bound-1
}

// overlapping returns the first fleet ship that overlaps the candidate, if any.
func (p Player) overlapping(ship Ship) *Ship {
	for _, other := range p.Fleet {
		if other != nil && ship.Overlap(*other) {
			return other
		}
	}
	return nil
}

// CheckPlacement validates a candidate ship in the canonical order:
// already-placed, then out-of-bounds, then overlap.
func (p Player) CheckPlacement(ship Ship) error {
	if p.Placed(ship.Class.Name) {
		return newShipAlreadyPlaced(ship.Class.Name)
	}
	if !p.insideField(ship) {
		return newShipOutOfBounds(ship.Coordinates, ship.Orientation, ship.Class.Size())
	}
	if other := p.overlapping(ship); other != nil {
		return newShipOverlaps(*other)
	}
	return nil
}

func (p Player) findEmptySlot() int {
	for i, ship := range p.Fleet {
		if ship == nil {
			return i
		}
	}
	return -1
}

// PlaceShip validates and appends ship to the fleet, returning the updated player.
func (p Player) PlaceShip(ship Ship) (Player, error) {
	if err := p.CheckPlacement(ship); err != nil {
		return p, err
	}
	slot := p.findEmptySlot()
	if slot < 0 {
		return p, newShipAlreadyPlaced(ship.Class.Name)
	}
	updated := p
	updated.Fleet[slot] = &ship
	return updated, nil
}

// FleetSize reports how many ships have been placed so far.
func (p Player) FleetSize() int {
	count := 0
	for _, ship := range p.Fleet {
		if ship != nil {
			count++
		}
	}
	return count
}

// IsFleetComplete reports whether all five ships have been placed.
func (p Player) IsFleetComplete() bool {
	return p.FleetSize() == FleetSize
}

// Probe returns the display occupation of coordinates against this player's fleet.
func (p Player) Probe(coordinates Point) Occupation {
	for _, ship := range p.Fleet {
		if ship != nil && ship.IsHit(coordinates) {
			return ship.Probe(coordinates)
		}
	}
	return Occupation{Kind: OccupationEmpty}
}

// ActiveShips counts placed ships that are not yet sunk.
func (p Player) ActiveShips() int {
	count := 0
	for _, ship := range p.Fleet {
		if ship != nil && !ship.IsSunk() {
			count++
		}
	}
	return count
}

// IsDefeated reports whether every placed ship is sunk.
func (p Player) IsDefeated() bool {
	return p.ActiveShips() == 0
}

// Shoot fires at coordinates against the fleet. On a hit it returns the
// updated player (fleet slot replaced, status flipped to Defeated if this
// was the last active ship) along with the hit ship.
func (p Player) Shoot(coordinates Point) (Player, Ship, bool) {
	for i, ship := range p.Fleet {
		if ship == nil {
			continue
		}
		impact := ship.Shoot(coordinates)
		if !impact.Hit {
			continue
		}
		updated := p
		updated.Fleet[i] = &impact.Ship
		if updated.IsDefeated() {
			updated.Status = Defeated
		}
		return updated, impact.Ship, true
	}
	return p, Ship{}, false
}

// Render draws the ruled ASCII board the reference terminal client shows
// between shots, one row of coordinate labels, a boxed grid and, per row,
// the probed occupation of every cell.
func (p Player) Render() string {
	lastX := p.FieldSize.Width - 1
	lastY := p.FieldSize.Height - 1

	var b strings.Builder
	b.WriteString("\n\n     ")
	for x := uint8(0); x <= lastX; x++ {
		fmt.Fprintf(&b, "  %d   ", x)
	}
	b.WriteString("\n")

	for y := uint8(0); y <= lastY; y++ {
		if y == 0 {
			b.WriteString(ruler(lastX, "    ╔", "══╧══", "╤", "╗"))
		} else {
			b.WriteString(ruler(lastX, "    ╟", "─────", "┼", "╢"))
		}
		fmt.Fprintf(&b, "  %d ╢", y)
		for x := uint8(0); x <= lastX; x++ {
			fmt.Fprintf(&b, " %s ", p.Probe(NewPoint(x, y)))
			if x == lastX {
				b.WriteString("║")
			} else {
				b.WriteString("│")
			}
		}
		b.WriteString("\n")
	}
	b.WriteString(ruler(lastX, "    ╚", "═════", "╧", "╝"))
	return b.String()
}

func ruler(width uint8, left, inner, border, right string) string {
	var b strings.Builder
	b.WriteString(left)
	for i := uint8(0); i < width; i++ {
		b.WriteString(inner)
		b.WriteString(border)
	}
	b.WriteString(inner)
	b.WriteString(right)
	b.WriteString("\n")
	return b.String()
}
