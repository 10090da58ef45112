package model

// ClassName enumerates the five fixed ship classes a fleet is built from.
type ClassName string

const (
	Carrier    ClassName = "carrier"
	Battleship ClassName = "battleship"
	Destroyer  ClassName = "destroyer"
	Submarine  ClassName = "submarine"
	PatrolBoat ClassName = "patrolboat"
)

// classOrder is the canonical fleet order returned by AllClasses.
var classOrder = []ClassName{Carrier, Battleship, Destroyer, Submarine, PatrolBoat}

// classSizes fixes the cell count for each class.
var classSizes = map[ClassName]int{
	Carrier:    5,
	Battleship: 4,
	Destroyer:  3,
	Submarine:  3,
	PatrolBoat: 2,
}

var classTokens = map[ClassName]string{
	Carrier:    "C",
	Battleship: "B",
	Destroyer:  "D",
	Submarine:  "S",
	PatrolBoat: "P",
}

// AllClasses returns the five class names in canonical fleet order.
func AllClasses() []ClassName {
	out := make([]ClassName, len(classOrder))
	copy(out, classOrder)
	return out
}

// ParseClassName resolves a lowercase class name, defaulting to carrier for
// unrecognized input the same way the reference `&str -> Class` conversion does.
func ParseClassName(name string) ClassName {
	switch ClassName(name) {
	case Carrier, Battleship, Destroyer, Submarine, PatrolBoat:
		return ClassName(name)
	default:
		return Carrier
	}
}

// Class carries the fixed-length hit bit-array for one ship class instance.
type Class struct {
	Name ClassName `json:"name"`
	Hits []bool    `json:"hits"`
}

// NewClass constructs an unmarked Class of the given name.
func NewClass(name ClassName) Class {
	size := classSizes[name]
	if size == 0 {
		name = Carrier
		size = classSizes[Carrier]
	}
	return Class{Name: name, Hits: make([]bool, size)}
}

// Size returns the number of cells the class occupies.
func (c Class) Size() uint8 {
	return uint8(len(c.Hits))
}

// Token returns the single-character map token used on the rendered board.
func (c Class) Token() string {
	if token, ok := classTokens[c.Name]; ok {
		return token
	}
	return "?"
}

func (c Class) String() string {
	return string(c.Name)
}

// Probe reports the occupation state of local index i within this class.
func (c Class) Probe(i int) Occupation {
	if i < 0 || i >= len(c.Hits) {
		return Occupation{Kind: OccupationEmpty}
	}
	if c.IsSunk() {
		return Occupation{Kind: OccupationSunk, Class: c}
	}
	return Occupation{Kind: OccupationShip, Class: c, Hit: c.Hits[i]}
}

// Shoot returns a new Class with local index i marked as hit. Out-of-range
// indices are a no-op, returning an unchanged copy.
func (c Class) Shoot(i uint8) Class {
	hits := make([]bool, len(c.Hits))
	copy(hits, c.Hits)
	if int(i) < len(hits) {
		hits[i] = true
	}
	return Class{Name: c.Name, Hits: hits}
}

// IsSunk reports whether every cell of the class has been hit.
func (c Class) IsSunk() bool {
	for _, hit := range c.Hits {
		if !hit {
			return false
		}
	}
	return len(c.Hits) > 0
}
