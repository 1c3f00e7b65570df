package universe

//Cell is the state of a single grid cell
type Cell uint8

const (
	Dead  Cell = 0
	Alive Cell = 1
	//Idle is a settled dead cell, it is born again only with exactly 3 live neighbours
	Idle Cell = 2
)

//IdleThreshold is the dead-time value at which a dead cell settles into Idle
const IdleThreshold = 10

func (c Cell) String() string {
	switch c {
	case Dead:
		return "dead"
	case Alive:
		return "alive"
	case Idle:
		return "idle"
	}
	return "unknown"
}

//glyph returns the rendering symbol, Alive and Idle look the same
func (c Cell) glyph() rune {
	if c == Dead {
		return '◻'
	}
	return '◼'
}

//parseGlyph maps a pattern character to a Cell
func parseGlyph(r rune) (Cell, bool) {
	switch r {
	case '1', '#', 'O', '*':
		return Alive, true
	case '0', '.', ' ':
		return Dead, true
	case 'i', '~':
		return Idle, true
	}
	return Dead, false
}
