package universe

import (
	"math"
	"strings"
	"unicode/utf8"
)

//DefSide is the side of the square demo grid built by New
const DefSide = 64

//Policy selects the dead-time bookkeeping of the mutators
//the zero value keeps the counters untouched on Clear and PushCell
type Policy struct {
	ClearResetsDeadTimes bool
	PushResetsDeadTimes  bool
}

//Option configures the Universe on construction
type Option func(u *Universe)

//WithStrategy selects the tick implementation, unknown names fall back to StrategySwap
func WithStrategy(s Strategy) Option {
	return func(u *Universe) {
		if parsed, err := ParseStrategy(string(s)); err == nil {
			u.strategy = parsed
		} else {
			u.strategy = StrategySwap
		}
	}
}

//WithPolicy selects the dead-time policy
func WithPolicy(p Policy) Option {
	return func(u *Universe) {
		u.policy = p
	}
}

//Universe is the simulation engine: the grid of cells and their dead-time counters
//cells and deadTimes are row-major, index = y*width + x
//Universe is not safe for concurrent use
type Universe struct {
	width     int
	height    int
	cells     []Cell
	deadTimes []uint8

	back []Cell    //next generation buffer (swap strategy)
	rows [2][]Cell //current and previous row (rowbuf strategy)

	generation int
	stable     bool
	strategy   Strategy
	policy     Policy
}

//New creates the square demo universe
//the cell is alive if its index is a multiple of 2 or 7, otherwise it is idle
func New(opts ...Option) *Universe {
	u := newUniverse(DefSide, DefSide, opts)
	for i := range u.cells {
		if i%2 == 0 || i%7 == 0 {
			u.cells[i] = Alive
		} else {
			u.cells[i] = Idle
		}
	}
	return u
}

//WithCells creates the universe from the row-major cell list
//the list is copied, all dead-time counters start at zero
func WithCells(cells []Cell, height int, width int, opts ...Option) (*Universe, error) {
	if !validDimensions(width, height) {
		return nil, ErrInvalidDimension
	}
	if len(cells) != width*height {
		return nil, ErrDimensionMismatch
	}
	u := newUniverse(width, height, opts)
	copy(u.cells, cells)
	return u, nil
}

//FromRows creates the universe from text rows, one character per cell
//'1', '#', 'O', '*' are alive; '0', '.', ' ' are dead; 'i', '~' are idle
func FromRows(rows []string, opts ...Option) (*Universe, error) {
	if len(rows) == 0 {
		return nil, ErrInvalidDimension
	}
	width := utf8.RuneCountInString(rows[0])
	cells := make([]Cell, 0, width*len(rows))
	for _, row := range rows {
		if utf8.RuneCountInString(row) != width {
			return nil, ErrDimensionMismatch
		}
		for _, r := range row {
			c, ok := parseGlyph(r)
			if !ok {
				return nil, ErrBadGlyph
			}
			cells = append(cells, c)
		}
	}
	return WithCells(cells, len(rows), width, opts...)
}

//validDimensions reports whether a width x height grid can be addressed
func validDimensions(width int, height int) bool {
	return width > 0 && height > 0 && width <= math.MaxInt/height
}

func newUniverse(width int, height int, opts []Option) *Universe {
	u := &Universe{width: width, height: height}
	for _, o := range opts {
		o(u)
	}
	u.allocate()
	return u
}

//allocate (re)creates all buffers for the current dimensions
func (u *Universe) allocate() {
	n := u.width * u.height
	u.cells = make([]Cell, n)
	u.deadTimes = make([]uint8, n)
	u.back = make([]Cell, n)
	u.rows = [2][]Cell{make([]Cell, u.width), make([]Cell, u.width)}
}

//index is the unchecked row-major index
func (u *Universe) index(x int, y int) int {
	return y*u.width + x
}

func (u *Universe) inside(x int, y int) bool {
	return x >= 0 && y >= 0 && x < u.width && y < u.height
}

//Index returns the row-major index of the cell at x, y
func (u *Universe) Index(x int, y int) (int, error) {
	if !u.inside(x, y) {
		return 0, &CoordError{X: x, Y: y, Wrapped: ErrOutOfBounds}
	}
	return u.index(x, y), nil
}

//Neighbors counts the alive cells of the Moore neighbourhood of x, y
//coordinates outside the grid never count
func (u *Universe) Neighbors(x int, y int) int {
	n := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx, ny := x+dx, y+dy
			if !u.inside(nx, ny) {
				continue
			}
			if u.cells[u.index(nx, ny)] == Alive {
				n++
			}
		}
	}
	return n
}

//Tick advances the universe by one generation
func (u *Universe) Tick() {
	var changed bool
	switch u.strategy {
	case StrategyAlloc:
		changed = u.tickAlloc()
	case StrategyRowBuf:
		changed = u.tickRowBuf()
	default:
		changed = u.tickSwap()
	}
	u.stable = !changed
	u.generation++
}

func (u *Universe) Width() int {
	return u.width
}

func (u *Universe) Height() int {
	return u.height
}

//SetWidth changes the width and clears the universe
func (u *Universe) SetWidth(width int) error {
	if !validDimensions(width, u.height) {
		return ErrInvalidDimension
	}
	u.width = width
	u.allocate()
	u.Clear()
	return nil
}

//SetHeight changes the height and clears the universe
func (u *Universe) SetHeight(height int) error {
	if !validDimensions(u.width, height) {
		return ErrInvalidDimension
	}
	u.height = height
	u.allocate()
	u.Clear()
	return nil
}

//Clear kills all cells and resets the generation counter
//dead-time counters survive unless the policy says otherwise
func (u *Universe) Clear() {
	for i := range u.cells {
		u.cells[i] = Dead
	}
	if u.policy.ClearResetsDeadTimes {
		for i := range u.deadTimes {
			u.deadTimes[i] = 0
		}
	}
	u.generation = 0
	u.stable = false
}

//PushCell makes the cell at x, y alive
func (u *Universe) PushCell(x int, y int) error {
	idx, err := u.Index(x, y)
	if err != nil {
		return err
	}
	u.cells[idx] = Alive
	if u.policy.PushResetsDeadTimes {
		u.deadTimes[idx] = 0
	}
	return nil
}

//SetCell puts the cell at x, y into the given state
//a dead cell leaving the Dead state starts its next dead time from zero, as in Tick
func (u *Universe) SetCell(x int, y int, c Cell) error {
	idx, err := u.Index(x, y)
	if err != nil {
		return err
	}
	if u.cells[idx] == Dead && c != Dead {
		u.deadTimes[idx] = 0
	}
	u.cells[idx] = c
	return nil
}

//Cells returns a copy of the current generation
func (u *Universe) Cells() []Cell {
	cells := make([]Cell, len(u.cells))
	copy(cells, u.cells)
	return cells
}

func (u *Universe) Cell(x int, y int) (Cell, error) {
	idx, err := u.Index(x, y)
	if err != nil {
		return Dead, err
	}
	return u.cells[idx], nil
}

//DeadTime returns the number of consecutive generations the cell has spent dead
func (u *Universe) DeadTime(x int, y int) (uint8, error) {
	idx, err := u.Index(x, y)
	if err != nil {
		return 0, err
	}
	return u.deadTimes[idx], nil
}

//Count returns the number of cells in the given state
func (u *Universe) Count(c Cell) int {
	n := 0
	for _, e := range u.cells {
		if e == c {
			n++
		}
	}
	return n
}

//Generation returns the number of ticks since construction or the last clear
func (u *Universe) Generation() int {
	return u.generation
}

//Stable reports whether the last tick left every cell unchanged
func (u *Universe) Stable() bool {
	return u.stable
}

func (u *Universe) Strategy() Strategy {
	switch u.strategy {
	case StrategyAlloc, StrategyRowBuf:
		return u.strategy
	}
	return StrategySwap
}

func (u *Universe) Policy() Policy {
	return u.policy
}

//Render returns the text picture of the grid, one line per row
func (u *Universe) Render() string {
	return u.String()
}

func (u *Universe) String() string {
	var b strings.Builder
	b.Grow(len(u.cells)*3 + u.height)
	for y := 0; y < u.height; y++ {
		for _, c := range u.cells[y*u.width : (y+1)*u.width] {
			b.WriteRune(c.glyph())
		}
		b.WriteByte('\n')
	}
	return b.String()
}
