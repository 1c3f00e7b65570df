package universe

import (
	"fmt"
	"sort"
)

//Strategy names the tick implementation
//all strategies produce the same generations, they differ in buffer handling only
type Strategy string

const (
	//StrategySwap computes into the persistent back buffer and swaps it with the front one
	StrategySwap Strategy = "swap"
	//StrategyAlloc allocates a fresh buffer on each tick
	StrategyAlloc Strategy = "alloc"
	//StrategyRowBuf keeps the current and the previous row only
	StrategyRowBuf Strategy = "rowbuf"
)

//Strategies returns the sorted names of all tick strategies
func Strategies() []string {
	names := []string{string(StrategySwap), string(StrategyAlloc), string(StrategyRowBuf)}
	sort.Strings(names)
	return names
}

//ParseStrategy validates the strategy name, empty means the default one
func ParseStrategy(name string) (Strategy, error) {
	switch Strategy(name) {
	case "":
		return StrategySwap, nil
	case StrategySwap, StrategyAlloc, StrategyRowBuf:
		return Strategy(name), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

//nextState applies the transition rule to the cell at x, y reading the current generation
//the dead-time counter of the cell is updated as a side effect
func (u *Universe) nextState(x int, y int, idx int) Cell {
	n := u.Neighbors(x, y)
	s := u.cells[idx]
	switch {
	case s == Alive && n < 2:
		return Dead
	case s == Alive && n < 4:
		return Alive
	case s == Alive:
		return Dead
	case s == Dead && n == 3:
		u.deadTimes[idx] = 0
		return Alive
	case s == Idle && n == 3:
		return Alive
	case s == Dead && u.deadTimes[idx] >= IdleThreshold:
		u.deadTimes[idx] = 0
		return Idle
	case s == Dead:
		u.deadTimes[idx]++
		return Dead
	}
	return s
}

/*
	Two buffers implementation
	the next generation is calculated into the back buffer, then the buffers are swapped
*/
func (u *Universe) tickSwap() (changed bool) {
	for y := 0; y < u.height; y++ {
		for x := 0; x < u.width; x++ {
			idx := u.index(x, y)
			next := u.nextState(x, y, idx)
			changed = changed || next != u.cells[idx]
			u.back[idx] = next
		}
	}
	u.cells, u.back = u.back, u.cells
	return
}

/*
	The simplest implementation: creates the new buffer with full size on each call
	and replaces the current generation with it
*/
func (u *Universe) tickAlloc() (changed bool) {
	next := make([]Cell, len(u.cells))
	for y := 0; y < u.height; y++ {
		for x := 0; x < u.width; x++ {
			idx := u.index(x, y)
			next[idx] = u.nextState(x, y, idx)
			changed = changed || next[idx] != u.cells[idx]
		}
	}
	u.cells = next
	return
}

/*
	Small buffer implementation
	the buffer stores the current and the previous rows only.
	the previous row is copied to the grid once the current row is calculated,
	nothing reads it any more at that moment
*/
func (u *Universe) tickRowBuf() (changed bool) {
	w := u.width
	for y := 0; y < u.height; y++ {
		for x := 0; x < w; x++ {
			idx := u.index(x, y)
			next := u.nextState(x, y, idx)
			changed = changed || next != u.cells[idx]
			u.rows[1][x] = next
		}
		if y-1 >= 0 {
			copy(u.cells[(y-1)*w:y*w], u.rows[0])
		}
		u.rows[0], u.rows[1] = u.rows[1], u.rows[0]
	}
	copy(u.cells[(u.height-1)*w:], u.rows[0])
	return
}
