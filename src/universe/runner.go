package universe

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"
)

//Options represents the Runner's configurable options
type Options struct {
	Width    int
	Height   int
	Interval time.Duration
	MaxSteps int
	Seed     int64
	Advanced map[string]interface{} //advanced options (engine specific)
}

//Status represents the status of the simulation at concrete moment
type Status struct {
	IterationNum  int
	RunningMode   RunningState
	LiveCells     int
	IdleCells     int
	IterationTime time.Duration
}

//Snapshot is a copy of the grid handed out to viewers
type Snapshot struct {
	Width  int
	Height int
	Cells  []Cell
}

//At returns the cell at x, y, the coordinates must be inside the snapshot
func (s Snapshot) At(x int, y int) Cell {
	return s.Cells[y*s.Width+x]
}

//Viewer is the interface to any Viewer - the object who can display simulation data or control the runner
type Viewer interface {
	Refresh()
	Register(c Controller)
	Start()
}

//Controller is the part of the Runner the viewers can use
type Controller interface {
	Status() Status
	Options() Options
	Snapshot() Snapshot
	Render() string
	History() []int
	Run()
	Stop()
	Step()
	Clear()
	SettleWithRandomData()
	PushCell(x int, y int) error
}

//The runner status at the concrete moment
type RunningState int

//default options
const (
	DefSimulationInterval = time.Millisecond * 100
	DefMaxSteps           = 1000
	DefWidth              = 40
	DefHeight             = 15
	DefSeed               = 42
)

const (
	RunningStateManual RunningState = iota
	RunningStateStep
	RunningStateRun
	RunningStateFinished
)

func (s RunningState) String() string {
	switch s {
	case RunningStateManual:
		return "manual"
	case RunningStateStep:
		return "step"
	case RunningStateRun:
		return "run"
	case RunningStateFinished:
		return "finished"
	}
	return fmt.Sprintf("RunningState(%d)", int(s))
}

var DefaultOptions = Options{
	Width:    DefWidth,
	Height:   DefHeight,
	Interval: DefSimulationInterval,
	MaxSteps: DefMaxSteps,
	Seed:     DefSeed,
}

//Runner drives a Universe: it owns the engine and applies all commands from one goroutine
//the status is published to stateCh on every running mode switch
type Runner struct {
	options Options
	state   struct {
		Status
		sync.Mutex
	}
	universe struct {
		*Universe
		history []int //live cells after each step
		sync.Mutex
	}
	templates struct {
		m map[string]Template
		sync.Mutex
	}
	stateCh   chan Status
	views     []Viewer
	rng       *rand.Rand
	controlCh chan func()
	halt      chan struct{} //closed to end the current run loop, owned by mainLoop
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

//NewRunner creates the Runner and starts its command loop
//when u is nil an empty universe of the options' dimensions is created
func NewRunner(u *Universe, o *Options, stateCh chan Status) *Runner {
	if o == nil {
		o = &DefaultOptions
	}
	if u == nil {
		w, h := o.Width, o.Height
		if w <= 0 {
			w = DefWidth
		}
		if h <= 0 {
			h = DefHeight
		}
		u = newUniverse(w, h, nil)
	}

	r := &Runner{
		options:   *o,
		stateCh:   stateCh,
		rng:       rand.New(rand.NewPCG(uint64(o.Seed), 0)),
		controlCh: make(chan func(), 1),
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
	r.options.Width = u.Width()
	r.options.Height = u.Height()
	r.options.Advanced = make(map[string]interface{}, len(o.Advanced)+3)
	for k, v := range o.Advanced {
		r.options.Advanced[k] = v
	}
	r.options.Advanced["engine"] = string(u.Strategy())
	r.options.Advanced["clear resets dead times"] = u.Policy().ClearResetsDeadTimes
	r.options.Advanced["push resets dead times"] = u.Policy().PushResetsDeadTimes

	r.universe.Universe = u
	r.templates.m = map[string]Template{}
	for _, tmpl := range BuiltinTemplates() {
		r.templates.m[tmpl.Name] = tmpl
	}
	r.updateCounters()
	go r.mainLoop()
	return r
}

//AddTemplate adds the seeding template to the internal storage
//the universe can be populated with this template by call SettleTemplate
func (r *Runner) AddTemplate(tmpl Template) {
	r.templates.Lock()
	r.templates.m[tmpl.Name] = tmpl
	r.templates.Unlock()
}

//Templates returns the names of the known templates
func (r *Runner) Templates() []string {
	r.templates.Lock()
	defer r.templates.Unlock()
	names := make([]string, 0, len(r.templates.m))
	for k := range r.templates.m {
		names = append(names, k)
	}
	return names
}

//SettleTemplate populates the universe with the seeding template
func (r *Runner) SettleTemplate(name string) error {
	r.templates.Lock()
	tmpl, ok := r.templates.m[name]
	r.templates.Unlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}
	r.Settle(tmpl.Coordinates)
	return nil
}

//Settle makes the cells at the given [x,y] coordinates alive, returns when done
//coordinates outside the universe are skipped
func (r *Runner) Settle(vc [][]int) {
	r.call(func() {
		r.universe.Lock()
		r.settle(vc)
		r.universe.Unlock()
		r.updateCounters()
		r.refreshView()
	})
}

//SettleWithRandomData clears the universe and populates it with seeded random data
//it does nothing while the simulation is running
func (r *Runner) SettleWithRandomData() {
	r.call(func() {
		mode := r.mode()
		if mode != RunningStateManual && mode != RunningStateFinished {
			return
		}
		r.clear()
		r.universe.Lock()
		w, h := r.universe.Width(), r.universe.Height()
		for i := 0; i < w*h; i++ {
			_ = r.universe.PushCell(r.rng.IntN(w), r.rng.IntN(h))
		}
		r.universe.Unlock()
		r.updateCounters()
		r.refreshView()
	})
}

//PushCell makes the cell at x, y alive, returns when done
func (r *Runner) PushCell(x int, y int) (err error) {
	r.call(func() {
		r.universe.Lock()
		err = r.universe.PushCell(x, y)
		r.universe.Unlock()
		if err != nil {
			return
		}
		r.updateCounters()
		r.refreshView()
	})
	return
}

//RegisterViewer registers the viewer - the runner will call the viewer when the state is changed
func (r *Runner) RegisterViewer(v Viewer) {
	r.views = append(r.views, v)
	v.Register(r)
}

//StateCh returns the channel with the status updates
func (r *Runner) StateCh() chan Status {
	return r.stateCh
}

//Status returns current status represented by Status struct
func (r *Runner) Status() Status {
	r.state.Lock()
	defer r.state.Unlock()
	return r.state.Status
}

//Options returns the copy of the current configuration
func (r *Runner) Options() Options {
	o := r.options
	o.Advanced = make(map[string]interface{}, len(r.options.Advanced))
	for k, v := range r.options.Advanced {
		o.Advanced[k] = v
	}
	return o
}

//Snapshot returns the copy of the current generation
func (r *Runner) Snapshot() Snapshot {
	r.universe.Lock()
	defer r.universe.Unlock()
	return Snapshot{
		Width:  r.universe.Width(),
		Height: r.universe.Height(),
		Cells:  r.universe.Cells(),
	}
}

//Render returns the text picture of the current generation
func (r *Runner) Render() string {
	r.universe.Lock()
	defer r.universe.Unlock()
	return r.universe.Render()
}

//History returns the live cells count after each step since the last clear
func (r *Runner) History() []int {
	r.universe.Lock()
	defer r.universe.Unlock()
	h := make([]int, len(r.universe.history))
	copy(h, r.universe.history)
	return h
}

//Run starts the simulation, returns immediately
func (r *Runner) Run() {
	r.exec(r.run)
}

//Stop stops the simulation, returns immediately
//the Status struct will be written the stateCh on finish
func (r *Runner) Stop() {
	r.exec(r.stop)
}

//Step does one simulation step, returns immediately
//the Status struct will be written to the stateCh on start and on finish
func (r *Runner) Step() {
	r.exec(r.step)
}

//Clear clears the universe (kill all cells and reset all counters), returns immediately
//the Status struct will be written to the stateCh on finish
func (r *Runner) Clear() {
	r.exec(r.clear)
}

//Close stops the main loop, returns when the command in progress is done
//commands issued after Close are dropped, Close must not be called from a viewer callback
func (r *Runner) Close() {
	r.closeOnce.Do(func() {
		close(r.done)
	})
	<-r.stopped
}

//mainLoop - the main cycle, should start as a goroutine
//waits for command and executes
func (r *Runner) mainLoop() {
	defer close(r.stopped)
	for {
		select {
		case cmd := <-r.controlCh:
			select {
			case <-r.done:
				return
			default:
			}
			cmd()
		case <-r.done:
			return
		}
	}
}

//exec queues the command, reports false when the runner is closed
func (r *Runner) exec(cmd func()) bool {
	select {
	case <-r.done:
		return false
	default:
	}
	select {
	case r.controlCh <- cmd:
		return true
	case <-r.done:
		return false
	}
}

//call queues the command and waits until it is executed
func (r *Runner) call(cmd func()) {
	finished := make(chan struct{})
	if !r.exec(func() {
		cmd()
		close(finished)
	}) {
		return
	}
	select {
	case <-finished:
	case <-r.done:
	}
}

//settle makes the cells at the coordinates alive, the universe must be locked
func (r *Runner) settle(vc [][]int) {
	for _, v := range vc {
		if len(v) < 2 {
			continue
		}
		//out of the universe, skip
		_ = r.universe.PushCell(v[0], v[1])
	}
}

func (r *Runner) mode() RunningState {
	r.state.Lock()
	defer r.state.Unlock()
	return r.state.RunningMode
}

//updateCounters recalculates live and idle cells of the status
func (r *Runner) updateCounters() {
	r.universe.Lock()
	live, idle := r.universe.Count(Alive), r.universe.Count(Idle)
	r.universe.Unlock()
	r.state.Lock()
	r.state.LiveCells = live
	r.state.IdleCells = idle
	r.state.Unlock()
}

//switchRunningState switch the state of the runner to RunningState
//also writes the new state to the stateCh to signal upper control software
func (r *Runner) switchRunningState(to RunningState) {
	r.publish(r.setRunningState(to))
}

func (r *Runner) setRunningState(to RunningState) Status {
	r.state.Lock()
	defer r.state.Unlock()
	r.state.RunningMode = to
	return r.state.Status
}

func (r *Runner) publish(st Status) {
	if r.stateCh == nil {
		return
	}
	select {
	case r.stateCh <- st:
	case <-r.done:
	}
}

//run starts the simulation cycle
//simulation will stop on Stop() calling or when the boundary conditions are reached
func (r *Runner) run() {
	if r.mode() == RunningStateRun {
		return
	}
	r.halt = make(chan struct{})
	r.switchRunningState(RunningStateRun)
	go r.runLoop(r.halt)
}

//runLoop queues one step per interval until halt is closed
func (r *Runner) runLoop(halt chan struct{}) {
	for {
		finished := make(chan struct{})
		queued := r.exec(func() {
			defer close(finished)
			//Stop or Clear could be executed before this step
			select {
			case <-halt:
				return
			default:
			}
			r.step()
		})
		if !queued {
			return
		}
		select {
		case <-finished:
		case <-r.done:
			return
		}
		select {
		case <-halt:
			return
		case <-r.done:
			return
		case <-time.After(r.options.Interval):
		}
	}
}

//endRun ends the current run loop, it is a no-op when nothing runs
func (r *Runner) endRun() {
	if r.halt != nil {
		close(r.halt)
		r.halt = nil
	}
}

//stop stops the running cycle
func (r *Runner) stop() {
	r.endRun()
	if r.mode() == RunningStateRun {
		r.switchRunningState(RunningStateManual)
	}
}

//step does the new one generation calculation for entire universe
//the simulation is finished when the steps limit is reached, there are no live cells or nothing changed
func (r *Runner) step() {
	finished := false
	rm := r.mode()
	maxIter := r.options.MaxSteps
	//the viewers see the new state before it is published
	defer func() {
		to := rm
		if finished {
			to = RunningStateFinished
			r.endRun()
		}
		st := r.setRunningState(to)
		r.refreshView()
		r.publish(st)
	}()

	if maxIter != 0 && r.Status().IterationNum >= maxIter {
		finished = true
		return
	}
	r.switchRunningState(RunningStateStep)

	start := time.Now()
	r.universe.Lock()
	r.universe.Tick()
	live, idle := r.universe.Count(Alive), r.universe.Count(Idle)
	stable := r.universe.Stable()
	r.universe.history = append(r.universe.history, live)
	r.universe.Unlock()

	r.state.Lock()
	r.state.IterationNum++
	r.state.LiveCells = live
	r.state.IdleCells = idle
	r.state.IterationTime = time.Since(start)
	iter := r.state.IterationNum
	r.state.Unlock()

	if live == 0 || stable || (maxIter != 0 && iter >= maxIter) {
		finished = true
	}
}

//clear clears the universe data, reset all counters
func (r *Runner) clear() {
	r.endRun()
	r.universe.Lock()
	r.universe.Clear()
	r.universe.history = nil
	r.universe.Unlock()

	r.state.Lock()
	r.state.IterationNum = 0
	r.state.LiveCells = 0
	r.state.IdleCells = 0
	r.state.IterationTime = 0
	r.state.Unlock()
	st := r.setRunningState(RunningStateManual)
	r.refreshView()
	r.publish(st)
}

//refreshView calls Refresh event for all registered views
func (r *Runner) refreshView() {
	for _, v := range r.views {
		v.Refresh()
	}
}
