package universe

import (
	"sync"
	"testing"
	"time"

	. "github.com/onsi/gomega"
)

func newTestRunner(t *testing.T, w int, h int, tmpl string, stateCh chan Status, mod func(o *Options)) *Runner {
	t.Helper()
	o := DefaultOptions
	o.Width, o.Height, o.Interval = w, h, 0
	if mod != nil {
		mod(&o)
	}
	r := NewRunner(nil, &o, stateCh)
	t.Cleanup(r.Close)
	if tmpl != "" {
		if err := r.SettleTemplate(tmpl); err != nil {
			t.Fatalf("SettleTemplate: %v", err)
		}
	}
	return r
}

type countingViewer struct {
	mu        sync.Mutex
	refreshes int
	c         Controller
}

func (v *countingViewer) Refresh() {
	v.mu.Lock()
	v.refreshes++
	v.mu.Unlock()
}

func (v *countingViewer) Register(c Controller) { v.c = c }

func (v *countingViewer) Start() {}

func (v *countingViewer) count() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.refreshes
}

func TestRunnerStep(t *testing.T) {
	g := NewWithT(t)
	stateCh := newStateCh()
	r := newTestRunner(t, 4, 4, "corner", stateCh, nil)
	g.Expect(r.Status().LiveCells).To(Equal(4))

	r.Step()
	g.Expect(waitFor(stateCh, RunningStateStep).IterationNum).To(Equal(0))
	st := waitFor(stateCh, RunningStateManual, RunningStateFinished)
	g.Expect(st.RunningMode).To(Equal(RunningStateManual))
	g.Expect(st.IterationNum).To(Equal(1))
	g.Expect(st.LiveCells).To(Equal(3))

	g.Expect(r.Snapshot().Cells).To(Equal(rowsCells(t, "0001", "0011", "0000", "0000")))
	g.Expect(r.Render()).To(Equal("◻◻◻◼\n◻◻◼◼\n◻◻◻◻\n◻◻◻◻\n"))
}

func TestRunnerRunUntilExtinct(t *testing.T) {
	g := NewWithT(t)
	stateCh := newStateCh()
	r := newTestRunner(t, 4, 4, "fade", stateCh, nil)

	r.Run()
	st := waitFor(stateCh, RunningStateFinished)
	g.Expect(st.IterationNum).To(Equal(3))
	g.Expect(st.LiveCells).To(Equal(0))
	g.Expect(r.History()).To(Equal([]int{3, 2, 0}))
}

func TestRunnerMaxSteps(t *testing.T) {
	g := NewWithT(t)
	stateCh := newStateCh()
	r := newTestRunner(t, 5, 5, "blinker", stateCh, func(o *Options) { o.MaxSteps = 5 })

	r.Run()
	st := waitFor(stateCh, RunningStateFinished)
	g.Expect(st.IterationNum).To(Equal(5))
	g.Expect(st.LiveCells).To(Equal(3))
	g.Expect(r.History()).To(HaveLen(5))

	//the limit is reached, the next step does not tick
	r.Step()
	st = waitFor(stateCh, RunningStateFinished)
	g.Expect(st.IterationNum).To(Equal(5))
}

func TestRunnerStop(t *testing.T) {
	g := NewWithT(t)
	r := newTestRunner(t, 5, 5, "blinker", nil, func(o *Options) {
		o.MaxSteps = 0
		o.Interval = 5 * time.Millisecond
	})

	r.Run()
	g.Eventually(func() int { return r.Status().IterationNum }).Should(BeNumerically(">=", 2))
	r.Stop()
	g.Eventually(func() RunningState { return r.Status().RunningMode }).Should(Equal(RunningStateManual))

	iter := r.Status().IterationNum
	g.Consistently(func() int { return r.Status().IterationNum }, 50*time.Millisecond).Should(Equal(iter))
}

func TestRunnerRestartKeepsOneLoop(t *testing.T) {
	g := NewWithT(t)
	const interval = 40 * time.Millisecond
	r := newTestRunner(t, 5, 5, "blinker", nil, func(o *Options) {
		o.MaxSteps = 0
		o.Interval = interval
	})
	iter := func() int { return r.Status().IterationNum }

	r.Run()
	g.Eventually(iter).Should(BeNumerically(">=", 1))
	//each restart lands inside the interval of the previous loop
	for i := 0; i < 3; i++ {
		r.Stop()
		r.Run()
	}
	r.Clear()
	g.Expect(r.SettleTemplate("blinker")).To(Succeed())
	r.Run()
	g.Eventually(func() RunningState { return r.Status().RunningMode }).Should(Equal(RunningStateRun))

	start := iter()
	time.Sleep(10 * interval)
	//a single loop does at most one step per interval
	g.Expect(iter() - start).To(BeNumerically("<=", 12))

	r.Stop()
	g.Eventually(func() RunningState { return r.Status().RunningMode }).Should(Equal(RunningStateManual))
	stopped := iter()
	g.Consistently(iter, 3*interval).Should(Equal(stopped))
}

func TestRunnerClear(t *testing.T) {
	g := NewWithT(t)
	stateCh := newStateCh()
	r := newTestRunner(t, 5, 5, "blinker", stateCh, nil)
	r.Step()
	waitFor(stateCh, RunningStateManual)

	r.Clear()
	st := waitFor(stateCh, RunningStateManual)
	g.Expect(st.IterationNum).To(Equal(0))
	g.Expect(st.LiveCells).To(Equal(0))
	g.Expect(r.History()).To(BeEmpty())
	for _, c := range r.Snapshot().Cells {
		g.Expect(c).To(Equal(Dead))
	}
}

func TestRunnerTemplates(t *testing.T) {
	g := NewWithT(t)
	r := newTestRunner(t, 8, 8, "", nil, nil)

	g.Expect(r.SettleTemplate("nope")).To(MatchError(ErrUnknownTemplate))

	r.AddTemplate(Template{Name: "diag", Coordinates: [][]int{{0, 0}, {1, 1}, {9, 9}, {2}}})
	g.Expect(r.Templates()).To(ContainElements("diag", "glider", "testSample1"))
	g.Expect(r.SettleTemplate("diag")).To(Succeed())
	g.Expect(r.Status().LiveCells).To(Equal(2))
	g.Expect(r.Snapshot().At(1, 1)).To(Equal(Alive))
}

func TestRunnerSettleWithRandomData(t *testing.T) {
	g := NewWithT(t)
	a := newTestRunner(t, 12, 9, "", newStateCh(), nil)
	b := newTestRunner(t, 12, 9, "", newStateCh(), nil)

	a.SettleWithRandomData()
	b.SettleWithRandomData()
	g.Expect(a.Status().LiveCells).To(BeNumerically(">", 0))
	g.Expect(a.Snapshot()).To(Equal(b.Snapshot()))
}

func TestRunnerPushCell(t *testing.T) {
	g := NewWithT(t)
	v := &countingViewer{}
	r := newTestRunner(t, 3, 3, "", nil, nil)
	r.RegisterViewer(v)
	g.Expect(v.c).To(BeIdenticalTo(Controller(r)))

	g.Expect(r.PushCell(2, 2)).To(Succeed())
	g.Expect(r.Snapshot().At(2, 2)).To(Equal(Alive))
	g.Expect(v.count()).To(Equal(1))

	g.Expect(r.PushCell(3, 0)).To(MatchError(ErrOutOfBounds))
	g.Expect(v.count()).To(Equal(1))
}

func TestRunnerOptions(t *testing.T) {
	g := NewWithT(t)
	u, err := WithCells(make([]Cell, 6), 2, 3, WithStrategy(StrategyRowBuf), WithPolicy(Policy{ClearResetsDeadTimes: true}))
	g.Expect(err).NotTo(HaveOccurred())
	r := NewRunner(u, nil, nil)
	defer r.Close()

	o := r.Options()
	g.Expect(o.Width).To(Equal(3))
	g.Expect(o.Height).To(Equal(2))
	g.Expect(o.MaxSteps).To(Equal(DefMaxSteps))
	g.Expect(o.Advanced).To(HaveKeyWithValue("engine", "rowbuf"))
	g.Expect(o.Advanced).To(HaveKeyWithValue("clear resets dead times", true))
	g.Expect(DefaultOptions.Advanced).To(BeNil())

	//the caller gets its own copy of the advanced options
	o.Advanced["engine"] = "alloc"
	g.Expect(r.Options().Advanced).To(HaveKeyWithValue("engine", "rowbuf"))
}

func TestClosedRunnerDropsCommands(t *testing.T) {
	g := NewWithT(t)
	r := newTestRunner(t, 3, 3, "", newStateCh(), nil)
	r.Close()
	r.Close()

	r.Step()
	r.Run()
	g.Expect(r.PushCell(1, 1)).To(Succeed())
	g.Expect(r.Status().IterationNum).To(Equal(0))
}

func TestRunningStateString(t *testing.T) {
	g := NewWithT(t)
	g.Expect(RunningStateFinished.String()).To(Equal("finished"))
	g.Expect(RunningState(9).String()).To(Equal("RunningState(9)"))
}
