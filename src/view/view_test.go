package view

import (
	"bytes"
	"strings"
	"testing"
	"time"

	. "github.com/onsi/gomega"

	"idlelife/src/universe"
)

type fakeController struct {
	status   universe.Status
	snapshot universe.Snapshot
	history  []int
	pushed   [][2]int
	calls    []string
}

func (f *fakeController) Status() universe.Status { return f.status }
func (f *fakeController) Options() universe.Options {
	return universe.Options{
		Width:    3,
		Height:   2,
		Interval: 50 * time.Millisecond,
		MaxSteps: 7,
		Advanced: map[string]interface{}{"engine": "swap", "clear resets dead times": false},
	}
}
func (f *fakeController) Snapshot() universe.Snapshot { return f.snapshot }
func (f *fakeController) Render() string              { return "◼◻◻\n◻◻◼\n" }
func (f *fakeController) History() []int              { return f.history }
func (f *fakeController) Run()                        { f.calls = append(f.calls, "run") }
func (f *fakeController) Stop()                       { f.calls = append(f.calls, "stop") }
func (f *fakeController) Step()                       { f.calls = append(f.calls, "step") }
func (f *fakeController) Clear()                      { f.calls = append(f.calls, "clear") }
func (f *fakeController) SettleWithRandomData()       { f.calls = append(f.calls, "random") }
func (f *fakeController) PushCell(x int, y int) error {
	f.pushed = append(f.pushed, [2]int{x, y})
	return nil
}

var testFillers = fillers{universe.Dead: ".", universe.Alive: "#", universe.Idle: "~"}

func TestConsoleOutRegister(t *testing.T) {
	g := NewWithT(t)
	var b bytes.Buffer
	out := NewConsoleOut(&b, false)
	out.Register(&fakeController{})

	g.Expect(b.String()).To(ContainSubstring("Dimension: 3 x 2"))
	g.Expect(b.String()).To(ContainSubstring("Max iterations: 7 steps"))
	//advanced options are sorted by name
	g.Expect(strings.Index(b.String(), "clear resets")).To(BeNumerically("<", strings.Index(b.String(), "engine")))
}

func TestConsoleOutProgress(t *testing.T) {
	g := NewWithT(t)
	var b bytes.Buffer
	c := &fakeController{}
	out := NewConsoleOut(&b, false)
	out.Register(c)
	out.Start()
	b.Reset()

	c.status = universe.Status{RunningMode: universe.RunningStateRun, IterationNum: 10}
	out.Refresh()
	out.Refresh()
	c.status.IterationNum = 11
	out.Refresh()

	g.Expect(strings.Count(b.String(), "Iterations done")).To(Equal(1))
	g.Expect(b.String()).To(ContainSubstring("Iterations done: 10"))
}

func TestConsoleOutSummary(t *testing.T) {
	g := NewWithT(t)
	var b bytes.Buffer
	c := &fakeController{history: []int{3, 2, 0}}
	out := NewConsoleOut(&b, true)
	out.Register(c)
	out.Start()
	b.Reset()

	c.status = universe.Status{RunningMode: universe.RunningStateFinished, IterationNum: 3, IdleCells: 4}
	out.Refresh()
	out.Refresh()

	s := b.String()
	g.Expect(strings.Count(s, "Finished:")).To(Equal(1))
	g.Expect(s).To(ContainSubstring("Last iteration"))
	g.Expect(s).To(ContainSubstring(": 3"))
	g.Expect(s).To(ContainSubstring("Idle cells"))
	g.Expect(s).To(ContainSubstring("live cells per step"))
	g.Expect(s).To(HaveSuffix("◼◻◻\n◻◻◼\n"))
}

func TestPopulationGraph(t *testing.T) {
	g := NewWithT(t)
	g.Expect(populationGraph(nil)).To(BeEmpty())
	g.Expect(populationGraph([]int{5})).To(BeEmpty())
	g.Expect(populationGraph([]int{1, 4, 2})).To(ContainSubstring("live cells per step"))
}

func TestDrawField(t *testing.T) {
	g := NewWithT(t)
	s := universe.Snapshot{
		Width:  3,
		Height: 2,
		Cells:  []universe.Cell{universe.Alive, universe.Dead, universe.Idle, universe.Dead, universe.Dead, universe.Alive},
	}

	g.Expect(drawField(s, 10, 10, testFillers)).To(Equal("#.~\n..#"))
	//narrow view crops the columns and warns on the last line
	out := drawField(s, 2, 2, testFillers)
	g.Expect(out).To(HavePrefix("#.\n"))
	g.Expect(out).To(ContainSubstring("larger than the viewing area"))
}

func TestLegend(t *testing.T) {
	g := NewWithT(t)
	st := universe.Status{LiveCells: 3, IdleCells: 4}
	g.Expect(legend(testFillers, st, 12)).To(Equal("# alive: 3  ~ idle: 4  . dead: 5"))
	//a stale total never shows negative dead cells
	g.Expect(legend(testFillers, st, 5)).To(HaveSuffix(". dead: 0"))
}

func TestCentered(t *testing.T) {
	g := NewWithT(t)
	s, err := centered("idle", 10, 3)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(s).To(Equal("\n   idle"))

	_, err = centered("too wide", 4, 3)
	g.Expect(err).To(HaveOccurred())
}

func TestBindings(t *testing.T) {
	g := NewWithT(t)
	c := &fakeController{}
	ui := &ConsoleUI{c: c}
	k := ui.bindings()

	for _, kb := range k {
		if kb.viewName != "" {
			continue
		}
		err := kb.handler(nil)
		if kb.label == "^C" {
			g.Expect(err).To(HaveOccurred())
			continue
		}
		g.Expect(err).NotTo(HaveOccurred())
	}
	g.Expect(c.calls).To(Equal([]string{"step", "run", "stop", "clear", "random"}))

	help := helpLine(k)
	g.Expect(help).To(HavePrefix("KEYBINDINGS: "))
	g.Expect(help).To(ContainSubstring("Push the cell"))
}
