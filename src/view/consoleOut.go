package view

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"idlelife/src/universe"
)

const progressEvery = 10

var (
	summaryBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)

	summaryLabel = lipgloss.NewStyle().Bold(true)
)

//ConsoleOut is the batch mode viewer, it writes the progress and the final summary
type ConsoleOut struct {
	c          universe.Controller
	w          io.Writer
	startTime  time.Time
	printField bool
	lastIter   int
	reported   bool
}

//NewConsoleOut creates the viewer writing to w
//the final field is printed as well when printField is set
func NewConsoleOut(w io.Writer, printField bool) *ConsoleOut {
	return &ConsoleOut{w: w, printField: printField, lastIter: -1}
}

func (c *ConsoleOut) Refresh() {
	st := c.c.Status()
	switch st.RunningMode {
	case universe.RunningStateFinished:
		if !c.reported {
			c.reported = true
			c.printSummary(st)
		}
	case universe.RunningStateRun:
		c.reported = false
		if st.IterationNum%progressEvery == 0 && st.IterationNum != c.lastIter {
			c.lastIter = st.IterationNum
			fmt.Fprintf(c.w, "  Iterations done: %v\n", st.IterationNum)
		}
	default:
		c.reported = false
	}
}

func (c *ConsoleOut) Register(ctrl universe.Controller) {
	c.c = ctrl
	o := c.c.Options()
	fmt.Fprintln(c.w, "Running configuration:")
	fmt.Fprintf(c.w, "  Dimension: %v x %v\n", o.Width, o.Height)
	fmt.Fprintf(c.w, "  Interval: %v\n", o.Interval)
	fmt.Fprintf(c.w, "  Max iterations: %v steps\n", o.MaxSteps)
	c.printHashData(o.Advanced)
}

func (c *ConsoleOut) Start() {
	c.startTime = time.Now()
	fmt.Fprintln(c.w, "\nSimulation started...")
}

func (c *ConsoleOut) printSummary(st universe.Status) {
	totalTime := time.Since(c.startTime).Round(time.Millisecond)
	if c.startTime.IsZero() {
		totalTime = 0
	}
	lines := []string{
		c.prop("Last iteration", st.IterationNum),
		c.prop("Total time", totalTime),
		c.prop("Live cells", st.LiveCells),
		c.prop("Idle cells", st.IdleCells),
	}
	fmt.Fprintln(c.w, "\nFinished:")
	fmt.Fprintln(c.w, summaryBox.Render(strings.Join(lines, "\n")))

	if graph := populationGraph(c.c.History()); graph != "" {
		fmt.Fprintln(c.w, graph)
	}
	if c.printField {
		fmt.Fprint(c.w, c.c.Render())
	}
}

func (c *ConsoleOut) prop(name string, value interface{}) string {
	return summaryLabel.Render(name) + fmt.Sprintf(": %v", value)
}

func (c *ConsoleOut) printHashData(d map[string]interface{}) {
	propNames := make([]string, 0, len(d))
	for k := range d {
		propNames = append(propNames, k)
	}
	sort.Strings(propNames)
	for _, propName := range propNames {
		fmt.Fprintf(c.w, "  %s: %v\n", propName, d[propName])
	}
}

//populationGraph plots the live cells history, empty when there is less than two points
func populationGraph(history []int) string {
	if len(history) < 2 {
		return ""
	}
	data := make([]float64, len(history))
	for i, v := range history {
		data[i] = float64(v)
	}
	width := len(data)
	if width > 80 {
		width = 80
	}
	return asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(width),
		asciigraph.Caption("live cells per step"),
	)
}
