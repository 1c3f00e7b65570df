package view

import (
	"bytes"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jroimartin/gocui"
	"github.com/logrusorgru/aurora"

	"idlelife/src/universe"
)

//keyBinding ties a key to a handler, viewName limits it to one view
type keyBinding struct {
	key      interface{}
	label    string
	descr    string
	handler  func(v *gocui.View) error
	viewName string
}

//fillers holds the glyph of each cell state, indexed by universe.Cell
type fillers [3]string

type ConsoleUI struct {
	c universe.Controller
	g *gocui.Gui
	k []keyBinding
	f fillers
}

//pane is a framed view placed by layout
type pane struct {
	name           string
	title          string
	x0, y0, x1, y1 int
	render         func()
}

const (
	sidebarWidth    = 28
	minScreenHeight = 20
	helpHeight      = 2
)

var (
	runningStateDescr = map[universe.RunningState]string{
		universe.RunningStateManual:   aurora.Colorize("waiting", aurora.BlueFg).String(),
		universe.RunningStateStep:     "do the step",
		universe.RunningStateRun:      aurora.Colorize("running", aurora.CyanFg).String(),
		universe.RunningStateFinished: aurora.Colorize("finished", aurora.RedFg).String(),
	}
	title = fmt.Sprintf("\"The Life\" with idle cells: dead for %d steps turns idle", universe.IdleThreshold)
)

//NewViewTerminal creates the interactive terminal viewer
func NewViewTerminal() (*ConsoleUI, error) {
	t := &ConsoleUI{
		f: fillers{
			universe.Dead:  "░",
			universe.Alive: aurora.Green("█").BgBrightGreen().String(),
			universe.Idle:  aurora.Blue("▒").String(),
		},
	}

	g, err := gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		return nil, err
	}
	t.g = g
	t.g.Mouse = true
	t.k = t.bindings()
	t.g.SetManagerFunc(t.layout)

	for _, kb := range t.k {
		if err := t.g.SetKeybinding(kb.viewName, kb.key, gocui.ModNone, t.wrap(kb.handler)); err != nil {
			t.g.Close()
			return nil, fmt.Errorf("key %s: %w", kb.label, err)
		}
	}
	return t, nil
}

//bindings returns the keys of the viewer, the controller is resolved on key press
func (t *ConsoleUI) bindings() []keyBinding {
	control := func(cmd func(universe.Controller)) func(*gocui.View) error {
		return func(*gocui.View) error {
			cmd(t.c)
			return nil
		}
	}
	return []keyBinding{
		{gocui.KeyCtrlC, "^C", "Exit", func(*gocui.View) error { return gocui.ErrQuit }, ""},
		{'n', "N", "Next step", control(universe.Controller.Step), ""},
		{'r', "R", "Run", control(universe.Controller.Run), ""},
		{'s', "S", "Stop", control(universe.Controller.Stop), ""},
		{'c', "C", "Clear", control(universe.Controller.Clear), ""},
		{'w', "W", "Settle with random", control(universe.Controller.SettleWithRandomData), ""},
		{gocui.MouseLeft, "MOUSE", "Push the cell", t.pushAtCursor, "battlefield"},
	}
}

func (t *ConsoleUI) wrap(h func(*gocui.View) error) func(*gocui.Gui, *gocui.View) error {
	return func(_ *gocui.Gui, v *gocui.View) error { return h(v) }
}

//pushAtCursor revives the clicked cell, clicks outside the field are ignored
func (t *ConsoleUI) pushAtCursor(v *gocui.View) error {
	cx, cy := v.Cursor()
	ox, oy := v.Origin()
	_ = t.c.PushCell(cx+ox, cy+oy)
	return nil
}

func (t *ConsoleUI) Register(c universe.Controller) {
	t.c = c
}

//Start runs the terminal main loop until the user quits
func (t *ConsoleUI) Start() {
	defer t.g.Close()
	if err := t.g.MainLoop(); err != nil && err != gocui.ErrQuit {
		log.Panicln(err)
	}
}

func (t *ConsoleUI) Refresh() {
	t.renderField(t.c.Snapshot())
	t.renderConfiguration()
	t.renderStatus()
}

func (t *ConsoleUI) renderField(s universe.Snapshot) {
	t.g.Update(func(g *gocui.Gui) error {
		v, e := g.View("battlefield")
		if e != nil {
			return e
		}
		//the entire field is redrawing at once
		v.Clear()
		maxW, maxH := v.Size()
		_, _ = fmt.Fprint(v, drawField(s, maxW, maxH, t.f))
		return nil
	})
}

//drawField renders the snapshot cropped to maxW x maxH
//the last visible line is replaced with a warning when the field does not fit
func drawField(s universe.Snapshot, maxW int, maxH int, f fillers) string {
	crop := s.Width > maxW || s.Height > maxH

	var b bytes.Buffer
	for y := 0; y < s.Height; y++ {
		//discard the data outside the view area
		if y >= maxH {
			break
		}
		//line feed char
		if y != 0 {
			b.WriteByte(10)
		}
		if crop && y == (maxH-1) {
			b.WriteString(aurora.Red("The field size is larger than the viewing area").BgBlack().String())
			break
		}
		for x := 0; x < s.Width && x < maxW; x++ {
			b.WriteString(f[s.At(x, y)])
		}
	}
	return b.String()
}

//legend explains the glyphs of the field with the number of cells in each state
func legend(f fillers, st universe.Status, total int) string {
	dead := total - st.LiveCells - st.IdleCells
	if dead < 0 {
		dead = 0
	}
	return fmt.Sprintf("%s alive: %d  %s idle: %d  %s dead: %d",
		f[universe.Alive], st.LiveCells, f[universe.Idle], st.IdleCells, f[universe.Dead], dead)
}

//helpLine lists the key bindings in one line
func helpLine(k []keyBinding) string {
	parts := make([]string, 0, len(k))
	for _, kb := range k {
		parts = append(parts, aurora.Green(kb.label).String()+": "+kb.descr)
	}
	return "KEYBINDINGS: " + strings.Join(parts, ", ")
}

//centered puts text in the middle of a width x height block
func centered(text string, width int, height int) (string, error) {
	n := utf8.RuneCountInString(text)
	if width < n {
		return "", fmt.Errorf("terminal width is too small: %v", width)
	}
	return strings.Repeat("\n", height/2) + strings.Repeat(" ", (width-n)/2) + text, nil
}

func (t *ConsoleUI) renderStatus() {
	st := t.c.Status()
	o := t.c.Options()
	t.g.Update(func(g *gocui.Gui) error {
		v, e := g.View("status")
		if e != nil {
			return nil
		}
		v.Clear()
		for _, line := range []string{
			t.renderProp("Step", "%v", st.IterationNum),
			t.renderProp("Mode", "%v", runningStateDescr[st.RunningMode]),
			t.renderProp("Evaluation time", "%v", st.IterationTime.Round(time.Microsecond)),
			"",
			" " + legend(t.f, st, o.Width*o.Height),
		} {
			_, _ = fmt.Fprintln(v, line)
		}
		return nil
	})
}

func (t *ConsoleUI) renderConfiguration() {
	o := t.c.Options()
	t.g.Update(func(g *gocui.Gui) error {
		v, e := g.View("configuration")
		if e != nil {
			return nil
		}
		v.Clear()
		for _, line := range []string{
			t.renderProp("Dimension", "%v x %v", o.Width, o.Height),
			t.renderProp("Interval", "%v", o.Interval),
			t.renderProp("Iterations", "%v steps", o.MaxSteps),
			t.renderProp("Engine", "%v", o.Advanced["engine"]),
			t.renderProp("Idle after", "%v dead steps", universe.IdleThreshold),
			t.renderProp("Clear resets", "%v", o.Advanced["clear resets dead times"]),
			t.renderProp("Push resets", "%v", o.Advanced["push resets dead times"]),
		} {
			_, _ = fmt.Fprintln(v, line)
		}
		return nil
	})
}

func (t *ConsoleUI) renderProp(name string, valueformat string, values ...interface{}) string {
	return fmt.Sprintf(" "+aurora.Colorize(name, aurora.GreenFg).String()+": "+valueformat, values...)
}

//panes places the sidebar and the field below the banner
func (t *ConsoleUI) panes(maxX int, maxY int) []pane {
	bottom := maxY - helpHeight - 3
	split := 3 + (bottom-3)/2
	return []pane{
		{"configuration", "Configuration", 0, 3, sidebarWidth, split, t.renderConfiguration},
		{"status", "Status", 0, split + 1, sidebarWidth, bottom, t.renderStatus},
		{"battlefield", "Battle Field", sidebarWidth + 1, 3, maxX - 1, bottom, nil},
	}
}

func (t *ConsoleUI) layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()

	if maxY < minScreenHeight {
		for _, p := range t.panes(maxX, maxY) {
			_ = g.DeleteView(p.name)
		}
		return t.banner(g, maxY, "Terminal height too small")
	}
	if err := t.banner(g, 3, title); err != nil {
		return err
	}

	for _, p := range t.panes(maxX, maxY) {
		v, err := g.SetView(p.name, p.x0, p.y0, p.x1, p.y1)
		if err == nil {
			continue
		}
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Title = p.title
		v.Frame = true
		if p.render != nil {
			p.render()
		}
	}
	t.renderField(t.c.Snapshot())

	v, err := g.SetView("help", -1, maxY-helpHeight-3, maxX, maxY-3)
	if err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Frame = false
		_, _ = fmt.Fprintln(v, helpLine(t.k))
	}
	return nil
}

//banner draws the full-width header with the text in the middle
func (t *ConsoleUI) banner(g *gocui.Gui, height int, text string) error {
	maxX, _ := g.Size()
	v, err := g.SetView("header", -1, -1, maxX+1, height)
	if err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Frame = false
		v.BgColor = gocui.ColorCyan
		v.FgColor = gocui.ColorBlack
	}
	v.Clear()
	line, err := centered(text, maxX, height)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(v, line)
	return nil
}
