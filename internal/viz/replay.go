package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/heatwire/internal/heat"
)

const (
	canvasWidth  = 60
	canvasHeight = 16
)

type TickMsg time.Time

// Model plays a History in the terminal. In live mode it owns a Stepper and
// extends the History one snapshot per tick until Steps is reached.
type Model struct {
	params   heat.Params
	stepper  *heat.Stepper
	history  heat.History
	content  []float64
	lo, hi   float64
	playHead int
	running  bool
	fps      int
	canvas   *Canvas
	showHelp bool
}

// NewReplay plays back an existing history.
func NewReplay(p heat.Params, history heat.History, fps int) Model {
	lo, hi := history.Bounds()
	m := Model{
		params:  p,
		history: history,
		lo:      lo,
		hi:      hi,
		running: true,
		fps:     clampFPS(fps),
		canvas:  NewCanvas(canvasWidth, canvasHeight),
	}
	for _, f := range history {
		m.content = append(m.content, f.Content(p.Dx()))
	}
	return m
}

// NewLive steps p while displaying it.
func NewLive(p heat.Params, fps int) (Model, error) {
	s, err := heat.NewStepper(p)
	if err != nil {
		return Model{}, err
	}
	initial, err := heat.Initialize(p.Length, p.Points, p.HotEnd)
	if err != nil {
		return Model{}, err
	}
	s.Reset(initial)
	m := NewReplay(p, heat.History{initial}, fps)
	m.stepper = s
	if m.hi <= m.lo {
		m.hi = m.lo + 1
	}
	return m, nil
}

func clampFPS(fps int) int {
	if fps <= 0 {
		return 20
	}
	return min(fps, 120)
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.restart()
		case "[":
			m.scrub(-1)
		case "]":
			m.scrub(1)
		case "t":
			NextTheme()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.advance()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) live() bool {
	return m.stepper != nil
}

func (m *Model) done() bool {
	if m.live() {
		return m.stepper.Steps() >= m.params.Steps
	}
	return m.playHead >= len(m.history)-1
}

func (m *Model) advance() {
	if m.live() && m.playHead == len(m.history)-1 && !m.done() {
		f := m.stepper.Advance()
		m.history = append(m.history, f)
		m.content = append(m.content, f.Content(m.params.Dx()))
		// widen the axis for overshooting runs
		if f.IsValid() {
			m.lo, m.hi = min(m.lo, f.Min()), max(m.hi, f.Max())
		}
	}
	if m.playHead < len(m.history)-1 {
		m.playHead++
		return
	}
	if m.done() {
		m.running = false
	}
}

// scrub pauses and moves the play head within the recorded history.
func (m *Model) scrub(dir int) {
	m.running = false
	m.playHead = max(0, min(m.playHead+dir, len(m.history)-1))
}

func (m *Model) restart() {
	m.playHead = 0
	m.running = true
	if m.live() {
		initial := m.history[0]
		m.stepper.Reset(initial)
		m.history = heat.History{initial}
		m.content = m.content[:1]
	}
}

func (m Model) PlayHead() int         { return m.playHead }
func (m Model) Running() bool         { return m.running }
func (m Model) History() heat.History { return m.history }
func (m Model) Current() heat.Field   { return m.history[m.playHead] }

func (m Model) View() string {
	if len(m.history) == 0 {
		return "no snapshots\n"
	}
	f := m.Current()
	t := float64(m.playHead) * m.params.Dt

	m.canvas.Clear()
	m.canvas.DrawProfile(f, m.lo, m.hi)
	left := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Foreground(CurrentTheme.Primary).Render(m.canvas.String()),
		HeatStrip(f, m.lo, m.hi, canvasWidth),
	)

	var s strings.Builder
	s.WriteString(headerStyle().Render("HEAT WIRE") + "\n")
	s.WriteString(m.status() + "\n\n")
	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2f s", t))
	row("Step", fmt.Sprintf("%d/%d", m.playHead, m.params.Steps))
	row("Fourier r", fmt.Sprintf("%.4f", m.params.Fourier()))
	row("Max", fmt.Sprintf("%.2f", f.Max()))
	row("Min", fmt.Sprintf("%.2f", f.Min()))
	row("Content", fmt.Sprintf("%.3f", m.content[m.playHead]))
	s.WriteString("\n" + ProgressBar(float64(m.playHead)/float64(max(m.params.Steps, 1)), 24) + "\n")
	s.WriteString(Sparkline(m.content[:m.playHead+1], 24) + "\n")
	s.WriteString(helpStyle.Render(Separator(26) + "\nSP:Pause R:Restart Q:Quit\nT:Theme  [ ]:Scrub ?:Help"))

	view := lipgloss.JoinHorizontal(lipgloss.Top, panelStyle.Render(left), statsStyle.Render(s.String()))
	if m.showHelp {
		return panelStyle.Render(`Space  pause / resume
R      restart from t = 0
[ ]    step back / forward (pauses)
T      cycle themes
Q      quit`) + "\n" + view
	}
	return view
}

func (m Model) status() string {
	switch {
	case !m.params.Stable():
		return statusStyle(CurrentTheme.Error).Render("UNSTABLE")
	case m.running:
		return statusStyle(CurrentTheme.Accent).Render("PLAYING")
	case m.done():
		return statusStyle(CurrentTheme.Secondary).Render("FINISHED")
	default:
		return statusStyle(CurrentTheme.Warning).Render("PAUSED")
	}
}
