package viz

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/dominoes/internal/render"
	"github.com/san-kum/dominoes/internal/scene"
)

const frameInterval = time.Second / 60

type TickMsg time.Time

// StartFunc builds a session that draws through r. Model calls it again on
// restart.
type StartFunc func(r render.Renderer) (*scene.Session, error)

// Model is the Bubble Tea program around one scene session.
type Model struct {
	start    StartFunc
	session  *scene.Session
	renderer *Renderer
	running  bool
	showHelp bool
	err      error
}

func NewModel(r *Renderer, start StartFunc) (Model, error) {
	s, err := start(r)
	if err != nil {
		return Model{}, err
	}
	return Model{start: start, session: s, renderer: r, running: true}, nil
}

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
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
		case "left", "h":
			m.moveCamera(func(c *Camera) { c.Orbit(-0.1) })
		case "right", "l":
			m.moveCamera(func(c *Camera) { c.Orbit(0.1) })
		case "up", "k":
			m.moveCamera(func(c *Camera) { c.Raise(0.05) })
		case "down", "j":
			m.moveCamera(func(c *Camera) { c.Raise(-0.05) })
		case "+", "=":
			m.moveCamera((*Camera).ZoomIn)
		case "-", "_":
			m.moveCamera((*Camera).ZoomOut)
		case "t":
			m.renderer.SetTheme(NextTheme(m.renderer.theme.Name))
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running && m.session != nil {
			m.session.OnFrame(frameInterval.Seconds())
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) moveCamera(f func(*Camera)) {
	f(m.renderer.camera)
	if m.renderer.ready {
		m.renderer.redraw()
	}
}

func (m *Model) restart() {
	s, err := m.start(m.renderer)
	if err != nil {
		m.err = err
		return
	}
	m.session, m.err = s, nil
}

func (m Model) View() string {
	status := StatusRunning.Render("RUNNING")
	if !m.running {
		status = StatusPaused.Render("PAUSED")
	}
	if m.err != nil {
		status = StatusPaused.Render(fmt.Sprintf("restart failed: %v", m.err))
	}

	view := m.renderer.View(status)
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  R        - Restart the scene        ║
║  Q        - Quit                     ║
║  ←/→      - Orbit the camera         ║
║  ↑/↓      - Raise/lower the camera   ║
║  +/-      - Zoom                     ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + view
	}
	return view
}

// Session exposes the running session, mainly for tests.
func (m Model) Session() *scene.Session { return m.session }
