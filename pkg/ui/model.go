// Package ui is the terminal keyword globe: a bubbletea program whose Update
// goroutine owns the scene, the tween engine and the view state machine.
package ui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/vanderheijden86/keymatrix/internal/datasource"
	"github.com/vanderheijden86/keymatrix/pkg/analysis"
	"github.com/vanderheijden86/keymatrix/pkg/config"
	"github.com/vanderheijden86/keymatrix/pkg/debug"
	"github.com/vanderheijden86/keymatrix/pkg/export"
	"github.com/vanderheijden86/keymatrix/pkg/keywordapi"
	"github.com/vanderheijden86/keymatrix/pkg/layout"
	"github.com/vanderheijden86/keymatrix/pkg/metrics"
	"github.com/vanderheijden86/keymatrix/pkg/model"
	"github.com/vanderheijden86/keymatrix/pkg/pick"
	"github.com/vanderheijden86/keymatrix/pkg/scene"
	"github.com/vanderheijden86/keymatrix/pkg/tween"
	"github.com/vanderheijden86/keymatrix/pkg/view"
	"github.com/vanderheijden86/keymatrix/pkg/watcher"
)

// Minimum terminal size the globe can be drawn in.
const (
	MinWidth  = 24
	MinHeight = 8

	detailWidth = 44
	chromeRows  = 2 // header + status bar
)

// ErrRenderInit is reported when the terminal cannot host the globe.
var ErrRenderInit = errors.New("cannot initialize renderer")

// Loader produces the keyword matrix to draw.
type Loader interface {
	Load(ctx context.Context) (model.Matrix, []datasource.Attempt)
}

// DependencySource returns the dependency report of one keyword.
type DependencySource interface {
	Dependencies(ctx context.Context, id int) model.DependencyReport
}

// Options wires a Model to its collaborators. Only Loader is required.
type Options struct {
	Config         config.Config
	Loader         Loader
	Dependencies   DependencySource
	Watcher        *watcher.Watcher
	Clock          tween.Clock
	SelectedID     int // host-selected keyword, highlighted in the global view
	OnKeywordClick func(model.Keyword)
	SnapshotDir    string
	Renderer       *lipgloss.Renderer
}

// Messages.
type (
	frameMsg       time.Time
	initTimeoutMsg struct{ seq int }
	dataLoadedMsg  struct {
		seq      int
		matrix   model.Matrix
		attempts []datasource.Attempt
	}
	depsLoadedMsg struct {
		id     int
		report model.DependencyReport
	}
	// FileChangedMsg is sent when the watched data file changes on disk.
	FileChangedMsg struct{}
)

// lifecycle is shared by every copy of the Model bubbletea makes.
type lifecycle struct {
	stopped bool
}

// Model is the bubbletea model for the globe viewer.
type Model struct {
	opts   Options
	cfg    config.Config
	theme  Theme
	preset layout.Preset
	life   *lifecycle

	scene   *scene.Context
	engine  *tween.Engine
	machine *view.Machine
	index   *pick.Index
	picker  *pick.Picker
	router  *pick.Router
	canvas  *Canvas

	spinner   spinner.Model
	loading   bool
	loadSeq   int
	renderErr error

	matrix     model.Matrix
	attempts   []datasource.Attempt
	stats      analysis.GraphStats
	statsCache *analysis.Cache

	width, height int
	lastFrame     time.Time
	autoRotate    bool
	status        string
	statusIsErr   bool

	showDetail bool
	md         *glamour.TermRenderer
	mdWidth    int
	deps       map[int]model.DependencyReport
}

// NewModel builds a model in the loading state.
func NewModel(opts Options) Model {
	cfg := opts.Config
	preset, err := layout.ParsePreset(cfg.Globe.Preset)
	if err != nil {
		preset = layout.PresetGolden
	}
	if opts.Renderer == nil {
		opts.Renderer = lipgloss.DefaultRenderer()
	}

	sc := scene.NewContext(scene.Options{
		Radius:         cfg.Globe.Radius,
		CameraDistance: cfg.Camera.Distance,
		FOV:            cfg.Camera.FOV,
		MaxConnections: cfg.Globe.MaxConnections,
	})
	engine := tween.NewEngine(opts.Clock)
	machine := view.NewMachine(sc, engine)
	index := pick.NewIndex(sc.Registry())
	picker := &pick.Picker{Camera: sc.Camera(), Index: index}
	router := pick.NewRouter(picker, cfg.Interaction.HoverThrottle)
	router.OnEvent(func(e pick.Event) {
		machine.HandleEvent(e)
		// The machine drops hover on focus, deselect and outside Global.
		if _, ok := machine.Hovered(); !ok {
			router.ForgetHover()
		}
	})
	if opts.OnKeywordClick != nil {
		machine.OnKeywordClick(opts.OnKeywordClick)
	}
	if opts.SelectedID > 0 {
		machine.SetExternalSelection(opts.SelectedID)
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		opts:       opts,
		cfg:        cfg,
		theme:      DefaultTheme(opts.Renderer),
		preset:     preset,
		life:       &lifecycle{},
		scene:      sc,
		engine:     engine,
		machine:    machine,
		index:      index,
		picker:     picker,
		router:     router,
		canvas:     NewCanvas(0, 0),
		spinner:    sp,
		loading:    true,
		loadSeq:    1,
		autoRotate: true,
		statsCache: analysis.NewCache(0),
		deps:       make(map[int]model.DependencyReport),
	}
}

func (m Model) frameCmd() tea.Cmd {
	return tea.Tick(m.cfg.FrameInterval(), func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (m Model) loadCmd(seq int) tea.Cmd {
	loader := m.opts.Loader
	timeout := m.cfg.InitTimeout
	return func() tea.Msg {
		if loader == nil {
			return dataLoadedMsg{seq: seq, matrix: keywordapi.FallbackMatrix(time.Now())}
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		mx, attempts := loader.Load(ctx)
		return dataLoadedMsg{seq: seq, matrix: mx, attempts: attempts}
	}
}

func initTimeoutCmd(d time.Duration, seq int) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return initTimeoutMsg{seq: seq} })
}

// WatchFileCmd waits for the next data file change.
func WatchFileCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		<-w.Changed()
		return FileChangedMsg{}
	}
}

func (m Model) depsCmd(id int) tea.Cmd {
	src := m.opts.Dependencies
	timeout := m.cfg.API.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return depsLoadedMsg{id: id, report: src.Dependencies(ctx, id)}
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.spinner.Tick,
		m.loadCmd(m.loadSeq),
		initTimeoutCmd(m.cfg.InitTimeout, m.loadSeq),
		m.frameCmd(),
	}
	if m.opts.Watcher != nil {
		cmds = append(cmds, WatchFileCmd(m.opts.Watcher))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.life.stopped {
		return m, nil
	}

	switch msg := msg.(type) {
	case frameMsg:
		m.frame(m.engine.Now())
		return m, m.frameCmd()

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case dataLoadedMsg:
		if msg.seq != m.loadSeq {
			debug.Log("ui: dropping stale load %d (current %d)", msg.seq, m.loadSeq)
			return m, nil
		}
		m.applyMatrix(msg.matrix, msg.attempts)
		return m, nil

	case initTimeoutMsg:
		if m.loading && msg.seq == m.loadSeq {
			debug.Log("ui: init timed out after %s", m.cfg.InitTimeout)
			m.applyMatrix(keywordapi.FallbackMatrix(time.Now()), nil)
			m.setError("loading timed out; showing sample keywords")
		}
		return m, nil

	case FileChangedMsg:
		m.setStatus("data file changed, reloading…")
		cmds := []tea.Cmd{m.reload()}
		if m.opts.Watcher != nil {
			cmds = append(cmds, WatchFileCmd(m.opts.Watcher))
		}
		return m, tea.Batch(cmds...)

	case depsLoadedMsg:
		m.deps[msg.id] = msg.report
		return m, nil

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.Stop()
		return m, tea.Quit

	case "r":
		if m.renderErr != nil {
			m.renderErr = m.checkSize()
			if m.renderErr == nil {
				m.resize(m.width, m.height)
			}
			return m, nil
		}
		cmd := m.reload()
		return m, cmd
	}

	if m.renderErr != nil || m.loading {
		return m, nil
	}

	switch msg.String() {
	case "esc":
		m.machine.Deselect()
		m.router.ForgetHover()

	case "a":
		m.autoRotate = !m.autoRotate
		if m.autoRotate {
			m.setStatus("auto-rotation on")
		} else {
			m.setStatus("auto-rotation off")
		}

	case "y":
		n, ok := m.subject()
		if !ok {
			m.setError("nothing to copy: hover or select a keyword")
			break
		}
		if err := clipboard.WriteAll(n.Keyword.Name); err != nil {
			m.setError(fmt.Sprintf("clipboard: %v", err))
			break
		}
		m.setStatus(fmt.Sprintf("copied %q", n.Keyword.Name))

	case "s":
		m.snapshot()

	case "i":
		m.showDetail = !m.showDetail
		m.resize(m.width, m.height)
		if n, ok := m.subject(); ok && m.showDetail && m.opts.Dependencies != nil {
			if _, have := m.deps[n.ID()]; !have {
				return m, m.depsCmd(n.ID())
			}
		}
	}
	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	if m.loading || m.renderErr != nil {
		return
	}
	gw, gh := m.canvas.Size()
	x, y := msg.X, msg.Y-1
	if x < 0 || y < 0 || x >= gw || y >= gh {
		return
	}
	nx, ny := pick.ToNDC(x, y, gw, gh)
	switch {
	case msg.Action == tea.MouseActionMotion:
		m.router.PointerMove(nx, ny, m.engine.Now())
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		m.router.Click(nx, ny)
	}
}

// frame runs one tick of the cooperative loop: pending pointer sample,
// tweens, transition deadline, then auto-rotation.
func (m *Model) frame(now time.Time) {
	defer metrics.Timer(metrics.FrameStep)()

	dt := now.Sub(m.lastFrame)
	if m.lastFrame.IsZero() || dt < 0 || dt > 250*time.Millisecond {
		dt = m.cfg.FrameInterval()
	}
	m.lastFrame = now

	if m.loading || m.scene.Disposed() {
		return
	}
	m.router.Flush(now)
	m.engine.StepAll(now)
	m.machine.Tick(now)
	if m.autoRotate && m.machine.AutoRotate() {
		m.scene.Camera().Orbit(m.cfg.Render.AutoRotateSpeed * dt.Seconds())
	}
	m.updatePickRadius()
}

// updatePickRadius widens hit spheres to about one terminal row at the
// camera's focal distance, so every visible glyph can be clicked.
func (m *Model) updatePickRadius() {
	_, gh := m.canvas.Size()
	if gh == 0 {
		return
	}
	cam := m.scene.Camera()
	focal := r3.Norm(r3.Sub(cam.Target, cam.Eye))
	m.picker.MinRadius = 0.6 * cam.WorldUnitsPerNDC(focal) * 2 / float64(gh)
}

// reload starts a new load. While the first load is still pending the new
// one gets its own init timeout, since the earlier timeout now carries a
// stale sequence number.
func (m *Model) reload() tea.Cmd {
	m.loadSeq++
	if m.loading {
		return tea.Batch(m.loadCmd(m.loadSeq), initTimeoutCmd(m.cfg.InitTimeout, m.loadSeq))
	}
	return m.loadCmd(m.loadSeq)
}

func (m *Model) applyMatrix(mx model.Matrix, attempts []datasource.Attempt) {
	previous := m.scene.Keywords()
	hadData := !m.loading

	if err := m.scene.LoadLayout(mx.Keywords, m.preset, m.cfg.Globe.Seed); err != nil {
		debug.Log("ui: layout of %s data failed: %v", mx.Source, err)
		if hadData || mx.Source == model.SourceFallback {
			m.setError(fmt.Sprintf("layout failed: %v", err))
			return
		}
		// Nothing on screen yet: end loading with the sample set.
		m.applyMatrix(keywordapi.FallbackMatrix(time.Now()), attempts)
		m.setError(fmt.Sprintf("layout failed: %v; showing sample keywords", err))
		return
	}
	m.index.Rebuild(m.scene.Registry())
	m.router.Reset()
	m.machine.Reset()
	m.scene.Camera().SetPosition(m.scene.HomeCamera())
	m.scene.Camera().LookAt().SetPosition(r3.Vec{})

	m.matrix = mx
	m.attempts = attempts
	var hit bool
	m.stats, hit = m.statsCache.Analyze(mx.Keywords, analysis.Options{})
	debug.Log("ui: network stats for %d keywords (cached=%v)", len(mx.Keywords), hit)
	m.deps = make(map[int]model.DependencyReport)
	m.loading = false
	m.updatePickRadius()

	if hadData {
		m.setStatus(fmt.Sprintf("reloaded from %s: %s", mx.Source, datasource.Diff(previous, mx.Keywords).Summary()))
	} else {
		m.setStatus(fmt.Sprintf("loaded %d keywords from %s", len(mx.Keywords), mx.Source))
	}
}

func (m *Model) snapshot() {
	dir := m.opts.SnapshotDir
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, fmt.Sprintf("km-%s.png", m.engine.Now().Format("20060102-150405")))
	err := export.SaveSnapshot(export.SnapshotOptions{
		Path:      path,
		Title:     "Keyword Matrix",
		MaxLabels: m.cfg.Render.MaxLabels,
		Scene:     m.scene,
		Stats:     &m.stats,
	})
	if err != nil {
		m.setError(fmt.Sprintf("snapshot failed: %v", err))
		return
	}
	m.setStatus("snapshot saved to " + path)
}

// subject is the node the detail pane and clipboard act on: the focus
// center, else the hovered node, else the host selection.
func (m Model) subject() (*scene.Node, bool) {
	if n, ok := m.machine.Focus(); ok {
		return n, true
	}
	if n, ok := m.machine.Hovered(); ok {
		return n, true
	}
	if id, ok := m.machine.ExternalSelection(); ok {
		return m.scene.Registry().Get(id)
	}
	return nil, false
}

func (m *Model) setStatus(s string) { m.status, m.statusIsErr = s, false }
func (m *Model) setError(s string)  { m.status, m.statusIsErr = s, true }

// Stop tears the viewer down: the frame loop ends at its next tick, the
// watcher stops and the scene is disposed. Safe to call more than once.
func (m Model) Stop() {
	if m.life.stopped {
		return
	}
	m.life.stopped = true
	if m.opts.Watcher != nil {
		m.opts.Watcher.Stop()
	}
	m.scene.Dispose()
	debug.Log("ui: stopped")
}

// Stopped reports whether Stop has been called.
func (m Model) Stopped() bool { return m.life.stopped }

// Mode returns the view state.
func (m Model) Mode() view.Mode { return m.machine.Mode() }

// Matrix returns the keyword matrix on screen.
func (m Model) Matrix() model.Matrix { return m.matrix }

// Loading reports whether the initial load is still pending.
func (m Model) Loading() bool { return m.loading }

// RenderErr returns the renderer error being displayed, if any.
func (m Model) RenderErr() error { return m.renderErr }

// Status returns the status bar message.
func (m Model) Status() string { return m.status }

func (m Model) checkSize() error {
	if m.width < MinWidth || m.height < MinHeight {
		return fmt.Errorf("%w: terminal is %dx%d, need at least %dx%d",
			ErrRenderInit, m.width, m.height, MinWidth, MinHeight)
	}
	return nil
}

func (m *Model) resize(w, h int) {
	m.width, m.height = w, h
	if m.renderErr == nil {
		m.renderErr = m.checkSize()
	}
	gw := w
	if m.showDetail && w >= detailWidth+MinWidth {
		gw = w - detailWidth
	}
	gh := max(h-chromeRows, 1)
	if gw < w {
		m.ensureMarkdown(max(w-gw-4, 10))
	}
	m.canvas.Resize(gw, gh)
	m.scene.Resize(float64(gw), float64(gh)*cellAspect)
	m.updatePickRadius()
}

// ensureMarkdown builds the detail pane renderer for a wrap width. Rendering
// falls back to raw markdown when glamour cannot start.
func (m *Model) ensureMarkdown(width int) {
	if m.md != nil && m.mdWidth == width {
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(width))
	if err != nil {
		debug.Log("ui: markdown renderer: %v", err)
		m.md = nil
		return
	}
	m.md, m.mdWidth = r, width
}

func (m Model) View() string {
	defer metrics.Timer(metrics.UIRender)()
	if m.life.stopped {
		return ""
	}
	if m.renderErr != nil {
		return m.errorView()
	}
	if m.loading {
		return fmt.Sprintf("\n  %s Loading keywords…\n\n  %s",
			m.spinner.View(), m.theme.Muted.Render("press q to quit"))
	}

	gw, gh := m.canvas.Size()
	drawGlobe(m.canvas, m.scene.Project(float64(gw), float64(gh)*cellAspect), m.highlight(), m.cfg.Render.MaxLabels)
	body := m.canvas.Render(m.theme.Renderer)
	if m.showDetail && gw < m.width {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.detailView(m.width-gw, gh))
	}
	return m.headerView() + "\n" + body + "\n" + m.statusView()
}

func (m Model) highlight() highlight {
	var hl highlight
	if n, ok := m.machine.Focus(); ok {
		hl.focus = n.ID()
	}
	if n, ok := m.machine.Hovered(); ok {
		hl.hover = n.ID()
	}
	if id, ok := m.machine.ExternalSelection(); ok && m.machine.Mode() == view.Global {
		hl.selected = id
	}
	return hl
}

func (m Model) errorView() string {
	var sb strings.Builder
	sb.WriteString("\n  ")
	sb.WriteString(m.theme.Error.Render("Renderer unavailable"))
	sb.WriteString("\n\n  ")
	sb.WriteString(truncateRunesHelper(m.renderErr.Error(), max(m.width-4, 10), "…"))
	sb.WriteString("\n\n  ")
	sb.WriteString(m.theme.Muted.Render("r retry · q quit"))
	return sb.String()
}

func (m Model) headerView() string {
	title := m.theme.Header.Render("KEYWORD MATRIX")
	info := fmt.Sprintf(" %d keywords · %d active · density %.1f%% · %s · %s",
		m.matrix.TotalKeywords, m.matrix.ActiveKeywords, m.matrix.NetworkDensity,
		m.matrix.Source, formatAge(m.engine.Now(), m.matrix.LastUpdated))
	room := m.width - lipgloss.Width(title)
	return title + m.theme.Muted.Render(truncateRunesHelper(info, room, "…"))
}

func (m Model) statusView() string {
	parts := []string{m.theme.ModeBadge.Render(m.machine.Mode().String())}
	if n, ok := m.machine.Focus(); ok {
		parts = append(parts, "focus "+m.theme.FocusName.Render(n.Keyword.Name))
	} else if n, ok := m.machine.Hovered(); ok {
		parts = append(parts, "hover "+m.theme.Info.Render(n.Keyword.Name))
	}
	if m.status != "" {
		style := m.theme.StatusBar
		if m.statusIsErr {
			style = m.theme.Warning
		}
		parts = append(parts, style.Render(m.status))
	}
	keys := m.theme.StatusKey.Render("r") + " reload " +
		m.theme.StatusKey.Render("esc") + " back " +
		m.theme.StatusKey.Render("y") + " copy " +
		m.theme.StatusKey.Render("s") + " snap " +
		m.theme.StatusKey.Render("i") + " info " +
		m.theme.StatusKey.Render("q") + " quit"

	left := strings.Join(parts, m.theme.Muted.Render(" │ "))
	if lipgloss.Width(left)+lipgloss.Width(keys)+1 <= m.width {
		gap := m.width - lipgloss.Width(left) - lipgloss.Width(keys)
		return left + strings.Repeat(" ", gap) + keys
	}
	return left
}

func (m Model) detailView(width, height int) string {
	inner := max(width-4, 10)
	n, ok := m.subject()
	if !ok {
		return m.theme.Pane.Width(inner).Height(max(height-2, 1)).
			Render(m.theme.Muted.Render("Hover or select a keyword"))
	}

	var deps *model.DependencyReport
	if r, have := m.deps[n.ID()]; have {
		deps = &r
	}
	md := export.KeywordMarkdown(*n.Keyword, n.Connections, deps)
	out := md
	if m.md != nil {
		if rendered, err := m.md.Render(md); err == nil {
			out = strings.TrimSpace(rendered)
		}
	}
	lines := strings.Split(out, "\n")
	if len(lines) > height-2 {
		lines = lines[:max(height-2, 1)]
	}
	return m.theme.Pane.Width(inner).Render(strings.Join(lines, "\n"))
}
