package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/topoviz/pkg/errors"
	"github.com/matzehuels/topoviz/pkg/highlight"
	"github.com/matzehuels/topoviz/pkg/pathquery"
	"github.com/matzehuels/topoviz/pkg/selection"
	"github.com/matzehuels/topoviz/pkg/topology"
)

var (
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	listHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	listCursorStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listSourceStyle = lipgloss.NewStyle().Foreground(colorGreen)
	listDestStyle   = lipgloss.NewStyle().Foreground(colorRed)
	listPathStyle   = lipgloss.NewStyle().Foreground(colorBlue)
)

// exploreCommand starts the interactive selection TUI.
func (c *CLI) exploreCommand() *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "explore <collection>",
		Short: "Select vertices and highlight paths interactively",
		Long: `Browse the vertices of a collection and drive the selection modes:

  free        tap a source and a destination, then pick a constraint (1-5)
  sequential  tap adjacent vertices to build a hop-by-hop chain
  workload    tap members, then compute every pair's load path (c)

Keys: ↑/↓ move, enter tap, esc clear, m switch mode, q quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := selection.ParseMode(mode)
			if err != nil {
				return err
			}
			return c.runExplore(cmd.Context(), args[0], m)
		},
	}
	cmd.Flags().StringVar(&mode, "mode", string(selection.ModeFree), "initial mode: free, sequential, workload")
	return cmd
}

func (c *CLI) runExplore(ctx context.Context, collection string, mode selection.Mode) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	runner, cleanup, err := c.newRunner(ctx, false)
	if err != nil {
		return err
	}
	defer cleanup()

	m, err := runner.Model(ctx, collection, false)
	if err != nil {
		return err
	}
	store := selection.NewMemoryStore(nil, cfg.Server.RunHistory)
	ctrl, err := selection.New(m, selectionOptions(cfg, collection, newQuerier(cfg), store, mode))
	if err != nil {
		return err
	}

	final, err := tea.NewProgram(newExploreModel(ctx, ctrl), tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}
	if em, ok := final.(exploreModel); ok && em.state.Annotation != nil {
		printAnnotation(*em.state.Annotation)
	}
	return nil
}

// =============================================================================
// exploreModel - Interactive selection
// =============================================================================

// queryDoneMsg carries the outcome of a free-mode path query.
type queryDoneMsg struct {
	state selection.State
	err   error
}

// computeDoneMsg carries the outcome of a workload computation.
type computeDoneMsg struct {
	run selection.WorkloadRun
	err error
}

// exploreModel is the bubbletea model over a selection controller.
type exploreModel struct {
	ctx      context.Context
	ctrl     *selection.Controller
	vertices []topology.Vertex
	state    selection.State
	marks    highlight.Marks
	cursor   int
	offset   int
	height   int
	busy     bool
	message  string
	err      error
}

func newExploreModel(ctx context.Context, ctrl *selection.Controller) exploreModel {
	return exploreModel{
		ctx:      ctx,
		ctrl:     ctrl,
		vertices: ctrl.Model().Vertices(),
		state:    ctrl.State(),
		marks:    ctrl.Marks(),
		height:   15,
	}
}

func (m exploreModel) Init() tea.Cmd {
	return nil
}

func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-10, 5)
	case queryDoneMsg:
		m.busy = false
		m.err = nil
		switch {
		case errors.Is(msg.err, errors.ErrCodeStale):
			// The selection moved on; its own state is already shown.
			return m, nil
		case errors.Is(msg.err, errors.ErrCodePathNotFound):
			m.message = "no path found"
		case msg.err != nil:
			m.err = msg.err
		}
		m.refresh()
	case computeDoneMsg:
		m.busy = false
		m.err = msg.err
		if msg.err == nil {
			m.message = fmt.Sprintf("workload %s: %d paths, %d failed", msg.run.ID, len(msg.run.Paths), len(msg.run.Failures))
		}
		m.refresh()
	}
	return m, nil
}

func (m exploreModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			m.offset = min(m.offset, m.cursor)
		}
	case "down", "j":
		if m.cursor < len(m.vertices)-1 {
			m.cursor++
			if m.cursor >= m.offset+m.height {
				m.offset = m.cursor - m.height + 1
			}
		}
	case "enter", " ":
		if len(m.vertices) == 0 {
			return m, nil
		}
		_, err := m.ctrl.Tap(m.vertices[m.cursor].ID)
		m.err, m.message = err, ""
		m.refresh()
	case "esc":
		m.ctrl.Tap("")
		m.err, m.message = nil, ""
		m.refresh()
	case "m":
		next := nextMode(m.state.Mode)
		_, err := m.ctrl.SetMode(next)
		m.err, m.message = err, ""
		m.refresh()
	case "1", "2", "3", "4", "5":
		if !m.state.CanChooseConstraint() {
			m.message = "select a source and a destination first"
			return m, nil
		}
		constraint := pathquery.Constraints[key[0]-'1']
		m.busy, m.err, m.message = true, nil, ""
		m.state.Phase = selection.PhaseQueryInFlight
		return m, m.chooseConstraint(constraint)
	case "c":
		if !m.state.CanCompute() {
			m.message = "tap at least two members in workload mode"
			return m, nil
		}
		m.busy, m.err, m.message = true, nil, ""
		m.state.Phase = selection.PhaseComputing
		return m, m.compute()
	}
	return m, nil
}

func (m exploreModel) chooseConstraint(c pathquery.Constraint) tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		st, err := ctrl.ChooseConstraint(ctx, c)
		return queryDoneMsg{state: st, err: err}
	}
}

func (m exploreModel) compute() tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		run, err := ctrl.Compute(ctx)
		return computeDoneMsg{run: run, err: err}
	}
}

// refresh copies the controller state and marks into the model.
func (m *exploreModel) refresh() {
	m.state = m.ctrl.State()
	m.marks = m.ctrl.Marks()
}

func nextMode(cur selection.Mode) selection.Mode {
	for i, mode := range selection.Modes {
		if mode == cur {
			return selection.Modes[(i+1)%len(selection.Modes)]
		}
	}
	return selection.ModeFree
}

func (m exploreModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Explore " + m.state.Collection))
	b.WriteString("  ")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("mode %s · %s", m.state.Mode, m.state.Phase)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ move  ⏎ tap  esc clear  m mode  1-5 constraint  c compute  q quit"))
	b.WriteString("\n\n")

	end := min(m.offset+m.height, len(m.vertices))
	rows := make([][]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		v := m.vertices[i]
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, v.ID, string(v.Category), v.Tier, classList(m.marks.NodeClasses(v.ID))})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(listDimStyle).
		Headers("", "Vertex", "Category", "Tier", "Marks").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return listHeaderStyle
			}
			idx := m.offset + row
			if idx >= len(m.vertices) {
				return lipgloss.NewStyle()
			}
			style := rowStyle(m.marks.NodeClasses(m.vertices[idx].ID))
			if idx == m.cursor {
				return style.Inherit(listCursorStyle)
			}
			return style
		})
	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(m.status())
	return b.String()
}

// status renders the line below the table: errors first, then results.
func (m exploreModel) status() string {
	switch {
	case m.err != nil:
		return styleIconError.Render(iconError + " " + errors.UserMessage(m.err))
	case m.busy:
		return styleIconSpinner.Render("querying…")
	case m.message != "":
		return StyleWarning.Render(m.message)
	case m.state.Annotation != nil:
		a := m.state.Annotation
		return fmt.Sprintf("%s %d hops · max load %s",
			styleIconSuccess.Render(iconSuccess), a.HopCount,
			severityStyle(highlight.SeverityOf(a.Load.Highest)).Render(fmt.Sprintf("%.1f", a.Load.Highest)))
	case len(m.state.Members) > 0:
		return listDimStyle.Render(fmt.Sprintf("%d members", len(m.state.Members)))
	}
	return listDimStyle.Render(fmt.Sprintf("[%d/%d]", m.cursor+1, len(m.vertices)))
}

func classList(cs []highlight.Class) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = string(c)
	}
	return strings.Join(parts, " ")
}

func rowStyle(cs []highlight.Class) lipgloss.Style {
	for _, c := range cs {
		switch c {
		case highlight.SourceSelected:
			return listSourceStyle
		case highlight.DestSelected:
			return listDestStyle
		case highlight.Selected, highlight.Sequential, highlight.WorkloadPath:
			return listPathStyle
		}
	}
	return lipgloss.NewStyle()
}
