package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/topoviz/pkg/highlight"
	"github.com/matzehuels/topoviz/pkg/selection"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings, high load
	colorRed    = lipgloss.Color("167") // Soft red - errors, critical load
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)
	styleCommand  = lipgloss.NewStyle().Foreground(colorBlue)
	styleKey      = lipgloss.NewStyle().Foreground(colorGray).Width(12)
)

// severityStyle colors a load by its severity class.
func severityStyle(s highlight.Severity) lipgloss.Style {
	switch s.Class() {
	case highlight.CriticalLoad:
		return lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	case highlight.HighLoad:
		return lipgloss.NewStyle().Foreground(colorYellow)
	default:
		return StyleValue
	}
}

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Println(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints an output file line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Println(styleKey.Render(key) + " " + StyleValue.Render(value))
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

func printNewline() {
	fmt.Println()
}

// =============================================================================
// Topology Output
// =============================================================================

// statsLine formats topology statistics on a single line.
func statsLine(vertices, edges, dropped int, cached bool) string {
	parts := []string{
		fmt.Sprintf("%d vertices", vertices),
		fmt.Sprintf("%d edges", edges),
	}
	if dropped > 0 {
		parts = append(parts, fmt.Sprintf("%d dropped", dropped))
	}
	status := styleComputed.Render("fresh")
	if cached {
		status = styleCached.Render("cached")
	}
	return "  " + StyleDim.Render(strings.Join(parts, " · ")+" · ") + status
}

func printStats(vertices, edges, dropped int, cached bool) {
	fmt.Println(statsLine(vertices, edges, dropped, cached))
}

// printAnnotation prints the summary of a highlighted path.
func printAnnotation(a highlight.Annotation) {
	if len(a.Chain) > 0 {
		printKeyValue("chain", strings.Join(a.Chain, " "+iconArrow+" "))
	}
	if a.Constraint != "" {
		printKeyValue("constraint", string(a.Constraint))
	}
	printKeyValue("hops", fmt.Sprintf("%d (%d vertices)", a.HopCount, a.VertexCount))
	load := severityStyle(highlight.SeverityOf(a.Load.Highest))
	printKeyValue("load", fmt.Sprintf("avg %.1f · total %.1f · ", a.Load.Average, a.Load.Total)+load.Render(fmt.Sprintf("max %.1f", a.Load.Highest)))
	if a.USID != "" {
		printKeyValue("srv6 usid", a.USID)
	}
	if len(a.SIDList) > 0 {
		printKeyValue("srv6 sids", strings.Join(a.SIDList, ", "))
	}
}

// printRun prints a workload run summary followed by one line per pair.
func printRun(run selection.WorkloadRun) {
	printSuccess("Workload %s: %d paths, %d failed (%s)",
		run.ID, len(run.Paths), len(run.Failures), run.Duration.Round(time.Millisecond))
	for _, p := range run.Paths {
		load := severityStyle(highlight.SeverityOf(p.Annotation.Load.Highest))
		fmt.Printf("  %s %s %s  %s\n",
			p.Pair.Source, StyleDim.Render(iconArrow), p.Pair.Destination,
			load.Render(fmt.Sprintf("%d hops, max load %.1f", p.Annotation.HopCount, p.Annotation.Load.Highest)))
	}
	for _, f := range run.Failures {
		fmt.Printf("  %s %s %s  %s\n",
			f.Pair.Source, StyleDim.Render(iconArrow), f.Pair.Destination,
			styleIconError.Render(f.Code+": "+f.Error))
	}
}
