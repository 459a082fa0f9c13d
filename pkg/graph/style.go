package graph

import "github.com/matzehuels/topoviz/pkg/highlight"

// Rule styles every element matching Selector.
type Rule struct {
	Selector string            `json:"selector" toml:"selector"`
	Style    map[string]string `json:"style" toml:"style"`
}

// Stylesheet is an ordered rule list; later rules win.
type Stylesheet []Rule

// classSelector returns the selector for elements carrying c.
func classSelector(c highlight.Class) string { return "." + string(c) }

// DefaultStylesheet returns the base node and edge rules followed by one
// rule per highlight class.
func DefaultStylesheet() Stylesheet {
	return Stylesheet{
		{Selector: "node", Style: map[string]string{
			"label": "data(label)", "background-color": "#5b6b7f", "color": "#1f2933",
			"font-size": "10px", "width": "18", "height": "18",
		}},
		{Selector: "node[category = 'prefix']", Style: map[string]string{"shape": "round-rectangle", "background-color": "#8fa3b8"}},
		{Selector: "node[category = 'workload']", Style: map[string]string{"shape": "diamond", "background-color": "#7fa37f"}},
		{Selector: "node[?hidden]", Style: map[string]string{"display": "none"}},
		{Selector: "edge", Style: map[string]string{"width": "1.5", "line-color": "#c3ccd6", "curve-style": "bezier"}},
		{Selector: classSelector(highlight.Selected), Style: map[string]string{"background-color": "#1e88e5", "line-color": "#1e88e5", "width": "4"}},
		{Selector: classSelector(highlight.SourceSelected), Style: map[string]string{"border-width": "4", "border-color": "#2e7d32"}},
		{Selector: classSelector(highlight.DestSelected), Style: map[string]string{"border-width": "4", "border-color": "#c62828"}},
		{Selector: classSelector(highlight.Sequential), Style: map[string]string{"background-color": "#8e24aa", "line-color": "#8e24aa", "width": "4"}},
		{Selector: classSelector(highlight.WorkloadPath), Style: map[string]string{"background-color": "#00897b", "line-color": "#00897b", "width": "3"}},
		{Selector: classSelector(highlight.HighLoad), Style: map[string]string{"line-color": "#fb8c00", "width": "5"}},
		{Selector: classSelector(highlight.CriticalLoad), Style: map[string]string{"line-color": "#e53935", "width": "6"}},
	}
}

// ForClass returns the rule for a highlight class.
func (s Stylesheet) ForClass(c highlight.Class) (Rule, bool) {
	sel := classSelector(c)
	for i := len(s) - 1; i >= 0; i-- {
		if s[i].Selector == sel {
			return s[i], true
		}
	}
	return Rule{}, false
}
