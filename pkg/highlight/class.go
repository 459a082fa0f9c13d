package highlight

// Class is a style class applied to a node or an edge.
type Class string

const (
	Selected       Class = "selected"
	SourceSelected Class = "source-selected"
	DestSelected   Class = "dest-selected"
	Sequential     Class = "sequential"
	WorkloadPath   Class = "workload-path"
	HighLoad       Class = "high-load"
	CriticalLoad   Class = "critical-load"
)

// Classes lists every class in stylesheet order.
var Classes = []Class{Selected, SourceSelected, DestSelected, Sequential, WorkloadPath, HighLoad, CriticalLoad}

// pathClasses are removed by ClearPaths.
var pathClasses = []Class{Selected, Sequential, WorkloadPath, HighLoad, CriticalLoad}

// Load thresholds in percent. Loads at a threshold stay in the lower band.
const (
	HighThreshold     = 40.0
	CriticalThreshold = 70.0
)

// Severity grades an edge load.
type Severity int

const (
	Normal Severity = iota
	High
	Critical
)

// SeverityOf grades a load percentage.
func SeverityOf(load float64) Severity {
	switch {
	case load > CriticalThreshold:
		return Critical
	case load > HighThreshold:
		return High
	default:
		return Normal
	}
}

// Class returns the class for s, or "" for [Normal].
func (s Severity) Class() Class {
	switch s {
	case Critical:
		return CriticalLoad
	case High:
		return HighLoad
	default:
		return ""
	}
}

func (s Severity) String() string {
	switch s {
	case Critical:
		return "critical"
	case High:
		return "high"
	default:
		return "normal"
	}
}
