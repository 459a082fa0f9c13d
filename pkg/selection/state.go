package selection

import (
	"strings"

	"github.com/matzehuels/topoviz/pkg/errors"
	"github.com/matzehuels/topoviz/pkg/highlight"
	"github.com/matzehuels/topoviz/pkg/pathquery"
)

// Mode is a selection mode.
type Mode string

const (
	ModeFree       Mode = "free"
	ModeSequential Mode = "sequential"
	ModeWorkload   Mode = "workload"
)

// Modes lists every mode.
var Modes = []Mode{ModeFree, ModeSequential, ModeWorkload}

// ParseMode resolves a mode name. The empty string means [ModeFree].
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ModeFree, nil
	}
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown mode %q", s)
}

// Phase is the position of the controller in its mode's state machine.
type Phase string

const (
	// Free mode
	PhaseIdle                Phase = "idle"
	PhaseSourceSelected      Phase = "source-selected"
	PhaseDestinationSelected Phase = "destination-selected"
	PhaseQueryInFlight       Phase = "query-in-flight"
	PhasePathHighlighted     Phase = "path-highlighted"

	// Sequential mode
	PhaseChainEmpty Phase = "chain-empty"
	PhaseChaining   Phase = "chaining"

	// Workload mode
	PhaseCollecting Phase = "collecting"
	PhaseComputing  Phase = "computing"
	PhaseComputed   Phase = "computed"
)

// initialPhase returns the phase a mode starts in.
func initialPhase(m Mode) Phase {
	switch m {
	case ModeSequential:
		return PhaseChainEmpty
	case ModeWorkload:
		return PhaseCollecting
	default:
		return PhaseIdle
	}
}

// State is a snapshot of the controller.
type State struct {
	Collection  string                `json:"collection"`
	Mode        Mode                  `json:"mode"`
	Phase       Phase                 `json:"phase"`
	Generation  uint64                `json:"generation"`
	Source      string                `json:"source,omitempty"`
	Destination string                `json:"destination,omitempty"`
	Chain       []string              `json:"chain,omitempty"`
	Members     []string              `json:"members,omitempty"`
	Constraint  pathquery.Constraint  `json:"constraint,omitempty"`
	Annotation  *highlight.Annotation `json:"annotation,omitempty"`
	NoPath      bool                  `json:"no_path,omitempty"`
	Error       string                `json:"error,omitempty"`
	ErrorCode   errors.Code           `json:"error_code,omitempty"`
	LastRunID   string                `json:"last_run_id,omitempty"`
}

// CanCompute reports whether a workload computation may start.
func (s State) CanCompute() bool {
	return s.Mode == ModeWorkload && s.Phase != PhaseComputing && len(s.Members) >= 2
}

// CanChooseConstraint reports whether a free-mode query may start.
func (s State) CanChooseConstraint() bool {
	return s.Mode == ModeFree && (s.Phase == PhaseDestinationSelected || s.Phase == PhasePathHighlighted)
}
