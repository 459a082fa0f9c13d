package pathquery

import (
	"strings"

	"github.com/matzehuels/topoviz/pkg/errors"
)

// Constraint selects the metric the graph service optimizes for.
type Constraint string

const (
	Shortest    Constraint = "shortest"
	Latency     Constraint = "latency"
	Utilization Constraint = "utilization"
	Load        Constraint = "load"
	Sovereignty Constraint = "sovereignty"
)

// Constraints lists every supported constraint.
var Constraints = []Constraint{Shortest, Latency, Utilization, Load, Sovereignty}

// ParseConstraint resolves a constraint name. The empty string means [Shortest].
func ParseConstraint(s string) (Constraint, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Shortest, nil
	}
	for _, c := range Constraints {
		if string(c) == s {
			return c, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidConstraint, "unknown constraint %q", s)
}

// routeSegment is the path segment appended after shortest_path.
func (c Constraint) routeSegment() string {
	if c == Shortest || c == "" {
		return ""
	}
	return string(c)
}

// Direction restricts edge traversal direction.
type Direction string

const (
	Outbound Direction = "outbound"
	Inbound  Direction = "inbound"
	Any      Direction = "any"
)

// ParseDirection resolves a direction name. The empty string means [Outbound].
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(s))); d {
	case "":
		return Outbound, nil
	case Outbound, Inbound, Any:
		return d, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown direction %q (want outbound, inbound or any)", s)
}
