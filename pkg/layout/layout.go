package layout

import (
	"fmt"
	"slices"

	"github.com/matzehuels/topoviz/pkg/errors"
	"github.com/matzehuels/topoviz/pkg/topology"
)

// Variant names a layout strategy.
type Variant string

// Layout variants.
const (
	VariantRing         Variant = "ring"
	VariantClos         Variant = "clos"
	VariantCircle       Variant = "circle"
	VariantPolarfly     Variant = "polarfly"
	VariantBreadthFirst Variant = "breadthfirst"
)

// Variants lists the selectable variants. The breadth-first fallback is
// included so callers can request it directly.
var Variants = []Variant{VariantRing, VariantClos, VariantCircle, VariantPolarfly, VariantBreadthFirst}

// ParseVariant validates a variant name.
func ParseVariant(s string) (Variant, error) {
	v := Variant(s)
	if slices.Contains(Variants, v) {
		return v, nil
	}
	return "", errors.New(errors.ErrCodeInvalidVariant, "unknown layout variant %q (want one of %v)", s, Variants)
}

// Position is a 2D coordinate in canvas units.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Placement is the output of one strategy pass.
type Placement struct {
	Positions map[string]Position
	Hidden    []string
}

// Strategy places the visible vertices of a model.
type Strategy interface {
	Variant() Variant
	Place(m *topology.Model, visible []string) Placement
}

// PositionOf is the per-vertex view of a strategy: the position of id when
// every vertex of m is visible, or false when the strategy leaves it
// unpositioned.
func PositionOf(s Strategy, id string, m *topology.Model) (Position, bool) {
	p, ok := s.Place(m, nil).Positions[id]
	return p, ok
}

// Result is a fully resolved layout pass.
type Result struct {
	Variant    Variant             `json:"variant"`
	Positions  map[string]Position `json:"positions"`
	Hidden     []string            `json:"hidden,omitempty"`
	Fallback   bool                `json:"fallback,omitempty"`
	Reason     string              `json:"reason,omitempty"`
	Unresolved []string            `json:"unresolved,omitempty"`
}

// Engine runs strategies and applies the breadth-first fallback.
type Engine struct {
	cfg        Config
	strategies map[Variant]Strategy
}

// NewEngine creates an engine with one strategy per variant.
func NewEngine(cfg Config) *Engine {
	return &Engine{
		cfg: cfg,
		strategies: map[Variant]Strategy{
			VariantRing:         NewRing(cfg.Ring),
			VariantClos:         NewClos(cfg.Clos),
			VariantCircle:       NewCircle(cfg.Circle),
			VariantPolarfly:     NewPolarfly(cfg.Polarfly),
			VariantBreadthFirst: NewBreadthFirst(cfg.BreadthFirst),
		},
	}
}

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.cfg }

// Strategy returns the strategy for v.
func (e *Engine) Strategy(v Variant) (Strategy, error) {
	s, ok := e.strategies[v]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidVariant, "unknown layout variant %q", v)
	}
	return s, nil
}

// Run lays out the visible vertices of m with variant v. A nil visible
// slice means every vertex. Unknown ids in visible are ignored.
//
// Run only fails for an unknown variant or a nil model. An unresolvable
// placement is not an error: the result carries the fallback positions and
// a LAYOUT_UNRESOLVABLE reason.
func (e *Engine) Run(v Variant, m *topology.Model, visible []string) (*Result, error) {
	if m == nil {
		return nil, errors.New(errors.ErrCodeDataShape, "no topology model")
	}
	s, err := e.Strategy(v)
	if err != nil {
		return nil, err
	}

	ids := visibleIDs(m, visible)
	p := s.Place(m, ids)

	hidden := make(map[string]bool, len(p.Hidden))
	for _, id := range p.Hidden {
		hidden[id] = true
	}
	var missing []string
	for _, id := range ids {
		if _, ok := p.Positions[id]; !ok && !hidden[id] {
			missing = append(missing, id)
		}
	}

	if len(missing) == 0 {
		return &Result{
			Variant:   v,
			Positions: p.Positions,
			Hidden:    p.Hidden,
		}, nil
	}

	reason := errors.New(errors.ErrCodeLayoutUnresolvable,
		"%s layout left %d of %d vertices unpositioned", v, len(missing), len(ids))
	fb := e.strategies[VariantBreadthFirst].Place(m, ids)
	return &Result{
		Variant:    v,
		Positions:  fb.Positions,
		Fallback:   true,
		Reason:     reason.Error(),
		Unresolved: missing,
	}, nil
}

// visibleIDs filters visible to model members and returns them in global
// model order.
func visibleIDs(m *topology.Model, visible []string) []string {
	if visible == nil {
		return m.IDs()
	}
	seen := make(map[string]bool, len(visible))
	out := make([]string, 0, len(visible))
	for _, id := range visible {
		if m.Has(id) && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	slices.SortFunc(out, func(a, b string) int { return m.Order(a) - m.Order(b) })
	return out
}

// groupByCategory splits ordered ids by category, preserving order.
func groupByCategory(m *topology.Model, ids []string) map[topology.Category][]string {
	out := make(map[topology.Category][]string)
	for _, id := range ids {
		v, _ := m.Vertex(id)
		out[v.Category] = append(out[v.Category], id)
	}
	return out
}

func (r *Result) String() string {
	if r.Fallback {
		return fmt.Sprintf("%s (fallback, %d positioned)", r.Variant, len(r.Positions))
	}
	return fmt.Sprintf("%s (%d positioned, %d hidden)", r.Variant, len(r.Positions), len(r.Hidden))
}
