package layout

import (
	"math"

	"github.com/matzehuels/topoviz/pkg/topology"
)

// Circle places every visible vertex on one ring in global model order:
// category priority, then the numeric token of the label or id suffix, then
// id. Vertices without a token follow the numbered ones. A full sweep
// divides the circle into n equal slots; a partial sweep puts the first and
// last vertex on the arc ends.
type Circle struct {
	cfg CircleConfig
}

// NewCircle creates a circle strategy.
func NewCircle(cfg CircleConfig) *Circle { return &Circle{cfg: cfg} }

// Variant implements [Strategy].
func (c *Circle) Variant() Variant { return VariantCircle }

// Place implements [Strategy].
func (c *Circle) Place(m *topology.Model, visible []string) Placement {
	ids := visibleIDs(m, visible)
	out := Placement{Positions: make(map[string]Position, len(ids))}
	if len(ids) == 0 {
		return out
	}

	step := 0.0
	switch {
	case c.cfg.Sweep >= 2*math.Pi:
		step = c.cfg.Sweep / float64(len(ids))
	case len(ids) > 1:
		step = c.cfg.Sweep / float64(len(ids)-1)
	}
	for i, id := range ids {
		out.Positions[id] = polar(c.cfg.Radius, c.cfg.StartAngle+float64(i)*step)
	}
	return out
}
